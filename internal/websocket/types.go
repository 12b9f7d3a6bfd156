package websocket

const (
	EventCreateRoom = "create_room"
	EventJoinRoom   = "join_room"
	EventSendText   = "send_text"
	EventLeaveRoom  = "leave_room"
	EventDeleteRoom = "delete_room"
)

// Event is one inbound client frame. Fields beyond Type are filled
// depending on the event kind.
type Event struct {
	Type     string `json:"type"`
	RoomID   string `json:"roomId,omitempty"`
	Username string `json:"username,omitempty"`
	Text     string `json:"text,omitempty"`
}

// RoomCreated acknowledges create_room with the generated id.
type RoomCreated struct {
	Type   string `json:"type"`
	RoomID string `json:"roomId"`
}

// JoinResult acknowledges join_room. On success Text carries the room's
// current buffer; on failure Message carries the reason.
type JoinResult struct {
	Type    string `json:"type"`
	Success bool   `json:"success"`
	RoomID  string `json:"roomId"`
	Text    string `json:"text,omitempty"`
	Message string `json:"message,omitempty"`
}

const (
	MessageRoomCreated = "room_created"
	MessageJoinResult  = "join_result"
)
