package room

type ErrorCode string

const (
	ErrorCodeNotFound ErrorCode = "not_found"
	ErrorCodeConflict ErrorCode = "conflict"
)

// Error is the only failure shape the coordinator surfaces. Anything not
// covered by a code here is handled as a silent no-op.
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(code ErrorCode, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

type MessageType string

const (
	MessageUserList    MessageType = "user_list"
	MessageUpdateText  MessageType = "update_text"
	MessageRoomDeleted MessageType = "room_deleted"
)

// Message is an outbound notification pushed to room members.
type Message struct {
	Type   MessageType `json:"type"`
	RoomID string      `json:"roomId"`
	Text   string      `json:"text,omitempty"`
	Users  []string    `json:"users,omitempty"`
}

// Sender delivers a message to a single connection. Sends are
// fire-and-forget: the coordinator never waits for delivery.
type Sender interface {
	Send(connID string, msg *Message)
}

// Relay mirrors room broadcasts to peer instances. Optional.
type Relay interface {
	Publish(roomID string, msg *Message)
}

// Member ties a connection to the username it joined with. Member order
// is join order.
type Member struct {
	ConnID   string `json:"connId"`
	Username string `json:"username"`
}

type Stats struct {
	Rooms   int `json:"rooms"`
	Members int `json:"members"`
}
