package websocket

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/shekharupadhyay/live-typing-board/internal/service/room"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Handler upgrades HTTP requests into board connections and dispatches
// their inbound events to the room coordinator.
type Handler struct {
	hub   *Hub
	rooms *room.Service
}

func NewHandler(hub *Hub, rooms *room.Service) *Handler {
	return &Handler{
		hub:   hub,
		rooms: rooms,
	}
}

// ServeWS upgrades the request and starts the client pumps. Connections
// carry no identity beyond a fresh id; usernames arrive with join_room.
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) error {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the failure response.
		return nil
	}

	cl := newClient(conn, uuid.NewString())
	h.hub.Register <- cl

	go cl.keepAlive()
	go cl.writeMessage()
	go cl.readMessage(h)
	return nil
}

func (h *Handler) Connections() int {
	return h.hub.Connections()
}

// dispatch routes one inbound frame to the coordinator. Ack messages
// (room_created, join_result) go straight to the caller's queue; room
// broadcasts come back through the hub via the coordinator's Sender.
func (h *Handler) dispatch(cl *WSClient, payload []byte) {
	var ev Event
	if err := json.Unmarshal(payload, &ev); err != nil {
		log.Printf("invalid frame from connection %s: %v", cl.ID, err)
		return
	}

	switch ev.Type {
	case EventCreateRoom:
		id := h.rooms.CreateRoom(cl.ID)
		cl.enqueue(&RoomCreated{Type: MessageRoomCreated, RoomID: id})

	case EventJoinRoom:
		text, joinErr := h.rooms.JoinRoom(cl.ID, ev.RoomID, ev.Username)
		if joinErr != nil {
			cl.enqueue(&JoinResult{
				Type:    MessageJoinResult,
				Success: false,
				RoomID:  ev.RoomID,
				Message: joinErr.Message,
			})
			return
		}
		cl.enqueue(&JoinResult{
			Type:    MessageJoinResult,
			Success: true,
			RoomID:  ev.RoomID,
			Text:    text,
		})

	case EventSendText:
		h.rooms.ApplyEdit(cl.ID, ev.RoomID, ev.Text)

	case EventLeaveRoom:
		h.rooms.LeaveRoom(cl.ID, ev.RoomID)

	case EventDeleteRoom:
		h.rooms.DeleteRoom(cl.ID, ev.RoomID)

	default:
		log.Printf("unknown event %q from connection %s", ev.Type, cl.ID)
	}
}
