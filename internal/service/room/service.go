package room

import (
	"strings"
	"sync"

	"github.com/google/uuid"
)

const roomIDLength = 6

// Service is the room coordinator. It owns every live room and the
// connection->room membership index, and is the only component that
// mutates either. All outbound traffic goes through the Sender.
//
// Locking: mu guards the two maps; each Room guards its own text and
// member list. mu is always taken before a room lock, so edits on
// independent rooms run in parallel while every operation on one room
// is linearizable.
type Service struct {
	mu    sync.RWMutex
	rooms map[string]*Room
	conns map[string]string

	sender Sender
	relay  Relay
	newID  func() string
}

func New(sender Sender) *Service {
	return NewWithIDGenerator(sender, generateRoomID)
}

// NewWithIDGenerator lets callers control room id generation.
func NewWithIDGenerator(sender Sender, newID func() string) *Service {
	if newID == nil {
		newID = generateRoomID
	}
	return &Service{
		rooms:  make(map[string]*Room),
		conns:  make(map[string]string),
		sender: sender,
		newID:  newID,
	}
}

// SetRelay enables cross-instance mirroring of room broadcasts. Must be
// called before the service starts handling events.
func (s *Service) SetRelay(relay Relay) {
	s.relay = relay
}

func generateRoomID() string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return id[:roomIDLength]
}

// CreateRoom registers an empty room owned by connID and returns its id.
// The creator is not a member yet; it is expected to join immediately,
// so emptiness is never checked here.
func (s *Service) CreateRoom(connID string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var id string
	for {
		id = s.newID()
		if _, exists := s.rooms[id]; !exists {
			break
		}
	}

	s.rooms[id] = newRoom(id, connID)
	incRoomsCreated()
	setLiveRooms(len(s.rooms))
	return id
}

// JoinRoom adds connID to the room and returns the current text so the
// joiner can initialise its view. The membership mutation and the
// user_list broadcast happen under the room lock, so no other event for
// this room can interleave between them.
func (s *Service) JoinRoom(connID, roomID, username string) (string, *Error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.rooms[roomID]
	if !ok {
		return "", newError(ErrorCodeNotFound, "room not found", nil)
	}
	if _, member := s.conns[connID]; member {
		return "", newError(ErrorCodeConflict, "already in a room", nil)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.members = append(r.members, Member{ConnID: connID, Username: username})
	s.conns[connID] = roomID
	s.broadcast(r, userListMessage(r), "")
	return r.text, nil
}

// ApplyEdit replaces the room's text and relays it to every member
// except the sender. Unknown rooms are ignored: the room may have been
// deleted by another member a moment ago, and that is not an error.
func (s *Service) ApplyEdit(connID, roomID, text string) {
	s.mu.RLock()
	r, ok := s.rooms[roomID]
	s.mu.RUnlock()
	if !ok {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.text = text
	incEditsApplied()
	s.broadcast(r, &Message{Type: MessageUpdateText, RoomID: roomID, Text: text}, connID)
}

// LeaveRoom removes connID from the room, tells the survivors, and tears
// the room down if nobody is left.
func (s *Service) LeaveRoom(connID, roomID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeFromRoom(connID, roomID)
}

// DeleteRoom destroys the room and evicts every member, but only when
// the caller is the recorded owner. A non-owner gets no response at all:
// the no-op leaks nothing about whether the room exists.
func (s *Service) DeleteRoom(connID, roomID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.rooms[roomID]
	if !ok {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.owner != connID {
		return
	}

	s.broadcast(r, &Message{Type: MessageRoomDeleted, RoomID: roomID}, "")
	for _, m := range r.members {
		delete(s.conns, m.ConnID)
	}
	r.closed = true
	delete(s.rooms, roomID)
	setLiveRooms(len(s.rooms))
}

// Disconnect handles a transport-level connection loss. The event
// carries no room id, so the membership index supplies it. Idempotent:
// a connection with no recorded room leaves the index untouched. Rooms
// the connection created but nobody ever joined are reaped here too,
// since no membership entry points at them.
func (s *Service) Disconnect(connID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if roomID, ok := s.conns[connID]; ok {
		s.removeFromRoom(connID, roomID)
	}
	s.reapOrphanedRooms(connID)
}

// DeliverRelayed fans a mirrored broadcast from a peer instance out to
// the local members of roomID. Never re-published to the relay.
func (s *Service) DeliverRelayed(roomID string, msg *Message) {
	s.mu.RLock()
	r, ok := s.rooms[roomID]
	s.mu.RUnlock()
	if !ok {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	for _, m := range r.members {
		s.sender.Send(m.ConnID, msg)
	}
}

func (s *Service) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := Stats{Rooms: len(s.rooms)}
	for _, r := range s.rooms {
		r.mu.Lock()
		st.Members += len(r.members)
		r.mu.Unlock()
	}
	return st
}

// removeFromRoom clears the membership index entry and, if the room is
// live, removes the member, notifies the rest, and deletes the room when
// it empties. Caller holds s.mu.
func (s *Service) removeFromRoom(connID, roomID string) {
	delete(s.conns, connID)

	r, ok := s.rooms[roomID]
	if !ok {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.removeMember(connID)

	if len(r.members) == 0 {
		r.closed = true
		delete(s.rooms, roomID)
		setLiveRooms(len(s.rooms))
		return
	}
	s.broadcast(r, userListMessage(r), "")
}

// reapOrphanedRooms deletes every memberless room owned by connID. A
// created room is normally memberless only in the window before its
// creator joins; once the creator is gone that window can never close,
// so the room must not outlive the connection. Caller holds s.mu.
func (s *Service) reapOrphanedRooms(connID string) {
	for id, r := range s.rooms {
		r.mu.Lock()
		if r.owner == connID && len(r.members) == 0 {
			r.closed = true
			delete(s.rooms, id)
		}
		r.mu.Unlock()
	}
	setLiveRooms(len(s.rooms))
}

// broadcast pushes msg to every member except exclude, then mirrors it
// to the relay if one is configured. Caller holds r.mu.
func (s *Service) broadcast(r *Room, msg *Message, exclude string) {
	for _, m := range r.members {
		if m.ConnID == exclude {
			continue
		}
		s.sender.Send(m.ConnID, msg)
	}
	if s.relay != nil {
		s.relay.Publish(r.ID, msg)
	}
}

// userListMessage builds the presence broadcast. Caller holds r.mu.
func userListMessage(r *Room) *Message {
	return &Message{Type: MessageUserList, RoomID: r.ID, Users: r.usernames()}
}
