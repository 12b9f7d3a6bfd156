package room

import "sync"

// Room is one shared text buffer and the connections editing it. All
// fields except ID are guarded by mu; the Service always acquires its
// registry lock before a room lock, never the other way around.
type Room struct {
	ID string

	mu      sync.Mutex
	text    string
	owner   string
	members []Member
	closed  bool
}

func newRoom(id, owner string) *Room {
	return &Room{
		ID:      id,
		owner:   owner,
		members: make([]Member, 0),
	}
}

// usernames returns the member names in join order. Caller holds r.mu.
func (r *Room) usernames() []string {
	users := make([]string, 0, len(r.members))
	for _, m := range r.members {
		users = append(users, m.Username)
	}
	return users
}

// removeMember drops the member for connID, keeping join order intact.
// Caller holds r.mu.
func (r *Room) removeMember(connID string) {
	for i, m := range r.members {
		if m.ConnID == connID {
			r.members = append(r.members[:i], r.members[i+1:]...)
			return
		}
	}
}
