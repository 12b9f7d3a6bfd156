package room

import (
	"sync"
	"testing"
)

type sentMessage struct {
	connID string
	msg    *Message
}

type recordingSender struct {
	mu   sync.Mutex
	sent []sentMessage
}

func (rs *recordingSender) Send(connID string, msg *Message) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.sent = append(rs.sent, sentMessage{connID: connID, msg: msg})
}

func (rs *recordingSender) messagesFor(connID string, kind MessageType) []*Message {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	out := make([]*Message, 0)
	for _, s := range rs.sent {
		if s.connID == connID && s.msg.Type == kind {
			out = append(out, s.msg)
		}
	}
	return out
}

func (rs *recordingSender) lastFor(connID string, kind MessageType) *Message {
	msgs := rs.messagesFor(connID, kind)
	if len(msgs) == 0 {
		return nil
	}
	return msgs[len(msgs)-1]
}

func (rs *recordingSender) reset() {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.sent = nil
}

type recordingRelay struct {
	mu        sync.Mutex
	published []sentMessage
}

func (rr *recordingRelay) Publish(roomID string, msg *Message) {
	rr.mu.Lock()
	defer rr.mu.Unlock()
	rr.published = append(rr.published, sentMessage{connID: roomID, msg: msg})
}

func newTestService() (*Service, *recordingSender) {
	sender := &recordingSender{}
	return New(sender), sender
}

func equalUsers(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

func TestCreateRoomGeneratesFreshID(t *testing.T) {
	svc, _ := newTestService()

	id := svc.CreateRoom("conn-a")
	if len(id) != roomIDLength {
		t.Fatalf("room id %q should be %d characters", id, roomIDLength)
	}

	other := svc.CreateRoom("conn-b")
	if other == id {
		t.Fatalf("second room reused id %q", id)
	}
}

func TestCreateRoomRegeneratesOnCollision(t *testing.T) {
	ids := []string{"aaaaaa", "aaaaaa", "bbbbbb"}
	sender := &recordingSender{}
	svc := NewWithIDGenerator(sender, func() string {
		id := ids[0]
		if len(ids) > 1 {
			ids = ids[1:]
		}
		return id
	})

	first := svc.CreateRoom("conn-a")
	second := svc.CreateRoom("conn-b")

	if first != "aaaaaa" {
		t.Fatalf("first room id = %q, want aaaaaa", first)
	}
	if second != "bbbbbb" {
		t.Fatalf("second room id = %q, want bbbbbb (collision should regenerate)", second)
	}
}

func TestJoinUnknownRoomFailsWithoutMutation(t *testing.T) {
	svc, sender := newTestService()

	text, err := svc.JoinRoom("conn-a", "nope", "alice")
	if err == nil {
		t.Fatal("joining an unknown room should fail")
	}
	if err.Code != ErrorCodeNotFound {
		t.Fatalf("error code = %q, want %q", err.Code, ErrorCodeNotFound)
	}
	if err.Message == "" {
		t.Fatal("failure should carry a human-readable reason")
	}
	if text != "" {
		t.Fatalf("failed join returned text %q", text)
	}
	if len(sender.sent) != 0 {
		t.Fatalf("failed join sent %d messages", len(sender.sent))
	}
	if st := svc.Stats(); st.Rooms != 0 || st.Members != 0 {
		t.Fatalf("failed join mutated state: %+v", st)
	}

	// The connection must still be free to join a real room.
	roomID := svc.CreateRoom("conn-a")
	if _, err := svc.JoinRoom("conn-a", roomID, "alice"); err != nil {
		t.Fatalf("join after failed join: %v", err)
	}
}

func TestJoinBroadcastsUserListToEveryMember(t *testing.T) {
	svc, sender := newTestService()

	roomID := svc.CreateRoom("conn-a")
	if _, err := svc.JoinRoom("conn-a", roomID, "alice"); err != nil {
		t.Fatalf("alice join: %v", err)
	}

	got := sender.lastFor("conn-a", MessageUserList)
	if got == nil || !equalUsers(got.Users, []string{"alice"}) {
		t.Fatalf("alice user_list = %+v, want [alice]", got)
	}

	if _, err := svc.JoinRoom("conn-b", roomID, "bob"); err != nil {
		t.Fatalf("bob join: %v", err)
	}

	for _, conn := range []string{"conn-a", "conn-b"} {
		got := sender.lastFor(conn, MessageUserList)
		if got == nil || !equalUsers(got.Users, []string{"alice", "bob"}) {
			t.Fatalf("%s user_list = %+v, want [alice bob]", conn, got)
		}
	}
}

func TestSecondJoinWhileMemberIsRejected(t *testing.T) {
	svc, _ := newTestService()

	first := svc.CreateRoom("conn-a")
	second := svc.CreateRoom("conn-x")
	if _, err := svc.JoinRoom("conn-a", first, "alice"); err != nil {
		t.Fatalf("first join: %v", err)
	}

	_, err := svc.JoinRoom("conn-a", second, "alice")
	if err == nil || err.Code != ErrorCodeConflict {
		t.Fatalf("second join err = %v, want conflict", err)
	}

	// The first membership is untouched.
	if st := svc.Stats(); st.Members != 1 {
		t.Fatalf("members = %d, want 1", st.Members)
	}
}

func TestEditIsLastWriteWinsAndSkipsSender(t *testing.T) {
	svc, sender := newTestService()

	roomID := svc.CreateRoom("conn-a")
	svc.JoinRoom("conn-a", roomID, "alice")
	svc.JoinRoom("conn-b", roomID, "bob")
	sender.reset()

	svc.ApplyEdit("conn-a", roomID, "first draft")
	svc.ApplyEdit("conn-b", roomID, "second draft")

	if msgs := sender.messagesFor("conn-a", MessageUpdateText); len(msgs) != 1 || msgs[0].Text != "second draft" {
		t.Fatalf("alice updates = %+v, want only bob's edit", msgs)
	}
	if msgs := sender.messagesFor("conn-b", MessageUpdateText); len(msgs) != 1 || msgs[0].Text != "first draft" {
		t.Fatalf("bob updates = %+v, want only alice's edit", msgs)
	}

	// A later joiner sees the last write, whatever came before it.
	text, err := svc.JoinRoom("conn-c", roomID, "carol")
	if err != nil {
		t.Fatalf("carol join: %v", err)
	}
	if text != "second draft" {
		t.Fatalf("room text = %q, want %q", text, "second draft")
	}
}

func TestEditOnUnknownRoomIsSilent(t *testing.T) {
	svc, sender := newTestService()

	svc.ApplyEdit("conn-a", "gone", "hello")
	if len(sender.sent) != 0 {
		t.Fatalf("edit on unknown room sent %d messages", len(sender.sent))
	}
}

func TestEmptyRoomIsDeleted(t *testing.T) {
	svc, _ := newTestService()

	roomID := svc.CreateRoom("conn-a")
	svc.JoinRoom("conn-a", roomID, "alice")
	svc.ApplyEdit("conn-a", roomID, "important notes")
	svc.LeaveRoom("conn-a", roomID)

	if st := svc.Stats(); st.Rooms != 0 {
		t.Fatalf("rooms = %d after last member left, want 0", st.Rooms)
	}
	if _, err := svc.JoinRoom("conn-b", roomID, "bob"); err == nil || err.Code != ErrorCodeNotFound {
		t.Fatalf("join after teardown err = %v, want not_found", err)
	}
}

func TestDisconnectActsAsLeave(t *testing.T) {
	svc, sender := newTestService()

	roomID := svc.CreateRoom("conn-a")
	svc.JoinRoom("conn-a", roomID, "alice")
	svc.JoinRoom("conn-b", roomID, "bob")
	sender.reset()

	svc.Disconnect("conn-b")

	got := sender.lastFor("conn-a", MessageUserList)
	if got == nil || !equalUsers(got.Users, []string{"alice"}) {
		t.Fatalf("user_list after disconnect = %+v, want [alice]", got)
	}
	if st := svc.Stats(); st.Rooms != 1 || st.Members != 1 {
		t.Fatalf("stats after disconnect = %+v", st)
	}

	// Disconnects with no recorded room are no-ops, including repeats.
	svc.Disconnect("conn-b")
	svc.Disconnect("never-seen")
	if st := svc.Stats(); st.Rooms != 1 || st.Members != 1 {
		t.Fatalf("idempotent disconnect mutated state: %+v", svc.Stats())
	}
}

func TestDisconnectReapsCreatedButUnjoinedRoom(t *testing.T) {
	svc, _ := newTestService()

	roomID := svc.CreateRoom("conn-a")
	svc.Disconnect("conn-a")

	if st := svc.Stats(); st.Rooms != 0 {
		t.Fatalf("rooms = %d after creator disconnected without joining, want 0", st.Rooms)
	}
	if _, err := svc.JoinRoom("conn-b", roomID, "bob"); err == nil || err.Code != ErrorCodeNotFound {
		t.Fatalf("join into reaped room err = %v, want not_found", err)
	}
}

func TestDisconnectReapsOnlyOwnMemberlessRooms(t *testing.T) {
	svc, _ := newTestService()

	// conn-a is a member of one room and owns a second it can never join.
	joined := svc.CreateRoom("conn-a")
	svc.JoinRoom("conn-a", joined, "alice")
	svc.JoinRoom("conn-b", joined, "bob")
	orphan := svc.CreateRoom("conn-a")

	// Another connection's transient pre-join room stays untouched.
	pending := svc.CreateRoom("conn-c")

	svc.Disconnect("conn-a")

	if st := svc.Stats(); st.Rooms != 2 || st.Members != 1 {
		t.Fatalf("stats after disconnect = %+v, want joined + pending rooms with bob", st)
	}
	if _, err := svc.JoinRoom("conn-d", orphan, "dana"); err == nil || err.Code != ErrorCodeNotFound {
		t.Fatalf("join into orphaned room err = %v, want not_found", err)
	}
	if _, err := svc.JoinRoom("conn-c", pending, "carol"); err != nil {
		t.Fatalf("pending creator's own join: %v", err)
	}
}

func TestNonOwnerDeleteIsSilentNoop(t *testing.T) {
	svc, sender := newTestService()

	roomID := svc.CreateRoom("conn-a")
	svc.JoinRoom("conn-a", roomID, "alice")
	svc.JoinRoom("conn-b", roomID, "bob")
	sender.reset()

	svc.DeleteRoom("conn-b", roomID)

	if len(sender.sent) != 0 {
		t.Fatalf("non-owner delete sent %d messages", len(sender.sent))
	}
	if st := svc.Stats(); st.Rooms != 1 || st.Members != 2 {
		t.Fatalf("non-owner delete mutated state: %+v", st)
	}
}

func TestOwnerDeleteNotifiesAndClearsEveryMember(t *testing.T) {
	svc, sender := newTestService()

	roomID := svc.CreateRoom("conn-a")
	svc.JoinRoom("conn-a", roomID, "alice")
	svc.JoinRoom("conn-b", roomID, "bob")
	sender.reset()

	svc.DeleteRoom("conn-a", roomID)

	for _, conn := range []string{"conn-a", "conn-b"} {
		if msg := sender.lastFor(conn, MessageRoomDeleted); msg == nil {
			t.Fatalf("%s did not receive room_deleted", conn)
		}
	}
	if st := svc.Stats(); st.Rooms != 0 || st.Members != 0 {
		t.Fatalf("stats after delete = %+v", st)
	}

	// Index entries are gone: both connections can join fresh rooms.
	next := svc.CreateRoom("conn-a")
	if _, err := svc.JoinRoom("conn-a", next, "alice"); err != nil {
		t.Fatalf("owner rejoin after delete: %v", err)
	}
	if _, err := svc.JoinRoom("conn-b", next, "bob"); err != nil {
		t.Fatalf("member rejoin after delete: %v", err)
	}
}

func TestBroadcastsAreMirroredToRelay(t *testing.T) {
	sender := &recordingSender{}
	relay := &recordingRelay{}
	svc := New(sender)
	svc.SetRelay(relay)

	roomID := svc.CreateRoom("conn-a")
	svc.JoinRoom("conn-a", roomID, "alice")
	svc.ApplyEdit("conn-a", roomID, "hello")

	relay.mu.Lock()
	defer relay.mu.Unlock()
	if len(relay.published) != 2 {
		t.Fatalf("relay saw %d messages, want user_list + update_text", len(relay.published))
	}
	last := relay.published[len(relay.published)-1]
	if last.connID != roomID || last.msg.Type != MessageUpdateText {
		t.Fatalf("relay message = %+v", last)
	}
}

func TestDeliverRelayedReachesLocalMembersOnly(t *testing.T) {
	svc, sender := newTestService()

	roomID := svc.CreateRoom("conn-a")
	svc.JoinRoom("conn-a", roomID, "alice")
	sender.reset()

	svc.DeliverRelayed(roomID, &Message{Type: MessageUpdateText, RoomID: roomID, Text: "remote"})
	if msg := sender.lastFor("conn-a", MessageUpdateText); msg == nil || msg.Text != "remote" {
		t.Fatalf("relayed delivery = %+v", msg)
	}

	sender.reset()
	svc.DeliverRelayed("missing", &Message{Type: MessageUpdateText, RoomID: "missing", Text: "x"})
	if len(sender.sent) != 0 {
		t.Fatalf("relayed delivery to unknown room sent %d messages", len(sender.sent))
	}
}

// Mirrors the canonical end-to-end session: create, two joiners, an
// edit, a disconnect, and the final leave tearing the room down.
func TestFullSessionLifecycle(t *testing.T) {
	svc, sender := newTestService()

	roomID := svc.CreateRoom("conn-a")
	text, err := svc.JoinRoom("conn-a", roomID, "alice")
	if err != nil {
		t.Fatalf("alice join: %v", err)
	}
	if text != "" {
		t.Fatalf("fresh room text = %q, want empty", text)
	}

	if _, err := svc.JoinRoom("conn-b", roomID, "bob"); err != nil {
		t.Fatalf("bob join: %v", err)
	}
	for _, conn := range []string{"conn-a", "conn-b"} {
		got := sender.lastFor(conn, MessageUserList)
		if got == nil || !equalUsers(got.Users, []string{"alice", "bob"}) {
			t.Fatalf("%s user_list = %+v, want [alice bob]", conn, got)
		}
	}

	svc.ApplyEdit("conn-a", roomID, "hello")
	if msg := sender.lastFor("conn-b", MessageUpdateText); msg == nil || msg.Text != "hello" {
		t.Fatalf("bob update = %+v, want hello", msg)
	}
	if msgs := sender.messagesFor("conn-a", MessageUpdateText); len(msgs) != 0 {
		t.Fatalf("alice received her own edit: %+v", msgs)
	}

	svc.Disconnect("conn-b")
	if got := sender.lastFor("conn-a", MessageUserList); got == nil || !equalUsers(got.Users, []string{"alice"}) {
		t.Fatalf("user_list after bob left = %+v, want [alice]", got)
	}
	if st := svc.Stats(); st.Rooms != 1 {
		t.Fatalf("room should survive with one member, stats = %+v", st)
	}

	svc.LeaveRoom("conn-a", roomID)
	if _, err := svc.JoinRoom("conn-c", roomID, "carol"); err == nil || err.Code != ErrorCodeNotFound {
		t.Fatalf("join after room died err = %v, want not_found", err)
	}
}
