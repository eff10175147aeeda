package chat

import (
	"io"
	"sync"
	"testing"
	"time"

	"log/slog"
)

type delivery struct {
	kind   string // "room", "room-excl", "conn"
	target string
	except string
	ev     Event
}

// fakeFanout records deliveries in issue order so tests can assert both
// recipients and ordering.
type fakeFanout struct {
	mu     sync.Mutex
	seq    []delivery
	joins  []string
	leaves []string
}

func (f *fakeFanout) Join(room, connID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.joins = append(f.joins, room+"/"+connID)
}

func (f *fakeFanout) Leave(room, connID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.leaves = append(f.leaves, room+"/"+connID)
}

func (f *fakeFanout) ToRoom(room string, ev Event) {
	f.record(delivery{kind: "room", target: room, ev: ev})
}

func (f *fakeFanout) ToRoomExcluding(room string, ev Event, except string) {
	f.record(delivery{kind: "room-excl", target: room, except: except, ev: ev})
}

func (f *fakeFanout) ToConnection(connID string, ev Event) {
	f.record(delivery{kind: "conn", target: connID, ev: ev})
}

func (f *fakeFanout) record(d delivery) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq = append(f.seq, d)
}

func (f *fakeFanout) deliveries() []delivery {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]delivery(nil), f.seq...)
}

func (f *fakeFanout) reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq, f.joins, f.leaves = nil, nil, nil
}

func newTestManager(t *testing.T, idle time.Duration) (*Manager, *fakeFanout) {
	t.Helper()
	f := &fakeFanout{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	m := NewManager(logger, f, idle)
	t.Cleanup(m.Close)
	return m, f
}

func memberList(d delivery) ([]string, bool) {
	ml, ok := d.ev.Data.(MemberList)
	if !ok {
		return nil, false
	}
	return ml.Users, true
}

func TestCreateRoomAckAndDuplicate(t *testing.T) {
	m, f := newTestManager(t, time.Minute)
	m.Connect("c1")

	ack := m.CreateRoom("c1", "lobby", "public", "")
	if !ack.OK {
		t.Fatalf("create failed: %v", ack.Error)
	}
	ack = m.CreateRoom("c1", "lobby", "public", "")
	if ack.OK || ack.Error != "La sala ya existe" {
		t.Errorf("expected duplicate-room error, got %+v", ack)
	}
	// create never broadcasts
	if len(f.deliveries()) != 0 {
		t.Errorf("create broadcast something: %v", f.deliveries())
	}
}

func TestJoinGuardOrderAndAtomicity(t *testing.T) {
	m, _ := newTestManager(t, time.Minute)
	m.Connect("c1")
	m.Connect("c2")

	if ack := m.JoinRoom("c1", "ghost", "alice", ""); ack.OK || ack.Error != "La sala no existe" {
		t.Errorf("expected room-not-found, got %+v", ack)
	}

	m.CreateRoom("c1", "vip", "private", "xyz")
	// existence passes, password checked before duplicate name
	if ack := m.JoinRoom("c1", "vip", "alice", "abc"); ack.OK || ack.Error != "Contraseña incorrecta" {
		t.Errorf("expected bad-password, got %+v", ack)
	}
	if ack := m.JoinRoom("c1", "vip", "alice", "xyz"); !ack.OK {
		t.Fatalf("join failed: %v", ack.Error)
	}
	if ack := m.JoinRoom("c2", "vip", "alice", "xyz"); ack.OK || ack.Error != "El nombre de usuario ya está en uso" {
		t.Errorf("expected duplicate-name, got %+v", ack)
	}
	// failed join mutated nothing
	users := m.store.Members("vip")
	if len(users) != 1 || users[0] != "alice" {
		t.Errorf("membership changed on failed join: %v", users)
	}
	if m.sessions["c2"].Room != "" {
		t.Error("c2 joined despite rejection")
	}
}

func TestJoinBroadcastsAndAck(t *testing.T) {
	m, f := newTestManager(t, time.Minute)
	m.Connect("c1")
	m.Connect("c2")
	m.CreateRoom("c1", "lobby", "public", "")

	if ack := m.JoinRoom("c1", "lobby", "alice", ""); !ack.OK || ack.Type != "public" {
		t.Fatalf("expected {ok,type:public}, got %+v", ack)
	}

	f.reset()
	m.JoinRoom("c2", "lobby", "bob", "")

	var sawSystem, sawUpdate bool
	for _, d := range f.deliveries() {
		switch d.ev.Name {
		case EventMessage:
			msg := d.ev.Data.(ChatMessage)
			if msg.User != systemUser || msg.Text != "bob se ha unido a la sala." {
				t.Errorf("unexpected system message: %+v", msg)
			}
			if d.kind != "room-excl" || d.except != "c2" {
				t.Errorf("join message must exclude the joiner, got %+v", d)
			}
			sawSystem = true
		case EventUpdateUsers:
			users, _ := memberList(d)
			if len(users) != 2 || users[0] != "alice" || users[1] != "bob" {
				t.Errorf("unexpected member list: %v", users)
			}
			if d.kind != "room" {
				t.Errorf("update users must include the joiner, got %+v", d)
			}
			sawUpdate = true
		}
	}
	if !sawSystem || !sawUpdate {
		t.Errorf("missing join broadcasts: system=%v update=%v", sawSystem, sawUpdate)
	}
}

func TestSwitchRoomsLeaveBeforeJoin(t *testing.T) {
	m, f := newTestManager(t, time.Minute)
	m.Connect("c1")
	m.Connect("c2")
	m.CreateRoom("c1", "a", "public", "")
	m.CreateRoom("c1", "b", "public", "")
	m.JoinRoom("c2", "a", "keeper", "") // keeps room a alive
	m.JoinRoom("c1", "a", "alice", "")

	f.reset()
	if ack := m.JoinRoom("c1", "b", "alice", ""); !ack.OK {
		t.Fatalf("switch failed: %v", ack.Error)
	}

	departure, arrival := -1, -1
	for i, d := range f.deliveries() {
		if d.ev.Name != EventMessage {
			continue
		}
		msg := d.ev.Data.(ChatMessage)
		if d.target == "a" && msg.Text == "alice ha salido de la sala." {
			departure = i
		}
		if d.target == "b" && msg.Text == "alice se ha unido a la sala." {
			arrival = i
		}
	}
	if departure == -1 || arrival == -1 {
		t.Fatalf("missing departure/arrival broadcasts: %v", f.deliveries())
	}
	if departure > arrival {
		t.Error("arrival broadcast before departure")
	}
	if got := m.sessions["c1"].Room; got != "b" {
		t.Errorf("session room = %q, want b", got)
	}
}

func TestRejoinSameRoomUnderNewName(t *testing.T) {
	m, _ := newTestManager(t, time.Minute)
	m.Connect("c1")
	m.CreateRoom("c1", "lobby", "public", "")
	m.JoinRoom("c1", "lobby", "alice", "")

	// sole member switches names; the room must survive the leave step
	if ack := m.JoinRoom("c1", "lobby", "alicia", ""); !ack.OK {
		t.Fatalf("rejoin failed: %v", ack.Error)
	}
	users := m.store.Members("lobby")
	if len(users) != 1 || users[0] != "alicia" {
		t.Errorf("unexpected members after rename: %v", users)
	}
}

func TestEmptyRoomReclamation(t *testing.T) {
	m, _ := newTestManager(t, time.Minute)
	m.Connect("c1")
	m.CreateRoom("c1", "lobby", "public", "")
	m.JoinRoom("c1", "lobby", "alice", "")
	m.LeaveRoom("c1")

	if ack := m.JoinRoom("c1", "lobby", "alice", ""); ack.OK || ack.Error != "La sala no existe" {
		t.Errorf("expected not-found after reclamation, got %+v", ack)
	}
	if ack := m.CreateRoom("c1", "lobby", "public", ""); !ack.OK {
		t.Errorf("recreate after reclamation failed: %v", ack.Error)
	}
}

func TestDisconnectRunsLeavePath(t *testing.T) {
	m, f := newTestManager(t, time.Minute)
	m.Connect("c1")
	m.Connect("c2")
	m.CreateRoom("c1", "lobby", "public", "")
	m.JoinRoom("c1", "lobby", "alice", "")
	m.JoinRoom("c2", "lobby", "bob", "")

	f.reset()
	m.Disconnect("c2")

	var sawSystem, sawUpdate bool
	for _, d := range f.deliveries() {
		switch d.ev.Name {
		case EventMessage:
			msg := d.ev.Data.(ChatMessage)
			if msg.User == systemUser && msg.Text == "bob ha salido de la sala." {
				sawSystem = true
			}
		case EventUpdateUsers:
			users, _ := memberList(d)
			if len(users) == 1 && users[0] == "alice" {
				sawUpdate = true
			}
		}
	}
	if !sawSystem || !sawUpdate {
		t.Errorf("missing departure broadcasts: system=%v update=%v", sawSystem, sawUpdate)
	}
	if _, ok := m.sessions["c2"]; ok {
		t.Error("session still registered after disconnect")
	}
}

func TestChatMessageBroadcast(t *testing.T) {
	m, f := newTestManager(t, time.Minute)
	m.Connect("c1")
	m.Connect("c2")

	// unjoined senders are silently dropped
	m.Message("c1", "hello?")
	if len(f.deliveries()) != 0 {
		t.Fatalf("unjoined message was broadcast: %v", f.deliveries())
	}

	m.CreateRoom("c1", "lobby", "public", "")
	m.JoinRoom("c1", "lobby", "alice", "")
	f.reset()
	m.Message("c1", "hi")

	ds := f.deliveries()
	if len(ds) != 1 || ds[0].kind != "room" {
		t.Fatalf("expected one room broadcast, got %v", ds)
	}
	msg := ds[0].ev.Data.(ChatMessage)
	if msg.User != "alice" || msg.Text != "hi" || msg.Type != "" {
		t.Errorf("unexpected chat payload: %+v", msg)
	}

	f.reset()
	m.Image("c1", "data:image/png;base64,xyz")
	ds = f.deliveries()
	if len(ds) != 1 {
		t.Fatalf("expected one image broadcast, got %v", ds)
	}
	img := ds[0].ev.Data.(ChatMessage)
	if img.User != "alice" || img.Type != "image" || img.Data == "" {
		t.Errorf("unexpected image payload: %+v", img)
	}
}

func TestMembersQueryIsUnicast(t *testing.T) {
	m, f := newTestManager(t, time.Minute)
	m.Connect("c1")
	m.Connect("c2")
	m.CreateRoom("c1", "lobby", "public", "")
	m.JoinRoom("c1", "lobby", "alice", "")
	m.JoinRoom("c2", "lobby", "bob", "")

	f.reset()
	m.Members("c1")

	ds := f.deliveries()
	if len(ds) != 1 || ds[0].kind != "conn" || ds[0].target != "c1" {
		t.Fatalf("expected one unicast to c1, got %v", ds)
	}
	users := ds[0].ev.Data.([]string)
	if len(users) != 2 || users[0] != "alice" || users[1] != "bob" {
		t.Errorf("unexpected member list: %v", users)
	}

	// unjoined connections get nothing
	m.Connect("c3")
	f.reset()
	m.Members("c3")
	if len(f.deliveries()) != 0 {
		t.Errorf("unjoined members query was answered: %v", f.deliveries())
	}
}

func TestRoomsListing(t *testing.T) {
	m, _ := newTestManager(t, time.Minute)
	m.Connect("c1")
	m.CreateRoom("c1", "vip", "private", "xyz")
	m.CreateRoom("c1", "lobby", "public", "")

	rooms := m.Rooms()
	if len(rooms) != 2 {
		t.Fatalf("expected 2 rooms, got %v", rooms)
	}
	if rooms[0].Name != "lobby" || rooms[0].Private {
		t.Errorf("unexpected lobby entry: %+v", rooms[0])
	}
	if rooms[1].Name != "vip" || !rooms[1].Private || rooms[1].Type != "private" {
		t.Errorf("unexpected vip entry: %+v", rooms[1])
	}
}

func TestPasswordGateScenario(t *testing.T) {
	m, _ := newTestManager(t, time.Minute)
	m.Connect("c1")
	m.CreateRoom("c1", "vip", "secret", "xyz")

	if ack := m.JoinRoom("c1", "vip", "alice", "abc"); ack.OK || ack.Error != "Contraseña incorrecta" {
		t.Errorf("wrong password accepted: %+v", ack)
	}
	if users := m.store.Members("vip"); len(users) != 0 {
		t.Errorf("membership changed on rejected join: %v", users)
	}
	if ack := m.JoinRoom("c1", "vip", "alice", "xyz"); !ack.OK {
		t.Errorf("correct password rejected: %+v", ack)
	}
}

func TestInactivityEviction(t *testing.T) {
	m, f := newTestManager(t, 50*time.Millisecond)
	m.Connect("c1")
	m.CreateRoom("c1", "lobby", "public", "")
	m.JoinRoom("c1", "lobby", "alice", "")
	f.reset()

	deadline := time.Now().Add(2 * time.Second)
	for len(m.Rooms()) != 0 {
		if time.Now().After(deadline) {
			t.Fatal("idle room was never evicted")
		}
		time.Sleep(10 * time.Millisecond)
	}

	var sawClosedMsg, sawClosedEvent bool
	for _, d := range f.deliveries() {
		switch d.ev.Name {
		case EventMessage:
			if msg := d.ev.Data.(ChatMessage); msg.User == systemUser {
				sawClosedMsg = true
			}
		case EventRoomClosed:
			if rc := d.ev.Data.(RoomClosed); rc.Room == "lobby" {
				sawClosedEvent = true
			}
		case EventUpdateUsers:
			t.Error("eviction must not emit per-member departure broadcasts")
		}
	}
	if !sawClosedMsg || !sawClosedEvent {
		t.Errorf("missing eviction broadcasts: msg=%v event=%v", sawClosedMsg, sawClosedEvent)
	}

	m.mu.Lock()
	room := m.sessions["c1"].Room
	m.mu.Unlock()
	if room != "" {
		t.Errorf("member not forced to unjoined, still in %q", room)
	}
}

func TestActivityDefersEviction(t *testing.T) {
	m, _ := newTestManager(t, 500*time.Millisecond)
	m.Connect("c1")
	m.CreateRoom("c1", "lobby", "public", "")
	m.JoinRoom("c1", "lobby", "alice", "")

	// keep the room busy past its original deadline
	for i := 0; i < 8; i++ {
		time.Sleep(100 * time.Millisecond)
		m.Message("c1", "still here")
	}
	if len(m.Rooms()) != 1 {
		t.Error("active room was evicted")
	}
}
