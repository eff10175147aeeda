// Package chat implements the in-memory room membership and lifecycle
// engine: which connection sits in which room, who gets which broadcast,
// and when an idle room is reclaimed.
package chat

import (
	"log/slog"
	"sync"
	"time"

	"github.com/daniel06264831234/dimelo/pkg/metrics"
)

// Session is one live connection's view of the engine: at most one room at a
// time, with a display name scoped to that room.
type Session struct {
	ID   string
	Room string // empty while unjoined
	Name string
}

// Manager orchestrates every room transition. A single mutex serializes all
// mutations, including the inactivity expiry callback, so interleaved
// join/leave/message events cannot race.
type Manager struct {
	mu       sync.Mutex
	log      *slog.Logger
	fanout   Fanout
	store    *Store
	sessions map[string]*Session
}

// NewManager builds an engine delivering through fanout. Rooms idle for the
// full idle duration are force-closed.
func NewManager(log *slog.Logger, fanout Fanout, idle time.Duration) *Manager {
	m := &Manager{
		log:      log,
		fanout:   fanout,
		sessions: map[string]*Session{},
	}
	m.store = NewStore(idle, m.expireRoom)
	return m
}

// Connect registers a new, unjoined session for a transport connection.
func (m *Manager) Connect(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[id] = &Session{ID: id}
}

// Disconnect runs the leave path for a vanished connection and discards its
// session.
func (m *Manager) Disconnect(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if ok && s.Room != "" {
		m.leaveLocked(s, false)
	}
	delete(m.sessions, id)
}

// CreateRoom inserts a new room. The caller is acknowledged directly; nothing
// is broadcast and the caller does not join.
func (m *Manager) CreateRoom(id, name, kind, password string) Ack {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.store.Create(name, kind, password); err != nil {
		return ackErr(err)
	}
	metrics.RoomsActive.Inc()
	m.log.Info("room.created", "room", name, "type", kind, "private", password != "", "conn", id)
	return ackOK()
}

// JoinRoom moves a connection into a room. Guards run in fixed order
// (existence, password, duplicate name) against the target room before any
// state changes, so a failed join mutates nothing — including the caller's
// current room.
func (m *Manager) JoinRoom(id, name, user, password string) Ack {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return Ack{OK: false, Error: "sesión desconocida"}
	}
	r, ok := m.store.get(name)
	if !ok {
		return ackErr(ErrRoomNotFound)
	}
	if r.password != "" && r.password != password {
		return ackErr(ErrBadPassword)
	}
	if _, dup := r.members[user]; dup {
		return ackErr(ErrNameTaken)
	}

	// Switching rooms: the departure to the prior room is always broadcast
	// before the arrival to the target. Rejoining the same room under a new
	// name must not tear the room down between the two steps.
	if s.Room != "" {
		m.leaveLocked(s, s.Room == name)
	}

	_ = m.store.AddMember(name, user) // guards above make this infallible
	s.Room, s.Name = name, user
	m.fanout.Join(name, id)
	m.fanout.ToRoomExcluding(name, systemMessage(user+" se ha unido a la sala."), id)
	m.fanout.ToRoom(name, Event{Name: EventUpdateUsers, Data: MemberList{Room: name, Users: m.store.Members(name)}})
	m.store.Touch(name)
	metrics.MembersActive.Inc()
	m.log.Info("room.joined", "room", name, "user", user, "conn", id)
	return Ack{OK: true, Type: r.kind}
}

// LeaveRoom removes the connection from its current room; no-op while
// unjoined.
func (m *Manager) LeaveRoom(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok || s.Room == "" {
		return
	}
	m.leaveLocked(s, false)
}

// leaveLocked removes s from its room, broadcasting the departure to whatever
// remains of it. Caller holds m.mu and guarantees s.Room is set.
func (m *Manager) leaveLocked(s *Session, keepEmpty bool) {
	name, user := s.Room, s.Name
	deleted := m.store.remove(name, user, keepEmpty)
	s.Room, s.Name = "", ""
	m.fanout.Leave(name, s.ID)
	m.fanout.ToRoom(name, systemMessage(user+" ha salido de la sala."))
	m.fanout.ToRoom(name, Event{Name: EventUpdateUsers, Data: MemberList{Room: name, Users: m.store.Members(name)}})
	metrics.MembersActive.Dec()
	if deleted {
		metrics.RoomsActive.Dec()
		metrics.RoomsClosedTotal.WithLabelValues("empty").Inc()
	} else {
		m.store.Touch(name)
	}
	m.log.Info("room.left", "room", name, "user", user, "conn", s.ID, "deleted", deleted)
}

// Message broadcasts a text message to the sender's room, sender included.
// Silently dropped while unjoined.
func (m *Manager) Message(id, text string) {
	m.broadcastChat(id, ChatMessage{Text: text}, "text")
}

// Image broadcasts an image payload to the sender's room. The engine treats
// the payload as opaque.
func (m *Manager) Image(id, data string) {
	m.broadcastChat(id, ChatMessage{Type: "image", Data: data}, "image")
}

func (m *Manager) broadcastChat(id string, msg ChatMessage, kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok || s.Room == "" || !m.store.Has(s.Room) {
		return
	}
	msg.User = s.Name
	m.fanout.ToRoom(s.Room, Event{Name: EventMessage, Data: msg})
	m.store.Touch(s.Room)
	metrics.MessagesTotal.WithLabelValues(kind).Inc()
}

// Members sends the current member list of the caller's room back to the
// caller only; no-op while unjoined.
func (m *Manager) Members(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok || s.Room == "" || !m.store.Has(s.Room) {
		return
	}
	m.fanout.ToConnection(id, Event{Name: EventUsersInRoom, Data: m.store.Members(s.Room)})
}

// Rooms lists every room; independent of the caller's state.
func (m *Manager) Rooms() []RoomInfo {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.store.List()
}

// expireRoom is the inactivity deadline callback. Members are forced out
// without per-member departure messages: the room-closed broadcast supersedes
// them.
func (m *Manager) expireRoom(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.store.Expired(name) {
		return // stale fire: the room was touched or already dropped
	}
	m.fanout.ToRoom(name, systemMessage("La sala ha sido cerrada por inactividad."))
	m.fanout.ToRoom(name, Event{Name: EventRoomClosed, Data: RoomClosed{Room: name}})
	members := m.store.Drop(name)
	for _, s := range m.sessions {
		if s.Room == name {
			s.Room, s.Name = "", ""
			m.fanout.Leave(name, s.ID)
		}
	}
	metrics.RoomsActive.Dec()
	metrics.MembersActive.Sub(float64(len(members)))
	metrics.RoomsClosedTotal.WithLabelValues("idle").Inc()
	m.log.Info("room.closed", "room", name, "members", len(members))
}

// Close drops every pending room timer. Connections are owned by the
// transport and torn down separately.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.store.Close()
}
