package chat

import (
	"sort"
	"time"
)

type room struct {
	kind       string
	password   string // empty means public
	members    map[string]struct{}
	timer      *time.Timer
	lastActive time.Time
}

// Store maps room names to live room state and owns each room's inactivity
// timer. It is not safe for concurrent use on its own: the Manager serializes
// every call, including the expiry callback.
type Store struct {
	rooms    map[string]*room
	idle     time.Duration
	onExpire func(name string)
}

// NewStore returns an empty store. onExpire is invoked from a timer goroutine
// whenever a room's inactivity deadline fires; it must re-check Expired
// before acting because a rearm can race the fire.
func NewStore(idle time.Duration, onExpire func(name string)) *Store {
	return &Store{rooms: map[string]*room{}, idle: idle, onExpire: onExpire}
}

// Create inserts a room with an empty member set and arms its inactivity
// timer. Fails with ErrRoomExists if the name is taken.
func (s *Store) Create(name, kind, password string) error {
	if _, ok := s.rooms[name]; ok {
		return ErrRoomExists
	}
	r := &room{
		kind:       kind,
		password:   password,
		members:    map[string]struct{}{},
		lastActive: time.Now(),
	}
	if s.onExpire != nil {
		r.timer = time.AfterFunc(s.idle, func() { s.onExpire(name) })
	}
	s.rooms[name] = r
	return nil
}

func (s *Store) get(name string) (*room, bool) {
	r, ok := s.rooms[name]
	return r, ok
}

// Has reports whether a room exists.
func (s *Store) Has(name string) bool {
	_, ok := s.rooms[name]
	return ok
}

// List returns every room sorted by name. Only whether a password is set is
// exposed, never its value.
func (s *Store) List() []RoomInfo {
	out := make([]RoomInfo, 0, len(s.rooms))
	for name, r := range s.rooms {
		out = append(out, RoomInfo{Name: name, Type: r.kind, Private: r.password != ""})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// AddMember adds a display name to a room's member set.
func (s *Store) AddMember(name, user string) error {
	r, ok := s.rooms[name]
	if !ok {
		return ErrRoomNotFound
	}
	if _, dup := r.members[user]; dup {
		return ErrNameTaken
	}
	r.members[user] = struct{}{}
	return nil
}

// RemoveMember removes a display name from a room, idempotently. Removing the
// last member deletes the room and cancels its timer in the same step.
func (s *Store) RemoveMember(name, user string) (deleted bool) {
	return s.remove(name, user, false)
}

// remove is RemoveMember with an escape hatch for the switch-rooms path:
// keepEmpty leaves a momentarily empty room in place so a rejoin of the same
// room does not observe it as deleted.
func (s *Store) remove(name, user string, keepEmpty bool) (deleted bool) {
	r, ok := s.rooms[name]
	if !ok {
		return false
	}
	delete(r.members, user)
	if len(r.members) == 0 && !keepEmpty {
		s.drop(name, r)
		return true
	}
	return false
}

// Members returns a room's display names sorted, or nil if the room is gone.
func (s *Store) Members(name string) []string {
	r, ok := s.rooms[name]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(r.members))
	for u := range r.members {
		out = append(out, u)
	}
	sort.Strings(out)
	return out
}

// Touch rearms a room's inactivity timer; no-op if the room is absent. Rearm
// is stop-then-reset on the one handle, never a second pending timer.
func (s *Store) Touch(name string) {
	r, ok := s.rooms[name]
	if !ok {
		return
	}
	r.lastActive = time.Now()
	if r.timer != nil {
		r.timer.Stop()
		r.timer.Reset(s.idle)
	}
}

// Expired reports whether a room still exists and has been inactive for the
// full idle duration. The expiry callback uses it to discard stale fires.
func (s *Store) Expired(name string) bool {
	r, ok := s.rooms[name]
	return ok && time.Since(r.lastActive) >= s.idle
}

// Drop deletes a room regardless of membership and returns the display names
// that were still inside.
func (s *Store) Drop(name string) []string {
	r, ok := s.rooms[name]
	if !ok {
		return nil
	}
	members := s.Members(name)
	s.drop(name, r)
	return members
}

func (s *Store) drop(name string, r *room) {
	if r.timer != nil {
		r.timer.Stop()
	}
	delete(s.rooms, name)
}

// Close cancels every pending timer and empties the store.
func (s *Store) Close() {
	for name, r := range s.rooms {
		s.drop(name, r)
	}
}
