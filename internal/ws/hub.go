package ws

import (
	"net/http"
	"sync"
	"time"

	"log/slog"

	"github.com/google/uuid"

	"github.com/daniel06264831234/dimelo/internal/chat"
)

// Hub accepts websocket connections, decodes the event protocol, and serves
// as the chat engine's fan-out: it is the only place that knows how per-room
// delivery groups work.
type Hub struct {
	log    *slog.Logger
	engine *chat.Manager

	mu     sync.RWMutex
	conns  map[string]*Conn            // live connections by id
	groups map[string]map[string]*Conn // room -> connID -> conn
}

// NewHub sets up the hub and a fresh room engine delivering through it.
// Rooms idle for the full idle duration are force-closed.
func NewHub(logger *slog.Logger, idle time.Duration) *Hub {
	h := &Hub{
		log:    logger,
		conns:  map[string]*Conn{},
		groups: map[string]map[string]*Conn{},
	}
	h.engine = chat.NewManager(logger, h, idle)
	return h
}

// Engine returns the room engine backing this hub.
func (h *Hub) Engine() *chat.Manager { return h.engine }

// ServeWS handles a new /ws connection for its whole lifetime
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sock, err := Accept(w, r)
	if err != nil {
		h.log.Error("ws.accept", "err", err)
		return
	}

	id := uuid.NewString()
	c := NewConn(sock)

	h.mu.Lock()
	h.conns[id] = c
	h.mu.Unlock()
	h.engine.Connect(id)
	h.log.Debug("ws.connected", "conn", id)

	// Outbound writer
	go c.WriteLoop(ctx)

	// Inbound reader; frames from one connection are handled in order
	for {
		raw, ok := c.Read(ctx)
		if !ok {
			break
		}
		h.dispatch(id, c, raw)
	}

	// A dropped connection runs the same removal path as an explicit leave
	h.engine.Disconnect(id)
	h.mu.Lock()
	delete(h.conns, id)
	h.mu.Unlock()
	_ = c.Close()
	h.log.Debug("ws.disconnected", "conn", id)
}

func (h *Hub) dispatch(id string, c *Conn, raw []byte) {
	var f clientFrame
	if !decode(raw, &f) || f.Event == "" {
		h.log.Debug("ws.bad_frame", "conn", id)
		return
	}

	switch f.Event {
	case evCreateRoom:
		var req createRoomReq
		if !decode(f.Data, &req) {
			return
		}
		h.ack(c, f.Ack, h.engine.CreateRoom(id, req.Room, req.Type, req.Password))

	case evJoinRoom:
		var req joinRoomReq
		if !decode(f.Data, &req) {
			return
		}
		h.ack(c, f.Ack, h.engine.JoinRoom(id, req.Room, req.Username, req.Password))

	case evLeaveRoom:
		h.engine.LeaveRoom(id)

	case evChatMessage:
		var text string
		if !decode(f.Data, &text) {
			return
		}
		h.engine.Message(id, text)

	case evChatImage:
		var data string
		if !decode(f.Data, &data) {
			return
		}
		h.engine.Image(id, data)

	case evGetUsersInRoom:
		h.engine.Members(id)

	case evGetRooms:
		h.ack(c, f.Ack, h.engine.Rooms())

	default:
		h.log.Debug("ws.unknown_event", "conn", id, "event", f.Event)
	}
}

// ack replies on the request's callback channel; skipped when the client did
// not ask for one
func (h *Hub) ack(c *Conn, ackID int64, data any) {
	if ackID == 0 {
		return
	}
	c.Send(marshalFrame(serverFrame{Event: "ack", Ack: ackID, Data: data}))
}

// Join subscribes a connection to a room's delivery group
func (h *Hub) Join(room, connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	c := h.conns[connID]
	if c == nil {
		return
	}
	g := h.groups[room]
	if g == nil {
		g = map[string]*Conn{}
		h.groups[room] = g
	}
	g[connID] = c
}

// Leave unsubscribes a connection from a room's delivery group
func (h *Hub) Leave(room, connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if g := h.groups[room]; g != nil {
		delete(g, connID)
		if len(g) == 0 {
			delete(h.groups, room)
		}
	}
}

// ToRoom delivers an event to every connection in the room's group
func (h *Hub) ToRoom(room string, ev chat.Event) {
	h.deliver(room, ev, "")
}

// ToRoomExcluding delivers to the room's group minus one connection
func (h *Hub) ToRoomExcluding(room string, ev chat.Event, except string) {
	h.deliver(room, ev, except)
}

// ToConnection delivers to a single connection
func (h *Hub) ToConnection(connID string, ev chat.Event) {
	h.mu.RLock()
	c := h.conns[connID]
	h.mu.RUnlock()
	if c != nil {
		c.Send(marshalFrame(serverFrame{Event: ev.Name, Data: ev.Data}))
	}
}

func (h *Hub) deliver(room string, ev chat.Event, except string) {
	b := marshalFrame(serverFrame{Event: ev.Name, Data: ev.Data})
	h.mu.RLock()
	defer h.mu.RUnlock()
	for id, c := range h.groups[room] {
		if id == except {
			continue
		}
		c.Send(b)
	}
}

// Close drops the engine's timers and closes every live connection
func (h *Hub) Close() {
	h.engine.Close()

	h.mu.Lock()
	conns := make([]*Conn, 0, len(h.conns))
	for _, c := range h.conns {
		conns = append(conns, c)
	}
	h.mu.Unlock()

	for _, c := range conns {
		_ = c.Close()
	}
}
