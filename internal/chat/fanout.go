package chat

// Fanout abstracts the transport's group-delivery primitive so the engine
// stays transport-agnostic. Join and Leave keep the transport's group
// subscriptions in sync with room membership; the transport adapter is the
// only place that knows how groups are implemented.
//
// Delivery is fire-and-forget: no receipt is tracked.
type Fanout interface {
	// Join subscribes a connection to a room's delivery group.
	Join(room, connID string)
	// Leave unsubscribes a connection from a room's delivery group.
	Leave(room, connID string)
	// ToRoom delivers an event to every connection in the room's group.
	ToRoom(room string, ev Event)
	// ToRoomExcluding delivers to the room's group minus one connection.
	ToRoomExcluding(room string, ev Event, exceptConnID string)
	// ToConnection delivers to a single connection.
	ToConnection(connID string, ev Event)
}
