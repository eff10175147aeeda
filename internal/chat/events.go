package chat

// Server→client event names.
const (
	EventMessage     = "message"
	EventUpdateUsers = "update users"
	EventUsersInRoom = "users in room"
	EventRoomClosed  = "room closed"
)

// Event is one named payload handed to the fan-out for delivery.
type Event struct {
	Name string
	Data any
}

// ChatMessage is the payload of a "message" event. Type is empty for text
// messages and "image" for image messages.
type ChatMessage struct {
	User string `json:"user"`
	Type string `json:"type,omitempty"`
	Text string `json:"text,omitempty"`
	Data string `json:"data,omitempty"`
}

const systemUser = "Sistema"

func systemMessage(text string) Event {
	return Event{Name: EventMessage, Data: ChatMessage{User: systemUser, Text: text}}
}

// MemberList is the payload of an "update users" broadcast.
type MemberList struct {
	Room  string   `json:"room"`
	Users []string `json:"users"`
}

// RoomClosed is the payload of a "room closed" broadcast, distinct from a
// normal departure so clients can tell forced closure from an individual
// leave.
type RoomClosed struct {
	Room string `json:"room"`
}

// RoomInfo is one entry of a room listing. The password itself is never
// exposed, only whether one is set.
type RoomInfo struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	Private bool   `json:"private"`
}

// Ack is the reply delivered on a request's callback channel.
type Ack struct {
	OK    bool   `json:"ok"`
	Type  string `json:"type,omitempty"`
	Error string `json:"error,omitempty"`
}

func ackOK() Ack           { return Ack{OK: true} }
func ackErr(err error) Ack { return Ack{OK: false, Error: err.Error()} }
