package ws

import "encoding/json"

// Client→server event names. Server→client names live in the chat package.
const (
	evCreateRoom     = "create room"
	evJoinRoom       = "join room"
	evLeaveRoom      = "leave room"
	evChatMessage    = "chat message"
	evChatImage      = "chat image"
	evGetUsersInRoom = "get users in room"
	evGetRooms       = "get rooms"
)

// clientFrame is one inbound request. A non-zero ack id asks for a reply
// frame carrying the same id on the request's callback channel.
type clientFrame struct {
	Event string          `json:"event"`
	Ack   int64           `json:"ack,omitempty"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type serverFrame struct {
	Event string `json:"event"`
	Ack   int64  `json:"ack,omitempty"`
	Data  any    `json:"data,omitempty"`
}

type createRoomReq struct {
	Room     string `json:"room"`
	Type     string `json:"type"`
	Password string `json:"password"`
}

type joinRoomReq struct {
	Room     string `json:"room"`
	Username string `json:"username"`
	Password string `json:"password"`
}

func marshalFrame(f serverFrame) []byte {
	b, _ := json.Marshal(f)
	return b
}

// decode tolerates an absent data field, leaving v at its zero value
func decode(raw json.RawMessage, v any) bool {
	if len(raw) == 0 {
		return true
	}
	return json.Unmarshal(raw, v) == nil
}
