package ws

import (
	"encoding/json"
	"errors"
)

// Event is one inbound frame. Every message on the wire is a flat JSON
// object carrying a required "type" field; the raw bytes are kept so
// handlers can decode their own type-specific fields.
type Event struct {
	Type string
	Raw  json.RawMessage
}

// ParseEvent peeks the type discriminator without decoding the rest.
func ParseEvent(data []byte) (Event, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return Event{}, err
	}
	if head.Type == "" {
		return Event{}, errors.New("event has no type")
	}
	return Event{Type: head.Type, Raw: json.RawMessage(data)}, nil
}

// Event types owned by the engine. Everything else is routed to the
// room's rule module.
const (
	EventJoin      = "join"
	EventLeave     = "leave"
	EventJoined    = "joined"
	EventJoinError = "join_error"
	EventInfo      = "info"
	EventSystem    = "system"
)

// JoinRequest is the common join envelope shared by every game.
// Game-specific creation options ride in the same frame and are decoded
// by the rule module from Event.Raw.
type JoinRequest struct {
	RoomID    string `json:"roomId" validate:"required"`
	Name      string `json:"name"`
	Mode      string `json:"mode"`
	Password  string `json:"password"`
	InviteKey string `json:"inviteKey"`
}

const (
	ModeJoin   = "join"
	ModeCreate = "create"
)

type JoinErrorPayload struct {
	Type   string `json:"type"`
	Reason string `json:"reason"`
}

type InfoPayload struct {
	Type string `json:"type"`
	Msg  string `json:"msg"`
}

// Info builds the advisory frame rule modules use for out-of-band
// notices (the only error signal clients ever get).
func Info(msg string) InfoPayload {
	return InfoPayload{Type: EventInfo, Msg: msg}
}
