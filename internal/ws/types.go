package ws

import (
	"encoding/json"
)

// MessageType represents the different kinds of messages our system can handle
type MessageType string

const (
	MessageTypeMove       MessageType = "move"
	MessageTypeUndo       MessageType = "undo"
	MessageTypeRematch    MessageType = "rematch"
	MessageTypeGameState  MessageType = "gameState"
	MessageTypeMatchFound MessageType = "matchFound"
	MessageTypeError      MessageType = "error"
)

// Message represents a WebSocket message in our system
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// MovePayload carries a candidate move as two squares, e.g. "e2" and "e4".
type MovePayload struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// ErrorPayload is sent back when an incoming message cannot be applied.
type ErrorPayload struct {
	Error string `json:"error"`
}

// NewMessage wraps a payload in an envelope.
func NewMessage(t MessageType, payload any) (Message, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Message{}, err
	}
	return Message{Type: t, Payload: raw}, nil
}
