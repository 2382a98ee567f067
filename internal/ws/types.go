package ws

import (
	"encoding/json"
)

// MessageType represents the different kinds of messages our system can handle
type MessageType string

const (
	MessageTypeMove      MessageType = "move"
	MessageTypeGameState MessageType = "gameState"
	MessageTypeResign    MessageType = "resign"
	MessageTypeError     MessageType = "error"
)

// Message represents a WebSocket message in our system
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// MovePayload carries a move in algebraic squares, e.g. {"from":"e2","to":"e4"}.
type MovePayload struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type ErrorPayload struct {
	Error string `json:"error"`
}
