package websocket

import "encoding/json"

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionPing Action = "ping"
)

// RequestEnvelope is used to peek at the action before full parsing.
type RequestEnvelope struct {
	Action Action `json:"action"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventError  Event = "error"
	EventResult Event = "result"
	EventPong   Event = "pong"
)

// ResultEvent carries one live submission result to a monitoring client.
// Payload is the submission event exactly as published on the results
// channel.
type ResultEvent struct {
	Event   Event           `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

type PongResponse struct {
	Event Event `json:"event"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}
