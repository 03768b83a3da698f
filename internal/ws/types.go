package ws

import "encoding/json"

const (
	// client - server
	MsgCall = "call"
	MsgPing = "ping"

	// server - client
	MsgReady      = "ready"
	MsgResult     = "result"
	MsgError      = "error"
	MsgPong       = "pong"
	MsgInvalidate = "invalidate"
)

// Message is the single envelope used in both directions. ID correlates a
// call with its result or error.
type Message struct {
	Type      string          `json:"type"`
	ID        string          `json:"id,omitempty"`
	Procedure string          `json:"procedure,omitempty"`
	Input     json.RawMessage `json:"input,omitempty"`
	Data      any             `json:"data,omitempty"`
	Error     *ErrorPayload   `json:"error,omitempty"`
}
