// Package channel defines the bidirectional named-event boundary between the
// game core and the server transport. Implementations deliver inbound events
// one at a time, in arrival order, from a single delivery goroutine.
package channel

import "encoding/json"

// Event is the wire envelope shared by all transports.
type Event struct {
	Name string          `json:"event"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Handler receives the raw payload of a single inbound event.
type Handler func(data json.RawMessage)

// Channel is the pub/sub boundary the game state machine talks through.
// Subscribe replaces any previous handler registered for the same name.
// Emit is fire-and-forget: a returned error means the intent never left the
// client, not that the server rejected it.
type Channel interface {
	Subscribe(name string, h Handler)
	Unsubscribe(name string)
	Emit(name string, payload any) error
	Close() error
}

// Synthetic lifecycle events dispatched by transports alongside server events.
const (
	EventConnect    = "connect"
	EventDisconnect = "disconnect"
)
