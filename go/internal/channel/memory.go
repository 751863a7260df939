package channel

import (
	"encoding/json"
	"fmt"
	"sync"
)

// MemChannel is an in-process Channel used by tests and local tooling.
// Deliver injects an inbound event synchronously; Emitted returns everything
// the machine under test tried to send.
type MemChannel struct {
	mu       sync.Mutex
	handlers map[string]Handler
	emitted  []Event
	closed   bool
}

// NewMem creates an in-process channel.
func NewMem() *MemChannel {
	return &MemChannel{handlers: make(map[string]Handler)}
}

func (c *MemChannel) Subscribe(name string, h Handler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers[name] = h
}

func (c *MemChannel) Unsubscribe(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.handlers, name)
}

func (c *MemChannel) Emit(name string, payload any) error {
	var data json.RawMessage
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal %s payload: %w", name, err)
		}
		data = b
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return fmt.Errorf("emit %s: channel closed", name)
	}
	c.emitted = append(c.emitted, Event{Name: name, Data: data})
	return nil
}

func (c *MemChannel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

// Deliver marshals payload and invokes the subscribed handler inline. It is
// a no-op when nothing is subscribed, mirroring the real transports.
func (c *MemChannel) Deliver(name string, payload any) error {
	var data json.RawMessage
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal %s payload: %w", name, err)
		}
		data = b
	}

	c.mu.Lock()
	h := c.handlers[name]
	c.mu.Unlock()

	if h != nil {
		h(data)
	}
	return nil
}

// Emitted returns a copy of all events emitted so far.
func (c *MemChannel) Emitted() []Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Event, len(c.emitted))
	copy(out, c.emitted)
	return out
}

// EmittedNamed returns all emitted events with the given name.
func (c *MemChannel) EmittedNamed(name string) []Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []Event
	for _, e := range c.emitted {
		if e.Name == name {
			out = append(out, e)
		}
	}
	return out
}

var _ Channel = (*MemChannel)(nil)
