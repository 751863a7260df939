package channel

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"
)

// NATSConfig holds configuration for the NATS transport.
type NATSConfig struct {
	URL           string
	SubjectPrefix string // e.g. "room.events"
	MaxReconnects int
	ReconnectWait time.Duration
}

// DefaultNATSConfig returns default NATS transport configuration.
func DefaultNATSConfig() NATSConfig {
	return NATSConfig{
		URL:           nats.DefaultURL,
		SubjectPrefix: "room.events",
		MaxReconnects: -1, // Infinite
		ReconnectWait: 2 * time.Second,
	}
}

// NATSChannel implements Channel over NATS subjects, for deployments that
// bridge the game bus directly instead of going through a WebSocket edge.
// Each event name maps to the subject "<prefix>.<name>".
type NATSChannel struct {
	config NATSConfig

	mu       sync.Mutex
	handlers map[string]Handler
	subs     map[string]*nats.Subscription
	nc       *nats.Conn
}

// NewNATS creates an unconnected NATS channel. Subscribe before calling
// Connect so the synthetic connect event is not missed.
func NewNATS(config NATSConfig) *NATSChannel {
	return &NATSChannel{
		config:   config,
		handlers: make(map[string]Handler),
		subs:     make(map[string]*nats.Subscription),
	}
}

// Connect establishes the NATS connection, binds subscriptions for every
// registered handler, and dispatches the synthetic connect event. The
// reconnect handler re-dispatches connect so session resumption fires again
// after an outage.
func (c *NATSChannel) Connect() error {
	opts := []nats.Option{
		nats.MaxReconnects(c.config.MaxReconnects),
		nats.ReconnectWait(c.config.ReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Error().Err(err).Msg("NATS disconnected")
			c.dispatch(EventDisconnect, nil)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
			c.dispatch(EventConnect, nil)
		}),
		nats.ErrorHandler(func(nc *nats.Conn, sub *nats.Subscription, err error) {
			log.Error().Err(err).Msg("NATS error")
		}),
	}

	nc, err := nats.Connect(c.config.URL, opts...)
	if err != nil {
		return fmt.Errorf("connect to NATS: %w", err)
	}

	c.mu.Lock()
	c.nc = nc
	var bindErr error
	for name := range c.handlers {
		if err := c.bindLocked(name); err != nil {
			bindErr = err
			break
		}
	}
	c.mu.Unlock()

	if bindErr != nil {
		nc.Close()
		return bindErr
	}

	log.Info().Str("url", nc.ConnectedUrl()).Msg("NATS connected")
	c.dispatch(EventConnect, nil)
	return nil
}

// Subscribe registers the handler for an inbound event name. If the channel
// is already connected the subject binding is created immediately.
func (c *NATSChannel) Subscribe(name string, h Handler) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.handlers[name] = h
	if c.nc != nil {
		if err := c.bindLocked(name); err != nil {
			log.Error().Err(err).Str("event", name).Msg("failed to bind NATS subject")
		}
	}
}

// Unsubscribe removes the handler and drops the subject binding.
func (c *NATSChannel) Unsubscribe(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.handlers, name)
	if sub, ok := c.subs[name]; ok {
		if err := sub.Unsubscribe(); err != nil {
			log.Error().Err(err).Str("event", name).Msg("failed to unsubscribe NATS subject")
		}
		delete(c.subs, name)
	}
}

// Emit publishes an outbound event on its subject.
func (c *NATSChannel) Emit(name string, payload any) error {
	c.mu.Lock()
	nc := c.nc
	c.mu.Unlock()

	if nc == nil {
		return fmt.Errorf("emit %s: not connected", name)
	}

	var data []byte
	if payload != nil {
		var err error
		data, err = json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal %s payload: %w", name, err)
		}
	}

	if err := nc.Publish(c.subject(name), data); err != nil {
		return fmt.Errorf("publish %s: %w", name, err)
	}
	return nil
}

// Close drains subscriptions and closes the connection.
func (c *NATSChannel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for name, sub := range c.subs {
		if err := sub.Unsubscribe(); err != nil {
			log.Error().Err(err).Str("event", name).Msg("failed to unsubscribe NATS subject")
		}
		delete(c.subs, name)
	}
	if c.nc != nil {
		c.nc.Close()
		c.nc = nil
	}
	return nil
}

// bindLocked creates the subject subscription for name. Caller holds c.mu.
// All handlers funnel through a single dispatch path so delivery stays
// serialized per subscription callback.
func (c *NATSChannel) bindLocked(name string) error {
	if _, ok := c.subs[name]; ok {
		return nil
	}
	sub, err := c.nc.Subscribe(c.subject(name), func(msg *nats.Msg) {
		log.Debug().Str("event", name).Str("subject", msg.Subject).Msg("inbound event")
		c.dispatch(name, msg.Data)
	})
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", c.subject(name), err)
	}
	c.subs[name] = sub
	return nil
}

func (c *NATSChannel) subject(name string) string {
	return c.config.SubjectPrefix + "." + name
}

func (c *NATSChannel) dispatch(name string, data json.RawMessage) {
	c.mu.Lock()
	h := c.handlers[name]
	c.mu.Unlock()

	if h == nil {
		return
	}
	h(data)
}

var _ Channel = (*NATSChannel)(nil)
