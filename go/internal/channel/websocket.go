package channel

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// WebSocketConfig holds configuration for the WebSocket transport.
type WebSocketConfig struct {
	URL             string
	WriteTimeout    time.Duration
	ReadTimeout     time.Duration
	PingInterval    time.Duration
	MaxMessageSize  int64
	ReadBufferSize  int
	WriteBufferSize int
	RequestHeader   http.Header
}

// DefaultWebSocketConfig returns default WebSocket transport configuration.
func DefaultWebSocketConfig(url string) WebSocketConfig {
	return WebSocketConfig{
		URL:             url,
		WriteTimeout:    10 * time.Second,
		ReadTimeout:     60 * time.Second,
		PingInterval:    30 * time.Second,
		MaxMessageSize:  8192,
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}
}

// WebSocketChannel implements Channel over a single client WebSocket
// connection. Inbound envelopes are dispatched to subscribers from the read
// pump, so handlers run serialized in arrival order.
type WebSocketChannel struct {
	config WebSocketConfig

	mu       sync.RWMutex
	handlers map[string]Handler
	conn     *websocket.Conn

	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

// NewWebSocket creates an unconnected WebSocket channel. Subscribe before
// calling Connect so the synthetic connect event is not missed.
func NewWebSocket(config WebSocketConfig) *WebSocketChannel {
	return &WebSocketChannel{
		config:   config,
		handlers: make(map[string]Handler),
		send:     make(chan []byte, 256),
		done:     make(chan struct{}),
	}
}

// Connect dials the server, starts the read and write pumps, and dispatches
// the synthetic connect event.
func (c *WebSocketChannel) Connect(ctx context.Context) error {
	dialer := websocket.Dialer{
		ReadBufferSize:  c.config.ReadBufferSize,
		WriteBufferSize: c.config.WriteBufferSize,
	}

	conn, _, err := dialer.DialContext(ctx, c.config.URL, c.config.RequestHeader)
	if err != nil {
		return fmt.Errorf("dial %s: %w", c.config.URL, err)
	}

	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()

	go c.writePump(conn)
	go c.readPump(conn)

	log.Info().Str("url", c.config.URL).Msg("WebSocket connected")
	c.dispatch(EventConnect, nil)
	return nil
}

// Subscribe registers the handler for an inbound event name.
func (c *WebSocketChannel) Subscribe(name string, h Handler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers[name] = h
}

// Unsubscribe removes the handler for an inbound event name.
func (c *WebSocketChannel) Unsubscribe(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.handlers, name)
}

// Emit queues an outbound event. A nil payload sends an envelope without data.
func (c *WebSocketChannel) Emit(name string, payload any) error {
	evt := Event{Name: name}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal %s payload: %w", name, err)
		}
		evt.Data = data
	}

	frame, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal %s envelope: %w", name, err)
	}

	select {
	case <-c.done:
		return fmt.Errorf("emit %s: channel closed", name)
	case c.send <- frame:
		return nil
	default:
		log.Warn().Str("event", name).Msg("send buffer full, dropping outbound event")
		return fmt.Errorf("emit %s: send buffer full", name)
	}
}

// Close tears down the connection and stops both pumps.
func (c *WebSocketChannel) Close() error {
	c.closeOnce.Do(func() { close(c.done) })

	c.mu.Lock()
	conn := c.conn
	c.conn = nil
	c.mu.Unlock()

	if conn != nil {
		return conn.Close()
	}
	return nil
}

func (c *WebSocketChannel) dispatch(name string, data json.RawMessage) {
	c.mu.RLock()
	h := c.handlers[name]
	c.mu.RUnlock()

	if h == nil {
		log.Debug().Str("event", name).Msg("no subscriber for inbound event")
		return
	}
	h(data)
}

// readPump reads envelopes off the socket and dispatches them to subscribers.
func (c *WebSocketChannel) readPump(conn *websocket.Conn) {
	defer func() {
		c.dispatch(EventDisconnect, nil)
		c.Close()
	}()

	conn.SetReadLimit(c.config.MaxMessageSize)
	conn.SetReadDeadline(time.Now().Add(c.config.ReadTimeout))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(c.config.ReadTimeout))
		return nil
	})

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				log.Error().Err(err).Msg("unexpected WebSocket close error")
			}
			return
		}
		conn.SetReadDeadline(time.Now().Add(c.config.ReadTimeout))

		var evt Event
		if err := json.Unmarshal(message, &evt); err != nil {
			log.Error().Err(err).Msg("failed to parse inbound envelope")
			continue
		}
		if evt.Name == "" {
			log.Warn().RawJSON("message", message).Msg("inbound envelope missing event name")
			continue
		}

		log.Debug().Str("event", evt.Name).Msg("inbound event")
		c.dispatch(evt.Name, evt.Data)
	}
}

// writePump sends queued frames and keeps the connection alive with pings.
func (c *WebSocketChannel) writePump(conn *websocket.Conn) {
	ticker := time.NewTicker(c.config.PingInterval)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case <-c.done:
			conn.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout))
			conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return

		case frame := <-c.send:
			conn.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout))
			if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				log.Error().Err(err).Msg("failed to write message to WebSocket")
				return
			}

		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Error().Err(err).Msg("failed to send ping")
				return
			}
		}
	}
}

var _ Channel = (*WebSocketChannel)(nil)
