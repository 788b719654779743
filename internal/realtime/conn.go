// Package realtime implements the editor-side connection to a registry room:
// a websocket client with automatic reconnection, plus the session logic that
// turns incoming change messages into reconciliation work.
package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/VaughnVernon/SchemaMinder-sub003/internal/core/domain"
)

const (
	defaultHandshakeTimeout = 10 * time.Second
	defaultPingInterval     = 30 * time.Second
	defaultWriteWait        = 10 * time.Second
	reconnectMinDelay       = time.Second
	reconnectMaxDelay       = 30 * time.Second
	outboundBuffer          = 64
)

// Config describes one room connection.
type Config struct {
	// URL is the websocket endpoint, e.g. "ws://localhost:8080/ws".
	URL string

	// Token authenticates the connection; it rides in the query string
	// because browser websockets cannot set headers, and this client mirrors
	// that handshake.
	Token string

	// RegistryID selects the room together with the token's tenant.
	RegistryID string

	// UserID is this session's identity, stamped on outbound messages.
	UserID string

	// QueueOutbound buffers messages sent while disconnected and flushes
	// them on reconnect. When false, such messages are dropped with a log
	// line. Either way Send never fails.
	QueueOutbound bool

	HandshakeTimeout time.Duration
	PingInterval     time.Duration

	// Reconnect backoff bounds; defaulted when zero.
	ReconnectMinDelay time.Duration
	ReconnectMaxDelay time.Duration
}

// Conn maintains a websocket connection to a registry room, redialing with
// exponential backoff when the connection drops. Connection state is
// transport-level signal only; it must never corrupt registry state.
type Conn struct {
	cfg    Config
	logger *slog.Logger

	mu        sync.Mutex
	ws        *websocket.Conn
	connected bool
	queued    []domain.ChangeMessage
	closed    bool

	outbound chan domain.ChangeMessage

	// Callbacks fire from the connection goroutine. Set before Run.
	OnConnect    func()
	OnDisconnect func(error)
	OnMessage    func(*domain.ChangeMessage)
	OnError      func(error)
}

// NewConn creates a connection. Call Run to start it.
func NewConn(cfg Config, logger *slog.Logger) *Conn {
	if cfg.HandshakeTimeout <= 0 {
		cfg.HandshakeTimeout = defaultHandshakeTimeout
	}
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = defaultPingInterval
	}
	if cfg.ReconnectMinDelay <= 0 {
		cfg.ReconnectMinDelay = reconnectMinDelay
	}
	if cfg.ReconnectMaxDelay <= 0 {
		cfg.ReconnectMaxDelay = reconnectMaxDelay
	}
	return &Conn{
		cfg:      cfg,
		logger:   logger.With("component", "realtime_conn", "registry_id", cfg.RegistryID),
		outbound: make(chan domain.ChangeMessage, outboundBuffer),
	}
}

// IsConnected reports the current transport state.
func (c *Conn) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// Send queues a change message for the room. It stamps identity and
// timestamp, and it never fails: when disconnected the message is either
// queued for the next connection or dropped, per QueueOutbound.
func (c *Conn) Send(msg domain.ChangeMessage) {
	msg.UserID = c.cfg.UserID
	msg.Source = domain.SourceClient
	if msg.Timestamp == "" {
		msg.Timestamp = time.Now().UTC().Format(domain.TimestampLayout)
	}

	c.mu.Lock()
	connected := c.connected
	if !connected {
		if c.cfg.QueueOutbound {
			c.queued = append(c.queued, msg)
			c.mu.Unlock()
			c.logger.Debug("queued message while disconnected", "message_type", msg.Type)
			return
		}
		c.mu.Unlock()
		c.logger.Warn("dropping message while disconnected", "message_type", msg.Type)
		return
	}
	c.mu.Unlock()

	select {
	case c.outbound <- msg:
	default:
		c.logger.Warn("outbound buffer full, dropping message", "message_type", msg.Type)
	}
}

// Run dials the room and keeps the connection alive until the context is
// canceled. It blocks; run it as a goroutine.
func (c *Conn) Run(ctx context.Context) {
	delay := c.cfg.ReconnectMinDelay

	for {
		if ctx.Err() != nil || c.isClosed() {
			return
		}

		established, err := c.runOnce(ctx)
		if ctx.Err() != nil || c.isClosed() {
			return
		}

		// A cycle that actually connected resets the backoff; otherwise a
		// transient blip hours later would inherit stale long delays.
		if established {
			delay = c.cfg.ReconnectMinDelay
		}

		if err != nil {
			c.logger.Warn("connection lost, reconnecting", "error", err, "delay", delay)
			if c.OnError != nil {
				c.OnError(err)
			}
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}

		delay *= 2
		if delay > c.cfg.ReconnectMaxDelay {
			delay = c.cfg.ReconnectMaxDelay
		}
	}
}

func (c *Conn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// dialURL builds the endpoint with token and registry query parameters.
func (c *Conn) dialURL() (string, error) {
	u, err := url.Parse(c.cfg.URL)
	if err != nil {
		return "", fmt.Errorf("parse url: %w", err)
	}
	q := u.Query()
	q.Set("token", c.cfg.Token)
	q.Set("registryId", c.cfg.RegistryID)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// runOnce performs a single connect/read cycle and returns when the
// connection drops. The bool reports whether the connection was established
// at all, so the caller can reset its reconnect backoff.
func (c *Conn) runOnce(ctx context.Context) (bool, error) {
	endpoint, err := c.dialURL()
	if err != nil {
		return false, err
	}

	dialer := websocket.Dialer{HandshakeTimeout: c.cfg.HandshakeTimeout}
	ws, _, err := dialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		return false, fmt.Errorf("dial: %w", err)
	}

	c.mu.Lock()
	c.ws = ws
	c.connected = true
	flush := c.queued
	c.queued = nil
	c.mu.Unlock()

	c.logger.Info("connected to registry room")
	if c.OnConnect != nil {
		c.OnConnect()
	}

	for _, msg := range flush {
		select {
		case c.outbound <- msg:
		default:
			c.logger.Warn("outbound buffer full, dropping queued message", "message_type", msg.Type)
		}
	}

	writeDone := make(chan struct{})
	connCtx, cancel := context.WithCancel(ctx)
	go c.writeLoop(connCtx, ws, writeDone)

	readErr := c.readLoop(ws)

	cancel()
	<-writeDone
	_ = ws.Close()

	c.mu.Lock()
	c.ws = nil
	c.connected = false
	c.mu.Unlock()

	if c.OnDisconnect != nil {
		c.OnDisconnect(readErr)
	}
	return true, readErr
}

// readLoop decodes incoming change messages until the connection fails.
// Malformed messages are dropped whole; one bad message never tears down the
// connection or touches local state.
func (c *Conn) readLoop(ws *websocket.Conn) error {
	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			return err
		}

		var msg domain.ChangeMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			c.logger.Warn("failed to decode change message", "error", err)
			continue
		}
		if !msg.IsWellFormed() {
			c.logger.Warn("dropping malformed change message",
				"message_type", msg.Type,
				"entity_type", msg.EntityType,
			)
			continue
		}

		if c.OnMessage != nil {
			c.OnMessage(&msg)
		}
	}
}

// writeLoop drains the outbound channel and keeps the connection alive with
// pings.
func (c *Conn) writeLoop(ctx context.Context, ws *websocket.Conn, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(c.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case msg := <-c.outbound:
			_ = ws.SetWriteDeadline(time.Now().Add(defaultWriteWait))
			if err := ws.WriteJSON(msg); err != nil {
				c.logger.Warn("failed to write message", "error", err)
				return
			}

		case <-ticker.C:
			_ = ws.SetWriteDeadline(time.Now().Add(defaultWriteWait))
			if err := ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.logger.Debug("failed to send ping", "error", err)
				return
			}
		}
	}
}

// Close tears the connection down without reconnecting. Prefer canceling the
// Run context; Close exists for callers that own neither.
func (c *Conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	if c.ws != nil {
		return c.ws.Close()
	}
	return nil
}
