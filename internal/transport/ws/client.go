// Package ws is the chat socket client. One Client serves one chat session:
// it decodes inbound frames into envelopes, hands them to a callback in
// arrival order, and reconnects after a fixed delay when the socket closes
// unless the caller disconnected it.
package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/hammamikhairi/ottoclient/internal/domain"
	"github.com/hammamikhairi/ottoclient/internal/logger"
)

// DefaultReconnectDelay is the fixed wait before a reconnect attempt.
const DefaultReconnectDelay = 3 * time.Second

// Status is the connection state reported to the UI.
type Status int

const (
	StatusIdle Status = iota
	StatusConnecting
	StatusOpen
	StatusClosed
	StatusError
)

// String returns a human-readable status.
func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusConnecting:
		return "connecting"
	case StatusOpen:
		return "open"
	case StatusClosed:
		return "closed"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// Handler receives decoded inbound envelopes. It is called from the read
// goroutine, one envelope at a time.
type Handler func(domain.Envelope)

// Option configures the client.
type Option func(*Client)

// WithAutoReconnect toggles reconnecting after the socket closes.
func WithAutoReconnect(on bool) Option {
	return func(c *Client) { c.autoReconnect = on }
}

// WithReconnectDelay sets the fixed delay between reconnect attempts.
func WithReconnectDelay(d time.Duration) Option {
	return func(c *Client) { c.delay = d }
}

// WithUserID sets the user_id stamped on outbound messages.
func WithUserID(id string) Option {
	return func(c *Client) { c.userID = id }
}

// WithJar shares a cookie jar with the REST client so the socket
// handshake carries the session cookie.
func WithJar(jar http.CookieJar) Option {
	return func(c *Client) { c.dialer.Jar = jar }
}

// WithStatusHandler registers a callback for connection status changes.
func WithStatusHandler(fn func(Status)) Option {
	return func(c *Client) { c.onStatus = fn }
}

// outbound is the frame written for user input. user_id is always present.
type outbound struct {
	Type    domain.EnvelopeType `json:"type"`
	Content domain.Text         `json:"content"`
	UserID  string              `json:"user_id"`
}

// Client is a reconnecting chat socket.
type Client struct {
	url           string
	onMessage     Handler
	onStatus      func(Status)
	dialer        *websocket.Dialer
	userID        string
	autoReconnect bool
	delay         time.Duration
	log           *logger.Logger

	mu        sync.Mutex
	ctx       context.Context
	conn      *websocket.Conn
	gen       int // bumped whenever the current connection is replaced
	status    Status
	lastErr   error
	cancelled bool
	timer     *time.Timer

	writeMu sync.Mutex
}

// New creates a client for a session-scoped socket URL. It does not connect.
func New(rawURL string, onMessage Handler, log *logger.Logger, opts ...Option) *Client {
	c := &Client{
		url:           rawURL,
		onMessage:     onMessage,
		dialer:        &websocket.Dialer{Proxy: http.ProxyFromEnvironment, HandshakeTimeout: websocket.DefaultDialer.HandshakeTimeout},
		autoReconnect: true,
		delay:         DefaultReconnectDelay,
		log:           log.With("ws"),
		ctx:           context.Background(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// SessionURL builds the socket URL for a chat session. wsBase overrides the
// host; otherwise apiBase is used with http(s) mapped to ws(s).
func SessionURL(apiBase, wsBase, sessionID string) (string, error) {
	base := wsBase
	if base == "" {
		base = apiBase
	}
	if !strings.Contains(base, "://") {
		base = "ws://" + base
	}
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("ws: parse base url %q: %w", base, err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("ws: unsupported scheme %q", u.Scheme)
	}
	raw := strings.TrimRight(u.EscapedPath(), "/") + "/ws/chat/" + url.PathEscape(sessionID)
	if u.Path, err = url.PathUnescape(raw); err != nil {
		return "", fmt.Errorf("ws: session path %q: %w", raw, err)
	}
	u.RawPath = raw
	u.RawQuery = ""
	return u.String(), nil
}

// Connect opens the socket. Cancelling ctx disconnects the client. A failed
// dial is returned and, with auto-reconnect on, retried after the delay.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	c.cancelled = false
	c.ctx = ctx
	c.mu.Unlock()

	context.AfterFunc(ctx, c.Disconnect)
	return c.dial()
}

// Reconnect drops the current socket, cancels any pending retry and dials
// again immediately.
func (c *Client) Reconnect() error {
	c.mu.Lock()
	c.cancelled = false
	c.stopTimerLocked()
	old := c.conn
	c.conn = nil
	c.gen++
	c.mu.Unlock()

	if old != nil {
		old.Close()
	}
	c.log.Info("reconnecting to %s", c.url)
	return c.dial()
}

// Disconnect closes the socket and prevents any scheduled reconnect.
func (c *Client) Disconnect() {
	c.mu.Lock()
	if c.cancelled && c.conn == nil {
		c.mu.Unlock()
		return
	}
	c.cancelled = true
	c.gen++
	c.stopTimerLocked()
	conn := c.conn
	c.conn = nil
	c.status = StatusClosed
	c.mu.Unlock()

	if conn != nil {
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
		conn.Close()
	}
	c.log.Debug("disconnected from %s", c.url)
	c.emit(StatusClosed)
}

// Send writes a user text message. It fails with domain.ErrNotConnected
// when the socket is not open; nothing is queued.
func (c *Client) Send(text string) error {
	c.mu.Lock()
	conn := c.conn
	if c.status != StatusOpen || conn == nil {
		c.lastErr = domain.ErrNotConnected
		c.mu.Unlock()
		return domain.ErrNotConnected
	}
	frame := outbound{
		Type:    domain.EnvelopeUserMessage,
		Content: domain.Text{Content: text},
		UserID:  c.userID,
	}
	c.mu.Unlock()

	c.writeMu.Lock()
	err := conn.WriteJSON(frame)
	c.writeMu.Unlock()
	if err != nil {
		c.mu.Lock()
		c.lastErr = err
		c.mu.Unlock()
		return fmt.Errorf("ws: send: %w", err)
	}
	return nil
}

// Status returns the current connection status.
func (c *Client) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Err returns the last connection or send error.
func (c *Client) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

func (c *Client) dial() error {
	c.mu.Lock()
	if c.cancelled {
		c.mu.Unlock()
		return nil
	}
	c.gen++
	gen := c.gen
	ctx := c.ctx
	c.status = StatusConnecting
	c.mu.Unlock()
	c.emit(StatusConnecting)

	conn, _, err := c.dialer.DialContext(ctx, c.url, nil)

	c.mu.Lock()
	if gen != c.gen || c.cancelled {
		c.mu.Unlock()
		if conn != nil {
			conn.Close()
		}
		return nil
	}
	if err != nil {
		c.lastErr = err
		c.status = StatusError
		retry := c.scheduleLocked(gen)
		c.mu.Unlock()
		c.log.Warn("dial %s failed (retry=%t): %v", c.url, retry, err)
		c.emit(StatusError)
		return fmt.Errorf("ws: dial %s: %w", c.url, err)
	}
	c.conn = conn
	c.status = StatusOpen
	c.lastErr = nil
	c.mu.Unlock()

	c.log.Info("connected to %s", c.url)
	c.emit(StatusOpen)
	go c.readLoop(conn, gen)
	return nil
}

func (c *Client) readLoop(conn *websocket.Conn, gen int) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			c.handleClose(conn, gen, err)
			return
		}

		var env domain.Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			c.log.Warn("dropping malformed frame (%d bytes): %v", len(data), err)
			continue
		}
		if c.onMessage != nil {
			c.onMessage(env)
		}
	}
}

func (c *Client) handleClose(conn *websocket.Conn, gen int, cause error) {
	conn.Close()

	c.mu.Lock()
	if gen != c.gen {
		// Replaced by Reconnect or torn down by Disconnect.
		c.mu.Unlock()
		return
	}
	c.conn = nil
	c.status = StatusClosed
	retry := c.scheduleLocked(gen)
	c.mu.Unlock()

	c.log.Info("socket closed (retry=%t): %v", retry, cause)
	c.emit(StatusClosed)
}

// scheduleLocked arms the reconnect timer for connection gen. Callers hold mu.
func (c *Client) scheduleLocked(gen int) bool {
	if !c.autoReconnect || c.cancelled || c.ctx.Err() != nil {
		return false
	}
	c.stopTimerLocked()
	c.timer = time.AfterFunc(c.delay, func() {
		c.mu.Lock()
		stale := gen != c.gen || c.cancelled
		c.timer = nil
		c.mu.Unlock()
		if stale {
			return
		}
		if err := c.dial(); err != nil {
			c.log.Debug("reconnect attempt failed: %v", err)
		}
	})
	return true
}

func (c *Client) stopTimerLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

func (c *Client) emit(s Status) {
	if c.onStatus != nil {
		c.onStatus(s)
	}
}
