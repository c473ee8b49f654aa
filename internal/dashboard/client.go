package dashboard

import (
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// ClientConfig configures the websocket connection manager.
type ClientConfig struct {
	ServerURL      string        // http(s) or ws(s) base URL of the platform
	ReconnectDelay time.Duration // flat delay between reconnect attempts
	BackoffEnabled bool          // grow the delay exponentially up to BackoffMax
	BackoffMax     time.Duration
}

type connState int

const (
	stateDisconnected connState = iota
	stateConnecting
	stateConnected
)

// Client owns the transport lifecycle: it dials the platform's /ws endpoint,
// forwards every inbound frame to the router, flips the store's connectivity
// flag, and schedules exactly one reconnect after each close or error.
// Retries repeat indefinitely until Close.
type Client struct {
	cfg    ClientConfig
	url    string
	router *Router
	store  *Store
	clk    clock.Clock
	dialer *websocket.Dialer
	log    *zap.Logger

	mu       sync.Mutex
	state    connState
	conn     *websocket.Conn
	retry    *clock.Timer
	attempts int
	closed   bool
	wg       sync.WaitGroup
}

// NewClient creates a connection manager. It does not dial until Establish.
func NewClient(cfg ClientConfig, store *Store, router *Router, clk clock.Clock, log *zap.Logger) (*Client, error) {
	endpoint, err := EndpointURL(cfg.ServerURL)
	if err != nil {
		return nil, err
	}
	if cfg.ReconnectDelay <= 0 {
		cfg.ReconnectDelay = 3 * time.Second
	}
	if cfg.BackoffEnabled && cfg.BackoffMax <= 0 {
		cfg.BackoffMax = time.Minute
	}
	return &Client{
		cfg:    cfg,
		url:    endpoint,
		router: router,
		store:  store,
		clk:    clk,
		dialer: &websocket.Dialer{HandshakeTimeout: 10 * time.Second},
		log:    log.Named("ws"),
	}, nil
}

// EndpointURL resolves the websocket endpoint for a platform base URL.
// https origins get wss, everything else ws.
func EndpointURL(base string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse server url: %w", err)
	}
	switch u.Scheme {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("unsupported server url scheme %q", u.Scheme)
	}
	u.Path = "/ws"
	return u.String(), nil
}

// Establish opens the connection. It is idempotent: while connected,
// connecting, or with a reconnect pending, duplicate calls are no-ops.
func (c *Client) Establish() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || c.state != stateDisconnected || c.retry != nil {
		return
	}
	c.state = stateConnecting
	c.wg.Add(1)
	go c.connect()
}

// Close tears the client down: the socket is closed, the pending reconnect
// timer is cancelled, and no further reconnects happen. Terminal.
func (c *Client) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	if c.retry != nil {
		c.retry.Stop()
		c.retry = nil
	}
	conn := c.conn
	c.mu.Unlock()

	if conn != nil {
		conn.Close()
	}
	c.wg.Wait()
	c.store.setConnected(false)
	c.log.Info("client closed")
}

func (c *Client) connect() {
	defer c.wg.Done()

	conn, _, err := c.dialer.Dial(c.url, nil)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		if conn != nil {
			conn.Close()
		}
		return
	}
	if err != nil {
		c.state = stateDisconnected
		c.scheduleReconnectLocked()
		c.mu.Unlock()
		c.log.Warn("connect failed", zap.String("url", c.url), zap.Error(err))
		return
	}
	c.conn = conn
	c.state = stateConnected
	c.attempts = 0
	c.mu.Unlock()

	c.store.setConnected(true)
	c.log.Info("connected", zap.String("url", c.url))

	c.readLoop(conn)
}

// readLoop forwards frames until the connection dies. Runtime errors take
// the same path as a clean close: flag down, one reconnect scheduled.
func (c *Client) readLoop(conn *websocket.Conn) {
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			break
		}
		c.router.HandleRaw(msg)
	}
	conn.Close()

	// Flag must drop before anything else can run.
	c.store.setConnected(false)

	c.mu.Lock()
	c.conn = nil
	c.state = stateDisconnected
	if !c.closed {
		c.scheduleReconnectLocked()
	}
	c.mu.Unlock()
	c.log.Info("disconnected")
}

func (c *Client) scheduleReconnectLocked() {
	if c.closed || c.retry != nil {
		return
	}
	delay := c.nextDelayLocked()
	c.attempts++
	c.log.Info("reconnect scheduled", zap.Duration("delay", delay))
	c.retry = c.clk.AfterFunc(delay, c.retryFired)
}

// nextDelayLocked returns the delay before the next reconnect attempt: the
// flat configured delay, or, with backoff enabled, the delay doubled per
// consecutive failed attempt up to the ceiling.
func (c *Client) nextDelayLocked() time.Duration {
	delay := c.cfg.ReconnectDelay
	if !c.cfg.BackoffEnabled {
		return delay
	}
	for i := 0; i < c.attempts && delay < c.cfg.BackoffMax; i++ {
		delay *= 2
	}
	if delay > c.cfg.BackoffMax {
		delay = c.cfg.BackoffMax
	}
	return delay
}

func (c *Client) retryFired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.retry = nil
	if c.closed || c.state != stateDisconnected {
		return
	}
	c.state = stateConnecting
	c.wg.Add(1)
	go c.connect()
}
