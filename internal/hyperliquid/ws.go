package hyperliquid

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

// DefaultWSEndpoint is the production websocket endpoint.
const DefaultWSEndpoint = "wss://api.hyperliquid.xyz/ws"

// WSConfig configures websocket client behavior.
type WSConfig struct {
	// ReconnectDelay is initial delay before reconnect attempt.
	ReconnectDelay time.Duration
	// MaxReconnectDelay is maximum delay between reconnect attempts.
	MaxReconnectDelay time.Duration
	// PingInterval is interval for sending keep-alive pings. The venue
	// expects JSON pings, not websocket control frames.
	PingInterval time.Duration
	// ReadTimeout is timeout for reading messages.
	ReadTimeout time.Duration
	// WriteTimeout is timeout for writing messages.
	WriteTimeout time.Duration
}

// DefaultWSConfig returns default websocket configuration.
func DefaultWSConfig() WSConfig {
	return WSConfig{
		ReconnectDelay:    1 * time.Second,
		MaxReconnectDelay: 30 * time.Second,
		PingInterval:      30 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      10 * time.Second,
	}
}

// MidsUpdate is one allMids push: the current mid price per coin, as
// decimal strings.
type MidsUpdate struct {
	Mids map[string]string
}

// MidsClient streams live mid prices over the venue websocket. It holds a
// single allMids subscription, re-established automatically after every
// reconnect.
type MidsClient struct {
	endpoint string
	config   WSConfig

	conn   *websocket.Conn
	connMu sync.Mutex
	closed atomic.Bool

	updates chan MidsUpdate

	done chan struct{}
	wg   sync.WaitGroup

	reconnecting atomic.Bool
}

// NewMidsClient connects and subscribes to the allMids channel.
func NewMidsClient(ctx context.Context, endpoint string, config *WSConfig) (*MidsClient, error) {
	if endpoint == "" {
		endpoint = DefaultWSEndpoint
	}
	cfg := DefaultWSConfig()
	if config != nil {
		cfg = *config
	}

	c := &MidsClient{
		endpoint: endpoint,
		config:   cfg,
		// Buffer absorbs bursts; readLoop blocks rather than drop updates.
		updates: make(chan MidsUpdate, 1024),
		done:    make(chan struct{}),
	}

	if err := c.connect(ctx); err != nil {
		return nil, err
	}
	if err := c.subscribe(); err != nil {
		c.conn.Close()
		return nil, err
	}

	c.wg.Add(1)
	go c.readLoop()

	c.wg.Add(1)
	go c.pingLoop()

	return c, nil
}

// Updates returns the stream of mid-price pushes. The channel closes when
// the client does.
func (c *MidsClient) Updates() <-chan MidsUpdate {
	return c.updates
}

// connect establishes the websocket connection.
func (c *MidsClient) connect(ctx context.Context) error {
	c.connMu.Lock()
	defer c.connMu.Unlock()

	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}

	conn, _, err := dialer.DialContext(ctx, c.endpoint, nil)
	if err != nil {
		return fmt.Errorf("websocket dial: %w", err)
	}

	c.conn = conn
	return nil
}

// subscribe sends the allMids subscription request.
func (c *MidsClient) subscribe() error {
	req := wsRequest{
		Method: "subscribe",
		Subscription: &wsSubscription{
			Type: "allMids",
		},
	}

	c.connMu.Lock()
	defer c.connMu.Unlock()

	if c.conn == nil {
		return fmt.Errorf("not connected")
	}

	c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout))
	if err := c.conn.WriteJSON(req); err != nil {
		return fmt.Errorf("write subscribe: %w", err)
	}
	return nil
}

// Close closes the websocket connection and the updates channel.
func (c *MidsClient) Close() error {
	if c.closed.Swap(true) {
		return nil // Already closed
	}

	close(c.done)

	c.connMu.Lock()
	if c.conn != nil {
		c.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		c.conn.Close()
	}
	c.connMu.Unlock()

	c.wg.Wait()
	close(c.updates)
	return nil
}

// readLoop reads messages and dispatches mid updates to the channel.
func (c *MidsClient) readLoop() {
	defer c.wg.Done()

	reconnectDelay := c.config.ReconnectDelay

	for !c.closed.Load() {
		c.connMu.Lock()
		conn := c.conn
		c.connMu.Unlock()

		if conn == nil {
			select {
			case <-c.done:
				return
			case <-time.After(100 * time.Millisecond):
				continue
			}
		}

		conn.SetReadDeadline(time.Now().Add(c.config.ReadTimeout))

		_, message, err := conn.ReadMessage()
		if err != nil {
			if c.closed.Load() {
				return
			}

			// Connection error - attempt reconnect with exponential backoff
			if !c.reconnecting.Swap(true) {
				go c.reconnect(reconnectDelay)
			}

			reconnectDelay = reconnectDelay * 2
			if reconnectDelay > c.config.MaxReconnectDelay {
				reconnectDelay = c.config.MaxReconnectDelay
			}

			select {
			case <-c.done:
				return
			case <-time.After(100 * time.Millisecond):
				continue
			}
		}

		// Reset delay on successful read
		reconnectDelay = c.config.ReconnectDelay

		c.handleMessage(message)
	}
}

// reconnect attempts to reconnect and resubscribe.
func (c *MidsClient) reconnect(delay time.Duration) {
	defer c.reconnecting.Store(false)

	if c.closed.Load() {
		return
	}

	select {
	case <-c.done:
		return
	case <-time.After(delay):
	}

	c.connMu.Lock()
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
	c.connMu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := c.connect(ctx); err != nil {
		// Reconnect failed, will retry on next read error
		return
	}

	// The subscription does not survive the old connection.
	if err := c.subscribe(); err != nil {
		return
	}
}

// handleMessage processes an incoming websocket message.
func (c *MidsClient) handleMessage(message []byte) {
	var msg wsMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		return
	}

	if msg.Channel != "allMids" || msg.Data == nil {
		// subscriptionResponse and pong acknowledgements need no handling
		return
	}

	var data wsMidsData
	if err := json.Unmarshal(msg.Data, &data); err != nil {
		return
	}
	if len(data.Mids) == 0 {
		return
	}

	// Block until we can send - never drop updates
	select {
	case c.updates <- MidsUpdate{Mids: data.Mids}:
	case <-c.done:
	}
}

// pingLoop sends periodic JSON pings to keep the connection alive.
func (c *MidsClient) pingLoop() {
	defer c.wg.Done()

	ticker := time.NewTicker(c.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.connMu.Lock()
			if c.conn != nil {
				c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout))
				if err := c.conn.WriteJSON(wsRequest{Method: "ping"}); err != nil {
					// Connection might be dead, reader will handle reconnect
				}
			}
			c.connMu.Unlock()
		}
	}
}

// Websocket message types

type wsRequest struct {
	Method       string          `json:"method"`
	Subscription *wsSubscription `json:"subscription,omitempty"`
}

type wsSubscription struct {
	Type string `json:"type"`
}

type wsMessage struct {
	Channel string          `json:"channel"`
	Data    json.RawMessage `json:"data"`
}

type wsMidsData struct {
	Mids map[string]string `json:"mids"`
}
