// Package hook is the websocket client for the desktop automation
// engine ("hook engine") that owns the live platform session. It
// exposes the engine's send primitives, its login/user queries, raw
// queries against the platform's local stores, and the engine's event
// stream. It does no pacing of its own; see the gateway package.
package hook

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const callTimeout = 60 * time.Second

type Client struct {
	url       string
	token     string
	conn      *websocket.Conn
	connected bool
	mu        sync.Mutex

	pending   map[string]chan frame
	pendingMu sync.Mutex

	events chan Event
	done   chan struct{}
}

func NewClient(url, token string) *Client {
	return &Client{
		url:     url,
		token:   token,
		pending: make(map[string]chan frame),
		events:  make(chan Event, 100),
		done:    make(chan struct{}),
	}
}

func (c *Client) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// Events is the stream of pushes from the engine. Closed-over by the
// read loop; drained by the bot.
func (c *Client) Events() <-chan Event { return c.events }

// Done is closed when the connection is lost.
func (c *Client) Done() <-chan struct{} { return c.done }

// wsEndpoint normalizes the configured engine address to a websocket
// URL. An explicit ws:// or wss:// scheme is honored, http(s) maps to
// the matching websocket scheme, and a bare host:port defaults to
// ws:// since hook engines are loopback-local.
func wsEndpoint(url string) string {
	url = strings.TrimSuffix(url, "/")
	switch {
	case strings.HasPrefix(url, "ws://"), strings.HasPrefix(url, "wss://"):
		return url
	case strings.HasPrefix(url, "https://"):
		return "wss://" + strings.TrimPrefix(url, "https://")
	case strings.HasPrefix(url, "http://"):
		return "ws://" + strings.TrimPrefix(url, "http://")
	}
	return "ws://" + url
}

func (c *Client) Dial() error {
	wsURL := wsEndpoint(c.url)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", wsURL, err)
	}

	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()

	go c.readLoop()

	if err := c.connect(); err != nil {
		conn.Close()
		return fmt.Errorf("connect: %w", err)
	}

	c.mu.Lock()
	c.connected = true
	c.mu.Unlock()

	slog.Info("hook: connected", "url", wsURL)
	return nil
}

func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.connected = false
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
}

func (c *Client) connect() error {
	resp, err := c.call("connect", map[string]interface{}{
		"token":    c.token,
		"client":   "wxbridge",
		"protocol": 1,
	})
	if err != nil {
		return err
	}
	if resp.Error != nil {
		return fmt.Errorf("%s: %s", resp.Error.Code, resp.Error.Message)
	}
	if !resp.OK {
		return fmt.Errorf("rejected")
	}
	return nil
}

func (c *Client) readLoop() {
	defer func() {
		select {
		case <-c.done:
		default:
			close(c.done)
		}
		c.mu.Lock()
		c.connected = false
		c.mu.Unlock()
	}()

	for {
		c.mu.Lock()
		conn := c.conn
		c.mu.Unlock()
		if conn == nil {
			return
		}

		_, data, err := conn.ReadMessage()
		if err != nil {
			slog.Debug("hook readLoop ended", "err", err)
			return
		}

		var msg frame
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}

		if msg.Type == "res" && msg.ID != "" {
			c.pendingMu.Lock()
			ch, ok := c.pending[msg.ID]
			if ok {
				delete(c.pending, msg.ID)
			}
			c.pendingMu.Unlock()
			if ok {
				ch <- msg
				close(ch)
				continue
			}
		}

		if msg.Type == "event" {
			select {
			case c.events <- Event{Name: msg.Event, Payload: msg.Payload}:
			default:
				slog.Warn("hook: event buffer full, dropping", "event", msg.Event)
			}
		}
	}
}

func (c *Client) call(method string, params interface{}) (frame, error) {
	id := uuid.NewString()

	ch := make(chan frame, 1)
	c.pendingMu.Lock()
	c.pending[id] = ch
	c.pendingMu.Unlock()

	req := frame{Type: "req", ID: id, Method: method, Params: params}
	data, _ := json.Marshal(req)

	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return frame{}, fmt.Errorf("not connected")
	}

	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		c.pendingMu.Lock()
		delete(c.pending, id)
		c.pendingMu.Unlock()
		return frame{}, err
	}

	select {
	case resp := <-ch:
		return resp, nil
	case <-time.After(callTimeout):
		c.pendingMu.Lock()
		delete(c.pending, id)
		c.pendingMu.Unlock()
		return frame{}, fmt.Errorf("timeout waiting for %s response", method)
	case <-c.done:
		return frame{}, fmt.Errorf("connection closed")
	}
}

// callOK issues a request and folds the engine's rejection into an error.
func (c *Client) callOK(method string, params interface{}) (json.RawMessage, error) {
	resp, err := c.call(method, params)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", method, err)
	}
	if resp.Error != nil {
		return nil, fmt.Errorf("%s: %s: %s", method, resp.Error.Code, resp.Error.Message)
	}
	if !resp.OK {
		return nil, fmt.Errorf("%s rejected", method)
	}
	return resp.Payload, nil
}
