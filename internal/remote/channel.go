package remote

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/gorilla/websocket"

	"checkctl/internal/system"
)

// State is the lifecycle of the single connection to the authority.
type State int

const (
	StateConnecting State = iota
	StateOpen
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateClosed:
		return "closed"
	}
	return "unknown"
}

// Handler receives one decoded inbound event.
type Handler func(Event)

// Channel owns the one websocket connection of the session. It serializes
// outgoing commands to wire text and fans decoded inbound events out to every
// registered handler, in strict arrival order. There is no reconnection: once
// the connection drops the session is dead for sync until the process
// restarts, and nothing sent while not open is buffered or retried.
// A Send before open or after close is a silent no-op.
type Channel struct {
	mu       sync.Mutex
	state    State
	conn     *websocket.Conn
	handlers []Handler
	onClose  []func()
	closed   bool // close callbacks fired

	// wmu serializes writers. Commands are issued from independent
	// goroutines while gorilla/websocket allows one concurrent writer.
	wmu sync.Mutex
}

// NewChannel returns a channel in the connecting state.
func NewChannel() *Channel {
	return &Channel{state: StateConnecting}
}

// State returns the current lifecycle state.
func (c *Channel) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// OnMessage registers a handler. Every handler receives every inbound event;
// delivery is a broadcast, not a single-consumer queue. Handlers run on the
// read loop goroutine, one event at a time.
func (c *Channel) OnMessage(h Handler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers = append(c.handlers, h)
}

// OnClose registers a callback fired exactly once when the connection leaves
// the open state for good.
func (c *Channel) OnClose(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onClose = append(c.onClose, fn)
}

// Connect dials the authority and starts the read loop. It may be called only
// once; a failed dial leaves the channel closed.
func (c *Channel) Connect(ctx context.Context, url string) error {
	c.mu.Lock()
	if c.state != StateConnecting {
		c.mu.Unlock()
		return errors.New("channel already connected")
	}
	c.mu.Unlock()

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		c.transitionClosed()
		return fmt.Errorf("failed to dial %s: %w", url, err)
	}

	c.mu.Lock()
	c.conn = conn
	c.state = StateOpen
	c.mu.Unlock()

	go c.readLoop(conn)
	return nil
}

// Send encodes and transmits a command. Unless the channel is open this is a
// silent no-op: the command is dropped, not queued. A write failure closes
// the channel.
func (c *Channel) Send(cmd Command) {
	c.mu.Lock()
	if c.state != StateOpen {
		c.mu.Unlock()
		return
	}
	conn := c.conn
	c.mu.Unlock()

	c.wmu.Lock()
	err := conn.WriteMessage(websocket.TextMessage, []byte(cmd.Encode()))
	c.wmu.Unlock()
	if err != nil {
		system.Logger.Debug("sync channel write failed", "err", err)
		_ = conn.Close()
		c.transitionClosed()
	}
}

// Close tears the connection down.
func (c *Channel) Close() {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn != nil {
		_ = conn.Close()
	}
	c.transitionClosed()
}

func (c *Channel) readLoop(conn *websocket.Conn) {
	defer c.transitionClosed()
	for {
		kind, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if kind != websocket.TextMessage {
			continue
		}
		event, err := ParseEvent(string(data))
		if err != nil {
			// malformed and foreign frames vanish without effect
			system.Logger.Debug("dropping frame", "frame", string(data), "err", err)
			continue
		}
		c.mu.Lock()
		handlers := make([]Handler, len(c.handlers))
		copy(handlers, c.handlers)
		c.mu.Unlock()
		for _, h := range handlers {
			h(event)
		}
	}
}

func (c *Channel) transitionClosed() {
	c.mu.Lock()
	c.state = StateClosed
	fire := !c.closed
	c.closed = true
	callbacks := c.onClose
	c.mu.Unlock()
	if !fire {
		return
	}
	for _, fn := range callbacks {
		fn()
	}
}
