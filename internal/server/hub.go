package server

import (
	"context"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"checkctl/internal/system"
)

// client is one connected viewer. Outbound frames go through the buffered
// send channel; the write pump drains it.
type client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
}

func newClient(conn *websocket.Conn) *client {
	return &client{
		id:   uuid.New().String(),
		conn: conn,
		send: make(chan []byte, 256),
	}
}

// directFrame addresses one frame to one viewer, used for range answers.
type directFrame struct {
	c     *client
	frame []byte
}

// hub tracks the connected viewers and fans mutation broadcasts out to all of
// them, the originator included. Everything runs on the hub goroutine, so the
// clients map needs no lock and only the hub ever writes to or closes a
// client's send channel.
type hub struct {
	clients    map[*client]bool
	broadcast  chan []byte
	direct     chan directFrame
	register   chan *client
	unregister chan *client
	size       atomic.Int64
}

func newHub() *hub {
	return &hub{
		clients:    make(map[*client]bool),
		broadcast:  make(chan []byte, 64),
		direct:     make(chan directFrame, 64),
		register:   make(chan *client),
		unregister: make(chan *client),
	}
}

func (h *hub) run(ctx context.Context) {
	for {
		select {
		case c := <-h.register:
			h.clients[c] = true
			h.size.Store(int64(len(h.clients)))
			system.Logger.Info("viewer connected", "id", c.id, "total", len(h.clients))
		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
				h.size.Store(int64(len(h.clients)))
				system.Logger.Info("viewer disconnected", "id", c.id, "total", len(h.clients))
			}
		case frame := <-h.broadcast:
			for c := range h.clients {
				h.deliver(c, frame)
			}
		case m := <-h.direct:
			// dropped if the viewer already left
			if h.clients[m.c] {
				h.deliver(m.c, m.frame)
			}
		case <-ctx.Done():
			for c := range h.clients {
				delete(h.clients, c)
				close(c.send)
			}
			h.size.Store(0)
			return
		}
	}
}

// deliver hands a frame to one registered viewer. Runs on the hub goroutine
// only. A viewer that cannot keep up is cut off.
func (h *hub) deliver(c *client, frame []byte) {
	select {
	case c.send <- frame:
	default:
		delete(h.clients, c)
		close(c.send)
		h.size.Store(int64(len(h.clients)))
	}
}

// count returns the current viewer count, safe from any goroutine.
func (h *hub) count() int {
	return int(h.size.Load())
}
