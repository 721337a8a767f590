package server

import (
	"net/http"

	"github.com/gorilla/websocket"

	"checkctl/internal/remote"
	"checkctl/internal/system"
)

// wsUpgrader upgrades HTTP connections to websocket. All origins are allowed;
// the wire protocol carries no credentials and the server typically binds to
// localhost.
var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// serveWS upgrades the request and runs the per-viewer pumps.
func (s *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		system.Logger.Warn("websocket upgrade failed", "err", err)
		return
	}
	c := newClient(conn)
	s.hub.register <- c
	go c.writePump()
	go s.readPump(c)
}

// readPump decodes command frames from one viewer. Mutations are applied to
// the bit store and broadcast to every viewer, the sender included; the echo
// doubles as the acknowledgment. Range queries are answered directly to the
// asking viewer with the checked indices in the clamped window.
func (s *Server) readPump(c *client) {
	defer func() {
		s.hub.unregister <- c
		_ = c.conn.Close()
	}()
	for {
		kind, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		if kind != websocket.TextMessage {
			continue
		}
		cmd, err := remote.ParseCommand(string(data))
		if err != nil {
			system.Logger.Debug("dropping frame", "id", c.id, "frame", string(data), "err", err)
			continue
		}
		switch cmd := cmd.(type) {
		case remote.RangeQuery:
			states := make(map[int]bool)
			for _, index := range s.store.Snapshot(cmd.Start, cmd.End) {
				states[index] = true
			}
			s.hub.direct <- directFrame{c: c, frame: []byte(remote.RangeResult{States: states}.Encode())}
		case remote.Check:
			s.store.Set(cmd.Index)
			s.hub.broadcast <- []byte(remote.Checked{Index: cmd.Index}.Encode())
		case remote.Uncheck:
			s.store.Clear(cmd.Index)
			s.hub.broadcast <- []byte(remote.Unchecked{Index: cmd.Index}.Encode())
		}
	}
}

// writePump drains the send channel onto the wire.
func (c *client) writePump() {
	defer func() { _ = c.conn.Close() }()
	for frame := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
			return
		}
	}
	// hub closed the channel: say goodbye properly
	_ = c.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}
