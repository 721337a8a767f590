package server

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// startTestServer wires store + hub + router onto httptest and returns the
// websocket URL.
func startTestServer(t *testing.T) (*Server, string) {
	t.Helper()
	s := &Server{}
	store, err := OpenBitStore("")
	if err != nil {
		t.Fatalf("OpenBitStore error: %v", err)
	}
	s.store = store
	s.hub = newHub()
	s.started = time.Now()

	ctx, cancel := context.WithCancel(context.Background())
	go s.hub.run(ctx)

	srv := httptest.NewServer(s.handler())
	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return s, "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial error: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) string {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read error: %v", err)
	}
	return string(data)
}

func TestServer_BroadcastReachesAllViewersIncludingSender(t *testing.T) {
	s, url := startTestServer(t)
	a := dial(t, url)
	b := dial(t, url)

	// give the hub a moment to register both
	waitViewers(t, s, 2)

	if err := a.WriteMessage(websocket.TextMessage, []byte("c,42")); err != nil {
		t.Fatalf("write error: %v", err)
	}
	for _, conn := range []*websocket.Conn{a, b} {
		if got := readFrame(t, conn); got != "c,42" {
			t.Fatalf("broadcast = %q, want c,42", got)
		}
	}
	if !s.store.Get(42) {
		t.Fatalf("bit 42 not set on the store")
	}
}

func TestServer_RangeQueryAnswersOnlyAsker(t *testing.T) {
	s, url := startTestServer(t)
	s.store.Set(7)
	s.store.Set(500)
	s.store.Set(1500) // outside the asked window

	a := dial(t, url)
	if err := a.WriteMessage(websocket.TextMessage, []byte("get,0,1000")); err != nil {
		t.Fatalf("write error: %v", err)
	}
	if got := readFrame(t, a); got != "get,7:1,500:1" {
		t.Fatalf("range answer = %q, want get,7:1,500:1", got)
	}
}

func TestServer_UncheckBroadcast(t *testing.T) {
	s, url := startTestServer(t)
	s.store.Set(9)
	a := dial(t, url)
	waitViewers(t, s, 1)

	if err := a.WriteMessage(websocket.TextMessage, []byte("u,9")); err != nil {
		t.Fatalf("write error: %v", err)
	}
	if got := readFrame(t, a); got != "u,9" {
		t.Fatalf("broadcast = %q, want u,9", got)
	}
	if s.store.Get(9) {
		t.Fatalf("bit 9 should be cleared")
	}
}

func TestServer_MalformedFramesIgnored(t *testing.T) {
	s, url := startTestServer(t)
	a := dial(t, url)
	waitViewers(t, s, 1)

	for _, frame := range []string{"c,abc", "bogus", "get,1"} {
		if err := a.WriteMessage(websocket.TextMessage, []byte(frame)); err != nil {
			t.Fatalf("write error: %v", err)
		}
	}
	// a valid frame afterwards still round-trips: the bad ones were dropped
	if err := a.WriteMessage(websocket.TextMessage, []byte("c,1")); err != nil {
		t.Fatalf("write error: %v", err)
	}
	if got := readFrame(t, a); got != "c,1" {
		t.Fatalf("got %q after malformed frames, want c,1", got)
	}
	if s.store.Count() != 1 {
		t.Fatalf("store count = %d, want 1", s.store.Count())
	}
}

func waitViewers(t *testing.T, s *Server, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for s.hub.count() != want {
		if time.Now().After(deadline) {
			t.Fatalf("viewer count = %d, want %d", s.hub.count(), want)
		}
		time.Sleep(5 * time.Millisecond)
	}
}
