package remote

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"checkctl/internal/grid"
)

var testUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// startAuthority runs a websocket server that answers range queries from the
// given states and echoes mutations back, like the real authority does.
func startAuthority(t *testing.T, answer string) (*httptest.Server, string) {
	t.Helper()
	srv, url, _ := startAuthorityConns(t, answer)
	return srv, url
}

// startAuthorityConns is startAuthority but also exposes the server-side
// connections, so a test can close one explicitly: httptest.Server.Close
// forgets hijacked connections instead of closing them, so it alone never
// kills an upgraded websocket.
func startAuthorityConns(t *testing.T, answer string) (*httptest.Server, string, chan *websocket.Conn) {
	t.Helper()
	conns := make(chan *websocket.Conn, 4)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := testUpgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		conns <- conn
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			frame := string(data)
			switch {
			case strings.HasPrefix(frame, "get,"):
				_ = conn.WriteMessage(websocket.TextMessage, []byte(answer))
			default:
				// echo mutations to every viewer, sender included
				_ = conn.WriteMessage(websocket.TextMessage, data)
			}
		}
	}))
	return srv, "ws" + strings.TrimPrefix(srv.URL, "http"), conns
}

func TestChannel_ConnectDeliversEventsInOrder(t *testing.T) {
	srv, url := startAuthority(t, "get,7:1,500:1")
	defer srv.Close()

	ch := NewChannel()
	events := make(chan Event, 16)
	ch.OnMessage(func(ev Event) { events <- ev })

	if err := ch.Connect(context.Background(), url); err != nil {
		t.Fatalf("Connect error: %v", err)
	}
	defer ch.Close()
	if got := ch.State(); got != StateOpen {
		t.Fatalf("state after connect = %v, want open", got)
	}

	ch.Send(RangeQuery{Start: 0, End: 1000})
	ch.Send(Check{Index: 42})

	first := waitEvent(t, events)
	if _, ok := first.(RangeResult); !ok {
		t.Fatalf("first event = %#v, want RangeResult", first)
	}
	second := waitEvent(t, events)
	if c, ok := second.(Checked); !ok || c.Index != 42 {
		t.Fatalf("second event = %#v, want Checked{42}", second)
	}
}

func TestChannel_FanOutToAllHandlers(t *testing.T) {
	srv, url := startAuthority(t, "get")
	defer srv.Close()

	ch := NewChannel()
	var mu sync.Mutex
	got := 0
	for i := 0; i < 3; i++ {
		ch.OnMessage(func(Event) {
			mu.Lock()
			got++
			mu.Unlock()
		})
	}
	if err := ch.Connect(context.Background(), url); err != nil {
		t.Fatalf("Connect error: %v", err)
	}
	defer ch.Close()

	ch.Send(Check{Index: 1})
	deadline := time.After(2 * time.Second)
	for {
		mu.Lock()
		n := got
		mu.Unlock()
		if n == 3 {
			return
		}
		select {
		case <-deadline:
			t.Fatalf("handlers saw %d deliveries, want 3", n)
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestChannel_SendBeforeOpenIsNoOp(t *testing.T) {
	ch := NewChannel()
	// not connected: must neither panic nor error
	ch.Send(Check{Index: 1})
	if got := ch.State(); got != StateConnecting {
		t.Fatalf("state = %v, want connecting", got)
	}
}

func TestChannel_SendAfterCloseIsNoOp(t *testing.T) {
	srv, url := startAuthority(t, "get")
	defer srv.Close()

	ch := NewChannel()
	if err := ch.Connect(context.Background(), url); err != nil {
		t.Fatalf("Connect error: %v", err)
	}
	ch.Close()
	if got := ch.State(); got != StateClosed {
		t.Fatalf("state = %v, want closed", got)
	}
	ch.Send(Check{Index: 1}) // dropped silently, never queued
}

func TestChannel_OnCloseFiresOnce(t *testing.T) {
	srv, url, conns := startAuthorityConns(t, "get")

	ch := NewChannel()
	closed := make(chan struct{}, 4)
	ch.OnClose(func() { closed <- struct{}{} })
	if err := ch.Connect(context.Background(), url); err != nil {
		t.Fatalf("Connect error: %v", err)
	}
	// server going away kills the read loop; srv.Close alone leaves the
	// hijacked websocket alive, so close the server-side conn explicitly
	(<-conns).Close()
	srv.Close()

	select {
	case <-closed:
	case <-time.After(2 * time.Second):
		t.Fatalf("close callback never fired")
	}
	ch.Close()
	select {
	case <-closed:
		t.Fatalf("close callback fired twice")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestChannel_DialFailureCloses(t *testing.T) {
	ch := NewChannel()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := ch.Connect(ctx, "ws://127.0.0.1:1/ws"); err == nil {
		t.Fatalf("expected dial error")
	}
	if got := ch.State(); got != StateClosed {
		t.Fatalf("state after failed dial = %v, want closed", got)
	}
}

// End-to-end: open -> query [0,1000) -> merge answer -> store reflects it.
func TestChannel_RangeQueryMergesIntoStore(t *testing.T) {
	srv, url := startAuthority(t, "get,7:1,500:1")
	defer srv.Close()

	store := grid.NewStore()
	merged := make(chan struct{}, 1)

	ch := NewChannel()
	ch.OnMessage(func(ev Event) {
		if rr, ok := ev.(RangeResult); ok {
			store.MergeRange(0, 1000, rr.States)
			merged <- struct{}{}
		}
	})
	if err := ch.Connect(context.Background(), url); err != nil {
		t.Fatalf("Connect error: %v", err)
	}
	defer ch.Close()

	ch.Send(RangeQuery{Start: 0, End: 1000})
	select {
	case <-merged:
	case <-time.After(2 * time.Second):
		t.Fatalf("no range result arrived")
	}
	if !store.IsChecked(7) || !store.IsChecked(500) {
		t.Fatalf("indices 7 and 500 should be checked")
	}
	if store.IsChecked(300) {
		t.Fatalf("index 300 should be unchecked")
	}
}

// Two rapid toggles, or a toggle overlapping a range query, issue Sends from
// independent goroutines. Every frame must still arrive intact.
func TestChannel_ConcurrentSendsStayWellFormed(t *testing.T) {
	const n = 200
	srv, url := startAuthority(t, "get")
	defer srv.Close()

	ch := NewChannel()
	seen := make(chan int, n)
	ch.OnMessage(func(ev Event) {
		if c, ok := ev.(Checked); ok {
			seen <- c.Index
		}
	})
	if err := ch.Connect(context.Background(), url); err != nil {
		t.Fatalf("Connect error: %v", err)
	}
	defer ch.Close()

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ch.Send(Check{Index: i})
		}(i)
	}
	wg.Wait()

	got := make(map[int]bool, n)
	deadline := time.After(5 * time.Second)
	for len(got) < n {
		select {
		case i := <-seen:
			if i < 0 || i >= n || got[i] {
				t.Fatalf("echoed index %d unexpected or duplicated", i)
			}
			got[i] = true
		case <-deadline:
			t.Fatalf("only %d of %d echoes arrived", len(got), n)
		}
	}
	if st := ch.State(); st != StateOpen {
		t.Fatalf("state = %v, want open after concurrent sends", st)
	}
}

func waitEvent(t *testing.T, events chan Event) Event {
	t.Helper()
	select {
	case ev := <-events:
		return ev
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for event")
		return nil
	}
}
