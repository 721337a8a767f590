package ui

import (
	"checkctl/internal/config"
	"checkctl/internal/remote"
)

// Bubble Tea messages

// connOpenedMsg fires once the sync channel reaches the open state.
type connOpenedMsg struct{}

// connClosedMsg fires when the connection is lost or the dial failed. The
// session stays up but sync is dead until the process restarts.
type connClosedMsg struct{ err error }

// wireEventMsg carries one decoded inbound frame, delivered in arrival order.
type wireEventMsg struct{ event remote.Event }

// rangeSettledMsg fires when the debounce quiet interval elapsed for a
// candidate viewport range. Stale generations are dropped.
type rangeSettledMsg struct{ gen int }

// configReloadedMsg carries a freshly loaded config after the file changed.
type configReloadedMsg struct{ cfg config.Config }

// noticeMsg updates the transient status-bar notice.
type noticeMsg string
