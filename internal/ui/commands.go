package ui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"checkctl/internal/remote"
	"checkctl/internal/system"
)

// Commands

// connectCmd wires the channel's callbacks into the event funnel and dials.
// Wire events and the close notification all arrive through the same channel
// the listen command drains, so the update loop sees them in arrival order.
func connectCmd(ch *remote.Channel, url string, events chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		ch.OnMessage(func(ev remote.Event) {
			events <- wireEventMsg{event: ev}
		})
		ch.OnClose(func() {
			events <- connClosedMsg{}
		})
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := ch.Connect(ctx, url); err != nil {
			// the close callback already pushed connClosedMsg into the
			// funnel; returning one here would arm a second listener
			system.Logger.Error("dial failed", "url", url, "err", err)
			return nil
		}
		return connOpenedMsg{}
	}
}

// listenCmd delivers the next funneled event to the update loop. It is
// re-armed after every delivery; one message in flight at a time keeps
// processing strictly sequential.
func listenCmd(events chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return <-events
	}
}

// sendCmd transmits one command on the sync channel. A channel that is not
// open drops it silently; nothing is queued or retried.
func sendCmd(ch *remote.Channel, cmd remote.Command) tea.Cmd {
	return func() tea.Msg {
		ch.Send(cmd)
		return nil
	}
}
