package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// debouncer collapses a burst of candidate index ranges into the most recent
// one, emitted only after a quiet interval with no newer candidate. Each
// candidate bumps the generation and arms a fresh tick; when the tick comes
// back, settle accepts it only if no newer candidate arrived in the meantime.
// Superseded candidates are dropped outright, never queued or batched, so at
// most one range query leaves per scroll-settle.
type debouncer struct {
	quiet time.Duration
	gen   int
	start int
	end   int
	has   bool
}

// candidate records a new range and restarts the quiet period.
func (d *debouncer) candidate(start, end int) tea.Cmd {
	d.start, d.end, d.has = start, end, true
	d.gen++
	gen := d.gen
	return tea.Tick(d.quiet, func(time.Time) tea.Msg {
		return rangeSettledMsg{gen: gen}
	})
}

// settle resolves a quiet-timer firing. ok is false when the timer was
// superseded by a later candidate.
func (d *debouncer) settle(msg rangeSettledMsg) (start, end int, ok bool) {
	if !d.has || msg.gen != d.gen {
		return 0, 0, false
	}
	return d.start, d.end, true
}
