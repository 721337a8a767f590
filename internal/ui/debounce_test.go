package ui

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

func TestDebounce_BurstCollapsesToLastCandidate(t *testing.T) {
	d := debouncer{quiet: 10 * time.Millisecond}

	var cmds []tea.Cmd
	for i := 1; i <= 50; i++ {
		cmds = append(cmds, d.candidate(i*100, i*100+1000))
	}

	// every timer fires eventually; only the final generation may settle
	settled := 0
	var start, end int
	for _, cmd := range cmds {
		msg := cmd().(rangeSettledMsg)
		if s, e, ok := d.settle(msg); ok {
			settled++
			start, end = s, e
		}
	}
	if settled != 1 {
		t.Fatalf("%d settled emissions, want exactly 1", settled)
	}
	if start != 5000 || end != 6000 {
		t.Fatalf("settled [%d,%d), want the last candidate [5000,6000)", start, end)
	}
}

func TestDebounce_NothingSettlesBeforeFirstCandidate(t *testing.T) {
	d := debouncer{quiet: time.Millisecond}
	if _, _, ok := d.settle(rangeSettledMsg{gen: 0}); ok {
		t.Fatalf("settled without any candidate")
	}
}

func TestDebounce_LaterCandidateSupersedes(t *testing.T) {
	d := debouncer{quiet: time.Millisecond}
	first := d.candidate(0, 100)
	_ = d.candidate(200, 300)

	if _, _, ok := d.settle(first().(rangeSettledMsg)); ok {
		t.Fatalf("superseded candidate must not settle")
	}
}
