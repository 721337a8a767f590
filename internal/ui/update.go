package ui

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	zone "github.com/lrstanley/bubblezone"

	"checkctl/internal/grid"
	"checkctl/internal/remote"
	"checkctl/internal/system"
)

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		inner := msg.Width - 6
		if inner < 10 {
			inner = 10
		}
		m.ti.Width = inner
		m.clampScroll()
		m.ensureCursorVisible()
		return m, m.syncViewport()

	case tea.MouseMsg:
		return m.updateMouse(msg)

	case tea.KeyMsg:
		return m.updateKeys(msg)

	case connOpenedMsg:
		m.connState = remote.StateOpen
		// first range query for the then-current viewport goes out
		// immediately; only later scrolling is debounced
		start, end := m.geometry().QueryRange(m.viewport())
		m.sentStart, m.sentEnd, m.haveSent = start, end, true
		return m, sendCmd(m.channel, remote.RangeQuery{Start: start, End: end})

	case connClosedMsg:
		m.connState = remote.StateClosed
		if msg.err != nil {
			system.Logger.Error("sync connection lost", "err", msg.err)
		}
		// local edits keep working; they just stop propagating
		return m, listenCmd(m.events)

	case wireEventMsg:
		switch ev := msg.event.(type) {
		case remote.RangeResult:
			// no request correlation exists: merge whatever indices the
			// frame names, even for a viewport we have scrolled away from
			m.store.MergeRange(0, grid.Domain, ev.States)
		case remote.Checked:
			m.store.MarkChecked(ev.Index)
		case remote.Unchecked:
			m.store.MarkUnchecked(ev.Index)
		}
		return m, listenCmd(m.events)

	case rangeSettledMsg:
		start, end, ok := m.deb.settle(msg)
		if !ok {
			return m, nil
		}
		if m.connState != remote.StateOpen {
			return m, nil
		}
		if m.haveSent && start == m.sentStart && end == m.sentEnd {
			return m, nil
		}
		m.sentStart, m.sentEnd, m.haveSent = start, end, true
		return m, sendCmd(m.channel, remote.RangeQuery{Start: start, End: end})

	case configReloadedMsg:
		m.cfg = msg.cfg.Normalize()
		m.deb.quiet = m.cfg.Quiet()
		m.clampScroll()
		m.ensureCursorVisible()
		m.notice = "config reloaded"
		return m, tea.Batch(listenCmd(m.events), m.syncViewport())

	case noticeMsg:
		m.notice = string(msg)
		return m, nil

	case spinner.TickMsg:
		if m.connState == remote.StateConnecting {
			var cmd tea.Cmd
			m.spin, cmd = m.spin.Update(msg)
			return m, cmd
		}
		return m, nil
	}
	return m, nil
}

func (m model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Ctrl+C always quits, whatever is focused
	if msg.String() == "ctrl+c" {
		return m.quit()
	}

	if m.helpOpen {
		switch msg.String() {
		case "esc", "q", "?":
			m.helpOpen = false
		}
		return m, nil
	}

	if m.ti.Focused() {
		switch msg.String() {
		case "esc":
			m.closePalette()
			return m, nil
		case "up":
			if len(m.palFiltered) > 0 {
				m.palIndex--
				if m.palIndex < 0 {
					m.palIndex = len(m.palFiltered) - 1
				}
			}
			return m, nil
		case "down":
			if len(m.palFiltered) > 0 {
				m.palIndex++
				if m.palIndex >= len(m.palFiltered) {
					m.palIndex = 0
				}
			}
			return m, nil
		}
		if msg.Type == tea.KeyEnter {
			return m.execPaletteLine()
		}
		var cmd tea.Cmd
		m.ti, cmd = m.ti.Update(msg)
		m.refreshPalette()
		return m, cmd
	}

	switch msg.String() {
	case "q":
		return m.quit()
	case "/", "ctrl+p":
		m.openPalette()
		return m, nil
	case "?":
		m.helpOpen = true
		m.helpBody = renderHelp(m.width)
		return m, nil
	case " ", "enter", "x":
		return m, m.toggle(m.cursor)
	case "left", "h":
		return m.moveCursor(-1)
	case "right", "l":
		return m.moveCursor(1)
	case "up", "k":
		return m.moveCursor(-m.viewport().ColumnCount)
	case "down", "j":
		return m.moveCursor(m.viewport().ColumnCount)
	case "pgup", "b":
		return m.scrollBy(-(m.height - chromeRows))
	case "pgdown", "f":
		return m.scrollBy(m.height - chromeRows)
	case "g", "home":
		m.cursor = 0
		m.scrollRow = 0
		return m, m.syncViewport()
	case "G", "end":
		m.cursor = grid.Domain - 1
		m.scrollRow = m.viewport().TotalRows
		m.clampScroll()
		return m, m.syncViewport()
	}
	return m, nil
}

func (m model) updateMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.Button == tea.MouseButtonWheelUp:
		return m.scrollBy(-3)
	case msg.Button == tea.MouseButtonWheelDown:
		return m.scrollBy(3)
	case msg.Action == tea.MouseActionRelease && msg.Button == tea.MouseButtonLeft:
		if z := zone.Get(zoneGrid); z.InBounds(msg) {
			x, y := z.Pos(msg)
			if index, ok := m.geometry().CellAt(m.viewport(), x, y); ok {
				m.cursor = index
				return m, m.toggle(index)
			}
		}
	}
	return m, nil
}

func (m model) quit() (tea.Model, tea.Cmd) {
	m.quitting = true
	m.channel.Close()
	return m, tea.Quit
}

// toggle flips one checkbox: the store mutates first (optimistic), the
// command goes out after and unacknowledged.
func (m *model) toggle(index int) tea.Cmd {
	if index < 0 || index >= grid.Domain {
		return nil
	}
	if m.store.IsChecked(index) {
		m.store.MarkUnchecked(index)
		return sendCmd(m.channel, remote.Uncheck{Index: index})
	}
	m.store.MarkChecked(index)
	return sendCmd(m.channel, remote.Check{Index: index})
}

func (m model) moveCursor(delta int) (tea.Model, tea.Cmd) {
	c := m.cursor + delta
	if c < 0 {
		c = 0
	}
	if c >= grid.Domain {
		c = grid.Domain - 1
	}
	m.cursor = c
	m.ensureCursorVisible()
	return m, m.syncViewport()
}

func (m model) scrollBy(rows int) (tea.Model, tea.Cmd) {
	m.scrollRow += rows
	m.clampScroll()
	// keep the cursor inside the viewport while scrolling
	v := m.viewport()
	row := m.cursor / v.ColumnCount
	col := m.cursor % v.ColumnCount
	if row < v.RowStart {
		row = v.RowStart
	}
	if row >= v.RowEnd {
		row = v.RowEnd - 1
	}
	if c := row*v.ColumnCount + col; c < grid.Domain {
		m.cursor = c
	}
	return m, m.syncViewport()
}

func (m *model) clampScroll() {
	g := m.geometry()
	maxStart := g.TotalRows() - (m.height - chromeRows)
	if maxStart < 0 {
		maxStart = 0
	}
	if m.scrollRow > maxStart {
		m.scrollRow = maxStart
	}
	if m.scrollRow < 0 {
		m.scrollRow = 0
	}
}

func (m *model) ensureCursorVisible() {
	v := m.viewport()
	row := m.cursor / v.ColumnCount
	if row < v.RowStart {
		m.scrollRow = row
	} else if row >= v.RowEnd {
		m.scrollRow = row - (v.RowEnd - v.RowStart) + 1
	}
	m.clampScroll()
}

// syncViewport feeds the current query range to the debouncer. The actual
// query leaves in rangeSettledMsg handling, after the quiet interval.
func (m *model) syncViewport() tea.Cmd {
	start, end := m.geometry().QueryRange(m.viewport())
	return m.deb.candidate(start, end)
}
