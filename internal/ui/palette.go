package ui

import (
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sahilm/fuzzy"

	"checkctl/internal/grid"
	"checkctl/internal/remote"
)

type paletteCmd struct {
	Name    string
	Aliases []string
	Desc    string
}

var paletteCmds = []paletteCmd{
	{Name: "/goto", Aliases: []string{"/g"}, Desc: "Jump to a checkbox index (0..9999999)"},
	{Name: "/refresh", Aliases: []string{"/sync"}, Desc: "Re-query the visible range right now"},
	{Name: "/help", Aliases: []string{"/?"}, Desc: "Show the help overlay"},
	{Name: "/exit", Aliases: []string{"/quit"}, Desc: "Leave the grid"},
}

func (m *model) openPalette() {
	m.paletteOpen = true
	m.ti.SetValue("/")
	m.ti.Focus()
	m.ti.CursorEnd()
	m.palIndex = 0
	m.refreshPalette()
}

func (m *model) closePalette() {
	m.paletteOpen = false
	m.ti.Blur()
	m.ti.SetValue("")
	m.palFiltered = nil
	m.palIndex = 0
}

// refreshPalette filters the command list against the first input token,
// fuzzily, so "/gt" still finds /goto.
func (m *model) refreshPalette() {
	v := strings.TrimSpace(m.ti.Value())
	if !strings.HasPrefix(v, "/") {
		m.palFiltered = nil
		m.palIndex = 0
		return
	}
	query := v
	if sp := strings.IndexAny(v, " \t"); sp >= 0 {
		query = v[:sp]
	}
	if query == "/" {
		m.palFiltered = paletteCmds
		if m.palIndex >= len(m.palFiltered) {
			m.palIndex = 0
		}
		return
	}

	names := make([]string, 0, len(paletteCmds)*2)
	owner := make([]int, 0, len(paletteCmds)*2)
	for i, c := range paletteCmds {
		names = append(names, c.Name)
		owner = append(owner, i)
		for _, a := range c.Aliases {
			names = append(names, a)
			owner = append(owner, i)
		}
	}
	seen := make(map[int]bool, len(paletteCmds))
	out := make([]paletteCmd, 0, len(paletteCmds))
	for _, match := range fuzzy.Find(strings.TrimPrefix(query, "/"), names) {
		idx := owner[match.Index]
		if seen[idx] {
			continue
		}
		seen[idx] = true
		out = append(out, paletteCmds[idx])
	}
	m.palFiltered = out
	if m.palIndex >= len(m.palFiltered) {
		m.palIndex = 0
	}
}

// execPaletteLine runs either the highlighted command or the typed line.
func (m model) execPaletteLine() (tea.Model, tea.Cmd) {
	line := strings.TrimSpace(m.ti.Value())
	// a bare selection takes the highlighted entry, keeping typed args
	if len(m.palFiltered) > 0 {
		name := m.palFiltered[m.palIndex].Name
		if sp := strings.IndexAny(line, " \t"); sp >= 0 {
			line = name + line[sp:]
		} else {
			line = name
		}
	}
	m.closePalette()

	name, arg := line, ""
	if sp := strings.IndexAny(line, " \t"); sp >= 0 {
		name, arg = line[:sp], strings.TrimSpace(line[sp:])
	}

	switch name {
	case "/goto", "/g":
		index, err := strconv.Atoi(arg)
		if err != nil {
			m.notice = "usage: /goto <index>"
			return m, nil
		}
		return m.gotoIndex(index)
	case "/refresh", "/sync":
		if m.connState != remote.StateOpen {
			m.notice = "not connected"
			return m, nil
		}
		start, end := m.geometry().QueryRange(m.viewport())
		m.sentStart, m.sentEnd, m.haveSent = start, end, true
		return m, sendCmd(m.channel, remote.RangeQuery{Start: start, End: end})
	case "/help", "/?":
		m.helpOpen = true
		m.helpBody = renderHelp(m.width)
		return m, nil
	case "/exit", "/quit":
		return m.quit()
	}
	m.notice = "unknown command: " + name
	return m, nil
}

// gotoIndex moves the cursor to an absolute index and scrolls it into view.
func (m model) gotoIndex(index int) (tea.Model, tea.Cmd) {
	if index < 0 {
		index = 0
	}
	if index >= grid.Domain {
		index = grid.Domain - 1
	}
	m.cursor = index
	m.scrollRow = index / m.viewport().ColumnCount
	m.clampScroll()
	m.ensureCursorVisible()
	return m, m.syncViewport()
}
