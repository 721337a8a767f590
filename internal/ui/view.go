package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
	zone "github.com/lrstanley/bubblezone"
	runewidth "github.com/mattn/go-runewidth"

	"checkctl/internal/grid"
	"checkctl/internal/remote"
	appver "checkctl/internal/version"
)

// zoneGrid is the bubblezone id of the grid body, used to map mouse clicks
// back to cells.
const zoneGrid = "grid"

func (m model) View() string {
	if m.quitting {
		return "Goodbye!\n"
	}
	width := m.width
	if width <= 0 {
		width = grid.DefaultWidth
	}

	if m.helpOpen {
		hint := lipgloss.NewStyle().Foreground(Vitesse.Muted).Render("  esc to close")
		return m.helpBody + "\n" + hint
	}

	var b strings.Builder
	b.WriteString(m.renderHeader(width))
	b.WriteString("\n")

	gridBody := m.renderGrid()
	if m.paletteOpen {
		// the palette floats over the top rows of the grid
		palette := renderPaletteTop(width, m.ti.View(), m.palFiltered, m.palIndex)
		gridLines := strings.Split(gridBody, "\n")
		palLines := strings.Count(palette, "\n") + 1
		if palLines < len(gridLines) {
			gridBody = palette + "\n" + strings.Join(gridLines[palLines:], "\n")
		} else {
			gridBody = palette
		}
	}
	b.WriteString(zone.Mark(zoneGrid, gridBody))
	b.WriteString("\n")
	b.WriteString(m.renderStatusBar(width))

	return zone.Scan(b.String())
}

func (m model) renderHeader(width int) string {
	title := AccentBold().Render(" checkctl ")
	info := lipgloss.NewStyle().Foreground(Vitesse.Muted).
		Render(fmt.Sprintf("%d boxes, one grid, everybody", grid.Domain))
	line := title + info
	if xansi.StringWidth(line) > width {
		line = xansi.Truncate(line, width, "…")
	}
	return line
}

func (m model) renderGrid() string {
	g := m.geometry()
	v := m.viewport()
	cells := grid.Materialize(g, v, m.store)

	ext := g.CellExtent
	if ext < 1 {
		ext = 1
	}
	pad := strings.Repeat(" ", ext-runewidth.StringWidth(glyphChecked))

	var b strings.Builder
	lastY := 0
	for i, c := range cells {
		if i > 0 && c.Placement.Y != lastY {
			b.WriteString("\n")
		}
		lastY = c.Placement.Y

		glyph := glyphUnchecked
		style := uncheckedStyle
		if c.Checked {
			glyph = glyphChecked
			style = checkedStyle
		}
		if c.Index == m.cursor {
			style = cursorStyle
		}
		b.WriteString(style.Render(glyph))
		b.WriteString(pad)
	}

	// pad missing rows so the status bar stays put near the domain's end
	drawn := lastY + 1
	for want := v.RowEnd - v.RowStart; drawn < want; drawn++ {
		b.WriteString("\n")
	}
	return b.String()
}

func (m model) renderStatusBar(width int) string {
	var state string
	switch m.connState {
	case remote.StateConnecting:
		state = m.spin.View() + " connecting"
	case remote.StateOpen:
		state = ChipStyle(Vitesse.Primary).Render("online")
	default:
		state = ChipStyle(Vitesse.Red).Render("offline")
	}

	v := m.viewport()
	left := fmt.Sprintf("%s  idx %d  row %d/%d  checked %d",
		state, m.cursor, m.cursor/v.ColumnCount, v.TotalRows, m.store.Len())
	if m.notice != "" {
		left += "  " + lipgloss.NewStyle().Foreground(Vitesse.Yellow).Render(m.notice)
	}
	right := "v" + appver.AppVersion + " "

	gap := width - xansi.StringWidth(left) - xansi.StringWidth(right)
	if gap < 1 {
		return StatusBarBase().Render(xansi.Truncate(left, width, "…"))
	}
	return StatusBarBase().Width(width).Render(left + strings.Repeat(" ", gap) + right)
}

// renderPaletteTop draws the command palette overlay: an input echo line and
// the filtered commands underneath.
func renderPaletteTop(width int, input string, cmds []paletteCmd, sel int) string {
	inner := width - 2
	if inner < 20 {
		inner = 20
	}
	nameWidth := 12
	border := BorderStyle()
	fillBG := FillBG()
	hl := lipgloss.NewStyle().Bold(true).Foreground(Vitesse.Primary).Render
	dim := lipgloss.NewStyle().Foreground(Vitesse.Muted).Render

	var b strings.Builder
	b.WriteString(border.Render("╭"+strings.Repeat("─", inner)+"╮") + "\n")

	in := " " + input
	if xansi.StringWidth(in) > inner {
		in = xansi.Truncate(in, inner, "")
	}
	b.WriteString(border.Render("│"))
	b.WriteString(fillBG.Width(inner).Render(in))
	b.WriteString(border.Render("│") + "\n")

	if len(cmds) == 0 {
		b.WriteString(border.Render("│"))
		b.WriteString(fillBG.Width(inner).Render(dim("  no matches")))
		b.WriteString(border.Render("│") + "\n")
	}
	for i, c := range cmds {
		name := runewidth.FillRight(c.Name, nameWidth)
		line := fmt.Sprintf("  %s %s", name, c.Desc)
		if xansi.StringWidth(line) > inner {
			line = xansi.Truncate(line, inner, "…")
		}
		if i == sel {
			line = hl(line)
		} else {
			line = dim(line)
		}
		b.WriteString(border.Render("│"))
		b.WriteString(fillBG.Width(inner).Render(line))
		b.WriteString(border.Render("│") + "\n")
	}
	b.WriteString(border.Render("╰" + strings.Repeat("─", inner) + "╯"))
	return b.String()
}
