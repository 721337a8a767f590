package ui

import (
	_ "embed"

	"github.com/charmbracelet/glamour"
)

//go:embed help.md
var helpMarkdown string

// renderHelp renders the embedded help document for the current width.
// Markdown rendering failures fall back to the raw text.
func renderHelp(width int) string {
	w := width - 4
	if w < 20 {
		w = 20
	}
	if w > 100 {
		w = 100
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(w),
	)
	if err != nil {
		return helpMarkdown
	}
	out, err := r.Render(helpMarkdown)
	if err != nil {
		return helpMarkdown
	}
	return out
}
