package app

import (
	"errors"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"

	"checkctl/internal/config"
	"checkctl/internal/system"
	"checkctl/internal/ui"
)

// Start runs the TUI client and returns any error.
func Start() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.ServerURL == "" {
		if err := promptServerURL(&cfg); err != nil {
			return err
		}
	}

	// Initialize global bubblezone manager for mouse-aware zones.
	zone.NewGlobal()

	m, notify := ui.InitialModel(cfg)
	stop, err := config.Watch(notify)
	if err != nil {
		system.Logger.Warn("config watch unavailable", "err", err)
	} else {
		defer stop()
	}

	if _, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion()).Run(); err != nil {
		return err
	}
	return nil
}

// Main is a helper to use as entry-point from cmd.
func Main() {
	if err := Start(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// promptServerURL asks for the authority endpoint on first run and persists
// the answer.
func promptServerURL(cfg *config.Config) error {
	url := "ws://127.0.0.1:8787/ws"

	green := lipgloss.Color("#03BF87")
	theme := huh.ThemeCharm()
	theme.FieldSeparator = lipgloss.NewStyle()
	theme.Focused.Title = theme.Focused.Title.Foreground(green).Bold(true)
	theme.Focused.Base.BorderForeground(green)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewNote().Title("checkctl").
				Description("No authority configured. Where does the grid live?"),
			huh.NewInput().
				Title("Server URL").
				Placeholder("ws://host:port/ws").
				Value(&url).
				Validate(validateWSURL),
		),
	).WithTheme(theme).WithWidth(60)

	if err := form.Run(); err != nil {
		return err // form canceled or failed
	}
	cfg.ServerURL = strings.TrimSpace(url)
	return config.Save(*cfg)
}

func validateWSURL(s string) error {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "ws://") && !strings.HasPrefix(s, "wss://") {
		return errors.New("must start with ws:// or wss://")
	}
	if len(s) <= len("ws://") {
		return errors.New("missing host")
	}
	return nil
}
