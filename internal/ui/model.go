package ui

import (
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"checkctl/internal/config"
	"checkctl/internal/grid"
	"checkctl/internal/remote"
)

// chrome rows around the grid: header on top, status bar below.
const chromeRows = 2

// Model for the checkbox grid TUI.
type model struct {
	cfg config.Config

	store   *grid.Store
	channel *remote.Channel
	// events funnels wire events, close notifications and config reloads
	// from their goroutines onto the update loop, preserving arrival order.
	events chan tea.Msg

	width  int
	height int

	scrollRow int
	cursor    int // linear index under the cursor

	connState remote.State
	spin      spinner.Model

	deb       debouncer
	sentStart int
	sentEnd   int
	haveSent  bool

	// command palette
	ti          textinput.Model
	paletteOpen bool
	palFiltered []paletteCmd
	palIndex    int

	helpOpen bool
	helpBody string

	notice   string
	quitting bool
}

func initialModel(cfg config.Config) model {
	cfg = cfg.Normalize()
	m := model{
		cfg:       cfg,
		store:     grid.NewStore(),
		channel:   remote.NewChannel(),
		events:    make(chan tea.Msg, 256),
		connState: remote.StateConnecting,
		deb:       debouncer{quiet: cfg.Quiet()},
	}

	sp := spinner.New()
	sp.Style = lipgloss.NewStyle().Foreground(Vitesse.Primary)
	m.spin = sp

	ti := textinput.New()
	ti.Prompt = " › "
	ti.Placeholder = "/goto 4200000"
	ti.CharLimit = 64
	ti.Blur()
	m.ti = ti
	return m
}

// InitialModel is the public constructor used by app. The second return
// value feeds reloaded configs into the running program; it is safe to call
// from any goroutine.
func InitialModel(cfg config.Config) (tea.Model, func(config.Config)) {
	m := initialModel(cfg)
	return m, m.NotifyConfig
}

func (m model) Init() tea.Cmd {
	return tea.Batch(
		m.spin.Tick,
		connectCmd(m.channel, m.cfg.ServerURL, m.events),
		listenCmd(m.events),
	)
}

// NotifyConfig pushes a reloaded config onto the update loop. The channel is
// shared by value copies of the model, so this is safe to hand to a watcher
// before the program starts.
func (m model) NotifyConfig(cfg config.Config) {
	select {
	case m.events <- configReloadedMsg{cfg: cfg}:
	default:
	}
}

// geometry derives the viewport inputs from the current terminal size.
func (m model) geometry() grid.Geometry {
	return grid.Geometry{
		Width:      m.width,
		Height:     max(1, m.height-chromeRows),
		CellExtent: m.cfg.CellWidth,
		Overscan:   m.cfg.OverscanRows,
	}
}

// viewport returns the currently visible window.
func (m model) viewport() grid.Viewport {
	return m.geometry().Visible(m.scrollRow)
}
