package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// Config is the client configuration stored in config.json.
type Config struct {
	// ServerURL is the websocket endpoint of the authority, e.g.
	// ws://127.0.0.1:8787/ws. Empty means not configured yet.
	ServerURL string `json:"server_url"`
	// QuietMs is the debounce quiet interval for viewport changes, in
	// milliseconds. A range query goes out only after the viewport has not
	// moved for this long.
	QuietMs int `json:"quiet_ms,omitempty"`
	// OverscanRows is how many extra rows beyond the visible area each range
	// query covers.
	OverscanRows int `json:"overscan_rows,omitempty"`
	// CellWidth is the horizontal extent of one checkbox in terminal cells,
	// glyph plus padding.
	CellWidth int `json:"cell_width,omitempty"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		ServerURL:    "",
		QuietMs:      1000,
		OverscanRows: 4,
		CellWidth:    2,
	}
}

// Quiet returns the debounce interval as a duration, falling back to the
// default when unset or nonsensical.
func (c Config) Quiet() time.Duration {
	if c.QuietMs <= 0 {
		return time.Duration(Default().QuietMs) * time.Millisecond
	}
	return time.Duration(c.QuietMs) * time.Millisecond
}

// Normalize fills zero-valued tuning fields with defaults.
func (c Config) Normalize() Config {
	d := Default()
	if c.QuietMs <= 0 {
		c.QuietMs = d.QuietMs
	}
	if c.OverscanRows < 0 {
		c.OverscanRows = d.OverscanRows
	}
	if c.CellWidth < 1 {
		c.CellWidth = d.CellWidth
	}
	return c
}

// Load reads the config file. A missing file yields the defaults.
func Load() (Config, error) {
	p, err := Path()
	if err != nil {
		return Config{}, err
	}
	b, err := os.ReadFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return Config{}, err
	}
	var c Config
	if err := json.Unmarshal(b, &c); err != nil {
		return Config{}, err
	}
	return c.Normalize(), nil
}

// Save writes the config to disk, creating the directory if needed.
func Save(c Config) error {
	p, err := Path()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	b = append(b, '\n')
	return os.WriteFile(p, b, 0o644)
}
