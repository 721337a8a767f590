package config

import (
	"os"
	"strings"
	"testing"

	tu "checkctl/internal/testutil"
)

func TestLoad_DefaultsWhenNoFile(t *testing.T) {
	tmp := t.TempDir()
	defer tu.WithEnv(t, "XDG_CONFIG_HOME", tmp)()
	defer tu.WithEnv(t, "HOME", tmp)() // fallback

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.ServerURL != "" {
		t.Fatalf("expected empty server url, got %q", cfg.ServerURL)
	}
	if cfg.QuietMs != 1000 || cfg.OverscanRows != 4 || cfg.CellWidth != 2 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	tmp := t.TempDir()
	defer tu.WithEnv(t, "XDG_CONFIG_HOME", tmp)()
	defer tu.WithEnv(t, "HOME", tmp)()

	in := Config{ServerURL: "ws://example:8787/ws", QuietMs: 500, OverscanRows: 2, CellWidth: 4}
	if err := Save(in); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	got, err := Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if got != in {
		t.Fatalf("round trip mismatch: %+v vs %+v", got, in)
	}

	p, err := Path()
	if err != nil {
		t.Fatalf("Path error: %v", err)
	}
	b, err := os.ReadFile(p)
	if err != nil {
		t.Fatalf("read error: %v", err)
	}
	if !strings.HasPrefix(strings.TrimSpace(string(b)), "{") {
		t.Fatalf("expected JSON file, got: %s", b)
	}
}

func TestNormalize_FillsBadValues(t *testing.T) {
	c := Config{QuietMs: -5, CellWidth: 0, OverscanRows: -1}.Normalize()
	if c.QuietMs != 1000 || c.CellWidth != 2 || c.OverscanRows != 4 {
		t.Fatalf("normalize left bad values: %+v", c)
	}
}

func TestSchema_Marshals(t *testing.T) {
	b, err := MarshalSchema(Schema())
	if err != nil {
		t.Fatalf("MarshalSchema error: %v", err)
	}
	s := string(b)
	for _, want := range []string{"server_url", "quiet_ms", "overscan_rows", "cell_width"} {
		if !strings.Contains(s, want) {
			t.Fatalf("schema missing %q:\n%s", want, s)
		}
	}
}
