package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/dashgrid/pkg/errors"
)

func TestDefaultIsValid(t *testing.T) {
	c := Default()
	if err := c.Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
	if c.Grid.Columns != 12 || c.History.Depth != 20 || c.DebounceDuration() != 5*time.Second {
		t.Errorf("unexpected defaults: %+v", c)
	}
	if c.Collision.Policy != "no-push-revert" || c.Responsive.Policy != "fixed-12" || c.Arrange.Policy != "dense" {
		t.Errorf("unexpected default policies: %+v", c)
	}
	if m := c.Metrics(); m.ColumnWidth != 100 || m.RowHeight != 30 {
		t.Errorf("Metrics = %+v", m)
	}
}

func TestSetDefaultsIdempotent(t *testing.T) {
	c := Config{}
	c.SetDefaults()
	first := c
	c.SetDefaults()
	if !reflect.DeepEqual(first, c) {
		t.Error("SetDefaults is not idempotent")
	}
}

func TestParseTOMLKeepsUnsetDefaults(t *testing.T) {
	data := `
[snap]
tolerance = 4.0
centers = false

[collision]
policy = "push-neighbors"

[[responsive.breakpoints]]
name = "wide"
min_width = 1400.0
columns = 12

[[responsive.breakpoints]]
name = "narrow"
min_width = 0.0
columns = 6
`
	c, err := Parse([]byte(data), FormatTOML)
	if err != nil {
		t.Fatal(err)
	}
	if c.Snap.Tolerance != 4 || c.Snap.Centers || !c.Snap.Edges || !c.Snap.Enabled {
		t.Errorf("snap = %+v", c.Snap)
	}
	if c.Collision.Policy != "push-neighbors" {
		t.Errorf("collision.policy = %q", c.Collision.Policy)
	}
	if len(c.Responsive.Breakpoints) != 2 || c.Responsive.Breakpoints[1].Columns != 6 {
		t.Errorf("breakpoints = %+v", c.Responsive.Breakpoints)
	}
	if c.Grid.Columns != 12 || c.History.Depth != 20 {
		t.Error("unset sections lost their defaults")
	}
}

func TestParseYAML(t *testing.T) {
	data := `
grid:
  columns: 24
persist:
  backend: sqlite
  debounce: 250ms
log:
  level: debug
`
	c, err := Parse([]byte(data), FormatYAML)
	if err != nil {
		t.Fatal(err)
	}
	if c.Grid.Columns != 24 || c.Persist.Backend != BackendSQLite {
		t.Errorf("config = %+v", c)
	}
	if c.DebounceDuration() != 250*time.Millisecond || c.LogLevel() != log.DebugLevel {
		t.Errorf("debounce %s level %s", c.DebounceDuration(), c.LogLevel())
	}
	if len(c.Responsive.Breakpoints) != 3 {
		t.Errorf("default breakpoints not restored: %+v", c.Responsive.Breakpoints)
	}
}

func TestParseRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		data string
		code errors.Code
	}{
		{"bad policy", "[arrange]\npolicy = \"masonry\"\n", errors.ErrCodeInvalidPolicy},
		{"bad columns", "[grid]\ncolumns = -1\n", errors.ErrCodeInvalidConfig},
		{"bad debounce", "[persist]\ndebounce = \"soon\"\n", errors.ErrCodeInvalidConfig},
		{"bad backend", "[persist]\nbackend = \"s3\"\n", errors.ErrCodeInvalidConfig},
		{"bad level", "[log]\nlevel = \"loud\"\n", errors.ErrCodeInvalidConfig},
		{"syntax", "[grid\n", errors.ErrCodeInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data), FormatTOML)
			if !errors.Is(err, tt.code) {
				t.Errorf("Parse() err = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestWriteRoundTrip(t *testing.T) {
	for _, format := range []string{FormatTOML, FormatYAML} {
		t.Run(format, func(t *testing.T) {
			want := Default()
			want.Collision.Policy = "push-neighbors"
			want.Grid.MinW = 2
			data, err := want.Marshal(format)
			if err != nil {
				t.Fatal(err)
			}
			got, err := Parse(data, format)
			if err != nil {
				t.Fatalf("Parse(Marshal()) = %v\n%s", err, data)
			}
			if !reflect.DeepEqual(got, want) {
				t.Errorf("round trip mismatch:\ngot  %+v\nwant %+v", got, want)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dashgrid.yml")
	if err := os.WriteFile(path, []byte("history:\n  depth: 5\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if c.History.Depth != 5 {
		t.Errorf("depth = %d", c.History.Depth)
	}
	if _, err := Load(filepath.Join(dir, "nope.toml")); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("Load(missing) = %v", err)
	}
}
