// Package config loads and validates dashgrid configuration.
//
// Files are TOML (dashgrid.toml) or YAML (dashgrid.yaml / .yml). Values not
// present in the file keep their defaults:
//
//	[grid]
//	columns = 12
//	row_height = 30.0
//	container_width = 1200.0
//
//	[snap]
//	enabled = true
//	tolerance = 10.0
//
//	[collision]
//	policy = "no-push-revert"   # or "push-neighbors"
//
//	[arrange]
//	policy = "dense"            # "flow", "distribute"
//
//	[responsive]
//	policy = "fixed-12"         # or "proportional"
//
//	[history]
//	depth = 20
//
//	[persist]
//	debounce = "5s"
//	backend = "file"            # "null", "redis", "sqlite", "mongo"
//
//	[log]
//	level = "info"
package config

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/dashgrid/pkg/arrange"
	"github.com/matzehuels/dashgrid/pkg/collision"
	"github.com/matzehuels/dashgrid/pkg/errors"
	"github.com/matzehuels/dashgrid/pkg/grid"
	"github.com/matzehuels/dashgrid/pkg/history"
	"github.com/matzehuels/dashgrid/pkg/responsive"
	"github.com/matzehuels/dashgrid/pkg/snap"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	DefaultRowHeight      = 30.0
	DefaultContainerWidth = 1200.0
	DefaultDebounce       = 5 * time.Second
	DefaultBackend        = BackendFile
	DefaultStorePath      = ".dashgrid"
	DefaultSQLitePath     = ".dashgrid/dashgrid.db"
	DefaultDatabase       = "dashgrid"
	DefaultCollection     = "dashboards"
	DefaultRedisAddr      = "localhost:6379"
	DefaultLogLevel       = "info"
)

// Store backends.
const (
	BackendFile   = "file"
	BackendNull   = "null"
	BackendRedis  = "redis"
	BackendSQLite = "sqlite"
	BackendMongo  = "mongo"
)

// ValidBackends is the set of supported store backends.
var ValidBackends = map[string]bool{
	BackendFile:   true,
	BackendNull:   true,
	BackendRedis:  true,
	BackendSQLite: true,
	BackendMongo:  true,
}

// =============================================================================
// Config Types
// =============================================================================

// Config is the full configuration surface.
type Config struct {
	Grid       GridConfig       `toml:"grid" yaml:"grid"`
	Snap       SnapConfig       `toml:"snap" yaml:"snap"`
	Collision  PolicyConfig     `toml:"collision" yaml:"collision"`
	Arrange    PolicyConfig     `toml:"arrange" yaml:"arrange"`
	Responsive ResponsiveConfig `toml:"responsive" yaml:"responsive"`
	History    HistoryConfig    `toml:"history" yaml:"history"`
	Persist    PersistConfig    `toml:"persist" yaml:"persist"`
	Log        LogConfig        `toml:"log" yaml:"log"`
}

// GridConfig describes the canonical grid.
type GridConfig struct {
	Columns        int     `toml:"columns" yaml:"columns"`
	RowHeight      float64 `toml:"row_height" yaml:"row_height"`
	ContainerWidth float64 `toml:"container_width" yaml:"container_width"`

	// Default constraints filled into projected layouts.
	MinW int `toml:"min_w" yaml:"min_w"`
	MinH int `toml:"min_h" yaml:"min_h"`
	MaxW int `toml:"max_w" yaml:"max_w"`
}

// SnapConfig mirrors snap.Options.
type SnapConfig struct {
	Enabled   bool    `toml:"enabled" yaml:"enabled"`
	Tolerance float64 `toml:"tolerance" yaml:"tolerance"`
	Edges     bool    `toml:"edges" yaml:"edges"`
	Centers   bool    `toml:"centers" yaml:"centers"`
	Columns   bool    `toml:"columns" yaml:"columns"`
}

// PolicyConfig selects a named policy.
type PolicyConfig struct {
	Policy string `toml:"policy" yaml:"policy"`
}

// ResponsiveConfig selects the projection policy and breakpoints.
type ResponsiveConfig struct {
	Policy      string                  `toml:"policy" yaml:"policy"`
	Breakpoints []responsive.Breakpoint `toml:"breakpoints" yaml:"breakpoints"`
}

// HistoryConfig sizes the undo stack.
type HistoryConfig struct {
	Depth int `toml:"depth" yaml:"depth"`
}

// PersistConfig selects the store and the save debounce.
type PersistConfig struct {
	Debounce   string `toml:"debounce" yaml:"debounce"`
	Backend    string `toml:"backend" yaml:"backend"`
	Path       string `toml:"path" yaml:"path"`
	RedisAddr  string `toml:"redis_addr" yaml:"redis_addr"`
	MongoURI   string `toml:"mongo_uri" yaml:"mongo_uri"`
	Database   string `toml:"database" yaml:"database"`
	Collection string `toml:"collection" yaml:"collection"`
	SQLitePath string `toml:"sqlite_path" yaml:"sqlite_path"`
	KeyPrefix  string `toml:"key_prefix" yaml:"key_prefix"`
}

// LogConfig sets the log level.
type LogConfig struct {
	Level string `toml:"level" yaml:"level"`
}

// Default returns the reference configuration.
func Default() Config {
	c := Config{
		Snap: SnapConfig{Enabled: true, Edges: true, Centers: true, Columns: true},
	}
	c.SetDefaults()
	return c
}

// =============================================================================
// Config Methods
// =============================================================================

// SetDefaults fills zero values. It is idempotent. Booleans are left alone;
// start from Default to get them enabled.
func (c *Config) SetDefaults() {
	if c.Grid.Columns == 0 {
		c.Grid.Columns = grid.DefaultColumns
	}
	if c.Grid.RowHeight == 0 {
		c.Grid.RowHeight = DefaultRowHeight
	}
	if c.Grid.ContainerWidth == 0 {
		c.Grid.ContainerWidth = DefaultContainerWidth
	}
	if c.Snap.Tolerance == 0 {
		c.Snap.Tolerance = snap.DefaultTolerance
	}
	if c.Collision.Policy == "" {
		c.Collision.Policy = string(collision.DefaultPolicy)
	}
	if c.Arrange.Policy == "" {
		c.Arrange.Policy = string(arrange.DefaultPolicy)
	}
	if c.Responsive.Policy == "" {
		c.Responsive.Policy = string(responsive.DefaultPolicy)
	}
	if len(c.Responsive.Breakpoints) == 0 {
		c.Responsive.Breakpoints = responsive.DefaultBreakpoints()
	}
	if c.History.Depth == 0 {
		c.History.Depth = history.DefaultDepth
	}
	if c.Persist.Debounce == "" {
		c.Persist.Debounce = DefaultDebounce.String()
	}
	if c.Persist.Backend == "" {
		c.Persist.Backend = DefaultBackend
	}
	if c.Persist.Path == "" {
		c.Persist.Path = DefaultStorePath
	}
	if c.Persist.SQLitePath == "" {
		c.Persist.SQLitePath = DefaultSQLitePath
	}
	if c.Persist.RedisAddr == "" {
		c.Persist.RedisAddr = DefaultRedisAddr
	}
	if c.Persist.Database == "" {
		c.Persist.Database = DefaultDatabase
	}
	if c.Persist.Collection == "" {
		c.Persist.Collection = DefaultCollection
	}
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
}

// Validate checks every section and returns all problems joined.
func (c Config) Validate() error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, errors.New(errors.ErrCodeInvalidConfig, format, args...))
	}

	if c.Grid.Columns <= 0 {
		bad("grid.columns must be > 0, got %d", c.Grid.Columns)
	}
	if c.Grid.RowHeight <= 0 {
		bad("grid.row_height must be > 0, got %g", c.Grid.RowHeight)
	}
	if c.Grid.ContainerWidth <= 0 {
		bad("grid.container_width must be > 0, got %g", c.Grid.ContainerWidth)
	}
	if c.Grid.MinW < 0 || c.Grid.MinH < 0 || c.Grid.MaxW < 0 {
		bad("grid default constraints must be >= 0")
	}
	if c.Snap.Tolerance < 0 {
		bad("snap.tolerance must be >= 0, got %g", c.Snap.Tolerance)
	}
	if _, err := collision.ParsePolicy(c.Collision.Policy); err != nil {
		errs = append(errs, err)
	}
	if _, err := arrange.ParsePolicy(c.Arrange.Policy); err != nil {
		errs = append(errs, err)
	}
	if _, err := responsive.ParsePolicy(c.Responsive.Policy); err != nil {
		errs = append(errs, err)
	}
	if err := responsive.ValidateBreakpoints(c.Responsive.Breakpoints); err != nil {
		errs = append(errs, err)
	}
	if c.History.Depth <= 0 {
		bad("history.depth must be > 0, got %d", c.History.Depth)
	}
	if d, err := time.ParseDuration(c.Persist.Debounce); err != nil {
		bad("persist.debounce: %v", err)
	} else if d < 0 {
		bad("persist.debounce must be >= 0, got %s", d)
	}
	if !ValidBackends[c.Persist.Backend] {
		bad("persist.backend: %q (must be one of: file, null, redis, sqlite, mongo)", c.Persist.Backend)
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		bad("log.level: %v", err)
	}
	return errors.Join(errs...)
}

// Metrics returns the pixel metrics of the canonical grid.
func (c Config) Metrics() grid.Metrics {
	return grid.NewMetrics(c.Grid.ContainerWidth, c.Grid.Columns, c.Grid.RowHeight)
}

// SnapOptions converts the snap section.
func (c Config) SnapOptions() snap.Options {
	return snap.Options(c.Snap)
}

// Defaults returns the constraints filled into projected layouts.
func (c Config) Defaults() responsive.Defaults {
	return responsive.Defaults{MinW: c.Grid.MinW, MinH: c.Grid.MinH, MaxW: c.Grid.MaxW}
}

// DebounceDuration parses persist.debounce. Invalid values yield the default.
func (c Config) DebounceDuration() time.Duration {
	d, err := time.ParseDuration(c.Persist.Debounce)
	if err != nil || d < 0 {
		return DefaultDebounce
	}
	return d
}

// LogLevel parses log.level. Invalid values yield info.
func (c Config) LogLevel() log.Level {
	lvl, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}
