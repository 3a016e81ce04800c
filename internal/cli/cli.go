// Package cli implements the dashgrid command-line interface.
//
// Commands operate on snapshot files (the persisted {layout, layouts,
// components} JSON) or on dashboards in the configured store:
//
//   - arrange, add, remove: one-shot edits of a snapshot file
//   - project, show, validate: inspect a snapshot
//   - replay: apply a JSON-lines stream of gestures
//   - edit: interactive terminal editor
//   - serve: HTTP API over the configured store
//   - watch: re-validate a snapshot file whenever it changes
//   - store, config: manage stored dashboards and configuration
//
// All commands accept --config to select a TOML or YAML file and --verbose
// (-v) for debug logging.
package cli

import (
	"context"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/dashgrid/pkg/buildinfo"
	"github.com/matzehuels/dashgrid/pkg/config"
	"github.com/matzehuels/dashgrid/pkg/dashboard"
	"github.com/matzehuels/dashgrid/pkg/engine"
	"github.com/matzehuels/dashgrid/pkg/store"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "dashgrid"

	// stdio is the file argument that selects stdin or stdout.
	stdio = "-"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger     *log.Logger
	ConfigPath string

	cfg    *config.Config
	stdin  io.Reader
	stdout io.Writer
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		stdin:  os.Stdin,
		stdout: os.Stdout,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Dashgrid arranges dashboard widgets on a column grid",
		Long:         `Dashgrid is the layout engine of a dashboard builder: it places widgets on a 12-column grid, resolves collisions, snaps, auto-arranges, derives responsive layouts and keeps an undo history.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVarP(&c.ConfigPath, "config", "c", c.ConfigPath, "config file (toml or yaml)")

	root.AddCommand(c.arrangeCommand())
	root.AddCommand(c.addCommand())
	root.AddCommand(c.removeCommand())
	root.AddCommand(c.projectCommand())
	root.AddCommand(c.showCommand())
	root.AddCommand(c.validateCommand())
	root.AddCommand(c.replayCommand())
	root.AddCommand(c.editCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.watchCommand())
	root.AddCommand(c.storeCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Config And Engine Factories
// =============================================================================

// config loads the configuration once: the --config file, else the first
// file found by config.Locate, else the defaults.
func (c *CLI) config() (config.Config, error) {
	if c.cfg != nil {
		return *c.cfg, nil
	}
	path := c.ConfigPath
	if path == "" {
		path = config.Locate()
	}
	cfg := config.Default()
	if path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return config.Config{}, err
		}
		c.Logger.Debug("loaded config", "path", path)
	}
	c.cfg = &cfg
	return cfg, nil
}

// newEngine builds an engine and loads snap into it. Integrity warnings are
// printed, not returned.
func (c *CLI) newEngine(snap dashboard.Snapshot, opts ...engine.Option) (*engine.Engine, error) {
	cfg, err := c.config()
	if err != nil {
		return nil, err
	}
	e, err := engine.New(cfg, append([]engine.Option{engine.WithLogger(c.Logger)}, opts...)...)
	if err != nil {
		return nil, err
	}
	warnings, err := e.Load(snap)
	if err != nil {
		return nil, err
	}
	for _, w := range warnings {
		printWarning("%s", w)
	}
	return e, nil
}

// openStore opens the configured store.
func (c *CLI) openStore(ctx context.Context) (store.Store, error) {
	cfg, err := c.config()
	if err != nil {
		return nil, err
	}
	st, err := store.Open(ctx, cfg.Persist)
	if err != nil {
		return nil, err
	}
	c.Logger.Debug("opened store", "backend", st.Kind())
	return st, nil
}

// =============================================================================
// Snapshot I/O
// =============================================================================

// readSnapshot reads a snapshot from path, or stdin for "-".
func (c *CLI) readSnapshot(path string) (dashboard.Snapshot, error) {
	if path == stdio {
		return dashboard.Read(c.stdin)
	}
	return dashboard.ReadFile(path)
}

// writeSnapshot writes s to path, or stdout for "" and "-".
func (c *CLI) writeSnapshot(s dashboard.Snapshot, path string) error {
	if path == "" || path == stdio {
		return dashboard.Write(s, c.stdout)
	}
	if err := dashboard.WriteFile(s, path); err != nil {
		return err
	}
	printFile(path)
	return nil
}

// inPlace resolves the output path of an editing command: --output when
// given, else the input file itself (stdout when reading stdin).
func inPlace(input, output string) string {
	if output != "" {
		return output
	}
	if input == stdio {
		return ""
	}
	return input
}
