package cli

import (
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

// watchSettle coalesces the burst of events editors emit for one save.
const watchSettle = 100 * time.Millisecond

// watchCommand re-validates a snapshot file whenever it changes.
func (c *CLI) watchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "watch <snapshot.json>",
		Short: "Re-validate a snapshot whenever it changes",
		Long: `Watch a snapshot file and re-run validation and the layout summary every
time it is written. Stops on Ctrl+C.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			cfg, err := c.config()
			if err != nil {
				return err
			}

			w, err := fsnotify.NewWatcher()
			if err != nil {
				return err
			}
			defer w.Close()
			// Watch the directory: editors often replace the file by rename.
			if err := w.Add(filepath.Dir(path)); err != nil {
				return err
			}

			check := func() {
				snap, err := c.readSnapshot(path)
				if err != nil {
					printError("%v", err)
					return
				}
				problems := validate(snap, cfg.Grid.Columns)
				if len(problems) == 0 {
					printSuccess("%s is valid", path)
				}
				for _, p := range problems {
					printWarning("%s", p)
				}
				printStats(snap.Layout)
			}

			check()
			printInfo("Watching %s", StyleHighlight.Render(path))

			var settle <-chan time.Time
			target := filepath.Clean(path)
			for {
				select {
				case <-cmd.Context().Done():
					return nil
				case ev, ok := <-w.Events:
					if !ok {
						return nil
					}
					if filepath.Clean(ev.Name) != target || !ev.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename) {
						continue
					}
					c.Logger.Debug("snapshot changed", "op", ev.Op.String())
					settle = time.After(watchSettle)
				case <-settle:
					settle = nil
					check()
				case err, ok := <-w.Errors:
					if !ok {
						return nil
					}
					c.Logger.Warn("watch error", "err", err)
				}
			}
		},
	}
}
