package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/dashgrid/pkg/config"
	"github.com/matzehuels/dashgrid/pkg/dashboard"
	"github.com/matzehuels/dashgrid/pkg/store"
)

// storeCommand manages dashboards in the configured store.
func (c *CLI) storeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "store",
		Short: "Manage dashboards in the configured store",
	}

	cmd.AddCommand(c.storeListCommand())
	cmd.AddCommand(c.storePushCommand())
	cmd.AddCommand(c.storePullCommand())
	cmd.AddCommand(c.storeRemoveCommand())

	return cmd
}

// withStore opens the store, runs fn behind a spinner for network backends
// and closes the store.
func (c *CLI) withStore(cmd *cobra.Command, msg string, fn func(store.Store) error) error {
	cfg, err := c.config()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	var spin *Spinner
	if remote(cfg.Persist.Backend) {
		spin = newSpinnerWithContext(ctx, statusOut, msg)
		spin.Start()
	}
	st, err := c.openStore(ctx)
	if err == nil {
		err = fn(st)
		st.Close()
	}
	if spin != nil {
		spin.Stop()
	}
	return err
}

func remote(backend string) bool {
	return backend == config.BackendRedis || backend == config.BackendMongo
}

// storeListCommand creates the "store ls" subcommand.
func (c *CLI) storeListCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List stored dashboards",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var names []string
			err := c.withStore(cmd, "Listing dashboards", func(st store.Store) (err error) {
				names, err = st.List(cmd.Context())
				return err
			})
			if err != nil {
				return err
			}
			if len(names) == 0 {
				printInfo("No dashboards stored")
				return nil
			}
			for _, n := range names {
				fmt.Fprintln(c.stdout, n)
			}
			return nil
		},
	}
}

// storePushCommand creates the "store push" subcommand.
func (c *CLI) storePushCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "push <name> <snapshot.json|->",
		Short: "Save a snapshot file under a name",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := c.readSnapshot(args[1])
			if err != nil {
				return err
			}
			cfg, err := c.config()
			if err != nil {
				return err
			}
			if err := dashboard.Check(snap, cfg.Grid.Columns); err != nil {
				return err
			}
			err = c.withStore(cmd, "Saving "+args[0], func(st store.Store) error {
				return st.Save(cmd.Context(), args[0], snap)
			})
			if err != nil {
				return err
			}
			printSuccess("Saved %s", StyleHighlight.Render(args[0]))
			printStats(snap.Layout)
			return nil
		},
	}
}

// storePullCommand creates the "store pull" subcommand.
func (c *CLI) storePullCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "pull <name>",
		Short: "Write a stored dashboard to a file or stdout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var snap dashboard.Snapshot
			err := c.withStore(cmd, "Loading "+args[0], func(st store.Store) (err error) {
				snap, err = st.Load(cmd.Context(), args[0])
				return err
			})
			if err != nil {
				return err
			}
			return c.writeSnapshot(snap, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	return cmd
}

// storeRemoveCommand creates the "store rm" subcommand.
func (c *CLI) storeRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "rm <name>...",
		Aliases: []string{"remove"},
		Short:   "Delete stored dashboards",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			err := c.withStore(cmd, "Deleting", func(st store.Store) error {
				for _, name := range args {
					if err := st.Delete(cmd.Context(), name); err != nil {
						return err
					}
				}
				return nil
			})
			if err != nil {
				return err
			}
			printSuccess("Deleted %s", plural(len(args), "dashboard"))
			return nil
		},
	}
}
