package cli

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/dashgrid/pkg/dashboard"
	"github.com/matzehuels/dashgrid/pkg/engine"
	"github.com/matzehuels/dashgrid/pkg/errors"
	"github.com/matzehuels/dashgrid/pkg/persist"
)

// editCommand opens the interactive editor on a file or a stored dashboard.
func (c *CLI) editCommand() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "edit [snapshot.json]",
		Short: "Edit a layout interactively",
		Long: `Edit a layout in the terminal. Select an item with tab, press m to move or
r to resize it with the arrow keys, enter to drop and esc to cancel.

With a file argument, s writes the file. With --name the dashboard is
loaded from the configured store and saved back automatically once edits
settle (persist.debounce); pending saves are flushed on exit.`,
		Example: `  dashgrid edit ops.json
  dashgrid edit --name ops`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch {
			case name != "" && len(args) == 1:
				return errors.New(errors.ErrCodeInvalidConfig, "give a file or --name, not both")
			case name != "":
				return c.editStored(cmd.Context(), name)
			case len(args) == 1:
				return c.editFile(args[0])
			}
			return errors.New(errors.ErrCodeInvalidConfig, "edit needs a snapshot file or --name")
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "edit a dashboard from the configured store")
	return cmd
}

func (c *CLI) editFile(path string) error {
	snap, err := c.readSnapshot(path)
	if err != nil {
		return err
	}
	e, err := c.newEngine(snap)
	if err != nil {
		return err
	}
	save := func(s dashboard.Snapshot) error { return dashboard.WriteFile(s, path) }
	return c.runEditor(NewEditorModel(e, path, save))
}

func (c *CLI) editStored(ctx context.Context, name string) error {
	cfg, err := c.config()
	if err != nil {
		return err
	}
	st, err := c.openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	snap, err := st.Load(ctx, name)
	if errors.Is(err, errors.ErrCodeNotFound) {
		snap, err = dashboard.New(), nil
		printInfo("New dashboard %s", StyleHighlight.Render(name))
	}
	if err != nil {
		return err
	}

	saver := persist.New(st, name,
		persist.WithDelay(cfg.DebounceDuration()),
		persist.WithLogger(c.Logger),
		persist.WithContext(ctx),
		persist.WithRetry(remote(cfg.Persist.Backend)),
	)
	saver.MarkSaved(snap)

	e, err := c.newEngine(snap, engine.WithSaver(saver))
	if err != nil {
		return err
	}
	err = c.runEditor(NewEditorModel(e, name+" ("+st.Kind()+")", nil))
	if ferr := saver.Close(context.WithoutCancel(ctx)); ferr != nil && err == nil {
		err = ferr
	}
	if err == nil && saver.Err() == nil {
		printSuccess("Saved %s", StyleHighlight.Render(name))
	}
	return err
}

// runEditor runs the editor on the alternate screen and cancels any
// gesture left open.
func (c *CLI) runEditor(m EditorModel) error {
	final, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	if err != nil {
		return err
	}
	if fm, ok := final.(EditorModel); ok && fm.session != nil {
		_, _ = fm.Engine.Cancel(fm.session)
	}
	return nil
}

