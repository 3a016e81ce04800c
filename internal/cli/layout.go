package cli

import (
	"cmp"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/dashgrid/pkg/arrange"
	"github.com/matzehuels/dashgrid/pkg/dashboard"
	"github.com/matzehuels/dashgrid/pkg/errors"
	"github.com/matzehuels/dashgrid/pkg/grid"
)

// =============================================================================
// arrange
// =============================================================================

// arrangeCommand re-packs every item of a snapshot file.
func (c *CLI) arrangeCommand() *cobra.Command {
	var policy, output string

	cmd := &cobra.Command{
		Use:   "arrange <snapshot.json|->",
		Short: "Auto-arrange all items of a snapshot",
		Long: `Auto-arrange all items of a snapshot under a packing policy.

Policies:
  dense       first fit, fills holes (default)
  flow        left to right, wrapping rows
  distribute  rows as in flow, spare columns spread evenly

The snapshot is rewritten in place unless --output is given.`,
		Example: `  dashgrid arrange ops.json --policy flow
  cat ops.json | dashgrid arrange - -o arranged.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := c.readSnapshot(args[0])
			if err != nil {
				return err
			}
			e, err := c.newEngine(snap)
			if err != nil {
				return err
			}
			prog := newProgress(c.Logger)
			l, err := e.AutoArrange(policy)
			if err != nil {
				return err
			}
			prog.done("arranged", "items", len(l), "policy", cmp.Or(policy, e.Config().Arrange.Policy))
			if err := c.writeSnapshot(e.Snapshot(), inPlace(args[0], output)); err != nil {
				return err
			}
			printStats(l)
			return nil
		},
	}

	cmd.Flags().StringVarP(&policy, "policy", "p", "", fmt.Sprintf("arrange policy %v (default from config)", arrange.Policies))
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: rewrite input)")
	_ = cmd.RegisterFlagCompletionFunc("policy", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		names := make([]string, len(arrange.Policies))
		for i, p := range arrange.Policies {
			names[i] = string(p)
		}
		return names, cobra.ShellCompDirectiveNoFileComp
	})
	return cmd
}

// =============================================================================
// add / remove
// =============================================================================

// addOpts holds the flags of the add command.
type addOpts struct {
	id     string
	w, h   int
	minW   int
	minH   int
	maxW   int
	kind   string
	output string

	// Content size hints, in pixels.
	minWidthPx  float64
	minHeightPx float64
}

// addCommand places a new widget at the first free position.
func (c *CLI) addCommand() *cobra.Command {
	opts := addOpts{w: 4, h: 2, kind: dashboard.TypeChart}

	cmd := &cobra.Command{
		Use:   "add <snapshot.json|->",
		Short: "Add a widget at the first free position",
		Long: `Add a widget to a snapshot. The widget is placed at the first position,
scanning top to bottom and left to right, where it overlaps nothing.`,
		Example: `  dashgrid add ops.json --id latency --w 6 --h 3
  dashgrid add ops.json --type text --min-width-px 250`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := c.readSnapshot(args[0])
			if err != nil {
				return err
			}
			e, err := c.newEngine(snap)
			if err != nil {
				return err
			}
			it, err := e.AddItem(
				grid.Item{ID: opts.id, W: opts.w, H: opts.h, MinW: opts.minW, MinH: opts.minH, MaxW: opts.maxW},
				dashboard.Component{Type: opts.kind, MinWidthPx: opts.minWidthPx, MinHeightPx: opts.minHeightPx},
			)
			if err != nil {
				return err
			}
			if err := c.writeSnapshot(e.Snapshot(), inPlace(args[0], opts.output)); err != nil {
				return err
			}
			printSuccess("Added %s at %s", StyleHighlight.Render(it.ID), it.Rect())
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.id, "id", "", "item id (default: random uuid)")
	f.IntVar(&opts.w, "w", opts.w, "width in columns")
	f.IntVar(&opts.h, "h", opts.h, "height in rows")
	f.IntVar(&opts.minW, "min-w", 0, "minimum width in columns")
	f.IntVar(&opts.minH, "min-h", 0, "minimum height in rows")
	f.IntVar(&opts.maxW, "max-w", 0, "maximum width in columns")
	f.StringVar(&opts.kind, "type", opts.kind, "component type (chart, text, filter)")
	f.Float64Var(&opts.minWidthPx, "min-width-px", 0, "minimum content width in pixels")
	f.Float64Var(&opts.minHeightPx, "min-height-px", 0, "minimum content height in pixels")
	f.StringVarP(&opts.output, "output", "o", "", "output file (default: rewrite input)")
	return cmd
}

// removeCommand deletes a widget.
func (c *CLI) removeCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:     "remove <snapshot.json|-> <item-id>",
		Aliases: []string{"rm"},
		Short:   "Remove a widget",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := c.readSnapshot(args[0])
			if err != nil {
				return err
			}
			e, err := c.newEngine(snap)
			if err != nil {
				return err
			}
			if err := e.RemoveItem(args[1]); err != nil {
				return err
			}
			if err := c.writeSnapshot(e.Snapshot(), inPlace(args[0], output)); err != nil {
				return err
			}
			printSuccess("Removed %s", StyleHighlight.Render(args[1]))
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: rewrite input)")
	return cmd
}

// =============================================================================
// project
// =============================================================================

// projectCommand prints the layout a breakpoint would use.
func (c *CLI) projectCommand() *cobra.Command {
	var (
		breakpoint string
		width      float64
	)

	cmd := &cobra.Command{
		Use:   "project <snapshot.json|->",
		Short: "Print the layout of a breakpoint",
		Long: `Print the layout derived for one breakpoint, selected by name or by
container width in pixels. Without either flag every breakpoint is shown.`,
		Example: `  dashgrid project ops.json --breakpoint mobile
  dashgrid project ops.json --width 800`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if breakpoint != "" && width > 0 {
				return errors.New(errors.ErrCodeInvalidConfig, "--breakpoint and --width are mutually exclusive")
			}
			snap, err := c.readSnapshot(args[0])
			if err != nil {
				return err
			}
			e, err := c.newEngine(snap)
			if err != nil {
				return err
			}
			p := e.Projector()

			if width > 0 {
				bp, l := e.Active(width)
				c.printProjection(bp.Name, p.Columns(bp), l)
				return nil
			}
			for _, bp := range p.Breakpoints() {
				if breakpoint != "" && bp.Name != breakpoint {
					continue
				}
				l, err := e.Projected(bp.Name)
				if err != nil {
					return err
				}
				c.printProjection(bp.Name, p.Columns(bp), l)
			}
			if breakpoint != "" {
				if _, ok := p.Breakpoint(breakpoint); !ok {
					return errors.New(errors.ErrCodeNotFound, "unknown breakpoint %q", breakpoint)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&breakpoint, "breakpoint", "b", "", "breakpoint name")
	cmd.Flags().Float64VarP(&width, "width", "w", 0, "container width in pixels")
	return cmd
}

func (c *CLI) printProjection(name string, columns int, l grid.Layout) {
	fmt.Fprintf(c.stdout, "%s %s\n", StyleTitle.Render(name), StyleDim.Render(plural(columns, "column")))
	fmt.Fprint(c.stdout, renderGrid(l, columns, ""))
	fmt.Fprintln(c.stdout, statsLine(l))
	fmt.Fprintln(c.stdout)
}

// =============================================================================
// show / validate
// =============================================================================

// showCommand draws a snapshot and lists its items.
func (c *CLI) showCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <snapshot.json|->",
		Short: "Draw a snapshot's layout and list its items",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := c.readSnapshot(args[0])
			if err != nil {
				return err
			}
			cfg, err := c.config()
			if err != nil {
				return err
			}
			fmt.Fprint(c.stdout, renderGrid(snap.Layout, cfg.Grid.Columns, ""))
			fmt.Fprintln(c.stdout, statsLine(snap.Layout))
			if len(snap.Layout) > 0 {
				fmt.Fprintln(c.stdout, itemsTable(snap))
			}
			return nil
		},
	}
}

// validateCommand reports integrity problems without changing the file.
func (c *CLI) validateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <snapshot.json|->",
		Short: "Check a snapshot for integrity problems",
		Long: `Check a snapshot for out-of-bounds geometry, orphaned items or
components, duplicate ids and overlapping items. Exits non-zero when any
problem is found.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := c.readSnapshot(args[0])
			if err != nil {
				return err
			}
			cfg, err := c.config()
			if err != nil {
				return err
			}
			problems := validate(snap, cfg.Grid.Columns)
			if len(problems) == 0 {
				printSuccess("%s is valid", args[0])
				printStats(snap.Layout)
				return nil
			}
			for _, p := range problems {
				printError("%s", p)
			}
			return errors.New(errors.ErrCodeInvalidSnapshot, "%s: %s", args[0], plural(len(problems), "problem"))
		},
	}
}

// validate lists every integrity problem of s: the repairs loading would
// make plus any overlapping pairs.
func validate(s dashboard.Snapshot, columns int) []error {
	repaired, problems := dashboard.Reconcile(s, columns)
	for _, pair := range repaired.Layout.Overlapping() {
		problems = append(problems, errors.New(errors.ErrCodeInvalidGeometry, "items %q and %q overlap", pair[0], pair[1]))
	}
	return problems
}
