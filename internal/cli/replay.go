package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/dashgrid/pkg/dashboard"
	"github.com/matzehuels/dashgrid/pkg/engine"
	"github.com/matzehuels/dashgrid/pkg/errors"
	"github.com/matzehuels/dashgrid/pkg/grid"
)

// replayOp is one line of a replay script.
//
//	{"op":"start","item":"a","kind":"drag"}
//	{"op":"move","rect":{"x":4,"y":0,"w":4,"h":2}}
//	{"op":"move","box":{"x":405,"y":2,"w":400,"h":60}}
//	{"op":"end","rect":{"x":4,"y":0,"w":4,"h":2}}
//	{"op":"cancel"}
//	{"op":"add","item":{"i":"c","w":4,"h":2},"component":{"type":"text"}}
//	{"op":"remove","item":"c"}
//	{"op":"arrange","policy":"flow"}
//	{"op":"undo"}
//	{"op":"redo"}
type replayOp struct {
	Op        string               `json:"op"`
	Item      json.RawMessage      `json:"item,omitempty"`
	Kind      string               `json:"kind,omitempty"`
	Rect      *grid.Rect           `json:"rect,omitempty"`
	Box       *grid.Box            `json:"box,omitempty"`
	Component *dashboard.Component `json:"component,omitempty"`
	Policy    string               `json:"policy,omitempty"`
}

// replayer applies ops to an engine, tracking the open gesture.
type replayer struct {
	e       *engine.Engine
	session *engine.DragSession
	trace   io.Writer
}

// replayCommand applies a script of gestures and edits to a snapshot.
func (c *CLI) replayCommand() *cobra.Command {
	var (
		script string
		output string
		trace  bool
	)

	cmd := &cobra.Command{
		Use:   "replay <snapshot.json|-> --script ops.jsonl",
		Short: "Apply a script of gestures and edits",
		Long: `Apply a JSON-lines script of gestures and edits to a snapshot, exactly as
an interactive session would, and write the result.

Each line is one operation: start, move, end, cancel, add, remove,
arrange, undo or redo. Move and end take either a grid "rect" or a pixel
"box"; pixel boxes are snapped before they are converted.`,
		Example: `  dashgrid replay ops.json --script drag.jsonl --trace
  dashgrid replay - --script edits.jsonl < ops.json > out.json`,
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

			var src io.Reader = c.stdin
			if script != stdio {
				f, err := os.Open(script)
				if err != nil {
					return err
				}
				defer f.Close()
				src = f
			} else if args[0] == stdio {
				return errors.New(errors.ErrCodeInvalidConfig, "snapshot and script cannot both be read from stdin")
			}

			r := &replayer{e: e}
			if trace {
				r.trace = statusOut
			}
			prog := newProgress(c.Logger)
			n, err := r.run(src)
			if err != nil {
				return err
			}
			prog.done("replayed", "ops", n)

			out := output
			if out == "" && args[0] != stdio {
				out = args[0]
			}
			if err := c.writeSnapshot(e.Snapshot(), out); err != nil {
				return err
			}
			printStats(e.Layout())
			return nil
		},
	}

	cmd.Flags().StringVarP(&script, "script", "s", stdio, "JSON-lines script (- for stdin)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: rewrite input)")
	cmd.Flags().BoolVar(&trace, "trace", false, "print the outcome of every operation")
	return cmd
}

// run applies every line of src and returns the number of ops applied. A
// gesture still open at the end of the script is cancelled.
func (r *replayer) run(src io.Reader) (int, error) {
	sc := bufio.NewScanner(src)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	n, line := 0, 0
	for sc.Scan() {
		line++
		raw := sc.Bytes()
		if len(raw) == 0 || raw[0] == '#' {
			continue
		}
		var op replayOp
		if err := json.Unmarshal(raw, &op); err != nil {
			return n, errors.Wrap(errors.ErrCodeInvalidSnapshot, err, "line %d", line)
		}
		if err := r.apply(op); err != nil {
			return n, errors.Wrap(errors.GetCode(err), err, "line %d: %s", line, op.Op)
		}
		n++
	}
	if err := sc.Err(); err != nil {
		return n, err
	}
	if r.session != nil {
		if _, err := r.e.Cancel(r.session); err != nil {
			return n, err
		}
		r.session = nil
	}
	return n, nil
}

func (r *replayer) apply(op replayOp) error {
	switch op.Op {
	case "start":
		id, err := op.itemID()
		if err != nil {
			return err
		}
		start := r.e.StartDrag
		if op.Kind == string(engine.GestureResize) {
			start = r.e.StartResize
		}
		s, err := start(id)
		if err != nil {
			return err
		}
		r.session = s
		r.tracef("start %s %s", s.Kind, s.ItemID)

	case "move", "end":
		if r.session == nil {
			return errors.New(errors.ErrCodeNoGesture, "no gesture in progress")
		}
		out, err := r.frame(op)
		if op.Op == "end" {
			r.session = nil
		}
		if err != nil {
			return err
		}
		r.traceOutcome(op.Op, out)

	case "cancel":
		if r.session == nil {
			return errors.New(errors.ErrCodeNoGesture, "no gesture in progress")
		}
		out, err := r.e.Cancel(r.session)
		r.session = nil
		if err != nil {
			return err
		}
		r.traceOutcome("cancel", out)

	case "add":
		var it grid.Item
		if len(op.Item) > 0 {
			if err := json.Unmarshal(op.Item, &it); err != nil {
				return errors.Wrap(errors.ErrCodeInvalidSnapshot, err, "item")
			}
		}
		comp := dashboard.Component{Type: dashboard.TypeChart}
		if op.Component != nil {
			comp = *op.Component
		}
		placed, err := r.e.AddItem(it, comp)
		if err != nil {
			return err
		}
		r.tracef("add %s at %s", placed.ID, placed.Rect())

	case "remove":
		id, err := op.itemID()
		if err != nil {
			return err
		}
		if err := r.e.RemoveItem(id); err != nil {
			return err
		}
		r.tracef("remove %s", id)

	case "arrange":
		l, err := r.e.AutoArrange(op.Policy)
		if err != nil {
			return err
		}
		r.tracef("arrange %d items, %d rows", len(l), l.Bottom())

	case "undo":
		r.tracef("undo changed=%t", r.e.Undo())
	case "redo":
		r.tracef("redo changed=%t", r.e.Redo())

	default:
		return errors.New(errors.ErrCodeInvalidSnapshot, "unknown op %q", op.Op)
	}
	return nil
}

func (r *replayer) frame(op replayOp) (engine.Outcome, error) {
	end := op.Op == "end"
	switch {
	case op.Box != nil && end:
		return r.e.EndBox(r.session, *op.Box)
	case op.Box != nil:
		return r.e.MoveBox(r.session, *op.Box)
	case op.Rect != nil && end:
		return r.e.End(r.session, *op.Rect)
	case op.Rect != nil:
		return r.e.Move(r.session, *op.Rect)
	case end:
		// End without a frame drops at the last position the engine saw.
		it, _ := r.e.Layout().Find(r.session.ItemID)
		return r.e.End(r.session, it.Rect())
	}
	return engine.Outcome{}, errors.New(errors.ErrCodeInvalidGeometry, "move needs a rect or a box")
}

// itemID reads the item field as a plain id string.
func (op replayOp) itemID() (string, error) {
	var id string
	if err := json.Unmarshal(op.Item, &id); err != nil || id == "" {
		return "", errors.New(errors.ErrCodeUnknownItem, "%s needs an item id", op.Op)
	}
	return id, nil
}

func (r *replayer) tracef(format string, args ...any) {
	if r.trace != nil {
		fmt.Fprintf(r.trace, "%s %s\n", StyleDim.Render(iconInfo), fmt.Sprintf(format, args...))
	}
}

func (r *replayer) traceOutcome(op string, out engine.Outcome) {
	switch {
	case out.Reverted:
		r.tracef("%s %s reverted", op, out.Rect)
	case len(out.Pushed) > 0:
		r.tracef("%s %s pushed %v", op, out.Rect, out.Pushed)
	default:
		r.tracef("%s %s", op, out.Rect)
	}
}
