package engine

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/dashgrid/pkg/arrange"
	"github.com/matzehuels/dashgrid/pkg/collision"
	"github.com/matzehuels/dashgrid/pkg/config"
	"github.com/matzehuels/dashgrid/pkg/dashboard"
	"github.com/matzehuels/dashgrid/pkg/errors"
	"github.com/matzehuels/dashgrid/pkg/grid"
	"github.com/matzehuels/dashgrid/pkg/history"
	"github.com/matzehuels/dashgrid/pkg/observability"
	"github.com/matzehuels/dashgrid/pkg/responsive"
	"github.com/matzehuels/dashgrid/pkg/snap"
)

// Saver receives committed snapshots for background persistence.
// persist.Saver implements it.
type Saver interface {
	Schedule(s dashboard.Snapshot)
	Suppress()
	Resume()
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine's logger. The default discards output.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithSaver attaches a saver that is notified of every committed change.
func WithSaver(s Saver) Option {
	return func(e *Engine) { e.saver = s }
}

// Engine owns one dashboard's canonical layout, components and history.
type Engine struct {
	cfg       config.Config
	columns   int
	metrics   grid.Metrics
	resolver  *collision.Resolver
	snapper   *snap.Engine
	projector *responsive.Projector
	arrange   arrange.Policy
	history   *history.Manager
	saver     Saver
	logger    *log.Logger

	session *DragSession
}

// New returns an engine with an empty dashboard. cfg is defaulted and
// validated first.
func New(cfg config.Config, opts ...Option) (*Engine, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	collisionPolicy, err := collision.ParsePolicy(cfg.Collision.Policy)
	if err != nil {
		return nil, err
	}
	arrangePolicy, err := arrange.ParsePolicy(cfg.Arrange.Policy)
	if err != nil {
		return nil, err
	}
	responsivePolicy, err := responsive.ParsePolicy(cfg.Responsive.Policy)
	if err != nil {
		return nil, err
	}

	columns := cfg.Grid.Columns
	projOpts := []responsive.Option{responsive.WithDefaults(cfg.Defaults())}
	if len(cfg.Responsive.Breakpoints) > 0 {
		projOpts = append(projOpts, responsive.WithBreakpoints(cfg.Responsive.Breakpoints))
	}
	projector, err := responsive.New(responsivePolicy, columns, projOpts...)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		cfg:       cfg,
		columns:   columns,
		metrics:   cfg.Metrics(),
		resolver:  collision.New(collisionPolicy, columns),
		snapper:   snap.New(cfg.SnapOptions(), cfg.Metrics(), columns),
		projector: projector,
		arrange:   arrangePolicy,
		history:   history.New(dashboard.New(), cfg.History.Depth),
		logger:    log.NewWithOptions(io.Discard, log.Options{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// =============================================================================
// Accessors
// =============================================================================

// Config returns the effective configuration.
func (e *Engine) Config() config.Config { return e.cfg }

// Columns returns the canonical grid width.
func (e *Engine) Columns() int { return e.columns }

// Metrics returns the canonical grid's pixel metrics.
func (e *Engine) Metrics() grid.Metrics { return e.metrics }

// Projector returns the responsive projector.
func (e *Engine) Projector() *responsive.Projector { return e.projector }

// State returns the history phase.
func (e *Engine) State() history.State { return e.history.State() }

// Session returns the gesture in progress, or nil.
func (e *Engine) Session() *DragSession { return e.session }

// CanUndo reports whether Undo would change the state.
func (e *Engine) CanUndo() bool { return e.history.CanUndo() }

// CanRedo reports whether Redo would change the state.
func (e *Engine) CanRedo() bool { return e.history.CanRedo() }

// Layout returns the layout to render: the live layout during a gesture,
// otherwise the committed one.
func (e *Engine) Layout() grid.Layout {
	return e.history.Current().Layout.Clone()
}

// Snapshot returns the committed state in its persisted form.
func (e *Engine) Snapshot() dashboard.Snapshot {
	return e.history.Committed().Clone()
}

// Component returns the component record of an item.
func (e *Engine) Component(id string) (dashboard.Component, bool) {
	c, ok := e.history.Committed().Components[id]
	if !ok {
		return dashboard.Component{}, false
	}
	return c.Clone(), true
}

// Projected returns the committed layout of a breakpoint. Stored layouts are
// returned as they are; missing ones are derived from the canonical layout.
func (e *Engine) Projected(name string) (grid.Layout, error) {
	bp, ok := e.projector.Breakpoint(name)
	if !ok {
		return nil, errors.New(errors.ErrCodeNotFound, "unknown breakpoint %q", name)
	}
	s := e.history.Committed()
	if l, ok := s.Layouts[name]; ok {
		return l.Clone(), nil
	}
	return e.projector.ProjectOne(s.Layout, bp), nil
}

// Active returns the breakpoint for a container width and the current
// layout projected onto it. During a gesture the live layout is projected.
func (e *Engine) Active(widthPx float64) (responsive.Breakpoint, grid.Layout) {
	bp := e.projector.Active(widthPx)
	if e.session != nil {
		return bp, e.projector.ProjectOne(e.history.Current().Layout, bp)
	}
	l, _ := e.Projected(bp.Name)
	return bp, l
}

// =============================================================================
// Load
// =============================================================================

// Load replaces the dashboard with s and clears history. The snapshot is
// repaired first (see dashboard.Reconcile); each repair is returned as a
// warning and logged. Stored breakpoint layouts are kept only while they
// still hold exactly the canonical items and the canonical layout needed no
// repair; otherwise they are derived again.
func (e *Engine) Load(s dashboard.Snapshot) ([]error, error) {
	if e.session != nil {
		return nil, errors.New(errors.ErrCodeGestureInProgress, "cannot load during a gesture on %q", e.session.ItemID)
	}

	fixed, warnings := dashboard.Reconcile(s, e.columns)
	repaired := len(warnings) > 0
	for i, it := range fixed.Layout {
		c := fixed.Components[it.ID].Constrain(it, e.metrics).Normalize(e.columns)
		repaired = repaired || c != it
		fixed.Layout[i] = c
	}
	for _, w := range warnings {
		e.logger.Warn("dashboard integrity", "code", errors.GetCode(w), "detail", errors.UserMessage(w))
		observability.Engine().OnIntegrityWarning(string(errors.GetCode(w)))
	}
	switch {
	case fixed.Layouts == nil:
	case repaired:
		fixed.Layouts = e.projector.Project(fixed.Layout)
	default:
		fixed.Layouts = e.storedLayouts(fixed.Layouts, fixed.Layout)
	}

	e.history.Reset(fixed)
	e.logger.Debug("loaded dashboard", "items", len(fixed.Layout), "warnings", len(warnings))
	return warnings, nil
}

// storedLayouts keeps the stored layouts that still match canonical: same
// item ids and valid for the breakpoint's columns. Mismatched ones are
// derived again and unknown breakpoints are dropped.
func (e *Engine) storedLayouts(layouts map[string]grid.Layout, canonical grid.Layout) map[string]grid.Layout {
	out := make(map[string]grid.Layout, len(layouts))
	for name, l := range layouts {
		bp, ok := e.projector.Breakpoint(name)
		if !ok {
			e.logger.Warn("dropping layout for unknown breakpoint", "breakpoint", name)
			continue
		}
		if !sameItems(l, canonical) || l.Validate(e.projector.Columns(bp)) != nil {
			e.logger.Warn("stale breakpoint layout regenerated", "breakpoint", name)
			out[name] = e.projector.ProjectOne(canonical, bp)
			continue
		}
		out[name] = l
	}
	return out
}

// sameItems reports whether a and b hold the same item ids.
func sameItems(a, b grid.Layout) bool {
	if len(a) != len(b) {
		return false
	}
	for _, it := range a {
		if b.Index(it.ID) < 0 {
			return false
		}
	}
	return true
}

// =============================================================================
// Commit
// =============================================================================

// commit regenerates the breakpoint layouts of next and records it. The
// saver is notified only when an entry was written.
func (e *Engine) commit(next dashboard.Snapshot) (bool, error) {
	next.Layouts = e.projector.Project(next.Layout)
	recorded, err := e.history.Commit(next)
	if err != nil {
		return false, err
	}
	if recorded {
		e.schedule()
	}
	return recorded, nil
}

func (e *Engine) schedule() {
	if e.saver != nil {
		e.saver.Schedule(e.history.Committed())
	}
}

func (e *Engine) idle(op string) error {
	if e.session != nil {
		return errors.New(errors.ErrCodeGestureInProgress, "cannot %s during a gesture on %q", op, e.session.ItemID)
	}
	return nil
}
