package engine

import (
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/dashgrid/pkg/arrange"
	"github.com/matzehuels/dashgrid/pkg/dashboard"
	"github.com/matzehuels/dashgrid/pkg/errors"
	"github.com/matzehuels/dashgrid/pkg/grid"
	"github.com/matzehuels/dashgrid/pkg/observability"
	"github.com/matzehuels/dashgrid/pkg/placement"
)

// AddItem places a new widget in the first free region that fits it and
// records the change. item supplies the size hint (W, H) and optional
// constraints; its position is ignored. An empty ID is replaced by a fresh
// UUID. The component's content size raises MinW/MinH.
func (e *Engine) AddItem(item grid.Item, c dashboard.Component) (grid.Item, error) {
	if err := e.idle("add an item"); err != nil {
		return grid.Item{}, err
	}
	if item.W <= 0 || item.H <= 0 {
		return grid.Item{}, errors.New(errors.ErrCodeInvalidGeometry, "size %dx%d must be positive", item.W, item.H)
	}
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	if err := errors.ValidateItemID(item.ID); err != nil {
		return grid.Item{}, err
	}

	cur := e.history.Committed()
	if _, ok := cur.Layout.Find(item.ID); ok {
		return grid.Item{}, errors.New(errors.ErrCodeDuplicateItem, "item %q already exists", item.ID)
	}
	if _, ok := cur.Components[item.ID]; ok {
		return grid.Item{}, errors.New(errors.ErrCodeDuplicateItem, "component %q already exists", item.ID)
	}

	item = c.Constrain(item, e.metrics)
	item.X, item.Y = 0, 0
	item = item.Normalize(e.columns)
	item = item.WithRect(placement.FindFor(cur.Layout, item, e.columns))

	next := cur.Clone()
	next.Layout = append(next.Layout, item)
	if next.Components == nil {
		next.Components = map[string]dashboard.Component{}
	}
	next.Components[item.ID] = c.Clone()
	if _, err := e.commit(next); err != nil {
		return grid.Item{}, err
	}

	e.logger.Debug("item added", "item", item.ID, "rect", item.Rect())
	return item, nil
}

// RemoveItem deletes an item together with its component.
func (e *Engine) RemoveItem(id string) error {
	if err := e.idle("remove an item"); err != nil {
		return err
	}
	cur := e.history.Committed()
	idx := cur.Layout.Index(id)
	if idx < 0 {
		return errors.New(errors.ErrCodeUnknownItem, "item %q is not on the dashboard", id)
	}

	next := cur.Clone()
	next.Layout = append(next.Layout[:idx], next.Layout[idx+1:]...)
	delete(next.Components, id)
	if _, err := e.commit(next); err != nil {
		return err
	}
	e.logger.Debug("item removed", "item", id)
	return nil
}

// AutoArrange re-lays-out every item under the named policy. The empty
// name selects the configured policy. It returns the new canonical layout.
func (e *Engine) AutoArrange(policy string) (grid.Layout, error) {
	if err := e.idle("arrange"); err != nil {
		return nil, err
	}
	p := e.arrange
	if policy != "" {
		var err error
		if p, err = arrange.ParsePolicy(policy); err != nil {
			return nil, err
		}
	}

	start := time.Now()
	cur := e.history.Committed()
	l, err := arrange.Arrange(p, cur.Layout, e.columns)
	if err != nil {
		return nil, err
	}
	recorded, err := e.commit(cur.WithLayout(l))
	if err != nil {
		return nil, err
	}

	e.logger.Debug("arranged", "policy", p, "items", len(l), "recorded", recorded)
	observability.Engine().OnArrange(string(p), len(l), time.Since(start))
	return l.Clone(), nil
}

// =============================================================================
// Undo / Redo
// =============================================================================

// Undo restores the previous committed state. It returns false, and changes
// nothing, when there is nothing to undo or a gesture is in progress.
func (e *Engine) Undo() bool {
	return e.step("undo", e.history.CanUndo, e.history.Undo)
}

// Redo re-applies the next committed state. It returns false when there is
// nothing to redo or a gesture is in progress.
func (e *Engine) Redo() bool {
	return e.step("redo", e.history.CanRedo, e.history.Redo)
}

// step moves the history cursor with the saver suppressed. A step that
// cannot move returns before touching the saver, so a pending save of the
// last commit survives.
func (e *Engine) step(op string, can func() bool, move func() (dashboard.Snapshot, bool)) bool {
	if e.session != nil || !can() {
		observability.Engine().OnHistory(op, false)
		return false
	}
	if e.saver != nil {
		e.saver.Suppress()
	}
	_, ok := move()
	if e.saver != nil {
		e.saver.Resume()
		if ok {
			e.schedule()
		}
	}
	e.logger.Debug(op, "moved", ok, "cursor", e.history.Cursor(), "entries", e.history.Len())
	observability.Engine().OnHistory(op, ok)
	return ok
}
