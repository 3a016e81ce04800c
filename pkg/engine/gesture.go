package engine

import (
	"github.com/google/uuid"

	"github.com/matzehuels/dashgrid/pkg/collision"
	"github.com/matzehuels/dashgrid/pkg/errors"
	"github.com/matzehuels/dashgrid/pkg/grid"
	"github.com/matzehuels/dashgrid/pkg/observability"
	"github.com/matzehuels/dashgrid/pkg/snap"
)

// GestureKind distinguishes drags from resizes.
type GestureKind string

const (
	GestureDrag   GestureKind = "drag"
	GestureResize GestureKind = "resize"
)

// DragSession is the state of one gesture, from start to end. It is handed
// to the caller by StartDrag/StartResize and passed back with every frame.
type DragSession struct {
	ID     string
	ItemID string
	Kind   GestureKind

	// Original is the committed layout when the gesture started. Collisions
	// are always checked against it, never against live frames.
	Original grid.Layout

	// StartRect is the item's rectangle when the gesture started.
	StartRect grid.Rect

	candidates []snap.Candidate
	guides     []snap.Candidate
}

// OriginalPositions returns the pre-gesture rectangle of every item.
func (s *DragSession) OriginalPositions() map[string]grid.Rect {
	out := make(map[string]grid.Rect, len(s.Original))
	for _, it := range s.Original {
		out[it.ID] = it.Rect()
	}
	return out
}

// Outcome describes the layout a gesture frame or edit produced.
type Outcome struct {
	Layout   grid.Layout
	Rect     grid.Rect // the gesture item's rectangle
	Collided bool
	Reverted bool
	Pushed   []string
	Recorded bool // a history entry was written
	Guides   []snap.Candidate
}

// =============================================================================
// Gesture Start
// =============================================================================

// StartDrag begins moving an item.
func (e *Engine) StartDrag(itemID string) (*DragSession, error) {
	return e.start(itemID, GestureDrag)
}

// StartResize begins resizing an item.
func (e *Engine) StartResize(itemID string) (*DragSession, error) {
	return e.start(itemID, GestureResize)
}

func (e *Engine) start(itemID string, kind GestureKind) (*DragSession, error) {
	if err := e.idle("start a " + string(kind)); err != nil {
		return nil, err
	}
	committed := e.history.Committed()
	it, ok := committed.Layout.Find(itemID)
	if !ok {
		return nil, errors.New(errors.ErrCodeUnknownItem, "item %q is not on the dashboard", itemID)
	}
	if err := e.history.Begin(); err != nil {
		return nil, err
	}

	s := &DragSession{
		ID:         uuid.NewString(),
		ItemID:     itemID,
		Kind:       kind,
		Original:   committed.Layout.Clone(),
		StartRect:  it.Rect(),
		candidates: e.snapper.Candidates(committed.Layout, itemID),
	}
	e.session = s
	e.logger.Debug("gesture started", "session", s.ID, "item", itemID, "kind", kind)
	observability.Engine().OnGestureStart(itemID, string(kind))
	return s, nil
}

// =============================================================================
// Gesture Frames
// =============================================================================

// Move applies one gesture frame. The result is transient: it is rendered
// but never recorded. Other items stay at their pre-gesture positions, so
// under the revert policy the dragged item may overlap them until End.
func (e *Engine) Move(s *DragSession, proposed grid.Rect) (Outcome, error) {
	if err := e.current(s); err != nil {
		return Outcome{}, err
	}
	if err := checkRect(proposed); err != nil {
		return Outcome{}, err
	}

	res, err := e.resolve(s, proposed)
	if err != nil {
		return Outcome{}, err
	}
	live := res.Layout
	rect := res.Rect
	if res.Reverted {
		// Show the item where the pointer is; End will put it back.
		idx := live.Index(s.ItemID)
		rect = e.fit(s, proposed)
		live[idx] = live[idx].WithRect(rect)
	}

	next := e.history.Committed().WithLayout(live)
	if err := e.history.SetTransient(next); err != nil {
		return Outcome{}, err
	}
	return Outcome{
		Layout:   live.Clone(),
		Rect:     rect,
		Collided: res.Collided,
		Pushed:   res.Pushed,
		Guides:   s.guides,
	}, nil
}

// End finishes the gesture at proposed: collisions are resolved against the
// pre-gesture layout and the result is committed as one history entry.
// Invalid geometry cancels the gesture and is returned as an error.
func (e *Engine) End(s *DragSession, proposed grid.Rect) (Outcome, error) {
	if err := e.current(s); err != nil {
		return Outcome{}, err
	}
	if err := checkRect(proposed); err != nil {
		e.abort(s)
		return Outcome{}, err
	}

	res, err := e.resolve(s, proposed)
	if err != nil {
		e.abort(s)
		return Outcome{}, err
	}

	next := e.history.Committed().WithLayout(res.Layout)
	recorded, err := e.commit(next)
	e.session = nil
	if err != nil {
		e.history.Cancel()
		return Outcome{}, err
	}

	e.logger.Debug("gesture ended", "session", s.ID, "item", s.ItemID, "rect", res.Rect,
		"recorded", recorded, "reverted", res.Reverted, "pushed", len(res.Pushed))
	observability.Engine().OnGestureEnd(s.ItemID, string(s.Kind), recorded, res.Reverted)
	return Outcome{
		Layout:   res.Layout.Clone(),
		Rect:     res.Rect,
		Collided: res.Collided,
		Reverted: res.Reverted,
		Pushed:   res.Pushed,
		Recorded: recorded,
	}, nil
}

// Cancel ends the gesture as if it had been dropped at its start rectangle.
func (e *Engine) Cancel(s *DragSession) (Outcome, error) {
	if err := e.current(s); err != nil {
		return Outcome{}, err
	}
	return e.End(s, s.StartRect)
}

// =============================================================================
// Pixel Gestures
// =============================================================================

// MoveBox is Move for a pixel-space rectangle. The box is snapped to nearby
// alignment lines, converted to grid units, then handled like Move. The
// matched lines are returned as guides.
func (e *Engine) MoveBox(s *DragSession, b grid.Box) (Outcome, error) {
	r, err := e.snapBox(s, b)
	if err != nil {
		return Outcome{}, err
	}
	return e.Move(s, r)
}

// EndBox is End for a pixel-space rectangle.
func (e *Engine) EndBox(s *DragSession, b grid.Box) (Outcome, error) {
	r, err := e.snapBox(s, b)
	if err != nil {
		if e.current(s) == nil {
			e.abort(s)
		}
		return Outcome{}, err
	}
	return e.End(s, r)
}

// Guides returns the alignment lines matched by the latest pixel frame.
func (e *Engine) Guides() []snap.Candidate {
	if e.session == nil {
		return nil
	}
	return append([]snap.Candidate(nil), e.session.guides...)
}

// Candidates returns every alignment line of the gesture in progress.
func (e *Engine) Candidates() []snap.Candidate {
	if e.session == nil {
		return nil
	}
	return append([]snap.Candidate(nil), e.session.candidates...)
}

func (e *Engine) snapBox(s *DragSession, b grid.Box) (grid.Rect, error) {
	if err := e.current(s); err != nil {
		return grid.Rect{}, err
	}
	if err := b.Validate(); err != nil {
		return grid.Rect{}, err
	}
	var res snap.Result
	if s.Kind == GestureResize {
		res = e.snapper.SnapResize(b, s.candidates)
	} else {
		res = e.snapper.Snap(b, s.candidates)
	}
	s.guides = res.Guides
	return e.metrics.ToRect(res.Box), nil
}

// =============================================================================
// Helpers
// =============================================================================

func (e *Engine) current(s *DragSession) error {
	if s == nil || e.session == nil {
		return errors.New(errors.ErrCodeNoGesture, "no gesture in progress")
	}
	if s != e.session {
		return errors.New(errors.ErrCodeNoGesture, "session %s is not the active gesture", s.ID)
	}
	return nil
}

// fit applies the item's constraints to a proposal. Resizes keep the origin.
func (e *Engine) fit(s *DragSession, r grid.Rect) grid.Rect {
	it, _ := s.Original.Find(s.ItemID)
	if s.Kind == GestureResize {
		r.X, r.Y = s.StartRect.X, s.StartRect.Y
		return it.FitSize(r, e.columns)
	}
	return it.Fit(r, e.columns)
}

func (e *Engine) resolve(s *DragSession, proposed grid.Rect) (collision.Result, error) {
	return e.resolver.Resolve(s.Original, s.ItemID, e.fit(s, proposed))
}

// abort drops the gesture without recording anything.
func (e *Engine) abort(s *DragSession) {
	e.history.Cancel()
	e.session = nil
	observability.Engine().OnGestureEnd(s.ItemID, string(s.Kind), false, false)
}

// checkRect rejects rectangles that no gesture can produce.
func checkRect(r grid.Rect) error {
	if r.W <= 0 || r.H <= 0 {
		return errors.New(errors.ErrCodeInvalidGeometry, "rectangle %v has a non-positive size", r)
	}
	return nil
}
