package engine

import (
	"context"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/matzehuels/dashgrid/pkg/config"
	"github.com/matzehuels/dashgrid/pkg/dashboard"
	"github.com/matzehuels/dashgrid/pkg/errors"
	"github.com/matzehuels/dashgrid/pkg/grid"
	"github.com/matzehuels/dashgrid/pkg/history"
	"github.com/matzehuels/dashgrid/pkg/persist"
	"github.com/matzehuels/dashgrid/pkg/store"
)

// =============================================================================
// Helpers
// =============================================================================

func newEngine(t *testing.T, mutate func(*config.Config), opts ...Option) *Engine {
	t.Helper()
	cfg := config.Default()
	if mutate != nil {
		mutate(&cfg)
	}
	e, err := New(cfg, opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return e
}

func load(t *testing.T, e *Engine, items ...grid.Item) {
	t.Helper()
	s := dashboard.New()
	for _, it := range items {
		s.Layout = append(s.Layout, it)
		s.Components[it.ID] = dashboard.Component{Type: dashboard.TypeChart}
	}
	warnings, err := e.Load(s)
	if err != nil || len(warnings) > 0 {
		t.Fatalf("Load: %v %v", err, warnings)
	}
}

func rectOf(t *testing.T, e *Engine, id string) grid.Rect {
	t.Helper()
	it, ok := e.Snapshot().Layout.Find(id)
	if !ok {
		t.Fatalf("item %q missing", id)
	}
	return it.Rect()
}

func drag(t *testing.T, e *Engine, id string, frames ...grid.Rect) Outcome {
	t.Helper()
	s, err := e.StartDrag(id)
	if err != nil {
		t.Fatalf("StartDrag(%s): %v", id, err)
	}
	for _, f := range frames[:len(frames)-1] {
		if _, err := e.Move(s, f); err != nil {
			t.Fatalf("Move: %v", err)
		}
	}
	out, err := e.End(s, frames[len(frames)-1])
	if err != nil {
		t.Fatalf("End: %v", err)
	}
	return out
}

// checkInvariants fails if the committed layout has overlaps or out-of-bounds items.
func checkInvariants(t *testing.T, e *Engine) {
	t.Helper()
	l := e.Snapshot().Layout
	if pairs := l.Overlapping(); len(pairs) > 0 {
		t.Fatalf("committed layout overlaps: %v\n%v", pairs, l)
	}
	if err := l.Validate(e.Columns()); err != nil {
		t.Fatalf("committed layout invalid: %v", err)
	}
	if err := dashboard.Check(e.Snapshot(), e.Columns()); err != nil {
		t.Fatalf("integrity: %v", err)
	}
}

type fakeSaver struct {
	scheduled []dashboard.Snapshot
	suppress  int
	resume    int
	depth     int
}

func (f *fakeSaver) Schedule(s dashboard.Snapshot) {
	if f.depth > 0 {
		return
	}
	f.scheduled = append(f.scheduled, s)
}
func (f *fakeSaver) Suppress() { f.suppress++; f.depth++ }
func (f *fakeSaver) Resume()   { f.resume++; f.depth-- }

// =============================================================================
// Example Scenarios
// =============================================================================

func TestAddItemFirstFit(t *testing.T) {
	e := newEngine(t, nil)
	load(t, e, grid.Item{ID: "a", X: 0, Y: 0, W: 6, H: 4})

	it, err := e.AddItem(grid.Item{ID: "b", W: 6, H: 4}, dashboard.Component{Type: dashboard.TypeText})
	if err != nil {
		t.Fatal(err)
	}
	if it.X != 6 || it.Y != 0 {
		t.Errorf("AddItem placed at (%d,%d), want (6,0)", it.X, it.Y)
	}
	if _, ok := e.Component("b"); !ok {
		t.Error("component not recorded")
	}
	checkInvariants(t, e)
}

func TestDragOntoNeighborReverts(t *testing.T) {
	e := newEngine(t, nil)
	load(t, e,
		grid.Item{ID: "A", X: 0, Y: 0, W: 4, H: 4},
		grid.Item{ID: "B", X: 4, Y: 0, W: 4, H: 4},
	)

	out := drag(t, e, "A", grid.Rect{X: 2, Y: 0, W: 4, H: 4}, grid.Rect{X: 4, Y: 0, W: 4, H: 4})
	if !out.Reverted || !out.Collided {
		t.Errorf("outcome = %+v, want collided and reverted", out)
	}
	if out.Recorded {
		t.Error("reverted drag recorded a history entry")
	}
	if got := rectOf(t, e, "A"); got != (grid.Rect{X: 0, Y: 0, W: 4, H: 4}) {
		t.Errorf("A = %v", got)
	}
	if got := rectOf(t, e, "B"); got != (grid.Rect{X: 4, Y: 0, W: 4, H: 4}) {
		t.Errorf("B = %v", got)
	}
	if e.CanUndo() {
		t.Error("undo stack is not empty")
	}
}

func TestAutoArrangeFlow(t *testing.T) {
	e := newEngine(t, nil)
	load(t, e,
		grid.Item{ID: "1", X: 0, Y: 0, W: 6, H: 3},
		grid.Item{ID: "2", X: 6, Y: 5, W: 6, H: 2},
		grid.Item{ID: "3", X: 0, Y: 9, W: 12, H: 2},
	)

	l, err := e.AutoArrange("flow")
	if err != nil {
		t.Fatal(err)
	}
	want := map[string][2]int{"1": {0, 0}, "2": {6, 0}, "3": {0, 3}}
	for _, it := range l {
		if got := [2]int{it.X, it.Y}; got != want[it.ID] {
			t.Errorf("item %s at %v, want %v", it.ID, got, want[it.ID])
		}
	}
	if !e.CanUndo() {
		t.Error("arrange did not record history")
	}
}

// =============================================================================
// History Properties
// =============================================================================

func TestGestureCoalescing(t *testing.T) {
	e := newEngine(t, nil)
	load(t, e, grid.Item{ID: "a", X: 0, Y: 0, W: 2, H: 2})
	before := e.Snapshot()

	s, err := e.StartDrag("a")
	if err != nil {
		t.Fatal(err)
	}
	if e.State() != history.Transient {
		t.Fatalf("state = %v, want transient", e.State())
	}
	for x := 0; x <= 8; x++ {
		out, err := e.Move(s, grid.Rect{X: x, Y: x / 2, W: 2, H: 2})
		if err != nil {
			t.Fatal(err)
		}
		if it, _ := e.Layout().Find("a"); it.X != x || out.Rect.X != x {
			t.Fatalf("live layout not updated at frame %d", x)
		}
	}
	if e.CanUndo() {
		t.Fatal("move frames reached history")
	}
	if _, err := e.End(s, grid.Rect{X: 8, Y: 4, W: 2, H: 2}); err != nil {
		t.Fatal(err)
	}
	if e.State() != history.Idle || e.Session() != nil {
		t.Fatal("gesture not closed")
	}

	if !e.Undo() {
		t.Fatal("Undo = false")
	}
	if !e.Snapshot().Equal(before) {
		t.Error("one undo did not restore the pre-gesture state")
	}
	if e.Undo() {
		t.Error("gesture wrote more than one entry")
	}
}

func TestDragIdempotence(t *testing.T) {
	e := newEngine(t, nil)
	load(t, e, grid.Item{ID: "a", X: 3, Y: 1, W: 2, H: 2}, grid.Item{ID: "b", X: 0, Y: 0, W: 2, H: 2})
	before := e.Snapshot()

	out := drag(t, e, "a", grid.Rect{X: 5, Y: 1, W: 2, H: 2}, grid.Rect{X: 3, Y: 1, W: 2, H: 2})
	if out.Recorded || e.CanUndo() {
		t.Error("drag back to start recorded history")
	}
	if !e.Snapshot().Layout.Equal(before.Layout) {
		t.Error("layout changed")
	}
}

func TestUndoRedoRoundTrip(t *testing.T) {
	e := newEngine(t, nil)
	s0 := e.Snapshot()
	if _, err := e.AddItem(grid.Item{ID: "a", W: 3, H: 2}, dashboard.Component{}); err != nil {
		t.Fatal(err)
	}
	if _, err := e.AddItem(grid.Item{ID: "b", W: 3, H: 2}, dashboard.Component{}); err != nil {
		t.Fatal(err)
	}
	s2 := e.Snapshot()

	if !e.Undo() || !e.Redo() {
		t.Fatal("undo/redo refused")
	}
	if !e.Snapshot().Equal(s2) {
		t.Error("undo+redo did not yield S2")
	}
	e.Undo()
	e.Undo()
	if !e.Snapshot().Equal(s0) {
		t.Error("two undos did not yield the state before S1")
	}
	if e.Undo() {
		t.Error("undo past the bottom of the stack")
	}
	if !e.Redo() {
		t.Fatal("redo after undo refused")
	}

	// A new commit truncates the redo tail.
	if err := e.RemoveItem("a"); err != nil {
		t.Fatal(err)
	}
	if e.CanRedo() {
		t.Error("redo tail survived a new commit")
	}
}

func TestHistoryDepth(t *testing.T) {
	e := newEngine(t, func(c *config.Config) { c.History.Depth = 3 })
	for i := 0; i < 6; i++ {
		if _, err := e.AddItem(grid.Item{W: 1, H: 1}, dashboard.Component{}); err != nil {
			t.Fatal(err)
		}
	}
	undone := 0
	for e.Undo() {
		undone++
	}
	if undone != 3 {
		t.Errorf("undid %d steps, want 3", undone)
	}
	if n := len(e.Snapshot().Layout); n != 3 {
		t.Errorf("oldest reachable state has %d items, want 3", n)
	}
}

// =============================================================================
// Error Handling
// =============================================================================

func TestInvalidGeometryIsNoOp(t *testing.T) {
	e := newEngine(t, nil)
	load(t, e, grid.Item{ID: "a", X: 0, Y: 0, W: 2, H: 2})

	s, _ := e.StartDrag("a")
	if _, err := e.Move(s, grid.Rect{X: 4, Y: 0, W: 2, H: 2}); err != nil {
		t.Fatal(err)
	}
	live := e.Layout()
	if _, err := e.Move(s, grid.Rect{X: 1, Y: 0, W: 0, H: 2}); !errors.Is(err, errors.ErrCodeInvalidGeometry) {
		t.Fatalf("Move(w=0) = %v, want INVALID_GEOMETRY", err)
	}
	if !e.Layout().Equal(live) {
		t.Error("invalid frame changed the live layout")
	}
	if _, err := e.MoveBox(s, grid.Box{X: nan(), Y: 0, W: 100, H: 30}); !errors.Is(err, errors.ErrCodeInvalidGeometry) {
		t.Errorf("MoveBox(NaN) = %v", err)
	}

	if _, err := e.End(s, grid.Rect{X: 0, Y: 0, W: -1, H: 2}); !errors.Is(err, errors.ErrCodeInvalidGeometry) {
		t.Fatalf("End(w=-1) = %v", err)
	}
	if e.Session() != nil || e.State() != history.Idle {
		t.Error("invalid End left the gesture open")
	}
	if e.CanUndo() || rectOf(t, e, "a") != (grid.Rect{X: 0, Y: 0, W: 2, H: 2}) {
		t.Error("invalid End reached history")
	}

	if _, err := e.AddItem(grid.Item{W: 0, H: 1}, dashboard.Component{}); !errors.Is(err, errors.ErrCodeInvalidGeometry) {
		t.Errorf("AddItem(w=0) = %v", err)
	}
}

func TestGestureExclusivity(t *testing.T) {
	e := newEngine(t, nil)
	load(t, e, grid.Item{ID: "a", W: 2, H: 2}, grid.Item{ID: "b", X: 4, W: 2, H: 2})

	s, err := e.StartDrag("a")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := e.StartResize("b"); !errors.Is(err, errors.ErrCodeGestureInProgress) {
		t.Errorf("second gesture = %v", err)
	}
	if _, err := e.AddItem(grid.Item{W: 1, H: 1}, dashboard.Component{}); !errors.Is(err, errors.ErrCodeGestureInProgress) {
		t.Errorf("AddItem during gesture = %v", err)
	}
	if _, err := e.AutoArrange(""); !errors.Is(err, errors.ErrCodeGestureInProgress) {
		t.Errorf("AutoArrange during gesture = %v", err)
	}
	if e.Undo() || e.Redo() {
		t.Error("undo/redo allowed during gesture")
	}
	if _, err := e.Load(dashboard.New()); !errors.Is(err, errors.ErrCodeGestureInProgress) {
		t.Errorf("Load during gesture = %v", err)
	}
	if _, err := e.Cancel(s); err != nil {
		t.Fatal(err)
	}
	if _, err := e.Move(s, grid.Rect{W: 2, H: 2}); !errors.Is(err, errors.ErrCodeNoGesture) {
		t.Errorf("Move after Cancel = %v, want NO_GESTURE", err)
	}
	if _, err := e.StartDrag("missing"); !errors.Is(err, errors.ErrCodeUnknownItem) {
		t.Errorf("StartDrag(missing) = %v", err)
	}
	if e.State() != history.Idle {
		t.Error("failed start left the engine transient")
	}
}

func TestCancelRestoresStart(t *testing.T) {
	e := newEngine(t, nil)
	load(t, e, grid.Item{ID: "a", W: 2, H: 2})

	s, _ := e.StartDrag("a")
	if _, err := e.Move(s, grid.Rect{X: 6, Y: 3, W: 2, H: 2}); err != nil {
		t.Fatal(err)
	}
	out, err := e.Cancel(s)
	if err != nil {
		t.Fatal(err)
	}
	if out.Recorded || out.Rect != s.StartRect || rectOf(t, e, "a") != s.StartRect {
		t.Errorf("Cancel = %+v", out)
	}
}

func TestRemoveItem(t *testing.T) {
	e := newEngine(t, nil)
	load(t, e, grid.Item{ID: "a", W: 2, H: 2}, grid.Item{ID: "b", X: 2, W: 2, H: 2})

	if err := e.RemoveItem("a"); err != nil {
		t.Fatal(err)
	}
	if _, ok := e.Component("a"); ok {
		t.Error("component left behind")
	}
	if err := e.RemoveItem("a"); !errors.Is(err, errors.ErrCodeUnknownItem) {
		t.Errorf("second RemoveItem = %v", err)
	}
	checkInvariants(t, e)
}

func TestLoadDropsOrphans(t *testing.T) {
	e := newEngine(t, nil)
	s := dashboard.Snapshot{
		Layout: grid.Layout{
			{ID: "a", X: 0, Y: 0, W: 4, H: 2},
			{ID: "ghost", X: 4, Y: 0, W: 4, H: 2},
			{ID: "wide", X: 10, Y: 2, W: 4, H: 2},
		},
		Components: map[string]dashboard.Component{
			"a":      {Type: dashboard.TypeChart},
			"wide":   {Type: dashboard.TypeText},
			"unused": {Type: dashboard.TypeFilter},
		},
	}
	warnings, err := e.Load(s)
	if err != nil {
		t.Fatal(err)
	}
	orphans := 0
	for _, w := range warnings {
		if errors.Is(w, errors.ErrCodeOrphanReference) {
			orphans++
		}
	}
	if orphans != 2 {
		t.Errorf("orphan warnings = %d, want 2 (%v)", orphans, warnings)
	}
	if got := e.Snapshot().Layout.IDs(); len(got) != 2 || got[0] != "a" || got[1] != "wide" {
		t.Errorf("loaded ids = %v", got)
	}
	if r := rectOf(t, e, "wide"); r.X != 8 {
		t.Errorf("wide item not clamped: %v", r)
	}
	checkInvariants(t, e)
}

func TestLoadRegeneratesStaleBreakpointLayouts(t *testing.T) {
	custom := grid.Layout{{ID: "a", X: 6, Y: 0, W: 2, H: 2}, {ID: "b", X: 0, Y: 0, W: 4, H: 2}}
	tests := []struct {
		name    string
		layout  grid.Layout
		mobile  grid.Layout
		wantX   int // x of "a" in the mobile layout
		kept    bool
	}{
		{"clamped canonical", grid.Layout{{ID: "a", W: 2, H: 2}, {ID: "b", X: 20, W: 4, H: 2}},
			grid.Layout{{ID: "a", X: 6, W: 2, H: 2}}, 0, false},
		{"missing id", grid.Layout{{ID: "a", W: 2, H: 2}, {ID: "b", X: 4, W: 4, H: 2}},
			grid.Layout{{ID: "a", X: 6, W: 2, H: 2}}, 0, false},
		{"out of bounds", grid.Layout{{ID: "a", W: 2, H: 2}, {ID: "b", X: 4, W: 4, H: 2}},
			grid.Layout{{ID: "a", X: 40, W: 2, H: 2}, {ID: "b", W: 4, H: 2}}, 0, false},
		{"matching kept", grid.Layout{{ID: "a", W: 2, H: 2}, {ID: "b", X: 4, W: 4, H: 2}},
			custom, 6, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEngine(t, nil)
			s := dashboard.New()
			s.Layout = tt.layout
			s.Layouts = map[string]grid.Layout{"mobile": tt.mobile}
			for _, it := range tt.layout {
				s.Components[it.ID] = dashboard.Component{Type: dashboard.TypeChart}
			}
			if _, err := e.Load(s); err != nil {
				t.Fatal(err)
			}

			m, err := e.Projected("mobile")
			if err != nil {
				t.Fatal(err)
			}
			if len(m) != len(e.Snapshot().Layout) {
				t.Fatalf("mobile layout has %d items, canonical has %d", len(m), len(e.Snapshot().Layout))
			}
			a, _ := m.Find("a")
			if a.X != tt.wantX {
				t.Errorf("mobile a.x = %d, want %d", a.X, tt.wantX)
			}
			if tt.kept && !m.Equal(custom) {
				t.Errorf("matching stored layout rewritten: %v", m)
			}
		})
	}
}

func TestLoadAppliesContentConstraints(t *testing.T) {
	e := newEngine(t, nil) // 100px columns, 30px rows
	s := dashboard.New()
	s.Layout = grid.Layout{{ID: "t", X: 0, Y: 0, W: 1, H: 1}}
	s.Components["t"] = dashboard.Component{Type: dashboard.TypeText, MinWidthPx: 250, MinHeightPx: 45}
	if _, err := e.Load(s); err != nil {
		t.Fatal(err)
	}
	it, _ := e.Snapshot().Layout.Find("t")
	if it.MinW != 3 || it.MinH != 2 || it.W != 3 || it.H != 2 {
		t.Errorf("item = %+v, want 3x2 with matching minimums", it)
	}
}

// =============================================================================
// Pixel Gestures And Projection
// =============================================================================

func TestMoveBoxSnapsToNeighborEdge(t *testing.T) {
	e := newEngine(t, nil)
	load(t, e,
		grid.Item{ID: "a", X: 0, Y: 0, W: 4, H: 2},
		grid.Item{ID: "b", X: 6, Y: 0, W: 2, H: 2},
	)

	s, _ := e.StartDrag("b")
	out, err := e.MoveBox(s, grid.Box{X: 405, Y: 3, W: 200, H: 60})
	if err != nil {
		t.Fatal(err)
	}
	if out.Rect != (grid.Rect{X: 4, Y: 0, W: 2, H: 2}) {
		t.Errorf("snapped rect = %v", out.Rect)
	}
	if g := e.Guides(); len(g) != 2 || g[0].Source != "a" || g[0].Position != 400 {
		t.Errorf("guides = %+v", g)
	}
	if len(e.Candidates()) == 0 {
		t.Error("no candidates during gesture")
	}
	end, err := e.EndBox(s, grid.Box{X: 405, Y: 3, W: 200, H: 60})
	if err != nil {
		t.Fatal(err)
	}
	if !end.Recorded || end.Rect.X != 4 {
		t.Errorf("EndBox = %+v", end)
	}
	if e.Guides() != nil {
		t.Error("guides survive the gesture")
	}
}

func TestResizeCollisionReverts(t *testing.T) {
	e := newEngine(t, nil)
	load(t, e,
		grid.Item{ID: "a", X: 0, Y: 0, W: 4, H: 4},
		grid.Item{ID: "b", X: 4, Y: 0, W: 4, H: 4},
	)

	s, err := e.StartResize("a")
	if err != nil {
		t.Fatal(err)
	}
	out, err := e.End(s, grid.Rect{X: 0, Y: 0, W: 6, H: 4})
	if err != nil {
		t.Fatal(err)
	}
	if !out.Reverted || rectOf(t, e, "a").W != 4 {
		t.Errorf("resize into b = %+v", out)
	}

	s, _ = e.StartResize("a")
	out, err = e.End(s, grid.Rect{X: 3, Y: 2, W: 4, H: 6})
	if err != nil {
		t.Fatal(err)
	}
	if out.Rect != (grid.Rect{X: 0, Y: 0, W: 4, H: 6}) || !out.Recorded {
		t.Errorf("resize kept origin? %+v", out)
	}
}

func TestPushPolicy(t *testing.T) {
	e := newEngine(t, func(c *config.Config) { c.Collision.Policy = "push-neighbors" })
	load(t, e,
		grid.Item{ID: "A", X: 0, Y: 0, W: 4, H: 4},
		grid.Item{ID: "B", X: 4, Y: 0, W: 4, H: 4},
	)
	out := drag(t, e, "A", grid.Rect{X: 4, Y: 0, W: 4, H: 4})
	if out.Reverted || len(out.Pushed) != 1 || out.Pushed[0] != "B" {
		t.Errorf("push outcome = %+v", out)
	}
	if rectOf(t, e, "B").Y < 4 {
		t.Errorf("B not pushed below A: %v", rectOf(t, e, "B"))
	}
	checkInvariants(t, e)
}

func TestProjected(t *testing.T) {
	e := newEngine(t, nil)
	load(t, e, grid.Item{ID: "a", X: 8, Y: 0, W: 4, H: 2})
	mobile, err := e.Projected("mobile")
	if err != nil {
		t.Fatal(err)
	}
	if mobile[0].Rect() != (grid.Rect{X: 8, Y: 0, W: 4, H: 2}) {
		t.Errorf("fixed-12 projection moved the item: %v", mobile[0].Rect())
	}
	if _, err := e.Projected("watch"); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("Projected(unknown) = %v", err)
	}

	p := newEngine(t, func(c *config.Config) { c.Responsive.Policy = "proportional" })
	load(t, p, grid.Item{ID: "a", X: 8, Y: 0, W: 4, H: 2})
	bp, l := p.Active(375)
	if bp.Name != "mobile" || l[0].Rect().Right() > bp.Columns {
		t.Errorf("Active(375) = %s %v", bp.Name, l)
	}

	// A commit regenerates every breakpoint layout.
	if _, err := p.AddItem(grid.Item{ID: "b", W: 12, H: 1}, dashboard.Component{}); err != nil {
		t.Fatal(err)
	}
	if n := len(p.Snapshot().Layouts); n != 3 {
		t.Errorf("committed snapshot has %d layouts, want 3", n)
	}
}

// =============================================================================
// Persistence Wiring
// =============================================================================

func TestSaverNotifications(t *testing.T) {
	saver := &fakeSaver{}
	e := newEngine(t, nil, WithSaver(saver))
	load(t, e, grid.Item{ID: "a", W: 2, H: 2})
	if len(saver.scheduled) != 0 {
		t.Fatal("Load scheduled a save")
	}

	drag(t, e, "a", grid.Rect{X: 2, Y: 0, W: 2, H: 2}) // recorded
	drag(t, e, "a", grid.Rect{X: 2, Y: 0, W: 2, H: 2}) // unchanged
	if len(saver.scheduled) != 1 {
		t.Fatalf("scheduled %d saves, want 1", len(saver.scheduled))
	}

	e.Undo()
	if saver.suppress != 1 || saver.resume != 1 {
		t.Errorf("suppress/resume = %d/%d", saver.suppress, saver.resume)
	}
	if len(saver.scheduled) != 2 || saver.scheduled[1].Layout[0].X != 0 {
		t.Errorf("restored state not scheduled after undo: %d", len(saver.scheduled))
	}
	e.Undo() // nothing to undo
	if len(saver.scheduled) != 2 {
		t.Error("no-op undo scheduled a save")
	}
}

func TestNoOpHistoryStepKeepsPendingSave(t *testing.T) {
	tests := []struct {
		name  string
		steps func(e *Engine) bool
		wantX int
	}{
		{"redo at tip", func(e *Engine) bool { return e.Redo() }, 0},
		{"redo past tip", func(e *Engine) bool { e.Undo(); e.Redo(); return e.Redo() }, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			st := store.NewKVStore(store.NewMemoryBackend(), nil)
			saver := persist.New(st, "d", persist.WithDelay(time.Hour))
			e := newEngine(t, nil, WithSaver(saver))

			if _, err := e.AddItem(grid.Item{ID: "a", W: 4, H: 2}, dashboard.Component{Type: dashboard.TypeChart}); err != nil {
				t.Fatalf("AddItem: %v", err)
			}
			if tt.steps(e) {
				t.Fatal("final step moved the cursor, want no-op")
			}
			if !saver.Pending() {
				t.Fatal("no-op history step dropped the pending save")
			}
			if err := saver.Flush(ctx); err != nil {
				t.Fatalf("Flush: %v", err)
			}
			got, err := st.Load(ctx, "d")
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if len(got.Layout) != 1 || got.Layout[0].X != tt.wantX {
				t.Errorf("saved layout = %v", got.Layout)
			}
		})
	}
}

// =============================================================================
// Randomized Invariants
// =============================================================================

func TestRandomOperationsKeepInvariants(t *testing.T) {
	for _, policy := range []string{"no-push-revert", "push-neighbors"} {
		t.Run(policy, func(t *testing.T) {
			rng := rand.New(rand.NewPCG(7, uint64(len(policy))))
			e := newEngine(t, func(c *config.Config) { c.Collision.Policy = policy })

			for step := 0; step < 400; step++ {
				ids := e.Snapshot().Layout.IDs()
				switch op := rng.IntN(10); {
				case op < 3 || len(ids) == 0:
					it, err := e.AddItem(grid.Item{W: 1 + rng.IntN(6), H: 1 + rng.IntN(4)}, dashboard.Component{})
					if err != nil {
						t.Fatal(err)
					}
					if others := e.Snapshot().Layout; others.Collides(it.Rect(), it.ID) {
						t.Fatalf("AddItem returned an occupied rect %v", it.Rect())
					}
				case op < 6:
					id := ids[rng.IntN(len(ids))]
					frames := make([]grid.Rect, 1+rng.IntN(5))
					for i := range frames {
						frames[i] = grid.Rect{X: rng.IntN(14) - 1, Y: rng.IntN(12), W: 1 + rng.IntN(6), H: 1 + rng.IntN(4)}
					}
					s, err := e.StartDrag(id)
					if err != nil {
						t.Fatal(err)
					}
					for _, f := range frames {
						if _, err := e.Move(s, f); err != nil {
							t.Fatal(err)
						}
					}
					if _, err := e.End(s, frames[len(frames)-1]); err != nil {
						t.Fatal(err)
					}
				case op < 8:
					id := ids[rng.IntN(len(ids))]
					s, err := e.StartResize(id)
					if err != nil {
						t.Fatal(err)
					}
					if _, err := e.End(s, grid.Rect{W: 1 + rng.IntN(12), H: 1 + rng.IntN(5)}); err != nil {
						t.Fatal(err)
					}
				case op == 8:
					policies := []string{"dense", "flow", "distribute"}
					if _, err := e.AutoArrange(policies[rng.IntN(3)]); err != nil {
						t.Fatal(err)
					}
				default:
					if rng.IntN(2) == 0 {
						e.Undo()
					} else {
						e.Redo()
					}
				}
				checkInvariants(t, e)
			}
		})
	}
}
