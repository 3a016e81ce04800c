package collision

import (
	"testing"

	"github.com/matzehuels/dashgrid/pkg/errors"
	"github.com/matzehuels/dashgrid/pkg/grid"
)

func twoItems() grid.Layout {
	return grid.Layout{
		{ID: "A", X: 0, Y: 0, W: 4, H: 4},
		{ID: "B", X: 4, Y: 0, W: 4, H: 4},
	}
}

func TestRevertOnCollision(t *testing.T) {
	original := twoItems()
	res, err := New(PolicyRevert, 12).Resolve(original, "A", grid.Rect{X: 4, Y: 0, W: 4, H: 4})
	if err != nil {
		t.Fatal(err)
	}
	if !res.Collided || !res.Reverted {
		t.Errorf("Collided=%v Reverted=%v, want both true", res.Collided, res.Reverted)
	}
	if a, _ := res.Layout.Find("A"); a.X != 0 || a.Y != 0 {
		t.Errorf("A committed at %v, want {0,0}", a.Rect())
	}
	if b, _ := res.Layout.Find("B"); b != original[1] {
		t.Errorf("B changed to %v", b.Rect())
	}
	if len(res.Layout.Overlapping()) != 0 {
		t.Error("resolved layout has overlaps")
	}
}

func TestFreeMoveCommits(t *testing.T) {
	res, err := New(PolicyRevert, 12).Resolve(twoItems(), "A", grid.Rect{X: 8, Y: 0, W: 4, H: 4})
	if err != nil {
		t.Fatal(err)
	}
	if res.Collided || res.Reverted {
		t.Error("move into free space reported a collision")
	}
	if a, _ := res.Layout.Find("A"); a.Rect() != (grid.Rect{X: 8, Y: 0, W: 4, H: 4}) {
		t.Errorf("A = %v", a.Rect())
	}
}

func TestProposalIsFitted(t *testing.T) {
	l := grid.Layout{{ID: "A", X: 0, Y: 0, W: 4, H: 2, MinH: 2}}
	res, err := New(PolicyRevert, 12).Resolve(l, "A", grid.Rect{X: 10, Y: -3, W: 4, H: 1})
	if err != nil {
		t.Fatal(err)
	}
	if want := (grid.Rect{X: 8, Y: 0, W: 4, H: 2}); res.Rect != want {
		t.Errorf("Rect = %v, want %v", res.Rect, want)
	}
}

func TestOriginalIsNotModified(t *testing.T) {
	original := twoItems()
	before := original.Clone()
	for _, p := range Policies {
		if _, err := New(p, 12).Resolve(original, "A", grid.Rect{X: 2, Y: 0, W: 4, H: 4}); err != nil {
			t.Fatal(err)
		}
	}
	if !original.Equal(before) {
		t.Error("Resolve mutated the original layout")
	}
}

func TestPreexistingOverlapIsLeftAlone(t *testing.T) {
	original := grid.Layout{
		{ID: "A", X: 0, Y: 0, W: 4, H: 4},
		{ID: "B", X: 2, Y: 2, W: 4, H: 4},
		{ID: "C", X: 8, Y: 0, W: 2, H: 2},
	}
	res, err := New(PolicyRevert, 12).Resolve(original, "C", grid.Rect{X: 10, Y: 0, W: 2, H: 2})
	if err != nil {
		t.Fatal(err)
	}
	if res.Collided {
		t.Error("moving C should not collide")
	}
	if pairs := res.Layout.Overlapping(); len(pairs) != 1 || pairs[0] != [2]string{"A", "B"} {
		t.Errorf("Overlapping = %v, want only the existing A/B pair", pairs)
	}
}

func TestPushNeighbors(t *testing.T) {
	original := grid.Layout{
		{ID: "A", X: 0, Y: 0, W: 4, H: 4},
		{ID: "B", X: 4, Y: 0, W: 4, H: 4},
		{ID: "C", X: 4, Y: 4, W: 4, H: 2},
	}
	res, err := New(PolicyPush, 12).Resolve(original, "A", grid.Rect{X: 4, Y: 0, W: 4, H: 4})
	if err != nil {
		t.Fatal(err)
	}
	if !res.Collided || res.Reverted {
		t.Errorf("Collided=%v Reverted=%v, want true/false", res.Collided, res.Reverted)
	}
	want := map[string]grid.Rect{
		"A": {X: 4, Y: 0, W: 4, H: 4},
		"B": {X: 4, Y: 4, W: 4, H: 4},
		"C": {X: 4, Y: 8, W: 4, H: 2},
	}
	for id, r := range want {
		if it, _ := res.Layout.Find(id); it.Rect() != r {
			t.Errorf("%s = %v, want %v", id, it.Rect(), r)
		}
	}
	if len(res.Pushed) != 2 || res.Pushed[0] != "B" || res.Pushed[1] != "C" {
		t.Errorf("Pushed = %v, want [B C]", res.Pushed)
	}
	if len(res.Layout.Overlapping()) != 0 {
		t.Errorf("pushed layout has overlaps: %v", res.Layout.Overlapping())
	}
}

func TestUnknownItem(t *testing.T) {
	_, err := New(PolicyRevert, 12).Resolve(twoItems(), "zzz", grid.Rect{W: 1, H: 1})
	if !errors.Is(err, errors.ErrCodeUnknownItem) {
		t.Errorf("err = %v, want UNKNOWN_ITEM", err)
	}
}

func TestParsePolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    Policy
		wantErr bool
	}{
		{"", PolicyRevert, false},
		{"no-push-revert", PolicyRevert, false},
		{"push-neighbors", PolicyPush, false},
		{"shove", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePolicy(tt.in)
			if (err != nil) != tt.wantErr || got != tt.want {
				t.Errorf("ParsePolicy(%q) = %q, %v", tt.in, got, err)
			}
			if err != nil && !errors.Is(err, errors.ErrCodeInvalidPolicy) {
				t.Errorf("code = %s", errors.GetCode(err))
			}
		})
	}
}

// Each frame is resolved from the same original, so an item pushed in an
// earlier frame springs back once the dragged item moves away.
func TestPushDoesNotCascadeAcrossFrames(t *testing.T) {
	original := twoItems()
	r := New(PolicyPush, 12)
	if _, err := r.Resolve(original, "A", grid.Rect{X: 4, Y: 0, W: 4, H: 4}); err != nil {
		t.Fatal(err)
	}
	res, err := r.Resolve(original, "A", grid.Rect{X: 0, Y: 6, W: 4, H: 4})
	if err != nil {
		t.Fatal(err)
	}
	if b, _ := res.Layout.Find("B"); b.Y != 0 {
		t.Errorf("B.Y = %d, want 0", b.Y)
	}
}

func TestUnmovedItemKeepsPreexistingOverlap(t *testing.T) {
	original := grid.Layout{
		{ID: "A", X: 0, Y: 0, W: 4, H: 4},
		{ID: "B", X: 2, Y: 2, W: 4, H: 4},
	}
	for _, p := range []Policy{PolicyRevert, PolicyPush} {
		res, err := New(p, 12).Resolve(original, "A", grid.Rect{X: 0, Y: 0, W: 4, H: 4})
		if err != nil {
			t.Fatal(err)
		}
		if res.Collided || res.Reverted || len(res.Pushed) > 0 || !res.Layout.Equal(original) {
			t.Errorf("%s: dropping A in place changed the layout: %+v", p, res)
		}
	}
}
