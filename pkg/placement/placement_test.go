package placement

import (
	"math/rand"
	"testing"

	"github.com/matzehuels/dashgrid/pkg/grid"
)

func TestFind(t *testing.T) {
	tests := []struct {
		name string
		l    grid.Layout
		w, h int
		want grid.Rect
	}{
		{
			name: "empty grid",
			w:    4, h: 2,
			want: grid.Rect{X: 0, Y: 0, W: 4, H: 2},
		},
		{
			name: "same row next to existing item",
			l:    grid.Layout{{ID: "a", X: 0, Y: 0, W: 6, H: 4}},
			w:    6, h: 4,
			want: grid.Rect{X: 6, Y: 0, W: 6, H: 4},
		},
		{
			name: "row full wraps below",
			l:    grid.Layout{{ID: "a", X: 0, Y: 0, W: 12, H: 3}},
			w:    4, h: 2,
			want: grid.Rect{X: 0, Y: 3, W: 4, H: 2},
		},
		{
			name: "fills a gap",
			l: grid.Layout{
				{ID: "a", X: 0, Y: 0, W: 4, H: 2},
				{ID: "b", X: 8, Y: 0, W: 4, H: 2},
			},
			w: 4, h: 2,
			want: grid.Rect{X: 4, Y: 0, W: 4, H: 2},
		},
		{
			name: "gap too short",
			l: grid.Layout{
				{ID: "a", X: 0, Y: 0, W: 4, H: 4},
				{ID: "b", X: 4, Y: 1, W: 8, H: 3},
			},
			w: 6, h: 2,
			want: grid.Rect{X: 0, Y: 4, W: 6, H: 2},
		},
		{
			name: "oversized request is clamped",
			w:    20, h: 0,
			want: grid.Rect{X: 0, Y: 0, W: 12, H: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Find(tt.l, tt.w, tt.h, 12); got != tt.want {
				t.Errorf("Find(%d×%d) = %v, want %v", tt.w, tt.h, got, tt.want)
			}
		})
	}
}

func TestFindNeverOverlaps(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	var l grid.Layout
	for i := 0; i < 60; i++ {
		w, h := 1+rng.Intn(12), 1+rng.Intn(5)
		r := Find(l, w, h, 12)
		if l.Collides(r, "") {
			t.Fatalf("step %d: Find(%d×%d) = %v overlaps %v", i, w, h, r, l)
		}
		if r.X < 0 || r.Right() > 12 {
			t.Fatalf("step %d: %v out of bounds", i, r)
		}
		l = append(l, grid.Item{ID: string(rune('a' + i%26)), X: r.X, Y: r.Y, W: r.W, H: r.H})
	}
}

func TestFindForUsesConstraints(t *testing.T) {
	it := grid.Item{W: 1, H: 1, MinW: 3, MinH: 2}
	if got := FindFor(nil, it, 12); got != (grid.Rect{W: 3, H: 2}) {
		t.Errorf("FindFor = %v", got)
	}
}

func TestOccupancy(t *testing.T) {
	o := NewOccupancy(grid.Layout{{ID: "a", X: 2, Y: 1, W: 2, H: 2}}, 12, 4)
	if !o.Occupied(3, 2) || o.Occupied(4, 2) || o.Occupied(99, 0) {
		t.Error("Occupied reports wrong cells")
	}
	if o.Free(grid.Rect{X: 1, Y: 0, W: 2, H: 2}) {
		t.Error("Free should be false for a region touching the item")
	}
	if o.Free(grid.Rect{X: 11, Y: 0, W: 2, H: 1}) {
		t.Error("Free should be false past the right edge")
	}
}
