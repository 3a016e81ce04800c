package grid

import (
	"slices"

	"github.com/matzehuels/dashgrid/pkg/errors"
)

// Item is a widget's position on the grid.
//
// The JSON shape is the persisted wire format: {i, x, y, w, h, minW?, minH?, maxW?}.
// Zero constraints mean "unset" and are omitted on output.
type Item struct {
	ID   string `json:"i" bson:"i" yaml:"i"`
	X    int    `json:"x" bson:"x" yaml:"x"`
	Y    int    `json:"y" bson:"y" yaml:"y"`
	W    int    `json:"w" bson:"w" yaml:"w"`
	H    int    `json:"h" bson:"h" yaml:"h"`
	MinW int    `json:"minW,omitempty" bson:"minW,omitempty" yaml:"minW,omitempty"`
	MinH int    `json:"minH,omitempty" bson:"minH,omitempty" yaml:"minH,omitempty"`
	MaxW int    `json:"maxW,omitempty" bson:"maxW,omitempty" yaml:"maxW,omitempty"`
}

// Rect returns the item's grid rectangle.
func (it Item) Rect() Rect {
	return Rect{X: it.X, Y: it.Y, W: it.W, H: it.H}
}

// WithRect returns a copy of the item placed at r.
func (it Item) WithRect(r Rect) Item {
	it.X, it.Y, it.W, it.H = r.X, r.Y, r.W, r.H
	return it
}

// Fit applies the item's constraints to r and clamps the result into a grid
// of the given column count. For a normalized item (see Normalize) the
// returned rectangle always satisfies the item invariant.
func (it Item) Fit(r Rect, columns int) Rect {
	return it.fit(r, columns, Clamp)
}

// FitSize is Fit for resize gestures: the origin stays put and the width
// shrinks to the available columns instead of shifting left.
func (it Item) FitSize(r Rect, columns int) Rect {
	return it.fit(r, columns, ClampSize)
}

func (it Item) fit(r Rect, columns int, clamp func(Rect, int) Rect) Rect {
	if columns <= 0 {
		columns = DefaultColumns
	}
	if it.MaxW > 0 && r.W > it.MaxW {
		r.W = it.MaxW
	}
	if it.MinW > 0 && r.W < it.MinW {
		r.W = it.MinW
	}
	if it.MinH > 0 && r.H < it.MinH {
		r.H = it.MinH
	}
	r = clamp(r, columns)
	if it.MinW > 0 && r.W < it.MinW {
		// ClampSize narrowed it against the right edge; shift left instead.
		r.W = min(it.MinW, columns)
		r.X = clampInt(r.X, 0, columns-r.W)
	}
	return r
}

// Normalize makes the item's constraints consistent with a grid of the given
// column count: MinW is capped to columns, MaxW is raised to MinW, and the
// rectangle is fitted.
func (it Item) Normalize(columns int) Item {
	if columns <= 0 {
		columns = DefaultColumns
	}
	it.MinW = clampInt(it.MinW, 0, columns)
	it.MinH = max(it.MinH, 0)
	if it.MaxW < 0 {
		it.MaxW = 0
	}
	if it.MaxW > 0 && it.MaxW < it.MinW {
		it.MaxW = it.MinW
	}
	return it.WithRect(it.Fit(it.Rect(), columns))
}

// Valid reports whether the item satisfies the invariant for columns.
func (it Item) Valid(columns int) bool {
	return it.X >= 0 && it.Y >= 0 &&
		it.W >= 1 && it.H >= 1 &&
		it.X+it.W <= columns &&
		it.W >= it.MinW && it.H >= it.MinH
}

// Layout is an ordered set of items. Order is significant for persistence
// (it is written as-is) but not for geometry.
type Layout []Item

// Clone returns a copy of l that shares no memory with it.
func (l Layout) Clone() Layout {
	if l == nil {
		return nil
	}
	return slices.Clone(l)
}

// Index returns the position of the item with the given id, or -1.
func (l Layout) Index(id string) int {
	for i := range l {
		if l[i].ID == id {
			return i
		}
	}
	return -1
}

// Find returns the item with the given id.
func (l Layout) Find(id string) (Item, bool) {
	if i := l.Index(id); i >= 0 {
		return l[i], true
	}
	return Item{}, false
}

// IDs returns the item ids in layout order.
func (l Layout) IDs() []string {
	ids := make([]string, len(l))
	for i, it := range l {
		ids[i] = it.ID
	}
	return ids
}

// Bottom returns the first free row below every item (max of y+h), 0 when empty.
func (l Layout) Bottom() int {
	bottom := 0
	for _, it := range l {
		bottom = max(bottom, it.Y+it.H)
	}
	return bottom
}

// Equal reports whether l and o hold the same items in the same order.
func (l Layout) Equal(o Layout) bool {
	return slices.Equal(l, o)
}

// Collides reports whether r overlaps any item except the one named skip.
func (l Layout) Collides(r Rect, skip string) bool {
	for _, it := range l {
		if it.ID != skip && Overlaps(r, it.Rect()) {
			return true
		}
	}
	return false
}

// Overlapping returns every pair of overlapping item ids.
func (l Layout) Overlapping() [][2]string {
	var pairs [][2]string
	for i := range l {
		for j := i + 1; j < len(l); j++ {
			if Overlaps(l[i].Rect(), l[j].Rect()) {
				pairs = append(pairs, [2]string{l[i].ID, l[j].ID})
			}
		}
	}
	return pairs
}

// ReadOrder returns the item indices sorted top-to-bottom, then left-to-right.
// Ties keep the original order.
func (l Layout) ReadOrder() []int {
	idx := make([]int, len(l))
	for i := range idx {
		idx[i] = i
	}
	slices.SortStableFunc(idx, func(a, b int) int {
		if l[a].Y != l[b].Y {
			return l[a].Y - l[b].Y
		}
		return l[a].X - l[b].X
	})
	return idx
}

// Validate checks the bounds invariant of every item and that ids are unique
// and non-empty. Overlaps are not checked here; see Overlapping.
func (l Layout) Validate(columns int) error {
	seen := make(map[string]bool, len(l))
	for _, it := range l {
		if err := errors.ValidateItemID(it.ID); err != nil {
			return err
		}
		if seen[it.ID] {
			return errors.New(errors.ErrCodeDuplicateItem, "duplicate item id %q", it.ID)
		}
		seen[it.ID] = true
		if !it.Valid(columns) {
			return errors.New(errors.ErrCodeInvalidGeometry, "item %q out of bounds: %v", it.ID, it.Rect())
		}
	}
	return nil
}
