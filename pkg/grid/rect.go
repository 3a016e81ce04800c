package grid

import "fmt"

// DefaultColumns is the column count of the reference dashboard grid.
const DefaultColumns = 12

// Rect is an axis-aligned rectangle in grid units.
// X and Y address the top-left cell; W and H are spans in columns and rows.
type Rect struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

// Right returns the exclusive right edge (X + W).
func (r Rect) Right() int { return r.X + r.W }

// Bottom returns the exclusive bottom edge (Y + H).
func (r Rect) Bottom() int { return r.Y + r.H }

// Area returns the number of cells covered by r.
func (r Rect) Area() int { return r.W * r.H }

// Empty reports whether r covers no cells.
func (r Rect) Empty() bool { return r.W <= 0 || r.H <= 0 }

// Contains reports whether o lies entirely inside r.
func (r Rect) Contains(o Rect) bool {
	return o.X >= r.X && o.Y >= r.Y && o.Right() <= r.Right() && o.Bottom() <= r.Bottom()
}

// Overlaps reports whether r and o share at least one cell.
func (r Rect) Overlaps(o Rect) bool { return Overlaps(r, o) }

// Translate returns r moved to (x, y) with its size unchanged.
func (r Rect) Translate(x, y int) Rect {
	r.X, r.Y = x, y
	return r
}

// Resize returns r with a new size and its origin unchanged.
func (r Rect) Resize(w, h int) Rect {
	r.W, r.H = w, h
	return r
}

func (r Rect) String() string {
	return fmt.Sprintf("{x:%d y:%d w:%d h:%d}", r.X, r.Y, r.W, r.H)
}

// Overlaps reports whether a and b intersect. Intervals are half-open, so
// rectangles that only touch along an edge do not overlap.
func Overlaps(a, b Rect) bool {
	return !(a.Right() <= b.X ||
		b.Right() <= a.X ||
		a.Bottom() <= b.Y ||
		b.Bottom() <= a.Y)
}

// Clamp forces r inside a grid of the given column count: w into
// [1, columns], x into [0, columns-w], y to at least 0 and h to at least 1.
// Non-positive columns are treated as DefaultColumns.
func Clamp(r Rect, columns int) Rect {
	if columns <= 0 {
		columns = DefaultColumns
	}
	r.W = clampInt(r.W, 1, columns)
	r.X = clampInt(r.X, 0, columns-r.W)
	r.Y = max(r.Y, 0)
	r.H = max(r.H, 1)
	return r
}

// ClampSize is Clamp for resize gestures: the origin is kept and the width
// is capped to the columns remaining to its right.
func ClampSize(r Rect, columns int) Rect {
	if columns <= 0 {
		columns = DefaultColumns
	}
	r.X = clampInt(r.X, 0, columns-1)
	r.Y = max(r.Y, 0)
	r.W = clampInt(r.W, 1, columns-r.X)
	r.H = max(r.H, 1)
	return r
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
