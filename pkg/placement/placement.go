// Package placement finds free space for new items.
//
// [Find] builds an occupancy bitmap of the layout and returns the first
// w×h region, scanning rows top to bottom and columns left to right, that
// touches no occupied cell. The returned region never overlaps an existing
// item.
package placement

import "github.com/matzehuels/dashgrid/pkg/grid"

// Buffer is the number of spare rows scanned below the tallest candidate
// position.
const Buffer = 1

// Occupancy is a columns×rows bitmap of cells covered by items.
type Occupancy struct {
	columns int
	rows    int
	cells   []bool
}

// NewOccupancy marks every cell of l inside a grid of the given size. Cells
// outside the bitmap are ignored.
func NewOccupancy(l grid.Layout, columns, rows int) *Occupancy {
	o := &Occupancy{columns: columns, rows: rows, cells: make([]bool, columns*rows)}
	for _, it := range l {
		o.Mark(it.Rect())
	}
	return o
}

// Columns returns the bitmap width.
func (o *Occupancy) Columns() int { return o.columns }

// Rows returns the bitmap height.
func (o *Occupancy) Rows() int { return o.rows }

// Mark sets every cell of r that lies inside the bitmap.
func (o *Occupancy) Mark(r grid.Rect) {
	for y := max(r.Y, 0); y < min(r.Bottom(), o.rows); y++ {
		for x := max(r.X, 0); x < min(r.Right(), o.columns); x++ {
			o.cells[y*o.columns+x] = true
		}
	}
}

// Occupied reports whether cell (x, y) is covered. Cells outside the bitmap
// are reported free.
func (o *Occupancy) Occupied(x, y int) bool {
	if x < 0 || y < 0 || x >= o.columns || y >= o.rows {
		return false
	}
	return o.cells[y*o.columns+x]
}

// Free reports whether r lies inside the grid's columns and covers no
// occupied cell.
func (o *Occupancy) Free(r grid.Rect) bool {
	if r.X < 0 || r.Y < 0 || r.Right() > o.columns || r.Empty() {
		return false
	}
	for y := r.Y; y < r.Bottom(); y++ {
		for x := r.X; x < r.Right(); x++ {
			if o.Occupied(x, y) {
				return false
			}
		}
	}
	return true
}

// Scan returns the first free w×h region in row-major order.
func (o *Occupancy) Scan(w, h int) (grid.Rect, bool) {
	for y := 0; y+h <= o.rows; y++ {
		for x := 0; x+w <= o.columns; x++ {
			if r := (grid.Rect{X: x, Y: y, W: w, H: h}); o.Free(r) {
				return r, true
			}
		}
	}
	return grid.Rect{}, false
}

// Find returns the first free region of size w×h in l. The width is clamped
// to [1, columns] and the height to at least 1.
//
// The scan covers columns × (Bottom + h + Buffer) rows, which always holds a
// free region below the last item. Should the scan still fail, the region is
// placed at x=0 directly below the lowest item.
func Find(l grid.Layout, w, h, columns int) grid.Rect {
	if columns <= 0 {
		columns = grid.DefaultColumns
	}
	size := grid.Clamp(grid.Rect{W: w, H: h}, columns)
	bottom := l.Bottom()

	o := NewOccupancy(l, columns, bottom+size.H+Buffer)
	if r, ok := o.Scan(size.W, size.H); ok {
		return r
	}
	return grid.Rect{X: 0, Y: bottom, W: size.W, H: size.H}
}

// FindFor is Find for an item with constraints: the size is first fitted to
// the item's minimums and maximum.
func FindFor(l grid.Layout, it grid.Item, columns int) grid.Rect {
	size := it.Fit(grid.Rect{W: it.W, H: it.H}, columns)
	return Find(l, size.W, size.H, columns)
}
