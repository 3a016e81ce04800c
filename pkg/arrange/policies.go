package arrange

import (
	"github.com/matzehuels/dashgrid/pkg/grid"
	"github.com/matzehuels/dashgrid/pkg/placement"
)

// =============================================================================
// Dense
// =============================================================================

// Dense packs items first-fit in read order.
type Dense struct{ Columns int }

// Arrange implements Arranger.
func (d Dense) Arrange(l grid.Layout) grid.Layout {
	out := sized(l, d.Columns)
	placed := make(grid.Layout, 0, len(out))
	for _, i := range l.ReadOrder() {
		r := placement.Find(placed, out[i].W, out[i].H, d.Columns)
		out[i].X, out[i].Y = r.X, r.Y
		placed = append(placed, out[i])
	}
	return out
}

// =============================================================================
// Flow
// =============================================================================

// Flow fills rows left to right and wraps when the next item does not fit.
type Flow struct{ Columns int }

// Arrange implements Arranger.
func (f Flow) Arrange(l grid.Layout) grid.Layout {
	out := sized(l, f.Columns)
	for _, row := range rows(out, l.ReadOrder(), f.Columns) {
		x := 0
		for _, i := range row.items {
			out[i].X, out[i].Y = x, row.y
			x += out[i].W
		}
	}
	return out
}

// =============================================================================
// Distribute
// =============================================================================

// Distribute forms the same rows as Flow and spreads each row's spare
// columns evenly: n items get n+1 equal gaps, with any remainder given to
// the leftmost gaps.
type Distribute struct{ Columns int }

// Arrange implements Arranger.
func (d Distribute) Arrange(l grid.Layout) grid.Layout {
	out := sized(l, d.Columns)
	for _, row := range rows(out, l.ReadOrder(), d.Columns) {
		free := d.Columns - row.width
		gaps := len(row.items) + 1
		base, extra := free/gaps, free%gaps

		x := 0
		for k, i := range row.items {
			x += base
			if k < extra {
				x++
			}
			out[i].X, out[i].Y = x, row.y
			x += out[i].W
		}
	}
	return out
}

// =============================================================================
// Row Building
// =============================================================================

type row struct {
	items  []int // indices into the layout, in placement order
	y      int
	width  int // sum of item widths
	height int // tallest item
}

// rows splits the items (visited in order) into flow rows.
func rows(l grid.Layout, order []int, columns int) []row {
	var out []row
	cur := row{}
	for _, i := range order {
		if len(cur.items) > 0 && cur.width+l[i].W > columns {
			out = append(out, cur)
			cur = row{y: cur.y + cur.height}
		}
		cur.items = append(cur.items, i)
		cur.width += l[i].W
		cur.height = max(cur.height, l[i].H)
	}
	if len(cur.items) > 0 {
		out = append(out, cur)
	}
	return out
}
