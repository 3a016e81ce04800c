package grid

import (
	"math"

	"github.com/matzehuels/dashgrid/pkg/errors"
)

// Box is a rectangle in pixel space, as reported by a pointer gesture.
type Box struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Right returns the right edge of the box.
func (b Box) Right() float64 { return b.X + b.W }

// Bottom returns the bottom edge of the box.
func (b Box) Bottom() float64 { return b.Y + b.H }

// CenterX returns the horizontal center of the box.
func (b Box) CenterX() float64 { return b.X + b.W/2 }

// CenterY returns the vertical center of the box.
func (b Box) CenterY() float64 { return b.Y + b.H/2 }

// Validate rejects boxes that cannot describe a rectangle: NaN or infinite
// coordinates and negative sizes.
func (b Box) Validate() error {
	for _, v := range [...]float64{b.X, b.Y, b.W, b.H} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return errors.New(errors.ErrCodeInvalidGeometry, "box has non-finite coordinate: %v", b)
		}
	}
	if b.W < 0 || b.H < 0 {
		return errors.New(errors.ErrCodeInvalidGeometry, "box has negative size: w=%g h=%g", b.W, b.H)
	}
	return nil
}

// Metrics converts between grid units and pixels.
type Metrics struct {
	ColumnWidth float64 // pixel width of one column
	RowHeight   float64 // pixel height of one row
}

// NewMetrics derives metrics from the container width and row height.
func NewMetrics(containerWidth float64, columns int, rowHeight float64) Metrics {
	if columns <= 0 {
		columns = DefaultColumns
	}
	return Metrics{
		ColumnWidth: containerWidth / float64(columns),
		RowHeight:   rowHeight,
	}
}

// ToBox converts a grid rectangle to pixel space.
func (m Metrics) ToBox(r Rect) Box {
	return Box{
		X: float64(r.X) * m.ColumnWidth,
		Y: float64(r.Y) * m.RowHeight,
		W: float64(r.W) * m.ColumnWidth,
		H: float64(r.H) * m.RowHeight,
	}
}

// ToRect converts a pixel box to the nearest grid rectangle.
// Sizes round to at least one unit; the result is not clamped to the grid.
func (m Metrics) ToRect(b Box) Rect {
	return Rect{
		X: roundUnit(b.X, m.ColumnWidth),
		Y: roundUnit(b.Y, m.RowHeight),
		W: max(roundUnit(b.W, m.ColumnWidth), 1),
		H: max(roundUnit(b.H, m.RowHeight), 1),
	}
}

// Columns returns how many columns are needed to hold px pixels.
func (m Metrics) Columns(px float64) int {
	return ceilUnit(px, m.ColumnWidth)
}

// Rows returns how many rows are needed to hold px pixels.
func (m Metrics) Rows(px float64) int {
	return ceilUnit(px, m.RowHeight)
}

// maxUnits bounds pixel conversions so float to int stays well defined.
const maxUnits = 1 << 30

func roundUnit(px, unit float64) int {
	if unit <= 0 {
		return 0
	}
	return toUnits(math.Round(px / unit))
}

func ceilUnit(px, unit float64) int {
	if unit <= 0 || px <= 0 {
		return 0
	}
	return toUnits(math.Ceil(px/unit - 1e-9))
}

func toUnits(v float64) int {
	return int(max(min(v, maxUnits), -maxUnits))
}
