// Package snap pulls a dragged or resized rectangle toward nearby alignment
// lines: the edges and centers of other items and the grid's column
// boundaries.
//
// Snapping works in pixel space and runs before collision resolution, so a
// snapped position may still be rejected. The x and y axes snap
// independently.
package snap

import (
	"cmp"
	"math"
	"slices"

	"github.com/matzehuels/dashgrid/pkg/grid"
)

// Axis is the axis a candidate line constrains. An X candidate is a vertical
// line at x = Position.
type Axis string

const (
	AxisX Axis = "x"
	AxisY Axis = "y"
)

// Kind tells what produced a candidate.
type Kind string

const (
	KindEdge   Kind = "edge"
	KindCenter Kind = "center"
	KindColumn Kind = "column"
)

// Strength of each candidate kind. When two candidates are equally close the
// stronger one wins.
const (
	StrengthEdge   = 1.0
	StrengthCenter = 0.8
	StrengthColumn = 0.6
)

// DefaultTolerance is the snap distance in pixels.
const DefaultTolerance = 10.0

// Candidate is an alignment line. Candidates are recomputed for every frame
// and never persisted.
type Candidate struct {
	Axis     Axis    `json:"axis"`
	Position float64 `json:"position"`
	Strength float64 `json:"strength"`
	Kind     Kind    `json:"kind"`
	Source   string  `json:"source,omitempty"` // item id; empty for grid lines
}

// Options selects candidate sources and the tolerance.
type Options struct {
	Enabled   bool
	Tolerance float64 // pixels
	Edges     bool
	Centers   bool
	Columns   bool
}

// DefaultOptions enables every candidate source.
func DefaultOptions() Options {
	return Options{
		Enabled:   true,
		Tolerance: DefaultTolerance,
		Edges:     true,
		Centers:   true,
		Columns:   true,
	}
}

// Result is a snapped box plus the candidates it aligned to, at most one per
// axis, for guide rendering.
type Result struct {
	Box    grid.Box
	Guides []Candidate
}

// Engine computes candidates and snaps boxes for one grid geometry.
type Engine struct {
	opts    Options
	metrics grid.Metrics
	columns int
}

// New returns a snap engine for a grid with the given metrics.
func New(opts Options, m grid.Metrics, columns int) *Engine {
	if opts.Tolerance < 0 {
		opts.Tolerance = 0
	}
	if columns <= 0 {
		columns = grid.DefaultColumns
	}
	return &Engine{opts: opts, metrics: m, columns: columns}
}

// Options returns the engine's options.
func (e *Engine) Options() Options { return e.opts }

// Candidates returns the alignment lines generated by every item in l except
// skip, plus the column boundaries. The result is sorted by axis, then
// position.
func (e *Engine) Candidates(l grid.Layout, skip string) []Candidate {
	if !e.opts.Enabled {
		return nil
	}
	var out []Candidate
	for _, it := range l {
		if it.ID == skip {
			continue
		}
		b := e.metrics.ToBox(it.Rect())
		if e.opts.Edges {
			out = append(out,
				Candidate{AxisX, b.X, StrengthEdge, KindEdge, it.ID},
				Candidate{AxisX, b.Right(), StrengthEdge, KindEdge, it.ID},
				Candidate{AxisY, b.Y, StrengthEdge, KindEdge, it.ID},
				Candidate{AxisY, b.Bottom(), StrengthEdge, KindEdge, it.ID},
			)
		}
		if e.opts.Centers {
			out = append(out,
				Candidate{AxisX, b.CenterX(), StrengthCenter, KindCenter, it.ID},
				Candidate{AxisY, b.CenterY(), StrengthCenter, KindCenter, it.ID},
			)
		}
	}
	if e.opts.Columns {
		for c := 0; c <= e.columns; c++ {
			out = append(out, Candidate{AxisX, float64(c) * e.metrics.ColumnWidth, StrengthColumn, KindColumn, ""})
		}
	}
	slices.SortStableFunc(out, func(a, b Candidate) int {
		if a.Axis != b.Axis {
			return cmp.Compare(a.Axis, b.Axis)
		}
		return cmp.Compare(a.Position, b.Position)
	})
	return out
}

// Snap moves b toward the nearest candidate on each axis. The box's left,
// right and (with Centers enabled) center are compared with every candidate; the closest match
// strictly below the tolerance wins. The size of b is unchanged.
func (e *Engine) Snap(b grid.Box, cands []Candidate) Result {
	res := Result{Box: b}
	if !e.opts.Enabled {
		return res
	}
	xs, ys := []float64{b.X, b.Right()}, []float64{b.Y, b.Bottom()}
	if e.opts.Centers {
		xs, ys = append(xs, b.CenterX()), append(ys, b.CenterY())
	}
	if d, c, ok := e.nearest(cands, AxisX, xs...); ok {
		res.Box.X += d
		res.Guides = append(res.Guides, c)
	}
	if d, c, ok := e.nearest(cands, AxisY, ys...); ok {
		res.Box.Y += d
		res.Guides = append(res.Guides, c)
	}
	return res
}

// SnapResize is Snap for resize gestures: only the right and bottom edges
// move, so the box grows or shrinks instead of shifting.
func (e *Engine) SnapResize(b grid.Box, cands []Candidate) Result {
	res := Result{Box: b}
	if !e.opts.Enabled {
		return res
	}
	if d, c, ok := e.nearest(cands, AxisX, b.Right()); ok && b.W+d >= 0 {
		res.Box.W += d
		res.Guides = append(res.Guides, c)
	}
	if d, c, ok := e.nearest(cands, AxisY, b.Bottom()); ok && b.H+d >= 0 {
		res.Box.H += d
		res.Guides = append(res.Guides, c)
	}
	return res
}

// nearest finds the candidate on axis closest to any of the given features
// and returns the offset that aligns them.
func (e *Engine) nearest(cands []Candidate, axis Axis, features ...float64) (delta float64, best Candidate, ok bool) {
	bestDist := math.Inf(1)
	for _, c := range cands {
		if c.Axis != axis {
			continue
		}
		for _, f := range features {
			d := c.Position - f
			dist := math.Abs(d)
			if dist < bestDist || (dist == bestDist && c.Strength > best.Strength) {
				bestDist, delta, best = dist, d, c
			}
		}
	}
	if bestDist >= e.opts.Tolerance {
		return 0, Candidate{}, false
	}
	return delta, best, true
}
