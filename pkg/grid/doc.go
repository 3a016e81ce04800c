// Package grid provides the geometry of a fixed-column dashboard grid.
//
// # Overview
//
// Dashboards place widgets on a grid of Columns equal-width columns and an
// unbounded number of rows. Every widget occupies an integer rectangle
// [Rect] in grid units. This package owns the pure geometry used by every
// other part of the layout engine:
//
//   - [Overlaps]: exact rectangle intersection with half-open intervals
//     (touching edges do not overlap)
//   - [Clamp]: forces a rectangle inside the grid's columns
//   - [Item], [Layout]: identified rectangles with optional size constraints
//   - [Box], [Metrics]: pixel-space rectangles and the conversion to grid units
//
// # Invariants
//
// A committed item always satisfies
//
//	0 ≤ x, 0 ≤ y, 1 ≤ w ≤ columns, x + w ≤ columns, h ≥ 1, w ≥ minW, h ≥ minH
//
// and [Item.Fit] produces a rectangle that does, for any input.
//
// # Read Order
//
// Several algorithms process items "top-to-bottom, then left-to-right".
// [Layout.ReadOrder] returns the indices in that order; ties keep the
// original slice order so results are deterministic.
//
// # Concurrency
//
// All functions are pure. [Layout] values are plain slices: clone before
// sharing them across goroutines.
package grid
