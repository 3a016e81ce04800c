// Package pkg provides the libraries behind dashgrid, the layout engine of a
// dashboard builder.
//
// # Overview
//
// Dashgrid places widgets on a fixed-width column grid. The user edits one
// canonical (desktop) layout by dragging and resizing; the engine decides
// where things end up, keeps an undo history, derives one layout per
// breakpoint and saves the result after edits settle. The pkg directory is
// organized into four areas:
//
//  1. Geometry - [grid], [collision], [snap], [placement], [arrange], [responsive]
//  2. State - [history], [dashboard], [engine]
//  3. Infrastructure - [store], [persist], [config], [errors], [observability]
//  4. Surfaces - [server], [buildinfo]
//
// # Architecture
//
// A gesture flows through the engine like this:
//
//	pointer frame (pixel box or grid rect)
//	         ↓
//	    [snap] package (align to neighbor edges, centers and columns)
//	         ↓
//	    [collision] package (revert or push neighbors)
//	         ↓
//	    [history] package (transient while dragging, one entry on drop)
//	         ↓
//	    [responsive] package (re-derive breakpoint layouts)
//	         ↓
//	    [persist] package (debounced save to a [store] backend)
//
// # Quick Start
//
// Load a dashboard, drag a widget and save:
//
//	import (
//	    "github.com/matzehuels/dashgrid/pkg/config"
//	    "github.com/matzehuels/dashgrid/pkg/dashboard"
//	    "github.com/matzehuels/dashgrid/pkg/engine"
//	    "github.com/matzehuels/dashgrid/pkg/grid"
//	    "github.com/matzehuels/dashgrid/pkg/persist"
//	    "github.com/matzehuels/dashgrid/pkg/store"
//	)
//
//	cfg := config.Default()
//	st, _ := store.Open(ctx, cfg.Persist)
//	snap, _ := st.Load(ctx, "ops")
//
//	saver := persist.New(st, "ops", persist.WithDelay(cfg.DebounceDuration()))
//	defer saver.Close(ctx)
//
//	e, _ := engine.New(cfg, engine.WithSaver(saver))
//	warnings, _ := e.Load(snap)
//
//	s, _ := e.StartDrag("latency")
//	e.Move(s, grid.Rect{X: 4, Y: 0, W: 4, H: 2})
//	out, _ := e.End(s, grid.Rect{X: 6, Y: 0, W: 4, H: 2})
//	if out.Reverted {
//	    // the drop would have overlapped a neighbor
//	}
//
// # Main Packages
//
// ## Geometry
//
// [grid] - Rectangles, items and layouts in grid units, pixel boxes, and the
// conversion between the two.
//
// [collision] - Collision policies applied when a gesture ends:
// no-push-revert (default) and push-neighbors.
//
// [snap] - Pixel-space alignment of a dragged box to neighbor edges, centers
// and column lines within a tolerance.
//
// [placement] - First-fit position finder used when adding widgets.
//
// [arrange] - Whole-layout packing policies: dense, flow and distribute.
//
// [responsive] - Breakpoints and the fixed-12 and proportional projections.
//
// ## State
//
// [history] - Bounded undo/redo stack with Idle, Transient and Committing
// states so a gesture becomes exactly one entry.
//
// [dashboard] - The persisted snapshot {layout, layouts, components}, its
// JSON codec and integrity repair.
//
// [engine] - The facade tying everything together behind explicit drag
// sessions.
//
// ## Infrastructure
//
// [store] - Snapshot stores keyed by dashboard name over file, SQLite,
// Redis, MongoDB, memory and null backends.
//
// [persist] - Debounced saver with content-hash skipping and suppression
// during undo and redo.
//
// [config] - TOML and YAML configuration with defaults and validation.
//
// [errors] - Coded errors shared by every package.
//
// [observability] - Hook registry for engine, store and HTTP events.
//
// ## Surfaces
//
// [server] - chi HTTP API exposing the engine per named dashboard.
//
// [buildinfo] - Version information injected at build time.
//
// # Testing
//
// Run tests:
//
//	go test ./...                            # All tests
//	go test ./pkg/engine/...                 # Specific package
//	DASHGRID_REDIS_ADDR=localhost:6379 \
//	DASHGRID_MONGO_URI=mongodb://localhost \
//	    go test ./pkg/store/...              # Include live backends
//
// [grid]: https://pkg.go.dev/github.com/matzehuels/dashgrid/pkg/grid
// [collision]: https://pkg.go.dev/github.com/matzehuels/dashgrid/pkg/collision
// [snap]: https://pkg.go.dev/github.com/matzehuels/dashgrid/pkg/snap
// [placement]: https://pkg.go.dev/github.com/matzehuels/dashgrid/pkg/placement
// [arrange]: https://pkg.go.dev/github.com/matzehuels/dashgrid/pkg/arrange
// [responsive]: https://pkg.go.dev/github.com/matzehuels/dashgrid/pkg/responsive
// [history]: https://pkg.go.dev/github.com/matzehuels/dashgrid/pkg/history
// [dashboard]: https://pkg.go.dev/github.com/matzehuels/dashgrid/pkg/dashboard
// [engine]: https://pkg.go.dev/github.com/matzehuels/dashgrid/pkg/engine
// [store]: https://pkg.go.dev/github.com/matzehuels/dashgrid/pkg/store
// [persist]: https://pkg.go.dev/github.com/matzehuels/dashgrid/pkg/persist
// [config]: https://pkg.go.dev/github.com/matzehuels/dashgrid/pkg/config
// [errors]: https://pkg.go.dev/github.com/matzehuels/dashgrid/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/dashgrid/pkg/observability
// [server]: https://pkg.go.dev/github.com/matzehuels/dashgrid/pkg/server
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/dashgrid/pkg/buildinfo
package pkg
