// Package dashboard defines the persisted state of a dashboard: the canonical
// layout, the per-breakpoint layouts derived from it, and the component
// records keyed by item id.
//
// # Wire Format
//
// A [Snapshot] serializes as
//
//	{
//	  "layout":     [{"i": "a", "x": 0, "y": 0, "w": 6, "h": 4, "minW": 2}],
//	  "layouts":    {"mobile": [...]},
//	  "components": {"a": {"type": "chart", "config": {...}}}
//	}
//
// Component configuration is opaque to the layout engine. It is decoded with
// json.Number so numbers re-encode exactly, which keeps load-then-save
// byte-identical.
//
// # Integrity
//
// Every layout id must have exactly one component and vice versa. [Reconcile]
// repairs snapshots that break this rule (orphans are dropped and reported),
// clamps out-of-bounds geometry and removes breakpoint entries that no longer
// exist in the canonical layout.
package dashboard
