// Package engine is the single owner of a dashboard's layout state.
//
// An [Engine] holds the canonical layout and component map, and every
// mutation goes through one of its operations:
//
//   - gestures: [Engine.StartDrag] / [Engine.StartResize] return an explicit
//     [DragSession]; [Engine.Move] applies a transient frame; [Engine.End]
//     resolves collisions and commits once; [Engine.Cancel] ends the gesture
//     at its start rectangle
//   - pixel gestures: [Engine.MoveBox] and [Engine.EndBox] snap a pixel box
//     to alignment lines before converting it to grid units
//   - edits: [Engine.AddItem], [Engine.RemoveItem], [Engine.AutoArrange]
//   - history: [Engine.Undo], [Engine.Redo]
//   - state: [Engine.Load], [Engine.Snapshot], [Engine.Projected]
//
// # Gesture Lifecycle
//
// Move frames never reach the undo stack. End writes at most one entry, and
// none when the gesture leaves the layout unchanged. Every committed layout
// is free of new overlaps: under the default no-push-revert policy a drop
// that overlaps another item's pre-gesture rectangle puts the dragged item
// back where it started.
//
// Invalid geometry (non-positive sizes, NaN pixel coordinates) is returned as
// an INVALID_GEOMETRY error and changes nothing. Undo and redo with nothing
// to step to return false.
//
// # Persistence
//
// When a [Saver] is attached, every committed change is scheduled for
// saving. Undo and redo suppress the saver while the history cursor moves,
// then schedule the restored state.
//
// # Concurrency
//
// An Engine is not safe for concurrent use. Callers that share one across
// goroutines (such as the HTTP server) serialize access themselves.
package engine
