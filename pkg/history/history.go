// Package history keeps the undo/redo stack of a dashboard.
//
// The manager is a small state machine:
//
//	Idle ──Begin──▶ Transient ──Commit──▶ Committing ──▶ Idle
//	                    │
//	                    └──Cancel──▶ Idle
//
// While Transient, [Manager.SetTransient] replaces the live state without
// touching the stack, so a drag of any number of frames yields at most one
// entry: the one written by Commit. Commits that do not change the state
// record nothing.
//
// The stack is a slice of snapshots with a cursor. Undo and redo move the
// cursor; a commit made with the cursor below the top drops the redo tail.
// At most Depth past states are kept; the oldest fall off first.
package history

import (
	"github.com/matzehuels/dashgrid/pkg/dashboard"
	"github.com/matzehuels/dashgrid/pkg/errors"
)

// DefaultDepth is the number of undo steps kept.
const DefaultDepth = 20

// State is the manager's phase.
type State int

const (
	Idle State = iota
	Transient
	Committing
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Transient:
		return "transient"
	case Committing:
		return "committing"
	}
	return "unknown"
}

// Manager is an undo/redo stack over dashboard snapshots. It is not safe for
// concurrent use.
type Manager struct {
	entries []dashboard.Snapshot
	cursor  int
	depth   int
	state   State
	live    dashboard.Snapshot // valid while Transient
}

// New returns a manager whose only entry is initial. Non-positive depth
// selects DefaultDepth.
func New(initial dashboard.Snapshot, depth int) *Manager {
	if depth <= 0 {
		depth = DefaultDepth
	}
	return &Manager{
		entries: []dashboard.Snapshot{initial.Clone()},
		depth:   depth,
	}
}

// State returns the current phase.
func (m *Manager) State() State { return m.state }

// Depth returns the maximum number of undo steps.
func (m *Manager) Depth() int { return m.depth }

// Len returns the number of stored states, including the current one.
func (m *Manager) Len() int { return len(m.entries) }

// Cursor returns the index of the current entry.
func (m *Manager) Cursor() int { return m.cursor }

// Current returns the state to render: the live state during a gesture,
// otherwise the entry under the cursor. The caller must not modify it.
func (m *Manager) Current() dashboard.Snapshot {
	if m.state == Transient {
		return m.live
	}
	return m.entries[m.cursor]
}

// Committed returns the entry under the cursor, ignoring any live state.
func (m *Manager) Committed() dashboard.Snapshot {
	return m.entries[m.cursor]
}

// CanUndo reports whether Undo would move the cursor.
func (m *Manager) CanUndo() bool { return m.state == Idle && m.cursor > 0 }

// CanRedo reports whether Redo would move the cursor.
func (m *Manager) CanRedo() bool { return m.state == Idle && m.cursor < len(m.entries)-1 }

// Begin enters Transient. The live state starts as the committed one.
func (m *Manager) Begin() error {
	if m.state != Idle {
		return errors.New(errors.ErrCodeGestureInProgress, "cannot begin a gesture while %s", m.state)
	}
	m.state = Transient
	m.live = m.entries[m.cursor]
	return nil
}

// SetTransient replaces the live state without recording history.
func (m *Manager) SetTransient(s dashboard.Snapshot) error {
	if m.state != Transient {
		return errors.New(errors.ErrCodeNoGesture, "no gesture in progress")
	}
	m.live = s.Clone()
	return nil
}

// Commit records s as the new current state and returns to Idle. It may be
// called from Idle for one-shot edits or from Transient to end a gesture.
// recorded is false when s equals the current state.
func (m *Manager) Commit(s dashboard.Snapshot) (recorded bool, err error) {
	if m.state == Committing {
		return false, errors.New(errors.ErrCodeInternal, "commit re-entered")
	}
	m.state = Committing
	defer func() {
		m.state = Idle
		m.live = dashboard.Snapshot{}
	}()

	if s.Equal(m.entries[m.cursor]) {
		return false, nil
	}
	m.entries = append(m.entries[:m.cursor+1], s.Clone())
	if over := len(m.entries) - (m.depth + 1); over > 0 {
		m.entries = append(m.entries[:0], m.entries[over:]...)
	}
	m.cursor = len(m.entries) - 1
	return true, nil
}

// Cancel drops the live state and returns to Idle without recording.
func (m *Manager) Cancel() {
	if m.state == Transient {
		m.state = Idle
		m.live = dashboard.Snapshot{}
	}
}

// Undo moves the cursor back one entry. ok is false, and nothing changes,
// when there is nothing to undo or a gesture is in progress.
func (m *Manager) Undo() (s dashboard.Snapshot, ok bool) {
	if !m.CanUndo() {
		return m.Current(), false
	}
	m.cursor--
	return m.entries[m.cursor], true
}

// Redo moves the cursor forward one entry. ok is false when there is
// nothing to redo or a gesture is in progress.
func (m *Manager) Redo() (s dashboard.Snapshot, ok bool) {
	if !m.CanRedo() {
		return m.Current(), false
	}
	m.cursor++
	return m.entries[m.cursor], true
}

// Replace overwrites the current entry in place, without adding history.
// It is used to attach derived data, such as projected layouts, to the
// state just committed.
func (m *Manager) Replace(s dashboard.Snapshot) {
	m.entries[m.cursor] = s.Clone()
}

// Reset discards all history and makes s the only entry.
func (m *Manager) Reset(s dashboard.Snapshot) {
	m.entries = []dashboard.Snapshot{s.Clone()}
	m.cursor = 0
	m.state = Idle
	m.live = dashboard.Snapshot{}
}
