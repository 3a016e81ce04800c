// Package collision decides what a gesture commits when the proposed
// rectangle for one item overlaps others.
//
// Every decision is made against the pre-gesture layout, never against the
// positions shown during a live drag. Feeding the same original layout to
// every frame is what keeps pushes from cascading frame over frame.
//
// Two policies exist. [PolicyRevert] (the default) rejects a colliding
// proposal and puts the dragged item back where the gesture started.
// [PolicyPush] keeps the proposal and moves overlapped neighbors down until
// nothing overlaps the items that moved.
package collision

import (
	"github.com/matzehuels/dashgrid/pkg/errors"
	"github.com/matzehuels/dashgrid/pkg/grid"
)

// Policy names a collision policy.
type Policy string

const (
	// PolicyRevert commits the dragged item at its pre-gesture rectangle
	// when the proposal collides.
	PolicyRevert Policy = "no-push-revert"

	// PolicyPush commits the proposal and pushes overlapped items down.
	PolicyPush Policy = "push-neighbors"
)

// DefaultPolicy is used when no policy is configured.
const DefaultPolicy = PolicyRevert

// Policies lists every supported policy.
var Policies = []Policy{PolicyRevert, PolicyPush}

// ParsePolicy converts a configuration string into a Policy.
// The empty string selects DefaultPolicy.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case "":
		return DefaultPolicy, nil
	case PolicyRevert, PolicyPush:
		return Policy(s), nil
	}
	return "", errors.New(errors.ErrCodeInvalidPolicy, "unknown collision policy %q (want %s or %s)", s, PolicyRevert, PolicyPush)
}

// Result is the layout a gesture resolves to.
type Result struct {
	// Layout is the resolved layout, in the original item order.
	Layout grid.Layout

	// Rect is where the dragged item ends up.
	Rect grid.Rect

	// Collided reports whether the proposal overlapped another item's
	// pre-gesture rectangle.
	Collided bool

	// Reverted reports whether the dragged item was put back.
	Reverted bool

	// Pushed lists neighbors moved by PolicyPush, in read order.
	Pushed []string
}

// Resolver applies a collision policy to proposed rectangles.
type Resolver struct {
	Policy  Policy
	Columns int
}

// New returns a resolver for the given policy and column count.
func New(policy Policy, columns int) *Resolver {
	if policy == "" {
		policy = DefaultPolicy
	}
	if columns <= 0 {
		columns = grid.DefaultColumns
	}
	return &Resolver{Policy: policy, Columns: columns}
}

// Collides reports whether r overlaps any item of original other than id.
func Collides(original grid.Layout, id string, r grid.Rect) bool {
	return original.Collides(r, id)
}

// Resolve computes the layout that results from placing item id at
// proposed, given the layout as it was when the gesture started.
//
// The proposal is first fitted to the item's constraints and the grid. Items
// other than id always start from their original rectangles. original is
// not modified.
func (r *Resolver) Resolve(original grid.Layout, id string, proposed grid.Rect) (Result, error) {
	idx := original.Index(id)
	if idx < 0 {
		return Result{}, errors.New(errors.ErrCodeUnknownItem, "item %q is not in the layout", id)
	}

	self := original[idx]
	fitted := self.Fit(proposed, r.Columns)
	out := Result{
		Layout: original.Clone(),
		Rect:   fitted,
	}
	if fitted == self.Rect() {
		// Unmoved: overlaps that predate the gesture are not ours to fix.
		return out, nil
	}
	out.Collided = Collides(original, id, fitted)

	if !out.Collided {
		out.Layout[idx] = self.WithRect(fitted)
		return out, nil
	}

	switch r.Policy {
	case PolicyPush:
		out.Layout[idx] = self.WithRect(fitted)
		pushed, ok := pushDown(out.Layout, idx)
		if ok {
			out.Pushed = pushed
			return out, nil
		}
		out.Layout = original.Clone()
	case PolicyRevert, "":
	default:
		return Result{}, errors.New(errors.ErrCodeInvalidPolicy, "unknown collision policy %q", r.Policy)
	}

	out.Rect = self.Rect()
	out.Reverted = true
	return out, nil
}
