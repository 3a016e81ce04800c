// Package arrange re-lays-out a whole dashboard under a named packing policy.
//
// Every arranger is a pure function from layout to layout: item sizes are
// kept, only x and y are recomputed, and the output keeps the input's item
// order. Items are visited in read order (top to bottom, then left to
// right), which is also the tie-break for every policy.
//
// Available policies:
//
//   - [Dense]: greedy first fit through the position finder; fills holes
//     and keeps total height low.
//   - [Flow]: left to right, wrapping when a row is full; each row is as tall
//     as its tallest item.
//   - [Distribute]: rows as in Flow, with the spare columns of each row
//     spread evenly between and around its items.
package arrange

import (
	"github.com/matzehuels/dashgrid/pkg/errors"
	"github.com/matzehuels/dashgrid/pkg/grid"
)

// Policy names an arrange policy.
type Policy string

const (
	PolicyDense      Policy = "dense"
	PolicyFlow       Policy = "flow"
	PolicyDistribute Policy = "distribute"
)

// DefaultPolicy is used when none is configured.
const DefaultPolicy = PolicyDense

// Policies lists every supported policy.
var Policies = []Policy{PolicyDense, PolicyFlow, PolicyDistribute}

// ParsePolicy converts a configuration string into a Policy. The empty string
// selects DefaultPolicy.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case "":
		return DefaultPolicy, nil
	case PolicyDense, PolicyFlow, PolicyDistribute:
		return Policy(s), nil
	}
	return "", errors.New(errors.ErrCodeInvalidPolicy, "unknown arrange policy %q", s)
}

// Arranger computes a new layout for a full item set.
type Arranger interface {
	Arrange(l grid.Layout) grid.Layout
}

// ForPolicy returns the arranger for a policy on a grid of the given width.
func ForPolicy(p Policy, columns int) (Arranger, error) {
	if columns <= 0 {
		columns = grid.DefaultColumns
	}
	switch p {
	case PolicyDense, "":
		return Dense{Columns: columns}, nil
	case PolicyFlow:
		return Flow{Columns: columns}, nil
	case PolicyDistribute:
		return Distribute{Columns: columns}, nil
	}
	return nil, errors.New(errors.ErrCodeInvalidPolicy, "unknown arrange policy %q", p)
}

// Arrange runs the named policy on l.
func Arrange(p Policy, l grid.Layout, columns int) (grid.Layout, error) {
	a, err := ForPolicy(p, columns)
	if err != nil {
		return nil, err
	}
	return a.Arrange(l), nil
}

// sized returns a copy of l whose widths fit the grid. Heights and widths are
// otherwise untouched.
func sized(l grid.Layout, columns int) grid.Layout {
	out := l.Clone()
	for i := range out {
		out[i].W = min(max(out[i].W, 1), columns)
		out[i].H = max(out[i].H, 1)
	}
	return out
}
