// Package responsive derives one layout per breakpoint from the canonical
// (desktop) layout.
//
// Two policies are supported. [PolicyFixed], the default, keeps 12 columns
// on every breakpoint: columns just get narrower on smaller screens, so
// coordinates are copied, checked against the grid and given default
// constraints. [PolicyProportional] rescales x and w to each breakpoint's
// column count and re-derives y so scaling introduces no overlaps.
//
// Projected layouts are regenerated after structural changes, never while a
// gesture is in progress.
package responsive

import (
	"github.com/matzehuels/dashgrid/pkg/errors"
	"github.com/matzehuels/dashgrid/pkg/grid"
)

// Policy names a projection policy.
type Policy string

const (
	PolicyFixed        Policy = "fixed-12"
	PolicyProportional Policy = "proportional"
)

// DefaultPolicy is used when none is configured.
const DefaultPolicy = PolicyFixed

// ParsePolicy converts a configuration string into a Policy. The empty string
// selects DefaultPolicy.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case "":
		return DefaultPolicy, nil
	case PolicyFixed, PolicyProportional:
		return Policy(s), nil
	}
	return "", errors.New(errors.ErrCodeInvalidPolicy, "unknown responsive policy %q (want %s or %s)", s, PolicyFixed, PolicyProportional)
}

// Defaults are the constraints filled into items that carry none.
// Zero leaves the constraint unset.
type Defaults struct {
	MinW int `toml:"min_w" yaml:"min_w"`
	MinH int `toml:"min_h" yaml:"min_h"`
	MaxW int `toml:"max_w" yaml:"max_w"`
}

// Projector derives breakpoint layouts.
type Projector struct {
	policy      Policy
	columns     int
	breakpoints []Breakpoint // widest first
	defaults    Defaults
}

// Option configures a Projector.
type Option func(*Projector)

// WithBreakpoints replaces DefaultBreakpoints.
func WithBreakpoints(bps []Breakpoint) Option {
	return func(p *Projector) { p.breakpoints = bps }
}

// WithDefaults sets the constraints filled into unconstrained items.
func WithDefaults(d Defaults) Option {
	return func(p *Projector) { p.defaults = d }
}

// New returns a projector for a canonical grid of the given width.
func New(policy Policy, columns int, opts ...Option) (*Projector, error) {
	if policy == "" {
		policy = DefaultPolicy
	}
	if _, err := ParsePolicy(string(policy)); err != nil {
		return nil, err
	}
	if columns <= 0 {
		columns = grid.DefaultColumns
	}
	p := &Projector{policy: policy, columns: columns, breakpoints: DefaultBreakpoints()}
	for _, opt := range opts {
		opt(p)
	}
	if err := ValidateBreakpoints(p.breakpoints); err != nil {
		return nil, err
	}
	p.breakpoints = sortBreakpoints(p.breakpoints)
	return p, nil
}

// Policy returns the projection policy.
func (p *Projector) Policy() Policy { return p.policy }

// Breakpoints returns the breakpoints, widest first.
func (p *Projector) Breakpoints() []Breakpoint {
	return append([]Breakpoint(nil), p.breakpoints...)
}

// Breakpoint looks up a breakpoint by name.
func (p *Projector) Breakpoint(name string) (Breakpoint, bool) {
	for _, bp := range p.breakpoints {
		if bp.Name == name {
			return bp, true
		}
	}
	return Breakpoint{}, false
}

// Active returns the widest breakpoint whose MinWidth fits widthPx, or the
// narrowest breakpoint if none does.
func (p *Projector) Active(widthPx float64) Breakpoint {
	for _, bp := range p.breakpoints {
		if widthPx >= bp.MinWidth {
			return bp
		}
	}
	return p.breakpoints[len(p.breakpoints)-1]
}

// Columns returns the grid width a breakpoint's layout uses.
func (p *Projector) Columns(bp Breakpoint) int {
	if p.policy == PolicyProportional {
		return bp.Columns
	}
	return p.columns
}

// Project derives the layout of every breakpoint.
func (p *Projector) Project(l grid.Layout) map[string]grid.Layout {
	out := make(map[string]grid.Layout, len(p.breakpoints))
	for _, bp := range p.breakpoints {
		out[bp.Name] = p.ProjectOne(l, bp)
	}
	return out
}

// ProjectOne derives the layout for a single breakpoint. Items keep the
// canonical order.
func (p *Projector) ProjectOne(l grid.Layout, bp Breakpoint) grid.Layout {
	if p.policy == PolicyProportional && bp.Columns != p.columns {
		return p.scale(l, bp.Columns)
	}
	out := make(grid.Layout, len(l))
	for i, it := range l {
		out[i] = p.fill(it).Normalize(p.columns)
	}
	return out
}

// fill sets the default constraints on an item that has none. Defaults never
// exceed the item's current size, so filling cannot invalidate an item.
func (p *Projector) fill(it grid.Item) grid.Item {
	if it.MinW == 0 && p.defaults.MinW > 0 {
		it.MinW = min(p.defaults.MinW, it.W)
	}
	if it.MinH == 0 && p.defaults.MinH > 0 {
		it.MinH = min(p.defaults.MinH, it.H)
	}
	if it.MaxW == 0 && p.defaults.MaxW > 0 {
		it.MaxW = max(p.defaults.MaxW, it.W)
	}
	return it
}

// scale rescales x (rounded down) and w (rounded to nearest) by
// columns/p.columns, then walks the items in read
// order and moves each one down past anything already placed that it
// overlaps.
func (p *Projector) scale(l grid.Layout, columns int) grid.Layout {
	from := p.columns
	out := make(grid.Layout, len(l))
	for i, it := range l {
		it = p.fill(it)
		it.X = it.X * columns / from
		it.W = max((it.W*columns+from/2)/from, 1)
		it.MinW = scaleConstraint(it.MinW, columns, from)
		it.MaxW = scaleConstraint(it.MaxW, columns, from)
		out[i] = it.Normalize(columns)
	}

	placed := make(grid.Layout, 0, len(out))
	for _, i := range l.ReadOrder() {
		r := out[i].Rect()
		for {
			bottom, hit := -1, false
			for _, q := range placed {
				if grid.Overlaps(r, q.Rect()) {
					bottom, hit = max(bottom, q.Rect().Bottom()), true
				}
			}
			if !hit {
				break
			}
			r.Y = bottom
		}
		out[i] = out[i].WithRect(r)
		placed = append(placed, out[i])
	}
	return out
}

// scaleConstraint rescales a width constraint, rounding up.
func scaleConstraint(v, to, from int) int {
	if v <= 0 {
		return 0
	}
	return min(max((v*to+from-1)/from, 1), to)
}
