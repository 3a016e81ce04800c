package responsive

import (
	"cmp"
	"slices"

	"github.com/matzehuels/dashgrid/pkg/errors"
)

// Breakpoint is a named viewport class. A container at least MinWidth pixels
// wide uses the widest matching breakpoint.
type Breakpoint struct {
	Name     string  `json:"name" toml:"name" yaml:"name"`
	MinWidth float64 `json:"min_width" toml:"min_width" yaml:"min_width"`

	// Columns is the breakpoint's grid width under PolicyProportional.
	// PolicyFixed ignores it.
	Columns int `json:"columns" toml:"columns" yaml:"columns"`
}

// Standard breakpoint names.
const (
	Desktop = "desktop"
	Tablet  = "tablet"
	Mobile  = "mobile"
)

// DefaultBreakpoints returns desktop (≥1024px, 12 columns), tablet (≥768px,
// 8 columns) and mobile (any width, 4 columns).
func DefaultBreakpoints() []Breakpoint {
	return []Breakpoint{
		{Name: Desktop, MinWidth: 1024, Columns: 12},
		{Name: Tablet, MinWidth: 768, Columns: 8},
		{Name: Mobile, MinWidth: 0, Columns: 4},
	}
}

// ValidateBreakpoints checks names are unique and non-empty and that sizes
// are positive.
func ValidateBreakpoints(bps []Breakpoint) error {
	if len(bps) == 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "at least one breakpoint is required")
	}
	seen := make(map[string]bool, len(bps))
	for _, bp := range bps {
		if bp.Name == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "breakpoint name is empty")
		}
		if seen[bp.Name] {
			return errors.New(errors.ErrCodeInvalidConfig, "duplicate breakpoint %q", bp.Name)
		}
		seen[bp.Name] = true
		if bp.MinWidth < 0 {
			return errors.New(errors.ErrCodeInvalidConfig, "breakpoint %q: min_width must be >= 0", bp.Name)
		}
		if bp.Columns <= 0 {
			return errors.New(errors.ErrCodeInvalidConfig, "breakpoint %q: columns must be > 0", bp.Name)
		}
	}
	return nil
}

// sortBreakpoints orders breakpoints widest first.
func sortBreakpoints(bps []Breakpoint) []Breakpoint {
	out := slices.Clone(bps)
	slices.SortStableFunc(out, func(a, b Breakpoint) int {
		return cmp.Compare(b.MinWidth, a.MinWidth)
	})
	return out
}
