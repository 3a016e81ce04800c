package dashboard

import (
	"maps"
	"slices"

	"github.com/matzehuels/dashgrid/pkg/errors"
	"github.com/matzehuels/dashgrid/pkg/grid"
)

// Reconcile repairs a loaded snapshot so it satisfies the integrity rules and
// returns the repaired copy plus one warning per repair:
//
//   - items with an invalid or duplicate id are dropped
//   - items without a component, and components without an item, are
//     dropped with an ORPHAN_REFERENCE warning
//   - out-of-bounds geometry is clamped (INVALID_GEOMETRY warning)
//   - breakpoint layouts lose entries not present in the canonical layout
//
// Overlaps that already exist in the input are kept; they are reported by
// [grid.Layout.Overlapping] but never rewritten here.
func Reconcile(s Snapshot, columns int) (Snapshot, []error) {
	var warnings []error
	out := Snapshot{
		Layout:     make(grid.Layout, 0, len(s.Layout)),
		Components: make(map[string]Component, len(s.Components)),
	}

	seen := make(map[string]bool, len(s.Layout))
	for _, it := range s.Layout {
		if err := errors.ValidateItemID(it.ID); err != nil {
			warnings = append(warnings, err)
			continue
		}
		if seen[it.ID] {
			warnings = append(warnings, errors.New(errors.ErrCodeDuplicateItem, "duplicate item %q dropped", it.ID))
			continue
		}
		seen[it.ID] = true

		c, ok := s.Components[it.ID]
		if !ok {
			warnings = append(warnings, errors.New(errors.ErrCodeOrphanReference, "item %q has no component; dropped", it.ID))
			continue
		}

		fixed := it.Normalize(columns)
		if fixed.Rect() != it.Rect() {
			warnings = append(warnings, errors.New(errors.ErrCodeInvalidGeometry,
				"item %q clamped from %v to %v", it.ID, it.Rect(), fixed.Rect()))
		}
		out.Layout = append(out.Layout, fixed)
		out.Components[it.ID] = c.Clone()
	}

	for _, id := range slices.Sorted(maps.Keys(s.Components)) {
		if !seen[id] {
			warnings = append(warnings, errors.New(errors.ErrCodeOrphanReference, "component %q has no layout item; dropped", id))
		}
	}

	if len(s.Layouts) > 0 {
		out.Layouts = make(map[string]grid.Layout, len(s.Layouts))
		for name, l := range s.Layouts {
			kept := make(grid.Layout, 0, len(l))
			for _, it := range l {
				if _, ok := out.Components[it.ID]; ok && kept.Index(it.ID) < 0 {
					kept = append(kept, it)
				}
			}
			out.Layouts[name] = kept
		}
	}
	return out, warnings
}

// Check reports whether s satisfies the integrity rules without repairing
// it. The first violation found is returned.
func Check(s Snapshot, columns int) error {
	if err := s.Layout.Validate(columns); err != nil {
		return err
	}
	for _, it := range s.Layout {
		if _, ok := s.Components[it.ID]; !ok {
			return errors.New(errors.ErrCodeOrphanReference, "item %q has no component", it.ID)
		}
	}
	if len(s.Components) != len(s.Layout) {
		for id := range s.Components {
			if s.Layout.Index(id) < 0 {
				return errors.New(errors.ErrCodeOrphanReference, "component %q has no layout item", id)
			}
		}
	}
	return nil
}
