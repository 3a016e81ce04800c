package dashboard

import (
	"maps"
	"reflect"

	"github.com/matzehuels/dashgrid/pkg/grid"
)

// Widget type tags used by the bundled tools. Any other string is accepted.
const (
	TypeChart  = "chart"
	TypeText   = "text"
	TypeFilter = "filter"
)

// Component is a widget's record. Only the size hints are read by the layout
// engine; Config belongs to the widget.
type Component struct {
	Type   string         `json:"type" bson:"type" yaml:"type"`
	Config map[string]any `json:"config,omitempty" bson:"config,omitempty" yaml:"config,omitempty"`

	// Minimum rendered size of the content, in pixels.
	MinWidthPx  float64 `json:"minWidthPx,omitempty" bson:"minWidthPx,omitempty" yaml:"minWidthPx,omitempty"`
	MinHeightPx float64 `json:"minHeightPx,omitempty" bson:"minHeightPx,omitempty" yaml:"minHeightPx,omitempty"`
}

// MinSize converts the content size hints to grid units (rounded up).
// Zero means no constraint.
func (c Component) MinSize(m grid.Metrics) (w, h int) {
	return m.Columns(c.MinWidthPx), m.Rows(c.MinHeightPx)
}

// Constrain raises the item's MinW/MinH to the component's content size.
func (c Component) Constrain(it grid.Item, m grid.Metrics) grid.Item {
	w, h := c.MinSize(m)
	it.MinW = max(it.MinW, w)
	it.MinH = max(it.MinH, h)
	return it
}

// Clone returns a deep copy of c.
func (c Component) Clone() Component {
	c.Config = cloneMap(c.Config)
	return c
}

// Snapshot is the unit persisted and checkpointed by history.
type Snapshot struct {
	Layout     grid.Layout            `json:"layout" bson:"layout" yaml:"layout"`
	Layouts    map[string]grid.Layout `json:"layouts,omitempty" bson:"layouts,omitempty" yaml:"layouts,omitempty"`
	Components map[string]Component   `json:"components" bson:"components" yaml:"components"`
}

// New returns an empty snapshot with allocated maps.
func New() Snapshot {
	return Snapshot{
		Layout:     grid.Layout{},
		Components: map[string]Component{},
	}
}

// Clone returns a deep copy of s.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{Layout: s.Layout.Clone()}
	if s.Layouts != nil {
		out.Layouts = make(map[string]grid.Layout, len(s.Layouts))
		for name, l := range s.Layouts {
			out.Layouts[name] = l.Clone()
		}
	}
	if s.Components != nil {
		out.Components = make(map[string]Component, len(s.Components))
		for id, c := range s.Components {
			out.Components[id] = c.Clone()
		}
	}
	return out
}

// Equal reports whether s and o describe the same canonical state. Derived
// breakpoint layouts are ignored.
func (s Snapshot) Equal(o Snapshot) bool {
	if !s.Layout.Equal(o.Layout) || len(s.Components) != len(o.Components) {
		return false
	}
	return maps.EqualFunc(s.Components, o.Components, func(a, b Component) bool {
		return reflect.DeepEqual(a, b)
	})
}

// WithLayout returns a copy of s with the canonical layout replaced and the
// derived layouts cleared.
func (s Snapshot) WithLayout(l grid.Layout) Snapshot {
	out := s.Clone()
	out.Layout = l.Clone()
	out.Layouts = nil
	return out
}

func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneMap(t)
	case []any:
		out := make([]any, len(t))
		for i := range t {
			out[i] = cloneValue(t[i])
		}
		return out
	default:
		return v
	}
}
