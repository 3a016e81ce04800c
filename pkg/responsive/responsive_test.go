package responsive

import (
	"testing"

	"github.com/matzehuels/dashgrid/pkg/errors"
	"github.com/matzehuels/dashgrid/pkg/grid"
)

func canonical() grid.Layout {
	return grid.Layout{
		{ID: "a", X: 0, Y: 0, W: 6, H: 4},
		{ID: "b", X: 6, Y: 0, W: 6, H: 4},
		{ID: "c", X: 0, Y: 4, W: 12, H: 2},
	}
}

func TestFixedCopiesCoordinates(t *testing.T) {
	p, err := New(PolicyFixed, 12)
	if err != nil {
		t.Fatal(err)
	}
	l := canonical()
	layouts := p.Project(l)
	if len(layouts) != 3 {
		t.Fatalf("got %d breakpoints, want 3", len(layouts))
	}
	for name, got := range layouts {
		if !got.Equal(l) {
			t.Errorf("%s = %v, want canonical coordinates", name, got)
		}
	}
}

func TestFixedFillsDefaultsAndClamps(t *testing.T) {
	p, err := New(PolicyFixed, 12, WithDefaults(Defaults{MinW: 2, MinH: 2, MaxW: 6}))
	if err != nil {
		t.Fatal(err)
	}
	l := grid.Layout{
		{ID: "narrow", X: 0, Y: 0, W: 1, H: 3},
		{ID: "wide", X: 10, Y: 0, W: 8, H: 1, MinW: 4},
	}
	bp, _ := p.Breakpoint(Mobile)
	got := p.ProjectOne(l, bp)

	if n := got[0]; n.MinW != 1 || n.MinH != 2 || n.MaxW != 6 || n.W != 1 || n.H != 3 {
		t.Errorf("narrow = %+v", n)
	}
	if w := got[1]; w.MinW != 4 || w.MaxW != 8 || w.X != 4 || w.W != 8 {
		t.Errorf("wide = %+v", w)
	}
	if err := got.Validate(12); err != nil {
		t.Errorf("projected layout invalid: %v", err)
	}
}

func TestProportionalScales(t *testing.T) {
	p, err := New(PolicyProportional, 12)
	if err != nil {
		t.Fatal(err)
	}
	layouts := p.Project(canonical())

	tests := []struct {
		bp   string
		want []grid.Rect
	}{
		{Desktop, []grid.Rect{{X: 0, Y: 0, W: 6, H: 4}, {X: 6, Y: 0, W: 6, H: 4}, {X: 0, Y: 4, W: 12, H: 2}}},
		{Tablet, []grid.Rect{{X: 0, Y: 0, W: 4, H: 4}, {X: 4, Y: 0, W: 4, H: 4}, {X: 0, Y: 4, W: 8, H: 2}}},
		{Mobile, []grid.Rect{{X: 0, Y: 0, W: 2, H: 4}, {X: 2, Y: 0, W: 2, H: 4}, {X: 0, Y: 4, W: 4, H: 2}}},
	}
	for _, tt := range tests {
		t.Run(tt.bp, func(t *testing.T) {
			got := layouts[tt.bp]
			for i, r := range tt.want {
				if got[i].Rect() != r {
					t.Errorf("%s = %v, want %v", got[i].ID, got[i].Rect(), r)
				}
			}
		})
	}
}

func TestProportionalAvoidsNewOverlaps(t *testing.T) {
	p, err := New(PolicyProportional, 12)
	if err != nil {
		t.Fatal(err)
	}
	l := grid.Layout{
		{ID: "a", X: 0, Y: 0, W: 5, H: 2},
		{ID: "b", X: 5, Y: 0, W: 7, H: 2},
	}
	bp, _ := p.Breakpoint(Mobile)
	got := p.ProjectOne(l, bp)
	if pairs := got.Overlapping(); len(pairs) != 0 {
		t.Fatalf("overlaps after scaling: %v", pairs)
	}
	if got[1].Y != 2 {
		t.Errorf("b.Y = %d, want 2", got[1].Y)
	}
	if err := got.Validate(4); err != nil {
		t.Error(err)
	}
}

func TestActive(t *testing.T) {
	p, err := New(PolicyFixed, 12)
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		width float64
		want  string
	}{
		{1920, Desktop},
		{1024, Desktop},
		{1023, Tablet},
		{768, Tablet},
		{320, Mobile},
		{-5, Mobile},
	}
	for _, tt := range tests {
		if got := p.Active(tt.width).Name; got != tt.want {
			t.Errorf("Active(%v) = %s, want %s", tt.width, got, tt.want)
		}
	}
}

func TestNewRejectsBadConfig(t *testing.T) {
	if _, err := New("stretchy", 12); !errors.Is(err, errors.ErrCodeInvalidPolicy) {
		t.Errorf("bad policy err = %v", err)
	}
	tests := []struct {
		name string
		bps  []Breakpoint
	}{
		{"empty", []Breakpoint{}},
		{"no name", []Breakpoint{{Columns: 4}}},
		{"duplicate", []Breakpoint{{Name: "x", Columns: 4}, {Name: "x", Columns: 2}}},
		{"zero columns", []Breakpoint{{Name: "x"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(PolicyFixed, 12, WithBreakpoints(tt.bps))
			if !errors.Is(err, errors.ErrCodeInvalidConfig) {
				t.Errorf("err = %v, want INVALID_CONFIG", err)
			}
		})
	}
}
