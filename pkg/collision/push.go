package collision

import "github.com/matzehuels/dashgrid/pkg/grid"

// pushDown moves items overlapped by l[anchor] below it, then repeats for
// every item that moved, until no moved item overlaps anything. The anchor
// itself never moves. Items are only displaced downward, so x bounds hold.
//
// Only overlaps involving a moved item are resolved; pairs that overlapped
// before and were not touched stay as they were.
//
// ok is false if the pass does not settle within its step budget, in which
// case l is left partially modified and the caller must discard it.
func pushDown(l grid.Layout, anchor int) (pushed []string, ok bool) {
	moved := make([]bool, len(l))
	queue := []int{anchor}
	budget := len(l)*len(l) + len(l)

	for len(queue) > 0 {
		m := queue[0]
		queue = queue[1:]

		for _, j := range l.ReadOrder() {
			if j == m || j == anchor || !grid.Overlaps(l[m].Rect(), l[j].Rect()) {
				continue
			}
			if budget--; budget < 0 {
				return nil, false
			}
			l[j].Y = l[m].Rect().Bottom()
			moved[j] = true
			queue = append(queue, j)
		}
	}

	for _, j := range l.ReadOrder() {
		if moved[j] {
			pushed = append(pushed, l[j].ID)
		}
	}
	return pushed, true
}
