package pane

// Rect is a screen rectangle in terminal cells.
type Rect struct {
	X, Y, W, H int
}

// Center returns the rectangle's midpoint.
func (r Rect) Center() (float64, float64) {
	return float64(r.X) + float64(r.W)/2, float64(r.Y) + float64(r.H)/2
}

// Area returns W*H.
func (r Rect) Area() int {
	return r.W * r.H
}

// Bounds partitions total among the leaves in proportion to their weights.
// Offsets are computed from cumulative weights so the rectangles tile total
// exactly regardless of rounding.
func (m *Manager) Bounds(total Rect) map[Key]Rect {
	out := make(map[Key]Rect)
	m.bounds(m.root, total, out)
	return out
}

func (m *Manager) bounds(k Key, r Rect, out map[Key]Rect) {
	n := m.nodes.Get(k)
	if n == nil {
		return
	}
	if n.IsLeaf() {
		out[k] = r
		return
	}

	sum := 0
	for _, c := range n.Children {
		if cn := m.nodes.Get(c); cn != nil {
			sum += cn.Weight
		}
	}
	if sum == 0 {
		return
	}

	length := r.W
	if n.Orientation == Horizontal {
		length = r.H
	}

	cum := 0
	for _, c := range n.Children {
		cn := m.nodes.Get(c)
		if cn == nil {
			continue
		}
		start := length * cum / sum
		cum += cn.Weight
		end := length * cum / sum

		sub := r
		if n.Orientation == Horizontal {
			sub.Y = r.Y + start
			sub.H = end - start
		} else {
			sub.X = r.X + start
			sub.W = end - start
		}
		m.bounds(c, sub, out)
	}
}

// Navigate moves the selection to the nearest leaf whose center lies
// strictly in direction d from the active leaf's center. It reports false
// when there is no such leaf.
func (m *Manager) Navigate(d Direction, total Rect) bool {
	rects := m.Bounds(total)
	cur, ok := rects[m.active]
	if !ok {
		return false
	}
	cx, cy := cur.Center()

	var (
		best     Key
		bestDist float64
		found    bool
	)
	for _, k := range m.nodes.Keys() {
		r, ok := rects[k]
		if !ok || k == m.active {
			continue
		}
		x, y := r.Center()
		var onSide bool
		switch d {
		case Up:
			onSide = y < cy
		case Down:
			onSide = y > cy
		case Left:
			onSide = x < cx
		case Right:
			onSide = x > cx
		}
		if !onSide {
			continue
		}
		dx, dy := x-cx, y-cy
		dist := dx*dx + dy*dy
		if !found || dist < bestDist {
			best, bestDist, found = k, dist, true
		}
	}
	if !found {
		return false
	}
	m.active = best
	return true
}
