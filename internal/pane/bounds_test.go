package pane

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// requireTiles checks that rects covers total exactly once per cell and
// that every leaf has a rectangle.
func requireTiles(t *testing.T, total Rect, rects map[Key]Rect, leaves []Key) {
	t.Helper()
	require.Len(t, rects, len(leaves))

	covered := make([]int, total.W*total.H)
	for _, k := range leaves {
		r, ok := rects[k]
		require.True(t, ok, "leaf %s has no bounds", k)
		require.GreaterOrEqual(t, r.W, 0)
		require.GreaterOrEqual(t, r.H, 0)
		for y := r.Y; y < r.Y+r.H; y++ {
			for x := r.X; x < r.X+r.W; x++ {
				require.True(t, x >= total.X && x < total.X+total.W && y >= total.Y && y < total.Y+total.H,
					"leaf %s escapes total at (%d,%d)", k, x, y)
				covered[(y-total.Y)*total.W+(x-total.X)]++
			}
		}
	}
	for i, c := range covered {
		require.Equal(t, 1, c, "cell %d covered %d times", i, c)
	}
}

func TestBoundsSingle(t *testing.T) {
	m := NewManager()
	total := Rect{X: 2, Y: 3, W: 80, H: 24}
	rects := m.Bounds(total)
	require.Equal(t, map[Key]Rect{m.Root(): total}, rects)
}

func TestBoundsVerticalSplit(t *testing.T) {
	m := NewManager()
	orig := m.Active()
	leaf, _ := m.Split(Vertical)
	total := Rect{W: 81, H: 10}

	rects := m.Bounds(total)
	require.Equal(t, Rect{X: 0, Y: 0, W: 40, H: 10}, rects[orig])
	require.Equal(t, Rect{X: 40, Y: 0, W: 41, H: 10}, rects[leaf])
}

func TestBoundsWeighted(t *testing.T) {
	m := NewManager()
	orig := m.Active()
	leaf, _ := m.Split(Horizontal)
	require.True(t, m.Resize(Down, 2))
	total := Rect{W: 10, H: 40}

	rects := m.Bounds(total)
	require.Equal(t, Rect{X: 0, Y: 0, W: 10, H: 10}, rects[orig])
	require.Equal(t, Rect{X: 0, Y: 10, W: 10, H: 30}, rects[leaf])
}

func TestBoundsTileOddSizes(t *testing.T) {
	sizes := []Rect{{W: 1, H: 1}, {W: 7, H: 3}, {X: 5, Y: 1, W: 113, H: 37}, {W: 0, H: 0}}
	for _, total := range sizes {
		m := NewManager()
		m.Split(Vertical)
		m.Split(Vertical)
		m.Split(Horizontal)
		m.Resize(Up, 3)
		m.Cycle()
		m.Split(Horizontal)
		requireTiles(t, total, m.Bounds(total), m.Leaves())
	}
}

func TestNavigate(t *testing.T) {
	// Layout: left column | right column split top/bottom.
	m := NewManager()
	left := m.Active()
	rightTop, _ := m.Split(Vertical)
	rightBottom, _ := m.Split(Horizontal)
	total := Rect{W: 100, H: 40}

	tests := []struct {
		name  string
		from  Key
		dir   Direction
		want  Key
		moved bool
	}{
		{"up from bottom", rightBottom, Up, rightTop, true},
		{"down from top", rightTop, Down, rightBottom, true},
		{"left from bottom", rightBottom, Left, left, true},
		{"right from left ties to first key", left, Right, rightTop, true},
		{"no pane above", rightTop, Up, rightTop, false},
		{"no pane left", left, Left, left, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.True(t, m.SetActive(tt.from))
			require.Equal(t, tt.moved, m.Navigate(tt.dir, total))
			require.Equal(t, tt.want, m.Active())
		})
	}
}
