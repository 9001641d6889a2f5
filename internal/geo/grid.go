package geo

import "github.com/udisondev/la2spawn/internal/model"

// Grid answers traversability for one map. A coordinate is traversable
// unless it falls inside a blocked rectangle.
// Thread-safe: built once and never modified.
type Grid struct {
	blocked []model.Area
}

// NewGrid creates a grid with the given blocked rectangles.
func NewGrid(blocked ...model.Area) *Grid {
	return &Grid{blocked: append([]model.Area(nil), blocked...)}
}

// IsTraversable reports whether (x, y) is outside every blocked rectangle.
func (g *Grid) IsTraversable(x, y int32) bool {
	for _, a := range g.blocked {
		if a.Contains(x, y) {
			return false
		}
	}
	return true
}

// BlockedCount returns number of blocked rectangles
func (g *Grid) BlockedCount() int {
	return len(g.blocked)
}
