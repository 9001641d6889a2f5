// Package geo provides map geometry queries used when placing spawns.
package geo

import (
	"log/slog"
	"maps"
)

// Atlas holds one Grid per map. Maps without a grid are fully traversable.
// Thread-safe: grids are registered once at construction and never modified.
type Atlas struct {
	grids map[int32]*Grid
}

// NewAtlas creates an atlas from per-map grids.
func NewAtlas(grids map[int32]*Grid) *Atlas {
	a := &Atlas{grids: make(map[int32]*Grid, len(grids))}
	maps.Copy(a.grids, grids)

	blocked := 0
	for _, g := range a.grids {
		blocked += g.BlockedCount()
	}
	slog.Info("geometry loaded", "maps", len(a.grids), "blocked", blocked)
	return a
}

// IsTraversable reports whether (x, y) on mapID can hold an entity.
func (a *Atlas) IsTraversable(mapID, x, y int32) bool {
	g, ok := a.grids[mapID]
	if !ok {
		return true
	}
	return g.IsTraversable(x, y)
}

// Grid returns the grid for mapID.
func (a *Atlas) Grid(mapID int32) (*Grid, bool) {
	g, ok := a.grids[mapID]
	return g, ok
}
