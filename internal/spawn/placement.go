package spawn

import (
	"log/slog"
	"math/rand/v2"
	"sync"

	"github.com/udisondev/la2spawn/internal/model"
)

// DefaultPlacementRetries bounds how many random draws a rectangle gets
// before placement falls back to its center.
const DefaultPlacementRetries = 10

// Resolver turns a spawn definition into concrete positions and facings.
// It never touches world state; the only shared state is its random
// source, which is guarded.
type Resolver struct {
	mapID    int32
	geometry Geometry
	retries  int

	mu  sync.Mutex
	rng *rand.Rand
}

// NewResolver creates a resolver for mapID. A nil geometry treats every
// coordinate as traversable; a nil rng uses a randomly seeded source.
func NewResolver(mapID int32, geometry Geometry, retries int, rng *rand.Rand) *Resolver {
	if retries <= 0 {
		retries = DefaultPlacementRetries
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Resolver{
		mapID:    mapID,
		geometry: geometry,
		retries:  retries,
		rng:      rng,
	}
}

// Resolve returns one placement per instance of def, quantity in total.
func (r *Resolver) Resolve(def *model.SpawnDefinition) []model.Location {
	n := max(def.Quantity(), 0)
	out := make([]model.Location, 0, n)
	for range n {
		out = append(out, r.ResolveOne(def))
	}
	return out
}

// ResolveOne returns a single placement for def.
func (r *Resolver) ResolveOne(def *model.SpawnDefinition) model.Location {
	area := def.Area()
	x, y := r.pick(area, def.ID())
	return model.NewLocation(x, y, area.Z, r.facing(def.Direction()))
}

// PickPoint returns a traversable point inside area, or its center when
// none was found within the retry limit.
func (r *Resolver) PickPoint(area model.Area) (int32, int32) {
	return r.pick(area, 0)
}

func (r *Resolver) pick(area model.Area, definitionID int32) (int32, int32) {
	if area.IsPoint() {
		return area.XMin, area.YMin
	}

	for range r.retries {
		x, y := r.drawInside(area)
		if r.traversable(x, y) {
			return x, y
		}
	}

	cx, cy := area.Center()
	slog.Warn("placement degraded",
		"mapID", r.mapID,
		"spawnID", definitionID,
		"area", area.String(),
		"retries", r.retries,
		"x", cx,
		"y", cy)
	return cx, cy
}

func (r *Resolver) drawInside(area model.Area) (int32, int32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	x := area.XMin + int32(r.rng.Int64N(int64(area.XMax)-int64(area.XMin)+1))
	y := area.YMin + int32(r.rng.Int64N(int64(area.YMax)-int64(area.YMin)+1))
	return x, y
}

func (r *Resolver) facing(d model.Direction) uint16 {
	if heading, ok := d.Heading(); ok {
		return heading
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return model.CompassHeadings[r.rng.IntN(len(model.CompassHeadings))]
}

func (r *Resolver) traversable(x, y int32) bool {
	if r.geometry == nil {
		return true
	}
	return r.geometry.IsTraversable(r.mapID, x, y)
}
