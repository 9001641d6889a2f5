package world

import (
	"cmp"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/udisondev/la2spawn/internal/model"
)

// Entity is a snapshot of a live monster in the world.
type Entity struct {
	ID        model.InstanceID
	MapID     int32
	Monster   *model.MonsterDefinition
	Location  model.Location
	CreatedAt time.Time
}

type entry struct {
	entity  Entity
	onDeath []func()
}

// World is the in-memory entity lifecycle: it creates, moves, kills and
// destroys monster instances across all maps.
type World struct {
	ids *ObjectIDGenerator

	mu       sync.RWMutex
	entities map[model.InstanceID]*entry
}

// New creates an empty world.
func New() *World {
	return &World{
		ids:      NewObjectIDGenerator(),
		entities: make(map[model.InstanceID]*entry),
	}
}

// Create adds a new instance of monster at loc on mapID.
func (w *World) Create(mapID int32, monster *model.MonsterDefinition, loc model.Location) (model.InstanceID, error) {
	if monster == nil {
		return 0, fmt.Errorf("creating instance on map %d: %w", mapID, ErrNilMonster)
	}

	id := model.InstanceID(w.ids.NextNpcID())

	w.mu.Lock()
	w.entities[id] = &entry{entity: Entity{
		ID:        id,
		MapID:     mapID,
		Monster:   monster,
		Location:  loc,
		CreatedAt: time.Now(),
	}}
	w.mu.Unlock()

	slog.Debug("instance created",
		"objectID", id,
		"mapID", mapID,
		"monsterID", monster.ID(),
		"name", monster.Name(),
		"location", loc)

	return id, nil
}

// OnDeath registers cb to run once when the instance dies.
// Callbacks are not invoked by Destroy.
func (w *World) OnDeath(id model.InstanceID, cb func()) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	e, ok := w.entities[id]
	if !ok {
		return fmt.Errorf("registering death callback for %d: %w", id, ErrInstanceNotFound)
	}
	e.onDeath = append(e.onDeath, cb)
	return nil
}

// Destroy removes the instance without running its death callbacks.
// Unknown ids are ignored.
func (w *World) Destroy(id model.InstanceID) {
	w.mu.Lock()
	_, ok := w.entities[id]
	delete(w.entities, id)
	w.mu.Unlock()

	if ok {
		slog.Debug("instance destroyed", "objectID", id)
	}
}

// Kill removes the instance and runs its death callbacks in the calling
// goroutine, outside the world lock.
func (w *World) Kill(id model.InstanceID) error {
	w.mu.Lock()
	e, ok := w.entities[id]
	delete(w.entities, id)
	w.mu.Unlock()

	if !ok {
		return fmt.Errorf("killing %d: %w", id, ErrInstanceNotFound)
	}

	slog.Debug("instance died",
		"objectID", id,
		"mapID", e.entity.MapID,
		"monsterID", e.entity.Monster.ID())

	for _, cb := range e.onDeath {
		cb()
	}
	return nil
}

// Move relocates the instance, keeping its heading.
func (w *World) Move(id model.InstanceID, x, y int32) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	e, ok := w.entities[id]
	if !ok {
		return fmt.Errorf("moving %d: %w", id, ErrInstanceNotFound)
	}
	loc := e.entity.Location
	e.entity.Location = loc.WithCoordinates(x, y, loc.Z)
	return nil
}

// Location returns the current location of the instance.
func (w *World) Location(id model.InstanceID) (model.Location, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	e, ok := w.entities[id]
	if !ok {
		return model.Location{}, false
	}
	return e.entity.Location, true
}

// Entity returns a snapshot of the instance.
func (w *World) Entity(id model.InstanceID) (Entity, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	e, ok := w.entities[id]
	if !ok {
		return Entity{}, false
	}
	return e.entity, true
}

// Entities returns snapshots of every instance on mapID ordered by id.
func (w *World) Entities(mapID int32) []Entity {
	w.mu.RLock()
	out := make([]Entity, 0, len(w.entities))
	for _, e := range w.entities {
		if e.entity.MapID == mapID {
			out = append(out, e.entity)
		}
	}
	w.mu.RUnlock()

	slices.SortFunc(out, func(a, b Entity) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return out
}

// ObjectCount returns total number of instances in the world
func (w *World) ObjectCount() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.entities)
}
