package spawn

import (
	"context"

	"github.com/udisondev/la2spawn/internal/model"
)

// MonsterCatalog resolves monster references.
type MonsterCatalog interface {
	Resolve(id int32) (*model.MonsterDefinition, error)
}

// DefinitionSource loads declared spawn definitions.
type DefinitionSource interface {
	MapIDs(ctx context.Context) ([]int32, error)
	LoadSpawns(ctx context.Context, mapID int32) ([]*model.SpawnDefinition, error)
}

// Geometry answers whether a coordinate can hold an entity.
type Geometry interface {
	IsTraversable(mapID, x, y int32) bool
}

// EventState notifies when an event gate starts or ends. If the gate is
// already running, onStarted is expected to fire during Subscribe.
type EventState interface {
	Subscribe(gateID string, onStarted, onEnded func()) (unsubscribe func())
}

// Lifecycle creates and destroys game-world entities. Destroy must not
// run death callbacks, and callbacks must not run while Lifecycle holds
// locks the engine could wait on.
type Lifecycle interface {
	Create(mapID int32, monster *model.MonsterDefinition, loc model.Location) (model.InstanceID, error)
	OnDeath(id model.InstanceID, cb func()) error
	Destroy(id model.InstanceID)
}

// Locator is optionally implemented by a Lifecycle that can report where
// an instance currently stands.
type Locator interface {
	Location(id model.InstanceID) (model.Location, bool)
}

// Roamer is the AI collaborator that moves wandering instances inside
// their roam bound.
type Roamer interface {
	Roam(mapID int32, id model.InstanceID, area model.Area)
	Forget(id model.InstanceID)
}

// Collaborators bundles the external systems the engine consumes.
// Roamer may be nil; Events may be nil only if no definition is gated.
type Collaborators struct {
	Catalog   MonsterCatalog
	Geometry  Geometry
	Events    EventState
	Lifecycle Lifecycle
	Roamer    Roamer
}
