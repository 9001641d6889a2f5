package spawn

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/udisondev/la2spawn/internal/model"
)

type mapDefinitions struct {
	ordered []*model.SpawnDefinition
	byID    map[int32]*model.SpawnDefinition
}

// Registry holds, per map, the validated immutable list of spawn
// definitions. A map is validated once when first loaded; later loads
// return the cached result.
type Registry struct {
	source  DefinitionSource
	catalog MonsterCatalog

	mu   sync.RWMutex
	maps map[int32]*mapDefinitions
}

// NewRegistry creates a registry reading from source and resolving
// monster references against catalog.
func NewRegistry(source DefinitionSource, catalog MonsterCatalog) *Registry {
	return &Registry{
		source:  source,
		catalog: catalog,
		maps:    make(map[int32]*mapDefinitions),
	}
}

// Load returns the ordered definitions of mapID. Any configuration
// problem fails the whole map; every problem is reported as a ConfigError
// joined into the returned error.
func (r *Registry) Load(ctx context.Context, mapID int32) ([]*model.SpawnDefinition, error) {
	r.mu.RLock()
	md, ok := r.maps[mapID]
	r.mu.RUnlock()
	if ok {
		return slices.Clone(md.ordered), nil
	}

	ctx, span := tracer.Start(ctx, "spawn.Registry.Load",
		trace.WithAttributes(attribute.Int("map.id", int(mapID))))
	defer span.End()

	defs, err := r.source.LoadSpawns(ctx, mapID)
	if err != nil {
		if errors.Is(err, ErrUnknownTrigger) {
			err = &ConfigError{MapID: mapID, Err: err}
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("loading spawns for map %d: %w", mapID, err)
	}

	md, err = r.validate(mapID, defs)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("spawn.definitions", len(md.ordered)))

	r.mu.Lock()
	if existing, ok := r.maps[mapID]; ok {
		md = existing
	} else {
		r.maps[mapID] = md
	}
	r.mu.Unlock()

	slog.Info("spawn definitions loaded", "mapID", mapID, "count", len(md.ordered))
	return slices.Clone(md.ordered), nil
}

// LoadAll validates every map the source knows and returns their ids in
// ascending order. Maps that fail keep failing on Load; all errors are
// joined.
func (r *Registry) LoadAll(ctx context.Context) ([]int32, error) {
	ids, err := r.source.MapIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing maps: %w", err)
	}
	ids = slices.Clone(ids)
	slices.Sort(ids)

	var errs []error
	loaded := make([]int32, 0, len(ids))
	for _, id := range ids {
		if _, err := r.Load(ctx, id); err != nil {
			errs = append(errs, err)
			continue
		}
		loaded = append(loaded, id)
	}
	return loaded, errors.Join(errs...)
}

// MapIDs lists the maps the source knows, whether loaded or not.
func (r *Registry) MapIDs(ctx context.Context) ([]int32, error) {
	ids, err := r.source.MapIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing maps: %w", err)
	}
	ids = slices.Clone(ids)
	slices.Sort(ids)
	return ids, nil
}

// Lookup returns one definition of a loaded map.
func (r *Registry) Lookup(mapID, definitionID int32) (*model.SpawnDefinition, error) {
	r.mu.RLock()
	md, ok := r.maps[mapID]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrMapNotLoaded, mapID)
	}
	def, ok := md.byID[definitionID]
	if !ok {
		return nil, fmt.Errorf("%w: map %d spawn %d", ErrDefinitionNotFound, mapID, definitionID)
	}
	return def, nil
}

func (r *Registry) validate(mapID int32, defs []*model.SpawnDefinition) (*mapDefinitions, error) {
	md := &mapDefinitions{
		ordered: make([]*model.SpawnDefinition, 0, len(defs)),
		byID:    make(map[int32]*model.SpawnDefinition, len(defs)),
	}

	var errs []error
	fail := func(def *model.SpawnDefinition, err error) {
		errs = append(errs, &ConfigError{MapID: mapID, DefinitionID: def.ID(), Err: err})
	}

	for _, def := range defs {
		if def.MapID() != mapID {
			fail(def, fmt.Errorf("%w: declared for map %d", ErrWrongMap, def.MapID()))
			continue
		}
		if _, dup := md.byID[def.ID()]; dup {
			fail(def, ErrDuplicateDefinition)
			continue
		}
		if _, err := r.catalog.Resolve(def.MonsterID()); err != nil {
			fail(def, fmt.Errorf("%w: monster %d: %w", ErrUnresolvedMonster, def.MonsterID(), err))
			continue
		}
		if def.Area().IsInverted() {
			fail(def, fmt.Errorf("%w: %s", ErrInvertedArea, def.Area()))
			continue
		}
		if def.Quantity() <= 0 {
			fail(def, fmt.Errorf("%w: got %d", ErrInvalidQuantity, def.Quantity()))
			continue
		}
		if !def.Trigger().Valid() {
			fail(def, fmt.Errorf("%w: %s", ErrUnknownTrigger, def.Trigger()))
			continue
		}
		if def.Trigger().Gated() && def.EventGate() == "" {
			fail(def, fmt.Errorf("%w: %s", ErrMissingEventGate, def.Trigger()))
			continue
		}
		if !def.Trigger().Gated() && def.EventGate() != "" {
			slog.Warn("event gate ignored for ungated trigger",
				"mapID", mapID,
				"spawnID", def.ID(),
				"trigger", def.Trigger(),
				"gate", def.EventGate())
		}

		md.byID[def.ID()] = def
		md.ordered = append(md.ordered, def)
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("map %d has invalid spawn configuration: %w", mapID, errors.Join(errs...))
	}
	return md, nil
}
