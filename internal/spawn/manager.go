package spawn

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"runtime"
	"slices"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/udisondev/la2spawn/internal/model"
)

// Manager owns one MapScheduler per activated map.
type Manager struct {
	registry *Registry
	collab   Collaborators
	opts     Options

	mu   sync.Mutex
	maps map[int32]*MapScheduler
}

// NewManager creates a spawn manager over a registry and the external
// collaborators.
func NewManager(registry *Registry, collab Collaborators, opts Options) *Manager {
	return &Manager{
		registry: registry,
		collab:   collab,
		opts:     opts,
		maps:     make(map[int32]*MapScheduler),
	}
}

// ActivateMap loads, validates and activates mapID. Invalid configuration
// leaves the map inactive with nothing created. Activating an active map
// is a no-op.
func (m *Manager) ActivateMap(ctx context.Context, mapID int32) (err error) {
	ctx, span := tracer.Start(ctx, "spawn.ActivateMap",
		trace.WithAttributes(attribute.Int("map.id", int(mapID))))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	s, err := m.scheduler(ctx, mapID)
	if err != nil {
		return err
	}
	if err := s.Activate(ctx); err != nil {
		return fmt.Errorf("activating map %d: %w", mapID, err)
	}
	span.SetAttributes(attribute.String("activation.id", s.ActivationID().String()))
	return nil
}

func (m *Manager) scheduler(ctx context.Context, mapID int32) (*MapScheduler, error) {
	m.mu.Lock()
	s, ok := m.maps[mapID]
	m.mu.Unlock()
	if ok {
		return s, nil
	}

	defs, err := m.registry.Load(ctx, mapID)
	if err != nil {
		return nil, err
	}
	s, err = NewMapScheduler(mapID, defs, m.collab, m.opts)
	if err != nil {
		return nil, fmt.Errorf("preparing map %d: %w", mapID, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.maps[mapID]; ok {
		return existing, nil
	}
	m.maps[mapID] = s
	return s, nil
}

// DeactivateMap removes every instance the map produced and cancels its
// pending respawns. Returns false if the map was not active.
func (m *Manager) DeactivateMap(ctx context.Context, mapID int32) bool {
	_, span := tracer.Start(ctx, "spawn.DeactivateMap",
		trace.WithAttributes(attribute.Int("map.id", int(mapID))))
	defer span.End()

	m.mu.Lock()
	s, ok := m.maps[mapID]
	m.mu.Unlock()
	if !ok {
		return false
	}
	return s.Deactivate()
}

// ActivateAll activates the given maps, or every map the registry knows
// when ids is empty. Maps are activated concurrently; one failing map does
// not stop the others and all failures are joined.
func (m *Manager) ActivateAll(ctx context.Context, ids ...int32) error {
	if len(ids) == 0 {
		var err error
		ids, err = m.registry.MapIDs(ctx)
		if err != nil {
			return err
		}
	}

	workers := m.opts.ActivationWorkers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	var (
		mu   sync.Mutex
		errs []error
	)
	g := new(errgroup.Group)
	g.SetLimit(workers)
	for _, id := range ids {
		g.Go(func() error {
			if err := m.ActivateMap(ctx, id); err != nil {
				slog.Error("map activation failed", "mapID", id, "error", err)
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	slog.Info("maps activated", "requested", len(ids), "failed", len(errs))
	return errors.Join(errs...)
}

// DeactivateAll deactivates every active map.
func (m *Manager) DeactivateAll(ctx context.Context) {
	for _, id := range m.ActiveMaps() {
		m.DeactivateMap(ctx, id)
	}
}

// Scheduler returns the scheduler of a map that was activated at least once.
func (m *Manager) Scheduler(mapID int32) (*MapScheduler, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.maps[mapID]
	return s, ok
}

// ActiveMaps returns ids of active maps in ascending order.
func (m *Manager) ActiveMaps() []int32 {
	m.mu.Lock()
	all := slices.Sorted(maps.Keys(m.maps))
	scheds := make([]*MapScheduler, len(all))
	for i, id := range all {
		scheds[i] = m.maps[id]
	}
	m.mu.Unlock()

	active := all[:0]
	for i, id := range all {
		if scheds[i].IsActive() {
			active = append(active, id)
		}
	}
	return active
}

// ListLiveInstances returns live handles of mapID; empty when the map was
// never activated.
func (m *Manager) ListLiveInstances(mapID int32) []model.LiveInstanceHandle {
	s, ok := m.Scheduler(mapID)
	if !ok {
		return nil
	}
	return s.ListLiveInstances()
}

// PickPoint returns a traversable point inside area of mapID. It backs the
// AI roam picker.
func (m *Manager) PickPoint(mapID int32, area model.Area) (int32, int32) {
	if s, ok := m.Scheduler(mapID); ok {
		return s.PickPoint(area)
	}
	return NewResolver(mapID, m.collab.Geometry, m.opts.PlacementRetries, nil).PickPoint(area)
}
