package spawn

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/udisondev/la2spawn/internal/model"
)

// DefinitionState is the activation state of one spawn definition.
type DefinitionState uint8

const (
	StateInactive DefinitionState = iota
	StateActive
)

func (s DefinitionState) String() string {
	switch s {
	case StateInactive:
		return "inactive"
	case StateActive:
		return "active"
	default:
		return fmt.Sprintf("DefinitionState(%d)", s)
	}
}

// Options tunes scheduling. Zero values select defaults.
type Options struct {
	// RespawnJitter is the maximum random delay added to each respawn.
	RespawnJitter time.Duration
	// PlacementRetries bounds random draws per rectangle placement.
	PlacementRetries int
	// Seed fixes placement randomness; 0 seeds randomly.
	Seed uint64
	// ActivationWorkers bounds concurrent map activations in ActivateAll.
	ActivationWorkers int
}

func (o Options) rand(mapID int32) *rand.Rand {
	if o.Seed == 0 {
		return nil
	}
	return rand.New(rand.NewPCG(o.Seed, uint64(uint32(mapID))))
}

// definitionSet is the runtime state of one definition: its live
// instances and the epoch that invalidates stale respawns.
type definitionSet struct {
	def     *model.SpawnDefinition
	monster *model.MonsterDefinition
	state   DefinitionState
	epoch   uint64
	live    map[model.InstanceID]*model.LiveInstanceHandle
}

// MapScheduler drives activation, event gates, deaths and respawns of a
// single map. All state changes happen under mu; collaborator callbacks
// are serialized by it.
type MapScheduler struct {
	mapID     int32
	resolver  *Resolver
	lifecycle Lifecycle
	events    EventState
	roamer    Roamer
	respawns  *RespawnTaskManager

	sets   []*definitionSet
	byID   map[int32]*definitionSet
	byGate map[string][]*definitionSet

	mu           sync.Mutex
	active       bool
	activationID uuid.UUID
	unsubscribe  []func()
}

// NewMapScheduler prepares a scheduler for validated definitions of one
// map. Nothing is created until Activate.
func NewMapScheduler(mapID int32, defs []*model.SpawnDefinition, collab Collaborators, opts Options) (*MapScheduler, error) {
	if collab.Lifecycle == nil {
		return nil, errors.New("lifecycle collaborator is required")
	}
	if collab.Catalog == nil {
		return nil, errors.New("monster catalog is required")
	}

	s := &MapScheduler{
		mapID:     mapID,
		resolver:  NewResolver(mapID, collab.Geometry, opts.PlacementRetries, opts.rand(mapID)),
		lifecycle: collab.Lifecycle,
		events:    collab.Events,
		roamer:    collab.Roamer,
		respawns:  NewRespawnTaskManager(opts.RespawnJitter),
		sets:      make([]*definitionSet, 0, len(defs)),
		byID:      make(map[int32]*definitionSet, len(defs)),
		byGate:    make(map[string][]*definitionSet),
	}

	for _, def := range defs {
		monster, err := collab.Catalog.Resolve(def.MonsterID())
		if err != nil {
			return nil, &ConfigError{MapID: mapID, DefinitionID: def.ID(), Err: fmt.Errorf("%w: %w", ErrUnresolvedMonster, err)}
		}
		set := &definitionSet{
			def:     def,
			monster: monster,
			live:    make(map[model.InstanceID]*model.LiveInstanceHandle),
		}
		s.sets = append(s.sets, set)
		s.byID[def.ID()] = set
		if def.Trigger().Gated() {
			s.byGate[def.EventGate()] = append(s.byGate[def.EventGate()], set)
		}
	}

	if len(s.byGate) > 0 && s.events == nil {
		return nil, fmt.Errorf("map %d has event-gated spawns but no event source", mapID)
	}
	return s, nil
}

// MapID returns the map this scheduler drives.
func (s *MapScheduler) MapID() int32 {
	return s.mapID
}

// Activate creates every always-on population and subscribes to the
// event gates the map depends on. Activating an active map is a no-op.
func (s *MapScheduler) Activate(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	if s.active {
		s.mu.Unlock()
		slog.Debug("map already active", "mapID", s.mapID)
		return nil
	}
	s.active = true
	s.activationID = uuid.New()
	activationID := s.activationID

	created := 0
	for _, set := range s.sets {
		if set.def.Trigger().Gated() {
			continue
		}
		created += s.activateSetLocked(set)
	}
	s.mu.Unlock()

	// Subscribing may synchronously replay a running gate, so it happens
	// outside the lock.
	gates := slices.Sorted(maps.Keys(s.byGate))
	unsubs := make([]func(), 0, len(gates))
	for _, gate := range gates {
		unsubs = append(unsubs, s.events.Subscribe(gate,
			func() { s.onGateStarted(gate, activationID) },
			func() { s.onGateEnded(gate, activationID) },
		))
	}

	s.mu.Lock()
	if !s.active || s.activationID != activationID {
		// Deactivated while subscribing.
		s.mu.Unlock()
		for _, unsub := range unsubs {
			unsub()
		}
		return nil
	}
	s.unsubscribe = unsubs
	s.mu.Unlock()

	slog.Info("map activated",
		"mapID", s.mapID,
		"activationID", activationID,
		"definitions", len(s.sets),
		"gates", len(gates),
		"created", created)
	return nil
}

// Deactivate destroys every live instance of the map, cancels pending
// respawns and unsubscribes from gates. Returns false if the map was not
// active.
func (s *MapScheduler) Deactivate() bool {
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return false
	}
	s.active = false

	removed, cancelled := 0, 0
	for _, set := range s.sets {
		r, c := s.teardownLocked(set)
		removed += r
		cancelled += c
	}
	unsubs := s.unsubscribe
	s.unsubscribe = nil
	s.mu.Unlock()

	for _, unsub := range unsubs {
		unsub()
	}

	slog.Info("map deactivated",
		"mapID", s.mapID,
		"removed", removed,
		"respawnsCancelled", cancelled)
	return true
}

// IsActive reports whether the map is activated.
func (s *MapScheduler) IsActive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// ActivationID identifies the current activation; uuid.Nil when inactive.
func (s *MapScheduler) ActivationID() uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active {
		return uuid.Nil
	}
	return s.activationID
}

// State returns the activation state of one definition.
func (s *MapScheduler) State(definitionID int32) (DefinitionState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	set, ok := s.byID[definitionID]
	if !ok {
		return StateInactive, fmt.Errorf("%w: map %d spawn %d", ErrDefinitionNotFound, s.mapID, definitionID)
	}
	return set.state, nil
}

// LiveCount returns how many instances of a definition are alive.
func (s *MapScheduler) LiveCount(definitionID int32) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if set, ok := s.byID[definitionID]; ok {
		return len(set.live)
	}
	return 0
}

// PendingRespawns returns how many respawns of a definition are waiting.
func (s *MapScheduler) PendingRespawns(definitionID int32) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.respawns.taskCount(definitionID)
}

// TotalPendingRespawns returns pending respawns across the map.
func (s *MapScheduler) TotalPendingRespawns() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.respawns.totalCount()
}

// ListLiveInstances returns a snapshot of live handles ordered by
// definition then instance id. Positions are refreshed when the
// lifecycle can report them.
func (s *MapScheduler) ListLiveInstances() []model.LiveInstanceHandle {
	s.mu.Lock()
	out := make([]model.LiveInstanceHandle, 0)
	for _, set := range s.sets {
		for _, h := range set.live {
			out = append(out, *h)
		}
	}
	s.mu.Unlock()

	if loc, ok := s.lifecycle.(Locator); ok {
		for i := range out {
			if l, found := loc.Location(out[i].InstanceID); found {
				out[i].Location = l
			}
		}
	}

	slices.SortFunc(out, func(a, b model.LiveInstanceHandle) int {
		if c := cmp.Compare(a.DefinitionID, b.DefinitionID); c != 0 {
			return c
		}
		return cmp.Compare(a.InstanceID, b.InstanceID)
	})
	return out
}

// PickPoint returns a traversable point inside area using this map's
// geometry.
func (s *MapScheduler) PickPoint(area model.Area) (int32, int32) {
	return s.resolver.PickPoint(area)
}

func (s *MapScheduler) onGateStarted(gate string, activationID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active || s.activationID != activationID {
		return
	}

	created := 0
	for _, set := range s.byGate[gate] {
		if set.state == StateActive {
			continue
		}
		created += s.activateSetLocked(set)
	}
	slog.Info("event gate started", "mapID", s.mapID, "gate", gate, "created", created)
}

func (s *MapScheduler) onGateEnded(gate string, activationID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active || s.activationID != activationID {
		return
	}

	removed, cancelled := 0, 0
	for _, set := range s.byGate[gate] {
		if set.state != StateActive {
			continue
		}
		r, c := s.teardownLocked(set)
		removed += r
		cancelled += c
	}
	slog.Info("event gate ended",
		"mapID", s.mapID,
		"gate", gate,
		"removed", removed,
		"respawnsCancelled", cancelled)
}

// activateSetLocked marks a definition active and creates its full
// population. Returns how many instances were created.
func (s *MapScheduler) activateSetLocked(set *definitionSet) int {
	set.state = StateActive
	set.epoch++

	created := 0
	for _, loc := range s.resolver.Resolve(set.def) {
		if err := s.createLocked(set, loc); err != nil {
			s.createFailedLocked(set, err)
			continue
		}
		created++
	}
	return created
}

// teardownLocked forces a definition inactive, cancels its respawns and
// destroys its live instances without running death handling.
func (s *MapScheduler) teardownLocked(set *definitionSet) (removed, cancelled int) {
	set.state = StateInactive
	set.epoch++
	cancelled = s.respawns.cancelAll(set.def.ID())

	for _, id := range slices.Sorted(maps.Keys(set.live)) {
		if s.roamer != nil && set.def.Trigger() == model.TriggerWandering {
			s.roamer.Forget(id)
		}
		s.lifecycle.Destroy(id)
	}
	removed = len(set.live)
	clear(set.live)
	return removed, cancelled
}

func (s *MapScheduler) createLocked(set *definitionSet, loc model.Location) error {
	id, err := s.lifecycle.Create(s.mapID, set.monster, loc)
	if err != nil {
		return fmt.Errorf("creating monster %d: %w", set.monster.ID(), err)
	}

	set.live[id] = &model.LiveInstanceHandle{
		InstanceID:   id,
		MapID:        s.mapID,
		DefinitionID: set.def.ID(),
		MonsterID:    set.monster.ID(),
		Location:     loc,
		CreatedAt:    time.Now(),
		ActivationID: s.activationID,
	}
	if s.roamer != nil && set.def.Trigger() == model.TriggerWandering {
		s.roamer.Roam(s.mapID, id, set.def.Area())
	}

	if err := s.lifecycle.OnDeath(id, func() { s.onDeath(set, id) }); err != nil {
		// Gone before the callback could be attached.
		slog.Warn("instance vanished before death hook",
			"mapID", s.mapID,
			"spawnID", set.def.ID(),
			"instanceID", id,
			"error", err)
		s.handleDeathLocked(set, id)
	}
	return nil
}

func (s *MapScheduler) createFailedLocked(set *definitionSet, err error) {
	if set.def.Trigger().Respawns() {
		slog.Error("spawn creation failed, retrying via respawn",
			"mapID", s.mapID,
			"spawnID", set.def.ID(),
			"error", err)
		s.scheduleRespawnLocked(set)
		return
	}
	slog.Error("spawn creation failed, instance dropped",
		"mapID", s.mapID,
		"spawnID", set.def.ID(),
		"trigger", set.def.Trigger(),
		"error", err)
}

func (s *MapScheduler) onDeath(set *definitionSet, id model.InstanceID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := set.live[id]; !ok {
		// Already torn down.
		return
	}
	s.handleDeathLocked(set, id)
}

func (s *MapScheduler) handleDeathLocked(set *definitionSet, id model.InstanceID) {
	delete(set.live, id)
	if s.roamer != nil && set.def.Trigger() == model.TriggerWandering {
		s.roamer.Forget(id)
	}

	if set.state != StateActive || !set.def.Trigger().Respawns() {
		slog.Debug("instance died, no respawn",
			"mapID", s.mapID,
			"spawnID", set.def.ID(),
			"instanceID", id,
			"trigger", set.def.Trigger())
		return
	}
	s.scheduleRespawnLocked(set)
}

func (s *MapScheduler) scheduleRespawnLocked(set *definitionSet) {
	delay := CalculateRespawnDelay(set.monster, s.respawns.jitter)
	s.respawns.schedule(set.def.ID(), set.epoch, delay, func(task *RespawnTask) {
		s.fireRespawn(set, task)
	})
}

func (s *MapScheduler) fireRespawn(set *definitionSet, task *RespawnTask) {
	loc := s.resolver.ResolveOne(set.def)

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.respawns.take(task) {
		return
	}
	if !s.active || set.state != StateActive || set.epoch != task.epoch {
		slog.Debug("stale respawn dropped", "mapID", s.mapID, "spawnID", set.def.ID())
		return
	}
	if int32(len(set.live)) >= set.def.Quantity() {
		slog.Debug("respawn skipped (spawn full)",
			"mapID", s.mapID,
			"spawnID", set.def.ID(),
			"live", len(set.live))
		return
	}

	if err := s.createLocked(set, loc); err != nil {
		s.createFailedLocked(set, err)
		return
	}
	slog.Debug("monster respawned",
		"mapID", s.mapID,
		"spawnID", set.def.ID(),
		"x", loc.X,
		"y", loc.Y)
}
