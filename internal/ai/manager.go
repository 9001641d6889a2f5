// Package ai moves wandering instances around their roam bounds.
package ai

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"github.com/udisondev/la2spawn/internal/model"
)

// Mover relocates a live instance.
type Mover interface {
	Move(id model.InstanceID, x, y int32) error
}

// PointPicker returns a fresh point inside area on mapID.
type PointPicker func(mapID int32, area model.Area) (x, y int32)

type wanderer struct {
	mapID int32
	area  model.Area
}

// RoamManager periodically moves registered wanderers to a new point
// inside their roam bound.
type RoamManager struct {
	wanderers sync.Map // map[model.InstanceID]*wanderer
	count     atomic.Int32

	mover    Mover
	interval time.Duration
	chance   float64

	pickerMu sync.RWMutex
	picker   PointPicker

	stopOnce sync.Once
	stopCh   chan struct{}
}

// NewRoamManager creates a roam manager that ticks every interval and moves
// each wanderer with probability chance per tick.
func NewRoamManager(mover Mover, interval time.Duration, chance float64) *RoamManager {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &RoamManager{
		mover:    mover,
		interval: interval,
		chance:   chance,
		picker:   uniformPoint,
		stopCh:   make(chan struct{}),
	}
}

// SetPicker replaces the point picker. Injected by the server so roaming
// respects map geometry without importing the spawn engine.
func (m *RoamManager) SetPicker(p PointPicker) {
	if p == nil {
		p = uniformPoint
	}
	m.pickerMu.Lock()
	m.picker = p
	m.pickerMu.Unlock()
}

// Roam registers id as a wanderer bounded by area.
func (m *RoamManager) Roam(mapID int32, id model.InstanceID, area model.Area) {
	if _, loaded := m.wanderers.Swap(id, &wanderer{mapID: mapID, area: area}); !loaded {
		m.count.Add(1)
	}

	if IsDebugEnabled() {
		slog.Debug("wanderer registered", "objectID", id, "mapID", mapID, "area", area)
	}
}

// Forget unregisters id. Unknown ids are ignored.
func (m *RoamManager) Forget(id model.InstanceID) {
	if _, ok := m.wanderers.LoadAndDelete(id); ok {
		m.count.Add(-1)
	}
}

// Bound returns the roam bound of id.
func (m *RoamManager) Bound(id model.InstanceID) (model.Area, bool) {
	v, ok := m.wanderers.Load(id)
	if !ok {
		return model.Area{}, false
	}
	return v.(*wanderer).area, true
}

// Count returns number of registered wanderers (O(1) cached count)
func (m *RoamManager) Count() int {
	return int(m.count.Load())
}

// Start runs the roam loop (blocks until context is canceled or Stop).
func (m *RoamManager) Start(ctx context.Context) error {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	slog.Info("roam manager started", "interval", m.interval, "chance", m.chance)

	for {
		select {
		case <-ctx.Done():
			slog.Info("roam manager stopping")
			return ctx.Err()

		case <-m.stopCh:
			slog.Info("roam manager stopped")
			return nil

		case <-ticker.C:
			m.tickAll()
		}
	}
}

// Stop stops the roam loop
func (m *RoamManager) Stop() {
	m.stopOnce.Do(func() { close(m.stopCh) })
}

func (m *RoamManager) tickAll() {
	m.pickerMu.RLock()
	pick := m.picker
	m.pickerMu.RUnlock()

	moved := 0
	m.wanderers.Range(func(key, value any) bool {
		if m.chance < 1 && rand.Float64() >= m.chance {
			return true
		}

		id := key.(model.InstanceID)
		w := value.(*wanderer)
		x, y := pick(w.mapID, w.area)
		if err := m.mover.Move(id, x, y); err != nil {
			// Instance is gone; its death notification will follow or already did.
			m.Forget(id)
			return true
		}
		moved++
		return true
	})

	if moved > 0 && IsDebugEnabled() {
		slog.Debug("roam tick completed", "moved", moved, "wanderers", m.Count())
	}
}

func uniformPoint(_ int32, area model.Area) (int32, int32) {
	x := area.XMin + rand.Int32N(area.XMax-area.XMin+1)
	y := area.YMin + rand.Int32N(area.YMax-area.YMin+1)
	return x, y
}
