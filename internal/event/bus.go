// Package event tracks event gates (running/ended) and notifies subscribers
// when a gate starts or ends.
package event

import (
	"log/slog"
	"sync"
)

type subscription struct {
	onStarted func()
	onEnded   func()
}

type gate struct {
	running bool
	subs    map[uint64]subscription
	order   []uint64
}

// Bus is an in-memory event state. Callbacks run synchronously in the
// goroutine that changes the gate, outside the state lock; deliveries are
// serialized so subscribers never observe start/end out of order.
// Callbacks must not call back into the Bus.
type Bus struct {
	deliverMu sync.Mutex

	mu     sync.Mutex
	gates  map[string]*gate
	nextID uint64
}

// NewBus creates an empty bus. Every gate starts ended.
func NewBus() *Bus {
	return &Bus{gates: make(map[string]*gate)}
}

func (b *Bus) gateLocked(id string) *gate {
	g, ok := b.gates[id]
	if !ok {
		g = &gate{subs: make(map[uint64]subscription)}
		b.gates[id] = g
	}
	return g
}

// Subscribe registers callbacks for gateID. If the gate is already running,
// onStarted is invoked before Subscribe returns. The returned function
// removes the subscription; it is safe to call more than once. A delivery
// already in flight may still reach the callbacks once after it returns.
func (b *Bus) Subscribe(gateID string, onStarted, onEnded func()) (unsubscribe func()) {
	b.deliverMu.Lock()
	defer b.deliverMu.Unlock()

	b.mu.Lock()
	g := b.gateLocked(gateID)
	b.nextID++
	id := b.nextID
	g.subs[id] = subscription{onStarted: onStarted, onEnded: onEnded}
	g.order = append(g.order, id)
	running := g.running
	b.mu.Unlock()

	if running && onStarted != nil {
		onStarted()
	}

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(g.subs, id)
	}
}

// Start marks gateID running and notifies subscribers.
// Returns false if the gate was already running.
func (b *Bus) Start(gateID string) bool {
	return b.transition(gateID, true)
}

// End marks gateID ended and notifies subscribers.
// Returns false if the gate was not running.
func (b *Bus) End(gateID string) bool {
	return b.transition(gateID, false)
}

func (b *Bus) transition(gateID string, running bool) bool {
	b.deliverMu.Lock()
	defer b.deliverMu.Unlock()

	b.mu.Lock()
	g := b.gateLocked(gateID)
	if g.running == running {
		b.mu.Unlock()
		return false
	}
	g.running = running

	callbacks := make([]func(), 0, len(g.subs))
	live := g.order[:0]
	for _, id := range g.order {
		sub, ok := g.subs[id]
		if !ok {
			continue
		}
		live = append(live, id)
		cb := sub.onEnded
		if running {
			cb = sub.onStarted
		}
		if cb != nil {
			callbacks = append(callbacks, cb)
		}
	}
	g.order = live
	b.mu.Unlock()

	if running {
		slog.Info("event started", "gate", gateID, "subscribers", len(callbacks))
	} else {
		slog.Info("event ended", "gate", gateID, "subscribers", len(callbacks))
	}

	for _, cb := range callbacks {
		cb()
	}
	return true
}

// IsRunning reports whether gateID is currently running.
func (b *Bus) IsRunning(gateID string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	g, ok := b.gates[gateID]
	return ok && g.running
}

// SubscriberCount returns the number of live subscriptions for gateID.
func (b *Bus) SubscriberCount(gateID string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	g, ok := b.gates[gateID]
	if !ok {
		return 0
	}
	return len(g.subs)
}
