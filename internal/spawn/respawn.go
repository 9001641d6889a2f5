package spawn

import (
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/udisondev/la2spawn/internal/model"
)

// RespawnTask is one scheduled re-creation of a dead instance.
type RespawnTask struct {
	DefinitionID int32
	DiedAt       time.Time
	RespawnTime  time.Time

	epoch uint64
	timer *time.Timer
}

// RespawnTaskManager tracks pending respawns for one map. It carries no
// lock of its own: every method runs under the owning MapScheduler's
// lock, which makes cancellation and timer firing mutually exclusive.
type RespawnTaskManager struct {
	jitter time.Duration
	tasks  map[int32]map[*RespawnTask]struct{} // definitionID → pending
}

// NewRespawnTaskManager creates a manager adding up to jitter of random
// delay on top of each monster's respawn delay.
func NewRespawnTaskManager(jitter time.Duration) *RespawnTaskManager {
	if jitter < 0 {
		jitter = 0
	}
	return &RespawnTaskManager{
		jitter: jitter,
		tasks:  make(map[int32]map[*RespawnTask]struct{}),
	}
}

// CalculateRespawnDelay returns the monster's respawn delay plus a
// uniform jitter in [0, jitter].
func CalculateRespawnDelay(monster *model.MonsterDefinition, jitter time.Duration) time.Duration {
	delay := monster.RespawnDelay()
	if delay < 0 {
		delay = 0
	}
	if jitter > 0 {
		delay += rand.N(jitter + 1)
	}
	return delay
}

// schedule registers a task firing fire after delay. The callback must
// take the scheduler lock before touching the task.
func (m *RespawnTaskManager) schedule(definitionID int32, epoch uint64, delay time.Duration, fire func(*RespawnTask)) *RespawnTask {
	now := time.Now()
	task := &RespawnTask{
		DefinitionID: definitionID,
		DiedAt:       now,
		RespawnTime:  now.Add(delay),
		epoch:        epoch,
	}

	pending, ok := m.tasks[definitionID]
	if !ok {
		pending = make(map[*RespawnTask]struct{})
		m.tasks[definitionID] = pending
	}
	pending[task] = struct{}{}

	task.timer = time.AfterFunc(delay, func() { fire(task) })

	slog.Debug("respawn scheduled",
		"spawnID", definitionID,
		"delay", delay,
		"respawnTime", task.RespawnTime.Format(time.RFC3339Nano))
	return task
}

// take removes a fired task. It reports false when the task was
// cancelled in the meantime.
func (m *RespawnTaskManager) take(task *RespawnTask) bool {
	pending, ok := m.tasks[task.DefinitionID]
	if !ok {
		return false
	}
	if _, ok := pending[task]; !ok {
		return false
	}
	delete(pending, task)
	if len(pending) == 0 {
		delete(m.tasks, task.DefinitionID)
	}
	return true
}

// cancelAll drops every pending task of a definition and returns how
// many were dropped.
func (m *RespawnTaskManager) cancelAll(definitionID int32) int {
	pending, ok := m.tasks[definitionID]
	if !ok {
		return 0
	}
	for task := range pending {
		task.timer.Stop()
	}
	delete(m.tasks, definitionID)
	return len(pending)
}

func (m *RespawnTaskManager) taskCount(definitionID int32) int {
	return len(m.tasks[definitionID])
}

func (m *RespawnTaskManager) totalCount() int {
	n := 0
	for _, pending := range m.tasks {
		n += len(pending)
	}
	return n
}
