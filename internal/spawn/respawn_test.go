package spawn

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCalculateRespawnDelay(t *testing.T) {
	m := monster(305, 30*time.Second)

	if got := CalculateRespawnDelay(m, 0); got != 30*time.Second {
		t.Errorf("CalculateRespawnDelay() without jitter = %v, want 30s", got)
	}

	for range 1000 {
		got := CalculateRespawnDelay(m, 5*time.Second)
		if got < 30*time.Second || got > 35*time.Second {
			t.Fatalf("CalculateRespawnDelay() = %v, want within [30s, 35s]", got)
		}
	}
}

func TestRespawnTaskManager_ScheduleAndTake(t *testing.T) {
	m := NewRespawnTaskManager(0)

	var fired atomic.Int32
	task := m.schedule(7, 1, time.Hour, func(*RespawnTask) { fired.Add(1) })
	defer task.timer.Stop()

	assert.Equal(t, 1, m.taskCount(7))
	assert.Equal(t, 1, m.totalCount())
	assert.Equal(t, int32(7), task.DefinitionID)
	assert.WithinDuration(t, task.DiedAt.Add(time.Hour), task.RespawnTime, time.Millisecond)

	assert.True(t, m.take(task))
	assert.False(t, m.take(task), "a task is taken once")
	assert.Equal(t, 0, m.totalCount())
	assert.Zero(t, fired.Load())
}

func TestRespawnTaskManager_CancelAll(t *testing.T) {
	m := NewRespawnTaskManager(0)

	var fired atomic.Int32
	a := m.schedule(7, 1, 20*time.Millisecond, func(*RespawnTask) { fired.Add(1) })
	m.schedule(7, 1, 20*time.Millisecond, func(*RespawnTask) { fired.Add(1) })
	other := m.schedule(8, 1, time.Hour, func(*RespawnTask) {})
	defer other.timer.Stop()

	assert.Equal(t, 2, m.cancelAll(7))
	assert.Equal(t, 0, m.taskCount(7))
	assert.Equal(t, 1, m.taskCount(8))
	assert.False(t, m.take(a), "cancelled task cannot be taken")

	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, fired.Load(), "stopped timers do not fire")
}
