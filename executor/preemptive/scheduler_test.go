package preemptive

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/martos-project/martos/port"
)

func newTestPort(t *testing.T) *port.Sim {
	t.Helper()
	p := port.NewSim(16 * 1024)
	require.NoError(t, p.InitHeap())
	return p
}

// TestTwoTasksRoundRobinViaTicks covers spec.md §8's preemptive analogue
// of the cooperative round-robin test: driving Tick directly advances
// each task by exactly one Setup-or-Loop call per call.
func TestTwoTasksRoundRobinViaTicks(t *testing.T) {
	p := newTestPort(t)
	s := NewScheduler(p)

	var a, b int
	require.NoError(t, s.AddTask(TaskFuncs{
		Loop: func() error { a++; return nil },
		Stop: func() bool { return a >= 5 },
	}))
	require.NoError(t, s.AddTask(TaskFuncs{
		Loop: func() error { b++; return nil },
		Stop: func() bool { return b >= 5 },
	}))

	var frame port.RegisterFrame
	// Each task needs one tick for Setup, then 5 for Loop: 12 ticks total
	// covers both with slack for the round-robin interleaving.
	for i := 0; i < 20; i++ {
		s.Tick(&frame)
	}

	assert.Equal(t, 5, a)
	assert.Equal(t, 5, b)
}

func TestFirstTickSkipsSave(t *testing.T) {
	p := newTestPort(t)
	s := NewScheduler(p)

	calls := 0
	require.NoError(t, s.AddTask(TaskFuncs{
		Setup: func() error { calls++; return nil },
		Stop:  func() bool { return false },
	}))

	var frame port.RegisterFrame
	s.Tick(&frame) // first tick: loads task 0, runs Setup
	assert.Equal(t, 1, calls)
	assert.True(t, s.first == false)
}

func TestStoppedTaskStaysInRotation(t *testing.T) {
	p := newTestPort(t)
	s := NewScheduler(p)

	require.NoError(t, s.AddTask(TaskFuncs{Stop: func() bool { return true }}))
	require.NoError(t, s.AddTask(TaskFuncs{Loop: func() error { return nil }, Stop: func() bool { return false }}))

	var frame port.RegisterFrame
	for i := 0; i < 4; i++ {
		s.Tick(&frame)
	}

	assert.Equal(t, 2, s.TaskCount())
}

func TestTaskErrorsAreCollected(t *testing.T) {
	p := newTestPort(t)
	s := NewScheduler(p)

	boom := &taskErr{"boom"}
	require.NoError(t, s.AddTask(TaskFuncs{
		Setup: func() error { return boom },
		Stop:  func() bool { return false },
	}))

	var frame port.RegisterFrame
	s.Tick(&frame)

	errs := s.Errors()
	require.Len(t, errs, 1)
	assert.Equal(t, boom, errs[0])
}

func TestAddTaskAllocatesDistinctStacks(t *testing.T) {
	p := newTestPort(t)
	s := NewScheduler(p)

	require.NoError(t, s.AddTask(TaskFuncs{Stop: func() bool { return true }}))
	require.NoError(t, s.AddTask(TaskFuncs{Stop: func() bool { return true }}))

	require.Len(t, s.tasks, 2)
	assert.Len(t, s.tasks[0].stack, StackSize)
	assert.Len(t, s.tasks[1].stack, StackSize)
	stats := p.Allocator().Stats()
	assert.GreaterOrEqual(t, stats.Used, 2*StackSize)
}

type taskErr struct{ msg string }

func (e *taskErr) Error() string { return e.msg }
