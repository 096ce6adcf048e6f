// Package cooperative implements Component C: a round-robin task
// executor with no preemption, where each task voluntarily yields after
// one unit of work (spec.md §4.C). Grounded on original_source's
// task_manager/cooperative.rs FutureTask/CooperativeTaskManager, which
// this renders as a Go context.Context loop instead of a hand-rolled
// no-op Waker/Future poll.
package cooperative

import "context"

// Task is a single schedulable unit. Setup runs exactly once, before the
// first Loop call. Loop runs repeatedly until Done reports true.
type Task interface {
	Setup() error
	Loop() error
	Done() bool
}

// FuncTask adapts three bare functions into a Task, mirroring the
// reference design's TaskSetupFunctionType/TaskLoopFunctionType/
// TaskStopConditionFunctionType function-pointer triple.
type FuncTask struct {
	SetupFn func() error
	LoopFn  func() error
	StopFn  func() bool
}

func (f *FuncTask) Setup() error {
	if f.SetupFn == nil {
		return nil
	}
	return f.SetupFn()
}

func (f *FuncTask) Loop() error {
	if f.LoopFn == nil {
		return nil
	}
	return f.LoopFn()
}

func (f *FuncTask) Done() bool {
	if f.StopFn == nil {
		return false
	}
	return f.StopFn()
}

type entry struct {
	task           Task
	setupCompleted bool
}

// Executor runs tasks round-robin, one step per task per cycle. A task
// that reports Done is left in place and simply skipped on every future
// step — the reference implementation never removes finished tasks from
// its task vector, only stops driving them.
type Executor struct {
	tasks  []*entry
	cursor int

	// lastErr records the most recent error returned by a task's Setup
	// or Loop call, for callers that want visibility without aborting
	// the scheduling loop (a single failing task must not stop others).
	lastErr error
}

// New constructs an empty Executor.
func New() *Executor {
	return &Executor{}
}

// AddTask registers t for round-robin scheduling.
func (e *Executor) AddTask(t Task) {
	e.tasks = append(e.tasks, &entry{task: t})
}

// LastError returns the most recent error surfaced by a task, if any.
func (e *Executor) LastError() error { return e.lastErr }

// step runs exactly one task's unit of work and advances the cursor,
// mirroring task_manager_step: Setup on first touch, Loop afterward,
// skipped entirely once Done reports true.
func (e *Executor) step() {
	if len(e.tasks) == 0 {
		return
	}

	ent := e.tasks[e.cursor]
	if !ent.task.Done() {
		var err error
		if !ent.setupCompleted {
			err = ent.task.Setup()
			ent.setupCompleted = true
		} else {
			err = ent.task.Loop()
		}
		if err != nil {
			e.lastErr = err
		}
	}

	if e.cursor+1 < len(e.tasks) {
		e.cursor++
	} else {
		e.cursor = 0
	}
}

// RunSteps drives exactly n scheduling steps, for deterministic testing.
func (e *Executor) RunSteps(n int) {
	for i := 0; i < n; i++ {
		e.step()
	}
}

// Start drives the executor forever, one step per iteration, until ctx
// is cancelled (the Go analogue of start_task_manager's infinite loop).
func (e *Executor) Start(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
			e.step()
		}
	}
}

// TaskCount reports how many tasks are registered, including finished
// ones still occupying a slot.
func (e *Executor) TaskCount() int { return len(e.tasks) }
