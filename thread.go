// thread.go - Cooperative thread table and deferred state transitions

package vm

// numThreads is the fixed thread table size, per spec.md §4.15. ThreadId 0
// is the main thread.
const numThreads = 64

// ThreadId addresses a single entry in the thread table, in [0, 63].
type ThreadId uint8

// executionState tags whether a thread is inactive or active at an address.
type executionState int

const (
	executionInactive executionState = iota
	executionActive
)

// pauseState tags whether an active thread is running or paused.
type pauseState int

const (
	pauseRunning pauseState = iota
	pausePaused
)

// threadState is one thread table entry. Scheduled fields are set by
// ControlThreads/ActivateThread and applied only at the top of the next
// tic, per spec.md §4.15 (P4 Deferred scheduling).
type threadState struct {
	execution executionState
	addr      int
	pause     pauseState

	hasScheduledExecution bool
	scheduledExecution    executionState
	scheduledAddr         int

	hasScheduledPause bool
	scheduledPause    pauseState
}

// ThreadTable holds all 64 thread entries and their per-thread call stacks.
type ThreadTable struct {
	threads [numThreads]threadState
	stacks  [numThreads]callStack
}

// NewThreadTable constructs a table with every thread inactive and the
// main thread (id 0) active at address 0, running.
func NewThreadTable() *ThreadTable {
	t := &ThreadTable{}
	t.resetToGamePartStart()
	return t
}

// resetToGamePartStart applies the reset step of spec.md §4.14 step 1:
// every thread inactive except the main thread (active at 0, running),
// all scheduled states and stacks cleared.
func (t *ThreadTable) resetToGamePartStart() {
	for i := range t.threads {
		t.threads[i] = threadState{execution: executionInactive, pause: pauseRunning}
		t.stacks[i].clear()
	}
	t.threads[0].execution = executionActive
	t.threads[0].addr = 0
}

// ScheduleActivate schedules id's execution to active(addr), applied at
// the top of the next tic.
func (t *ThreadTable) ScheduleActivate(id ThreadId, addr int) error {
	if int(id) >= numThreads {
		return ErrInvalidThreadId
	}
	th := &t.threads[id]
	th.hasScheduledExecution = true
	th.scheduledExecution = executionActive
	th.scheduledAddr = addr
	return nil
}

// ScheduleControl schedules op for every thread in [first, last], per
// spec.md §4.15's resume/pause/deactivate mapping.
func (t *ThreadTable) ScheduleControl(first, last ThreadId, op ControlThreadsOp) error {
	if int(first) >= numThreads || int(last) >= numThreads || first > last {
		return ErrInvalidThreadId
	}
	for i := first; i <= last; i++ {
		th := &t.threads[i]
		switch op {
		case ControlThreadsDeactivate:
			th.hasScheduledExecution = true
			th.scheduledExecution = executionInactive
		case ControlThreadsPause:
			th.hasScheduledPause = true
			th.scheduledPause = pausePaused
		case ControlThreadsResume:
			th.hasScheduledPause = true
			th.scheduledPause = pauseRunning
		}
	}
	return nil
}

// ApplyScheduled applies every thread's pending scheduled-execution and
// scheduled-pause field, clearing both, per spec.md §4.14 step 3.
func (t *ThreadTable) ApplyScheduled() {
	for i := range t.threads {
		th := &t.threads[i]
		if th.hasScheduledExecution {
			th.execution = th.scheduledExecution
			th.addr = th.scheduledAddr
			th.hasScheduledExecution = false
			if th.execution == executionActive {
				t.stacks[i].clear()
			}
		}
		if th.hasScheduledPause {
			th.pause = th.scheduledPause
			th.hasScheduledPause = false
		}
	}
}

// Kill deactivates id immediately, per spec.md §4.15 (takes effect at once,
// unlike ControlThreads's deferred deactivation).
func (t *ThreadTable) Kill(id ThreadId) {
	t.threads[id].execution = executionInactive
}

// StoreCursor records id's current program address, for Yield's immediate
// "store the cursor and return" semantics.
func (t *ThreadTable) StoreCursor(id ThreadId, addr int) {
	t.threads[id].addr = addr
}

// IsRunnable reports whether id should execute this tic: active and not
// paused.
func (t *ThreadTable) IsRunnable(id ThreadId) bool {
	th := t.threads[id]
	return th.execution == executionActive && th.pause == pauseRunning
}

// Addr returns id's current program address.
func (t *ThreadTable) Addr(id ThreadId) int {
	return t.threads[id].addr
}

// Stack returns id's per-thread call stack.
func (t *ThreadTable) Stack(id ThreadId) *callStack {
	return &t.stacks[id]
}
