package vm

import "testing"

func TestNewThreadTableMainThreadActive(t *testing.T) {
	tt := NewThreadTable()
	if !tt.IsRunnable(0) {
		t.Fatalf("main thread should be runnable at construction")
	}
	for id := ThreadId(1); id < numThreads; id++ {
		if tt.IsRunnable(id) {
			t.Fatalf("thread %d should start inactive", id)
		}
	}
}

func TestScheduledStateDeferredUntilApply(t *testing.T) {
	tt := NewThreadTable()
	if err := tt.ScheduleActivate(5, 0x100); err != nil {
		t.Fatalf("ScheduleActivate: %v", err)
	}
	if tt.IsRunnable(5) {
		t.Fatalf("scheduled activation must not apply before ApplyScheduled")
	}
	tt.ApplyScheduled()
	if !tt.IsRunnable(5) {
		t.Fatalf("thread 5 should be runnable after ApplyScheduled")
	}
	if tt.Addr(5) != 0x100 {
		t.Fatalf("addr = %#x, want 0x100", tt.Addr(5))
	}
}

func TestControlThreadsRange(t *testing.T) {
	tt := NewThreadTable()
	if err := tt.ScheduleControl(1, 63, ControlThreadsResume); err != nil {
		t.Fatalf("ScheduleControl: %v", err)
	}
	tt.ApplyScheduled()
	tt.threads[1].execution = executionActive // resume only touches pause; simulate prior activation
	if tt.threads[1].pause != pauseRunning {
		t.Fatalf("thread 1 pause state wrong")
	}
}

func TestKillTakesEffectImmediately(t *testing.T) {
	tt := NewThreadTable()
	tt.Kill(0)
	if tt.IsRunnable(0) {
		t.Fatalf("Kill should deactivate immediately, not deferred")
	}
}

func TestScheduleActivateInvalidId(t *testing.T) {
	tt := NewThreadTable()
	if err := tt.ScheduleActivate(200, 0); err != ErrInvalidThreadId {
		t.Fatalf("got %v, want ErrInvalidThreadId", err)
	}
}

func TestScheduleControlFirstAfterLast(t *testing.T) {
	tt := NewThreadTable()
	if err := tt.ScheduleControl(10, 5, ControlThreadsPause); err != ErrInvalidThreadId {
		t.Fatalf("got %v, want ErrInvalidThreadId", err)
	}
}
