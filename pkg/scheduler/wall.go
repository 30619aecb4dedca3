package scheduler

import (
	"sync"
	"sync/atomic"
	"time"
)

// wall is the production Scheduler, backed by the runtime timers.
//
// Callbacks are serialized on one mutex: tasks fired by different timers
// never run concurrently, so state touched only from scheduled callbacks
// needs no further locking. A callback may call After and Cancel on its own
// scheduler freely.
type wall struct {
	mu sync.Mutex // serializes task callbacks
}

// New returns a Scheduler on the wall clock.
func New() Scheduler {
	return &wall{}
}

func (w *wall) Now() time.Time {
	return time.Now()
}

func (w *wall) After(d time.Duration, fn func()) Task {
	if d < 0 {
		d = 0
	}
	t := &wallTask{}
	t.timer = time.AfterFunc(d, func() {
		if t.stopped.Load() {
			return
		}
		w.mu.Lock()
		defer w.mu.Unlock()
		// re-check: Cancel may have won the race while we waited for the lock
		if t.stopped.Load() {
			return
		}
		t.ran.Store(true)
		fn()
	})
	return t
}

type wallTask struct {
	stopped atomic.Bool
	ran     atomic.Bool
	timer   *time.Timer
}

func (t *wallTask) Cancel() bool {
	t.stopped.Store(true)
	t.timer.Stop()
	return !t.ran.Load()
}
