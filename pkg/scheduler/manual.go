package scheduler

import (
	"sort"
	"sync"
	"time"
)

// Manual is a Scheduler on a virtual clock, for tests.
//
// Time moves only through Advance. Due tasks run synchronously on the
// goroutine calling Advance, in deadline order (FIFO among equal
// deadlines), with the clock set to each task's deadline while it runs.
// Tasks scheduled by a running task are picked up in the same Advance if
// they come due within it.
type Manual struct {
	mu    sync.Mutex
	now   time.Time
	seq   int
	tasks []*manualTask
}

// NewManual returns a Manual scheduler with its clock set to start.
func NewManual(start time.Time) *Manual {
	return &Manual{now: start}
}

func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

func (m *Manual) After(d time.Duration, fn func()) Task {
	if d < 0 {
		d = 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	t := &manualTask{
		m:        m,
		deadline: m.now.Add(d),
		seq:      m.seq,
		fn:       fn,
	}
	m.tasks = append(m.tasks, t)
	return t
}

// Advance moves the clock forward by d, running every task that comes due.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now.Add(d)
	for {
		t := m.popDue(target)
		if t == nil {
			break
		}
		if t.deadline.After(m.now) {
			m.now = t.deadline
		}
		m.mu.Unlock()
		t.fn() // may call After / Cancel, so no lock held
		m.mu.Lock()
	}
	m.now = target
	m.mu.Unlock()
}

// Pending reports how many tasks are scheduled and not yet run or cancelled.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tasks)
}

// popDue removes and returns the earliest task with deadline <= target,
// or nil. Caller holds m.mu.
func (m *Manual) popDue(target time.Time) *manualTask {
	if len(m.tasks) == 0 {
		return nil
	}
	sort.SliceStable(m.tasks, func(i, j int) bool {
		di, dj := m.tasks[i].deadline, m.tasks[j].deadline
		if di.Equal(dj) {
			return m.tasks[i].seq < m.tasks[j].seq
		}
		return di.Before(dj)
	})
	t := m.tasks[0]
	if t.deadline.After(target) {
		return nil
	}
	m.tasks = m.tasks[1:]
	return t
}

type manualTask struct {
	m        *Manual
	deadline time.Time
	seq      int
	fn       func()
}

func (t *manualTask) Cancel() bool {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()
	for i, p := range t.m.tasks {
		if p == t {
			t.m.tasks = append(t.m.tasks[:i], t.m.tasks[i+1:]...)
			return true
		}
	}
	return false
}
