// Package scheduler provides a cancellable delayed-task primitive with a
// clock, replacing ad hoc time.AfterFunc / time.Sleep callback chains.
//
// Everything that needs "run this after d" goes through a Scheduler, so the
// timing source can be swapped for a virtual one (Manual) in tests.
package scheduler

import "time"

// Scheduler runs functions after a delay.
type Scheduler interface {
	// Now is the scheduler's view of the current time.
	Now() time.Time

	// After schedules fn to run once, d from Now.
	// A non-positive d means "as soon as possible", not "immediately":
	// fn never runs before After returns.
	After(d time.Duration, fn func()) Task
}

// Task is a handle to a scheduled (pending) function.
type Task interface {
	// Cancel prevents the task from running.
	// It reports whether the cancel took effect (false: already ran).
	Cancel() bool
}
