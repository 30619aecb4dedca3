package chatbox

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/Artbyo3/vtauder/model"
	"github.com/Artbyo3/vtauder/pkg/scheduler"
)

type sentRecord struct {
	text string
	at   time.Time
}

// fakeSender records every successful send with the scheduler's clock.
// failWith, when set, is consulted before recording.
type fakeSender struct {
	sched    *scheduler.Manual
	failWith func(text string) error
	sent     []sentRecord
}

func (s *fakeSender) Send(text string) error {
	if s.failWith != nil {
		if err := s.failWith(text); err != nil {
			return err
		}
	}
	s.sent = append(s.sent, sentRecord{text: text, at: s.sched.Now()})
	return nil
}

func newTestQueue(t *testing.T, opts ...QueueOption) (*Queue, *fakeSender, *scheduler.Manual) {
	t.Helper()
	sched := scheduler.NewManual(time.Unix(1700000000, 0))
	sender := &fakeSender{sched: sched}
	return NewQueue(sched, sender, opts...), sender, sched
}

func TestQueueSendsImmediatelyWhenIdle(t *testing.T) {
	q, sender, sched := newTestQueue(t)

	if !q.Enqueue("Hello!", model.CategoryManual) {
		t.Fatal("Enqueue() = false, want true")
	}
	if len(sender.sent) != 1 {
		t.Fatalf("got %d sends, want 1", len(sender.sent))
	}
	if sender.sent[0].text != "Hello!" {
		t.Errorf("sent %q, want %q", sender.sent[0].text, "Hello!")
	}
	if !sender.sent[0].at.Equal(sched.Now()) {
		t.Errorf("sent at %v, want %v", sender.sent[0].at, sched.Now())
	}
}

func TestQueueEnforcesMinInterval(t *testing.T) {
	q, sender, sched := newTestQueue(t)
	start := sched.Now()

	q.Enqueue("Hello", model.CategoryManual)
	q.Enqueue("World", model.CategoryManual)

	if len(sender.sent) != 1 {
		t.Fatalf("got %d sends before advancing, want 1", len(sender.sent))
	}

	sched.Advance(DefaultMinInterval)

	if len(sender.sent) != 2 {
		t.Fatalf("got %d sends, want 2", len(sender.sent))
	}
	if got, want := sender.sent[0].at, start; !got.Equal(want) {
		t.Errorf("first send at %v, want %v", got, want)
	}
	if got, want := sender.sent[1].at, start.Add(DefaultMinInterval); !got.Equal(want) {
		t.Errorf("second send at %v, want %v", got, want)
	}
}

func TestQueueKeepsFIFOOrder(t *testing.T) {
	q, sender, sched := newTestQueue(t)

	for i := 0; i < 5; i++ {
		q.Enqueue(fmt.Sprintf("msg%02d", i), model.CategoryManual)
	}
	sched.Advance(time.Minute)

	if len(sender.sent) != 5 {
		t.Fatalf("got %d sends, want 5", len(sender.sent))
	}
	for i, rec := range sender.sent {
		if want := fmt.Sprintf("msg%02d", i); rec.text != want {
			t.Errorf("sent[%d] = %q, want %q", i, rec.text, want)
		}
	}
}

func TestQueueEvictsOldestWhenFull(t *testing.T) {
	q, sender, sched := newTestQueue(t)

	// Park the drain so nothing leaves the queue while it fills.
	q.limiter.recordSent(sched.Now())

	for i := 1; i <= MaxQueueSize+2; i++ {
		q.Enqueue(fmt.Sprintf("msg%02d", i), model.CategoryManual)
	}

	q.mu.Lock()
	depth := len(q.items)
	q.mu.Unlock()
	if depth != MaxQueueSize {
		t.Fatalf("queue depth = %d, want %d", depth, MaxQueueSize)
	}

	sched.Advance(time.Minute)

	if len(sender.sent) != MaxQueueSize {
		t.Fatalf("got %d sends, want %d", len(sender.sent), MaxQueueSize)
	}
	// The two oldest were evicted, so sends start at msg03.
	for i, rec := range sender.sent {
		if want := fmt.Sprintf("msg%02d", i+3); rec.text != want {
			t.Errorf("sent[%d] = %q, want %q", i, rec.text, want)
		}
	}
}

func TestQueueRejectsInvalidMessages(t *testing.T) {
	q, _, _ := newTestQueue(t)

	if q.Enqueue("   ", model.CategoryManual) {
		t.Error("Enqueue(blank) = true, want false")
	}
	if !q.Enqueue("\x00", model.CategoryManual) {
		// a lone NUL is stripped after the whitespace check, so it is
		// accepted (as an empty send) rather than rejected
		t.Error("Enqueue(NUL) = false, want true")
	}
}

func TestQueueSpamPenalty(t *testing.T) {
	q, sender, sched := newTestQueue(t)
	start := sched.Now()

	first := true
	sender.failWith = func(text string) error {
		if first {
			first = false
			return &RateLimitedError{Diagnostic: "Timed out for spam, try again later"}
		}
		return nil
	}

	q.Enqueue("noisy", model.CategoryManual)

	if len(sender.sent) != 0 {
		t.Fatalf("got %d sends, want 0 (rate-limited message is lost)", len(sender.sent))
	}
	st := q.Status()
	if !st.InTimeout {
		t.Error("Status().InTimeout = false, want true")
	}

	// The next message must wait out the remaining penalty window.
	sched.Advance(time.Second)
	q.Enqueue("patient", model.CategoryManual)
	sched.Advance(DefaultPenaltyWindow - 2*time.Second)
	if len(sender.sent) != 0 {
		t.Fatalf("got %d sends inside penalty window, want 0", len(sender.sent))
	}

	sched.Advance(time.Second)
	if len(sender.sent) != 1 {
		t.Fatalf("got %d sends after penalty window, want 1", len(sender.sent))
	}
	if got, want := sender.sent[0].at, start.Add(DefaultPenaltyWindow); !got.Equal(want) {
		t.Errorf("sent at %v, want %v", got, want)
	}
	if sender.sent[0].text != "patient" {
		t.Errorf("sent %q, want %q", sender.sent[0].text, "patient")
	}
}

func TestQueueHonorsRetryAfter(t *testing.T) {
	q, sender, sched := newTestQueue(t)
	start := sched.Now()

	first := true
	sender.failWith = func(text string) error {
		if first {
			first = false
			return &RateLimitedError{RetryAfter: 5 * time.Second, Diagnostic: "spam"}
		}
		return nil
	}

	q.Enqueue("a", model.CategoryManual)
	q.Enqueue("b", model.CategoryManual)
	sched.Advance(5 * time.Second)

	if len(sender.sent) != 1 {
		t.Fatalf("got %d sends, want 1", len(sender.sent))
	}
	if got, want := sender.sent[0].at, start.Add(5*time.Second); !got.Equal(want) {
		t.Errorf("sent at %v, want %v", got, want)
	}
}

func TestQueueDropsOnOtherSendErrors(t *testing.T) {
	q, sender, sched := newTestQueue(t)

	sender.failWith = func(text string) error {
		if text == "bad" {
			return errors.New("connection refused")
		}
		return nil
	}

	q.Enqueue("bad", model.CategoryManual)
	q.Enqueue("ok", model.CategoryManual)
	sched.Advance(time.Minute)

	if len(sender.sent) != 1 {
		t.Fatalf("got %d sends, want 1", len(sender.sent))
	}
	if sender.sent[0].text != "ok" {
		t.Errorf("sent %q, want %q", sender.sent[0].text, "ok")
	}
}

func TestQueueDrainIsIdempotent(t *testing.T) {
	q, _, sched := newTestQueue(t)

	q.Enqueue("Hello", model.CategoryManual)
	q.Enqueue("World", model.CategoryManual)

	// Repeated drains while a retry is parked must not stack timers.
	q.drain()
	q.drain()
	q.drain()

	if got := sched.Pending(); got != 1 {
		t.Errorf("pending tasks = %d, want 1", got)
	}
}

func TestQueueRecordsHistory(t *testing.T) {
	history := NewHistory(DefaultHistorySize)
	q, _, sched := newTestQueue(t, WithHistory(history))

	q.Enqueue("first", model.CategoryManual)
	q.Enqueue("second", model.CategorySTT)
	sched.Advance(time.Minute)

	entries := history.Entries()
	if len(entries) != 2 {
		t.Fatalf("got %d history entries, want 2", len(entries))
	}
	if entries[0].Text != "first" || entries[0].Category != model.CategoryManual {
		t.Errorf("entries[0] = %+v", entries[0])
	}
	if entries[1].Text != "second" || entries[1].Category != model.CategorySTT {
		t.Errorf("entries[1] = %+v", entries[1])
	}
}

func TestQueueStatus(t *testing.T) {
	q, _, sched := newTestQueue(t)

	st := q.Status()
	if st.QueueDepth != 0 || st.QueueCap != MaxQueueSize || !st.Ready {
		t.Errorf("idle Status() = %+v", st)
	}

	q.Enqueue("a", model.CategoryManual)
	q.Enqueue("b", model.CategoryManual)
	q.Enqueue("c", model.CategoryManual)

	st = q.Status()
	if st.QueueDepth != 2 {
		t.Errorf("Status().QueueDepth = %d, want 2", st.QueueDepth)
	}
	if st.Ready {
		t.Error("Status().Ready = true inside min interval, want false")
	}

	sched.Advance(time.Minute)
	st = q.Status()
	if st.QueueDepth != 0 {
		t.Errorf("Status().QueueDepth = %d after drain, want 0", st.QueueDepth)
	}
}
