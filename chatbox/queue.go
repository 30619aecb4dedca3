// Package chatbox implements the outbound message pipeline: every text the
// app wants to show in the remote chatbox (manual chat, speech transcripts,
// gesture phrases, now-playing animations) is enqueued here, and a single
// rate-limited drain loop delivers the lines one at a time.
//
// One queue per session. The remote endpoint enforces one global rate limit
// and punishes bursts with a spam timeout, so a single serialized drain
// path with shared backoff state is the whole point: producers never talk
// to the Sender directly.
package chatbox

import (
	"errors"
	"sync"
	"time"

	"golang.org/x/exp/slog"

	"github.com/Artbyo3/vtauder/model"
	"github.com/Artbyo3/vtauder/pkg/scheduler"
)

// Queue is the outbound chatbox queue: bounded, FIFO, drop-oldest on
// overflow. All methods are safe for concurrent producers.
type Queue struct {
	mu sync.Mutex

	sched   scheduler.Scheduler
	sender  Sender
	history *History

	maxSize int
	maxLen  int
	limiter rateLimiter

	items      []model.Message
	processing bool // a drain cycle is in flight (sending or waiting)
}

// A QueueOption tweaks queue defaults.
type QueueOption func(*Queue)

// WithMinInterval sets the minimum spacing between successful sends.
func WithMinInterval(d time.Duration) QueueOption {
	return func(q *Queue) { q.limiter.minInterval = d }
}

// WithPenaltyWindow sets how long to back off after a spam rejection that
// does not say how long to wait.
func WithPenaltyWindow(d time.Duration) QueueOption {
	return func(q *Queue) { q.limiter.penalty = d }
}

// WithMaxQueueSize sets the queue capacity.
func WithMaxQueueSize(n int) QueueOption {
	return func(q *Queue) { q.maxSize = n }
}

// WithMaxMessageLength sets the per-message rune limit.
func WithMaxMessageLength(n int) QueueOption {
	return func(q *Queue) { q.maxLen = n }
}

// WithHistory uses the given history log instead of a fresh one.
func WithHistory(h *History) QueueOption {
	return func(q *Queue) { q.history = h }
}

// NewQueue builds a queue draining through sender, scheduled on sched.
func NewQueue(sched scheduler.Scheduler, sender Sender, opts ...QueueOption) *Queue {
	q := &Queue{
		sched:   sched,
		sender:  sender,
		maxSize: MaxQueueSize,
		maxLen:  MaxMessageLength,
		limiter: rateLimiter{
			minInterval: DefaultMinInterval,
			penalty:     DefaultPenaltyWindow,
		},
	}
	for _, opt := range opts {
		opt(q)
	}
	if q.history == nil {
		q.history = NewHistory(DefaultHistorySize)
	}
	return q
}

// History returns the visible log of delivered messages.
func (q *Queue) History() *History {
	return q.history
}

// Enqueue validates text and appends it to the queue, evicting the oldest
// pending message when the queue is full. It reports whether the message
// was accepted; rejection only ever means invalid input, never "queue
// full". Accepting a message kicks the drain loop if it is not already
// running.
func (q *Queue) Enqueue(text string, category model.Category) bool {
	sanitized, ok := validateMax(text, q.maxLen)
	if !ok {
		slog.Debug("[chatbox] dropped invalid message", "category", category)
		return false
	}

	q.mu.Lock()
	if len(q.items) >= q.maxSize {
		dropped := q.items[0]
		q.items = q.items[1:]
		slog.Info("[chatbox] queue full, dropped oldest",
			"category", dropped.Category, "text", dropped.Text)
	}
	q.items = append(q.items, model.Message{
		Text:       sanitized,
		Category:   category,
		EnqueuedAt: q.sched.Now(),
	})
	q.mu.Unlock()

	q.drain()
	return true
}

// drain delivers the next pending message, subject to the rate limiter.
//
// Exactly one drain cycle runs at a time (q.processing). While the limiter
// says "wait", the cycle parks on a scheduler task without popping the
// queue, so waiting never loses messages. After a send attempt — success or
// not — the next attempt is spaced by the min interval.
func (q *Queue) drain() {
	q.mu.Lock()
	if q.processing || len(q.items) == 0 {
		q.mu.Unlock()
		return
	}

	now := q.sched.Now()
	if wait := q.limiter.waitUntilReady(now); wait > 0 {
		q.processing = true
		q.mu.Unlock()
		q.sched.After(wait, q.redrain)
		return
	}

	msg := q.items[0]
	q.items = q.items[1:]
	q.processing = true
	q.mu.Unlock()

	err := q.sender.Send(msg.Text)

	q.mu.Lock()
	now = q.sched.Now()
	var delivered *Entry
	switch {
	case err == nil:
		q.limiter.recordSent(now)
		delivered = &Entry{
			Category: msg.Category,
			Text:     msg.Text,
			At:       now,
		}
	default:
		var rl *RateLimitedError
		if errors.As(err, &rl) {
			// the message is gone on purpose: by the time the penalty
			// lapses its content is stale
			q.limiter.penalize(now, rl.RetryAfter)
			slog.Warn("[chatbox] spam timeout, pausing sends",
				"until", q.limiter.timeoutUntil, "diagnostic", rl.Diagnostic)
		} else {
			slog.Error("[chatbox] send failed, message dropped",
				"category", msg.Category, "err", err)
		}
	}

	empty := len(q.items) == 0
	if empty {
		// let the next Enqueue start a fresh cycle instead of leaving a
		// stale timer around
		q.processing = false
	}
	q.mu.Unlock()

	if delivered != nil {
		// outside the lock: history publishes to its sinks, which may be
		// a network hop
		q.history.Append(*delivered)
	}
	if !empty {
		q.sched.After(q.limiter.minInterval, q.redrain)
	}
}

// redrain is the scheduled continuation of an in-flight drain cycle.
func (q *Queue) redrain() {
	q.mu.Lock()
	q.processing = false
	q.mu.Unlock()
	q.drain()
}

// Status is a point-in-time snapshot for the HTTP status endpoint.
type Status struct {
	QueueDepth  int           `json:"queue_depth"`
	QueueCap    int           `json:"queue_cap"`
	InTimeout   bool          `json:"in_timeout"`
	TimeoutLeft time.Duration `json:"timeout_left,omitempty"`
	Ready       bool          `json:"ready"`
}

// Status reports queue depth and limiter state.
func (q *Queue) Status() Status {
	q.mu.Lock()
	defer q.mu.Unlock()

	now := q.sched.Now()
	s := Status{
		QueueDepth: len(q.items),
		QueueCap:   q.maxSize,
		InTimeout:  q.limiter.inTimeout(now),
	}
	if s.InTimeout {
		s.TimeoutLeft = q.limiter.timeoutUntil.Sub(now)
	}
	s.Ready = !s.InTimeout && q.limiter.waitUntilReady(now) == 0
	return s
}
