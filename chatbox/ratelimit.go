package chatbox

import "time"

// Defaults for the send rate limiter. The penalty window is a guess: the
// remote endpoint never tells us how long its spam timeout actually lasts,
// and 30s avoids tight retry storms. Both are configurable (see Options).
const (
	DefaultMinInterval   = 1500 * time.Millisecond
	DefaultPenaltyWindow = 30 * time.Second
)

// rateLimiter holds the outbound pacing state. It is owned by the Queue and
// mutated only by the drain path, under the Queue's lock.
type rateLimiter struct {
	minInterval time.Duration
	penalty     time.Duration

	lastSentAt   time.Time // updated only on successful sends
	timeoutUntil time.Time // nonzero while a spam penalty is pending
}

// waitUntilReady returns how long the drain loop must wait before the next
// send attempt: the larger of the remaining penalty window and the
// remaining min-interval spacing. Zero means ready.
func (r *rateLimiter) waitUntilReady(now time.Time) time.Duration {
	var wait time.Duration
	if r.timeoutUntil.After(now) {
		wait = r.timeoutUntil.Sub(now)
	}
	if !r.lastSentAt.IsZero() {
		if left := r.minInterval - now.Sub(r.lastSentAt); left > wait {
			wait = left
		}
	}
	if wait < 0 {
		wait = 0
	}
	return wait
}

func (r *rateLimiter) recordSent(now time.Time) {
	r.lastSentAt = now
}

// penalize arms the spam timeout. retryAfter <= 0 falls back to the
// configured penalty window.
func (r *rateLimiter) penalize(now time.Time, retryAfter time.Duration) {
	if retryAfter <= 0 {
		retryAfter = r.penalty
	}
	r.timeoutUntil = now.Add(retryAfter)
}

// inTimeout reports whether a spam penalty is still pending. The state
// clears itself by the clock, never explicitly.
func (r *rateLimiter) inTimeout(now time.Time) bool {
	return r.timeoutUntil.After(now)
}
