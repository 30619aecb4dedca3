package chatbox

import "time"

// Sender delivers one line of text to the remote chatbox endpoint.
//
// A Sender that can tell it was rejected for spamming must return a
// *RateLimitedError, so the queue can back off. Any other error just drops
// the message and keeps the normal cadence.
type Sender interface {
	Send(text string) error
}

// RateLimitedError reports that the remote endpoint rejected a send as spam
// (or the transport said so). The queue reacts by entering its penalty
// window.
type RateLimitedError struct {
	// RetryAfter is the penalty the remote asked for, if it told us.
	// Zero means unknown; the queue falls back to its configured window.
	RetryAfter time.Duration

	// Diagnostic is the raw message from the transport, kept for the log.
	Diagnostic string
}

func (e *RateLimitedError) Error() string {
	if e.Diagnostic == "" {
		return "chatbox: rate limited"
	}
	return "chatbox: rate limited: " + e.Diagnostic
}
