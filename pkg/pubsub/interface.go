// Package pubsub is a minimal generic publish/subscribe layer.
//
// vtauder uses it to broadcast chatbox history entries to observers
// (overlay pages, debug tooling) without coupling them to the queue. Two
// implementations: in-process channels (always available) and redis
// (optional, for out-of-process observers).
package pubsub

// PubSub[T] is the pub/sub interface.
type PubSub[T any] interface {
	Publish(payload T) error
	Subscribe() <-chan Result[T]
}

// Result[T] is what a subscription channel yields: a payload, or a
// transport/decode error.
type Result[T any] struct {
	Ok  T
	Err error
}
