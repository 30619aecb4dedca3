package pubsub

import "sync"

// chan buffer size for both the publish side and each subscriber.
const chanBufSize = 8

// pubSubChan is a PubSub[T] implementation on go chans.
//
// Publish never blocks the caller as long as every subscriber keeps
// draining its channel; a subscriber that stops reading eventually stalls
// the fan-out goroutine (and with it all other subscribers), so observers
// must consume promptly or unsubscribe by dropping out of the process.
type pubSubChan[T any] struct {
	pub chan T

	mu   sync.RWMutex // protects subs
	subs []chan Result[T]
}

func NewPubSubChan[T any]() PubSub[T] {
	ps := &pubSubChan[T]{
		pub: make(chan T, chanBufSize),
	}

	go ps.run()

	return ps
}

func (ps *pubSubChan[T]) Publish(payload T) error {
	ps.mu.RLock()
	noSubs := len(ps.subs) == 0
	ps.mu.RUnlock()

	// no subscribers: drop the message instead of filling the buffer
	if !noSubs {
		ps.pub <- payload
	}
	return nil
}

func (ps *pubSubChan[T]) Subscribe() <-chan Result[T] {
	ch := make(chan Result[T], chanBufSize)

	ps.mu.Lock()
	ps.subs = append(ps.subs, ch)
	ps.mu.Unlock()

	return ch
}

func (ps *pubSubChan[T]) run() {
	for msg := range ps.pub {
		ps.mu.RLock()
		subs := ps.subs
		ps.mu.RUnlock()

		for _, sub := range subs {
			sub <- Result[T]{Ok: msg}
		}
	}
}
