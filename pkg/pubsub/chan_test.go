package pubsub

import "testing"

func TestPubSubChan(t *testing.T) {
	testPubSub(t, NewPubSubChan[int]())
}

func testPubSub(t *testing.T, ps PubSub[int]) {
	s1 := ps.Subscribe()
	s2 := ps.Subscribe()

	num := 100

	done := make(chan struct{})
	go func() {
		defer close(done)
		// read in lockstep: the fan-out delivers to every subscriber
		// before moving on, so draining one channel fully first would
		// stall it
		for i := 1; i <= num; i++ {
			for _, s := range [](<-chan Result[int]){s1, s2} {
				r := <-s
				if r.Err != nil {
					t.Error(r.Err)
					return
				}
				if r.Ok != i {
					t.Errorf("expected %d, got %d", i, r.Ok)
					return
				}
			}
		}
	}()

	for i := 1; i <= num; i++ {
		if err := ps.Publish(i); err != nil {
			t.Fatal(err)
		}
	}

	<-done
}

func TestPubSubChanDropsWithoutSubscribers(t *testing.T) {
	ps := NewPubSubChan[int]()

	// far beyond any buffer: must not block
	for i := 0; i < 1000; i++ {
		if err := ps.Publish(i); err != nil {
			t.Fatal(err)
		}
	}
}
