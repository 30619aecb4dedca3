package chatbox

import (
	"sync"
	"time"

	"github.com/Artbyo3/vtauder/model"
	"github.com/Artbyo3/vtauder/pkg/pubsub"
)

// DefaultHistorySize bounds the visible message log.
const DefaultHistorySize = 100

// Entry is one line of the visible history log: a message the queue
// actually delivered. The log is user feedback, not authoritative state.
type Entry struct {
	Category model.Category `json:"category"`
	Text     string         `json:"text"`
	At       time.Time      `json:"at"`
}

// History is an append-only, bounded log of delivered messages. Each append
// is also published to the attached pubsub sinks, so overlay pages and
// other observers can follow along live.
type History struct {
	mu      sync.Mutex
	max     int
	entries []Entry

	local pubsub.PubSub[Entry]
	sinks []pubsub.PubSub[Entry]
}

// NewHistory returns a History keeping at most max entries
// (DefaultHistorySize if max <= 0).
func NewHistory(max int) *History {
	if max <= 0 {
		max = DefaultHistorySize
	}
	local := pubsub.NewPubSubChan[Entry]()
	return &History{
		max:   max,
		local: local,
		sinks: []pubsub.PubSub[Entry]{local},
	}
}

// AddSink attaches an extra pubsub sink (redis, for example). Appends are
// published to every sink; a sink error does not fail the append.
func (h *History) AddSink(ps pubsub.PubSub[Entry]) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sinks = append(h.sinks, ps)
}

// Append records a delivered message, evicting the oldest entry at
// capacity.
func (h *History) Append(e Entry) {
	h.mu.Lock()
	h.entries = append(h.entries, e)
	if len(h.entries) > h.max {
		h.entries = h.entries[1:]
	}
	sinks := h.sinks
	h.mu.Unlock()

	for _, ps := range sinks {
		_ = ps.Publish(e)
	}
}

// Entries returns a copy of the log, oldest first.
func (h *History) Entries() []Entry {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]Entry, len(h.entries))
	copy(out, h.entries)
	return out
}

// Subscribe follows future appends through the in-process sink.
func (h *History) Subscribe() <-chan pubsub.Result[Entry] {
	return h.local.Subscribe()
}
