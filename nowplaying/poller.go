package nowplaying

import (
	"sync"
	"time"

	"golang.org/x/exp/slog"

	"github.com/Artbyo3/vtauder/chatbox"
	"github.com/Artbyo3/vtauder/model"
	"github.com/Artbyo3/vtauder/pkg/scheduler"
)

const DefaultPollInterval = 5 * time.Second

// Poller watches the selected player window and reacts to what it finds:
// a new track gets a "next song" banner and a fresh music animation, a
// paused title switches to the idle animation, an unchanged title leaves
// the running animation alone.
type Poller struct {
	mu sync.Mutex

	sched scheduler.Scheduler
	src   Source
	queue *chatbox.Queue
	anim  *chatbox.Animator

	interval      time.Duration
	pausedTitles  []string
	onTrackChange func(model.Track)

	polling bool
	task    scheduler.Task

	last    model.Track
	hasLast bool
	paused  bool
}

// A PollerOption tweaks poller defaults.
type PollerOption func(*Poller)

// WithPollInterval sets the cycle length.
func WithPollInterval(d time.Duration) PollerOption {
	return func(p *Poller) { p.interval = d }
}

// WithPausedTitles replaces the titles treated as "paused".
func WithPausedTitles(titles []string) PollerOption {
	return func(p *Poller) { p.pausedTitles = titles }
}

// WithOnTrackChange installs a hook fired once per track change, after
// the banner is enqueued. Used to push the track to the avatar parameter.
func WithOnTrackChange(fn func(model.Track)) PollerOption {
	return func(p *Poller) { p.onTrackChange = fn }
}

// NewPoller builds a poller over src, feeding queue and anim.
func NewPoller(sched scheduler.Scheduler, src Source, queue *chatbox.Queue, anim *chatbox.Animator, opts ...PollerOption) *Poller {
	p := &Poller{
		sched:        sched,
		src:          src,
		queue:        queue,
		anim:         anim,
		interval:     DefaultPollInterval,
		pausedTitles: DefaultPausedTitles,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start begins polling. The first cycle runs immediately. Starting an
// already-running poller is a no-op.
func (p *Poller) Start() {
	p.mu.Lock()
	if p.polling {
		p.mu.Unlock()
		return
	}
	p.polling = true
	p.mu.Unlock()

	slog.Info("[nowplaying] polling started")
	p.poll()
}

// Stop ends polling and the animation with it.
func (p *Poller) Stop() {
	p.mu.Lock()
	if !p.polling {
		p.mu.Unlock()
		return
	}
	p.polling = false
	if p.task != nil {
		p.task.Cancel()
		p.task = nil
	}
	p.hasLast = false
	p.paused = false
	p.mu.Unlock()

	p.anim.Stop()
	slog.Info("[nowplaying] polling stopped")
}

// Polling reports whether the loop is running.
func (p *Poller) Polling() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.polling
}

func (p *Poller) poll() {
	p.mu.Lock()
	if !p.polling {
		p.mu.Unlock()
		return
	}
	// Rechain first so a bad cycle cannot kill the loop.
	p.task = p.sched.After(p.interval, p.poll)

	w, ok := p.src.CurrentSelection()
	if !ok {
		p.mu.Unlock()
		return
	}

	track, paused, ok := ParseTitle(w.ProcessName, w.Title, p.pausedTitles)
	if !ok {
		p.mu.Unlock()
		return
	}

	if paused {
		wasPaused := p.paused
		p.paused = true
		p.mu.Unlock()
		if !wasPaused {
			slog.Info("[nowplaying] player paused")
			p.anim.StartPaused()
		}
		return
	}

	changed := !p.hasLast || track != p.last
	resuming := p.paused
	p.last = track
	p.hasLast = true
	p.paused = false
	hook := p.onTrackChange
	p.mu.Unlock()

	if changed {
		slog.Info("[nowplaying] track changed", "track", track.String())
		p.queue.Enqueue("⏭️ Next Song: "+track.String(), model.CategoryGeneral)
		if hook != nil {
			hook(track)
		}
	}
	if changed || resuming {
		p.anim.Start(track)
	}
}
