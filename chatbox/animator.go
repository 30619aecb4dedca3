package chatbox

import (
	"math/rand"
	"strings"
	"sync"
	"time"

	"golang.org/x/exp/slog"

	"github.com/Artbyo3/vtauder/model"
	"github.com/Artbyo3/vtauder/pkg/scheduler"
)

// Animation defaults.
const (
	// MusicGlyphs is the decorative strip cycled in front of the
	// now-playing line, three runes per frame.
	MusicGlyphs     = "ﮩ٨ـﮩﮩ٨ـﮩ٨ـﮩﮩ٨ـ"
	musicFrameWidth = 3

	DefaultMusicInterval = 2 * time.Second

	// DVDTrackLen is the dash count of the paused-animation track.
	DVDTrackLen = 7
)

// DefaultDVDIntervals are the candidate inter-frame delays of the paused
// animation. The delay (like the marker position) is picked at random per
// frame: it is an ambient effect, not a playback indicator.
var DefaultDVDIntervals = []time.Duration{
	1 * time.Second,
	2 * time.Second,
	3 * time.Second,
}

// AnimState is the animator lifecycle state.
type AnimState int

const (
	AnimIdle AnimState = iota // no session, or explicitly stopped
	AnimRunning
	AnimSuspended // session kept, ticking paused (speech is on screen)
	AnimFaulted   // a tick failed; supervisor decides whether to restart
)

type animKind int

const (
	animNone animKind = iota
	animMusic
	animPaused
)

// Animator produces the recurring decorative status lines: the now-playing
// visualizer and the paused "DVD" idler. It is a producer into the shared
// Queue — every frame goes through Enqueue, so animations cooperate with
// the rate limit instead of bypassing it.
//
// At most one animation session is active at a time; starting a new one
// cancels the previous session's pending tick first.
type Animator struct {
	mu sync.Mutex

	sched scheduler.Scheduler
	queue *Queue

	state   AnimState
	kind    animKind
	frame   int
	subject model.Track
	task    scheduler.Task

	rng           *rand.Rand
	extraLines    func() []string
	restartPolicy func() bool
	musicInterval time.Duration
	dvdIntervals  []time.Duration
}

// An AnimatorOption tweaks animator defaults.
type AnimatorOption func(*Animator)

// WithExtraLines appends provider-supplied lines (active window info,
// lyrics) under each now-playing frame.
func WithExtraLines(fn func() []string) AnimatorOption {
	return func(a *Animator) { a.extraLines = fn }
}

// WithRestartPolicy installs the supervisor decision for faulted sessions:
// return true to let a faulted animation restart itself on its next tick.
// Without a policy a fault ends the session.
func WithRestartPolicy(fn func() bool) AnimatorOption {
	return func(a *Animator) { a.restartPolicy = fn }
}

// WithRand fixes the random source (paused-animation position and delay).
func WithRand(rng *rand.Rand) AnimatorOption {
	return func(a *Animator) { a.rng = rng }
}

// WithMusicInterval sets the now-playing frame cadence.
func WithMusicInterval(d time.Duration) AnimatorOption {
	return func(a *Animator) { a.musicInterval = d }
}

// WithDVDIntervals sets the paused-animation delay candidates.
func WithDVDIntervals(ds ...time.Duration) AnimatorOption {
	return func(a *Animator) { a.dvdIntervals = ds }
}

// NewAnimator builds an animator feeding queue, scheduled on sched.
func NewAnimator(sched scheduler.Scheduler, queue *Queue, opts ...AnimatorOption) *Animator {
	a := &Animator{
		sched:         sched,
		queue:         queue,
		musicInterval: DefaultMusicInterval,
		dvdIntervals:  DefaultDVDIntervals,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.rng == nil {
		a.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return a
}

// Start begins a now-playing session for track, replacing any active
// session. The first frame is emitted immediately.
func (a *Animator) Start(track model.Track) {
	a.begin(animMusic, track)
}

// StartPaused begins the paused/idle session, replacing any active session.
func (a *Animator) StartPaused() {
	a.begin(animPaused, model.Track{})
}

func (a *Animator) begin(kind animKind, track model.Track) {
	a.mu.Lock()
	if a.task != nil {
		a.task.Cancel()
		a.task = nil
	}
	a.state = AnimRunning
	a.kind = kind
	a.frame = 0
	if kind == animMusic {
		a.subject = track
	}
	a.mu.Unlock()

	a.tick()
}

// Stop ends the session permanently. Only Stop does: a session that merely
// faulted may be restarted by the supervisor policy.
func (a *Animator) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.task != nil {
		a.task.Cancel()
		a.task = nil
	}
	a.state = AnimIdle
	a.kind = animNone
}

// Suspend pauses a running now-playing session for d, then resumes it with
// the same subject. Used while a speech transcript should own the chatbox.
// Stop or a new Start during the pause wins over the resume.
func (a *Animator) Suspend(d time.Duration) {
	a.mu.Lock()
	if a.state != AnimRunning || a.kind != animMusic {
		a.mu.Unlock()
		return
	}
	if a.task != nil {
		a.task.Cancel()
	}
	a.state = AnimSuspended
	subject := a.subject
	a.task = a.sched.After(d, func() { a.resume(subject) })
	a.mu.Unlock()
}

func (a *Animator) resume(subject model.Track) {
	a.mu.Lock()
	if a.state != AnimSuspended {
		a.mu.Unlock()
		return
	}
	a.mu.Unlock()
	a.Start(subject)
}

// State returns the lifecycle state.
func (a *Animator) State() AnimState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Subject returns the current now-playing track, if a music session is
// active or suspended.
func (a *Animator) Subject() (model.Track, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.kind != animMusic {
		return model.Track{}, false
	}
	return a.subject, true
}

func (a *Animator) tick() {
	a.mu.Lock()
	if a.state != AnimRunning {
		// A faulted session self-heals here if the supervisor allows it;
		// anything else (Stop, Suspend, replaced session) ends this chain.
		if a.state == AnimFaulted && a.restartPolicy != nil && a.restartPolicy() {
			slog.Info("[chatbox] animation restarting after fault")
			a.state = AnimRunning
		} else {
			a.mu.Unlock()
			return
		}
	}

	var line string
	var category model.Category
	var next time.Duration

	switch a.kind {
	case animMusic:
		line = a.musicLine()
		category = model.CategoryMusic
		next = a.musicInterval
	case animPaused:
		line = a.dvdLine()
		category = model.CategoryDVD
		next = a.dvdIntervals[a.rng.Intn(len(a.dvdIntervals))]
	default:
		a.mu.Unlock()
		return
	}

	a.frame++
	a.task = a.sched.After(next, a.tick)

	extras, ok := a.collectExtraLines()
	if !ok {
		// provider blew up: mark the fault and let the next tick consult
		// the supervisor
		a.state = AnimFaulted
		a.mu.Unlock()
		return
	}
	a.mu.Unlock()

	for _, extra := range extras {
		line += "\n" + extra
	}
	a.queue.Enqueue(line, category)
}

// collectExtraLines runs the user-supplied provider, converting a panic
// into a fault instead of killing the tick chain. Caller holds a.mu.
func (a *Animator) collectExtraLines() (lines []string, ok bool) {
	if a.kind != animMusic || a.extraLines == nil {
		return nil, true
	}
	defer func() {
		if r := recover(); r != nil {
			slog.Error("[chatbox] animation extra-lines provider panicked", "recovered", r)
			ok = false
		}
	}()
	return a.extraLines(), true
}

// musicLine composes one visualizer frame: a circular three-rune window
// over the glyph strip, then the now-playing text. Caller holds a.mu.
func (a *Animator) musicLine() string {
	glyphs := []rune(MusicGlyphs)
	idx := a.frame % len(glyphs)

	var frame strings.Builder
	for i := 0; i < musicFrameWidth; i++ {
		frame.WriteRune(glyphs[(idx+i)%len(glyphs)])
	}

	return frame.String() + " Now Playing: " + a.subject.String()
}

// dvdLine composes one paused-animation frame: the DVD marker at a random
// slot of a fixed-width dash track. Caller holds a.mu.
func (a *Animator) dvdLine() string {
	const marker = "DVD"

	var track string
	switch a.rng.Intn(3) {
	case 0: // left
		track = marker + strings.Repeat("—", DVDTrackLen)
	case 1: // middle
		mid := DVDTrackLen / 2
		track = strings.Repeat("—", mid) + marker + strings.Repeat("—", DVDTrackLen-mid)
	default: // right
		track = strings.Repeat("—", DVDTrackLen) + marker
	}

	return "⏸️ Paused\n🟥" + track + "🟦"
}
