package chatbox

import (
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/Artbyo3/vtauder/model"
	"github.com/Artbyo3/vtauder/pkg/scheduler"
)

func newTestAnimator(t *testing.T, opts ...AnimatorOption) (*Animator, *fakeSender, *scheduler.Manual) {
	t.Helper()
	sched := scheduler.NewManual(time.Unix(1700000000, 0))
	sender := &fakeSender{sched: sched}
	queue := NewQueue(sched, sender)
	opts = append([]AnimatorOption{WithRand(rand.New(rand.NewSource(1)))}, opts...)
	return NewAnimator(sched, queue, opts...), sender, sched
}

func TestAnimatorMusicFrames(t *testing.T) {
	a, sender, sched := newTestAnimator(t)

	a.Start(model.Track{Title: "Song", Artist: "Artist"})
	sched.Advance(4 * time.Second)

	want := []string{
		"ﮩ٨ـ Now Playing: Song - Artist",
		"٨ـﮩ Now Playing: Song - Artist",
		"ـﮩﮩ Now Playing: Song - Artist",
	}
	if len(sender.sent) != len(want) {
		t.Fatalf("got %d sends, want %d", len(sender.sent), len(want))
	}
	start := sender.sent[0].at
	for i, rec := range sender.sent {
		if rec.text != want[i] {
			t.Errorf("sent[%d] = %q, want %q", i, rec.text, want[i])
		}
		if got, wantAt := rec.at, start.Add(time.Duration(i)*DefaultMusicInterval); !got.Equal(wantAt) {
			t.Errorf("sent[%d] at %v, want %v", i, got, wantAt)
		}
	}
}

func TestAnimatorMusicFramesWrapAround(t *testing.T) {
	a, sender, sched := newTestAnimator(t)

	a.Start(model.Track{Title: "Song"})
	glyphs := []rune(MusicGlyphs)
	sched.Advance(time.Duration(len(glyphs)) * DefaultMusicInterval)

	if len(sender.sent) != len(glyphs)+1 {
		t.Fatalf("got %d sends, want %d", len(sender.sent), len(glyphs)+1)
	}
	// One full cycle later the frame repeats.
	if first, wrapped := sender.sent[0].text, sender.sent[len(glyphs)].text; first != wrapped {
		t.Errorf("frame after full cycle = %q, want %q", wrapped, first)
	}
}

func TestAnimatorPausedFrames(t *testing.T) {
	a, sender, sched := newTestAnimator(t)

	a.StartPaused()
	sched.Advance(30 * time.Second)

	if len(sender.sent) < 5 {
		t.Fatalf("got %d sends, want at least 5", len(sender.sent))
	}
	positions := map[int]bool{}
	for i, rec := range sender.sent {
		if !strings.HasPrefix(rec.text, "⏸️ Paused 🟥") || !strings.HasSuffix(rec.text, "🟦") {
			t.Errorf("sent[%d] = %q, want paused frame markers", i, rec.text)
		}
		if got := strings.Count(rec.text, "—"); got != DVDTrackLen {
			t.Errorf("sent[%d] has %d track dashes, want %d", i, got, DVDTrackLen)
		}
		if got := strings.Count(rec.text, "DVD"); got != 1 {
			t.Errorf("sent[%d] has %d markers, want 1", i, got)
		}
		positions[strings.Index(rec.text, "DVD")] = true
	}
	if len(positions) < 2 {
		t.Errorf("marker never moved across %d frames", len(sender.sent))
	}
}

func TestAnimatorStartReplacesSession(t *testing.T) {
	a, sender, sched := newTestAnimator(t)

	a.Start(model.Track{Title: "Song"})
	a.StartPaused()
	sched.Advance(time.Minute)

	musicFrames := 0
	for _, rec := range sender.sent {
		if strings.Contains(rec.text, "Now Playing") {
			musicFrames++
		}
	}
	if musicFrames != 1 {
		t.Errorf("got %d music frames after replacement, want only the initial one", musicFrames)
	}
	if got, ok := a.Subject(); ok {
		t.Errorf("Subject() = %v, true after StartPaused, want none", got)
	}
}

func TestAnimatorStopIsPermanent(t *testing.T) {
	a, sender, sched := newTestAnimator(t)

	a.Start(model.Track{Title: "Song"})
	sched.Advance(2 * time.Second)
	before := len(sender.sent)

	a.Stop()
	sched.Advance(time.Minute)

	if len(sender.sent) != before {
		t.Errorf("got %d sends after Stop, want %d", len(sender.sent), before)
	}
	if got := a.State(); got != AnimIdle {
		t.Errorf("State() = %v after Stop, want AnimIdle", got)
	}
}

func TestAnimatorSuspendAndResume(t *testing.T) {
	a, sender, sched := newTestAnimator(t)

	a.Start(model.Track{Title: "Song"})
	a.Suspend(10 * time.Second)

	if got := a.State(); got != AnimSuspended {
		t.Fatalf("State() = %v, want AnimSuspended", got)
	}

	sched.Advance(9 * time.Second)
	if len(sender.sent) != 1 {
		t.Fatalf("got %d sends during suspension, want 1", len(sender.sent))
	}

	sched.Advance(time.Second)
	if len(sender.sent) != 2 {
		t.Fatalf("got %d sends after resume, want 2", len(sender.sent))
	}
	if !strings.Contains(sender.sent[1].text, "Now Playing: Song") {
		t.Errorf("resumed frame = %q, want the same subject", sender.sent[1].text)
	}
}

func TestAnimatorStopDuringSuspendWins(t *testing.T) {
	a, sender, sched := newTestAnimator(t)

	a.Start(model.Track{Title: "Song"})
	a.Suspend(10 * time.Second)
	a.Stop()
	sched.Advance(time.Minute)

	if len(sender.sent) != 1 {
		t.Errorf("got %d sends, want 1 (no resume after Stop)", len(sender.sent))
	}
}

func TestAnimatorExtraLines(t *testing.T) {
	a, sender, sched := newTestAnimator(t, WithExtraLines(func() []string {
		return []string{"window: Spotify"}
	}))

	a.Start(model.Track{Title: "Song"})
	sched.Advance(0)

	if len(sender.sent) != 1 {
		t.Fatalf("got %d sends, want 1", len(sender.sent))
	}
	// Newlines collapse to spaces on the way out.
	if want := "ﮩ٨ـ Now Playing: Song window: Spotify"; sender.sent[0].text != want {
		t.Errorf("sent %q, want %q", sender.sent[0].text, want)
	}
}

func TestAnimatorFaultRestart(t *testing.T) {
	calls := 0
	a, sender, sched := newTestAnimator(t,
		WithExtraLines(func() []string {
			calls++
			if calls == 1 {
				panic("provider down")
			}
			return nil
		}),
		WithRestartPolicy(func() bool { return true }),
	)

	a.Start(model.Track{Title: "Song"})

	if len(sender.sent) != 0 {
		t.Fatalf("got %d sends from the faulted tick, want 0", len(sender.sent))
	}
	if got := a.State(); got != AnimFaulted {
		t.Fatalf("State() = %v, want AnimFaulted", got)
	}

	sched.Advance(DefaultMusicInterval)

	if got := a.State(); got != AnimRunning {
		t.Errorf("State() = %v after restart, want AnimRunning", got)
	}
	if len(sender.sent) != 1 {
		t.Fatalf("got %d sends after restart, want 1", len(sender.sent))
	}
}

func TestAnimatorFaultWithoutPolicyStays(t *testing.T) {
	a, sender, sched := newTestAnimator(t, WithExtraLines(func() []string {
		panic("provider down")
	}))

	a.Start(model.Track{Title: "Song"})
	sched.Advance(time.Minute)

	if len(sender.sent) != 0 {
		t.Errorf("got %d sends, want 0", len(sender.sent))
	}
	if got := a.State(); got != AnimFaulted {
		t.Errorf("State() = %v, want AnimFaulted", got)
	}
}
