package main

import (
	"encoding/json"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/mitchellh/mapstructure"
	"golang.org/x/exp/slog"

	"github.com/Artbyo3/vtauder/chatbox"
	"github.com/Artbyo3/vtauder/model"
)

// transcriptData is the payload of a transcript bridge event.
type transcriptData struct {
	Text  string  `mapstructure:"text"`
	Final bool    `mapstructure:"final"`
	Level float64 `mapstructure:"level"` // mic level, informational
}

// sentenceEnders end a sentence; a fragment after one of these joins with
// a plain space.
const sentenceEnders = ".!?"

// sttCombiner merges consecutive transcript fragments into one utterance.
// A fragment that opens with an uppercase letter while the buffer has no
// closing punctuation reads like a new sentence, so it joins with ". ".
type sttCombiner struct {
	mu  sync.Mutex
	buf string
}

// Push merges fragment into the buffer and returns the combined text.
func (c *sttCombiner) Push(fragment string) string {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.buf == "" {
		c.buf = fragment
		return c.buf
	}

	last := []rune(c.buf)[len([]rune(c.buf))-1]
	first := []rune(fragment)[0]

	if !strings.ContainsRune(sentenceEnders, last) && unicode.IsUpper(first) {
		c.buf += ". " + fragment
	} else {
		c.buf += " " + fragment
	}
	return c.buf
}

// Reset clears the buffer, starting a fresh utterance.
func (c *sttCombiner) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.buf = ""
}

// Text returns the current buffer.
func (c *sttCombiner) Text() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buf
}

// TextFromSTT consumes the speech-to-text bridge at addr: every transcript
// grows the combiner, the combined utterance goes on the queue, and the
// now-playing animation backs off so speech owns the chatbox for a while.
// typing, when non-nil, flashes the remote typing indicator as speech
// comes in.
//
// Blocks forever; run it in a goroutine.
func TextFromSTT(addr string, queue *chatbox.Queue, anim *chatbox.Animator, combiner *sttCombiner, suspend time.Duration, stamp func(string) string, typing func(on bool)) {
	runBridgeClient("stt", addr, func(msg string) {
		var env bridgeMessage
		if err := json.Unmarshal([]byte(msg), &env); err != nil {
			slog.Warn("[stt] bad message", "err", err)
			return
		}
		if env.Type != bridgeEventTranscript {
			return
		}

		var data transcriptData
		if err := mapstructure.Decode(env.Data, &data); err != nil {
			slog.Warn("[stt] bad transcript payload", "err", err)
			return
		}

		text := strings.TrimSpace(data.Text)
		if text == "" {
			return
		}

		if typing != nil {
			typing(true)
		}
		combined := combiner.Push(text)
		slog.Info("[stt] transcript", "text", text, "final", data.Final)
		if queue.Enqueue(stamp(combined), model.CategorySTT) {
			anim.Suspend(suspend)
		}
	})
}
