package main

import (
	"encoding/json"

	"github.com/mitchellh/mapstructure"
	"golang.org/x/exp/slog"

	"github.com/Artbyo3/vtauder/chatbox"
	"github.com/Artbyo3/vtauder/model"
)

// defaultGesturePhrases maps VR controller gestures to chat phrases.
var defaultGesturePhrases = map[string]string{
	"swipe_up":    "Hello!",
	"swipe_down":  "Thank you!",
	"swipe_left":  "Need help!",
	"swipe_right": "Goodbye!",
}

// gestureData is the payload of a gesture bridge event.
type gestureData struct {
	Name string `mapstructure:"name"`
}

// gesturePhrases merges configured overrides onto the defaults.
func gesturePhrases(overrides map[string]string) map[string]string {
	phrases := make(map[string]string, len(defaultGesturePhrases))
	for k, v := range defaultGesturePhrases {
		phrases[k] = v
	}
	for k, v := range overrides {
		phrases[k] = v
	}
	return phrases
}

// TextFromGestures consumes the gesture bridge at addr and enqueues the
// phrase mapped to each recognized gesture.
//
// Blocks forever; run it in a goroutine.
func TextFromGestures(addr string, phrases map[string]string, queue *chatbox.Queue, stamp func(string) string) {
	runBridgeClient("gesture", addr, func(msg string) {
		var env bridgeMessage
		if err := json.Unmarshal([]byte(msg), &env); err != nil {
			slog.Warn("[gesture] bad message", "err", err)
			return
		}
		if env.Type != bridgeEventGesture {
			return
		}

		var data gestureData
		if err := mapstructure.Decode(env.Data, &data); err != nil {
			slog.Warn("[gesture] bad gesture payload", "err", err)
			return
		}

		phrase, ok := phrases[data.Name]
		if !ok {
			slog.Info("[gesture] unmapped gesture", "name", data.Name)
			return
		}
		slog.Info("[gesture] recognized", "name", data.Name, "phrase", phrase)
		queue.Enqueue(stamp(phrase), model.CategoryGesture)
	})
}
