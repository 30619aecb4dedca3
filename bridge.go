package main

import (
	"strings"
	"time"

	"golang.org/x/exp/slog"
	"golang.org/x/net/websocket"
)

// bridgeMessage is the envelope every input bridge (stt, gesture) speaks:
// a type tag plus a type-specific payload.
type bridgeMessage struct {
	Type string         `json:"type"`
	Data map[string]any `json:"data"`
}

// bridge event types
const (
	bridgeEventTranscript = "transcript"
	bridgeEventGesture    = "gesture"
)

const bridgeRedialInterval = 5 * time.Second

// runBridgeClient dials the bridge at addr and hands every received
// message to handle, redialing on failure. Blocks forever; run it in a
// goroutine.
func runBridgeClient(name, addr string, handle func(msg string)) {
	for {
		ws, err := websocket.Dial(addr, "", bridgeOrigin(addr))
		if err != nil {
			slog.Error("["+name+"] dial failed", "addr", addr, "err", err)
			time.Sleep(bridgeRedialInterval)
			continue
		}
		slog.Info("["+name+"] connected", "addr", addr)

		for {
			var msg string
			if err := websocket.Message.Receive(ws, &msg); err != nil {
				slog.Warn("["+name+"] connection lost", "err", err)
				break
			}
			handle(msg)
		}
		ws.Close()
		time.Sleep(bridgeRedialInterval)
	}
}

func bridgeOrigin(addr string) string {
	addr = strings.TrimPrefix(addr, "ws://")
	addr = strings.TrimPrefix(addr, "wss://")
	if i := strings.IndexByte(addr, '/'); i >= 0 {
		addr = addr[:i]
	}
	return "http://" + addr
}
