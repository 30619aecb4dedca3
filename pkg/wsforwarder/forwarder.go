// Package wsforwarder fans messages out to WebSocket clients. It feeds
// overlay pages that watch the sent-message log live.
package wsforwarder

import (
	"sync"

	"golang.org/x/net/websocket"
)

// per-client chan buffer size
const BufferSize = 8

type Forwarder interface {
	// ForwardMessageTo serves one WebSocket client. Blocks until the
	// connection closes.
	ForwardMessageTo(ws *websocket.Conn)
	// ForwardMessageFrom drains msgCh into all connected clients.
	// Blocks until msgCh closes.
	ForwardMessageFrom(msgCh <-chan []byte)
	// SendMessage pushes one message to all connected clients.
	SendMessage(msg []byte)
}

type messageForwarder struct {
	msgChans []chan []byte
	mu       sync.RWMutex // protects msgChans
}

func NewMessageForwarder() Forwarder {
	return &messageForwarder{
		msgChans: []chan []byte{},
	}
}

func (f *messageForwarder) ForwardMessageTo(ws *websocket.Conn) {
	ch := make(chan []byte, BufferSize)

	f.mu.Lock()
	f.msgChans = append(f.msgChans, ch)
	f.mu.Unlock()

	logger.Info("client connected", "remote", ws.RemoteAddr())

	for msg := range ch {
		if _, err := ws.Write(msg); err != nil {
			logger.Info("client write failed", "remote", ws.RemoteAddr(), "err", err)
			break
		}
	}
	_ = ws.Close()

	f.mu.Lock()
	for i, c := range f.msgChans {
		if c == ch {
			f.msgChans = append(f.msgChans[:i], f.msgChans[i+1:]...)
			break
		}
	}
	f.mu.Unlock()

	logger.Info("client disconnected", "remote", ws.RemoteAddr())
}

// SendMessage never blocks: a client that cannot keep up loses messages
// instead of stalling the sender.
func (f *messageForwarder) SendMessage(msg []byte) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	for _, ch := range f.msgChans {
		select {
		case ch <- msg:
		default:
			logger.Warn("slow client, message dropped")
		}
	}
}

func (f *messageForwarder) ForwardMessageFrom(msgCh <-chan []byte) {
	for msg := range msgCh {
		f.SendMessage(msg)
	}
}
