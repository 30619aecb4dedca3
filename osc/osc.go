// Package osc sends chatbox text and avatar parameters to VRChat over its
// OSC input port.
package osc

import (
	"strings"

	"github.com/cdfmlr/ellipsis"
	goosc "github.com/hypebeast/go-osc/osc"

	"github.com/Artbyo3/vtauder/chatbox"
	"github.com/Artbyo3/vtauder/model"
)

const (
	DefaultHost = "127.0.0.1"
	DefaultPort = 9000

	chatboxInputAddr  = "/chatbox/input"
	chatboxTypingAddr = "/chatbox/typing"
	musicInfoAddr     = "/avatar/parameters/MusicInfo"

	// VRChat string parameters are shorter than the chatbox.
	musicInfoMaxLen = 64
)

// Chatbox talks to one VRChat instance. It implements chatbox.Sender.
type Chatbox struct {
	client *goosc.Client
}

// NewChatbox builds a sender for the VRChat OSC port at host:port.
func NewChatbox(host string, port int) *Chatbox {
	if host == "" {
		host = DefaultHost
	}
	if port == 0 {
		port = DefaultPort
	}
	return &Chatbox{client: goosc.NewClient(host, port)}
}

// Send puts text on the chatbox. The second argument tells VRChat to show
// it immediately instead of opening the in-game keyboard.
func (c *Chatbox) Send(text string) error {
	msg := goosc.NewMessage(chatboxInputAddr)
	msg.Append(text)
	msg.Append(true)
	return classify(c.client.Send(msg))
}

// SetTyping toggles the chatbox typing indicator.
func (c *Chatbox) SetTyping(on bool) error {
	msg := goosc.NewMessage(chatboxTypingAddr)
	msg.Append(on)
	return classify(c.client.Send(msg))
}

// SendMusicInfo pushes the track onto the avatar's MusicInfo string
// parameter, truncated to the parameter limit.
func (c *Chatbox) SendMusicInfo(track model.Track) error {
	msg := goosc.NewMessage(musicInfoAddr)
	msg.Append(ellipsis.Ending(track.String(), musicInfoMaxLen))
	return classify(c.client.Send(msg))
}

// classify maps transport errors into the queue's vocabulary: a spam
// rejection becomes a RateLimitedError so the queue backs off instead of
// dropping and retrying blind.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if strings.Contains(strings.ToLower(err.Error()), "spam") {
		return &chatbox.RateLimitedError{Diagnostic: err.Error()}
	}
	return err
}
