// Package config reads the yaml config file. Only yaml: anything heavier
// is overkill for a desktop companion.
package config

import (
	"errors"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Chatbox    ChatboxConfig    // outbound message queue
	Osc        OscConfig        // VRChat OSC endpoint
	Stt        SttConfig        // speech-to-text bridge
	Gesture    GestureConfig    // VR gesture bridge
	NowPlaying NowPlayingConfig // player window polling
	Listen     ListenConfig     // addresses this program listens on
	ChatLog    ChatLogConfig    // sent-message history

	SendTime bool // prefix messages with [HH:MM:SS]
}

// ChatboxConfig is the outbound queue tuning. Zero values fall back to
// the built-in defaults.
type ChatboxConfig struct {
	MinIntervalMs    int // spacing between sends (milliseconds)
	PenaltySeconds   int // pause after a spam rejection (seconds)
	MaxQueueSize     int
	MaxMessageLength int
}

func (c *ChatboxConfig) GetMinInterval() time.Duration {
	return time.Duration(c.MinIntervalMs) * time.Millisecond
}

func (c *ChatboxConfig) GetPenaltyWindow() time.Duration {
	return time.Duration(c.PenaltySeconds) * time.Second
}

// OscConfig is the VRChat OSC endpoint.
type OscConfig struct {
	Host string
	Port int
}

// SttConfig is the speech-to-text bridge connection.
type SttConfig struct {
	Server         string // stt bridge websocket address
	SuspendSeconds int    // how long a transcript holds off the animation
	Disabled       bool
}

func (c *SttConfig) IsEnabledAndValid() (enabled bool, err error) {
	if c.Disabled {
		return false, nil
	}
	enabled = true
	if c.Server == "" {
		err = errors.New("stt server address is empty")
	}
	return enabled, err
}

func (c *SttConfig) GetSuspend() time.Duration {
	return time.Duration(c.SuspendSeconds) * time.Second
}

// GestureConfig is the VR gesture bridge connection.
type GestureConfig struct {
	Server   string            // gesture bridge websocket address
	Phrases  map[string]string // gesture name -> phrase, overrides defaults
	Disabled bool
}

func (c *GestureConfig) IsEnabledAndValid() (enabled bool, err error) {
	if c.Disabled {
		return false, nil
	}
	enabled = true
	if c.Server == "" {
		err = errors.New("gesture server address is empty")
	}
	return enabled, err
}

// NowPlayingConfig is the player window polling.
type NowPlayingConfig struct {
	PollSeconds    int      // polling cycle (seconds)
	PausedTitles   []string // titles meaning "paused", overrides defaults
	SendWindowInfo bool     // append the watched window title under frames
	Disabled       bool
}

func (c *NowPlayingConfig) GetPollInterval() time.Duration {
	return time.Duration(c.PollSeconds) * time.Second
}

// ListenConfig is the addresses this program listens on.
type ListenConfig struct {
	Http string // control API (chat input, window selection, status)
}

// ChatLogConfig is the sent-message history.
type ChatLogConfig struct {
	MaxEntries int
	Redis      RedisConfig
}

// RedisConfig mirrors history entries onto a redis channel for external
// overlays. Empty Addr disables it.
type RedisConfig struct {
	Addr    string
	Channel string
}

func (c *Config) Read(src io.Reader) error {
	return yaml.NewDecoder(src).Decode(&c)
}

func (c *Config) Write(dst io.Writer) error {
	return yaml.NewEncoder(dst).Encode(&c)
}

func (c *Config) ReadFromYaml(file string) error {
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()

	return c.Read(f)
}

func (c *Config) WriteToYaml(file string) error {
	f, err := os.Create(file)
	if err != nil {
		return err
	}
	defer f.Close()

	return c.Write(f)
}

// Check validates what must not be empty. Most fields have working
// defaults and stay unchecked.
func (c *Config) Check() error {
	if c.Listen.Http == "" {
		return errors.New("listen.http is empty")
	}
	return nil
}

// Load reads and checks the config file.
func Load(file string) (*Config, error) {
	var c Config
	if err := c.ReadFromYaml(file); err != nil {
		return nil, err
	}
	if err := c.Check(); err != nil {
		return nil, err
	}
	return &c, nil
}

// ExampleConfig generates a filled-in sample config.
func ExampleConfig() Config {
	return Config{
		Chatbox: ChatboxConfig{
			MinIntervalMs:    1500,
			PenaltySeconds:   30,
			MaxQueueSize:     10,
			MaxMessageLength: 144,
		},
		Osc: OscConfig{
			Host: "127.0.0.1",
			Port: 9000,
		},
		Stt: SttConfig{
			Server:         "ws://localhost:8765/transcripts",
			SuspendSeconds: 10,
		},
		Gesture: GestureConfig{
			Server: "ws://localhost:8766/gestures",
			Phrases: map[string]string{
				"swipe_up":    "Hello!",
				"swipe_down":  "Thank you!",
				"swipe_left":  "Need help!",
				"swipe_right": "Goodbye!",
			},
		},
		NowPlaying: NowPlayingConfig{
			PollSeconds: 5,
			PausedTitles: []string{
				"Spotify",
				"Spotify Free",
				"Spotify Premium",
				"Spotify - Web Player",
			},
			SendWindowInfo: false,
		},
		Listen: ListenConfig{
			Http: "127.0.0.1:51080",
		},
		ChatLog: ChatLogConfig{
			MaxEntries: 100,
			Redis: RedisConfig{
				Addr:    "",
				Channel: "vtauder:chatlog",
			},
		},
		SendTime: false,
	}
}
