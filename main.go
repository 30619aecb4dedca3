package main

import (
	"flag"
	"os"
	"time"

	"github.com/cdfmlr/ellipsis"
	"github.com/redis/go-redis/v9"
	"golang.org/x/exp/slog"

	"github.com/Artbyo3/vtauder/chatbox"
	"github.com/Artbyo3/vtauder/config"
	"github.com/Artbyo3/vtauder/model"
	"github.com/Artbyo3/vtauder/nowplaying"
	"github.com/Artbyo3/vtauder/osc"
	"github.com/Artbyo3/vtauder/pkg/pubsub"
	"github.com/Artbyo3/vtauder/pkg/scheduler"
)

var (
	configFile    = flag.String("config", "config.yaml", "config file")
	exampleConfig = flag.Bool("example-config", false, "print an example config and exit")
)

const (
	defaultSttSuspend = 10 * time.Second

	// rune budget for the window-info line under animation frames
	windowInfoMaxLen = 40
)

func main() {
	flag.Parse()

	if *exampleConfig {
		c := config.ExampleConfig()
		if err := c.Write(os.Stdout); err != nil {
			slog.Error("[main] write example config failed", "err", err)
			os.Exit(1)
		}
		return
	}

	cfg, err := config.Load(*configFile)
	if err != nil {
		slog.Error("[main] load config failed", "file", *configFile, "err", err)
		os.Exit(1)
	}

	sched := scheduler.New()

	// delivered-message log, optionally mirrored to redis for overlays
	history := chatbox.NewHistory(cfg.ChatLog.MaxEntries)
	if cfg.ChatLog.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.ChatLog.Redis.Addr})
		history.AddSink(pubsub.NewPubSubRedis[chatbox.Entry](cfg.ChatLog.Redis.Channel, rdb))
		slog.Info("[main] mirroring chat log to redis",
			"addr", cfg.ChatLog.Redis.Addr, "channel", cfg.ChatLog.Redis.Channel)
	}

	sender := osc.NewChatbox(cfg.Osc.Host, cfg.Osc.Port)

	queueOpts := []chatbox.QueueOption{chatbox.WithHistory(history)}
	if d := cfg.Chatbox.GetMinInterval(); d > 0 {
		queueOpts = append(queueOpts, chatbox.WithMinInterval(d))
	}
	if d := cfg.Chatbox.GetPenaltyWindow(); d > 0 {
		queueOpts = append(queueOpts, chatbox.WithPenaltyWindow(d))
	}
	if n := cfg.Chatbox.MaxQueueSize; n > 0 {
		queueOpts = append(queueOpts, chatbox.WithMaxQueueSize(n))
	}
	if n := cfg.Chatbox.MaxMessageLength; n > 0 {
		queueOpts = append(queueOpts, chatbox.WithMaxMessageLength(n))
	}
	queue := chatbox.NewQueue(sched, sender, queueOpts...)

	source := nowplaying.NewSnapshotSource()

	// poller is assigned below; the animator only reads it after Start.
	var poller *nowplaying.Poller

	animOpts := []chatbox.AnimatorOption{
		chatbox.WithRestartPolicy(func() bool { return poller.Polling() }),
	}
	if cfg.NowPlaying.SendWindowInfo {
		animOpts = append(animOpts, chatbox.WithExtraLines(func() []string {
			w, ok := source.CurrentSelection()
			if !ok {
				return nil
			}
			return []string{ellipsis.Ending(w.Title, windowInfoMaxLen)}
		}))
	}
	anim := chatbox.NewAnimator(sched, queue, animOpts...)

	pollerOpts := []nowplaying.PollerOption{
		nowplaying.WithOnTrackChange(func(t model.Track) {
			if err := sender.SendMusicInfo(t); err != nil {
				slog.Warn("[main] send music info failed", "err", err)
			}
		}),
	}
	if d := cfg.NowPlaying.GetPollInterval(); d > 0 {
		pollerOpts = append(pollerOpts, nowplaying.WithPollInterval(d))
	}
	if len(cfg.NowPlaying.PausedTitles) > 0 {
		pollerOpts = append(pollerOpts, nowplaying.WithPausedTitles(cfg.NowPlaying.PausedTitles))
	}
	poller = nowplaying.NewPoller(sched, source, queue, anim, pollerOpts...)

	stamp := func(text string) string {
		if cfg.SendTime {
			return "[" + time.Now().Format("15:04:05") + "] " + text
		}
		return text
	}

	combiner := &sttCombiner{}

	if enabled, err := cfg.Stt.IsEnabledAndValid(); enabled {
		if err != nil {
			slog.Error("[main] bad stt config", "err", err)
			os.Exit(1)
		}
		suspend := cfg.Stt.GetSuspend()
		if suspend <= 0 {
			suspend = defaultSttSuspend
		}
		typing := func(on bool) {
			if err := sender.SetTyping(on); err != nil {
				slog.Warn("[main] set typing indicator failed", "err", err)
			}
		}
		go TextFromSTT(cfg.Stt.Server, queue, anim, combiner, suspend, stamp, typing)
	}

	if enabled, err := cfg.Gesture.IsEnabledAndValid(); enabled {
		if err != nil {
			slog.Error("[main] bad gesture config", "err", err)
			os.Exit(1)
		}
		go TextFromGestures(cfg.Gesture.Server, gesturePhrases(cfg.Gesture.Phrases), queue, stamp)
	}

	srv := &controlServer{
		queue:             queue,
		history:           history,
		source:            source,
		poller:            poller,
		combiner:          combiner,
		stamp:             stamp,
		nowPlayingEnabled: !cfg.NowPlaying.Disabled,
	}
	if err := srv.Run(cfg.Listen.Http); err != nil {
		slog.Error("[main] control server failed", "err", err)
		os.Exit(1)
	}
}
