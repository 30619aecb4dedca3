package main

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/exp/slog"
	"golang.org/x/net/websocket"

	"github.com/Artbyo3/vtauder/chatbox"
	"github.com/Artbyo3/vtauder/model"
	"github.com/Artbyo3/vtauder/nowplaying"
	"github.com/Artbyo3/vtauder/pkg/wsforwarder"
)

// controlServer is the local HTTP API: manual chat input, window
// selection, status and the message log. It is the UI's backend; any
// HTTP client works.
type controlServer struct {
	queue    *chatbox.Queue
	history  *chatbox.History
	source   *nowplaying.SnapshotSource
	poller   *nowplaying.Poller
	combiner *sttCombiner
	stamp    func(string) string

	nowPlayingEnabled bool
}

// Run serves the API on addr. Blocks.
func (s *controlServer) Run(addr string) error {
	// no request logger
	r := gin.New()
	r.Use(gin.Recovery())

	r.POST("/chat", s.postChat)
	r.GET("/status", s.getStatus)
	r.GET("/log", s.getLog)
	r.GET("/log/live", s.getLogLive())
	r.GET("/windows", s.getWindows)
	r.POST("/windows", s.postWindows)
	r.POST("/windows/select", s.postWindowsSelect)
	r.POST("/stt/clear", s.postSttClear)

	slog.Info("[http] control server listening", "addr", addr)
	return r.Run(addr)
}

// POST /chat {"text": "..."}
func (s *controlServer) postChat(c *gin.Context) {
	var req struct {
		Text string `json:"text"`
	}
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !s.queue.Enqueue(s.stamp(req.Text), model.CategoryManual) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "empty message"})
		return
	}
	slog.Info("[http] recv chat input", "text", req.Text)
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// GET /status
func (s *controlServer) getStatus(c *gin.Context) {
	st := s.queue.Status()
	c.JSON(http.StatusOK, gin.H{
		"queue":      st,
		"polling":    s.poller.Polling(),
		"selected":   s.source.Selected(),
		"stt_buffer": s.combiner.Text(),
	})
}

// GET /log
func (s *controlServer) getLog(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"entries": s.history.Entries()})
}

// GET /log/live upgrades to WebSocket and streams new log entries as
// JSON, one message per entry.
func (s *controlServer) getLogLive() gin.HandlerFunc {
	fwd := wsforwarder.NewMessageForwarder()
	go func() {
		for res := range s.history.Subscribe() {
			if res.Err != nil {
				slog.Warn("[http] log subscription error", "err", res.Err)
				continue
			}
			j, err := json.Marshal(res.Ok)
			if err != nil {
				continue
			}
			fwd.SendMessage(j)
		}
	}()

	h := websocket.Handler(func(ws *websocket.Conn) {
		fwd.ForwardMessageTo(ws)
	})
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}

// GET /windows
func (s *controlServer) getWindows(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"windows":  s.source.Windows(),
		"selected": s.source.Selected(),
	})
}

// POST /windows [{"process_name": "...", "title": "..."}, ...]
//
// The platform bridge pushes fresh window enumerations here.
func (s *controlServer) postWindows(c *gin.Context) {
	var windows []nowplaying.Window
	if err := c.BindJSON(&windows); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.source.SetWindows(windows)
	c.JSON(http.StatusOK, gin.H{"status": "ok", "count": len(windows)})
}

// POST /windows/select {"process_name": "..."}
//
// Selecting a window starts the now-playing poller; an empty selection
// stops it.
func (s *controlServer) postWindowsSelect(c *gin.Context) {
	var req struct {
		ProcessName string `json:"process_name"`
	}
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.source.Select(req.ProcessName)
	slog.Info("[http] window selected", "process", req.ProcessName)

	if s.nowPlayingEnabled {
		if req.ProcessName == "" {
			s.poller.Stop()
		} else {
			s.poller.Start()
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// POST /stt/clear
func (s *controlServer) postSttClear(c *gin.Context) {
	s.combiner.Reset()
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func init() {
	gin.SetMode(gin.ReleaseMode)
}
