package nowplaying

import "sync"

// Window is one enumerated desktop window, as reported by the platform
// bridge.
type Window struct {
	ProcessName string `json:"process_name"`
	Title       string `json:"title"`
}

// A Source yields the window the user selected, re-resolved against the
// latest enumeration. The poller reads it every cycle.
type Source interface {
	CurrentSelection() (Window, bool)
}

// SnapshotSource keeps the most recent window snapshot pushed in by the
// bridge, plus the user's selection. Selection is by process name, not
// window handle: the title is re-resolved on every read so the poller
// sees title changes without reselecting.
type SnapshotSource struct {
	mu       sync.RWMutex
	windows  []Window
	selected string
}

func NewSnapshotSource() *SnapshotSource {
	return &SnapshotSource{}
}

// SetWindows replaces the snapshot with a fresh enumeration.
func (s *SnapshotSource) SetWindows(ws []Window) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.windows = append(s.windows[:0:0], ws...)
}

// Windows returns a copy of the current snapshot.
func (s *SnapshotSource) Windows() []Window {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Window(nil), s.windows...)
}

// Select marks the window owned by processName as the one to watch.
func (s *SnapshotSource) Select(processName string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = processName
}

// Selected returns the selected process name, empty when none.
func (s *SnapshotSource) Selected() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selected
}

// CurrentSelection resolves the selection against the latest snapshot.
// ok=false when nothing is selected or the process has no titled window
// anymore.
func (s *SnapshotSource) CurrentSelection() (Window, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.selected == "" {
		return Window{}, false
	}
	for _, w := range s.windows {
		if w.ProcessName == s.selected && w.Title != "" {
			return w, true
		}
	}
	return Window{}, false
}
