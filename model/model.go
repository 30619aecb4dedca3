package model

import "time"

// Message is one outbound chatbox line, after validation.
type Message struct {
	Text       string    `json:"text"`
	Category   Category  `json:"category"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}

// Category tags where a message came from. It only affects how the message
// is labeled in the history log; delivery is identical for all categories.
type Category string

const (
	CategoryManual  Category = "manual"  // typed by the user
	CategorySTT     Category = "stt"     // speech-to-text transcript
	CategoryGesture Category = "gesture" // controller gesture phrase
	CategoryMusic   Category = "music"   // animated now-playing line
	CategoryDVD     Category = "dvd"     // paused/idle animation line
	CategoryGeneral Category = "general" // anything else (banners etc.)
)

// Track is a now-playing subject parsed from a window title.
type Track struct {
	Title  string `json:"title"`
	Artist string `json:"artist"`
}

// String renders "Title - Artist", or just the title when the artist is
// unknown.
func (t Track) String() string {
	if t.Artist == "" {
		return t.Title
	}
	return t.Title + " - " + t.Artist
}
