// Package nowplaying turns desktop window titles into track metadata and
// drives the now-playing animation from a polling loop.
//
// Window enumeration itself happens outside this process: a platform
// bridge pushes snapshots in over HTTP, and a SnapshotSource remembers
// which window the user picked.
package nowplaying

import (
	"strings"

	"github.com/Artbyo3/vtauder/model"
)

// DefaultPausedTitles are the window titles Spotify shows when nothing is
// playing. A title matching one of these means "paused", not a track.
var DefaultPausedTitles = []string{
	"Spotify",
	"Spotify Free",
	"Spotify Premium",
	"Spotify - Web Player",
}

// ParseTitle extracts track metadata from a player window title.
//
// Spotify windows titled "Artist - Title" split on the first " - ";
// a title from pausedTitles reports paused=true instead. Other players
// get the same split heuristic, falling back to the bare title as the
// track name. ok=false means the title carries no usable information.
func ParseTitle(processName, title string, pausedTitles []string) (track model.Track, paused bool, ok bool) {
	title = strings.TrimSpace(title)
	if title == "" {
		return model.Track{}, false, false
	}

	spotify := strings.Contains(strings.ToLower(processName), "spotify")

	if spotify {
		for _, pt := range pausedTitles {
			if title == pt {
				return model.Track{}, true, true
			}
		}
	}

	if artist, name, found := strings.Cut(title, " - "); found {
		artist, name = strings.TrimSpace(artist), strings.TrimSpace(name)
		if artist != "" && name != "" {
			return model.Track{Title: name, Artist: artist}, false, true
		}
	}

	if spotify {
		// A Spotify title without the separator is some other surface
		// (ads, login), not a track.
		return model.Track{}, false, false
	}
	return model.Track{Title: title}, false, true
}
