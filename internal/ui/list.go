package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/songsnap/songsnap/internal/models"
)

var (
	_ list.Item = songItem{}
)

// songItem wraps [models.QueuedSong] to implement [list.Item].
type songItem struct {
	song *models.QueuedSong
}

func (i songItem) FilterValue() string { return i.song.Title + " " + i.song.Artist }
func (i songItem) Title() string       { return i.song.Title }
func (i songItem) Description() string {
	desc := i.song.Artist
	if i.song.Album != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.song.Album)
	}
	if badges := syncBadges(i.song); badges != "" {
		desc = fmt.Sprintf("%s • %s", desc, badges)
	}
	return desc
}

// syncBadges renders one badge per platform with a recorded status,
// in the canonical platform order.
func syncBadges(song *models.QueuedSong) string {
	var badges []string
	for _, platform := range models.Platforms() {
		status, ok := song.StatusFor(platform)
		if !ok {
			continue
		}
		badge := styles.err.Render("✗")
		if status.Synced {
			badge = styles.ok.Render("✓")
		}
		badges = append(badges, fmt.Sprintf("%s %s", platform.DisplayName(), badge))
	}
	return strings.Join(badges, "  ")
}
