package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"

	"github.com/desertthunder/crate/internal/models"
	"github.com/desertthunder/crate/internal/shared"
)

var (
	_ list.Item = artistItem{}
	_ list.Item = trackItem{}
)

// artistItem wraps an artist name to implement [list.Item].
type artistItem struct {
	artist artistSummary
}

func (i artistItem) FilterValue() string { return i.artist.name }
func (i artistItem) Title() string       { return i.artist.name }
func (i artistItem) Description() string {
	if i.artist.albums == 1 {
		return "1 album"
	}
	return fmt.Sprintf("%d albums", i.artist.albums)
}

// trackItem wraps a [models.AlbumEntry] to implement [list.Item].
type trackItem struct {
	album   string
	entry   models.AlbumEntry
	playing bool
}

func (i trackItem) FilterValue() string { return i.entry.Track.Title }
func (i trackItem) Title() string {
	if i.playing {
		return "▶ " + i.entry.Track.Title
	}
	return i.entry.Track.Title
}

func (i trackItem) Description() string {
	album := i.album
	if album == "" {
		album = "(no album)"
	}
	return fmt.Sprintf("%s • %s • %s", album, i.entry.Track.Artist, shared.FormatDuration(i.entry.Track.Duration))
}

func artistItems(artists []artistSummary) []list.Item {
	items := make([]list.Item, len(artists))
	for i, a := range artists {
		items[i] = artistItem{artist: a}
	}
	return items
}

// trackItems flattens albums in name order, marking the selected track
func trackItems(albums models.ArtistAlbums, selected *models.Track) []list.Item {
	var items []list.Item
	for _, album := range albums.Albums() {
		for _, e := range albums[album] {
			playing := selected != nil && selected.ID == e.ID
			items = append(items, trackItem{album: album, entry: e, playing: playing})
		}
	}
	return items
}
