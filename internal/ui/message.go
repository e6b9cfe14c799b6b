package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/crate/internal/models"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgArtistsLoaded MsgKind = iota
	MsgArtistReady
	MsgDeletionComplete
	MsgLibraryCleared
	MsgImportComplete
	MsgStatus
)

// Kind reports which message this is
func (m Msg) Kind() MsgKind { return m.kind }

type artistSummary struct {
	name   string
	albums int
}

type artistReady struct {
	artist   string
	albums   models.ArtistAlbums
	selected *models.Track
}

// artistsLoadedMsg is the constructor for [MsgArtistsLoaded]
func artistsLoadedMsg(artists []artistSummary) Msg {
	return Msg{kind: MsgArtistsLoaded, data: artists}
}

// artistReadyMsg is the constructor for [MsgArtistReady]
func artistReadyMsg(artist string, albums models.ArtistAlbums, selected *models.Track) Msg {
	return Msg{kind: MsgArtistReady, data: artistReady{artist: artist, albums: albums, selected: selected}}
}

// deletionCompleteMsg is the constructor for [MsgDeletionComplete]
func deletionCompleteMsg(count int) Msg {
	return Msg{kind: MsgDeletionComplete, data: count}
}

// libraryClearedMsg is the constructor for [MsgLibraryCleared]
func libraryClearedMsg() Msg {
	return Msg{kind: MsgLibraryCleared}
}

// importCompleteMsg is the constructor for [MsgImportComplete]
func importCompleteMsg(count int) Msg {
	return Msg{kind: MsgImportComplete, data: count}
}

// statusMsg is the constructor for [MsgStatus]; a non-nil err is shown as an error line
func statusMsg(text string, err error) Msg {
	return Msg{kind: MsgStatus, data: status{text: text, err: err}}
}

type status struct {
	text string
	err  error
}
