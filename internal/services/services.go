// package services defines the collaborators of the library coordinator
//
// Store, Playback, Presenter, TagReader
package services

import (
	"context"

	"github.com/desertthunder/crate/internal/models"
)

// Store persists and restores the whole library.
type Store interface {
	// Load returns the last saved snapshot. An empty store returns an empty snapshot, not an error.
	Load(ctx context.Context) (*models.LibrarySnapshot, error)

	// Save replaces the stored library with snapshot.
	Save(ctx context.Context, snapshot *models.LibrarySnapshot) error
}

// Playback is the player collaborator. Implementations must be safe for concurrent use.
type Playback interface {
	// EvictIdentifiers drops the given tracks from the queue and history,
	// stopping the current track if it is among them.
	EvictIdentifiers(ids []models.TrackID)

	// CurrentTrack returns the track being played, if any.
	CurrentTrack() (models.Track, bool)

	// PlayRandom replaces the queue with tracks and starts the first one.
	PlayRandom(tracks []models.Track)
}

// Presenter receives coordinator notifications. Methods are always called on the foreground context.
type Presenter interface {
	// OnArtistTracksReady delivers an artist's albums. selected is the current track when it belongs to the artist.
	OnArtistTracksReady(artist string, albums models.ArtistAlbums, selected *models.Track)

	// OnDeletionComplete reports how many tracks a deletion removed.
	OnDeletionComplete(count int)

	// OnLibraryCleared reports that every index was emptied.
	OnLibraryCleared()

	// OnImportComplete reports how many tracks an import added.
	OnImportComplete(count int)
}

// TagReader reads track metadata from an audio file.
type TagReader interface {
	ReadTrack(path string) (models.Track, error)
}

// Presenters fans notifications out to several presenters in order.
type Presenters []Presenter

func (ps Presenters) OnArtistTracksReady(artist string, albums models.ArtistAlbums, selected *models.Track) {
	for _, p := range ps {
		p.OnArtistTracksReady(artist, albums, selected)
	}
}

func (ps Presenters) OnDeletionComplete(count int) {
	for _, p := range ps {
		p.OnDeletionComplete(count)
	}
}

func (ps Presenters) OnLibraryCleared() {
	for _, p := range ps {
		p.OnLibraryCleared()
	}
}

func (ps Presenters) OnImportComplete(count int) {
	for _, p := range ps {
		p.OnImportComplete(count)
	}
}
