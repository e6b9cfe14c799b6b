package tasks

import (
	"github.com/desertthunder/crate/internal/library"
	"github.com/desertthunder/crate/internal/models"
)

// View is an immutable, mutually consistent snapshot of the five indexes as of one completed mutation.
type View struct {
	Version   uint64
	NextID    models.TrackID
	Tracks    library.TrackView
	Artists   library.ArtistView
	Albums    library.AlbumView
	Waveforms library.WaveformView
	Playlists library.PlaylistView
}

// ArtistTracksByAlbum composes the artist's albums with their entries. Unknown artists yield an empty mapping.
func (v *View) ArtistTracksByAlbum(artist string) models.ArtistAlbums {
	return v.Albums.TracksByAlbum(artist, v.Artists.AlbumsOf(artist))
}

// Snapshot copies the view into a [models.LibrarySnapshot] for persistence.
func (v *View) Snapshot() *models.LibrarySnapshot {
	return &models.LibrarySnapshot{
		Tracks:    v.Tracks.Tracks(),
		Playlists: v.Playlists.Roots(),
		Waveforms: v.Waveforms.All(),
		NextID:    v.NextID,
	}
}

// Stats counts the entries of each index.
func (v *View) Stats() Stats {
	return Stats{
		Tracks:    v.Tracks.Len(),
		Artists:   v.Artists.Len(),
		Albums:    v.Albums.Len(),
		Waveforms: v.Waveforms.Len(),
		Playlists: v.Playlists.Len(),
		Version:   v.Version,
	}
}

// KnownPaths returns the set of file paths already in the library.
func (v *View) KnownPaths() map[string]struct{} {
	paths := make(map[string]struct{}, v.Tracks.Len())
	for _, t := range v.Tracks.Tracks() {
		if t.Path != "" {
			paths[t.Path] = struct{}{}
		}
	}
	return paths
}
