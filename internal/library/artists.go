package library

import (
	"maps"
	"slices"

	"github.com/desertthunder/crate/internal/models"
)

// ArtistIndex maps each involved artist to the albums they appear on.
//
// Per album it keeps the number of tracks crediting the artist, so an album disappears
// from an artist exactly when its last such track is removed, and an artist disappears
// with their last album.
type ArtistIndex struct {
	artists cowMap[string, map[string]int]
}

func NewArtistIndex() *ArtistIndex {
	return &ArtistIndex{artists: newCowMap[string, map[string]int]()}
}

// OnTracksAdded registers every involved artist of each track under the track's album.
func (x *ArtistIndex) OnTracksAdded(tracks []models.Track) {
	x.apply(tracks, 1)
}

// OnTracksRemoved releases the artist/album pairs held by tracks.
// Tracks that were never added are ignored.
func (x *ArtistIndex) OnTracksRemoved(tracks []models.Track) {
	x.apply(tracks, -1)
}

func (x *ArtistIndex) apply(tracks []models.Track, delta int) {
	if len(tracks) == 0 {
		return
	}
	touched := make(map[string]map[string]int)
	for _, t := range tracks {
		album := t.AlbumName()
		for _, artist := range t.InvolvedArtists() {
			albums, ok := touched[artist]
			if !ok {
				// Inner maps may be shared with a published view; mutate a copy.
				albums = maps.Clone(x.artists.read()[artist])
				if albums == nil {
					albums = make(map[string]int)
				}
				touched[artist] = albums
			}
			if delta < 0 {
				if _, known := albums[album]; !known {
					continue
				}
			}
			albums[album] += delta
			if albums[album] <= 0 {
				delete(albums, album)
			}
		}
	}

	m := x.artists.write()
	for artist, albums := range touched {
		if len(albums) == 0 {
			delete(m, artist)
			continue
		}
		m[artist] = albums
	}
}

// Clear drops every artist.
func (x *ArtistIndex) Clear() { x.artists.reset() }

// Len returns the number of artists.
func (x *ArtistIndex) Len() int { return len(x.artists.read()) }

// AlbumsOf returns the sorted album names of artist.
func (x *ArtistIndex) AlbumsOf(artist string) []string {
	return ArtistView{artists: x.artists.read()}.AlbumsOf(artist)
}

// Contains reports whether the artist is credited on any track.
func (x *ArtistIndex) Contains(artist string) bool {
	_, ok := x.artists.read()[artist]
	return ok
}

// Snapshot returns a read-only view in O(1).
func (x *ArtistIndex) Snapshot() ArtistView {
	return ArtistView{artists: x.artists.share()}
}

// ArtistView is an immutable point-in-time view of an [ArtistIndex].
type ArtistView struct {
	artists map[string]map[string]int
}

func (v ArtistView) Contains(artist string) bool {
	_, ok := v.artists[artist]
	return ok
}

func (v ArtistView) Len() int { return len(v.artists) }

// Artists returns every artist name in ascending order.
func (v ArtistView) Artists() []string {
	return slices.Sorted(maps.Keys(v.artists))
}

// AlbumsOf returns the sorted album names of artist, or nil when unknown.
func (v ArtistView) AlbumsOf(artist string) []string {
	albums, ok := v.artists[artist]
	if !ok {
		return nil
	}
	return slices.Sorted(maps.Keys(albums))
}

// AlbumCount returns how many albums the artist appears on.
func (v ArtistView) AlbumCount(artist string) int { return len(v.artists[artist]) }
