package library

import (
	"slices"

	"github.com/desertthunder/crate/internal/models"
)

// AlbumKey identifies one artist's album. The same album name under two artists is two keys.
type AlbumKey struct {
	Artist string
	Album  string
}

// AlbumIndex keeps the ordered entries of each (artist, album) pair.
//
// Entry slices are replaced on every change and never written in place, so a slice
// obtained from a view stays valid forever.
type AlbumIndex struct {
	albums cowMap[AlbumKey, []models.AlbumEntry]
}

func NewAlbumIndex() *AlbumIndex {
	return &AlbumIndex{albums: newCowMap[AlbumKey, []models.AlbumEntry]()}
}

func groupByAlbum(tracks []models.Track) map[AlbumKey][]models.Track {
	groups := make(map[AlbumKey][]models.Track)
	for _, t := range tracks {
		for _, artist := range t.InvolvedArtists() {
			k := AlbumKey{Artist: artist, Album: t.AlbumName()}
			groups[k] = append(groups[k], t)
		}
	}
	return groups
}

// OnTracksAdded inserts an entry for each track under every involved artist.
func (x *AlbumIndex) OnTracksAdded(tracks []models.Track) {
	if len(tracks) == 0 {
		return
	}
	groups := groupByAlbum(tracks)
	m := x.albums.write()
	for k, group := range groups {
		old := m[k]
		entries := make([]models.AlbumEntry, 0, len(old)+len(group))
		entries = append(entries, old...)
		for _, t := range group {
			entries = append(entries, models.AlbumEntry{ID: t.ID, Track: t})
		}
		slices.SortFunc(entries, models.CompareEntries)
		m[k] = entries
	}
}

// OnTracksRemoved removes the entries of tracks, dropping keys that become empty.
func (x *AlbumIndex) OnTracksRemoved(tracks []models.Track) {
	if len(tracks) == 0 {
		return
	}
	groups := groupByAlbum(tracks)
	m := x.albums.write()
	for k, group := range groups {
		old, ok := m[k]
		if !ok {
			continue
		}
		gone := make(map[models.TrackID]struct{}, len(group))
		for _, t := range group {
			gone[t.ID] = struct{}{}
		}
		kept := make([]models.AlbumEntry, 0, len(old))
		for _, e := range old {
			if _, drop := gone[e.ID]; !drop {
				kept = append(kept, e)
			}
		}
		if len(kept) == 0 {
			delete(m, k)
			continue
		}
		m[k] = kept
	}
}

// Clear drops every album.
func (x *AlbumIndex) Clear() { x.albums.reset() }

// Len returns the number of (artist, album) keys.
func (x *AlbumIndex) Len() int { return len(x.albums.read()) }

// TracksByAlbum returns the entries of the named albums of artist. Albums without entries are omitted.
func (x *AlbumIndex) TracksByAlbum(artist string, albums []string) models.ArtistAlbums {
	return AlbumView{albums: x.albums.read()}.TracksByAlbum(artist, albums)
}

// Snapshot returns a read-only view in O(1).
func (x *AlbumIndex) Snapshot() AlbumView {
	return AlbumView{albums: x.albums.share()}
}

// AlbumView is an immutable point-in-time view of an [AlbumIndex].
type AlbumView struct {
	albums map[AlbumKey][]models.AlbumEntry
}

// Entries returns the ordered entries of one album. The slice must not be modified.
func (v AlbumView) Entries(artist, album string) []models.AlbumEntry {
	return v.albums[AlbumKey{Artist: artist, Album: album}]
}

// TracksByAlbum returns a deep copy of the entries of the named albums.
func (v AlbumView) TracksByAlbum(artist string, albums []string) models.ArtistAlbums {
	out := make(models.ArtistAlbums, len(albums))
	for _, album := range albums {
		if entries, ok := v.albums[AlbumKey{Artist: artist, Album: album}]; ok {
			out[album] = slices.Clone(entries)
		}
	}
	return out
}

func (v AlbumView) Len() int { return len(v.albums) }
