package models

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Repository defines the interface for data access operations over a keyed model type.
// Implementations handle database interactions for specific model types.
type Repository[K comparable, T any] interface {
	Create(model T) error // Create inserts a new model into the database
	Get(id K) (T, error)  // Get retrieves a model by its ID
	Update(model T) error // Update modifies an existing model in the database
	Delete(id K) error    // Delete removes a model from the database by its ID
	List() ([]T, error)   // List retrieves all models
}

// TrackID identifies a track for the lifetime of the library. Zero is never assigned.
type TrackID int64

func (id TrackID) String() string { return strconv.FormatInt(int64(id), 10) }

// ParseTrackID parses a decimal track identifier.
func ParseTrackID(s string) (TrackID, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid track id %q", s)
	}
	return TrackID(n), nil
}

// Track is the canonical record of an audio file in the library.
type Track struct {
	ID           TrackID       `json:"id"`
	Title        string        `json:"title"`
	Artist       string        `json:"artist"`
	AlbumArtist  string        `json:"album_artist,omitempty"`
	Album        string        `json:"album"`
	Genre        string        `json:"genre,omitempty"`
	Label        string        `json:"label,omitempty"`
	Comments     string        `json:"comments,omitempty"`
	Year         int           `json:"year,omitempty"`
	TrackNumber  int           `json:"track_number,omitempty"`
	DiscNumber   int           `json:"disc_number,omitempty"`
	BPM          int           `json:"bpm,omitempty"`
	BitRate      int           `json:"bit_rate,omitempty"`
	Duration     time.Duration `json:"duration"`
	Path         string        `json:"path"`
	PlayCount    int           `json:"play_count,omitempty"`
	Compilation  bool          `json:"compilation,omitempty"`
	DateAdded    time.Time     `json:"date_added"`
	DateModified time.Time     `json:"date_modified"`
}

// InvolvedArtists returns the distinct, non-blank artist names the track is listed under:
// its artist followed by its album artist.
func (t Track) InvolvedArtists() []string {
	var names []string
	for _, name := range []string{t.Artist, t.AlbumArtist} {
		name = strings.TrimSpace(name)
		if name != "" && !slices.Contains(names, name) {
			names = append(names, name)
		}
	}
	return names
}

// AlbumName returns the trimmed album name. Blank albums are a valid key.
func (t Track) AlbumName() string {
	return strings.TrimSpace(t.Album)
}

// Validate checks that the track can be stored in the library.
func (t Track) Validate() error {
	if strings.TrimSpace(t.Path) == "" && strings.TrimSpace(t.Title) == "" {
		return fmt.Errorf("track needs a path or a title")
	}
	if t.TrackNumber < 0 || t.DiscNumber < 0 {
		return fmt.Errorf("track and disc numbers must not be negative")
	}
	if t.Duration < 0 {
		return fmt.Errorf("duration must not be negative")
	}
	return nil
}

// AlbumEntry pairs a track with its identifier inside an album listing.
type AlbumEntry struct {
	ID    TrackID `json:"id"`
	Track Track   `json:"track"`
}

// CompareEntries orders album entries by disc number, track number and title, then by id.
func CompareEntries(a, b AlbumEntry) int {
	if c := cmp.Compare(a.Track.DiscNumber, b.Track.DiscNumber); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Track.TrackNumber, b.Track.TrackNumber); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Track.Title, b.Track.Title); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}

// ArtistAlbums maps album names to the ordered entries of one artist.
type ArtistAlbums map[string][]AlbumEntry

// Albums returns the album names in ascending order.
func (a ArtistAlbums) Albums() []string {
	names := make([]string, 0, len(a))
	for name := range a {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// TrackIDs flattens the mapping in album order, keeping the first occurrence of each id.
func (a ArtistAlbums) TrackIDs() []TrackID {
	seen := make(map[TrackID]struct{})
	var ids []TrackID
	for _, album := range a.Albums() {
		for _, e := range a[album] {
			if _, ok := seen[e.ID]; ok {
				continue
			}
			seen[e.ID] = struct{}{}
			ids = append(ids, e.ID)
		}
	}
	return ids
}

// Len returns the number of entries across all albums.
func (a ArtistAlbums) Len() int {
	n := 0
	for _, entries := range a {
		n += len(entries)
	}
	return n
}

// Clone returns a deep copy insulated from later changes to a.
func (a ArtistAlbums) Clone() ArtistAlbums {
	out := make(ArtistAlbums, len(a))
	for name, entries := range a {
		out[name] = slices.Clone(entries)
	}
	return out
}

// Waveform holds precomputed amplitude samples for a track.
type Waveform []float32

// Playlist is a named collection of track ids. A folder holds child playlists and no tracks.
type Playlist struct {
	Name     string      `json:"name"`
	Folder   bool        `json:"folder,omitempty"`
	Tracks   []TrackID   `json:"tracks,omitempty"`
	Children []*Playlist `json:"children,omitempty"`
}

// Clone returns a deep copy of the playlist and its children.
func (p *Playlist) Clone() *Playlist {
	if p == nil {
		return nil
	}
	out := &Playlist{Name: p.Name, Folder: p.Folder, Tracks: slices.Clone(p.Tracks)}
	for _, child := range p.Children {
		out.Children = append(out.Children, child.Clone())
	}
	return out
}

// Walk calls fn for p and every descendant, depth first. Returning false stops the walk.
func (p *Playlist) Walk(fn func(*Playlist) bool) bool {
	if !fn(p) {
		return false
	}
	for _, child := range p.Children {
		if !child.Walk(fn) {
			return false
		}
	}
	return true
}

// AllTracks returns the playlist's tracks; for folders the children's tracks depth first, first occurrence kept.
func (p *Playlist) AllTracks() []TrackID {
	if !p.Folder {
		return slices.Clone(p.Tracks)
	}
	seen := make(map[TrackID]struct{})
	var ids []TrackID
	p.Walk(func(pl *Playlist) bool {
		for _, id := range pl.Tracks {
			if _, ok := seen[id]; !ok {
				seen[id] = struct{}{}
				ids = append(ids, id)
			}
		}
		return true
	})
	return ids
}

// LibrarySnapshot is the unit of exchange with the persistence collaborator.
type LibrarySnapshot struct {
	Tracks    []Track              `json:"tracks"`
	Playlists []*Playlist          `json:"playlists"`
	Waveforms map[TrackID]Waveform `json:"waveforms"`
	NextID    TrackID              `json:"next_id"`
}
