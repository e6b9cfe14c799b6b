package library

import (
	"fmt"
	"slices"
	"time"

	"github.com/desertthunder/crate/internal/models"
)

// TrackIndex owns the canonical track records, keyed by [models.TrackID].
//
// Ids are assigned monotonically and never reused, even after [TrackIndex.Clear].
// TrackIndex is not safe for concurrent mutation; the coordinator serializes writers
// and readers use [TrackIndex.Snapshot].
type TrackIndex struct {
	tracks cowMap[models.TrackID, models.Track]
	paths  map[string]models.TrackID // writer-only, never shared with views
	nextID models.TrackID
	now    func() time.Time
}

// NewTrackIndex creates an empty [TrackIndex] whose first id is 1.
func NewTrackIndex() *TrackIndex {
	return &TrackIndex{
		tracks: newCowMap[models.TrackID, models.Track](),
		paths:  make(map[string]models.TrackID),
		nextID: 1,
		now:    time.Now,
	}
}

// Add stores track under a freshly assigned id and returns that id.
// Any id already set on track is ignored.
func (x *TrackIndex) Add(track models.Track) models.TrackID {
	return x.insert(track).ID
}

// AddAll stores every track and returns the stored records with their assigned ids, in input order.
func (x *TrackIndex) AddAll(tracks []models.Track) []models.Track {
	added := make([]models.Track, 0, len(tracks))
	for _, t := range tracks {
		added = append(added, x.insert(t))
	}
	return added
}

func (x *TrackIndex) insert(track models.Track) models.Track {
	track.ID = x.nextID
	x.nextID++
	if track.DateAdded.IsZero() {
		track.DateAdded = x.now()
	}
	if track.DateModified.IsZero() {
		track.DateModified = track.DateAdded
	}
	x.tracks.write()[track.ID] = track
	if track.Path != "" {
		x.paths[track.Path] = track.ID
	}
	return track
}

// Restore replaces the contents with tracks keeping their ids.
//
// The id counter continues from the larger of nextID and the highest restored id plus one.
func (x *TrackIndex) Restore(tracks []models.Track, nextID models.TrackID) error {
	restored := make(map[models.TrackID]models.Track, len(tracks))
	paths := make(map[string]models.TrackID, len(tracks))
	maxID := models.TrackID(0)
	for _, t := range tracks {
		if t.ID <= 0 {
			return fmt.Errorf("cannot restore track %q without an id", t.Title)
		}
		if _, dup := restored[t.ID]; dup {
			return fmt.Errorf("duplicate track id %d in snapshot", t.ID)
		}
		restored[t.ID] = t
		if t.Path != "" {
			paths[t.Path] = t.ID
		}
		maxID = max(maxID, t.ID)
	}

	x.tracks = cowMap[models.TrackID, models.Track]{m: restored}
	x.paths = paths
	x.nextID = max(nextID, maxID+1, x.nextID, 1)
	return nil
}

// Remove deletes the requested ids. Ids that are absent are skipped and reported in missing;
// one missing id never prevents the removal of the others.
func (x *TrackIndex) Remove(ids []models.TrackID) (removed []models.Track, missing []models.TrackID) {
	for _, id := range ids {
		t, ok := x.tracks.read()[id]
		if !ok {
			missing = append(missing, id)
			continue
		}
		delete(x.tracks.write(), id)
		if x.paths[t.Path] == id {
			delete(x.paths, t.Path)
		}
		removed = append(removed, t)
	}
	return removed, missing
}

// Clear drops every track by replacing the backing map. The id counter keeps running.
func (x *TrackIndex) Clear() {
	x.tracks.reset()
	clear(x.paths)
}

// Get returns the track with the given id.
func (x *TrackIndex) Get(id models.TrackID) (models.Track, bool) {
	return TrackView{tracks: x.tracks.read()}.Get(id)
}

// HasPath reports whether a track with the given file path is stored.
func (x *TrackIndex) HasPath(path string) bool {
	_, ok := x.paths[path]
	return ok
}

// Len returns the number of tracks.
func (x *TrackIndex) Len() int { return len(x.tracks.read()) }

// NextID returns the id the next added track will receive.
func (x *TrackIndex) NextID() models.TrackID { return x.nextID }

// Snapshot returns a read-only view of the current contents in O(1).
func (x *TrackIndex) Snapshot() TrackView {
	return TrackView{tracks: x.tracks.share()}
}

// TrackView is an immutable point-in-time view of a [TrackIndex].
type TrackView struct {
	tracks map[models.TrackID]models.Track
}

// Get returns the track with the given id.
func (v TrackView) Get(id models.TrackID) (models.Track, bool) {
	t, ok := v.tracks[id]
	return t, ok
}

// Contains reports whether id is present.
func (v TrackView) Contains(id models.TrackID) bool {
	_, ok := v.tracks[id]
	return ok
}

// Len returns the number of tracks.
func (v TrackView) Len() int { return len(v.tracks) }

// IDs returns every id in ascending order.
func (v TrackView) IDs() []models.TrackID {
	ids := make([]models.TrackID, 0, len(v.tracks))
	for id := range v.tracks {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Tracks returns every track ordered by id.
func (v TrackView) Tracks() []models.Track {
	out := make([]models.Track, 0, len(v.tracks))
	for _, id := range v.IDs() {
		out = append(out, v.tracks[id])
	}
	return out
}

// Lookup resolves ids to tracks, skipping ids that are not present.
func (v TrackView) Lookup(ids []models.TrackID) []models.Track {
	out := make([]models.Track, 0, len(ids))
	for _, id := range ids {
		if t, ok := v.tracks[id]; ok {
			out = append(out, t)
		}
	}
	return out
}
