package library

import (
	"fmt"
	"slices"
	"strings"

	"github.com/desertthunder/crate/internal/models"
	"github.com/desertthunder/crate/internal/shared"
)

// PlaylistIndex holds the playlist tree. Names are unique across the whole tree.
//
// A view shares the tree; the first mutation after [PlaylistIndex.Snapshot] works on a deep copy.
type PlaylistIndex struct {
	roots  []*models.Playlist
	byName map[string]*models.Playlist
	shared bool
}

func NewPlaylistIndex() *PlaylistIndex {
	return &PlaylistIndex{byName: make(map[string]*models.Playlist)}
}

func indexNames(roots []*models.Playlist) map[string]*models.Playlist {
	byName := make(map[string]*models.Playlist)
	for _, root := range roots {
		root.Walk(func(p *models.Playlist) bool {
			byName[p.Name] = p
			return true
		})
	}
	return byName
}

func (x *PlaylistIndex) mutable() {
	if !x.shared {
		return
	}
	roots := make([]*models.Playlist, 0, len(x.roots))
	for _, root := range x.roots {
		roots = append(roots, root.Clone())
	}
	x.roots = roots
	x.byName = indexNames(roots)
	x.shared = false
}

// Create adds an empty playlist or folder under parent; an empty parent adds it at the root.
func (x *PlaylistIndex) Create(name string, folder bool, parent string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: playlist name is required", shared.ErrMissingArgument)
	}
	if _, exists := x.byName[name]; exists {
		return fmt.Errorf("%w: %s", shared.ErrPlaylistExists, name)
	}
	var p *models.Playlist
	if parent != "" {
		var ok bool
		if p, ok = x.byName[parent]; !ok {
			return fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, parent)
		}
		if !p.Folder {
			return fmt.Errorf("%w: %s", shared.ErrNotAFolder, parent)
		}
	}

	x.mutable()
	created := &models.Playlist{Name: name, Folder: folder}
	if parent == "" {
		x.roots = append(x.roots, created)
	} else {
		p = x.byName[parent]
		p.Children = append(p.Children, created)
	}
	x.byName[name] = created
	return nil
}

// AddTracks appends ids to a leaf playlist. Ids already in the playlist are appended again.
func (x *PlaylistIndex) AddTracks(name string, ids []models.TrackID) error {
	p, ok := x.byName[name]
	if !ok {
		return fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, name)
	}
	if p.Folder {
		return fmt.Errorf("%w: %s", shared.ErrIsAFolder, name)
	}
	if len(ids) == 0 {
		return nil
	}
	x.mutable()
	p = x.byName[name]
	p.Tracks = append(slices.Clone(p.Tracks), ids...)
	return nil
}

// RemoveTracksFromAllPlaylists strips ids from every playlist in the tree, keeping
// the order of the remaining entries. Playlists left empty are kept.
func (x *PlaylistIndex) RemoveTracksFromAllPlaylists(ids []models.TrackID) {
	if len(ids) == 0 || len(x.byName) == 0 {
		return
	}
	gone := make(map[models.TrackID]struct{}, len(ids))
	for _, id := range ids {
		gone[id] = struct{}{}
	}
	x.mutable()
	for _, root := range x.roots {
		root.Walk(func(p *models.Playlist) bool {
			p.Tracks = slices.DeleteFunc(p.Tracks, func(id models.TrackID) bool {
				_, drop := gone[id]
				return drop
			})
			return true
		})
	}
}

// Delete removes the named playlist and, for folders, everything below it.
func (x *PlaylistIndex) Delete(name string) error {
	if _, ok := x.byName[name]; !ok {
		return fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, name)
	}
	x.mutable()
	x.roots = prune(x.roots, name)
	x.byName = indexNames(x.roots)
	return nil
}

func prune(list []*models.Playlist, name string) []*models.Playlist {
	out := list[:0]
	for _, p := range list {
		if p.Name == name {
			continue
		}
		p.Children = prune(p.Children, name)
		out = append(out, p)
	}
	return out
}

// Restore replaces the tree with a deep copy of roots.
func (x *PlaylistIndex) Restore(roots []*models.Playlist) error {
	copied := make([]*models.Playlist, 0, len(roots))
	seen := make(map[string]struct{})
	for _, root := range roots {
		c := root.Clone()
		var dup string
		c.Walk(func(p *models.Playlist) bool {
			if _, ok := seen[p.Name]; ok {
				dup = p.Name
				return false
			}
			seen[p.Name] = struct{}{}
			return true
		})
		if dup != "" {
			return fmt.Errorf("%w: %s", shared.ErrPlaylistExists, dup)
		}
		copied = append(copied, c)
	}
	x.roots = copied
	x.byName = indexNames(copied)
	x.shared = false
	return nil
}

// Clear drops every playlist.
func (x *PlaylistIndex) Clear() {
	x.roots = nil
	x.byName = make(map[string]*models.Playlist)
	x.shared = false
}

// Len returns the number of playlists and folders.
func (x *PlaylistIndex) Len() int { return len(x.byName) }

func (x *PlaylistIndex) Find(name string) (*models.Playlist, bool) {
	return x.view().Find(name)
}

func (x *PlaylistIndex) TracksOf(name string) []models.TrackID {
	return x.view().TracksOf(name)
}

func (x *PlaylistIndex) view() PlaylistView {
	return PlaylistView{roots: x.roots, byName: x.byName}
}

// Snapshot returns a read-only view in O(1).
func (x *PlaylistIndex) Snapshot() PlaylistView {
	x.shared = true
	return x.view()
}

// PlaylistView is an immutable point-in-time view of a [PlaylistIndex].
type PlaylistView struct {
	roots  []*models.Playlist
	byName map[string]*models.Playlist
}

// Find returns a deep copy of the named playlist.
func (v PlaylistView) Find(name string) (*models.Playlist, bool) {
	p, ok := v.byName[name]
	if !ok {
		return nil, false
	}
	return p.Clone(), true
}

// TracksOf returns the ids of the named playlist; folders flatten their children.
// An unknown name yields nil.
func (v PlaylistView) TracksOf(name string) []models.TrackID {
	p, ok := v.byName[name]
	if !ok {
		return nil
	}
	return p.AllTracks()
}

// Roots returns a deep copy of the tree.
func (v PlaylistView) Roots() []*models.Playlist {
	out := make([]*models.Playlist, 0, len(v.roots))
	for _, root := range v.roots {
		out = append(out, root.Clone())
	}
	return out
}

// Names returns every playlist name in ascending order.
func (v PlaylistView) Names() []string {
	names := make([]string, 0, len(v.byName))
	for name := range v.byName {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Contains reports whether any playlist references id.
func (v PlaylistView) Contains(id models.TrackID) bool {
	found := false
	for _, root := range v.roots {
		root.Walk(func(p *models.Playlist) bool {
			found = slices.Contains(p.Tracks, id)
			return !found
		})
		if found {
			return true
		}
	}
	return false
}

func (v PlaylistView) Len() int { return len(v.byName) }
