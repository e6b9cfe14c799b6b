package tasks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/crate/internal/library"
	"github.com/desertthunder/crate/internal/models"
	"github.com/desertthunder/crate/internal/services"
	"github.com/desertthunder/crate/internal/shared"
)

// CoordinatorOpts wires the indexes and collaborators of a [Coordinator].
// Nil indexes are created empty; nil collaborators fall back to no-op or in-memory implementations.
type CoordinatorOpts struct {
	Tracks    *library.TrackIndex
	Artists   *library.ArtistIndex
	Albums    *library.AlbumIndex
	Waveforms *library.WaveformIndex
	Playlists *library.PlaylistIndex

	Playback   services.Playback
	Presenter  services.Presenter
	Foreground Foreground
	Logger     *log.Logger
	Rand       *rand.Rand // Shuffle source; defaults to the global generator
}

// Coordinator is the only writer of the library indexes.
//
// At most one mutation runs at a time. Rejecting mutations (deletes, clears, waveform and playlist edits)
// fail fast with [shared.ErrMutationInFlight]; imports and restores wait for their turn.
// After each mutation a new [View] is published; readers never block on writers.
type Coordinator struct {
	tracks    *library.TrackIndex
	artists   *library.ArtistIndex
	albums    *library.AlbumIndex
	waveforms *library.WaveformIndex
	playlists *library.PlaylistIndex

	playback   services.Playback
	presenter  services.Presenter
	foreground Foreground
	logger     *log.Logger

	slot    chan struct{}
	view    atomic.Pointer[View]
	version uint64
	workers sync.WaitGroup

	randMu sync.Mutex
	rng    *rand.Rand
}

// NewCoordinator builds a coordinator and publishes the initial view.
func NewCoordinator(opts CoordinatorOpts) *Coordinator {
	c := &Coordinator{
		tracks:     opts.Tracks,
		artists:    opts.Artists,
		albums:     opts.Albums,
		waveforms:  opts.Waveforms,
		playlists:  opts.Playlists,
		playback:   opts.Playback,
		presenter:  opts.Presenter,
		foreground: opts.Foreground,
		logger:     opts.Logger,
		rng:        opts.Rand,
		slot:       make(chan struct{}, 1),
	}
	if c.tracks == nil {
		c.tracks = library.NewTrackIndex()
	}
	if c.artists == nil {
		c.artists = library.NewArtistIndex()
	}
	if c.albums == nil {
		c.albums = library.NewAlbumIndex()
	}
	if c.waveforms == nil {
		c.waveforms = library.NewWaveformIndex(0)
	}
	if c.playlists == nil {
		c.playlists = library.NewPlaylistIndex()
	}
	if c.playback == nil {
		c.playback = services.NewQueue(nil)
	}
	if c.presenter == nil {
		c.presenter = services.Presenters{}
	}
	if c.foreground == nil {
		c.foreground = ForegroundFunc(func(fn func()) { fn() })
	}
	if c.logger == nil {
		c.logger = log.New(io.Discard)
	}
	c.publish()
	return c
}

func (c *Coordinator) tryAcquire() bool {
	select {
	case c.slot <- struct{}{}:
		return true
	default:
		return false
	}
}

func (c *Coordinator) acquire(ctx context.Context) error {
	select {
	case c.slot <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Coordinator) release() { <-c.slot }

// publish stores a fresh view. Callers hold the mutation slot, except during construction.
func (c *Coordinator) publish() {
	c.version++
	c.view.Store(&View{
		Version:   c.version,
		NextID:    c.tracks.NextID(),
		Tracks:    c.tracks.Snapshot(),
		Artists:   c.artists.Snapshot(),
		Albums:    c.albums.Snapshot(),
		Waveforms: c.waveforms.Snapshot(),
		Playlists: c.playlists.Snapshot(),
	})
}

func (c *Coordinator) post(fn func()) { c.foreground.Post(fn) }

func (c *Coordinator) goWorker(fn func()) {
	c.workers.Add(1)
	go func() {
		defer c.workers.Done()
		fn()
	}()
}

// Wait blocks until every background worker started by the coordinator has returned.
func (c *Coordinator) Wait() { c.workers.Wait() }

// View returns the state as of the last completed mutation.
func (c *Coordinator) View() *View { return c.view.Load() }

// DeleteTracks removes ids from every index and reports the outcome.
//
// Duplicate ids count once; ids that are not in the library become warnings and never block the rest.
// An empty selection succeeds with a count of zero without taking the mutation slot.
// When the valid ids cover the whole library the indexes are cleared instead of pruned.
func (c *Coordinator) DeleteTracks(ctx context.Context, ids []models.TrackID) (*DeletionResult, error) {
	ids = dedupe(ids)
	if len(ids) == 0 {
		res := &DeletionResult{}
		c.post(func() { c.presenter.OnDeletionComplete(0) })
		return res, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !c.tryAcquire() {
		return nil, shared.ErrMutationInFlight
	}
	return c.runDelete(ids), nil
}

// SubmitDelete takes the mutation slot and runs the deletion on a background worker.
// Rejection is reported synchronously; completion arrives through the presenter.
func (c *Coordinator) SubmitDelete(ids []models.TrackID) error {
	ids = dedupe(ids)
	if len(ids) == 0 {
		c.post(func() { c.presenter.OnDeletionComplete(0) })
		return nil
	}
	if !c.tryAcquire() {
		return shared.ErrMutationInFlight
	}
	c.goWorker(func() { c.runDelete(ids) })
	return nil
}

// runDelete runs with the slot held and releases it before notifying.
func (c *Coordinator) runDelete(ids []models.TrackID) *DeletionResult {
	res := &DeletionResult{OperationID: shared.GenerateID(), Requested: len(ids)}
	logger := shared.WithLogger(c.logger, "op", res.OperationID)

	valid := make([]models.TrackID, 0, len(ids))
	for _, id := range ids {
		if _, ok := c.tracks.Get(id); ok {
			valid = append(valid, id)
			continue
		}
		res.Warnings = append(res.Warnings, RemovalWarning{ID: id, Reason: shared.ErrTrackNotFound.Error()})
	}
	for _, w := range res.Warnings {
		logger.Warn("skipping track", "id", w.ID, "reason", w.Reason)
	}

	switch {
	case len(valid) == 0:
		c.release()
	case len(valid) == c.tracks.Len():
		res.Removed = c.tracks.Snapshot().IDs()
		res.Cleared = true
		c.clearIndexes()
		c.playback.EvictIdentifiers(res.Removed)
		c.publish()
		c.release()
		logger.Info("library cleared by deletion", "tracks", len(res.Removed))
		c.post(c.presenter.OnLibraryCleared)
	default:
		removed, _ := c.tracks.Remove(valid)
		c.artists.OnTracksRemoved(removed)
		c.albums.OnTracksRemoved(removed)
		for _, t := range removed {
			res.Removed = append(res.Removed, t.ID)
		}
		c.waveforms.RemoveAll(res.Removed)
		c.playlists.RemoveTracksFromAllPlaylists(res.Removed)
		c.playback.EvictIdentifiers(res.Removed)
		c.publish()
		c.release()
		logger.Info("tracks deleted", "tracks", len(res.Removed), "warnings", len(res.Warnings))
	}

	count := res.Count()
	c.post(func() { c.presenter.OnDeletionComplete(count) })
	return res
}

// clearIndexes empties every index in dependency order.
func (c *Coordinator) clearIndexes() {
	c.tracks.Clear()
	c.artists.Clear()
	c.albums.Clear()
	c.waveforms.Clear()
	c.playlists.Clear()
}

// ClearLibrary empties every index and returns how many tracks were dropped.
func (c *Coordinator) ClearLibrary(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if !c.tryAcquire() {
		return 0, shared.ErrMutationInFlight
	}
	ids := c.tracks.Snapshot().IDs()
	c.clearIndexes()
	c.playback.EvictIdentifiers(ids)
	c.publish()
	c.release()

	c.logger.Info("library cleared", "tracks", len(ids))
	c.post(c.presenter.OnLibraryCleared)
	return len(ids), nil
}

// ArtistTracksByAlbum returns a deep copy of the artist's albums and entries as of the current view.
func (c *Coordinator) ArtistTracksByAlbum(artist string) models.ArtistAlbums {
	return c.View().ArtistTracksByAlbum(artist)
}

// ShowArtist loads the artist's albums on a worker and posts them to the presenter,
// selecting the current track when it belongs to the artist.
func (c *Coordinator) ShowArtist(artist string) {
	c.goWorker(func() {
		v := c.View()
		albums := v.ArtistTracksByAlbum(artist)

		var selected *models.Track
		if cur, ok := c.playback.CurrentTrack(); ok && v.Tracks.Contains(cur.ID) && slices.Contains(cur.InvolvedArtists(), artist) {
			selected = &cur
		}
		c.post(func() { c.presenter.OnArtistTracksReady(artist, albums, selected) })
	})
}

// RandomArtistPlaylist returns the artist's track ids in shuffled order.
func (c *Coordinator) RandomArtistPlaylist(artist string) []models.TrackID {
	ids := c.ArtistTracksByAlbum(artist).TrackIDs()
	c.shuffle(ids)
	return ids
}

// RandomPlaylistOrder returns the playlist's track ids in shuffled order.
func (c *Coordinator) RandomPlaylistOrder(name string) []models.TrackID {
	ids := c.View().Playlists.TracksOf(name)
	c.shuffle(ids)
	return ids
}

// shuffle is a Fisher-Yates shuffle over ids.
func (c *Coordinator) shuffle(ids []models.TrackID) {
	c.randMu.Lock()
	defer c.randMu.Unlock()
	for i := len(ids) - 1; i > 0; i-- {
		var j int
		if c.rng != nil {
			j = c.rng.IntN(i + 1)
		} else {
			j = rand.IntN(i + 1)
		}
		ids[i], ids[j] = ids[j], ids[i]
	}
}

// PlayRandomArtist shuffles the artist's tracks on a worker and hands them to playback.
func (c *Coordinator) PlayRandomArtist(artist string) {
	c.goWorker(func() { c.playShuffled(c.RandomArtistPlaylist(artist)) })
}

// PlayRandomPlaylist shuffles the playlist's tracks on a worker and hands them to playback.
func (c *Coordinator) PlayRandomPlaylist(name string) {
	c.goWorker(func() { c.playShuffled(c.RandomPlaylistOrder(name)) })
}

// PlayOrder hands the tracks to playback in exactly the given order, resolving ids on a worker.
// Callers that already shuffled use it so the order they report is the order that plays.
func (c *Coordinator) PlayOrder(ids []models.TrackID) {
	ids = slices.Clone(ids)
	c.goWorker(func() { c.playShuffled(ids) })
}

func (c *Coordinator) playShuffled(ids []models.TrackID) {
	if len(ids) == 0 {
		return
	}
	c.playback.PlayRandom(c.View().Tracks.Lookup(ids))
}

// ImportTracks adds tracks to the library, waiting for the mutation slot.
// The batch is rejected as a whole when any track is invalid.
//
// Tracks whose path is already in the library, or repeats an earlier path in the batch,
// are dropped under the slot and left out of the returned records.
func (c *Coordinator) ImportTracks(ctx context.Context, tracks []models.Track) ([]models.Track, error) {
	var errs []error
	for i, t := range tracks {
		if err := t.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("track %d (%s): %w", i, t.Path, err))
		}
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("%w: %w", shared.ErrInvalidInput, errors.Join(errs...))
	}
	if err := c.acquire(ctx); err != nil {
		return nil, err
	}

	fresh := c.dropKnownPaths(tracks)
	if dropped := len(tracks) - len(fresh); dropped > 0 {
		c.logger.Debug("skipping tracks already in library", "tracks", dropped)
	}
	if len(fresh) == 0 {
		c.release()
		return []models.Track{}, nil
	}

	added := c.tracks.AddAll(fresh)
	c.artists.OnTracksAdded(added)
	c.albums.OnTracksAdded(added)
	c.publish()
	c.release()

	c.logger.Info("tracks imported", "tracks", len(added))
	count := len(added)
	c.post(func() { c.presenter.OnImportComplete(count) })
	return added, nil
}

// dropKnownPaths must be called while holding the mutation slot.
func (c *Coordinator) dropKnownPaths(tracks []models.Track) []models.Track {
	seen := make(map[string]struct{}, len(tracks))
	fresh := make([]models.Track, 0, len(tracks))
	for _, t := range tracks {
		if t.Path != "" {
			if _, dup := seen[t.Path]; dup || c.tracks.HasPath(t.Path) {
				continue
			}
			seen[t.Path] = struct{}{}
		}
		fresh = append(fresh, t)
	}
	return fresh
}

// StoreWaveform caches samples for a track in the library.
func (c *Coordinator) StoreWaveform(id models.TrackID, wf models.Waveform) error {
	if !c.tryAcquire() {
		return shared.ErrMutationInFlight
	}
	defer c.release()

	if _, ok := c.tracks.Get(id); !ok {
		return fmt.Errorf("%w: %d", shared.ErrTrackNotFound, id)
	}
	if evicted := c.waveforms.Put(id, wf); len(evicted) > 0 {
		c.logger.Debug("evicted waveforms", "ids", evicted)
	}
	c.publish()
	return nil
}

// CreatePlaylist adds a playlist or folder under parent ("" for the root).
func (c *Coordinator) CreatePlaylist(name string, folder bool, parent string) error {
	return c.mutatePlaylists(func() error { return c.playlists.Create(name, folder, parent) })
}

// AddToPlaylist appends tracks to a playlist. Unknown track ids reject the whole call.
func (c *Coordinator) AddToPlaylist(name string, ids []models.TrackID) error {
	return c.mutatePlaylists(func() error {
		for _, id := range ids {
			if _, ok := c.tracks.Get(id); !ok {
				return fmt.Errorf("%w: %d", shared.ErrTrackNotFound, id)
			}
		}
		return c.playlists.AddTracks(name, ids)
	})
}

// DeletePlaylist removes a playlist, or a folder and everything in it.
func (c *Coordinator) DeletePlaylist(name string) error {
	return c.mutatePlaylists(func() error { return c.playlists.Delete(name) })
}

func (c *Coordinator) mutatePlaylists(fn func() error) error {
	if !c.tryAcquire() {
		return shared.ErrMutationInFlight
	}
	defer c.release()
	if err := fn(); err != nil {
		return err
	}
	c.publish()
	return nil
}

// Restore replaces the library with snapshot, waiting for the mutation slot.
//
// Waveforms and playlist entries that reference tracks missing from the snapshot are dropped.
func (c *Coordinator) Restore(ctx context.Context, snapshot *models.LibrarySnapshot) error {
	if snapshot == nil {
		snapshot = &models.LibrarySnapshot{}
	}
	if err := library.NewPlaylistIndex().Restore(snapshot.Playlists); err != nil {
		return fmt.Errorf("invalid playlists in snapshot: %w", err)
	}
	if err := c.acquire(ctx); err != nil {
		return err
	}
	defer c.release()

	if err := c.tracks.Restore(snapshot.Tracks, snapshot.NextID); err != nil {
		return fmt.Errorf("invalid tracks in snapshot: %w", err)
	}
	view := c.tracks.Snapshot()
	all := view.Tracks()

	c.artists.Clear()
	c.artists.OnTracksAdded(all)
	c.albums.Clear()
	c.albums.OnTracksAdded(all)

	c.waveforms.Clear()
	waveIDs := make([]models.TrackID, 0, len(snapshot.Waveforms))
	for id := range snapshot.Waveforms {
		if view.Contains(id) {
			waveIDs = append(waveIDs, id)
		}
	}
	slices.Sort(waveIDs)
	for _, id := range waveIDs {
		c.waveforms.Put(id, snapshot.Waveforms[id])
	}

	_ = c.playlists.Restore(snapshot.Playlists)
	var orphans []models.TrackID
	for _, root := range snapshot.Playlists {
		for _, id := range root.AllTracks() {
			if !view.Contains(id) {
				orphans = append(orphans, id)
			}
		}
	}
	c.playlists.RemoveTracksFromAllPlaylists(orphans)

	c.publish()
	c.logger.Info("library restored", "tracks", len(all), "playlists", c.playlists.Len(), "waveforms", c.waveforms.Len())
	return nil
}

// Snapshot copies the current view for persistence.
func (c *Coordinator) Snapshot() *models.LibrarySnapshot { return c.View().Snapshot() }

// Stats summarizes the current view.
func (c *Coordinator) Stats() Stats { return c.View().Stats() }
