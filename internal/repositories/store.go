package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/crate/internal/models"
	"github.com/desertthunder/crate/internal/shared"
)

const nextIDKey = "next_track_id"

// LibraryStore implements services.Store on SQLite.
//
// Save rewrites the whole library in one transaction; a failed save leaves the previous contents in place.
type LibraryStore struct {
	db     *sql.DB
	logger *log.Logger
}

func NewLibraryStore(db *sql.DB, logger *log.Logger) *LibraryStore {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &LibraryStore{db: db, logger: logger}
}

// Load reads tracks, playlists, waveforms and the id counter.
func (s *LibraryStore) Load(ctx context.Context) (*models.LibrarySnapshot, error) {
	snap := &models.LibrarySnapshot{}
	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		var err error
		if snap.Tracks, err = NewTrackRepository(tx).List(); err != nil {
			return err
		}
		if snap.Playlists, err = NewPlaylistRepository(tx).List(); err != nil {
			return err
		}
		if snap.Waveforms, err = NewWaveformRepository(tx).All(); err != nil {
			return err
		}
		next, err := GetMeta(tx, nextIDKey, 1)
		if err != nil {
			return err
		}
		snap.NextID = models.TrackID(next)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: load: %w", shared.ErrStore, err)
	}

	s.logger.Debug("library loaded", "tracks", len(snap.Tracks), "playlists", len(snap.Playlists), "waveforms", len(snap.Waveforms))
	return snap, nil
}

// Save replaces the stored library with snapshot.
func (s *LibraryStore) Save(ctx context.Context, snap *models.LibrarySnapshot) error {
	if snap == nil {
		return fmt.Errorf("%w: save: nil snapshot", shared.ErrStore)
	}

	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		tracks := NewTrackRepository(tx)
		playlists := NewPlaylistRepository(tx)
		waveforms := NewWaveformRepository(tx)

		if err := waveforms.DeleteAll(); err != nil {
			return err
		}
		if err := playlists.DeleteAll(); err != nil {
			return err
		}
		if err := tracks.DeleteAll(); err != nil {
			return err
		}

		for _, t := range snap.Tracks {
			if err := tracks.Create(t); err != nil {
				return fmt.Errorf("track %d: %w", t.ID, err)
			}
		}
		for _, p := range snap.Playlists {
			if err := playlists.Create(p); err != nil {
				return err
			}
		}
		for id, wf := range snap.Waveforms {
			if err := waveforms.Put(id, wf); err != nil {
				return err
			}
		}
		return SetMeta(tx, nextIDKey, int64(snap.NextID))
	})
	if err != nil {
		return fmt.Errorf("%w: save: %w", shared.ErrStore, err)
	}

	s.logger.Debug("library saved", "tracks", len(snap.Tracks), "playlists", len(snap.Playlists), "waveforms", len(snap.Waveforms))
	return nil
}
