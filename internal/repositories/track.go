package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/crate/internal/models"
	"github.com/desertthunder/crate/internal/shared"
)

// TrackRepository implements models.Repository[models.TrackID, models.Track].
//
// Ids come from the in-memory track index; the repository stores them as given.
type TrackRepository struct {
	db querier
}

// NewTrackRepository creates a new TrackRepository with the given database connection or transaction
func NewTrackRepository(db querier) *TrackRepository {
	return &TrackRepository{db: db}
}

const trackColumns = `id, title, artist, album_artist, album, genre, label, comments, year, track_number,
	disc_number, bpm, bit_rate, duration_ms, path, play_count, compilation, date_added, date_modified`

// Create inserts a track that already carries its id
func (r *TrackRepository) Create(track models.Track) error {
	if track.ID <= 0 {
		return fmt.Errorf("%w: track id is required", shared.ErrInvalidInput)
	}
	if err := track.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `INSERT INTO tracks (` + trackColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.Exec(query,
		track.ID,
		track.Title,
		track.Artist,
		track.AlbumArtist,
		track.Album,
		track.Genre,
		track.Label,
		track.Comments,
		track.Year,
		track.TrackNumber,
		track.DiscNumber,
		track.BPM,
		track.BitRate,
		track.Duration.Milliseconds(),
		track.Path,
		track.PlayCount,
		track.Compilation,
		nullTime(track.DateAdded),
		nullTime(track.DateModified),
	)
	if err != nil {
		return fmt.Errorf("failed to insert track: %w", err)
	}
	return nil
}

// Get retrieves a track by ID
func (r *TrackRepository) Get(id models.TrackID) (models.Track, error) {
	row := r.db.QueryRow("SELECT "+trackColumns+" FROM tracks WHERE id = ?", id)
	track, err := scanTrack(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Track{}, fmt.Errorf("%w: %d", shared.ErrTrackNotFound, id)
	}
	return track, err
}

// Update modifies the mutable fields of an existing track
func (r *TrackRepository) Update(track models.Track) error {
	if err := track.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		UPDATE tracks
		SET title = ?, artist = ?, album_artist = ?, album = ?, genre = ?, label = ?, comments = ?,
			year = ?, track_number = ?, disc_number = ?, bpm = ?, play_count = ?, compilation = ?, date_modified = ?
		WHERE id = ?
	`

	result, err := r.db.Exec(query,
		track.Title,
		track.Artist,
		track.AlbumArtist,
		track.Album,
		track.Genre,
		track.Label,
		track.Comments,
		track.Year,
		track.TrackNumber,
		track.DiscNumber,
		track.BPM,
		track.PlayCount,
		track.Compilation,
		nullTime(time.Now()),
		track.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update track: %w", err)
	}
	return expectRows(result, fmt.Errorf("%w: %d", shared.ErrTrackNotFound, track.ID))
}

// Delete removes a track. Playlist entries and waveforms go with it.
func (r *TrackRepository) Delete(id models.TrackID) error {
	result, err := r.db.Exec("DELETE FROM tracks WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete track: %w", err)
	}
	return expectRows(result, fmt.Errorf("%w: %d", shared.ErrTrackNotFound, id))
}

// DeleteAll removes every track
func (r *TrackRepository) DeleteAll() error {
	if _, err := r.db.Exec("DELETE FROM tracks"); err != nil {
		return fmt.Errorf("failed to delete tracks: %w", err)
	}
	return nil
}

// List retrieves all tracks ordered by id
func (r *TrackRepository) List() ([]models.Track, error) {
	rows, err := r.db.Query("SELECT " + trackColumns + " FROM tracks ORDER BY id ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to query tracks: %w", err)
	}
	defer rows.Close()

	var tracks []models.Track
	for rows.Next() {
		track, err := scanTrack(rows)
		if err != nil {
			return nil, err
		}
		tracks = append(tracks, track)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return tracks, nil
}

type scanner interface {
	Scan(dest ...any) error
}

// scanTrack scans a [sql.Row] or the current row of [sql.Rows] into a [models.Track]
func scanTrack(s scanner) (models.Track, error) {
	var (
		t            models.Track
		durationMS   int64
		dateAdded    sql.NullTime
		dateModified sql.NullTime
	)

	err := s.Scan(
		&t.ID, &t.Title, &t.Artist, &t.AlbumArtist, &t.Album, &t.Genre, &t.Label, &t.Comments,
		&t.Year, &t.TrackNumber, &t.DiscNumber, &t.BPM, &t.BitRate, &durationMS, &t.Path,
		&t.PlayCount, &t.Compilation, &dateAdded, &dateModified,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Track{}, err
	}
	if err != nil {
		return models.Track{}, fmt.Errorf("failed to scan track: %w", err)
	}

	t.Duration = time.Duration(durationMS) * time.Millisecond
	if dateAdded.Valid {
		t.DateAdded = dateAdded.Time
	}
	if dateModified.Valid {
		t.DateModified = dateModified.Time
	}
	return t, nil
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}
