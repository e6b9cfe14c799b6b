package repositories

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/desertthunder/crate/internal/models"
	"github.com/desertthunder/crate/internal/shared"
)

// WaveformRepository stores waveform samples per track as a JSON array.
type WaveformRepository struct {
	db querier
}

func NewWaveformRepository(db querier) *WaveformRepository {
	return &WaveformRepository{db: db}
}

// Put inserts or replaces the waveform of a track
func (r *WaveformRepository) Put(id models.TrackID, wf models.Waveform) error {
	data, err := json.Marshal(wf)
	if err != nil {
		return fmt.Errorf("failed to encode waveform: %w", err)
	}
	_, err = r.db.Exec(
		"INSERT INTO waveforms (track_id, amplitudes) VALUES (?, ?) ON CONFLICT(track_id) DO UPDATE SET amplitudes = excluded.amplitudes",
		id, string(data),
	)
	if err != nil {
		return fmt.Errorf("failed to store waveform for track %d: %w", id, err)
	}
	return nil
}

// Get returns the waveform of a track
func (r *WaveformRepository) Get(id models.TrackID) (models.Waveform, error) {
	var data string
	err := r.db.QueryRow("SELECT amplitudes FROM waveforms WHERE track_id = ?", id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: no waveform for %d", shared.ErrTrackNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get waveform: %w", err)
	}
	return decodeWaveform(data)
}

// All returns every stored waveform keyed by track
func (r *WaveformRepository) All() (map[models.TrackID]models.Waveform, error) {
	rows, err := r.db.Query("SELECT track_id, amplitudes FROM waveforms")
	if err != nil {
		return nil, fmt.Errorf("failed to query waveforms: %w", err)
	}
	defer rows.Close()

	out := make(map[models.TrackID]models.Waveform)
	for rows.Next() {
		var (
			id   models.TrackID
			data string
		)
		if err := rows.Scan(&id, &data); err != nil {
			return nil, fmt.Errorf("failed to scan waveform: %w", err)
		}
		wf, err := decodeWaveform(data)
		if err != nil {
			return nil, fmt.Errorf("track %d: %w", id, err)
		}
		out[id] = wf
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return out, nil
}

// DeleteAll removes every waveform
func (r *WaveformRepository) DeleteAll() error {
	if _, err := r.db.Exec("DELETE FROM waveforms"); err != nil {
		return fmt.Errorf("failed to delete waveforms: %w", err)
	}
	return nil
}

func decodeWaveform(data string) (models.Waveform, error) {
	var wf models.Waveform
	if err := json.Unmarshal([]byte(data), &wf); err != nil {
		return nil, fmt.Errorf("failed to decode waveform: %w", err)
	}
	return wf, nil
}
