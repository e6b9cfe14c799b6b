// package tasks runs library operations through a single coordinator.
//
// Mutations are serialized by [Coordinator]; reads go against a published [View].
// Long-running work reports progress via channels for non-blocking status reporting to CLI/UI layers.
package tasks

import (
	"github.com/desertthunder/crate/internal/models"
)

// RemovalWarning records a requested id that could not be removed.
type RemovalWarning struct {
	ID     models.TrackID `json:"id"`
	Reason string         `json:"reason"`
}

// DeletionResult describes a completed deletion.
type DeletionResult struct {
	OperationID string           `json:"operation_id,omitempty"`
	Requested   int              `json:"requested"`          // Distinct ids requested
	Removed     []models.TrackID `json:"removed"`            // Ids actually removed
	Warnings    []RemovalWarning `json:"warnings,omitempty"` // Ids that were not in the library
	Cleared     bool             `json:"cleared"`            // Whole library was wiped via the fast path
}

// Count returns the number of removed tracks.
func (r *DeletionResult) Count() int { return len(r.Removed) }

// Stats summarizes the published view.
type Stats struct {
	Tracks    int    `json:"tracks"`
	Artists   int    `json:"artists"`
	Albums    int    `json:"albums"`
	Waveforms int    `json:"waveforms"`
	Playlists int    `json:"playlists"`
	Version   uint64 `json:"version"`
}

// ImportFailure is a file the importer could not turn into a track.
type ImportFailure struct {
	Path string `json:"path"`
	Err  error  `json:"-"`
}

// ImportResult describes a finished import.
type ImportResult struct {
	OperationID string          `json:"operation_id,omitempty"`
	Scanned     int             `json:"scanned"` // Files with a supported extension
	Skipped     int             `json:"skipped"` // Files already in the library
	Added       []models.Track  `json:"added"`
	Failures    []ImportFailure `json:"failures,omitempty"`
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

func dedupe(ids []models.TrackID) []models.TrackID {
	seen := make(map[models.TrackID]struct{}, len(ids))
	out := make([]models.TrackID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
