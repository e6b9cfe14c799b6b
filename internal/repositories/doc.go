// Package repositories implements SQLite persistence for the music library.
//
// Key Implementations:
//   - [TrackRepository] : canonical track rows keyed by the ids the track index assigned
//   - [PlaylistRepository] : the playlist tree, stored as parent links with ordered entries
//   - [WaveformRepository] : waveform samples per track, encoded as JSON arrays
//   - [LibraryStore] : whole-library load and save used by the coordinator
//
// Repositories accept either a [sql.DB] or a [sql.Tx], so [LibraryStore] can compose them inside one transaction.
// Deleting a track cascades to its playlist entries and waveform.
// The next id to assign is kept in library_meta so ids are never reused across runs.
package repositories
