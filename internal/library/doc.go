// Package library holds the in-memory indexes of the music library.
//
// Five indexes make up the library:
//   - [TrackIndex] : canonical tracks, the only place track ids are assigned
//   - [ArtistIndex] : artist to album names, derived from tracks
//   - [AlbumIndex] : ordered album entries per (artist, album), derived from tracks
//   - [WaveformIndex] : cached waveform samples with optional LRU capacity
//   - [PlaylistIndex] : the playlist and folder tree
//
// None of the indexes lock. A single writer (tasks.Coordinator) mutates them and keeps the
// derived indexes in step with [TrackIndex]. Each index can hand out an immutable view in O(1);
// the first write after a snapshot copies the affected structure, so views never observe a
// later mutation.
package library
