// Package tasks coordinates every operation that touches more than one library index.
//
// # Coordinator
//
// [Coordinator] owns the five indexes from package library and is their only writer.
// A single mutation slot serializes writers:
//
//  1. [Coordinator.DeleteTracks] / [Coordinator.SubmitDelete] : prune tracks from every index
//     - Empty selections succeed with a count of zero
//     - Ids not in the library become [RemovalWarning] values, never errors
//     - A selection covering the whole library clears all indexes (Track, Artist, Album, Waveform, Playlist)
//     - Otherwise tracks are removed first and derived indexes pruned after, touching only affected artists and albums
//
//  2. [Coordinator.ClearLibrary], [Coordinator.StoreWaveform] and playlist edits
//     - Fail fast with shared.ErrMutationInFlight when another mutation is running
//
//  3. [Coordinator.ImportTracks] / [Coordinator.Restore]
//     - Wait for the slot; cancellable through the context until they hold it
//
// After every mutation the coordinator publishes an immutable [View] through an atomic pointer.
// Queries such as [Coordinator.ArtistTracksByAlbum] and [Coordinator.RandomArtistPlaylist] read that view
// and never wait for a running mutation.
//
// # Foreground
//
// Presenter notifications are posted to a [Foreground] after the mutation slot is released.
// [Loop] runs callbacks on a dedicated goroutine; the TUI posts them onto the bubbletea event loop.
//
// # Importer
//
// [Importer] walks a folder, reads tags concurrently with an errgroup and an optional rate limiter,
// then inserts the batch through the coordinator.
// Progress is reported via non-blocking [ProgressUpdate] channels; updates use select with default to prevent blocking.
package tasks
