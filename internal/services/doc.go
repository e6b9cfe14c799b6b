// Package services defines the collaborators the library coordinator talks to and ships small implementations of them.
//
// # Contracts
//
//   - [Store] : load and save a [models.LibrarySnapshot] (implemented by repositories.LibraryStore)
//   - [Playback] : evict deleted tracks, report the current track, play a shuffled list
//   - [Presenter] : receive coordinator notifications on the foreground context
//   - [TagReader] : turn an audio file into a [models.Track]
//
// # Implementations
//
// [Queue] is an in-memory play queue. It keeps the current track, the pending tracks and the history,
// and is safe for concurrent use.
//
// [TagScanner] reads tags with github.com/dhowden/tag. Files without tags are titled after their file name.
// Duration is not available from tags and is left zero.
//
// [LogPresenter] prints notifications for the command line. [Presenters] fans out to several presenters.
package services
