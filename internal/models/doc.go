// Package models defines the domain entities of the crate music library.
//
// The canonical entity is [Track], identified by a [TrackID] assigned once by the track index and never reused.
// Every other structure refers to tracks by id only:
//   - [AlbumEntry] / [ArtistAlbums] : ordered album listings derived from tracks
//   - [Waveform] : amplitude samples cached per track
//   - [Playlist] : named, possibly nested collections of track ids
//
// [LibrarySnapshot] bundles tracks, playlists and waveforms for the persistence collaborator.
// The generic [Repository] interface describes keyed CRUD access used by the SQLite repositories.
package models
