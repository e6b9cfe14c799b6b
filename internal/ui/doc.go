// Package ui implements an interactive terminal interface for browsing the library, using bubbletea's Elm architecture.
//
// Views:
//  1. [ArtistListView] : Browse and filter artists
//  2. [TrackListView] : Albums and tracks of one artist, with the playing track marked
//  3. [ConfirmView] : Confirm deletion of an artist's tracks
//
// The [Model] never mutates the library itself. Deletions are submitted to the coordinator, which runs them on a worker;
// completion comes back through [Notifier], a presenter that forwards each notification to the program as a [Msg].
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, s, d, y/n, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
