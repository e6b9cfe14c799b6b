// Package server exposes the library over HTTP with gin and pushes coordinator notifications over a websocket.
//
// # Routes
//
//	GET  /health                       service status
//	GET  /ws                           websocket stream of [Event] values
//	GET  /api/stats                    index sizes and view version
//	GET  /api/artists                  artists with album counts
//	GET  /api/artists/:name            albums and tracks of one artist
//	GET  /api/artists/:name/shuffle    shuffled track ids (?play=true starts playback)
//	GET  /api/playlists                the playlist tree
//	GET  /api/playlists/:name/shuffle  shuffled playlist order (?play=true starts playback)
//	POST /api/tracks/delete            {"ids": [...], "async": false}
//
// # Hub
//
// [Hub] implements the presenter interface. Register it with the coordinator (directly or in a fan-out)
// and every notification is broadcast to connected websocket clients. Slow clients are disconnected
// rather than allowed to stall the broadcast loop.
//
// Handlers only read the published view or go through the coordinator; a delete that races another
// mutation gets 409 Conflict.
package server
