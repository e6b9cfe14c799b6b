package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/desertthunder/crate/internal/models"
	"github.com/desertthunder/crate/internal/tasks"
	tu "github.com/desertthunder/crate/internal/testing"
)

// testHelper bundles a coordinator, a running hub and an httptest server around them
type testHelper struct {
	coord    *tasks.Coordinator
	hub      *Hub
	server   *httptest.Server
	playback *tu.MockPlayback
	stop     chan struct{}
}

func newTestHelper(t *testing.T) *testHelper {
	t.Helper()
	gin.SetMode(gin.TestMode)

	h := &testHelper{hub: NewHub(nil), playback: &tu.MockPlayback{}, stop: make(chan struct{})}
	go h.hub.Run(h.stop)

	h.coord = tasks.NewCoordinator(tasks.CoordinatorOpts{
		Presenter:  h.hub,
		Playback:   h.playback,
		Foreground: &tu.SyncForeground{},
	})
	_, err := h.coord.ImportTracks(context.Background(), tu.FixtureTracks())
	require.NoError(t, err)
	require.NoError(t, h.coord.CreatePlaylist("Mix", false, ""))
	require.NoError(t, h.coord.AddToPlaylist("Mix", []models.TrackID{1, 4, 5}))
	// the import notification must be consumed before any client registers
	require.Eventually(t, func() bool { return len(h.hub.broadcast) == 0 }, time.Second, 5*time.Millisecond)

	h.server = httptest.NewServer(New(h.coord, Options{Hub: h.hub, Version: "test"}).Handler())
	t.Cleanup(func() {
		h.server.Close()
		close(h.stop)
	})
	return h
}

func (h *testHelper) getJSON(t *testing.T, path string, out any) *http.Response {
	t.Helper()
	resp, err := http.Get(h.server.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func (h *testHelper) postJSON(t *testing.T, path, body string, out any) *http.Response {
	t.Helper()
	resp, err := http.Post(h.server.URL+path, "application/json", bytes.NewBufferString(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func (h *testHelper) dial(t *testing.T) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(h.server.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	require.Eventually(t, func() bool { return h.hub.Clients() == 1 }, time.Second, 10*time.Millisecond)
	return conn
}

func TestHealthAndStats(t *testing.T) {
	h := newTestHelper(t)

	var health map[string]any
	resp := h.getJSON(t, "/health", &health)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "healthy", health["status"])
	assert.Equal(t, "test", health["version"])

	var stats tasks.Stats
	resp = h.getJSON(t, "/api/stats", &stats)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 5, stats.Tracks)
	assert.Equal(t, 4, stats.Artists)
	assert.Equal(t, 1, stats.Playlists)
}

func TestArtists(t *testing.T) {
	h := newTestHelper(t)

	t.Run("list", func(t *testing.T) {
		var body struct {
			Artists []artistSummary `json:"artists"`
		}
		h.getJSON(t, "/api/artists", &body)
		require.Len(t, body.Artists, 4)
		assert.Equal(t, artistSummary{Name: "A", Albums: 2}, body.Artists[0])
		assert.Equal(t, "Various", body.Artists[3].Name)
	})

	t.Run("albums of one artist", func(t *testing.T) {
		var body struct {
			Artist string              `json:"artist"`
			Albums models.ArtistAlbums `json:"albums"`
			Tracks int                 `json:"tracks"`
		}
		h.getJSON(t, "/api/artists/A", &body)
		assert.Equal(t, 3, body.Tracks)
		require.Len(t, body.Albums["X"], 2)
		assert.Equal(t, "Intro", body.Albums["X"][0].Track.Title)
	})

	t.Run("unknown artist is empty", func(t *testing.T) {
		var body struct {
			Tracks int `json:"tracks"`
		}
		resp := h.getJSON(t, "/api/artists/nobody", &body)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Zero(t, body.Tracks)
	})
}

func TestShuffle(t *testing.T) {
	h := newTestHelper(t)

	t.Run("artist", func(t *testing.T) {
		var body struct {
			Tracks []models.TrackID `json:"tracks"`
		}
		h.getJSON(t, "/api/artists/A/shuffle?play=true", &body)
		assert.ElementsMatch(t, []models.TrackID{1, 2, 3}, body.Tracks)

		h.coord.Wait()
		require.Equal(t, 1, h.playback.PlayedCount())
		assert.Equal(t, body.Tracks, playedIDs(h.playback.Played[0]), "playback order must match the response")
	})

	t.Run("playlist with play", func(t *testing.T) {
		var body struct {
			Tracks []models.TrackID `json:"tracks"`
		}
		h.getJSON(t, "/api/playlists/Mix/shuffle?play=true", &body)

		h.coord.Wait()
		require.Equal(t, 2, h.playback.PlayedCount())
		assert.Equal(t, body.Tracks, playedIDs(h.playback.Played[1]))
	})

	t.Run("playlist", func(t *testing.T) {
		var body struct {
			Tracks []models.TrackID `json:"tracks"`
		}
		resp := h.getJSON(t, "/api/playlists/Mix/shuffle", &body)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.ElementsMatch(t, []models.TrackID{1, 4, 5}, body.Tracks)
	})

	t.Run("unknown playlist", func(t *testing.T) {
		resp := h.getJSON(t, "/api/playlists/nope/shuffle", nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("unknown artist", func(t *testing.T) {
		var body struct {
			Tracks []models.TrackID `json:"tracks"`
		}
		h.getJSON(t, "/api/artists/nobody/shuffle", &body)
		assert.NotNil(t, body.Tracks)
		assert.Empty(t, body.Tracks)
	})
}

func TestDeleteTracks(t *testing.T) {
	t.Run("sync delete with warnings", func(t *testing.T) {
		h := newTestHelper(t)
		var body struct {
			Count  int                  `json:"count"`
			Result tasks.DeletionResult `json:"result"`
		}
		resp := h.postJSON(t, "/api/tracks/delete", `{"ids": [1, 2, 2, 99]}`, &body)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, 2, body.Count)
		require.Len(t, body.Result.Warnings, 1)
		assert.Equal(t, models.TrackID(99), body.Result.Warnings[0].ID)
		assert.Equal(t, 3, h.coord.Stats().Tracks)
	})

	t.Run("bad body", func(t *testing.T) {
		h := newTestHelper(t)
		resp := h.postJSON(t, "/api/tracks/delete", `{"ids": "x"}`, nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("async delete is broadcast", func(t *testing.T) {
		h := newTestHelper(t)
		conn := h.dial(t)

		resp := h.postJSON(t, "/api/tracks/delete", `{"ids": [4], "async": true}`, nil)
		assert.Equal(t, http.StatusAccepted, resp.StatusCode)
		h.coord.Wait()

		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		var event Event
		require.NoError(t, conn.ReadJSON(&event))
		assert.Equal(t, "deletion_complete", event.Type)
		assert.Equal(t, 1, event.Count)
		assert.False(t, h.coord.View().Tracks.Contains(4))
	})
}

func TestHub(t *testing.T) {
	t.Run("artist ready reaches clients", func(t *testing.T) {
		h := newTestHelper(t)
		conn := h.dial(t)

		h.getJSON(t, "/api/artists/B?notify=true", nil)
		h.coord.Wait()

		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		var event Event
		require.NoError(t, conn.ReadJSON(&event))
		assert.Equal(t, "artist_ready", event.Type)
		assert.Equal(t, "B", event.Artist)
		assert.Equal(t, 1, event.Count)
		assert.False(t, event.Timestamp.IsZero())
	})

	t.Run("client disconnect unregisters", func(t *testing.T) {
		h := newTestHelper(t)
		conn := h.dial(t)
		conn.Close()
		assert.Eventually(t, func() bool { return h.hub.Clients() == 0 }, 2*time.Second, 10*time.Millisecond)
	})

	t.Run("broadcast without clients does not block", func(t *testing.T) {
		hub := NewHub(nil)
		for range 100 {
			hub.OnImportComplete(1)
		}
	})
}

func playedIDs(tracks []models.Track) []models.TrackID {
	ids := make([]models.TrackID, 0, len(tracks))
	for _, t := range tracks {
		ids = append(ids, t.ID)
	}
	return ids
}
