package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/desertthunder/crate/internal/models"
	"github.com/desertthunder/crate/internal/shared"
)

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(s.logger))

	r.GET("/health", s.health)
	r.GET("/ws", s.serveWS)

	api := r.Group("/api")
	{
		api.GET("/stats", s.stats)
		api.GET("/artists", s.artists)
		api.GET("/artists/:name", s.artist)
		api.GET("/artists/:name/shuffle", s.shuffleArtist)
		api.GET("/playlists", s.playlists)
		api.GET("/playlists/:name/shuffle", s.shufflePlaylist)
		api.POST("/tracks/delete", s.deleteTracks)
	}
	return r
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "crate",
		"version": s.version,
		"clients": s.hub.Clients(),
	})
}

func (s *Server) stats(c *gin.Context) {
	c.JSON(http.StatusOK, s.coord.Stats())
}

type artistSummary struct {
	Name   string `json:"name"`
	Albums int    `json:"albums"`
}

func (s *Server) artists(c *gin.Context) {
	view := s.coord.View()
	names := view.Artists.Artists()
	out := make([]artistSummary, len(names))
	for i, name := range names {
		out[i] = artistSummary{Name: name, Albums: view.Artists.AlbumCount(name)}
	}
	c.JSON(http.StatusOK, gin.H{"artists": out})
}

// artist returns the albums of one artist; an unknown artist yields an empty mapping.
// With ?notify=true the result is also pushed to websocket clients.
func (s *Server) artist(c *gin.Context) {
	name := c.Param("name")
	albums := s.coord.ArtistTracksByAlbum(name)
	if c.Query("notify") == "true" {
		s.coord.ShowArtist(name)
	}
	c.JSON(http.StatusOK, gin.H{"artist": name, "albums": albums, "tracks": albums.Len()})
}

// shuffleArtist returns the artist's ids in random order. With ?play=true the same order starts playing.
func (s *Server) shuffleArtist(c *gin.Context) {
	name := c.Param("name")
	ids := s.coord.RandomArtistPlaylist(name)
	if c.Query("play") == "true" {
		s.coord.PlayOrder(ids)
	}
	c.JSON(http.StatusOK, gin.H{"artist": name, "tracks": nonNil(ids)})
}

func (s *Server) playlists(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"playlists": s.coord.View().Playlists.Roots()})
}

func (s *Server) shufflePlaylist(c *gin.Context) {
	name := c.Param("name")
	if _, ok := s.coord.View().Playlists.Find(name); !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": shared.ErrPlaylistNotFound.Error()})
		return
	}
	ids := s.coord.RandomPlaylistOrder(name)
	if c.Query("play") == "true" {
		s.coord.PlayOrder(ids)
	}
	c.JSON(http.StatusOK, gin.H{"playlist": name, "tracks": nonNil(ids)})
}

type deleteRequest struct {
	IDs   []models.TrackID `json:"ids"`
	Async bool             `json:"async"`
}

// deleteTracks removes the given ids. Async requests return 202 and complete through the websocket.
func (s *Server) deleteTracks(c *gin.Context) {
	var req deleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "body must be {\"ids\": [...]}"})
		return
	}

	if req.Async {
		if err := s.coord.SubmitDelete(req.IDs); err != nil {
			s.deleteError(c, err)
			return
		}
		c.JSON(http.StatusAccepted, gin.H{"message": "deletion started", "requested": len(req.IDs)})
		return
	}

	res, err := s.coord.DeleteTracks(c.Request.Context(), req.IDs)
	if err != nil {
		s.deleteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": res.Count(), "result": res})
}

func (s *Server) deleteError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, shared.ErrMutationInFlight) {
		status = http.StatusConflict
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func (s *Server) serveWS(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "err", err)
		return
	}
	client := newClient(s.hub, conn)
	s.hub.RegisterClient(client)
	client.start()
}

func nonNil(ids []models.TrackID) []models.TrackID {
	if ids == nil {
		return []models.TrackID{}
	}
	return ids
}
