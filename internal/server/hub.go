package server

import (
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/crate/internal/models"
	"github.com/desertthunder/crate/internal/services"
)

var _ services.Presenter = (*Hub)(nil)

// Event is the JSON message broadcast to websocket clients
type Event struct {
	Type      string              `json:"type"` // artist_ready, deletion_complete, library_cleared, import_complete
	Artist    string              `json:"artist,omitempty"`
	Albums    models.ArtistAlbums `json:"albums,omitempty"`
	Selected  *models.Track       `json:"selected,omitempty"`
	Count     int                 `json:"count"`
	Timestamp time.Time           `json:"timestamp"`
}

// Hub maintains the set of connected clients and broadcasts presenter notifications to them.
//
// It implements [services.Presenter]; broadcasting never blocks the caller.
type Hub struct {
	clients    map[*Client]struct{}
	broadcast  chan Event
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	logger     *log.Logger

	mu    sync.RWMutex
	count int
}

// NewHub creates a hub. Call [Hub.Run] to start it.
func NewHub(logger *log.Logger) *Hub {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Hub{
		clients:    make(map[*Client]struct{}),
		broadcast:  make(chan Event, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Run is the hub's event loop. It returns once stop is closed, disconnecting every client.
func (h *Hub) Run(stop <-chan struct{}) {
	defer close(h.done)
	for {
		select {
		case client := <-h.register:
			h.clients[client] = struct{}{}
			h.setCount(len(h.clients))
			h.logger.Debug("websocket client connected", "clients", len(h.clients))

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				h.setCount(len(h.clients))
				h.logger.Debug("websocket client disconnected", "clients", len(h.clients))
			}

		case event := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- event:
				default:
					// slow consumer
					delete(h.clients, client)
					close(client.send)
				}
			}
			h.setCount(len(h.clients))

		case <-stop:
			for client := range h.clients {
				delete(h.clients, client)
				close(client.send)
			}
			h.setCount(0)
			return
		}
	}
}

func (h *Hub) setCount(n int) {
	h.mu.Lock()
	h.count = n
	h.mu.Unlock()
}

// Clients returns the number of registered clients
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.count
}

// Broadcast queues event for every client, dropping it when the queue is full.
func (h *Hub) Broadcast(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	select {
	case h.broadcast <- event:
	default:
		h.logger.Warn("websocket broadcast queue full, dropping event", "type", event.Type)
	}
}

// RegisterClient adds a client; it is a no-op once the hub has stopped.
func (h *Hub) RegisterClient(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
		close(client.send)
	}
}

// UnregisterClient removes a client
func (h *Hub) UnregisterClient(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

func (h *Hub) OnArtistTracksReady(artist string, albums models.ArtistAlbums, selected *models.Track) {
	h.Broadcast(Event{Type: "artist_ready", Artist: artist, Albums: albums, Selected: selected, Count: albums.Len()})
}

func (h *Hub) OnDeletionComplete(count int) {
	h.Broadcast(Event{Type: "deletion_complete", Count: count})
}

func (h *Hub) OnLibraryCleared() {
	h.Broadcast(Event{Type: "library_cleared"})
}

func (h *Hub) OnImportComplete(count int) {
	h.Broadcast(Event{Type: "import_complete", Count: count})
}
