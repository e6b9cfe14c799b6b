package services

import (
	"io"
	"slices"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/crate/internal/models"
)

// Queue is an in-memory play queue implementing [Playback].
//
// It only tracks what would be playing; audio output is out of scope.
type Queue struct {
	mu      sync.Mutex
	current *models.Track
	upNext  []models.Track
	history []models.Track
	logger  *log.Logger
}

// NewQueue creates an empty queue. A nil logger discards output.
func NewQueue(logger *log.Logger) *Queue {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Queue{logger: logger}
}

// PlayRandom replaces the queue with tracks and makes the first one current.
func (q *Queue) PlayRandom(tracks []models.Track) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.pushHistory()
	q.upNext = slices.Clone(tracks)
	q.advance()
	q.logger.Debug("playing shuffled queue", "tracks", len(tracks))
}

// Enqueue appends tracks after the current queue.
func (q *Queue) Enqueue(tracks ...models.Track) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.upNext = append(q.upNext, tracks...)
	if q.current == nil {
		q.advance()
	}
}

// Next moves to the following track and reports whether one was available.
func (q *Queue) Next() (models.Track, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.pushHistory()
	q.advance()
	if q.current == nil {
		return models.Track{}, false
	}
	return *q.current, true
}

func (q *Queue) pushHistory() {
	if q.current != nil {
		q.history = append(q.history, *q.current)
		q.current = nil
	}
}

func (q *Queue) advance() {
	if len(q.upNext) == 0 {
		return
	}
	t := q.upNext[0]
	q.upNext = q.upNext[1:]
	q.current = &t
}

// EvictIdentifiers removes ids from the current slot, the queue and the history.
func (q *Queue) EvictIdentifiers(ids []models.TrackID) {
	if len(ids) == 0 {
		return
	}
	gone := make(map[models.TrackID]struct{}, len(ids))
	for _, id := range ids {
		gone[id] = struct{}{}
	}
	evicted := func(t models.Track) bool {
		_, ok := gone[t.ID]
		return ok
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	if q.current != nil && evicted(*q.current) {
		q.logger.Info("stopping evicted track", "id", q.current.ID)
		q.current = nil
	}
	q.upNext = slices.DeleteFunc(q.upNext, evicted)
	q.history = slices.DeleteFunc(q.history, evicted)
}

// CurrentTrack returns the current track, if any.
func (q *Queue) CurrentTrack() (models.Track, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.current == nil {
		return models.Track{}, false
	}
	return *q.current, true
}

// UpNext returns a copy of the pending tracks.
func (q *Queue) UpNext() []models.Track {
	q.mu.Lock()
	defer q.mu.Unlock()
	return slices.Clone(q.upNext)
}

// History returns a copy of the tracks played so far, oldest first.
func (q *Queue) History() []models.Track {
	q.mu.Lock()
	defer q.mu.Unlock()
	return slices.Clone(q.history)
}
