// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"testing"

	"github.com/desertthunder/crate/internal/models"
)

// SyncForeground runs posted callbacks immediately on the posting goroutine.
type SyncForeground struct {
	mu    sync.Mutex
	posts int
}

func (f *SyncForeground) Post(fn func()) {
	f.mu.Lock()
	f.posts++
	f.mu.Unlock()
	fn()
}

// Posts returns how many callbacks were posted.
func (f *SyncForeground) Posts() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.posts
}

// Event is one notification recorded by [MockPresenter].
type Event struct {
	Kind     string // ready, deleted, cleared, imported
	Artist   string
	Albums   models.ArtistAlbums
	Selected *models.Track
	Count    int
}

// MockPresenter records every notification it receives.
type MockPresenter struct {
	mu     sync.Mutex
	events []Event
}

func (p *MockPresenter) record(e Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

func (p *MockPresenter) OnArtistTracksReady(artist string, albums models.ArtistAlbums, selected *models.Track) {
	p.record(Event{Kind: "ready", Artist: artist, Albums: albums, Selected: selected})
}
func (p *MockPresenter) OnDeletionComplete(count int) { p.record(Event{Kind: "deleted", Count: count}) }
func (p *MockPresenter) OnLibraryCleared()            { p.record(Event{Kind: "cleared"}) }
func (p *MockPresenter) OnImportComplete(count int)   { p.record(Event{Kind: "imported", Count: count}) }

// Events returns a copy of the recorded notifications.
func (p *MockPresenter) Events() []Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.events)
}

// Kinds returns the kinds of the recorded notifications in order.
func (p *MockPresenter) Kinds() []string {
	var kinds []string
	for _, e := range p.Events() {
		kinds = append(kinds, e.Kind)
	}
	return kinds
}

// MockPlayback is a test double for services.Playback.
type MockPlayback struct {
	mu      sync.Mutex
	Current *models.Track
	Evicted [][]models.TrackID
	Played  [][]models.Track
}

func (m *MockPlayback) EvictIdentifiers(ids []models.TrackID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Evicted = append(m.Evicted, slices.Clone(ids))
}

func (m *MockPlayback) CurrentTrack() (models.Track, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Current == nil {
		return models.Track{}, false
	}
	return *m.Current, true
}

func (m *MockPlayback) PlayRandom(tracks []models.Track) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Played = append(m.Played, slices.Clone(tracks))
}

// EvictedIDs returns every evicted id in call order.
func (m *MockPlayback) EvictedIDs() []models.TrackID {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.TrackID
	for _, ids := range m.Evicted {
		out = append(out, ids...)
	}
	return out
}

// PlayedCount returns how many times PlayRandom was called.
func (m *MockPlayback) PlayedCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Played)
}

// MockTagReader serves tracks from a map keyed by path; unknown paths fail.
type MockTagReader struct {
	mu     sync.Mutex
	Tracks map[string]models.Track
	Reads  int
}

func (m *MockTagReader) ReadTrack(path string) (models.Track, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Reads++
	t, ok := m.Tracks[path]
	if !ok {
		return models.Track{}, errors.New("no tags for " + filepath.Base(path))
	}
	t.Path = path
	return t, nil
}

// MockStore keeps a snapshot in memory.
type MockStore struct {
	Snapshot *models.LibrarySnapshot
	LoadErr  error
	SaveErr  error
	Saves    int
}

func (m *MockStore) Load(ctx context.Context) (*models.LibrarySnapshot, error) {
	if m.LoadErr != nil {
		return nil, m.LoadErr
	}
	if m.Snapshot == nil {
		return &models.LibrarySnapshot{NextID: 1}, nil
	}
	return m.Snapshot, nil
}

func (m *MockStore) Save(ctx context.Context, snapshot *models.LibrarySnapshot) error {
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.Saves++
	m.Snapshot = snapshot
	return nil
}

// FixtureTracks returns a small library: two artists, an album artist compilation and a loose track.
func FixtureTracks() []models.Track {
	return []models.Track{
		{Title: "Intro", Artist: "A", Album: "X", TrackNumber: 1, Path: "/music/a/x/01.mp3"},
		{Title: "Outro", Artist: "A", Album: "X", TrackNumber: 2, Path: "/music/a/x/02.mp3"},
		{Title: "Single", Artist: "A", Album: "Y", Path: "/music/a/y/01.mp3"},
		{Title: "Opener", Artist: "B", Album: "Z", TrackNumber: 1, Path: "/music/b/z/01.mp3"},
		{Title: "Guest", Artist: "C", AlbumArtist: "Various", Album: "Comp", Path: "/music/comp/01.mp3"},
	}
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// WriteFiles creates empty files relative to dir and returns their paths.
func WriteFiles(t *testing.T, dir string, names ...string) []string {
	t.Helper()
	paths := make([]string, 0, len(names))
	for _, name := range names {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("Failed to create directory for %s: %v", name, err)
		}
		if err := os.WriteFile(path, nil, 0644); err != nil {
			t.Fatalf("Failed to write %s: %v", name, err)
		}
		paths = append(paths, path)
	}
	return paths
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
