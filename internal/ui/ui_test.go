package ui

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/crate/internal/services"
	"github.com/desertthunder/crate/internal/tasks"
	tu "github.com/desertthunder/crate/internal/testing"
)

type harness struct {
	model *Model
	coord *tasks.Coordinator
	queue *services.Queue
	sent  chan tea.Msg
}

func newHarness(t *testing.T) harness {
	t.Helper()
	h := harness{queue: services.NewQueue(nil), sent: make(chan tea.Msg, 16)}

	notifier := NewNotifier(nil)
	notifier.AttachFunc(func(msg tea.Msg) { h.sent <- msg })

	h.coord = tasks.NewCoordinator(tasks.CoordinatorOpts{
		Presenter:  notifier,
		Playback:   h.queue,
		Foreground: &tu.SyncForeground{},
	})
	if _, err := h.coord.ImportTracks(context.Background(), tu.FixtureTracks()); err != nil {
		t.Fatal(err)
	}
	if msg := (<-h.sent).(Msg); msg.Kind() != MsgImportComplete {
		t.Fatalf("kind = %v, want MsgImportComplete", msg.Kind())
	}

	h.model = NewModel(context.Background(), h.coord, h.queue)
	h.model.Update(tea.WindowSizeMsg{Width: 80, Height: 40})
	h.model.Update(h.model.Init()())
	return h
}

// next waits for the coordinator's workers and returns the notification they produced
func (h harness) next(t *testing.T) Msg {
	t.Helper()
	h.coord.Wait()
	select {
	case msg := <-h.sent:
		return msg.(Msg)
	case <-time.After(time.Second):
		t.Fatal("no notification received")
		return Msg{}
	}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestModel(t *testing.T) {
	t.Run("loads artists", func(t *testing.T) {
		h := newHarness(t)
		items := h.model.artistList.Items()
		if len(items) != 4 {
			t.Fatalf("got %d artists, want 4", len(items))
		}
		if first := items[0].(artistItem); first.artist.name != "A" || first.Description() != "2 albums" {
			t.Errorf("first artist = %+v", first.artist)
		}
	})

	t.Run("enter shows the artist's tracks", func(t *testing.T) {
		h := newHarness(t)
		_, cmd := h.model.Update(tea.KeyMsg{Type: tea.KeyEnter})
		if cmd == nil {
			t.Fatal("expected a command")
		}
		cmd()

		msg := h.next(t)
		if msg.Kind() != MsgArtistReady {
			t.Fatalf("kind = %v, want MsgArtistReady", msg.Kind())
		}
		h.model.Update(msg)

		if h.model.State() != TrackListView {
			t.Errorf("state = %v, want TrackListView", h.model.State())
		}
		if n := len(h.model.trackList.Items()); n != 3 {
			t.Errorf("got %d tracks, want 3", n)
		}

		h.model.Update(tea.KeyMsg{Type: tea.KeyEsc})
		if h.model.State() != ArtistListView {
			t.Errorf("esc should return to artists, state = %v", h.model.State())
		}
	})

	t.Run("delete asks for confirmation", func(t *testing.T) {
		h := newHarness(t)
		h.model.Update(runes("d"))
		if h.model.State() != ConfirmView {
			t.Fatalf("state = %v, want ConfirmView", h.model.State())
		}
		if !strings.Contains(h.model.View(), "Delete every track by 'A'?") {
			t.Errorf("confirm view missing prompt:\n%s", h.model.View())
		}

		h.model.Update(runes("n"))
		if h.model.State() != ArtistListView {
			t.Errorf("state = %v after cancel", h.model.State())
		}
		if h.coord.Stats().Tracks != 5 {
			t.Errorf("cancel should not delete")
		}
	})

	t.Run("confirmed delete reaches the coordinator", func(t *testing.T) {
		h := newHarness(t)
		h.model.Update(runes("d"))
		h.model.Update(runes("y"))

		msg := h.next(t)
		if msg.Kind() != MsgDeletionComplete {
			t.Fatalf("kind = %v, want MsgDeletionComplete", msg.Kind())
		}
		h.model.Update(msg)
		if h.model.Status() != "Deleted 3 track(s)" {
			t.Errorf("status = %q", h.model.Status())
		}

		h.model.Update(h.model.loadArtists()())
		if n := len(h.model.artistList.Items()); n != 3 {
			t.Errorf("got %d artists after delete, want 3", n)
		}
		if h.coord.Stats().Tracks != 2 {
			t.Errorf("tracks = %d, want 2", h.coord.Stats().Tracks)
		}
	})

	t.Run("shuffle starts playback", func(t *testing.T) {
		h := newHarness(t)
		_, cmd := h.model.Update(runes("s"))
		h.model.Update(cmd())

		cur, ok := h.queue.CurrentTrack()
		if !ok || cur.Artist != "A" {
			t.Fatalf("current = %+v, %v", cur, ok)
		}
		if !strings.HasPrefix(h.model.Status(), "Playing A - ") {
			t.Errorf("status = %q", h.model.Status())
		}
		if !strings.Contains(h.model.View(), "▶ A - ") {
			t.Errorf("view missing now playing line")
		}
	})

	t.Run("library cleared resets the view", func(t *testing.T) {
		h := newHarness(t)
		if _, err := h.coord.ClearLibrary(context.Background()); err != nil {
			t.Fatal(err)
		}

		msg := h.next(t)
		if msg.Kind() != MsgLibraryCleared {
			t.Fatalf("kind = %v, want MsgLibraryCleared", msg.Kind())
		}
		_, cmd := h.model.Update(msg)
		h.model.Update(cmd())

		if h.model.Status() != "Library cleared" {
			t.Errorf("status = %q", h.model.Status())
		}
		if n := len(h.model.artistList.Items()); n != 0 {
			t.Errorf("got %d artists after clear", n)
		}
	})
}

func TestNotifier(t *testing.T) {
	t.Run("drops before attach", func(t *testing.T) {
		n := NewNotifier(nil)
		n.OnDeletionComplete(1)
	})

	t.Run("forwards as messages", func(t *testing.T) {
		var got []Msg
		n := NewNotifier(nil)
		n.AttachFunc(func(msg tea.Msg) { got = append(got, msg.(Msg)) })

		n.OnImportComplete(4)
		n.OnLibraryCleared()
		if len(got) != 2 || got[0].Kind() != MsgImportComplete || got[0].data.(int) != 4 || got[1].Kind() != MsgLibraryCleared {
			t.Errorf("got %+v", got)
		}
	})
}
