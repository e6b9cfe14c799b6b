package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/crate/internal/models"
	"github.com/desertthunder/crate/internal/shared"
	"github.com/desertthunder/crate/internal/tasks"
	tu "github.com/desertthunder/crate/internal/testing"
)

type cliHarness struct {
	runner *Runner
	store  *tu.MockStore
	output *bytes.Buffer
	reader *tu.MockTagReader
}

// seededStore holds the fixture library and a playlist Mix of tracks 1, 4 and 5.
func seededStore(t *testing.T) *tu.MockStore {
	t.Helper()
	coord := tasks.NewCoordinator(tasks.CoordinatorOpts{Foreground: &tu.SyncForeground{}})
	if _, err := coord.ImportTracks(context.Background(), tu.FixtureTracks()); err != nil {
		t.Fatal(err)
	}
	if err := coord.CreatePlaylist("Mix", false, ""); err != nil {
		t.Fatal(err)
	}
	if err := coord.AddToPlaylist("Mix", []models.TrackID{1, 4, 5}); err != nil {
		t.Fatal(err)
	}
	return &tu.MockStore{Snapshot: coord.Snapshot()}
}

func newCLIHarness(t *testing.T, store *tu.MockStore, input string) *cliHarness {
	t.Helper()
	h := &cliHarness{store: store, output: &bytes.Buffer{}, reader: &tu.MockTagReader{}}
	opts := RunnerOpts{
		Logger: shared.NewLogger(io.Discard),
		Output: h.output,
		Input:  strings.NewReader(input),
		Reader: h.reader,
	}
	if store != nil {
		opts.Store = store
	}
	h.runner = NewRunner(opts)
	return h
}

func (h *cliHarness) run(args ...string) error {
	app := &cli.Command{Name: "crate", Commands: h.runner.register()}
	return app.Run(context.Background(), append([]string{"crate"}, args...))
}

func (h *cliHarness) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	h.output.Reset()
	if err := h.run(args...); err != nil {
		t.Fatalf("crate %s: %v", strings.Join(args, " "), err)
	}
	return h.output.String()
}

func TestImportCommand(t *testing.T) {
	dir := t.TempDir()
	paths := tu.WriteFiles(t, dir, "a/one.mp3", "a/two.flac", "notes.txt", "broken.mp3")

	h := newCLIHarness(t, &tu.MockStore{}, "")
	h.reader.Tracks = map[string]models.Track{
		paths[0]: {Title: "One", Artist: "A", Album: "X", TrackNumber: 1},
		paths[1]: {Title: "Two", Artist: "A", Album: "X", TrackNumber: 2},
	}

	t.Run("adds new files and reports failures", func(t *testing.T) {
		out := h.mustRun(t, "import", dir)

		if !strings.Contains(out, "Imported 2 track(s)") {
			t.Errorf("expected import notification, got %q", out)
		}
		if !strings.Contains(out, "Scanned 3 file(s): 2 added, 0 already known, 1 failed") {
			t.Errorf("unexpected summary: %q", out)
		}
		if !strings.Contains(out, "broken.mp3") {
			t.Errorf("expected failure for broken.mp3, got %q", out)
		}
		if h.store.Saves != 1 || len(h.store.Snapshot.Tracks) != 2 {
			t.Errorf("saves = %d, tracks = %d", h.store.Saves, len(h.store.Snapshot.Tracks))
		}
	})

	t.Run("second import skips known paths", func(t *testing.T) {
		out := h.mustRun(t, "import", dir)

		if !strings.Contains(out, "0 added, 2 already known") {
			t.Errorf("unexpected summary: %q", out)
		}
		if h.store.Saves != 1 {
			t.Errorf("nothing added, expected no save, saves = %d", h.store.Saves)
		}
	})

	t.Run("json output", func(t *testing.T) {
		out := h.mustRun(t, "import", "--json", dir)

		var res tasks.ImportResult
		if err := json.Unmarshal([]byte(out), &res); err != nil {
			t.Fatalf("invalid JSON %q: %v", out, err)
		}
		if res.Scanned != 3 || res.Skipped != 2 || len(res.Failures) != 1 {
			t.Errorf("result = %+v", res)
		}
	})

	t.Run("missing directory", func(t *testing.T) {
		if err := h.run("import", filepath.Join(dir, "nope")); err == nil {
			t.Error("expected error for missing directory")
		}
	})
}

func TestBrowseCommands(t *testing.T) {
	h := newCLIHarness(t, seededStore(t), "")

	t.Run("tracks", func(t *testing.T) {
		out := h.mustRun(t, "tracks")
		if !strings.Contains(out, "Tracks (5)") || !strings.Contains(out, "A - Intro (X) [0:00]") {
			t.Errorf("unexpected output: %q", out)
		}
	})

	t.Run("artists json", func(t *testing.T) {
		out := h.mustRun(t, "artists", "--json")

		var artists []artistSummary
		if err := json.Unmarshal([]byte(out), &artists); err != nil {
			t.Fatalf("invalid JSON %q: %v", out, err)
		}
		if len(artists) != 4 || artists[0] != (artistSummary{Name: "A", Albums: 2}) {
			t.Errorf("artists = %+v", artists)
		}
	})

	t.Run("artist groups by album", func(t *testing.T) {
		out := h.mustRun(t, "artist", "A")
		for _, want := range []string{"A\n", "  X\n", "Intro", "Outro", "  Y\n", "Single"} {
			if !strings.Contains(out, want) {
				t.Errorf("expected %q in %q", want, out)
			}
		}
	})

	t.Run("album artist browses the compilation", func(t *testing.T) {
		out := h.mustRun(t, "artist", "Various")
		if !strings.Contains(out, "Comp") || !strings.Contains(out, "Guest") {
			t.Errorf("unexpected output: %q", out)
		}
	})

	t.Run("unknown artist", func(t *testing.T) {
		out := h.mustRun(t, "artist", "nobody")
		if out != "No tracks for 'nobody'\n" {
			t.Errorf("unexpected output: %q", out)
		}
	})

	t.Run("artist requires a name", func(t *testing.T) {
		if err := h.run("artist"); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("stats json", func(t *testing.T) {
		out := h.mustRun(t, "stats", "--json")

		var stats tasks.Stats
		if err := json.Unmarshal([]byte(out), &stats); err != nil {
			t.Fatalf("invalid JSON %q: %v", out, err)
		}
		if stats.Tracks != 5 || stats.Artists != 4 || stats.Albums != 5 || stats.Playlists != 1 {
			t.Errorf("stats = %+v", stats)
		}
	})

	t.Run("browsing never saves", func(t *testing.T) {
		if h.store.Saves != 0 {
			t.Errorf("saves = %d", h.store.Saves)
		}
	})
}

func TestDeleteCommand(t *testing.T) {
	t.Run("deletes with --yes and saves", func(t *testing.T) {
		h := newCLIHarness(t, seededStore(t), "")
		out := h.mustRun(t, "delete", "--yes", "1", "2")

		if !strings.Contains(out, "Deleted 2 track(s)") {
			t.Errorf("unexpected output: %q", out)
		}
		if h.store.Saves != 1 || len(h.store.Snapshot.Tracks) != 3 {
			t.Errorf("saves = %d, tracks = %d", h.store.Saves, len(h.store.Snapshot.Tracks))
		}
		if got := h.store.Snapshot.Playlists[0].Tracks; len(got) != 2 || got[0] != 4 || got[1] != 5 {
			t.Errorf("Mix = %v, want [4 5]", got)
		}
	})

	t.Run("prompt accepted", func(t *testing.T) {
		h := newCLIHarness(t, seededStore(t), "y\n")
		out := h.mustRun(t, "delete", "4")

		if !strings.Contains(out, "Delete 1 track(s) from the library and every playlist? [y/N] ") {
			t.Errorf("expected prompt, got %q", out)
		}
		if !strings.Contains(out, "Deleted 1 track(s)") {
			t.Errorf("unexpected output: %q", out)
		}
	})

	t.Run("prompt declined", func(t *testing.T) {
		h := newCLIHarness(t, seededStore(t), "n\n")
		err := h.run("delete", "4")

		if !errors.Is(err, shared.ErrNotConfirmed) {
			t.Fatalf("expected ErrNotConfirmed, got %v", err)
		}
		if h.store.Saves != 0 || len(h.store.Snapshot.Tracks) != 5 {
			t.Error("declined deletion must not change the library")
		}
	})

	t.Run("every track of an artist", func(t *testing.T) {
		h := newCLIHarness(t, seededStore(t), "")
		out := h.mustRun(t, "delete", "--yes", "--artist", "A")

		if !strings.Contains(out, "Deleted 3 track(s)") {
			t.Errorf("unexpected output: %q", out)
		}
		for _, tr := range h.store.Snapshot.Tracks {
			if tr.Artist == "A" {
				t.Errorf("track %d by A survived", tr.ID)
			}
		}
	})

	t.Run("deleting everything clears the library", func(t *testing.T) {
		h := newCLIHarness(t, seededStore(t), "")
		out := h.mustRun(t, "delete", "--yes", "1", "2", "3", "4", "5")

		if !strings.Contains(out, "Library cleared\n") || !strings.Contains(out, "Deleted 5 track(s)") {
			t.Errorf("unexpected output: %q", out)
		}
		if strings.Index(out, "Library cleared") > strings.Index(out, "Deleted 5") {
			t.Error("cleared notification must come before the deletion count")
		}
		if len(h.store.Snapshot.Tracks) != 0 || len(h.store.Snapshot.Playlists) != 0 {
			t.Errorf("snapshot = %+v", h.store.Snapshot)
		}
	})

	t.Run("json result reports foreign ids", func(t *testing.T) {
		h := newCLIHarness(t, seededStore(t), "")
		out := h.mustRun(t, "delete", "--yes", "--json", "1", "99", "1")

		var res tasks.DeletionResult
		if err := json.Unmarshal([]byte(out), &res); err != nil {
			t.Fatalf("invalid JSON %q: %v", out, err)
		}
		if res.Requested != 2 || res.Count() != 1 || len(res.Warnings) != 1 || res.Warnings[0].ID != 99 {
			t.Errorf("result = %+v", res)
		}
	})

	t.Run("only foreign ids change nothing", func(t *testing.T) {
		h := newCLIHarness(t, seededStore(t), "")
		out := h.mustRun(t, "delete", "--yes", "99")

		if !strings.Contains(out, "Deleted 0 track(s)") || !strings.Contains(out, "! 99:") {
			t.Errorf("unexpected output: %q", out)
		}
		if h.store.Saves != 0 {
			t.Errorf("saves = %d", h.store.Saves)
		}
	})

	t.Run("argument errors", func(t *testing.T) {
		h := newCLIHarness(t, seededStore(t), "")
		if err := h.run("delete", "--yes", "abc"); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
		if err := h.run("delete", "--yes"); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("save failure is returned", func(t *testing.T) {
		store := seededStore(t)
		store.SaveErr = shared.ErrStore
		h := newCLIHarness(t, store, "")

		if err := h.run("delete", "--yes", "1"); !errors.Is(err, shared.ErrStore) {
			t.Errorf("expected ErrStore, got %v", err)
		}
	})

	t.Run("load failure is returned", func(t *testing.T) {
		h := newCLIHarness(t, &tu.MockStore{LoadErr: shared.ErrStore}, "")

		if err := h.run("delete", "--yes", "1"); !errors.Is(err, shared.ErrStore) {
			t.Errorf("expected ErrStore, got %v", err)
		}
	})
}

func TestClearCommand(t *testing.T) {
	t.Run("requires confirmation", func(t *testing.T) {
		h := newCLIHarness(t, seededStore(t), "")
		if err := h.run("clear"); !errors.Is(err, shared.ErrNotConfirmed) {
			t.Fatalf("expected ErrNotConfirmed, got %v", err)
		}
		if h.store.Saves != 0 {
			t.Error("unconfirmed clear must not save")
		}
	})

	t.Run("clears with --yes", func(t *testing.T) {
		h := newCLIHarness(t, seededStore(t), "")
		out := h.mustRun(t, "clear", "--yes")

		if out != "Library cleared\n" {
			t.Errorf("unexpected output: %q", out)
		}
		snap := h.store.Snapshot
		if len(snap.Tracks) != 0 || len(snap.Playlists) != 0 || len(snap.Waveforms) != 0 {
			t.Errorf("snapshot not empty: %+v", snap)
		}
		if snap.NextID != 6 {
			t.Errorf("next id = %d, ids must not be reused", snap.NextID)
		}
	})
}

func TestShuffleCommand(t *testing.T) {
	h := newCLIHarness(t, seededStore(t), "")

	t.Run("artist", func(t *testing.T) {
		out := h.mustRun(t, "shuffle", "artist", "A")
		lines := strings.Split(strings.TrimSpace(out), "\n")

		if len(lines) != 3 {
			t.Fatalf("expected current track and two up next, got %q", out)
		}
		if !strings.HasPrefix(lines[0], "▶ A - ") {
			t.Errorf("unexpected current line %q", lines[0])
		}
	})

	t.Run("playlist", func(t *testing.T) {
		out := h.mustRun(t, "shuffle", "playlist", "Mix")
		if lines := strings.Split(strings.TrimSpace(out), "\n"); len(lines) != 3 {
			t.Errorf("expected three tracks, got %q", out)
		}
	})

	t.Run("unknown playlist", func(t *testing.T) {
		if err := h.run("shuffle", "playlist", "nope"); !errors.Is(err, shared.ErrPlaylistNotFound) {
			t.Errorf("expected ErrPlaylistNotFound, got %v", err)
		}
	})

	t.Run("unknown artist", func(t *testing.T) {
		if out := h.mustRun(t, "shuffle", "artist", "nobody"); out != "No tracks for 'nobody'\n" {
			t.Errorf("unexpected output: %q", out)
		}
	})
}

func TestPlaylistCommands(t *testing.T) {
	h := newCLIHarness(t, seededStore(t), "")

	t.Run("create and add", func(t *testing.T) {
		h.mustRun(t, "playlist", "create", "Road")
		out := h.mustRun(t, "playlist", "add", "Road", "2", "3")

		if out != "✓ Added 2 track(s) to 'Road'\n" {
			t.Errorf("unexpected output: %q", out)
		}

		out = h.mustRun(t, "playlist", "show", "Road")
		if !strings.Contains(out, "Road (2 tracks)") || !strings.Contains(out, "1. [2] A - Outro") {
			t.Errorf("unexpected output: %q", out)
		}
	})

	t.Run("folders", func(t *testing.T) {
		h.mustRun(t, "playlist", "create", "--folder", "Crates")
		h.mustRun(t, "playlist", "create", "--parent", "Crates", "Deep")
		h.mustRun(t, "playlist", "add", "Deep", "4")

		out := h.mustRun(t, "playlist", "list")
		if !strings.Contains(out, "Crates/\n  Deep (1 tracks)\n") {
			t.Errorf("unexpected tree: %q", out)
		}

		out = h.mustRun(t, "playlist", "show", "Crates")
		if !strings.Contains(out, "Crates (1 tracks)") {
			t.Errorf("folder should show its children's tracks: %q", out)
		}
	})

	t.Run("errors", func(t *testing.T) {
		if err := h.run("playlist", "create", "Road"); !errors.Is(err, shared.ErrPlaylistExists) {
			t.Errorf("expected ErrPlaylistExists, got %v", err)
		}
		if err := h.run("playlist", "add", "nope", "1"); !errors.Is(err, shared.ErrPlaylistNotFound) {
			t.Errorf("expected ErrPlaylistNotFound, got %v", err)
		}
		if err := h.run("playlist", "add", "Crates", "1"); !errors.Is(err, shared.ErrIsAFolder) {
			t.Errorf("expected ErrIsAFolder, got %v", err)
		}
		if err := h.run("playlist", "add", "Road"); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
		if err := h.run("playlist", "show", "nope"); !errors.Is(err, shared.ErrPlaylistNotFound) {
			t.Errorf("expected ErrPlaylistNotFound, got %v", err)
		}
	})

	t.Run("delete folder removes children", func(t *testing.T) {
		h.mustRun(t, "playlist", "delete", "Crates")

		out := h.mustRun(t, "playlist", "list")
		if strings.Contains(out, "Deep") || strings.Contains(out, "Crates") {
			t.Errorf("folder should be gone: %q", out)
		}
		if !strings.Contains(out, "Mix (3 tracks)") {
			t.Errorf("other playlists should remain: %q", out)
		}
	})

	t.Run("list json", func(t *testing.T) {
		out := h.mustRun(t, "playlist", "list", "--json")

		var roots []*models.Playlist
		if err := json.Unmarshal([]byte(out), &roots); err != nil {
			t.Fatalf("invalid JSON %q: %v", out, err)
		}
		if len(roots) != 2 || roots[0].Name != "Mix" || roots[1].Name != "Road" {
			t.Errorf("roots = %+v", roots)
		}
	})
}

func TestExportCommand(t *testing.T) {
	h := newCLIHarness(t, seededStore(t), "")
	dir := t.TempDir()

	t.Run("artist markdown", func(t *testing.T) {
		path := filepath.Join(dir, "a.md")
		out := h.mustRun(t, "export", "artist", "--format", "markdown", "--output", path, "A")

		if out != "✓ Exported 3 track(s) to "+path+"\n" {
			t.Errorf("unexpected output: %q", out)
		}
		content := tu.MustReadFile(t, path)
		for _, want := range []string{"# A\n", "## X\n", "## Y\n", "1. A - Intro [0:00]"} {
			if !strings.Contains(content, want) {
				t.Errorf("expected %q in export:\n%s", want, content)
			}
		}
	})

	t.Run("playlist csv keeps order", func(t *testing.T) {
		path := filepath.Join(dir, "nested", "mix.csv")
		h.mustRun(t, "export", "playlist", "-f", "csv", "-o", path, "Mix")

		tu.AssertFileExists(t, path)
		lines := strings.Split(strings.TrimSpace(tu.MustReadFile(t, path)), "\n")
		if len(lines) != 4 {
			t.Fatalf("expected header and three rows, got %d", len(lines))
		}
		if !strings.HasPrefix(lines[1], "1,") || !strings.HasPrefix(lines[2], "4,") || !strings.HasPrefix(lines[3], "5,") {
			t.Errorf("rows out of order: %v", lines[1:])
		}
	})

	t.Run("errors", func(t *testing.T) {
		if err := h.run("export", "artist", "--format", "xml", "A"); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument for format, got %v", err)
		}
		if err := h.run("export", "artist", "nobody"); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument for unknown artist, got %v", err)
		}
		if err := h.run("export", "playlist", "nope"); !errors.Is(err, shared.ErrPlaylistNotFound) {
			t.Errorf("expected ErrPlaylistNotFound, got %v", err)
		}
	})
}

func TestSQLiteRoundTrip(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	music := t.TempDir()
	paths := tu.WriteFiles(t, music, "one.mp3", "two.mp3")

	h := newCLIHarness(t, nil, "")
	h.reader.Tracks = map[string]models.Track{
		paths[0]: {Title: "One", Artist: "A", Album: "X"},
		paths[1]: {Title: "Two", Artist: "B", Album: "Y"},
	}

	out := h.mustRun(t, "setup")
	if !strings.Contains(out, "✓ Database ready at ./crate.db") {
		t.Errorf("unexpected setup output: %q", out)
	}
	tu.AssertFileExists(t, filepath.Join(dir, "config.toml"))
	tu.AssertFileExists(t, filepath.Join(dir, "crate.db"))

	h.mustRun(t, "import", music)
	h.mustRun(t, "playlist", "create", "Both")
	h.mustRun(t, "playlist", "add", "Both", "1", "2")
	h.mustRun(t, "delete", "--yes", "1")

	out = h.mustRun(t, "stats", "--json")
	var stats tasks.Stats
	if err := json.Unmarshal([]byte(out), &stats); err != nil {
		t.Fatalf("invalid JSON %q: %v", out, err)
	}
	if stats.Tracks != 1 || stats.Artists != 1 || stats.Playlists != 1 {
		t.Errorf("stats = %+v", stats)
	}

	out = h.mustRun(t, "playlist", "show", "Both")
	if !strings.Contains(out, "Both (1 tracks)") || !strings.Contains(out, "[2] B - Two") {
		t.Errorf("unexpected playlist: %q", out)
	}
}

func TestSetupRollback(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	h := newCLIHarness(t, nil, "")

	if out := h.mustRun(t, "setup"); !strings.Contains(out, "(schema version 0)") {
		t.Fatalf("unexpected setup output: %q", out)
	}

	out := h.mustRun(t, "setup", "--rollback")
	if !strings.Contains(out, "✓ Rolled back database at ./crate.db (schema version -1)") {
		t.Errorf("unexpected rollback output: %q", out)
	}

	if err := h.run("setup", "--rollback"); err == nil || !strings.Contains(err.Error(), "no migrations to rollback") {
		t.Errorf("second rollback error = %v, want no migrations to rollback", err)
	}

	if out := h.mustRun(t, "setup"); !strings.Contains(out, "(schema version 0)") {
		t.Errorf("migrating up again: %q", out)
	}
}
