package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/crate/internal/models"
	"github.com/desertthunder/crate/internal/services"
	"github.com/desertthunder/crate/internal/shared"
	"github.com/desertthunder/crate/internal/tasks"
)

type artistSummary struct {
	Name   string `json:"name"`
	Albums int    `json:"albums"`
}

// quiet returns a presenter that logs but prints nothing, for JSON output.
func (r *Runner) quiet() services.Presenter {
	return services.NewLogPresenter(io.Discard, r.logger)
}

func parseIDs(args []string) ([]models.TrackID, error) {
	ids := make([]models.TrackID, 0, len(args))
	for _, arg := range args {
		id, err := models.ParseTrackID(arg)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}

// Import scans a directory (default: library.music_dir) and adds every new audio file.
func (r *Runner) Import(ctx context.Context, cmd *cli.Command) error {
	dir := cmd.StringArg("dir")
	if dir == "" {
		dir = r.config.Library.MusicDir
	}
	dir = expandHome(dir)
	if dir == "" {
		return fmt.Errorf("%w: directory to import", shared.ErrMissingArgument)
	}

	asJSON := cmd.Bool("json")
	var presenters []services.Presenter
	if asJSON {
		presenters = append(presenters, r.quiet())
	}
	s, err := r.open(ctx, presenters...)
	if err != nil {
		return err
	}
	defer s.close()

	workers := cmd.Int("workers")
	if workers <= 0 {
		workers = r.config.Library.ImportWorkers
	}
	im := tasks.NewImporter(s.coord, tasks.ImporterOpts{
		Reader:     r.reader,
		Extensions: r.config.Library.Extensions,
		Workers:    workers,
		Rate:       r.config.Library.ImportRate,
		Logger:     shared.WithLogger(r.logger, "component", "importer"),
	})

	progress := make(chan tasks.ProgressUpdate, 64)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progress {
			r.logger.Debug(update.Message, "phase", update.Phase)
		}
	}()

	r.logger.Info("importing", "dir", dir, "workers", workers)
	res, err := im.ImportDir(ctx, progress, dir)
	close(progress)
	<-done
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}
	s.loop.Flush()

	if len(res.Added) > 0 {
		if err := s.save(ctx); err != nil {
			return err
		}
	}

	if asJSON {
		return r.writeJSON(res, true)
	}

	r.writePlain("Scanned %d file(s): %d added, %d already known, %d failed\n",
		res.Scanned, len(res.Added), res.Skipped, len(res.Failures))
	for _, f := range res.Failures {
		r.writePlain("  ✗ %s: %v\n", f.Path, f.Err)
	}
	return nil
}

// Tracks lists every track in id order.
func (r *Runner) Tracks(ctx context.Context, cmd *cli.Command) error {
	s, err := r.open(ctx)
	if err != nil {
		return err
	}
	defer s.close()

	tracks := s.coord.View().Tracks.Tracks()
	if cmd.Bool("json") {
		return r.writeJSON(tracks, cmd.Bool("pretty"))
	}

	if len(tracks) == 0 {
		r.writePlain("Library is empty\n")
		return nil
	}
	r.writePlainHeader(fmt.Sprintf("Tracks (%d)", len(tracks)))
	for _, t := range tracks {
		album := t.AlbumName()
		if album == "" {
			album = "(no album)"
		}
		r.writePlain("%5d  %s - %s (%s) [%s]\n", t.ID, t.Artist, t.Title, album, shared.FormatDuration(t.Duration))
	}
	return nil
}

// Artists lists artists in name order with their album counts.
func (r *Runner) Artists(ctx context.Context, cmd *cli.Command) error {
	s, err := r.open(ctx)
	if err != nil {
		return err
	}
	defer s.close()

	view := s.coord.View()
	names := view.Artists.Artists()
	artists := make([]artistSummary, len(names))
	for i, name := range names {
		artists[i] = artistSummary{Name: name, Albums: view.Artists.AlbumCount(name)}
	}

	if cmd.Bool("json") {
		return r.writeJSON(artists, cmd.Bool("pretty"))
	}

	if len(artists) == 0 {
		r.writePlain("No artists\n")
		return nil
	}
	r.writePlainHeader(fmt.Sprintf("Artists (%d)", len(artists)))
	for _, a := range artists {
		r.writePlain("%-40s %d album(s)\n", a.Name, a.Albums)
	}
	return nil
}

// Artist shows one artist's tracks grouped by album.
func (r *Runner) Artist(ctx context.Context, cmd *cli.Command) error {
	name := cmd.StringArg("name")
	if name == "" {
		return fmt.Errorf("%w: artist name", shared.ErrMissingArgument)
	}

	s, err := r.open(ctx)
	if err != nil {
		return err
	}
	defer s.close()

	if cmd.Bool("json") {
		albums := s.coord.ArtistTracksByAlbum(name)
		return r.writeJSON(map[string]any{"artist": name, "albums": albums, "tracks": albums.Len()}, cmd.Bool("pretty"))
	}

	if !s.coord.View().Artists.Contains(name) {
		r.writePlain("No tracks for '%s'\n", name)
		return nil
	}

	s.coord.ShowArtist(name)
	s.coord.Wait()
	s.loop.Flush()
	return nil
}

// Delete removes tracks by id and/or every track of --artist after confirmation.
func (r *Runner) Delete(ctx context.Context, cmd *cli.Command) error {
	ids, err := parseIDs(cmd.Args().Slice())
	if err != nil {
		return err
	}

	asJSON := cmd.Bool("json")
	var presenters []services.Presenter
	if asJSON {
		presenters = append(presenters, r.quiet())
	}
	s, err := r.open(ctx, presenters...)
	if err != nil {
		return err
	}
	defer s.close()

	if artist := cmd.String("artist"); artist != "" {
		ids = append(ids, s.coord.ArtistTracksByAlbum(artist).TrackIDs()...)
	}
	if len(ids) == 0 {
		return fmt.Errorf("%w: track ids or --artist", shared.ErrMissingArgument)
	}

	if !cmd.Bool("yes") && !r.confirm("Delete %d track(s) from the library and every playlist?", len(ids)) {
		return fmt.Errorf("%w: deletion cancelled", shared.ErrNotConfirmed)
	}

	res, err := s.coord.DeleteTracks(ctx, ids)
	if err != nil {
		return err
	}
	s.loop.Flush()

	if res.Count() > 0 {
		if err := s.save(ctx); err != nil {
			return err
		}
	}

	if asJSON {
		return r.writeJSON(res, true)
	}
	for _, w := range res.Warnings {
		r.writePlain("  ! %d: %s\n", w.ID, w.Reason)
	}
	return nil
}

// Clear removes everything from the library. Requires --yes or an interactive confirmation.
func (r *Runner) Clear(ctx context.Context, cmd *cli.Command) error {
	s, err := r.open(ctx)
	if err != nil {
		return err
	}
	defer s.close()

	n := s.coord.View().Tracks.Len()
	if !cmd.Bool("yes") && !r.confirm("Remove all %d track(s), waveforms and playlists?", n) {
		return fmt.Errorf("%w: clear cancelled", shared.ErrNotConfirmed)
	}

	if _, err := s.coord.ClearLibrary(ctx); err != nil {
		return err
	}
	s.loop.Flush()
	return s.save(ctx)
}

// Stats prints library counts.
func (r *Runner) Stats(ctx context.Context, cmd *cli.Command) error {
	s, err := r.open(ctx)
	if err != nil {
		return err
	}
	defer s.close()

	stats := s.coord.Stats()
	if cmd.Bool("json") {
		return r.writeJSON(stats, cmd.Bool("pretty"))
	}

	r.writePlainHeader("Library")
	r.writePlain("Tracks:    %d\n", stats.Tracks)
	r.writePlain("Artists:   %d\n", stats.Artists)
	r.writePlain("Albums:    %d\n", stats.Albums)
	r.writePlain("Waveforms: %d\n", stats.Waveforms)
	r.writePlain("Playlists: %d\n", stats.Playlists)
	return nil
}
