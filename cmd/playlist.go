package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/crate/internal/formatter"
	"github.com/desertthunder/crate/internal/models"
	"github.com/desertthunder/crate/internal/shared"
)

func requireName(cmd *cli.Command, what string) (string, error) {
	name := strings.TrimSpace(cmd.StringArg("name"))
	if name == "" {
		return "", fmt.Errorf("%w: %s name", shared.ErrMissingArgument, what)
	}
	return name, nil
}

// printQueue lists the current track and what follows it.
func (r *Runner) printQueue(s *session) {
	cur, ok := s.queue.CurrentTrack()
	if !ok {
		r.writePlain("Nothing to play\n")
		return
	}
	r.writePlain("▶ %s - %s [%s]\n", cur.Artist, cur.Title, shared.FormatDuration(cur.Duration))
	for i, t := range s.queue.UpNext() {
		r.writePlain("%3d. %s - %s\n", i+1, t.Artist, t.Title)
	}
}

// ShuffleArtist plays every track involving an artist in random order.
func (r *Runner) ShuffleArtist(ctx context.Context, cmd *cli.Command) error {
	name, err := requireName(cmd, "artist")
	if err != nil {
		return err
	}

	s, err := r.open(ctx)
	if err != nil {
		return err
	}
	defer s.close()

	if !s.coord.View().Artists.Contains(name) {
		r.writePlain("No tracks for '%s'\n", name)
		return nil
	}
	s.coord.PlayRandomArtist(name)
	s.coord.Wait()
	r.printQueue(s)
	return nil
}

// ShufflePlaylist plays a playlist, or every playlist under a folder, in random order.
func (r *Runner) ShufflePlaylist(ctx context.Context, cmd *cli.Command) error {
	name, err := requireName(cmd, "playlist")
	if err != nil {
		return err
	}

	s, err := r.open(ctx)
	if err != nil {
		return err
	}
	defer s.close()

	if _, ok := s.coord.View().Playlists.Find(name); !ok {
		return fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, name)
	}
	s.coord.PlayRandomPlaylist(name)
	s.coord.Wait()
	r.printQueue(s)
	return nil
}

// PlaylistCreate adds a playlist or folder, at the root or under --parent.
func (r *Runner) PlaylistCreate(ctx context.Context, cmd *cli.Command) error {
	name, err := requireName(cmd, "playlist")
	if err != nil {
		return err
	}

	s, err := r.open(ctx)
	if err != nil {
		return err
	}
	defer s.close()

	folder := cmd.Bool("folder")
	if err := s.coord.CreatePlaylist(name, folder, cmd.String("parent")); err != nil {
		return err
	}
	if err := s.save(ctx); err != nil {
		return err
	}

	kind := "playlist"
	if folder {
		kind = "folder"
	}
	r.writePlain("✓ Created %s '%s'\n", kind, name)
	return nil
}

// PlaylistAdd appends track ids to a playlist: crate playlist add <name> <ids...>
func (r *Runner) PlaylistAdd(ctx context.Context, cmd *cli.Command) error {
	args := cmd.Args().Slice()
	if len(args) < 2 {
		return fmt.Errorf("%w: playlist name and at least one track id", shared.ErrMissingArgument)
	}
	name := args[0]
	ids, err := parseIDs(args[1:])
	if err != nil {
		return err
	}

	s, err := r.open(ctx)
	if err != nil {
		return err
	}
	defer s.close()

	if err := s.coord.AddToPlaylist(name, ids); err != nil {
		return err
	}
	if err := s.save(ctx); err != nil {
		return err
	}
	r.writePlain("✓ Added %d track(s) to '%s'\n", len(ids), name)
	return nil
}

// PlaylistShow lists a playlist's tracks in order. Folders show their children's tracks.
func (r *Runner) PlaylistShow(ctx context.Context, cmd *cli.Command) error {
	name, err := requireName(cmd, "playlist")
	if err != nil {
		return err
	}

	s, err := r.open(ctx)
	if err != nil {
		return err
	}
	defer s.close()

	view := s.coord.View()
	if _, ok := view.Playlists.Find(name); !ok {
		return fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, name)
	}
	tracks := view.Tracks.Lookup(view.Playlists.TracksOf(name))

	if cmd.Bool("json") {
		return r.writeJSON(map[string]any{"name": name, "tracks": tracks}, cmd.Bool("pretty"))
	}

	r.writePlainHeader(fmt.Sprintf("%s (%d tracks)", name, len(tracks)))
	for i, t := range tracks {
		r.writePlain("%3d. [%d] %s - %s\n", i+1, t.ID, t.Artist, t.Title)
	}
	return nil
}

// PlaylistList prints the playlist tree.
func (r *Runner) PlaylistList(ctx context.Context, cmd *cli.Command) error {
	s, err := r.open(ctx)
	if err != nil {
		return err
	}
	defer s.close()

	roots := s.coord.View().Playlists.Roots()
	if cmd.Bool("json") {
		return r.writeJSON(roots, cmd.Bool("pretty"))
	}

	if len(roots) == 0 {
		r.writePlain("No playlists\n")
		return nil
	}
	for _, root := range roots {
		r.printPlaylist(root, 0)
	}
	return nil
}

func (r *Runner) printPlaylist(p *models.Playlist, depth int) {
	indent := strings.Repeat("  ", depth)
	if p.Folder {
		r.writePlain("%s%s/\n", indent, p.Name)
		for _, child := range p.Children {
			r.printPlaylist(child, depth+1)
		}
		return
	}
	r.writePlain("%s%s (%d tracks)\n", indent, p.Name, len(p.Tracks))
}

// PlaylistDelete removes a playlist, or a folder with everything under it.
func (r *Runner) PlaylistDelete(ctx context.Context, cmd *cli.Command) error {
	name, err := requireName(cmd, "playlist")
	if err != nil {
		return err
	}

	s, err := r.open(ctx)
	if err != nil {
		return err
	}
	defer s.close()

	if err := s.coord.DeletePlaylist(name); err != nil {
		return err
	}
	if err := s.save(ctx); err != nil {
		return err
	}
	r.writePlain("✓ Deleted '%s'\n", name)
	return nil
}

func (r *Runner) writeExport(cmd *cli.Command, export *formatter.Export) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}
	path, err := formatter.WriteExport(export, format, cmd.String("output"))
	if err != nil {
		return err
	}
	r.logger.Info("export written", "kind", export.Kind, "name", export.Name, "format", format, "path", path)
	r.writePlain("✓ Exported %d track(s) to %s\n", export.Len(), path)
	return nil
}

// ExportArtist writes an artist's albums to a file.
func (r *Runner) ExportArtist(ctx context.Context, cmd *cli.Command) error {
	name, err := requireName(cmd, "artist")
	if err != nil {
		return err
	}

	s, err := r.open(ctx)
	if err != nil {
		return err
	}
	defer s.close()

	albums := s.coord.ArtistTracksByAlbum(name)
	if albums.Len() == 0 {
		return fmt.Errorf("%w: no tracks for artist %q", shared.ErrInvalidArgument, name)
	}
	return r.writeExport(cmd, formatter.FromArtist(name, albums))
}

// ExportPlaylist writes a playlist's tracks, in order, to a file.
func (r *Runner) ExportPlaylist(ctx context.Context, cmd *cli.Command) error {
	name, err := requireName(cmd, "playlist")
	if err != nil {
		return err
	}

	s, err := r.open(ctx)
	if err != nil {
		return err
	}
	defer s.close()

	view := s.coord.View()
	if _, ok := view.Playlists.Find(name); !ok {
		return fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, name)
	}
	return r.writeExport(cmd, formatter.FromPlaylist(name, view.Tracks.Lookup(view.Playlists.TracksOf(name))))
}
