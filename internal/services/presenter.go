package services

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/crate/internal/models"
)

// LogPresenter prints notifications for the CLI and logs them at info level.
type LogPresenter struct {
	out    io.Writer
	logger *log.Logger
}

// NewLogPresenter writes to out, defaulting to [os.Stdout].
func NewLogPresenter(out io.Writer, logger *log.Logger) *LogPresenter {
	if out == nil {
		out = os.Stdout
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &LogPresenter{out: out, logger: logger}
}

func (p *LogPresenter) OnArtistTracksReady(artist string, albums models.ArtistAlbums, selected *models.Track) {
	p.logger.Info("artist tracks ready", "artist", artist, "albums", len(albums), "tracks", albums.Len())
	fmt.Fprintf(p.out, "%s\n", artist)
	for _, album := range albums.Albums() {
		name := album
		if name == "" {
			name = "(no album)"
		}
		fmt.Fprintf(p.out, "  %s\n", name)
		for _, e := range albums[album] {
			marker := " "
			if selected != nil && selected.ID == e.ID {
				marker = "*"
			}
			fmt.Fprintf(p.out, "  %s %4d  %s\n", marker, e.ID, e.Track.Title)
		}
	}
}

func (p *LogPresenter) OnDeletionComplete(count int) {
	p.logger.Info("deletion complete", "tracks", count)
	fmt.Fprintf(p.out, "Deleted %d track(s)\n", count)
}

func (p *LogPresenter) OnLibraryCleared() {
	p.logger.Info("library cleared")
	fmt.Fprintln(p.out, "Library cleared")
}

func (p *LogPresenter) OnImportComplete(count int) {
	p.logger.Info("import complete", "tracks", count)
	fmt.Fprintf(p.out, "Imported %d track(s)\n", count)
}
