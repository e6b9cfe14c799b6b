// package formatter exports artist and playlist views to JSON, CSV, Markdown and plain text
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/desertthunder/crate/internal/models"
	"github.com/desertthunder/crate/internal/shared"
)

// Format names an export encoding
type Format string

const (
	FormatJSON     Format = "json"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
	FormatText     Format = "txt"
)

// ParseFormat accepts a format name or a common alias ("md", "text").
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "json":
		return FormatJSON, nil
	case "csv":
		return FormatCSV, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "txt", "text":
		return FormatText, nil
	}
	return "", fmt.Errorf("%w: unknown export format %q", shared.ErrInvalidArgument, name)
}

// Extension returns the file extension used for f, with the leading dot
func (f Format) Extension() string {
	if f == FormatMarkdown {
		return ".md"
	}
	return "." + string(f)
}

// Section is a titled run of tracks: one album of an artist, or a whole playlist
type Section struct {
	Title   string              `json:"title"`
	Entries []models.AlbumEntry `json:"entries"`
}

// Export is a named, ordered listing ready to be encoded
type Export struct {
	Kind     string    `json:"kind"`
	Name     string    `json:"name"`
	Sections []Section `json:"sections"`
}

// FromArtist builds an export with one section per album, albums in name order.
func FromArtist(artist string, albums models.ArtistAlbums) *Export {
	export := &Export{Kind: "artist", Name: artist}
	for _, album := range albums.Albums() {
		export.Sections = append(export.Sections, Section{Title: album, Entries: albums[album]})
	}
	return export
}

// FromPlaylist builds a single-section export keeping the playlist order.
func FromPlaylist(name string, tracks []models.Track) *Export {
	entries := make([]models.AlbumEntry, 0, len(tracks))
	for _, t := range tracks {
		entries = append(entries, models.AlbumEntry{ID: t.ID, Track: t})
	}
	return &Export{Kind: "playlist", Name: name, Sections: []Section{{Title: name, Entries: entries}}}
}

// Len returns the number of entries across sections
func (e *Export) Len() int {
	n := 0
	for _, s := range e.Sections {
		n += len(s.Entries)
	}
	return n
}

// Render encodes export in format
func Render(export *Export, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		return ExportToJSON(export)
	case FormatCSV:
		return ExportToCSV(export)
	case FormatMarkdown:
		return ExportToMarkdown(export)
	case FormatText:
		return ExportToText(export)
	}
	return nil, fmt.Errorf("%w: unknown export format %q", shared.ErrInvalidArgument, format)
}

// ExportToJSON converts an Export to indented JSON
func ExportToJSON(export *Export) ([]byte, error) {
	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode JSON: %w", err)
	}
	return append(data, '\n'), nil
}

// ExportToCSV converts an Export to CSV format with columns: ID, Section, Title, Artist, Album, Disc, Track, Duration, Path
func ExportToCSV(export *Export) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Section", "Title", "Artist", "Album", "Disc", "Track", "Duration", "Path"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, section := range export.Sections {
		for _, e := range section.Entries {
			record := []string{
				e.ID.String(),
				section.Title,
				e.Track.Title,
				e.Track.Artist,
				e.Track.Album,
				strconv.Itoa(e.Track.DiscNumber),
				strconv.Itoa(e.Track.TrackNumber),
				shared.FormatDuration(e.Track.Duration),
				e.Track.Path,
			}
			if err := writer.Write(record); err != nil {
				return nil, fmt.Errorf("failed to write CSV record: %w", err)
			}
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts an Export to Markdown. Artist exports get one heading per album.
func ExportToMarkdown(export *Export) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", export.Name)
	fmt.Fprintf(&buf, "**Tracks**: %d\n\n", export.Len())

	for _, section := range export.Sections {
		if export.Kind == "artist" {
			fmt.Fprintf(&buf, "## %s\n\n", albumTitle(section.Title))
		} else {
			buf.WriteString("## Tracks\n\n")
		}
		for i, e := range section.Entries {
			albumPart := ""
			if export.Kind != "artist" && e.Track.Album != "" {
				albumPart = fmt.Sprintf(" (%s)", e.Track.Album)
			}
			fmt.Fprintf(&buf, "%d. %s - %s%s [%s]\n", i+1, e.Track.Artist, e.Track.Title, albumPart, shared.FormatDuration(e.Track.Duration))
		}
		buf.WriteString("\n")
	}

	return buf.Bytes(), nil
}

// ExportToText converts an Export to plain text format
func ExportToText(export *Export) ([]byte, error) {
	var buf bytes.Buffer

	label := "Playlist"
	if export.Kind == "artist" {
		label = "Artist"
	}
	fmt.Fprintf(&buf, "%s: %s\n", label, export.Name)
	fmt.Fprintf(&buf, "Tracks: %d\n", export.Len())

	n := 0
	for _, section := range export.Sections {
		buf.WriteString("\n")
		if export.Kind == "artist" {
			fmt.Fprintf(&buf, "%s\n", albumTitle(section.Title))
		}
		for _, e := range section.Entries {
			n++
			fmt.Fprintf(&buf, "%d. %s - %s\n", n, e.Track.Artist, e.Track.Title)
		}
	}

	return buf.Bytes(), nil
}

func albumTitle(name string) string {
	if name == "" {
		return "(no album)"
	}
	return name
}

// WriteExport renders export and writes it to path.
//
// An empty path defaults to {name}{ext} in the working directory. Returns the written path.
func WriteExport(export *Export, format Format, path string) (string, error) {
	if path == "" {
		path = safeFilename(export.Name) + format.Extension()
	}

	data, err := Render(export, format)
	if err != nil {
		return "", err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("failed to create directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write export file: %w", err)
	}
	return path, nil
}

func safeFilename(name string) string {
	name = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, strings.TrimSpace(name))
	if name == "" {
		return "export"
	}
	return name
}
