package services

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/dhowden/tag"

	"github.com/desertthunder/crate/internal/models"
	"github.com/desertthunder/crate/internal/shared"
)

// TagScanner reads ID3, MP4, FLAC and Ogg tags with [tag.ReadFrom].
type TagScanner struct {
	Extensions []string // Extensions accepted by [TagScanner.Supports], lower case with leading dot
	now        func() time.Time
}

// NewTagScanner creates a scanner accepting the given extensions.
func NewTagScanner(extensions []string) *TagScanner {
	exts := make([]string, 0, len(extensions))
	for _, ext := range extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		exts = append(exts, ext)
	}
	return &TagScanner{Extensions: exts, now: time.Now}
}

// Supports reports whether path has one of the configured extensions.
func (s *TagScanner) Supports(path string) bool {
	return slices.Contains(s.Extensions, strings.ToLower(filepath.Ext(path)))
}

// ReadTrack opens path and maps its tags onto a [models.Track].
//
// Files without readable tags still produce a track titled after the file name;
// only I/O failures and unsupported extensions are errors.
func (s *TagScanner) ReadTrack(path string) (models.Track, error) {
	if !s.Supports(path) {
		return models.Track{}, fmt.Errorf("%w: %s", shared.ErrUnsupported, path)
	}

	f, err := os.Open(path)
	if err != nil {
		return models.Track{}, fmt.Errorf("%w: %w", shared.ErrTagRead, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return models.Track{}, fmt.Errorf("%w: %w", shared.ErrTagRead, err)
	}

	track := models.Track{Path: path, DateAdded: s.now(), DateModified: info.ModTime()}

	m, err := tag.ReadFrom(f)
	switch {
	case errors.Is(err, tag.ErrNoTagsFound):
	case err != nil:
		return models.Track{}, fmt.Errorf("%w: %s: %w", shared.ErrTagRead, path, err)
	default:
		applyMetadata(&track, m)
	}

	if track.Title == "" {
		track.Title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return track, nil
}

func applyMetadata(t *models.Track, m tag.Metadata) {
	t.Title = strings.TrimSpace(m.Title())
	t.Artist = strings.TrimSpace(m.Artist())
	t.AlbumArtist = strings.TrimSpace(m.AlbumArtist())
	t.Album = strings.TrimSpace(m.Album())
	t.Genre = strings.TrimSpace(m.Genre())
	t.Comments = strings.TrimSpace(m.Comment())
	t.Year = m.Year()
	t.TrackNumber, _ = m.Track()
	t.DiscNumber, _ = m.Disc()

	raw := m.Raw()
	for _, key := range []string{"TCMP", "cpil", "COMPILATION"} {
		if compilationFlag(raw[key]) {
			t.Compilation = true
			break
		}
	}
	for _, key := range []string{"TPUB", "LABEL", "ORGANIZATION"} {
		if s, ok := raw[key].(string); ok && s != "" {
			t.Label = strings.TrimSpace(s)
			break
		}
	}
}

func compilationFlag(v any) bool {
	switch x := v.(type) {
	case bool:
		return x
	case string:
		return x == "1" || strings.EqualFold(x, "true")
	case int:
		return x == 1
	default:
		return false
	}
}
