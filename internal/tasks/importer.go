package tasks

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/desertthunder/crate/internal/models"
	"github.com/desertthunder/crate/internal/services"
	"github.com/desertthunder/crate/internal/shared"
)

// ImporterOpts contains configuration for bulk imports.
type ImporterOpts struct {
	Reader     services.TagReader
	Extensions []string    // Accepted extensions, e.g. ".mp3"; empty accepts every file
	Workers    int         // Concurrent tag readers (default: 4, max: 16)
	Rate       float64     // Files per second; zero or less disables throttling
	Logger     *log.Logger // Defaults to a discarding logger
}

// Importer reads audio files and feeds them into the library through a [Coordinator].
//
// Tag reading runs outside the mutation slot; only the final insert is serialized.
type Importer struct {
	coordinator *Coordinator
	reader      services.TagReader
	extensions  []string
	workers     int
	limiter     *rate.Limiter
	logger      *log.Logger
}

func NewImporter(c *Coordinator, opts ImporterOpts) *Importer {
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	if opts.Workers > 16 {
		opts.Workers = 16
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}

	im := &Importer{
		coordinator: c,
		reader:      opts.Reader,
		workers:     opts.Workers,
		logger:      opts.Logger,
	}
	for _, ext := range opts.Extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext != "" && !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		if ext != "" {
			im.extensions = append(im.extensions, ext)
		}
	}
	if opts.Rate > 0 {
		im.limiter = rate.NewLimiter(rate.Limit(opts.Rate), 1)
	}
	return im
}

func (im *Importer) accepts(path string) bool {
	return len(im.extensions) == 0 || slices.Contains(im.extensions, strings.ToLower(filepath.Ext(path)))
}

// ImportDir walks root and imports every accepted file not already in the library.
func (im *Importer) ImportDir(ctx context.Context, progress chan<- ProgressUpdate, root string) (*ImportResult, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if !d.IsDir() && im.accepts(path) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", root, err)
	}
	sendProgress(progress, scanFilesUpdate(len(paths), root))
	return im.ImportFiles(ctx, progress, paths)
}

// ImportFiles reads tags for paths concurrently and adds the readable ones in path order.
//
// Unreadable files are collected in [ImportResult.Failures]; they never abort the import.
// Cancelling ctx stops reading and adds nothing.
func (im *Importer) ImportFiles(ctx context.Context, progress chan<- ProgressUpdate, paths []string) (*ImportResult, error) {
	if im.reader == nil {
		return nil, fmt.Errorf("%w: no tag reader configured", shared.ErrMissingConfig)
	}

	res := &ImportResult{OperationID: shared.GenerateID()}
	logger := shared.WithLogger(im.logger, "op", res.OperationID)

	known := im.coordinator.View().KnownPaths()
	var pending []string
	for _, p := range paths {
		if !im.accepts(p) {
			continue
		}
		res.Scanned++
		if _, ok := known[p]; ok {
			res.Skipped++
			continue
		}
		known[p] = struct{}{}
		pending = append(pending, p)
	}
	slices.Sort(pending)

	tracks := make([]*models.Track, len(pending))
	var (
		mu   sync.Mutex
		done atomic.Int64
	)
	total := len(pending)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(im.workers)
	for i, path := range pending {
		g.Go(func() error {
			if im.limiter != nil {
				if err := im.limiter.Wait(gctx); err != nil {
					return err
				}
			} else if err := gctx.Err(); err != nil {
				return err
			}

			t, err := im.reader.ReadTrack(path)
			if err == nil {
				err = t.Validate()
			}
			step := int(done.Add(1))
			if err != nil {
				mu.Lock()
				res.Failures = append(res.Failures, ImportFailure{Path: path, Err: err})
				mu.Unlock()
				logger.Warn("skipping file", "path", path, "err", err)
				sendProgress(progress, readTagsFailedUpdate(step, total, path, err))
				return nil
			}
			if t.Path == "" {
				t.Path = path
			}
			tracks[i] = &t
			sendProgress(progress, readTagsUpdate(step, total, path))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return res, fmt.Errorf("import cancelled: %w", err)
	}

	batch := make([]models.Track, 0, len(tracks))
	for _, t := range tracks {
		if t != nil {
			batch = append(batch, *t)
		}
	}
	slices.SortFunc(res.Failures, func(a, b ImportFailure) int { return strings.Compare(a.Path, b.Path) })

	if len(batch) == 0 {
		logger.Info("nothing to import", "scanned", res.Scanned, "skipped", res.Skipped, "failed", len(res.Failures))
		return res, nil
	}

	sendProgress(progress, applyImportUpdate(len(batch)))
	added, err := im.coordinator.ImportTracks(ctx, batch)
	if err != nil {
		return res, err
	}
	res.Added = added
	// Another import may have claimed some paths after the known set was read.
	res.Skipped += len(batch) - len(added)
	logger.Info("import finished", "added", len(added), "skipped", res.Skipped, "failed", len(res.Failures))
	return res, nil
}
