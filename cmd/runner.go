package main

import (
	"bufio"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/crate/internal/library"
	"github.com/desertthunder/crate/internal/repositories"
	"github.com/desertthunder/crate/internal/services"
	"github.com/desertthunder/crate/internal/shared"
	"github.com/desertthunder/crate/internal/tasks"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	store      services.Store
	reader     services.TagReader
	logger     *log.Logger
	output     io.Writer
	input      io.Reader
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Store      services.Store     // Defaults to the SQLite store at Config.Database.Path
	Reader     services.TagReader // Defaults to a [services.TagScanner] over the configured extensions
	Logger     *log.Logger
	Output     io.Writer
	Input      io.Reader // Answers confirmation prompts
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Input == nil {
		opts.Input = os.Stdin
	}
	if opts.Reader == nil {
		opts.Reader = services.NewTagScanner(opts.Config.Library.Extensions)
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		store:      opts.Store,
		reader:     opts.Reader,
		logger:     opts.Logger,
		output:     opts.Output,
		input:      opts.Input,
	}
}

// SetLogger replaces the logger used by subsequent commands.
func (r *Runner) SetLogger(l *log.Logger) { r.logger = l }

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, importCommand, tracksCommand, artistsCommand, artistCommand, deleteCommand, clearCommand,
		shuffleCommand, playlistCommand, exportCommand, statsCommand, serveCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// session is one loaded library: the coordinator restored from the store, and the foreground loop
// presenter callbacks run on.
type session struct {
	coord  *tasks.Coordinator
	queue  *services.Queue
	loop   *tasks.Loop
	store  services.Store
	db     *sql.DB
	logger *log.Logger
}

// openStore returns the configured store, opening the SQLite database when none was injected.
func (r *Runner) openStore() (services.Store, *sql.DB, error) {
	if r.store != nil {
		return r.store, nil, nil
	}
	db, err := shared.OpenLibraryDatabase(r.config.Database)
	if err != nil {
		return nil, nil, err
	}
	return repositories.NewLibraryStore(db, shared.WithLogger(r.logger, "component", "store")), db, nil
}

// open loads the library into a new coordinator. Presenters default to a [services.LogPresenter] on the output.
func (r *Runner) open(ctx context.Context, presenters ...services.Presenter) (*session, error) {
	store, db, err := r.openStore()
	if err != nil {
		return nil, err
	}

	s := &session{
		queue:  services.NewQueue(shared.WithLogger(r.logger, "component", "queue")),
		loop:   tasks.NewLoop(),
		store:  store,
		db:     db,
		logger: r.logger,
	}
	if len(presenters) == 0 {
		presenters = []services.Presenter{services.NewLogPresenter(r.output, r.logger)}
	}

	s.coord = tasks.NewCoordinator(tasks.CoordinatorOpts{
		Waveforms:  library.NewWaveformIndex(r.config.Library.WaveformCache),
		Playback:   s.queue,
		Presenter:  services.Presenters(presenters),
		Foreground: s.loop,
		Logger:     shared.WithLogger(r.logger, "component", "coordinator"),
	})

	snap, err := store.Load(ctx)
	if err != nil {
		s.close()
		return nil, err
	}
	if err := s.coord.Restore(ctx, snap); err != nil {
		s.close()
		return nil, err
	}
	return s, nil
}

// save persists the current view
func (s *session) save(ctx context.Context) error {
	return s.store.Save(ctx, s.coord.Snapshot())
}

// close waits for workers, drains the foreground and closes the database.
func (s *session) close() {
	if s.coord != nil {
		s.coord.Wait()
	}
	s.loop.Close()
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Warn("failed to close database", "error", err)
		}
	}
}

// confirm asks a yes/no question on the input. Anything other than y or yes is a no.
func (r *Runner) confirm(format string, args ...any) bool {
	r.writePlain(format+" [y/N] ", args...)
	line, err := bufio.NewReader(r.input).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
