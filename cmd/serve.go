package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/crate/internal/models"
	"github.com/desertthunder/crate/internal/server"
	"github.com/desertthunder/crate/internal/services"
	"github.com/desertthunder/crate/internal/shared"
)

var _ services.Presenter = (*snapshotSaver)(nil)

// snapshotSaver persists the library after every mutation notification.
// Long-running sessions (serve, tui) use it since they have no single point to save at exit.
type snapshotSaver struct {
	mu      sync.Mutex
	ctx     context.Context
	session *session
	logger  *log.Logger
}

func (p *snapshotSaver) attach(s *session) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.session = s
}

func (p *snapshotSaver) save(reason string) {
	p.mu.Lock()
	s := p.session
	p.mu.Unlock()
	if s == nil {
		return
	}
	if err := s.save(p.ctx); err != nil {
		p.logger.Error("failed to save library", "after", reason, "error", err)
		return
	}
	p.logger.Debug("library saved", "after", reason)
}

func (p *snapshotSaver) OnArtistTracksReady(string, models.ArtistAlbums, *models.Track) {}

func (p *snapshotSaver) OnDeletionComplete(int) {
	p.save("delete")
}

func (p *snapshotSaver) OnLibraryCleared() {
	p.save("clear")
}

func (p *snapshotSaver) OnImportComplete(int) {
	p.save("import")
}

// Serve runs the HTTP API and websocket hub until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := server.NewHub(shared.WithLogger(r.logger, "component", "hub"))
	saver := &snapshotSaver{ctx: context.WithoutCancel(ctx), logger: shared.WithLogger(r.logger, "component", "saver")}

	s, err := r.open(ctx, services.NewLogPresenter(r.output, r.logger), hub, saver)
	if err != nil {
		return err
	}
	defer s.close()
	saver.attach(s)

	done := make(chan struct{})
	go hub.Run(done)
	defer close(done)

	addr := cmd.String("addr")
	if addr == "" {
		addr = r.config.Server.Addr()
	}

	srv := server.New(s.coord, server.Options{
		Hub:     hub,
		Logger:  shared.WithLogger(r.logger, "component", "server"),
		Version: version,
	})
	return srv.ListenAndServe(ctx, addr)
}
