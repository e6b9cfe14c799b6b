package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/crate/internal/shared"
	"github.com/desertthunder/crate/internal/ui"
)

// TUI launches the interactive library browser.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger(r.config.Log.File)
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	shared.SetLogLevel(fileLogger, shared.ParseLogLevel(r.config.Log.Level))
	r.SetLogger(fileLogger)

	notifier := ui.NewNotifier(shared.WithLogger(fileLogger, "component", "notifier"))
	saver := &snapshotSaver{ctx: context.WithoutCancel(ctx), logger: shared.WithLogger(fileLogger, "component", "saver")}

	s, err := r.open(ctx, notifier, saver)
	if err != nil {
		return err
	}
	defer s.close()
	saver.attach(s)

	model := ui.NewModel(ctx, s.coord, s.queue)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	notifier.Attach(p)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
