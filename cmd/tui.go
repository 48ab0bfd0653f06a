package main

import (
	"context"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/playrec/internal/shared"
	"github.com/desertthunder/playrec/internal/ui"
	"github.com/desertthunder/playrec/internal/viewstate"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive terminal recommender.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger(cmd.String("log-file"))
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	fileLogger.SetLevel(r.logger.GetLevel())
	r.SetLogger(fileLogger)
	r.output = io.Discard

	auth := r.authenticator()
	controller := viewstate.New(viewstate.Options{
		Fetcher:    r.recommender,
		Session:    auth,
		Logger:     fileLogger,
		UseFetched: r.config.Recommender.UseFetched,
	})

	model := ui.NewModel(ctx, controller, auth, fileLogger)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
