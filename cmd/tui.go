package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/coursecat/internal/shared"
	"github.com/desertthunder/coursecat/internal/tasks"
	"github.com/desertthunder/coursecat/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive terminal UI for the course catalog.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger(r.config.Log.File)
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	shared.SetLogLevel(fileLogger, shared.ParseLevel(r.config.Log.Level))
	r.SetLogger(fileLogger)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	events := make(chan tasks.Event, 32)
	ctrl := tasks.NewController(r.controllerOpts(events))
	defer ctrl.Close()

	model := ui.NewModel(ctx, ctrl, events)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
