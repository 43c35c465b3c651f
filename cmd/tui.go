package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/iamankun/studio-sub000/internal/shared"
	"github.com/iamankun/studio-sub000/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive review terminal.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	env, err := r.openEnv()
	if err != nil {
		return err
	}
	defer env.Close()

	user, err := r.actor(ctx, env, cmd)
	if err != nil {
		return err
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	logPath := filepath.Join("tmp", "sub000-tui.log")
	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer logFile.Close()
	r.SetLogger(shared.NewLogger(logFile))

	model := ui.NewModel(ctx, env.service, user)
	p := tea.NewProgram(model)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
