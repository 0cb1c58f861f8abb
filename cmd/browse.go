package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/songshift/internal/formatter"
	"github.com/desertthunder/songshift/internal/shared"
	"github.com/desertthunder/songshift/internal/ui"
	"github.com/urfave/cli/v3"
)

// Browse opens the terminal browser over a library export and its mapping.
func (r *Runner) Browse(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	if path == "" {
		return fmt.Errorf("%w: library path", shared.ErrMissingArgument)
	}

	lib, _, err := formatter.LoadLibrary(path)
	if err != nil {
		return err
	}

	cfg := r.config.Import
	store, err := r.mappingStore(stringOr(cmd, "mapping-store", cfg.MappingStore), stringOr(cmd, "mapping", cfg.MappingPath))
	if err != nil {
		return err
	}
	mapping, err := store.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load mapping: %w", err)
	}

	model := ui.NewModel(lib, mapping)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx), tea.WithInput(r.input), tea.WithOutput(r.output))

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
