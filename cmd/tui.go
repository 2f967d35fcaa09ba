package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/ankix/internal/models"
	"github.com/desertthunder/ankix/internal/shared"
	"github.com/desertthunder/ankix/internal/tasks"
	"github.com/desertthunder/ankix/internal/ui"
)

// TUI launches the interactive terminal UI on --route.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	route, err := models.ParseRoute(cmd.String("route"))
	if err != nil {
		return fmt.Errorf("%w: %w", shared.ErrInvalidArgument, err)
	}
	return r.runTUI(ctx, route)
}

// Review opens the TUI on the review screen for a deck.
func (r *Runner) Review(ctx context.Context, cmd *cli.Command) error {
	deck := cmd.StringArg("deck")
	if deck == "" {
		return fmt.Errorf("%w: deck name is required", shared.ErrMissingArgument)
	}
	return r.runTUI(ctx, models.Review(deck))
}

func (r *Runner) runTUI(ctx context.Context, start models.Route) error {
	if r.config.Log.File != "" {
		fileLogger, err := shared.NewFileLogger(r.config.Log.File)
		if err != nil {
			return fmt.Errorf("failed to create file logger: %w", err)
		}
		shared.SetLogLevel(fileLogger, r.logger.GetLevel())
		r.SetLogger(fileLogger)
	}

	cat, closeFn, err := r.newCatalog()
	if err != nil {
		return err
	}
	defer closeFn()

	opts := ui.Options{
		Service: r.client,
		Catalog: cat,
		Poller:  r.pollerOpts(),
		Upload: tasks.UploadOpts{
			IncludeTopicCards: r.config.Processing.IncludeTopicCards,
			CardsPerTopic:     r.config.Processing.CardsPerTopic,
		},
		ExportDir: r.config.Export.Dir,
		Logger:    shared.WithLogger(r.logger, "component", "tui"),
	}

	if err := ui.Run(ctx, opts, start); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}
