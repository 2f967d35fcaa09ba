package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/ankix/internal/formatter"
	"github.com/desertthunder/ankix/internal/shared"
	"github.com/desertthunder/ankix/internal/tasks"
)

// DecksList prints the decks available on the backend.
func (r *Runner) DecksList(ctx context.Context, cmd *cli.Command) error {
	cat, closeFn, err := r.newCatalog()
	if err != nil {
		return err
	}
	defer closeFn()

	decks, err := cat.Load(ctx)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(decks, cmd.Bool("pretty"))
	}

	if len(decks) == 0 {
		return r.writePlain("No decks found.\n")
	}
	return r.writePlain("%s\n", formatter.DecksTable(decks))
}

// DecksDownload exports one deck's package into --dir and records it in the history database.
func (r *Runner) DecksDownload(ctx context.Context, cmd *cli.Command) error {
	deck := cmd.StringArg("deck")
	if deck == "" {
		return fmt.Errorf("%w: deck name is required", shared.ErrMissingArgument)
	}

	cat, closeFn, err := r.newCatalog()
	if err != nil {
		return err
	}
	defer closeFn()

	path, err := cat.Download(ctx, deck, cmd.String("dir"))
	if err != nil {
		if path == "" {
			return err
		}
		r.logger.Warn("package saved but not recorded", "path", path, "error", err)
	}

	return r.writePlain("✓ Saved %s\n", path)
}

// DecksExport exports the named decks, or every deck, through the bulk exporter.
func (r *Runner) DecksExport(ctx context.Context, cmd *cli.Command) error {
	cat, closeFn, err := r.newCatalog()
	if err != nil {
		return err
	}
	defer closeFn()

	decks := cmd.Args().Slice()
	if len(decks) == 0 {
		if _, err := cat.Load(ctx); err != nil {
			return err
		}
		decks = cat.Names()
	}
	if len(decks) == 0 {
		return r.writePlain("No decks to export.\n")
	}

	opts := tasks.BulkExportOpts{
		Format:     cmd.String("format"),
		OutputDir:  cmd.String("dir"),
		NumWorkers: cmd.Int("workers"),
		RateLimit:  cmd.Float("rate"),
	}

	r.writePlainHeader(fmt.Sprintf("Exporting %d deck(s) as %s", len(decks), opts.Format))

	var result *tasks.BulkExportResult
	err = r.track(func(progress chan<- tasks.ProgressUpdate) error {
		var err error
		result, err = tasks.BulkExport(ctx, progress, cat, decks, opts)
		return err
	})
	if err != nil {
		return err
	}

	r.writePlainln("Exported %d of %d deck(s) to %s", result.SuccessfulExports, result.TotalDecks, result.OutputDirectory)
	if result.ManifestPath != "" {
		r.writePlain("Manifest: %s\n", result.ManifestPath)
	}
	if result.FailedExports > 0 {
		return fmt.Errorf("%w: %d deck(s) failed", shared.ErrExportFailed, result.FailedExports)
	}
	return nil
}
