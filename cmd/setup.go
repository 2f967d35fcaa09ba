package main

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/ankix/internal/formatter"
	"github.com/desertthunder/ankix/internal/shared"
)

// SetupConfig writes the example configuration to --config.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("config")
	if err := shared.CreateConfigFile(path); err != nil {
		return err
	}

	r.logger.Info("config file created", "path", path)
	r.writePlain("✓ Wrote %s\n", path)
	r.writePlainln("Next steps:")
	r.writePlain("1. Set api.base_url (or ANKIX_API_URL) to your backend\n")
	r.writePlain("2. Run 'ankix health' to check the connection\n")
	return nil
}

// SetupDatabase initializes the export history database and runs migrations.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("path")
	if path == "" {
		path = r.config.Database.Path
	}
	if path == "" {
		return fmt.Errorf("%w: database.path is empty", shared.ErrMissingConfig)
	}

	r.logger.Info("initializing database", "path", path)
	db, err := shared.OpenHistory(path)
	if err != nil {
		return fmt.Errorf("failed to set up database: %w", err)
	}
	defer closeDB(r.logger, db)

	r.logger.Infof("setup complete for database: %v", path)
	return r.writePlain("✓ Database ready at %s\n", path)
}

type historyEntry struct {
	ID          string    `json:"id"`
	Sequence    int       `json:"sequence"`
	Deck        string    `json:"deck"`
	Path        string    `json:"path"`
	SizeBytes   int64     `json:"size_bytes"`
	ContentType string    `json:"content_type,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// History lists recorded package exports, newest first.
func (r *Runner) History(ctx context.Context, cmd *cli.Command) error {
	repo, closeFn, err := r.openHistory()
	if err != nil {
		return err
	}
	defer closeFn()
	if repo == nil {
		return fmt.Errorf("%w: database.path is empty, export history is disabled", shared.ErrMissingConfig)
	}

	criteria := map[string]any{"limit": cmd.Int("limit")}
	if deck := cmd.String("deck"); deck != "" {
		criteria["deck"] = deck
	}

	records, err := repo.List(criteria)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		entries := make([]historyEntry, len(records))
		for i, rec := range records {
			entries[i] = historyEntry{
				ID:          rec.ID(),
				Sequence:    rec.Sequence(),
				Deck:        rec.Deck(),
				Path:        rec.Path(),
				SizeBytes:   rec.SizeBytes(),
				ContentType: rec.ContentType(),
				CreatedAt:   rec.CreatedAt(),
			}
		}
		return r.writeJSON(entries, true)
	}

	if len(records) == 0 {
		return r.writePlain("No exports recorded.\n")
	}
	return r.writePlain("%s\n", formatter.HistoryTable(records))
}
