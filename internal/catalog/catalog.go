package catalog

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/ankix/internal/models"
	"github.com/desertthunder/ankix/internal/shared"
)

// Source is the backend surface the catalog reads decks from.
type Source interface {
	ListDecks(ctx context.Context) ([]models.Deck, error)
	GetCards(ctx context.Context, deck string) ([]models.Flashcard, error)
	ExportPackage(ctx context.Context, deck string) (*models.Package, error)
}

// Recorder stores a history row for each written package.
type Recorder interface {
	Create(rec *models.ExportRecord) error
}

// Catalog lists the backend's decks and downloads their packages.
//
// The deck list is fetched once per Catalog; later loads return the same snapshot. Download
// and Cards are safe to call from several goroutines.
type Catalog struct {
	src      Source
	recorder Recorder
	logger   *log.Logger

	mu     sync.Mutex
	decks  []models.Deck
	loaded bool
}

// Opts configures a [Catalog]. Recorder and Logger are optional.
type Opts struct {
	Recorder Recorder
	Logger   *log.Logger
}

func New(src Source, opts Opts) *Catalog {
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	return &Catalog{src: src, recorder: opts.Recorder, logger: opts.Logger}
}

// Load fetches the deck list on first use. A failed fetch is not cached.
func (c *Catalog) Load(ctx context.Context) ([]models.Deck, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.loaded {
		return c.snapshot(), nil
	}

	decks, err := c.src.ListDecks(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list decks: %w", err)
	}

	c.decks = make([]models.Deck, len(decks))
	for i, d := range decks {
		c.decks[i] = models.Deck{Name: models.DeckBaseName(d.Name), TotalCards: d.TotalCards}
	}
	c.loaded = true
	c.logger.Debug("loaded catalog", "decks", len(c.decks))
	return c.snapshot(), nil
}

// Decks returns the loaded snapshot, or nil before [Catalog.Load] succeeds.
func (c *Catalog) Decks() []models.Deck {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.loaded {
		return nil
	}
	return c.snapshot()
}

// Names returns the display name of every loaded deck.
func (c *Catalog) Names() []string {
	decks := c.Decks()
	names := make([]string, len(decks))
	for i, d := range decks {
		names[i] = d.Name
	}
	return names
}

func (c *Catalog) snapshot() []models.Deck {
	out := make([]models.Deck, len(c.decks))
	copy(out, c.decks)
	return out
}

// EditRoute returns the review route for a deck.
func EditRoute(name string) models.Route {
	return models.Review(models.DeckBaseName(name))
}

// Cards fetches the cards of a deck.
func (c *Catalog) Cards(ctx context.Context, name string) ([]models.Flashcard, error) {
	cards, err := c.src.GetCards(ctx, models.DeckBaseName(name))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrFetch, err)
	}
	return cards, nil
}

// Download exports a deck package into dir as "<deck>.apkg" and returns the written path.
//
// When a recorder is configured the export is added to history; a history failure is returned
// even though the file has been written.
func (c *Catalog) Download(ctx context.Context, name, dir string) (string, error) {
	base := models.DeckBaseName(name)
	logger := c.logger.With("deck", base)

	pkg, err := c.src.ExportPackage(ctx, base)
	if err != nil {
		logger.Error("export failed", "error", err)
		return "", err
	}
	if pkg.Deck == "" {
		pkg.Deck = base
	}
	return c.Save(pkg, dir)
}

// Save writes pkg into dir and records it in history. An empty dir means the working directory.
func (c *Catalog) Save(pkg *models.Package, dir string) (string, error) {
	base := models.DeckBaseName(pkg.Deck)

	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	path := filepath.Join(dir, models.PackageFilename(base))
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}

	if err := os.WriteFile(path, pkg.Data, 0644); err != nil {
		return "", fmt.Errorf("failed to write package: %w", err)
	}
	c.logger.Info("package saved", "deck", base, "path", path, "bytes", pkg.Size())

	if c.recorder != nil {
		rec := models.NewExportRecord(base, path, int64(pkg.Size()), pkg.ContentType)
		if err := c.recorder.Create(rec); err != nil {
			return path, fmt.Errorf("package written but not recorded: %w", err)
		}
	}

	return path, nil
}
