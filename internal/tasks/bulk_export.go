package tasks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/desertthunder/ankix/internal/formatter"
	"github.com/desertthunder/ankix/internal/models"
	"github.com/desertthunder/ankix/internal/shared"
)

// FormatPackage exports decks as binary packages; other formats come from [formatter.Formats].
const FormatPackage = "apkg"

const maxWorkers = 10

// DeckSource provides the two ways a deck can be exported.
type DeckSource interface {
	// Download saves the deck package into dir and returns the written path.
	Download(ctx context.Context, deck, dir string) (string, error)
	// Cards fetches the deck contents.
	Cards(ctx context.Context, deck string) ([]models.Flashcard, error)
}

// BulkExportOpts contains configuration for bulk deck exports.
type BulkExportOpts struct {
	Format     string  // apkg (default), json, csv, markdown, txt
	OutputDir  string  // Base output directory (default: ankix_export_{epoch})
	NumWorkers int     // Concurrent workers (default: 3, max: 10)
	RateLimit  float64 // Export requests per second (default: 2)
}

// DeckExportResult is the outcome of exporting one deck.
type DeckExportResult struct {
	Deck    string
	Success bool
	Files   []string
	Error   error
}

// BulkExportResult summarizes a bulk export.
type BulkExportResult struct {
	TotalDecks        int
	SuccessfulExports int
	FailedExports     int
	Results           []DeckExportResult
	OutputDirectory   string
	ManifestPath      string
}

// BulkExport exports decks concurrently with rate limiting and progress tracking.
//
// A bounded worker pool performs the exports while a producer paces requests through a token
// bucket. Per-deck failures are collected in the result rather than aborting the run, and a JSON
// manifest summarizing every deck is written to the output directory.
func BulkExport(
	ctx context.Context,
	prog chan<- ProgressUpdate,
	src DeckSource,
	decks []string,
	opts BulkExportOpts,
) (*BulkExportResult, error) {
	if src == nil {
		return nil, fmt.Errorf("%w: deck source not initialized", shared.ErrServiceDown)
	}

	if opts.Format == "" {
		opts.Format = FormatPackage
	}
	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("ankix_export_%d", time.Now().Unix())
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 3
	}
	if opts.NumWorkers > maxWorkers {
		opts.NumWorkers = maxWorkers
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 2.0
	}

	if opts.Format != FormatPackage {
		if _, err := formatter.FormatCards(opts.Format, "", nil); err != nil {
			return nil, err
		}
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	result := &BulkExportResult{
		TotalDecks:      len(decks),
		OutputDirectory: opts.OutputDir,
		Results:         make([]DeckExportResult, 0, len(decks)),
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)

	jobs := make(chan string, len(decks))
	results := make(chan DeckExportResult, len(decks))

	var wg sync.WaitGroup
	for i := 0; i < opts.NumWorkers; i++ {
		wg.Add(1)
		go exportWorker(ctx, &wg, src, jobs, results, opts)
	}

	go func() {
		defer close(jobs)
		for i, deck := range decks {
			if err := limiter.Wait(ctx); err != nil {
				return
			}
			sendProgress(ctx, prog, exportingDeckUpdate(i+1, len(decks), deck))
			jobs <- deck
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for res := range results {
		completed++
		result.Results = append(result.Results, res)

		if res.Success {
			result.SuccessfulExports++
			sendProgress(ctx, prog, exportCompletedUpdate(completed, len(decks), res.Deck, res.Files[0]))
		} else {
			result.FailedExports++
			sendProgress(ctx, prog, exportFailedUpdate(completed, len(decks), res.Deck, res.Error))
		}
	}

	if err := ctx.Err(); err != nil {
		return result, fmt.Errorf("export interrupted: %w", err)
	}

	manifestPath := filepath.Join(opts.OutputDir, "export_manifest.json")
	if err := formatter.WriteBulkExportManifest(manifestFor(result, opts.Format), manifestPath); err != nil {
		return result, fmt.Errorf("export completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath
	return result, nil
}

// exportWorker exports decks from the jobs channel until it is closed or ctx is done.
func exportWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	src DeckSource,
	jobs <-chan string,
	results chan<- DeckExportResult,
	opts BulkExportOpts,
) {
	defer wg.Done()

	for deck := range jobs {
		select {
		case <-ctx.Done():
			return
		default:
		}

		results <- exportSingleDeck(ctx, src, deck, opts)
	}
}

func exportSingleDeck(ctx context.Context, src DeckSource, deck string, opts BulkExportOpts) DeckExportResult {
	result := DeckExportResult{Deck: deck}

	if opts.Format == FormatPackage {
		path, err := src.Download(ctx, deck, opts.OutputDir)
		if err != nil {
			result.Error = err
			return result
		}
		result.Files = []string{path}
		result.Success = true
		return result
	}

	cards, err := src.Cards(ctx, deck)
	if err != nil {
		result.Error = err
		return result
	}

	data, err := formatter.FormatCards(opts.Format, deck, cards)
	if err != nil {
		result.Error = err
		return result
	}

	path := filepath.Join(opts.OutputDir, models.DeckBaseName(deck)+extensionFor(opts.Format))
	if err := os.WriteFile(path, data, 0644); err != nil {
		result.Error = fmt.Errorf("failed to write %s: %w", path, err)
		return result
	}

	result.Files = []string{path}
	result.Success = true
	return result
}

func extensionFor(format string) string {
	switch format {
	case formatter.FormatMarkdown, "md":
		return ".md"
	case formatter.FormatText, "text":
		return ".txt"
	case formatter.FormatCSV:
		return ".csv"
	default:
		return ".json"
	}
}

func manifestFor(r *BulkExportResult, format string) formatter.Manifest {
	m := formatter.Manifest{
		Format:          format,
		TotalDecks:      r.TotalDecks,
		Successful:      r.SuccessfulExports,
		Failed:          r.FailedExports,
		OutputDirectory: r.OutputDirectory,
		Entries:         make([]formatter.ManifestEntry, len(r.Results)),
	}
	for i, res := range r.Results {
		e := formatter.ManifestEntry{Deck: res.Deck, Files: res.Files}
		if res.Error != nil {
			e.Error = res.Error.Error()
		}
		m.Entries[i] = e
	}
	return m
}
