// package server contains the in-memory development backend for the flashcard API
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/desertthunder/ankix/internal/formatter"
	"github.com/desertthunder/ankix/internal/models"
)

const defaultStep float64 = 25

// Middleware wraps an http.Handler and returns a new http.Handler with additional behavior.
type Middleware func(http.Handler) http.Handler

// Options configures a [Backend].
type Options struct {
	Logger *log.Logger
	// Step is the progress a job gains on each status poll after the first. Zero means 25.
	Step float64
}

// Backend is an in-memory implementation of the flashcard API.
//
// Decks, uploads and jobs live only for the life of the process. It is safe for concurrent use.
type Backend struct {
	mu      sync.Mutex
	logger  *log.Logger
	step    float64
	uploads map[string][]byte
	jobs    map[string]*job
	decks   map[string][]models.Flashcard
}

// New creates an empty backend.
func New(opts Options) *Backend {
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.Step <= 0 {
		opts.Step = defaultStep
	}

	return &Backend{
		logger:  opts.Logger,
		step:    opts.Step,
		uploads: make(map[string][]byte),
		jobs:    make(map[string]*job),
		decks:   make(map[string][]models.Flashcard),
	}
}

// Seed stores cards under deck, replacing any existing contents.
func (b *Backend) Seed(deck string, cards []models.Flashcard) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.decks[deck] = append([]models.Flashcard{}, cards...)
}

// SeedDir loads every "*.csv" file in dir as a deck named after the file and returns how many were loaded.
func (b *Backend) SeedDir(dir string) (int, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.csv"))
	if err != nil {
		return 0, fmt.Errorf("failed to list decks: %w", err)
	}

	for _, p := range paths {
		f, err := os.Open(p)
		if err != nil {
			return 0, fmt.Errorf("failed to open %s: %w", p, err)
		}
		cards, err := formatter.ParseCardsCSV(f)
		f.Close()
		if err != nil {
			return 0, fmt.Errorf("failed to load %s: %w", p, err)
		}
		b.Seed(strings.TrimSuffix(filepath.Base(p), ".csv"), cards)
	}

	return len(paths), nil
}

// Cards returns a copy of a stored deck.
func (b *Backend) Cards(deck string) ([]models.Flashcard, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	cards, ok := b.decks[deck]
	if !ok {
		return nil, false
	}
	return append([]models.Flashcard{}, cards...), true
}

// Decks returns every stored deck sorted by name.
func (b *Backend) Decks() []models.Deck {
	b.mu.Lock()
	defer b.mu.Unlock()

	decks := make([]models.Deck, 0, len(b.decks))
	for name, cards := range b.decks {
		decks = append(decks, models.Deck{Name: name, TotalCards: len(cards)})
	}
	sort.Slice(decks, func(i, j int) bool { return decks[i].Name < decks[j].Name })
	return decks
}

// Handler returns the chi router serving every endpoint under /api.
func (b *Backend) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(b.logger))
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", b.handleHealth)
		r.Post("/upload", b.handleUpload)
		r.Post("/process", b.handleProcess)
		r.Get("/process/{jobId}", b.handleStatus)
		r.Get("/cards/list", b.handleListDecks)
		r.Get("/cards/csv/{deckName}", b.handleGetCards)
		r.Put("/cards/csv/{deckName}", b.handleSaveCards)
		r.Get("/cards/apkg/{deckName}", b.handleExport)
	})

	return r
}

// RequestLogger logs each request with its chi request id, status and duration.
func RequestLogger(logger *log.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			logger.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}

// Serve runs h on addr until ctx is cancelled, then shuts down gracefully.
func Serve(ctx context.Context, addr string, h http.Handler, logger *log.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("development backend listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down server: %w", err)
		}
		logger.Info("development backend stopped")
		return nil
	}
}
