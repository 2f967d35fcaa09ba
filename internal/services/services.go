// package services defines interface Service for the flashcard backend HTTP API
package services

import (
	"context"

	"github.com/desertthunder/ankix/internal/models"
)

// Service defines the operations the client performs against the flashcard backend.
type Service interface {
	// Upload sends local PDF files as a multipart form.
	Upload(ctx context.Context, paths []string) error

	// StartProcessing asks the backend to generate cards for previously uploaded files
	// and returns the job id.
	StartProcessing(ctx context.Context, req ProcessRequest) (string, error)

	// JobStatus fetches one observation of a processing job.
	JobStatus(ctx context.Context, jobID string) (models.JobStatus, error)

	// ListDecks retrieves every stored deck.
	ListDecks(ctx context.Context) ([]models.Deck, error)

	// GetCards retrieves the cards of a deck in order.
	GetCards(ctx context.Context, deck string) ([]models.Flashcard, error)

	// SaveCards replaces the stored contents of a deck.
	SaveCards(ctx context.Context, deck string, cards []models.Flashcard) error

	// ExportPackage downloads the binary package of a deck.
	// A response that is not a non-empty octet stream is an error.
	ExportPackage(ctx context.Context, deck string) (*models.Package, error)

	// Health reports whether the backend is reachable.
	Health(ctx context.Context) error
}

// ProcessRequest is the body of POST /api/process.
type ProcessRequest struct {
	Files             []string `json:"files" validate:"required,min=1,dive,required"`
	IncludeTopicCards bool     `json:"includeTopicCards"`
	CardsPerTopic     int      `json:"cardsPerTopic" validate:"gt=0"`
}

// ProcessResponse is the body returned by POST /api/process.
type ProcessResponse struct {
	JobID string `json:"jobId" validate:"required"`
}

// StatusPayload is the raw body of GET /api/process/{jobId}.
//
// Use [DecodeStatus] to turn it into a [models.JobStatus].
type StatusPayload struct {
	Status     string  `json:"status"`
	Progress   float64 `json:"progress"`
	Message    string  `json:"message,omitempty"`
	Error      string  `json:"error,omitempty"`
	TotalCards int     `json:"totalCards,omitempty"`
	DeckName   string  `json:"deckName,omitempty"`
	Filename   string  `json:"filename,omitempty"`
}

// DeckList is the body of GET /api/cards/list.
type DeckList struct {
	Decks []models.Deck `json:"decks" validate:"dive"`
}

// CardList is the body of GET /api/cards/csv/{deckName}.
type CardList struct {
	Cards []models.Flashcard `json:"cards"`
}

// HealthResponse is the body of GET /api/health.
type HealthResponse struct {
	Status string `json:"status"`
}
