package services

import (
	"fmt"

	"github.com/desertthunder/ankix/internal/models"
	"github.com/desertthunder/ankix/internal/shared"
)

// Job status strings reported by the backend.
const (
	statusPending    = "pending"
	statusProcessing = "processing"
	statusCompleted  = "completed"
	statusFailed     = "failed"
)

// DeckID derives the deck a completed job produced: deckName, else filename without
// its last extension, else fallback. fromFallback reports whether fallback was used.
func (p StatusPayload) DeckID(fallback string) (id string, fromFallback bool) {
	switch {
	case p.DeckName != "":
		return p.DeckName, false
	case p.Filename != "":
		return models.StripExt(p.Filename), false
	default:
		return fallback, true
	}
}

// DecodeStatus converts a raw status payload into a [models.JobStatus].
//
// An error field always yields [models.Failed]. A completed payload with no derivable deck
// id and an empty fallback is a validation error, and an unrecognized status is a protocol error.
func DecodeStatus(p StatusPayload, fallback string) (models.JobStatus, error) {
	if p.Error != "" {
		return models.Failed{Message: p.Error}, nil
	}

	switch p.Status {
	case statusProcessing, statusPending:
		return models.NewProcessing(p.Progress, p.Message), nil
	case statusCompleted:
		id, _ := p.DeckID(fallback)
		if id == "" {
			return nil, fmt.Errorf("%w: completed job has no deck name or filename", shared.ErrValidation)
		}
		return models.Completed{DeckID: id, Message: p.Message}, nil
	case statusFailed:
		msg := p.Message
		if msg == "" {
			msg = "processing failed"
		}
		return models.Failed{Message: msg}, nil
	default:
		return nil, fmt.Errorf("%w: unknown job status %q", shared.ErrProtocol, p.Status)
	}
}
