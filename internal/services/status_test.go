package services

import (
	"errors"
	"testing"

	"github.com/desertthunder/ankix/internal/models"
	"github.com/desertthunder/ankix/internal/shared"
)

func TestDecodeStatus(t *testing.T) {
	tc := []struct {
		name     string
		payload  StatusPayload
		fallback string
		want     models.JobStatus
		wantErr  error
	}{
		{
			name:    "processing",
			payload: StatusPayload{Status: "processing", Progress: 40, Message: "Generating"},
			want:    models.Processing{Progress: 40, Message: "Generating"},
		},
		{
			name:    "pending counts as processing",
			payload: StatusPayload{Status: "pending"},
			want:    models.Processing{Progress: 0, Message: "Processing... 0%"},
		},
		{
			name:    "completed with deck name",
			payload: StatusPayload{Status: "completed", DeckName: "biology", Filename: "bio.pdf"},
			want:    models.Completed{DeckID: "biology"},
		},
		{
			name:    "completed with filename",
			payload: StatusPayload{Status: "completed", Filename: "notes.v2.pdf"},
			want:    models.Completed{DeckID: "notes.v2"},
		},
		{
			name:     "completed with fallback",
			payload:  StatusPayload{Status: "completed"},
			fallback: "default",
			want:     models.Completed{DeckID: "default"},
		},
		{
			name:    "completed without fallback",
			payload: StatusPayload{Status: "completed"},
			wantErr: shared.ErrValidation,
		},
		{
			name:    "error field wins",
			payload: StatusPayload{Status: "processing", Error: "bad pdf"},
			want:    models.Failed{Message: "bad pdf"},
		},
		{
			name:    "failed without error",
			payload: StatusPayload{Status: "failed"},
			want:    models.Failed{Message: "processing failed"},
		},
		{
			name:    "unknown status",
			payload: StatusPayload{Status: "queued"},
			wantErr: shared.ErrProtocol,
		},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeStatus(tt.payload, tt.fallback)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("DecodeStatus() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestStatusPayloadDeckID(t *testing.T) {
	if id, fb := (StatusPayload{}).DeckID("default"); id != "default" || !fb {
		t.Errorf("expected fallback, got %q %v", id, fb)
	}
	if id, fb := (StatusPayload{Filename: "chem.pdf"}).DeckID("default"); id != "chem" || fb {
		t.Errorf("expected chem from filename, got %q %v", id, fb)
	}
}
