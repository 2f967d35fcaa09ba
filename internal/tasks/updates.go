package tasks

import (
	"context"
	"fmt"

	"github.com/desertthunder/ankix/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data; a [models.JobStatus] during PollJob
}

// Operation phase enumeration
type Phase int

const (
	ValidateFiles Phase = iota
	UploadFiles
	StartJob
	PollJob
	ExportDeck
)

func (p Phase) String() string {
	switch p {
	case ValidateFiles:
		return "validate_files"
	case UploadFiles:
		return "upload_files"
	case StartJob:
		return "start_job"
	case PollJob:
		return "poll_job"
	case ExportDeck:
		return "export_deck"
	default:
		return ""
	}
}

// sendProgress sends update without blocking and drops it once ctx is done.
func sendProgress(ctx context.Context, progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil || ctx.Err() != nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

func validateUpdate(step, total int, name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ValidateFiles,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Checking %s...", step, total, name),
	}
}

func uploadUpdate(total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   UploadFiles,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Uploading %d file(s)...", total),
	}
}

func startJobUpdate(jobID string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   StartJob,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Processing started (job %s)", jobID),
		Data:    jobID,
	}
}

func pollUpdate(step int, st models.JobStatus) ProgressUpdate {
	return ProgressUpdate{
		Phase:   PollJob,
		Step:    step,
		Total:   100,
		Message: st.Text(),
		Data:    st,
	}
}

func exportingDeckUpdate(step, total int, name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportDeck,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Exporting: %s...", step, total, name),
	}
}

func exportCompletedUpdate(step, total int, name string, path string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportDeck,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s → %s", step, total, name, path),
	}
}

func exportFailedUpdate(step, total int, name string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportDeck,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, name, err),
	}
}
