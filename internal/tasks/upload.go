package tasks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/desertthunder/ankix/internal/services"
	"github.com/desertthunder/ankix/internal/shared"
)

// Uploader sends files to the backend and starts card generation.
type Uploader interface {
	Upload(ctx context.Context, paths []string) error
	StartProcessing(ctx context.Context, req services.ProcessRequest) (string, error)
}

// UploadOpts holds the processing options sent after the upload.
type UploadOpts struct {
	IncludeTopicCards bool
	CardsPerTopic     int // defaults to 5
}

// ValidatePDF checks that path is a readable PDF with at least one page.
// Every failure wraps [shared.ErrUserInput].
func ValidatePDF(path string) (err error) {
	if !strings.EqualFold(filepath.Ext(path), ".pdf") {
		return fmt.Errorf("%w: %s is not a PDF", shared.ErrUserInput, filepath.Base(path))
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%w: %w", shared.ErrUserInput, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%w: %s is a directory", shared.ErrUserInput, path)
	}

	// the pdf reader panics on some malformed inputs
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %s is not a valid PDF: %v", shared.ErrUserInput, filepath.Base(path), r)
		}
	}()

	f, reader, err := pdf.Open(path)
	if err != nil {
		return fmt.Errorf("%w: %s is not a valid PDF: %w", shared.ErrUserInput, filepath.Base(path), err)
	}
	defer f.Close()

	if reader.NumPage() < 1 {
		return fmt.Errorf("%w: %s has no pages", shared.ErrUserInput, filepath.Base(path))
	}
	return nil
}

// UploadAndProcess validates paths, uploads them and starts processing, returning the job id.
//
// An empty selection or any invalid file fails before a request is made. Partial failures are not
// distinguished: the first error fails the whole upload.
func UploadAndProcess(ctx context.Context, svc Uploader, paths []string, opts UploadOpts, progress chan<- ProgressUpdate) (string, error) {
	if len(paths) == 0 {
		return "", fmt.Errorf("%w: please select at least one PDF file", shared.ErrUserInput)
	}
	if opts.CardsPerTopic <= 0 {
		opts.CardsPerTopic = 5
	}

	names := make([]string, len(paths))
	for i, p := range paths {
		sendProgress(ctx, progress, validateUpdate(i+1, len(paths), filepath.Base(p)))
		if err := ValidatePDF(p); err != nil {
			return "", err
		}
		names[i] = filepath.Base(p)
	}

	sendProgress(ctx, progress, uploadUpdate(len(paths)))
	if err := svc.Upload(ctx, paths); err != nil {
		return "", fmt.Errorf("failed to upload files: %w", err)
	}

	jobID, err := svc.StartProcessing(ctx, services.ProcessRequest{
		Files:             names,
		IncludeTopicCards: opts.IncludeTopicCards,
		CardsPerTopic:     opts.CardsPerTopic,
	})
	if err != nil {
		return "", fmt.Errorf("failed to start processing: %w", err)
	}

	sendProgress(ctx, progress, startJobUpdate(jobID))
	return jobID, nil
}
