package tasks

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/desertthunder/ankix/internal/services"
	"github.com/desertthunder/ankix/internal/shared"
	tu "github.com/desertthunder/ankix/internal/testing"
)

type recordingUploader struct {
	uploaded  []string
	request   services.ProcessRequest
	uploadErr error
	jobID     string
}

func (r *recordingUploader) Upload(_ context.Context, paths []string) error {
	r.uploaded = paths
	return r.uploadErr
}

func (r *recordingUploader) StartProcessing(_ context.Context, req services.ProcessRequest) (string, error) {
	r.request = req
	return r.jobID, nil
}

func TestValidatePDF(t *testing.T) {
	dir := t.TempDir()
	valid := filepath.Join(dir, "notes.pdf")
	tu.WritePDF(t, valid, 1)

	fake := filepath.Join(dir, "fake.pdf")
	os.WriteFile(fake, []byte("just text"), 0644)

	text := filepath.Join(dir, "notes.txt")
	os.WriteFile(text, []byte("hello"), 0644)

	tc := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{name: "valid pdf", path: valid},
		{name: "uppercase extension", path: func() string {
			p := filepath.Join(dir, "UPPER.PDF")
			tu.WritePDF(t, p, 2)
			return p
		}()},
		{name: "wrong extension", path: text, wantErr: true},
		{name: "not a pdf", path: fake, wantErr: true},
		{name: "missing", path: filepath.Join(dir, "missing.pdf"), wantErr: true},
		{name: "directory", path: func() string {
			p := filepath.Join(dir, "folder.pdf")
			os.Mkdir(p, 0755)
			return p
		}(), wantErr: true},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePDF(tt.path)
			if tt.wantErr {
				if !errors.Is(err, shared.ErrUserInput) {
					t.Errorf("expected ErrUserInput, got %v", err)
				}
				return
			}
			if err != nil {
				t.Errorf("expected no error, got %v", err)
			}
		})
	}
}

func TestUploadAndProcess(t *testing.T) {
	ctx := context.Background()

	t.Run("Empty Selection", func(t *testing.T) {
		up := &recordingUploader{}
		_, err := UploadAndProcess(ctx, up, nil, UploadOpts{}, nil)
		if !errors.Is(err, shared.ErrUserInput) {
			t.Errorf("expected ErrUserInput, got %v", err)
		}
		if up.uploaded != nil {
			t.Error("expected no upload for empty selection")
		}
	})

	t.Run("Invalid File Blocks Upload", func(t *testing.T) {
		dir := t.TempDir()
		good := filepath.Join(dir, "good.pdf")
		tu.WritePDF(t, good, 1)
		bad := filepath.Join(dir, "bad.txt")
		os.WriteFile(bad, []byte("x"), 0644)

		up := &recordingUploader{}
		_, err := UploadAndProcess(ctx, up, []string{good, bad}, UploadOpts{}, nil)
		if !errors.Is(err, shared.ErrUserInput) {
			t.Errorf("expected ErrUserInput, got %v", err)
		}
		if up.uploaded != nil {
			t.Error("expected no upload when a file is invalid")
		}
	})

	t.Run("Uploads And Starts Processing", func(t *testing.T) {
		dir := t.TempDir()
		a := filepath.Join(dir, "a.pdf")
		b := filepath.Join(dir, "b.pdf")
		tu.WritePDF(t, a, 1)
		tu.WritePDF(t, b, 1)

		up := &recordingUploader{jobID: "job-9"}
		prog := make(chan ProgressUpdate, 10)
		jobID, err := UploadAndProcess(ctx, up, []string{a, b}, UploadOpts{IncludeTopicCards: true}, prog)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if jobID != "job-9" {
			t.Errorf("expected job-9, got %s", jobID)
		}
		if !reflect.DeepEqual(up.request.Files, []string{"a.pdf", "b.pdf"}) {
			t.Errorf("expected basenames, got %v", up.request.Files)
		}
		if !up.request.IncludeTopicCards || up.request.CardsPerTopic != 5 {
			t.Errorf("unexpected processing options %+v", up.request)
		}

		updates := drain(prog)
		if len(updates) != 4 {
			t.Fatalf("expected 4 updates, got %d", len(updates))
		}
		if updates[3].Phase != StartJob || updates[3].Data != "job-9" {
			t.Errorf("unexpected final update %+v", updates[3])
		}
	})

	t.Run("Upload Failure", func(t *testing.T) {
		dir := t.TempDir()
		a := filepath.Join(dir, "a.pdf")
		tu.WritePDF(t, a, 1)

		up := &recordingUploader{uploadErr: shared.ErrNetwork}
		_, err := UploadAndProcess(ctx, up, []string{a}, UploadOpts{}, nil)
		if !errors.Is(err, shared.ErrNetwork) {
			t.Errorf("expected ErrNetwork, got %v", err)
		}
		if up.request.Files != nil {
			t.Error("expected processing not to start after a failed upload")
		}
	})
}

func TestPhaseString(t *testing.T) {
	for _, p := range []Phase{ValidateFiles, UploadFiles, StartJob, PollJob, ExportDeck} {
		if p.String() == "" {
			t.Errorf("phase %d has no name", p)
		}
	}
	if Phase(99).String() != "" {
		t.Error("expected empty name for unknown phase")
	}
}
