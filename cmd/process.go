package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/ankix/internal/models"
	"github.com/desertthunder/ankix/internal/shared"
	"github.com/desertthunder/ankix/internal/tasks"
)

// Upload validates and uploads PDFs, starts processing and polls the job until its deck is ready.
func (r *Runner) Upload(ctx context.Context, cmd *cli.Command) error {
	paths := cmd.Args().Slice()
	if len(paths) == 0 {
		return fmt.Errorf("%w: at least one PDF file is required", shared.ErrMissingArgument)
	}

	opts := tasks.UploadOpts{
		IncludeTopicCards: cmd.Bool("topics"),
		CardsPerTopic:     cmd.Int("cards-per-topic"),
	}

	var jobID string
	err := r.track(func(progress chan<- tasks.ProgressUpdate) error {
		var err error
		jobID, err = tasks.UploadAndProcess(ctx, r.client, paths, opts, progress)
		return err
	})
	if err != nil {
		return err
	}

	r.logger.Info("processing started", "job", jobID, "files", len(paths))
	if cmd.Bool("no-wait") {
		return r.writePlain("%s\n", jobID)
	}
	return r.followJob(ctx, jobID)
}

// Status reports on a processing job, polling until it finishes unless --once is set.
func (r *Runner) Status(ctx context.Context, cmd *cli.Command) error {
	jobID := cmd.StringArg("job-id")
	if jobID == "" {
		return fmt.Errorf("%w: job id is required", shared.ErrMissingArgument)
	}

	if !cmd.Bool("once") {
		return r.followJob(ctx, jobID)
	}

	st, err := r.client.JobStatus(ctx, jobID)
	if err != nil {
		return fmt.Errorf("failed to check processing status: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(statusSummary(jobID, st), true)
	}
	return r.writePlain("%s: %s\n", st.State(), st.Text())
}

// followJob polls jobID, printing each observation, and prints the review route once the deck is ready.
func (r *Runner) followJob(ctx context.Context, jobID string) error {
	poller := tasks.NewPoller(r.client, r.pollerOpts())

	var route models.Route
	err := r.track(func(progress chan<- tasks.ProgressUpdate) error {
		var err error
		route, err = poller.Run(ctx, jobID, progress)
		return err
	})
	if err != nil {
		return err
	}

	r.writePlainln("Deck ready: %s", route.Param)
	return r.writePlain("Review it with: ankix review %q\n", route.Param)
}

// track runs fn with a progress channel and prints every update it sends.
func (r *Runner) track(fn func(chan<- tasks.ProgressUpdate) error) error {
	progress := make(chan tasks.ProgressUpdate, 32)
	done := make(chan struct{})

	go func() {
		defer close(done)
		for update := range progress {
			r.printProgress(update)
		}
	}()

	err := fn(progress)
	close(progress)
	<-done
	return err
}

func (r *Runner) printProgress(update tasks.ProgressUpdate) {
	if st, ok := update.Data.(models.JobStatus); ok && !st.Terminal() {
		r.writePlain("[%3d%%] %s\n", update.Step, update.Message)
		return
	}
	r.writePlain("%s\n", update.Message)
}

type jobSummary struct {
	JobID    string  `json:"jobId"`
	Status   string  `json:"status"`
	Progress float64 `json:"progress,omitempty"`
	Message  string  `json:"message,omitempty"`
	Deck     string  `json:"deck,omitempty"`
}

func statusSummary(jobID string, st models.JobStatus) jobSummary {
	s := jobSummary{JobID: jobID, Status: st.State().String(), Message: st.Text()}
	switch v := st.(type) {
	case models.Processing:
		s.Progress = v.Progress
	case models.Completed:
		s.Progress = 100
		s.Deck = v.DeckID
	}
	return s
}
