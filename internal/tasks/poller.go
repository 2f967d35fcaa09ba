package tasks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/ankix/internal/models"
	"github.com/desertthunder/ankix/internal/shared"
)

// DefaultPollInterval is used when [PollerOpts.Interval] is zero.
const DefaultPollInterval = 2000 * time.Millisecond

// StatusFetcher fetches one observation of a processing job.
type StatusFetcher interface {
	JobStatus(ctx context.Context, jobID string) (models.JobStatus, error)
}

// PollerOpts configures a [Poller]. A zero DisplayDelay navigates immediately.
type PollerOpts struct {
	Interval     time.Duration
	DisplayDelay time.Duration
	Logger       *log.Logger
}

// Poller watches a processing job until it completes or fails.
//
// Fetches are strictly sequential: the next fetch is scheduled only after the previous one returns.
type Poller struct {
	fetcher      StatusFetcher
	interval     time.Duration
	displayDelay time.Duration
	logger       *log.Logger
}

func NewPoller(fetcher StatusFetcher, opts PollerOpts) *Poller {
	if opts.Interval <= 0 {
		opts.Interval = DefaultPollInterval
	}
	if opts.DisplayDelay < 0 {
		opts.DisplayDelay = 0
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	return &Poller{
		fetcher:      fetcher,
		interval:     opts.Interval,
		displayDelay: opts.DisplayDelay,
		logger:       opts.Logger,
	}
}

// Run polls jobID and returns the review route for the deck it produced.
//
// Each observation is sent on progress (which may be nil). A completed job is shown for the
// display delay before Run returns. A failed job returns an error wrapping [shared.ErrJobFailed];
// a failed fetch stops polling and returns "failed to check processing status". Cancelling ctx
// stops any pending wait or in-flight fetch, suppresses further updates and returns ctx.Err().
func (p *Poller) Run(ctx context.Context, jobID string, progress chan<- ProgressUpdate) (models.Route, error) {
	logger := p.logger.With("job", jobID)

	for polls := 1; ; polls++ {
		st, err := p.fetcher.JobStatus(ctx, jobID)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return models.Route{}, ctxErr
		}
		if err != nil {
			logger.Error("status check failed", "error", err)
			sendProgress(ctx, progress, pollUpdate(0, models.Failed{Message: "Failed to check processing status"}))
			return models.Route{}, fmt.Errorf("failed to check processing status: %w", err)
		}

		switch s := st.(type) {
		case models.Failed:
			logger.Warn("job failed", "message", s.Message)
			sendProgress(ctx, progress, pollUpdate(0, s))
			return models.Route{}, fmt.Errorf("%w: %s", shared.ErrJobFailed, s.Message)

		case models.Completed:
			logger.Info("job completed", "deck", s.DeckID, "polls", polls)
			sendProgress(ctx, progress, pollUpdate(100, s))
			if err := wait(ctx, p.displayDelay); err != nil {
				return models.Route{}, err
			}
			return models.Review(s.DeckID), nil

		case models.Processing:
			logger.Debug("job processing", "progress", s.Progress)
			sendProgress(ctx, progress, pollUpdate(int(s.Progress), s))
			if err := wait(ctx, p.interval); err != nil {
				return models.Route{}, err
			}

		default:
			return models.Route{}, fmt.Errorf("%w: unexpected job status %T", shared.ErrProtocol, st)
		}
	}
}

// wait blocks for d or until ctx is done.
func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// PollHandle is a running poll that can be cancelled when its consumer goes away.
type PollHandle struct {
	cancel context.CancelFunc
	done   chan struct{}
	route  models.Route
	err    error
}

// Start runs [Poller.Run] in its own goroutine and returns a handle to it.
func (p *Poller) Start(ctx context.Context, jobID string, progress chan<- ProgressUpdate) *PollHandle {
	ctx, cancel := context.WithCancel(ctx)
	h := &PollHandle{cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(h.done)
		defer cancel()
		h.route, h.err = p.Run(ctx, jobID, progress)
	}()

	return h
}

// Cancel stops the poll. It is safe to call more than once and after completion.
func (h *PollHandle) Cancel() { h.cancel() }

// Done is closed once the poll has resolved.
func (h *PollHandle) Done() <-chan struct{} { return h.done }

// Result blocks until the poll resolves and returns its route or error.
// A cancelled poll returns [context.Canceled].
func (h *PollHandle) Result() (models.Route, error) {
	<-h.done
	return h.route, h.err
}

// Cancelled reports whether err is the result of a cancelled poll.
func Cancelled(err error) bool {
	return errors.Is(err, context.Canceled)
}
