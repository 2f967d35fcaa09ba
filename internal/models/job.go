package models

import "fmt"

// JobState names the three states of a processing job.
type JobState int

const (
	StateProcessing JobState = iota
	StateCompleted
	StateFailed
)

func (s JobState) String() string {
	switch s {
	case StateProcessing:
		return "processing"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	default:
		return ""
	}
}

// JobStatus is one observation of a processing job: [Processing], [Completed] or [Failed].
//
// The interface is sealed; a Completed value always carries a deck id.
type JobStatus interface {
	State() JobState
	Terminal() bool
	Text() string
	isJobStatus()
}

var (
	_ JobStatus = Processing{}
	_ JobStatus = Completed{}
	_ JobStatus = Failed{}
)

// Processing reports a running job.
type Processing struct {
	Progress float64 // clamped to [0,100]
	Message  string
}

func NewProcessing(progress float64, message string) Processing {
	switch {
	case progress < 0:
		progress = 0
	case progress > 100:
		progress = 100
	}
	if message == "" {
		message = fmt.Sprintf("Processing... %.0f%%", progress)
	}
	return Processing{Progress: progress, Message: message}
}

func (Processing) State() JobState { return StateProcessing }
func (Processing) Terminal() bool  { return false }
func (p Processing) Text() string  { return p.Message }
func (Processing) isJobStatus()    {}

// Completed reports a finished job and the deck it produced.
type Completed struct {
	DeckID  string
	Message string
}

func (Completed) State() JobState { return StateCompleted }
func (Completed) Terminal() bool  { return true }
func (c Completed) Text() string {
	if c.Message != "" {
		return c.Message
	}
	return "Processing completed! Redirecting to card review..."
}
func (Completed) isJobStatus() {}

// Failed reports a job that will not complete.
type Failed struct {
	Message string
}

func (Failed) State() JobState { return StateFailed }
func (Failed) Terminal() bool  { return true }
func (f Failed) Text() string  { return f.Message }
func (Failed) isJobStatus()    {}
