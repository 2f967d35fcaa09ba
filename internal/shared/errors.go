package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Error kinds. Every failure surfaced to the user wraps exactly one of these.
	ErrNetwork    = fmt.Errorf("network error")
	ErrProtocol   = fmt.Errorf("protocol error")
	ErrValidation = fmt.Errorf("validation error")
	ErrUserInput  = fmt.Errorf("invalid input")

	// Operation errors, joined with a kind above
	ErrFetch           = fmt.Errorf("failed to fetch cards")
	ErrJobFailed       = fmt.Errorf("processing failed")
	ErrExportLocked    = fmt.Errorf("export unavailable until every card has been reviewed")
	ErrExportFailed    = fmt.Errorf("package export failed")
	ErrIndexOutOfRange = fmt.Errorf("card index out of range")
	ErrNotLoaded       = fmt.Errorf("cards not loaded")
	ErrDeckNotFound    = fmt.Errorf("deck not found")
	ErrServiceDown     = fmt.Errorf("service unavailable")

	// Input validation errors
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
