package apperrors

import "errors"

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrNotFound          = errors.New("not found")
	ErrStorage           = errors.New("storage failure")
	ErrSequencerClosed   = errors.New("accounting sequence is closed")
	ErrTrackerNotRunning = errors.New("tracker is not running")
)
