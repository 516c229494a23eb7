// Package toserr defines the sentinel error values shared across the
// session, reset, security, container, and input packages. Callers wrap
// these with fmt.Errorf("...: %w", ...) and compare with errors.Is.
package toserr

import "errors"

var (
	ErrResetInProgress     = errors.New("reset already in progress")
	ErrNoResetInProgress   = errors.New("no reset in progress")
	ErrUndoExpired         = errors.New("undo window has expired")
	ErrNoSavedState        = errors.New("no saved state to undo")
	ErrInvalidState        = errors.New("invalid state for requested operation")
	ErrExecutionFailed     = errors.New("execution failed")
	ErrMicrophoneUnavailable = errors.New("microphone unavailable")
	ErrRecognitionFailed   = errors.New("speech recognition failed")
	ErrNetworkError        = errors.New("network error")
	ErrPermissionDenied    = errors.New("permission denied")
	ErrContainerRuntime    = errors.New("container runtime error")
	ErrSerialization       = errors.New("serialization error")
	ErrValidation          = errors.New("validation error")
	ErrNotFound            = errors.New("not found")
	ErrRateLimited         = errors.New("rate limited")
	ErrAuthRequired        = errors.New("authentication required")
	ErrCircuitOpen         = errors.New("circuit open")

	// ErrConfirmationRequired is returned when a hub refuses a prompt
	// submission because a confirmation session is pending.
	ErrConfirmationRequired = errors.New("confirmation required")
)
