package service

import (
	"errors"
	"fmt"
)

var (
	ErrPromptRequired = errors.New("Prompt is required")
	ErrNoPlatforms    = errors.New("no supported platforms selected for publishing")
)

// ValidationError is a caller mistake caught before any network call or
// persistence attempt.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// UpstreamError is a non-success answer from an external provider.
type UpstreamError struct {
	Kind   string
	Status int
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s failed: %d", e.Kind, e.Status)
}
