package schedule

import (
	"errors"
	"fmt"
)

var (
	// ErrNotConfigured marks a planner that cannot reach a completion provider.
	ErrNotConfigured = errors.New("planner not configured")

	// ErrProviderNotConfigured means no completion client was built,
	// usually because the endpoint or API key is missing.
	ErrProviderNotConfigured = fmt.Errorf("%w: completion provider missing", ErrNotConfigured)

	// ErrDeploymentNotConfigured means no deployment/model name was set.
	ErrDeploymentNotConfigured = fmt.Errorf("%w: deployment name missing", ErrNotConfigured)

	// ErrInvalidRequest marks errors caused by the caller's input.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrEmptyCaseDetails is returned for missing or blank case details.
	ErrEmptyCaseDetails = fmt.Errorf("%w: caseDetails is required", ErrInvalidRequest)
)

// ProviderError wraps a failed completion call.
type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return e.Err.Error()
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// IsProviderError reports whether err came from the completion provider.
func IsProviderError(err error) (*ProviderError, bool) {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}
