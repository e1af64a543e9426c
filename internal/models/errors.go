package models

import (
	"errors"
	"fmt"
)

// Sentinel errors shared across the engine
var (
	// ErrUnresolved indicates no resolver tier produced a ticker match
	ErrUnresolved = errors.New("entity unresolved")

	// ErrSignalNotFound indicates a signal id is not in storage
	ErrSignalNotFound = errors.New("signal not found")
)

// NormalizationError reports a raw record missing a field required by its
// declared type. The offending record is dropped; the batch continues.
type NormalizationError struct {
	Source   string
	TypeHint string
	Missing  string
}

func (e *NormalizationError) Error() string {
	return fmt.Sprintf("normalization failed for %s record (%s): missing %s", e.Source, e.TypeHint, e.Missing)
}

// ResolutionFailure reports a company mention with no ticker match above
// the minimum similarity in any tier.
type ResolutionFailure struct {
	Company string
}

func (e *ResolutionFailure) Error() string {
	return fmt.Sprintf("no ticker resolved for %q", e.Company)
}

func (e *ResolutionFailure) Unwrap() error {
	return ErrUnresolved
}

// TransientLookupFailure reports a network or timeout error from an
// external collaborator. Retried with backoff before being downgraded to a
// ResolutionFailure.
type TransientLookupFailure struct {
	Collaborator string
	Err          error
}

func (e *TransientLookupFailure) Error() string {
	return fmt.Sprintf("transient %s lookup failure: %v", e.Collaborator, e.Err)
}

func (e *TransientLookupFailure) Unwrap() error {
	return e.Err
}

// ValidationError reports a malformed or out-of-bounds final signal. The
// signal is dropped and never emitted partially formed.
type ValidationError struct {
	SignalID string
	Reason   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("signal %s rejected: %s", e.SignalID, e.Reason)
}
