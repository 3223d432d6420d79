package repository

import "errors"

// Sentinel kinds for ledger errors.
var (
	// ErrEntityNotFound means the submission referenced an entity the
	// directory does not know about. Surfaced, never retried.
	ErrEntityNotFound = errors.New("entity not found")

	// ErrInvalidSubmission means a required submission field was missing.
	ErrInvalidSubmission = errors.New("invalid submission")

	// ErrStorage wraps failures of the underlying persistence. Callers may
	// retry the whole submission thanks to idempotency.
	ErrStorage = errors.New("storage failure")
)
