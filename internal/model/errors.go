package model

import (
	"errors"
	"fmt"
)

var (
	// ErrCorruptLedger means the persisted ledger is unreadable or
	// unparseable. Fatal unless the caller passed the explicit recovery
	// flag; extraction history is never discarded silently.
	ErrCorruptLedger = errors.New("ledger is corrupt")

	// ErrLedgerLocked means another run holds the advisory ledger lock.
	// Fatal for this invocation, retryable by the caller later.
	ErrLedgerLocked = errors.New("ledger is locked by another run")

	// ErrConflictingPeriod means more than one period form was supplied.
	ErrConflictingPeriod = errors.New("conflicting period input")

	// ErrTurnLimitExceeded means the generation loop hit its turn bound
	// without producing a conforming final answer.
	ErrTurnLimitExceeded = errors.New("generation exceeded turn limit")

	// ErrReportSchemaMismatch means the model's final answer failed report
	// schema validation after the bounded retries.
	ErrReportSchemaMismatch = errors.New("report does not conform to schema")

	// ErrNotFound marks a missing record in a store lookup.
	ErrNotFound = errors.New("not found")
)

// ExtractionError is a per-document attribute-extraction failure. It is
// recorded against the document and never aborts the batch.
type ExtractionError struct {
	RelPath    string
	DocumentID string
	Cause      error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract %s: %v", e.RelPath, e.Cause)
}

func (e *ExtractionError) Unwrap() error { return e.Cause }

// IndexSyncError is a per-document attach/detach failure. The record keeps
// index_member=false and becomes eligible for a retry on the next run.
type IndexSyncError struct {
	Op           string // "attach" | "detach" | "ensure"
	RemoteFileID string
	Cause        error
}

func (e *IndexSyncError) Error() string {
	return fmt.Sprintf("index %s %s: %v", e.Op, e.RemoteFileID, e.Cause)
}

func (e *IndexSyncError) Unwrap() error { return e.Cause }

// ProviderError is a failure at the remote-service HTTP boundary. Retryable
// marks transient conditions (timeouts, 429, 5xx) eligible for the single
// bounded retry the core performs.
type ProviderError struct {
	Code       string
	Message    string
	Retryable  bool
	StatusCode int
	Cause      error
}

func (e *ProviderError) Error() string {
	if e == nil {
		return ""
	}
	return e.Code + ": " + e.Message
}

func (e *ProviderError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// IsRetryable reports whether err (anywhere in its chain) is a transient
// provider failure.
func IsRetryable(err error) bool {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Retryable
	}
	return false
}
