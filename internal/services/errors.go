// internal/services/errors.go
package services

import "errors"

// Failure taxonomy for the disclosure core. Handlers map these onto HTTP
// responses with errors.Is, so wrapping with fmt.Errorf("...: %w", ...) is
// always safe.
var (
	// ErrNotFound: the referenced disclosure id does not exist. Surfaced
	// verbatim; never retried.
	ErrNotFound = errors.New("disclosure not found")

	// ErrDocketConflict: a docket number collided on insert. An internal
	// invariant violation given the allocator's guarantee; ingestion retries
	// once with a fresh docket before surfacing it.
	ErrDocketConflict = errors.New("docket number already exists")

	// ErrValidation: the payload was rejected before any persistence.
	ErrValidation = errors.New("validation failed")

	// ErrStorageUnavailable: the blob store is not configured or not
	// reachable. Ingestion degrades (no PDF retained); downloads report the
	// PDF unavailable.
	ErrStorageUnavailable = errors.New("blob storage unavailable")

	// ErrPDFUnavailable: the disclosure exists but no PDF was retained for
	// it.
	ErrPDFUnavailable = errors.New("PDF not available for this disclosure")
)
