package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested record does not exist.
	// Manifest stores return it for unknown documents; absence is an
	// expected outcome, not a failure.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid caller input.
	// All validation errors unwrap to it.
	ErrInvalidInput = errors.New("invalid input")

	// ErrEmptyDocument indicates an upload with no content.
	ErrEmptyDocument = errors.New("empty document")

	// ErrUnsupportedType indicates the uploaded content is not a PDF.
	ErrUnsupportedType = errors.New("unsupported document type")

	// ErrLengthMismatch indicates an index append where the vector and
	// reference counts differ.
	ErrLengthMismatch = errors.New("vector/reference length mismatch")

	// ErrDimensionMismatch indicates a vector whose dimension differs
	// from the index's fixed dimension. This is a hard ingestion-time
	// error, never silent corruption.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")

	// ErrIndexCorrupt indicates the persisted vector and reference
	// sequences diverged. It is fatal to the index instance; the only
	// sanctioned recovery is a full rebuild from source documents.
	ErrIndexCorrupt = errors.New("index state corrupt")

	// ErrAnswerUnavailable indicates the answer generator failed and no
	// fallback was configured.
	ErrAnswerUnavailable = errors.New("answer generator unavailable")
)

// LimitError is a validation failure against a configured ingestion limit.
// The message always names both the offending value and the limit so the
// caller can fix the input.
type LimitError struct {
	// What names the limited quantity, e.g. "file size" or "page count".
	What string

	// Unit is the display unit, e.g. "bytes" or "pages".
	Unit string

	// Actual is the observed value.
	Actual int64

	// Max is the configured maximum.
	Max int64
}

// Error implements the error interface.
func (e *LimitError) Error() string {
	return fmt.Sprintf("%s over limit: %d %s exceeds maximum of %d %s",
		e.What, e.Actual, e.Unit, e.Max, e.Unit)
}

// Unwrap makes every limit violation match ErrInvalidInput.
func (e *LimitError) Unwrap() error {
	return ErrInvalidInput
}

// ProcessError is a failure in an external collaborator (rendering,
// embedding, answer generation). Ingestion aborts on it without partial
// index mutation; the query path may degrade instead of failing.
type ProcessError struct {
	// Stage names the pipeline stage that failed: "render", "embed" or
	// "answer".
	Stage string

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *ProcessError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Stage, e.Err)
}

// Unwrap returns the underlying cause.
func (e *ProcessError) Unwrap() error {
	return e.Err
}

// IsValidation reports whether err is user-fixable bad input, as opposed
// to a processing or storage failure.
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrEmptyDocument) ||
		errors.Is(err, ErrUnsupportedType)
}
