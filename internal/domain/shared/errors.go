package shared

import "errors"

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound            = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists       = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput        = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrConcurrencyConflict = NewDomainError("CONCURRENCY_CONFLICT", "Resource was modified by another process")
	ErrInvalidState        = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
	ErrAlreadyApplied      = NewDomainError("ALREADY_APPLIED", "Record has already been applied to the ledger")
	ErrUpstreamUnavailable = NewDomainError("UPSTREAM_UNAVAILABLE", "Upstream system is unreachable")
	ErrLedgerUnavailable   = NewDomainError("LEDGER_UNAVAILABLE", "Ledger database is unreachable")
)

// ErrorClass categorizes an error for retry decisions. Transient errors
// drive the backoff controller, validation errors wait for an operator or
// data fix, and fatal errors are left for manual inspection.
type ErrorClass int

const (
	ClassTransient ErrorClass = iota
	ClassValidation
	ClassFatal
)

// transientCodes are retryable without operator intervention.
var transientCodes = map[string]struct{}{
	"UPSTREAM_UNAVAILABLE": {},
	"LEDGER_UNAVAILABLE":   {},
	"TIMEOUT":              {},
	"CONCURRENCY_CONFLICT": {},
}

// validationCodes are resolved by data fixes, never by retrying.
var validationCodes = map[string]struct{}{
	"UNMAPPED_CUSTOMER": {},
	"UNKNOWN_ITEM":      {},
	"EMPTY_ORDER":       {},
	"INVALID_INPUT":     {},
	"INVALID_STATE":     {},
	"ALREADY_APPLIED":   {},
}

// Classify maps an error to its retry class. Unknown errors are treated as
// transient so that a flaky dependency never strands an order permanently.
func Classify(err error) ErrorClass {
	var de *DomainError
	if errors.As(err, &de) {
		if _, ok := transientCodes[de.Code]; ok {
			return ClassTransient
		}
		if _, ok := validationCodes[de.Code]; ok {
			return ClassValidation
		}
		if de.Code == "MALFORMED_RECORD" {
			return ClassFatal
		}
	}
	return ClassTransient
}

// IsTransient reports whether err should be retried with backoff.
func IsTransient(err error) bool {
	return Classify(err) == ClassTransient
}
