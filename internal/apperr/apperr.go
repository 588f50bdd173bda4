// Package apperr defines the error taxonomy every layer reports through.
// Repositories and validators build these; handlers map them onto the HTTP
// envelope without ever leaking raw store errors to clients.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind int

const (
	// KindInvalidQuery: malformed or unwhitelisted filter/sort/pagination parameter.
	KindInvalidQuery Kind = iota + 1
	// KindValidationFailed: request body fails field-level constraints.
	KindValidationFailed
	// KindNotFound: referenced entity id does not exist.
	KindNotFound
	// KindConflictDependency: mutation blocked by dependent rows.
	KindConflictDependency
	// KindDuplicateKey: uniqueness constraint violated.
	KindDuplicateKey
	// KindStoreUnavailable: store connection or transaction failure.
	KindStoreUnavailable
)

// FieldError names one offending field. InvalidQuery and ValidationFailed
// carry every violation at once, not just the first.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type Error struct {
	Kind       Kind
	Message    string
	Field      string       // set for single-field duplicate-key conflicts
	Fields     []FieldError // set for invalid-query / validation failures
	Dependents int          // set for dependency conflicts
	cause      error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

// StatusCode maps the taxonomy onto HTTP statuses.
func (e *Error) StatusCode() int {
	switch e.Kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindStoreUnavailable:
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}

func InvalidQuery(fields []FieldError) *Error {
	return &Error{
		Kind:    KindInvalidQuery,
		Message: "invalid query parameters",
		Fields:  fields,
	}
}

func ValidationFailed(fields []FieldError) *Error {
	return &Error{
		Kind:    KindValidationFailed,
		Message: "validation failed",
		Fields:  fields,
	}
}

func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// ConflictDependency reports how many dependent rows block the mutation so
// clients can show the exact count.
func ConflictDependency(message string, dependents int) *Error {
	return &Error{Kind: KindConflictDependency, Message: message, Dependents: dependents}
}

func DuplicateKey(field, message string) *Error {
	return &Error{Kind: KindDuplicateKey, Field: field, Message: message}
}

func Store(err error) *Error {
	return &Error{Kind: KindStoreUnavailable, Message: "store unavailable", cause: err}
}

// DataIntegrity reports corrupt stored data, e.g. a relationship cycle.
// The request was fine, so unlike Store the message is specific and
// surfaced to the client.
func DataIntegrity(format string, args ...any) *Error {
	return &Error{Kind: KindStoreUnavailable, Message: fmt.Sprintf(format, args...)}
}

// Storef wraps a store failure with an operation label for the logs. The
// client still sees only the generic message.
func Storef(err error, format string, args ...any) *Error {
	return &Error{
		Kind:    KindStoreUnavailable,
		Message: "store unavailable",
		cause:   fmt.Errorf(format+": %w", append(args, err)...),
	}
}

// From extracts an *Error from an error chain; ok is false for foreign errors.
func From(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	e, ok := From(err)
	return ok && e.Kind == kind
}
