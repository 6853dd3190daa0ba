package api

import "fmt"

// ErrorType represents the category of a sellerdesk error.
type ErrorType string

const (
	// ErrorTypeValidation marks bad user input. Recoverable: the dialog
	// re-prompts the same step.
	ErrorTypeValidation ErrorType = "validation"

	// ErrorTypeMalformedResponse marks an upstream payload that decoded
	// but is missing an expected field.
	ErrorTypeMalformedResponse ErrorType = "malformed_response"

	// ErrorTypeAuthExhausted marks a 403 that persisted after a token
	// refresh. Terminal for the current action.
	ErrorTypeAuthExhausted ErrorType = "auth_exhausted"

	// ErrorTypeUpstream marks a non-200/non-403 upstream status.
	ErrorTypeUpstream ErrorType = "upstream_error"

	// ErrorTypeNotFound marks a missing record or file.
	ErrorTypeNotFound ErrorType = "not_found"

	// ErrorTypePersistence marks a storage collaborator failure.
	ErrorTypePersistence ErrorType = "persistence_error"
)

// Error is a structured sellerdesk error with type, optional field name,
// and, for upstream errors, the HTTP status and raw body.
type Error struct {
	Type    ErrorType
	Field   string
	Status  int
	Body    string
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	switch {
	case e.Field != "":
		return fmt.Sprintf("%s: %s (field: %s)", e.Type, e.Message, e.Field)
	case e.Status != 0:
		return fmt.Sprintf("%s: %s (status: %d)", e.Type, e.Message, e.Status)
	default:
		return fmt.Sprintf("%s: %s", e.Type, e.Message)
	}
}

// IsType reports whether err is an *Error of the given type.
func IsType(err error, t ErrorType) bool {
	e, ok := err.(*Error)
	return ok && e.Type == t
}

// NewValidationError creates an Error for a rejected user input.
func NewValidationError(field, message string) *Error {
	return &Error{
		Type:    ErrorTypeValidation,
		Field:   field,
		Message: message,
	}
}

// NewMalformedResponseError creates an Error for an upstream payload
// missing an expected field.
func NewMalformedResponseError(message string) *Error {
	return &Error{
		Type:    ErrorTypeMalformedResponse,
		Message: message,
	}
}

// NewAuthExhaustedError creates an Error for a 403 that a token refresh
// did not resolve.
func NewAuthExhaustedError(accountID int64) *Error {
	return &Error{
		Type:    ErrorTypeAuthExhausted,
		Status:  403,
		Message: fmt.Sprintf("token refresh did not resolve 403 for account %d", accountID),
	}
}

// NewUpstreamError creates an Error carrying the upstream status code and
// raw response body.
func NewUpstreamError(status int, body string) *Error {
	return &Error{
		Type:    ErrorTypeUpstream,
		Status:  status,
		Body:    body,
		Message: "unexpected upstream status",
	}
}

// NewNotFoundError creates an Error for a missing record or file.
func NewNotFoundError(message string) *Error {
	return &Error{
		Type:    ErrorTypeNotFound,
		Message: message,
	}
}

// NewPersistenceError creates an Error wrapping a storage failure.
func NewPersistenceError(message string) *Error {
	return &Error{
		Type:    ErrorTypePersistence,
		Message: message,
	}
}
