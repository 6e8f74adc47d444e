// Package notesdk holds the wire types the Quillboard browser client
// exchanges with the identity service: response payloads and the
// structured error envelope.
package notesdk

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/quillboard/quillboard/pkg/httpx"
)

// Stable error codes surfaced to the client. These never leak internal
// identifiers or stack traces.
const (
	ErrorCodeValidationFailed     = "validation_failed"
	ErrorCodeAuthenticationFailed = "authentication_failed"
	ErrorCodeForbidden            = "forbidden"
	ErrorCodeNotFound             = "not_found"
	ErrorCodeConflict             = "conflict"
	ErrorCodeExpired              = "expired"
	ErrorCodeRateLimited          = "rate_limited"
	ErrorCodeInternalError        = "internal_error"
)

// APIError is the structured failure payload:
// {"status":"error","code":...,"message":...}.
// It implements the error interface and can be used both by the server
// (to write HTTP responses) and by clients (to represent failures).
type APIError struct {
	// StatusCode is the HTTP status code for this error
	StatusCode int `json:"-"`

	Status  string `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// WriteError writes this APIError to an HTTP response writer.
func (e *APIError) WriteError(w http.ResponseWriter) {
	httpx.NoCache(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.StatusCode)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"status":  "error",
		"code":    e.Code,
		"message": e.Message,
	})
}

// NewAPIError creates an APIError with the given status code, error code
// and message.
func NewAPIError(statusCode int, code, message string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		Status:     "error",
		Code:       code,
		Message:    message,
	}
}

var (
	// ErrInvalidBody is returned when the request body cannot be parsed
	// or required fields are missing.
	ErrInvalidBody = NewAPIError(
		http.StatusBadRequest,
		ErrorCodeValidationFailed,
		"the request is malformed or missing required fields",
	)

	// ErrWeakPassword is returned when a new password fails the
	// minimum-strength policy.
	ErrWeakPassword = NewAPIError(
		http.StatusBadRequest,
		ErrorCodeValidationFailed,
		"password must be at least 12 characters and contain a letter and a digit",
	)

	// ErrInvalidCredentials is returned on bad email/password pairs.
	ErrInvalidCredentials = NewAPIError(
		http.StatusUnauthorized,
		ErrorCodeAuthenticationFailed,
		"invalid credentials",
	)

	// ErrUnauthenticated is returned when the session token is missing,
	// invalid, expired or revoked.
	ErrUnauthenticated = NewAPIError(
		http.StatusUnauthorized,
		ErrorCodeAuthenticationFailed,
		"the session token is missing, invalid, expired or revoked",
	)

	// ErrForbidden is returned when a caller acts on an account that is
	// not its own.
	ErrForbidden = NewAPIError(
		http.StatusForbidden,
		ErrorCodeForbidden,
		"access denied",
	)

	// ErrNotFound is returned when the addressed resource does not exist.
	ErrNotFound = NewAPIError(
		http.StatusNotFound,
		ErrorCodeNotFound,
		"not found",
	)

	// ErrEmailTaken is returned on duplicate registration.
	ErrEmailTaken = NewAPIError(
		http.StatusConflict,
		ErrorCodeConflict,
		"an account with this email already exists",
	)

	// ErrResetExpired is returned for reset tokens past their lifetime.
	ErrResetExpired = NewAPIError(
		http.StatusUnauthorized,
		ErrorCodeExpired,
		"the reset token has expired",
	)

	// ErrServerError is returned for unexpected store or crypto failures.
	ErrServerError = NewAPIError(
		http.StatusInternalServerError,
		ErrorCodeInternalError,
		"internal server error",
	)
)
