package gitlab

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// UnknownErrorMessage is reported when an error body carries no usable message.
const UnknownErrorMessage = "unknown error"

// Static errors for err113 compliance.
var (
	ErrInvalidHeaderValue = errors.New("invalid header value")
	ErrTransport          = errors.New("transport failure")
	ErrAPI                = errors.New("gitlab server error")
	ErrInvalidJSON        = errors.New("could not parse JSON response")
	ErrDataType           = errors.New("response does not match target type")
	ErrPageNotArray       = errors.New("paged response is not a JSON array")
	ErrPaginationStalled  = errors.New("server ignored the page parameter")
	ErrPaginationLimit    = errors.New("pagination exceeded the page limit")
	ErrMissingCursor      = errors.New("next link carries no cursor")
	ErrCircuitBreakerOpen = errors.New("circuit breaker is open")
	ErrInvalidSortOrder   = errors.New("invalid sort order")
	ErrInvalidPageSize    = errors.New("page size must be between 1 and 100")
	ErrInvalidID          = errors.New("identifier must be a positive integer")
)

// AuthErrorKind classifies credential failures.
type AuthErrorKind int

const (
	// AuthErrorHeaderValue means the token cannot be encoded as an HTTP header value.
	AuthErrorHeaderValue AuthErrorKind = iota + 1
)

func (k AuthErrorKind) String() string {
	switch k {
	case AuthErrorHeaderValue:
		return "header value"
	default:
		return "unknown"
	}
}

// AuthError is returned when a credential cannot be attached to a request.
type AuthError struct {
	Kind   AuthErrorKind
	Header string
}

// Error implements the error interface. The token itself is never included.
func (e *AuthError) Error() string {
	return fmt.Sprintf("auth error: %s for %s", e.Kind, e.Header)
}

// Unwrap allows errors.Is(err, ErrInvalidHeaderValue).
func (e *AuthError) Unwrap() error {
	if e.Kind == AuthErrorHeaderValue {
		return ErrInvalidHeaderValue
	}

	return nil
}

// TransportError wraps network, TLS and connection failures.
type TransportError struct {
	Method string
	URL    string
	Err    error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
}

// Unwrap returns the underlying transport error.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// Is matches ErrTransport.
func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}

// GitlabError is an HTTP failure status with the server's message.
type GitlabError struct {
	StatusCode int             `json:"status_code" yaml:"status_code"`
	Message    string          `json:"message"     yaml:"message"`
	Body       json.RawMessage `json:"body"        yaml:"-"`
}

// Error implements the error interface.
func (e *GitlabError) Error() string {
	return fmt.Sprintf("gitlab server error (%d): %s", e.StatusCode, e.Message)
}

// Is matches ErrAPI.
func (e *GitlabError) Is(target error) bool {
	return target == ErrAPI
}

// DecodeError reports a body that is not valid JSON.
type DecodeError struct {
	StatusCode int
	Err        error
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	return fmt.Sprintf("%v: %v", ErrInvalidJSON, e.Err)
}

// Unwrap returns the JSON syntax error.
func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Is matches ErrInvalidJSON.
func (e *DecodeError) Is(target error) bool {
	return target == ErrInvalidJSON
}

// DataTypeError reports valid JSON whose shape does not match the target type.
type DataTypeError struct {
	TypeName string
	Raw      json.RawMessage
	Err      error
}

// Error implements the error interface.
func (e *DataTypeError) Error() string {
	return fmt.Sprintf("could not parse %s data from JSON: %v", e.TypeName, e.Err)
}

// Unwrap returns the underlying unmarshal error.
func (e *DataTypeError) Unwrap() error {
	return e.Err
}

// Is matches ErrDataType.
func (e *DataTypeError) Is(target error) bool {
	return target == ErrDataType
}

// PaginationError reports a violated collection contract or a tripped loop guard.
type PaginationError struct {
	Page int
	Err  error
}

// Error implements the error interface.
func (e *PaginationError) Error() string {
	return fmt.Sprintf("pagination failed at page %d: %v", e.Page, e.Err)
}

// Unwrap returns the pagination sentinel.
func (e *PaginationError) Unwrap() error {
	return e.Err
}

// IsNotFound checks if the error is a 404 from the API.
func IsNotFound(err error) bool {
	return hasStatus(err, http.StatusNotFound)
}

// IsUnauthorized checks if the error is a 401 from the API.
func IsUnauthorized(err error) bool {
	return hasStatus(err, http.StatusUnauthorized)
}

// IsForbidden checks if the error is a 403 from the API.
func IsForbidden(err error) bool {
	return hasStatus(err, http.StatusForbidden)
}

// IsServerError checks if the error is a 5xx from the API. A 5xx whose body
// is not JSON, such as a proxy's HTML error page, counts as well.
func IsServerError(err error) bool {
	apiErr := &GitlabError{}
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode >= http.StatusInternalServerError
	}

	decodeErr := &DecodeError{}
	if errors.As(err, &decodeErr) {
		return decodeErr.StatusCode >= http.StatusInternalServerError
	}

	return false
}

func hasStatus(err error, status int) bool {
	apiErr := &GitlabError{}
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == status
	}

	return false
}

// errorMessage extracts the "message" string from an error body.
func errorMessage(raw json.RawMessage) string {
	var object map[string]json.RawMessage

	err := json.Unmarshal(raw, &object)
	if err != nil || object == nil {
		return UnknownErrorMessage
	}

	field, ok := object["message"]
	if !ok || bytes.Equal(bytes.TrimSpace(field), []byte("null")) {
		return UnknownErrorMessage
	}

	var message string

	err = json.Unmarshal(field, &message)
	if err != nil {
		return UnknownErrorMessage
	}

	return message
}
