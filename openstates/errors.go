package openstates

import (
	"errors"
	"fmt"
	"net/http"
)

// Common errors
var (
	// ErrMissingAPIKey is returned by every operation when no API key is set.
	// It is the only *MissingAPIKeyError value the package produces.
	ErrMissingAPIKey = &MissingAPIKeyError{}
	// ErrAPIRequest matches any *APIRequestError via errors.Is
	ErrAPIRequest = errors.New("openstates API request failed")
)

// MissingAPIKeyError indicates an operation was attempted without an API key.
// It is returned before any network activity; set a key and retry.
type MissingAPIKeyError struct{}

// Error implements the error interface
func (e *MissingAPIKeyError) Error() string {
	return "openstates: API key is not specified (set " + EnvAPIKey + ")"
}

// APIRequestError represents a failed request to the Open States API:
// a transport failure, a non-2xx response, an undecodable body, or a
// non-OK status when status checking is enabled.
type APIRequestError struct {
	Method     string
	URL        string // apikey redacted
	StatusCode int    // zero when no response was received
	Message    string
	Body       string
	Err        error
}

// Error implements the error interface
func (e *APIRequestError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("openstates API request failed: status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("openstates API request failed: %s", e.Message)
}

// Unwrap returns the underlying error, if any
func (e *APIRequestError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrAPIRequest
func (e *APIRequestError) Is(target error) bool {
	return target == ErrAPIRequest
}

// IsNotFound checks if the error indicates a not found response
func (e *APIRequestError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// IsUnauthorized checks if the error indicates an authentication failure
func (e *APIRequestError) IsUnauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

// IsServerError checks if the upstream answered with a 5xx status
func (e *APIRequestError) IsServerError() bool {
	return e.StatusCode >= 500 && e.StatusCode < 600
}

// IsTransport reports whether the request failed before a response arrived
func (e *APIRequestError) IsTransport() bool {
	return e.StatusCode == 0 && e.Err != nil
}
