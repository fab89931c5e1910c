package netbox

import (
	"errors"
	"fmt"
)

// maxBodyInError caps how much of a response body is kept on an APIError.
const maxBodyInError = 4096

// APIError is returned when NetBox answers with a non-2xx status.
type APIError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s %s: unexpected status %d: %s", e.Method, e.URL, e.StatusCode, e.Body)
}

// ConnectionError is returned when a request did not produce a response.
type ConnectionError struct {
	Method string
	URL    string
	Err    error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// StatusOf returns the HTTP status and body carried by err, if any.
// Connection failures report status 0.
func StatusOf(err error) (int, string) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode, apiErr.Body
	}
	return 0, ""
}

// IsTransport reports whether err originated in the transport layer.
func IsTransport(err error) bool {
	var apiErr *APIError
	var connErr *ConnectionError
	return errors.As(err, &apiErr) || errors.As(err, &connErr)
}

func truncate(body []byte) string {
	if len(body) > maxBodyInError {
		return string(body[:maxBodyInError]) + "..."
	}
	return string(body)
}
