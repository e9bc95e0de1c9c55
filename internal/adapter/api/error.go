package api

import (
	"errors"
	"fmt"
)

// Error is an HTTP-level failure returned by the backend. Anything in the
// 4xx range is the caller's fault and terminal; everything else is worth
// another attempt.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api: status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("api: status %d", e.StatusCode)
}

// IsRetryable classifies a request failure. 4xx responses (including 401,
// which additionally tears down the session) are terminal; 5xx responses,
// timeouts and transport failures are transient.
func IsRetryable(err error) bool {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode < 400 || apiErr.StatusCode >= 500
	}
	return true
}

// StatusCode extracts the HTTP status from err, or 0 when the request
// never produced a response.
func StatusCode(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}
