package integrations

import (
	"errors"
	"net/http"
	"time"
)

// DefaultTimeout applies when a client is created with a zero timeout.
const DefaultTimeout = 30 * time.Second

var (
	// ErrNotFound is returned when the remote resource answers 404.
	ErrNotFound = errors.New("resource not found")

	// ErrNetwork is returned for HTTP failures (timeouts, connection errors, non-200 responses).
	ErrNetwork = errors.New("network error")
)

// NewHTTPClient creates an HTTP client with the given timeout.
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{Timeout: timeout}
}
