package commerce

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyBaseURL is returned when the client is constructed without an
	// API base URL.
	ErrEmptyBaseURL = errors.New("commerce: base URL is required")
)

// ErrUnexpectedStatus is returned when the API responds with a non-success
// status code.
type ErrUnexpectedStatus struct {
	Method     string
	Path       string
	StatusCode int
}

func (e ErrUnexpectedStatus) Error() string {
	return fmt.Sprintf("commerce: %s %s returned unexpected status %d", e.Method, e.Path, e.StatusCode)
}
