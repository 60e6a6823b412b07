package api

import (
	"errors"
	"fmt"
)

// ErrMalformedResponse reports a response body that could not be understood.
var ErrMalformedResponse = errors.New("malformed response")

// APIError is a well-formed error response from the API. Message is the
// body's "error" field and may be empty.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api returned status %d", e.Status)
	}
	return fmt.Sprintf("api returned status %d: %s", e.Status, e.Message)
}

// UserMessage returns the server-provided message, or fallback when it sent none.
func UserMessage(err error, fallback string) (string, bool) {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return "", false
	}
	if apiErr.Message == "" {
		return fallback, true
	}
	return apiErr.Message, true
}
