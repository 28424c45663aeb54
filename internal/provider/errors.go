package provider

import (
	"errors"
	"fmt"
)

// FallbackMessage is shown when a failure carries no upstream message.
const FallbackMessage = "Something went wrong"

// ErrorKind classifies catalog failures.
type ErrorKind string

const (
	// ErrNetwork means the request never completed.
	ErrNetwork ErrorKind = "network"
	// ErrAPI means the server answered with a non-success status.
	ErrAPI ErrorKind = "api"
	// ErrMalformed means the server answered 2xx with an unexpected body.
	ErrMalformed ErrorKind = "malformed"
)

// APIPayload is the error body TMDB returns on failure.
type APIPayload struct {
	StatusCode    int    `json:"status_code"`
	StatusMessage string `json:"status_message"`
	Success       bool   `json:"success"`
}

// CatalogError represents an error from a catalog provider.
type CatalogError struct {
	Provider   string
	Kind       ErrorKind
	Code       string
	StatusCode int         // HTTP status for ErrAPI
	Payload    *APIPayload // decoded upstream body when available
	Retry      bool
	Err        error
}

func (e *CatalogError) Error() string {
	switch {
	case e.Payload != nil && e.Payload.StatusMessage != "":
		return fmt.Sprintf("%s %s error: %s", e.Provider, e.Kind, e.Payload.StatusMessage)
	case e.Err != nil:
		return fmt.Sprintf("%s %s error: %v", e.Provider, e.Kind, e.Err)
	case e.StatusCode != 0:
		return fmt.Sprintf("%s %s error: HTTP %d", e.Provider, e.Kind, e.StatusCode)
	default:
		return fmt.Sprintf("%s %s error", e.Provider, e.Kind)
	}
}

func (e *CatalogError) Unwrap() error {
	return e.Err
}

// Message is the user facing text: the upstream status message when one was
// returned, otherwise FallbackMessage.
func (e *CatalogError) Message() string {
	if e.Payload != nil && e.Payload.StatusMessage != "" {
		return e.Payload.StatusMessage
	}
	return FallbackMessage
}

// UserMessage extracts the user facing text from any error.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var ce *CatalogError
	if errors.As(err, &ce) {
		return ce.Message()
	}
	return FallbackMessage
}

// IsRetryable reports whether err is a transient catalog failure.
func IsRetryable(err error) bool {
	var ce *CatalogError
	if errors.As(err, &ce) {
		return ce.Retry
	}
	return false
}
