package llm

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrEmptyResponse indicates the backend answered without any content
var ErrEmptyResponse = errors.New("empty response from API")

// geminiInvalidKeyMarker is the reason Gemini reports for a bad key, which it
// returns as HTTP 400 rather than 401.
const geminiInvalidKeyMarker = "API_KEY_INVALID"

// APIError represents an error returned by an LLM backend
type APIError struct {
	Provider   string // openai, ollama, gemini, azure_openai
	StatusCode int    // HTTP status code
	Message    string // Error message from API
	Err        error  // Underlying error
}

func (e *APIError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s API error (HTTP %d): %s", e.Provider, e.StatusCode, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s API error: %s: %v", e.Provider, e.Message, e.Err)
	}
	return fmt.Sprintf("%s API error: %s", e.Provider, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// IsAuthError checks if the error indicates rejected credentials
func (e *APIError) IsAuthError() bool {
	if e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden {
		return true
	}
	return strings.Contains(e.Message, geminiInvalidKeyMarker)
}

// IsRateLimited checks if the error indicates rate limiting
func (e *APIError) IsRateLimited() bool {
	return e.StatusCode == http.StatusTooManyRequests
}

// NewAPIError creates a new APIError with the given parameters
func NewAPIError(provider string, statusCode int, message string, err error) *APIError {
	return &APIError{
		Provider:   provider,
		StatusCode: statusCode,
		Message:    message,
		Err:        err,
	}
}

// ParseError represents a reply that does not conform to the OptionsResponse schema
type ParseError struct {
	Provider string
	Input    string
	Err      error
}

func (e *ParseError) Error() string {
	if e.Provider == "" {
		return fmt.Sprintf("invalid options response: %v", e.Err)
	}
	return fmt.Sprintf("%s returned an invalid options response: %v", e.Provider, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// IsAuthError reports whether err, anywhere in its chain, is a credential rejection
func IsAuthError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.IsAuthError()
}
