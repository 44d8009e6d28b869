package providers

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Provider identifiers as they appear in requests and results.
const (
	OpenAI    = "openai"
	Anthropic = "anthropic"
	Gemini    = "gemini"
)

// AutoOrder is the default try-order used when the caller has no preference.
var AutoOrder = []string{OpenAI, Gemini, Anthropic}

// IsKnown reports whether name is one of the supported providers.
func IsKnown(name string) bool {
	for _, p := range AutoOrder {
		if p == name {
			return true
		}
	}
	return false
}

// Provider represents one upstream LLM API.
type Provider interface {
	// Name returns the provider identifier (e.g., "openai", "anthropic", "gemini")
	Name() string

	// Complete sends the system directive and the user message in a single
	// outbound call and returns the extracted reply text.
	Complete(ctx context.Context, directive, message string) (string, error)
}

// Reply is implemented by every provider-native response body.
type Reply interface {
	// Text returns the plain reply text, or "" when the body carries none.
	Text() string
}

// ProviderConfig holds common configuration for providers
type ProviderConfig struct {
	// APIKey for authentication
	APIKey string

	// BaseURL for the API (optional override)
	BaseURL string

	// Model to request
	Model string

	// Timeout for a single call
	Timeout time.Duration

	// MaxTokens caps the reply length where the API requires or accepts it
	MaxTokens int

	// Additional headers
	Headers map[string]string
}

// DefaultProviderConfig returns a sensible default configuration
func DefaultProviderConfig() ProviderConfig {
	return ProviderConfig{
		Timeout:   30 * time.Second,
		MaxTokens: 800,
		Headers:   make(map[string]string),
	}
}

// Error codes carried by ProviderError.
const (
	CodeMissingAPIKey  = "MISSING_API_KEY"
	CodeMarshal        = "MARSHAL_ERROR"
	CodeRequest        = "REQUEST_ERROR"
	CodeHTTP           = "HTTP_ERROR"
	CodeRead           = "READ_ERROR"
	CodeUnmarshal      = "UNMARSHAL_ERROR"
	CodeEmptyResponse  = "EMPTY_RESPONSE"
	CodeUpstreamStatus = "UPSTREAM_STATUS"
)

// ErrMissingAPIKey is the cause of a ProviderError raised before any call
// is attempted.
var ErrMissingAPIKey = errors.New("api key not configured")

// ProviderError represents an error from a provider
type ProviderError struct {
	// Provider that generated the error
	Provider string

	// Code is the error code
	Code string

	// Message is the error message
	Message string

	// StatusCode is the HTTP status code (if applicable)
	StatusCode int

	// Cause is the underlying error
	Cause error
}

// Error implements the error interface
func (e *ProviderError) Error() string {
	msg := e.Provider + ": " + e.Message
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s: status %d: %s", e.Provider, e.StatusCode, e.Message)
	}
	if e.Cause != nil {
		return msg + ": " + e.Cause.Error()
	}
	return msg
}

// Summary names the provider, code and status only. Upstream bodies and
// causes are left out, so it is safe to show to clients and to persist.
func (e *ProviderError) Summary() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: %s (status %d)", e.Provider, e.Code, e.StatusCode)
	}
	return e.Provider + ": " + e.Code
}

// Unwrap implements error unwrapping
func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// NewProviderError creates a new provider error
func NewProviderError(provider, code, message string, statusCode int, cause error) *ProviderError {
	return &ProviderError{
		Provider:   provider,
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
		Cause:      cause,
	}
}

// AsProviderError extracts a ProviderError from err
func AsProviderError(err error) (*ProviderError, bool) {
	var provErr *ProviderError
	if errors.As(err, &provErr) {
		return provErr, true
	}
	return nil, false
}
