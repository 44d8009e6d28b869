package gemini

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/upb/medchat-gateway/services/providers"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	defaultModel   = "gemini-1.5-flash"
)

// GeminiAdapter implements the Provider interface for the Gemini
// generateContent API.
type GeminiAdapter struct {
	config     providers.ProviderConfig
	httpClient *http.Client
}

// NewGeminiAdapter creates a new Gemini adapter
func NewGeminiAdapter(config providers.ProviderConfig) *GeminiAdapter {
	if config.BaseURL == "" {
		config.BaseURL = defaultBaseURL
	}
	if config.Model == "" {
		config.Model = defaultModel
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}

	return &GeminiAdapter{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
	}
}

// Name returns the provider name
func (a *GeminiAdapter) Name() string {
	return providers.Gemini
}

// Complete sends directive and message concatenated in a single user part.
func (a *GeminiAdapter) Complete(ctx context.Context, directive, message string) (string, error) {
	if a.config.APIKey == "" {
		return "", providers.NewProviderError(a.Name(), providers.CodeMissingAPIKey, "cannot call provider", 0, providers.ErrMissingAPIKey)
	}

	req := GenerateContentRequest{
		Contents: []Content{{
			Role:  "user",
			Parts: []Part{{Text: directive + "\n\n" + message}},
		}},
	}
	if a.config.MaxTokens > 0 {
		req.GenerationConfig = &GenerationConfig{MaxOutputTokens: a.config.MaxTokens}
	}

	headers := make(map[string]string, len(a.config.Headers)+1)
	for k, v := range a.config.Headers {
		headers[k] = v
	}
	headers["x-goog-api-key"] = a.config.APIKey

	var resp GenerateContentResponse
	if err := providers.PostJSON(ctx, a.httpClient, a.Name(), a.endpoint(), headers, req, &resp); err != nil {
		return "", err
	}

	return providers.ExtractText(a.Name(), &resp)
}

// endpoint never carries the API key; it goes in the x-goog-api-key header.
func (a *GeminiAdapter) endpoint() string {
	return strings.TrimRight(a.config.BaseURL, "/") +
		"/models/" + url.PathEscape(a.config.Model) + ":generateContent"
}

type GenerateContentRequest struct {
	Contents         []Content         `json:"contents"`
	GenerationConfig *GenerationConfig `json:"generationConfig,omitempty"`
}

type GenerationConfig struct {
	MaxOutputTokens int `json:"maxOutputTokens,omitempty"`
}

type Content struct {
	Role  string `json:"role,omitempty"`
	Parts []Part `json:"parts"`
}

type Part struct {
	Text string `json:"text,omitempty"`
}

type GenerateContentResponse struct {
	Candidates []Candidate `json:"candidates"`
}

// Text concatenates the text of every part of the first candidate.
func (r *GenerateContentResponse) Text() string {
	if len(r.Candidates) == 0 {
		return ""
	}
	var b strings.Builder
	for _, p := range r.Candidates[0].Content.Parts {
		b.WriteString(p.Text)
	}
	return b.String()
}

type Candidate struct {
	Content      Content `json:"content"`
	FinishReason string  `json:"finishReason"`
}
