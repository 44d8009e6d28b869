package anthropic

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/upb/medchat-gateway/services/providers"
)

const (
	defaultBaseURL   = "https://api.anthropic.com"
	defaultModel     = "claude-3-5-haiku-latest"
	defaultMaxTokens = 800
	apiVersion       = "2023-06-01"
)

// AnthropicAdapter implements the Provider interface for the Anthropic
// messages API.
type AnthropicAdapter struct {
	config     providers.ProviderConfig
	httpClient *http.Client
}

// NewAnthropicAdapter creates a new Anthropic adapter
func NewAnthropicAdapter(config providers.ProviderConfig) *AnthropicAdapter {
	if config.BaseURL == "" {
		config.BaseURL = defaultBaseURL
	}
	if config.Model == "" {
		config.Model = defaultModel
	}
	if config.MaxTokens <= 0 {
		config.MaxTokens = defaultMaxTokens
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}

	return &AnthropicAdapter{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
	}
}

// Name returns the provider name
func (a *AnthropicAdapter) Name() string {
	return providers.Anthropic
}

// Complete sends the directive as the system prompt and the message as the
// only user turn.
func (a *AnthropicAdapter) Complete(ctx context.Context, directive, message string) (string, error) {
	if a.config.APIKey == "" {
		return "", providers.NewProviderError(a.Name(), providers.CodeMissingAPIKey, "cannot call provider", 0, providers.ErrMissingAPIKey)
	}

	headers := map[string]string{
		"x-api-key":         a.config.APIKey,
		"anthropic-version": apiVersion,
	}
	for k, v := range a.config.Headers {
		headers[k] = v
	}

	req := MessagesRequest{
		Model:     a.config.Model,
		MaxTokens: a.config.MaxTokens,
		System:    directive,
		Messages:  []Message{{Role: "user", Content: message}},
	}

	var resp MessagesResponse
	url := strings.TrimRight(a.config.BaseURL, "/") + "/v1/messages"
	if err := providers.PostJSON(ctx, a.httpClient, a.Name(), url, headers, req, &resp); err != nil {
		return "", err
	}

	return providers.ExtractText(a.Name(), &resp)
}

type MessagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	System    string    `json:"system,omitempty"`
	Messages  []Message `json:"messages"`
}

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type MessagesResponse struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	Role       string         `json:"role"`
	Model      string         `json:"model"`
	Content    []ContentBlock `json:"content"`
	StopReason string         `json:"stop_reason"`
	Usage      Usage          `json:"usage"`
}

// Text joins every text block with newlines. Tool-use and other block
// types are ignored.
func (r *MessagesResponse) Text() string {
	parts := make([]string, 0, len(r.Content))
	for _, block := range r.Content {
		if block.Type == "text" && block.Text != "" {
			parts = append(parts, block.Text)
		}
	}
	return strings.Join(parts, "\n")
}

type ContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}
