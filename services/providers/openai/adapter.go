package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/upb/medchat-gateway/services/providers"
)

const (
	defaultBaseURL = "https://api.openai.com/v1"
	defaultModel   = "gpt-4o-mini"
)

// OpenAIAdapter implements the Provider interface for OpenAI-compatible
// chat-completions endpoints.
type OpenAIAdapter struct {
	config     providers.ProviderConfig
	httpClient *http.Client
}

// NewOpenAIAdapter creates a new OpenAI adapter
func NewOpenAIAdapter(config providers.ProviderConfig) *OpenAIAdapter {
	if config.BaseURL == "" {
		config.BaseURL = defaultBaseURL
	}
	if config.Model == "" {
		config.Model = defaultModel
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}

	return &OpenAIAdapter{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

// Name returns the provider name
func (a *OpenAIAdapter) Name() string {
	return providers.OpenAI
}

// Complete performs one chat completion with the directive as system message
func (a *OpenAIAdapter) Complete(ctx context.Context, directive, message string) (string, error) {
	if a.config.APIKey == "" {
		return "", providers.NewProviderError(a.Name(), providers.CodeMissingAPIKey, "cannot call provider", 0, providers.ErrMissingAPIKey)
	}

	headers := map[string]string{"Authorization": "Bearer " + a.config.APIKey}
	for k, v := range a.config.Headers {
		headers[k] = v
	}

	var resp ChatResponse
	url := strings.TrimRight(a.config.BaseURL, "/") + "/chat/completions"
	if err := providers.PostJSON(ctx, a.httpClient, a.Name(), url, headers, a.buildRequest(directive, message), &resp); err != nil {
		return "", a.classifyError(err)
	}

	return providers.ExtractText(a.Name(), &resp)
}

// buildRequest converts the directive and message to OpenAI format
func (a *OpenAIAdapter) buildRequest(directive, message string) *ChatRequest {
	req := &ChatRequest{
		Model: a.config.Model,
		Messages: []Message{
			{Role: "system", Content: directive},
			{Role: "user", Content: message},
		},
	}
	if a.config.MaxTokens > 0 {
		req.MaxTokens = &a.config.MaxTokens
	}
	return req
}

// classifyError replaces the generic status code with OpenAI's error type
// when the body carries one.
func (a *OpenAIAdapter) classifyError(err error) error {
	provErr, ok := providers.AsProviderError(err)
	if !ok || provErr.Code != providers.CodeUpstreamStatus {
		return err
	}

	var errResp ErrorResponse
	if jsonErr := json.Unmarshal([]byte(provErr.Message), &errResp); jsonErr == nil && errResp.Error.Type != "" {
		provErr.Code = errResp.Error.Type
	}
	return provErr
}

// OpenAI-specific request/response types

type ChatRequest struct {
	Model     string    `json:"model"`
	Messages  []Message `json:"messages"`
	MaxTokens *int      `json:"max_tokens,omitempty"`
}

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatResponse struct {
	ID      string   `json:"id"`
	Object  string   `json:"object"`
	Created int64    `json:"created"`
	Model   string   `json:"model"`
	Choices []Choice `json:"choices"`
	Usage   Usage    `json:"usage"`
}

// Text returns the first choice's message content.
func (r *ChatResponse) Text() string {
	if len(r.Choices) == 0 {
		return ""
	}
	return r.Choices[0].Message.Content
}

type Choice struct {
	Index        int     `json:"index"`
	Message      Message `json:"message"`
	FinishReason string  `json:"finish_reason"`
}

type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

type ErrorBody struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    string `json:"code"`
}
