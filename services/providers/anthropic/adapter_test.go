package anthropic

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/upb/medchat-gateway/services/providers"
)

func TestNewAnthropicAdapter(t *testing.T) {
	adapter := NewAnthropicAdapter(providers.ProviderConfig{APIKey: "key"})

	assert.Equal(t, "anthropic", adapter.Name())
	assert.Equal(t, defaultBaseURL, adapter.config.BaseURL)
	assert.Equal(t, defaultModel, adapter.config.Model)
	assert.Equal(t, defaultMaxTokens, adapter.config.MaxTokens)
}

func TestAnthropicAdapter_Complete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, apiVersion, r.Header.Get("anthropic-version"))

		var req MessagesRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "be brief", req.System)
		assert.Equal(t, 300, req.MaxTokens)
		require.Len(t, req.Messages, 1)
		assert.Equal(t, "user", req.Messages[0].Role)
		assert.Equal(t, "What is asthma?", req.Messages[0].Content)

		_ = json.NewEncoder(w).Encode(MessagesResponse{
			ID:   "msg_1",
			Type: "message",
			Content: []ContentBlock{
				{Type: "text", Text: "Asthma is a chronic condition."},
				{Type: "tool_use"},
				{Type: "text", Text: "It affects the airways."},
			},
		})
	}))
	defer server.Close()

	adapter := NewAnthropicAdapter(providers.ProviderConfig{
		APIKey:    "test-key",
		BaseURL:   server.URL,
		MaxTokens: 300,
	})

	text, err := adapter.Complete(context.Background(), "be brief", "What is asthma?")
	require.NoError(t, err)
	assert.Equal(t, "Asthma is a chronic condition.\nIt affects the airways.", text)
}

func TestAnthropicAdapter_Complete_Errors(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantCode   string
		wantStatus int
	}{
		{
			name:       "overloaded",
			status:     529,
			body:       `{"type":"error","error":{"type":"overloaded_error","message":"Overloaded"}}`,
			wantCode:   providers.CodeUpstreamStatus,
			wantStatus: 529,
		},
		{
			name:     "no text blocks",
			status:   http.StatusOK,
			body:     `{"id":"msg_2","content":[{"type":"tool_use"}]}`,
			wantCode: providers.CodeEmptyResponse,
		},
		{
			name:       "malformed",
			status:     http.StatusOK,
			body:       `{"content":`,
			wantCode:   providers.CodeUnmarshal,
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			adapter := NewAnthropicAdapter(providers.ProviderConfig{APIKey: "key", BaseURL: server.URL})
			_, err := adapter.Complete(context.Background(), "d", "m")

			provErr, ok := providers.AsProviderError(err)
			require.True(t, ok, "expected ProviderError, got %v", err)
			assert.Equal(t, "anthropic", provErr.Provider)
			assert.Equal(t, tt.wantCode, provErr.Code)
			assert.Equal(t, tt.wantStatus, provErr.StatusCode)
			if tt.status >= 300 {
				assert.Contains(t, provErr.Error(), "Overloaded")
			}
		})
	}
}

func TestAnthropicAdapter_Complete_MissingKey(t *testing.T) {
	adapter := NewAnthropicAdapter(providers.ProviderConfig{BaseURL: "http://127.0.0.1:1"})

	_, err := adapter.Complete(context.Background(), "d", "m")
	assert.ErrorIs(t, err, providers.ErrMissingAPIKey)
}

func TestMessagesResponse_Text(t *testing.T) {
	assert.Equal(t, "", (&MessagesResponse{}).Text())
	assert.Equal(t, "one", (&MessagesResponse{Content: []ContentBlock{{Type: "text", Text: "one"}}}).Text())
}
