package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/upb/medchat-gateway/internal/prompt"
	"github.com/upb/medchat-gateway/middleware"
	"github.com/upb/medchat-gateway/services/routing"
	"github.com/upb/medchat-gateway/utils"
	"go.uber.org/zap"
)

// MockChatRouter is a mock implementation of ChatRouter
type MockChatRouter struct {
	mock.Mock
}

func (m *MockChatRouter) Route(ctx context.Context, req routing.ChatRequest) *routing.ChatResult {
	args := m.Called(ctx, req)
	return args.Get(0).(*routing.ChatResult)
}

// MockChatRecorder is a mock implementation of ChatRecorder
type MockChatRecorder struct {
	mock.Mock
}

func (m *MockChatRecorder) RecordResult(requestID string, result *routing.ChatResult) error {
	args := m.Called(requestID, result)
	return args.Error(0)
}

func newChatRequest(t *testing.T, body string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req.WithContext(middleware.WithRequestID(req.Context(), "req-test"))
}

func TestHandleChat(t *testing.T) {
	logger := zap.NewNop()

	t.Run("successful completion", func(t *testing.T) {
		router := new(MockChatRouter)
		recorder := new(MockChatRecorder)
		handler := NewChatHandler(router, recorder, logger)

		result := &routing.ChatResult{
			Text:      "Hypertension is...",
			Provider:  "openai",
			ElapsedMs: 321,
			Lang:      prompt.LanguageEnglish,
		}
		router.On("Route", mock.Anything, routing.ChatRequest{
			Message:   "What is hypertension?",
			Specialty: "Cardiology",
			Prefer:    routing.Preference{Provider: "openai"},
		}).Return(result)
		recorder.On("RecordResult", "req-test", result).Return(nil)

		w := httptest.NewRecorder()
		handler.HandleChat(w, newChatRequest(t,
			`{"message":"What is hypertension?","specialty":" Cardiology ","prefer":{"provider":"OpenAI"}}`))

		assert.Equal(t, http.StatusOK, w.Code)

		var response map[string]interface{}
		require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
		assert.Equal(t, "Hypertension is...", response["text"])
		assert.Equal(t, "openai", response["provider"])
		assert.Equal(t, float64(321), response["ms"])
		assert.Equal(t, "en", response["lang"])
		assert.NotContains(t, response, "error")
		assert.NotContains(t, response, "Attempts")

		router.AssertExpectations(t)
		recorder.AssertExpectations(t)
	})

	t.Run("fallback is still 200", func(t *testing.T) {
		router := new(MockChatRouter)
		handler := NewChatHandler(router, nil, logger)

		router.On("Route", mock.Anything, mock.MatchedBy(func(req routing.ChatRequest) bool {
			return req.Message == "Tengo dolor de cabeza" && req.Prefer == (routing.Preference{})
		})).Return(&routing.ChatResult{
			Text:     routing.FallbackMessage(prompt.LanguageSpanish),
			Provider: routing.ProviderFallback,
			Lang:     prompt.LanguageSpanish,
			Error:    "no providers configured",
		})

		w := httptest.NewRecorder()
		handler.HandleChat(w, newChatRequest(t, `{"message":"Tengo dolor de cabeza","prefer":{}}`))

		assert.Equal(t, http.StatusOK, w.Code)

		var response map[string]interface{}
		require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
		assert.Equal(t, "fallback", response["provider"])
		assert.Equal(t, "es", response["lang"])
		assert.Equal(t, "no providers configured", response["error"])
	})

	t.Run("recorder failure does not affect response", func(t *testing.T) {
		router := new(MockChatRouter)
		recorder := new(MockChatRecorder)
		handler := NewChatHandler(router, recorder, logger)

		result := &routing.ChatResult{Text: "ok", Provider: "gemini", Lang: prompt.LanguageEnglish}
		router.On("Route", mock.Anything, mock.Anything).Return(result)
		recorder.On("RecordResult", mock.Anything, mock.Anything).Return(errors.New("buffer full"))

		w := httptest.NewRecorder()
		handler.HandleChat(w, newChatRequest(t, `{"message":"What is asthma?"}`))

		assert.Equal(t, http.StatusOK, w.Code)
		recorder.AssertExpectations(t)
	})

	t.Run("passes explicit language", func(t *testing.T) {
		router := new(MockChatRouter)
		handler := NewChatHandler(router, nil, logger)

		router.On("Route", mock.Anything, mock.MatchedBy(func(req routing.ChatRequest) bool {
			return req.Prefer.Lang == "es" && req.Prefer.Provider == "auto"
		})).Return(&routing.ChatResult{Text: "hola", Provider: "anthropic", Lang: prompt.LanguageSpanish})

		w := httptest.NewRecorder()
		handler.HandleChat(w, newChatRequest(t, `{"message":"hello","prefer":{"provider":"auto","lang":"ES"}}`))

		assert.Equal(t, http.StatusOK, w.Code)
		router.AssertExpectations(t)
	})
}

func TestHandleChat_BadRequests(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		wantField   string
		wantMessage string
	}{
		{name: "empty message", body: `{"message":""}`, wantField: "message"},
		{name: "blank message", body: `{"message":"   "}`, wantField: "message"},
		{name: "missing message", body: `{"specialty":"General"}`, wantField: "message"},
		{name: "unknown provider", body: `{"message":"hi","prefer":{"provider":"bedrock"}}`, wantField: "prefer.provider"},
		{name: "unknown language", body: `{"message":"hi","prefer":{"lang":"fr"}}`, wantField: "prefer.lang"},
		{name: "malformed json", body: `{"message":`, wantMessage: "request body is not valid JSON"},
		{name: "empty body", body: ``, wantMessage: "request body is not valid JSON"},
		{name: "wrong type", body: `{"message":42}`, wantMessage: "request body is not valid JSON"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := new(MockChatRouter)
			handler := NewChatHandler(router, nil, zap.NewNop())

			w := httptest.NewRecorder()
			handler.HandleChat(w, newChatRequest(t, tt.body))

			assert.Equal(t, http.StatusBadRequest, w.Code)

			var response utils.ErrorResponse
			require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
			assert.Equal(t, "bad_request", response.Error)
			if tt.wantField != "" {
				assert.Contains(t, response.Details, tt.wantField)
			}
			if tt.wantMessage != "" {
				assert.Contains(t, response.Message, tt.wantMessage)
			}

			router.AssertNotCalled(t, "Route", mock.Anything, mock.Anything)
		})
	}
}

func TestHandleChat_BodyTooLarge(t *testing.T) {
	router := new(MockChatRouter)
	handler := NewChatHandler(router, nil, zap.NewNop())

	body := `{"message":"` + strings.Repeat("a", maxChatBodyBytes) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/chat", bytes.NewReader([]byte(body)))

	w := httptest.NewRecorder()
	handler.HandleChat(w, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	router.AssertNotCalled(t, "Route", mock.Anything, mock.Anything)
}

func TestHandleChatUsage(t *testing.T) {
	handler := NewChatHandler(new(MockChatRouter), nil, zap.NewNop())

	w := httptest.NewRecorder()
	handler.HandleChatUsage(w, httptest.NewRequest(http.MethodGet, "/chat", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Equal(t, http.MethodPost, w.Header().Get("Allow"))

	var response utils.ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, "method_not_allowed", response.Error)
	assert.Equal(t, "Use POST /chat with {message, specialty?, prefer?}", response.Message)
}
