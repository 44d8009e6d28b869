package utils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteJSON(t *testing.T) {
	t.Run("successful write", func(t *testing.T) {
		w := httptest.NewRecorder()
		data := map[string]string{"message": "test"}

		err := WriteJSON(w, http.StatusOK, data)
		require.NoError(t, err)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

		var response map[string]string
		err = json.NewDecoder(w.Body).Decode(&response)
		require.NoError(t, err)
		assert.Equal(t, "test", response["message"])
	})

	t.Run("nil data", func(t *testing.T) {
		w := httptest.NewRecorder()

		err := WriteJSON(w, http.StatusNoContent, nil)
		require.NoError(t, err)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Empty(t, w.Body.String())
	})
}

func TestWriteOK(t *testing.T) {
	w := httptest.NewRecorder()

	err := WriteOK(w, map[string]string{"status": "ok"})
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, "ok", response["status"])
	assert.NotContains(t, response, "data")
}

func TestWriteBadRequest(t *testing.T) {
	w := httptest.NewRecorder()
	details := map[string]interface{}{"message": "message is required"}

	err := WriteBadRequest(w, "Validation failed", details)
	require.NoError(t, err)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var response ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))

	assert.Equal(t, "bad_request", response.Error)
	assert.Equal(t, "Validation failed", response.Message)
	assert.Equal(t, "message is required", response.Details["message"])
}

func TestWriteHelpersDefaultMessages(t *testing.T) {
	tests := []struct {
		name      string
		write     func(http.ResponseWriter) error
		status    int
		errorType string
		message   string
	}{
		{
			name:      "not found",
			write:     func(w http.ResponseWriter) error { return WriteNotFound(w, "") },
			status:    http.StatusNotFound,
			errorType: "not_found",
			message:   "Resource not found",
		},
		{
			name:      "method not allowed",
			write:     func(w http.ResponseWriter) error { return WriteMethodNotAllowed(w, "") },
			status:    http.StatusMethodNotAllowed,
			errorType: "method_not_allowed",
			message:   "Method not allowed",
		},
		{
			name:      "service unavailable",
			write:     func(w http.ResponseWriter) error { return WriteServiceUnavailable(w, "", nil) },
			status:    http.StatusServiceUnavailable,
			errorType: "service_unavailable",
			message:   "Service unavailable",
		},
		{
			name:      "internal error",
			write:     func(w http.ResponseWriter) error { return WriteInternalServerError(w, "") },
			status:    http.StatusInternalServerError,
			errorType: "internal_error",
			message:   "Internal server error",
		},
		{
			name:      "custom message",
			write:     func(w http.ResponseWriter) error { return WriteMethodNotAllowed(w, "Use POST") },
			status:    http.StatusMethodNotAllowed,
			errorType: "method_not_allowed",
			message:   "Use POST",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			require.NoError(t, tt.write(w))

			assert.Equal(t, tt.status, w.Code)

			var response ErrorResponse
			require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
			assert.Equal(t, tt.errorType, response.Error)
			assert.Equal(t, tt.message, response.Message)
		})
	}
}

func TestWriteError(t *testing.T) {
	tests := []struct {
		name         string
		status       int
		expectedType string
	}{
		{"bad request", http.StatusBadRequest, "bad_request"},
		{"not found", http.StatusNotFound, "not_found"},
		{"method not allowed", http.StatusMethodNotAllowed, "method_not_allowed"},
		{"payload too large", http.StatusRequestEntityTooLarge, "payload_too_large"},
		{"bad gateway", http.StatusBadGateway, "bad_gateway"},
		{"service unavailable", http.StatusServiceUnavailable, "service_unavailable"},
		{"internal error", http.StatusInternalServerError, "internal_error"},
		{"unknown status", http.StatusTeapot, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()

			err := WriteError(w, tt.status, "Test message", nil)
			require.NoError(t, err)

			assert.Equal(t, tt.status, w.Code)

			var response ErrorResponse
			require.NoError(t, json.NewDecoder(w.Body).Decode(&response))

			assert.Equal(t, tt.expectedType, response.Error)
			assert.Equal(t, "Test message", response.Message)
		})
	}
}
