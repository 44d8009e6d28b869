package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/upb/medchat-gateway/config"
	"go.uber.org/zap/zaptest"
)

func TestInitLogger(t *testing.T) {
	t.Run("default json logger", func(t *testing.T) {
		t.Setenv("LOG_LEVEL", "info")
		t.Setenv("LOG_FORMAT", "json")

		logger, err := initLogger()
		require.NoError(t, err)
		require.NotNil(t, logger)
		defer logger.Sync() //nolint:errcheck
	})

	t.Run("development console logger", func(t *testing.T) {
		t.Setenv("LOG_LEVEL", "debug")
		t.Setenv("LOG_FORMAT", "console")

		logger, err := initLogger()
		require.NoError(t, err)
		require.NotNil(t, logger)
		defer logger.Sync() //nolint:errcheck
	})

	t.Run("invalid log level", func(t *testing.T) {
		t.Setenv("LOG_LEVEL", "invalid")
		t.Setenv("LOG_FORMAT", "json")

		logger, err := initLogger()
		assert.Error(t, err)
		assert.Nil(t, logger)
		assert.Contains(t, err.Error(), "invalid log level")
	})

	t.Run("defaults when not set", func(t *testing.T) {
		t.Setenv("LOG_LEVEL", "")
		t.Setenv("LOG_FORMAT", "")

		logger, err := initLogger()
		require.NoError(t, err)
		require.NotNil(t, logger)
		defer logger.Sync() //nolint:errcheck
	})
}

func TestNewServer(t *testing.T) {
	cfg := &config.Config{
		Server: config.ServerConfig{
			Host:         "127.0.0.1",
			Port:         9099,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 4 * time.Second,
		},
	}

	srv := newServer(cfg, http.NotFoundHandler())
	assert.Equal(t, "127.0.0.1:9099", srv.Addr)
	assert.Equal(t, 3*time.Second, srv.ReadTimeout)
	assert.Equal(t, 4*time.Second, srv.WriteTimeout)
	assert.NotNil(t, srv.Handler)
}

func TestRun(t *testing.T) {
	t.Run("serves until cancelled", func(t *testing.T) {
		port := freePort(t)
		setTestEnv(t)
		t.Setenv("PORT", fmt.Sprint(port))

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- run(ctx, zaptest.NewLogger(t)) }()

		url := fmt.Sprintf("http://127.0.0.1:%d/health", port)
		var resp *http.Response
		require.Eventually(t, func() bool {
			r, err := http.Get(url)
			if err != nil {
				return false
			}
			resp = r
			return true
		}, 5*time.Second, 20*time.Millisecond)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, "ok", body["status"])
		assert.Equal(t, true, body["hasAnthropic"])

		chat, err := http.Post(fmt.Sprintf("http://127.0.0.1:%d/chat", port), "application/json",
			strings.NewReader(`{"message":""}`))
		require.NoError(t, err)
		chat.Body.Close()
		assert.Equal(t, http.StatusBadRequest, chat.StatusCode)

		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Fatal("run did not return after cancellation")
		}
	})

	t.Run("invalid configuration", func(t *testing.T) {
		setTestEnv(t)
		t.Setenv("ROUTER_TIMEOUT", "-1s")

		err := run(context.Background(), zaptest.NewLogger(t))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "router timeout")
	})

	t.Run("port already in use", func(t *testing.T) {
		l, err := net.Listen("tcp", "127.0.0.1:0")
		require.NoError(t, err)
		defer l.Close()

		setTestEnv(t)
		t.Setenv("PORT", fmt.Sprint(l.Addr().(*net.TCPAddr).Port))

		err = run(context.Background(), zaptest.NewLogger(t))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "server error")
	})
}

// Test helpers

func setTestEnv(t *testing.T) {
	t.Helper()
	t.Setenv("ENVIRONMENT", "test")
	t.Setenv("SERVER_HOST", "127.0.0.1")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "")
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant-test")
	t.Setenv("ROUTER_TIMEOUT", "")
	t.Setenv("SERVER_SHUTDOWN_TIMEOUT", "2s")
}

func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port
}
