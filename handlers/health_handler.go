package handlers

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/upb/medchat-gateway/services"
	"github.com/upb/medchat-gateway/services/providers"
	"github.com/upb/medchat-gateway/utils"
	"go.uber.org/zap"
)

// ProviderInventory reports which providers have credentials configured
type ProviderInventory interface {
	HasProvider(name string) bool
	Providers() []string
}

// HealthResponse is the GET /health body
type HealthResponse struct {
	Status       string `json:"status"`
	HasOpenAI    bool   `json:"hasOpenAI"`
	HasAnthropic bool   `json:"hasAnthropic"`
	HasGemini    bool   `json:"hasGemini"`
}

// ReadinessResponse is the GET /readyz body
type ReadinessResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks"`
	Errors    map[string]string `json:"errors,omitempty"`
}

// StatusResponse is the GET /status body
type StatusResponse struct {
	Version     string   `json:"version"`
	Environment string   `json:"environment"`
	Providers   []string `json:"providers"`
}

// BuildInfo identifies the running service
type BuildInfo struct {
	Version     string
	Environment string
}

// HealthHandler handles health-related HTTP requests
type HealthHandler struct {
	db        *sql.DB
	providers ProviderInventory
	info      BuildInfo
	logger    *zap.Logger
}

// NewHealthHandler creates a new HealthHandler. db is nil when chat logging is disabled.
func NewHealthHandler(db *sql.DB, providers ProviderInventory, info BuildInfo, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		db:        db,
		providers: providers,
		info:      info,
		logger:    logger,
	}
}

// HandleHealth handles GET /health
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	response := HealthResponse{
		Status:       "ok",
		HasOpenAI:    h.providers.HasProvider(providers.OpenAI),
		HasAnthropic: h.providers.HasProvider(providers.Anthropic),
		HasGemini:    h.providers.HasProvider(providers.Gemini),
	}

	_ = utils.WriteOK(w, response)
}

// HandleReadiness handles GET /readyz
// Ready when at least one provider is configured and the database, if any, answers.
func (h *HealthHandler) HandleReadiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := make(map[string]string)
	failures := make(map[string]string)

	switch err := h.checkDatabase(ctx); {
	case h.db == nil:
		checks["database"] = "disabled"
	case err != nil:
		h.logger.Warn("database health check failed", zap.Error(err))
		checks["database"] = "unhealthy"
		failures["database"] = services.ErrDatabaseUnavailable.Message
	default:
		checks["database"] = "healthy"
	}

	if err := h.checkProviders(); err != nil {
		checks["providers"] = "none_configured"
		failures["providers"] = services.ErrNoProvidersConfigured.Message
	} else {
		checks["providers"] = "configured"
	}

	status := "ready"
	httpStatus := http.StatusOK
	if len(failures) > 0 {
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		failures = nil
	}

	response := ReadinessResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
		Errors:    failures,
	}

	if err := utils.WriteJSON(w, httpStatus, response); err != nil {
		h.logger.Error("failed to write readiness response", zap.Error(err))
	}
}

// HandleStatus handles GET /status
func (h *HealthHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	configured := h.providers.Providers()
	if configured == nil {
		configured = []string{}
	}

	_ = utils.WriteOK(w, StatusResponse{
		Version:     h.info.Version,
		Environment: h.info.Environment,
		Providers:   configured,
	})
}

// checkDatabase checks database connectivity
func (h *HealthHandler) checkDatabase(ctx context.Context) error {
	if h.db == nil {
		return nil // No database configured
	}

	// Ping database with timeout
	if err := h.db.PingContext(ctx); err != nil {
		return services.ErrDatabaseUnavailable.Wrap(err)
	}

	// Check if we can execute a simple query
	var result int
	if err := h.db.QueryRowContext(ctx, "SELECT 1").Scan(&result); err != nil {
		return services.ErrDatabaseUnavailable.Wrap(err)
	}

	return nil
}

func (h *HealthHandler) checkProviders() error {
	if len(h.providers.Providers()) == 0 {
		return services.ErrNoProvidersConfigured
	}
	return nil
}
