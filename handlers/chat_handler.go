package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/upb/medchat-gateway/middleware"
	"github.com/upb/medchat-gateway/services"
	"github.com/upb/medchat-gateway/services/routing"
	"github.com/upb/medchat-gateway/utils"
	"go.uber.org/zap"
)

// maxChatBodyBytes bounds the POST /chat request body.
const maxChatBodyBytes = 64 << 10

// chatUsage is returned to clients that GET /chat.
const chatUsage = "Use POST /chat with {message, specialty?, prefer?}"

// ChatRequest is the POST /chat request body
type ChatRequest struct {
	Message   string          `json:"message" validate:"notblank"`
	Specialty string          `json:"specialty,omitempty" validate:"max=100"`
	Prefer    *ChatPreference `json:"prefer,omitempty"`
}

// ChatPreference carries the optional provider and language choice
type ChatPreference struct {
	Provider string `json:"provider,omitempty" validate:"omitempty,oneof=auto openai anthropic gemini"`
	Lang     string `json:"lang,omitempty" validate:"omitempty,oneof=en es"`
}

// ChatRouter answers one chat request. It never fails: provider errors are
// reported through the result.
type ChatRouter interface {
	Route(ctx context.Context, req routing.ChatRequest) *routing.ChatResult
}

// ChatRecorder persists chat outcomes
type ChatRecorder interface {
	RecordResult(requestID string, result *routing.ChatResult) error
}

// ChatHandler handles the chat endpoint
type ChatHandler struct {
	router   ChatRouter
	recorder ChatRecorder
	logger   *zap.Logger
}

// NewChatHandler creates a new ChatHandler. recorder may be nil.
func NewChatHandler(router ChatRouter, recorder ChatRecorder, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{
		router:   router,
		recorder: recorder,
		logger:   logger,
	}
}

// HandleChat handles POST /chat
func (h *ChatHandler) HandleChat(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestIDFromContext(ctx)

	r.Body = http.MaxBytesReader(w, r.Body, maxChatBodyBytes)

	var chatReq ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&chatReq); err != nil {
		h.logger.Warn("failed to parse request body",
			zap.String("request_id", requestID),
			zap.Error(err))

		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			HandleServiceError(w, services.ErrRequestTooLarge, h.logger)
			return
		}
		HandleServiceError(w, services.ErrMalformedJSON.Wrap(err), h.logger)
		return
	}

	chatReq.normalize()

	if err := utils.ValidateStruct(&chatReq); err != nil {
		h.logger.Warn("request validation failed",
			zap.String("request_id", requestID),
			zap.Error(err))
		HandleValidationError(w, err, h.logger)
		return
	}

	result := h.router.Route(ctx, chatReq.toRoutingRequest())

	h.logger.Info("chat routed",
		zap.String("request_id", requestID),
		zap.String("provider", result.Provider),
		zap.String("lang", string(result.Lang)),
		zap.Int("attempts", len(result.Attempts)),
		zap.Int64("ms", result.ElapsedMs))

	if h.recorder != nil {
		if err := h.recorder.RecordResult(requestID, result); err != nil {
			h.logger.Debug("chat outcome not recorded",
				zap.String("request_id", requestID),
				zap.Error(err))
		}
	}

	if err := utils.WriteOK(w, result); err != nil {
		h.logger.Error("failed to write chat response",
			zap.String("request_id", requestID),
			zap.Error(err))
	}
}

// HandleChatUsage handles GET /chat
func (h *ChatHandler) HandleChatUsage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Allow", http.MethodPost)
	_ = utils.WriteMethodNotAllowed(w, chatUsage)
}

func (c *ChatRequest) normalize() {
	c.Specialty = strings.TrimSpace(c.Specialty)
	if c.Prefer != nil {
		c.Prefer.Provider = strings.ToLower(strings.TrimSpace(c.Prefer.Provider))
		c.Prefer.Lang = strings.ToLower(strings.TrimSpace(c.Prefer.Lang))
	}
}

func (c *ChatRequest) toRoutingRequest() routing.ChatRequest {
	req := routing.ChatRequest{
		Message:   c.Message,
		Specialty: c.Specialty,
	}
	if c.Prefer != nil {
		req.Prefer = routing.Preference{
			Provider: c.Prefer.Provider,
			Lang:     c.Prefer.Lang,
		}
	}
	return req
}
