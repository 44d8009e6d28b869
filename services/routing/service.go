package routing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/upb/medchat-gateway/internal/prompt"
	"github.com/upb/medchat-gateway/middleware"
	"github.com/upb/medchat-gateway/services/providers"
	"go.uber.org/zap"
)

var (
	// ErrNoProviderAvailable is recorded when the try-order is empty
	ErrNoProviderAvailable = errors.New("no providers configured")

	// ErrEmptyMessage is recorded when the router receives a blank message
	ErrEmptyMessage = errors.New("message is empty")

	// ErrDeadlineExceeded is recorded when the routing deadline cut the
	// try-order short
	ErrDeadlineExceeded = errors.New("routing deadline exceeded")
)

// RoutingConfig holds configuration for the routing service
type RoutingConfig struct {
	// Timeout bounds one whole routing operation, all attempts included
	Timeout time.Duration

	// StrictPreference disables fallback after an explicitly preferred
	// provider fails
	StrictPreference bool
}

// DefaultRoutingConfig returns a sensible default configuration
func DefaultRoutingConfig() RoutingConfig {
	return RoutingConfig{
		Timeout: 45 * time.Second,
	}
}

// RoutingService resolves language, directive and try-order for a message
// and walks the try-order until a provider answers.
type RoutingService struct {
	config   RoutingConfig
	registry *providers.Registry
	logger   *zap.Logger
}

// NewRoutingService creates a new routing service
func NewRoutingService(config RoutingConfig, registry *providers.Registry, logger *zap.Logger) *RoutingService {
	if config.Timeout <= 0 {
		config.Timeout = DefaultRoutingConfig().Timeout
	}
	if registry == nil {
		registry = providers.NewRegistry()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RoutingService{
		config:   config,
		registry: registry,
		logger:   logger,
	}
}

// Route answers one chat request. It always returns a result: failures are
// reported through the fallback and error sentinels, never as an error.
func (s *RoutingService) Route(ctx context.Context, req ChatRequest) (result *ChatResult) {
	start := time.Now()
	lang := prompt.LanguageEnglish
	requestID := middleware.GetRequestIDFromContext(ctx)

	defer func() {
		if rec := recover(); rec != nil {
			s.logger.Error("routing panicked",
				zap.String("request_id", requestID),
				zap.Any("panic", rec),
				zap.Stack("stack"))
			result = s.errorResult(lang, start)
		}
	}()

	if explicit, ok := prompt.ParseLanguage(req.Prefer.Lang); ok {
		lang = explicit
	} else {
		lang = prompt.DetectLanguage(req.Message)
	}

	if strings.TrimSpace(req.Message) == "" {
		s.logger.Error("routing rejected request", zap.String("request_id", requestID), zap.Error(ErrEmptyMessage))
		return s.errorResult(lang, start)
	}

	specialty := prompt.NormalizeSpecialty(req.Specialty)
	translate := prompt.IsTranslateIntent(req.Message)

	var directive string
	if translate {
		source := prompt.DetectLanguage(req.Message)
		target := source.Opposite()
		if explicit, ok := prompt.ParseLanguage(req.Prefer.Lang); ok && explicit != source {
			target = explicit
		}
		lang = target
		directive = prompt.BuildTranslatorDirective(source, target)
	} else {
		directive = prompt.BuildDirective(lang, specialty)
	}

	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	order := s.TryOrder(req.Prefer.Provider)
	result = &ChatResult{
		Lang:      lang,
		Specialty: specialty,
		Translate: translate,
	}

	lastErr := ErrNoProviderAvailable
	for _, name := range order {
		if ctx.Err() != nil {
			lastErr = fmt.Errorf("%w before trying %s: %v", ErrDeadlineExceeded, name, ctx.Err())
			break
		}

		text, err := s.attempt(ctx, name, directive, req.Message, result)
		if err != nil {
			lastErr = err
			s.logger.Warn("provider attempt failed",
				zap.String("request_id", requestID),
				zap.String("provider", name),
				zap.Error(err))
			continue
		}

		result.Text = text
		result.Provider = name
		result.ElapsedMs = time.Since(start).Milliseconds()
		return result
	}

	s.logger.Warn("all providers failed",
		zap.String("request_id", requestID),
		zap.Strings("try_order", order),
		zap.Error(lastErr))

	result.Text = FallbackMessage(lang)
	result.Provider = ProviderFallback
	result.Error = clientError(lastErr)
	result.ElapsedMs = time.Since(start).Milliseconds()
	return result
}

// attempt invokes one provider and records the outcome on result.
func (s *RoutingService) attempt(ctx context.Context, name, directive, message string, result *ChatResult) (string, error) {
	started := time.Now()

	provider, err := s.registry.GetProvider(name)
	if err == nil {
		var text string
		text, err = provider.Complete(ctx, directive, message)
		if err == nil {
			result.Attempts = append(result.Attempts, Attempt{Provider: name, Duration: time.Since(started)})
			return text, nil
		}
	}

	result.Attempts = append(result.Attempts, Attempt{Provider: name, Err: err, Duration: time.Since(started)})
	return "", err
}

// clientError renders the error reported on a fallback result. Provider
// failures are reduced to provider, code and status so upstream bodies and
// request URLs never reach the client or the chat log.
func clientError(err error) string {
	if provErr, ok := providers.AsProviderError(err); ok {
		return provErr.Summary()
	}
	return err.Error()
}

// TryOrder returns the providers to attempt, in order, for a preference.
// The auto order is every registered provider in providers.AutoOrder. An
// explicit, registered preference goes first; the rest of the auto order
// follows unless StrictPreference is set.
func (s *RoutingService) TryOrder(preferred string) []string {
	available := s.registry.ListProviders()

	preferred = strings.ToLower(strings.TrimSpace(preferred))
	if preferred == "" || preferred == PreferAuto || !providers.IsKnown(preferred) {
		return available
	}

	order := make([]string, 0, len(available))
	if s.registry.Has(preferred) {
		order = append(order, preferred)
	}
	if s.config.StrictPreference {
		return order
	}
	for _, name := range available {
		if name != preferred {
			order = append(order, name)
		}
	}
	return order
}

// Providers returns the names of the configured providers in auto order.
func (s *RoutingService) Providers() []string {
	return s.registry.ListProviders()
}

// HasProvider reports whether a provider has credentials configured.
func (s *RoutingService) HasProvider(name string) bool {
	return s.registry.Has(name)
}

// errorResult carries only the generic apology; details stay in the logs.
func (s *RoutingService) errorResult(lang prompt.Language, start time.Time) *ChatResult {
	return &ChatResult{
		Text:      ErrorMessage(lang),
		Provider:  ProviderError,
		ElapsedMs: time.Since(start).Milliseconds(),
		Lang:      lang,
	}
}
