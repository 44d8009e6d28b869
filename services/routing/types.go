package routing

import (
	"time"

	"github.com/upb/medchat-gateway/internal/prompt"
)

// Sentinel provider values for results that no provider produced.
const (
	ProviderFallback = "fallback"
	ProviderError    = "error"

	// PreferAuto lets the router pick the try-order.
	PreferAuto = "auto"
)

// Preference carries the caller's optional provider and language choice.
type Preference struct {
	Provider string
	Lang     string
}

// ChatRequest is one inbound chat message.
type ChatRequest struct {
	Message   string
	Specialty string
	Prefer    Preference
}

// Attempt records one provider invocation made while routing a request.
type Attempt struct {
	Provider string
	Err      error
	Duration time.Duration
}

// ChatResult is the normalized outcome of routing one request. Provider is
// the provider that produced Text, or ProviderFallback / ProviderError.
type ChatResult struct {
	Text      string          `json:"text"`
	Provider  string          `json:"provider"`
	ElapsedMs int64           `json:"ms"`
	Lang      prompt.Language `json:"lang"`
	Error     string          `json:"error,omitempty"`

	Specialty string    `json:"-"`
	Translate bool      `json:"-"`
	Attempts  []Attempt `json:"-"`
}

// Succeeded reports whether a provider produced the text.
func (r *ChatResult) Succeeded() bool {
	return r.Provider != ProviderFallback && r.Provider != ProviderError
}

var fallbackMessages = map[prompt.Language]string{
	prompt.LanguageEnglish: "I couldn't reach any AI providers right now. Please try again or tap Home to view reference content.",
	prompt.LanguageSpanish: "No pude comunicarme con ningún proveedor de IA en este momento. Inténtalo de nuevo o toca Inicio para ver el contenido de referencia.",
}

var errorMessages = map[prompt.Language]string{
	prompt.LanguageEnglish: "Sorry, something went wrong while processing your message. Please try again.",
	prompt.LanguageSpanish: "Lo siento, ocurrió un error al procesar tu mensaje. Inténtalo de nuevo.",
}

// FallbackMessage returns the apology used when every provider failed.
func FallbackMessage(lang prompt.Language) string {
	if msg, ok := fallbackMessages[lang]; ok {
		return msg
	}
	return fallbackMessages[prompt.LanguageEnglish]
}

// ErrorMessage returns the generic apology used for unexpected failures.
func ErrorMessage(lang prompt.Language) string {
	if msg, ok := errorMessages[lang]; ok {
		return msg
	}
	return errorMessages[prompt.LanguageEnglish]
}
