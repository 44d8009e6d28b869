package models

import (
	"time"

	"github.com/google/uuid"
)

// ChatLog is the persisted outcome of one routed chat request. The message
// and reply text are never stored.
type ChatLog struct {
	ID           uuid.UUID `json:"id" db:"id"`
	RequestID    string    `json:"request_id" db:"request_id"`
	Provider     string    `json:"provider" db:"provider"` // openai, anthropic, gemini, fallback or error
	Lang         string    `json:"lang" db:"lang"`
	Specialty    string    `json:"specialty" db:"specialty"`
	Translate    bool      `json:"translate" db:"translate"`
	Attempts     int       `json:"attempts" db:"attempts"`
	LatencyMs    int64     `json:"latency_ms" db:"latency_ms"`
	ErrorMessage *string   `json:"error_message,omitempty" db:"error_message"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// TableName returns the table name for the ChatLog model
func (ChatLog) TableName() string {
	return "chat_logs"
}

// NewChatLog creates a new ChatLog instance
func NewChatLog(requestID, provider, lang string) *ChatLog {
	return &ChatLog{
		ID:        uuid.New(),
		RequestID: requestID,
		Provider:  provider,
		Lang:      lang,
		CreatedAt: time.Now().UTC(),
	}
}

// WithRouting records the routing context of the request
func (c *ChatLog) WithRouting(specialty string, translate bool, attempts int) *ChatLog {
	c.Specialty = specialty
	c.Translate = translate
	c.Attempts = attempts
	return c
}

// WithLatency sets the end-to-end latency
func (c *ChatLog) WithLatency(latencyMs int64) *ChatLog {
	c.LatencyMs = latencyMs
	return c
}

// WithError sets the last provider error; an empty message is ignored.
func (c *ChatLog) WithError(message string) *ChatLog {
	if message != "" {
		c.ErrorMessage = &message
	}
	return c
}

// Succeeded reports whether a provider produced the reply
func (c *ChatLog) Succeeded() bool {
	return c.Provider != "fallback" && c.Provider != "error"
}
