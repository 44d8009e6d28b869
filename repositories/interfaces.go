package repositories

import (
	"context"
	"time"

	"github.com/upb/medchat-gateway/models"
)

// ChatLogRepository persists chat outcomes
type ChatLogRepository interface {
	// Insert inserts a chat log entry
	Insert(ctx context.Context, log *models.ChatLog) error

	// GetByRequestID retrieves the entries recorded for a request ID
	GetByRequestID(ctx context.Context, requestID string) ([]*models.ChatLog, error)

	// CountByProvider returns the number of outcomes per provider since the given time
	CountByProvider(ctx context.Context, since time.Time) (map[string]int64, error)
}

// Repositories holds all repository instances
type Repositories struct {
	ChatLogs ChatLogRepository
}
