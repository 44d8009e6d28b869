package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/upb/medchat-gateway/models"
	"github.com/upb/medchat-gateway/repositories"
	"go.uber.org/zap"
)

// ChatLogRepository implements the repositories.ChatLogRepository interface
type ChatLogRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewChatLogRepository creates a new chat log repository
func NewChatLogRepository(db *DB, logger *zap.Logger) repositories.ChatLogRepository {
	return &ChatLogRepository{
		db:     db,
		logger: logger,
	}
}

// Insert inserts a new chat log entry
func (r *ChatLogRepository) Insert(ctx context.Context, log *models.ChatLog) error {
	query := `
		INSERT INTO chat_logs (
			id, request_id, provider, lang, specialty, translate,
			attempts, latency_ms, error_message, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10
		)
	`

	_, err := r.db.ExecContext(ctx, query,
		log.ID,
		log.RequestID,
		log.Provider,
		log.Lang,
		log.Specialty,
		log.Translate,
		log.Attempts,
		log.LatencyMs,
		log.ErrorMessage,
		log.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert chat log: %w", err)
	}

	r.logger.Debug("chat log inserted",
		zap.String("id", log.ID.String()),
		zap.String("provider", log.Provider))
	return nil
}

// GetByRequestID retrieves chat logs by request ID
func (r *ChatLogRepository) GetByRequestID(ctx context.Context, requestID string) ([]*models.ChatLog, error) {
	query := `
		SELECT id, request_id, provider, lang, specialty, translate,
		       attempts, latency_ms, error_message, created_at
		FROM chat_logs
		WHERE request_id = $1
		ORDER BY created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to query chat logs: %w", err)
	}
	defer rows.Close()

	var logs []*models.ChatLog
	for rows.Next() {
		log := &models.ChatLog{}
		if err := rows.Scan(
			&log.ID,
			&log.RequestID,
			&log.Provider,
			&log.Lang,
			&log.Specialty,
			&log.Translate,
			&log.Attempts,
			&log.LatencyMs,
			&log.ErrorMessage,
			&log.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan chat log: %w", err)
		}
		logs = append(logs, log)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating chat logs: %w", err)
	}

	return logs, nil
}

// CountByProvider returns outcome counts grouped by provider
func (r *ChatLogRepository) CountByProvider(ctx context.Context, since time.Time) (map[string]int64, error) {
	query := `
		SELECT provider, COUNT(*)
		FROM chat_logs
		WHERE created_at >= $1
		GROUP BY provider
	`

	rows, err := r.db.QueryContext(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("failed to count chat logs: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var provider string
		var count int64
		if err := rows.Scan(&provider, &count); err != nil {
			return nil, fmt.Errorf("failed to scan provider count: %w", err)
		}
		counts[provider] = count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating provider counts: %w", err)
	}

	return counts, nil
}
