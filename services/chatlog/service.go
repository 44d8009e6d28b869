package chatlog

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/upb/medchat-gateway/models"
	"github.com/upb/medchat-gateway/repositories"
	"github.com/upb/medchat-gateway/services"
	"github.com/upb/medchat-gateway/services/routing"
	"go.uber.org/zap"
)

// Service writes chat outcomes asynchronously. Enqueueing never blocks the
// request path: when the buffer is full the entry is dropped.
type Service struct {
	repo        repositories.ChatLogRepository
	logger      *zap.Logger
	entries     chan *models.ChatLog
	workerCount int
	bufferSize  int
	wg          sync.WaitGroup
	mu          sync.RWMutex
	started     bool
	stopped     bool
	dropped     atomic.Int64
}

// Config holds configuration for the Service
type Config struct {
	BufferSize  int // Size of the entry buffer channel
	WorkerCount int // Number of concurrent writers
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		BufferSize:  1000,
		WorkerCount: 2,
	}
}

// NewService creates a new chat log Service
func NewService(repo repositories.ChatLogRepository, logger *zap.Logger, config Config) *Service {
	if config.BufferSize <= 0 {
		config.BufferSize = DefaultConfig().BufferSize
	}
	if config.WorkerCount <= 0 {
		config.WorkerCount = DefaultConfig().WorkerCount
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		repo:        repo,
		logger:      logger,
		entries:     make(chan *models.ChatLog, config.BufferSize),
		workerCount: config.WorkerCount,
		bufferSize:  config.BufferSize,
	}
}

// Start starts the background workers
func (s *Service) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return fmt.Errorf("chat log service already started")
	}

	for i := 0; i < s.workerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	s.started = true
	s.logger.Info("started chat log service",
		zap.Int("worker_count", s.workerCount),
		zap.Int("buffer_size", s.bufferSize))

	return nil
}

// Stop stops accepting entries and waits for pending ones to be written
func (s *Service) Stop(timeout time.Duration) error {
	s.mu.Lock()
	if !s.started || s.stopped {
		s.mu.Unlock()
		return fmt.Errorf("chat log service not running")
	}
	s.stopped = true
	pending := len(s.entries)
	close(s.entries)
	s.mu.Unlock()

	s.logger.Info("stopping chat log service", zap.Int("pending_entries", pending))

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("chat log service stopped gracefully")
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("chat log service stop timeout after %v", timeout)
	}
}

// Log enqueues an entry (non-blocking)
func (s *Service) Log(entry *models.ChatLog) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.started || s.stopped {
		return fmt.Errorf("chat log service not running")
	}

	select {
	case s.entries <- entry:
		return nil
	default:
		s.dropped.Add(1)
		s.logger.Warn("chat log buffer full, dropping entry",
			zap.String("request_id", entry.RequestID),
			zap.String("provider", entry.Provider))
		return services.ErrChatLogFull
	}
}

// RecordResult converts a routing result into a ChatLog and enqueues it
func (s *Service) RecordResult(requestID string, result *routing.ChatResult) error {
	entry := models.NewChatLog(requestID, result.Provider, string(result.Lang)).
		WithRouting(result.Specialty, result.Translate, len(result.Attempts)).
		WithLatency(result.ElapsedMs).
		WithError(result.Error)
	return s.Log(entry)
}

func (s *Service) worker(id int) {
	defer s.wg.Done()

	s.logger.Debug("chat log worker started", zap.Int("worker_id", id))

	for entry := range s.entries {
		if err := s.write(entry); err != nil {
			s.logger.Error("failed to write chat log",
				zap.Int("worker_id", id),
				zap.String("request_id", entry.RequestID),
				zap.Error(err))
		}
	}

	s.logger.Debug("chat log worker stopped", zap.Int("worker_id", id))
}

func (s *Service) write(entry *models.ChatLog) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.repo.Insert(ctx, entry); err != nil {
		return services.WrapInternal("insert chat log", err)
	}
	return nil
}

// Stats represents chat log service statistics
type Stats struct {
	BufferSize     int
	PendingEntries int
	WorkerCount    int
	Dropped        int64
	Started        bool
}

// GetStats returns statistics about the service
func (s *Service) GetStats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Stats{
		BufferSize:     s.bufferSize,
		PendingEntries: len(s.entries),
		WorkerCount:    s.workerCount,
		Dropped:        s.dropped.Load(),
		Started:        s.started && !s.stopped,
	}
}
