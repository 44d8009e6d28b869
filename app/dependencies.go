package app

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/upb/medchat-gateway/config"
	"github.com/upb/medchat-gateway/handlers"
	"github.com/upb/medchat-gateway/repositories"
	"github.com/upb/medchat-gateway/repositories/postgres"
	"github.com/upb/medchat-gateway/services/chatlog"
	"github.com/upb/medchat-gateway/services/providers"
	"github.com/upb/medchat-gateway/services/providers/anthropic"
	"github.com/upb/medchat-gateway/services/providers/gemini"
	"github.com/upb/medchat-gateway/services/providers/openai"
	"github.com/upb/medchat-gateway/services/routing"
	"go.uber.org/zap"
)

// chatLogStopTimeout bounds how long Close waits for pending chat logs.
const chatLogStopTimeout = 5 * time.Second

// Dependencies holds all application dependencies.
// This is the central wiring point for dependency injection.
type Dependencies struct {
	// Infrastructure
	Config *config.Config
	DB     *postgres.DB // nil when DATABASE_URL is unset
	Logger *zap.Logger

	// Repository Factory
	RepoFactory *postgres.RepositoryFactory

	// Repositories
	ChatLogs repositories.ChatLogRepository

	// Routing
	ProviderRegistry *providers.Registry
	Router           *routing.RoutingService

	// Background services
	ChatLogService *chatlog.Service

	// Handlers
	ChatHandler   *handlers.ChatHandler
	HealthHandler *handlers.HealthHandler
}

// NewDependencies creates and wires up all application dependencies.
func NewDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	// Initialize PostgreSQL (optional)
	if err := deps.initDatabase(ctx, cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := deps.finish(ctx); err != nil {
		_ = deps.Close(ctx)
		return nil, err
	}

	logger.Info("all dependencies initialized successfully")
	return deps, nil
}

// newDependenciesWithFactory wires dependencies around an already opened
// repository factory.
func newDependenciesWithFactory(ctx context.Context, cfg *config.Config, factory *postgres.RepositoryFactory, logger *zap.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config:      cfg,
		Logger:      logger,
		RepoFactory: factory,
		DB:          factory.GetDB(),
	}

	if err := factory.InitSchema(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := deps.finish(ctx); err != nil {
		return nil, err
	}
	return deps, nil
}

func (d *Dependencies) finish(ctx context.Context) error {
	d.initRepositories()

	if err := d.initProviders(d.Config); err != nil {
		return fmt.Errorf("failed to initialize providers: %w", err)
	}

	if err := d.initChatLog(d.Config); err != nil {
		return fmt.Errorf("failed to initialize chat log: %w", err)
	}

	d.initHandlers(d.Config)
	return nil
}

// initDatabase opens the PostgreSQL pool and prepares the chat_logs schema.
// It is a no-op when no database is configured.
func (d *Dependencies) initDatabase(ctx context.Context, cfg *config.Config) error {
	if cfg.Database == nil {
		d.Logger.Info("DATABASE_URL not set, chat logging disabled")
		return nil
	}

	factory, err := postgres.NewRepositoryFactory(*cfg.Database, d.Logger)
	if err != nil {
		return fmt.Errorf("failed to create repository factory: %w", err)
	}

	d.RepoFactory = factory
	d.DB = factory.GetDB()

	if err := factory.InitSchema(ctx); err != nil {
		_ = factory.Close()
		return fmt.Errorf("failed to initialize chat log schema: %w", err)
	}

	return nil
}

// initRepositories initializes all repository instances
func (d *Dependencies) initRepositories() {
	if d.RepoFactory == nil {
		return
	}

	repos := d.RepoFactory.NewRepositories()
	d.ChatLogs = repos.ChatLogs

	d.Logger.Info("repositories initialized")
}

// initProviders builds the registry from every provider that has an API key
// and the routing service on top of it.
func (d *Dependencies) initProviders(cfg *config.Config) error {
	registry, err := providers.NewRegistryBuilder().
		WithProviderBuilder(providers.OpenAI, func(c providers.ProviderConfig) (providers.Provider, error) {
			return openai.NewOpenAIAdapter(c), nil
		}).
		WithProviderBuilder(providers.Anthropic, func(c providers.ProviderConfig) (providers.Provider, error) {
			return anthropic.NewAnthropicAdapter(c), nil
		}).
		WithProviderBuilder(providers.Gemini, func(c providers.ProviderConfig) (providers.Provider, error) {
			return gemini.NewGeminiAdapter(c), nil
		}).
		Build(ProviderConfigs(cfg))
	if err != nil {
		return err
	}

	if registry.Count() == 0 {
		d.Logger.Warn("no LLM providers configured, every chat will get the fallback reply")
	} else {
		d.Logger.Info("providers registered", zap.Strings("providers", registry.ListProviders()))
	}

	d.ProviderRegistry = registry
	d.Router = routing.NewRoutingService(routing.RoutingConfig{
		Timeout:          cfg.Router.Timeout,
		StrictPreference: cfg.Router.StrictPreference,
	}, registry, d.Logger)

	return nil
}

// ProviderConfigs maps the application config onto per-provider adapter configs.
func ProviderConfigs(cfg *config.Config) map[string]providers.ProviderConfig {
	convert := func(p config.ProviderConfig) providers.ProviderConfig {
		return providers.ProviderConfig{
			APIKey:    p.APIKey,
			BaseURL:   p.BaseURL,
			Model:     p.Model,
			Timeout:   p.Timeout,
			MaxTokens: p.MaxTokens,
			Headers:   make(map[string]string),
		}
	}

	return map[string]providers.ProviderConfig{
		providers.OpenAI:    convert(cfg.Providers.OpenAI),
		providers.Anthropic: convert(cfg.Providers.Anthropic),
		providers.Gemini:    convert(cfg.Providers.Gemini),
	}
}

func (d *Dependencies) initChatLog(cfg *config.Config) error {
	if d.ChatLogs == nil {
		return nil
	}

	svc := chatlog.NewService(d.ChatLogs, d.Logger, chatlog.Config{
		BufferSize:  cfg.ChatLog.BufferSize,
		WorkerCount: cfg.ChatLog.Workers,
	})
	if err := svc.Start(); err != nil {
		return err
	}

	d.ChatLogService = svc
	return nil
}

func (d *Dependencies) initHandlers(cfg *config.Config) {
	var recorder handlers.ChatRecorder
	if d.ChatLogService != nil {
		recorder = d.ChatLogService
	}

	var db *sql.DB
	if d.DB != nil {
		db = d.DB.DB
	}

	d.ChatHandler = handlers.NewChatHandler(d.Router, recorder, d.Logger)
	d.HealthHandler = handlers.NewHealthHandler(db, d.Router, handlers.BuildInfo{
		Version:     cfg.Version,
		Environment: cfg.Environment,
	}, d.Logger)
}

// Close gracefully shuts down all dependencies
func (d *Dependencies) Close(ctx context.Context) error {
	d.Logger.Info("shutting down dependencies")

	var errs []error

	// Drain chat logs before the pool goes away
	if d.ChatLogService != nil {
		if err := d.ChatLogService.Stop(chatLogStopTimeout); err != nil {
			errs = append(errs, fmt.Errorf("failed to stop chat log service: %w", err))
		}
		d.ChatLogService = nil
	}

	// Close database connection
	if d.RepoFactory != nil {
		if err := d.RepoFactory.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		} else {
			d.Logger.Info("database connection closed")
		}
		d.RepoFactory = nil
	}

	// Sync logger
	if d.Logger != nil {
		_ = d.Logger.Sync()
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors during shutdown: %v", errs)
	}

	return nil
}
