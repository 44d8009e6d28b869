package config

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config represents the complete application configuration
type Config struct {
	Server        ServerConfig
	Database      *DatabaseConfig // Optional: chat outcomes are only persisted when set
	Providers     ProvidersConfig
	Router        RouterConfig
	CORS          CORSConfig
	ChatLog       ChatLogConfig
	Observability ObservabilityConfig
	Environment   string
	Version       string
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// Database drivers selected by the DATABASE_URL scheme.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// DatabaseConfig holds chat log database configuration (from DATABASE_URL).
// A sqlite: URL selects an embedded SQLite file for local development.
type DatabaseConfig struct {
	Driver           string
	ConnectionString string
	MaxOpenConns     int
	MaxIdleConns     int
	ConnMaxLifetime  time.Duration
}

// ProvidersConfig holds LLM provider configurations
type ProvidersConfig struct {
	OpenAI    ProviderConfig
	Anthropic ProviderConfig
	Gemini    ProviderConfig
}

// ProviderConfig holds the settings shared by every provider adapter.
// An empty APIKey means the provider is not configured.
type ProviderConfig struct {
	APIKey    string
	BaseURL   string
	Model     string
	Timeout   time.Duration
	MaxTokens int
}

// RouterConfig holds chat routing configuration
type RouterConfig struct {
	Timeout          time.Duration
	StrictPreference bool
}

// CORSConfig holds the browser origin allow-list. An empty list allows any origin.
type CORSConfig struct {
	AllowedOrigins []string
}

// ChatLogConfig sizes the asynchronous chat outcome writer
type ChatLogConfig struct {
	BufferSize int
	Workers    int
}

// ObservabilityConfig holds logging configuration
type ObservabilityConfig struct {
	LogLevel  string
	LogFormat string // json or console
}

// New creates a new Config instance by loading environment variables
func New(ctx context.Context) (*Config, error) {
	_ = godotenv.Load(".env")

	cfg := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Version:     getEnv("APP_VERSION", "dev"),
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getPort(),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Database: loadDatabaseConfig(),
		Providers: ProvidersConfig{
			OpenAI: ProviderConfig{
				APIKey:    getEnv("OPENAI_API_KEY", ""),
				BaseURL:   getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
				Model:     getEnv("OPENAI_MODEL", "gpt-4o-mini"),
				Timeout:   getEnvAsDuration("OPENAI_TIMEOUT", 30*time.Second),
				MaxTokens: getEnvAsInt("OPENAI_MAX_TOKENS", 0),
			},
			Anthropic: ProviderConfig{
				APIKey:    getEnv("ANTHROPIC_API_KEY", ""),
				BaseURL:   getEnv("ANTHROPIC_BASE_URL", "https://api.anthropic.com"),
				Model:     getEnv("ANTHROPIC_MODEL", "claude-3-5-haiku-latest"),
				Timeout:   getEnvAsDuration("ANTHROPIC_TIMEOUT", 30*time.Second),
				MaxTokens: getEnvAsInt("ANTHROPIC_MAX_TOKENS", 800),
			},
			Gemini: ProviderConfig{
				APIKey:    getEnv("GEMINI_API_KEY", getEnv("GOOGLE_API_KEY", "")),
				BaseURL:   getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
				Model:     getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
				Timeout:   getEnvAsDuration("GEMINI_TIMEOUT", 30*time.Second),
				MaxTokens: getEnvAsInt("GEMINI_MAX_TOKENS", 0),
			},
		},
		Router: RouterConfig{
			Timeout:          getEnvAsDuration("ROUTER_TIMEOUT", 45*time.Second),
			StrictPreference: getEnvAsBool("ROUTER_STRICT_PREFERENCE", false),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS"),
		},
		ChatLog: ChatLogConfig{
			BufferSize: getEnvAsInt("CHATLOG_BUFFER_SIZE", 1000),
			Workers:    getEnvAsInt("CHATLOG_WORKERS", 2),
		},
		Observability: ObservabilityConfig{
			LogLevel:  getEnv("LOG_LEVEL", "info"),
			LogFormat: getEnv("LOG_FORMAT", "json"),
		},
	}

	// Validate the configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks if all required configuration fields are set
func (c *Config) Validate() error {
	if c.Observability.LogLevel == "" {
		return fmt.Errorf("log level is required")
	}

	if c.Router.Timeout <= 0 {
		return fmt.Errorf("router timeout must be positive")
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server port %d is out of range", c.Server.Port)
	}

	if c.Database != nil {
		if c.Database.ConnectionString == "" {
			return fmt.Errorf("database connection string is required when database is configured")
		}
		if c.Database.Driver == DriverSQLite && c.Database.DSN() == "" {
			return fmt.Errorf("sqlite database path is required")
		}
	}

	// Provider validation (at least one provider API key required in production)
	if c.IsProduction() && len(c.ConfiguredProviders()) == 0 {
		return fmt.Errorf("at least one LLM provider must be configured in production")
	}

	return nil
}

// ConfiguredProviders returns the names of providers that have an API key.
func (c *Config) ConfiguredProviders() []string {
	var names []string
	if c.Providers.OpenAI.APIKey != "" {
		names = append(names, "openai")
	}
	if c.Providers.Gemini.APIKey != "" {
		names = append(names, "gemini")
	}
	if c.Providers.Anthropic.APIKey != "" {
		names = append(names, "anthropic")
	}
	return names
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.Environment == "production" || c.Environment == "prod"
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development" || c.Environment == "dev"
}

// DSN returns the driver connection string. For SQLite this is the file path.
func (c *DatabaseConfig) DSN() string {
	if c.Driver == DriverSQLite {
		path := strings.TrimPrefix(c.ConnectionString, "sqlite:")
		return strings.TrimPrefix(path, "//")
	}
	return c.ConnectionString
}

// LogString returns a safe string for logging (no password).
func (c *DatabaseConfig) LogString() string {
	if c.Driver == DriverSQLite {
		return "sqlite path=" + c.DSN()
	}
	u, err := url.Parse(c.ConnectionString)
	if err != nil || u.Host == "" {
		return "host=<from DATABASE_URL>"
	}
	port := u.Port()
	if port == "" {
		port = "5432"
	}
	db := strings.TrimPrefix(u.Path, "/")
	return fmt.Sprintf("host=%s port=%s database=%s", u.Hostname(), port, db)
}

// loadDatabaseConfig returns nil when DATABASE_URL is unset.
func loadDatabaseConfig() *DatabaseConfig {
	dbURL := getEnv("DATABASE_URL", "")
	if dbURL == "" {
		return nil
	}
	return &DatabaseConfig{
		Driver:           driverFor(dbURL),
		ConnectionString: dbURL,
		MaxOpenConns:     getEnvAsInt("DB_MAX_OPEN_CONNS", 10),
		MaxIdleConns:     getEnvAsInt("DB_MAX_IDLE_CONNS", 2),
		ConnMaxLifetime:  getEnvAsDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
	}
}

func driverFor(dbURL string) string {
	if strings.HasPrefix(strings.ToLower(dbURL), DriverSQLite+":") {
		return DriverSQLite
	}
	return DriverPostgres
}

// Address returns the HTTP server address
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Helper functions

// getPort returns the server port from PORT or SERVER_PORT env vars (default: 8080)
func getPort() int {
	if value := os.Getenv("PORT"); value != "" {
		if p, err := strconv.Atoi(value); err == nil {
			return p
		}
	}
	if value := os.Getenv("SERVER_PORT"); value != "" {
		if p, err := strconv.Atoi(value); err == nil {
			return p
		}
	}
	return 8080
}

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsList splits a comma separated value, dropping blank entries.
func getEnvAsList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
