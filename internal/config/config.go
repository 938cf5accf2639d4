package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/gosuda/techtransfer/internal/audit"
	"github.com/gosuda/techtransfer/internal/domain"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Database   DatabaseConfig
	Redis      RedisConfig
	JWT        JWTConfig
	Server     ServerConfig
	Slack      SlackConfig
	Audit      AuditConfig
	Admin      AdminConfig
	SelfHosted bool
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string //nolint:gosec // G117: DB connection config
	DBName   string
	SSLMode  string
	MaxConns int
	// Migrate applies the embedded migrations at startup.
	Migrate bool
}

// RedisConfig holds Redis connection settings. An empty Addr disables the
// live audit feed.
type RedisConfig struct {
	Addr     string
	Password string //nolint:gosec // G117: Redis connection config
	DB       int
}

// Enabled reports whether a Redis server is configured.
func (c RedisConfig) Enabled() bool { return c.Addr != "" }

// JWTConfig holds JWT authentication settings.
type JWTConfig struct {
	Secret     string //nolint:gosec // G117: JWT signing secret config
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	CORSOrigins  []string
	// RateLimit is the sustained per-user request rate; per-IP limits on
	// the public auth routes use a tenth of it.
	RateLimit int
	RateBurst int
}

// SlackConfig holds the audit notification settings. An empty BotToken
// disables notifications.
type SlackConfig struct {
	BotToken string
	Channel  string
}

func (c SlackConfig) Enabled() bool { return c.BotToken != "" }

// AuditConfig holds audit trail settings.
type AuditConfig struct {
	FailurePolicy  audit.FailurePolicy
	NotifyActions  []domain.AuditAction
	ActorCacheSize int
	ActorCacheTTL  time.Duration
}

// AdminConfig seeds the first admin account. An empty Email skips seeding.
type AdminConfig struct {
	Name     string
	Email    string
	Password string //nolint:gosec // G117: bootstrap credential config
}

// Load reads configuration from environment variables.
// Defaults are safe for local development only. In production,
// sensitive values (JWT secret, DB password) must be set explicitly.
func Load() (*Config, error) {
	dbPort, err := getEnvInt("TT_DB_PORT", 5432)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	dbMaxConns, err := getEnvInt("TT_DB_MAX_CONNS", 25)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	dbMigrate, err := getEnvBool("TT_DB_MIGRATE", false)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	redisDB, err := getEnvInt("TT_REDIS_DB", 0)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	accessTTL, err := getEnvDuration("TT_JWT_ACCESS_TTL", 15*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	refreshTTL, err := getEnvDuration("TT_JWT_REFRESH_TTL", 7*24*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	readTimeout, err := getEnvDuration("TT_SERVER_READ_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	writeTimeout, err := getEnvDuration("TT_SERVER_WRITE_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	rateLimit, err := getEnvInt("TT_SERVER_RATE_LIMIT", 50)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	rateBurst, err := getEnvInt("TT_SERVER_RATE_BURST", 100)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	failurePolicy, err := audit.ParseFailurePolicy(getEnv("TT_AUDIT_FAILURE_MODE", string(audit.FailurePropagate)))
	if err != nil {
		return nil, fmt.Errorf("config.Load: TT_AUDIT_FAILURE_MODE: %w", err)
	}

	actorCacheSize, err := getEnvInt("TT_AUDIT_ACTOR_CACHE_SIZE", 1024)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	actorCacheTTL, err := getEnvDuration("TT_AUDIT_ACTOR_CACHE_TTL", 10*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	selfHosted, err := getEnvBool("TT_SELF_HOSTED", false)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	corsOrigins := getEnvList("TT_CORS_ORIGINS", []string{"http://localhost:5173"})

	notify := getEnvList("TT_AUDIT_NOTIFY_ACTIONS", []string{string(domain.AuditActionArchive), string(domain.AuditActionDelete)})
	notifyActions := make([]domain.AuditAction, 0, len(notify))
	for _, a := range notify {
		notifyActions = append(notifyActions, domain.AuditAction(strings.ToLower(a)))
	}

	cfg := &Config{
		Database: DatabaseConfig{
			Host:     getEnv("TT_DB_HOST", "localhost"),
			Port:     dbPort,
			User:     getEnv("TT_DB_USER", "techtransfer"),
			Password: getEnv("TT_DB_PASSWORD", ""),
			DBName:   getEnv("TT_DB_NAME", "techtransfer_dev"),
			SSLMode:  getEnv("TT_DB_SSLMODE", "disable"),
			MaxConns: dbMaxConns,
			Migrate:  dbMigrate,
		},
		Redis: RedisConfig{
			Addr:     getEnv("TT_REDIS_ADDR", ""),
			Password: getEnv("TT_REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		JWT: JWTConfig{
			Secret:     getEnv("TT_JWT_SECRET", ""),
			AccessTTL:  accessTTL,
			RefreshTTL: refreshTTL,
		},
		Server: ServerConfig{
			Addr:         getEnv("TT_SERVER_ADDR", ":8080"),
			ReadTimeout:  readTimeout,
			WriteTimeout: writeTimeout,
			CORSOrigins:  corsOrigins,
			RateLimit:    rateLimit,
			RateBurst:    rateBurst,
		},
		Slack: SlackConfig{
			BotToken: getEnv("TT_SLACK_BOT_TOKEN", ""),
			Channel:  getEnv("TT_SLACK_CHANNEL", ""),
		},
		Audit: AuditConfig{
			FailurePolicy:  failurePolicy,
			NotifyActions:  notifyActions,
			ActorCacheSize: actorCacheSize,
			ActorCacheTTL:  actorCacheTTL,
		},
		Admin: AdminConfig{
			Name:     getEnv("TT_ADMIN_NAME", "Administrator"),
			Email:    getEnv("TT_ADMIN_EMAIL", ""),
			Password: getEnv("TT_ADMIN_PASSWORD", ""),
		},
		SelfHosted: selfHosted,
	}

	err = cfg.validate()
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	return cfg, nil
}

// validate checks required fields and value bounds.
func (c *Config) validate() error {
	// JWT secret is required (no insecure default).
	if c.JWT.Secret == "" {
		return errors.New("TT_JWT_SECRET is required")
	}
	if len(c.JWT.Secret) < 32 {
		return errors.New("TT_JWT_SECRET must be at least 32 characters")
	}

	if c.Database.SSLMode == "disable" && !c.SelfHosted {
		log.Warn().Msg("TT_DB_SSLMODE=disable is insecure for production; set to 'require' or 'verify-full'")
	}

	if c.Database.Port < 1 || c.Database.Port > 65535 {
		return fmt.Errorf("TT_DB_PORT must be 1-65535, got %d", c.Database.Port)
	}
	if c.Database.MaxConns < 1 {
		return fmt.Errorf("TT_DB_MAX_CONNS must be >= 1, got %d", c.Database.MaxConns)
	}
	if c.JWT.AccessTTL <= 0 {
		return fmt.Errorf("TT_JWT_ACCESS_TTL must be positive, got %s", c.JWT.AccessTTL)
	}
	if c.JWT.RefreshTTL <= 0 {
		return fmt.Errorf("TT_JWT_REFRESH_TTL must be positive, got %s", c.JWT.RefreshTTL)
	}
	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("TT_SERVER_READ_TIMEOUT must be positive, got %s", c.Server.ReadTimeout)
	}
	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("TT_SERVER_WRITE_TIMEOUT must be positive, got %s", c.Server.WriteTimeout)
	}
	if c.Server.RateLimit < 1 {
		return fmt.Errorf("TT_SERVER_RATE_LIMIT must be >= 1, got %d", c.Server.RateLimit)
	}
	if c.Server.RateBurst < c.Server.RateLimit {
		return fmt.Errorf("TT_SERVER_RATE_BURST must be >= TT_SERVER_RATE_LIMIT, got %d", c.Server.RateBurst)
	}

	if c.Slack.Enabled() && c.Slack.Channel == "" {
		return errors.New("TT_SLACK_CHANNEL is required when TT_SLACK_BOT_TOKEN is set")
	}

	if c.Audit.ActorCacheSize < 1 {
		return fmt.Errorf("TT_AUDIT_ACTOR_CACHE_SIZE must be >= 1, got %d", c.Audit.ActorCacheSize)
	}
	if c.Audit.ActorCacheTTL <= 0 {
		return fmt.Errorf("TT_AUDIT_ACTOR_CACHE_TTL must be positive, got %s", c.Audit.ActorCacheTTL)
	}

	if c.Admin.Email != "" && len(c.Admin.Password) < 8 {
		return errors.New("TT_ADMIN_PASSWORD must be at least 8 characters when TT_ADMIN_EMAIL is set")
	}

	return nil
}

// DSN returns the PostgreSQL connection string.
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("parsing %s=%q as int: %w", key, v, err)
	}
	return n, nil
}

func getEnvBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("parsing %s=%q as bool: %w", key, v, err)
	}
	return b, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("parsing %s=%q as duration: %w", key, v, err)
	}
	return d, nil
}

func getEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parts := strings.Split(v, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}
