package config

import (
	"fmt"
	"time"
)

// Config holds the full runtime configuration of the nutrition bot.
type Config struct {
	AppEnv string `mapstructure:"-"`

	Bot       BotConfig       `mapstructure:"bot" validate:"required"`
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database" validate:"required"`
	Redis     RedisConfig     `mapstructure:"redis" validate:"required"`
	OpenAI    OpenAIConfig    `mapstructure:"openai" validate:"required"`
	Logger    LoggerConfig    `mapstructure:"logger"`
	Sentry    SentryConfig    `mapstructure:"sentry"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	I18n      I18nConfig      `mapstructure:"i18n"`
	Jobs      JobsConfig      `mapstructure:"jobs"`
}

// BotConfig configures the Telegram transport.
type BotConfig struct {
	Token   string        `mapstructure:"token" validate:"required"`
	Mode    string        `mapstructure:"mode" validate:"oneof=polling webhook"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// ServerConfig configures the HTTP surface: health probes, metrics,
// and the webhook listener when enabled.
type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig configures the PostgreSQL connection.
type DatabaseConfig struct {
	Host     string `mapstructure:"host" validate:"required"`
	Port     string `mapstructure:"port" validate:"required"`
	User     string `mapstructure:"user" validate:"required"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name" validate:"required"`
	SSLMode  string `mapstructure:"sslmode"`

	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// DSN renders the PostgreSQL connection string.
func (c DatabaseConfig) DSN() string {
	sslmode := c.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}

	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, sslmode,
	)
}

// RedisConfig configures the Redis connection shared by state storage,
// locks, caching, rate limiting, and the job queue.
type RedisConfig struct {
	Addr         string        `mapstructure:"addr" validate:"required"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	PoolTimeout  time.Duration `mapstructure:"pool_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// OpenAIConfig configures the nutrition estimation client.
type OpenAIConfig struct {
	APIKey  string        `mapstructure:"api_key" validate:"required"`
	Model   string        `mapstructure:"model"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// LoggerConfig configures structured logging output.
type LoggerConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`

	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// SentryConfig configures error reporting.
type SentryConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	DSN         string  `mapstructure:"dsn"`
	Environment string  `mapstructure:"environment"`
	SampleRate  float64 `mapstructure:"sample_rate"`
}

// RateLimitRule is a single limit over a window.
type RateLimitRule struct {
	Limit  int    `mapstructure:"limit"`
	Window string `mapstructure:"window"`
}

// RateLimitCommands holds per-command overrides.
type RateLimitCommands struct {
	AddMeal  RateLimitRule `mapstructure:"add_meal"`
	SetGoals RateLimitRule `mapstructure:"set_goals"`
	Summary  RateLimitRule `mapstructure:"summary"`
}

// RateLimitConfig configures request throttling.
type RateLimitConfig struct {
	Enabled   bool              `mapstructure:"enabled"`
	Global    RateLimitRule     `mapstructure:"global"`
	PerUser   RateLimitRule     `mapstructure:"per_user"`
	Commands  RateLimitCommands `mapstructure:"commands"`
	Whitelist []int64           `mapstructure:"whitelist"`
}

// I18nConfig configures the translation catalogs.
type I18nConfig struct {
	Dir             string `mapstructure:"dir"`
	DefaultLanguage string `mapstructure:"default_language"`
}

// JobsConfig configures the asynq worker and scheduler.
type JobsConfig struct {
	Enabled     bool           `mapstructure:"enabled"`
	Concurrency int            `mapstructure:"concurrency"`
	Queues      map[string]int `mapstructure:"queues"`
}
