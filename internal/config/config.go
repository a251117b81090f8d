// Package config は環境変数からサービス設定を読み込む。
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// サービス名。1つのバイナリがSERVICE_NAMEに応じていずれか1つのサービスとして起動する。
const (
	ServiceCategory = "category"
	ServiceUser     = "user"
	ServiceMeme     = "meme"
)

// ストレージドライバ。
const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Service
	ServiceName string `envconfig:"SERVICE_NAME" required:"true"`

	// Storage
	StorageDriver string `envconfig:"STORAGE_DRIVER" default:"postgres"`
	DatabaseURL   string `envconfig:"DATABASE_URL"`

	// Remote lookup (meme サービスのみ)
	CategoryServiceURL  string        `envconfig:"CATEGORY_SERVICE_URL"`
	UserServiceURL      string        `envconfig:"USER_SERVICE_URL"`
	RemoteLookupTimeout time.Duration `envconfig:"REMOTE_LOOKUP_TIMEOUT" default:"3s"`

	// Events
	RedisAddr           string        `envconfig:"REDIS_ADDR"`
	EventChannelPrefix  string        `envconfig:"EVENT_CHANNEL_PREFIX" default:"memelandia"`
	EventBufferSize     int           `envconfig:"EVENT_BUFFER_SIZE" default:"256"`
	EventPublishTimeout time.Duration `envconfig:"EVENT_PUBLISH_TIMEOUT" default:"2s"`

	// Rate Limit (作成リクエスト/分/IP)
	RateLimitCreate int `envconfig:"RATE_LIMIT_CREATE" default:"60"`

	// Logging
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// Server
	ServerPort string `envconfig:"SERVER_PORT" default:"8080"`

	// CORS
	CORSAllowedOrigin string `envconfig:"CORS_ALLOWED_ORIGIN" default:"http://localhost:3000"`
}

// Load は環境変数からConfigを読み込む。
// 必須環境変数が未設定の場合や値が不正な場合はエラーを返す。
func Load() (*Config, error) {
	cfg := &Config{}
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.ServiceName {
	case ServiceCategory, ServiceUser, ServiceMeme:
	default:
		return fmt.Errorf("SERVICE_NAME must be one of category, user, meme: %q", c.ServiceName)
	}

	switch c.StorageDriver {
	case StoragePostgres, StorageMemory:
	default:
		return fmt.Errorf("STORAGE_DRIVER must be postgres or memory: %q", c.StorageDriver)
	}

	var missing []string
	if c.StorageDriver == StoragePostgres && c.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if c.ServiceName == ServiceMeme {
		if c.CategoryServiceURL == "" {
			missing = append(missing, "CATEGORY_SERVICE_URL")
		}
		if c.UserServiceURL == "" {
			missing = append(missing, "USER_SERVICE_URL")
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("required environment variables are not set: %v", missing)
	}

	if c.RemoteLookupTimeout <= 0 {
		return fmt.Errorf("REMOTE_LOOKUP_TIMEOUT must be positive: %s", c.RemoteLookupTimeout)
	}
	if c.EventBufferSize <= 0 {
		return fmt.Errorf("EVENT_BUFFER_SIZE must be positive: %d", c.EventBufferSize)
	}
	if c.RateLimitCreate <= 0 {
		return fmt.Errorf("RATE_LIMIT_CREATE must be positive: %d", c.RateLimitCreate)
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return err
	}

	return nil
}

// SlogLevel はLOG_LEVELをslog.Levelに変換して返す。検証済みのため失敗しない。
func (c *Config) SlogLevel() slog.Level {
	level, _ := ParseLogLevel(c.LogLevel)
	return level
}

// ParseLogLevel はdebug/info/warn/errorをslog.Levelに変換する。
func ParseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("LOG_LEVEL must be debug, info, warn or error: %q", s)
	}
}
