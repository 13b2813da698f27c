package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"

	DefaultSecret      = "12345"
	DefaultDBPath      = "notes.db"
	DefaultHTTPPort    = "8000"
	DefaultWebhookPath = "/telegram/webhook"
	DefaultCacheSize   = 1000
	DefaultCacheTTL    = 30 * time.Second
)

type Config struct {
	Bot      BotConfig
	Database DatabaseConfig
	HTTP     HTTPConfig
	Digest   DigestConfig
	Log      LogConfig

	Secret    string
	CacheSize int
	CacheTTL  time.Duration
}

type BotConfig struct {
	Token       string
	WebhookURL  string
	WebhookPath string

	// WebhookSecret is echoed by Telegram in X-Telegram-Bot-Api-Secret-Token.
	// The runner generates one when it is empty.
	WebhookSecret string
}

// Enabled reports whether a bot token was configured.
func (b BotConfig) Enabled() bool {
	return b.Token != ""
}

type DatabaseConfig struct {
	Driver string
	Path   string
	DSN    string
}

type HTTPConfig struct {
	Port    string
	WebURL  string
	GinMode string
}

// Addr returns the listen address for the HTTP server.
func (h HTTPConfig) Addr() string {
	return ":" + h.Port
}

type DigestConfig struct {
	ChatID int64
	Hour   int
	Minute int
}

func (d DigestConfig) Enabled() bool {
	return d.ChatID != 0
}

type LogConfig struct {
	Level  slog.Level
	Format string
}

// LoadEnv loads the first .env file found next to the working directory or
// up to two levels above it. Variables already set in the process win.
func LoadEnv() (string, error) {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
	}

	for _, path := range possiblePaths {
		if err := godotenv.Load(path); err == nil {
			return path, nil
		}
	}

	return "", fmt.Errorf("could not load .env file from any of %v", possiblePaths)
}

// Load builds a Config from the process environment.
func Load() (*Config, error) {
	cfg := &Config{
		Bot: BotConfig{
			Token:         firstEnv("TELEGRAM_BOT_TOKEN", "BOT_TOKEN"),
			WebhookURL:    os.Getenv("BOT_WEBHOOK_URL"),
			WebhookPath:   envOr("BOT_WEBHOOK_PATH", DefaultWebhookPath),
			WebhookSecret: os.Getenv("BOT_WEBHOOK_SECRET"),
		},
		Database: DatabaseConfig{
			Driver: strings.ToLower(envOr("DB_DRIVER", DriverSQLite)),
			Path:   envOr("DB_PATH", DefaultDBPath),
			DSN:    os.Getenv("DB_DSN"),
		},
		HTTP: HTTPConfig{
			Port:    envOr("HTTP_PORT", DefaultHTTPPort),
			GinMode: os.Getenv("GIN_MODE"),
		},
		Secret: envOr("SECRET_PASSWORD", DefaultSecret),
	}

	cfg.HTTP.WebURL = envOr("WEB_URL", "http://localhost:"+cfg.HTTP.Port)

	switch cfg.Database.Driver {
	case DriverSQLite:
	case DriverMySQL:
		if cfg.Database.DSN == "" {
			cfg.Database.DSN = mysqlDSNFromEnv()
		}
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.Database.Driver)
	}

	var err error
	if cfg.CacheSize, err = envInt("NOTE_CACHE_SIZE", DefaultCacheSize); err != nil {
		return nil, err
	}
	if cfg.CacheSize <= 0 {
		return nil, fmt.Errorf("NOTE_CACHE_SIZE must be positive, got %d", cfg.CacheSize)
	}
	cfg.CacheTTL = DefaultCacheTTL
	if v := os.Getenv("NOTE_CACHE_TTL"); v != "" {
		if cfg.CacheTTL, err = time.ParseDuration(v); err != nil {
			return nil, fmt.Errorf("invalid NOTE_CACHE_TTL %q: %w", v, err)
		}
		if cfg.CacheTTL <= 0 {
			return nil, fmt.Errorf("NOTE_CACHE_TTL must be positive, got %s", v)
		}
	}
	if s := cfg.Bot.WebhookSecret; s != "" && !validWebhookSecret(s) {
		return nil, fmt.Errorf("BOT_WEBHOOK_SECRET must be 1-256 characters of A-Z, a-z, 0-9, _ or -")
	}

	if v := os.Getenv("ADMIN_CHAT_ID"); v != "" {
		cfg.Digest.ChatID, err = strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid ADMIN_CHAT_ID %q: %w", v, err)
		}
	}
	if cfg.Digest.Hour, err = envInt("DIGEST_HOUR", 9); err != nil {
		return nil, err
	}
	if cfg.Digest.Minute, err = envInt("DIGEST_MINUTE", 0); err != nil {
		return nil, err
	}
	if cfg.Digest.Hour < 0 || cfg.Digest.Hour > 23 || cfg.Digest.Minute < 0 || cfg.Digest.Minute > 59 {
		return nil, fmt.Errorf("invalid digest time %02d:%02d", cfg.Digest.Hour, cfg.Digest.Minute)
	}

	if err := cfg.Log.Level.UnmarshalText([]byte(envOr("LOG_LEVEL", "info"))); err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	cfg.Log.Format = strings.ToLower(envOr("LOG_FORMAT", "text"))
	if cfg.Log.Format != "text" && cfg.Log.Format != "json" {
		return nil, fmt.Errorf("unsupported LOG_FORMAT %q", cfg.Log.Format)
	}

	return cfg, nil
}

// mysqlDSNFromEnv builds the DSN from the individual DB_* variables.
func mysqlDSNFromEnv() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		os.Getenv("DB_USERNAME"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_HOST"),
		os.Getenv("DB_PORT"),
		os.Getenv("DB_DATABASE"),
	)
}

func validWebhookSecret(s string) bool {
	if len(s) > 256 {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
		default:
			return false
		}
	}
	return true
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func firstEnv(keys ...string) string {
	for _, key := range keys {
		if v := os.Getenv(key); v != "" {
			return v
		}
	}
	return ""
}

func envInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return n, nil
}
