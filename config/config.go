package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"timebot/timeutil"
)

// Config holds all runtime configuration loaded from environment variables,
// optionally seeded from a .env file.
type Config struct {
	TelegramBotToken   string
	TelegramAPIBaseURL string
	BotMention         string

	OpenAIAPIKey     string
	OpenAIAPIBaseURL string
	OpenAIModel      string

	ListenAddr  string
	WebhookPath string

	DatabasePath string
	HistoryLimit int

	Location *time.Location
	Grammar  timeutil.Options
	// NLFallback enables the natural-language parser after a grammar miss.
	NLFallback bool

	LogLevel  zerolog.Level
	LogFormat string
}

// Load reads a .env file from path when it exists, then the environment.
// Variables already set in the environment win over the file. An empty path
// reads ".env".
func Load(path string) (*Config, error) {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return FromEnv()
}

// FromEnv reads configuration from environment variables and applies
// defaults where possible. Secrets are validated by RequireTelegram, since
// only the serve command needs them.
func FromEnv() (*Config, error) {
	cfg := &Config{
		TelegramBotToken:   env("TELEGRAM_BOT_TOKEN", ""),
		TelegramAPIBaseURL: env("TELEGRAM_API_BASE_URL", ""),
		BotMention:         env("BOT_MENTION", "@timebot"),
		OpenAIAPIKey:       env("OPENAI_API_KEY", ""),
		OpenAIAPIBaseURL:   env("OPENAI_API_BASE_URL", ""),
		OpenAIModel:        env("OPENAI_MODEL", ""),
		ListenAddr:         env("LISTEN_ADDR", ":8080"),
		WebhookPath:        env("WEBHOOK_PATH", "/telegram/webhook"),
		DatabasePath:       env("DATABASE_PATH", "timebot.db"),
		LogFormat:          strings.ToLower(env("LOG_FORMAT", "console")),
		Grammar:            timeutil.DefaultOptions(),
	}

	if !strings.HasPrefix(cfg.BotMention, "@") {
		cfg.BotMention = "@" + cfg.BotMention
	}
	if !strings.HasPrefix(cfg.WebhookPath, "/") {
		return nil, fmt.Errorf("WEBHOOK_PATH must start with /, got %q", cfg.WebhookPath)
	}

	loc, err := time.LoadLocation(env("TIME_ZONE", "UTC"))
	if err != nil {
		return nil, fmt.Errorf("invalid TIME_ZONE: %w", err)
	}
	cfg.Location = loc

	if cfg.HistoryLimit, err = envInt("HISTORY_LIMIT", 10); err != nil {
		return nil, err
	}
	if cfg.HistoryLimit <= 0 {
		return nil, fmt.Errorf("HISTORY_LIMIT must be positive, got %d", cfg.HistoryLimit)
	}

	if cfg.Grammar.Prepositions, err = envBool("GRAMMAR_PREPOSITIONS", false); err != nil {
		return nil, err
	}
	if cfg.Grammar.Seconds, err = envBool("GRAMMAR_SECONDS", false); err != nil {
		return nil, err
	}
	if cfg.NLFallback, err = envBool("NL_FALLBACK", true); err != nil {
		return nil, err
	}

	if cfg.LogLevel, err = zerolog.ParseLevel(strings.ToLower(env("LOG_LEVEL", "info"))); err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	if cfg.LogFormat != "console" && cfg.LogFormat != "json" {
		return nil, fmt.Errorf("LOG_FORMAT must be console or json, got %q", cfg.LogFormat)
	}

	return cfg, nil
}

// RequireTelegram reports an error when the bot token is missing.
func (c *Config) RequireTelegram() error {
	if c.TelegramBotToken == "" {
		return fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
	}
	return nil
}

// Logger builds the process logger writing to w.
func (c *Config) Logger(w io.Writer) zerolog.Logger {
	if c.LogFormat == "console" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	return zerolog.New(w).Level(c.LogLevel).With().Timestamp().Logger()
}

func env(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) (int, error) {
	raw := env(key, "")
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func envBool(key string, def bool) (bool, error) {
	raw := env(key, "")
	if raw == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}
