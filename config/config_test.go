package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

var keys = []string{
	"TELEGRAM_BOT_TOKEN", "TELEGRAM_API_BASE_URL", "BOT_MENTION",
	"OPENAI_API_KEY", "OPENAI_API_BASE_URL", "OPENAI_MODEL",
	"LISTEN_ADDR", "WEBHOOK_PATH", "DATABASE_PATH", "HISTORY_LIMIT",
	"TIME_ZONE", "GRAMMAR_PREPOSITIONS", "GRAMMAR_SECONDS", "NL_FALLBACK",
	"LOG_LEVEL", "LOG_FORMAT",
}

// clearEnv blanks every variable Load reads; t.Setenv restores them after
// the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := FromEnv()
	require.NoError(t, err)
	require.Equal(t, "@timebot", cfg.BotMention)
	require.Equal(t, ":8080", cfg.ListenAddr)
	require.Equal(t, "/telegram/webhook", cfg.WebhookPath)
	require.Equal(t, "timebot.db", cfg.DatabasePath)
	require.Equal(t, 10, cfg.HistoryLimit)
	require.Equal(t, "UTC", cfg.Location.String())
	require.True(t, cfg.NLFallback)
	require.True(t, cfg.Grammar.Recurse)
	require.False(t, cfg.Grammar.Prepositions)
	require.False(t, cfg.Grammar.Seconds)
	require.Equal(t, zerolog.InfoLevel, cfg.LogLevel)
	require.Equal(t, "console", cfg.LogFormat)

	require.Error(t, cfg.RequireTelegram())
}

func TestFromEnv_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("BOT_MENTION", "clockbot")
	t.Setenv("TIME_ZONE", "Europe/Berlin")
	t.Setenv("HISTORY_LIMIT", "3")
	t.Setenv("GRAMMAR_PREPOSITIONS", "true")
	t.Setenv("GRAMMAR_SECONDS", "1")
	t.Setenv("NL_FALLBACK", "false")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("LOG_FORMAT", "json")

	cfg, err := FromEnv()
	require.NoError(t, err)
	require.NoError(t, cfg.RequireTelegram())
	require.Equal(t, "@clockbot", cfg.BotMention)
	require.Equal(t, "Europe/Berlin", cfg.Location.String())
	require.Equal(t, 3, cfg.HistoryLimit)
	require.True(t, cfg.Grammar.Prepositions)
	require.True(t, cfg.Grammar.Seconds)
	require.False(t, cfg.NLFallback)
	require.Equal(t, zerolog.DebugLevel, cfg.LogLevel)
	require.Equal(t, "json", cfg.LogFormat)
}

func TestFromEnv_Invalid(t *testing.T) {
	cases := map[string]string{
		"TIME_ZONE":            "Mars/Olympus",
		"HISTORY_LIMIT":        "-1",
		"GRAMMAR_PREPOSITIONS": "maybe",
		"LOG_LEVEL":            "loud",
		"LOG_FORMAT":           "xml",
		"WEBHOOK_PATH":         "hook",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(key, value)
			_, err := FromEnv()
			require.Error(t, err)
		})
	}
}

func TestLoad_DotEnv(t *testing.T) {
	clearEnv(t)
	os.Unsetenv("DATABASE_PATH")

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("DATABASE_PATH=/tmp/from-file.db\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "/tmp/from-file.db", cfg.DatabasePath)
}

func TestLoad_MissingFile(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	require.Equal(t, "timebot.db", cfg.DatabasePath)
}

func TestLogger_JSON(t *testing.T) {
	clearEnv(t)
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := FromEnv()
	require.NoError(t, err)

	var buf bytes.Buffer
	log := cfg.Logger(&buf)
	log.Info().Msg("hidden")
	log.Warn().Msg("shown")

	require.NotContains(t, buf.String(), "hidden")
	require.Contains(t, buf.String(), `"message":"shown"`)
}
