package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapSettings map[string]string

func (m mapSettings) Get(name string) string { return m[name] }

func clearEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t, "SENTINEL_CONFIG", "PORT", "AI_PROVIDER", "VERIFY_WORKERS", "RATE_WINDOW", "ADDITIONAL_CONTEXT", "CORS_ORIGINS")

	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, "5002", cfg.Port)
	assert.Equal(t, "groq", cfg.AI.Provider)
	assert.Equal(t, 4, cfg.Pipeline.Workers)
	assert.Equal(t, time.Minute, cfg.RateWindow)
	assert.True(t, cfg.Pipeline.AdditionalContext)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.Equal(t, 30*time.Second, cfg.Pipeline.CallTimeout)
	require.NoError(t, cfg.Validate())
}

func TestLoadPrecedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sentinel.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
port: "7000"
rate_limit: 5
ai:
  provider: openai
  model: gpt-4o-mini
cors_origins:
  - https://a.example
  - https://b.example
`), 0o600))
	t.Setenv("SENTINEL_CONFIG", path)
	t.Setenv("PORT", "8000")
	t.Setenv("AI_MODEL", "")
	clearEnv(t, "AI_PROVIDER", "RATE_LIMIT", "CORS_ORIGINS")

	cfg, err := Load(mapSettings{"port": "9000"})
	require.NoError(t, err)
	assert.Equal(t, "9000", cfg.Port, "settings table wins")
	assert.Equal(t, "openai", cfg.AI.Provider, "file used when env is unset")
	assert.Equal(t, "gpt-4o-mini", cfg.AI.Model)
	assert.Equal(t, 5, cfg.RateLimit)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)

	cfg, err = Load(nil)
	require.NoError(t, err)
	assert.Equal(t, "8000", cfg.Port, "env beats file")
}

func TestLoadWorkersClamped(t *testing.T) {
	clearEnv(t, "SENTINEL_CONFIG")
	t.Setenv("VERIFY_WORKERS", "64")
	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.Pipeline.Workers)

	t.Setenv("VERIFY_WORKERS", "0")
	cfg, err = Load(nil)
	require.NoError(t, err)
	assert.Equal(t, 1, cfg.Pipeline.Workers)
}

func TestLoadBadValue(t *testing.T) {
	clearEnv(t, "SENTINEL_CONFIG")
	t.Setenv("SEARCH_RESULTS", "many")
	_, err := Load(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SEARCH_RESULTS")
}

func TestDurationSeconds(t *testing.T) {
	clearEnv(t, "SENTINEL_CONFIG")
	t.Setenv("CALL_TIMEOUT", "45")
	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, 45*time.Second, cfg.Pipeline.CallTimeout)
}

func TestValidate(t *testing.T) {
	clearEnv(t, "SENTINEL_CONFIG", "LOG_FORMAT", "RATE_LIMIT")
	cfg, err := Load(nil)
	require.NoError(t, err)

	cfg.LogFormat = "xml"
	cfg.RateLimit = 0
	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log_format")
	assert.Contains(t, err.Error(), "rate_limit")
}

func TestFactoryConfig(t *testing.T) {
	cfg := Config{
		AI:       AI{Provider: "groq", Model: "llama-3.3-70b-versatile", MaxTokens: 900, GroqKey: "g", OpenAIKey: "o", BaseURL: "http://local"},
		Pipeline: Pipeline{CallTimeout: 30 * time.Second, RetryAttempts: 2},
	}

	fc := cfg.FactoryConfig("")
	assert.Equal(t, "groq", fc.Provider)
	assert.Equal(t, "llama-3.3-70b-versatile", fc.Model)
	assert.Equal(t, 900, fc.MaxCompletionTokens)
	assert.Equal(t, 2, fc.RetryAttempts)
	assert.Equal(t, "http://local", fc.Extra["base_url"])

	fc = cfg.FactoryConfig("openai")
	assert.Equal(t, "openai", fc.Provider)
	assert.Empty(t, fc.Model, "model reset to the provider default")
	assert.Equal(t, "o", fc.OpenAIKey)
}
