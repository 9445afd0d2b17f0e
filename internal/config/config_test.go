package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var overrideKeys = []string{
	"PORT", "ALLOW_ORIGIN", "MAX_UPLOAD_BYTES", "RATE_LIMIT_RPS", "RATE_LIMIT_BURST",
	"LLM_PROVIDER", "GEMINI_API_KEY", "GEMINI_MODEL", "ANTHROPIC_API_KEY", "ANTHROPIC_MODEL",
	"GCP_PROJECT_ID", "GCP_REGION", "PROMPTS_PATH", "LLM_TIMEOUT", "DEFAULT_BUDGET",
	"LOG_LEVEL", "LOG_FORMAT", "OTEL_EXPORTER_OTLP_ENDPOINT", "CHROME_PATH",
}

// clearEnv blanks every override so the host environment cannot leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range overrideKeys {
		t.Setenv(k, "")
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "soilsmart.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, Default(), cfg)
	assert.False(t, cfg.LLMEnabled())
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
server:
  port: "9090"
  rateLimitBurst: 5
llm:
  provider: anthropic
  anthropicAPIKey: sk-test
  timeout: 45s
engine:
  defaultBudget: 75000
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 5, cfg.Server.RateLimitBurst)
	assert.Equal(t, 10.0, cfg.Server.RateLimitRPS)
	assert.Equal(t, ProviderAnthropic, cfg.LLM.Provider)
	assert.Equal(t, 45*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, 75000.0, cfg.Engine.DefaultBudget)
	assert.True(t, cfg.LLMEnabled())
	assert.Equal(t, "claude-sonnet-4-20250514", cfg.Model())
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "server:\n  port: \"9090\"\n")
	t.Setenv("PORT", "7070")
	t.Setenv("LLM_PROVIDER", "GEMINI")
	t.Setenv("GEMINI_API_KEY", "g-key")
	t.Setenv("LLM_TIMEOUT", "12")
	t.Setenv("DEFAULT_BUDGET", "20000")
	t.Setenv("LOG_FORMAT", "text")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "7070", cfg.Server.Port)
	assert.Equal(t, ProviderGemini, cfg.LLM.Provider)
	assert.Equal(t, 12*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, 20000.0, cfg.Engine.DefaultBudget)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.True(t, cfg.LLMEnabled())
	assert.Equal(t, "gemini-1.5-flash", cfg.Model())
}

func TestLoad_InvalidNumericEnvIsIgnored(t *testing.T) {
	clearEnv(t)
	t.Setenv("RATE_LIMIT_BURST", "many")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 20, cfg.Server.RateLimitBurst)
}

func TestLoad_BadYAML(t *testing.T) {
	clearEnv(t)
	_, err := Load(writeConfig(t, "server: [unterminated"))
	assert.ErrorContains(t, err, "parse config")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"ok", func(*Config) {}, ""},
		{"provider", func(c *Config) { c.LLM.Provider = "openai" }, "invalid LLM provider"},
		{"port", func(c *Config) { c.Server.Port = "" }, "port"},
		{"rate", func(c *Config) { c.Server.RateLimitRPS = 0 }, "rate limit"},
		{"budget", func(c *Config) { c.Engine.DefaultBudget = -1 }, "defaultBudget"},
		{"level", func(c *Config) { c.Log.Level = "trace" }, "log level"},
		{"format", func(c *Config) { c.Log.Format = "xml" }, "log format"},
		{"upload", func(c *Config) { c.Server.MaxUploadBytes = 0 }, "maxUploadBytes"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestLLMEnabled(t *testing.T) {
	cfg := Default()
	assert.False(t, cfg.LLMEnabled())

	cfg.LLM.ProjectID = "my-project"
	assert.True(t, cfg.LLMEnabled(), "vertex backend needs only a project")

	cfg.LLM.Provider = ProviderNone
	assert.False(t, cfg.LLMEnabled())
}
