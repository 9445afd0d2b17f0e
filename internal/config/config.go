// Package config loads service configuration from an optional YAML file and
// environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// PathEnv names the variable holding the config file path.
const PathEnv = "SOILSMART_CONFIG"

// DefaultPath is read when PathEnv is unset.
const DefaultPath = "soilsmart.yaml"

const (
	ProviderGemini    = "gemini"
	ProviderAnthropic = "anthropic"
	ProviderNone      = "none"
)

var validProviders = []string{ProviderGemini, ProviderAnthropic, ProviderNone}

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	LLM       LLMConfig       `yaml:"llm"`
	Engine    EngineConfig    `yaml:"engine"`
	Log       LogConfig       `yaml:"log"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Report    ReportConfig    `yaml:"report"`
}

type ServerConfig struct {
	Port            string        `yaml:"port"`
	AllowOrigin     string        `yaml:"allowOrigin"`
	MaxUploadBytes  int64         `yaml:"maxUploadBytes"`
	RateLimitRPS    float64       `yaml:"rateLimitRPS"`
	RateLimitBurst  int           `yaml:"rateLimitBurst"`
	ReadTimeout     time.Duration `yaml:"readTimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
}

// LLMConfig selects and configures the hosted model. Gemini uses an API key
// when one is set and Vertex AI (ProjectID/Region) otherwise.
type LLMConfig struct {
	Provider        string        `yaml:"provider"`
	GeminiAPIKey    string        `yaml:"geminiAPIKey"`
	GeminiModel     string        `yaml:"geminiModel"`
	AnthropicAPIKey string        `yaml:"anthropicAPIKey"`
	AnthropicModel  string        `yaml:"anthropicModel"`
	ProjectID       string        `yaml:"projectID"`
	Region          string        `yaml:"region"`
	PromptsPath     string        `yaml:"promptsPath"`
	Timeout         time.Duration `yaml:"timeout"`
}

type EngineConfig struct {
	// DefaultBudget applies when a request carries no budget. INR.
	DefaultBudget float64 `yaml:"defaultBudget"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type TelemetryConfig struct {
	ServiceName  string `yaml:"serviceName"`
	OTLPEndpoint string `yaml:"otlpEndpoint"`
}

type ReportConfig struct {
	ChromePath string        `yaml:"chromePath"`
	Timeout    time.Duration `yaml:"timeout"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            "8080",
			AllowOrigin:     "*",
			MaxUploadBytes:  10 << 20,
			RateLimitRPS:    10,
			RateLimitBurst:  20,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    90 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		LLM: LLMConfig{
			Provider:       ProviderGemini,
			GeminiModel:    "gemini-1.5-flash",
			AnthropicModel: "claude-sonnet-4-20250514",
			Region:         "us-central1",
			PromptsPath:    "docs/prompts.md",
			Timeout:        30 * time.Second,
		},
		Engine: EngineConfig{DefaultBudget: 50000},
		Log:    LogConfig{Level: "info", Format: "json"},
		Telemetry: TelemetryConfig{
			ServiceName: "soilsmart",
		},
		Report: ReportConfig{Timeout: 30 * time.Second},
	}
}

// Load reads path over the defaults, applies environment overrides and
// validates the result. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromEnv loads the file named by SOILSMART_CONFIG, or DefaultPath.
func FromEnv() (*Config, error) {
	return Load(envOrDefault(PathEnv, DefaultPath))
}

func (c *Config) applyEnvOverrides() {
	c.Server.Port = envOrDefault("PORT", c.Server.Port)
	c.Server.AllowOrigin = envOrDefault("ALLOW_ORIGIN", c.Server.AllowOrigin)
	c.Server.MaxUploadBytes = int64(envOrDefaultInt("MAX_UPLOAD_BYTES", int(c.Server.MaxUploadBytes)))
	c.Server.RateLimitRPS = envOrDefaultFloat("RATE_LIMIT_RPS", c.Server.RateLimitRPS)
	c.Server.RateLimitBurst = envOrDefaultInt("RATE_LIMIT_BURST", c.Server.RateLimitBurst)

	c.LLM.Provider = strings.ToLower(envOrDefault("LLM_PROVIDER", c.LLM.Provider))
	c.LLM.GeminiAPIKey = envOrDefault("GEMINI_API_KEY", c.LLM.GeminiAPIKey)
	c.LLM.GeminiModel = envOrDefault("GEMINI_MODEL", c.LLM.GeminiModel)
	c.LLM.AnthropicAPIKey = envOrDefault("ANTHROPIC_API_KEY", c.LLM.AnthropicAPIKey)
	c.LLM.AnthropicModel = envOrDefault("ANTHROPIC_MODEL", c.LLM.AnthropicModel)
	c.LLM.ProjectID = envOrDefault("GCP_PROJECT_ID", c.LLM.ProjectID)
	c.LLM.Region = envOrDefault("GCP_REGION", c.LLM.Region)
	c.LLM.PromptsPath = envOrDefault("PROMPTS_PATH", c.LLM.PromptsPath)
	c.LLM.Timeout = envOrDefaultDuration("LLM_TIMEOUT", c.LLM.Timeout)

	c.Engine.DefaultBudget = envOrDefaultFloat("DEFAULT_BUDGET", c.Engine.DefaultBudget)

	c.Log.Level = strings.ToLower(envOrDefault("LOG_LEVEL", c.Log.Level))
	c.Log.Format = strings.ToLower(envOrDefault("LOG_FORMAT", c.Log.Format))

	c.Telemetry.OTLPEndpoint = envOrDefault("OTEL_EXPORTER_OTLP_ENDPOINT", c.Telemetry.OTLPEndpoint)
	c.Report.ChromePath = envOrDefault("CHROME_PATH", c.Report.ChromePath)
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if c.Server.MaxUploadBytes <= 0 {
		return fmt.Errorf("maxUploadBytes must be > 0")
	}
	if c.Server.RateLimitRPS <= 0 || c.Server.RateLimitBurst <= 0 {
		return fmt.Errorf("rate limit must be positive (rps=%v burst=%d)", c.Server.RateLimitRPS, c.Server.RateLimitBurst)
	}
	if !slices.Contains(validProviders, c.LLM.Provider) {
		return fmt.Errorf("invalid LLM provider: %s (valid: %v)", c.LLM.Provider, validProviders)
	}
	if c.LLM.Timeout <= 0 {
		return fmt.Errorf("llm timeout must be > 0")
	}
	if c.Engine.DefaultBudget <= 0 {
		return fmt.Errorf("defaultBudget must be > 0")
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "text":
	default:
		return fmt.Errorf("invalid log format: %s", c.Log.Format)
	}
	return nil
}

// LLMEnabled reports whether the configured provider has credentials.
// Without them every request is served by the fallback engine.
func (c *Config) LLMEnabled() bool {
	switch c.LLM.Provider {
	case ProviderGemini:
		return c.LLM.GeminiAPIKey != "" || c.LLM.ProjectID != ""
	case ProviderAnthropic:
		return c.LLM.AnthropicAPIKey != ""
	}
	return false
}

// Model returns the model name for the configured provider.
func (c *Config) Model() string {
	if c.LLM.Provider == ProviderAnthropic {
		return c.LLM.AnthropicModel
	}
	return c.LLM.GeminiModel
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envOrDefaultInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envOrDefaultFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

// envOrDefaultDuration accepts Go durations ("45s") or whole seconds ("45").
func envOrDefaultDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second
	}
	return fallback
}
