package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server     ServerConfig     `mapstructure:"server" validate:"required"`
	Database   DatabaseConfig   `mapstructure:"database" validate:"required"`
	LLM        LLMConfig        `mapstructure:"llm" validate:"required"`
	Generation GenerationConfig `mapstructure:"generation" validate:"required"`
	Validation ValidationConfig `mapstructure:"validation" validate:"required"`
	Cache      CacheConfig      `mapstructure:"cache"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	// Course generation makes dozens of sequential model calls, so this is
	// far longer than a typical API timeout.
	RequestTimeoutSeconds int `mapstructure:"request_timeout_seconds" validate:"gt=0"`
}

// RequestTimeout returns the per-request HTTP timeout.
func (c ServerConfig) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// Database drivers
const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	Driver string `mapstructure:"driver" validate:"required,oneof=postgres memory"`
	URL    string `mapstructure:"url" validate:"required_if=Driver postgres"`
}

// LLM providers
const (
	ProviderGemini    = "gemini"
	ProviderAnthropic = "anthropic"
)

// Default model per provider, used when llm.model_name is not set.
var defaultModels = map[string]string{
	ProviderGemini:    "gemini-2.0-flash",
	ProviderAnthropic: "claude-sonnet-4-20250514",
}

// LLMConfig contains all LLM integration related settings.
type LLMConfig struct {
	Provider        string `mapstructure:"provider" validate:"required,oneof=gemini anthropic"`
	GeminiAPIKey    string `mapstructure:"gemini_api_key" validate:"required_if=Provider gemini"`
	AnthropicAPIKey string `mapstructure:"anthropic_api_key" validate:"required_if=Provider anthropic"`
	ModelName       string `mapstructure:"model_name" validate:"required"`

	// Transport-level retry of transient provider errors
	MaxRetries        int `mapstructure:"max_retries" validate:"gte=0,lte=10"`
	RetryDelaySeconds int `mapstructure:"retry_delay_seconds" validate:"gte=1,lte=60"`

	RequestTimeoutSeconds int     `mapstructure:"request_timeout_seconds" validate:"gt=0"`
	DefaultMaxTokens      int     `mapstructure:"default_max_tokens" validate:"gt=0"`
	DefaultTemperature    float64 `mapstructure:"default_temperature" validate:"gte=0,lte=2"`

	InputCostPer1K  float64 `mapstructure:"input_cost_per_1k" validate:"gte=0"`
	OutputCostPer1K float64 `mapstructure:"output_cost_per_1k" validate:"gte=0"`
}

// RequestTimeout returns the bound on a single generative call.
func (c LLMConfig) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// APIKey returns the key of the configured provider.
func (c LLMConfig) APIKey() string {
	if c.Provider == ProviderAnthropic {
		return c.AnthropicAPIKey
	}
	return c.GeminiAPIKey
}

// GenerationConfig tunes the course generation pipeline.
type GenerationConfig struct {
	ContinuationBudget    int     `mapstructure:"continuation_budget" validate:"gte=0,lte=10"`
	ContentItemsPerLesson int     `mapstructure:"content_items_per_lesson" validate:"gt=0,lte=50"`
	ContentConcurrency    int     `mapstructure:"content_concurrency" validate:"gt=0,lte=32"`
	CurriculumMaxTokens   int     `mapstructure:"curriculum_max_tokens" validate:"gt=0"`
	MaxRunCost            float64 `mapstructure:"max_run_cost" validate:"gte=0"`
}

// ValidationConfig tunes the validation engine.
type ValidationConfig struct {
	Strict      bool    `mapstructure:"strict"`
	SampleSize  int     `mapstructure:"sample_size" validate:"gt=0,lte=50"`
	MaxTokens   int     `mapstructure:"max_tokens" validate:"gt=0"`
	Temperature float64 `mapstructure:"temperature" validate:"gte=0,lte=2"`
}

// CacheConfig configures the optional Redis response cache.
type CacheConfig struct {
	RedisURL string `mapstructure:"redis_url"`
	TTLHours int    `mapstructure:"ttl_hours" validate:"gte=0"`
}

// Enabled reports whether a cache is configured.
func (c CacheConfig) Enabled() bool {
	return c.RedisURL != ""
}

// TTL returns how long cached responses live.
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLHours) * time.Hour
}
