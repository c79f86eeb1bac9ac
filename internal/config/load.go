package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of every environment variable read by Load.
const EnvPrefix = "CURRICULA"

// ConfigFileEnv names an explicit config file. When unset, ./config.yaml is
// read if it exists.
const ConfigFileEnv = EnvPrefix + "_CONFIG_FILE"

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.request_timeout_seconds", 900)

	v.SetDefault("database.driver", DriverPostgres)
	v.SetDefault("database.url", "")

	v.SetDefault("llm.provider", ProviderGemini)
	v.SetDefault("llm.gemini_api_key", "")
	v.SetDefault("llm.anthropic_api_key", "")
	v.SetDefault("llm.model_name", "")
	v.SetDefault("llm.max_retries", 3)
	v.SetDefault("llm.retry_delay_seconds", 2)
	v.SetDefault("llm.request_timeout_seconds", 120)
	v.SetDefault("llm.default_max_tokens", 2000)
	v.SetDefault("llm.default_temperature", 0.3)
	v.SetDefault("llm.input_cost_per_1k", 0.0015)
	v.SetDefault("llm.output_cost_per_1k", 0.002)

	v.SetDefault("generation.continuation_budget", 3)
	v.SetDefault("generation.content_items_per_lesson", 8)
	v.SetDefault("generation.content_concurrency", 1)
	v.SetDefault("generation.curriculum_max_tokens", 8000)
	v.SetDefault("generation.max_run_cost", 0.0)

	v.SetDefault("validation.strict", true)
	v.SetDefault("validation.sample_size", 5)
	v.SetDefault("validation.max_tokens", 8000)
	v.SetDefault("validation.temperature", 0.3)

	v.SetDefault("cache.redis_url", "")
	v.SetDefault("cache.ttl_hours", 24)
}

// Load configuration from environment variables and optionally config files.
// Environment variables take precedence over values from config files.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path := os.Getenv(ConfigFileEnv); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.LLM.ModelName == "" {
		cfg.LLM.ModelName = defaultModels[cfg.LLM.Provider]
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks cfg against its struct rules.
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}
