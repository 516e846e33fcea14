// Package config loads server configuration from an optional YAML file plus
// environment variables. A .env file in the working directory is honored for
// development convenience; real environments set variables directly.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	yaml "gopkg.in/yaml.v2"

	"ledgerlens/internal/domain"
)

// AI provider names accepted in configuration.
const (
	ProviderGemini = "gemini"
	ProviderClaude = "claude"
	ProviderNone   = "none"
)

// Config is the assembled server configuration.
type Config struct {
	// Port is the HTTP listen port.
	Port int `yaml:"port"`

	// AI selects and tunes the hosted model integration.
	AI AIConfig `yaml:"ai"`

	// Import holds the default settings applied to uploads that do not
	// override them.
	Import domain.ImportSettings `yaml:"import"`

	// JobQueueSize bounds the background job buffer.
	JobQueueSize int `yaml:"job_queue_size"`
}

// AIConfig selects the hosted model provider. The API key always comes from
// the environment, never the file.
type AIConfig struct {
	Provider string `yaml:"provider"`
	Model    string `yaml:"model"`

	// APIKey is resolved from ANTHROPIC_API_KEY for the claude provider.
	// The gemini SDK reads its own GEMINI_API_KEY / GOOGLE_API_KEY.
	APIKey string `yaml:"-"`
}

// Default returns the configuration used when no file and no env overrides
// are present.
func Default() Config {
	return Config{
		Port:         8080,
		AI:           AIConfig{Provider: ProviderNone},
		Import:       domain.DefaultImportSettings(),
		JobQueueSize: 16,
	}
}

// Load reads the YAML file at path (if path is non-empty and the file
// exists), then applies environment overrides. A .env file is loaded first
// when present; a missing .env is not an error.
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// Fall through to env-only configuration.
		case err != nil:
			return Config{}, fmt.Errorf("reading config file %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parsing config file %s: %w", path, err)
			}
		}
	}

	applyEnv(&cfg)

	if err := validate(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Port = port
		}
	}
	if v := os.Getenv("AI_PROVIDER"); v != "" {
		cfg.AI.Provider = v
	}
	if v := os.Getenv("AI_MODEL"); v != "" {
		cfg.AI.Model = v
	}
	cfg.AI.APIKey = os.Getenv("ANTHROPIC_API_KEY")
}

func validate(cfg *Config) error {
	switch cfg.AI.Provider {
	case ProviderGemini, ProviderNone:
	case ProviderClaude:
		if cfg.AI.APIKey == "" {
			return fmt.Errorf("ai provider %q requires ANTHROPIC_API_KEY", ProviderClaude)
		}
	default:
		return fmt.Errorf("unknown ai provider %q (want %s, %s or %s)",
			cfg.AI.Provider, ProviderGemini, ProviderClaude, ProviderNone)
	}

	if cfg.Port <= 0 || cfg.Port > 65535 {
		return fmt.Errorf("invalid port %d", cfg.Port)
	}
	if cfg.JobQueueSize <= 0 {
		cfg.JobQueueSize = Default().JobQueueSize
	}

	if cfg.Import.Delimiter == "" {
		cfg.Import.Delimiter = domain.DefaultImportSettings().Delimiter
	}
	if cfg.Import.DateFormat == "" {
		cfg.Import.DateFormat = domain.DefaultImportSettings().DateFormat
	}
	if cfg.Import.DecimalSeparator == "" {
		cfg.Import.DecimalSeparator = domain.DefaultImportSettings().DecimalSeparator
	}
	if cfg.Import.Direction == "" {
		cfg.Import.Direction = domain.DefaultImportSettings().Direction
	}
	return nil
}
