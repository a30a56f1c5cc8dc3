package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Built-in defaults matching the public benchmark deployment.
const (
	DefaultServerURL     = "https://steuerllm.i5.ai.fau.de/benchmark"
	DefaultSubmissionKey = "GerTaxLaw2025"
	DefaultCatalogPath   = "benchmark-questions.json"
)

type Config struct {
	Submission struct {
		Server  string `yaml:"server"`
		Key     string `yaml:"key"`
		Timeout string `yaml:"timeout"`
	} `yaml:"submission"`
	Monitor struct {
		PollInterval  string `yaml:"poll_interval"`
		RetryInterval string `yaml:"retry_interval"`
		StatusTimeout string `yaml:"status_timeout"`
	} `yaml:"monitor"`
	OpenAI struct {
		APIKey      string  `yaml:"api_key"`
		BaseURL     string  `yaml:"base_url"`
		Model       string  `yaml:"model"`
		MaxTokens   int     `yaml:"max_tokens"`
		Temperature float32 `yaml:"temperature"`
	} `yaml:"openai"`
	Catalog struct {
		Path string `yaml:"path"`
	} `yaml:"catalog"`
}

// Load reads YAML config from path. The file is optional: an empty path or
// a missing file yields defaults, so the CLI works with flags alone.
// Secrets may come from the environment (or a .env file): OPENAI_API_KEY
// and BENCHMARK_KEY override empty config values.
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	cfg := Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// fall through to defaults
		case err != nil:
			return cfg, err
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	if cfg.Submission.Server == "" {
		cfg.Submission.Server = DefaultServerURL
	}
	if cfg.Submission.Key == "" {
		if key := os.Getenv("BENCHMARK_KEY"); key != "" {
			cfg.Submission.Key = key
		} else {
			cfg.Submission.Key = DefaultSubmissionKey
		}
	}
	if cfg.OpenAI.APIKey == "" {
		cfg.OpenAI.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.Catalog.Path == "" {
		cfg.Catalog.Path = DefaultCatalogPath
	}
	return cfg, nil
}

// SubmitTimeout returns the submit request ceiling.
func (c Config) SubmitTimeout() time.Duration {
	return DurationOr(c.Submission.Timeout, 30*time.Second)
}

// StatusTimeout returns the per-poll request ceiling.
func (c Config) StatusTimeout() time.Duration {
	return DurationOr(c.Monitor.StatusTimeout, 10*time.Second)
}

// PollInterval returns the delay between successful polls.
func (c Config) PollInterval() time.Duration {
	return DurationOr(c.Monitor.PollInterval, 2*time.Second)
}

// RetryInterval returns the widened delay after a transport failure.
func (c Config) RetryInterval() time.Duration {
	return DurationOr(c.Monitor.RetryInterval, 5*time.Second)
}

// DurationOr parses a duration string or returns the fallback if empty or invalid.
func DurationOr(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
