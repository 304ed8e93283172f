package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/joho/godotenv"
	"go-simpler.org/env"

	"github.com/ZanzyTHEbar/sentiment-o-meter/internal/analysis"
	"github.com/ZanzyTHEbar/sentiment-o-meter/internal/errors"
	"github.com/ZanzyTHEbar/sentiment-o-meter/internal/resilience"
)

type Config struct {
	HFAPIToken string `env:"HF_API_TOKEN"`
	HFAPIURL   string `env:"HF_API_URL" default:"https://api-inference.huggingface.co"`
	HFModel    string `env:"HF_MODEL" default:"nlptown/bert-base-multilingual-uncased-sentiment"`

	ClassifierTimeout time.Duration `env:"CLASSIFIER_TIMEOUT" default:"10s"`
	ClassifierRPS     float64       `env:"CLASSIFIER_RPS" default:"10"`

	BreakerFailures int           `env:"BREAKER_FAILURE_THRESHOLD" default:"5"`
	BreakerRecovery time.Duration `env:"BREAKER_RECOVERY_TIMEOUT" default:"30s"`

	CacheSize    int    `env:"CACHE_SIZE" default:"1000"`
	ResourceDir  string `env:"RESOURCE_DIR"` // empty means the embedded defaults
	BatchWorkers int    `env:"BATCH_WORKERS" default:"4"`
	MaxComments  int    `env:"MAX_COMMENTS" default:"1000"`

	LogLevel  string `env:"LOG_LEVEL" default:"info"`
	LogFormat string `env:"LOG_FORMAT" default:"json"`
}

// Load reads .env if present, then the process environment
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file found, using environment variables")
	}

	var cfg Config
	if err := env.Load(&cfg, nil); err != nil {
		return nil, errors.NewConfigurationError("failed to load environment variables", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func validate(cfg *Config) error {
	positive := map[string]int{
		"CACHE_SIZE":                cfg.CacheSize,
		"BATCH_WORKERS":             cfg.BatchWorkers,
		"MAX_COMMENTS":              cfg.MaxComments,
		"BREAKER_FAILURE_THRESHOLD": cfg.BreakerFailures,
	}
	for name, value := range positive {
		if value <= 0 {
			return errors.NewConfigurationError(fmt.Sprintf("%s must be positive, got %d", name, value), nil)
		}
	}

	if cfg.ClassifierTimeout <= 0 {
		return errors.NewConfigurationError("CLASSIFIER_TIMEOUT must be positive", nil)
	}
	if cfg.ClassifierRPS < 0 {
		return errors.NewConfigurationError("CLASSIFIER_RPS must not be negative", nil)
	}
	if cfg.HFAPIURL == "" || cfg.HFModel == "" {
		return errors.NewConfigurationError("HF_API_URL and HF_MODEL must not be empty", nil)
	}

	switch cfg.LogFormat {
	case "json", "text":
	default:
		return errors.NewConfigurationError(fmt.Sprintf("LOG_FORMAT must be json or text, got %q", cfg.LogFormat), nil)
	}

	return nil
}

// Analyzer returns the analyzer settings
func (c *Config) Analyzer() analysis.Config {
	return analysis.Config{
		Timeout:      c.ClassifierTimeout,
		CacheSize:    c.CacheSize,
		BatchWorkers: c.BatchWorkers,
		MaxBatchSize: c.MaxComments,
	}
}

// Breaker returns the classifier circuit breaker settings
func (c *Config) Breaker() resilience.CircuitBreakerConfig {
	return resilience.CircuitBreakerConfig{
		FailureThreshold: c.BreakerFailures,
		RecoveryTimeout:  c.BreakerRecovery,
	}
}
