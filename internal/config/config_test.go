package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZanzyTHEbar/sentiment-o-meter/internal/errors"
)

func TestLoad_DefaultValues(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://api-inference.huggingface.co", cfg.HFAPIURL)
	assert.Equal(t, "nlptown/bert-base-multilingual-uncased-sentiment", cfg.HFModel)
	assert.Equal(t, 10*time.Second, cfg.ClassifierTimeout)
	assert.Equal(t, 10.0, cfg.ClassifierRPS)
	assert.Equal(t, 1000, cfg.CacheSize)
	assert.Equal(t, 4, cfg.BatchWorkers)
	assert.Equal(t, 1000, cfg.MaxComments)
	assert.Equal(t, 5, cfg.BreakerFailures)
	assert.Equal(t, 30*time.Second, cfg.BreakerRecovery)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Empty(t, cfg.ResourceDir)
}

func TestLoad_CustomValues(t *testing.T) {
	t.Setenv("HF_API_TOKEN", "hf_secret")
	t.Setenv("HF_MODEL", "someone/other-model")
	t.Setenv("CLASSIFIER_TIMEOUT", "2500ms")
	t.Setenv("CLASSIFIER_RPS", "0.5")
	t.Setenv("CACHE_SIZE", "50")
	t.Setenv("RESOURCE_DIR", "/etc/sentiment")
	t.Setenv("LOG_FORMAT", "text")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "hf_secret", cfg.HFAPIToken)
	assert.Equal(t, "someone/other-model", cfg.HFModel)
	assert.Equal(t, 2500*time.Millisecond, cfg.ClassifierTimeout)
	assert.Equal(t, 0.5, cfg.ClassifierRPS)
	assert.Equal(t, 50, cfg.CacheSize)
	assert.Equal(t, "/etc/sentiment", cfg.ResourceDir)
	assert.Equal(t, "text", cfg.LogFormat)

	ac := cfg.Analyzer()
	assert.Equal(t, 50, ac.CacheSize)
	assert.Equal(t, 2500*time.Millisecond, ac.Timeout)
	assert.Equal(t, 1000, ac.MaxBatchSize)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		wantErr string
	}{
		{"zero cache", "CACHE_SIZE", "0", "CACHE_SIZE must be positive"},
		{"negative workers", "BATCH_WORKERS", "-1", "BATCH_WORKERS must be positive"},
		{"zero max comments", "MAX_COMMENTS", "0", "MAX_COMMENTS must be positive"},
		{"zero timeout", "CLASSIFIER_TIMEOUT", "0s", "CLASSIFIER_TIMEOUT must be positive"},
		{"negative rps", "CLASSIFIER_RPS", "-3", "CLASSIFIER_RPS must not be negative"},
		{"unknown log format", "LOG_FORMAT", "xml", "LOG_FORMAT must be json or text"},
		{"not a number", "CACHE_SIZE", "lots", "failed to load environment variables"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.True(t, errors.IsCategory(err, errors.CategoryConfiguration))
		})
	}
}

func TestConfig_Breaker(t *testing.T) {
	cfg := &Config{BreakerFailures: 3, BreakerRecovery: time.Minute}
	b := cfg.Breaker()
	assert.Equal(t, 3, b.FailureThreshold)
	assert.Equal(t, time.Minute, b.RecoveryTimeout)
}
