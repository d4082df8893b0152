package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "8000", cfg.Server.Port)
	assert.Equal(t, "0.0.0.0:8000", cfg.Server.Addr())
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, 100, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, "sha256", cfg.Session.HashAlgorithm)
	assert.Equal(t, 3, cfg.Fetch.MaxRetries)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("SESSION_HASH", "blake2b")
	t.Setenv("SESSION_FETCH_TIMEOUT", "5s")
	t.Setenv("ALLOWED_ORIGINS", "http://a.example, http://b.example")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "blake2b", cfg.Session.HashAlgorithm)
	assert.Equal(t, 5*time.Second, cfg.Fetch.Timeout)
	assert.Equal(t, []string{"http://a.example", "http://b.example"}, cfg.Server.Origins())
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name, key, value string
	}{
		{"bad level", "LOG_LEVEL", "loud"},
		{"bad port", "PORT", "http"},
		{"bad compression", "SESSION_COMPRESSION", "12"},
		{"bad hash", "SESSION_HASH", "md5"},
		{"unparsable duration", "SESSION_FETCH_TIMEOUT", "soon"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoadOrDefaultFallsBack(t *testing.T) {
	t.Setenv("LOG_LEVEL", "loud")
	cfg := LoadOrDefault()
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestValidateWaitOrder(t *testing.T) {
	cfg := Default()
	cfg.Fetch.RetryWaitMin = time.Minute
	cfg.Fetch.RetryWaitMax = time.Second
	assert.Error(t, cfg.Validate())
}
