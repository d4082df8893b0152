package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New(Config{Level: "loud"})
	assert.Error(t, err)
}

func TestNewLevels(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error"} {
		t.Run(level, func(t *testing.T) {
			logger, err := New(Config{Level: level, Output: "stderr"})
			require.NoError(t, err)
			assert.NotNil(t, logger.Component("test"))
		})
	}
}

func TestProductionFormat(t *testing.T) {
	out := filepath.Join(t.TempDir(), "server.log")
	logger, err := New(Config{Level: "info", Output: out})
	require.NoError(t, err)

	logger.Component("session").Info("Session saved")
	logger.Component("session").Debug("filtered")
	logger.Close()

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"component":"session"`)
	assert.Contains(t, string(data), `"message":"Session saved"`)
	assert.Contains(t, string(data), `"timestamp":`)
	assert.NotContains(t, string(data), "filtered")
}

func TestDevelopmentOutput(t *testing.T) {
	out := filepath.Join(t.TempDir(), "dev.log")
	logger, err := New(Config{Level: "debug", Development: true, Output: out})
	require.NoError(t, err)

	logger.Component("archive").Debug("Reading networks")
	logger.Close()

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Reading networks")
	assert.Contains(t, string(data), "archive")
}

func TestNop(t *testing.T) {
	logger := NewNop()
	assert.NotNil(t, logger.Component("x"))
	logger.Close()
}
