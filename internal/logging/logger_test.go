package logging

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/0xsequence/solidity-deployer/internal/domain/config"
	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG", slog.LevelInfo))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning", slog.LevelInfo))
	assert.Equal(t, slog.LevelError, ParseLevel(" error ", slog.LevelInfo))
	assert.Equal(t, slog.LevelWarn, ParseLevel("verbose", slog.LevelWarn))
}

func TestNew_DropsTime(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, slog.LevelInfo).Info("deployed contract", "address", "0x01")

	assert.Equal(t, "level=INFO msg=\"deployed contract\" address=0x01\n", buf.String())
}

func TestNewLogger_Level(t *testing.T) {
	t.Setenv("DEPLOYER_LOG_LEVEL", "")
	log := NewLogger(&config.RuntimeConfig{Debug: true})
	assert.True(t, log.Enabled(t.Context(), slog.LevelDebug))

	t.Setenv("DEPLOYER_LOG_LEVEL", "error")
	log = NewLogger(&config.RuntimeConfig{Debug: true})
	assert.False(t, log.Enabled(t.Context(), slog.LevelWarn))
}
