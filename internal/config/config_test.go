package config

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 12, cfg.MaxSlices)
	assert.Equal(t, 150.0, cfg.HexRadius)
	assert.Equal(t, slog.LevelInfo, cfg.Level())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("MAX_SLICES", "4")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("ALLOWED_ORIGINS", " a.test , ,b.test")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, 4, cfg.MaxSlices)
	assert.Equal(t, slog.LevelDebug, cfg.Level())
	assert.Equal(t, []string{"a.test", "b.test"}, cfg.Origins())
}

func TestLoadRejectsBadNumber(t *testing.T) {
	t.Setenv("MAX_SLICES", "many")
	_, err := Load()
	assert.Error(t, err)
}

func TestLevelFallback(t *testing.T) {
	cfg := &Config{LogLevel: "loud"}
	assert.Equal(t, slog.LevelInfo, cfg.Level())
}
