package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRequiresAPIKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GEMINI_API_KEY")
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, "gemini-2.5-flash", cfg.GeminiModel)
	assert.Equal(t, 5, cfg.ChunkSize)
	assert.Equal(t, 3, cfg.ChunkRetries)
	assert.Equal(t, 5, cfg.SynthesisRetries)
	assert.Equal(t, time.Second, cfg.BackoffBase)
	assert.Equal(t, 120*time.Second, cfg.CallTimeout)
	assert.Equal(t, 1, cfg.AnalysisConcurrency)
	assert.Equal(t, float64(300), cfg.RenderDPI)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("CHUNK_SIZE", "8")
	t.Setenv("CHUNK_RETRIES", "4")
	t.Setenv("BACKOFF_BASE", "250ms")
	t.Setenv("ANALYSIS_CONCURRENCY", "3")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8, cfg.ChunkSize)
	assert.Equal(t, 4, cfg.ChunkRetries)
	assert.Equal(t, 250*time.Millisecond, cfg.BackoffBase)
	assert.Equal(t, 3, cfg.AnalysisConcurrency)
}

func TestLoadRejectsInvalidChunkSize(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("CHUNK_SIZE", "0")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CHUNK_SIZE")
}

func TestGetEnvFallbacks(t *testing.T) {
	t.Setenv("PRESENT_KEY", "value")
	assert.Equal(t, "value", GetEnv("PRESENT_KEY", "fallback"))
	assert.Equal(t, "fallback", GetEnv("DEFINITELY_ABSENT_KEY", "fallback"))

	t.Setenv("BAD_INT", "not a number")
	assert.Equal(t, 7, getEnvInt("BAD_INT", 7), "unparseable values fall back to the default")
}
