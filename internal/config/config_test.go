package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func TestNewFromEnv_Defaults(t *testing.T) {
	cfg, err := NewFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "https://openrouter.ai/api/v1", cfg.LLM.APIURL)
	assert.Equal(t, 8000, cfg.LLM.MaxTokens)
	assert.Equal(t, 0.3, cfg.LLM.Temperature)
	assert.Equal(t, 300, cfg.LLM.Timeout)

	assert.Equal(t, 15, cfg.Chunk.MaxChunkSize)
	assert.Equal(t, 2, cfg.Chunk.ContextCues)
	assert.False(t, cfg.Chunk.SilenceSplit)
	assert.Equal(t, 2*time.Second, cfg.Chunk.SilenceGap)

	assert.Equal(t, language.Romanian, cfg.Translate.TargetLanguage)
	assert.Equal(t, "/movies", cfg.Watch.MoviesDir)
	assert.Equal(t, "0 * * * *", cfg.Watch.CronExpr)
}

func TestNewFromEnv_Overrides(t *testing.T) {
	t.Setenv("LLM_API_KEY", "secret")
	t.Setenv("LLM_MODEL", "anthropic/claude-sonnet-4")
	t.Setenv("CHUNK_SIZE", "25")
	t.Setenv("CHUNK_CONTEXT_CUES", "3")
	t.Setenv("SILENCE_SPLIT", "true")
	t.Setenv("SILENCE_GAP_MS", "1500")
	t.Setenv("TARGET_LANGUAGE", "de")
	t.Setenv("MOVIES_DIR", "/data/movies")

	cfg, err := NewFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "secret", cfg.LLM.APIKey)
	assert.Equal(t, "anthropic/claude-sonnet-4", cfg.LLM.Model)
	assert.Equal(t, 25, cfg.Chunk.MaxChunkSize)
	assert.Equal(t, 3, cfg.Chunk.ContextCues)
	assert.True(t, cfg.Chunk.SilenceSplit)
	assert.Equal(t, 1500*time.Millisecond, cfg.Chunk.SilenceGap)
	assert.Equal(t, language.German, cfg.Translate.TargetLanguage)
	assert.Equal(t, "/data/movies", cfg.Watch.MoviesDir)
}

func TestNewFromEnv_InvalidTargetLanguage(t *testing.T) {
	t.Setenv("TARGET_LANGUAGE", "not a language tag")

	_, err := NewFromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid TARGET_LANGUAGE")
}

func TestNewFromEnv_InvalidChunkSettings(t *testing.T) {
	t.Setenv("CHUNK_SIZE", "0")

	_, err := NewFromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CHUNK_SIZE")
}

func TestNewFromEnv_MalformedNumbersFallBack(t *testing.T) {
	t.Setenv("CHUNK_SIZE", "lots")
	t.Setenv("LLM_TEMPERATURE", "warm")

	cfg, err := NewFromEnv()
	require.NoError(t, err)
	assert.Equal(t, 15, cfg.Chunk.MaxChunkSize)
	assert.Equal(t, 0.3, cfg.LLM.Temperature)
}
