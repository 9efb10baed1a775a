package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"golang.org/x/text/language"
)

// Config holds all application configuration.
// Supports environment variables with sensible defaults.
//
// Environment Variables:
// LLM Configuration:
// - LLM_API_KEY: API key for the LLM provider (required for analyze/translate/watch)
// - LLM_API_URL: API endpoint URL (default: https://openrouter.ai/api/v1)
// - LLM_MODEL: Model name to use (default: openai/gpt-3.5-turbo)
// - LLM_MAX_TOKENS: Maximum tokens for responses (default: 8000)
// - LLM_TEMPERATURE: Temperature for responses (default: 0.3)
// - LLM_TIMEOUT: Request timeout in seconds (default: 300)
// - LLM_SITE_URL: Site URL for HTTP referer header (optional)
// - LLM_APP_NAME: Application name for X-Title header (optional)
//
// Chunking Configuration:
// - CHUNK_SIZE: Maximum cues per translation chunk (default: 15)
// - CHUNK_CONTEXT_CUES: Read-only context cues around each chunk (default: 2)
// - SILENCE_SPLIT: Prefer chunk boundaries at silence gaps (default: false)
// - SILENCE_GAP_MS: Minimum silence gap in milliseconds (default: 2000)
//
// Translation Configuration:
// - TARGET_LANGUAGE: BCP 47 tag of the target language (default: ro)
//
// Watch Configuration:
// - MOVIES_DIR: Root directory scanned by the watch command (default: /movies)
// - WATCH_CRON: Cron expression for watch runs (default: "0 * * * *")
type Config struct {
	LLM       LLMConfig       `json:"llm"`
	Chunk     ChunkConfig     `json:"chunk"`
	Translate TranslateConfig `json:"translate"`
	Watch     WatchConfig     `json:"watch"`
}

// LLMConfig holds the configuration for the LLM client.
// Supports any OpenAI-compatible provider (OpenRouter, OpenAI, etc.)
type LLMConfig struct {
	APIKey      string  `json:"api_key"`
	APIURL      string  `json:"api_url"`
	Model       string  `json:"model"`
	MaxTokens   int     `json:"max_tokens"`
	Temperature float64 `json:"temperature"`
	Timeout     int     `json:"timeout"`
	SiteURL     string  `json:"site_url"`
	AppName     string  `json:"app_name"`
}

// ChunkConfig holds the chunk boundary policy
type ChunkConfig struct {
	MaxChunkSize int           `json:"max_chunk_size"`
	ContextCues  int           `json:"context_cues"`
	SilenceSplit bool          `json:"silence_split"`
	SilenceGap   time.Duration `json:"silence_gap"`
}

// TranslateConfig holds the translation target
type TranslateConfig struct {
	TargetLanguage language.Tag `json:"target_language"`
}

// WatchConfig holds the scheduled scan configuration
type WatchConfig struct {
	MoviesDir string `json:"movies_dir"`
	CronExpr  string `json:"cron_expr"`
}

// NewFromEnv creates a new Config instance from environment variables
func NewFromEnv() (*Config, error) {
	targetLang, err := language.Parse(getEnvString("TARGET_LANGUAGE", "ro"))
	if err != nil {
		return nil, fmt.Errorf("invalid TARGET_LANGUAGE: %w", err)
	}

	config := &Config{
		LLM: LLMConfig{
			APIKey:      getEnvString("LLM_API_KEY", ""),
			APIURL:      getEnvString("LLM_API_URL", "https://openrouter.ai/api/v1"),
			Model:       getEnvString("LLM_MODEL", "openai/gpt-3.5-turbo"),
			MaxTokens:   getEnvInt("LLM_MAX_TOKENS", 8000),
			Temperature: getEnvFloat("LLM_TEMPERATURE", 0.3),
			Timeout:     getEnvInt("LLM_TIMEOUT", 300),
			SiteURL:     getEnvString("LLM_SITE_URL", ""),
			AppName:     getEnvString("LLM_APP_NAME", ""),
		},
		Chunk: ChunkConfig{
			MaxChunkSize: getEnvInt("CHUNK_SIZE", 15),
			ContextCues:  getEnvInt("CHUNK_CONTEXT_CUES", 2),
			SilenceSplit: getEnvBool("SILENCE_SPLIT", false),
			SilenceGap:   time.Duration(getEnvInt("SILENCE_GAP_MS", 2000)) * time.Millisecond,
		},
		Translate: TranslateConfig{
			TargetLanguage: targetLang,
		},
		Watch: WatchConfig{
			MoviesDir: getEnvString("MOVIES_DIR", "/movies"),
			CronExpr:  getEnvString("WATCH_CRON", "0 * * * *"),
		},
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// validate checks settings that would otherwise fail deep inside a stage
func (c *Config) validate() error {
	if c.Chunk.MaxChunkSize < 1 {
		return fmt.Errorf("CHUNK_SIZE must be greater than 0, got %d", c.Chunk.MaxChunkSize)
	}
	if c.Chunk.ContextCues < 0 {
		return fmt.Errorf("CHUNK_CONTEXT_CUES must not be negative, got %d", c.Chunk.ContextCues)
	}
	if c.Chunk.SilenceSplit && c.Chunk.SilenceGap <= 0 {
		return fmt.Errorf("SILENCE_GAP_MS must be greater than 0 when SILENCE_SPLIT is enabled")
	}
	return nil
}

// getEnvString gets a string value from environment variables with default
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an integer value from environment variables with default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvFloat gets a float value from environment variables with default
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// getEnvBool gets a boolean value from environment variables with default
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
