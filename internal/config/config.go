package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config is the process-wide, immutable configuration. It is loaded once in
// main and injected into the server, orchestrator and analysis client at
// construction time; nothing reads the environment after Load returns.
type Config struct {
	ListenAddr string
	StaticDir  string

	GeminiAPIKey   string
	GeminiModel    string
	GeminiEndpoint string

	// ChunkSize is the batch window W: how many page images are submitted
	// together in one analysis call.
	ChunkSize int

	// Retry budgets per call class. Chunk calls are cheap to lose (the run
	// degrades instead of aborting), synthesis gets a larger budget.
	ChunkRetries     int
	SynthesisRetries int

	BackoffBase time.Duration
	CallTimeout time.Duration

	// AnalysisConcurrency bounds how many chunk calls may be in flight at
	// once. 1 preserves the original strictly sequential behaviour.
	AnalysisConcurrency int

	RenderDPI      float64
	MaxUploadBytes int64
}

const defaultGeminiEndpoint = "https://generativelanguage.googleapis.com/v1beta/models"

// Load reads configuration from the environment, honouring a local .env file
// when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	apiKey := GetEnv("GEMINI_API_KEY", "")
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable must be set")
	}

	cfg := &Config{
		ListenAddr:          GetEnv("LISTEN_ADDR", ":8080"),
		StaticDir:           GetEnv("STATIC_DIR", "static"),
		GeminiAPIKey:        apiKey,
		GeminiModel:         GetEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		GeminiEndpoint:      GetEnv("GEMINI_API_ENDPOINT", defaultGeminiEndpoint),
		ChunkSize:           getEnvInt("CHUNK_SIZE", 5),
		ChunkRetries:        getEnvInt("CHUNK_RETRIES", 3),
		SynthesisRetries:    getEnvInt("SYNTHESIS_RETRIES", 5),
		BackoffBase:         getEnvDuration("BACKOFF_BASE", time.Second),
		CallTimeout:         getEnvDuration("CALL_TIMEOUT", 120*time.Second),
		AnalysisConcurrency: getEnvInt("ANALYSIS_CONCURRENCY", 1),
		RenderDPI:           getEnvFloat("RENDER_DPI", 300),
		MaxUploadBytes:      int64(getEnvInt("MAX_UPLOAD_BYTES", 64<<20)),
	}

	if cfg.ChunkSize < 1 {
		return nil, fmt.Errorf("CHUNK_SIZE must be at least 1, got %d", cfg.ChunkSize)
	}
	if cfg.AnalysisConcurrency < 1 {
		return nil, fmt.Errorf("ANALYSIS_CONCURRENCY must be at least 1, got %d", cfg.AnalysisConcurrency)
	}
	return cfg, nil
}

// GetEnv is a helper to read an environment variable or return a default value.
func GetEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
