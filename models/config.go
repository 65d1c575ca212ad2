package models

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Defaults for ingestion tuning. Concurrency stays conservative because
// the index store is single-writer; the gate only bounds LLM calls.
const (
	DefaultBatchSize      = 10
	DefaultConcurrency    = 1
	MaxConcurrency        = 250
	DefaultTimeoutSeconds = 90
	DefaultModel          = "gemini-2.5-flash"
)

// Config holds runtime configuration for an ingestion run. Values come
// from the environment (optionally a .env file) and may be overridden
// by CLI flags.
type Config struct {
	CorpusDBPath string
	IndexDBPath  string
	APIKey       string
	Model        string

	BatchSize      int
	Concurrency    int
	TimeoutSeconds int

	BackupDir  string
	InvalidDir string
}

// LoadConfig reads configuration from the environment. A .env file in
// the working directory is honored when present. Returns an error for
// anything required by ingestion that is missing or out of range;
// callers that do not talk to the LLM (restore, postprocess) should
// use LoadStoreConfig instead.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load() // best effort, env vars win

	cfg := &Config{
		CorpusDBPath:   os.Getenv("CORPUS_DB_PATH"),
		IndexDBPath:    envOr("INDEX_DB_PATH", "heblex-index.db"),
		APIKey:         os.Getenv("GEMINI_API_KEY"),
		Model:          envOr("HEBLEX_MODEL", DefaultModel),
		BatchSize:      DefaultBatchSize,
		Concurrency:    DefaultConcurrency,
		TimeoutSeconds: DefaultTimeoutSeconds,
		BackupDir:      envOr("HEBLEX_BACKUP_DIR", "backups"),
		InvalidDir:     envOr("HEBLEX_INVALID_DIR", "invalid-responses"),
	}

	if raw := os.Getenv("HEBLEX_CONCURRENCY"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid HEBLEX_CONCURRENCY %q: %w", raw, err)
		}
		cfg.Concurrency = n
	}

	if cfg.CorpusDBPath == "" {
		return nil, fmt.Errorf("CORPUS_DB_PATH is required")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}
	if cfg.Concurrency < 1 || cfg.Concurrency > MaxConcurrency {
		return nil, fmt.Errorf("concurrency must be in [1, %d], got %d", MaxConcurrency, cfg.Concurrency)
	}

	return cfg, nil
}

// LoadStoreConfig reads only the store-side configuration; nothing is
// required, missing values fall back to defaults.
func LoadStoreConfig() *Config {
	_ = godotenv.Load()

	return &Config{
		IndexDBPath: envOr("INDEX_DB_PATH", "heblex-index.db"),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
