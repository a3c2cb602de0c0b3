// Package config provides configuration loading and validation for the advisory service.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Defaults for process-level settings.
const (
	DefaultPoolMaxConnections = 5
	DefaultPoolAcquireTimeout = 30 * time.Second
	DefaultPoolConnectionTTL  = 5 * time.Minute
	DefaultMaxRetriesPerModel = 2
	DefaultSearchLimit        = 6
	DefaultHistoryMaxRecent   = 20
	DefaultPort               = 8080
)

// DefaultModels is the ordered fallback ladder of model identifiers.
// The first entry is the preferred model.
var DefaultModels = []string{"gemini-2.5-flash", "gemini-2.5-flash-lite", "gemini-2.0-flash"}

// PoolConfig bounds connections to the managed search provider.
type PoolConfig struct {
	MaxConnections int
	AcquireTimeout time.Duration
	ConnectionTTL  time.Duration
}

// LLMConfig configures the generative model fallback ladder.
type LLMConfig struct {
	APIKey             string
	Models             []string
	MaxRetriesPerModel int
}

// SearchConfig configures the managed course search service.
type SearchConfig struct {
	Endpoint     string
	APIKey       string
	DefaultLimit int
}

// Config is the full process configuration, read from the environment.
type Config struct {
	Port             int
	DatabaseURL      string
	Pool             PoolConfig
	LLM              LLMConfig
	Search           SearchConfig
	HistoryMaxRecent int
	LogLevel         string
	LogFormat        string
}

// Load reads configuration from environment variables, applying defaults
// for everything optional. DATABASE_URL and GEMINI_API_KEY are required.
func Load() (*Config, error) {
	cfg := &Config{
		Port:        envInt("PORT", DefaultPort),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		Pool: PoolConfig{
			MaxConnections: envInt("POOL_MAX_CONNECTIONS", DefaultPoolMaxConnections),
			AcquireTimeout: envSeconds("POOL_ACQUIRE_TIMEOUT_S", DefaultPoolAcquireTimeout),
			ConnectionTTL:  envSeconds("POOL_CONNECTION_TTL_S", DefaultPoolConnectionTTL),
		},
		LLM: LLMConfig{
			APIKey:             os.Getenv("GEMINI_API_KEY"),
			Models:             envList("LLM_MODELS", DefaultModels),
			MaxRetriesPerModel: envInt("LLM_MAX_RETRIES_PER_MODEL", DefaultMaxRetriesPerModel),
		},
		Search: SearchConfig{
			Endpoint:     os.Getenv("SEARCH_ENDPOINT"),
			APIKey:       os.Getenv("SEARCH_API_KEY"),
			DefaultLimit: envInt("SEARCH_DEFAULT_LIMIT", DefaultSearchLimit),
		},
		HistoryMaxRecent: envInt("HISTORY_MAX_RECENT", DefaultHistoryMaxRecent),
		LogLevel:         os.Getenv("LOG_LEVEL"),
		LogFormat:        os.Getenv("LOG_FORMAT"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the configuration has usable values.
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("config error: DATABASE_URL is required")
	}
	if c.LLM.APIKey == "" {
		return fmt.Errorf("config error: GEMINI_API_KEY is required")
	}
	if len(c.LLM.Models) == 0 {
		return fmt.Errorf("config error: LLM_MODELS must name at least one model")
	}
	if c.LLM.MaxRetriesPerModel < 1 {
		return fmt.Errorf("config error: LLM_MAX_RETRIES_PER_MODEL must be at least 1")
	}
	if c.Pool.MaxConnections < 1 {
		return fmt.Errorf("config error: POOL_MAX_CONNECTIONS must be at least 1")
	}
	if c.Search.DefaultLimit < 1 {
		return fmt.Errorf("config error: SEARCH_DEFAULT_LIMIT must be at least 1")
	}
	if c.HistoryMaxRecent < 1 || c.HistoryMaxRecent > 20 {
		return fmt.Errorf("config error: HISTORY_MAX_RECENT must be in [1,20]")
	}
	return nil
}

// envInt reads an integer environment variable, returning def when unset
// or unparseable.
func envInt(key string, def int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}

// envSeconds reads an integer number of seconds as a duration.
func envSeconds(key string, def time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return def
	}
	return time.Duration(n) * time.Second
}

// envList reads a comma-separated list, returning def when unset.
func envList(key string, def []string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
