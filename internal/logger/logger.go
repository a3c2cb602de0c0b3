// Package logger configures the process-wide zerolog logger.
package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config holds logging configuration.
type Config struct {
	Level  string // debug, info, warn, error
	Format string // "json" (default) or "pretty"
}

// Init sets up the global logger. Safe to call once at startup.
func Init(cfg Config) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}

	var output io.Writer = os.Stdout
	if cfg.Format == "pretty" {
		output = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}

	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = zerolog.New(output).Level(level).With().Timestamp().Logger()
}

// Component returns a logger tagged with a component name, so error paths
// can be traced back to the layer that produced them.
func Component(name string) zerolog.Logger {
	return log.With().Str("component", name).Logger()
}
