// Copyright ZhiyuanPlus Analytics, 2026. All rights reserved.

// Package logging provides a zerolog wrapper with opinionated defaults for
// the batch CLI. Stages receive an explicit logger, so there is no global
// state beyond what the command entrypoint builds once.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Options configures the root logger.
type Options struct {
	// Level is the minimum level name ("debug", "info", "warn", "error").
	Level string

	// Format is "console" for human-readable output or "json" for
	// structured lines. Console is the default.
	Format string

	// Writer overrides the destination. Defaults to stderr so structured
	// logs never interleave with the pipeline's data outputs on stdout.
	Writer io.Writer
}

// New builds the root logger from opts.
func New(opts Options) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339Nano

	var w io.Writer = os.Stderr
	if opts.Writer != nil {
		w = opts.Writer
	}
	if opts.Format != "json" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	return zerolog.New(w).Level(parseLevel(opts.Level)).With().Timestamp().Logger()
}

func parseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "", "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	default:
		return zerolog.InfoLevel
	}
}
