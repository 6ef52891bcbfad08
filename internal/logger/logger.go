// Package logger builds the process slog.Logger from options.
package logger

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Options selects level, output file and format.
type Options struct {
	Level  string // debug, info, warn or error; empty means info
	File   string // append to this file; empty or "-" means stderr
	Format string // text or json; empty means text
}

var (
	errLevel  = errors.New("could not parse logger level")
	errFormat = errors.New("could not parse logger format")
	errFile   = errors.New("could not open logger file")
)

type handlerFunc func(io.Writer, *slog.HandlerOptions) slog.Handler

func textHandler(w io.Writer, o *slog.HandlerOptions) slog.Handler { return slog.NewTextHandler(w, o) }
func jsonHandler(w io.Writer, o *slog.HandlerOptions) slog.Handler { return slog.NewJSONHandler(w, o) }

func level(option string) (slog.Leveler, bool) {
	switch strings.ToLower(option) {
	case "":
		return nil, true
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return nil, false
	}
}

func format(option string) (handlerFunc, bool) {
	switch strings.ToLower(option) {
	case "", "text":
		return textHandler, true
	case "json":
		return jsonHandler, true
	default:
		return nil, false
	}
}

// New returns a logger for options. Unusable options fall back to their
// defaults and each fallback is logged as a warning.
func New(options Options) *slog.Logger {
	return newLogger(options, os.Stderr)
}

func newLogger(options Options, stderr io.Writer) *slog.Logger {
	if options.File == os.DevNull {
		return slog.New(slog.DiscardHandler)
	}

	var problems []error

	lvl, ok := level(options.Level)
	if !ok {
		problems = append(problems, fmt.Errorf("%w %q", errLevel, options.Level))
	}

	handler, ok := format(options.Format)
	if !ok {
		problems = append(problems, fmt.Errorf("%w %q", errFormat, options.Format))
		handler = textHandler
	}

	output := stderr
	if options.File != "" && options.File != "-" {
		f, err := os.OpenFile(options.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
		if err != nil {
			problems = append(problems, fmt.Errorf("%w: %w", errFile, err))
		} else {
			output = f
		}
	}

	logger := slog.New(handler(output, &slog.HandlerOptions{Level: lvl}))
	for _, p := range problems {
		logger.Warn("logger option ignored", "err", p)
	}
	return logger
}
