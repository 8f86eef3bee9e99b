// SPDX-License-Identifier: MPL-2.0

// Package logging installs the CLI's log/slog handler.
//
// Library packages log through log/slog only. The CLI calls Setup once at
// startup, which routes slog records to a charmbracelet/log logger so they
// share the terminal styling of the rest of the output.
package logging

import (
	"errors"
	"io"
	"log/slog"
	"os"

	"github.com/charmbracelet/log"

	"github.com/runcfg/runcfg/internal/config"
)

// Options selects the log level and record format.
type Options struct {
	// Level is the minimum level. Empty means info.
	Level config.LogLevel
	// Format is the record encoding. Empty means text.
	Format config.LogFormat
	// Verbose forces the debug level regardless of Level.
	Verbose bool
	// Writer receives records. Defaults to os.Stderr.
	Writer io.Writer
}

// New builds a slog logger backed by charmbracelet/log.
func New(opts Options) (*slog.Logger, error) {
	level, err := resolveLevel(opts)
	if err != nil {
		return nil, err
	}
	formatter, err := resolveFormatter(opts.Format)
	if err != nil {
		return nil, err
	}

	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}
	handler := log.NewWithOptions(w, log.Options{
		Level:     level,
		Formatter: formatter,
		Prefix:    config.AppName,
	})
	return slog.New(handler), nil
}

// Setup builds a logger with New and installs it as the slog default.
func Setup(opts Options) (*slog.Logger, error) {
	logger, err := New(opts)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger)
	return logger, nil
}

func resolveLevel(opts Options) (log.Level, error) {
	if opts.Verbose {
		return log.DebugLevel, nil
	}
	switch opts.Level {
	case "", config.LogLevelInfo:
		return log.InfoLevel, nil
	case config.LogLevelDebug:
		return log.DebugLevel, nil
	case config.LogLevelWarn:
		return log.WarnLevel, nil
	case config.LogLevelError:
		return log.ErrorLevel, nil
	}
	_, errs := opts.Level.IsValid()
	return 0, errors.Join(errs...)
}

func resolveFormatter(format config.LogFormat) (log.Formatter, error) {
	switch format {
	case "", config.LogFormatText:
		return log.TextFormatter, nil
	case config.LogFormatJSON:
		return log.JSONFormatter, nil
	case config.LogFormatLogfmt:
		return log.LogfmtFormatter, nil
	}
	_, errs := format.IsValid()
	return 0, errors.Join(errs...)
}
