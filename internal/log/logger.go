package log

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Log file rotation defaults.
const (
	DefaultMaxSizeMB  = 10
	DefaultMaxBackups = 3
	DefaultMaxAgeDays = 28
)

// Options configures New.
type Options struct {
	// Writer receives text output. Nil discards it.
	Writer io.Writer

	// Verbose lowers the level from WARN to DEBUG.
	Verbose bool

	// JSON switches Writer output to JSON.
	JSON bool

	// File, when set, additionally receives JSON logs at DEBUG level in a
	// size-rotated file.
	File string
}

// New builds a secure logger from opts. The returned io.Closer closes the
// log file, if any, and must be called once logging is done.
func New(opts Options) (*slog.Logger, io.Closer, error) {
	w := opts.Writer
	if w == nil {
		w = io.Discard
	}
	hopts := &slog.HandlerOptions{Level: level(opts.Verbose)}

	var console slog.Handler
	if opts.JSON {
		console = slog.NewJSONHandler(w, hopts)
	} else {
		console = slog.NewTextHandler(w, hopts)
	}

	if opts.File == "" {
		return slog.New(NewSecureHandler(console)), nopCloser{}, nil
	}

	if err := os.MkdirAll(filepath.Dir(opts.File), 0o750); err != nil {
		return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	file := NewFileWriter(opts.File)
	fileHandler := slog.NewJSONHandler(file, &slog.HandlerOptions{Level: slog.LevelDebug})
	handler := NewSecureHandler(fanout{console, fileHandler})
	return slog.New(handler), file, nil
}

// NewFileWriter returns a size-rotating writer for path.
func NewFileWriter(path string) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    DefaultMaxSizeMB,
		MaxBackups: DefaultMaxBackups,
		MaxAge:     DefaultMaxAgeDays,
	}
}

// NewSecureLogger returns a text logger on w. verbose selects DEBUG
// instead of WARN.
func NewSecureLogger(w io.Writer, verbose bool) *slog.Logger {
	logger, _, _ := New(Options{Writer: w, Verbose: verbose})
	return logger
}

// NewSecureJSONLogger is NewSecureLogger with JSON output.
func NewSecureJSONLogger(w io.Writer, verbose bool) *slog.Logger {
	logger, _, _ := New(Options{Writer: w, Verbose: verbose, JSON: true})
	return logger
}

func level(verbose bool) slog.Level {
	if verbose {
		return slog.LevelDebug
	}
	return slog.LevelWarn
}

// fanout sends each record to every handler that accepts its level.
type fanout []slog.Handler

func (f fanout) Enabled(ctx context.Context, l slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, l) {
			return true
		}
	}
	return false
}

func (f fanout) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range f {
		if h.Enabled(ctx, r.Level) {
			errs = append(errs, h.Handle(ctx, r.Clone()))
		}
	}
	return errors.Join(errs...)
}

func (f fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (f fanout) WithGroup(name string) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithGroup(name)
	}
	return out
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
