// Package output provides the logger and terminal rendering used by gstack commands.
package output

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

// LogConfig controls where Splog writes and how the log file rotates
type LogConfig struct {
	// File is the rotating log file; empty disables file logging
	File       string
	MaxSize    int
	MaxBackups int
	MaxAge     int
	Debug      bool
}

// simpleHandler writes messages without timestamps or level prefixes
type simpleHandler struct {
	writer    io.Writer
	debugMode bool
}

func (h *simpleHandler) Enabled(_ context.Context, level slog.Level) bool {
	if level == slog.LevelDebug {
		return h.debugMode
	}
	return true
}

func (h *simpleHandler) Handle(_ context.Context, record slog.Record) error {
	_, err := fmt.Fprintln(h.writer, record.Message)
	return err
}

func (h *simpleHandler) WithAttrs(_ []slog.Attr) slog.Handler {
	return h
}

func (h *simpleHandler) WithGroup(_ string) slog.Handler {
	return h
}

// multiHandler fans out log records to multiple handlers
type multiHandler struct {
	handlers []slog.Handler
}

func (h *multiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, handler := range h.handlers {
		if handler.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (h *multiHandler) Handle(ctx context.Context, record slog.Record) error {
	for _, handler := range h.handlers {
		if handler.Enabled(ctx, record.Level) {
			if err := handler.Handle(ctx, record); err != nil {
				return err
			}
		}
	}
	return nil
}

func (h *multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newHandlers := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		newHandlers[i] = handler.WithAttrs(attrs)
	}
	return &multiHandler{handlers: newHandlers}
}

func (h *multiHandler) WithGroup(name string) slog.Handler {
	newHandlers := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		newHandlers[i] = handler.WithGroup(name)
	}
	return &multiHandler{handlers: newHandlers}
}

// Splog provides structured logging and output
type Splog struct {
	logger    *slog.Logger
	writer    io.Writer
	logWriter io.WriteCloser
}

// NewSplog creates a console-only splog writing to stdout.
// Debug messages are enabled when the DEBUG environment variable is set.
func NewSplog() *Splog {
	splog, _ := NewSplogWithConfig(os.Stdout, LogConfig{Debug: os.Getenv("DEBUG") != ""})
	return splog
}

// NewTestSplog returns a splog writing to w with debug output enabled
func NewTestSplog(w io.Writer) *Splog {
	splog, _ := NewSplogWithConfig(w, LogConfig{Debug: true})
	return splog
}

// NewSplogWithConfig creates a splog writing to w and, when cfg.File is set,
// to a rotating log file that always records debug output with timestamps.
func NewSplogWithConfig(w io.Writer, cfg LogConfig) (*Splog, error) {
	splog := &Splog{writer: w}
	handlers := []slog.Handler{&simpleHandler{writer: w, debugMode: cfg.Debug}}

	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0750); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}

		rotating := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
		}
		splog.logWriter = rotating

		handlers = append(handlers, slog.NewTextHandler(rotating, &slog.HandlerOptions{
			Level: slog.LevelDebug,
			ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
				if a.Key == slog.TimeKey {
					return slog.Attr{Key: a.Key, Value: slog.StringValue(a.Value.Time().Format("2006-01-02 15:04:05.000"))}
				}
				return a
			},
		}))
	}

	splog.logger = slog.New(&multiHandler{handlers: handlers})
	return splog, nil
}

func (s *Splog) log(level slog.Level, prefix, format string, args []any) {
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	s.logger.Log(context.Background(), level, prefix+msg)
}

// Info writes an info message
func (s *Splog) Info(format string, args ...any) {
	s.log(slog.LevelInfo, "", format, args)
}

// Warn writes a warning message
func (s *Splog) Warn(format string, args ...any) {
	s.log(slog.LevelWarn, "⚠️  ", format, args)
}

// Error writes an error message
func (s *Splog) Error(format string, args ...any) {
	s.log(slog.LevelError, "Error: ", format, args)
}

// Debug writes a debug message
func (s *Splog) Debug(format string, args ...any) {
	s.log(slog.LevelDebug, "", format, args)
}

// Tip writes a tip message
func (s *Splog) Tip(format string, args ...any) {
	s.log(slog.LevelInfo, "💡 ", format, args)
}

// Page writes output verbatim
func (s *Splog) Page(content string) {
	_, _ = fmt.Fprint(s.writer, content)
}

// Newline writes a newline
func (s *Splog) Newline() {
	_, _ = fmt.Fprintln(s.writer)
}

// Close closes the log file if one was opened
func (s *Splog) Close() error {
	if s.logWriter != nil {
		return s.logWriter.Close()
	}
	return nil
}
