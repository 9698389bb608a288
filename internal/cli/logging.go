package cli

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/ppiankov/nifrel/internal/model"
	"gopkg.in/natefinch/lumberjack.v2"
)

// setupLogger builds the process logger. Logs go to stderr, or to a rotated file
// when cfg.File is set.
func setupLogger(cfg model.LogConfig) (*slog.Logger, io.Closer) {
	var logLevel slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level:     logLevel,
		AddSource: logLevel == slog.LevelDebug,
	}

	var out io.Writer = os.Stderr
	var closer io.Closer = nopCloser{}
	if cfg.File != "" {
		rotating := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
		}
		out = rotating
		closer = rotating
	}

	var handler slog.Handler
	switch strings.ToLower(cfg.Format) {
	case "json":
		handler = slog.NewJSONHandler(out, opts)
	default:
		handler = slog.NewTextHandler(out, opts)
	}

	return slog.New(handler).With("pid", os.Getpid()), closer
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
