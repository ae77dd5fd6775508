package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/seyoungseyoung/blog-KRW/internal/platform/correlation"
)

// Logger is the application-wide structured logger instance.
var Logger *slog.Logger

// InitLogger initializes the global logger with the specified level and
// format. level: "debug", "info", "warn", "error" (case-insensitive prefixes
// of the config file's INFO-style names also work). format: "json" or "text".
func InitLogger(level, format string) {
	Logger = slog.New(newHandler(os.Stdout, level, format))
	slog.SetDefault(Logger)
}

// InitLoggerWithFile additionally tees log output into the given file,
// creating parent directories as needed. Mirrors the deployed bot's
// logs/exchange_rate_bot.log sink next to console output.
func InitLoggerWithFile(level, format, file string) error {
	if file == "" {
		InitLogger(level, format)
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(file, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}

	Logger = slog.New(newHandler(io.MultiWriter(os.Stdout, f), level, format))
	slog.SetDefault(Logger)
	return nil
}

func newHandler(w io.Writer, level, format string) slog.Handler {
	var logLevel slog.Level
	switch strings.ToLower(level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn", "warning":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: logLevel}

	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return correlation.NewHandler(handler)
}
