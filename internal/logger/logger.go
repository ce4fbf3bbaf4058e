// Package logger builds the process slog.Logger from settings.
package logger

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/natefinch/lumberjack"
	"github.com/rbaliyan/cryptolight/internal/config"
)

// New returns a logger for s and a Close function that flushes and releases
// its writer. Console output goes to console.
func New(s *config.LoggingSettings, console io.Writer) (*slog.Logger, func() error, error) {
	if err := s.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid config: %w", err)
	}

	opts := &slog.HandlerOptions{Level: ParseLevel(s.Level)}

	switch s.Type {
	case config.LogTypeConsole:
		return slog.New(slog.NewTextHandler(console, opts)), func() error { return nil }, nil
	case config.LogTypeFile:
		writer := &lumberjack.Logger{
			Filename:   s.FilePath,
			MaxSize:    s.MaxSize,
			MaxBackups: s.MaxBackups,
			MaxAge:     s.MaxAge,
			Compress:   true,
		}
		return slog.New(slog.NewJSONHandler(writer, opts)), writer.Close, nil
	default:
		return nil, nil, fmt.Errorf("unsupported log type: %s", s.Type)
	}
}

// ParseLevel maps a configured level name to a slog.Level.
// Unknown names map to info.
func ParseLevel(level string) slog.Level {
	switch level {
	case config.LogLevelDebug:
		return slog.LevelDebug
	case config.LogLevelInfo:
		return slog.LevelInfo
	case config.LogLevelWarning:
		return slog.LevelWarn
	case config.LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
