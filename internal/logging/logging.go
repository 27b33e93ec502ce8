// Package logging wires the standard logger and slog to stdout and an
// optional rotating log file.
package logging

import (
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"

	"cinetrack/config"
)

// Setup redirects the standard logger and the default slog logger to stdout
// and, when cfg.File is set, a lumberjack-rotated file. The returned closer
// releases the file; it is a no-op without one.
func Setup(cfg config.LogConfig) (io.Closer, error) {
	var (
		writer io.Writer = os.Stdout
		closer io.Closer = nopCloser{}
	)

	if file := strings.TrimSpace(cfg.File); file != "" {
		if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
			return nil, fmt.Errorf("create log directory: %w", err)
		}
		fileWriter := &lumberjack.Logger{
			Filename:   file,
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
			Compress:   cfg.Compress,
		}
		writer = io.MultiWriter(os.Stdout, fileWriter)
		closer = fileWriter
	}

	Install(writer, ParseLevel(cfg.Level))
	if cfg.File != "" {
		log.Printf("Logging to file: %s", cfg.File)
	}
	return closer, nil
}

// Install points both loggers at w. slog.SetDefault re-points the standard
// logger at the handler, so log output is set after it.
func Install(w io.Writer, level slog.Level) {
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
	log.SetOutput(w)
	log.SetFlags(log.LstdFlags | log.Lshortfile)
}

// ParseLevel maps a config level name to a slog level. Unknown names are info.
func ParseLevel(value string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
