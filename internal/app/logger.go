package app

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/tgienger/kanban/internal/config"
)

func init() {
	zerolog.TimestampFieldName = "timestamp"
}

// NewLogger builds the application logger writing to w. The local env gets a
// human-readable console writer; other envs log JSON.
func NewLogger(cfg *config.Config, w io.Writer) (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("parse log level: %w", err)
	}
	if level < zerolog.GlobalLevel() {
		zerolog.SetGlobalLevel(level)
	}

	switch cfg.Env {
	case config.EnvDev, config.EnvProd:
	case config.EnvLocal:
		consoleWriter := zerolog.NewConsoleWriter()
		consoleWriter.TimeFormat = time.DateTime
		consoleWriter.Out = w
		consoleWriter.NoColor = w != os.Stderr && w != os.Stdout
		w = consoleWriter
	default:
		return zerolog.Nop(), fmt.Errorf("unknown env: %s", cfg.Env)
	}

	logger := zerolog.New(w).
		Level(level).
		With().
		Timestamp().
		Int("pid", os.Getpid()).
		Logger()
	if level <= zerolog.DebugLevel {
		logger = logger.With().Caller().Logger()
	}
	return logger, nil
}

// OpenLogFile opens the configured log file for appending. The board owns the
// terminal, so it logs here instead of stderr.
func OpenLogFile(cfg *config.Config) (*os.File, error) {
	path := cfg.LogPath()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return f, nil
}
