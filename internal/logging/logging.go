// Package logging sets up the process-wide slog logger
package logging

import (
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Logger is the global slog instance for the application
var Logger *slog.Logger

// Config holds the configuration for the logger
type Config struct {
	// Level sets the minimum log level: debug, info, warn, error
	Level string `yaml:"level"`
	// Format sets the output format: text or json
	Format string `yaml:"format"`
	// Output is stderr, stdout or a file path. Empty writes to ~/.tablero/logs/tablero.log
	Output string `yaml:"output"`
}

// DefaultPath returns ~/.tablero/logs/tablero.log
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".tablero", "logs", "tablero.log"), nil
}

// Init initializes the logging system and installs it as the slog default.
// Standard log output is redirected to the same destination.
func Init(cfg Config) error {
	logger, w, err := New(cfg)
	if err != nil {
		return err
	}

	Logger = logger
	slog.SetDefault(Logger)

	log.SetOutput(w)
	log.SetFlags(log.LstdFlags)

	return nil
}

// New builds a logger from cfg without installing it. The returned writer is the
// log destination.
func New(cfg Config) (*slog.Logger, io.Writer, error) {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		return nil, nil, err
	}

	w, err := openOutput(cfg.Output)
	if err != nil {
		return nil, nil, err
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	switch strings.ToLower(cfg.Format) {
	case "", "text":
		handler = slog.NewTextHandler(w, opts)
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	default:
		return nil, nil, fmt.Errorf("unsupported log format: %s", cfg.Format)
	}

	return slog.New(handler), w, nil
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "", "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("invalid log level %q", s)
}

// openOutput resolves the destination, creating the log directory when needed
func openOutput(output string) (io.Writer, error) {
	switch output {
	case "stderr":
		return os.Stderr, nil
	case "stdout":
		return os.Stdout, nil
	}

	path := output
	if path == "" {
		var err error
		if path, err = DefaultPath(); err != nil {
			return nil, err
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	// Open log file in append mode
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	return file, nil
}
