// Package logging configures the application's logrus logger. The TUI owns
// the terminal, so log output normally goes to a file.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

// Config selects the log destination and verbosity.
type Config struct {
	// File is the log file path. "-" logs to stderr, empty discards.
	File string

	// Level is a logrus level name: "debug", "info", "warn", "error".
	Level string
}

// DefaultConfig logs at info level to amcprep.log in dir.
func DefaultConfig(dir string) Config {
	return Config{
		File:  filepath.Join(dir, "amcprep.log"),
		Level: "info",
	}
}

// ConfigFromEnv overrides the defaults with AMCPREP_LOG_FILE and
// AMCPREP_LOG_LEVEL.
func ConfigFromEnv(dir string) Config {
	cfg := DefaultConfig(dir)
	if f, ok := os.LookupEnv("AMCPREP_LOG_FILE"); ok {
		cfg.File = f
	}
	if l := os.Getenv("AMCPREP_LOG_LEVEL"); l != "" {
		cfg.Level = l
	}
	return cfg
}

// Setup builds a logger from cfg. The returned closer releases the log
// file and is never nil.
func Setup(cfg Config) (*logrus.Logger, io.Closer, error) {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		DisableColors:   cfg.File != "-",
		TimestampFormat: "2006-01-02 15:04:05",
	})

	level := logrus.InfoLevel
	if cfg.Level != "" {
		parsed, err := logrus.ParseLevel(cfg.Level)
		if err != nil {
			return nil, nopCloser{}, fmt.Errorf("log level: %w", err)
		}
		level = parsed
	}
	log.SetLevel(level)

	switch cfg.File {
	case "":
		log.SetOutput(io.Discard)
		return log, nopCloser{}, nil
	case "-":
		log.SetOutput(os.Stderr)
		return log, nopCloser{}, nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
		return nil, nopCloser{}, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nopCloser{}, fmt.Errorf("open log file: %w", err)
	}
	log.SetOutput(f)
	return log, f, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
