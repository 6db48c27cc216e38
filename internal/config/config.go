// Package config loads .env files and assembles the per-package
// configuration used by the CLI and the TUI.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	"github.com/abhisek/amcprep/internal/auth"
	"github.com/abhisek/amcprep/internal/latex"
	"github.com/abhisek/amcprep/internal/level"
	"github.com/abhisek/amcprep/internal/logging"
	"github.com/abhisek/amcprep/internal/store"
	"github.com/abhisek/amcprep/internal/tutor"
)

// DefaultEnvFile is read from the working directory when no file is given.
const DefaultEnvFile = ".env"

// DefaultProblemsDir is the problem bank used when none is configured.
const DefaultProblemsDir = "problems"

// Load reads environment variables from path. Variables already set in
// the process environment win. A missing file is an error only when
// explicit is true.
func Load(path string, explicit bool) error {
	if path == "" {
		path = DefaultEnvFile
	}
	if err := godotenv.Load(path); err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

// App is the complete application configuration.
type App struct {
	DBPath      string
	ProblemsDir string
	Logging     logging.Config
	Level       level.Config
	Auth        auth.Config
	Latex       latex.Config
	Tutor       tutor.Config
}

// Overrides carry command-line values that take precedence over the
// environment.
type Overrides struct {
	DBPath      string
	ProblemsDir string
}

// FromEnv builds the App configuration from AMCPREP_* variables.
func FromEnv(o Overrides) (App, error) {
	var cfg App

	dbPath, err := resolveDBPath(o.DBPath)
	if err != nil {
		return App{}, err
	}
	cfg.DBPath = dbPath

	cfg.ProblemsDir = o.ProblemsDir
	if cfg.ProblemsDir == "" {
		cfg.ProblemsDir = os.Getenv("AMCPREP_PROBLEMS_DIR")
	}
	if cfg.ProblemsDir == "" {
		cfg.ProblemsDir = DefaultProblemsDir
	}

	cfg.Logging = logging.ConfigFromEnv(filepath.Dir(dbPath))

	cfg.Level, err = level.ConfigFromEnv()
	if err != nil {
		return App{}, err
	}

	cfg.Auth = auth.DefaultConfig()
	if v := os.Getenv("AMCPREP_REQUIRE_INVITE"); v != "" {
		cfg.Auth.RequireInvite = parseBool(v, cfg.Auth.RequireInvite)
	}

	cfg.Latex = latex.DefaultConfig()
	cfg.Tutor = tutor.DefaultConfig()
	return cfg, nil
}

// resolveDBPath prefers the flag value, then AMCPREP_DB, then the XDG
// data directory.
func resolveDBPath(flag string) (string, error) {
	if flag != "" {
		return flag, store.EnsureDir(flag)
	}
	return store.DefaultDBPath()
}

func parseBool(v string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	return def
}
