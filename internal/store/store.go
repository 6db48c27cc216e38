package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// ErrCodeUnavailable is returned when an invitation code is unknown or
// has already been used.
var ErrCodeUnavailable = errors.New("invitation code is invalid or already used")

// ErrUserExists is returned by RegisterUser when the username is taken.
var ErrUserExists = errors.New("username already exists")

// timeLayout is the on-disk format of every timestamp column. It sorts
// lexicographically in chronological order.
const timeLayout = "2006-01-02 15:04:05"

// Store owns the SQLite connection and hands out repositories.
type Store struct {
	db *sql.DB
}

// Open creates a new Store connected to the SQLite database at dsn.
// It applies recommended pragmas and creates the schema if needed.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// SQLite allows one writer; a single connection also keeps
	// per-connection pragmas (foreign_keys) in effect for every query.
	db.SetMaxOpenConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}

	if err := migrate(context.Background(), db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return &Store{db: db}, nil
}

// DB returns the underlying *sql.DB for raw queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Users returns a UserRepo backed by this store.
func (s *Store) Users() UserRepo {
	return &userRepo{db: s.db}
}

// Progress returns a ProgressRepo backed by this store.
func (s *Store) Progress() ProgressRepo {
	return &progressRepo{db: s.db}
}

// Invites returns an InviteRepo backed by this store.
func (s *Store) Invites() InviteRepo {
	return &inviteRepo{db: s.db}
}

// EventRepo returns an EventRepo backed by this store.
func (s *Store) EventRepo() EventRepo {
	return &eventRepo{db: s.db}
}

// builder returns an ent SQL builder for the SQLite dialect.
func builder() *entsql.DialectBuilder {
	return entsql.Dialect(dialect.SQLite)
}

// applyPragmas configures SQLite for optimal single-user performance.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

// schema lists the DDL statements applied on every open. Each statement is
// idempotent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		username   TEXT PRIMARY KEY,
		password   TEXT NOT NULL,
		created_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS user_progress (
		id              INTEGER PRIMARY KEY AUTOINCREMENT,
		username        TEXT NOT NULL REFERENCES users(username) ON DELETE CASCADE,
		session_id      TEXT NOT NULL DEFAULT '',
		folder_name     TEXT NOT NULL,
		year            INTEGER NOT NULL DEFAULT 0,
		question_number INTEGER NOT NULL,
		set_identifier  TEXT NOT NULL DEFAULT '',
		category        TEXT NOT NULL DEFAULT '',
		user_choice     TEXT NOT NULL,
		correct_choice  TEXT NOT NULL,
		answer_time     INTEGER NOT NULL DEFAULT 0,
		attempt_date    TEXT NOT NULL,
		image_filename  TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS idx_user_progress_username_date
		ON user_progress (username, attempt_date)`,
	`CREATE TABLE IF NOT EXISTS invitation_codes (
		code       TEXT PRIMARY KEY,
		is_used    INTEGER NOT NULL DEFAULT 0,
		used_by    TEXT NOT NULL DEFAULT '',
		used_at    TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_invitation_codes_is_used
		ON invitation_codes (is_used)`,
	`CREATE TABLE IF NOT EXISTS llm_request_events (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp     TEXT NOT NULL,
		provider      TEXT NOT NULL,
		model         TEXT NOT NULL,
		purpose       TEXT NOT NULL,
		input_tokens  INTEGER NOT NULL DEFAULT 0,
		output_tokens INTEGER NOT NULL DEFAULT 0,
		latency_ms    INTEGER NOT NULL DEFAULT 0,
		success       INTEGER NOT NULL DEFAULT 0,
		error_message TEXT NOT NULL DEFAULT '',
		request_body  TEXT NOT NULL DEFAULT '',
		response_body TEXT NOT NULL DEFAULT ''
	)`,
}

func migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, err := time.ParseInLocation(timeLayout, s, time.UTC)
	if err != nil {
		return time.Time{}
	}
	return t
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// DefaultDBPath resolves the database file path in priority order:
// 1. AMCPREP_DB environment variable
// 2. $XDG_DATA_HOME/amcprep/amcprep.db
// 3. ~/.local/share/amcprep/amcprep.db
func DefaultDBPath() (string, error) {
	if p := os.Getenv("AMCPREP_DB"); p != "" {
		return p, EnsureDir(p)
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	p := filepath.Join(dataHome, "amcprep", "amcprep.db")
	return p, EnsureDir(p)
}

// EnsureDir creates the parent directory of path if it doesn't exist.
func EnsureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0o755)
}
