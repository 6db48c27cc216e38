package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// userRepo implements UserRepo and the invitation half of RegisterUser.
type userRepo struct {
	db *sql.DB
}

func (r *userRepo) AddUser(ctx context.Context, username, passwordHash string) error {
	query, args := builder().Insert("users").
		Columns("username", "password", "created_at").
		Values(username, passwordHash, formatTime(time.Now())).
		OnConflict(
			entsql.ConflictColumns("username"),
			entsql.ResolveWith(func(u *entsql.UpdateSet) {
				u.SetExcluded("password")
			}),
		).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("add user %q: %w", username, err)
	}
	return nil
}

func (r *userRepo) UserHash(ctx context.Context, username string) (string, error) {
	query, args := builder().Select("password").
		From(entsql.Table("users")).
		Where(entsql.EQ("username", username)).
		Query()

	var hash string
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&hash)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("query user %q: %w", username, err)
	}
	return hash, nil
}

func (r *userRepo) RegisterUser(ctx context.Context, username, passwordHash, code string) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	query, args := builder().Select("username").
		From(entsql.Table("users")).
		Where(entsql.EQ("username", username)).
		Query()
	var existing string
	switch scanErr := tx.QueryRowContext(ctx, query, args...).Scan(&existing); {
	case scanErr == nil:
		return ErrUserExists
	case !errors.Is(scanErr, sql.ErrNoRows):
		return fmt.Errorf("check user %q: %w", username, scanErr)
	}

	now := formatTime(time.Now())

	if code != "" {
		ok, markErr := markCodeUsed(ctx, tx, code, username, now)
		if markErr != nil {
			return markErr
		}
		if !ok {
			return ErrCodeUnavailable
		}
	}

	query, args = builder().Insert("users").
		Columns("username", "password", "created_at").
		Values(username, passwordHash, now).
		Query()
	if _, err = tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert user %q: %w", username, err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (r *userRepo) ListUsers(ctx context.Context) ([]User, error) {
	query, args := builder().Select("username", "created_at").
		From(entsql.Table("users")).
		OrderBy("username").
		Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		var u User
		var created string
		if err := rows.Scan(&u.Username, &created); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		u.CreatedAt = parseTime(created)
		users = append(users, u)
	}
	return users, rows.Err()
}
