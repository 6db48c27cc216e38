package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

type inviteRepo struct {
	db *sql.DB
}

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (r *inviteRepo) AddInvitationCode(ctx context.Context, code string) error {
	query, args := builder().Insert("invitation_codes").
		Columns("code", "is_used", "created_at").
		Values(code, 0, formatTime(time.Now())).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("add invitation code: %w", err)
	}
	return nil
}

func (r *inviteRepo) ValidateInvitationCode(ctx context.Context, code string) (bool, error) {
	if code == "" {
		return false, nil
	}

	query, args := builder().Select("code").
		From(entsql.Table("invitation_codes")).
		Where(entsql.And(
			entsql.EQ("code", code),
			entsql.EQ("is_used", 0),
		)).
		Query()

	var found string
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("validate invitation code: %w", err)
	}
	return true, nil
}

func (r *inviteRepo) MarkCodeUsed(ctx context.Context, code, username string) (bool, error) {
	if code == "" {
		return false, nil
	}
	return markCodeUsed(ctx, r.db, code, username, formatTime(time.Now()))
}

func markCodeUsed(ctx context.Context, ex execer, code, username, usedAt string) (bool, error) {
	query, args := builder().Update("invitation_codes").
		Set("is_used", 1).
		Set("used_by", username).
		Set("used_at", usedAt).
		Where(entsql.And(
			entsql.EQ("code", code),
			entsql.EQ("is_used", 0),
		)).
		Query()

	res, err := ex.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("mark invitation code used: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n == 1, nil
}

func (r *inviteRepo) ListInvitationCodes(ctx context.Context) ([]InvitationCode, error) {
	query, args := builder().Select("code", "is_used", "used_by", "used_at", "created_at").
		From(entsql.Table("invitation_codes")).
		OrderBy(entsql.Desc("created_at"), "code").
		Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list invitation codes: %w", err)
	}
	defer rows.Close()

	var codes []InvitationCode
	for rows.Next() {
		var (
			c                  InvitationCode
			used               int
			usedAt, createdAt string
		)
		if err := rows.Scan(&c.Code, &used, &c.UsedBy, &usedAt, &createdAt); err != nil {
			return nil, fmt.Errorf("scan invitation code: %w", err)
		}
		c.Used = used != 0
		c.UsedAt = parseTime(usedAt)
		c.CreatedAt = parseTime(createdAt)
		codes = append(codes, c)
	}
	return codes, rows.Err()
}
