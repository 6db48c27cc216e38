package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

type progressRepo struct {
	db *sql.DB
}

var progressColumns = []string{
	"id", "username", "session_id", "folder_name", "year", "question_number",
	"set_identifier", "category", "user_choice", "correct_choice",
	"answer_time", "attempt_date", "image_filename",
}

func (r *progressRepo) SaveProgress(ctx context.Context, rec ProgressRecord) error {
	when := rec.AttemptDate
	if when.IsZero() {
		when = time.Now()
	}

	query, args := builder().Insert("user_progress").
		Columns(progressColumns[1:]...).
		Values(
			rec.Username, rec.SessionID, rec.FolderName, rec.Year, rec.QuestionNumber,
			rec.SetIdentifier, rec.Category, rec.UserChoice, rec.CorrectChoice,
			rec.AnswerTime, formatTime(when), rec.ImageFilename,
		).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save progress for %q: %w", rec.Username, err)
	}
	return nil
}

func (r *progressRepo) UserProgress(ctx context.Context, username string) ([]ProgressRecord, error) {
	query, args := builder().Select(progressColumns...).
		From(entsql.Table("user_progress")).
		Where(entsql.EQ("username", username)).
		OrderBy(entsql.Desc("attempt_date"), entsql.Desc("id")).
		Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query progress for %q: %w", username, err)
	}
	defer rows.Close()

	var out []ProgressRecord
	for rows.Next() {
		var rec ProgressRecord
		var attempted string
		err := rows.Scan(
			&rec.ID, &rec.Username, &rec.SessionID, &rec.FolderName, &rec.Year,
			&rec.QuestionNumber, &rec.SetIdentifier, &rec.Category, &rec.UserChoice,
			&rec.CorrectChoice, &rec.AnswerTime, &attempted, &rec.ImageFilename,
		)
		if err != nil {
			return nil, fmt.Errorf("scan progress: %w", err)
		}
		rec.AttemptDate = parseTime(attempted)
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *progressRepo) ResetProgress(ctx context.Context, username string) (int64, error) {
	query, args := builder().Delete("user_progress").
		Where(entsql.EQ("username", username)).
		Query()

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("reset progress for %q: %w", username, err)
	}
	return res.RowsAffected()
}
