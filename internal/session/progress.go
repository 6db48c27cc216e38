package session

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/abhisek/amcprep/internal/store"
)

// Recorder persists answered problems.
type Recorder struct {
	repo store.ProgressRepo
	log  logrus.FieldLogger
}

// NewRecorder creates a Recorder backed by repo.
func NewRecorder(repo store.ProgressRepo, log logrus.FieldLogger) *Recorder {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Recorder{repo: repo, log: log}
}

// Save writes one attempt.
func (r *Recorder) Save(ctx context.Context, rec store.ProgressRecord) error {
	if err := r.repo.SaveProgress(ctx, rec); err != nil {
		r.log.WithError(err).WithFields(logrus.Fields{
			"user":     rec.Username,
			"session":  rec.SessionID,
			"folder":   rec.FolderName,
			"question": rec.QuestionNumber,
		}).Error("save progress failed")
		return fmt.Errorf("save progress: %w", err)
	}
	r.log.WithFields(logrus.Fields{
		"user":     rec.Username,
		"question": rec.QuestionNumber,
		"correct":  rec.Correct(),
		"seconds":  rec.AnswerTime,
	}).Debug("attempt saved")
	return nil
}
