package session

import (
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/abhisek/amcprep/internal/problems"
	"github.com/abhisek/amcprep/internal/store"
)

var (
	// ErrNoQuestion is returned when an answer arrives with no active problem.
	ErrNoQuestion = errors.New("no active question")

	// ErrInvalidChoice is returned for a choice outside A-E.
	ErrInvalidChoice = errors.New("invalid answer choice")
)

// HandleAnswer scores choice against the current problem, records the
// result and moves the session to the feedback phase. The returned record
// is ready to be saved.
func HandleAnswer(state *State, choice string, now time.Time) (store.ProgressRecord, error) {
	if state.Phase != PhaseActive {
		return store.ProgressRecord{}, ErrNoQuestion
	}
	p, ok := state.CurrentProblem()
	if !ok {
		return store.ProgressRecord{}, ErrNoQuestion
	}

	choice = strings.ToUpper(strings.TrimSpace(choice))
	if !slices.Contains(problems.Choices, choice) {
		return store.ProgressRecord{}, ErrInvalidChoice
	}

	seconds := int(now.Sub(state.QuestionStartTime) / time.Second)
	if seconds < 0 {
		seconds = 0
	}

	rec := store.ProgressRecord{
		Username:       state.Username,
		SessionID:      state.SessionID,
		FolderName:     p.Folder,
		Year:           p.Year,
		QuestionNumber: p.Number,
		SetIdentifier:  p.Set,
		Category:       p.Category,
		UserChoice:     choice,
		CorrectChoice:  p.Answer,
		AnswerTime:     seconds,
		AttemptDate:    now.UTC(),
		ImageFilename:  p.ImageFile(),
	}

	state.Results = append(state.Results, Result{
		Problem:    p,
		Choice:     choice,
		Correct:    rec.Correct(),
		AnswerTime: seconds,
	})
	state.Phase = PhaseFeedback
	return rec, nil
}

// Advance moves to the next problem and restarts the question timer.
// Returns false and ends the session when the plan is exhausted.
func Advance(state *State, now time.Time) bool {
	state.Current++
	if _, ok := state.CurrentProblem(); !ok {
		Finish(state, now)
		return false
	}
	state.QuestionStartTime = now
	state.Phase = PhaseActive
	return true
}

// Finish ends the session at now.
func Finish(state *State, now time.Time) {
	state.Elapsed = now.Sub(state.StartTime)
	state.Phase = PhaseSummary
}
