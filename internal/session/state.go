package session

import (
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/amcprep/internal/problems"
)

// Phase represents the current phase of the session.
type Phase int

const (
	PhaseActive   Phase = iota // Waiting for an answer
	PhaseFeedback              // Showing answer feedback
	PhaseSummary               // Showing summary screen
)

// State tracks the runtime state of an active session.
type State struct {
	// Plan is the session plan built at start.
	Plan *Plan

	// SessionID is the UUID for this session. Every attempt saved during
	// the session carries it.
	SessionID string

	// Username is the learner answering the questions.
	Username string

	// Current is the index into Plan.Problems of the active problem.
	Current int

	// StartTime is when the session began.
	StartTime time.Time

	// QuestionStartTime is when the current problem was first displayed.
	QuestionStartTime time.Time

	// Elapsed is set when the session ends.
	Elapsed time.Duration

	// Phase is the current session phase.
	Phase Phase

	// Results holds one entry per answered problem, in order.
	Results []Result
}

// Result is the outcome of a single answered problem.
type Result struct {
	Problem    problems.Problem
	Choice     string
	Correct    bool
	AnswerTime int // seconds
}

// NewState starts a session for username at now.
func NewState(plan *Plan, username string, now time.Time) *State {
	return &State{
		Plan:              plan,
		SessionID:         uuid.NewString(),
		Username:          username,
		StartTime:         now,
		QuestionStartTime: now,
		Phase:             PhaseActive,
	}
}

// CurrentProblem returns the active problem, or false when the plan is
// exhausted.
func (s *State) CurrentProblem() (problems.Problem, bool) {
	if s.Plan == nil || s.Current < 0 || s.Current >= len(s.Plan.Problems) {
		return problems.Problem{}, false
	}
	return s.Plan.Problems[s.Current], true
}

// LastResult returns the most recent result, or nil before the first answer.
func (s *State) LastResult() *Result {
	if len(s.Results) == 0 {
		return nil
	}
	return &s.Results[len(s.Results)-1]
}

// Correct counts the correct answers so far.
func (s *State) Correct() int {
	n := 0
	for _, r := range s.Results {
		if r.Correct {
			n++
		}
	}
	return n
}
