package session

import (
	"context"
	"errors"
	"fmt"
	"image"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/sirupsen/logrus"

	"github.com/abhisek/amcprep/internal/imaging"
	"github.com/abhisek/amcprep/internal/level"
	"github.com/abhisek/amcprep/internal/problems"
	"github.com/abhisek/amcprep/internal/router"
	"github.com/abhisek/amcprep/internal/screen"
	"github.com/abhisek/amcprep/internal/screens/explanation"
	"github.com/abhisek/amcprep/internal/screens/summary"
	sess "github.com/abhisek/amcprep/internal/session"
	"github.com/abhisek/amcprep/internal/store"
	"github.com/abhisek/amcprep/internal/ui/components"
	"github.com/abhisek/amcprep/internal/ui/layout"
)

// Deps are the collaborators of a practice session.
type Deps struct {
	Bank      *problems.Bank
	Planner   sess.Planner
	Progress  store.ProgressRepo
	Levels    level.Config
	Recorder  *sess.Recorder
	Explainer explanation.Explainer
	Questions int // problems per session, 0 for sess.DefaultQuestions
	Log       logrus.FieldLogger
}

// SessionScreen implements screen.Screen for a practice session.
type SessionScreen struct {
	deps     Deps
	username string

	state       *sess.State
	choices     components.MultiChoice
	errMsg      string
	saveErr     string
	showingQuit bool

	// Decoded image of the current problem and its rendering, cached per size.
	image       image.Image
	imageIndex  int
	imageErr    error
	rendered    string
	renderedFor [2]int

	now func() time.Time
}

var _ screen.Screen = (*SessionScreen)(nil)
var _ screen.KeyHintProvider = (*SessionScreen)(nil)

// New creates a new SessionScreen for username.
func New(deps Deps, username string) *SessionScreen {
	if deps.Log == nil {
		deps.Log = logrus.StandardLogger()
	}
	if deps.Questions <= 0 {
		deps.Questions = sess.DefaultQuestions
	}
	return &SessionScreen{
		deps:       deps,
		username:   username,
		choices:    components.NewMultiChoice(problems.Choices),
		imageIndex: -1,
		now:        time.Now,
	}
}

func (s *SessionScreen) Init() tea.Cmd {
	return s.initSession()
}

func (s *SessionScreen) Title() string {
	return "Practice"
}

func (s *SessionScreen) KeyHints() []layout.KeyHint {
	if s.errMsg != "" {
		return []layout.KeyHint{{Key: "any key", Description: "Back"}}
	}
	if s.state == nil {
		return nil
	}
	if s.showingQuit {
		return []layout.KeyHint{
			{Key: "Y", Description: "End session"},
			{Key: "N", Description: "Keep going"},
		}
	}
	if s.state.Phase == sess.PhaseFeedback {
		return []layout.KeyHint{
			{Key: "Enter", Description: "Next"},
			{Key: "E", Description: "Explain"},
			{Key: "Esc", Description: "Quit"},
		}
	}
	return []layout.KeyHint{
		{Key: "A-E", Description: "Answer"},
		{Key: "←/→", Description: "Move"},
		{Key: "Enter", Description: "Submit"},
		{Key: "Esc", Description: "Quit"},
	}
}

func (s *SessionScreen) View(width, height int) string {
	if s.errMsg != "" {
		return renderError(width, height, s.errMsg)
	}
	if s.state == nil {
		return renderLoading(width, height)
	}
	if s.showingQuit {
		return renderQuitConfirm(width, height)
	}
	return s.renderQuestionView(width, height)
}

func (s *SessionScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case sessionInitMsg:
		return s.handleInit(msg)

	case imageLoadedMsg:
		if s.state != nil && msg.Index == s.state.Current {
			s.image, s.imageErr, s.imageIndex = msg.Image, msg.Err, msg.Index
			s.rendered, s.renderedFor = "", [2]int{}
		}
		return s, nil

	case timerTickMsg:
		return s.handleTimerTick()

	case answerSavedMsg:
		if msg.Err != nil {
			s.saveErr = "This attempt could not be saved."
		}
		return s, nil

	case tea.KeyPressMsg:
		return s.handleKey(msg)
	}
	return s, nil
}

// initSession loads the learner's history and builds the plan.
func (s *SessionScreen) initSession() tea.Cmd {
	deps, username, now := s.deps, s.username, s.now
	return func() tea.Msg {
		if deps.Bank == nil {
			return sessionInitMsg{Err: problems.ErrNoProblems}
		}

		progress, err := deps.Progress.UserProgress(context.Background(), username)
		if err != nil {
			return sessionInitMsg{Err: fmt.Errorf("load progress: %w", err)}
		}

		lvl := level.Calculate(progress, deps.Levels)
		plan, err := deps.Planner.BuildPlan(deps.Bank, lvl, progress, deps.Questions)
		if err != nil {
			return sessionInitMsg{Err: err}
		}

		deps.Log.WithFields(logrus.Fields{
			"user":     username,
			"level":    lvl,
			"problems": plan.Len(),
		}).Info("practice session started")
		return sessionInitMsg{State: sess.NewState(plan, username, now())}
	}
}

func (s *SessionScreen) handleInit(msg sessionInitMsg) (screen.Screen, tea.Cmd) {
	if msg.Err != nil {
		switch {
		case errors.Is(msg.Err, sess.ErrNoProblems), errors.Is(msg.Err, problems.ErrNoProblems):
			s.errMsg = "No problems are available for your level yet."
		default:
			s.errMsg = msg.Err.Error()
		}
		return s, nil
	}
	s.state = msg.State
	return s, tea.Batch(s.loadImage(), tickCmd())
}

// loadImage decodes the current problem image off the update loop.
func (s *SessionScreen) loadImage() tea.Cmd {
	p, ok := s.state.CurrentProblem()
	if !ok {
		return nil
	}
	index := s.state.Current
	return func() tea.Msg {
		img, err := imaging.Open(p.ImagePath)
		return imageLoadedMsg{Index: index, Image: img, Err: err}
	}
}

func (s *SessionScreen) handleTimerTick() (screen.Screen, tea.Cmd) {
	if s.state == nil || s.state.Phase == sess.PhaseSummary {
		return s, nil
	}
	s.state.Elapsed = s.now().Sub(s.state.StartTime)
	return s, tickCmd()
}

func (s *SessionScreen) handleKey(msg tea.KeyPressMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()

	// Error state: any key goes back.
	if s.errMsg != "" {
		return s, func() tea.Msg { return router.PopScreenMsg{} }
	}
	if s.state == nil {
		return s, nil
	}

	if s.showingQuit {
		switch key {
		case "y", "Y":
			s.showingQuit = false
			return s.endSession()
		case "n", "N", "esc":
			s.showingQuit = false
		}
		return s, nil
	}

	if key == "esc" {
		s.showingQuit = true
		return s, nil
	}

	switch s.state.Phase {
	case sess.PhaseFeedback:
		switch key {
		case "enter", "space", "n":
			return s.next()
		case "e", "E":
			p := s.state.LastResult().Problem
			return s, func() tea.Msg {
				return router.PushScreenMsg{Screen: explanation.New(s.deps.Explainer, p)}
			}
		}

	case sess.PhaseActive:
		s.choices, _ = s.choices.Update(msg)
		if s.choices.Submitted {
			return s.submitAnswer(s.choices.Chosen())
		}
	}
	return s, nil
}

// submitAnswer scores choice and saves the attempt asynchronously.
func (s *SessionScreen) submitAnswer(choice string) (screen.Screen, tea.Cmd) {
	rec, err := sess.HandleAnswer(s.state, choice, s.now())
	if err != nil {
		s.choices = components.NewMultiChoice(problems.Choices)
		return s, nil
	}
	s.choices.Reveal(rec.CorrectChoice)
	s.saveErr = ""

	recorder := s.deps.Recorder
	if recorder == nil {
		return s, nil
	}
	return s, func() tea.Msg {
		return answerSavedMsg{Err: recorder.Save(context.Background(), rec)}
	}
}

// next moves to the following problem, or to the summary after the last.
func (s *SessionScreen) next() (screen.Screen, tea.Cmd) {
	if !sess.Advance(s.state, s.now()) {
		return s.showSummary()
	}
	s.choices = components.NewMultiChoice(problems.Choices)
	s.saveErr = ""
	return s, s.loadImage()
}

// endSession finishes early. Answered problems are already saved.
func (s *SessionScreen) endSession() (screen.Screen, tea.Cmd) {
	sess.Finish(s.state, s.now())
	if len(s.state.Results) == 0 {
		return s, func() tea.Msg { return router.PopScreenMsg{} }
	}
	return s.showSummary()
}

func (s *SessionScreen) showSummary() (screen.Screen, tea.Cmd) {
	sum := sess.BuildSummary(s.state)
	s.deps.Log.WithFields(logrus.Fields{
		"user":     s.username,
		"session":  s.state.SessionID,
		"answered": sum.TotalQuestions,
		"correct":  sum.TotalCorrect,
	}).Info("practice session finished")
	return s, func() tea.Msg {
		return router.ReplaceScreenMsg{Screen: summary.New(sum)}
	}
}

// tickCmd returns a 1-second tick command.
func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return timerTickMsg(t)
	})
}
