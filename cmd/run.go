package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/amcprep/internal/app"
	"github.com/abhisek/amcprep/internal/auth"
	"github.com/abhisek/amcprep/internal/level"
	"github.com/abhisek/amcprep/internal/llm"
	"github.com/abhisek/amcprep/internal/problems"
	"github.com/abhisek/amcprep/internal/screens/home"
	sessionscreen "github.com/abhisek/amcprep/internal/screens/session"
	"github.com/abhisek/amcprep/internal/session"
	"github.com/abhisek/amcprep/internal/tutor"
)

// runApp opens the store, builds dependencies, and launches the TUI.
func runApp(cmd *cobra.Command) error {
	e, err := setup(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	bank, err := problems.Load(e.cfg.ProblemsDir)
	if err != nil {
		// The TUI still starts; practice explains what is missing.
		fmt.Fprintf(os.Stderr, "Problem bank unavailable: %v\n", err)
		e.log.WithError(err).WithField("dir", e.cfg.ProblemsDir).Warn("problem bank unavailable")
	}

	t := newTutor(cmd, e)

	progress := e.store.Progress()
	opts := app.Options{
		Auth: auth.NewService(e.store.Users(), e.store.Invites(), e.cfg.Auth, e.log),
		Home: home.Deps{
			Session: sessionscreen.Deps{
				Bank:      bank,
				Planner:   session.NewPlanner(e.cfg.Level),
				Progress:  progress,
				Levels:    e.cfg.Level,
				Recorder:  session.NewRecorder(progress, e.log),
				Explainer: t,
				Log:       e.log,
			},
			Levels:    level.NewService(progress, e.cfg.Level),
			AIEnabled: t.Enabled(),
		},
		Log: e.log,
	}

	return app.Run(opts)
}

// newTutor builds the AI tutor. Without a configured provider the tutor
// is returned disabled.
func newTutor(cmd *cobra.Command, e *env) *tutor.Tutor {
	provider, err := llm.NewProviderFromEnv(cmd.Context(), e.store.EventRepo(), e.log)
	if err != nil {
		if !errors.Is(err, llm.ErrNotConfigured) {
			fmt.Fprintln(os.Stderr, "LLM provider not configured:", err)
		}
		fmt.Fprintln(os.Stderr, "AI features will be unavailable.")
		e.log.WithError(err).Warn("AI features disabled")
		return tutor.New(nil, e.cfg.Tutor, e.log)
	}
	return tutor.New(provider, e.cfg.Tutor, e.log)
}
