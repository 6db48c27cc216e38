package home

import (
	"context"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/amcprep/internal/level"
	"github.com/abhisek/amcprep/internal/router"
	"github.com/abhisek/amcprep/internal/screen"
	"github.com/abhisek/amcprep/internal/screens/notice"
	"github.com/abhisek/amcprep/internal/screens/progress"
	sessionscreen "github.com/abhisek/amcprep/internal/screens/session"
	"github.com/abhisek/amcprep/internal/ui/components"
	"github.com/abhisek/amcprep/internal/ui/layout"
)

// Deps are the collaborators of the home screen.
type Deps struct {
	Session   sessionscreen.Deps
	Levels    *level.Service
	AIEnabled bool
	// Logout builds the screen shown after signing out.
	Logout func() screen.Screen
}

// statsLoadedMsg carries the learner's dashboard numbers.
type statsLoadedMsg struct {
	Level    int
	Attempts int
	Correct  int
	Err      error
}

// HomeScreen is the main menu shown after login.
type HomeScreen struct {
	deps     Deps
	username string
	menu     components.Menu

	level    int
	attempts int
	correct  int
	loaded   bool
	errMsg   string
}

var _ screen.Screen = (*HomeScreen)(nil)
var _ screen.Focuser = (*HomeScreen)(nil)
var _ screen.KeyHintProvider = (*HomeScreen)(nil)

// New creates a new HomeScreen for username.
func New(deps Deps, username string) *HomeScreen {
	h := &HomeScreen{deps: deps, username: username, level: 1}

	items := []components.MenuItem{
		{Label: "PRACTICE", Key: "p", Action: func() tea.Cmd {
			if deps.Session.Bank == nil {
				return func() tea.Msg {
					return router.PushScreenMsg{Screen: notice.New("Practice",
						"No problem bank was found. Point --problems (or AMCPREP_PROBLEMS_DIR) at a folder of contests.")}
				}
			}
			return func() tea.Msg {
				return router.PushScreenMsg{Screen: sessionscreen.New(deps.Session, username)}
			}
		}},
		{Label: "PROGRESS", Key: "g", Action: func() tea.Cmd {
			return func() tea.Msg {
				return router.PushScreenMsg{
					Screen: progress.New(deps.Session.Progress, deps.Session.Levels, username),
				}
			}
		}},
		{Label: "LOG OUT", Key: "l", Action: func() tea.Cmd {
			if deps.Logout == nil {
				return tea.Quit
			}
			next := deps.Logout()
			return tea.Batch(
				func() tea.Msg { return screen.UserMsg{} },
				func() tea.Msg { return router.ResetScreenMsg{Screen: next} },
			)
		}},
		{Label: "QUIT", Key: "q", Action: func() tea.Cmd {
			return tea.Quit
		}},
	}
	h.menu = components.NewMenu(items)
	return h
}

func (h *HomeScreen) Init() tea.Cmd {
	return h.loadStats()
}

// Focus reloads the stats when the learner comes back from a session.
func (h *HomeScreen) Focus() tea.Cmd {
	return h.loadStats()
}

func (h *HomeScreen) loadStats() tea.Cmd {
	levels, repo, username := h.deps.Levels, h.deps.Session.Progress, h.username
	if levels == nil || repo == nil {
		return nil
	}
	return func() tea.Msg {
		ctx := context.Background()
		records, err := repo.UserProgress(ctx, username)
		if err != nil {
			return statsLoadedMsg{Err: err}
		}
		msg := statsLoadedMsg{
			Level:    level.Calculate(records, levels.Config()),
			Attempts: len(records),
		}
		for _, r := range records {
			if r.Correct() {
				msg.Correct++
			}
		}
		return msg
	}
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if msg, ok := msg.(statsLoadedMsg); ok {
		h.loaded = true
		if msg.Err != nil {
			h.errMsg = msg.Err.Error()
			return h, nil
		}
		h.errMsg = ""
		h.level, h.attempts, h.correct = msg.Level, msg.Attempts, msg.Correct
		username, lvl := h.username, h.level
		return h, func() tea.Msg { return screen.UserMsg{Username: username, Level: lvl} }
	}

	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) View(width, height int) string {
	// height is the content area; estimate full terminal height
	// by adding back header (3) + footer (3) + frame gaps
	termHeight := height + 8
	compact := termHeight < 30 || width < 100

	cw := components.ContentWidth(width)

	var sections []string
	sections = append(sections, renderTitle(cw, compact))
	sections = append(sections, renderGreeting(h.username, cw))
	sections = append(sections, renderStatsBar(h.level, h.attempts, h.correct, h.loaded, cw, compact))
	if h.errMsg != "" {
		sections = append(sections, renderWarning("Could not load progress: "+h.errMsg, cw))
	}
	if !h.deps.AIEnabled {
		sections = append(sections, renderWarning("⚠ Set an LLM API key to enable explanations (see amcprep --help)", cw))
	}
	if compact {
		sections = append(sections, renderMenuCompact(h.menu, cw))
	} else {
		sections = append(sections, renderMenu(h.menu, cw))
	}

	return components.Frame(strings.Join(sections, "\n\n"), width, height)
}

func (h *HomeScreen) Title() string {
	return "Home"
}

func (h *HomeScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Select"},
		{Key: "P/G/L/Q", Description: "Shortcuts"},
	}
}
