package progress

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/amcprep/internal/level"
	"github.com/abhisek/amcprep/internal/router"
	"github.com/abhisek/amcprep/internal/screen"
	"github.com/abhisek/amcprep/internal/session"
	"github.com/abhisek/amcprep/internal/store"
	"github.com/abhisek/amcprep/internal/ui/components"
	"github.com/abhisek/amcprep/internal/ui/layout"
	"github.com/abhisek/amcprep/internal/ui/theme"
)

// maxSessions bounds the session list.
const maxSessions = 20

type progressLoadedMsg struct {
	Records []store.ProgressRecord
	Err     error
}

// SessionRow groups the attempts of one practice session.
type SessionRow struct {
	SessionID string
	Date      time.Time
	Attempts  []store.ProgressRecord
	Correct   int
	Seconds   int
}

// GroupSessions groups records (most recent first) by session, keeping
// that order.
func GroupSessions(records []store.ProgressRecord) []SessionRow {
	var rows []SessionRow
	index := make(map[string]int)
	for _, rec := range records {
		i, ok := index[rec.SessionID]
		if !ok {
			i = len(rows)
			index[rec.SessionID] = i
			rows = append(rows, SessionRow{SessionID: rec.SessionID, Date: rec.AttemptDate})
		}
		row := &rows[i]
		row.Attempts = append(row.Attempts, rec)
		row.Seconds += rec.AnswerTime
		if rec.Correct() {
			row.Correct++
		}
	}
	return rows
}

// ProgressScreen shows the learner's level, accuracy by category and
// past sessions.
type ProgressScreen struct {
	repo     store.ProgressRepo
	levels   level.Config
	username string

	statuses   []level.Status
	level      int
	total      int
	correct    int
	categories []session.CategoryResult
	sessions   []SessionRow

	selected int
	expanded map[int]bool
	loaded   bool
	errMsg   string
}

var _ screen.Screen = (*ProgressScreen)(nil)
var _ screen.KeyHintProvider = (*ProgressScreen)(nil)

// New creates a new ProgressScreen for username.
func New(repo store.ProgressRepo, levels level.Config, username string) *ProgressScreen {
	return &ProgressScreen{
		repo:     repo,
		levels:   levels,
		username: username,
		expanded: make(map[int]bool),
	}
}

func (s *ProgressScreen) Init() tea.Cmd {
	repo, username := s.repo, s.username
	return func() tea.Msg {
		records, err := repo.UserProgress(context.Background(), username)
		return progressLoadedMsg{Records: records, Err: err}
	}
}

func (s *ProgressScreen) Title() string {
	return "Progress"
}

func (s *ProgressScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Details"},
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *ProgressScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case progressLoadedMsg:
		s.loaded = true
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		s.apply(msg.Records)
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc", "q":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
		case "down", "j":
			if s.selected < len(s.sessions)-1 {
				s.selected++
			}
		case "enter":
			s.expanded[s.selected] = !s.expanded[s.selected]
		}
	}
	return s, nil
}

func (s *ProgressScreen) apply(records []store.ProgressRecord) {
	s.statuses = level.Assess(records, s.levels)
	s.level = level.Calculate(records, s.levels)
	s.total = len(records)
	s.correct = 0
	for _, r := range records {
		if r.Correct() {
			s.correct++
		}
	}
	s.categories = session.CategoryAccuracy(records)
	s.sessions = GroupSessions(records)
	if len(s.sessions) > maxSessions {
		s.sessions = s.sessions[:maxSessions]
	}
}

func (s *ProgressScreen) View(width, height int) string {
	center := lipgloss.NewStyle().Width(width).Align(lipgloss.Center)
	if s.errMsg != "" {
		return center.Foreground(theme.Error).Render(fmt.Sprintf("\n\nError: %s", s.errMsg))
	}
	if !s.loaded {
		return center.Foreground(theme.TextDim).Render("\n\n  Loading progress...")
	}
	if s.total == 0 {
		return center.Foreground(theme.TextDim).Italic(true).
			Render("\n\n  No attempts yet. Start practicing!")
	}

	cw := min(width-8, 64)
	var b strings.Builder
	heading := func(title string) {
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			lipgloss.NewStyle().Foreground(theme.TextDim).Render(title)))
		b.WriteString("\n")
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", max(cw, 0)))))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(center.Foreground(theme.Primary).Bold(true).
		Render(fmt.Sprintf("Level %d", s.level)))
	b.WriteString("\n")
	b.WriteString(center.Foreground(theme.Text).
		Render(fmt.Sprintf("%d attempts   %d correct   %.0f%% accuracy",
			s.total, s.correct, percent(s.correct, s.total))))
	b.WriteString("\n")
	if next := s.nextLevelNote(); next != "" {
		b.WriteString(center.Foreground(theme.TextDim).Italic(true).Render(next))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	heading("Categories")
	for _, c := range s.categories {
		bar := components.ProgressBar{
			Label:      c.Category,
			LabelWidth: 16,
			Percent:    c.Accuracy(),
			Detail:     fmt.Sprintf("%d/%d", c.Correct, c.Attempted),
			Width:      cw,
		}
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, bar.View()))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	heading("Sessions")
	for i, row := range s.sessions {
		prefix := "  "
		style := lipgloss.NewStyle().Foreground(theme.Text)
		if i == s.selected {
			prefix = "> "
			style = style.Foreground(theme.Primary).Bold(true)
		}
		line := fmt.Sprintf("%s%s  %2d problems  %.0f%% accuracy  %s",
			prefix, row.Date.Local().Format("Jan 02, 2006 15:04"),
			len(row.Attempts), percent(row.Correct, len(row.Attempts)),
			formatDuration(row.Seconds))
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, style.Render(line)))
		b.WriteString("\n")

		if s.expanded[i] {
			for _, a := range row.Attempts {
				mark, st := "✓", theme.Correct
				if !a.Correct() {
					mark, st = "✗", theme.Incorrect
				}
				detail := fmt.Sprintf("    %s %s #%d  you: %s  answer: %s  %ds",
					mark, a.FolderName, a.QuestionNumber, a.UserChoice, a.CorrectChoice, a.AnswerTime)
				b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, st.Render(detail)))
				b.WriteString("\n")
			}
		}
	}

	return b.String()
}

// nextLevelNote describes what the learner needs for the next level.
func (s *ProgressScreen) nextLevelNote() string {
	if s.level >= s.levels.MaxLevel() {
		return "Top level reached."
	}
	for _, st := range s.statuses {
		if st.Level != s.level || st.Passed {
			continue
		}
		need := s.levels.CorrectToLevelUp + 1
		if st.Attempts < s.levels.QuestionsForAssessment {
			return fmt.Sprintf("Answer %d more level %d problems to be assessed.",
				s.levels.QuestionsForAssessment-st.Attempts, s.level)
		}
		return fmt.Sprintf("Get %d of your last %d level %d problems right to move up (now %d).",
			need, s.levels.QuestionsForAssessment, s.level, st.Correct)
	}
	return ""
}

func percent(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total) * 100
}

func formatDuration(secs int) string {
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}
