package explanation

import (
	"context"
	"strings"

	"charm.land/bubbles/v2/spinner"
	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/amcprep/internal/latex"
	"github.com/abhisek/amcprep/internal/problems"
	"github.com/abhisek/amcprep/internal/router"
	"github.com/abhisek/amcprep/internal/screen"
	"github.com/abhisek/amcprep/internal/tutor"
	"github.com/abhisek/amcprep/internal/ui/layout"
	"github.com/abhisek/amcprep/internal/ui/theme"
)

// Explainer produces a worked explanation for a problem image.
type Explainer interface {
	Explain(ctx context.Context, imagePath, correctAnswer string) (string, error)
}

// explanationMsg carries the tutor's reply.
type explanationMsg struct {
	Text string
	Err  error
}

// ExplanationScreen asks the tutor about a problem and shows the answer
// with its math highlighted.
type ExplanationScreen struct {
	explainer Explainer
	problem   problems.Problem

	loading bool
	text    string
	err     error

	spinner  spinner.Model
	viewport viewport.Model
	// content is rendered for this width.
	renderedWidth int
}

var _ screen.Screen = (*ExplanationScreen)(nil)
var _ screen.KeyHintProvider = (*ExplanationScreen)(nil)

// New creates an ExplanationScreen for p.
func New(explainer Explainer, p problems.Problem) *ExplanationScreen {
	return &ExplanationScreen{
		explainer: explainer,
		problem:   p,
		spinner:   spinner.New(spinner.WithSpinner(spinner.Dot)),
		viewport:  viewport.New(),
	}
}

func (s *ExplanationScreen) Init() tea.Cmd {
	return s.load()
}

func (s *ExplanationScreen) load() tea.Cmd {
	s.loading = true
	s.err = nil
	ex, p := s.explainer, s.problem
	fetch := func() tea.Msg {
		if ex == nil {
			return explanationMsg{Err: tutor.ErrDisabled}
		}
		text, err := ex.Explain(context.Background(), p.ImagePath, p.Answer)
		return explanationMsg{Text: text, Err: err}
	}
	return tea.Batch(s.spinner.Tick, fetch)
}

func (s *ExplanationScreen) Title() string {
	return "Explanation"
}

func (s *ExplanationScreen) KeyHints() []layout.KeyHint {
	if s.loading {
		return []layout.KeyHint{{Key: "Esc", Description: "Back"}}
	}
	if s.err != nil {
		return []layout.KeyHint{
			{Key: "R", Description: "Retry"},
			{Key: "Esc", Description: "Back"},
		}
	}
	return []layout.KeyHint{
		{Key: "↑/↓", Description: "Scroll"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *ExplanationScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case explanationMsg:
		s.loading = false
		s.text, s.err = msg.Text, msg.Err
		s.renderedWidth = 0
		return s, nil

	case spinner.TickMsg:
		if !s.loading {
			return s, nil
		}
		var cmd tea.Cmd
		s.spinner, cmd = s.spinner.Update(msg)
		return s, cmd

	case tea.KeyPressMsg:
		switch msg.String() {
		case "esc", "q":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "r":
			if s.err != nil && !s.loading {
				return s, s.load()
			}
			return s, nil
		}
		if s.loading || s.err != nil {
			return s, nil
		}
		var cmd tea.Cmd
		s.viewport, cmd = s.viewport.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *ExplanationScreen) View(width, height int) string {
	cw := min(width-4, 90)
	header := lipgloss.JoinVertical(lipgloss.Left,
		theme.Title.Render(s.problem.Label()),
		theme.Hint.Render("Correct answer: "+s.problem.Answer),
		"",
	)

	var body string
	switch {
	case s.loading:
		body = s.spinner.View() + " " + theme.Hint.Render("Asking the tutor...")
	case s.err != nil:
		body = theme.ErrorText.Width(cw).Render(tutor.UserMessage(s.err))
	default:
		if cw != s.renderedWidth {
			s.viewport.SetContent(Render(s.text, cw))
			s.renderedWidth = cw
		}
		s.viewport.SetWidth(cw)
		s.viewport.SetHeight(max(height-lipgloss.Height(header)-1, 1))
		body = s.viewport.View()
	}

	return lipgloss.PlaceHorizontal(width, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Left, header, body))
}

// Render lays out explanation text for a terminal width. Inline math is
// colored within its paragraph; display and boxed math get their own lines.
func Render(text string, width int) string {
	para := lipgloss.NewStyle().Width(width).Foreground(theme.Text)

	var blocks []string
	var cur strings.Builder
	flush := func() {
		if s := strings.Trim(cur.String(), "\n"); s != "" {
			blocks = append(blocks, para.Render(s))
		}
		cur.Reset()
	}

	for _, p := range latex.Pieces(text) {
		switch {
		case !p.Math:
			cur.WriteString(p.Text)
		case p.Boxed:
			flush()
			blocks = append(blocks, lipgloss.PlaceHorizontal(width, lipgloss.Center, theme.BoxedMath.Render(p.Text)))
		case p.Display:
			flush()
			blocks = append(blocks, lipgloss.PlaceHorizontal(width, lipgloss.Center, theme.DisplayMath.Render(p.Text)))
		default:
			cur.WriteString(theme.InlineMath.Render(p.Text))
		}
	}
	flush()

	return strings.Join(blocks, "\n\n")
}
