package notice

import (
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/amcprep/internal/router"
	"github.com/abhisek/amcprep/internal/screen"
	"github.com/abhisek/amcprep/internal/ui/layout"
	"github.com/abhisek/amcprep/internal/ui/theme"
)

// NoticeScreen shows a single message, e.g. when a feature cannot start.
type NoticeScreen struct {
	title   string
	message string
}

var _ screen.Screen = (*NoticeScreen)(nil)
var _ screen.KeyHintProvider = (*NoticeScreen)(nil)

// New creates a NoticeScreen with the given title and message.
func New(title, message string) *NoticeScreen {
	return &NoticeScreen{title: title, message: message}
}

func (p *NoticeScreen) Init() tea.Cmd {
	return nil
}

func (p *NoticeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if _, ok := msg.(tea.KeyPressMsg); ok {
		return p, func() tea.Msg { return router.PopScreenMsg{} }
	}
	return p, nil
}

func (p *NoticeScreen) View(width, height int) string {
	body := lipgloss.NewStyle().
		Width(min(width-8, 64)).
		Foreground(theme.Text).
		Render(p.message)

	hint := theme.Hint.Render("Press any key to go back.")

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center, body, "", hint))
}

func (p *NoticeScreen) Title() string {
	return p.title
}

func (p *NoticeScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{{Key: "any key", Description: "Back"}}
}
