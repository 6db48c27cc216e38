package components

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/amcprep/internal/ui/theme"
)

// MultiChoice is a row of lettered answer choices. A letter key chooses
// directly; arrows move the cursor and Enter chooses the highlighted one.
type MultiChoice struct {
	Labels       []string
	Selected     int
	Submitted    bool
	ChosenIndex  int
	CorrectIndex int // -1 until Reveal
}

// NewMultiChoice creates a selector over labels, e.g. A through E.
func NewMultiChoice(labels []string) MultiChoice {
	return MultiChoice{
		Labels:       labels,
		ChosenIndex:  -1,
		CorrectIndex: -1,
	}
}

// Update handles keyboard navigation and selection.
func (m MultiChoice) Update(msg tea.Msg) (MultiChoice, tea.Cmd) {
	if m.Submitted {
		return m, nil
	}

	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key := kmsg.String(); key {
	case "left", "h", "up":
		if m.Selected > 0 {
			m.Selected--
		}
	case "right", "l", "down":
		if m.Selected < len(m.Labels)-1 {
			m.Selected++
		}
	case "enter":
		m.choose(m.Selected)
	default:
		for i, label := range m.Labels {
			if strings.EqualFold(label, key) {
				m.choose(i)
				break
			}
		}
	}

	return m, nil
}

func (m *MultiChoice) choose(i int) {
	m.Selected = i
	m.ChosenIndex = i
	m.Submitted = true
}

// Chosen returns the submitted label, or "" before submission.
func (m MultiChoice) Chosen() string {
	if !m.Submitted || m.ChosenIndex < 0 {
		return ""
	}
	return m.Labels[m.ChosenIndex]
}

// Reveal marks the correct label so the view can color the answers.
func (m *MultiChoice) Reveal(correct string) {
	m.CorrectIndex = -1
	for i, label := range m.Labels {
		if strings.EqualFold(label, correct) {
			m.CorrectIndex = i
		}
	}
}

// View renders the choices on one line.
func (m MultiChoice) View() string {
	cells := make([]string, len(m.Labels))
	for i, label := range m.Labels {
		style := lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border).
			Foreground(theme.Text).
			Padding(0, 2)

		switch {
		case m.Submitted && i == m.CorrectIndex:
			style = style.BorderForeground(theme.Success).Foreground(theme.Success).Bold(true)
		case m.Submitted && i == m.ChosenIndex:
			style = style.BorderForeground(theme.Error).Foreground(theme.Error).Bold(true)
		case m.Submitted:
			style = style.Foreground(theme.TextDim)
		case i == m.Selected:
			style = style.BorderForeground(theme.Primary).Foreground(theme.Primary).Bold(true)
		}
		cells[i] = style.Render(label)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cells...)
}
