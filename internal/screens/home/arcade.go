package home

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/amcprep/internal/ui/components"
	"github.com/abhisek/amcprep/internal/ui/theme"
)

const titleFull = `╔═╗╔╦╗╔═╗  ╔═╗╦═╗╔═╗╔═╗
╠═╣║║║║    ╠═╝╠╦╝║╣ ╠═╝
╩ ╩╩ ╩╚═╝  ╩  ╩╚═╚═╝╩  `

const titleCompact = "A · M · C   P · R · E · P"

// buttonWidth is the fixed width for menu buttons.
const buttonWidth = 22

// renderTitle returns the styled title block or compact fallback.
func renderTitle(cw int, compact bool) string {
	style := lipgloss.NewStyle().
		Foreground(theme.Highlight).
		Bold(true)

	title := titleFull
	if compact {
		title = titleCompact
	}
	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(style.Render(title))
}

func renderGreeting(username string, cw int) string {
	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Foreground(theme.Text).
		Render(fmt.Sprintf("Welcome back, %s!", username))
}

// renderStatsBar renders level and accuracy in a bordered box matching content width.
func renderStatsBar(lvl, attempts, correct int, loaded bool, cw int, compact bool) string {
	levelStyle := lipgloss.NewStyle().Foreground(theme.Highlight).Bold(true)
	countStyle := lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true)
	accStyle := lipgloss.NewStyle().Foreground(theme.Accent).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(theme.TextDim)

	var stats string
	switch {
	case !loaded:
		stats = dimStyle.Render("Loading stats...")
	case compact:
		stats = fmt.Sprintf("%s %s %s",
			levelStyle.Render(fmt.Sprintf("L%d", lvl)),
			countStyle.Render(fmt.Sprintf("#%d", attempts)),
			accuracyText(correct, attempts, true, accStyle, dimStyle),
		)
	default:
		stats = fmt.Sprintf("%s  %s  %s",
			levelStyle.Render(fmt.Sprintf("★ LEVEL %d", lvl)),
			countStyle.Render(fmt.Sprintf("# %d ATTEMPTS", attempts)),
			accuracyText(correct, attempts, false, accStyle, dimStyle),
		)
	}

	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(theme.Secondary).
		Width(cw - 2).
		Align(lipgloss.Center).
		Padding(0, 1).
		Render(stats)
}

func accuracyText(correct, attempts int, compact bool, active, dim lipgloss.Style) string {
	if attempts == 0 {
		if compact {
			return dim.Render("--%")
		}
		return dim.Render("NO ATTEMPTS YET")
	}
	pct := float64(correct) / float64(attempts) * 100
	if compact {
		return active.Render(fmt.Sprintf("%.0f%%", pct))
	}
	return active.Render(fmt.Sprintf("%.0f%% ACCURACY", pct))
}

// renderMenu renders each menu item as a fixed-width button.
func renderMenu(m components.Menu, cw int) string {
	var buttons []string
	for i, item := range m.Items {
		buttons = append(buttons, components.MenuButton(item.Label, i == m.Selected, buttonWidth))
	}
	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(strings.Join(buttons, "\n"))
}

// renderMenuCompact renders menu items as simple text lines (no borders)
// for small terminals where bordered buttons would overflow.
func renderMenuCompact(m components.Menu, cw int) string {
	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(strings.TrimRight(m.View(), "\n"))
}

func renderWarning(text string, cw int) string {
	return lipgloss.NewStyle().
		Foreground(theme.Accent).
		Width(cw).
		Align(lipgloss.Center).
		Render(text)
}
