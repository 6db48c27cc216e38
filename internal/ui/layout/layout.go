// Package layout draws the frame around every screen: a header bar with
// the signed-in learner, the screen content and a footer of key hints.
package layout

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/amcprep/internal/ui/theme"
)

// Smallest terminal the practice screen can lay out a problem image in.
const (
	MinWidth  = 80
	MinHeight = 24
)

// HeaderHeight and FooterHeight are the rendered heights of the bars,
// borders included.
const (
	HeaderHeight = 3
	FooterHeight = 3
)

const appName = "AMC Prep"

// KeyHint is one key binding shown in the footer.
type KeyHint struct {
	Key         string
	Description string
}

var bar = lipgloss.NewStyle().
	Background(theme.BgCard).
	Border(lipgloss.RoundedBorder()).
	BorderForeground(theme.Border)

// IsTooSmall reports whether the terminal is below MinWidth x MinHeight.
func IsTooSmall(width, height int) bool {
	return width < MinWidth || height < MinHeight
}

// ContentHeight is what remains of totalHeight between the bars.
func ContentHeight(totalHeight int) int {
	return max(totalHeight-HeaderHeight-FooterHeight, 0)
}

// RenderMinSizeMessage asks the user to enlarge the terminal.
func RenderMinSizeMessage(width, height int) string {
	return lipgloss.NewStyle().
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.Text).
		Width(width).
		Height(height).
		Render(fmt.Sprintf(
			"Terminal too small!\n\nPlease resize to at least %d x %d\n\nCurrent: %d x %d",
			MinWidth, MinHeight, width, height,
		))
}

// RenderHeader draws the app name on the left, title centered and the
// signed-in user with their level on the right. username is empty before
// login.
func RenderHeader(title, username string, level int, width int) string {
	left := lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render("  " + appName)
	center := lipgloss.NewStyle().Foreground(theme.Text).Render(title)

	var right string
	if username != "" {
		right = lipgloss.NewStyle().Foreground(theme.Text).Render(username) + "   " +
			lipgloss.NewStyle().Foreground(theme.Accent).Render(fmt.Sprintf("Level %d", level)) + "  "
	}

	inner := max(width-4, 0)
	leftGap := max((inner-lipgloss.Width(center))/2-lipgloss.Width(left), 1)
	rightGap := max(inner-lipgloss.Width(left)-leftGap-lipgloss.Width(center)-lipgloss.Width(right), 1)

	line := left + strings.Repeat(" ", leftGap) + center + strings.Repeat(" ", rightGap) + right
	return bar.Width(width).Render(line)
}

// RenderFooter draws the key hints. Hints that do not fit in width are
// dropped from the end.
func RenderFooter(hints []KeyHint, width int) string {
	keyStyle := lipgloss.NewStyle().Foreground(theme.Text).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(theme.TextDim)

	line := " "
	for _, h := range hints {
		part := "  " + keyStyle.Render(h.Key) + " " + descStyle.Render(h.Description)
		if width > 0 && lipgloss.Width(line+part) > width-4 {
			break
		}
		line += part
	}
	return bar.Width(width).Render(line)
}

// RenderFrame stacks header, content and footer, sizing the content to
// fill the rest of height.
func RenderFrame(header, content, footer string, width, height int) string {
	body := lipgloss.NewStyle().
		Width(width).
		Height(max(height-lipgloss.Height(header)-lipgloss.Height(footer), 0)).
		Render(content)
	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}
