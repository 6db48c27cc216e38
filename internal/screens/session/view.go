package session

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/amcprep/internal/imaging"
	sess "github.com/abhisek/amcprep/internal/session"
	"github.com/abhisek/amcprep/internal/ui/theme"
)

// renderQuestionView renders the problem, the choices and, after an
// answer, the feedback line.
func (s *SessionScreen) renderQuestionView(width, height int) string {
	state := s.state
	p, ok := state.CurrentProblem()
	if !ok {
		return renderLoading(width, height)
	}

	var b strings.Builder

	infoLeft := lipgloss.NewStyle().
		Foreground(theme.Secondary).
		Bold(true).
		Render("  " + p.Label())

	category := p.Category
	if category == "" {
		category = sess.Uncategorized
	}
	questionSecs := 0
	if state.Phase == sess.PhaseActive {
		questionSecs = int(s.now().Sub(state.QuestionStartTime).Seconds())
	} else if r := state.LastResult(); r != nil {
		questionSecs = r.AnswerTime
	}
	infoRight := lipgloss.NewStyle().
		Foreground(theme.TextDim).
		Render(fmt.Sprintf("%s   Q %d/%d  %s %d   %s %s / %s  ",
			category,
			state.Current+1, state.Plan.Len(),
			lipgloss.NewStyle().Foreground(theme.Success).Render("✓"),
			state.Correct(),
			lipgloss.NewStyle().Foreground(theme.Accent).Render("T"),
			formatClock(questionSecs),
			formatClock(int(state.Elapsed.Seconds())),
		))

	infoLine := infoLeft
	if pad := width - lipgloss.Width(infoLeft) - lipgloss.Width(infoRight); pad > 0 {
		infoLine += strings.Repeat(" ", pad) + infoRight
	}
	b.WriteString(infoLine)
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", max(width-4, 0))))
	b.WriteString("\n")

	// Choices (3 lines) and feedback (2 lines) sit below the image.
	imageRows := max(height-9, 4)
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, s.renderImage(width-4, imageRows)))
	b.WriteString("\n")

	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, s.choices.View()))
	b.WriteString("\n")

	if state.Phase == sess.PhaseFeedback {
		b.WriteString(s.renderFeedback(width))
	}

	return b.String()
}

// renderImage returns the half-block rendering of the current image,
// reusing the last rendering when the size has not changed.
func (s *SessionScreen) renderImage(cols, rows int) string {
	if s.imageIndex != s.state.Current {
		return lipgloss.NewStyle().Foreground(theme.TextDim).Render("Loading problem...")
	}
	if s.imageErr != nil {
		p, _ := s.state.CurrentProblem()
		return theme.ErrorText.Render(fmt.Sprintf("Could not load %s: %v", p.ImageFile(), s.imageErr))
	}
	size := [2]int{cols, rows}
	if s.rendered == "" || s.renderedFor != size {
		s.rendered = imaging.RenderHalfBlocks(s.image, cols, rows)
		s.renderedFor = size
	}
	return s.rendered
}

// renderFeedback renders the result of the last answer.
func (s *SessionScreen) renderFeedback(width int) string {
	r := s.state.LastResult()
	if r == nil {
		return ""
	}

	var line string
	if r.Correct {
		line = theme.Correct.Render("Correct!")
	} else {
		line = theme.Incorrect.Render("Not quite.") + " " +
			lipgloss.NewStyle().Foreground(theme.Text).Render(fmt.Sprintf("The answer is %s.", r.Problem.Answer))
	}
	line += lipgloss.NewStyle().Foreground(theme.TextDim).Render(fmt.Sprintf("  (%ds)", r.AnswerTime))

	hint := "Enter: next problem   E: explain"
	if s.state.Current+1 >= s.state.Plan.Len() {
		hint = "Enter: see summary   E: explain"
	}

	var b strings.Builder
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, line))
	b.WriteString("\n")
	if s.saveErr != "" {
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, theme.ErrorText.Render(s.saveErr)))
	} else {
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, theme.Hint.Render(hint)))
	}
	return b.String()
}

// renderQuitConfirm renders the quit confirmation dialog.
func renderQuitConfirm(width, height int) string {
	var b strings.Builder
	b.WriteString("\n\n\n")

	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Text).
		Bold(true).
		Render("End session early?"))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.TextDim).
		Render("Answered problems are already saved."))
	b.WriteString("\n\n")

	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Success).
		Render("[Y] Yes, end session"))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Primary).
		Render("[N] No, keep going"))

	return b.String()
}

// renderLoading renders the loading state.
func renderLoading(width, height int) string {
	return lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.TextDim).
		Render("\n\n\n  Preparing your session...")
}

// renderError renders an error message.
func renderError(width, height int, errMsg string) string {
	return lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Error).
		Render(fmt.Sprintf("\n\n\n  %s\n\n  Press any key to go back.", errMsg))
}

func formatClock(secs int) string {
	if secs < 0 {
		secs = 0
	}
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}
