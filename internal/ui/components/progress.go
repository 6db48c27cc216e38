package components

import (
	"fmt"
	"image/color"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/amcprep/internal/ui/theme"
)

// ProgressBar displays a horizontal bar with a fixed-width label column.
type ProgressBar struct {
	Label      string
	LabelWidth int // 0 sizes the column to the label
	Percent    float64
	Detail     string // shown after the bar, e.g. "3/5"
	Width      int
}

// NewProgressBar creates a new progress bar.
func NewProgressBar(label string, percent float64, width int) ProgressBar {
	return ProgressBar{
		Label:   label,
		Percent: percent,
		Width:   width,
	}
}

// barColor shades the bar by how full it is.
func barColor(p float64) color.Color {
	switch {
	case p >= 0.75:
		return theme.Success
	case p >= 0.4:
		return theme.Accent
	default:
		return theme.Error
	}
}

// View renders the progress bar.
func (p ProgressBar) View() string {
	var b strings.Builder

	if p.Label != "" {
		label := lipgloss.NewStyle().Foreground(theme.Text)
		if p.LabelWidth > 0 {
			label = label.Width(p.LabelWidth)
		}
		b.WriteString(label.Render(p.Label))
		b.WriteString("  ")
	}

	suffix := fmt.Sprintf("  %3d%%", int(p.Percent*100+0.5))
	if p.Detail != "" {
		suffix += "  " + p.Detail
	}

	barWidth := p.Width - lipgloss.Width(b.String()) - lipgloss.Width(suffix)
	if barWidth < 4 {
		barWidth = 4
	}

	filled := int(float64(barWidth) * p.Percent)
	filled = max(0, min(filled, barWidth))

	b.WriteString(lipgloss.NewStyle().
		Background(barColor(p.Percent)).
		Render(strings.Repeat(" ", filled)))
	b.WriteString(lipgloss.NewStyle().
		Background(theme.Border).
		Render(strings.Repeat(" ", barWidth-filled)))
	b.WriteString(lipgloss.NewStyle().
		Foreground(theme.TextDim).
		Render(suffix))

	return b.String()
}
