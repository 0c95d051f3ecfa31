package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/mindsync-ai/mindsync/internal/ui/theme"
)

// StepBar shows how far through a fixed number of steps the learner is,
// e.g. the current question of a quiz.
type StepBar struct {
	Current int // 1-based; 0 means not started
	Total   int
	Width   int
	Counter bool // append "n/total"
}

// Fraction returns Current/Total clamped to [0, 1].
func (s StepBar) Fraction() float64 {
	if s.Total <= 0 {
		return 0
	}
	return min(max(float64(s.Current)/float64(s.Total), 0), 1)
}

func (s StepBar) View() string {
	counter := ""
	if s.Counter {
		counter = fmt.Sprintf("  %d/%d", max(s.Current, 0), max(s.Total, 0))
	}
	track := max(s.Width-lipgloss.Width(counter), 4)
	filled := int(float64(track) * s.Fraction())

	out := theme.ProgressFilled.Render(strings.Repeat(" ", filled)) +
		theme.ProgressEmpty.Render(strings.Repeat(" ", track-filled))
	if counter != "" {
		out += lipgloss.NewStyle().Foreground(theme.TextDim).Render(counter)
	}
	return out
}
