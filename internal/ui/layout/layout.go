// Package layout draws the chrome shared by every wizard stage.
package layout

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/mindsync-ai/mindsync/internal/ui/theme"
)

// Smallest terminal the frame renders in.
const (
	MinWidth  = 80
	MinHeight = 24
)

// KeyHint is one "key description" pair in the footer.
type KeyHint struct {
	Key         string
	Description string
}

// Frame is the chrome around the active stage: a title bar with one dot
// per stage, an optional notice line and the key-hint footer.
type Frame struct {
	Title  string
	Step   int // 1-based; 0 hides the stage dots
	Stages int
	Hints  []KeyHint
	Notice string
}

// TooSmall reports whether width x height cannot hold a frame.
func TooSmall(width, height int) bool {
	return width < MinWidth || height < MinHeight
}

// SizeWarning fills width x height with a resize request.
func SizeWarning(width, height int) string {
	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Align(lipgloss.Center).
		Foreground(theme.Text).
		Render(fmt.Sprintf("Terminal too small!\n\nPlease resize to at\nleast %d x %d\n\nCurrent: %d x %d",
			MinWidth, MinHeight, width, height))
}

// Render draws the frame at width x height. body renders the stage into
// whatever space the chrome leaves.
func (f Frame) Render(width, height int, body func(width, height int) string) string {
	header := f.header(width)
	footer := f.footer(width)

	space := height - lipgloss.Height(header) - lipgloss.Height(footer)
	var notice string
	if f.Notice != "" {
		notice = Centered(theme.ErrorText.Render(f.Notice), width) + "\n"
		space--
	}
	space = max(space, 0)

	content := lipgloss.NewStyle().
		Width(width).
		Height(space + strings.Count(notice, "\n")).
		Render(notice + body(width, space))

	return header + "\n" + content + "\n" + footer
}

func (f Frame) header(width int) string {
	brand := lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render("  MindSync")
	title := lipgloss.NewStyle().Foreground(theme.Text).Render(f.Title)
	dots := f.dots()

	// Center the title in the bar; brand and dots take the edges.
	inner := max(width-4, 0)
	before := max((inner-lipgloss.Width(title))/2-lipgloss.Width(brand), 1)
	after := max(inner-lipgloss.Width(brand)-before-lipgloss.Width(title)-lipgloss.Width(dots), 1)

	return theme.Bar.Width(width).Render(
		brand + strings.Repeat(" ", before) + title + strings.Repeat(" ", after) + dots)
}

func (f Frame) dots() string {
	if f.Step <= 0 || f.Stages <= 0 {
		return ""
	}
	done := lipgloss.NewStyle().Foreground(theme.Secondary)
	todo := lipgloss.NewStyle().Foreground(theme.Border)

	var b strings.Builder
	for i := 1; i <= f.Stages; i++ {
		if i <= f.Step {
			b.WriteString(done.Render("●"))
		} else {
			b.WriteString(todo.Render("○"))
		}
	}
	b.WriteString(lipgloss.NewStyle().Foreground(theme.TextDim).Render(fmt.Sprintf(" %d/%d", f.Step, f.Stages)))
	return b.String()
}

func (f Frame) footer(width int) string {
	key := lipgloss.NewStyle().Foreground(theme.Text).Bold(true)
	desc := lipgloss.NewStyle().Foreground(theme.TextDim)

	parts := make([]string, len(f.Hints))
	for i, h := range f.Hints {
		parts[i] = key.Render(h.Key) + " " + desc.Render(h.Description)
	}
	return theme.Bar.Width(width).Render("  " + strings.Join(parts, "   "))
}

// Centered renders s centered on a line of the given width.
func Centered(s string, width int) string {
	return lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Render(s)
}
