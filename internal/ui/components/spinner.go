package components

import (
	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/mindsync-ai/mindsync/internal/ui/theme"
)

// Loading is a spinner with a label, shown while a request is pending.
type Loading struct {
	Label   string
	spinner spinner.Model
}

// NewLoading creates a stopped loading indicator.
func NewLoading(label string) Loading {
	return Loading{
		Label: label,
		spinner: spinner.New(
			spinner.WithSpinner(spinner.Dot),
			spinner.WithStyle(lipgloss.NewStyle().Foreground(theme.Secondary)),
		),
	}
}

// Tick starts the animation.
func (l Loading) Tick() tea.Cmd {
	return l.spinner.Tick
}

// Update advances the animation. Ticks addressed to other spinners are
// ignored.
func (l Loading) Update(msg tea.Msg) (Loading, tea.Cmd) {
	var cmd tea.Cmd
	l.spinner, cmd = l.spinner.Update(msg)
	return l, cmd
}

// View renders the spinner and label.
func (l Loading) View() string {
	return l.spinner.View() + " " + lipgloss.NewStyle().Foreground(theme.TextDim).Render(l.Label)
}
