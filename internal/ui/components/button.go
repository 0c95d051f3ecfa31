package components

import (
	"charm.land/lipgloss/v2"

	"github.com/mindsync-ai/mindsync/internal/ui/theme"
)

// Button is a single action that can be disabled until its screen's
// precondition holds, and focused for keyboard activation.
type Button struct {
	Label    string
	Enabled  bool
	Focused  bool
	Disabled string // hint shown while the button is disabled
}

// NewButton creates an unfocused button.
func NewButton(label string, enabled bool) Button {
	return Button{Label: label, Enabled: enabled}
}

// Pressed reports whether key activates the button.
func (b Button) Pressed(key string) bool {
	return b.Enabled && b.Focused && (key == "enter" || key == "space")
}

// View renders the button. A focused, enabled button gets an accent border.
func (b Button) View() string {
	label := "▸ " + b.Label
	if !b.Enabled {
		out := theme.ButtonInactive.Render(label)
		if b.Disabled != "" {
			out += "\n" + theme.Hint.Render(b.Disabled)
		}
		return out
	}
	out := theme.ButtonActive.Render(label)
	if b.Focused {
		out = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Accent).
			Render(out)
	}
	return out
}
