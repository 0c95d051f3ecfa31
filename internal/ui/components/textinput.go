package components

import (
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/mindsync-ai/mindsync/internal/ui/theme"
)

// TextInput is a single-line field in a rounded box. While locked, key
// presses are dropped but cursor blinks still flow through.
type TextInput struct {
	field  textinput.Model
	locked bool
}

// NewTextInput returns a focused field. A limit of zero leaves the length
// unbounded.
func NewTextInput(placeholder string, limit int) TextInput {
	f := textinput.New()
	f.Placeholder = placeholder
	f.CharLimit = max(limit, 0)
	f.Focus()
	return TextInput{field: f}
}

func (t TextInput) Init() tea.Cmd {
	return t.field.Focus()
}

func (t TextInput) Update(msg tea.Msg) (TextInput, tea.Cmd) {
	if _, isKey := msg.(tea.KeyPressMsg); isKey && t.locked {
		return t, nil
	}
	var cmd tea.Cmd
	t.field, cmd = t.field.Update(msg)
	return t, cmd
}

// View draws the box width columns wide, border included.
func (t TextInput) View(width int) string {
	const chrome = 4
	if width > chrome {
		t.field.SetWidth(width - chrome)
	}
	border := theme.Primary
	if t.locked {
		border = theme.Border
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(0, 1).
		Render(t.field.View())
}

func (t TextInput) Value() string      { return t.field.Value() }
func (t *TextInput) SetValue(s string) { t.field.SetValue(s) }
func (t *TextInput) Reset()            { t.field.Reset() }

// SetDisabled locks or unlocks typing.
func (t *TextInput) SetDisabled(locked bool) { t.locked = locked }

func (t TextInput) Disabled() bool { return t.locked }
