package components

import (
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/mindsync-ai/mindsync/internal/ui/theme"
)

// Option is one row of a RadioList.
type Option struct {
	Label string
	Hint  string
}

// RadioList is a vertical single-choice list. Cursor is the highlighted
// row; Marked is the row the user picked, or -1.
type RadioList struct {
	Options []Option
	Cursor  int
	Marked  int
}

func NewRadioList(opts ...Option) RadioList {
	return RadioList{Options: opts, Marked: -1}
}

// Update moves the cursor. Picking a row is left to the caller so the
// owning screen decides which keys confirm.
func (r RadioList) Update(msg tea.Msg) RadioList {
	key, ok := msg.(tea.KeyPressMsg)
	if !ok || len(r.Options) == 0 {
		return r
	}
	switch key.String() {
	case "up", "k":
		r.Cursor = max(r.Cursor-1, 0)
	case "down", "j":
		r.Cursor = min(r.Cursor+1, len(r.Options)-1)
	case "home", "g":
		r.Cursor = 0
	case "end", "G":
		r.Cursor = len(r.Options) - 1
	}
	return r
}

// Mark picks row i. Out-of-range indexes are ignored.
func (r *RadioList) Mark(i int) bool {
	if i < 0 || i >= len(r.Options) {
		return false
	}
	r.Cursor, r.Marked = i, i
	return true
}

func (r RadioList) View() string {
	rows := make([]string, len(r.Options))
	for i, o := range r.Options {
		radio := "○"
		if i == r.Marked {
			radio = "◉"
		}
		style := theme.Unselected
		pointer := "  "
		if i == r.Cursor {
			style = theme.Selected
			pointer = "› "
		}
		row := style.Render(pointer + radio + " " + o.Label)
		if o.Hint != "" {
			row += "  " + theme.Hint.Render(o.Hint)
		}
		rows[i] = row
	}
	return strings.Join(rows, "\n")
}
