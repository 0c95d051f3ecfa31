package components

import (
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/mindsync-ai/mindsync/internal/ui/theme"
)

type choiceState int

const (
	choosing choiceState = iota
	locked
	revealed
)

// MultiChoice asks one question with lettered options. It records the
// learner's pick and, once the caller has graded it, shows the result.
type MultiChoice struct {
	Question string
	Options  []string

	cursor  int
	picked  int
	correct int
	state   choiceState
}

func NewMultiChoice(question string, options []string) MultiChoice {
	return MultiChoice{Question: question, Options: options, picked: -1, correct: -1}
}

// Update moves the cursor and locks in a pick on enter, a digit or the
// option's letter. Input is ignored once a pick is locked.
func (m MultiChoice) Update(msg tea.Msg) (MultiChoice, tea.Cmd) {
	key, ok := msg.(tea.KeyPressMsg)
	if !ok || m.state != choosing || len(m.Options) == 0 {
		return m, nil
	}

	k := key.String()
	switch k {
	case "up", "k":
		m.cursor = max(m.cursor-1, 0)
	case "down", "j":
		m.cursor = min(m.cursor+1, len(m.Options)-1)
	case "enter":
		m.lock(m.cursor)
	default:
		if i, ok := optionIndex(k); ok && i < len(m.Options) {
			m.lock(i)
		}
	}
	return m, nil
}

// optionIndex maps "1".."9" and "a".."i" to a zero-based option index.
func optionIndex(k string) (int, bool) {
	if len(k) != 1 {
		return 0, false
	}
	switch c := k[0]; {
	case c >= '1' && c <= '9':
		return int(c - '1'), true
	case c >= 'a' && c <= 'i':
		return int(c - 'a'), true
	}
	return 0, false
}

func (m *MultiChoice) lock(i int) {
	m.cursor, m.picked = i, i
	m.state = locked
}

// Chosen returns the locked-in option text.
func (m MultiChoice) Chosen() (string, bool) {
	if m.state == choosing || m.picked < 0 {
		return "", false
	}
	return m.Options[m.picked], true
}

// Reveal shows chosen against correct. Either may be absent from Options.
func (m *MultiChoice) Reveal(chosen, correct string) {
	m.state = revealed
	m.picked = indexOf(m.Options, chosen)
	m.correct = indexOf(m.Options, correct)
	if m.picked >= 0 {
		m.cursor = m.picked
	}
}

func indexOf(opts []string, s string) int {
	for i, o := range opts {
		if o == s {
			return i
		}
	}
	return -1
}

func (m MultiChoice) View() string {
	var b strings.Builder
	b.WriteString(theme.Body.Bold(true).Render(m.Question))
	b.WriteString("\n")

	for i, opt := range m.Options {
		pointer := "  "
		if m.state == choosing && i == m.cursor {
			pointer = "› "
		}
		line := pointer + string(rune('A'+i%26)) + ")  " + opt

		b.WriteString("\n")
		switch {
		case m.state == revealed && i == m.correct:
			b.WriteString(theme.Correct.Render(line + "  ✓"))
		case m.state == revealed && i == m.picked:
			b.WriteString(theme.Incorrect.Render(line + "  ✗"))
		case m.state == revealed:
			b.WriteString(theme.Hint.Render(line))
		case i == m.cursor:
			b.WriteString(theme.Selected.Render(line))
		default:
			b.WriteString(theme.Unselected.Render(line))
		}
	}
	return b.String()
}
