// Package welcome is the splash shown before the upload stage. It draws the
// wordmark, types out the tagline and waits for any key.
package welcome

import (
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/mindsync-ai/mindsync/internal/router"
	"github.com/mindsync-ai/mindsync/internal/screen"
	"github.com/mindsync-ai/mindsync/internal/ui/theme"
)

const (
	frameRate = 60 * time.Millisecond
	tagline   = "Read deeper. Remember more."
	prompt    = "press any key to load a document"

	// wideBanner is the narrowest terminal that fits wordmark.
	wideBanner = 72
)

const wordmark = ` ███╗   ███╗██╗███╗   ██╗██████╗ ███████╗██╗   ██╗███╗   ██╗ ██████╗
 ████╗ ████║██║████╗  ██║██╔══██╗██╔════╝╚██╗ ██╔╝████╗  ██║██╔════╝
 ██╔████╔██║██║██╔██╗ ██║██║  ██║███████╗ ╚████╔╝ ██╔██╗ ██║██║
 ██║╚██╔╝██║██║██║╚██╗██║██║  ██║╚════██║  ╚██╔╝  ██║╚██╗██║██║
 ██║ ╚═╝ ██║██║██║ ╚████║██████╔╝███████║   ██║   ██║ ╚████║╚██████╗
 ╚═╝     ╚═╝╚═╝╚═╝  ╚═══╝╚═════╝ ╚══════╝   ╚═╝   ╚═╝  ╚═══╝ ╚═════╝`

const compactWordmark = "M I N D S Y N C"

type frameMsg struct{}

// WelcomeScreen reveals the tagline one rune per frame. Frames stop once
// the tagline is complete or the screen has handed over.
type WelcomeScreen struct {
	next   func() screen.Screen
	shown  int
	done   bool
	runes  []rune
	cursor bool
}

var _ screen.Screen = (*WelcomeScreen)(nil)

// New returns a splash that mounts next() on the first key press.
func New(next func() screen.Screen) *WelcomeScreen {
	return &WelcomeScreen{next: next, runes: []rune(tagline)}
}

func (w *WelcomeScreen) Title() string { return "" }

func (w *WelcomeScreen) Init() tea.Cmd { return nextFrame() }

func nextFrame() tea.Cmd {
	return tea.Tick(frameRate, func(time.Time) tea.Msg { return frameMsg{} })
}

// Typed reports whether the whole tagline is on screen.
func (w *WelcomeScreen) Typed() bool {
	return w.shown >= len(w.runes)
}

func (w *WelcomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg.(type) {
	case frameMsg:
		if w.done || w.Typed() {
			return w, nil
		}
		w.shown++
		w.cursor = !w.cursor
		return w, nextFrame()

	case tea.KeyPressMsg:
		if w.done {
			return w, nil
		}
		w.done = true
		s := w.next()
		return w, func() tea.Msg { return router.ReplaceScreenMsg{Screen: s} }
	}
	return w, nil
}

func (w *WelcomeScreen) View(width, height int) string {
	mark := compactWordmark
	if width >= wideBanner {
		mark = wordmark
	}

	typed := string(w.runes[:min(w.shown, len(w.runes))])
	if !w.Typed() && w.cursor {
		typed += "▌"
	}

	lines := []string{
		lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render(mark),
		"",
		lipgloss.NewStyle().Foreground(theme.Accent).Bold(true).Render(typed),
	}
	if w.Typed() {
		lines = append(lines, "", theme.Hint.Render(prompt))
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, strings.Join(lines, "\n"))
}
