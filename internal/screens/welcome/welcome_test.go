package welcome

import (
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mindsync-ai/mindsync/internal/router"
	"github.com/mindsync-ai/mindsync/internal/screen"
)

type uploadStub struct{}

func (uploadStub) Init() tea.Cmd                             { return nil }
func (u uploadStub) Update(tea.Msg) (screen.Screen, tea.Cmd) { return u, nil }
func (uploadStub) View(int, int) string                      { return "upload" }
func (uploadStub) Title() string                             { return "Upload" }

func newSplash() (*WelcomeScreen, *int) {
	built := 0
	return New(func() screen.Screen {
		built++
		return uploadStub{}
	}), &built
}

func frames(w *WelcomeScreen, n int) tea.Cmd {
	var cmd tea.Cmd
	for range n {
		_, cmd = w.Update(frameMsg{})
	}
	return cmd
}

func TestTaglineTypesOut(t *testing.T) {
	w, _ := newSplash()

	frames(w, 4)
	view := ansi.Strip(w.View(100, 30))
	assert.Contains(t, view, "Read")
	assert.NotContains(t, view, "Remember")
	assert.NotContains(t, view, prompt)

	frames(w, len(tagline))
	assert.True(t, w.Typed())
	view = ansi.Strip(w.View(100, 30))
	assert.Contains(t, view, tagline)
	assert.Contains(t, view, prompt)
}

func TestFramesStopWhenTyped(t *testing.T) {
	w, _ := newSplash()
	frames(w, len([]rune(tagline)))
	assert.Nil(t, frames(w, 1))
}

func TestKeyHandsOverOnce(t *testing.T) {
	w, built := newSplash()
	frames(w, 2)

	_, cmd := w.Update(tea.KeyPressMsg{Code: ' '})
	require.NotNil(t, cmd)
	msg, ok := cmd().(router.ReplaceScreenMsg)
	require.True(t, ok)
	assert.Equal(t, "Upload", msg.Screen.Title())

	_, cmd = w.Update(tea.KeyPressMsg{Code: 'x'})
	assert.Nil(t, cmd)
	assert.Nil(t, frames(w, 1))
	assert.Equal(t, 1, *built)
}

func TestNoHandOverWithoutKey(t *testing.T) {
	w, built := newSplash()
	frames(w, 100)
	assert.Zero(t, *built)
}

func TestWordmarkFallsBackWhenNarrow(t *testing.T) {
	w, _ := newSplash()
	assert.Contains(t, w.View(40, 20), compactWordmark)
	assert.NotContains(t, w.View(120, 20), compactWordmark)
	assert.Empty(t, w.Title())
}
