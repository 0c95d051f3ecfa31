package router

import (
	tea "charm.land/bubbletea/v2"

	"github.com/mindsync-ai/mindsync/internal/screen"
)

// ReplaceScreenMsg requests the router to swap the mounted screen.
type ReplaceScreenMsg struct {
	Screen screen.Screen
}

// Router hosts exactly one mounted screen at a time.
type Router struct {
	active screen.Screen
}

// New creates a Router with nothing mounted.
func New() *Router {
	return &Router{}
}

// Replace tears down the mounted screen, mounts s and calls its Init().
func (r *Router) Replace(s screen.Screen) tea.Cmd {
	r.teardown()
	r.active = s
	if s == nil {
		return nil
	}
	return s.Init()
}

// Close tears down the mounted screen and leaves the router empty.
func (r *Router) Close() {
	r.teardown()
	r.active = nil
}

func (r *Router) teardown() {
	if td, ok := r.active.(screen.Teardown); ok {
		td.Teardown()
	}
}

// Active returns the mounted screen, or nil.
func (r *Router) Active() screen.Screen {
	return r.active
}

// Update forwards a message to the mounted screen and handles
// ReplaceScreenMsg.
func (r *Router) Update(msg tea.Msg) tea.Cmd {
	if msg, ok := msg.(ReplaceScreenMsg); ok {
		return r.Replace(msg.Screen)
	}

	if r.active == nil {
		return nil
	}

	updated, cmd := r.active.Update(msg)
	r.active = updated
	return cmd
}

// View renders the mounted screen.
func (r *Router) View(width, height int) string {
	if r.active == nil {
		return ""
	}
	return r.active.View(width, height)
}
