// Package screen defines the contract between the router and the wizard
// stages.
package screen

import (
	tea "charm.land/bubbletea/v2"

	"github.com/mindsync-ai/mindsync/internal/ui/layout"
)

// Screen is one mounted stage. View receives the body area left over after
// the frame draws its header and footer.
type Screen interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (Screen, tea.Cmd)
	View(width, height int) string
	Title() string
}

// KeyHintProvider lets a screen replace the default footer hints.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}

// Teardown is called when the router unmounts a screen. Screens that own
// in-flight requests or a recorder release them here.
type Teardown interface {
	Teardown()
}
