// Package theme holds the colors and lipgloss styles shared by every
// screen.
package theme

import (
	"image/color"

	"charm.land/lipgloss/v2"
)

// Palette. Muted ink-on-paper tones with amber reserved for vocabulary.
var (
	Primary   = lipgloss.Color("#7C9CF5")
	Secondary = lipgloss.Color("#5EB8A8")
	Accent    = lipgloss.Color("#F2B84B")
	Success   = lipgloss.Color("#6CC08B")
	Error     = lipgloss.Color("#E5737A")
	Text      = lipgloss.Color("#E6E1D6")
	TextDim   = lipgloss.Color("#8E8A80")
	BgDark    = lipgloss.Color("#1B1D23")
	BgCard    = lipgloss.Color("#262932")
	Border    = lipgloss.Color("#3B3F4A")
)

func fg(c color.Color) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(c)
}

func chip(bg, text color.Color) lipgloss.Style {
	return fg(text).Background(bg).Padding(0, 1)
}

var (
	Title     = fg(Primary).Bold(true).Align(lipgloss.Center)
	Body      = fg(Text)
	Hint      = fg(TextDim).Italic(true)
	ErrorText = fg(Error)

	// Bar frames the header and the key-hint footer.
	Bar = lipgloss.NewStyle().
		Background(BgCard).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border)

	Selected   = fg(Primary).Bold(true)
	Unselected = fg(Text)
	Correct    = fg(Success).Bold(true)
	Incorrect  = fg(Error).Bold(true)
)

// Document view.
var (
	// Highlight marks an unfamiliar word in the running text.
	Highlight = fg(Accent).Underline(true)

	// Focus marks every occurrence of the word under the cursor.
	Focus = fg(BgDark).Background(Accent).Bold(true)

	Tooltip = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Secondary).
		Padding(0, 1)
)

var (
	UserBubble      = chip(Primary, BgDark)
	AssistantBubble = chip(BgCard, Text)
	SystemLine      = Hint
)

var (
	ProgressFilled = lipgloss.NewStyle().Background(Secondary)
	ProgressEmpty  = lipgloss.NewStyle().Background(Border)

	ButtonActive   = chip(Primary, BgDark).Bold(true).Padding(0, 2)
	ButtonInactive = chip(BgCard, TextDim).Padding(0, 2)
)
