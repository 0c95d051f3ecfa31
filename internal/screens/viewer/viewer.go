// Package viewer is the reading stage: the document text with unfamiliar
// words highlighted and their definitions at hand.
package viewer

import (
	"context"
	"fmt"
	"strings"

	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"go.uber.org/zap"

	"github.com/mindsync-ai/mindsync/internal/api"
	"github.com/mindsync-ai/mindsync/internal/highlight"
	"github.com/mindsync-ai/mindsync/internal/screen"
	"github.com/mindsync-ai/mindsync/internal/ui/components"
	"github.com/mindsync-ai/mindsync/internal/ui/layout"
	"github.com/mindsync-ai/mindsync/internal/ui/theme"
	"github.com/mindsync-ai/mindsync/internal/wizard"
)

const sidebarWidth = 34

// Analyzer finds unfamiliar words and records words the reader knows.
type Analyzer interface {
	Analyze(ctx context.Context, text string) ([]api.UnfamiliarWord, error)
	MarkKnown(ctx context.Context, word string) error
}

type analyzeDoneMsg struct {
	Words []api.UnfamiliarWord
	Err   error
}

type markKnownDoneMsg struct {
	Word string
	Err  error
}

// ViewerScreen implements screen.Screen for the annotated viewer stage.
type ViewerScreen struct {
	svc      Analyzer
	logger   *zap.Logger
	ctx      context.Context
	cancel   context.CancelFunc
	doc      wizard.Document
	words    []api.UnfamiliarWord
	segments []highlight.Segment
	cursor   int
	loading  bool
	marking  string // word with a mark-known request in flight
	notice   string
	spinner  components.Loading
	vp       viewport.Model
	done     bool
}

var _ screen.Screen = (*ViewerScreen)(nil)
var _ screen.KeyHintProvider = (*ViewerScreen)(nil)
var _ screen.Teardown = (*ViewerScreen)(nil)

// New creates the viewer stage for doc.
func New(ctx context.Context, svc Analyzer, doc wizard.Document, logger *zap.Logger) *ViewerScreen {
	ctx, cancel := context.WithCancel(ctx)
	return &ViewerScreen{
		svc:      svc,
		logger:   logger.With(zap.String("stage", string(wizard.StageView))),
		ctx:      ctx,
		cancel:   cancel,
		doc:      doc,
		segments: highlight.Tokenize(doc.Text, nil),
		loading:  true,
		spinner:  components.NewLoading("Finding unfamiliar words..."),
		vp:       viewport.New(),
	}
}

func (s *ViewerScreen) Init() tea.Cmd {
	ctx, svc, text := s.ctx, s.svc, s.doc.Text
	return tea.Batch(s.spinner.Tick(), func() tea.Msg {
		words, err := svc.Analyze(ctx, text)
		return analyzeDoneMsg{Words: words, Err: err}
	})
}

func (s *ViewerScreen) Title() string {
	if s.doc.Name != "" {
		return wizard.StageView.Label() + ": " + s.doc.Name
	}
	return wizard.StageView.Label()
}

func (s *ViewerScreen) KeyHints() []layout.KeyHint {
	if s.loading {
		return []layout.KeyHint{
			{Key: "PgUp/PgDn", Description: "Scroll"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	}
	hints := []layout.KeyHint{
		{Key: "↑↓", Description: "Word"},
		{Key: "PgUp/PgDn", Description: "Scroll"},
	}
	if len(s.words) > 0 {
		hints = append(hints, layout.KeyHint{Key: "K", Description: "I know this"})
	}
	return append(hints,
		layout.KeyHint{Key: "Enter", Description: "Continue to quiz"},
		layout.KeyHint{Key: "Ctrl+C", Description: "Quit"},
	)
}

// Teardown aborts pending requests.
func (s *ViewerScreen) Teardown() {
	s.cancel()
}

// Words returns the current unfamiliar-word list.
func (s *ViewerScreen) Words() []api.UnfamiliarWord {
	return s.words
}

func (s *ViewerScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case analyzeDoneMsg:
		return s.handleAnalyzed(msg)

	case markKnownDoneMsg:
		return s.handleMarked(msg)

	case tea.KeyPressMsg:
		return s.handleKey(msg)
	}

	if s.loading {
		var cmd tea.Cmd
		s.spinner, cmd = s.spinner.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *ViewerScreen) handleKey(msg tea.KeyPressMsg) (screen.Screen, tea.Cmd) {
	switch msg.String() {
	case "pgdown", "space":
		s.vp.PageDown()
		return s, nil
	case "pgup":
		s.vp.PageUp()
		return s, nil
	}

	if s.loading {
		return s, nil
	}

	switch msg.String() {
	case "up":
		if s.cursor > 0 {
			s.cursor--
		}
	case "down":
		if s.cursor < len(s.words)-1 {
			s.cursor++
		}
	case "k", "K":
		return s.markKnown()
	case "enter":
		if s.done {
			return s, nil
		}
		s.done = true
		return s, func() tea.Msg { return wizard.ViewCompleted{} }
	}
	return s, nil
}

func (s *ViewerScreen) handleAnalyzed(msg analyzeDoneMsg) (screen.Screen, tea.Cmd) {
	s.loading = false
	if msg.Err != nil {
		s.logger.Warn("analysis failed", zap.Error(msg.Err))
		s.notice = "Vocabulary analysis is unavailable. " + api.UserMessage(msg.Err)
		return s, nil
	}
	s.logger.Info("analysis done", zap.Int("words", len(msg.Words)))
	s.setWords(msg.Words)
	return s, nil
}

func (s *ViewerScreen) markKnown() (screen.Screen, tea.Cmd) {
	if len(s.words) == 0 || s.marking != "" {
		return s, nil
	}
	word := s.words[s.cursor].Word
	s.marking = word
	s.notice = ""

	ctx, svc := s.ctx, s.svc
	return s, func() tea.Msg {
		return markKnownDoneMsg{Word: word, Err: svc.MarkKnown(ctx, word)}
	}
}

func (s *ViewerScreen) handleMarked(msg markKnownDoneMsg) (screen.Screen, tea.Cmd) {
	s.marking = ""
	if msg.Err != nil {
		s.logger.Warn("mark known failed", zap.String("word", msg.Word), zap.Error(msg.Err))
		s.notice = fmt.Sprintf("Could not mark %q as known.", msg.Word)
		return s, nil
	}
	s.logger.Info("word marked known", zap.String("word", msg.Word))
	s.setWords(highlight.RemoveWord(s.words, msg.Word))
	return s, nil
}

// setWords replaces the word list and re-tokenizes the text from it.
func (s *ViewerScreen) setWords(words []api.UnfamiliarWord) {
	s.words = words
	s.segments = highlight.Tokenize(s.doc.Text, words)
	if s.cursor >= len(words) {
		s.cursor = max(len(words)-1, 0)
	}
}

func (s *ViewerScreen) selectedWord() (api.UnfamiliarWord, bool) {
	if s.cursor < 0 || s.cursor >= len(s.words) {
		return api.UnfamiliarWord{}, false
	}
	return s.words[s.cursor], true
}

func (s *ViewerScreen) View(width, height int) string {
	textWidth := width - sidebarWidth - 3
	if textWidth < 20 {
		textWidth = 20
	}

	s.vp.SetWidth(textWidth)
	s.vp.SetHeight(max(height-1, 1))
	s.vp.SetContent(s.renderText(textWidth - 2))

	text := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Render(s.vp.View())

	return lipgloss.JoinHorizontal(lipgloss.Top, text, " ", s.renderSidebar(height))
}

// renderText styles the segments and wraps them to width. The focused
// word is glossed with its definition where it first appears.
func (s *ViewerScreen) renderText(width int) string {
	focus := ""
	if w, ok := s.selectedWord(); ok {
		focus = w.Word
	}

	var b strings.Builder
	glossed := false
	for _, seg := range s.segments {
		switch {
		case seg.Highlighted && seg.Word == focus:
			b.WriteString(theme.Focus.Render(seg.Text))
			// The first focused occurrence carries its definition inline.
			if !glossed && seg.Tooltip != "" {
				b.WriteString(theme.Hint.Render(" [" + seg.Tooltip + "]"))
				glossed = true
			}
		case seg.Highlighted:
			b.WriteString(theme.Highlight.Render(seg.Text))
		default:
			b.WriteString(theme.Body.Render(seg.Text))
		}
	}
	return lipgloss.NewStyle().Width(width).Render(b.String())
}

func (s *ViewerScreen) renderSidebar(height int) string {
	inner := sidebarWidth - 4
	var b strings.Builder

	switch {
	case s.loading:
		b.WriteString(s.spinner.View())
		b.WriteString("\n")
	case len(s.words) == 0 && s.notice == "":
		b.WriteString(theme.Hint.Render("No unfamiliar words found."))
		b.WriteString("\n")
	case len(s.words) > 0:
		b.WriteString(theme.Title.Render(fmt.Sprintf("Unfamiliar words (%d)", len(s.words))))
		b.WriteString("\n\n")
		b.WriteString(s.renderWordList(max(height/2-4, 3)))
		if w, ok := s.selectedWord(); ok {
			b.WriteString("\n")
			b.WriteString(s.renderTooltip(w, inner))
		}
	}

	if s.notice != "" {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Width(inner).Render(theme.Hint.Render(s.notice)))
	}

	return lipgloss.NewStyle().
		Width(sidebarWidth).
		Padding(0, 1).
		Render(b.String())
}

// renderWordList shows a window of the list around the cursor.
func (s *ViewerScreen) renderWordList(rows int) string {
	start := 0
	if s.cursor >= rows {
		start = s.cursor - rows + 1
	}
	end := min(start+rows, len(s.words))

	var b strings.Builder
	for i := start; i < end; i++ {
		w := s.words[i]
		label := fmt.Sprintf("%s (%d)", w.Word, highlight.Occurrences(s.segments, w.Word))
		if w.Word == s.marking {
			label += " …"
		}
		if i == s.cursor {
			b.WriteString(theme.Selected.Render("▸ " + label))
		} else {
			b.WriteString(theme.Unselected.Render("  " + label))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (s *ViewerScreen) renderTooltip(w api.UnfamiliarWord, width int) string {
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Accent).Bold(true).Render(w.Word))
	b.WriteString("\n")
	b.WriteString(w.Definition)
	if w.Example != "" {
		b.WriteString("\n\n")
		b.WriteString(theme.Hint.Render(w.Example))
	}
	return theme.Tooltip.Width(width).Render(b.String())
}
