// Package vocab is the stage where the learner picks how hard the
// vocabulary analysis should be.
package vocab

import (
	"context"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"go.uber.org/zap"

	"github.com/mindsync-ai/mindsync/internal/api"
	"github.com/mindsync-ai/mindsync/internal/screen"
	"github.com/mindsync-ai/mindsync/internal/ui/components"
	"github.com/mindsync-ai/mindsync/internal/ui/layout"
	"github.com/mindsync-ai/mindsync/internal/ui/theme"
	"github.com/mindsync-ai/mindsync/internal/wizard"
)

// LevelSetter persists the chosen level.
type LevelSetter interface {
	SetLevel(ctx context.Context, level api.Level) error
}

type setLevelDoneMsg struct {
	Level api.Level
	Err   error
}

// VocabScreen implements screen.Screen for the vocabulary-level stage.
type VocabScreen struct {
	svc     LevelSetter
	logger  *zap.Logger
	ctx     context.Context
	cancel  context.CancelFunc
	levels  components.RadioList
	chosen  api.Level
	focusOK bool // Continue button has focus
	pending bool
	notice  string
	loading components.Loading
}

var _ screen.Screen = (*VocabScreen)(nil)
var _ screen.KeyHintProvider = (*VocabScreen)(nil)
var _ screen.Teardown = (*VocabScreen)(nil)

// New creates the vocabulary-level stage.
func New(ctx context.Context, svc LevelSetter, logger *zap.Logger) *VocabScreen {
	ctx, cancel := context.WithCancel(ctx)
	s := &VocabScreen{
		svc:     svc,
		logger:  logger.With(zap.String("stage", string(wizard.StageVocab))),
		ctx:     ctx,
		cancel:  cancel,
		loading: components.NewLoading("Saving..."),
	}
	opts := make([]components.Option, len(api.Levels))
	for i, l := range api.Levels {
		opts[i] = components.Option{Label: levelLabel(l), Hint: l.Description()}
	}
	s.levels = components.NewRadioList(opts...)
	return s
}

func levelLabel(l api.Level) string {
	str := string(l)
	return strings.ToUpper(str[:1]) + str[1:]
}

func (s *VocabScreen) Init() tea.Cmd {
	return nil
}

func (s *VocabScreen) Title() string {
	return wizard.StageVocab.Label()
}

func (s *VocabScreen) KeyHints() []layout.KeyHint {
	if s.focusOK {
		return []layout.KeyHint{
			{Key: "Enter", Description: "Continue"},
			{Key: "↑", Description: "Back to levels"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Choose"},
		{Key: "Tab", Description: "Continue"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

// Teardown aborts a pending request.
func (s *VocabScreen) Teardown() {
	s.cancel()
}

// CanContinue reports whether the Continue button is enabled.
func (s *VocabScreen) CanContinue() bool {
	return s.chosen != "" && !s.pending
}

func (s *VocabScreen) continueButton() components.Button {
	btn := components.NewButton("Continue", s.CanContinue())
	btn.Focused = s.focusOK
	btn.Disabled = "Pick a level to continue."
	return btn
}

func (s *VocabScreen) choose(i int) {
	if !s.levels.Mark(i) {
		return
	}
	s.chosen = api.Levels[i]
	s.notice = ""
	s.focusOK = true
}

func (s *VocabScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case setLevelDoneMsg:
		return s.handleDone(msg)

	case tea.KeyPressMsg:
		if s.pending {
			return s, nil
		}
		return s.handleKey(msg)
	}

	if s.pending {
		var cmd tea.Cmd
		s.loading, cmd = s.loading.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *VocabScreen) handleKey(msg tea.KeyPressMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()

	if s.focusOK {
		if s.continueButton().Pressed(key) {
			return s.submit()
		}
		switch key {
		case "up", "k", "tab", "shift+tab", "esc":
			s.focusOK = false
		}
		return s, nil
	}

	switch key {
	case "tab":
		if s.chosen != "" {
			s.focusOK = true
		}
		return s, nil
	case "enter", "space":
		s.choose(s.levels.Cursor)
		return s, nil
	case "1", "2", "3":
		s.choose(int(key[0] - '1'))
		return s, nil
	}

	s.levels = s.levels.Update(msg)
	return s, nil
}

func (s *VocabScreen) submit() (screen.Screen, tea.Cmd) {
	if !s.CanContinue() {
		return s, nil
	}
	s.pending = true
	s.notice = ""

	ctx, svc, level := s.ctx, s.svc, s.chosen
	s.logger.Info("saving vocabulary level", zap.String("level", string(level)))
	return s, tea.Batch(s.loading.Tick(), func() tea.Msg {
		return setLevelDoneMsg{Level: level, Err: svc.SetLevel(ctx, level)}
	})
}

func (s *VocabScreen) handleDone(msg setLevelDoneMsg) (screen.Screen, tea.Cmd) {
	s.pending = false
	if msg.Err != nil {
		s.logger.Warn("set level failed", zap.String("level", string(msg.Level)), zap.Error(msg.Err))
		s.notice = "Could not save your level. " + api.UserMessage(msg.Err)
		return s, nil
	}
	return s, func() tea.Msg { return wizard.VocabCompleted{} }
}

func (s *VocabScreen) View(width, height int) string {
	var b strings.Builder
	b.WriteString("\n\n")
	b.WriteString(layout.Centered(theme.Title.Render("Choose your vocabulary level"), width))
	b.WriteString("\n")
	b.WriteString(layout.Centered(theme.Hint.Render("Words above your level will be highlighted as you read."), width))
	b.WriteString("\n\n")

	list := lipgloss.NewStyle().Width(min(width-4, 80)).Render(s.levels.View())
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, list))
	b.WriteString("\n")

	btnView := s.continueButton().View()
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, btnView))
	b.WriteString("\n\n")

	switch {
	case s.pending:
		b.WriteString(layout.Centered(s.loading.View(), width))
	case s.notice != "":
		b.WriteString(layout.Centered(theme.Hint.Render(s.notice), width))
	}

	return b.String()
}
