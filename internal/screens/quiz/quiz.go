// Package quiz is the comprehension quiz stage.
package quiz

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"go.uber.org/zap"

	"github.com/mindsync-ai/mindsync/internal/api"
	qz "github.com/mindsync-ai/mindsync/internal/quiz"
	"github.com/mindsync-ai/mindsync/internal/screen"
	"github.com/mindsync-ai/mindsync/internal/ui/components"
	"github.com/mindsync-ai/mindsync/internal/ui/layout"
	"github.com/mindsync-ai/mindsync/internal/ui/theme"
	"github.com/mindsync-ai/mindsync/internal/wizard"
)

// Service generates questions and receives answer results.
type Service interface {
	GenerateQuiz(ctx context.Context, text string) ([]api.QuizQuestion, error)
	qz.Notifier
}

type quizReadyMsg struct {
	Questions []api.QuizQuestion
	Err       error
}

// statsSentMsg is returned once a best-effort stats update finished.
type statsSentMsg struct{}

// statsTimeout bounds a stats update. Updates outlive the screen, so
// leaving the stage never aborts the last answer's report.
const statsTimeout = 10 * time.Second

// QuizScreen implements screen.Screen for the quiz stage.
type QuizScreen struct {
	svc     Service
	logger  *zap.Logger
	ctx     context.Context
	cancel  context.CancelFunc
	doc     wizard.Document
	quiz    *qz.Quiz
	choice  components.MultiChoice
	loading bool
	errMsg  string
	spinner components.Loading
	done    bool
}

var _ screen.Screen = (*QuizScreen)(nil)
var _ screen.KeyHintProvider = (*QuizScreen)(nil)
var _ screen.Teardown = (*QuizScreen)(nil)

// New creates the quiz stage for doc.
func New(ctx context.Context, svc Service, doc wizard.Document, logger *zap.Logger) *QuizScreen {
	ctx, cancel := context.WithCancel(ctx)
	return &QuizScreen{
		svc:     svc,
		logger:  logger.With(zap.String("stage", string(wizard.StageQuiz))),
		ctx:     ctx,
		cancel:  cancel,
		doc:     doc,
		quiz:    qz.New(nil),
		loading: true,
		spinner: components.NewLoading("Generating quiz..."),
	}
}

func (s *QuizScreen) Init() tea.Cmd {
	ctx, svc, text := s.ctx, s.svc, s.doc.Text
	return tea.Batch(s.spinner.Tick(), func() tea.Msg {
		qs, err := svc.GenerateQuiz(ctx, text)
		return quizReadyMsg{Questions: qs, Err: err}
	})
}

func (s *QuizScreen) Title() string {
	return wizard.StageQuiz.Label()
}

func (s *QuizScreen) KeyHints() []layout.KeyHint {
	switch {
	case s.loading:
		return []layout.KeyHint{{Key: "Ctrl+C", Description: "Quit"}}
	case s.quiz.Empty():
		return []layout.KeyHint{
			{Key: "Enter", Description: "Continue to chat"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	case s.quiz.Phase() == qz.PhaseExplained:
		label := "Next question"
		if s.quiz.IsLast() {
			label = "Finish quiz"
		}
		return []layout.KeyHint{
			{Key: "Enter", Description: label},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "1-9", Description: "Pick"},
		{Key: "Enter", Description: "Answer"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

// Teardown aborts the generate request. Stats updates already sent keep
// running until statsTimeout.
func (s *QuizScreen) Teardown() {
	s.cancel()
}

func (s *QuizScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case quizReadyMsg:
		return s.handleReady(msg)

	case statsSentMsg:
		return s, nil

	case tea.KeyPressMsg:
		if s.loading {
			return s, nil
		}
		return s.handleKey(msg)
	}

	if s.loading {
		var cmd tea.Cmd
		s.spinner, cmd = s.spinner.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *QuizScreen) handleReady(msg quizReadyMsg) (screen.Screen, tea.Cmd) {
	s.loading = false
	if msg.Err != nil {
		s.logger.Warn("quiz generation failed", zap.Error(msg.Err))
		s.errMsg = api.UserMessage(msg.Err)
		return s, nil
	}
	s.logger.Info("quiz ready", zap.Int("questions", len(msg.Questions)))
	s.quiz = qz.New(msg.Questions)
	s.loadChoice()
	return s, nil
}

func (s *QuizScreen) loadChoice() {
	if q, ok := s.quiz.Current(); ok {
		s.choice = components.NewMultiChoice(q.Question, q.Options)
	}
}

func (s *QuizScreen) handleKey(msg tea.KeyPressMsg) (screen.Screen, tea.Cmd) {
	if s.quiz.Empty() {
		if msg.String() == "enter" {
			return s.complete()
		}
		return s, nil
	}

	if s.quiz.Phase() == qz.PhaseExplained {
		if msg.String() != "enter" {
			return s, nil
		}
		switch s.quiz.Next() {
		case qz.AdvanceNext:
			s.loadChoice()
		case qz.AdvanceDone:
			return s.complete()
		}
		return s, nil
	}

	s.choice, _ = s.choice.Update(msg)
	chosen, ok := s.choice.Chosen()
	if !ok {
		return s, nil
	}

	outcome, ok := s.quiz.Select(chosen)
	if !ok {
		return s, nil
	}
	s.choice.Reveal(outcome.Selected, outcome.Question.CorrectAnswer)
	s.logger.Info("answer recorded",
		zap.String("question_id", outcome.Question.ID),
		zap.Bool("correct", outcome.Correct),
	)

	ctx, svc, logger := context.WithoutCancel(s.ctx), s.svc, s.logger
	return s, func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, statsTimeout)
		defer cancel()
		qz.Report(ctx, svc, outcome, logger)
		return statsSentMsg{}
	}
}

func (s *QuizScreen) complete() (screen.Screen, tea.Cmd) {
	if s.done {
		return s, nil
	}
	s.done = true
	s.logger.Info("quiz finished", zap.Int("score", s.quiz.Score()), zap.Int("total", s.quiz.Total()))
	return s, func() tea.Msg { return wizard.QuizCompleted{} }
}

func (s *QuizScreen) View(width, height int) string {
	if s.loading {
		return "\n\n\n" + layout.Centered(s.spinner.View(), width)
	}

	if s.quiz.Empty() {
		msg := "No questions were generated."
		if s.errMsg != "" {
			msg = "The quiz could not be generated. " + s.errMsg
		}
		return "\n\n\n" +
			layout.Centered(theme.Hint.Render(msg), width) + "\n\n" +
			layout.Centered(theme.Body.Render("Press Enter to continue to the chat."), width)
	}

	boxWidth := min(width-8, 90)

	var b strings.Builder
	b.WriteString("\n")

	info := theme.Selected.Render(fmt.Sprintf("Question %d of %d", s.quiz.Index()+1, s.quiz.Total())) +
		"    " +
		lipgloss.NewStyle().Foreground(theme.Secondary).Render("Score: "+s.quiz.ScoreLabel())
	b.WriteString(layout.Centered(info, width))
	b.WriteString("\n")

	bar := components.StepBar{Current: s.quiz.Index() + 1, Total: s.quiz.Total(), Width: boxWidth}
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, bar.View()))
	b.WriteString("\n\n")

	body := s.choice.View()
	if s.quiz.Phase() == qz.PhaseExplained {
		body += "\n" + s.renderExplanation(boxWidth-4)
	}
	card := lipgloss.NewStyle().
		Width(boxWidth).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Padding(1, 2).
		Render(body)
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, card))

	return b.String()
}

func (s *QuizScreen) renderExplanation(width int) string {
	q, _ := s.quiz.Current()
	verdict := theme.Incorrect.Render("✗ Not quite.")
	if s.quiz.Selected() == q.CorrectAnswer {
		verdict = theme.Correct.Render("✓ Correct!")
	}
	expl := lipgloss.NewStyle().Width(width).Foreground(theme.TextDim).Render(q.Explanation)
	return verdict + "\n" + expl
}
