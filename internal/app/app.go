// Package app hosts the stage controller: it owns the session state, mounts
// one stage screen at a time and advances on completion events.
package app

import (
	"context"
	"errors"
	"fmt"

	tea "charm.land/bubbletea/v2"
	"go.uber.org/zap"

	"github.com/mindsync-ai/mindsync/internal/router"
	"github.com/mindsync-ai/mindsync/internal/screen"
	chatscreen "github.com/mindsync-ai/mindsync/internal/screens/chat"
	quizscreen "github.com/mindsync-ai/mindsync/internal/screens/quiz"
	"github.com/mindsync-ai/mindsync/internal/screens/upload"
	"github.com/mindsync-ai/mindsync/internal/screens/viewer"
	"github.com/mindsync-ai/mindsync/internal/screens/vocab"
	"github.com/mindsync-ai/mindsync/internal/screens/welcome"
	"github.com/mindsync-ai/mindsync/internal/ui/layout"
	"github.com/mindsync-ai/mindsync/internal/voice"
	"github.com/mindsync-ai/mindsync/internal/wizard"
)

// Services is everything the stages need from the backend. *api.Client
// satisfies it.
type Services interface {
	upload.Extractor
	vocab.LevelSetter
	viewer.Analyzer
	quizscreen.Service
	chatscreen.Service
}

// ErrNoDocument is returned by the screen factory for a stage that needs a
// document when none is loaded.
var ErrNoDocument = errors.New("no document loaded")

// Options configures the application.
type Options struct {
	Services Services
	// Recorder captures voice turns. Nil disables voice input.
	Recorder voice.Recorder
	Logger   *zap.Logger
	// Splash shows the welcome animation before the upload stage.
	Splash bool
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	ctx    context.Context
	opts   Options
	logger *zap.Logger
	state  wizard.State
	router *router.Router
	notice string
	width  int
	height int
}

// newAppModel creates an AppModel in the initial state. The first screen
// is mounted by Init.
func newAppModel(ctx context.Context, opts Options) AppModel {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return AppModel{
		ctx:    ctx,
		opts:   opts,
		logger: logger,
		state:  wizard.Initial(),
		router: router.New(),
	}
}

// State returns the current session state.
func (m AppModel) State() wizard.State {
	return m.state
}

// screenFor builds the screen for stage. Stages that read the document are
// refused when none is loaded.
func (m AppModel) screenFor(st wizard.State) (screen.Screen, error) {
	if st.Stage.RequiresDocument() && st.Document == nil {
		return nil, fmt.Errorf("mount %s: %w", st.Stage, ErrNoDocument)
	}

	svc := m.opts.Services
	switch st.Stage {
	case wizard.StageUpload:
		return upload.New(m.ctx, svc, m.logger), nil
	case wizard.StageVocab:
		return vocab.New(m.ctx, svc, m.logger), nil
	case wizard.StageView:
		return viewer.New(m.ctx, svc, *st.Document, m.logger), nil
	case wizard.StageQuiz:
		return quizscreen.New(m.ctx, svc, *st.Document, m.logger), nil
	case wizard.StageChat:
		return chatscreen.New(m.ctx, svc, m.opts.Recorder, *st.Document, m.logger), nil
	}
	return nil, fmt.Errorf("unknown stage %q", st.Stage)
}

func (m AppModel) Init() tea.Cmd {
	first, err := m.screenFor(m.state)
	if err != nil {
		m.logger.Error("mount first stage", zap.Error(err))
		return nil
	}
	if m.opts.Splash {
		return m.router.Replace(welcome.New(func() screen.Screen { return first }))
	}
	return m.router.Replace(first)
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyPressMsg:
		if msg.String() == "ctrl+c" {
			m.router.Close()
			return m, tea.Quit
		}

	case wizard.Event:
		return m.advance(msg)
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

// advance reduces ev and mounts the next stage. Rejected events leave the
// current stage mounted.
func (m AppModel) advance(ev wizard.Event) (tea.Model, tea.Cmd) {
	next, err := wizard.Reduce(m.state, ev)
	if err != nil {
		m.logger.Warn("stage transition rejected",
			zap.String("stage", string(m.state.Stage)),
			zap.Error(err),
		)
		return m, nil
	}

	scr, err := m.screenFor(next)
	if err != nil {
		m.logger.Error("stage not mounted", zap.Error(err))
		m.notice = "Cannot continue: " + err.Error()
		return m, nil
	}

	m.logger.Info("stage changed",
		zap.String("from", string(m.state.Stage)),
		zap.String("to", string(next.Stage)),
	)
	m.state = next
	m.notice = ""
	return m, m.router.Replace(scr)
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}

	if layout.TooSmall(m.width, m.height) {
		v.SetContent(layout.SizeWarning(m.width, m.height))
		return v
	}

	active := m.router.Active()
	frame := layout.Frame{
		Step:   m.state.Stage.Index() + 1,
		Stages: len(wizard.Stages),
		Hints:  []layout.KeyHint{{Key: "Ctrl+C", Description: "Quit"}},
		Notice: m.notice,
	}
	if active != nil {
		frame.Title = active.Title()
	}
	if p, ok := active.(screen.KeyHintProvider); ok {
		frame.Hints = p.KeyHints()
	}

	v.SetContent(frame.Render(m.width, m.height, m.router.View))
	return v
}

// Run starts the Bubble Tea program and blocks until it exits. The mounted
// stage is torn down on the way out.
func Run(ctx context.Context, opts Options) error {
	model := newAppModel(ctx, opts)
	p := tea.NewProgram(model, tea.WithContext(ctx))
	final, err := p.Run()
	if fm, ok := final.(AppModel); ok {
		fm.router.Close()
	} else {
		model.router.Close()
	}
	if err != nil {
		return fmt.Errorf("run program: %w", err)
	}
	return nil
}
