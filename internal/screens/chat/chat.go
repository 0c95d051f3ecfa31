// Package chat is the conversational stage: typed and spoken questions
// about the loaded document, answered by the chat service.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"go.uber.org/zap"

	"github.com/mindsync-ai/mindsync/internal/api"
	"github.com/mindsync-ai/mindsync/internal/chat"
	"github.com/mindsync-ai/mindsync/internal/screen"
	"github.com/mindsync-ai/mindsync/internal/ui/components"
	"github.com/mindsync-ai/mindsync/internal/ui/layout"
	"github.com/mindsync-ai/mindsync/internal/ui/theme"
	"github.com/mindsync-ai/mindsync/internal/voice"
	"github.com/mindsync-ai/mindsync/internal/wizard"
)

// Service answers questions about a document.
type Service interface {
	ChatText(ctx context.Context, message, documentText string) (string, error)
	ChatVoice(ctx context.Context, audio []byte, documentText string) (api.VoiceReply, error)
}

type textReplyMsg struct {
	Reply string
	Err   error
}

type voiceReplyMsg struct {
	Reply api.VoiceReply
	Err   error
}

// voicePlaceholder stands in for a transcription the service returned
// empty, so the turn still shows who spoke.
const voicePlaceholder = "[voice message]"

// inputHeight is the bordered input box plus the status line above it.
const inputHeight = 5

// ChatScreen implements screen.Screen for the conversational stage.
type ChatScreen struct {
	svc        Service
	recorder   voice.Recorder
	logger     *zap.Logger
	ctx        context.Context
	cancel     context.CancelFunc
	doc        wizard.Document
	transcript *chat.Transcript
	input      components.TextInput
	spinner    components.Loading
	vp         viewport.Model
	session    voice.Session
	status     string
	follow     bool
}

var _ screen.Screen = (*ChatScreen)(nil)
var _ screen.KeyHintProvider = (*ChatScreen)(nil)
var _ screen.Teardown = (*ChatScreen)(nil)

// New creates the chat stage for doc. rec may be nil, in which case voice
// turns are unavailable.
func New(ctx context.Context, svc Service, rec voice.Recorder, doc wizard.Document, logger *zap.Logger) *ChatScreen {
	ctx, cancel := context.WithCancel(ctx)
	return &ChatScreen{
		svc:        svc,
		recorder:   rec,
		logger:     logger.With(zap.String("stage", string(wizard.StageChat))),
		ctx:        ctx,
		cancel:     cancel,
		doc:        doc,
		transcript: chat.NewTranscript(),
		input:      components.NewTextInput("Ask something about the document...", 2000),
		spinner:    components.NewLoading("Processing your message..."),
		vp:         viewport.New(),
		follow:     true,
	}
}

func (s *ChatScreen) Init() tea.Cmd {
	return s.input.Init()
}

func (s *ChatScreen) Title() string {
	return wizard.StageChat.Label()
}

func (s *ChatScreen) KeyHints() []layout.KeyHint {
	rec := "Record"
	if s.Recording() {
		rec = "Stop & send"
	}
	hints := []layout.KeyHint{{Key: "Enter", Description: "Send"}}
	if s.recorder != nil {
		hints = append(hints, layout.KeyHint{Key: "Ctrl+R", Description: rec})
	}
	return append(hints,
		layout.KeyHint{Key: "PgUp/PgDn", Description: "Scroll"},
		layout.KeyHint{Key: "Ctrl+C", Description: "Quit"},
	)
}

// Teardown aborts pending turns and releases the microphone.
func (s *ChatScreen) Teardown() {
	s.cancel()
	if s.session != nil {
		if err := s.session.Close(); err != nil {
			s.logger.Warn("close recording", zap.Error(err))
		}
		s.session = nil
	}
}

// Transcript returns the conversation so far.
func (s *ChatScreen) Transcript() []chat.Message {
	return s.transcript.Messages()
}

// Recording reports whether the microphone is currently held.
func (s *ChatScreen) Recording() bool {
	return s.session != nil
}

// Pending reports whether any turn is waiting for the service.
func (s *ChatScreen) Pending() bool {
	return s.transcript.Pending()
}

func (s *ChatScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case textReplyMsg:
		s.transcript.End()
		if msg.Err != nil {
			s.logger.Warn("text turn failed", zap.Error(msg.Err))
			s.transcript.AddNotice(chat.UndeliveredNotice)
		} else {
			s.transcript.AddAssistant(msg.Reply)
		}
		s.follow = true
		return s, nil

	case voiceReplyMsg:
		return s.handleVoiceReply(msg)

	case tea.KeyPressMsg:
		return s.handleKey(msg)
	}

	var cmds []tea.Cmd
	if s.transcript.Pending() {
		var cmd tea.Cmd
		s.spinner, cmd = s.spinner.Update(msg)
		cmds = append(cmds, cmd)
	}
	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	cmds = append(cmds, cmd)
	return s, tea.Batch(cmds...)
}

func (s *ChatScreen) handleKey(msg tea.KeyPressMsg) (screen.Screen, tea.Cmd) {
	switch msg.String() {
	case "enter":
		return s.sendText()
	case "ctrl+r":
		return s.toggleRecording()
	case "pgup":
		s.vp.PageUp()
		s.follow = s.vp.AtBottom()
		return s, nil
	case "pgdown":
		s.vp.PageDown()
		s.follow = s.vp.AtBottom()
		return s, nil
	}

	s.status = ""
	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd
}

func (s *ChatScreen) sendText() (screen.Screen, tea.Cmd) {
	text, ok := chat.Normalize(s.input.Value())
	if !ok {
		return s, nil
	}
	s.input.Reset()
	s.transcript.AddUser(text)
	s.follow = true
	s.logger.Info("text turn", zap.Int("chars", len(text)))

	ctx, svc, docText := s.ctx, s.svc, s.doc.Text
	send := func() tea.Msg {
		reply, err := svc.ChatText(ctx, text, docText)
		return textReplyMsg{Reply: reply, Err: err}
	}
	return s, s.begin(send)
}

// begin counts a turn as in flight and starts the spinner when it is the
// first one.
func (s *ChatScreen) begin(cmd tea.Cmd) tea.Cmd {
	first := !s.transcript.Pending()
	s.transcript.Begin()
	if first {
		return tea.Batch(s.spinner.Tick(), cmd)
	}
	return cmd
}

func (s *ChatScreen) toggleRecording() (screen.Screen, tea.Cmd) {
	if s.recorder == nil {
		s.status = "Voice input is not available."
		return s, nil
	}

	if s.session == nil {
		sess, err := s.recorder.Start(s.ctx)
		if err != nil {
			s.logger.Warn("start recording", zap.Error(err))
			s.status = fmt.Sprintf("Could not start recording: %v", err)
			return s, nil
		}
		s.session = sess
		s.status = ""
		s.logger.Info("recording started")
		return s, nil
	}

	sess := s.session
	s.session = nil
	s.logger.Info("recording stopped")

	ctx, svc, docText := s.ctx, s.svc, s.doc.Text
	send := func() tea.Msg {
		clip, err := sess.Stop()
		if err != nil {
			return voiceReplyMsg{Err: err}
		}
		reply, err := svc.ChatVoice(ctx, clip, docText)
		return voiceReplyMsg{Reply: reply, Err: err}
	}
	return s, s.begin(send)
}

func (s *ChatScreen) handleVoiceReply(msg voiceReplyMsg) (screen.Screen, tea.Cmd) {
	s.transcript.End()
	s.follow = true

	switch {
	case errors.Is(msg.Err, voice.ErrEmptyRecording):
		s.logger.Info("empty recording")
		s.status = "No audio was captured."
		return s, nil
	case msg.Err != nil:
		s.logger.Warn("voice turn failed", zap.Error(msg.Err))
		s.transcript.AddNotice(chat.UndeliveredNotice)
		return s, nil
	}

	said := strings.TrimSpace(msg.Reply.Transcription)
	if said == "" {
		said = voicePlaceholder
	}
	s.transcript.AddUser(said)
	s.transcript.AddAssistant(msg.Reply.Response)
	return s, nil
}

func (s *ChatScreen) View(width, height int) string {
	boxWidth := min(width-4, 100)

	s.vp.SetWidth(boxWidth)
	s.vp.SetHeight(max(height-inputHeight, 3))
	s.vp.SetContent(s.renderTranscript(boxWidth))
	if s.follow {
		s.vp.GotoBottom()
	}

	var status string
	switch {
	case s.Recording():
		status = theme.ErrorText.Render("● Recording... press Ctrl+R to send")
	case s.transcript.Pending():
		status = s.spinner.View()
	case s.status != "":
		status = theme.Hint.Render(s.status)
	}

	var b strings.Builder
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, s.vp.View()))
	b.WriteString("\n")
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, lipgloss.NewStyle().Width(boxWidth).Render(status)))
	b.WriteString("\n")
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, s.input.View(boxWidth)))
	return b.String()
}

func (s *ChatScreen) renderTranscript(width int) string {
	msgs := s.transcript.Messages()
	if len(msgs) == 0 {
		intro := fmt.Sprintf("Ask anything about %s.", s.documentName())
		return "\n" + lipgloss.PlaceHorizontal(width, lipgloss.Center, theme.Hint.Render(intro))
	}

	bubbleWidth := max(width*3/4, 20)
	var b strings.Builder
	for i, m := range msgs {
		if i > 0 {
			b.WriteString("\n\n")
		}
		switch m.Role {
		case chat.RoleUser:
			bubble := theme.UserBubble.Render(wrap(m.Text, bubbleWidth-2))
			b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Right, bubble))
		case chat.RoleAssistant:
			b.WriteString(theme.AssistantBubble.Render(wrap(m.Text, bubbleWidth-2)))
		default:
			b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, theme.SystemLine.Render(m.Text)))
		}
	}
	return b.String()
}

func (s *ChatScreen) documentName() string {
	if s.doc.Name == "" {
		return "your document"
	}
	return s.doc.Name
}

// wrap breaks long text at width; short text keeps its natural width so
// bubbles hug their content.
func wrap(text string, width int) string {
	if lipgloss.Width(text) <= width {
		return text
	}
	return lipgloss.NewStyle().Width(width).Render(text)
}
