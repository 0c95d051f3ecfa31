// Package upload is the first stage: the learner picks a PDF or text file
// and the extraction service turns it into the session document.
package upload

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"go.uber.org/zap"

	"github.com/mindsync-ai/mindsync/internal/screen"
	"github.com/mindsync-ai/mindsync/internal/ui/components"
	"github.com/mindsync-ai/mindsync/internal/ui/layout"
	"github.com/mindsync-ai/mindsync/internal/ui/theme"
	"github.com/mindsync-ai/mindsync/internal/wizard"
)

// Extractor turns an uploaded document into plain text.
type Extractor interface {
	Upload(ctx context.Context, name, contentType string, r io.Reader) (string, error)
}

// uploadDoneMsg reports the result of the extraction request.
type uploadDoneMsg struct {
	Document wizard.Document
	Err      error
}

// UploadScreen implements screen.Screen for the upload stage.
type UploadScreen struct {
	svc     Extractor
	logger  *zap.Logger
	ctx     context.Context
	cancel  context.CancelFunc
	input   components.TextInput
	loading components.Loading
	pending bool
	errMsg  string
	done    bool
}

var _ screen.Screen = (*UploadScreen)(nil)
var _ screen.KeyHintProvider = (*UploadScreen)(nil)
var _ screen.Teardown = (*UploadScreen)(nil)

// New creates the upload stage. Requests are bound to a child of ctx that
// is cancelled on Teardown.
func New(ctx context.Context, svc Extractor, logger *zap.Logger) *UploadScreen {
	ctx, cancel := context.WithCancel(ctx)
	return &UploadScreen{
		svc:     svc,
		logger:  logger.With(zap.String("stage", string(wizard.StageUpload))),
		ctx:     ctx,
		cancel:  cancel,
		input:   components.NewTextInput("/path/to/document.pdf", 0),
		loading: components.NewLoading("Extracting text..."),
	}
}

func (s *UploadScreen) Init() tea.Cmd {
	return s.input.Init()
}

func (s *UploadScreen) Title() string {
	return wizard.StageUpload.Label()
}

func (s *UploadScreen) KeyHints() []layout.KeyHint {
	if s.pending {
		return []layout.KeyHint{{Key: "Ctrl+C", Description: "Quit"}}
	}
	return []layout.KeyHint{
		{Key: "Enter", Description: "Upload"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

// Teardown aborts a pending upload.
func (s *UploadScreen) Teardown() {
	s.cancel()
}

func (s *UploadScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case uploadDoneMsg:
		return s.handleDone(msg)

	case tea.KeyPressMsg:
		if msg.String() == "enter" {
			return s.submit()
		}
		if s.pending {
			return s, nil
		}
		if s.errMsg != "" {
			s.errMsg = ""
		}
	}

	if s.pending {
		var cmd tea.Cmd
		s.loading, cmd = s.loading.Update(msg)
		return s, cmd
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd
}

// submit validates the path and starts the extraction request.
func (s *UploadScreen) submit() (screen.Screen, tea.Cmd) {
	if s.pending || s.done {
		return s, nil
	}

	path := cleanPath(s.input.Value())
	if path == "" {
		s.errMsg = "Enter the path of a PDF or TXT file."
		return s, nil
	}

	contentType, err := detectType(path)
	if err != nil {
		s.logger.Info("file rejected", zap.String("path", path), zap.Error(err))
		s.errMsg = describeError(err)
		return s, nil
	}

	s.pending = true
	s.errMsg = ""
	s.input.SetDisabled(true)
	s.logger.Info("uploading document", zap.String("path", path), zap.String("content_type", contentType))

	return s, tea.Batch(s.loading.Tick(), s.uploadCmd(path, contentType))
}

func (s *UploadScreen) uploadCmd(path, contentType string) tea.Cmd {
	ctx, svc := s.ctx, s.svc
	return func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			return uploadDoneMsg{Err: err}
		}
		defer f.Close()

		name := filepath.Base(path)
		text, err := svc.Upload(ctx, name, contentType, f)
		if err != nil {
			return uploadDoneMsg{Err: fmt.Errorf("upload %s: %w", name, err)}
		}
		return uploadDoneMsg{Document: wizard.Document{Text: text, Name: name}}
	}
}

func (s *UploadScreen) handleDone(msg uploadDoneMsg) (screen.Screen, tea.Cmd) {
	s.pending = false
	s.input.SetDisabled(false)

	if msg.Err != nil {
		s.logger.Warn("upload failed", zap.Error(msg.Err))
		s.errMsg = describeError(msg.Err)
		return s, nil
	}

	s.done = true
	s.logger.Info("document extracted",
		zap.String("name", msg.Document.Name),
		zap.Int("chars", len(msg.Document.Text)),
	)
	ev := wizard.UploadCompleted{Document: msg.Document}
	return s, func() tea.Msg { return ev }
}

func (s *UploadScreen) View(width, height int) string {
	boxWidth := min(width-8, 72)

	var b strings.Builder
	b.WriteString("\n\n")
	b.WriteString(layout.Centered(theme.Title.Render("Load a document"), width))
	b.WriteString("\n")
	b.WriteString(layout.Centered(theme.Hint.Render("Type or drop the path of a PDF or TXT file, then press Enter."), width))
	b.WriteString("\n\n")
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, s.input.View(boxWidth)))
	b.WriteString("\n\n")

	switch {
	case s.pending:
		b.WriteString(layout.Centered(s.loading.View(), width))
	case s.errMsg != "":
		b.WriteString(layout.Centered(theme.ErrorText.Render(s.errMsg), width))
	}

	return b.String()
}
