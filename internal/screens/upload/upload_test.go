package upload

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
	"go.uber.org/zap"

	"github.com/mindsync-ai/mindsync/internal/api"
	"github.com/mindsync-ai/mindsync/internal/screen"
	"github.com/mindsync-ai/mindsync/internal/wizard"
)

// mockExtractor implements Extractor for testing.
type mockExtractor struct {
	text    string
	err     error
	calls   int
	gotName string
	gotType string
	gotBody string
	gotCtx  context.Context
}

func (m *mockExtractor) Upload(ctx context.Context, name, contentType string, r io.Reader) (string, error) {
	m.calls++
	m.gotCtx = ctx
	m.gotName = name
	m.gotType = contentType
	data, _ := io.ReadAll(r)
	m.gotBody = string(data)
	if m.err != nil {
		return "", m.err
	}
	return m.text, nil
}

func specialKey(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

// runCmd executes cmd and flattens batches, returning every message.
func runCmd(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, runCmd(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func findDone(msgs []tea.Msg) (uploadDoneMsg, bool) {
	for _, m := range msgs {
		if d, ok := m.(uploadDoneMsg); ok {
			return d, true
		}
	}
	return uploadDoneMsg{}, false
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

func submitPath(s *UploadScreen, path string) tea.Cmd {
	s.input.SetValue(path)
	_, cmd := s.Update(specialKey(tea.KeyEnter))
	return cmd
}

func TestUpload_TextFileCompletesStage(t *testing.T) {
	svc := &mockExtractor{text: "The ephemeral glow faded."}
	s := New(context.Background(), svc, zap.NewNop())
	path := writeFile(t, "notes.txt", "The ephemeral glow faded.")

	cmd := submitPath(s, path)
	if !s.pending {
		t.Fatal("expected pending after submit")
	}

	done, ok := findDone(runCmd(cmd))
	if !ok {
		t.Fatal("expected uploadDoneMsg")
	}
	if svc.gotName != "notes.txt" {
		t.Errorf("name = %q, want notes.txt", svc.gotName)
	}
	if svc.gotType != api.MIMEPlain {
		t.Errorf("content type = %q, want %q", svc.gotType, api.MIMEPlain)
	}
	if svc.gotBody != "The ephemeral glow faded." {
		t.Errorf("body = %q", svc.gotBody)
	}

	_, cmd = s.Update(done)
	if cmd == nil {
		t.Fatal("expected completion command")
	}
	ev, ok := cmd().(wizard.UploadCompleted)
	if !ok {
		t.Fatalf("expected wizard.UploadCompleted, got %T", cmd())
	}
	want := wizard.Document{Text: "The ephemeral glow faded.", Name: "notes.txt"}
	if ev.Document != want {
		t.Errorf("document = %+v, want %+v", ev.Document, want)
	}
}

func TestUpload_PDFDetected(t *testing.T) {
	svc := &mockExtractor{text: "pdf text"}
	s := New(context.Background(), svc, zap.NewNop())
	path := writeFile(t, "paper.pdf", "%PDF-1.4\n%fake\n")

	runCmd(submitPath(s, path))
	if svc.gotType != api.MIMEPDF {
		t.Errorf("content type = %q, want %q", svc.gotType, api.MIMEPDF)
	}
}

func TestUpload_UnsupportedTypeRejectedLocally(t *testing.T) {
	svc := &mockExtractor{}
	s := New(context.Background(), svc, zap.NewNop())

	cases := []string{
		writeFile(t, "image.png", "\x89PNG\r\n\x1a\n"),
		writeFile(t, "fake.pdf", "just text pretending"),
	}
	for _, p := range cases {
		cmd := submitPath(s, p)
		if cmd != nil {
			t.Errorf("%s: expected no command", filepath.Base(p))
		}
		if !strings.Contains(s.errMsg, "Unsupported file type") {
			t.Errorf("%s: errMsg = %q", filepath.Base(p), s.errMsg)
		}
		if s.pending {
			t.Errorf("%s: should not be pending", filepath.Base(p))
		}
	}
	if svc.calls != 0 {
		t.Errorf("service should not be called, got %d calls", svc.calls)
	}
}

func TestUpload_MissingFile(t *testing.T) {
	s := New(context.Background(), &mockExtractor{}, zap.NewNop())
	submitPath(s, filepath.Join(t.TempDir(), "missing.txt"))
	if s.errMsg != "File not found." {
		t.Errorf("errMsg = %q", s.errMsg)
	}
}

func TestUpload_EmptyPath(t *testing.T) {
	s := New(context.Background(), &mockExtractor{}, zap.NewNop())
	submitPath(s, "   ")
	if s.errMsg == "" {
		t.Error("expected an error message for empty path")
	}
}

func TestUpload_ServiceFailureStaysAndAllowsRetry(t *testing.T) {
	svc := &mockExtractor{err: &api.StatusError{Path: api.PathUpload, StatusCode: 500}}
	s := New(context.Background(), svc, zap.NewNop())
	path := writeFile(t, "notes.txt", "hello")

	done, _ := findDone(runCmd(submitPath(s, path)))
	_, cmd := s.Update(done)
	if cmd != nil {
		t.Error("failure must not complete the stage")
	}
	if s.pending {
		t.Error("should not be pending after failure")
	}
	if !strings.Contains(s.errMsg, "failed to process") {
		t.Errorf("errMsg = %q", s.errMsg)
	}

	svc.err = nil
	svc.text = "hello"
	done, ok := findDone(runCmd(submitPath(s, path)))
	if !ok || done.Err != nil {
		t.Fatalf("retry should succeed, got %+v", done)
	}
	if svc.calls != 2 {
		t.Errorf("expected 2 calls, got %d", svc.calls)
	}
}

func TestUpload_SubmitBlockedWhilePending(t *testing.T) {
	s := New(context.Background(), &mockExtractor{text: "x"}, zap.NewNop())
	path := writeFile(t, "notes.txt", "x")

	if submitPath(s, path) == nil {
		t.Fatal("first submit should start a request")
	}
	_, cmd := s.Update(specialKey(tea.KeyEnter))
	if cmd != nil {
		t.Error("second submit while pending should be ignored")
	}
}

func TestUpload_TeardownCancelsRequest(t *testing.T) {
	svc := &mockExtractor{text: "x"}
	s := New(context.Background(), svc, zap.NewNop())
	path := writeFile(t, "notes.txt", "x")

	cmd := submitPath(s, path)
	s.Teardown()
	runCmd(cmd)

	if svc.gotCtx == nil || !errors.Is(svc.gotCtx.Err(), context.Canceled) {
		t.Error("expected request context to be cancelled")
	}
}

func TestCleanPath(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"  /tmp/notes.txt ", "/tmp/notes.txt"},
		{"'/tmp/my notes.txt'", "/tmp/my notes.txt"},
		{`"/tmp/my notes.txt"`, "/tmp/my notes.txt"},
		{`/tmp/my\ notes.txt`, "/tmp/my notes.txt"},
		{"file:///tmp/my%20notes.txt", "/tmp/my notes.txt"},
	}
	for _, tt := range tests {
		if got := cleanPath(tt.in); got != tt.want {
			t.Errorf("cleanPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestUpload_ViewShowsError(t *testing.T) {
	s := New(context.Background(), &mockExtractor{}, zap.NewNop())
	submitPath(s, "/nope/file.docx")
	view := s.View(100, 30)
	if !strings.Contains(view, "Unsupported file type") {
		t.Error("expected inline error in view")
	}
}

func TestUpload_Title(t *testing.T) {
	var s screen.Screen = New(context.Background(), &mockExtractor{}, zap.NewNop())
	if s.Title() != "Upload" {
		t.Errorf("Title = %q", s.Title())
	}
}
