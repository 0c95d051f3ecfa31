package viewer

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/x/ansi"
	"go.uber.org/zap"

	"github.com/mindsync-ai/mindsync/internal/api"
	"github.com/mindsync-ai/mindsync/internal/highlight"
	"github.com/mindsync-ai/mindsync/internal/wizard"
)

type mockAnalyzer struct {
	words      []api.UnfamiliarWord
	analyzeErr error
	markErr    error
	analyzed   []string
	marked     []string
}

func (m *mockAnalyzer) Analyze(_ context.Context, text string) ([]api.UnfamiliarWord, error) {
	m.analyzed = append(m.analyzed, text)
	return m.words, m.analyzeErr
}

func (m *mockAnalyzer) MarkKnown(_ context.Context, word string) error {
	m.marked = append(m.marked, word)
	return m.markErr
}

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func specialKey(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

// runCmd executes cmd and flattens batches.
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

func joinSegments(segs []highlight.Segment) string {
	var b strings.Builder
	for _, seg := range segs {
		b.WriteString(seg.Text)
	}
	return b.String()
}

func testDoc() wizard.Document {
	return wizard.Document{Text: "The ephemeral glow faded.", Name: "notes.txt"}
}

// loaded returns a viewer whose analysis has completed.
func loaded(t *testing.T, svc *mockAnalyzer) *ViewerScreen {
	t.Helper()
	s := New(context.Background(), svc, testDoc(), zap.NewNop())
	for _, m := range runCmd(s.Init()) {
		if done, ok := m.(analyzeDoneMsg); ok {
			s.Update(done)
			return s
		}
	}
	t.Fatal("expected analyzeDoneMsg from Init")
	return nil
}

func TestViewer_AnalyzesFullText(t *testing.T) {
	svc := &mockAnalyzer{}
	loaded(t, svc)
	if len(svc.analyzed) != 1 || svc.analyzed[0] != "The ephemeral glow faded." {
		t.Errorf("analyzed = %q", svc.analyzed)
	}
}

func TestViewer_HighlightsAndMarksKnown(t *testing.T) {
	svc := &mockAnalyzer{words: []api.UnfamiliarWord{
		{Word: "ephemeral", Definition: "fleeting"},
	}}
	s := loaded(t, svc)

	if got := highlight.Occurrences(s.segments, "ephemeral"); got != 1 {
		t.Fatalf("expected 1 highlighted occurrence, got %d", got)
	}
	if !strings.Contains(s.View(120, 30), "fleeting") {
		t.Error("expected definition in tooltip")
	}

	_, cmd := s.Update(keyPress('k'))
	msgs := runCmd(cmd)
	if len(msgs) != 1 {
		t.Fatalf("expected one message, got %d", len(msgs))
	}
	s.Update(msgs[0])

	if len(svc.marked) != 1 || svc.marked[0] != "ephemeral" {
		t.Errorf("marked = %v", svc.marked)
	}
	if len(s.Words()) != 0 {
		t.Errorf("expected empty word list, got %v", s.Words())
	}
	if got := highlight.Occurrences(s.segments, "ephemeral"); got != 0 {
		t.Errorf("highlight should be gone, got %d occurrences", got)
	}
	if joinSegments(s.segments) != testDoc().Text {
		t.Error("text must be preserved")
	}
}

func TestViewer_FocusedWordGlossedInText(t *testing.T) {
	svc := &mockAnalyzer{words: []api.UnfamiliarWord{
		{Word: "ephemeral", Definition: "fleeting"},
		{Word: "glow", Definition: "soft light"},
	}}
	s := loaded(t, svc)

	text := ansi.Strip(s.renderText(200))
	if !strings.Contains(text, "ephemeral [fleeting] glow") {
		t.Errorf("focused word should carry its definition, got %q", text)
	}
	if strings.Contains(text, "[soft light]") {
		t.Errorf("only the focused word is glossed, got %q", text)
	}

	s.Update(specialKey(tea.KeyDown))
	text = ansi.Strip(s.renderText(200))
	if !strings.Contains(text, "glow [soft light] faded") {
		t.Errorf("gloss should follow the cursor, got %q", text)
	}
	if strings.Contains(text, "[fleeting]") {
		t.Errorf("previous gloss should be gone, got %q", text)
	}
}

func TestViewer_MarkKnownRemovesOnlyThatWord(t *testing.T) {
	svc := &mockAnalyzer{words: []api.UnfamiliarWord{
		{Word: "ephemeral", Definition: "short-lived"},
		{Word: "glow", Definition: "steady light"},
	}}
	s := loaded(t, svc)

	s.Update(specialKey(tea.KeyDown))
	_, cmd := s.Update(keyPress('k'))
	s.Update(runCmd(cmd)[0])

	words := s.Words()
	if len(words) != 1 || words[0].Word != "ephemeral" {
		t.Errorf("words = %v", words)
	}
	if s.cursor != 0 {
		t.Errorf("cursor should clamp to 0, got %d", s.cursor)
	}
}

func TestViewer_MarkKnownFailureKeepsWord(t *testing.T) {
	svc := &mockAnalyzer{
		words:   []api.UnfamiliarWord{{Word: "ephemeral", Definition: "short-lived"}},
		markErr: errors.New("boom"),
	}
	s := loaded(t, svc)

	_, cmd := s.Update(keyPress('k'))
	s.Update(runCmd(cmd)[0])

	if len(s.Words()) != 1 {
		t.Error("word must stay after failed mark-known")
	}
	if !strings.Contains(s.notice, "ephemeral") {
		t.Errorf("notice = %q", s.notice)
	}
}

func TestViewer_AnalysisFailureStillContinues(t *testing.T) {
	svc := &mockAnalyzer{analyzeErr: &api.StatusError{StatusCode: 500}}
	s := loaded(t, svc)

	if s.notice == "" {
		t.Error("expected a notice after analysis failure")
	}
	if !strings.Contains(s.View(120, 30), "ephemeral") {
		t.Error("plain text should still render")
	}

	_, cmd := s.Update(specialKey(tea.KeyEnter))
	if cmd == nil {
		t.Fatal("continue should be available")
	}
	if _, ok := cmd().(wizard.ViewCompleted); !ok {
		t.Errorf("expected wizard.ViewCompleted, got %T", cmd())
	}
}

func TestViewer_ContinueBlockedWhileLoading(t *testing.T) {
	s := New(context.Background(), &mockAnalyzer{}, testDoc(), zap.NewNop())
	_, cmd := s.Update(specialKey(tea.KeyEnter))
	if cmd != nil {
		t.Error("continue should wait for analysis")
	}
}

func TestViewer_ContinueOnce(t *testing.T) {
	s := loaded(t, &mockAnalyzer{})
	if _, cmd := s.Update(specialKey(tea.KeyEnter)); cmd == nil {
		t.Fatal("expected completion")
	}
	if _, cmd := s.Update(specialKey(tea.KeyEnter)); cmd != nil {
		t.Error("second enter should be ignored")
	}
}

func TestViewer_TeardownCancels(t *testing.T) {
	s := New(context.Background(), &mockAnalyzer{}, testDoc(), zap.NewNop())
	s.Teardown()
	if s.ctx.Err() == nil {
		t.Error("expected context cancelled after teardown")
	}
}

func TestViewer_TitleIncludesName(t *testing.T) {
	s := New(context.Background(), &mockAnalyzer{}, testDoc(), zap.NewNop())
	if s.Title() != "Read: notes.txt" {
		t.Errorf("Title = %q", s.Title())
	}
}
