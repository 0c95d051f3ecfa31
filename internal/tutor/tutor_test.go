package tutor

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mindsync-ai/mindsync/internal/api"
	"github.com/mindsync-ai/mindsync/internal/llm"
	"github.com/mindsync-ai/mindsync/internal/store"
)

// stubProfile serves a fixed level and known-word list.
type stubProfile struct {
	store.ProfileRepo

	level string
	known []string
	err   error
}

func (p *stubProfile) Level(context.Context) (string, error)        { return p.level, p.err }
func (p *stubProfile) KnownWords(context.Context) ([]string, error) { return p.known, nil }

func newTutor(t *testing.T, p llm.Provider, profile *stubProfile) *Tutor {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Timeout = time.Second
	return New(p, profile, cfg, nil)
}

func respond(body string) llm.MockResponse {
	return llm.MockResponse{Content: json.RawMessage(body)}
}

const analysisJSON = `{"unfamiliarWords":[
	{"word":"ephemeral","definition":"short-lived","example":"An ephemeral trend."},
	{"word":"Ephemeral","definition":"dup","example":""},
	{"word":"ubiquitous","definition":"everywhere","example":"Phones are ubiquitous."}
]}`

func TestAnalyze_UsesLevelAndKnownWords(t *testing.T) {
	mock := llm.NewMockProvider(respond(analysisJSON))
	profile := &stubProfile{level: "hard", known: []string{"cat"}}
	tu := newTutor(t, mock, profile)

	words, err := tu.Analyze(context.Background(), "The ephemeral glow was ubiquitous.")
	require.NoError(t, err)
	require.Len(t, words, 2)
	assert.Equal(t, "ephemeral", words[0].Word)
	assert.Equal(t, "ubiquitous", words[1].Word)

	require.Len(t, mock.Calls, 1)
	req := mock.Calls[0]
	assert.Equal(t, AnalysisSchema, req.Schema)
	assert.Contains(t, req.Messages[0].Content, "Vocabulary level: hard")
	assert.Contains(t, req.Messages[0].Content, "cat")
	assert.Contains(t, req.Messages[0].Content, "The ephemeral glow was ubiquitous.")
}

func TestAnalyze_DefaultsToMedium(t *testing.T) {
	mock := llm.NewMockProvider(respond(`{"unfamiliarWords":[]}`))
	tu := newTutor(t, mock, &stubProfile{})

	words, err := tu.Analyze(context.Background(), "text")
	require.NoError(t, err)
	assert.Empty(t, words)
	assert.Contains(t, mock.Calls[0].Messages[0].Content, "Vocabulary level: medium")
}

func TestAnalyze_CachedButKnownWordsFiltered(t *testing.T) {
	mock := llm.NewMockProvider(respond(analysisJSON))
	profile := &stubProfile{level: "medium"}
	tu := newTutor(t, mock, profile)
	ctx := context.Background()

	_, err := tu.Analyze(ctx, "doc")
	require.NoError(t, err)

	profile.known = []string{"EPHEMERAL"}
	words, err := tu.Analyze(ctx, "doc")
	require.NoError(t, err)

	assert.Equal(t, 1, mock.CallCount(), "second analysis should be served from cache")
	require.Len(t, words, 1)
	assert.Equal(t, "ubiquitous", words[0].Word)
}

func TestAnalyze_LevelChangeMissesCache(t *testing.T) {
	mock := llm.NewMockProvider(respond(analysisJSON), respond(`{"unfamiliarWords":[]}`))
	profile := &stubProfile{level: "easy"}
	tu := newTutor(t, mock, profile)
	ctx := context.Background()

	_, err := tu.Analyze(ctx, "doc")
	require.NoError(t, err)
	profile.level = "hard"
	words, err := tu.Analyze(ctx, "doc")
	require.NoError(t, err)

	assert.Equal(t, 2, mock.CallCount())
	assert.Empty(t, words)
}

func TestAnalyze_Errors(t *testing.T) {
	tu := newTutor(t, llm.NewMockProvider(), &stubProfile{})
	_, err := tu.Analyze(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrEmptyInput)

	tu = newTutor(t, llm.NewMockProvider(), &stubProfile{err: errors.New("db down")})
	_, err = tu.Analyze(context.Background(), "doc")
	assert.ErrorContains(t, err, "db down")

	tu = newTutor(t, llm.NewMockProvider(), &stubProfile{})
	_, err = tu.Analyze(context.Background(), "doc")
	var unavailable *llm.ErrProviderUnavailable
	assert.ErrorAs(t, err, &unavailable)
}

func TestGenerateQuiz_SanitizesQuestions(t *testing.T) {
	mock := llm.NewMockProvider(respond(`{"questions":[
		{"question":"What does ephemeral mean?","options":["short-lived","eternal","loud","blue"],"correctAnswer":"short-lived","explanation":"It fades."},
		{"question":"Bad answer","options":["a","b","c","d"],"correctAnswer":"e","explanation":""},
		{"question":"Too few","options":["a"],"correctAnswer":"a","explanation":""},
		{"question":" Padded ","options":[" x ","y","z","w"],"correctAnswer":"x","explanation":"ok"}
	]}`))
	tu := newTutor(t, mock, &stubProfile{})

	qs, err := tu.GenerateQuiz(context.Background(), "doc")
	require.NoError(t, err)
	require.Len(t, qs, 2)

	assert.Equal(t, "What does ephemeral mean?", qs[0].Question)
	assert.Equal(t, "Padded", qs[1].Question)
	assert.Equal(t, []string{"x", "y", "z", "w"}, qs[1].Options)
	assert.NotEmpty(t, qs[0].ID)
	assert.NotEqual(t, qs[0].ID, qs[1].ID)
	for _, q := range qs {
		assert.Contains(t, q.Options, q.CorrectAnswer)
	}
	assert.Contains(t, mock.Calls[0].Messages[0].Content, "Write 5 questions")
}

func TestGenerateQuiz_CachedCopy(t *testing.T) {
	mock := llm.NewMockProvider(respond(`{"questions":[
		{"question":"Q","options":["a","b","c","d"],"correctAnswer":"a","explanation":"e"}
	]}`))
	tu := newTutor(t, mock, &stubProfile{})
	ctx := context.Background()

	first, err := tu.GenerateQuiz(ctx, "doc")
	require.NoError(t, err)
	first[0].Options[0] = "mutated"

	second, err := tu.GenerateQuiz(ctx, "doc")
	require.NoError(t, err)
	assert.Equal(t, 1, mock.CallCount())
	assert.Equal(t, "a", second[0].Options[0])
	assert.Equal(t, first[0].ID, second[0].ID)
}

func TestGenerateQuiz_NoValidQuestions(t *testing.T) {
	mock := llm.NewMockProvider(respond(`{"questions":[]}`))
	tu := newTutor(t, mock, &stubProfile{})

	_, err := tu.GenerateQuiz(context.Background(), "doc")
	assert.ErrorIs(t, err, ErrNoQuestions)
}

func TestChat(t *testing.T) {
	mock := llm.NewMockProvider(respond(`{"response":"  The glow.  "}`))
	tu := newTutor(t, mock, &stubProfile{})

	reply, err := tu.Chat(context.Background(), "what fades?", "The ephemeral glow faded.")
	require.NoError(t, err)
	assert.Equal(t, "The glow.", reply)

	content := mock.Calls[0].Messages[0].Content
	assert.Contains(t, content, "The ephemeral glow faded.")
	assert.Contains(t, content, "what fades?")
	assert.Equal(t, ChatSchema, mock.Calls[0].Schema)

	_, err = tu.Chat(context.Background(), " ", "doc")
	assert.ErrorIs(t, err, ErrEmptyInput)
}

func TestChat_TruncatesDocument(t *testing.T) {
	mock := llm.NewMockProvider(respond(`{"response":"ok"}`))
	tu := newTutor(t, mock, &stubProfile{})
	tu.cfg.MaxDocumentChars = 10

	_, err := tu.Chat(context.Background(), "q", strings.Repeat("é", 50))
	require.NoError(t, err)
	content := mock.Calls[0].Messages[0].Content
	assert.Contains(t, content, strings.Repeat("é", 10)+"\n\nQuestion:")
	assert.NotContains(t, content, strings.Repeat("é", 11))
}

func TestVoice(t *testing.T) {
	mock := llm.NewMockProvider(respond(`{"response":"The glow."}`))
	mock.Transcript = " what fades? "
	tu := newTutor(t, mock, &stubProfile{})

	reply, err := tu.Voice(context.Background(), []byte("RIFF"), "recording.wav", "doc")
	require.NoError(t, err)
	assert.Equal(t, api.VoiceReply{Transcription: "what fades?", Response: "The glow."}, reply)
	assert.Equal(t, [][]byte{[]byte("RIFF")}, mock.Audio)
}

func TestVoice_SilentRecording(t *testing.T) {
	mock := llm.NewMockProvider()
	tu := newTutor(t, mock, &stubProfile{})

	reply, err := tu.Voice(context.Background(), []byte("RIFF"), "recording.wav", "doc")
	require.NoError(t, err)
	assert.Empty(t, reply.Transcription)
	assert.NotEmpty(t, reply.Response)
	assert.Zero(t, mock.CallCount())
}

func TestVoice_Errors(t *testing.T) {
	mock := llm.NewMockProvider()
	mock.TranscribeErr = errors.New("whisper down")
	tu := newTutor(t, mock, &stubProfile{})

	_, err := tu.Voice(context.Background(), []byte("RIFF"), "recording.wav", "doc")
	assert.ErrorContains(t, err, "whisper down")

	_, err = tu.Voice(context.Background(), nil, "recording.wav", "doc")
	assert.ErrorIs(t, err, ErrEmptyInput)
}

// generateOnly hides the mock's Transcribe method.
type generateOnly struct{ p llm.Provider }

func (g generateOnly) Generate(ctx context.Context, req llm.Request) (*llm.Response, error) {
	return g.p.Generate(ctx, req)
}
func (g generateOnly) ModelID() string { return g.p.ModelID() }

func TestVoice_Unsupported(t *testing.T) {
	tu := newTutor(t, generateOnly{llm.NewMockProvider()}, &stubProfile{})

	_, err := tu.Voice(context.Background(), []byte("RIFF"), "recording.wav", "doc")
	assert.ErrorIs(t, err, llm.ErrTranscriptionUnsupported)
}
