// Package tutor implements the LLM-backed operations of the development
// backend: vocabulary analysis, quiz generation and document chat.
package tutor

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/mindsync-ai/mindsync/internal/api"
	"github.com/mindsync-ai/mindsync/internal/llm"
	"github.com/mindsync-ai/mindsync/internal/store"
)

var (
	// ErrEmptyInput is returned when the text or message to process is blank.
	ErrEmptyInput = errors.New("empty input")

	// ErrNoQuestions is returned when the model produced no usable question.
	ErrNoQuestions = errors.New("model returned no valid questions")
)

// Tutor answers analysis, quiz and chat requests with an LLM provider.
type Tutor struct {
	provider llm.Provider
	profile  store.ProfileRepo
	cfg      Config
	cache    *cache.Cache
	logger   *zap.Logger
}

// New creates a Tutor. profile supplies the learner's level and known words.
func New(provider llm.Provider, profile store.ProfileRepo, cfg Config, logger *zap.Logger) *Tutor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tutor{
		provider: provider,
		profile:  profile,
		cfg:      cfg,
		cache:    cache.New(cfg.CacheTTL, 2*cfg.CacheTTL),
		logger:   logger.With(zap.String("component", "tutor")),
	}
}

type analysisOutput struct {
	UnfamiliarWords []api.UnfamiliarWord `json:"unfamiliarWords"`
}

type quizOutput struct {
	Questions []api.QuizQuestion `json:"questions"`
}

type chatOutput struct {
	Response string `json:"response"`
}

// Analyze returns the words of text the learner is unlikely to know at
// their stored level. Words the learner has marked known are never returned.
func (t *Tutor) Analyze(ctx context.Context, text string) ([]api.UnfamiliarWord, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyInput
	}

	level, known, err := t.learner(ctx)
	if err != nil {
		return nil, err
	}

	key := "analysis:" + string(level) + ":" + textKey(text)
	words, ok := t.cachedWords(key)
	if !ok {
		ctx, cancel := t.withTimeout(llm.WithPurpose(ctx, llm.PurposeAnalysis))
		defer cancel()

		resp, err := t.provider.Generate(ctx, llm.Request{
			System: analysisSystemPrompt,
			Messages: []llm.Message{
				{Role: llm.RoleUser, Content: buildAnalysisUserMessage(t.truncate(text), level, known)},
			},
			Schema:      AnalysisSchema,
			MaxTokens:   t.cfg.AnalysisMaxTokens,
			Temperature: t.cfg.Temperature,
		})
		if err != nil {
			return nil, fmt.Errorf("vocabulary analysis: %w", err)
		}

		var out analysisOutput
		if err := json.Unmarshal(resp.Content, &out); err != nil {
			return nil, fmt.Errorf("parse analysis response: %w", err)
		}
		words = dedupeWords(out.UnfamiliarWords)
		t.cache.Set(key, words, cache.DefaultExpiration)
	} else {
		t.logger.Debug("analysis cache hit", zap.String("level", string(level)))
	}

	return excludeKnown(words, known), nil
}

// GenerateQuiz returns a multiple-choice quiz about text. Every returned
// question has an ID and a correct answer that is one of its options.
func (t *Tutor) GenerateQuiz(ctx context.Context, text string) ([]api.QuizQuestion, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyInput
	}

	key := "quiz:" + textKey(text)
	if v, ok := t.cache.Get(key); ok {
		t.logger.Debug("quiz cache hit")
		return cloneQuestions(v.([]api.QuizQuestion)), nil
	}

	ctx, cancel := t.withTimeout(llm.WithPurpose(ctx, llm.PurposeQuiz))
	defer cancel()

	resp, err := t.provider.Generate(ctx, llm.Request{
		System: quizSystemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildQuizUserMessage(t.truncate(text), t.cfg.QuizSize)},
		},
		Schema:      QuizSchema,
		MaxTokens:   t.cfg.QuizMaxTokens,
		Temperature: t.cfg.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("quiz generation: %w", err)
	}

	var out quizOutput
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return nil, fmt.Errorf("parse quiz response: %w", err)
	}

	questions := t.sanitizeQuiz(out.Questions)
	if len(questions) == 0 {
		return nil, ErrNoQuestions
	}
	t.cache.Set(key, questions, cache.DefaultExpiration)
	return cloneQuestions(questions), nil
}

// Chat answers a question about documentText.
func (t *Tutor) Chat(ctx context.Context, message, documentText string) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", ErrEmptyInput
	}

	ctx, cancel := t.withTimeout(llm.WithPurpose(ctx, llm.PurposeChat))
	defer cancel()

	resp, err := t.provider.Generate(ctx, llm.Request{
		System: chatSystemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildChatUserMessage(message, t.truncate(documentText))},
		},
		Schema:      ChatSchema,
		MaxTokens:   t.cfg.ChatMaxTokens,
		Temperature: t.cfg.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("chat: %w", err)
	}

	var out chatOutput
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return "", fmt.Errorf("parse chat response: %w", err)
	}
	return strings.TrimSpace(out.Response), nil
}

// Voice transcribes a recorded question and answers it like Chat. A
// recording without speech yields an empty transcription and no answer
// request.
func (t *Tutor) Voice(ctx context.Context, audio []byte, filename, documentText string) (api.VoiceReply, error) {
	if len(audio) == 0 {
		return api.VoiceReply{}, ErrEmptyInput
	}
	tr, ok := t.provider.(llm.Transcriber)
	if !ok {
		return api.VoiceReply{}, fmt.Errorf("%s: %w", t.provider.ModelID(), llm.ErrTranscriptionUnsupported)
	}

	tctx, cancel := t.withTimeout(llm.WithPurpose(ctx, llm.PurposeTranscription))
	defer cancel()

	transcription, err := tr.Transcribe(tctx, audio, filename)
	if err != nil {
		return api.VoiceReply{}, fmt.Errorf("transcribe: %w", err)
	}

	text := strings.TrimSpace(transcription.Text)
	if text == "" {
		return api.VoiceReply{Response: "I couldn't hear anything in that recording. Could you try again?"}, nil
	}

	reply, err := t.Chat(ctx, text, documentText)
	if err != nil {
		return api.VoiceReply{}, err
	}
	return api.VoiceReply{Transcription: text, Response: reply}, nil
}

// learner loads the stored level, defaulting to medium.
func (t *Tutor) learner(ctx context.Context) (api.Level, []string, error) {
	raw, err := t.profile.Level(ctx)
	if err != nil {
		return "", nil, fmt.Errorf("load level: %w", err)
	}
	level := api.LevelMedium
	if raw != "" {
		if l, err := api.ParseLevel(raw); err == nil {
			level = l
		}
	}

	known, err := t.profile.KnownWords(ctx)
	if err != nil {
		return "", nil, fmt.Errorf("load known words: %w", err)
	}
	return level, known, nil
}

func (t *Tutor) cachedWords(key string) ([]api.UnfamiliarWord, bool) {
	v, ok := t.cache.Get(key)
	if !ok {
		return nil, false
	}
	return v.([]api.UnfamiliarWord), true
}

func (t *Tutor) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if t.cfg.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, t.cfg.Timeout)
}

// truncate cuts text to MaxDocumentChars runes.
func (t *Tutor) truncate(text string) string {
	limit := t.cfg.MaxDocumentChars
	if limit <= 0 || utf8.RuneCountInString(text) <= limit {
		return text
	}
	n := 0
	for i := range text {
		if n == limit {
			t.logger.Debug("document truncated", zap.Int("chars", limit))
			return text[:i]
		}
		n++
	}
	return text
}

// sanitizeQuiz drops questions whose answer is not among their options
// and assigns fresh IDs.
func (t *Tutor) sanitizeQuiz(in []api.QuizQuestion) []api.QuizQuestion {
	out := make([]api.QuizQuestion, 0, len(in))
	for _, q := range in {
		q.Question = strings.TrimSpace(q.Question)
		q.CorrectAnswer = strings.TrimSpace(q.CorrectAnswer)

		opts := make([]string, 0, len(q.Options))
		for _, o := range q.Options {
			if o = strings.TrimSpace(o); o != "" {
				opts = append(opts, o)
			}
		}
		q.Options = opts

		if q.Question == "" || len(q.Options) < 2 || !contains(q.Options, q.CorrectAnswer) {
			t.logger.Warn("dropping invalid quiz question", zap.String("question", q.Question))
			continue
		}
		q.ID = uuid.NewString()
		out = append(out, q)
	}
	if t.cfg.QuizSize > 0 && len(out) > t.cfg.QuizSize {
		out = out[:t.cfg.QuizSize]
	}
	return out
}

func contains(options []string, answer string) bool {
	for _, o := range options {
		if o == answer {
			return true
		}
	}
	return false
}

func dedupeWords(in []api.UnfamiliarWord) []api.UnfamiliarWord {
	seen := make(map[string]bool, len(in))
	out := make([]api.UnfamiliarWord, 0, len(in))
	for _, w := range in {
		w.Word = strings.TrimSpace(w.Word)
		k := strings.ToLower(w.Word)
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, w)
	}
	return out
}

func excludeKnown(words []api.UnfamiliarWord, known []string) []api.UnfamiliarWord {
	skip := make(map[string]bool, len(known))
	for _, k := range known {
		skip[strings.ToLower(strings.TrimSpace(k))] = true
	}
	out := make([]api.UnfamiliarWord, 0, len(words))
	for _, w := range words {
		if !skip[strings.ToLower(w.Word)] {
			out = append(out, w)
		}
	}
	return out
}

func cloneQuestions(in []api.QuizQuestion) []api.QuizQuestion {
	out := make([]api.QuizQuestion, len(in))
	for i, q := range in {
		q.Options = append([]string(nil), q.Options...)
		out[i] = q
	}
	return out
}

func textKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
