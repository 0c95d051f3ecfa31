package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mindsync-ai/mindsync/internal/store"
)

// LoggingProvider records every call of the provider it wraps, successful
// or not, in the request log.
type LoggingProvider struct {
	inner     Provider
	eventRepo store.EventRepo
	logger    *zap.Logger
}

// WithLogging wraps p. With a nil repo, calls are only written to logger.
func WithLogging(p Provider, repo store.EventRepo, logger *zap.Logger) Provider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LoggingProvider{inner: p, eventRepo: repo, logger: logger}
}

func (l *LoggingProvider) ModelID() string {
	return l.inner.ModelID()
}

func (l *LoggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	ev := l.begin(ctx, describeRequest(req))
	resp, err := l.inner.Generate(ctx, req)
	if resp != nil {
		ev.Model = resp.Model
		ev.InputTokens, ev.OutputTokens = resp.Usage.InputTokens, resp.Usage.OutputTokens
		ev.ResponseBody = string(resp.Content)
	}
	l.finish(ctx, ev, err)
	return resp, err
}

func (l *LoggingProvider) Transcribe(ctx context.Context, audio []byte, filename string) (*Transcription, error) {
	ev := l.begin(ctx, fmt.Sprintf("[audio: %s, %d bytes]", filename, len(audio)))
	out, err := transcribe(ctx, l.inner, audio, filename)
	if out != nil {
		ev.Model = out.Model
		ev.InputTokens, ev.OutputTokens = out.Usage.InputTokens, out.Usage.OutputTokens
		ev.ResponseBody = out.Text
	}
	l.finish(ctx, ev, err)
	return out, err
}

type pendingEvent struct {
	store.LLMRequestEventData
	start time.Time
}

func (l *LoggingProvider) begin(ctx context.Context, request string) *pendingEvent {
	return &pendingEvent{
		LLMRequestEventData: store.LLMRequestEventData{
			Provider:    l.inner.ModelID(),
			Model:       l.inner.ModelID(),
			Purpose:     PurposeFrom(ctx),
			RequestBody: request,
		},
		start: time.Now(),
	}
}

// finish stores ev. A storage failure is logged, never returned: losing a
// log row must not fail the learner's request.
func (l *LoggingProvider) finish(ctx context.Context, ev *pendingEvent, err error) {
	ev.LatencyMs = time.Since(ev.start).Milliseconds()
	ev.Success = err == nil
	if err != nil {
		ev.ErrorMessage = err.Error()
	}

	l.logger.Debug("llm request",
		zap.String("model", ev.Model),
		zap.String("purpose", ev.Purpose),
		zap.Int64("latency_ms", ev.LatencyMs),
		zap.Int("input_tokens", ev.InputTokens),
		zap.Int("output_tokens", ev.OutputTokens),
		zap.Error(err),
	)
	if l.eventRepo == nil {
		return
	}
	if err := l.eventRepo.AppendLLMRequest(context.WithoutCancel(ctx), ev.LLMRequestEventData); err != nil {
		l.logger.Warn("failed to record LLM request", zap.Error(err))
	}
}

// describeRequest flattens req into the text shown by "mindsync llm view".
func describeRequest(req Request) string {
	var b strings.Builder
	section := func(label, body string) {
		fmt.Fprintf(&b, "[%s]\n%s\n\n", label, body)
	}
	if req.System != "" {
		section("system", req.System)
	}
	for _, m := range req.Messages {
		section(string(m.Role), m.Content)
	}
	if req.Schema != nil {
		if def, err := json.Marshal(req.Schema.Definition); err == nil {
			section("schema: "+req.Schema.Name, string(def))
		}
	}
	return strings.TrimSuffix(b.String(), "\n")
}
