package llm

import "context"

type contextKey string

const purposeKey contextKey = "llm_purpose"

// Purpose labels recorded with every LLM request event.
const (
	PurposeAnalysis      = "analysis"
	PurposeQuiz          = "quiz"
	PurposeChat          = "chat"
	PurposeTranscription = "transcription"
)

// WithPurpose tags ctx so request events can be grouped by what the call
// was for.
func WithPurpose(ctx context.Context, purpose string) context.Context {
	return context.WithValue(ctx, purposeKey, purpose)
}

// PurposeFrom returns the purpose tagged by WithPurpose, or "unknown".
func PurposeFrom(ctx context.Context) string {
	if v, ok := ctx.Value(purposeKey).(string); ok {
		return v
	}
	return "unknown"
}
