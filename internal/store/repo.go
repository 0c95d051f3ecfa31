package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit   int       // max results (0 = unlimited)
	Purpose string    // exact purpose match when set
	From    time.Time // timestamp >= From
	To      time.Time // timestamp <= To
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMRequestEvent is a stored LLM request.
type LLMRequestEvent struct {
	ID        int64
	Sequence  int64
	Timestamp time.Time
	LLMRequestEventData
}

// UsageRow aggregates requests sharing a key (purpose or model).
type UsageRow struct {
	Key          string
	Requests     int
	Failures     int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// EventRepo records and queries LLM requests.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// QueryLLMEvents returns events newest first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMRequestEvent, error)

	// GetLLMEvent returns one event or ErrNotFound.
	GetLLMEvent(ctx context.Context, id int64) (*LLMRequestEvent, error)

	// LLMUsageByPurpose aggregates token usage per purpose.
	LLMUsageByPurpose(ctx context.Context) ([]UsageRow, error)

	// LLMUsageByModel aggregates token usage per model.
	LLMUsageByModel(ctx context.Context) ([]UsageRow, error)

	// PruneLLMEvents deletes events older than cutoff.
	PruneLLMEvents(ctx context.Context, cutoff time.Time) (int64, error)
}

// WordStat counts quiz answers recorded under one key.
type WordStat struct {
	Word       string
	Correct    int
	Incorrect  int
	LastSeenAt time.Time
}

// Profile is the learner's stored vocabulary state.
type Profile struct {
	// Level is empty until the learner picks one.
	Level      string
	KnownWords []string
	Stats      []WordStat
}

// ProfileRepo persists the vocabulary profile.
type ProfileRepo interface {
	// SetLevel stores the vocabulary level.
	SetLevel(ctx context.Context, level string) error

	// Level returns the stored level, or "" when none is set.
	Level(ctx context.Context) (string, error)

	// AddKnownWord records word as known. Words are stored lowercased;
	// adding a word twice is a no-op.
	AddKnownWord(ctx context.Context, word string) error

	// KnownWords returns all known words in alphabetical order.
	KnownWords(ctx context.Context) ([]string, error)

	// RecordAnswer increments the correct or incorrect counter for word.
	RecordAnswer(ctx context.Context, word string, correct bool) error

	// WordStats returns all counters, most recently seen first.
	WordStats(ctx context.Context) ([]WordStat, error)

	// Load returns the whole profile.
	Load(ctx context.Context) (*Profile, error)

	// Reset clears the level, known words and answer counters.
	Reset(ctx context.Context) error
}
