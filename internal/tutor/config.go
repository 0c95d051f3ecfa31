package tutor

import "time"

// Config holds generation settings for the tutor.
type Config struct {
	// Timeout bounds a single tutor operation, retries included.
	Timeout time.Duration
	// CacheTTL is how long analyses and quizzes are reused for the same text.
	CacheTTL time.Duration
	// MaxDocumentChars truncates document text before it is sent to the model.
	MaxDocumentChars int
	// QuizSize is the number of questions requested per quiz.
	QuizSize int

	AnalysisMaxTokens int
	QuizMaxTokens     int
	ChatMaxTokens     int
	Temperature       float64
}

// DefaultConfig returns sensible defaults for the tutor.
func DefaultConfig() Config {
	return Config{
		Timeout:           60 * time.Second,
		CacheTTL:          30 * time.Minute,
		MaxDocumentChars:  60000,
		QuizSize:          5,
		AnalysisMaxTokens: 2048,
		QuizMaxTokens:     2048,
		ChatMaxTokens:     1024,
		Temperature:       0.4,
	}
}
