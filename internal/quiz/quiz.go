// Package quiz walks a learner through a fixed question set one question at
// a time and keeps the running score.
package quiz

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mindsync-ai/mindsync/internal/api"
)

// Phase is the state of the current question.
type Phase int

const (
	// PhaseUnanswered accepts exactly one selection.
	PhaseUnanswered Phase = iota
	// PhaseExplained shows the verdict and explanation; selections are ignored.
	PhaseExplained
)

// Advance is the result of Next.
type Advance int

const (
	AdvanceIgnored Advance = iota // current question not answered yet
	AdvanceNext                   // moved to the following question
	AdvanceDone                   // the last question was dismissed
)

// Outcome describes a recorded answer.
type Outcome struct {
	Question api.QuizQuestion
	Selected string
	Correct  bool
}

// Quiz is the per-question state machine. The zero value is an empty quiz.
type Quiz struct {
	questions []api.QuizQuestion
	index     int
	phase     Phase
	selected  string
	score     int
}

// New creates a quiz over questions. The slice is copied.
func New(questions []api.QuizQuestion) *Quiz {
	qs := make([]api.QuizQuestion, len(questions))
	copy(qs, questions)
	return &Quiz{questions: qs}
}

// Total returns the number of questions.
func (q *Quiz) Total() int { return len(q.questions) }

// Index returns the zero-based cursor.
func (q *Quiz) Index() int { return q.index }

// Phase returns the state of the current question.
func (q *Quiz) Phase() Phase { return q.phase }

// Selected returns the answer chosen for the current question, or "".
func (q *Quiz) Selected() string { return q.selected }

// Score returns the number of correct answers so far.
func (q *Quiz) Score() int { return q.score }

// Seen returns how many questions have been shown, counting the current one.
func (q *Quiz) Seen() int { return q.index + 1 }

// Empty reports whether there are no questions.
func (q *Quiz) Empty() bool { return len(q.questions) == 0 }

// IsLast reports whether the cursor is on the final question.
func (q *Quiz) IsLast() bool { return q.index >= len(q.questions)-1 }

// Current returns the question under the cursor.
func (q *Quiz) Current() (api.QuizQuestion, bool) {
	if q.index < 0 || q.index >= len(q.questions) {
		return api.QuizQuestion{}, false
	}
	return q.questions[q.index], true
}

// Select records answer for the current question. Only the first
// selection counts; later calls return ok == false and change nothing.
func (q *Quiz) Select(answer string) (Outcome, bool) {
	cur, ok := q.Current()
	if !ok || q.phase != PhaseUnanswered {
		return Outcome{}, false
	}

	correct := answer == cur.CorrectAnswer
	if correct {
		q.score++
	}
	q.selected = answer
	q.phase = PhaseExplained

	return Outcome{Question: cur, Selected: answer, Correct: correct}, true
}

// Next moves past an answered question. On an empty quiz it reports done.
func (q *Quiz) Next() Advance {
	if q.Empty() {
		return AdvanceDone
	}
	if q.phase != PhaseExplained {
		return AdvanceIgnored
	}
	if q.IsLast() {
		return AdvanceDone
	}
	q.index++
	q.phase = PhaseUnanswered
	q.selected = ""
	return AdvanceNext
}

// ScoreLabel renders the score out of the questions seen so far.
func (q *Quiz) ScoreLabel() string {
	return fmt.Sprintf("%d / %d", q.score, q.Seen())
}

// Notifier receives answer results.
type Notifier interface {
	UpdateStats(ctx context.Context, word string, isCorrect bool) error
}

// Report sends the outcome to the stats service. The stats key is the
// question text. Delivery is best effort: failures are logged and never
// retried or shown to the learner.
func Report(ctx context.Context, n Notifier, o Outcome, logger *zap.Logger) {
	if n == nil {
		return
	}
	if err := n.UpdateStats(ctx, o.Question.Question, o.Correct); err != nil {
		logger.Warn("update vocabulary stats",
			zap.String("question_id", o.Question.ID),
			zap.Bool("correct", o.Correct),
			zap.Error(err),
		)
	}
}
