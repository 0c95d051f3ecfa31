package quiz

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mindsync-ai/mindsync/internal/api"
)

func twoQuestions() []api.QuizQuestion {
	return []api.QuizQuestion{
		{ID: "q1", Question: "What does ephemeral mean?", Options: []string{"short-lived", "eternal"}, CorrectAnswer: "short-lived", Explanation: "It fades quickly."},
		{ID: "q2", Question: "What faded?", Options: []string{"the glow", "the night"}, CorrectAnswer: "the glow", Explanation: "The glow faded."},
	}
}

func TestQuiz_OneRightOneWrong(t *testing.T) {
	q := New(twoQuestions())

	o, ok := q.Select("short-lived")
	require.True(t, ok)
	assert.True(t, o.Correct)
	assert.Equal(t, "1 / 1", q.ScoreLabel())

	assert.Equal(t, AdvanceNext, q.Next())
	assert.Equal(t, 1, q.Index())
	assert.Equal(t, PhaseUnanswered, q.Phase())
	assert.Empty(t, q.Selected())

	o, ok = q.Select("the night")
	require.True(t, ok)
	assert.False(t, o.Correct)
	assert.Equal(t, "1 / 2", q.ScoreLabel())

	assert.Equal(t, AdvanceDone, q.Next())
}

func TestQuiz_SecondSelectionIgnored(t *testing.T) {
	q := New(twoQuestions())

	_, ok := q.Select("eternal")
	require.True(t, ok)

	_, ok = q.Select("short-lived")
	assert.False(t, ok)
	assert.Equal(t, "eternal", q.Selected())
	assert.Equal(t, 0, q.Score())
}

func TestQuiz_NextIgnoredUntilAnswered(t *testing.T) {
	q := New(twoQuestions())
	assert.Equal(t, AdvanceIgnored, q.Next())
	assert.Equal(t, 0, q.Index())
}

func TestQuiz_ScoreBounds(t *testing.T) {
	q := New(twoQuestions())
	prev := 0
	for {
		cur, ok := q.Current()
		require.True(t, ok)
		q.Select(cur.CorrectAnswer)
		q.Select(cur.CorrectAnswer)

		assert.LessOrEqual(t, q.Score(), q.Index()+1)
		assert.GreaterOrEqual(t, q.Score(), prev)
		prev = q.Score()

		if q.Next() == AdvanceDone {
			break
		}
	}
	assert.Equal(t, 2, q.Score())
}

func TestQuiz_ExactStringEquality(t *testing.T) {
	q := New(twoQuestions())
	o, _ := q.Select("Short-lived")
	assert.False(t, o.Correct)
}

func TestQuiz_Empty(t *testing.T) {
	q := New(nil)
	assert.True(t, q.Empty())
	_, ok := q.Current()
	assert.False(t, ok)
	_, ok = q.Select("x")
	assert.False(t, ok)
	assert.Equal(t, AdvanceDone, q.Next())
}

func TestNew_CopiesQuestions(t *testing.T) {
	qs := twoQuestions()
	q := New(qs)
	qs[0].CorrectAnswer = "eternal"

	o, _ := q.Select("short-lived")
	assert.True(t, o.Correct)
}

type fakeStats struct {
	words   []string
	correct []bool
	err     error
}

func (f *fakeStats) UpdateStats(_ context.Context, word string, isCorrect bool) error {
	f.words = append(f.words, word)
	f.correct = append(f.correct, isCorrect)
	return f.err
}

func TestReport_SendsQuestionText(t *testing.T) {
	f := &fakeStats{}
	q := New(twoQuestions())
	o, _ := q.Select("eternal")

	Report(context.Background(), f, o, zap.NewNop())
	assert.Equal(t, []string{"What does ephemeral mean?"}, f.words)
	assert.Equal(t, []bool{false}, f.correct)
}

func TestReport_SwallowsErrors(t *testing.T) {
	f := &fakeStats{err: errors.New("down")}
	assert.NotPanics(t, func() {
		Report(context.Background(), f, Outcome{Question: twoQuestions()[0]}, zap.NewNop())
	})
	assert.NotPanics(t, func() {
		Report(context.Background(), nil, Outcome{}, zap.NewNop())
	})
}
