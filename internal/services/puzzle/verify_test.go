package puzzle

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/bananamath/internal/model"
)

type recordingSink struct {
	calls []string
	err   error
}

func (r *recordingSink) UpdateStatistics(name string, amount int) error {
	if r.err != nil {
		return r.err
	}
	r.calls = append(r.calls, name)
	return nil
}

func samplePuzzle() *model.Puzzle {
	return &model.Puzzle{
		ID:         "p1",
		Numbers:    []int{5, 3},
		Operations: []model.Operation{model.OpAdd},
		Expression: "5 + 3",
		Answer:     8,
	}
}

func TestVerifyAnswerReportsOutcome(t *testing.T) {
	sink := &recordingSink{}
	p := samplePuzzle()

	ok, err := VerifyAnswer(p, 8.0, sink)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyAnswer(p, 7.0, sink)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = VerifyAnswer(p, 8.0000001, sink)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyAnswer(p, p.Answer+1, sink)
	require.NoError(t, err)
	assert.False(t, ok)

	assert.Equal(t, []string{
		model.StatCorrectAnswers,
		model.StatWrongAnswers,
		model.StatCorrectAnswers,
		model.StatWrongAnswers,
	}, sink.calls)
}

func TestVerifyAnswerSurfacesSinkFailure(t *testing.T) {
	cause := errors.New("Stats error")
	_, err := VerifyAnswer(&model.Puzzle{Answer: 5}, 5, &recordingSink{err: cause})

	require.ErrorIs(t, err, model.ErrPuzzleGeneration)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "Failed to verify answer")
}

func TestVerifyAnswerNilPuzzle(t *testing.T) {
	_, err := VerifyAnswer(nil, 5, nil)
	assert.ErrorIs(t, err, model.ErrPuzzleGeneration)
}

func TestParseAnswer(t *testing.T) {
	v, err := ParseAnswer(" 8 ")
	require.NoError(t, err)
	assert.Equal(t, 8.0, v)

	v, err = ParseAnswer("2.5")
	require.NoError(t, err)
	assert.Equal(t, 2.5, v)

	for _, bad := range []string{"", "abc", "NaN", "Inf"} {
		_, err := ParseAnswer(bad)
		assert.ErrorIs(t, err, model.ErrInvalidMove, bad)
		assert.ErrorIs(t, err, model.ErrGameplay, bad)
	}
}

func TestHintIsDeterministic(t *testing.T) {
	tests := []struct {
		numbers []int
		op      model.Operation
		want    string
	}{
		{[]int{5, 3}, model.OpAdd, "Start at 5 and count up 3."},
		{[]int{7, 2}, model.OpSubtract, "Start at 7 and count back 2."},
		{[]int{4, 3}, model.OpMultiply, "Think of 3 groups of 4."},
		{[]int{12, 4}, model.OpDivide, "How many groups of 4 fit into 12?"},
	}
	for _, tt := range tests {
		p := &model.Puzzle{Numbers: tt.numbers, Operations: []model.Operation{tt.op}}
		assert.Equal(t, tt.want, Hint(p))
		assert.Equal(t, Hint(p), Hint(p.Clone()))
	}

	assert.NotEmpty(t, Hint(&model.Puzzle{}))
}
