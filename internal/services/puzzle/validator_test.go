package puzzle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/bananamath/internal/model"
)

func TestEvaluate(t *testing.T) {
	tests := []struct {
		numbers []int
		op      model.Operation
		want    float64
	}{
		{[]int{5, 3}, model.OpAdd, 8},
		{[]int{10, 2}, model.OpDivide, 5},
		{[]int{4, 3}, model.OpMultiply, 12},
		{[]int{7, 2}, model.OpSubtract, 5},
	}
	for _, tt := range tests {
		got, err := Evaluate(tt.numbers, []model.Operation{tt.op})
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestEvaluateRejectsMalformed(t *testing.T) {
	_, err := Evaluate([]int{1}, []model.Operation{model.OpAdd})
	assert.ErrorIs(t, err, model.ErrValidation)

	_, err = Evaluate([]int{1, 0}, []model.Operation{model.OpDivide})
	assert.ErrorIs(t, err, model.ErrValidation)
}

func TestValidate(t *testing.T) {
	cfg := model.DefaultDifficultyConfigs()[model.TierNormal]

	valid := &model.Puzzle{
		Numbers:    []int{10, 2},
		Operations: []model.Operation{model.OpDivide},
		Expression: "10 / 2",
		Answer:     5,
	}
	assert.NoError(t, Validate(valid, cfg))

	chained := &model.Puzzle{
		Numbers:    []int{5, 3, 4},
		Operations: []model.Operation{model.OpAdd, model.OpMultiply},
		Expression: "(5 + 3) * 4",
		Answer:     32,
	}
	assert.NoError(t, Validate(chained, cfg))

	wrongAnswer := valid.Clone()
	wrongAnswer.Answer = 6
	assert.ErrorIs(t, Validate(wrongAnswer, cfg), model.ErrValidation)

	wrongExpression := valid.Clone()
	wrongExpression.Expression = "10 * 2"
	assert.ErrorIs(t, Validate(wrongExpression, cfg), model.ErrValidation)

	outOfRange := valid.Clone()
	outOfRange.Numbers = []int{100, 20}
	outOfRange.Expression = "100 / 20"
	assert.ErrorIs(t, Validate(outOfRange, cfg), model.ErrValidation)

	easy := model.DefaultDifficultyConfigs()[model.TierEasy]
	assert.ErrorIs(t, Validate(valid, easy), model.ErrValidation)
}
