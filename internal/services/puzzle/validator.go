package puzzle

import (
	"fmt"
	"math"

	"github.com/Knetic/govaluate"

	"github.com/mcoot/bananamath/internal/model"
)

// Evaluate computes the value of operands and operators left to right
func Evaluate(numbers []int, ops []model.Operation) (float64, error) {
	if len(numbers) != len(ops)+1 {
		return 0, model.NewError(model.KindValidation, "Operand count does not match operators", map[string]any{
			"numbers":    len(numbers),
			"operations": len(ops),
		})
	}
	value := float64(numbers[0])
	for i, op := range ops {
		if !op.Valid() {
			return 0, model.NewError(model.KindValidation, "Invalid operation", map[string]any{"index": i})
		}
		n := float64(numbers[i+1])
		if op == model.OpDivide && n == 0 {
			return 0, model.NewError(model.KindValidation, "Division by zero", map[string]any{"index": i})
		}
		value = op.Apply(value, n)
	}
	return value, nil
}

// Validate checks that a puzzle is consistent with cfg: operators allowed,
// operands in range, division exact, and the rendered expression evaluating
// to the stored answer
func Validate(p *model.Puzzle, cfg model.DifficultyConfig) error {
	for i, op := range p.Operations {
		if !cfg.Allows(op) {
			return model.NewError(model.KindValidation, "Operation not allowed", map[string]any{
				"operation": op.Symbol(),
				"index":     i,
			})
		}
	}
	for i, n := range p.Numbers {
		if n < cfg.MinNumber || n > cfg.MaxNumber {
			return model.NewError(model.KindValidation, "Number out of range", map[string]any{
				"number": n,
				"index":  i,
				"min":    cfg.MinNumber,
				"max":    cfg.MaxNumber,
			})
		}
	}

	want, err := Evaluate(p.Numbers, p.Operations)
	if err != nil {
		return err
	}
	if math.Abs(want-p.Answer) >= Tolerance {
		return model.NewError(model.KindValidation, "Answer does not match operands", map[string]any{
			"answer":   p.Answer,
			"expected": want,
		})
	}
	if want != math.Trunc(want) {
		return model.NewError(model.KindValidation, "Answer is not a whole number", map[string]any{"answer": want})
	}

	got, err := evaluateExpression(p.Expression)
	if err != nil {
		return model.WrapError(model.KindValidation, "Invalid expression", err, map[string]any{"expression": p.Expression})
	}
	if math.Abs(got-p.Answer) >= Tolerance {
		return model.NewError(model.KindValidation, "Expression does not match answer", map[string]any{
			"expression": p.Expression,
			"answer":     p.Answer,
			"evaluated":  got,
		})
	}
	return nil
}

func evaluateExpression(expression string) (float64, error) {
	expr, err := govaluate.NewEvaluableExpression(expression)
	if err != nil {
		return 0, err
	}
	result, err := expr.Evaluate(nil)
	if err != nil {
		return 0, err
	}
	v, ok := result.(float64)
	if !ok {
		return 0, fmt.Errorf("expression result is %T, not a number", result)
	}
	return v, nil
}
