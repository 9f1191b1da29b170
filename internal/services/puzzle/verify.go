package puzzle

import (
	"math"
	"strconv"
	"strings"

	"github.com/mcoot/bananamath/internal/model"
)

// Tolerance is the largest absolute difference accepted as a correct answer
const Tolerance = 1e-4

// VerifyAnswer compares submitted with the puzzle's answer and reports the
// outcome to sink as correct_answers or wrong_answers. A sink failure is
// returned as a PuzzleGenerationError.
func VerifyAnswer(p *model.Puzzle, submitted float64, sink StatisticsSink) (bool, error) {
	if p == nil {
		return false, model.NewError(model.KindPuzzleGeneration, "Failed to verify answer", map[string]any{"reason": "nil puzzle"})
	}

	correct := math.Abs(submitted-p.Answer) < Tolerance

	stat := model.StatWrongAnswers
	if correct {
		stat = model.StatCorrectAnswers
	}
	if sink != nil {
		if err := sink.UpdateStatistics(stat, 1); err != nil {
			return false, model.WrapError(model.KindPuzzleGeneration, "Failed to verify answer", err, map[string]any{
				"puzzle_id": p.ID,
			})
		}
	}
	return correct, nil
}

// VerifyAnswer is the generator-bound form of the package VerifyAnswer
func (g *Generator) VerifyAnswer(p *model.Puzzle, submitted float64, sink StatisticsSink) (bool, error) {
	return VerifyAnswer(p, submitted, sink)
}

// ParseAnswer parses a typed answer such as " 8 " or "2.5"
func ParseAnswer(text string) (float64, error) {
	trimmed := strings.TrimSpace(text)
	v, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, model.WrapError(model.KindInvalidMove, "Invalid answer format", err, map[string]any{
			"answer": text,
		})
	}
	return v, nil
}
