package puzzle

import (
	"fmt"

	"github.com/mcoot/bananamath/internal/model"
)

// Hint describes the first step of a puzzle. The text depends only on the
// operands and operators, so the same puzzle always gets the same hint.
func Hint(p *model.Puzzle) string {
	if len(p.Operations) == 0 || len(p.Numbers) < 2 {
		return "Work through the expression from left to right."
	}

	a, b := p.Numbers[0], p.Numbers[1]
	first := stepHint(p.Operations[0], a, b)
	if len(p.Operations) == 1 {
		return first
	}

	partial := apply(p.Operations[0], a, b)
	return fmt.Sprintf("%s That gives %d; then carry on left to right.", first, partial)
}

func stepHint(op model.Operation, a, b int) string {
	switch op {
	case model.OpAdd:
		return fmt.Sprintf("Start at %d and count up %d.", a, b)
	case model.OpSubtract:
		return fmt.Sprintf("Start at %d and count back %d.", a, b)
	case model.OpMultiply:
		return fmt.Sprintf("Think of %d groups of %d.", b, a)
	case model.OpDivide:
		return fmt.Sprintf("How many groups of %d fit into %d?", b, a)
	}
	return "Work through the expression from left to right."
}
