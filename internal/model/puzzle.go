package model

import (
	"fmt"
	"time"
)

// Operation is an arithmetic operator
type Operation int

const (
	OpAdd Operation = iota + 1
	OpSubtract
	OpMultiply
	OpDivide
)

// AllOperations lists every operator in display order
var AllOperations = []Operation{OpAdd, OpSubtract, OpMultiply, OpDivide}

// ParseOperation converts an operator symbol into an Operation
func ParseOperation(symbol string) (Operation, error) {
	switch symbol {
	case "+":
		return OpAdd, nil
	case "-":
		return OpSubtract, nil
	case "*", "x", "×":
		return OpMultiply, nil
	case "/", "÷":
		return OpDivide, nil
	}
	return 0, NewError(KindValidation, "Invalid operation", map[string]any{"operation": symbol})
}

// Symbol returns the ASCII operator used in expressions
func (o Operation) Symbol() string {
	switch o {
	case OpAdd:
		return "+"
	case OpSubtract:
		return "-"
	case OpMultiply:
		return "*"
	case OpDivide:
		return "/"
	}
	return "?"
}

// Valid reports whether o is one of the four operators
func (o Operation) Valid() bool {
	return o >= OpAdd && o <= OpDivide
}

// Apply evaluates a o b. Division by zero yields zero; generated puzzles never divide by zero.
func (o Operation) Apply(a, b float64) float64 {
	switch o {
	case OpAdd:
		return a + b
	case OpSubtract:
		return a - b
	case OpMultiply:
		return a * b
	case OpDivide:
		if b == 0 {
			return 0
		}
		return a / b
	}
	return 0
}

// String implements fmt.Stringer
func (o Operation) String() string {
	return o.Symbol()
}

// MarshalText encodes the operation as its symbol
func (o Operation) MarshalText() ([]byte, error) {
	if !o.Valid() {
		return nil, fmt.Errorf("invalid operation %d", int(o))
	}
	return []byte(o.Symbol()), nil
}

// UnmarshalText decodes an operator symbol
func (o *Operation) UnmarshalText(text []byte) error {
	op, err := ParseOperation(string(text))
	if err != nil {
		return err
	}
	*o = op
	return nil
}

// Tier is a difficulty configuration label
type Tier string

const (
	TierEasy   Tier = "easy"
	TierNormal Tier = "normal"
	TierHard   Tier = "hard"
)

// DefaultTier is the tier a new session starts on
const DefaultTier = TierNormal

// Tiers lists tiers from easiest to hardest
var Tiers = []Tier{TierEasy, TierNormal, TierHard}

// ParseTier validates a difficulty label
func ParseTier(label string) (Tier, error) {
	switch Tier(label) {
	case TierEasy, TierNormal, TierHard:
		return Tier(label), nil
	}
	return "", NewError(KindPuzzleGeneration, "Invalid difficulty level", map[string]any{"difficulty": label})
}

// Harder returns the next tier up, saturating at hard
func (t Tier) Harder() Tier {
	switch t {
	case TierEasy:
		return TierNormal
	default:
		return TierHard
	}
}

// Easier returns the next tier down, saturating at easy
func (t Tier) Easier() Tier {
	switch t {
	case TierHard:
		return TierNormal
	default:
		return TierEasy
	}
}

// DifficultyConfig holds the generation parameters for one tier
type DifficultyConfig struct {
	MinNumber  int
	MaxNumber  int
	Operations []Operation
	Steps      int // number of operators; operands = Steps+1
	TimeLimit  int // seconds
	Points     int
}

// Allows reports whether op is in the config's operator set
func (c DifficultyConfig) Allows(op Operation) bool {
	for _, o := range c.Operations {
		if o == op {
			return true
		}
	}
	return false
}

// DefaultDifficultyConfigs returns the static per-tier configuration
func DefaultDifficultyConfigs() map[Tier]DifficultyConfig {
	return map[Tier]DifficultyConfig{
		TierEasy: {
			MinNumber:  1,
			MaxNumber:  10,
			Operations: []Operation{OpAdd, OpSubtract},
			Steps:      1,
			TimeLimit:  30,
			Points:     10,
		},
		TierNormal: {
			MinNumber:  1,
			MaxNumber:  20,
			Operations: []Operation{OpAdd, OpSubtract, OpMultiply, OpDivide},
			Steps:      1,
			TimeLimit:  45,
			Points:     20,
		},
		TierHard: {
			MinNumber:  2,
			MaxNumber:  50,
			Operations: []Operation{OpAdd, OpSubtract, OpMultiply, OpDivide},
			Steps:      2,
			TimeLimit:  60,
			Points:     30,
		},
	}
}

// Puzzle is a single generated arithmetic challenge. Operations[i] combines
// the running value with Numbers[i+1], evaluated left to right.
type Puzzle struct {
	ID         string      `json:"id"`
	Numbers    []int       `json:"numbers"`
	Operations []Operation `json:"operations"`
	Expression string      `json:"expression"`
	Answer     float64     `json:"answer"`
	Difficulty Tier        `json:"difficulty"`
	TimeLimit  int         `json:"time_limit"`
	Points     int         `json:"points"`
	Hint       string      `json:"hint"`
	CreatedAt  time.Time   `json:"created_at"`
}

// Num1 returns the first operand
func (p *Puzzle) Num1() int {
	if len(p.Numbers) == 0 {
		return 0
	}
	return p.Numbers[0]
}

// Num2 returns the second operand
func (p *Puzzle) Num2() int {
	if len(p.Numbers) < 2 {
		return 0
	}
	return p.Numbers[1]
}

// Operation returns the first operator
func (p *Puzzle) Operation() Operation {
	if len(p.Operations) == 0 {
		return 0
	}
	return p.Operations[0]
}

// Clone returns a deep copy of the puzzle
func (p *Puzzle) Clone() *Puzzle {
	c := *p
	c.Numbers = append([]int(nil), p.Numbers...)
	c.Operations = append([]Operation(nil), p.Operations...)
	return &c
}
