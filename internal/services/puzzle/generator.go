package puzzle

import (
	"errors"
	"log/slog"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/mcoot/bananamath/internal/dependencies/clock"
	"github.com/mcoot/bananamath/internal/dependencies/random"
	"github.com/mcoot/bananamath/internal/model"
)

// DifficultyProvider is the authoritative owner of the current tier
type DifficultyProvider interface {
	Tier() model.Tier
	Params() model.DifficultyConfig
	ParamsFor(tier model.Tier) (model.DifficultyConfig, error)
	AdjustDifficulty(successRate float64) model.Tier
}

// StatisticsSink receives answer outcomes
type StatisticsSink interface {
	UpdateStatistics(name string, amount int) error
}

var errNoOperand = errors.New("no operand satisfies the operator within range")

// Generator produces arithmetic puzzles for a difficulty tier
type Generator struct {
	difficulty DifficultyProvider
	random     random.Random
	clock      clock.Clock
	logger     *slog.Logger
}

// New creates a new puzzle Generator
func New(difficulty DifficultyProvider, random random.Random, clock clock.Clock, logger *slog.Logger) *Generator {
	return &Generator{
		difficulty: difficulty,
		random:     random,
		clock:      clock,
		logger:     logger,
	}
}

// Generate creates a puzzle using the configuration of tier
func (g *Generator) Generate(tier model.Tier) (*model.Puzzle, error) {
	cfg, err := g.difficulty.ParamsFor(tier)
	if err != nil {
		return nil, err
	}
	return g.build(tier, cfg)
}

// GenerateCurrent creates a puzzle for the provider's current tier
func (g *Generator) GenerateCurrent() (*model.Puzzle, error) {
	return g.Generate(g.difficulty.Tier())
}

// GenerateForOperation creates a single-step puzzle with an explicit
// operator, using the current tier's number range
func (g *Generator) GenerateForOperation(op model.Operation) (*model.Puzzle, error) {
	if !op.Valid() {
		return nil, model.NewError(model.KindPuzzleGeneration, "Invalid operation", map[string]any{"operation": int(op)})
	}
	tier := g.difficulty.Tier()
	cfg := g.difficulty.Params()
	cfg.Operations = []model.Operation{op}
	cfg.Steps = 1
	return g.build(tier, cfg)
}

// AdjustDifficulty forwards the success rate to the difficulty provider
func (g *Generator) AdjustDifficulty(successRate float64) model.Tier {
	return g.difficulty.AdjustDifficulty(successRate)
}

func (g *Generator) build(tier model.Tier, cfg model.DifficultyConfig) (*model.Puzzle, error) {
	numbers, ops, value, err := g.chain(cfg)
	if err != nil {
		g.logger.Warn("puzzle generation failed",
			slog.String("difficulty", string(tier)),
			slog.String("error", err.Error()),
		)
		return nil, model.WrapError(model.KindPuzzleGeneration, "Failed to generate puzzle", err, map[string]any{
			"difficulty": string(tier),
		})
	}

	p := &model.Puzzle{
		ID:         uuid.NewString(),
		Numbers:    numbers,
		Operations: ops,
		Expression: Expression(numbers, ops),
		Answer:     float64(value),
		Difficulty: tier,
		TimeLimit:  cfg.TimeLimit,
		Points:     cfg.Points,
		CreatedAt:  g.clock.Now(),
	}
	p.Hint = Hint(p)

	if err := Validate(p, cfg); err != nil {
		g.logger.Warn("generated puzzle failed validation",
			slog.String("difficulty", string(tier)),
			slog.String("expression", p.Expression),
			slog.String("error", err.Error()),
		)
		return nil, model.WrapError(model.KindPuzzleGeneration, "Failed to generate puzzle", err, map[string]any{
			"difficulty": string(tier),
			"expression": p.Expression,
		})
	}

	g.logger.Debug("puzzle generated",
		slog.String("puzzle_id", p.ID),
		slog.String("difficulty", string(tier)),
		slog.String("expression", p.Expression),
	)
	return p, nil
}

// chain draws Steps+1 operands and Steps operators, evaluated left to right
func (g *Generator) chain(cfg model.DifficultyConfig) ([]int, []model.Operation, int, error) {
	if len(cfg.Operations) == 0 {
		return nil, nil, 0, errors.New("no operations configured")
	}
	steps := max(cfg.Steps, 1)

	op, err := random.Pick(g.random, cfg.Operations)
	if err != nil {
		return nil, nil, 0, err
	}
	a, b, err := g.firstPair(op, cfg)
	if err != nil {
		return nil, nil, 0, err
	}

	numbers := []int{a, b}
	ops := []model.Operation{op}
	value := apply(op, a, b)

	for i := 1; i < steps; i++ {
		op, err := random.Pick(g.random, cfg.Operations)
		if err != nil {
			return nil, nil, 0, err
		}
		op, n, err := g.nextOperand(op, value, cfg)
		if err != nil {
			return nil, nil, 0, err
		}
		numbers = append(numbers, n)
		ops = append(ops, op)
		value = apply(op, value, n)
	}
	return numbers, ops, value, nil
}

// firstPair draws the first two operands. Division draws divisor and
// quotient first so the dividend stays in range and divides exactly.
func (g *Generator) firstPair(op model.Operation, cfg model.DifficultyConfig) (int, int, error) {
	if op == model.OpDivide {
		qLo := max(cfg.MinNumber, 1)
		dLo := max(qLo, 2)
		dHi := cfg.MaxNumber / qLo
		if dHi < dLo {
			dLo = qLo
		}
		divisor, err := random.Between(g.random, dLo, dHi)
		if err != nil {
			return 0, 0, err
		}
		quotient, err := random.Between(g.random, qLo, cfg.MaxNumber/divisor)
		if err != nil {
			return 0, 0, err
		}
		return divisor * quotient, divisor, nil
	}

	a, err := random.Between(g.random, cfg.MinNumber, cfg.MaxNumber)
	if err != nil {
		return 0, 0, err
	}
	b, err := random.Between(g.random, cfg.MinNumber, cfg.MaxNumber)
	if err != nil {
		return 0, 0, err
	}
	if op == model.OpSubtract && a < b {
		a, b = b, a
	}
	return a, b, nil
}

// nextOperand draws the operand that combines with the running value.
// Results stay non-negative integers; when op cannot satisfy that another
// allowed operator is used instead.
func (g *Generator) nextOperand(op model.Operation, value int, cfg model.DifficultyConfig) (model.Operation, int, error) {
	candidates := []model.Operation{op}
	for _, o := range cfg.Operations {
		if o != op {
			candidates = append(candidates, o)
		}
	}

	for _, o := range candidates {
		n, err := g.operandFor(o, value, cfg)
		if errors.Is(err, errNoOperand) {
			continue
		}
		return o, n, err
	}
	return 0, 0, errNoOperand
}

func (g *Generator) operandFor(op model.Operation, value int, cfg model.DifficultyConfig) (int, error) {
	switch op {
	case model.OpDivide:
		divisors := divisorsInRange(value, max(cfg.MinNumber, 1), cfg.MaxNumber)
		if len(divisors) == 0 {
			return 0, errNoOperand
		}
		return random.Pick(g.random, divisors)
	case model.OpSubtract:
		hi := min(cfg.MaxNumber, value)
		if hi < cfg.MinNumber {
			return 0, errNoOperand
		}
		return random.Between(g.random, cfg.MinNumber, hi)
	default:
		return random.Between(g.random, cfg.MinNumber, cfg.MaxNumber)
	}
}

// FindDivisor returns the largest divisor of n other than n itself, or 1
// when n has none. It never returns 0.
func FindDivisor(n int) int {
	if n < 0 {
		n = -n
	}
	for d := n / 2; d >= 2; d-- {
		if n%d == 0 {
			return d
		}
	}
	return 1
}

// divisorsInRange lists divisors of n within [lo, hi], preferring ones that
// are neither 1 nor n itself
func divisorsInRange(n, lo, hi int) []int {
	if n <= 0 {
		return nil
	}
	var proper, trivial []int
	for d := max(lo, 1); d <= hi && d <= n; d++ {
		if n%d != 0 {
			continue
		}
		if d == 1 || d == n {
			trivial = append(trivial, d)
		} else {
			proper = append(proper, d)
		}
	}
	if len(proper) > 0 {
		return proper
	}
	return trivial
}

func apply(op model.Operation, a, b int) int {
	return int(op.Apply(float64(a), float64(b)))
}

// Expression renders operands and operators left to right, parenthesising
// the running value of chained steps: "a + b", "(a + b) * c"
func Expression(numbers []int, ops []model.Operation) string {
	if len(numbers) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(strconv.Itoa(numbers[0]))
	for i, op := range ops {
		if i+1 >= len(numbers) {
			break
		}
		if i > 0 {
			s := b.String()
			b.Reset()
			b.WriteString("(" + s + ")")
		}
		b.WriteString(" " + op.Symbol() + " " + strconv.Itoa(numbers[i+1]))
	}
	return b.String()
}
