package random

import (
	"crypto/rand"
	"errors"
	"math/big"
)

// ErrInvalidBound is returned when a draw is requested from an empty range
var ErrInvalidBound = errors.New("random: bound must be positive")

// Random provides random number generation that can be mocked for testing.
// Draws return an error so that callers can surface a failing source.
type Random interface {
	// Intn returns a random int in [0, n)
	Intn(n int) (int, error)
}

// CryptoRandom implements Random using crypto/rand
type CryptoRandom struct{}

// New creates a new CryptoRandom
func New() *CryptoRandom {
	return &CryptoRandom{}
}

// Intn returns a cryptographically random int in [0, n)
func (r *CryptoRandom) Intn(n int) (int, error) {
	if n <= 0 {
		return 0, ErrInvalidBound
	}
	result, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0, err
	}
	return int(result.Int64()), nil
}

// Between returns a random int in [lo, hi]. It returns lo when hi < lo.
func Between(r Random, lo, hi int) (int, error) {
	if hi <= lo {
		return lo, nil
	}
	n, err := r.Intn(hi - lo + 1)
	if err != nil {
		return 0, err
	}
	return lo + n, nil
}

// Pick returns a random element of items
func Pick[T any](r Random, items []T) (T, error) {
	var zero T
	if len(items) == 0 {
		return zero, ErrInvalidBound
	}
	i, err := r.Intn(len(items))
	if err != nil {
		return zero, err
	}
	return items[i], nil
}
