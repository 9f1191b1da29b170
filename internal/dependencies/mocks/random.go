package mocks

import (
	"sync"

	"github.com/mcoot/bananamath/internal/dependencies/random"
)

// MockRandom is a mock implementation of Random for testing.
// Queued values are returned modulo n so they always fall inside the requested range.
type MockRandom struct {
	mu sync.Mutex

	// IntnResults is a queue of results to return from Intn
	IntnResults []int
	intnIndex   int

	// Err, when set, is returned by every draw
	Err error
}

// Ensure MockRandom implements Random
var _ random.Random = (*MockRandom)(nil)

// NewMockRandom creates a new MockRandom
func NewMockRandom() *MockRandom {
	return &MockRandom{}
}

// Intn returns the next queued result, or 0 if none remaining
func (r *MockRandom) Intn(n int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return 0, r.Err
	}
	if n <= 0 {
		return 0, random.ErrInvalidBound
	}
	if r.intnIndex >= len(r.IntnResults) {
		return 0, nil
	}
	result := r.IntnResults[r.intnIndex]
	r.intnIndex++
	return result % n, nil
}

// QueueIntn adds values to the Intn result queue
func (r *MockRandom) QueueIntn(values ...int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.IntnResults = append(r.IntnResults, values...)
}

// Fail makes every subsequent draw return err
func (r *MockRandom) Fail(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Err = err
}

// Reset clears all queued results and any injected error
func (r *MockRandom) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.IntnResults = nil
	r.intnIndex = 0
	r.Err = nil
}
