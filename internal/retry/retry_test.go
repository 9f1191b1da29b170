package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoSucceedsAfterFailures(t *testing.T) {
	attempts := 0
	err := Do(context.Background(), 3, time.Millisecond, func(ctx context.Context) error {
		attempts++
		if attempts < 3 {
			return errors.New("not ready yet")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestDoReturnsLastError(t *testing.T) {
	attempts := 0
	err := Do(context.Background(), 2, time.Millisecond, func(ctx context.Context) error {
		attempts++
		return errors.New("always fails")
	})

	require.Error(t, err)
	assert.Equal(t, "always fails", err.Error())
	assert.Equal(t, 2, attempts)
}

func TestDoStopsOnPermanent(t *testing.T) {
	sentinel := errors.New("bad input")
	attempts := 0
	err := Do(context.Background(), 5, time.Millisecond, func(ctx context.Context) error {
		attempts++
		return Permanent(sentinel)
	})

	assert.ErrorIs(t, err, sentinel)
	assert.Equal(t, 1, attempts)
}

func TestDoZeroAttemptsRunsOnce(t *testing.T) {
	attempts := 0
	_ = Do(context.Background(), 0, time.Millisecond, func(ctx context.Context) error {
		attempts++
		return errors.New("fail")
	})
	assert.Equal(t, 1, attempts)
}

func TestDoHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0
	err := Do(ctx, 10, time.Hour, func(ctx context.Context) error {
		attempts++
		cancel()
		return errors.New("fail")
	})

	assert.Error(t, err)
	assert.Equal(t, 1, attempts)
}
