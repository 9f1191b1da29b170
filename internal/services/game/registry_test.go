package game

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/bananamath/internal/dependencies/mocks"
	"github.com/mcoot/bananamath/internal/model"
	"github.com/mcoot/bananamath/internal/services/difficulty"
	"github.com/mcoot/bananamath/internal/services/puzzle"
	"github.com/mcoot/bananamath/internal/storage/memory"
	"github.com/mcoot/bananamath/internal/testutil"
)

func TestRegistryReusesSessions(t *testing.T) {
	clk := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	store := memory.New()
	created := 0
	reg := NewRegistry(func(profile *model.UserProfile) *State {
		created++
		diff := difficulty.New(difficulty.DefaultConfig(), testutil.NopLogger())
		gen := puzzle.New(diff, mocks.NewMockRandom(), clk, testutil.NopLogger())
		return New(DefaultConfig(), profile, gen, diff, store, nil, clk, testutil.NopLogger())
	})

	get := func(profile *model.UserProfile) *State {
		st, err := reg.Get(context.Background(), profile)
		require.NoError(t, err)
		return st
	}

	alice := model.NewUserProfile("u1", "alice", clk.Now())
	bob := model.NewUserProfile("u2", "bob", clk.Now())

	first := get(alice)
	assert.Same(t, first, get(alice))
	assert.NotSame(t, first, get(bob))
	assert.Equal(t, 2, created)
	assert.Equal(t, 2, reg.Len())

	got, ok := reg.Lookup("u1")
	assert.True(t, ok)
	assert.Same(t, first, got)

	reg.Remove("u1")
	_, ok = reg.Lookup("u1")
	assert.False(t, ok)
}
