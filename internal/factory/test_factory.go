package factory

import (
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/bananamath/internal/dependencies/mocks"
	"github.com/mcoot/bananamath/internal/services/auth"
	"github.com/mcoot/bananamath/internal/services/game"
	"github.com/mcoot/bananamath/internal/storage"
	"github.com/mcoot/bananamath/internal/storage/memory"
	"github.com/mcoot/bananamath/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
	Store      *mocks.FaultyStorage
}

// NewTestApp creates an App configured for testing with mocked dependencies
func NewTestApp() *TestApp {
	return NewTestAppWithStorage(memory.New())
}

// NewTestAppWithStorage is NewTestApp over an existing backend, so several
// apps can share one store the way restarted processes do
func NewTestAppWithStorage(inner storage.Storage) *TestApp {
	store := mocks.NewFaultyStorage(inner)
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()

	authCfg := auth.DefaultConfig()
	authCfg.BcryptCost = bcrypt.MinCost
	gameCfg := game.DefaultConfig()
	gameCfg.GenerationDelay = time.Millisecond

	app := newWithDependencies(store, mockClock, mockRandom, withDefaults(Config{
		AuthConfig: authCfg,
		GameConfig: gameCfg,
	}), testutil.NopLogger())

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
		Store:      store,
	}
}
