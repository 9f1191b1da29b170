package factory

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/mcoot/bananamath/internal/config"
	"github.com/mcoot/bananamath/internal/dependencies/clock"
	"github.com/mcoot/bananamath/internal/dependencies/random"
	"github.com/mcoot/bananamath/internal/metrics"
	"github.com/mcoot/bananamath/internal/model"
	"github.com/mcoot/bananamath/internal/services/auth"
	"github.com/mcoot/bananamath/internal/services/difficulty"
	"github.com/mcoot/bananamath/internal/services/game"
	"github.com/mcoot/bananamath/internal/services/puzzle"
	"github.com/mcoot/bananamath/internal/storage"
	"github.com/mcoot/bananamath/internal/storage/memory"
	redisstorage "github.com/mcoot/bananamath/internal/storage/redis"
	"github.com/mcoot/bananamath/internal/storage/sqlite"
)

// Storage type constants
const (
	StorageTypeMemory = config.StorageMemory
	StorageTypeRedis  = config.StorageRedis
	StorageTypeSQLite = config.StorageSQLite
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random
	Logger *slog.Logger

	// Services
	AuthManager *auth.Manager
	Sessions    *game.Registry
	Metrics     *metrics.Metrics

	gameConfig       game.Config
	difficultyConfig difficulty.Config
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory", "redis" or "sqlite")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// SQLitePath is the database file (required if StorageType is "sqlite")
	SQLitePath string
	// AuthConfig, GameConfig and DifficultyConfig default when left zero
	AuthConfig       auth.Config
	GameConfig       game.Config
	DifficultyConfig difficulty.Config
}

// FromEnv converts the environment configuration into a factory Config
func FromEnv(c config.Config, logger *slog.Logger) Config {
	redisCfg := redisstorage.DefaultConfig()
	redisCfg.URL = c.RedisURL

	diffCfg := difficulty.DefaultConfig()
	diffCfg.MaxLevel = c.MaxLevel

	return Config{
		Logger:      logger,
		StorageType: c.StorageType,
		RedisConfig: &redisCfg,
		SQLitePath:  c.SQLitePath,
		AuthConfig: auth.Config{
			MaxLoginAttempts: c.MaxLoginAttempts,
			LockoutDuration:  c.LockoutDuration,
			SessionDuration:  c.SessionDuration,
			JWTSecret:        []byte(c.JWTSecret),
			BcryptCost:       c.BcryptCost,
			PersistTimeout:   c.PersistTimeout,
		},
		GameConfig: game.Config{
			ScoreIncrement:     c.ScoreIncrement,
			ScoreDecrement:     c.ScoreDecrement,
			HintsPerGame:       c.HintsPerGame,
			HighScoreLimit:     c.HighScoreLimit,
			DifficultyWindow:   c.DifficultyWindow,
			LevelUpEvery:       c.LevelUpEvery,
			GenerationAttempts: c.GenerationAttempts,
			GenerationDelay:    c.GenerationDelay,
			PersistTimeout:     c.PersistTimeout,
		},
		DifficultyConfig: diffCfg,
	}
}

// New creates a new application with all dependencies wired
func New(ctx context.Context, cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	store, err := openStorage(ctx, cfg)
	if err != nil {
		return nil, model.WrapError(model.KindConfiguration, "Failed to open storage", err, map[string]any{
			"storage_type": cfg.StorageType,
		})
	}
	logger.Info("storage opened", slog.String("storage_type", storageType(cfg)))

	return newWithDependencies(store, clock.New(), random.New(), withDefaults(cfg), logger), nil
}

func storageType(cfg Config) string {
	if cfg.StorageType == "" {
		return StorageTypeMemory
	}
	return cfg.StorageType
}

func openStorage(ctx context.Context, cfg Config) (storage.Storage, error) {
	switch storageType(cfg) {
	case StorageTypeMemory:
		return memory.New(), nil
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, fmt.Errorf("RedisConfig required when StorageType is redis")
		}
		return redisstorage.New(*cfg.RedisConfig)
	case StorageTypeSQLite:
		if cfg.SQLitePath == "" {
			return nil, fmt.Errorf("SQLitePath required when StorageType is sqlite")
		}
		return sqlite.New(ctx, cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("invalid StorageType %q: must be 'memory', 'redis' or 'sqlite'", cfg.StorageType)
	}
}

// withDefaults fills zero sub-configs with their defaults
func withDefaults(cfg Config) Config {
	if cfg.AuthConfig.SessionDuration == 0 {
		cfg.AuthConfig = auth.DefaultConfig()
	}
	if cfg.GameConfig == (game.Config{}) {
		cfg.GameConfig = game.DefaultConfig()
	}
	if cfg.DifficultyConfig.Tiers == nil {
		maxLevel := cfg.DifficultyConfig.MaxLevel
		cfg.DifficultyConfig = difficulty.DefaultConfig()
		if maxLevel > 0 {
			cfg.DifficultyConfig.MaxLevel = maxLevel
		}
	}
	return cfg
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Storage, clk clock.Clock, rnd random.Random, cfg Config, logger *slog.Logger) *App {
	app := &App{
		Storage:          store,
		Clock:            clk,
		Random:           rnd,
		Logger:           logger,
		AuthManager:      auth.New(cfg.AuthConfig, store, clk, logger),
		Metrics:          metrics.New(),
		gameConfig:       cfg.GameConfig,
		difficultyConfig: cfg.DifficultyConfig,
	}
	app.Sessions = game.NewRegistry(app.newSession)
	return app
}

// newSession builds a play session with its own difficulty manager and
// generator, bound to profile
func (a *App) newSession(profile *model.UserProfile) *game.State {
	diff := difficulty.New(a.difficultyConfig, a.Logger)
	gen := puzzle.New(diff, a.Random, a.Clock, a.Logger)
	return game.New(a.gameConfig, profile, gen, diff, a.Storage, a.AuthManager, a.Clock, a.Logger)
}

// Close releases the storage backend
func (a *App) Close() error {
	return a.Storage.Close()
}
