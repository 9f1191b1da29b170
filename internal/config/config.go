// Package config loads application settings from the environment.
package config

import (
	"errors"
	"os"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/mcoot/bananamath/internal/model"
)

// Storage backends
const (
	StorageMemory = "memory"
	StorageRedis  = "redis"
	StorageSQLite = "sqlite"
)

// Config is the full environment surface of the application
type Config struct {
	AppName  string `env:"APP_NAME" envDefault:"Banana Math Puzzle"`
	Debug    bool   `env:"DEBUG" envDefault:"false"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"INFO"`

	// Gameplay
	ScoreIncrement     int           `env:"SCORE_INCREMENT" envDefault:"10"`
	ScoreDecrement     int           `env:"SCORE_DECREMENT" envDefault:"5"`
	MaxLevel           int           `env:"MAX_LEVEL" envDefault:"10"`
	HintsPerGame       int           `env:"HINTS_PER_GAME" envDefault:"3"`
	HighScoreLimit     int           `env:"HIGH_SCORE_LIMIT" envDefault:"10"`
	DifficultyWindow   int           `env:"DIFFICULTY_WINDOW" envDefault:"5"`
	LevelUpEvery       int           `env:"LEVEL_UP_EVERY" envDefault:"5"`
	GenerationAttempts int           `env:"GENERATION_ATTEMPTS" envDefault:"3"`
	GenerationDelay    time.Duration `env:"GENERATION_DELAY" envDefault:"100ms"`

	// Auth
	MaxLoginAttempts int           `env:"MAX_LOGIN_ATTEMPTS" envDefault:"3"`
	LockoutDuration  time.Duration `env:"LOCKOUT_DURATION" envDefault:"5m"`
	SessionDuration  time.Duration `env:"SESSION_DURATION" envDefault:"24h"`
	JWTSecret        string        `env:"JWT_SECRET,required,notEmpty"`
	BcryptCost       int           `env:"BCRYPT_COST" envDefault:"10"`

	// Storage
	StorageType    string        `env:"STORAGE_TYPE" envDefault:"memory"`
	RedisURL       string        `env:"REDIS_URL" envDefault:"redis://localhost:6379"`
	SQLitePath     string        `env:"SQLITE_PATH" envDefault:"bananamath.db"`
	PersistTimeout time.Duration `env:"PERSIST_TIMEOUT" envDefault:"5s"`

	// HTTP
	HTTPAddr           string  `env:"HTTP_ADDR" envDefault:":8080"`
	LoginRatePerSecond float64 `env:"LOGIN_RATE_PER_SECOND" envDefault:"1"`
	LoginRateBurst     int     `env:"LOGIN_RATE_BURST" envDefault:"5"`
}

// Load reads the configuration from the process environment
func Load() (Config, error) {
	return LoadFrom(environ())
}

// LoadFrom reads the configuration from the given variables only
func LoadFrom(vars map[string]string) (Config, error) {
	var cfg Config
	err := env.ParseWithOptions(&cfg, env.Options{Environment: vars})
	if err != nil {
		missing, invalid := classify(err)
		return Config{}, model.WrapError(model.KindConfiguration, "Configuration validation failed", err, map[string]any{
			"missing_keys": missing,
			"invalid_keys": invalid,
		})
	}

	if invalid := cfg.validate(); len(invalid) > 0 {
		return Config{}, model.NewError(model.KindConfiguration, "Configuration validation failed", map[string]any{
			"missing_keys": []string{},
			"invalid_keys": invalid,
		})
	}
	return cfg, nil
}

func (c Config) validate() []string {
	var invalid []string
	check := func(ok bool, key string) {
		if !ok {
			invalid = append(invalid, key)
		}
	}
	check(c.ScoreIncrement >= 0, "SCORE_INCREMENT")
	check(c.ScoreDecrement >= 0, "SCORE_DECREMENT")
	check(c.MaxLevel >= 1, "MAX_LEVEL")
	check(c.HintsPerGame >= 0, "HINTS_PER_GAME")
	check(c.HighScoreLimit >= 1, "HIGH_SCORE_LIMIT")
	check(c.DifficultyWindow >= 1, "DIFFICULTY_WINDOW")
	check(c.LevelUpEvery >= 0, "LEVEL_UP_EVERY")
	check(c.GenerationAttempts >= 1, "GENERATION_ATTEMPTS")
	check(c.GenerationDelay >= 0, "GENERATION_DELAY")
	check(c.MaxLoginAttempts >= 1, "MAX_LOGIN_ATTEMPTS")
	check(c.LockoutDuration > 0, "LOCKOUT_DURATION")
	check(c.SessionDuration > 0, "SESSION_DURATION")
	check(c.BcryptCost >= 4 && c.BcryptCost <= 31, "BCRYPT_COST")
	check(c.PersistTimeout > 0, "PERSIST_TIMEOUT")
	check(c.LoginRatePerSecond > 0, "LOGIN_RATE_PER_SECOND")
	check(c.LoginRateBurst >= 1, "LOGIN_RATE_BURST")
	switch c.StorageType {
	case StorageMemory, StorageRedis, StorageSQLite:
	default:
		invalid = append(invalid, "STORAGE_TYPE")
	}
	return invalid
}

// classify splits env parse failures into missing and invalid keys
func classify(err error) (missing, invalid []string) {
	missing, invalid = []string{}, []string{}

	errs := []error{err}
	var agg env.AggregateError
	if errors.As(err, &agg) {
		errs = agg.Errors
	}

	for _, e := range errs {
		var notSet env.VarIsNotSetError
		var empty env.EmptyVarError
		var parse env.ParseError
		switch {
		case errors.As(e, &notSet):
			missing = append(missing, notSet.Key)
		case errors.As(e, &empty):
			missing = append(missing, empty.Key)
		case errors.As(e, &parse):
			invalid = append(invalid, envKey(parse.Name))
		}
	}
	sort.Strings(missing)
	sort.Strings(invalid)
	return missing, invalid
}

// envKey returns the env tag of the named Config field
func envKey(field string) string {
	f, ok := reflect.TypeOf(Config{}).FieldByName(field)
	if !ok {
		return field
	}
	key, _, _ := strings.Cut(f.Tag.Get("env"), ",")
	return key
}

func environ() map[string]string {
	vars := make(map[string]string)
	for _, kv := range os.Environ() {
		k, v, ok := strings.Cut(kv, "=")
		if ok {
			vars[k] = v
		}
	}
	return vars
}
