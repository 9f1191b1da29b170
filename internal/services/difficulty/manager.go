package difficulty

import (
	"log/slog"
	"sync"

	"github.com/mcoot/bananamath/internal/model"
)

// Success-rate thresholds for changing tier
const (
	RaiseThreshold = 0.8
	LowerThreshold = 0.4
)

// Config holds configuration for the difficulty manager
type Config struct {
	MaxLevel    int
	InitialTier model.Tier
	Tiers       map[model.Tier]model.DifficultyConfig
}

// DefaultConfig returns default difficulty configuration
func DefaultConfig() Config {
	return Config{
		MaxLevel:    10,
		InitialTier: model.DefaultTier,
		Tiers:       model.DefaultDifficultyConfigs(),
	}
}

// Manager tracks the current tier and level of one session
type Manager struct {
	mu sync.RWMutex

	tier     model.Tier
	level    int
	maxLevel int
	tiers    map[model.Tier]model.DifficultyConfig

	logger *slog.Logger
}

// New creates a difficulty manager at level 1 on the configured initial tier
func New(cfg Config, logger *slog.Logger) *Manager {
	defaults := DefaultConfig()
	if cfg.MaxLevel < 1 {
		cfg.MaxLevel = defaults.MaxLevel
	}
	if _, err := model.ParseTier(string(cfg.InitialTier)); err != nil {
		cfg.InitialTier = defaults.InitialTier
	}
	if cfg.Tiers == nil {
		cfg.Tiers = defaults.Tiers
	}
	return &Manager{
		tier:     cfg.InitialTier,
		level:    1,
		maxLevel: cfg.MaxLevel,
		tiers:    cfg.Tiers,
		logger:   logger,
	}
}

// Tier returns the current tier
func (m *Manager) Tier() model.Tier {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.tier
}

// SetTier switches to tier
func (m *Manager) SetTier(tier model.Tier) error {
	if _, err := model.ParseTier(string(tier)); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tier = tier
	return nil
}

// Params returns the configuration of the current tier
func (m *Manager) Params() model.DifficultyConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.tiers[m.tier]
}

// ParamsFor returns the configuration of tier
func (m *Manager) ParamsFor(tier model.Tier) (model.DifficultyConfig, error) {
	if _, err := model.ParseTier(string(tier)); err != nil {
		return model.DifficultyConfig{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.tiers[tier], nil
}

// AdjustDifficulty moves one tier up or down based on the observed success
// rate and returns the resulting tier. Rates outside [0, 1] are clamped.
func (m *Manager) AdjustDifficulty(successRate float64) model.Tier {
	rate := min(max(successRate, 0), 1)

	m.mu.Lock()
	defer m.mu.Unlock()

	prev := m.tier
	switch {
	case rate >= RaiseThreshold:
		m.tier = m.tier.Harder()
	case rate <= LowerThreshold:
		m.tier = m.tier.Easier()
	}

	if m.tier != prev {
		m.logger.Info("difficulty adjusted",
			slog.String("from", string(prev)),
			slog.String("to", string(m.tier)),
			slog.Float64("success_rate", rate),
		)
	}
	return m.tier
}

// Level returns the current level
func (m *Manager) Level() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.level
}

// MaxLevel returns the configured level cap
func (m *Manager) MaxLevel() int {
	return m.maxLevel
}

// SetLevel restores a level, clamped to [1, MaxLevel]
func (m *Manager) SetLevel(level int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.level = min(max(level, 1), m.maxLevel)
}

// IncreaseLevel raises the level by one and reports whether it changed.
// At MaxLevel it returns false and leaves the level unchanged.
func (m *Manager) IncreaseLevel() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.level >= m.maxLevel {
		return false
	}
	m.level++
	return true
}
