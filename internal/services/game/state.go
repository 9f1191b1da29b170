package game

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/mcoot/bananamath/internal/dependencies/clock"
	"github.com/mcoot/bananamath/internal/model"
	"github.com/mcoot/bananamath/internal/retry"
	"github.com/mcoot/bananamath/internal/services/puzzle"
	"github.com/mcoot/bananamath/internal/storage"
)

// DefaultSaveName is used when SaveState or LoadState get an empty name
const DefaultSaveName = "autosave"

// Achievements awarded automatically
const (
	AchievementFirstWin = "first_win"
	AchievementStreak5  = "streak_5"
	AchievementStreak10 = "streak_10"
	AchievementMaxLevel = "max_level"
)

// PuzzleSource generates and verifies puzzles
type PuzzleSource interface {
	Generate(tier model.Tier) (*model.Puzzle, error)
	VerifyAnswer(p *model.Puzzle, submitted float64, sink puzzle.StatisticsSink) (bool, error)
}

// Difficulty is the tier and level authority for a session
type Difficulty interface {
	puzzle.DifficultyProvider
	SetTier(tier model.Tier) error
	Level() int
	SetLevel(level int)
	IncreaseLevel() bool
	MaxLevel() int
}

// ProfileSaver persists the profile a session is bound to
type ProfileSaver interface {
	SaveProfile(ctx context.Context, profile *model.UserProfile) error
}

// Config holds configuration for a game session
type Config struct {
	ScoreIncrement     int
	ScoreDecrement     int
	HintsPerGame       int
	HighScoreLimit     int
	DifficultyWindow   int
	LevelUpEvery       int
	GenerationAttempts int
	GenerationDelay    time.Duration
	PersistTimeout     time.Duration
}

// DefaultConfig returns default game configuration
func DefaultConfig() Config {
	return Config{
		ScoreIncrement:     10,
		ScoreDecrement:     5,
		HintsPerGame:       3,
		HighScoreLimit:     10,
		DifficultyWindow:   5,
		LevelUpEvery:       5,
		GenerationAttempts: 3,
		GenerationDelay:    100 * time.Millisecond,
		PersistTimeout:     5 * time.Second,
	}
}

// State is one play session for one profile. All methods are safe for
// concurrent use; mutations are serialized by a single mutex.
type State struct {
	mu sync.Mutex

	cfg        Config
	profile    *model.UserProfile
	puzzles    PuzzleSource
	difficulty Difficulty
	store      storage.Store
	profiles   ProfileSaver
	clock      clock.Clock
	logger     *slog.Logger

	snap           model.Snapshot
	hintsRemaining int
	hintUsed       bool
	puzzleStarted  time.Time
	outcomes       []bool
}

// New creates a session bound to profile. The profile's score, level and
// achievements seed the session. profiles may be nil.
func New(
	cfg Config,
	profile *model.UserProfile,
	puzzles PuzzleSource,
	difficulty Difficulty,
	store storage.Store,
	profiles ProfileSaver,
	clock clock.Clock,
	logger *slog.Logger,
) *State {
	snap := model.NewSnapshot(profile.Username)
	snap.Player.Score = profile.Score
	snap.Player.Achievements = profile.Achievements.Clone()
	difficulty.SetLevel(profile.CurrentLevel)

	return &State{
		cfg:            cfg,
		profile:        profile,
		puzzles:        puzzles,
		difficulty:     difficulty,
		store:          store,
		profiles:       profiles,
		clock:          clock,
		logger:         logger.With(slog.String("user_id", string(profile.UserID))),
		snap:           snap,
		hintsRemaining: cfg.HintsPerGame,
	}
}

// NewPuzzle generates a puzzle for the current tier and makes it the active
// puzzle, replacing any unanswered one
func (s *State) NewPuzzle(ctx context.Context) (*model.Puzzle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tier := s.difficulty.Tier()
	var p *model.Puzzle
	err := retry.Do(ctx, s.cfg.GenerationAttempts, s.cfg.GenerationDelay, func(ctx context.Context) error {
		var err error
		p, err = s.puzzles.Generate(tier)
		return err
	})
	if err != nil {
		s.logger.Error("puzzle generation exhausted",
			slog.String("difficulty", string(tier)),
			slog.Int("attempts", s.cfg.GenerationAttempts),
			slog.String("error", err.Error()),
		)
		return nil, model.WrapError(model.KindOutOfResources, "Failed to generate puzzle", err, map[string]any{
			"difficulty": string(tier),
			"attempts":   s.cfg.GenerationAttempts,
		})
	}

	s.snap.Game.CurrentPuzzle = p
	s.snap.Game.Difficulty = tier
	s.puzzleStarted = s.clock.Now()
	s.hintUsed = false
	return p.Clone(), nil
}

// CheckAnswer consumes the active puzzle and scores the submission.
// A wrong or late answer returns an InvalidMoveError after being recorded.
func (s *State) CheckAnswer(submitted float64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, elapsed, hinted, err := s.consumePuzzle()
	if err != nil {
		return false, err
	}

	if p.TimeLimit > 0 && elapsed > time.Duration(p.TimeLimit)*time.Second {
		s.bumpStat(model.StatWrongAnswers, 1)
		s.miss()
		return false, model.NewError(model.KindInvalidMove, "Incorrect answer", map[string]any{
			"puzzle_id": p.ID,
			"reason":    "time_limit_exceeded",
		})
	}

	correct, err := s.puzzles.VerifyAnswer(p, submitted, lockedStats{s})
	if err != nil {
		return false, err
	}
	if !correct {
		s.miss()
		return false, model.NewError(model.KindInvalidMove, "Incorrect answer", map[string]any{
			"puzzle_id": p.ID,
			"submitted": submitted,
		})
	}

	s.hit(hinted)
	s.logger.Info("puzzle solved",
		slog.String("puzzle_id", p.ID),
		slog.Int("score", s.snap.Player.Score),
		slog.Int("streak", s.snap.Game.Streak),
	)
	return true, nil
}

// CheckAnswerText parses a typed answer and checks it. Unparseable input
// counts as a wrong answer.
func (s *State) CheckAnswerText(text string) (bool, error) {
	v, err := puzzle.ParseAnswer(text)
	if err == nil {
		return s.CheckAnswer(v)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, _, _, nerr := s.consumePuzzle(); nerr != nil {
		return false, nerr
	}
	s.bumpStat(model.StatWrongAnswers, 1)
	s.miss()
	return false, err
}

// Expire records the active puzzle as missed because its timer ran out.
// It returns false when there is no active puzzle.
func (s *State) Expire() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, _, _, err := s.consumePuzzle()
	if err != nil {
		return false
	}
	s.bumpStat(model.StatWrongAnswers, 1)
	s.miss()
	s.logger.Info("puzzle expired", slog.String("puzzle_id", p.ID))
	return true
}

// consumePuzzle clears the active puzzle and accounts for the time spent on it
func (s *State) consumePuzzle() (*model.Puzzle, time.Duration, bool, error) {
	p := s.snap.Game.CurrentPuzzle
	if p == nil {
		return nil, 0, false, model.NewError(model.KindGameplay, "No active puzzle", nil)
	}
	elapsed := clock.Since(s.clock, s.puzzleStarted)
	if elapsed > 0 {
		s.snap.Statistics.TotalTimePlayed += int(elapsed / time.Second)
	}
	hinted := s.hintUsed
	s.snap.Game.CurrentPuzzle = nil
	s.hintUsed = false
	return p, elapsed, hinted, nil
}

func (s *State) hit(hinted bool) {
	s.updateScore(true, hinted)
	s.snap.Game.PuzzlesCompleted++
	s.snap.Game.Streak++
	s.bumpStat(model.StatPuzzlesSolved, 1)

	s.addAchievement(AchievementFirstWin)
	if s.snap.Game.Streak >= 5 {
		s.addAchievement(AchievementStreak5)
	}
	if s.snap.Game.Streak >= 10 {
		s.addAchievement(AchievementStreak10)
	}
	if s.cfg.LevelUpEvery > 0 && s.snap.Game.PuzzlesCompleted%s.cfg.LevelUpEvery == 0 {
		s.increaseLevel()
	}
	s.recordOutcome(true)
}

func (s *State) miss() {
	s.snap.Game.Streak = 0
	s.updateScore(false, false)
	s.recordOutcome(false)
}

// recordOutcome feeds the rolling window; a full window adjusts difficulty
// when scaling is enabled and then starts over
func (s *State) recordOutcome(correct bool) {
	window := max(s.cfg.DifficultyWindow, 1)
	s.outcomes = append(s.outcomes, correct)
	if len(s.outcomes) < window {
		return
	}

	if s.snap.Settings.DifficultyScaling {
		hits := 0
		for _, ok := range s.outcomes {
			if ok {
				hits++
			}
		}
		s.snap.Game.Difficulty = s.difficulty.AdjustDifficulty(float64(hits) / float64(len(s.outcomes)))
	}
	s.outcomes = s.outcomes[:0]
}

// UpdateScore applies the scoring rule and returns the new score
func (s *State) UpdateScore(correct, hintUsed bool) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updateScore(correct, hintUsed)
}

func (s *State) updateScore(correct, hintUsed bool) int {
	switch {
	case correct && hintUsed:
		return s.addPoints(s.cfg.ScoreIncrement - s.cfg.ScoreDecrement/2)
	case correct:
		return s.addPoints(s.cfg.ScoreIncrement)
	default:
		return s.addPoints(-s.cfg.ScoreDecrement)
	}
}

// AddPoints changes the cumulative score by delta, floored at zero, and
// returns the new score
func (s *State) AddPoints(delta int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addPoints(delta)
}

// addPoints records the new cumulative score in the high-score history on
// every call, even when the floor leaves it unchanged. Newest first among equals.
func (s *State) addPoints(delta int) int {
	score := max(s.snap.Player.Score+delta, 0)
	s.snap.Player.Score = score

	history := append([]int{score}, s.snap.Player.HighScores...)
	sort.SliceStable(history, func(i, j int) bool { return history[i] > history[j] })
	if limit := s.cfg.HighScoreLimit; limit > 0 && len(history) > limit {
		history = history[:limit]
	}
	s.snap.Player.HighScores = history
	return score
}

// UseHint spends one hint and reports whether one was available. A hint
// spent while a puzzle is active reduces that puzzle's reward.
func (s *State) UseHint() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.useHint()
}

func (s *State) useHint() bool {
	if s.hintsRemaining <= 0 {
		return false
	}
	s.hintsRemaining--
	s.bumpStat(model.StatHintsUsed, 1)
	if s.snap.Game.CurrentPuzzle != nil {
		s.hintUsed = true
	}
	return true
}

// RevealHint spends a hint on the active puzzle and returns its text
func (s *State) RevealHint() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.snap.Game.CurrentPuzzle
	if p == nil {
		return "", model.NewError(model.KindGameplay, "No active puzzle", nil)
	}
	if !s.useHint() {
		return "", model.NewError(model.KindGameplay, "No hints remaining", map[string]any{"puzzle_id": p.ID})
	}
	return p.Hint, nil
}

// IncreaseLevel raises the level and reports whether it changed
func (s *State) IncreaseLevel() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.increaseLevel()
}

func (s *State) increaseLevel() bool {
	if !s.difficulty.IncreaseLevel() {
		return false
	}
	level := s.difficulty.Level()
	s.snap.Player.Level = level
	s.logger.Info("level up", slog.Int("level", level))
	if level >= s.difficulty.MaxLevel() {
		s.addAchievement(AchievementMaxLevel)
	}
	return true
}

// UpdateStatistics adds amount to the named counter
func (s *State) UpdateStatistics(name string, amount int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updateStatistics(name, amount)
}

func (s *State) updateStatistics(name string, amount int) error {
	counter, ok := s.snap.Statistics.Counter(name)
	if !ok {
		return model.NewError(model.KindGameState, "Invalid statistic name", map[string]any{"name": name})
	}
	*counter += amount
	return nil
}

// bumpStat increments a counter known to exist
func (s *State) bumpStat(name string, amount int) {
	_ = s.updateStatistics(name, amount)
}

// lockedStats lets the puzzle verifier report outcomes while s.mu is held
type lockedStats struct{ s *State }

func (l lockedStats) UpdateStatistics(name string, amount int) error {
	return l.s.updateStatistics(name, amount)
}

// AddAchievement awards id and reports whether it was new
func (s *State) AddAchievement(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addAchievement(id)
}

func (s *State) addAchievement(id string) bool {
	if !s.snap.Player.Achievements.Add(id) {
		return false
	}
	s.logger.Info("achievement unlocked", slog.String("achievement", id))
	return true
}

// HighScores returns the score history, highest first
func (s *State) HighScores() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int{}, s.snap.Player.HighScores...)
}

// GetState returns a deep copy of the session snapshot
func (s *State) GetState() model.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

func (s *State) snapshot() model.Snapshot {
	snap := s.snap.Clone()
	snap.Player.Level = s.difficulty.Level()
	snap.Game.Difficulty = s.difficulty.Tier()
	return snap
}

// UpdateSettings replaces the session settings
func (s *State) UpdateSettings(settings model.Settings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.Settings = settings
}

// ResetState clears score, achievements, statistics and round progress.
// Level, settings and the high-score history are kept and hints are refilled.
func (s *State) ResetState() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snap.Player.Score = 0
	s.snap.Player.Achievements = model.AchievementSet{}
	s.snap.Statistics = model.Statistics{}
	s.snap.Game.CurrentPuzzle = nil
	s.snap.Game.PuzzlesCompleted = 0
	s.snap.Game.Streak = 0
	s.hintsRemaining = s.cfg.HintsPerGame
	s.hintUsed = false
	s.outcomes = nil
}

// CurrentPuzzle returns a copy of the active puzzle, or nil
func (s *State) CurrentPuzzle() *model.Puzzle {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snap.Game.CurrentPuzzle == nil {
		return nil
	}
	return s.snap.Game.CurrentPuzzle.Clone()
}

// HintsRemaining returns the number of hints left
func (s *State) HintsRemaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hintsRemaining
}

// Score returns the current score
func (s *State) Score() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap.Player.Score
}

// Level returns the current level
func (s *State) Level() int {
	return s.difficulty.Level()
}

// Profile returns a copy of the bound profile
func (s *State) Profile() *model.UserProfile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile.Clone()
}

// SaveState writes the snapshot under name and syncs the bound profile.
// It returns the name used. The bound profile only changes once the sync
// succeeds; a failed sync leaves the snapshot written, and saving again
// retries both.
func (s *State) SaveState(ctx context.Context, name string) (string, error) {
	if name == "" {
		name = DefaultSaveName
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, s.cfg.PersistTimeout)
	defer cancel()

	snap := s.snapshot()
	blob, err := json.Marshal(snap)
	if err != nil {
		return "", s.saveError(name, err)
	}
	if err := s.store.Save(ctx, storage.NamespaceSaves, s.saveKey(name), blob); err != nil {
		return "", s.saveError(name, err)
	}

	profile := s.profile.Clone()
	profile.Score = snap.Player.Score
	profile.CurrentLevel = snap.Player.Level
	profile.Achievements = snap.Player.Achievements.Clone()
	profile.UpdatedAt = s.clock.Now()
	profile.RecordHighScore()
	if s.profiles != nil {
		if err := s.profiles.SaveProfile(ctx, profile); err != nil {
			return "", s.saveError(name, err)
		}
	}
	s.profile = profile

	s.logger.Info("game saved", slog.String("name", name), slog.Int("score", snap.Player.Score))
	return name, nil
}

func (s *State) saveError(name string, err error) error {
	s.logger.Error("failed to save game state", slog.String("name", name), slog.String("error", err.Error()))
	return model.WrapError(model.KindGameState, "Failed to save game state", err, map[string]any{"name": name})
}

// LoadState replaces the session with the snapshot saved under name
func (s *State) LoadState(ctx context.Context, name string) error {
	if name == "" {
		name = DefaultSaveName
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, s.cfg.PersistTimeout)
	defer cancel()

	snap, err := s.readSnapshot(ctx, name)
	if err != nil {
		return s.loadError(name, err)
	}
	if err := s.restore(snap); err != nil {
		return s.loadError(name, err)
	}

	s.logger.Info("game loaded", slog.String("name", name))
	return nil
}

// Resume restores the autosave, if one exists, under the bound profile.
// Score, level and achievements stay the profile's; statistics, settings,
// round progress and the high-score history come from the save. It reports
// whether an autosave was found.
func (s *State) Resume(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, s.cfg.PersistTimeout)
	defer cancel()

	snap, err := s.readSnapshot(ctx, DefaultSaveName)
	if errors.Is(err, model.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, s.loadError(DefaultSaveName, err)
	}

	snap.Player.Name = s.profile.Username
	snap.Player.Score = s.profile.Score
	snap.Player.Level = s.profile.CurrentLevel
	for id := range s.profile.Achievements {
		snap.Player.Achievements.Add(id)
	}
	if err := s.restore(snap); err != nil {
		return false, s.loadError(DefaultSaveName, err)
	}

	s.logger.Info("game resumed", slog.Int("score", snap.Player.Score))
	return true, nil
}

func (s *State) readSnapshot(ctx context.Context, name string) (model.Snapshot, error) {
	blob, err := s.store.Load(ctx, storage.NamespaceSaves, s.saveKey(name))
	if err != nil {
		return model.Snapshot{}, err
	}
	var snap model.Snapshot
	if err := json.Unmarshal(blob, &snap); err != nil {
		return model.Snapshot{}, err
	}
	if snap.Player.Achievements == nil {
		snap.Player.Achievements = model.AchievementSet{}
	}
	if snap.Player.HighScores == nil {
		snap.Player.HighScores = []int{}
	}
	return snap, nil
}

// restore makes snap the live session; s.mu must be held
func (s *State) restore(snap model.Snapshot) error {
	if err := s.difficulty.SetTier(snap.Game.Difficulty); err != nil {
		return err
	}
	s.difficulty.SetLevel(snap.Player.Level)
	s.snap = snap
	s.hintUsed = false
	s.outcomes = nil
	if snap.Game.CurrentPuzzle != nil {
		s.puzzleStarted = s.clock.Now()
	}
	return nil
}

func (s *State) loadError(name string, err error) error {
	s.logger.Error("failed to load game state", slog.String("name", name), slog.String("error", err.Error()))
	return model.WrapError(model.KindGameState, "Failed to load game state", err, map[string]any{"name": name})
}

// ListSaves returns the names of this profile's saves
func (s *State) ListSaves(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.PersistTimeout)
	defer cancel()

	keys, err := s.store.List(ctx, storage.NamespaceSaves)
	if err != nil {
		return nil, model.WrapError(model.KindGameState, "Failed to list saves", err, nil)
	}
	prefix := string(s.profile.UserID) + "/"
	names := []string{}
	for _, k := range keys {
		if name, ok := strings.CutPrefix(k, prefix); ok {
			names = append(names, name)
		}
	}
	return names, nil
}

func (s *State) saveKey(name string) string {
	return string(s.profile.UserID) + "/" + name
}
