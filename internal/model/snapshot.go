package model

// Statistic names recognised by GameState.UpdateStatistics
const (
	StatTotalTimePlayed = "total_time_played"
	StatPuzzlesSolved   = "puzzles_solved"
	StatCorrectAnswers  = "correct_answers"
	StatWrongAnswers    = "wrong_answers"
	StatHintsUsed       = "hints_used"
)

// StatisticNames lists every recognised statistic
var StatisticNames = []string{
	StatTotalTimePlayed,
	StatPuzzlesSolved,
	StatCorrectAnswers,
	StatWrongAnswers,
	StatHintsUsed,
}

// Snapshot is the serializable state of one play session
type Snapshot struct {
	Player     PlayerState `json:"player"`
	Game       RoundState  `json:"game"`
	Settings   Settings    `json:"settings"`
	Statistics Statistics  `json:"statistics"`
}

// PlayerState is the player section of a snapshot
type PlayerState struct {
	Name         string         `json:"name"`
	Level        int            `json:"level"`
	Score        int            `json:"score"`
	Achievements AchievementSet `json:"achievements"`
	HighScores   []int          `json:"high_scores"`
}

// RoundState is the game section of a snapshot
type RoundState struct {
	Difficulty       Tier    `json:"difficulty"`
	CurrentPuzzle    *Puzzle `json:"current_puzzle"`
	PuzzlesCompleted int     `json:"puzzles_completed"`
	Streak           int     `json:"streak"`
}

// Settings are the player's gameplay preferences
type Settings struct {
	SoundEnabled      bool `json:"sound_enabled"`
	MusicEnabled      bool `json:"music_enabled"`
	DifficultyScaling bool `json:"difficulty_scaling"`
}

// Statistics are lifetime counters for a session
type Statistics struct {
	TotalTimePlayed int `json:"total_time_played"` // seconds
	PuzzlesSolved   int `json:"puzzles_solved"`
	CorrectAnswers  int `json:"correct_answers"`
	WrongAnswers    int `json:"wrong_answers"`
	HintsUsed       int `json:"hints_used"`
}

// Counter returns a pointer to the named counter, or false if the name is not recognised
func (s *Statistics) Counter(name string) (*int, bool) {
	switch name {
	case StatTotalTimePlayed:
		return &s.TotalTimePlayed, true
	case StatPuzzlesSolved:
		return &s.PuzzlesSolved, true
	case StatCorrectAnswers:
		return &s.CorrectAnswers, true
	case StatWrongAnswers:
		return &s.WrongAnswers, true
	case StatHintsUsed:
		return &s.HintsUsed, true
	}
	return nil, false
}

// NewSnapshot returns the initial state for a new session
func NewSnapshot(name string) Snapshot {
	return Snapshot{
		Player: PlayerState{
			Name:         name,
			Level:        1,
			Achievements: AchievementSet{},
			HighScores:   []int{},
		},
		Game: RoundState{
			Difficulty: DefaultTier,
		},
		Settings: Settings{
			SoundEnabled:      true,
			MusicEnabled:      true,
			DifficultyScaling: true,
		},
	}
}

// Clone returns a deep copy of the snapshot
func (s Snapshot) Clone() Snapshot {
	c := s
	c.Player.Achievements = s.Player.Achievements.Clone()
	c.Player.HighScores = append([]int{}, s.Player.HighScores...)
	if s.Game.CurrentPuzzle != nil {
		c.Game.CurrentPuzzle = s.Game.CurrentPuzzle.Clone()
	}
	return c
}
