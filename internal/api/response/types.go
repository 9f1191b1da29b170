package response

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/mcoot/bananamath/internal/model"
)

// JSON writes a JSON response
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// NoContent writes a 204 No Content response
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// Profile represents a user profile in API responses. The password hash
// is never exposed.
type Profile struct {
	UserID       string    `json:"user_id"`
	Username     string    `json:"username"`
	Level        int       `json:"current_level"`
	Score        int       `json:"score"`
	HighScore    int       `json:"high_score"`
	Achievements []string  `json:"achievements"`
	CreatedAt    time.Time `json:"created_at"`
}

// ProfileFromModel converts a model.UserProfile
func ProfileFromModel(p *model.UserProfile) Profile {
	return Profile{
		UserID:       string(p.UserID),
		Username:     p.Username,
		Level:        p.CurrentLevel,
		Score:        p.Score,
		HighScore:    p.HighScore,
		Achievements: p.Achievements.Sorted(),
		CreatedAt:    p.CreatedAt,
	}
}

// AuthResponse is the response for authentication endpoints
type AuthResponse struct {
	Profile      Profile   `json:"profile"`
	SessionToken string    `json:"session_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// AuthResponseFromSession creates an AuthResponse
func AuthResponseFromSession(p *model.UserProfile, s *model.Session) AuthResponse {
	return AuthResponse{
		Profile:      ProfileFromModel(p),
		SessionToken: s.Token,
		ExpiresAt:    s.ExpiresAt,
	}
}

// Puzzle is a puzzle as shown to the player, without its answer
type Puzzle struct {
	ID         string            `json:"id"`
	Expression string            `json:"expression"`
	Numbers    []int             `json:"numbers"`
	Operations []model.Operation `json:"operations"`
	Difficulty model.Tier        `json:"difficulty"`
	TimeLimit  int               `json:"time_limit"`
	Points     int               `json:"points"`
	CreatedAt  time.Time         `json:"created_at"`
}

// PuzzleFromModel converts a model.Puzzle; nil converts to nil
func PuzzleFromModel(p *model.Puzzle) *Puzzle {
	if p == nil {
		return nil
	}
	return &Puzzle{
		ID:         p.ID,
		Expression: p.Expression,
		Numbers:    p.Numbers,
		Operations: p.Operations,
		Difficulty: p.Difficulty,
		TimeLimit:  p.TimeLimit,
		Points:     p.Points,
		CreatedAt:  p.CreatedAt,
	}
}

// Answer is the outcome of an answer submission
type Answer struct {
	Correct    bool       `json:"correct"`
	Message    string     `json:"message,omitempty"`
	Score      int        `json:"score"`
	Streak     int        `json:"streak"`
	Level      int        `json:"level"`
	Difficulty model.Tier `json:"difficulty"`
}

// Hint is a revealed hint
type Hint struct {
	Hint           string `json:"hint"`
	HintsRemaining int    `json:"hints_remaining"`
}

// Round is the game section of a session
type Round struct {
	Difficulty       model.Tier `json:"difficulty"`
	CurrentPuzzle    *Puzzle    `json:"current_puzzle"`
	PuzzlesCompleted int        `json:"puzzles_completed"`
	Streak           int        `json:"streak"`
	HintsRemaining   int        `json:"hints_remaining"`
}

// State is a full play session
type State struct {
	Player     model.PlayerState `json:"player"`
	Game       Round             `json:"game"`
	Settings   model.Settings    `json:"settings"`
	Statistics model.Statistics  `json:"statistics"`
}

// StateFromSnapshot converts a snapshot, hiding the active puzzle's answer
func StateFromSnapshot(s model.Snapshot, hintsRemaining int) State {
	return State{
		Player: s.Player,
		Game: Round{
			Difficulty:       s.Game.Difficulty,
			CurrentPuzzle:    PuzzleFromModel(s.Game.CurrentPuzzle),
			PuzzlesCompleted: s.Game.PuzzlesCompleted,
			Streak:           s.Game.Streak,
			HintsRemaining:   hintsRemaining,
		},
		Settings:   s.Settings,
		Statistics: s.Statistics,
	}
}

// Save names a stored snapshot
type Save struct {
	Name string `json:"name"`
}

// Saves lists stored snapshots
type Saves struct {
	Saves []string `json:"saves"`
}

// HighScores is the score history, highest first
type HighScores struct {
	HighScores []int `json:"high_scores"`
}

// Health is the health check response
type Health struct {
	Status string `json:"status"`
}
