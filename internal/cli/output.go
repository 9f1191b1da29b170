package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/mcoot/bananamath/internal/api/response"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
}

// NewOutput creates a new Output formatter writing to w
func NewOutput(format string, w io.Writer) *Output {
	return &Output{format: format, w: w}
}

// VersionResult is the output of the version command
type VersionResult struct {
	Version string `json:"version"`
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]any{
			"error": map[string]string{"message": err.Error()},
		})
		fmt.Fprintln(o.w, string(data))
	} else {
		fmt.Fprintf(o.w, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Fprintln(o.w, string(data))
	} else {
		fmt.Fprintln(o.w, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case response.Profile:
		o.printProfile(v)
	case response.AuthResponse:
		o.printProfile(v.Profile)
		fmt.Fprintf(o.w, "Token: %s\n", v.SessionToken)
	case response.Puzzle:
		o.printPuzzle(v)
	case response.Answer:
		o.printAnswer(v)
	case response.Hint:
		fmt.Fprintf(o.w, "Hint: %s\n", v.Hint)
		fmt.Fprintf(o.w, "Hints remaining: %d\n", v.HintsRemaining)
	case response.State:
		o.printState(v)
	case response.Save:
		fmt.Fprintf(o.w, "Saved: %s\n", v.Name)
	case response.Saves:
		if len(v.Saves) == 0 {
			fmt.Fprintln(o.w, "No saves")
		}
		for _, name := range v.Saves {
			fmt.Fprintf(o.w, "  - %s\n", name)
		}
	case response.HighScores:
		o.printHighScores(v.HighScores)
	case response.Health:
		fmt.Fprintf(o.w, "Status: %s\n", v.Status)
	case VersionResult:
		fmt.Fprintf(o.w, "bananamath %s\n", v.Version)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

func (o *Output) printProfile(p response.Profile) {
	fmt.Fprintf(o.w, "Player: %s (%s)\n", p.Username, p.UserID)
	fmt.Fprintf(o.w, "Level: %d\n", p.Level)
	fmt.Fprintf(o.w, "Score: %d (best %d)\n", p.Score, p.HighScore)
	if len(p.Achievements) > 0 {
		fmt.Fprintf(o.w, "Achievements: %s\n", strings.Join(p.Achievements, ", "))
	}
}

func (o *Output) printPuzzle(p response.Puzzle) {
	fmt.Fprintf(o.w, "%s = ?\n", p.Expression)
	fmt.Fprintf(o.w, "Difficulty: %s, %d points, %ds\n", p.Difficulty, p.Points, p.TimeLimit)
}

func (o *Output) printAnswer(a response.Answer) {
	if a.Correct {
		fmt.Fprintln(o.w, "Correct!")
	} else if a.Message != "" {
		fmt.Fprintf(o.w, "Wrong: %s\n", a.Message)
	} else {
		fmt.Fprintln(o.w, "Wrong")
	}
	fmt.Fprintf(o.w, "Score: %d  Streak: %d  Level: %d  Difficulty: %s\n", a.Score, a.Streak, a.Level, a.Difficulty)
}

func (o *Output) printState(s response.State) {
	fmt.Fprintf(o.w, "Player: %s\n", s.Player.Name)
	fmt.Fprintf(o.w, "Score: %d  Level: %d\n", s.Player.Score, s.Player.Level)
	fmt.Fprintf(o.w, "Difficulty: %s  Streak: %d  Completed: %d\n", s.Game.Difficulty, s.Game.Streak, s.Game.PuzzlesCompleted)
	fmt.Fprintf(o.w, "Hints remaining: %d\n", s.Game.HintsRemaining)
	if s.Game.CurrentPuzzle != nil {
		fmt.Fprintf(o.w, "Current puzzle: %s = ?\n", s.Game.CurrentPuzzle.Expression)
	}
	st := s.Statistics
	fmt.Fprintf(o.w, "Solved: %d  Correct: %d  Wrong: %d  Hints used: %d  Time: %ds\n",
		st.PuzzlesSolved, st.CorrectAnswers, st.WrongAnswers, st.HintsUsed, st.TotalTimePlayed)
	if len(s.Player.HighScores) > 0 {
		o.printHighScores(s.Player.HighScores)
	}
}

func (o *Output) printHighScores(scores []int) {
	if len(scores) == 0 {
		fmt.Fprintln(o.w, "No high scores yet")
		return
	}
	fmt.Fprintln(o.w, "High scores:")
	for i, score := range scores {
		fmt.Fprintf(o.w, "  %2d. %d\n", i+1, score)
	}
}
