package handler

import (
	"errors"
	"net/http"

	"github.com/mcoot/bananamath/internal/api/middleware"
	"github.com/mcoot/bananamath/internal/api/request"
	"github.com/mcoot/bananamath/internal/api/response"
	"github.com/mcoot/bananamath/internal/metrics"
	"github.com/mcoot/bananamath/internal/model"
	"github.com/mcoot/bananamath/internal/services/game"
)

// GameHandler handles play-session endpoints for the authenticated user
type GameHandler struct {
	sessions *game.Registry
	metrics  *metrics.Metrics
}

// NewGameHandler creates a new game handler
func NewGameHandler(sessions *game.Registry, m *metrics.Metrics) *GameHandler {
	return &GameHandler{
		sessions: sessions,
		metrics:  m,
	}
}

// state returns the caller's play session, creating it on first use. When
// the session cannot be resumed the error response is written and it
// reports false.
func (h *GameHandler) state(w http.ResponseWriter, r *http.Request) (*game.State, bool) {
	st, err := h.sessions.Get(r.Context(), middleware.MustGetProfile(r.Context()))
	if err != nil {
		WriteError(w, err)
		return nil, false
	}
	h.metrics.SetActiveSessions(h.sessions.Len())
	return st, true
}

func writeState(w http.ResponseWriter, st *game.State) {
	response.JSON(w, http.StatusOK, response.StateFromSnapshot(st.GetState(), st.HintsRemaining()))
}

// NewPuzzle handles POST /api/v1/game/puzzle
func (h *GameHandler) NewPuzzle(w http.ResponseWriter, r *http.Request) {
	st, ok := h.state(w, r)
	if !ok {
		return
	}
	p, err := st.NewPuzzle(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}
	h.metrics.RecordPuzzle(p.Difficulty)
	response.JSON(w, http.StatusCreated, response.PuzzleFromModel(p))
}

// CurrentPuzzle handles GET /api/v1/game/puzzle
func (h *GameHandler) CurrentPuzzle(w http.ResponseWriter, r *http.Request) {
	st, ok := h.state(w, r)
	if !ok {
		return
	}
	p := st.CurrentPuzzle()
	if p == nil {
		WriteError(w, model.NewError(model.KindGameplay, "No active puzzle", nil))
		return
	}
	response.JSON(w, http.StatusOK, response.PuzzleFromModel(p))
}

// Answer handles POST /api/v1/game/answer. A wrong, late or unparseable
// answer is a normal outcome and is reported with correct=false.
func (h *GameHandler) Answer(w http.ResponseWriter, r *http.Request) {
	var req request.AnswerRequest
	if err := decodeBody(r, &req, false); err != nil {
		WriteError(w, err)
		return
	}

	st, ok := h.state(w, r)
	if !ok {
		return
	}
	correct, err := st.CheckAnswerText(req.Answer)
	if err != nil && !errors.Is(err, model.ErrInvalidMove) {
		WriteError(w, err)
		return
	}
	h.metrics.RecordAnswer(correct)

	snap := st.GetState()
	resp := response.Answer{
		Correct:    correct,
		Score:      snap.Player.Score,
		Streak:     snap.Game.Streak,
		Level:      snap.Player.Level,
		Difficulty: snap.Game.Difficulty,
	}
	if err != nil {
		resp.Message = err.Error()
	}
	response.JSON(w, http.StatusOK, resp)
}

// Hint handles POST /api/v1/game/hint
func (h *GameHandler) Hint(w http.ResponseWriter, r *http.Request) {
	st, ok := h.state(w, r)
	if !ok {
		return
	}
	hint, err := st.RevealHint()
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.Hint{Hint: hint, HintsRemaining: st.HintsRemaining()})
}

// State handles GET /api/v1/game/state
func (h *GameHandler) State(w http.ResponseWriter, r *http.Request) {
	st, ok := h.state(w, r)
	if !ok {
		return
	}
	writeState(w, st)
}

// UpdateSettings handles PATCH /api/v1/game/settings
func (h *GameHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req request.SettingsRequest
	if err := decodeBody(r, &req, false); err != nil {
		WriteError(w, err)
		return
	}

	st, ok := h.state(w, r)
	if !ok {
		return
	}
	settings := st.GetState().Settings
	if req.SoundEnabled != nil {
		settings.SoundEnabled = *req.SoundEnabled
	}
	if req.MusicEnabled != nil {
		settings.MusicEnabled = *req.MusicEnabled
	}
	if req.DifficultyScaling != nil {
		settings.DifficultyScaling = *req.DifficultyScaling
	}
	st.UpdateSettings(settings)
	writeState(w, st)
}

// Save handles POST /api/v1/game/save
func (h *GameHandler) Save(w http.ResponseWriter, r *http.Request) {
	var req request.SaveRequest
	if err := decodeBody(r, &req, true); err != nil {
		WriteError(w, err)
		return
	}

	st, ok := h.state(w, r)
	if !ok {
		return
	}
	name, err := st.SaveState(r.Context(), req.Name)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.Save{Name: name})
}

// Load handles POST /api/v1/game/load
func (h *GameHandler) Load(w http.ResponseWriter, r *http.Request) {
	var req request.SaveRequest
	if err := decodeBody(r, &req, true); err != nil {
		WriteError(w, err)
		return
	}

	st, ok := h.state(w, r)
	if !ok {
		return
	}
	if err := st.LoadState(r.Context(), req.Name); err != nil {
		WriteError(w, err)
		return
	}
	writeState(w, st)
}

// Saves handles GET /api/v1/game/saves
func (h *GameHandler) Saves(w http.ResponseWriter, r *http.Request) {
	st, ok := h.state(w, r)
	if !ok {
		return
	}
	names, err := st.ListSaves(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.Saves{Saves: names})
}

// Reset handles POST /api/v1/game/reset
func (h *GameHandler) Reset(w http.ResponseWriter, r *http.Request) {
	st, ok := h.state(w, r)
	if !ok {
		return
	}
	st.ResetState()
	writeState(w, st)
}

// HighScores handles GET /api/v1/game/high-scores
func (h *GameHandler) HighScores(w http.ResponseWriter, r *http.Request) {
	st, ok := h.state(w, r)
	if !ok {
		return
	}
	response.JSON(w, http.StatusOK, response.HighScores{HighScores: st.HighScores()})
}
