package handler

import (
	"errors"
	"net/http"

	"github.com/mcoot/bananamath/internal/api/middleware"
	"github.com/mcoot/bananamath/internal/api/request"
	"github.com/mcoot/bananamath/internal/api/response"
	"github.com/mcoot/bananamath/internal/metrics"
	"github.com/mcoot/bananamath/internal/model"
	"github.com/mcoot/bananamath/internal/services/auth"
)

// PlayerHandler handles registration, login and profile endpoints
type PlayerHandler struct {
	authManager *auth.Manager
	metrics     *metrics.Metrics
}

// NewPlayerHandler creates a new player handler
func NewPlayerHandler(authManager *auth.Manager, m *metrics.Metrics) *PlayerHandler {
	return &PlayerHandler{
		authManager: authManager,
		metrics:     m,
	}
}

// Register handles POST /api/v1/players/register
func (h *PlayerHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req request.RegisterRequest
	if err := decodeBody(r, &req, false); err != nil {
		WriteError(w, err)
		return
	}
	if req.Username == "" {
		WriteError(w, NewInvalidRequestError("username is required"))
		return
	}
	if req.Password == "" {
		WriteError(w, NewInvalidRequestError("password is required"))
		return
	}

	profile, session, err := h.authManager.Register(r.Context(), req.Username, req.Password)
	h.metrics.RecordRegistration(err == nil)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.AuthResponseFromSession(profile, session))
}

// Login handles POST /api/v1/players/login
func (h *PlayerHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req request.LoginRequest
	if err := decodeBody(r, &req, false); err != nil {
		WriteError(w, err)
		return
	}
	if req.Username == "" {
		WriteError(w, NewInvalidRequestError("username is required"))
		return
	}
	if req.Password == "" {
		WriteError(w, NewInvalidRequestError("password is required"))
		return
	}

	profile, session, err := h.authManager.Login(r.Context(), req.Username, req.Password)
	h.metrics.RecordLogin(loginResult(err))
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.AuthResponseFromSession(profile, session))
}

func loginResult(err error) string {
	if err == nil {
		return metrics.LoginSuccess
	}
	var me *model.Error
	if errors.As(err, &me) {
		if _, locked := me.Context["locked_until"]; locked {
			return metrics.LoginLocked
		}
	}
	return metrics.LoginFailure
}

// Logout handles POST /api/v1/players/logout
func (h *PlayerHandler) Logout(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetSession(r.Context())
	if session != nil {
		h.authManager.Logout(session.Token)
	}
	response.NoContent(w)
}

// GetMe handles GET /api/v1/players/me
func (h *PlayerHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	profile := middleware.MustGetProfile(r.Context())
	response.JSON(w, http.StatusOK, response.ProfileFromModel(profile))
}
