package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/bananamath/internal/api"
	"github.com/mcoot/bananamath/internal/api/apierr"
	"github.com/mcoot/bananamath/internal/api/middleware"
	"github.com/mcoot/bananamath/internal/api/response"
	"github.com/mcoot/bananamath/internal/factory"
	"github.com/mcoot/bananamath/internal/model"
	"github.com/mcoot/bananamath/internal/testutil"
)

type APISuite struct {
	suite.Suite
	app    *factory.TestApp
	router http.Handler
}

func TestAPISuite(t *testing.T) {
	suite.Run(t, new(APISuite))
}

func (s *APISuite) SetupTest() {
	s.app = factory.NewTestApp()
	s.router = s.newRouter(middleware.RateLimitConfig{RequestsPerSecond: 1000, Burst: 1000, IdleTTL: time.Minute})
}

func (s *APISuite) newRouter(rl middleware.RateLimitConfig) http.Handler {
	return api.NewRouter(api.RouterConfig{
		Logger:      testutil.NopLogger(),
		AuthManager: s.app.AuthManager,
		Sessions:    s.app.Sessions,
		Metrics:     s.app.Metrics,
		RateLimit:   rl,
	})
}

func (s *APISuite) do(method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *APISuite) decode(rec *httptest.ResponseRecorder, v any) {
	s.Require().NoError(json.NewDecoder(rec.Body).Decode(v))
}

func (s *APISuite) errorCode(rec *httptest.ResponseRecorder) string {
	var resp apierr.ErrorResponse
	s.decode(rec, &resp)
	return resp.Error.Code
}

func (s *APISuite) register(username string) response.AuthResponse {
	rec := s.do(http.MethodPost, "/api/v1/players/register", "", map[string]string{
		"username": username,
		"password": "Passw0rd!",
	})
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())
	var resp response.AuthResponse
	s.decode(rec, &resp)
	return resp
}

func (s *APISuite) activeAnswer(userID string) string {
	st, ok := s.app.Sessions.Lookup(model.UserID(userID))
	s.Require().True(ok)
	p := st.CurrentPuzzle()
	s.Require().NotNil(p)
	return strconv.FormatFloat(p.Answer, 'f', -1, 64)
}

func (s *APISuite) TestHealth() {
	rec := s.do(http.MethodGet, "/api/v1/health", "", nil)
	s.Equal(http.StatusOK, rec.Code)
	var resp response.Health
	s.decode(rec, &resp)
	s.Equal("ok", resp.Status)
	s.NotEmpty(rec.Header().Get("X-Request-ID"))
}

func (s *APISuite) TestRegisterAndLogin() {
	reg := s.register("alice")
	s.Equal("alice", reg.Profile.Username)
	s.NotEmpty(reg.SessionToken)

	rec := s.do(http.MethodPost, "/api/v1/players/login", "", map[string]string{
		"username": "alice",
		"password": "Passw0rd!",
	})
	s.Require().Equal(http.StatusOK, rec.Code)
	var login response.AuthResponse
	s.decode(rec, &login)
	s.Equal(reg.Profile.UserID, login.Profile.UserID)

	rec = s.do(http.MethodGet, "/api/v1/players/me", login.SessionToken, nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	s.NotContains(rec.Body.String(), "password_hash")
}

func (s *APISuite) TestRegisterRejectsWeakPassword() {
	rec := s.do(http.MethodPost, "/api/v1/players/register", "", map[string]string{
		"username": "alice",
		"password": "short",
	})
	s.Equal(http.StatusBadRequest, rec.Code)
	s.Equal(apierr.CodeRegistrationFailed, s.errorCode(rec))
}

func (s *APISuite) TestRegisterRejectsDuplicate() {
	s.register("alice")
	rec := s.do(http.MethodPost, "/api/v1/players/register", "", map[string]string{
		"username": "alice",
		"password": "Passw0rd!",
	})
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *APISuite) TestMalformedBody() {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/players/login", strings.NewReader("{"))
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	s.Equal(http.StatusBadRequest, rec.Code)
	s.Equal(apierr.CodeInvalidRequest, s.errorCode(rec))
}

func (s *APISuite) TestProtectedRoutesRequireToken() {
	rec := s.do(http.MethodGet, "/api/v1/game/state", "", nil)
	s.Equal(http.StatusUnauthorized, rec.Code)

	rec = s.do(http.MethodGet, "/api/v1/game/state", "not-a-token", nil)
	s.Equal(http.StatusUnauthorized, rec.Code)
}

func (s *APISuite) TestLogoutRevokesToken() {
	reg := s.register("alice")

	rec := s.do(http.MethodPost, "/api/v1/players/logout", reg.SessionToken, nil)
	s.Equal(http.StatusNoContent, rec.Code)

	rec = s.do(http.MethodGet, "/api/v1/players/me", reg.SessionToken, nil)
	s.Equal(http.StatusUnauthorized, rec.Code)
}

func (s *APISuite) TestExpiredSessionRejected() {
	reg := s.register("alice")
	s.app.MockClock.Advance(25 * time.Hour)

	rec := s.do(http.MethodGet, "/api/v1/players/me", reg.SessionToken, nil)
	s.Equal(http.StatusUnauthorized, rec.Code)
}

func (s *APISuite) TestPuzzleAnswerFlow() {
	reg := s.register("alice")
	token := reg.SessionToken

	rec := s.do(http.MethodPost, "/api/v1/game/puzzle", token, nil)
	s.Require().Equal(http.StatusCreated, rec.Code)
	s.NotContains(rec.Body.String(), `"answer"`)
	var p response.Puzzle
	s.decode(rec, &p)
	s.Equal(model.TierNormal, p.Difficulty)
	s.NotEmpty(p.Expression)

	rec = s.do(http.MethodGet, "/api/v1/game/puzzle", token, nil)
	s.Equal(http.StatusOK, rec.Code)

	rec = s.do(http.MethodPost, "/api/v1/game/answer", token, map[string]string{
		"answer": s.activeAnswer(reg.Profile.UserID),
	})
	s.Require().Equal(http.StatusOK, rec.Code)
	var ans response.Answer
	s.decode(rec, &ans)
	s.True(ans.Correct)
	s.Equal(10, ans.Score)
	s.Equal(1, ans.Streak)

	// The puzzle was consumed
	rec = s.do(http.MethodGet, "/api/v1/game/puzzle", token, nil)
	s.Equal(http.StatusConflict, rec.Code)

	rec = s.do(http.MethodGet, "/api/v1/game/high-scores", token, nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	var hs response.HighScores
	s.decode(rec, &hs)
	s.Equal([]int{10}, hs.HighScores)
}

func (s *APISuite) TestWrongAnswerReportedAsIncorrect() {
	reg := s.register("alice")
	token := reg.SessionToken

	rec := s.do(http.MethodPost, "/api/v1/game/puzzle", token, nil)
	s.Require().Equal(http.StatusCreated, rec.Code)

	rec = s.do(http.MethodPost, "/api/v1/game/answer", token, map[string]string{"answer": "banana"})
	s.Require().Equal(http.StatusOK, rec.Code)
	var ans response.Answer
	s.decode(rec, &ans)
	s.False(ans.Correct)
	s.Equal(0, ans.Score)
	s.Equal(0, ans.Streak)
}

func (s *APISuite) TestAnswerWithoutPuzzle() {
	reg := s.register("alice")
	rec := s.do(http.MethodPost, "/api/v1/game/answer", reg.SessionToken, map[string]string{"answer": "3"})
	s.Equal(http.StatusConflict, rec.Code)
	s.Equal(apierr.CodeGameplay, s.errorCode(rec))
}

func (s *APISuite) TestHintsRunOut() {
	reg := s.register("alice")
	token := reg.SessionToken

	rec := s.do(http.MethodPost, "/api/v1/game/puzzle", token, nil)
	s.Require().Equal(http.StatusCreated, rec.Code)

	for remaining := 2; remaining >= 0; remaining-- {
		rec = s.do(http.MethodPost, "/api/v1/game/hint", token, nil)
		s.Require().Equal(http.StatusOK, rec.Code)
		var h response.Hint
		s.decode(rec, &h)
		s.NotEmpty(h.Hint)
		s.Equal(remaining, h.HintsRemaining)
	}

	rec = s.do(http.MethodPost, "/api/v1/game/hint", token, nil)
	s.Equal(http.StatusConflict, rec.Code)
}

func (s *APISuite) TestSettingsSaveLoadReset() {
	reg := s.register("alice")
	token := reg.SessionToken

	rec := s.do(http.MethodPatch, "/api/v1/game/settings", token, map[string]bool{"sound_enabled": false})
	s.Require().Equal(http.StatusOK, rec.Code)
	var st response.State
	s.decode(rec, &st)
	s.False(st.Settings.SoundEnabled)
	s.True(st.Settings.DifficultyScaling)

	rec = s.do(http.MethodPost, "/api/v1/game/puzzle", token, nil)
	s.Require().Equal(http.StatusCreated, rec.Code)
	rec = s.do(http.MethodPost, "/api/v1/game/answer", token, map[string]string{
		"answer": s.activeAnswer(reg.Profile.UserID),
	})
	s.Require().Equal(http.StatusOK, rec.Code)

	rec = s.do(http.MethodPost, "/api/v1/game/save", token, map[string]string{"name": "slot1"})
	s.Require().Equal(http.StatusOK, rec.Code)
	var save response.Save
	s.decode(rec, &save)
	s.Equal("slot1", save.Name)

	rec = s.do(http.MethodGet, "/api/v1/game/saves", token, nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	var saves response.Saves
	s.decode(rec, &saves)
	s.Equal([]string{"slot1"}, saves.Saves)

	rec = s.do(http.MethodPost, "/api/v1/game/reset", token, nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	s.decode(rec, &st)
	s.Equal(0, st.Player.Score)

	rec = s.do(http.MethodPost, "/api/v1/game/load", token, map[string]string{"name": "slot1"})
	s.Require().Equal(http.StatusOK, rec.Code)
	s.decode(rec, &st)
	s.Equal(10, st.Player.Score)
	s.Equal(1, st.Game.PuzzlesCompleted)

	rec = s.do(http.MethodPost, "/api/v1/game/load", token, map[string]string{"name": "missing"})
	s.Equal(http.StatusNotFound, rec.Code)

	// The saved score reached the stored profile
	rec = s.do(http.MethodGet, "/api/v1/players/me", token, nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	var me response.Profile
	s.decode(rec, &me)
	s.Equal(10, me.HighScore)
}

func (s *APISuite) TestLockoutReturnsLocked() {
	s.register("alice")
	creds := map[string]string{"username": "alice", "password": "Wrong0ne!"}

	rec := s.do(http.MethodPost, "/api/v1/players/login", "", creds)
	s.Equal(http.StatusUnauthorized, rec.Code)
	s.Equal(apierr.CodeUnauthorized, s.errorCode(rec))

	s.do(http.MethodPost, "/api/v1/players/login", "", creds)
	rec = s.do(http.MethodPost, "/api/v1/players/login", "", creds)
	s.Equal(http.StatusLocked, rec.Code)
	s.Equal(apierr.CodeAccountLocked, s.errorCode(rec))

	creds["password"] = "Passw0rd!"
	rec = s.do(http.MethodPost, "/api/v1/players/login", "", creds)
	s.Equal(http.StatusLocked, rec.Code)
}

func (s *APISuite) TestCredentialRoutesRateLimited() {
	s.router = s.newRouter(middleware.RateLimitConfig{RequestsPerSecond: 0.001, Burst: 2, IdleTTL: time.Minute})
	creds := map[string]string{"username": "nobody", "password": "Passw0rd!"}

	s.do(http.MethodPost, "/api/v1/players/login", "", creds)
	s.do(http.MethodPost, "/api/v1/players/login", "", creds)
	rec := s.do(http.MethodPost, "/api/v1/players/login", "", creds)
	s.Equal(http.StatusTooManyRequests, rec.Code)
	s.Equal("1", rec.Header().Get("Retry-After"))

	// Other routes are not limited
	rec = s.do(http.MethodGet, "/api/v1/health", "", nil)
	s.Equal(http.StatusOK, rec.Code)
}

func (s *APISuite) TestMetricsEndpoint() {
	s.register("alice")

	rec := s.do(http.MethodGet, "/metrics", "", nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	body := rec.Body.String()
	s.Contains(body, "http_requests_total")
	s.Contains(body, `endpoint="/api/v1/players/register"`)
}
