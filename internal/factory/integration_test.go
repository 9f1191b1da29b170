package factory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/bananamath/internal/model"
	"github.com/mcoot/bananamath/internal/services/game"
)

// IntegrationSuite drives full player flows through a wired TestApp
type IntegrationSuite struct {
	suite.Suite
	app *TestApp
	ctx context.Context
}

func TestIntegrationSuite(t *testing.T) {
	suite.Run(t, new(IntegrationSuite))
}

func (s *IntegrationSuite) SetupTest() {
	s.app = NewTestApp()
	s.ctx = context.Background()
}

func (s *IntegrationSuite) register(username string) (*model.UserProfile, *model.Session) {
	profile, session, err := s.app.AuthManager.Register(s.ctx, username, "Passw0rd!")
	s.Require().NoError(err)
	return profile, session
}

func (s *IntegrationSuite) session(app *TestApp, profile *model.UserProfile) *game.State {
	state, err := app.Sessions.Get(s.ctx, profile)
	s.Require().NoError(err)
	return state
}

func (s *IntegrationSuite) solve(state *game.State) {
	p, err := state.NewPuzzle(s.ctx)
	s.Require().NoError(err)
	correct, err := state.CheckAnswer(p.Answer)
	s.Require().NoError(err)
	s.Require().True(correct)
}

func (s *IntegrationSuite) TestRegisterPlaySaveFlow() {
	profile, _ := s.register("alice")

	_, session, err := s.app.AuthManager.Login(s.ctx, "alice", "Passw0rd!")
	s.Require().NoError(err)

	_, loaded, err := s.app.AuthManager.SessionProfile(s.ctx, session.Token)
	s.Require().NoError(err)
	s.Equal(profile.UserID, loaded.UserID)

	state := s.session(s.app, loaded)
	p, err := state.NewPuzzle(s.ctx)
	s.Require().NoError(err)
	s.Equal(model.TierNormal, p.Difficulty)

	correct, err := state.CheckAnswer(p.Answer)
	s.Require().NoError(err)
	s.True(correct)
	s.Equal(10, state.Score())

	name, err := state.SaveState(s.ctx, "")
	s.Require().NoError(err)
	s.NotEmpty(name)

	stored, err := s.app.AuthManager.Profile(s.ctx, profile.UserID)
	s.Require().NoError(err)
	s.Equal(10, stored.Score)
	s.Equal(10, stored.HighScore)
	s.True(stored.Achievements.Has(game.AchievementFirstWin))
}

func (s *IntegrationSuite) TestSessionsAreReusedPerProfile() {
	profile, _ := s.register("bob")

	first := s.session(s.app, profile)
	second := s.session(s.app, profile.Clone())
	s.Same(first, second)
	s.Equal(1, s.app.Sessions.Len())
}

func (s *IntegrationSuite) TestSaveAndLoadAcrossSessions() {
	profile, _ := s.register("carol")

	state := s.session(s.app, profile)
	p, err := state.NewPuzzle(s.ctx)
	s.Require().NoError(err)
	_, err = state.CheckAnswer(p.Answer)
	s.Require().NoError(err)
	_, err = state.SaveState(s.ctx, "checkpoint")
	s.Require().NoError(err)

	s.app.Sessions.Remove(profile.UserID)
	fresh := s.session(s.app, profile)
	s.NotSame(state, fresh)

	s.Require().NoError(fresh.LoadState(s.ctx, "checkpoint"))
	s.Equal(10, fresh.Score())
	s.Equal(1, fresh.GetState().Game.PuzzlesCompleted)

	saves, err := fresh.ListSaves(s.ctx)
	s.Require().NoError(err)
	s.Contains(saves, "checkpoint")
}

func (s *IntegrationSuite) TestRestartResumesAutosave() {
	profile, _ := s.register("frank")

	state := s.session(s.app, profile)
	for i := 0; i < 3; i++ {
		s.solve(state)
	}
	state.UpdateSettings(model.Settings{SoundEnabled: false, MusicEnabled: true, DifficultyScaling: true})
	_, err := state.SaveState(s.ctx, "")
	s.Require().NoError(err)

	restarted := NewTestAppWithStorage(s.app.Store)
	loaded, _, err := restarted.AuthManager.Login(s.ctx, "frank", "Passw0rd!")
	s.Require().NoError(err)

	resumed := s.session(restarted, loaded)
	snap := resumed.GetState()
	s.Equal(30, snap.Player.Score)
	s.Equal(3, snap.Statistics.PuzzlesSolved)
	s.Equal(3, snap.Game.PuzzlesCompleted)
	s.Equal([]int{30, 20, 10}, snap.Player.HighScores)
	s.False(snap.Settings.SoundEnabled)
	s.True(snap.Player.Achievements.Has(game.AchievementFirstWin))

	s.solve(resumed)
	_, err = resumed.SaveState(s.ctx, "")
	s.Require().NoError(err)

	again := s.session(NewTestAppWithStorage(s.app.Store), loaded)
	s.Equal(4, again.GetState().Statistics.PuzzlesSolved)
	s.Equal([]int{40, 30, 20, 10}, again.HighScores())
}

func (s *IntegrationSuite) TestFreshProfileStartsWithoutAutosave() {
	profile, _ := s.register("gina")

	snap := s.session(s.app, profile).GetState()
	s.Equal(0, snap.Player.Score)
	s.Equal(0, snap.Statistics.PuzzlesSolved)
	s.Empty(snap.Player.HighScores)
}

func (s *IntegrationSuite) TestResumeFailureIsNotCached() {
	profile, _ := s.register("hank")
	_, err := s.session(s.app, profile).SaveState(s.ctx, "")
	s.Require().NoError(err)
	s.app.Sessions.Remove(profile.UserID)

	s.app.Store.Fail(nil, errors.New("disk gone"), nil)
	_, err = s.app.Sessions.Get(s.ctx, profile)
	s.Require().Error(err)
	s.ErrorIs(err, model.ErrGameState)
	s.Equal(0, s.app.Sessions.Len())

	s.app.Store.Fail(nil, nil, nil)
	s.NotNil(s.session(s.app, profile))
}

func (s *IntegrationSuite) TestLockoutAndRecovery() {
	s.register("dave")

	for i := 0; i < 3; i++ {
		_, _, err := s.app.AuthManager.Login(s.ctx, "dave", "wrong")
		s.Require().Error(err)
	}

	_, _, err := s.app.AuthManager.Login(s.ctx, "dave", "Passw0rd!")
	s.Require().Error(err)
	var me *model.Error
	s.Require().True(errors.As(err, &me))
	s.Equal("Account locked", me.Message)

	s.app.MockClock.Advance(5*time.Minute + time.Second)
	_, _, err = s.app.AuthManager.Login(s.ctx, "dave", "Passw0rd!")
	s.NoError(err)
}

func (s *IntegrationSuite) TestStorageFailureSurfacesAsGameStateError() {
	profile, _ := s.register("erin")
	state := s.session(s.app, profile)

	s.app.Store.Fail(errors.New("disk full"), nil, nil)
	_, err := state.SaveState(s.ctx, "broken")
	s.Require().Error(err)
	s.ErrorIs(err, model.ErrGameState)
}
