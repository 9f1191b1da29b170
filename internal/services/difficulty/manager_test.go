package difficulty

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/bananamath/internal/model"
	"github.com/mcoot/bananamath/internal/testutil"
)

type ManagerSuite struct {
	suite.Suite
	manager *Manager
}

func TestManagerSuite(t *testing.T) {
	suite.Run(t, new(ManagerSuite))
}

func (s *ManagerSuite) SetupTest() {
	cfg := DefaultConfig()
	cfg.MaxLevel = 3
	s.manager = New(cfg, testutil.NopLogger())
}

func (s *ManagerSuite) TestInitialState() {
	s.Equal(model.TierNormal, s.manager.Tier())
	s.Equal(1, s.manager.Level())
	s.Equal(model.DefaultDifficultyConfigs()[model.TierNormal], s.manager.Params())
}

func (s *ManagerSuite) TestHighRateRaisesAndSaturates() {
	s.Equal(model.TierHard, s.manager.AdjustDifficulty(0.9))
	s.Equal(model.TierHard, s.manager.AdjustDifficulty(0.9))
	s.Equal(model.TierHard, s.manager.AdjustDifficulty(1.5))
	s.Equal(model.TierHard, s.manager.Tier())
}

func (s *ManagerSuite) TestLowRateLowersAndSaturates() {
	s.Equal(model.TierEasy, s.manager.AdjustDifficulty(0.3))
	s.Equal(model.TierEasy, s.manager.AdjustDifficulty(0.0))
	s.Equal(model.TierEasy, s.manager.AdjustDifficulty(-2))
}

func (s *ManagerSuite) TestThresholdsAreInclusive() {
	s.Equal(model.TierHard, s.manager.AdjustDifficulty(0.8))
	s.Equal(model.TierNormal, s.manager.AdjustDifficulty(0.4))
}

func (s *ManagerSuite) TestMiddleRateKeepsTier() {
	for _, rate := range []float64{0.41, 0.5, 0.79} {
		s.Equal(model.TierNormal, s.manager.AdjustDifficulty(rate))
	}
}

func (s *ManagerSuite) TestIncreaseLevelBounded() {
	s.True(s.manager.IncreaseLevel())
	s.True(s.manager.IncreaseLevel())
	s.False(s.manager.IncreaseLevel())
	s.Equal(3, s.manager.Level())
}

func (s *ManagerSuite) TestSetTierRejectsUnknown() {
	err := s.manager.SetTier("impossible")
	s.ErrorIs(err, model.ErrPuzzleGeneration)
	s.Equal(model.TierNormal, s.manager.Tier())

	s.Require().NoError(s.manager.SetTier(model.TierEasy))
	s.Equal(model.TierEasy, s.manager.Tier())
}

func (s *ManagerSuite) TestSetLevelClamps() {
	s.manager.SetLevel(99)
	s.Equal(3, s.manager.Level())
	s.manager.SetLevel(0)
	s.Equal(1, s.manager.Level())
}
