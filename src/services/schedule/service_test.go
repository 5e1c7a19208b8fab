package schedule

import (
	"testing"
	"time"

	"Backend-Attendly-101/src/models"
	"Backend-Attendly-101/src/services/strategy"

	"github.com/stretchr/testify/assert"
)

func TestValidateConfig(t *testing.T) {
	t.Run("SingleMarkWithConfiguredCheckpointsFails", func(t *testing.T) {
		err := ValidateConfig(models.StrategyConfig{Type: models.StrategySingleMark},
			[]models.Checkpoint{{Name: "Main"}})
		assert.ErrorIs(t, err, strategy.ErrInvalidStrategyConfig)
	})

	t.Run("SingleMarkWithoutCheckpointsPasses", func(t *testing.T) {
		assert.NoError(t, ValidateConfig(models.StrategyConfig{Type: models.StrategySingleMark}, nil))
	})

	t.Run("SessionBasedNeedsMandatoryWeight", func(t *testing.T) {
		err := ValidateConfig(models.StrategyConfig{Type: models.StrategySessionBased},
			[]models.Checkpoint{{Mandatory: false, Weight: 1}})
		assert.ErrorIs(t, err, strategy.ErrInvalidStrategyConfig)

		err = ValidateConfig(models.StrategyConfig{Type: models.StrategySessionBased},
			[]models.Checkpoint{{Mandatory: true, Weight: 0}})
		assert.ErrorIs(t, err, strategy.ErrInvalidStrategyConfig)

		assert.NoError(t, ValidateConfig(models.StrategyConfig{Type: models.StrategySessionBased},
			[]models.Checkpoint{{Mandatory: true, Weight: 1}}))
	})

	t.Run("NegativeWeightFails", func(t *testing.T) {
		err := ValidateConfig(models.StrategyConfig{Type: models.StrategyDayBased},
			[]models.Checkpoint{{Mandatory: true, Weight: -1}})
		assert.ErrorIs(t, err, strategy.ErrInvalidStrategyConfig)
	})

	t.Run("MilestoneNeedsAtLeastOneMandatory", func(t *testing.T) {
		err := ValidateConfig(models.StrategyConfig{Type: models.StrategyMilestoneBased},
			[]models.Checkpoint{{Mandatory: false}})
		assert.ErrorIs(t, err, strategy.ErrInvalidStrategyConfig)
	})

	t.Run("ContinuousThresholdOrdering", func(t *testing.T) {
		err := ValidateConfig(models.StrategyConfig{
			Type: models.StrategyContinuous, PresentThreshold: 30, PartialThreshold: 70,
		}, nil)
		assert.ErrorIs(t, err, strategy.ErrInvalidStrategyConfig)

		assert.NoError(t, ValidateConfig(models.StrategyConfig{
			Type: models.StrategyContinuous, PresentThreshold: 70, PartialThreshold: 30,
		}, nil))
	})

	t.Run("UnknownTeamPolicyFails", func(t *testing.T) {
		err := ValidateConfig(models.StrategyConfig{
			Type: models.StrategySingleMark, TeamPolicy: "captain_only",
		}, nil)
		assert.ErrorIs(t, err, strategy.ErrInvalidStrategyConfig)
	})

	t.Run("UnknownStrategyFails", func(t *testing.T) {
		err := ValidateConfig(models.StrategyConfig{Type: "roll_call"}, nil)
		assert.ErrorIs(t, err, strategy.ErrInvalidStrategyConfig)
	})
}

func TestCheckWindow(t *testing.T) {
	start := time.Date(2026, 3, 14, 13, 0, 0, 0, time.UTC)
	end := start.Add(2 * time.Hour)
	cp := &models.Checkpoint{Name: "Afternoon session", StartAt: &start, EndAt: &end}
	grace := time.Hour

	t.Run("UntimedCheckpointAlwaysOpen", func(t *testing.T) {
		assert.NoError(t, CheckWindow(&models.Checkpoint{}, time.Now(), grace))
	})

	t.Run("InsideWindowPasses", func(t *testing.T) {
		assert.NoError(t, CheckWindow(cp, start.Add(time.Hour), grace))
	})

	t.Run("EarlyArrivalWithinMarginPasses", func(t *testing.T) {
		assert.NoError(t, CheckWindow(cp, start.Add(-20*time.Minute), grace))
	})

	t.Run("TooEarlyFails", func(t *testing.T) {
		assert.ErrorIs(t, CheckWindow(cp, start.Add(-2*time.Hour), grace), ErrCheckpointClosed)
	})

	t.Run("WithinGraceAfterEndPasses", func(t *testing.T) {
		assert.NoError(t, CheckWindow(cp, end.Add(grace-time.Second), grace))
	})

	t.Run("AfterGraceFails", func(t *testing.T) {
		assert.ErrorIs(t, CheckWindow(cp, end.Add(grace+time.Second), grace), ErrCheckpointClosed)
	})
}
