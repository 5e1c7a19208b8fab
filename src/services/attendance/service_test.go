package attendance

import (
	"context"
	"errors"
	"testing"
	"time"

	"Backend-Attendly-101/src/models"
	"Backend-Attendly-101/src/services/invitations"
	"Backend-Attendly-101/src/services/schedule"
	"Backend-Attendly-101/src/services/strategy"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestKindOf(t *testing.T) {
	cases := []struct {
		err  error
		kind string
	}{
		{ErrUnknownRegistration, "UnknownRegistration"},
		{ErrDuplicateMark, "DuplicateMark"},
		{ErrMissingCheckpoint, "MissingCheckpoint"},
		{ErrScoreOutOfRange, "EngagementScoreOutOfRange"},
		{ErrInvalidChannel, "InvalidChannel"},
		{invitations.ErrUnknownInvitation, "UnknownInvitation"},
		{invitations.ErrExpiredInvitation, "ExpiredInvitation"},
		{invitations.ErrActiveInvitationExists, "ActiveInvitationExists"},
		{invitations.ErrInvalidCheckpointForScope, "InvalidCheckpointForScope"},
		{invitations.ErrDurationRequired, "InvitationDurationRequired"},
		{invitations.ErrScopeRequired, "InvitationScopeRequired"},
		{schedule.ErrUnknownEvent, "UnknownEvent"},
		{schedule.ErrUnknownCheckpoint, "UnknownCheckpoint"},
		{schedule.ErrCheckpointClosed, "CheckpointClosed"},
		{strategy.ErrInvalidStrategyConfig, "InvalidStrategyConfiguration"},
		{errors.New("mongo timeout"), "Internal"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.kind, KindOf(tc.err), tc.kind)
	}

	t.Run("WrappedErrorsKeepTheirKind", func(t *testing.T) {
		wrapped := errors.Join(errors.New("context"), ErrDuplicateMark)
		assert.Equal(t, "DuplicateMark", KindOf(wrapped))
	})
}

func TestIsDuplicate(t *testing.T) {
	score := func(v float64) *float64 { return &v }

	t.Run("SameStatusNoScoresIsDuplicate", func(t *testing.T) {
		current := models.MarkEvent{Status: models.StatusPresent}
		req := MarkRequest{Status: models.StatusPresent}
		assert.True(t, isDuplicate(current, req))
	})

	t.Run("ChangedStatusSupersedes", func(t *testing.T) {
		current := models.MarkEvent{Status: models.StatusPresent}
		req := MarkRequest{Status: models.StatusAbsent}
		assert.False(t, isDuplicate(current, req))
	})

	t.Run("SameScoreIsDuplicate", func(t *testing.T) {
		current := models.MarkEvent{Status: models.StatusPresent, EngagementScore: score(80)}
		req := MarkRequest{Status: models.StatusPresent, EngagementScore: score(80)}
		assert.True(t, isDuplicate(current, req))
	})

	t.Run("ChangedScoreSupersedes", func(t *testing.T) {
		current := models.MarkEvent{Status: models.StatusPresent, EngagementScore: score(80)}
		req := MarkRequest{Status: models.StatusPresent, EngagementScore: score(55)}
		assert.False(t, isDuplicate(current, req))
	})
}

func testSchedule(strategyType models.StrategyType, checkpoints ...models.Checkpoint) *schedule.Schedule {
	return &schedule.Schedule{
		Event: models.Event{
			ID:       primitive.NewObjectID(),
			Strategy: models.StrategyConfig{Type: strategyType, PresentThreshold: 70, PartialThreshold: 30},
		},
		Checkpoints: checkpoints,
	}
}

func TestNormalizeMark(t *testing.T) {
	now := time.Now()

	t.Run("SingleMarkRejectsCheckpointID", func(t *testing.T) {
		cpID := primitive.NewObjectID()
		req := MarkRequest{CheckpointID: &cpID}
		err := normalizeMark(&req, testSchedule(models.StrategySingleMark), now)
		assert.ErrorIs(t, err, schedule.ErrUnknownCheckpoint)
	})

	t.Run("SessionBasedRequiresCheckpointID", func(t *testing.T) {
		req := MarkRequest{}
		err := normalizeMark(&req, testSchedule(models.StrategySessionBased), now)
		assert.ErrorIs(t, err, ErrMissingCheckpoint)
	})

	t.Run("UnknownCheckpointRejected", func(t *testing.T) {
		known := models.Checkpoint{ID: primitive.NewObjectID(), Mandatory: true, Weight: 1}
		unknown := primitive.NewObjectID()
		req := MarkRequest{CheckpointID: &unknown}
		err := normalizeMark(&req, testSchedule(models.StrategySessionBased, known), now)
		assert.ErrorIs(t, err, schedule.ErrUnknownCheckpoint)
	})

	t.Run("OutOfWindowCheckpointRejected", func(t *testing.T) {
		start := now.Add(-26 * time.Hour)
		end := now.Add(-25 * time.Hour)
		cp := models.Checkpoint{ID: primitive.NewObjectID(), Mandatory: true, Weight: 1, StartAt: &start, EndAt: &end}
		cpID := cp.ID
		req := MarkRequest{CheckpointID: &cpID}
		err := normalizeMark(&req, testSchedule(models.StrategyDayBased, cp), now)
		assert.ErrorIs(t, err, schedule.ErrCheckpointClosed)
	})

	t.Run("ChannelClearedForSingleChannelCheckpoint", func(t *testing.T) {
		cp := models.Checkpoint{ID: primitive.NewObjectID(), Mandatory: true, Weight: 1}
		cpID := cp.ID
		req := MarkRequest{CheckpointID: &cpID, Channel: models.ChannelVirtual}
		require.NoError(t, normalizeMark(&req, testSchedule(models.StrategySessionBased, cp), now))
		assert.Empty(t, req.Channel)
	})

	t.Run("DualChannelRequiresExplicitChannel", func(t *testing.T) {
		cp := models.Checkpoint{ID: primitive.NewObjectID(), Mandatory: true, Weight: 1, DualChannel: true}
		cpID := cp.ID

		req := MarkRequest{CheckpointID: &cpID}
		err := normalizeMark(&req, testSchedule(models.StrategySessionBased, cp), now)
		assert.ErrorIs(t, err, ErrInvalidChannel)

		req = MarkRequest{CheckpointID: &cpID, Channel: "virtaul"}
		err = normalizeMark(&req, testSchedule(models.StrategySessionBased, cp), now)
		assert.ErrorIs(t, err, ErrInvalidChannel)

		req = MarkRequest{CheckpointID: &cpID, Channel: models.ChannelVirtual}
		require.NoError(t, normalizeMark(&req, testSchedule(models.StrategySessionBased, cp), now))
		assert.Equal(t, models.ChannelVirtual, req.Channel)
	})

	t.Run("ContinuousRequiresScoreInRange", func(t *testing.T) {
		req := MarkRequest{}
		err := normalizeMark(&req, testSchedule(models.StrategyContinuous), now)
		assert.ErrorIs(t, err, ErrScoreOutOfRange)

		bad := 120.0
		req = MarkRequest{EngagementScore: &bad}
		err = normalizeMark(&req, testSchedule(models.StrategyContinuous), now)
		assert.ErrorIs(t, err, ErrScoreOutOfRange)

		ok := 65.0
		req = MarkRequest{EngagementScore: &ok}
		assert.NoError(t, normalizeMark(&req, testSchedule(models.StrategyContinuous), now))
	})

	t.Run("ScoreStrippedForDiscreteStrategies", func(t *testing.T) {
		cp := models.Checkpoint{ID: primitive.NewObjectID(), Mandatory: true, Weight: 1}
		cpID := cp.ID
		stray := 55.0
		req := MarkRequest{CheckpointID: &cpID, EngagementScore: &stray}
		require.NoError(t, normalizeMark(&req, testSchedule(models.StrategyDayBased, cp), now))
		assert.Nil(t, req.EngagementScore)
	})
}

// stubMarkPipeline swaps the storage seams for one test and restores them on
// cleanup. Every stub records its call into the returned slice.
func stubMarkPipeline(t *testing.T, sched *schedule.Schedule, reg *models.Registration, inv *models.ScannerInvitation, existing *models.MarkEvent, insertErr error) *[]string {
	t.Helper()
	calls := &[]string{}

	origLoadReg, origLoadSched := loadRegistration, loadSchedule
	origVerify, origCurrent := verifyInvitation, currentMark
	origAppend, origVolunteer := appendMarkEvent, recordVolunteer
	origRefresh, origQueue := refreshRegistration, queueRecompute
	t.Cleanup(func() {
		loadRegistration, loadSchedule = origLoadReg, origLoadSched
		verifyInvitation, currentMark = origVerify, origCurrent
		appendMarkEvent, recordVolunteer = origAppend, origVolunteer
		refreshRegistration, queueRecompute = origRefresh, origQueue
	})

	loadRegistration = func(ctx context.Context, id primitive.ObjectID) (*models.Registration, error) {
		return reg, nil
	}
	loadSchedule = func(ctx context.Context, id primitive.ObjectID) (*schedule.Schedule, error) {
		return sched, nil
	}
	verifyInvitation = func(ctx context.Context, code string) (*models.ScannerInvitation, error) {
		if inv == nil {
			return nil, invitations.ErrUnknownInvitation
		}
		return inv, nil
	}
	currentMark = func(ctx context.Context, regID primitive.ObjectID, cpID *primitive.ObjectID, channel string) (*models.MarkEvent, error) {
		return existing, nil
	}
	appendMarkEvent = func(ctx context.Context, m models.MarkEvent) error {
		*calls = append(*calls, "append")
		return insertErr
	}
	recordVolunteer = func(ctx context.Context, code string, actor Actor, now time.Time) error {
		*calls = append(*calls, "volunteer")
		return nil
	}
	refreshRegistration = func(ctx context.Context, r *models.Registration, s *schedule.Schedule) (*MarkResult, error) {
		*calls = append(*calls, "refresh")
		return &MarkResult{Status: models.StatusPresent, Percentage: 100}, nil
	}
	queueRecompute = func(ctx context.Context, id primitive.ObjectID) {}
	return calls
}

func TestScannerMarkPipeline(t *testing.T) {
	reg := &models.Registration{ID: primitive.NewObjectID(), EventID: primitive.NewObjectID()}
	sched := testSchedule(models.StrategySingleMark)
	sched.Event.ID = reg.EventID
	inv := &models.ScannerInvitation{
		Code:      "scan-code-1",
		EventID:   reg.EventID,
		Active:    true,
		IssuedAt:  time.Now(),
		ExpiresAt: time.Now().Add(time.Hour),
	}
	actor := Actor{InvitationCode: inv.Code, OperatorName: "Mika"}

	t.Run("VolunteerSessionRecordedAfterMarkLands", func(t *testing.T) {
		calls := stubMarkPipeline(t, sched, reg, inv, nil, nil)
		res, err := RecordMark(context.Background(), MarkRequest{RegistrationID: reg.ID}, actor)
		require.NoError(t, err)
		assert.Equal(t, models.StatusPresent, res.Status)
		assert.Equal(t, []string{"append", "volunteer", "refresh"}, *calls)
	})

	t.Run("DuplicateScanLeavesNoVolunteerTrace", func(t *testing.T) {
		existing := &models.MarkEvent{Status: models.StatusPresent}
		calls := stubMarkPipeline(t, sched, reg, inv, existing, nil)
		_, err := RecordMark(context.Background(), MarkRequest{RegistrationID: reg.ID}, actor)
		assert.ErrorIs(t, err, ErrDuplicateMark)
		assert.Empty(t, *calls)
	})

	t.Run("FailedAppendLeavesNoVolunteerTrace", func(t *testing.T) {
		calls := stubMarkPipeline(t, sched, reg, inv, nil, errors.New("write concern error"))
		_, err := RecordMark(context.Background(), MarkRequest{RegistrationID: reg.ID}, actor)
		assert.Error(t, err)
		assert.Equal(t, []string{"append"}, *calls)
	})

	t.Run("AdminMarkSkipsVolunteerSession", func(t *testing.T) {
		calls := stubMarkPipeline(t, sched, reg, inv, nil, nil)
		_, err := RecordMark(context.Background(), MarkRequest{RegistrationID: reg.ID}, Actor{AdminID: "a1"})
		require.NoError(t, err)
		assert.Equal(t, []string{"append", "refresh"}, *calls)
	})
}

func TestRecordBulkMarkIsolatesFailures(t *testing.T) {
	ids := make([]string, 5)
	for i := range ids {
		ids[i] = primitive.NewObjectID().Hex()
	}
	unknown := ids[2]

	apply := func(ctx context.Context, req MarkRequest, actor Actor) (*MarkResult, error) {
		if req.RegistrationID.Hex() == unknown {
			return nil, ErrUnknownRegistration
		}
		return &MarkResult{Status: models.StatusPresent, Percentage: 100}, nil
	}
	build := func(id primitive.ObjectID) MarkRequest {
		return MarkRequest{RegistrationID: id, Status: models.StatusPresent}
	}

	t.Run("UnknownIDFailsAloneOutOfFive", func(t *testing.T) {
		result := applyBulk(context.Background(), ids, Actor{AdminID: "a1"}, build, apply)
		assert.Len(t, result.Succeeded, 4)
		require.Len(t, result.Failed, 1)
		assert.Equal(t, unknown, result.Failed[0].RegistrationID)
		assert.Equal(t, "UnknownRegistration", result.Failed[0].Reason)
	})

	t.Run("MalformedIDNeverReachesApply", func(t *testing.T) {
		applied := 0
		counting := func(ctx context.Context, req MarkRequest, actor Actor) (*MarkResult, error) {
			applied++
			return &MarkResult{}, nil
		}
		result := applyBulk(context.Background(), []string{"not-a-hex-id", ids[0]}, Actor{AdminID: "a1"}, build, counting)
		assert.Equal(t, 1, applied)
		assert.Equal(t, []string{ids[0]}, result.Succeeded)
		require.Len(t, result.Failed, 1)
		assert.Equal(t, "UnknownRegistration", result.Failed[0].Reason)
	})
}
