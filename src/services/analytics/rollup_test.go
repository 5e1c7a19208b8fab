package analytics

import (
	"testing"

	"Backend-Attendly-101/src/models"

	"github.com/stretchr/testify/assert"
)

func members(statuses ...models.AttendanceStatus) []MemberStatus {
	out := make([]MemberStatus, len(statuses))
	for i, s := range statuses {
		out[i] = MemberStatus{Status: s}
	}
	return out
}

func TestTeamRollup(t *testing.T) {
	t.Run("EmptyTeamIsAbsent", func(t *testing.T) {
		assert.Equal(t, models.StatusAbsent, TeamRollup(models.TeamAllMembersPresent, nil))
	})

	t.Run("AllMembersPresentPolicy", func(t *testing.T) {
		assert.Equal(t, models.StatusPresent,
			TeamRollup(models.TeamAllMembersPresent, members(models.StatusPresent, models.StatusPresent)))
		assert.Equal(t, models.StatusPartial,
			TeamRollup(models.TeamAllMembersPresent, members(models.StatusPresent, models.StatusAbsent)))
		assert.Equal(t, models.StatusAbsent,
			TeamRollup(models.TeamAllMembersPresent, members(models.StatusAbsent, models.StatusAbsent)))
	})

	t.Run("LeaderPresentPolicy", func(t *testing.T) {
		team := []MemberStatus{
			{Status: models.StatusAbsent},
			{Status: models.StatusPresent, Leader: true},
		}
		assert.Equal(t, models.StatusPresent, TeamRollup(models.TeamLeaderPresent, team))

		team[1].Status = models.StatusPartial
		assert.Equal(t, models.StatusPartial, TeamRollup(models.TeamLeaderPresent, team))
	})

	t.Run("LeaderPolicyWithoutLeaderFallsBackToAllMembers", func(t *testing.T) {
		assert.Equal(t, models.StatusPartial,
			TeamRollup(models.TeamLeaderPresent, members(models.StatusPresent, models.StatusAbsent)))
	})

	t.Run("MajorityPresentPolicy", func(t *testing.T) {
		assert.Equal(t, models.StatusPresent,
			TeamRollup(models.TeamMajorityPresent, members(models.StatusPresent, models.StatusPresent, models.StatusAbsent)))
		assert.Equal(t, models.StatusPartial,
			TeamRollup(models.TeamMajorityPresent, members(models.StatusPresent, models.StatusAbsent, models.StatusAbsent)))
		assert.Equal(t, models.StatusAbsent,
			TeamRollup(models.TeamMajorityPresent, members(models.StatusAbsent, models.StatusAbsent)))
	})

	t.Run("UnsetPolicyDefaultsToAllMembers", func(t *testing.T) {
		assert.Equal(t, models.StatusPresent, TeamRollup("", members(models.StatusPresent)))
	})
}

func TestSummarize(t *testing.T) {
	t.Run("EmptyEvent", func(t *testing.T) {
		out := Summarize(nil)
		assert.Equal(t, 0, out.TotalRegistered)
		assert.Equal(t, 0.0, out.AttendanceRate)
	})

	t.Run("RateWeighsPartialAtHalf", func(t *testing.T) {
		out := Summarize([]models.AttendanceStatus{
			models.StatusPresent,
			models.StatusPresent,
			models.StatusPartial,
			models.StatusAbsent,
		})
		assert.Equal(t, 4, out.TotalRegistered)
		assert.Equal(t, 2, out.TotalPresent)
		assert.Equal(t, 1, out.TotalPartial)
		assert.Equal(t, 1, out.TotalAbsent)
		// (2 + 0.5) / 4 * 100
		assert.Equal(t, 62.5, out.AttendanceRate)
	})

	t.Run("DisplayLabelsCountAsPartial", func(t *testing.T) {
		out := Summarize([]models.AttendanceStatus{models.StatusVirtualOnly, models.StatusPhysicalOnly})
		assert.Equal(t, 2, out.TotalPartial)
		assert.Equal(t, 0, out.TotalAbsent)
	})

	t.Run("RateRoundsToOneDecimal", func(t *testing.T) {
		out := Summarize([]models.AttendanceStatus{
			models.StatusPresent,
			models.StatusAbsent,
			models.StatusAbsent,
		})
		// 1/3 * 100 = 33.333...
		assert.Equal(t, 33.3, out.AttendanceRate)
	})
}
