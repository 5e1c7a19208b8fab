package analytics

import (
	"math"

	"Backend-Attendly-101/src/models"
)

// MemberStatus is one team member's derived status plus their leader flag.
type MemberStatus struct {
	Status models.AttendanceStatus
	Leader bool
}

// EventAnalytics is the event-wide summary. attendance_rate weighs partial
// attendance at half a presence, matching the percentage semantics of the
// strategy engine.
type EventAnalytics struct {
	TotalRegistered int     `json:"total_registered"`
	TotalPresent    int     `json:"total_present"`
	TotalPartial    int     `json:"total_partial"`
	TotalAbsent     int     `json:"total_absent"`
	AttendanceRate  float64 `json:"attendance_rate"`
}

// TeamRollup folds member statuses into a team status under the event's named
// policy. The policy is explicit per-event configuration, never inferred.
func TeamRollup(policy models.TeamPolicy, members []MemberStatus) models.AttendanceStatus {
	if len(members) == 0 {
		return models.StatusAbsent
	}

	var present, partial int
	for _, m := range members {
		switch m.Status {
		case models.StatusPresent:
			present++
		case models.StatusPartial:
			partial++
		}
	}

	switch policy {
	case models.TeamLeaderPresent:
		for _, m := range members {
			if m.Leader {
				return engineStatus(m.Status)
			}
		}
		// No designated leader recorded; fall back to the strictest policy.
		fallthrough
	case models.TeamAllMembersPresent, "":
		switch {
		case present == len(members):
			return models.StatusPresent
		case present > 0 || partial > 0:
			return models.StatusPartial
		default:
			return models.StatusAbsent
		}
	case models.TeamMajorityPresent:
		switch {
		case present*2 > len(members):
			return models.StatusPresent
		case present > 0 || partial > 0:
			return models.StatusPartial
		default:
			return models.StatusAbsent
		}
	default:
		return models.StatusAbsent
	}
}

// Summarize counts statuses into the event-wide analytics view.
// attendance_rate = (present + 0.5*partial) / total * 100, one decimal.
func Summarize(statuses []models.AttendanceStatus) EventAnalytics {
	out := EventAnalytics{TotalRegistered: len(statuses)}
	for _, s := range statuses {
		switch engineStatus(s) {
		case models.StatusPresent:
			out.TotalPresent++
		case models.StatusPartial:
			out.TotalPartial++
		default:
			out.TotalAbsent++
		}
	}
	if out.TotalRegistered > 0 {
		rate := (float64(out.TotalPresent) + 0.5*float64(out.TotalPartial)) / float64(out.TotalRegistered) * 100
		out.AttendanceRate = math.Round(rate*10) / 10
	}
	return out
}

// engineStatus collapses display labels to the three engine states; the
// display-only virtual_only/physical_only labels count as partial.
func engineStatus(s models.AttendanceStatus) models.AttendanceStatus {
	switch s {
	case models.StatusPresent:
		return models.StatusPresent
	case models.StatusPartial, models.StatusVirtualOnly, models.StatusPhysicalOnly:
		return models.StatusPartial
	default:
		return models.StatusAbsent
	}
}
