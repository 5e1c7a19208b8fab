package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// StrategyType selects how mark events are folded into an attendance status.
type StrategyType string

const (
	StrategySingleMark     StrategyType = "single_mark"
	StrategySessionBased   StrategyType = "session_based"
	StrategyDayBased       StrategyType = "day_based"
	StrategyMilestoneBased StrategyType = "milestone_based"
	StrategyContinuous     StrategyType = "continuous"
)

// TeamPolicy names how member statuses roll up to a team status.
type TeamPolicy string

const (
	TeamAllMembersPresent TeamPolicy = "all_members_present"
	TeamLeaderPresent     TeamPolicy = "leader_present"
	TeamMajorityPresent   TeamPolicy = "majority_present"
)

// StrategyConfig is the per-event attendance configuration. It is written once
// when the event schedule is set up and read-only afterwards.
type StrategyConfig struct {
	Type StrategyType `json:"type" bson:"type" validate:"required"`

	// Continuous strategy thresholds, on the 0-100 engagement scale.
	PresentThreshold float64 `json:"presentThreshold,omitempty" bson:"presentThreshold,omitempty"`
	PartialThreshold float64 `json:"partialThreshold,omitempty" bson:"partialThreshold,omitempty"`

	TeamPolicy TeamPolicy `json:"teamPolicy,omitempty" bson:"teamPolicy,omitempty"`

	// GraceMinutes extends a scoped invitation past its checkpoint's end time.
	// Zero means the default grace window.
	GraceMinutes int `json:"graceMinutes,omitempty" bson:"graceMinutes,omitempty"`
}

// Event is the owning aggregate for checkpoints, registrations and invitations.
type Event struct {
	ID       primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Name     string             `json:"name" bson:"name"`
	Strategy StrategyConfig     `json:"strategy" bson:"strategy"`
}
