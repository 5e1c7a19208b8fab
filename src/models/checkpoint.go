package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Checkpoint is one addressable unit of an event's schedule: a session, a day
// or a milestone, depending on the event's strategy type.
type Checkpoint struct {
	ID      primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	EventID primitive.ObjectID `json:"eventId" bson:"eventId"`
	Name    string             `json:"name" bson:"name"`
	Order   int                `json:"order" bson:"order"`

	Mandatory bool    `json:"mandatory" bson:"mandatory"`
	Weight    float64 `json:"weight" bson:"weight"`

	// Time window. Nil for milestones that have no fixed schedule.
	StartAt *time.Time `json:"startAt,omitempty" bson:"startAt,omitempty"`
	EndAt   *time.Time `json:"endAt,omitempty" bson:"endAt,omitempty"`

	// DualChannel checkpoints need both a virtual and a physical mark before
	// they count as attended (e.g. pre-registration confirmation + on-site scan).
	DualChannel bool `json:"dualChannel" bson:"dualChannel"`
}
