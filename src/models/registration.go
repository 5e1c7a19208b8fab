package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AttendanceStatus is a registration's derived attendance state.
// VirtualOnly and PhysicalOnly are display labels for dual-channel checkpoints
// where only one marking channel has fired; the engine itself only ever lands
// on present/partial/absent.
type AttendanceStatus string

const (
	StatusPresent      AttendanceStatus = "present"
	StatusPartial      AttendanceStatus = "partial"
	StatusAbsent       AttendanceStatus = "absent"
	StatusVirtualOnly  AttendanceStatus = "virtual_only"
	StatusPhysicalOnly AttendanceStatus = "physical_only"
)

// RegistrationKind distinguishes solo participants from team members.
type RegistrationKind string

const (
	KindIndividual RegistrationKind = "individual"
	KindTeamMember RegistrationKind = "team-member"
)

// Registration is one participant's enrollment in an event. Status and
// Percentage are a cache of the last strategy computation; the ledger is the
// source of truth.
type Registration struct {
	ID            primitive.ObjectID  `json:"id,omitempty" bson:"_id,omitempty"`
	EventID       primitive.ObjectID  `json:"eventId" bson:"eventId"`
	ParticipantID primitive.ObjectID  `json:"participantId" bson:"participantId"`
	Kind          RegistrationKind    `json:"kind" bson:"kind"`
	TeamID        *primitive.ObjectID `json:"teamId,omitempty" bson:"teamId,omitempty"`
	TeamLeader    bool                `json:"teamLeader,omitempty" bson:"teamLeader,omitempty"`

	Status     AttendanceStatus `json:"status" bson:"status"`
	Percentage float64          `json:"percentage" bson:"percentage"`
	UpdatedAt  time.Time        `json:"updatedAt" bson:"updatedAt"`
}
