package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Mark channels for dual-channel checkpoints. Empty means the single default
// channel.
const (
	ChannelVirtual  = "virtual"
	ChannelPhysical = "physical"
)

// Actor types recorded on a mark event.
const (
	ActorAdmin   = "admin"
	ActorScanner = "scanner"
)

// MarkEvent is one appended attendance fact. Rows are never updated or
// deleted; a later event for the same (registration, checkpoint, channel)
// supersedes earlier ones when status is computed.
type MarkEvent struct {
	ID             primitive.ObjectID  `json:"id,omitempty" bson:"_id,omitempty"`
	EventID        primitive.ObjectID  `json:"eventId" bson:"eventId"`
	RegistrationID primitive.ObjectID  `json:"registrationId" bson:"registrationId"`
	CheckpointID   *primitive.ObjectID `json:"checkpointId,omitempty" bson:"checkpointId,omitempty"`
	Channel        string              `json:"channel,omitempty" bson:"channel,omitempty"`

	Status AttendanceStatus `json:"status" bson:"status"`

	// EngagementScore is set only under the continuous strategy, range 0-100.
	EngagementScore *float64 `json:"engagementScore,omitempty" bson:"engagementScore,omitempty"`

	ActorType    string `json:"actorType" bson:"actorType"`
	ActorID      string `json:"actorId" bson:"actorId"`
	OperatorName string `json:"operatorName,omitempty" bson:"operatorName,omitempty"`
	Notes        string `json:"notes,omitempty" bson:"notes,omitempty"`

	RecordedAt time.Time `json:"recordedAt" bson:"recordedAt"`
}

// Supersedes reports whether m wins over other for the same
// (registration, checkpoint, channel) key. Later RecordedAt wins; equal
// timestamps fall back to insertion order via the ObjectID.
func (m MarkEvent) Supersedes(other MarkEvent) bool {
	if !m.RecordedAt.Equal(other.RecordedAt) {
		return m.RecordedAt.After(other.RecordedAt)
	}
	return m.ID.Hex() > other.ID.Hex()
}
