package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ScannerInvitation is a capability credential: whoever holds the code may
// record mark events inside its scope until it expires or is revoked. At most
// one invitation per event is active at a time.
type ScannerInvitation struct {
	ID      primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Code    string             `json:"code" bson:"code"`
	EventID primitive.ObjectID `json:"eventId" bson:"eventId"`

	// CheckpointID is the scope. Nil means unscoped, which is only valid for
	// single-mark events.
	CheckpointID *primitive.ObjectID `json:"checkpointId,omitempty" bson:"checkpointId,omitempty"`

	IssuedAt  time.Time  `json:"issuedAt" bson:"issuedAt"`
	ExpiresAt time.Time  `json:"expiresAt" bson:"expiresAt"`
	Active    bool       `json:"active" bson:"active"`
	RevokedAt *time.Time `json:"revokedAt,omitempty" bson:"revokedAt,omitempty"`
}

// VolunteerSession tracks one self-declared operator scanning under one
// invitation. Kept for audit, never deleted.
type VolunteerSession struct {
	ID              primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	InvitationCode  string             `json:"invitationCode" bson:"invitationCode"`
	OperatorName    string             `json:"operatorName" bson:"operatorName"`
	OperatorContact string             `json:"operatorContact,omitempty" bson:"operatorContact,omitempty"`
	FirstSeenAt     time.Time          `json:"firstSeenAt" bson:"firstSeenAt"`
	LastActivityAt  time.Time          `json:"lastActivityAt" bson:"lastActivityAt"`
	ScanCount       int64              `json:"scanCount" bson:"scanCount"`
}
