package invitations

import (
	"errors"
	"time"

	"Backend-Attendly-101/src/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrUnknownInvitation         = errors.New("unknown invitation")
	ErrExpiredInvitation         = errors.New("invitation expired or revoked")
	ErrActiveInvitationExists    = errors.New("an active invitation already exists for this event")
	ErrInvalidCheckpointForScope = errors.New("checkpoint is outside the invitation scope")
	ErrDurationRequired          = errors.New("an unscoped invitation requires an explicit duration")
	ErrScopeRequired             = errors.New("this strategy requires a checkpoint-scoped invitation")
)

// NeedsScope reports whether invitations for a strategy must carry a
// checkpoint scope. An unscoped code would authorize scans at every
// checkpoint, so strategies with discrete checkpoints never accept one.
func NeedsScope(t models.StrategyType) bool {
	switch t {
	case models.StrategySingleMark, models.StrategyContinuous:
		return false
	default:
		return true
	}
}

// ResolveIssueConflict applies the single-active-invitation rule: a live
// invitation blocks issuance unless forceNew is set, in which case it is
// retired in place before the new code is minted.
func ResolveIssueConflict(existing *models.ScannerInvitation, forceNew bool, now time.Time) error {
	if existing == nil {
		return nil
	}
	if !forceNew {
		return ErrActiveInvitationExists
	}
	existing.Active = false
	existing.RevokedAt = &now
	return nil
}

// ExpiryFor derives an invitation's expiry. A scoped invitation lives until
// its checkpoint ends plus the grace window; an unscoped one needs an explicit
// duration.
func ExpiryFor(cp *models.Checkpoint, issuedAt time.Time, explicit time.Duration, grace time.Duration) (time.Time, error) {
	if cp != nil && cp.EndAt != nil {
		return cp.EndAt.Add(grace), nil
	}
	if explicit <= 0 {
		return time.Time{}, ErrDurationRequired
	}
	return issuedAt.Add(explicit), nil
}

// IsLive reports whether an invitation authorizes scans at the given instant.
// Expiry is evaluated lazily here on every call; there is no background sweep
// flipping the active flag.
func IsLive(inv models.ScannerInvitation, now time.Time) bool {
	return inv.Active && now.Before(inv.ExpiresAt)
}

// CheckScope verifies that a scan's target checkpoint matches the invitation
// scope. An unscoped invitation (single-mark events) accepts any target.
func CheckScope(inv models.ScannerInvitation, checkpointID *primitive.ObjectID) error {
	if inv.CheckpointID == nil {
		return nil
	}
	if checkpointID == nil || *checkpointID != *inv.CheckpointID {
		return ErrInvalidCheckpointForScope
	}
	return nil
}
