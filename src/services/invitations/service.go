package invitations

import (
	"context"
	"fmt"
	"log"
	"time"

	DB "Backend-Attendly-101/src/database"
	"Backend-Attendly-101/src/models"
	"Backend-Attendly-101/src/services/schedule"
	"Backend-Attendly-101/src/utils"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// eventLocks serializes issue/revoke per event so "at most one active
// invitation per event" holds under concurrent issuance.
var eventLocks = utils.NewKeyedMutex()

// Stats summarizes an event's invitation state without re-exposing the code.
type Stats struct {
	HasActive    bool       `json:"hasActive"`
	Code         string     `json:"code,omitempty"`
	CheckpointID string     `json:"checkpointId,omitempty"`
	IssuedAt     *time.Time `json:"issuedAt,omitempty"`
	ExpiresAt    *time.Time `json:"expiresAt,omitempty"`
	TotalScans   int64      `json:"totalScans"`
	Volunteers   int64      `json:"volunteers"`
}

// Issue creates a new scanner invitation for an event. Fails with
// ErrActiveInvitationExists when one is already live, unless forceNew is set,
// in which case the prior invitation is revoked first.
func Issue(ctx context.Context, eventID primitive.ObjectID, checkpointID *primitive.ObjectID, explicit time.Duration, forceNew bool) (*models.ScannerInvitation, error) {
	sched, err := schedule.Load(ctx, eventID)
	if err != nil {
		return nil, err
	}

	var scoped *models.Checkpoint
	if checkpointID != nil {
		cp, ok := sched.CheckpointByID(*checkpointID)
		if !ok {
			return nil, schedule.ErrUnknownCheckpoint
		}
		scoped = cp
	} else if NeedsScope(sched.Event.Strategy.Type) {
		return nil, fmt.Errorf("%w: %s events accept only checkpoint-scoped codes", ErrScopeRequired, sched.Event.Strategy.Type)
	}

	now := time.Now()
	expiresAt, err := ExpiryFor(scoped, now, explicit, sched.Grace())
	if err != nil {
		return nil, err
	}

	eventLocks.Lock(eventID.Hex())
	defer eventLocks.Unlock(eventID.Hex())

	existing, err := findLive(ctx, eventID, now)
	if err != nil {
		return nil, err
	}
	if err := ResolveIssueConflict(existing, forceNew, now); err != nil {
		return nil, err
	}
	if existing != nil {
		if err := deactivate(ctx, existing.Code, now); err != nil {
			return nil, err
		}
		log.Printf("🔄 Invitation %s force-replaced for event %s", existing.Code, eventID.Hex())
	}

	inv := models.ScannerInvitation{
		Code:         uuid.NewString(),
		EventID:      eventID,
		CheckpointID: checkpointID,
		IssuedAt:     now,
		ExpiresAt:    expiresAt,
		Active:       true,
	}
	res, err := DB.InvitationCollection.InsertOne(ctx, inv)
	if err != nil {
		return nil, fmt.Errorf("failed to insert invitation: %v", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		inv.ID = oid
	}

	log.Printf("✅ Invitation issued for event %s, expires %s", eventID.Hex(), expiresAt.Format(time.RFC3339))
	return &inv, nil
}

// Validate resolves a code to a live invitation. The active flag and the
// expiry clock are both checked fresh on every call.
func Validate(ctx context.Context, code string) (*models.ScannerInvitation, error) {
	var inv models.ScannerInvitation
	err := DB.InvitationCollection.FindOne(ctx, bson.M{"code": code}).Decode(&inv)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrUnknownInvitation
		}
		return nil, fmt.Errorf("failed to look up invitation: %v", err)
	}
	if !IsLive(inv, time.Now()) {
		return nil, ErrExpiredInvitation
	}
	return &inv, nil
}

// Revoke deactivates a code. Idempotent: revoking an already-revoked or
// expired invitation succeeds; only an unknown code fails.
func Revoke(ctx context.Context, code string) error {
	res, err := DB.InvitationCollection.UpdateOne(ctx,
		bson.M{"code": code, "active": true},
		bson.M{"$set": bson.M{"active": false, "revokedAt": time.Now()}},
	)
	if err != nil {
		return fmt.Errorf("failed to revoke invitation: %v", err)
	}
	if res.MatchedCount == 0 {
		// Already inactive is fine; unknown code is not.
		count, err := DB.InvitationCollection.CountDocuments(ctx, bson.M{"code": code})
		if err != nil {
			return fmt.Errorf("failed to look up invitation: %v", err)
		}
		if count == 0 {
			return ErrUnknownInvitation
		}
	}
	return nil
}

// GetStats reports whether a live invitation exists for an event plus
// aggregate scan counts. The code itself is included only when includeCode is
// set by an authorized caller.
func GetStats(ctx context.Context, eventID primitive.ObjectID, includeCode bool) (*Stats, error) {
	stats := &Stats{}

	inv, err := findLive(ctx, eventID, time.Now())
	if err != nil {
		return nil, err
	}
	if inv != nil {
		stats.HasActive = true
		issued, expires := inv.IssuedAt, inv.ExpiresAt
		stats.IssuedAt = &issued
		stats.ExpiresAt = &expires
		if inv.CheckpointID != nil {
			stats.CheckpointID = inv.CheckpointID.Hex()
		}
		if includeCode {
			stats.Code = inv.Code
		}
	}

	scans, err := DB.MarkEventCollection.CountDocuments(ctx, bson.M{
		"eventId":   eventID,
		"actorType": models.ActorScanner,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to count scans: %v", err)
	}
	stats.TotalScans = scans

	codes, err := CodesForEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if len(codes) > 0 {
		volunteers, err := DB.VolunteerSessionCollection.CountDocuments(ctx, bson.M{
			"invitationCode": bson.M{"$in": codes},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to count volunteer sessions: %v", err)
		}
		stats.Volunteers = volunteers
	}
	return stats, nil
}

// findLive returns the event's live invitation, or nil.
func findLive(ctx context.Context, eventID primitive.ObjectID, now time.Time) (*models.ScannerInvitation, error) {
	var inv models.ScannerInvitation
	err := DB.InvitationCollection.FindOne(ctx, bson.M{
		"eventId":   eventID,
		"active":    true,
		"expiresAt": bson.M{"$gt": now},
	}).Decode(&inv)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to look up active invitation: %v", err)
	}
	return &inv, nil
}

func deactivate(ctx context.Context, code string, now time.Time) error {
	_, err := DB.InvitationCollection.UpdateOne(ctx,
		bson.M{"code": code},
		bson.M{"$set": bson.M{"active": false, "revokedAt": now}},
	)
	if err != nil {
		return fmt.Errorf("failed to deactivate invitation: %v", err)
	}
	return nil
}

// CodesForEvent lists every code ever issued for an event, live or not.
func CodesForEvent(ctx context.Context, eventID primitive.ObjectID) ([]string, error) {
	cursor, err := DB.InvitationCollection.Find(ctx, bson.M{"eventId": eventID})
	if err != nil {
		return nil, fmt.Errorf("failed to list invitations: %v", err)
	}
	defer cursor.Close(ctx)

	var codes []string
	for cursor.Next(ctx) {
		var inv models.ScannerInvitation
		if err := cursor.Decode(&inv); err != nil {
			continue
		}
		codes = append(codes, inv.Code)
	}
	return codes, nil
}
