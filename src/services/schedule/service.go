package schedule

import (
	"context"
	"errors"
	"fmt"
	"time"

	DB "Backend-Attendly-101/src/database"
	"Backend-Attendly-101/src/models"
	"Backend-Attendly-101/src/services/strategy"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrUnknownEvent      = errors.New("unknown event")
	ErrUnknownCheckpoint = errors.New("unknown checkpoint")
	ErrCheckpointClosed  = errors.New("checkpoint window is closed")
)

// Marks may land a little before a session opens (queues form early).
const earlyMargin = 30 * time.Minute

// DefaultGrace extends checkpoint windows and scoped invitations past the
// checkpoint's end time.
const DefaultGrace = time.Hour

// Schedule is an event's strategy config plus its ordered checkpoints.
// Read-only input to the engine.
type Schedule struct {
	Event       models.Event
	Checkpoints []models.Checkpoint
}

// Load reads an event and its checkpoints. The config is validated on every
// load so a misconfigured event fails fast instead of mid-computation.
func Load(ctx context.Context, eventID primitive.ObjectID) (*Schedule, error) {
	var event models.Event
	err := DB.EventCollection.FindOne(ctx, bson.M{"_id": eventID}).Decode(&event)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrUnknownEvent
		}
		return nil, fmt.Errorf("failed to load event: %v", err)
	}

	findOpts := options.Find().SetSort(bson.M{"order": 1})
	cursor, err := DB.CheckpointCollection.Find(ctx, bson.M{"eventId": eventID}, findOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to load checkpoints: %v", err)
	}
	defer cursor.Close(ctx)

	var checkpoints []models.Checkpoint
	if err := cursor.All(ctx, &checkpoints); err != nil {
		return nil, fmt.Errorf("failed to decode checkpoints: %v", err)
	}

	if err := ValidateConfig(event.Strategy, checkpoints); err != nil {
		return nil, err
	}
	return &Schedule{Event: event, Checkpoints: checkpoints}, nil
}

// ValidateConfig checks that a strategy config and its checkpoint set can ever
// produce a status. Called when a schedule is configured and again on load.
func ValidateConfig(cfg models.StrategyConfig, checkpoints []models.Checkpoint) error {
	switch cfg.Type {
	case models.StrategySingleMark:
		if len(checkpoints) > 0 {
			return fmt.Errorf("%w: single_mark events use one implicit checkpoint, got %d configured", strategy.ErrInvalidStrategyConfig, len(checkpoints))
		}
	case models.StrategySessionBased, models.StrategyDayBased:
		var totalWeight float64
		for _, cp := range checkpoints {
			if cp.Weight < 0 {
				return fmt.Errorf("%w: checkpoint %q has negative weight", strategy.ErrInvalidStrategyConfig, cp.Name)
			}
			if cp.Mandatory {
				totalWeight += cp.Weight
			}
		}
		if totalWeight <= 0 {
			return fmt.Errorf("%w: mandatory checkpoint weights sum to %.1f", strategy.ErrInvalidStrategyConfig, totalWeight)
		}
	case models.StrategyMilestoneBased:
		mandatory := 0
		for _, cp := range checkpoints {
			if cp.Mandatory {
				mandatory++
			}
		}
		if mandatory == 0 {
			return fmt.Errorf("%w: milestone strategy requires at least one mandatory milestone", strategy.ErrInvalidStrategyConfig)
		}
	case models.StrategyContinuous:
		if cfg.PresentThreshold <= 0 || cfg.PresentThreshold > 100 {
			return fmt.Errorf("%w: present threshold %.1f out of range", strategy.ErrInvalidStrategyConfig, cfg.PresentThreshold)
		}
		if cfg.PartialThreshold < 0 || cfg.PartialThreshold > cfg.PresentThreshold {
			return fmt.Errorf("%w: partial threshold %.1f out of range", strategy.ErrInvalidStrategyConfig, cfg.PartialThreshold)
		}
	default:
		return fmt.Errorf("%w: unknown strategy type %q", strategy.ErrInvalidStrategyConfig, cfg.Type)
	}

	switch cfg.TeamPolicy {
	case "", models.TeamAllMembersPresent, models.TeamLeaderPresent, models.TeamMajorityPresent:
	default:
		return fmt.Errorf("%w: unknown team policy %q", strategy.ErrInvalidStrategyConfig, cfg.TeamPolicy)
	}
	return nil
}

// Grace returns the event's invitation/window grace period.
func (s *Schedule) Grace() time.Duration {
	if s.Event.Strategy.GraceMinutes > 0 {
		return time.Duration(s.Event.Strategy.GraceMinutes) * time.Minute
	}
	return DefaultGrace
}

// CheckpointByID finds a checkpoint in the schedule.
func (s *Schedule) CheckpointByID(id primitive.ObjectID) (*models.Checkpoint, bool) {
	for i := range s.Checkpoints {
		if s.Checkpoints[i].ID == id {
			return &s.Checkpoints[i], true
		}
	}
	return nil, false
}

// CheckWindow rejects marks that target a checkpoint outside its time window.
// Untimed checkpoints (milestones) are always open. The late margin matches
// the invitation grace so a scan authorized by a live invitation is never
// rejected for timing.
func CheckWindow(cp *models.Checkpoint, at time.Time, grace time.Duration) error {
	if cp.StartAt == nil || cp.EndAt == nil {
		return nil
	}
	if at.Before(cp.StartAt.Add(-earlyMargin)) || at.After(cp.EndAt.Add(grace)) {
		return fmt.Errorf("%w: %q accepts marks between %s and %s", ErrCheckpointClosed,
			cp.Name, cp.StartAt.Add(-earlyMargin).Format(time.RFC3339), cp.EndAt.Add(grace).Format(time.RFC3339))
	}
	return nil
}
