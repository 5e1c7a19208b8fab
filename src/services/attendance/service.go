package attendance

import (
	"context"
	"fmt"
	"log"
	"time"

	DB "Backend-Attendly-101/src/database"
	"Backend-Attendly-101/src/jobs"
	"Backend-Attendly-101/src/models"
	"Backend-Attendly-101/src/services/analytics"
	"Backend-Attendly-101/src/services/invitations"
	"Backend-Attendly-101/src/services/schedule"
	"Backend-Attendly-101/src/services/strategy"
	"Backend-Attendly-101/src/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// pairLocks serializes the read-compare-insert section per
// (registration, checkpoint) pair: two concurrent scans of the same
// participant at the same checkpoint cannot both land.
var pairLocks = utils.NewKeyedMutex()

// Storage seams for the mark pipeline. Production wiring stays on the
// package helpers below; tests swap these to drive the pipeline without a
// live database.
var (
	loadRegistration    = findRegistration
	loadSchedule        = schedule.Load
	verifyInvitation    = invitations.Validate
	currentMark         = effectiveMark
	appendMarkEvent     = insertMarkEvent
	recordVolunteer     = touchVolunteerSession
	refreshRegistration = recomputeRegistration
	queueRecompute      = scheduleAnalyticsRecompute
)

// Actor is either an administrator or a validated scanner invitation plus the
// volunteer operating it.
type Actor struct {
	AdminID         string
	InvitationCode  string
	OperatorName    string
	OperatorContact string
}

func (a Actor) IsScanner() bool { return a.InvitationCode != "" }

// MarkRequest is one attendance determination to append to the ledger.
type MarkRequest struct {
	RegistrationID  primitive.ObjectID
	CheckpointID    *primitive.ObjectID
	Channel         string
	Status          models.AttendanceStatus
	Notes           string
	EngagementScore *float64
}

// MarkResult is the registration's recomputed state after a mark lands.
type MarkResult struct {
	Status     models.AttendanceStatus `json:"newStatus"`
	Percentage float64                 `json:"newPercentage"`
}

// BulkItemFailure reports one failed id in a bulk mark.
type BulkItemFailure struct {
	RegistrationID string `json:"id"`
	Reason         string `json:"reason"`
}

// BulkResult isolates per-item outcomes; one bad id never aborts the batch.
type BulkResult struct {
	Succeeded []string          `json:"succeeded"`
	Failed    []BulkItemFailure `json:"failed"`
}

// StatusResponse is the GetStatus payload.
type StatusResponse struct {
	RegistrationID string                      `json:"registrationId"`
	Status         models.AttendanceStatus     `json:"status"`
	Percentage     float64                     `json:"percentage"`
	PerCheckpoint  []strategy.CheckpointDetail `json:"perCheckpointDetail"`
}

// ScanHistory is the audit view of scanner activity for an event.
type ScanHistory struct {
	Scans             []models.MarkEvent        `json:"scans"`
	VolunteerSessions []models.VolunteerSession `json:"volunteerSessions"`
}

// RecordMark validates, appends and recomputes one mark. Scanner actors are
// re-validated on every call; their scope and the checkpoint time window are
// both enforced here, never silently downgraded.
func RecordMark(ctx context.Context, req MarkRequest, actor Actor) (*MarkResult, error) {
	reg, err := loadRegistration(ctx, req.RegistrationID)
	if err != nil {
		return nil, err
	}

	sched, err := loadSchedule(ctx, reg.EventID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if err := normalizeMark(&req, sched, now); err != nil {
		return nil, err
	}

	if req.Status == "" {
		req.Status = models.StatusPresent
	}

	actorType, actorID := models.ActorAdmin, actor.AdminID
	if actor.IsScanner() {
		inv, err := verifyInvitation(ctx, actor.InvitationCode)
		if err != nil {
			return nil, err
		}
		if inv.EventID != reg.EventID {
			return nil, fmt.Errorf("%w: invitation belongs to another event", invitations.ErrInvalidCheckpointForScope)
		}
		if err := invitations.CheckScope(*inv, req.CheckpointID); err != nil {
			return nil, err
		}
		// Scanners can only attest presence.
		req.Status = models.StatusPresent
		actorType, actorID = models.ActorScanner, inv.Code
	}

	pairKey := req.RegistrationID.Hex() + "|" + checkpointHex(req.CheckpointID)
	pairLocks.Lock(pairKey)
	defer pairLocks.Unlock(pairKey)

	current, err := currentMark(ctx, req.RegistrationID, req.CheckpointID, req.Channel)
	if err != nil {
		return nil, err
	}
	if current != nil && isDuplicate(*current, req) {
		return nil, ErrDuplicateMark
	}

	mark := models.MarkEvent{
		EventID:         reg.EventID,
		RegistrationID:  req.RegistrationID,
		CheckpointID:    req.CheckpointID,
		Channel:         req.Channel,
		Status:          req.Status,
		EngagementScore: req.EngagementScore,
		ActorType:       actorType,
		ActorID:         actorID,
		OperatorName:    actor.OperatorName,
		Notes:           req.Notes,
		RecordedAt:      now,
	}
	if err := appendMarkEvent(ctx, mark); err != nil {
		return nil, err
	}

	// The audit row exists only once a scan has actually landed; rejected
	// scans never touch the volunteer session.
	if actorType == models.ActorScanner {
		if err := recordVolunteer(ctx, actorID, actor, now); err != nil {
			log.Printf("⚠️ Failed to update volunteer session: %v", err)
		}
	}

	result, err := refreshRegistration(ctx, reg, sched)
	if err != nil {
		return nil, err
	}

	utils.InvalidateAnalytics(reg.EventID.Hex())
	queueRecompute(ctx, reg.EventID)
	return result, nil
}

// RecordBulkMark applies one mark per registration id, isolating failures
// per id. Partial success is the expected shape, never all-or-nothing.
func RecordBulkMark(ctx context.Context, registrationIDs []string, checkpointID *primitive.ObjectID, status models.AttendanceStatus, notes string, actor Actor) *BulkResult {
	return applyBulk(ctx, registrationIDs, actor, func(regID primitive.ObjectID) MarkRequest {
		return MarkRequest{
			RegistrationID: regID,
			CheckpointID:   checkpointID,
			Status:         status,
			Notes:          notes,
		}
	}, RecordMark)
}

// applyBulk partitions a batch into per-id outcomes. Failures carry the same
// wire kinds as single marks so clients can retry selectively.
func applyBulk(ctx context.Context, registrationIDs []string, actor Actor, build func(primitive.ObjectID) MarkRequest, apply func(context.Context, MarkRequest, Actor) (*MarkResult, error)) *BulkResult {
	result := &BulkResult{Succeeded: []string{}, Failed: []BulkItemFailure{}}

	for _, rawID := range registrationIDs {
		regID, err := primitive.ObjectIDFromHex(rawID)
		if err != nil {
			result.Failed = append(result.Failed, BulkItemFailure{RegistrationID: rawID, Reason: KindOf(ErrUnknownRegistration)})
			continue
		}
		if _, err := apply(ctx, build(regID), actor); err != nil {
			result.Failed = append(result.Failed, BulkItemFailure{RegistrationID: rawID, Reason: KindOf(err)})
			continue
		}
		result.Succeeded = append(result.Succeeded, rawID)
	}
	return result
}

// GetStatus recomputes a registration's status from the ledger. Absence of
// marks is a valid state: absent, 0%.
func GetStatus(ctx context.Context, registrationID primitive.ObjectID) (*StatusResponse, error) {
	reg, err := findRegistration(ctx, registrationID)
	if err != nil {
		return nil, err
	}
	sched, err := schedule.Load(ctx, reg.EventID)
	if err != nil {
		return nil, err
	}
	marks, err := marksForRegistration(ctx, registrationID)
	if err != nil {
		return nil, err
	}
	res, err := strategy.Compute(sched.Event.Strategy, sched.Checkpoints, marks)
	if err != nil {
		return nil, err
	}
	return &StatusResponse{
		RegistrationID: registrationID.Hex(),
		Status:         res.Status,
		Percentage:     res.Percentage,
		PerCheckpoint:  res.PerCheckpoint,
	}, nil
}

// GetScanHistory returns scanner-recorded marks and volunteer sessions for an
// event, optionally narrowed to one invitation code.
func GetScanHistory(ctx context.Context, eventID primitive.ObjectID, code string) (*ScanHistory, error) {
	filter := bson.M{"eventId": eventID, "actorType": models.ActorScanner}
	if code != "" {
		filter["actorId"] = code
	}
	findOpts := options.Find().SetSort(bson.M{"recordedAt": 1})
	cursor, err := DB.MarkEventCollection.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to load scan history: %v", err)
	}
	defer cursor.Close(ctx)

	history := &ScanHistory{Scans: []models.MarkEvent{}, VolunteerSessions: []models.VolunteerSession{}}
	if err := cursor.All(ctx, &history.Scans); err != nil {
		return nil, fmt.Errorf("failed to decode scan history: %v", err)
	}

	codes := []string{code}
	if code == "" {
		codes, err = invitations.CodesForEvent(ctx, eventID)
		if err != nil {
			return nil, err
		}
	}
	if len(codes) > 0 {
		sessCursor, err := DB.VolunteerSessionCollection.Find(ctx, bson.M{"invitationCode": bson.M{"$in": codes}})
		if err != nil {
			return nil, fmt.Errorf("failed to load volunteer sessions: %v", err)
		}
		defer sessCursor.Close(ctx)
		if err := sessCursor.All(ctx, &history.VolunteerSessions); err != nil {
			return nil, fmt.Errorf("failed to decode volunteer sessions: %v", err)
		}
	}
	return history, nil
}

// normalizeMark checks the request against the event's strategy: checkpoint
// presence, time window, channel and engagement score rules.
func normalizeMark(req *MarkRequest, sched *schedule.Schedule, now time.Time) error {
	switch sched.Event.Strategy.Type {
	case models.StrategySingleMark, models.StrategyContinuous:
		if req.CheckpointID != nil {
			return schedule.ErrUnknownCheckpoint
		}
		req.Channel = ""
	default:
		if req.CheckpointID == nil {
			return ErrMissingCheckpoint
		}
		cp, ok := sched.CheckpointByID(*req.CheckpointID)
		if !ok {
			return schedule.ErrUnknownCheckpoint
		}
		if err := schedule.CheckWindow(cp, now, sched.Grace()); err != nil {
			return err
		}
		if cp.DualChannel {
			if req.Channel != models.ChannelVirtual && req.Channel != models.ChannelPhysical {
				return ErrInvalidChannel
			}
		} else {
			req.Channel = ""
		}
	}

	if sched.Event.Strategy.Type == models.StrategyContinuous {
		if req.EngagementScore == nil || *req.EngagementScore < 0 || *req.EngagementScore > 100 {
			return ErrScoreOutOfRange
		}
	} else {
		req.EngagementScore = nil
	}
	return nil
}

// isDuplicate reports whether the incoming mark records nothing new over the
// current effective mark. Changed state supersedes; identical state is
// rejected so the volunteer sees "already checked in".
func isDuplicate(current models.MarkEvent, req MarkRequest) bool {
	if current.Status != req.Status {
		return false
	}
	if current.EngagementScore == nil && req.EngagementScore == nil {
		return true
	}
	if current.EngagementScore == nil || req.EngagementScore == nil {
		return false
	}
	return *current.EngagementScore == *req.EngagementScore
}

func findRegistration(ctx context.Context, id primitive.ObjectID) (*models.Registration, error) {
	var reg models.Registration
	err := DB.RegistrationCollection.FindOne(ctx, bson.M{"_id": id}).Decode(&reg)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrUnknownRegistration
		}
		return nil, fmt.Errorf("failed to load registration: %v", err)
	}
	return &reg, nil
}

func marksForRegistration(ctx context.Context, registrationID primitive.ObjectID) ([]models.MarkEvent, error) {
	cursor, err := DB.MarkEventCollection.Find(ctx, bson.M{"registrationId": registrationID})
	if err != nil {
		return nil, fmt.Errorf("failed to load mark events: %v", err)
	}
	defer cursor.Close(ctx)

	var marks []models.MarkEvent
	if err := cursor.All(ctx, &marks); err != nil {
		return nil, fmt.Errorf("failed to decode mark events: %v", err)
	}
	return marks, nil
}

func insertMarkEvent(ctx context.Context, mark models.MarkEvent) error {
	if _, err := DB.MarkEventCollection.InsertOne(ctx, mark); err != nil {
		return fmt.Errorf("failed to append mark event: %v", err)
	}
	return nil
}

// effectiveMark finds the current winning mark for a (registration,
// checkpoint, channel) key, or nil when the pair is unmarked.
func effectiveMark(ctx context.Context, registrationID primitive.ObjectID, checkpointID *primitive.ObjectID, channel string) (*models.MarkEvent, error) {
	filter := bson.M{"registrationId": registrationID}
	if checkpointID != nil {
		filter["checkpointId"] = *checkpointID
	} else {
		filter["checkpointId"] = bson.M{"$exists": false}
	}
	if channel != "" {
		filter["channel"] = channel
	} else {
		filter["channel"] = bson.M{"$in": bson.A{nil, ""}}
	}

	findOpts := options.FindOne().SetSort(bson.D{{Key: "recordedAt", Value: -1}, {Key: "_id", Value: -1}})
	var mark models.MarkEvent
	err := DB.MarkEventCollection.FindOne(ctx, filter, findOpts).Decode(&mark)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load effective mark: %v", err)
	}
	return &mark, nil
}

// recomputeRegistration refreshes the cached status fields on the
// registration document from the full ledger.
func recomputeRegistration(ctx context.Context, reg *models.Registration, sched *schedule.Schedule) (*MarkResult, error) {
	marks, err := marksForRegistration(ctx, reg.ID)
	if err != nil {
		return nil, err
	}
	res, err := strategy.Compute(sched.Event.Strategy, sched.Checkpoints, marks)
	if err != nil {
		return nil, err
	}

	_, err = DB.RegistrationCollection.UpdateOne(ctx,
		bson.M{"_id": reg.ID},
		bson.M{"$set": bson.M{"status": res.Status, "percentage": res.Percentage, "updatedAt": time.Now()}},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to cache registration status: %v", err)
	}
	return &MarkResult{Status: res.Status, Percentage: res.Percentage}, nil
}

// touchVolunteerSession upserts the (invitation, operator) session: first scan
// creates it, later scans bump last-activity and the scan counter.
func touchVolunteerSession(ctx context.Context, code string, actor Actor, now time.Time) error {
	name := actor.OperatorName
	if name == "" {
		name = "anonymous"
	}
	_, err := DB.VolunteerSessionCollection.UpdateOne(ctx,
		bson.M{"invitationCode": code, "operatorName": name},
		bson.M{
			"$setOnInsert": bson.M{"firstSeenAt": now, "operatorContact": actor.OperatorContact},
			"$set":         bson.M{"lastActivityAt": now},
			"$inc":         bson.M{"scanCount": 1},
		},
		options.Update().SetUpsert(true),
	)
	return err
}

// scheduleAnalyticsRecompute enqueues the rollup task, or runs it inline when
// the job queue is unavailable.
func scheduleAnalyticsRecompute(ctx context.Context, eventID primitive.ObjectID) {
	if DB.AsynqClient != nil {
		task, err := jobs.NewRecomputeAnalyticsTask(eventID.Hex())
		if err == nil {
			if _, err := DB.AsynqClient.Enqueue(task); err == nil {
				return
			}
			log.Printf("⚠️ Failed to enqueue analytics recompute, running inline: %v", err)
		}
	}
	if _, err := analytics.RecomputeEvent(ctx, eventID); err != nil {
		log.Printf("⚠️ Inline analytics recompute failed: %v", err)
	}
}

func checkpointHex(id *primitive.ObjectID) string {
	if id == nil {
		return ""
	}
	return id.Hex()
}
