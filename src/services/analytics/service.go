package analytics

import (
	"context"
	"fmt"

	DB "Backend-Attendly-101/src/database"
	"Backend-Attendly-101/src/models"
	"Backend-Attendly-101/src/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TeamStatusResponse is one team's rolled-up status.
type TeamStatusResponse struct {
	TeamID string                  `json:"teamId"`
	Policy models.TeamPolicy       `json:"policy"`
	Status models.AttendanceStatus `json:"status"`
}

// GetEventAnalytics serves the event summary, read-through against the Redis
// snapshot so dashboards polling it do not hammer Mongo.
func GetEventAnalytics(ctx context.Context, eventID primitive.ObjectID) (*EventAnalytics, error) {
	var cached EventAnalytics
	hit, err := utils.GetCachedAnalytics(eventID.Hex(), &cached)
	if err == nil && hit {
		return &cached, nil
	}
	return RecomputeEvent(ctx, eventID)
}

// RecomputeEvent sums cached per-registration statuses into the event view
// and refreshes the Redis snapshot.
func RecomputeEvent(ctx context.Context, eventID primitive.ObjectID) (*EventAnalytics, error) {
	regs, err := registrationsForEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}

	statuses := make([]models.AttendanceStatus, len(regs))
	for i, r := range regs {
		statuses[i] = r.Status
	}
	summary := Summarize(statuses)

	if err := utils.CacheAnalytics(eventID.Hex(), summary); err != nil {
		// Cache refresh failure degrades to uncached reads only.
		return &summary, nil
	}
	return &summary, nil
}

// GetTeamStatus rolls member statuses up under the event's configured policy.
func GetTeamStatus(ctx context.Context, eventID, teamID primitive.ObjectID) (*TeamStatusResponse, error) {
	var event models.Event
	if err := DB.EventCollection.FindOne(ctx, bson.M{"_id": eventID}).Decode(&event); err != nil {
		return nil, fmt.Errorf("failed to load event: %v", err)
	}

	cursor, err := DB.RegistrationCollection.Find(ctx, bson.M{"eventId": eventID, "teamId": teamID})
	if err != nil {
		return nil, fmt.Errorf("failed to load team registrations: %v", err)
	}
	defer cursor.Close(ctx)

	var members []MemberStatus
	for cursor.Next(ctx) {
		var reg models.Registration
		if err := cursor.Decode(&reg); err != nil {
			continue
		}
		members = append(members, MemberStatus{Status: reg.Status, Leader: reg.TeamLeader})
	}

	return &TeamStatusResponse{
		TeamID: teamID.Hex(),
		Policy: event.Strategy.TeamPolicy,
		Status: TeamRollup(event.Strategy.TeamPolicy, members),
	}, nil
}

func registrationsForEvent(ctx context.Context, eventID primitive.ObjectID) ([]models.Registration, error) {
	cursor, err := DB.RegistrationCollection.Find(ctx, bson.M{"eventId": eventID})
	if err != nil {
		return nil, fmt.Errorf("failed to load registrations: %v", err)
	}
	defer cursor.Close(ctx)

	var regs []models.Registration
	if err := cursor.All(ctx, &regs); err != nil {
		return nil, fmt.Errorf("failed to decode registrations: %v", err)
	}
	return regs, nil
}
