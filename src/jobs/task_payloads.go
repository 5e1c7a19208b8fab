package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TypeRecomputeAnalytics = "analytics:recompute"

type AnalyticsPayload struct {
	EventID string `json:"event_id"`
}

func NewRecomputeAnalyticsTask(eventID string) (*asynq.Task, error) {
	payload, err := json.Marshal(AnalyticsPayload{EventID: eventID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeRecomputeAnalytics, payload), nil
}
