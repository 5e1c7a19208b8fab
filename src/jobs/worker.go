package jobs

import (
	"context"
	"encoding/json"
	"log"

	"Backend-Attendly-101/src/database"
	"Backend-Attendly-101/src/services/analytics"

	"github.com/hibiken/asynq"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// HandleRecomputeAnalyticsTask refreshes an event's analytics snapshot after
// marks landed. A deleted event is not an error; the task just skips.
func HandleRecomputeAnalyticsTask(ctx context.Context, t *asynq.Task) error {
	var payload AnalyticsPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		log.Println("❌ Payload decode error:", err)
		return err
	}

	eventID, err := primitive.ObjectIDFromHex(payload.EventID)
	if err != nil {
		log.Println("⚠️ Invalid event id in task payload, skipping:", payload.EventID)
		return nil
	}

	summary, err := analytics.RecomputeEvent(ctx, eventID)
	if err != nil {
		log.Println("❌ Analytics recompute failed:", err)
		return err
	}

	log.Printf("✅ Analytics recomputed for event %s: %d registered, rate %.1f%%",
		payload.EventID, summary.TotalRegistered, summary.AttendanceRate)
	return nil
}

// StartWorker runs the asynq server in the background. No-op when Redis is
// not configured; recomputes then run inline in the request path.
func StartWorker() {
	if database.RedisClient == nil || database.RedisURI == "" {
		log.Println("⚠️ Redis not available. Background worker will not start.")
		return
	}

	srv := asynq.NewServer(
		asynq.RedisClientOpt{Addr: database.RedisURI},
		asynq.Config{Concurrency: 5},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeRecomputeAnalytics, HandleRecomputeAnalyticsTask)

	go func() {
		if err := srv.Run(mux); err != nil {
			log.Println("❌ Asynq worker stopped:", err)
		}
	}()
	log.Println("✅ Asynq worker started")
}
