package utils

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	DB "Backend-Attendly-101/src/database"

	"github.com/redis/go-redis/v9"
)

var Ctx = context.Background()

const analyticsTTL = 60 * time.Second

// ensureClient returns the shared Redis client managed by the database
// package. Nil when Redis was not initialized; callers fall back to inline
// computation.
func ensureClient() *redis.Client {
	return DB.RedisClient
}

func analyticsKey(eventID string) string {
	return fmt.Sprintf("analytics:%s", eventID)
}

// CacheAnalytics stores an analytics snapshot for an event. No-op without Redis.
func CacheAnalytics(eventID string, snapshot any) error {
	client := ensureClient()
	if client == nil {
		return nil
	}
	data, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	return client.Set(Ctx, analyticsKey(eventID), data, analyticsTTL).Err()
}

// GetCachedAnalytics loads a snapshot into out. Returns false on miss or when
// Redis is unavailable.
func GetCachedAnalytics(eventID string, out any) (bool, error) {
	client := ensureClient()
	if client == nil {
		return false, nil
	}
	data, err := client.Get(Ctx, analyticsKey(eventID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return false, err
	}
	return true, nil
}

// InvalidateAnalytics drops the cached snapshot after new marks land.
func InvalidateAnalytics(eventID string) {
	client := ensureClient()
	if client == nil {
		return
	}
	client.Del(Ctx, analyticsKey(eventID))
}
