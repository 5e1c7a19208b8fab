package database

import (
	"context"
	"log"
	"os"

	"github.com/redis/go-redis/v9"
)

var (
	RedisClient *redis.Client
	RedisCtx    = context.Background()
	RedisURI    string
)

// InitRedis connects the shared Redis client. The service degrades to
// uncached, inline recomputation when Redis is unreachable, so a failed
// connect only logs.
func InitRedis() {
	RedisURI = os.Getenv("REDIS_URI") // e.g. localhost:6379
	if RedisURI == "" {
		log.Println("⚠️ REDIS_URI not set. Analytics cache and background jobs disabled.")
		return
	}

	RedisClient = redis.NewClient(&redis.Options{
		Addr:     RedisURI,
		Password: "",
		DB:       0,
	})
	if _, err := RedisClient.Ping(RedisCtx).Result(); err != nil {
		log.Println("⚠️ Failed to connect Redis:", err)
		RedisClient = nil
		return
	}
	log.Println("✅ Redis connected successfully")
}
