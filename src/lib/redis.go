package lib

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
)

var redisClient *redis.Client

func GetRedisClient() *redis.Client {
	if redisClient != nil {
		return redisClient
	}
	redisHost := os.Getenv("REDIS_HOST")
	opt, err := redis.ParseURL(redisHost)
	if err != nil {
		log.Printf("[redis] Error parsing connection string: %s\n", err.Error())
		return nil
	}
	rdb := redis.NewClient(opt)
	redisClient = rdb
	return rdb
}

// NewRedisClient Replace redis instance with custom client implementation
func NewRedisClient(c *redis.Client) *redis.Client {
	redisClient = c
	return redisClient
}

// LookupIdempotencyKey returns the record id stored for a client-supplied
// idempotency key, if any.
func LookupIdempotencyKey(kind string, key string) (uint, bool) {
	rd := GetRedisClient()
	if rd == nil {
		return 0, false
	}
	rkey := fmt.Sprintf("idempotency:%s:%s", kind, key)
	stored, err := rd.Get(context.Background(), rkey).Uint64()
	if err != nil {
		return 0, false
	}
	return uint(stored), true
}

// ClaimIdempotencyKey reserves a client-supplied idempotency key for a
// resource kind. Returns the id already stored under the key when the key
// was seen before, so retried requests resolve to the original record.
func ClaimIdempotencyKey(kind string, key string, id uint) (existing uint, claimed bool) {
	rd := GetRedisClient()
	if rd == nil {
		return 0, true
	}
	ctx := context.Background()
	rkey := fmt.Sprintf("idempotency:%s:%s", kind, key)
	ok, err := rd.SetNX(ctx, rkey, id, 24*time.Hour).Result()
	if err != nil {
		log.Printf("[redis] Error claiming idempotency key %s: %s\n", rkey, err.Error())
		return 0, true
	}
	if ok {
		return 0, true
	}
	stored, err := rd.Get(ctx, rkey).Uint64()
	if err != nil {
		log.Printf("[redis] Error reading idempotency key %s: %s\n", rkey, err.Error())
		return 0, true
	}
	return uint(stored), false
}
