package db

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// NewRedis builds a client for the report cache. The caller decides whether a
// failed ping is fatal; the service runs fine without Redis.
func NewRedis(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{Addr: addr})
}

func PingRedis(ctx context.Context, rdb *redis.Client) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return rdb.Ping(ctx).Err()
}
