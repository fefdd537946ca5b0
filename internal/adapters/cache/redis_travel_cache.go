package cache

import (
	"context"
	"daystack/internal/ports"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisTravelCache stores travel lookups as plain string keys with a TTL,
// so stale travel times age out without a sweeper.
type RedisTravelCache struct {
	Client *redis.Client
	TTL    time.Duration
	Prefix string
}

func NewRedisTravelCache(client *redis.Client, ttl time.Duration) *RedisTravelCache {
	return &RedisTravelCache{Client: client, TTL: ttl, Prefix: "daystack:travel:"}
}

func (r *RedisTravelCache) key(q ports.TravelQuery) string {
	buf := "0"
	if q.IncludeBuffer {
		buf = "1"
	}
	return r.Prefix + buf + ":" + strconv.Quote(q.From) + ":" + strconv.Quote(q.To)
}

func (r *RedisTravelCache) GetTravel(ctx context.Context, q ports.TravelQuery) (int, error) {
	if r.Client == nil {
		return 0, errors.New("travel cache: redis client is nil")
	}

	v, err := r.Client.Get(ctx, r.key(q)).Int()
	if errors.Is(err, redis.Nil) {
		return 0, ports.ErrCacheMiss
	}
	if err != nil {
		return 0, fmt.Errorf("get travel cache: redis get: %w", err)
	}
	return v, nil
}

func (r *RedisTravelCache) PutTravel(ctx context.Context, q ports.TravelQuery, minutes int) error {
	if r.Client == nil {
		return errors.New("travel cache: redis client is nil")
	}

	if err := r.Client.Set(ctx, r.key(q), minutes, r.TTL).Err(); err != nil {
		return fmt.Errorf("insert travel cache: redis set: %w", err)
	}
	return nil
}
