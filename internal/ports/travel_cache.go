package ports

import (
	"context"
	"errors"
)

// ErrCacheMiss is returned by persistent caches when a key is not stored.
var ErrCacheMiss = errors.New("cache miss")

// Persistent, upstream cache for travel-time lookups.
// Implementations decide expiry; entries may legitimately go stale.
type TravelCache interface {
	GetTravel(ctx context.Context, q TravelQuery) (int, error)
	PutTravel(ctx context.Context, q TravelQuery, minutes int) error
}
