package travel

import (
	"context"
	"daystack/internal/ports"
	"errors"
	"log"
)

// CachedOracle consults a persistent TravelCache before delegating.
// Cache failures are logged and bypassed; they never fail a lookup.
type CachedOracle struct {
	next  ports.TravelTimeOracle
	cache ports.TravelCache
}

func NewCachedOracle(next ports.TravelTimeOracle, cache ports.TravelCache) *CachedOracle {
	return &CachedOracle{next: next, cache: cache}
}

func (o *CachedOracle) TravelMinutes(ctx context.Context, from, to string, includeBuffer bool) (int, error) {
	q := ports.TravelQuery{From: normalize(from), To: normalize(to), IncludeBuffer: includeBuffer}

	v, err := o.cache.GetTravel(ctx, q)
	if err == nil {
		return v, nil
	}
	if !errors.Is(err, ports.ErrCacheMiss) {
		log.Printf("travel cache read failed from=%q to=%q err=%v", q.From, q.To, err)
	}

	v, err = o.next.TravelMinutes(ctx, from, to, includeBuffer)
	if err != nil {
		return 0, err
	}

	if err := o.cache.PutTravel(ctx, q, v); err != nil {
		log.Printf("travel cache write failed from=%q to=%q err=%v", q.From, q.To, err)
	}
	return v, nil
}
