package services

import (
	"context"
	"daystack/internal/ports"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// TravelCache memoizes oracle answers for exactly one planning run.
//
// Only successful lookups are stored: a failed pair may succeed later in
// the run. The cache is not safe for concurrent use; parallel lookups go
// through LookupMany, which commits results only after every fetch returned.
type TravelCache struct {
	oracle  ports.TravelTimeOracle
	entries map[ports.TravelQuery]int
	hits    int
	misses  int
}

func NewTravelCache(oracle ports.TravelTimeOracle) *TravelCache {
	return &TravelCache{
		oracle:  oracle,
		entries: make(map[ports.TravelQuery]int),
	}
}

// Lookup returns the travel minutes for q, asking the oracle on a miss.
func (c *TravelCache) Lookup(ctx context.Context, q ports.TravelQuery) (int, error) {
	if v, ok := c.entries[q]; ok {
		c.hits++
		return v, nil
	}
	c.misses++

	v, err := c.fetch(ctx, q)
	if err != nil {
		return 0, err
	}
	c.entries[q] = v
	return v, nil
}

// LookupMany resolves every query, fetching misses with at most parallelism
// concurrent oracle calls. Per-query failures are returned in failed; the
// returned error is non-nil only when ctx was cancelled.
func (c *TravelCache) LookupMany(
	ctx context.Context,
	queries []ports.TravelQuery,
	parallelism int,
) (found map[ports.TravelQuery]int, failed map[ports.TravelQuery]error, err error) {
	found = make(map[ports.TravelQuery]int, len(queries))
	failed = make(map[ports.TravelQuery]error)

	misses := make([]ports.TravelQuery, 0, len(queries))
	seen := make(map[ports.TravelQuery]struct{}, len(queries))
	for _, q := range queries {
		if _, ok := seen[q]; ok {
			continue
		}
		seen[q] = struct{}{}

		if v, ok := c.entries[q]; ok {
			c.hits++
			found[q] = v
			continue
		}
		c.misses++
		misses = append(misses, q)
	}

	if len(misses) == 0 {
		return found, failed, nil
	}

	values := make([]int, len(misses))
	errs := make([]error, len(misses))

	if parallelism <= 1 {
		for i, q := range misses {
			values[i], errs[i] = c.fetch(ctx, q)
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, nil, ctxErr
			}
		}
	} else {
		var g errgroup.Group
		g.SetLimit(parallelism)
		for i, q := range misses {
			g.Go(func() error {
				values[i], errs[i] = c.fetch(ctx, q)
				return nil
			})
		}
		_ = g.Wait()
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, nil, ctxErr
	}

	for i, q := range misses {
		if errs[i] != nil {
			failed[q] = errs[i]
			continue
		}
		c.entries[q] = values[i]
		found[q] = values[i]
	}

	return found, failed, nil
}

// Stats reports cache hits and misses so far.
func (c *TravelCache) Stats() (hits, misses int) { return c.hits, c.misses }

func (c *TravelCache) fetch(ctx context.Context, q ports.TravelQuery) (int, error) {
	v, err := c.oracle.TravelMinutes(ctx, q.From, q.To, q.IncludeBuffer)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return 0, ctxErr
		}
		if errors.Is(err, ports.ErrOracleUnavailable) {
			return 0, fmt.Errorf("travel %q -> %q: %w", q.From, q.To, err)
		}
		return 0, fmt.Errorf("travel %q -> %q: %w: %w", q.From, q.To, ports.ErrOracleUnavailable, err)
	}
	if v < 0 {
		return 0, fmt.Errorf("travel %q -> %q: %w: negative duration %d", q.From, q.To, ports.ErrOracleUnavailable, v)
	}
	return v, nil
}
