package cache

import (
	"context"
	"database/sql"
	"daystack/internal/platform/obs"
	"daystack/internal/ports"
	"errors"
	"fmt"
	"time"
)

// SQLTravelCache is a PostgreSQL-backed upstream cache for travel lookups.
// Entries older than TTL are treated as misses.
type SQLTravelCache struct {
	DB  *sql.DB
	TTL time.Duration
}

func NewSQLTravelCache(db *sql.DB, ttl time.Duration) *SQLTravelCache {
	return &SQLTravelCache{DB: db, TTL: ttl}
}

func (s *SQLTravelCache) GetTravel(ctx context.Context, q ports.TravelQuery) (_ int, err error) {
	defer obs.Time(ctx, "travel.cache.Get")(&err)

	if s.DB == nil {
		return 0, errors.New("travel cache: db is nil")
	}
	if q.From == "" || q.To == "" {
		return 0, errors.New("get travel cache: origin and destination must not be empty")
	}

	var minutes int
	err = s.DB.QueryRowContext(ctx, `
	SELECT minutes
    FROM travel_cache
    WHERE origin = $1
        AND destination = $2
        AND include_buffer = $3
        AND fetched_at >= $4;
	`, q.From, q.To, q.IncludeBuffer, cutoff(s.TTL)).Scan(&minutes)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ports.ErrCacheMiss
	}
	if err != nil {
		return 0, fmt.Errorf("get travel cache: query travel_cache table: %w", err)
	}

	return minutes, nil
}

func (s *SQLTravelCache) PutTravel(ctx context.Context, q ports.TravelQuery, minutes int) error {
	if s.DB == nil {
		return errors.New("travel cache: db is nil")
	}
	if q.From == "" || q.To == "" {
		return errors.New("insert travel cache: origin and destination must not be empty")
	}

	_, err := s.DB.ExecContext(ctx, `
	INSERT INTO travel_cache (origin, destination, include_buffer, minutes, fetched_at)
    VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (origin, destination, include_buffer) DO UPDATE
	SET minutes = EXCLUDED.minutes,
		fetched_at = EXCLUDED.fetched_at;
	`, q.From, q.To, q.IncludeBuffer, minutes, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("insert travel cache %q -> %q: %w", q.From, q.To, err)
	}

	return nil
}

// cutoff returns the oldest acceptable fetch time. A zero TTL never expires.
func cutoff(ttl time.Duration) time.Time {
	if ttl <= 0 {
		return time.Unix(0, 0).UTC()
	}
	return time.Now().UTC().Add(-ttl)
}
