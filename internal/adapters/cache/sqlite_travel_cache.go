package cache

import (
	"context"
	"database/sql"
	"daystack/internal/ports"
	"errors"
	"fmt"
	"time"
)

// SQLite backed upstream cache for travel lookups.
// Keys are expected to be consistent (e.g., already normalized) by the caller.
type SqliteTravelCache struct {
	DB  *sql.DB
	TTL time.Duration
}

func NewSqliteTravelCache(db *sql.DB, ttl time.Duration) *SqliteTravelCache {
	return &SqliteTravelCache{DB: db, TTL: ttl}
}

func (s *SqliteTravelCache) GetTravel(ctx context.Context, q ports.TravelQuery) (int, error) {
	if s.DB == nil {
		return 0, errors.New("travel cache: db is nil")
	}
	if q.From == "" || q.To == "" {
		return 0, errors.New("get travel cache: origin and destination must not be empty")
	}

	var minutes int
	err := s.DB.QueryRowContext(ctx, `
	SELECT minutes
    FROM travel_cache
    WHERE origin = ?
        AND destination = ?
        AND include_buffer = ?
        AND fetched_at >= ?;
	`, q.From, q.To, boolInt(q.IncludeBuffer), cutoff(s.TTL).Unix()).Scan(&minutes)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ports.ErrCacheMiss
	}
	if err != nil {
		return 0, fmt.Errorf("get travel cache: query travel_cache table: %w", err)
	}

	return minutes, nil
}

func (s *SqliteTravelCache) PutTravel(ctx context.Context, q ports.TravelQuery, minutes int) error {
	if s.DB == nil {
		return errors.New("travel cache: db is nil")
	}
	if q.From == "" || q.To == "" {
		return errors.New("insert travel cache: origin and destination must not be empty")
	}

	_, err := s.DB.ExecContext(ctx, `
	INSERT OR REPLACE INTO travel_cache (
        origin,
        destination,
        include_buffer,
        minutes,
        fetched_at
    )
    VALUES (?, ?, ?, ?, ?)
	`, q.From, q.To, boolInt(q.IncludeBuffer), minutes, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("insert travel cache %q -> %q: %w", q.From, q.To, err)
	}

	return nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
