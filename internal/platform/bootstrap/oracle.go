package bootstrap

import (
	"context"
	"daystack/internal/adapters/cache"
	"daystack/internal/adapters/calendar"
	"daystack/internal/adapters/repositories"
	"daystack/internal/adapters/travel"
	"daystack/internal/config"
	"daystack/internal/ports"
	"daystack/internal/services"
	"database/sql"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Average speed for straight-line estimates when Naver is not configured.
const fallbackSpeedKmh = 30

// Oracle is the composed travel-time oracle plus whatever it holds open.
type Oracle struct {
	ports.TravelTimeOracle
	Locations *config.Locations

	redis *redis.Client
}

// Close releases the Redis client, if one was opened.
func (o *Oracle) Close() error {
	if o.redis == nil {
		return nil
	}
	return o.redis.Close()
}

// NewOracle builds the travel-time oracle from configuration:
//
//	alias -> persistent cache (Redis or SQL) -> Naver or haversine
//
// conn may be nil, in which case no SQL caches are used.
func NewOracle(ctx context.Context, cfg *config.Config, conn *sql.DB, dialect repositories.Dialect) (*Oracle, error) {
	out := &Oracle{}

	if cfg.LocationsFile != "" {
		locs, err := config.LoadLocations(cfg.LocationsFile)
		if err != nil {
			return nil, fmt.Errorf("new oracle: %w", err)
		}
		out.Locations = locs
		log.Printf("locations loaded path=%q aliases=%d known=%d", cfg.LocationsFile, len(locs.Aliases), len(locs.Known))
	}

	var base ports.TravelTimeOracle
	if cfg.HasNaverCredentials() {
		client, err := travel.NewNaverClient(cfg.NaverClientID, cfg.NaverClientSecret)
		if err != nil {
			return nil, fmt.Errorf("new oracle: %w", err)
		}
		geocoder := travel.NewNaverGeocoder(client, geocodeCache(conn, dialect), out.Locations.Coordinates)
		base = travel.NewNaverOracle(client, geocoder, cfg.TravelBufferMinutes)
		log.Printf("travel oracle=naver buffer=%d", cfg.TravelBufferMinutes)
	} else {
		geocoder := travel.NewPinnedGeocoder(out.Locations.Coordinates)
		base = travel.NewHaversineOracle(geocoder, fallbackSpeedKmh, cfg.TravelBufferMinutes)
		log.Printf("travel oracle=haversine speed_kmh=%d buffer=%d (NAVER_CLIENT_ID/SECRET not set)", fallbackSpeedKmh, cfg.TravelBufferMinutes)
	}

	var persistent ports.TravelCache
	switch {
	case strings.TrimSpace(cfg.RedisURL) != "":
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("new oracle: parse REDIS_URL: %w", err)
		}
		client := redis.NewClient(opts)
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, fmt.Errorf("new oracle: ping redis: %w", err)
		}
		out.redis = client
		persistent = cache.NewRedisTravelCache(client, cfg.TravelCacheTTL)
		log.Printf("travel cache=redis ttl=%s", cfg.TravelCacheTTL)
	case conn != nil && dialect == repositories.Postgres:
		persistent = cache.NewSQLTravelCache(conn, cfg.TravelCacheTTL)
		log.Printf("travel cache=postgres ttl=%s", cfg.TravelCacheTTL)
	case conn != nil:
		persistent = cache.NewSqliteTravelCache(conn, cfg.TravelCacheTTL)
		log.Printf("travel cache=sqlite ttl=%s", cfg.TravelCacheTTL)
	}

	oracle := base
	if persistent != nil {
		oracle = travel.NewCachedOracle(oracle, persistent)
	}
	out.TravelTimeOracle = travel.NewAliasOracle(oracle, out.Locations.Resolve)

	return out, nil
}

func geocodeCache(conn *sql.DB, dialect repositories.Dialect) ports.GeocodeCache {
	switch {
	case conn == nil:
		return nil
	case dialect == repositories.Postgres:
		return cache.NewSQLGeocodeCache(conn)
	default:
		return cache.NewSqliteGeocodeCache(conn)
	}
}

// PackerOptions maps configuration onto gap packer options.
func PackerOptions(cfg *config.Config) services.PackerOptions {
	opts := services.DefaultPackerOptions()
	if cfg.UnlocatedPolicy == "agnostic" {
		opts.Policy = services.LocationAgnostic
	}
	opts.Parallelism = cfg.OracleParallelism
	return opts
}

// NewEventSource picks a calendar adapter by path: .yaml/.yml/.json files are
// read as event lists, anything else as iCalendar (file or http(s) URL).
// An empty path yields a nil source.
func NewEventSource(path string, loc *time.Location) ports.EventSource {
	if strings.TrimSpace(path) == "" {
		return nil
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".json":
		return calendar.NewFileSource(path, loc)
	default:
		return calendar.NewICSSource(path, loc)
	}
}
