package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the process configuration read from the environment.
type Config struct {
	Port        string
	DBPath      string
	DatabaseURL string
	RedisURL    string
	SeedPath    string

	NaverClientID     string
	NaverClientSecret string

	// TravelBufferMinutes is added to travel estimates when a caller asks
	// for the buffered figure.
	TravelBufferMinutes int
	TravelCacheTTL      time.Duration

	LocationsFile string
	// CalendarPath is an .ics file or URL, or a YAML events file.
	CalendarPath  string
	Timezone      string

	// UnlocatedPolicy is "cursor" or "agnostic".
	UnlocatedPolicy   string
	OracleParallelism int
}

func Load() (*Config, error) {
	cfg := &Config{
		Port:                Get("PORT", "8080"),
		DBPath:              Get("DB_PATH", "data/daystack.db"),
		DatabaseURL:         Get("DATABASE_URL", ""),
		RedisURL:            Get("REDIS_URL", ""),
		SeedPath:            Get("SEED_PATH", "data/seeds/tasks.yaml"),
		NaverClientID:       Get("NAVER_CLIENT_ID", ""),
		NaverClientSecret:   Get("NAVER_CLIENT_SECRET", ""),
		TravelBufferMinutes: GetInt("TRAVEL_TIME_BUFFER", 15),
		TravelCacheTTL:      GetDuration("TRAVEL_CACHE_TTL", 24*time.Hour),
		LocationsFile:       Get("LOCATIONS_FILE", ""),
		CalendarPath:        Get("CALENDAR_PATH", ""),
		Timezone:            Get("TIMEZONE", "Local"),
		UnlocatedPolicy:     strings.ToLower(Get("UNLOCATED_POLICY", "cursor")),
		OracleParallelism:   GetInt("ORACLE_PARALLELISM", 4),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.TravelBufferMinutes < 0 {
		return fmt.Errorf("config: TRAVEL_TIME_BUFFER must be >= 0, got %d", c.TravelBufferMinutes)
	}
	switch c.UnlocatedPolicy {
	case "cursor", "agnostic":
	default:
		return fmt.Errorf("config: UNLOCATED_POLICY must be cursor or agnostic, got %q", c.UnlocatedPolicy)
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("config: TIMEZONE %q: %w", c.Timezone, err)
	}
	if c.OracleParallelism < 1 {
		c.OracleParallelism = 1
	}
	return nil
}

// HasNaverCredentials reports whether the Naver Maps oracle can be used.
func (c *Config) HasNaverCredentials() bool {
	return c.NaverClientID != "" && c.NaverClientSecret != ""
}

// Location returns the time zone used to interpret calendar dates.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}
