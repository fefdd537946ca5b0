package repositories

import (
	"database/sql"
	"errors"
	"fmt"
)

// Dialect selects placeholder and DDL syntax.
type Dialect int

const (
	SQLite Dialect = iota
	Postgres
)

func (d Dialect) String() string {
	if d == Postgres {
		return "postgres"
	}
	return "sqlite"
}

func (d Dialect) placeholder(n int) string {
	if d == Postgres {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

var sqliteSchema = []string{
	`
	CREATE TABLE IF NOT EXISTS tasks (
		task_id TEXT PRIMARY KEY,
		position INTEGER NOT NULL,
		name TEXT NOT NULL,
		duration_minutes INTEGER NOT NULL,
		location TEXT NOT NULL DEFAULT '',
		deadline TEXT,
		course TEXT NOT NULL DEFAULT '',
		link TEXT NOT NULL DEFAULT ''
	);
	`,
	`
	CREATE TABLE IF NOT EXISTS travel_cache (
        origin TEXT NOT NULL,
        destination TEXT NOT NULL,
        include_buffer INTEGER NOT NULL,
        minutes INTEGER NOT NULL,
        fetched_at INTEGER NOT NULL,
        PRIMARY KEY (origin, destination, include_buffer)
    );
	`,
	`
	CREATE TABLE IF NOT EXISTS geocode_cache (
        address TEXT PRIMARY KEY,
        lon REAL NOT NULL,
        lat REAL NOT NULL
    );
	`,
}

var postgresSchema = []string{
	`
	CREATE TABLE IF NOT EXISTS tasks (
		task_id TEXT PRIMARY KEY,
		position INTEGER NOT NULL,
		name TEXT NOT NULL,
		duration_minutes INTEGER NOT NULL CHECK (duration_minutes > 0),
		location TEXT NOT NULL DEFAULT '',
		deadline TEXT,
		course TEXT NOT NULL DEFAULT '',
		link TEXT NOT NULL DEFAULT ''
	);
	`,
	`
	CREATE TABLE IF NOT EXISTS travel_cache (
        origin TEXT NOT NULL,
        destination TEXT NOT NULL,
        include_buffer BOOLEAN NOT NULL,
        minutes INTEGER NOT NULL CHECK (minutes >= 0),
        fetched_at TIMESTAMPTZ NOT NULL,
        PRIMARY KEY (origin, destination, include_buffer)
    );
	`,
	`
	CREATE TABLE IF NOT EXISTS geocode_cache (
        address TEXT PRIMARY KEY,
        lon DOUBLE PRECISION NOT NULL,
        lat DOUBLE PRECISION NOT NULL
    );
	`,
	`
	CREATE INDEX IF NOT EXISTS idx_travel_cache_fetched_at
    ON travel_cache(fetched_at);
	`,
}

// Initialize the database schema for the given dialect.
func InitSchema(db *sql.DB, dialect Dialect) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	statements := sqliteSchema
	if dialect == Postgres {
		statements = postgresSchema
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}
