package bootstrap

import (
	"daystack/internal/adapters/repositories"
	"daystack/internal/config"
	"daystack/internal/platform/db"
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// OpenStore connects to Postgres when DATABASE_URL is set and to the SQLite
// file at DB_PATH otherwise, then makes sure the schema exists.
func OpenStore(cfg *config.Config) (*sql.DB, repositories.Dialect, error) {
	var (
		conn    *sql.DB
		dialect repositories.Dialect
		err     error
	)

	if strings.TrimSpace(cfg.DatabaseURL) != "" {
		dialect = repositories.Postgres
		conn, err = db.Open(cfg.DatabaseURL)
	} else {
		dialect = repositories.SQLite
		if dir := filepath.Dir(cfg.DBPath); cfg.DBPath != ":memory:" && dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, dialect, fmt.Errorf("open store: create %q: %w", dir, err)
			}
		}
		conn, err = db.OpenSqlite(cfg.DBPath)
	}
	if err != nil {
		return nil, dialect, fmt.Errorf("open store: %w", err)
	}

	if err := repositories.InitSchema(conn, dialect); err != nil {
		conn.Close()
		return nil, dialect, fmt.Errorf("open store: %w", err)
	}

	log.Printf("store ready dialect=%s", dialect)
	return conn, dialect, nil
}
