package main

import (
	"context"
	"daystack/internal/adapters/repositories"
	"daystack/internal/api"
	"daystack/internal/config"
	"daystack/internal/platform/bootstrap"
	"errors"
	"io/fs"
	"log"
	"net/http"
	"os"
	"time"
)

// main is the application composition root.
// It wires concrete adapters (SQL store, calendar, travel oracle) behind ports
// and starts the HTTP server.
func main() {
	config.LoadDotEnv()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	db, dialect, err := bootstrap.OpenStore(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	repo := repositories.NewSQLTaskRepository(db, dialect)

	// Seed the backlog on startup for local runs.
	if err := seedIfPresent(repo, cfg.SeedPath); err != nil {
		log.Fatal(err)
	}

	oracle, err := bootstrap.NewOracle(context.Background(), cfg, db, dialect)
	if err != nil {
		log.Fatal(err)
	}
	defer oracle.Close()

	events := bootstrap.NewEventSource(cfg.CalendarPath, cfg.Location())
	if events == nil {
		log.Println("No CALENDAR_PATH set; plan requests must carry their own events")
	}

	router := api.NewRouter(api.Deps{
		Tasks:    repo,
		Events:   events,
		Oracle:   oracle,
		Packer:   bootstrap.PackerOptions(cfg),
		Location: cfg.Location(),
	})

	// Timeouts are tuned for cold-cache planning (external API latency).
	log.Printf("Server listening addr=:%s", cfg.Port)
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	log.Fatal(srv.ListenAndServe())
}

func seedIfPresent(repo *repositories.SQLTaskRepository, seedPath string) error {
	if seedPath == "" {
		return nil
	}
	if _, err := os.Stat(seedPath); errors.Is(err, fs.ErrNotExist) {
		log.Printf("No seed file at %q; keeping stored tasks", seedPath)
		return nil
	}
	return repositories.SeedFromFile(context.Background(), repo, seedPath)
}
