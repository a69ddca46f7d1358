package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"site-selection-service/internal/adapters/catalog"
	"site-selection-service/internal/adapters/repositories"
	"site-selection-service/internal/adapters/results"
	"site-selection-service/internal/adapters/solver"
	"site-selection-service/internal/api"
	"site-selection-service/internal/config"
	"site-selection-service/internal/platform/db"
	"site-selection-service/internal/platform/sysinfo"
	"site-selection-service/internal/ports"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	_ "modernc.org/sqlite"
)

// main is the application composition root.
// It wires concrete adapters (SQLite or Postgres, Redis, branch-and-bound) behind ports and starts the HTTP server.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	dbPath := config.Get("DB_PATH", "data/app.db")
	seedPath := config.Get("SEED_PATH", "data/seeds/harwood_sites.json")
	catalogPath := config.Get("CATALOG_PATH", "data/catalog.yaml")
	scenarioPath := config.Get("SCENARIO_PATH", "data/scenario.yaml")
	port := config.Get("PORT", "8080")

	cfg, err := config.Load(scenarioPath)
	if err != nil {
		log.Fatal(err)
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		log.Fatalf("invalid scenario %q: %v", scenarioPath, errs)
	}

	cat, err := catalog.Load(catalogPath)
	if err != nil {
		log.Fatal(err)
	}

	// DATABASE_URL switches storage to Postgres; otherwise a local SQLite file is used.
	conn, dialect, err := openStore(dbPath)
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	// Initialize schema and seed demo data on startup for local runs.
	if err := initAndSeed(conn, dialect, seedPath); err != nil {
		log.Fatal(err)
	}

	writers := results.MultiWriter{results.NewSQLResultWriter(conn, dialect)}
	if addr := config.Get("REDIS_ADDR", ""); addr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: addr})
		defer rdb.Close()
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			log.Fatalf("redis ping addr=%s: %v", addr, err)
		}
		writers = append(writers, results.NewRedisResultWriter(rdb))
		log.Printf("Publishing runs to redis addr=%s", addr)
	}

	router := api.NewRouter(api.Deps{
		Store:   conn,
		Repo:    repositories.NewSQLSiteRepository(conn, dialect),
		Catalog: cat,
		Config:  cfg,
		Solver:  solver.NewBranchAndBound(cfg.Solver.MaxNodes),
		Writer:  ports.ResultWriter(writers),
		System:  sysinfo.Collect(context.Background()),
	})

	// Write timeout leaves room for the solver time limit on large site sets.
	log.Printf("Server listening addr=:%s scenario=%s treatments=%d", port, cfg.Scenario, cat.Len())
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      cfg.Solver.TimeLimit + 30*time.Second,
		IdleTimeout:       60 * time.Second,
	}
	log.Fatal(srv.ListenAndServe())
}

func openStore(dbPath string) (*sql.DB, repositories.Dialect, error) {
	if url := config.Get("DATABASE_URL", ""); strings.TrimSpace(url) != "" {
		conn, err := db.Open(url)
		return conn, repositories.Postgres, err
	}

	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, repositories.SQLite, fmt.Errorf("openDB: open sqlite database %q: %w", dbPath, err)
	}

	if err := conn.Ping(); err != nil {
		return nil, repositories.SQLite, fmt.Errorf("openDB: verify sqlite connection to %q: %w", dbPath, err)
	}

	return conn, repositories.SQLite, nil
}

func initAndSeed(conn *sql.DB, dialect repositories.Dialect, seedPath string) error {
	if err := repositories.InitSchema(conn); err != nil {
		return fmt.Errorf("init and seed: %w", err)
	}

	if err := repositories.SeedFromJSON(conn, dialect, seedPath); err != nil {
		return fmt.Errorf("init and seed: %w", err)
	}

	return nil
}
