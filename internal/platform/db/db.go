// Package db opens the shared Postgres pool used by the server and dbtool.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"site-selection-service/internal/config"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
)

const pingTimeout = 5 * time.Second

// Open parses a Postgres URL with pgx and returns a database/sql pool over it.
// Pool size follows DB_MAX_OPEN_CONNS (default 10).
func Open(databaseURL string) (*sql.DB, error) {
	connCfg, err := pgx.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("openDB: parse postgres url: %w", err)
	}
	if connCfg.RuntimeParams == nil {
		connCfg.RuntimeParams = map[string]string{}
	}
	connCfg.RuntimeParams["application_name"] = config.Get("DB_APPLICATION_NAME", "site-selection-service")

	maxOpen, err := strconv.Atoi(config.Get("DB_MAX_OPEN_CONNS", "10"))
	if err != nil || maxOpen < 1 {
		return nil, fmt.Errorf("openDB: DB_MAX_OPEN_CONNS must be a positive integer")
	}

	db := stdlib.OpenDB(*connCfg)
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxOpen)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("openDB: verify postgres connection to %s/%s: %w", connCfg.Host, connCfg.Database, err)
	}

	return db, nil
}
