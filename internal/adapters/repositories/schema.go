package repositories

import (
	"database/sql"
	"errors"
	"fmt"
)

// Initialize the database schema. The DDL is accepted by both SQLite and Postgres.
func InitSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createSitesQuery := `
	CREATE TABLE IF NOT EXISTS sites (
		site_id TEXT PRIMARY KEY,
		sort_order INTEGER NOT NULL,
		length_mi DOUBLE PRECISION NOT NULL,
		lanes INTEGER NOT NULL,
		adt DOUBLE PRECISION NOT NULL,
		speed_mph DOUBLE PRECISION NOT NULL,
		area_type TEXT NOT NULL,
		divided BOOLEAN NOT NULL,
		lane_width_ft DOUBLE PRECISION NOT NULL,
		shoulder_width_ft DOUBLE PRECISION NOT NULL,
		shoulder_type TEXT NOT NULL,
		crashes_ni_fi DOUBLE PRECISION NOT NULL,
		crashes_ni_pdo DOUBLE PRECISION NOT NULL,
		crashes_int_fi DOUBLE PRECISION NOT NULL,
		crashes_int_pdo DOUBLE PRECISION NOT NULL,
		pavement_condition DOUBLE PRECISION NOT NULL,
		replacement_cost DOUBLE PRECISION NOT NULL,
		requires_treatment BOOLEAN NOT NULL
	);
	`

	createRunsQuery := `
	CREATE TABLE IF NOT EXISTS selection_runs (
        run_id TEXT PRIMARY KEY,
        scenario TEXT NOT NULL,
        started_at TEXT NOT NULL,
        status TEXT NOT NULL,
        quality TEXT NOT NULL,
        budget TEXT NOT NULL,
        total_cost TEXT NOT NULL,
        total_benefit TEXT NOT NULL,
        net_benefit TEXT NOT NULL,
        runtime_ms INTEGER NOT NULL,
        platform TEXT NOT NULL,
        cpu TEXT NOT NULL,
        ram TEXT NOT NULL,
        warnings TEXT NOT NULL
    );
	`

	createItemsQuery := `
	CREATE TABLE IF NOT EXISTS selection_items (
        run_id TEXT NOT NULL,
        site_id TEXT NOT NULL,
        alt_index INTEGER NOT NULL,
        description TEXT NOT NULL,
        treatments TEXT NOT NULL,
        fraction DOUBLE PRECISION NOT NULL,
        resurfacing_cost DOUBLE PRECISION NOT NULL,
        safety_cost DOUBLE PRECISION NOT NULL,
        total_benefit DOUBLE PRECISION NOT NULL,
        objective DOUBLE PRECISION NOT NULL,
        PRIMARY KEY (run_id, site_id)
    );
	`

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_selection_runs_scenario_started
    ON selection_runs(scenario, started_at);
	`

	statements := []string{
		createSitesQuery,
		createRunsQuery,
		createItemsQuery,
		createIndexQuery,
	}

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
