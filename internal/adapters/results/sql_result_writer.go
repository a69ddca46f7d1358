package results

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"site-selection-service/internal/adapters/repositories"
	"site-selection-service/internal/domain"
	"site-selection-service/internal/platform/obs"
)

// SQLResultWriter persists runs and their selected alternatives.
type SQLResultWriter struct {
	DB      *sql.DB
	Dialect repositories.Dialect
}

func NewSQLResultWriter(db *sql.DB, dialect repositories.Dialect) *SQLResultWriter {
	return &SQLResultWriter{DB: db, Dialect: dialect}
}

func (w *SQLResultWriter) WriteRun(ctx context.Context, run domain.SelectionRun) (err error) {
	defer obs.Time(ctx, "results.sql.write")(&err)

	if w.DB == nil {
		return errors.New("sql result writer: DB is nil")
	}
	if strings.TrimSpace(run.RunID) == "" {
		return errors.New("write run: run id must not be empty")
	}
	if run.Solution == nil {
		return fmt.Errorf("write run %s: solution is nil", run.RunID)
	}

	warnings, err := json.Marshal(nonNil(run.Warnings))
	if err != nil {
		return fmt.Errorf("write run %s: encode warnings: %w", run.RunID, err)
	}

	tx, err := w.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write run %s: begin tx: %w", run.RunID, err)
	}
	defer func() { _ = tx.Rollback() }()

	sol := run.Solution
	_, err = tx.ExecContext(ctx, w.Dialect.Rebind(`
	INSERT INTO selection_runs (
		run_id, scenario, started_at, status, quality, budget,
		total_cost, total_benefit, net_benefit, runtime_ms,
		platform, cpu, ram, warnings
	)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);
	`),
		run.RunID, run.Scenario, run.StartedAt.UTC().Format(time.RFC3339Nano), sol.Status, string(sol.Quality),
		fmt.Sprintf("%.2f", sol.Budget),
		sol.Totals.TotalCost.StringFixed(2), sol.Totals.TotalBenefit.StringFixed(2), sol.Totals.NetBenefit.StringFixed(2),
		sol.Runtime.Milliseconds(),
		run.System.Platform, run.System.CPU, run.System.RAM, string(warnings),
	)
	if err != nil {
		return fmt.Errorf("write run %s: insert run: %w", run.RunID, err)
	}

	stmt, err := tx.PrepareContext(ctx, w.Dialect.Rebind(`
	INSERT INTO selection_items (
		run_id, site_id, alt_index, description, treatments, fraction,
		resurfacing_cost, safety_cost, total_benefit, objective
	)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?);
	`))
	if err != nil {
		return fmt.Errorf("write run %s: prepare items: %w", run.RunID, err)
	}
	defer stmt.Close()

	for _, sel := range sol.Selections {
		a := sel.Alternative
		_, err := stmt.ExecContext(ctx,
			run.RunID, sel.SiteID, a.Index, a.Description, strings.Join(a.Treatments, "+"), a.Fraction,
			a.Costs.Resurfacing, a.Costs.Safety, a.Benefits.Total(), sel.Objective,
		)
		if err != nil {
			return fmt.Errorf("write run %s: insert site_id=%s: %w", run.RunID, sel.SiteID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write run %s: commit tx: %w", run.RunID, err)
	}

	return nil
}

// StoredRun is the summary row of a persisted run.
type StoredRun struct {
	RunID      string
	Scenario   string
	Status     string
	Quality    string
	NetBenefit string
	Items      int
}

// LatestRun returns the most recently started run of a scenario.
func (w *SQLResultWriter) LatestRun(ctx context.Context, scenario string) (StoredRun, error) {
	var r StoredRun
	err := w.DB.QueryRowContext(ctx, w.Dialect.Rebind(`
	SELECT r.run_id, r.scenario, r.status, r.quality, r.net_benefit,
		(SELECT COUNT(*) FROM selection_items i WHERE i.run_id = r.run_id)
	FROM selection_runs r
	WHERE r.scenario = ?
	ORDER BY r.started_at DESC
	LIMIT 1;
	`), scenario).Scan(&r.RunID, &r.Scenario, &r.Status, &r.Quality, &r.NetBenefit, &r.Items)
	if err != nil {
		return StoredRun{}, fmt.Errorf("latest run %q: %w", scenario, err)
	}
	return r, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
