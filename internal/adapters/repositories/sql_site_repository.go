package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"site-selection-service/internal/domain"
	"site-selection-service/internal/platform/obs"
)

// SQL-backed implementation of the SiteRepository port (SQLite or Postgres).
type SQLSiteRepository struct {
	DB      *sql.DB
	Dialect Dialect
}

func NewSQLSiteRepository(db *sql.DB, dialect Dialect) *SQLSiteRepository {
	return &SQLSiteRepository{DB: db, Dialect: dialect}
}

// Return all sites in seed order.
func (s *SQLSiteRepository) ListSites(ctx context.Context) (_ []domain.Site, err error) {
	defer obs.Time(ctx, "sites.list")(&err)

	if s.DB == nil {
		return nil, errors.New("sql site repository: DB is nil")
	}

	query := `
	SELECT
		site_id, length_mi, lanes, adt, speed_mph, area_type, divided,
		lane_width_ft, shoulder_width_ft, shoulder_type,
		crashes_ni_fi, crashes_ni_pdo, crashes_int_fi, crashes_int_pdo,
		pavement_condition, replacement_cost, requires_treatment
	FROM sites
	ORDER BY sort_order, site_id;
	`
	rows, err := s.DB.QueryContext(ctx, s.Dialect.Rebind(query))
	if err != nil {
		return nil, fmt.Errorf("list sites: query sites table: %w", err)
	}
	defer rows.Close()

	sites := make([]domain.Site, 0, 64)
	for rows.Next() {
		var (
			site                       domain.Site
			area, shoulder             string
			niFI, niPDO, intFI, intPDO float64
		)
		err := rows.Scan(
			&site.ID, &site.Length, &site.Lanes, &site.ADT, &site.SpeedMPH, &area, &site.Divided,
			&site.LaneWidthFt, &site.ShoulderWidthFt, &shoulder,
			&niFI, &niPDO, &intFI, &intPDO,
			&site.PavementCondition, &site.PavementReplacementCost, &site.RequiresTreatment,
		)
		if err != nil {
			return nil, fmt.Errorf("list sites: scan row: %w", err)
		}
		site.AreaType = domain.AreaType(area)
		site.ShoulderType = domain.ShoulderType(shoulder)
		site.Crashes[domain.NonIntersection][domain.FatalInjury] = niFI
		site.Crashes[domain.NonIntersection][domain.PropertyDamageOnly] = niPDO
		site.Crashes[domain.Intersection][domain.FatalInjury] = intFI
		site.Crashes[domain.Intersection][domain.PropertyDamageOnly] = intPDO
		sites = append(sites, site)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list sites: row iteration: %w", err)
	}

	return sites, nil
}
