package repositories

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"site-selection-service/internal/domain"
)

type CrashSeed struct {
	FatalInjury float64 `json:"fatal_injury"`
	PDO         float64 `json:"pdo"`
}

type SiteSeed struct {
	SiteID                  string    `json:"site_id"`
	LengthMi                float64   `json:"length_mi"`
	Lanes                   int       `json:"lanes"`
	ADT                     float64   `json:"adt"`
	SpeedMPH                float64   `json:"speed_mph"`
	AreaType                string    `json:"area_type"`
	Divided                 bool      `json:"divided"`
	LaneWidthFt             float64   `json:"lane_width_ft"`
	ShoulderWidthFt         float64   `json:"shoulder_width_ft"`
	ShoulderType            string    `json:"shoulder_type"`
	NonIntersection         CrashSeed `json:"non_intersection"`
	Intersection            CrashSeed `json:"intersection"`
	PavementCondition       float64   `json:"pavement_condition"`
	PavementReplacementCost float64   `json:"pavement_replacement_cost"`
	RequiresTreatment       bool      `json:"requires_treatment"`
}

// Site converts the seed record into a domain Site.
func (s SiteSeed) Site() domain.Site {
	site := domain.Site{
		ID:                      strings.TrimSpace(s.SiteID),
		Length:                  s.LengthMi,
		Lanes:                   s.Lanes,
		ADT:                     s.ADT,
		SpeedMPH:                s.SpeedMPH,
		AreaType:                domain.AreaType(strings.ToLower(strings.TrimSpace(s.AreaType))),
		Divided:                 s.Divided,
		LaneWidthFt:             s.LaneWidthFt,
		ShoulderWidthFt:         s.ShoulderWidthFt,
		ShoulderType:            domain.ShoulderType(strings.ToLower(strings.TrimSpace(s.ShoulderType))),
		PavementCondition:       s.PavementCondition,
		PavementReplacementCost: s.PavementReplacementCost,
		RequiresTreatment:       s.RequiresTreatment,
	}
	site.Crashes[domain.NonIntersection][domain.FatalInjury] = s.NonIntersection.FatalInjury
	site.Crashes[domain.NonIntersection][domain.PropertyDamageOnly] = s.NonIntersection.PDO
	site.Crashes[domain.Intersection][domain.FatalInjury] = s.Intersection.FatalInjury
	site.Crashes[domain.Intersection][domain.PropertyDamageOnly] = s.Intersection.PDO
	return site
}

// LoadSiteSeeds reads and validates a JSON array of site records.
func LoadSiteSeeds(jsonPath string) ([]domain.Site, error) {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return nil, fmt.Errorf("load sites: read %q: %w", jsonPath, err)
	}

	var data []SiteSeed
	if err := json.Unmarshal(bytes, &data); err != nil {
		return nil, fmt.Errorf("load sites: parse json: %w", err)
	}

	sites := make([]domain.Site, 0, len(data))
	var errs []error
	for _, item := range data {
		site := item.Site()
		errs = append(errs, site.Validate()...)
		sites = append(sites, site)
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("load sites: %w", errors.Join(errs...))
	}

	return sites, nil
}

// Populate the database with site data from a JSON file.
func SeedFromJSON(db *sql.DB, dialect Dialect, jsonPath string) error {
	sites, err := LoadSiteSeeds(jsonPath)
	if err != nil {
		return fmt.Errorf("seed sites: %w", err)
	}
	return SeedSites(db, dialect, sites)
}

// SeedSites upserts sites, keeping their slice order as the listing order.
func SeedSites(db *sql.DB, dialect Dialect, sites []domain.Site) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("seed sites: begin tx: %w", err)
	}
	defer tx.Rollback()

	query := dialect.Rebind(`
	INSERT INTO sites (
		site_id, sort_order, length_mi, lanes, adt, speed_mph, area_type, divided,
		lane_width_ft, shoulder_width_ft, shoulder_type,
		crashes_ni_fi, crashes_ni_pdo, crashes_int_fi, crashes_int_pdo,
		pavement_condition, replacement_cost, requires_treatment
	)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (site_id) DO UPDATE SET
		sort_order = EXCLUDED.sort_order,
		length_mi = EXCLUDED.length_mi,
		lanes = EXCLUDED.lanes,
		adt = EXCLUDED.adt,
		speed_mph = EXCLUDED.speed_mph,
		area_type = EXCLUDED.area_type,
		divided = EXCLUDED.divided,
		lane_width_ft = EXCLUDED.lane_width_ft,
		shoulder_width_ft = EXCLUDED.shoulder_width_ft,
		shoulder_type = EXCLUDED.shoulder_type,
		crashes_ni_fi = EXCLUDED.crashes_ni_fi,
		crashes_ni_pdo = EXCLUDED.crashes_ni_pdo,
		crashes_int_fi = EXCLUDED.crashes_int_fi,
		crashes_int_pdo = EXCLUDED.crashes_int_pdo,
		pavement_condition = EXCLUDED.pavement_condition,
		replacement_cost = EXCLUDED.replacement_cost,
		requires_treatment = EXCLUDED.requires_treatment;
	`)
	stmt, err := tx.Prepare(query)
	if err != nil {
		return fmt.Errorf("seed sites: prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, s := range sites {
		c := s.Crashes
		_, err := stmt.Exec(
			s.ID, i, s.Length, s.Lanes, s.ADT, s.SpeedMPH, string(s.AreaType), s.Divided,
			s.LaneWidthFt, s.ShoulderWidthFt, string(s.ShoulderType),
			c.At(domain.NonIntersection, domain.FatalInjury), c.At(domain.NonIntersection, domain.PropertyDamageOnly),
			c.At(domain.Intersection, domain.FatalInjury), c.At(domain.Intersection, domain.PropertyDamageOnly),
			s.PavementCondition, s.PavementReplacementCost, s.RequiresTreatment,
		)
		if err != nil {
			return fmt.Errorf("seed sites: insert site_id=%s: %w", s.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed sites: commit tx: %w", err)
	}

	return nil
}
