package services

import (
	"fmt"

	"site-selection-service/internal/config"
	"site-selection-service/internal/domain"
)

// AlternativesFromRecords arranges published alternatives into an arena in site
// order. Each site receives a do-nothing alternative carrying its not-resurfacing
// penalty, followed by its records in file order. Penalties follow cfg.
func AlternativesFromRecords(sites []domain.Site, records []domain.AlternativeRecord, catalog *domain.Catalog, cfg config.Config) (*domain.AlternativeSet, error) {
	index := make(map[string]int, len(sites))
	ids := make([]string, len(sites))
	perSite := make([][]domain.Alternative, len(sites))

	for i, s := range sites {
		if _, dup := index[s.ID]; dup {
			return nil, fmt.Errorf("alternatives from records: duplicate site %q", s.ID)
		}
		index[s.ID] = i
		ids[i] = s.ID

		doNothing := domain.Alternative{Description: "Do nothing"}
		doNothing.Penalties.NotResurfacing = NotResurfacingPenalty(s, orEmptyCatalog(catalog), cfg)
		perSite[i] = []domain.Alternative{doNothing}
	}

	for _, r := range records {
		i, ok := index[r.SiteID]
		if !ok {
			return nil, &domain.ValidationError{SiteID: r.SiteID, Field: "site_id", Value: r.SiteID, Reason: "record references an unknown site"}
		}
		if r.Costs.Resurfacing < 0 || r.Costs.Safety < 0 {
			return nil, &domain.ValidationError{SiteID: r.SiteID, Field: "costs", Value: r.Costs, Reason: "costs must be non-negative"}
		}

		treatments := r.Treatments
		if len(treatments) == 0 {
			treatments = []string{r.AltID}
		}

		a := domain.Alternative{
			Description: r.Description,
			Treatments:  treatments,
			Fraction:    1,
			Costs:       r.Costs,
			Benefits:    r.Benefits,
		}
		a.Penalties.ResurfacingWithoutSafety = resurfacingWithoutSafety(sites[i], r.Resurfacing, r.Geometric, cfg)
		perSite[i] = append(perSite[i], a)
	}

	set, err := domain.NewAlternativeSet(ids, perSite)
	if err != nil {
		return nil, fmt.Errorf("alternatives from records: %w", err)
	}
	return set, nil
}

func orEmptyCatalog(c *domain.Catalog) *domain.Catalog {
	if c != nil {
		return c
	}
	empty, _ := domain.NewCatalog(nil, nil)
	return empty
}
