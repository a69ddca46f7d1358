package services

import (
	"site-selection-service/internal/config"
	"site-selection-service/internal/domain"
)

// Sites at or above both widths need no safety work when resurfaced.
const (
	minAdequateLaneWidthFt     = 11.0
	minAdequateShoulderWidthFt = 6.0
)

// TreatmentCost prices one treatment on a site. Divisible treatments are charged for
// the treated fraction only.
func TreatmentCost(site domain.Site, t domain.Treatment, fraction float64) float64 {
	full := t.Cost.FullLength(site)
	if t.Divisible {
		return full * fraction
	}
	return full
}

// ComputeCosts splits the cost of a bundle into resurfacing and safety-improvement parts.
func ComputeCosts(site domain.Site, treatments []domain.Treatment, fraction float64) domain.Costs {
	var c domain.Costs
	for _, t := range treatments {
		cost := TreatmentCost(site, t, fraction)
		if t.IsResurfacing() {
			c.Resurfacing += cost
			continue
		}
		c.Safety += cost
	}
	return c
}

// ReplacementCost is the site's pavement replacement cost, falling back to the
// full-length cost of the catalog's resurfacing treatment.
func ReplacementCost(site domain.Site, catalog *domain.Catalog) float64 {
	if site.PavementReplacementCost > 0 {
		return site.PavementReplacementCost
	}
	if resurf, ok := catalog.Resurfacing(); ok {
		return resurf.Cost.FullLength(site)
	}
	return 0
}

// ConditionProximity maps a condition index onto [0, 1]: 0 at or above trigger,
// 1 at or below failure.
func ConditionProximity(condition, trigger, failure float64) float64 {
	if trigger <= failure {
		return 0
	}
	p := (trigger - condition) / (trigger - failure)
	switch {
	case p < 0:
		return 0
	case p > 1:
		return 1
	}
	return p
}

// NotResurfacingPenalty charges the do-nothing alternative for letting pavement decay.
func NotResurfacingPenalty(site domain.Site, catalog *domain.Catalog, cfg config.Config) float64 {
	p := cfg.Penalty.NotResurfacing
	if !p.Enabled {
		return 0
	}
	proximity := ConditionProximity(site.PavementCondition, p.TriggerCondition, p.FailureCondition)
	return p.Percent * ReplacementCost(site, catalog) * proximity
}

// NeedsSafetyWithResurfacing reports whether the site's cross-section is substandard.
func NeedsSafetyWithResurfacing(site domain.Site) bool {
	return site.LaneWidthFt < minAdequateLaneWidthFt || site.ShoulderWidthFt < minAdequateShoulderWidthFt
}

// ResurfacingWithoutSafetyPenalty charges resurfacing a substandard site without any
// geometric improvement.
func ResurfacingWithoutSafetyPenalty(site domain.Site, treatments []domain.Treatment, cfg config.Config) float64 {
	hasResurf, hasGeometric := false, false
	for _, t := range treatments {
		hasResurf = hasResurf || t.IsResurfacing()
		hasGeometric = hasGeometric || t.IsGeometric()
	}
	return resurfacingWithoutSafety(site, hasResurf, hasGeometric, cfg)
}

func resurfacingWithoutSafety(site domain.Site, hasResurf, hasGeometric bool, cfg config.Config) float64 {
	p := cfg.Penalty.ResurfacingWithoutSafety
	if !p.Enabled || !hasResurf || hasGeometric || !NeedsSafetyWithResurfacing(site) {
		return 0
	}
	return p.RatePerMile * site.Length
}
