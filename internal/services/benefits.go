package services

import (
	"fmt"

	"site-selection-service/internal/config"
	"site-selection-service/internal/domain"
	"site-selection-service/internal/economics"
)

// ComposeCMF combines the crash modification factors of a treatment bundle for one
// location type. Divisible treatments act on the treated fraction only:
// ∏ CMF(non-divisible) × (1 − f + f × ∏ CMF(divisible)).
func ComposeCMF(treatments []domain.Treatment, m domain.LocationType, fraction float64) float64 {
	whole, partial := 1.0, 1.0
	hasPartial := false
	for _, t := range treatments {
		if t.Divisible {
			partial *= t.CMFFor(m)
			hasPartial = true
			continue
		}
		whole *= t.CMFFor(m)
	}
	if !hasPartial {
		return whole
	}
	return whole * (1 - fraction + fraction*partial)
}

// BenefitLife is the shortest positive service life of the bundle, capped at horizon.
func BenefitLife(treatments []domain.Treatment, horizon int) int {
	life := horizon
	for _, t := range treatments {
		if t.ServiceLife > 0 && t.ServiceLife < life {
			life = t.ServiceLife
		}
	}
	return life
}

// SafetyBenefit returns the discounted value of crashes avoided.
// A composed CMF above 1 yields a negative benefit; it is never clamped.
func SafetyBenefit(site domain.Site, treatments []domain.Treatment, fraction float64, cfg config.Config) (float64, error) {
	if len(treatments) == 0 {
		return 0, nil
	}

	annual := 0.0
	for _, m := range domain.LocationTypes() {
		cmf := ComposeCMF(treatments, m, fraction)
		for _, s := range domain.Severities() {
			baseline := site.Crashes.At(m, s)
			annual += baseline * (1 - cmf) * cfg.CrashCost(s)
		}
	}

	return discountAnnual(annual, treatments, cfg, "safety benefit")
}

// OperationsBenefit values travel-time and vehicle-operating-cost savings over the
// treated length.
func OperationsBenefit(site domain.Site, treatments []domain.Treatment, fraction float64, cfg config.Config) (float64, error) {
	if len(treatments) == 0 {
		return 0, nil
	}

	gain, saving := 0.0, 0.0
	for _, t := range treatments {
		gain += t.Operations.SpeedGainMPH
		saving += t.Operations.OperatingCostSaving
	}

	treated := site.Length * fraction
	hoursSaved := 0.0
	if site.SpeedMPH > 0 && gain != 0 && site.SpeedMPH+gain > 0 {
		hoursSaved = treated/site.SpeedMPH - treated/(site.SpeedMPH+gain)
	}

	annualVolume := site.ADT * domain.DaysPerYear
	annual := hoursSaved*annualVolume*cfg.WeightedValueOfTime() + saving*site.VehicleMiles(fraction)

	return discountAnnual(annual, treatments, cfg, "operations benefit")
}

// ConditionBenefit values condition-index points gained over the treated length.
// The gain cannot lift the site above a perfect index of 100.
func ConditionBenefit(site domain.Site, treatments []domain.Treatment, fraction float64, cfg config.Config) (float64, error) {
	if len(treatments) == 0 || cfg.Corridor.BenefitPerPointMile == 0 {
		return 0, nil
	}

	gain := 0.0
	for _, t := range treatments {
		gain += t.ConditionGain
	}
	if headroom := 100 - site.PavementCondition; gain > headroom {
		gain = headroom
	}

	annual := gain * cfg.Corridor.BenefitPerPointMile * site.Length * fraction
	return discountAnnual(annual, treatments, cfg, "condition benefit")
}

// ComputeBenefits evaluates every benefit component of one alternative.
func ComputeBenefits(site domain.Site, treatments []domain.Treatment, fraction float64, cfg config.Config) (domain.Benefits, error) {
	var b domain.Benefits
	var err error

	if b.Safety, err = SafetyBenefit(site, treatments, fraction, cfg); err != nil {
		return domain.Benefits{}, err
	}
	if b.Operations, err = OperationsBenefit(site, treatments, fraction, cfg); err != nil {
		return domain.Benefits{}, err
	}
	if b.Condition, err = ConditionBenefit(site, treatments, fraction, cfg); err != nil {
		return domain.Benefits{}, err
	}

	return b, nil
}

func discountAnnual(annual float64, treatments []domain.Treatment, cfg config.Config, op string) (float64, error) {
	if annual == 0 {
		return 0, nil
	}
	life := BenefitLife(treatments, cfg.AnalysisHorizon)
	pwf, err := economics.UniformSeriesFactor(cfg.DiscountRate, life)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return annual * pwf, nil
}
