package services

import (
	"fmt"
	"slices"
	"strings"

	"site-selection-service/internal/config"
	"site-selection-service/internal/domain"
)

// Options that shape which alternatives a site receives.
type EnumerationOptions struct {
	// Length fractions applied to divisible treatments, ascending within (0, 1].
	LengthFractions  []float64
	RequireTreatment bool
}

// Candidate is one enumerated bundle before pricing.
type Candidate struct {
	Treatments []domain.Treatment
	Fraction   float64
}

// IDs returns the treatment ids in catalog order.
func (c Candidate) IDs() []string {
	ids := make([]string, len(c.Treatments))
	for i, t := range c.Treatments {
		ids[i] = t.ID
	}
	return ids
}

func (c Candidate) key() string {
	return domain.Alternative{Treatments: c.IDs(), Fraction: c.Fraction}.Key()
}

// EnumerateAlternatives lists a site's candidate bundles in a deterministic order:
// do-nothing, eligible singles in catalog order, fully eligible combinations in
// configuration order, then each eligible divisible treatment at every fraction.
//
// A site left with only do-nothing is not an error. When a real treatment is
// required the candidates are still returned together with an *EnumerationError.
func EnumerateAlternatives(site domain.Site, catalog *domain.Catalog, opts EnumerationOptions) ([]Candidate, error) {
	eligible := make([]bool, catalog.Len())
	for i := range eligible {
		eligible[i] = catalog.At(i).Eligible(site)
	}

	out := []Candidate{{Fraction: 0}}
	seen := map[string]struct{}{domain.DoNothingID: {}}
	add := func(c Candidate) {
		k := c.key()
		if _, dup := seen[k]; dup {
			return
		}
		seen[k] = struct{}{}
		out = append(out, c)
	}

	for i := 0; i < catalog.Len(); i++ {
		if eligible[i] {
			add(Candidate{Treatments: []domain.Treatment{catalog.At(i)}, Fraction: 1})
		}
	}

	for _, combo := range catalog.Combinations() {
		ok := true
		for _, pos := range combo {
			if !eligible[pos] {
				ok = false
				break
			}
		}
		if !ok {
			continue
		}
		positions := slices.Clone(combo)
		slices.Sort(positions)
		members := make([]domain.Treatment, len(positions))
		for k, pos := range positions {
			members[k] = catalog.At(pos)
		}
		add(Candidate{Treatments: members, Fraction: 1})
	}

	fractions := slices.Clone(opts.LengthFractions)
	slices.Sort(fractions)
	for i := 0; i < catalog.Len(); i++ {
		t := catalog.At(i)
		if !eligible[i] || !t.Divisible {
			continue
		}
		for _, f := range fractions {
			if f <= 0 || f > 1 {
				continue
			}
			add(Candidate{Treatments: []domain.Treatment{t}, Fraction: f})
		}
	}

	if len(out) == 1 && (opts.RequireTreatment || site.RequiresTreatment) {
		return out, &domain.EnumerationError{SiteID: site.ID, Reason: "no eligible treatment; only do-nothing is available"}
	}

	return out, nil
}

// Describe renders a human-readable label such as "Resurfacing + Add turn lane (50% length)".
func Describe(c Candidate) string {
	if len(c.Treatments) == 0 {
		return "Do nothing"
	}
	names := make([]string, len(c.Treatments))
	for i, t := range c.Treatments {
		names[i] = t.Name
		if names[i] == "" {
			names[i] = t.ID
		}
	}
	label := strings.Join(names, " + ")
	if c.Fraction < 1 {
		label += fmt.Sprintf(" (%g%% length)", c.Fraction*100)
	}
	return label
}

// EvaluateSite enumerates, prices and values every alternative of one site.
// The returned warning is an *EnumerationError or nil; err is fatal.
func EvaluateSite(site domain.Site, catalog *domain.Catalog, cfg config.Config) (alts []domain.Alternative, warning error, err error) {
	candidates, warning := EnumerateAlternatives(site, catalog, EnumerationOptions{
		LengthFractions:  cfg.LengthFractions,
		RequireTreatment: cfg.RequireTreatment,
	})

	alts = make([]domain.Alternative, 0, len(candidates))
	for j, c := range candidates {
		benefits, err := ComputeBenefits(site, c.Treatments, c.Fraction, cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("evaluate site %s: alternative %d: %w", site.ID, j, err)
		}

		a := domain.Alternative{
			Index:       j,
			SiteID:      site.ID,
			Description: Describe(c),
			Treatments:  c.IDs(),
			Fraction:    c.Fraction,
			Costs:       ComputeCosts(site, c.Treatments, c.Fraction),
			Benefits:    benefits,
		}
		if len(c.Treatments) == 0 {
			a.Penalties.NotResurfacing = NotResurfacingPenalty(site, catalog, cfg)
		}
		a.Penalties.ResurfacingWithoutSafety = ResurfacingWithoutSafetyPenalty(site, c.Treatments, cfg)

		alts = append(alts, a)
	}

	return alts, warning, nil
}
