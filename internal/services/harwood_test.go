package services

import (
	"context"
	"fmt"
	"testing"

	"site-selection-service/internal/adapters/solver"
	"site-selection-service/internal/domain"

	"github.com/shopspring/decimal"
)

// Ten-site Harwood (2003) example with its published improvement alternatives.
// Pavement condition drives the not-resurfacing penalty; replacement cost is the
// site's resurfacing cost.
func harwoodSites() []domain.Site {
	type row struct {
		pci, resurf float64
	}
	rows := []row{
		{45, 528803}, {55, 519763}, {50, 821621}, {85, 475200}, {52, 1180017},
		{78, 2508549}, {48, 1503237}, {58, 1398989}, {82, 1365302}, {60, 1488369},
	}
	sites := make([]domain.Site, len(rows))
	for i, r := range rows {
		sites[i] = domain.Site{
			ID:                      fmt.Sprintf("%d", i+1),
			Length:                  1,
			Lanes:                   2,
			PavementCondition:       r.pci,
			PavementReplacementCost: r.resurf,
		}
	}
	return sites
}

func harwoodRecords() []domain.AlternativeRecord {
	type row struct {
		site                     int
		resurf, cost, safety, op float64
	}
	rows := []row{
		{1, 528803, 0, 0, 35107},
		{2, 519763, 120000, 328176, 71580},
		{3, 821621, 560000, 1094909, 93697},
		{4, 475200, 572616, 775629, 58379},
		{5, 1180017, 240000, 1355589, 53029},
		{6, 2508549, 560000, 808637, 92800},
		{7, 1503237, 360000, 947234, 93407},
		{8, 1398989, 180000, 555526, 150118},
		{8, 1398989, 680000, 1119938, 150118},
		{9, 1365302, 336000, 1071895, 81343},
		{10, 1488369, 1052781, 2329256, 80186},
	}
	out := make([]domain.AlternativeRecord, len(rows))
	perSite := map[int]int{}
	for i, r := range rows {
		perSite[r.site]++
		out[i] = domain.AlternativeRecord{
			SiteID:      fmt.Sprintf("%d", r.site),
			AltID:       fmt.Sprintf("alt%d", perSite[r.site]),
			Costs:       domain.Costs{Resurfacing: r.resurf, Safety: r.cost},
			Benefits:    domain.Benefits{Safety: r.safety, Operations: r.op},
			Resurfacing: true,
		}
	}
	return out
}

func near(t *testing.T, name string, got decimal.Decimal, want float64) {
	t.Helper()
	if diff := got.InexactFloat64() - want; diff > 100 || diff < -100 {
		t.Fatalf("%s = %s, want %.0f ± 100", name, got.StringFixed(2), want)
	}
}

func TestHarwoodBenchmark(t *testing.T) {
	tests := []struct {
		budget     float64
		cost       float64
		benefit    float64
		net        float64
		doNothing  []string
		site8Index int
	}{
		{budget: 50_000_000, cost: 16_271_247, benefit: 10_640_909, net: 6_159_512, site8Index: 2},
		{budget: 10_000_000, cost: 9_953_580, benefit: 7_187_814, net: 4_675_033, doNothing: []string{"4", "6", "9"}, site8Index: 1},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("budget=%.0f", tt.budget), func(t *testing.T) {
			cfg := testConfig()
			cfg.Budget = tt.budget
			cfg.Penalty.NotResurfacing.Enabled = true

			set, err := AlternativesFromRecords(harwoodSites(), harwoodRecords(), nil, cfg)
			if err != nil {
				t.Fatalf("alternatives from records: %v", err)
			}
			if set.Len() != 21 {
				t.Fatalf("alternatives = %d, want 21", set.Len())
			}

			out, err := SelectFromAlternatives(context.Background(), cfg, set, solver.NewBranchAndBound(0))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			sol := out.Solution

			if sol.Quality != domain.QualityOptimal {
				t.Fatalf("quality = %s, want optimal", sol.Quality)
			}
			near(t, "total cost", sol.Totals.TotalCost, tt.cost)
			near(t, "total benefit", sol.Totals.TotalBenefit, tt.benefit)
			near(t, "net benefit", sol.Totals.NetBenefit, tt.net)

			got := sol.DoNothingSites()
			if fmt.Sprint(got) != fmt.Sprint(tt.doNothing) {
				t.Fatalf("do-nothing sites = %v, want %v", got, tt.doNothing)
			}

			a, ok := sol.Selected("8")
			if !ok {
				t.Fatalf("site 8 missing from solution")
			}
			if a.Index != tt.site8Index {
				t.Fatalf("site 8 alternative = %d, want %d", a.Index, tt.site8Index)
			}
		})
	}
}

func TestHarwoodNetBenefitMonotoneInBudget(t *testing.T) {
	prev := -1e18
	for _, budget := range []float64{0, 2e6, 5e6, 8e6, 10e6, 12e6, 14e6, 50e6} {
		cfg := testConfig()
		cfg.Budget = budget
		cfg.Penalty.NotResurfacing.Enabled = true

		set, err := AlternativesFromRecords(harwoodSites(), harwoodRecords(), nil, cfg)
		if err != nil {
			t.Fatalf("alternatives from records: %v", err)
		}
		out, err := SelectFromAlternatives(context.Background(), cfg, set, solver.NewBranchAndBound(0))
		if err != nil {
			t.Fatalf("budget %.0f: %v", budget, err)
		}

		net := out.Solution.Totals.NetBenefit.InexactFloat64()
		if net < prev-1e-6 {
			t.Fatalf("net benefit fell from %.2f to %.2f at budget %.0f", prev, net, budget)
		}
		if cost := out.Solution.Totals.TotalCost.InexactFloat64(); cost > budget+0.01 {
			t.Fatalf("cost %.2f exceeds budget %.0f", cost, budget)
		}
		prev = net
	}
}
