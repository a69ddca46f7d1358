package services

import (
	"testing"

	"site-selection-service/internal/config"
	"site-selection-service/internal/domain"
)

func testTreatments() []domain.Treatment {
	return []domain.Treatment{
		{
			ID:            "resurf",
			Name:          "Resurfacing",
			Kind:          domain.KindResurfacing,
			Cost:          domain.CostModel{PerLaneMile: 100_000},
			Operations:    domain.OperationsEffect{OperatingCostSaving: 0.005},
			ConditionGain: 30,
		},
		{
			ID:            "lane_widen",
			Name:          "Widen lanes to 11 ft",
			Kind:          domain.KindGeometric,
			CMF:           [2]float64{0.88, 0},
			Cost:          domain.CostModel{PerMile: 250_000},
			Divisible:     true,
			Applicability: domain.Applicability{LaneWidthBelowFt: 11},
		},
		{
			ID:            "turn_lane",
			Name:          "Add left-turn lane",
			Kind:          domain.KindSafety,
			CMF:           [2]float64{0, 0.7},
			Cost:          domain.CostModel{Fixed: 120_000},
			Operations:    domain.OperationsEffect{SpeedGainMPH: 2},
			Applicability: domain.Applicability{MinADT: 2000},
		},
		{
			ID:            "rumble",
			Name:          "Shoulder rumble strips",
			Kind:          domain.KindSafety,
			CMF:           [2]float64{0.85, 0},
			Cost:          domain.CostModel{PerMile: 5_000},
			Divisible:     true,
			ServiceLife:   10,
			Applicability: domain.Applicability{AreaTypes: []domain.AreaType{domain.AreaRural}},
		},
	}
}

func testCatalog(t *testing.T) *domain.Catalog {
	t.Helper()
	c, err := domain.NewCatalog(testTreatments(), [][]string{
		{"resurf", "lane_widen"},
		{"turn_lane", "resurf"},
	})
	if err != nil {
		t.Fatalf("new catalog: %v", err)
	}
	return c
}

func ruralSite() domain.Site {
	s := domain.Site{
		ID:                "A",
		Length:            2,
		Lanes:             2,
		ADT:               3000,
		SpeedMPH:          45,
		AreaType:          domain.AreaRural,
		LaneWidthFt:       10,
		ShoulderWidthFt:   4,
		ShoulderType:      domain.ShoulderGravel,
		PavementCondition: 55,
	}
	s.Crashes[domain.NonIntersection][domain.FatalInjury] = 2
	s.Crashes[domain.NonIntersection][domain.PropertyDamageOnly] = 5
	s.Crashes[domain.Intersection][domain.FatalInjury] = 1
	s.Crashes[domain.Intersection][domain.PropertyDamageOnly] = 3
	return s
}

func urbanSite() domain.Site {
	s := domain.Site{
		ID:                "B",
		Length:            1,
		Lanes:             4,
		ADT:               1000,
		SpeedMPH:          35,
		AreaType:          domain.AreaUrban,
		LaneWidthFt:       12,
		ShoulderWidthFt:   8,
		ShoulderType:      domain.ShoulderPaved,
		PavementCondition: 80,
	}
	s.Crashes[domain.NonIntersection][domain.PropertyDamageOnly] = 4
	return s
}

func testConfig() config.Config {
	cfg := config.Default()
	cfg.DiscountRate = 0.04
	cfg.AnalysisHorizon = 20
	cfg.Budget = 1_000_000
	cfg.Workers = 2
	return cfg
}
