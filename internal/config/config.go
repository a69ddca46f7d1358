// Package config loads the scenario configuration (economic parameters,
// penalties, enumeration and solver options) from YAML with environment
// overrides.
package config

import (
	"fmt"
	"maps"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"site-selection-service/internal/domain"
	"site-selection-service/internal/economics"

	"gopkg.in/yaml.v3"
)

// Get returns the environment value for key, or fallback when unset or blank.
func Get(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

type NotResurfacingPenalty struct {
	Enabled bool `yaml:"enabled"`
	// Share of the pavement replacement cost charged at full proximity to failure.
	Percent float64 `yaml:"percent"`
	// Condition index at or above which no penalty applies.
	TriggerCondition float64 `yaml:"trigger_condition"`
	// Condition index treated as failed pavement.
	FailureCondition float64 `yaml:"failure_condition"`
}

type ResurfacingWithoutSafetyPenalty struct {
	Enabled     bool    `yaml:"enabled"`
	RatePerMile float64 `yaml:"rate_per_mile"`
}

type Penalty struct {
	NotResurfacing           NotResurfacingPenalty           `yaml:"not_resurfacing"`
	ResurfacingWithoutSafety ResurfacingWithoutSafetyPenalty `yaml:"resurfacing_without_safety"`
}

type CorridorCondition struct {
	BenefitPerPointMile float64 `yaml:"benefit_per_point_mile"`
}

type Solver struct {
	TimeLimit time.Duration `yaml:"time_limit"`
	MaxNodes  int           `yaml:"max_nodes"`
}

// Config is the immutable scenario configuration passed explicitly through the pipeline.
type Config struct {
	Scenario        string             `yaml:"scenario"`
	DiscountRate    float64            `yaml:"discount_rate"`
	AnalysisHorizon int                `yaml:"analysis_horizon"`
	ValueOfTime     map[string]float64 `yaml:"value_of_time"`
	TravelerMix     map[string]float64 `yaml:"traveler_mix"`
	CrashCosts      map[string]float64 `yaml:"crash_costs"`
	Penalty         Penalty            `yaml:"penalty"`
	Corridor        CorridorCondition  `yaml:"corridor_condition"`
	LengthFractions []float64          `yaml:"length_fractions"`
	Budget          float64            `yaml:"budget"`
	// Sites without an eligible real treatment are reported when set.
	RequireTreatment bool   `yaml:"require_treatment"`
	Workers          int    `yaml:"workers"`
	Solver           Solver `yaml:"solver"`
}

// Default returns the USDOT 2024 defaults with penalties disabled.
func Default() Config {
	return Config{
		Scenario:        "default",
		DiscountRate:    economics.DefaultDiscountRate,
		AnalysisHorizon: economics.DefaultAnalysisHorizon,
		ValueOfTime: map[string]float64{
			"personal": 17.80,
			"business": 33.60,
			"truck":    32.80,
		},
		CrashCosts: map[string]float64{
			domain.FatalInjury.String():        300_000,
			domain.PropertyDamageOnly.String(): 15_000,
		},
		Penalty: Penalty{
			NotResurfacing: NotResurfacingPenalty{
				Percent:          0.5,
				TriggerCondition: 70,
				FailureCondition: 40,
			},
		},
		LengthFractions: []float64{0.25, 0.5, 0.75, 1.0},
		Workers:         4,
		Solver:          Solver{TimeLimit: 30 * time.Second},
	}
}

// Load reads a YAML scenario file on top of Default and applies environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("load config: read %q: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("load config: parse %q: %w", path, err)
	}

	if err := cfg.ApplyEnv(); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}

	return cfg, nil
}

// ApplyEnv overrides the scalar knobs most often changed per run.
func (c *Config) ApplyEnv() error {
	floatVars := []struct {
		key string
		dst *float64
	}{
		{"SELECTION_BUDGET", &c.Budget},
		{"SELECTION_DISCOUNT_RATE", &c.DiscountRate},
	}
	for _, v := range floatVars {
		raw := Get(v.key, "")
		if raw == "" {
			continue
		}
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Errorf("apply env: %s=%q: %w", v.key, raw, err)
		}
		*v.dst = f
	}

	if raw := Get("SELECTION_ANALYSIS_HORIZON", ""); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("apply env: SELECTION_ANALYSIS_HORIZON=%q: %w", raw, err)
		}
		c.AnalysisHorizon = n
	}

	if raw := Get("SELECTION_SOLVER_TIME_LIMIT", ""); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("apply env: SELECTION_SOLVER_TIME_LIMIT=%q: %w", raw, err)
		}
		c.Solver.TimeLimit = d
	}

	return nil
}

// Validate reports every out-of-range option as a ValidationError.
func (c Config) Validate() []error {
	var errs []error
	add := func(field string, value any, reason string) {
		errs = append(errs, &domain.ValidationError{Field: field, Value: value, Reason: reason})
	}

	if c.DiscountRate < 0 {
		add("discount_rate", c.DiscountRate, "must be non-negative")
	}
	if c.AnalysisHorizon < 1 {
		add("analysis_horizon", c.AnalysisHorizon, "must be at least 1 year")
	}
	if c.Budget < 0 {
		add("budget", c.Budget, "must be non-negative")
	}
	for _, class := range slices.Sorted(maps.Keys(c.ValueOfTime)) {
		if v := c.ValueOfTime[class]; v < 0 {
			add("value_of_time."+class, v, "must be non-negative")
		}
	}
	for _, class := range slices.Sorted(maps.Keys(c.TravelerMix)) {
		v := c.TravelerMix[class]
		if v < 0 {
			add("traveler_mix."+class, v, "must be non-negative")
		}
		if _, ok := c.ValueOfTime[class]; !ok {
			add("traveler_mix."+class, v, "has no value_of_time entry")
		}
	}
	for _, key := range slices.Sorted(maps.Keys(c.CrashCosts)) {
		v := c.CrashCosts[key]
		if _, err := domain.ParseSeverity(key); err != nil {
			add("crash_costs."+key, v, "unknown severity class")
		}
		if v < 0 {
			add("crash_costs."+key, v, "must be non-negative")
		}
	}

	prev := 0.0
	for i, f := range c.LengthFractions {
		if f <= 0 || f > 1 {
			add(fmt.Sprintf("length_fractions[%d]", i), f, "must be within (0, 1]")
		}
		if f <= prev {
			add(fmt.Sprintf("length_fractions[%d]", i), f, "must be strictly ascending")
		}
		prev = f
	}

	pnr := c.Penalty.NotResurfacing
	if pnr.Enabled {
		if pnr.Percent < 0 {
			add("penalty.not_resurfacing.percent", pnr.Percent, "must be non-negative")
		}
		if pnr.TriggerCondition <= pnr.FailureCondition {
			add("penalty.not_resurfacing.trigger_condition", pnr.TriggerCondition, "must exceed failure_condition")
		}
	}
	if c.Penalty.ResurfacingWithoutSafety.RatePerMile < 0 {
		add("penalty.resurfacing_without_safety.rate_per_mile", c.Penalty.ResurfacingWithoutSafety.RatePerMile, "must be non-negative")
	}
	if c.Corridor.BenefitPerPointMile < 0 {
		add("corridor_condition.benefit_per_point_mile", c.Corridor.BenefitPerPointMile, "must be non-negative")
	}
	if c.Workers < 0 {
		add("workers", c.Workers, "must be non-negative")
	}
	if c.Solver.TimeLimit < 0 {
		add("solver.time_limit", c.Solver.TimeLimit, "must be non-negative")
	}

	return errs
}

// CrashCost returns the unit cost of one crash of severity s.
func (c Config) CrashCost(s domain.Severity) float64 { return c.CrashCosts[s.String()] }

// WeightedValueOfTime returns the traveler-mix weighted $/vehicle-hour.
// Without a mix, every class listed in value_of_time is weighted equally.
func (c Config) WeightedValueOfTime() float64 {
	if len(c.ValueOfTime) == 0 {
		return 0
	}

	totalShare, weighted := 0.0, 0.0
	if len(c.TravelerMix) > 0 {
		// Sorted classes keep the float sum identical across runs.
		for _, class := range slices.Sorted(maps.Keys(c.TravelerMix)) {
			share := c.TravelerMix[class]
			weighted += share * c.ValueOfTime[class]
			totalShare += share
		}
	} else {
		for _, class := range slices.Sorted(maps.Keys(c.ValueOfTime)) {
			weighted += c.ValueOfTime[class]
			totalShare++
		}
	}
	if totalShare == 0 {
		return 0
	}
	return weighted / totalShare
}
