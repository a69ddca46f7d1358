package domain

import (
	"fmt"
	"math"
	"strings"
)

type AreaType string

const (
	AreaRural AreaType = "rural"
	AreaUrban AreaType = "urban"
)

type ShoulderType string

const (
	ShoulderNone      ShoulderType = "none"
	ShoulderPaved     ShoulderType = "paved"
	ShoulderGravel    ShoulderType = "gravel"
	ShoulderTurf      ShoulderType = "turf"
	ShoulderComposite ShoulderType = "composite"
)

// Paved reports whether the shoulder surface is fully paved.
func (s ShoulderType) Paved() bool { return s == ShoulderPaved }

// Crash location type used to key CMFs and baseline frequencies.
type LocationType int

const (
	NonIntersection LocationType = iota
	Intersection
	numLocationTypes
)

var locationTypeNames = [...]string{"non_intersection", "intersection"}

func (m LocationType) String() string {
	if m < 0 || m >= numLocationTypes {
		return fmt.Sprintf("location(%d)", int(m))
	}
	return locationTypeNames[m]
}

// LocationTypes lists location types in their canonical order.
func LocationTypes() []LocationType { return []LocationType{NonIntersection, Intersection} }

// ParseLocationType maps a configuration key to a LocationType.
func ParseLocationType(s string) (LocationType, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	for i, name := range locationTypeNames {
		if key == name {
			return LocationType(i), nil
		}
	}
	return 0, fmt.Errorf("parse location type: unknown %q", s)
}

// Crash severity class.
type Severity int

const (
	FatalInjury Severity = iota
	PropertyDamageOnly
	numSeverities
)

var severityNames = [...]string{"fatal_injury", "pdo"}

func (s Severity) String() string {
	if s < 0 || s >= numSeverities {
		return fmt.Sprintf("severity(%d)", int(s))
	}
	return severityNames[s]
}

// Severities lists severity classes in their canonical order.
func Severities() []Severity { return []Severity{FatalInjury, PropertyDamageOnly} }

// ParseSeverity maps a configuration key to a Severity.
func ParseSeverity(s string) (Severity, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	for i, name := range severityNames {
		if key == name {
			return Severity(i), nil
		}
	}
	return 0, fmt.Errorf("parse severity: unknown %q", s)
}

// Annual crash frequency by location type and severity class.
type CrashFrequency [numLocationTypes][numSeverities]float64

// At returns the annual frequency for one location type and severity.
func (c CrashFrequency) At(m LocationType, s Severity) float64 { return c[m][s] }

// Total returns the annual frequency summed over all cells.
func (c CrashFrequency) Total() float64 {
	total := 0.0
	for _, row := range c {
		for _, v := range row {
			total += v
		}
	}
	return total
}

// Represents a candidate road site.
// Sites are loaded once per run and shared read-only by every worker.
type Site struct {
	ID              string
	Length          float64 // miles
	Lanes           int
	ADT             float64
	SpeedMPH        float64
	AreaType        AreaType
	Divided         bool
	LaneWidthFt     float64
	ShoulderWidthFt float64
	ShoulderType    ShoulderType
	Crashes         CrashFrequency

	// Pavement condition index on a 0-100 scale; drives the not-resurfacing penalty.
	PavementCondition float64
	// Zero means "derive from the catalog's resurfacing cost".
	PavementReplacementCost float64
	RequiresTreatment       bool
}

// VehicleMiles returns annual vehicle-miles traveled over a fraction of the site.
func (s Site) VehicleMiles(fraction float64) float64 {
	return s.ADT * DaysPerYear * s.Length * fraction
}

// DaysPerYear converts ADT into annual volume.
const DaysPerYear = 365.0

// Validate returns every malformed attribute of the site.
func (s Site) Validate() []error {
	var errs []error
	add := func(field string, value any, reason string) {
		errs = append(errs, &ValidationError{SiteID: s.ID, Field: field, Value: value, Reason: reason})
	}

	if strings.TrimSpace(s.ID) == "" {
		add("id", s.ID, "must not be empty")
	}
	if !(s.Length > 0) || math.IsInf(s.Length, 0) {
		add("length", s.Length, "must be positive")
	}
	if s.Lanes < 1 {
		add("lanes", s.Lanes, "must be at least 1")
	}
	if s.ADT < 0 {
		add("adt", s.ADT, "must be non-negative")
	}
	if s.SpeedMPH < 0 {
		add("speed_mph", s.SpeedMPH, "must be non-negative")
	}
	if s.LaneWidthFt < 0 {
		add("lane_width_ft", s.LaneWidthFt, "must be non-negative")
	}
	if s.ShoulderWidthFt < 0 {
		add("shoulder_width_ft", s.ShoulderWidthFt, "must be non-negative")
	}
	if s.PavementCondition < 0 || s.PavementCondition > 100 {
		add("pavement_condition", s.PavementCondition, "must be within [0, 100]")
	}
	if s.PavementReplacementCost < 0 {
		add("pavement_replacement_cost", s.PavementReplacementCost, "must be non-negative")
	}
	for _, m := range LocationTypes() {
		for _, sev := range Severities() {
			v := s.Crashes.At(m, sev)
			if v < 0 || math.IsNaN(v) {
				add("crashes."+m.String()+"."+sev.String(), v, "crash frequency must be non-negative")
			}
		}
	}

	return errs
}
