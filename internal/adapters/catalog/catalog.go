// Package catalog reads treatment catalogs and published alternative tables
// from YAML files.
package catalog

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"slices"
	"strings"

	"site-selection-service/internal/domain"

	"gopkg.in/yaml.v3"
)

type costFile struct {
	Fixed       float64 `yaml:"fixed"`
	PerMile     float64 `yaml:"per_mile"`
	PerLaneMile float64 `yaml:"per_lane_mile"`
}

type operationsFile struct {
	SpeedGainMPH        float64 `yaml:"speed_gain_mph"`
	OperatingCostSaving float64 `yaml:"operating_cost_saving"`
}

type applicabilityFile struct {
	LaneWidthBelowFt     float64  `yaml:"lane_width_below_ft"`
	ShoulderWidthBelowFt float64  `yaml:"shoulder_width_below_ft"`
	ShoulderTypes        []string `yaml:"shoulder_types"`
	AreaTypes            []string `yaml:"area_types"`
	MinADT               float64  `yaml:"min_adt"`
	MinLanes             int      `yaml:"min_lanes"`
	DividedOnly          bool     `yaml:"divided_only"`
	UndividedOnly        bool     `yaml:"undivided_only"`
}

type treatmentFile struct {
	ID            string             `yaml:"id"`
	Name          string             `yaml:"name"`
	Kind          string             `yaml:"kind"`
	CMF           map[string]float64 `yaml:"cmf"`
	Cost          costFile           `yaml:"cost"`
	Divisible     bool               `yaml:"divisible"`
	ServiceLife   int                `yaml:"service_life"`
	Operations    operationsFile     `yaml:"operations"`
	ConditionGain float64            `yaml:"condition_gain"`
	Applicability applicabilityFile  `yaml:"applicability"`
}

type catalogFile struct {
	Treatments   []treatmentFile `yaml:"treatments"`
	Combinations [][]string      `yaml:"combinations"`
}

// Load reads a treatment catalog from a YAML file.
func Load(path string) (*domain.Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load catalog: read %q: %w", path, err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("load catalog %q: %w", path, err)
	}
	return c, nil
}

// Parse decodes catalog YAML. Every malformed treatment is reported.
func Parse(data []byte) (*domain.Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse catalog yaml: %w", err)
	}

	treatments := make([]domain.Treatment, 0, len(f.Treatments))
	var errs []error
	for i, tf := range f.Treatments {
		t, tErrs := tf.treatment(i)
		errs = append(errs, tErrs...)
		treatments = append(treatments, t)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	return domain.NewCatalog(treatments, f.Combinations)
}

func (tf treatmentFile) treatment(pos int) (domain.Treatment, []error) {
	var errs []error
	field := func(name string) string {
		if tf.ID == "" {
			return fmt.Sprintf("treatments[%d].%s", pos, name)
		}
		return "treatments." + tf.ID + "." + name
	}

	t := domain.Treatment{
		ID:            strings.TrimSpace(tf.ID),
		Name:          tf.Name,
		Kind:          domain.TreatmentKind(strings.ToLower(strings.TrimSpace(tf.Kind))),
		Cost:          domain.CostModel(tf.Cost),
		Divisible:     tf.Divisible,
		ServiceLife:   tf.ServiceLife,
		Operations:    domain.OperationsEffect(tf.Operations),
		ConditionGain: tf.ConditionGain,
	}
	if t.Name == "" {
		t.Name = t.ID
	}

	switch t.Kind {
	case domain.KindResurfacing, domain.KindGeometric, domain.KindSafety:
	case "":
		t.Kind = domain.KindSafety
	default:
		errs = append(errs, &domain.ValidationError{Field: field("kind"), Value: tf.Kind, Reason: "must be resurfacing, geometric or safety"})
	}

	for _, key := range slices.Sorted(maps.Keys(tf.CMF)) {
		v := tf.CMF[key]
		m, err := domain.ParseLocationType(key)
		if err != nil {
			errs = append(errs, &domain.ValidationError{Field: field("cmf." + key), Value: v, Reason: "unknown location type"})
			continue
		}
		t.CMF[m] = v
		t.CMFSet[m] = true
	}

	a := tf.Applicability
	t.Applicability = domain.Applicability{
		LaneWidthBelowFt:     a.LaneWidthBelowFt,
		ShoulderWidthBelowFt: a.ShoulderWidthBelowFt,
		MinADT:               a.MinADT,
		MinLanes:             a.MinLanes,
		DividedOnly:          a.DividedOnly,
		UndividedOnly:        a.UndividedOnly,
	}
	for _, s := range a.ShoulderTypes {
		t.Applicability.ShoulderTypes = append(t.Applicability.ShoulderTypes, domain.ShoulderType(strings.ToLower(strings.TrimSpace(s))))
	}
	for _, s := range a.AreaTypes {
		t.Applicability.AreaTypes = append(t.Applicability.AreaTypes, domain.AreaType(strings.ToLower(strings.TrimSpace(s))))
	}
	if a.DividedOnly && a.UndividedOnly {
		errs = append(errs, &domain.ValidationError{Field: field("applicability"), Value: a, Reason: "divided_only and undivided_only are exclusive"})
	}

	return t, errs
}
