package catalog

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"site-selection-service/internal/domain"

	"gopkg.in/yaml.v3"
)

type alternativeFile struct {
	SiteID            string   `yaml:"site_id"`
	AltID             string   `yaml:"alt_id"`
	Description       string   `yaml:"description"`
	Treatments        []string `yaml:"treatments"`
	ResurfacingCost   float64  `yaml:"resurfacing_cost"`
	SafetyCost        float64  `yaml:"safety_cost"`
	SafetyBenefit     float64  `yaml:"safety_benefit"`
	OperationsBenefit float64  `yaml:"operations_benefit"`
	ConditionBenefit  float64  `yaml:"condition_benefit"`
	Resurfacing       *bool    `yaml:"resurfacing"`
	Geometric         bool     `yaml:"geometric"`
}

type alternativesFile struct {
	Alternatives []alternativeFile `yaml:"alternatives"`
}

// LoadAlternatives reads a published alternatives table. Do-nothing rows are
// implied and must not be listed.
func LoadAlternatives(path string) ([]domain.AlternativeRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load alternatives: read %q: %w", path, err)
	}
	records, err := ParseAlternatives(data)
	if err != nil {
		return nil, fmt.Errorf("load alternatives %q: %w", path, err)
	}
	return records, nil
}

func ParseAlternatives(data []byte) ([]domain.AlternativeRecord, error) {
	var f alternativesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse alternatives yaml: %w", err)
	}

	records := make([]domain.AlternativeRecord, 0, len(f.Alternatives))
	seen := make(map[string]struct{}, len(f.Alternatives))
	var errs []error
	for i, af := range f.Alternatives {
		siteID := strings.TrimSpace(af.SiteID)
		altID := strings.TrimSpace(af.AltID)
		add := func(field string, value any, reason string) {
			errs = append(errs, &domain.ValidationError{SiteID: siteID, Field: fmt.Sprintf("alternatives[%d].%s", i, field), Value: value, Reason: reason})
		}

		if siteID == "" {
			add("site_id", af.SiteID, "must not be empty")
		}
		if altID == "" {
			add("alt_id", af.AltID, "must not be empty")
		}
		key := siteID + "/" + altID
		if _, dup := seen[key]; dup {
			add("alt_id", altID, "duplicate (site_id, alt_id)")
		}
		seen[key] = struct{}{}

		if af.ResurfacingCost < 0 {
			add("resurfacing_cost", af.ResurfacingCost, "must be non-negative")
		}
		if af.SafetyCost < 0 {
			add("safety_cost", af.SafetyCost, "must be non-negative")
		}

		// A row with a resurfacing cost is a resurfacing alternative unless stated otherwise.
		resurfacing := af.ResurfacingCost > 0
		if af.Resurfacing != nil {
			resurfacing = *af.Resurfacing
		}

		records = append(records, domain.AlternativeRecord{
			SiteID:      siteID,
			AltID:       altID,
			Description: af.Description,
			Treatments:  af.Treatments,
			Costs:       domain.Costs{Resurfacing: af.ResurfacingCost, Safety: af.SafetyCost},
			Benefits: domain.Benefits{
				Safety:     af.SafetyBenefit,
				Operations: af.OperationsBenefit,
				Condition:  af.ConditionBenefit,
			},
			Resurfacing: resurfacing,
			Geometric:   af.Geometric,
		})
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	return records, nil
}
