package domain

import (
	"fmt"
	"slices"
	"strings"
)

type TreatmentKind string

const (
	// Resurfacing cost is budgeted but kept out of the objective's cost term.
	KindResurfacing TreatmentKind = "resurfacing"
	// Geometric treatments (lane/shoulder widening, curves) satisfy the resurfacing-with-safety policy.
	KindGeometric TreatmentKind = "geometric"
	KindSafety    TreatmentKind = "safety"
)

// Treatment unit-cost model. Lengths are in miles.
type CostModel struct {
	Fixed       float64
	PerMile     float64
	PerLaneMile float64
}

// FullLength returns the cost of applying the treatment over the whole site.
func (c CostModel) FullLength(site Site) float64 {
	return c.Fixed + c.PerMile*site.Length + c.PerLaneMile*site.Length*float64(site.Lanes)
}

// Operational effect of a treatment on traffic using the treated length.
type OperationsEffect struct {
	SpeedGainMPH float64
	// Vehicle operating cost saving in $ per vehicle-mile.
	OperatingCostSaving float64
}

// Applicability holds declarative thresholds; zero values disable a check.
type Applicability struct {
	LaneWidthBelowFt     float64
	ShoulderWidthBelowFt float64
	ShoulderTypes        []ShoulderType
	AreaTypes            []AreaType
	MinADT               float64
	MinLanes             int
	DividedOnly          bool
	UndividedOnly        bool
}

// Applies evaluates the thresholds against the site.
func (a Applicability) Applies(site Site) bool {
	if a.LaneWidthBelowFt > 0 && site.LaneWidthFt >= a.LaneWidthBelowFt {
		return false
	}
	if a.ShoulderWidthBelowFt > 0 && site.ShoulderWidthFt >= a.ShoulderWidthBelowFt {
		return false
	}
	if len(a.ShoulderTypes) > 0 && !slices.Contains(a.ShoulderTypes, site.ShoulderType) {
		return false
	}
	if len(a.AreaTypes) > 0 && !slices.Contains(a.AreaTypes, site.AreaType) {
		return false
	}
	if site.ADT < a.MinADT {
		return false
	}
	if site.Lanes < a.MinLanes {
		return false
	}
	if a.DividedOnly && !site.Divided {
		return false
	}
	if a.UndividedOnly && site.Divided {
		return false
	}
	return true
}

// Represents one improvement type in the catalog.
type Treatment struct {
	ID          string
	Name        string
	Kind        TreatmentKind
	CMF         [numLocationTypes]float64
	CMFSet      [numLocationTypes]bool
	Cost        CostModel
	Divisible   bool
	ServiceLife int // years; zero means the analysis horizon
	Operations  OperationsEffect
	// Condition-index points gained over the treated length.
	ConditionGain float64
	Applicability Applicability
	// Predicate, when set, is evaluated in addition to Applicability.
	Predicate func(Site) bool
}

// CMFFor returns the crash modification factor for a location type.
// CMFSet marks factors given explicitly: an explicit 0 removes the crash type,
// while a zero that was never set is neutral.
func (t Treatment) CMFFor(m LocationType) float64 {
	if !t.CMFSet[m] && t.CMF[m] == 0 {
		return 1
	}
	return t.CMF[m]
}

// Eligible reports whether the treatment can be applied to the site.
func (t Treatment) Eligible(site Site) bool {
	if !t.Applicability.Applies(site) {
		return false
	}
	if t.Predicate != nil && !t.Predicate(site) {
		return false
	}
	return true
}

func (t Treatment) IsResurfacing() bool { return t.Kind == KindResurfacing }

func (t Treatment) IsGeometric() bool { return t.Kind == KindGeometric }

// Catalog is the immutable treatment catalog shared by every worker.
type Catalog struct {
	treatments   []Treatment
	index        map[string]int
	combinations [][]string
}

// NewCatalog validates and freezes a treatment catalog.
// Combinations list treatment IDs that form a bundled alternative.
func NewCatalog(treatments []Treatment, combinations [][]string) (*Catalog, error) {
	c := &Catalog{
		treatments: make([]Treatment, len(treatments)),
		index:      make(map[string]int, len(treatments)),
	}
	copy(c.treatments, treatments)

	for i, t := range c.treatments {
		id := strings.TrimSpace(t.ID)
		if id == "" {
			return nil, &ValidationError{Field: fmt.Sprintf("treatments[%d].id", i), Value: t.ID, Reason: "must not be empty"}
		}
		if _, dup := c.index[id]; dup {
			return nil, &ValidationError{Field: "treatments.id", Value: id, Reason: "duplicate treatment id"}
		}
		for _, m := range LocationTypes() {
			if t.CMF[m] < 0 {
				return nil, &ValidationError{Field: "treatments." + id + ".cmf." + m.String(), Value: t.CMF[m], Reason: "must be non-negative"}
			}
		}
		if t.Cost.Fixed < 0 || t.Cost.PerMile < 0 || t.Cost.PerLaneMile < 0 {
			return nil, &ValidationError{Field: "treatments." + id + ".cost", Value: t.Cost, Reason: "costs must be non-negative"}
		}
		if t.ServiceLife < 0 {
			return nil, &ValidationError{Field: "treatments." + id + ".service_life", Value: t.ServiceLife, Reason: "must be non-negative"}
		}
		c.treatments[i].ID = id
		c.index[id] = i
	}

	for i, combo := range combinations {
		if len(combo) == 0 {
			return nil, &ValidationError{Field: fmt.Sprintf("combinations[%d]", i), Value: combo, Reason: "must not be empty"}
		}
		members := make([]string, 0, len(combo))
		for _, id := range combo {
			id = strings.TrimSpace(id)
			if _, ok := c.index[id]; !ok {
				return nil, &ValidationError{Field: fmt.Sprintf("combinations[%d]", i), Value: id, Reason: "unknown treatment id"}
			}
			if slices.Contains(members, id) {
				return nil, &ValidationError{Field: fmt.Sprintf("combinations[%d]", i), Value: id, Reason: "treatment listed twice"}
			}
			members = append(members, id)
		}
		c.combinations = append(c.combinations, members)
	}

	return c, nil
}

// Treatments returns the treatments in catalog order.
func (c *Catalog) Treatments() []Treatment { return slices.Clone(c.treatments) }

// Len returns the number of treatments.
func (c *Catalog) Len() int { return len(c.treatments) }

// At returns the treatment at catalog position i.
func (c *Catalog) At(i int) Treatment { return c.treatments[i] }

// Lookup returns the catalog position of a treatment id.
func (c *Catalog) Lookup(id string) (int, bool) {
	i, ok := c.index[id]
	return i, ok
}

// Combinations returns configured bundles as catalog positions, in configuration order.
func (c *Catalog) Combinations() [][]int {
	out := make([][]int, 0, len(c.combinations))
	for _, combo := range c.combinations {
		positions := make([]int, 0, len(combo))
		for _, id := range combo {
			positions = append(positions, c.index[id])
		}
		out = append(out, positions)
	}
	return out
}

// Resurfacing returns the first resurfacing treatment in the catalog, if any.
func (c *Catalog) Resurfacing() (Treatment, bool) {
	for _, t := range c.treatments {
		if t.IsResurfacing() {
			return t, true
		}
	}
	return Treatment{}, false
}
