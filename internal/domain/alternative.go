package domain

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// DoNothingID is the treatment-set key of the do-nothing alternative.
const DoNothingID = "do_nothing"

type Costs struct {
	Resurfacing float64
	// All treatments other than resurfacing.
	Safety float64
}

// Total is what the budget row charges.
func (c Costs) Total() float64 { return c.Resurfacing + c.Safety }

// Discounted benefit components.
type Benefits struct {
	Safety     float64
	Operations float64
	Condition  float64
}

func (b Benefits) Total() float64 { return b.Safety + b.Operations + b.Condition }

type Penalties struct {
	NotResurfacing           float64
	ResurfacingWithoutSafety float64
}

func (p Penalties) Total() float64 { return p.NotResurfacing + p.ResurfacingWithoutSafety }

// Represents one option for a site: a bundle of treatments over a length fraction,
// or the do-nothing baseline (fraction 0, no treatments).
// Alternatives are computed once and only read afterwards.
type Alternative struct {
	SiteIndex   int
	Index       int
	SiteID      string
	Description string
	// Treatment IDs in catalog order.
	Treatments []string
	Fraction   float64
	Costs      Costs
	Benefits   Benefits
	Penalties  Penalties
}

// IsDoNothing reports whether the alternative is the site baseline.
func (a Alternative) IsDoNothing() bool { return len(a.Treatments) == 0 }

// Key identifies the (treatment-set, fraction) pair; unique within a site.
func (a Alternative) Key() string {
	if a.IsDoNothing() {
		return DoNothingID
	}
	ids := slices.Clone(a.Treatments)
	slices.Sort(ids)
	return strings.Join(ids, "+") + "@" + strconv.FormatFloat(a.Fraction, 'g', -1, 64)
}

// ObjectiveCoefficient is benefit − PNR − safety cost − PRP.
// Resurfacing cost is charged by the budget row only.
func (a Alternative) ObjectiveCoefficient() float64 {
	return a.Benefits.Total() - a.Penalties.NotResurfacing - a.Costs.Safety - a.Penalties.ResurfacingWithoutSafety
}

// AlternativeSet is an arena of alternatives laid out site by site.
// The flat position of an alternative is its decision-variable index.
type AlternativeSet struct {
	sites   []string
	offsets []int
	alts    []Alternative
}

// NewAlternativeSet flattens per-site alternative lists.
// Every site must lead with its single do-nothing alternative.
func NewAlternativeSet(siteIDs []string, perSite [][]Alternative) (*AlternativeSet, error) {
	if len(siteIDs) != len(perSite) {
		return nil, fmt.Errorf("new alternative set: %d site ids for %d alternative lists", len(siteIDs), len(perSite))
	}

	total := 0
	for _, alts := range perSite {
		total += len(alts)
	}

	set := &AlternativeSet{
		sites:   slices.Clone(siteIDs),
		offsets: make([]int, 0, len(siteIDs)+1),
		alts:    make([]Alternative, 0, total),
	}

	seen := make(map[string]struct{}, len(siteIDs))
	for i, alts := range perSite {
		if _, dup := seen[siteIDs[i]]; dup {
			return nil, fmt.Errorf("new alternative set: duplicate site id %q", siteIDs[i])
		}
		seen[siteIDs[i]] = struct{}{}

		if len(alts) == 0 || !alts[0].IsDoNothing() {
			return nil, fmt.Errorf("new alternative set: site %q must start with a do-nothing alternative", siteIDs[i])
		}

		set.offsets = append(set.offsets, len(set.alts))
		keys := make(map[string]struct{}, len(alts))
		for j, a := range alts {
			if j > 0 && a.IsDoNothing() {
				return nil, fmt.Errorf("new alternative set: site %q has more than one do-nothing alternative", siteIDs[i])
			}
			if _, dup := keys[a.Key()]; dup {
				return nil, fmt.Errorf("new alternative set: site %q duplicate alternative %s", siteIDs[i], a.Key())
			}
			keys[a.Key()] = struct{}{}

			a.SiteIndex = i
			a.Index = j
			a.SiteID = siteIDs[i]
			a.Treatments = slices.Clone(a.Treatments)
			set.alts = append(set.alts, a)
		}
	}
	set.offsets = append(set.offsets, len(set.alts))

	return set, nil
}

// SiteCount returns the number of sites.
func (s *AlternativeSet) SiteCount() int { return len(s.sites) }

// SiteID returns the identifier of site i.
func (s *AlternativeSet) SiteID(i int) string { return s.sites[i] }

// Len returns the number of alternatives across all sites.
func (s *AlternativeSet) Len() int { return len(s.alts) }

// Range returns the half-open flat index range of site i.
func (s *AlternativeSet) Range(i int) (start, end int) { return s.offsets[i], s.offsets[i+1] }

// At returns a copy of the alternative at flat index k.
func (s *AlternativeSet) At(k int) Alternative {
	a := s.alts[k]
	a.Treatments = slices.Clone(a.Treatments)
	return a
}

// FlatIndex maps (site index, alternative index) to the flat index.
func (s *AlternativeSet) FlatIndex(site, alt int) int { return s.offsets[site] + alt }

// SiteAlternatives returns copies of the alternatives of site i, in enumeration order.
func (s *AlternativeSet) SiteAlternatives(i int) []Alternative {
	start, end := s.Range(i)
	out := make([]Alternative, 0, end-start)
	for k := start; k < end; k++ {
		out = append(out, s.At(k))
	}
	return out
}

// DecisionVariable binds one site to one of its alternatives; domain {0, 1}.
type DecisionVariable struct {
	Index     int
	SiteIndex int
	AltIndex  int
	Name      string
}

// AlternativeRecord is a precomputed alternative loaded from a published table.
// Do-nothing is implied and never listed.
type AlternativeRecord struct {
	SiteID      string
	AltID       string
	Description string
	Treatments  []string
	Costs       Costs
	Benefits    Benefits
	// Flags that drive the resurfacing-without-safety penalty.
	Resurfacing bool
	Geometric   bool
}
