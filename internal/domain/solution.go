package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Quality flags how far a solution can be trusted.
type Quality string

const (
	QualityOptimal Quality = "optimal"
	// Feasible: the solver stopped early (node limit) with a valid incumbent.
	QualityFeasible Quality = "feasible"
	// TimeLimit: the incumbent was returned because the time limit expired.
	QualityTimeLimit Quality = "time_limit"
)

// Selection is one (site, chosen alternative) pair.
type Selection struct {
	SiteIndex   int
	SiteID      string
	Alternative Alternative
	Objective   float64
}

// Aggregate money figures of a solution, rounded to cents.
type Totals struct {
	ResurfacingCost   decimal.Decimal
	SafetyCost        decimal.Decimal
	TotalCost         decimal.Decimal
	SafetyBenefit     decimal.Decimal
	OperationsBenefit decimal.Decimal
	ConditionBenefit  decimal.Decimal
	TotalBenefit      decimal.Decimal
	Penalties         decimal.Decimal
	// Sum of objective coefficients of the selected pairs.
	NetBenefit decimal.Decimal
}

// Represents the answer of one optimization run.
// Produced once per solver invocation and read-only afterwards.
type Solution struct {
	Status     string
	Quality    Quality
	Selections []Selection
	Totals     Totals
	Budget     float64
	// Objective value reported by the solver and its best bound.
	Objective float64
	Bound     float64
	Gap       float64
	Runtime   time.Duration

	SitesImproved int
	SitesDeferred int
}

// BudgetUtilization returns total cost over budget.
func (s *Solution) BudgetUtilization() float64 {
	if s.Budget <= 0 {
		return 0
	}
	return s.Totals.TotalCost.InexactFloat64() / s.Budget
}

// Selected returns the chosen alternative of a site by id.
func (s *Solution) Selected(siteID string) (Alternative, bool) {
	for _, sel := range s.Selections {
		if sel.SiteID == siteID {
			return sel.Alternative, true
		}
	}
	return Alternative{}, false
}

// DoNothingSites lists site ids deferred to the baseline, in site order.
func (s *Solution) DoNothingSites() []string {
	var ids []string
	for _, sel := range s.Selections {
		if sel.Alternative.IsDoNothing() {
			ids = append(ids, sel.SiteID)
		}
	}
	return ids
}

// SysInfo records where a run was computed.
type SysInfo struct {
	Platform string
	CPU      string
	RAM      string
}

// SelectionRun is the persisted record of one pipeline execution.
type SelectionRun struct {
	RunID     string
	Scenario  string
	StartedAt time.Time
	Solution  *Solution
	Warnings  []string
	System    SysInfo
}
