package dto

import (
	"math"
	"time"

	"site-selection-service/internal/domain"

	"github.com/shopspring/decimal"
)

type SelectionRequest struct {
	Scenario        string   `json:"scenario"`
	Budget          *float64 `json:"budget"`
	DiscountRate    *float64 `json:"discount_rate"`
	AnalysisHorizon *int     `json:"analysis_horizon"`
}

type SelectionResponse struct {
	SiteID            string   `json:"site_id"`
	AltIndex          int      `json:"alt_index"`
	Description       string   `json:"description"`
	Treatments        []string `json:"treatments"`
	Fraction          float64  `json:"fraction"`
	ResurfacingCost   float64  `json:"resurfacing_cost"`
	SafetyCost        float64  `json:"safety_cost"`
	SafetyBenefit     float64  `json:"safety_benefit"`
	OperationsBenefit float64  `json:"operations_benefit"`
	ConditionBenefit  float64  `json:"condition_benefit"`
	Penalties         float64  `json:"penalties"`
	Objective         float64  `json:"objective"`
}

type TotalsResponse struct {
	ResurfacingCost   decimal.Decimal `json:"resurfacing_cost"`
	SafetyCost        decimal.Decimal `json:"safety_cost"`
	TotalCost         decimal.Decimal `json:"total_cost"`
	SafetyBenefit     decimal.Decimal `json:"safety_benefit"`
	OperationsBenefit decimal.Decimal `json:"operations_benefit"`
	ConditionBenefit  decimal.Decimal `json:"condition_benefit"`
	TotalBenefit      decimal.Decimal `json:"total_benefit"`
	Penalties         decimal.Decimal `json:"penalties"`
	NetBenefit        decimal.Decimal `json:"net_benefit"`
}

type SolutionResponse struct {
	Status            string              `json:"status"`
	Quality           string              `json:"quality"`
	Budget            float64             `json:"budget"`
	BudgetUtilization float64             `json:"budget_utilization"`
	Objective         float64             `json:"objective"`
	Bound             *float64            `json:"bound"`
	Gap               *float64            `json:"gap"`
	RuntimeMS         int64               `json:"runtime_ms"`
	SitesImproved     int                 `json:"sites_improved"`
	SitesDeferred     int                 `json:"sites_deferred"`
	Totals            TotalsResponse      `json:"totals"`
	Selections        []SelectionResponse `json:"selections"`
}

type SysInfoResponse struct {
	Platform string `json:"platform"`
	CPU      string `json:"cpu"`
	RAM      string `json:"ram"`
}

type RunResponse struct {
	RunID     string           `json:"run_id"`
	Scenario  string           `json:"scenario"`
	StartedAt time.Time        `json:"started_at"`
	Solution  SolutionResponse `json:"solution"`
	Warnings  []string         `json:"warnings"`
	System    SysInfoResponse  `json:"system"`
}

// JSON cannot carry NaN or infinities.
func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func NewSolutionResponse(s *domain.Solution) SolutionResponse {
	res := SolutionResponse{
		Status:            s.Status,
		Quality:           string(s.Quality),
		Budget:            s.Budget,
		BudgetUtilization: s.BudgetUtilization(),
		Objective:         s.Objective,
		Bound:             finite(s.Bound),
		Gap:               finite(s.Gap),
		RuntimeMS:         s.Runtime.Milliseconds(),
		SitesImproved:     s.SitesImproved,
		SitesDeferred:     s.SitesDeferred,
		Totals: TotalsResponse{
			ResurfacingCost:   s.Totals.ResurfacingCost,
			SafetyCost:        s.Totals.SafetyCost,
			TotalCost:         s.Totals.TotalCost,
			SafetyBenefit:     s.Totals.SafetyBenefit,
			OperationsBenefit: s.Totals.OperationsBenefit,
			ConditionBenefit:  s.Totals.ConditionBenefit,
			TotalBenefit:      s.Totals.TotalBenefit,
			Penalties:         s.Totals.Penalties,
			NetBenefit:        s.Totals.NetBenefit,
		},
		Selections: make([]SelectionResponse, 0, len(s.Selections)),
	}

	for _, sel := range s.Selections {
		a := sel.Alternative
		treatments := a.Treatments
		if treatments == nil {
			treatments = []string{}
		}
		res.Selections = append(res.Selections, SelectionResponse{
			SiteID:            sel.SiteID,
			AltIndex:          a.Index,
			Description:       a.Description,
			Treatments:        treatments,
			Fraction:          a.Fraction,
			ResurfacingCost:   a.Costs.Resurfacing,
			SafetyCost:        a.Costs.Safety,
			SafetyBenefit:     a.Benefits.Safety,
			OperationsBenefit: a.Benefits.Operations,
			ConditionBenefit:  a.Benefits.Condition,
			Penalties:         a.Penalties.Total(),
			Objective:         sel.Objective,
		})
	}

	return res
}

func NewRunResponse(run domain.SelectionRun) RunResponse {
	res := RunResponse{
		RunID:     run.RunID,
		Scenario:  run.Scenario,
		StartedAt: run.StartedAt,
		Warnings:  run.Warnings,
		System: SysInfoResponse{
			Platform: run.System.Platform,
			CPU:      run.System.CPU,
			RAM:      run.System.RAM,
		},
	}
	if res.Warnings == nil {
		res.Warnings = []string{}
	}
	if run.Solution != nil {
		res.Solution = NewSolutionResponse(run.Solution)
	}
	return res
}
