package services

import (
	"fmt"
	"math"

	"site-selection-service/internal/domain"
	"site-selection-service/internal/ports"

	"github.com/shopspring/decimal"
)

const (
	selectedThreshold = 0.5
	// Absolute slack on the budget row, in currency units.
	budgetTolerance = 1e-6
)

// MapSolution reads a solver answer back onto the alternative arena.
//
// Infeasible answers and assignments that break exactly-one or the budget are
// *SolverContractError. A timeout with an incumbent yields a time_limit solution
// plus a *SolverTimeoutError warning.
func MapSolution(set *domain.AlternativeSet, model *ports.Model, res ports.SolveResult, budget float64) (*domain.Solution, []error, error) {
	var warnings []error
	quality := domain.QualityOptimal

	switch res.Status {
	case ports.StatusOptimal:
	case ports.StatusFeasible:
		quality = domain.QualityFeasible
	case ports.StatusTimeout:
		timeoutErr := &domain.SolverTimeoutError{Elapsed: res.Runtime, HasIncumbent: res.Assignment != nil}
		if res.Assignment == nil {
			return nil, nil, fmt.Errorf("map solution: %w", timeoutErr)
		}
		quality = domain.QualityTimeLimit
		warnings = append(warnings, timeoutErr)
	case ports.StatusInfeasible:
		return nil, nil, &domain.SolverContractError{
			Status: string(res.Status),
			Reason: "selection models always admit the all-do-nothing assignment",
		}
	case ports.StatusError:
		return nil, nil, fmt.Errorf("map solution: solver error: %s", res.Message)
	default:
		return nil, nil, &domain.SolverContractError{Status: string(res.Status), Reason: "unknown solver status"}
	}

	if len(res.Assignment) != set.Len() || len(res.Assignment) != model.NumVars() {
		return nil, nil, &domain.SolverContractError{
			Status: string(res.Status),
			Reason: fmt.Sprintf("assignment has %d values for %d variables", len(res.Assignment), set.Len()),
		}
	}

	sol := &domain.Solution{
		Status:     string(res.Status),
		Quality:    quality,
		Selections: make([]domain.Selection, 0, set.SiteCount()),
		Budget:     budget,
		Objective:  res.Objective,
		Bound:      res.Bound,
		Gap:        relativeGap(res.Objective, res.Bound),
		Runtime:    res.Runtime,
	}

	var (
		resurf    = decimal.Zero
		safety    = decimal.Zero
		safetyB   = decimal.Zero
		opsB      = decimal.Zero
		condB     = decimal.Zero
		penalties = decimal.Zero
		net       = decimal.Zero
	)
	spent := 0.0

	for i := 0; i < set.SiteCount(); i++ {
		start, end := set.Range(i)
		chosen := -1
		for k := start; k < end; k++ {
			if res.Assignment[k] <= selectedThreshold {
				continue
			}
			if chosen >= 0 {
				return nil, nil, &domain.SolverContractError{
					Status: string(res.Status),
					Reason: fmt.Sprintf("site %s has more than one selected alternative", set.SiteID(i)),
				}
			}
			chosen = k
		}
		if chosen < 0 {
			return nil, nil, &domain.SolverContractError{
				Status: string(res.Status),
				Reason: fmt.Sprintf("site %s has no selected alternative", set.SiteID(i)),
			}
		}

		a := set.At(chosen)
		coef := a.ObjectiveCoefficient()
		sol.Selections = append(sol.Selections, domain.Selection{
			SiteIndex:   i,
			SiteID:      set.SiteID(i),
			Alternative: a,
			Objective:   coef,
		})
		if a.IsDoNothing() {
			sol.SitesDeferred++
		} else {
			sol.SitesImproved++
		}

		spent += a.Costs.Total()
		resurf = resurf.Add(decimal.NewFromFloat(a.Costs.Resurfacing))
		safety = safety.Add(decimal.NewFromFloat(a.Costs.Safety))
		safetyB = safetyB.Add(decimal.NewFromFloat(a.Benefits.Safety))
		opsB = opsB.Add(decimal.NewFromFloat(a.Benefits.Operations))
		condB = condB.Add(decimal.NewFromFloat(a.Benefits.Condition))
		penalties = penalties.Add(decimal.NewFromFloat(a.Penalties.Total()))
		net = net.Add(decimal.NewFromFloat(coef))
	}

	if spent > budget+budgetTolerance {
		return nil, nil, &domain.SolverContractError{
			Status: string(res.Status),
			Reason: fmt.Sprintf("selected cost %.2f exceeds budget %.2f", spent, budget),
		}
	}

	sol.Totals = domain.Totals{
		ResurfacingCost:   resurf.Round(2),
		SafetyCost:        safety.Round(2),
		TotalCost:         resurf.Add(safety).Round(2),
		SafetyBenefit:     safetyB.Round(2),
		OperationsBenefit: opsB.Round(2),
		ConditionBenefit:  condB.Round(2),
		TotalBenefit:      safetyB.Add(opsB).Add(condB).Round(2),
		Penalties:         penalties.Round(2),
		NetBenefit:        net.Round(2),
	}

	return sol, warnings, nil
}

func relativeGap(objective, bound float64) float64 {
	if math.IsNaN(bound) || math.IsInf(bound, 0) {
		return math.Inf(1)
	}
	diff := math.Abs(bound - objective)
	if diff < 1e-9 {
		return 0
	}
	return diff / math.Max(math.Abs(objective), 1e-9)
}
