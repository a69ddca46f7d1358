package services

import (
	"fmt"
	"math"

	"site-selection-service/internal/domain"
	"site-selection-service/internal/ports"
)

// BudgetRowName names the single budget cut in every selection model.
const BudgetRowName = "budget"

// BuildSelectionModel turns an alternative arena into a binary maximization model:
// one variable per alternative (flat arena order), an exactly-one row per site, and
// a budget row charging resurfacing plus safety cost.
//
// The objective leaves resurfacing cost out while the budget row includes it.
func BuildSelectionModel(set *domain.AlternativeSet, budget float64) (*ports.Model, []domain.DecisionVariable, error) {
	if set == nil || set.SiteCount() == 0 {
		return nil, nil, fmt.Errorf("build selection model: no sites")
	}
	if budget < 0 || math.IsNaN(budget) {
		return nil, nil, &domain.ValidationError{Field: "budget", Value: budget, Reason: "must be non-negative"}
	}

	n := set.Len()
	model := &ports.Model{
		Names:     make([]string, n),
		Objective: make([]float64, n),
		Maximize:  true,
		Rows:      make([]ports.Constraint, 0, set.SiteCount()+1),
	}
	vars := make([]domain.DecisionVariable, n)

	budgetRow := ports.Constraint{
		Name:  BudgetRowName,
		Sense: ports.LessEqual,
		RHS:   budget,
	}

	for i := 0; i < set.SiteCount(); i++ {
		start, end := set.Range(i)
		row := ports.Constraint{
			Name:      "one_" + set.SiteID(i),
			Indices:   make([]int, 0, end-start),
			Coeffs:    make([]float64, 0, end-start),
			Sense:     ports.Equal,
			RHS:       1,
			Partition: true,
		}

		for k := start; k < end; k++ {
			a := set.At(k)
			coef := a.ObjectiveCoefficient()
			if math.IsNaN(coef) || math.IsInf(coef, 0) {
				return nil, nil, fmt.Errorf("build selection model: site %s alternative %d: non-finite objective coefficient", a.SiteID, a.Index)
			}

			name := fmt.Sprintf("x_%s_%d", a.SiteID, a.Index)
			model.Names[k] = name
			model.Objective[k] = coef
			vars[k] = domain.DecisionVariable{Index: k, SiteIndex: i, AltIndex: a.Index, Name: name}

			row.Indices = append(row.Indices, k)
			row.Coeffs = append(row.Coeffs, 1)

			if cost := a.Costs.Total(); cost != 0 {
				budgetRow.Indices = append(budgetRow.Indices, k)
				budgetRow.Coeffs = append(budgetRow.Coeffs, cost)
			}
		}

		model.Rows = append(model.Rows, row)
	}
	model.Rows = append(model.Rows, budgetRow)

	return model, vars, nil
}
