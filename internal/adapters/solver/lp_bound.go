package solver

import (
	"log"

	"site-selection-service/internal/ports"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"
)

// Dense LP relaxations larger than this are skipped.
const maxLPCells = 4_000_000

const lpTol = 1e-9

// LPRelaxationBound solves the continuous relaxation (0 <= x <= 1) of model and
// returns its optimal objective in the model's own sense. ok is false when the
// relaxation is too large, infeasible, or the simplex fails.
func LPRelaxationBound(model *ports.Model) (bound float64, ok bool) {
	c, a, b := standardForm(model)
	if a == nil {
		return 0, false
	}
	rows, cols := a.Dims()
	if rows == 0 || cols <= rows || rows*cols > maxLPCells {
		return 0, false
	}

	defer func() {
		if r := recover(); r != nil {
			log.Printf("solver=lp_relaxation warn=%v", r)
			bound, ok = 0, false
		}
	}()

	optF, _, err := lp.Simplex(c, a, b, lpTol, nil)
	if err != nil {
		return 0, false
	}
	if model.Maximize {
		return -optF, true
	}
	return optF, true
}

// standardForm writes min cᵀx s.t. Ax = b, x >= 0 with one slack per inequality
// and per variable upper bound not already implied by an exactly-one row.
func standardForm(model *ports.Model) (c []float64, a *mat.Dense, b []float64) {
	n := model.NumVars()

	covered := make([]bool, n)
	var rows []ports.Constraint
	for _, row := range model.Rows {
		if len(row.Indices) == 0 {
			if row.Sense == ports.Equal && row.RHS != 0 {
				return nil, nil, nil
			}
			continue
		}
		if isPartition(row) {
			for _, j := range row.Indices {
				covered[j] = true
			}
		}
		rows = append(rows, row)
	}

	slacks := 0
	for _, row := range rows {
		if row.Sense != ports.Equal {
			slacks++
		}
	}
	for j := 0; j < n; j++ {
		if !covered[j] {
			slacks++
		}
	}

	m := len(rows)
	for j := 0; j < n; j++ {
		if !covered[j] {
			m++
		}
	}
	cols := n + slacks

	c = make([]float64, cols)
	copy(c, model.Objective)
	if model.Maximize {
		floats.Scale(-1, c[:n])
	}

	a = mat.NewDense(m, cols, nil)
	b = make([]float64, m)
	s := n
	r := 0
	for _, row := range rows {
		for k, j := range row.Indices {
			a.Set(r, j, a.At(r, j)+row.Coeffs[k])
		}
		switch row.Sense {
		case ports.LessEqual:
			a.Set(r, s, 1)
			s++
		case ports.GreaterEqual:
			a.Set(r, s, -1)
			s++
		}
		b[r] = row.RHS
		r++
	}
	for j := 0; j < n; j++ {
		if covered[j] {
			continue
		}
		a.Set(r, j, 1)
		a.Set(r, s, 1)
		b[r] = 1
		s++
		r++
	}

	// The simplex phase one expects a non-negative right-hand side.
	for i := range b {
		if b[i] < 0 {
			b[i] = -b[i]
			row := a.RawRowView(i)
			floats.Scale(-1, row)
		}
	}

	return c, a, b
}
