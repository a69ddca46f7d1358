package ports

import (
	"context"
	"time"
)

// Row sense of a linear constraint.
type Sense int

const (
	LessEqual Sense = iota
	Equal
	GreaterEqual
)

func (s Sense) String() string {
	switch s {
	case LessEqual:
		return "<="
	case Equal:
		return "="
	case GreaterEqual:
		return ">="
	}
	return "?"
}

// Sparse linear row: Σ Coeffs[k]·x[Indices[k]] Sense RHS.
type Constraint struct {
	Name    string
	Indices []int
	Coeffs  []float64
	Sense   Sense
	RHS     float64
	// Partition marks an exactly-one row over binary variables with unit coefficients.
	Partition bool
}

// Solver-neutral binary optimization model. Every variable has domain {0, 1}.
type Model struct {
	Names     []string
	Objective []float64
	Maximize  bool
	Rows      []Constraint
}

// NumVars returns the number of decision variables.
func (m *Model) NumVars() int { return len(m.Objective) }

// Activity evaluates a row at an assignment.
func (c Constraint) Activity(x []float64) float64 {
	total := 0.0
	for k, j := range c.Indices {
		total += c.Coeffs[k] * x[j]
	}
	return total
}

// Satisfied reports whether the assignment meets the row within tol.
func (c Constraint) Satisfied(x []float64, tol float64) bool {
	a := c.Activity(x)
	switch c.Sense {
	case LessEqual:
		return a <= c.RHS+tol
	case GreaterEqual:
		return a >= c.RHS-tol
	default:
		return a >= c.RHS-tol && a <= c.RHS+tol
	}
}

type SolveStatus string

const (
	StatusOptimal    SolveStatus = "optimal"
	StatusFeasible   SolveStatus = "feasible"
	StatusInfeasible SolveStatus = "infeasible"
	StatusTimeout    SolveStatus = "timeout"
	StatusError      SolveStatus = "error"
)

// Answer of one solver invocation.
// Assignment is nil when no incumbent exists.
type SolveResult struct {
	Status     SolveStatus
	Assignment []float64
	Objective  float64
	// Best proven bound on the objective; equal to Objective when optimal.
	Bound   float64
	Nodes   int
	Runtime time.Duration
	Message string
}

// Contract for an external mixed-integer solver.
type Solver interface {
	// Solve must honor ctx cancellation and the timeout, returning the best
	// incumbent with StatusTimeout when the limit expires.
	Solve(ctx context.Context, model *Model, timeout time.Duration) (SolveResult, error)
}
