package solver

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"slices"
	"time"

	"site-selection-service/internal/ports"
)

const (
	feasTol = 1e-6
	objTol  = 1e-9
	// Deadline and context are polled every pollEvery nodes.
	pollEvery = 1 << 10
)

// BranchAndBound implements ports.Solver for binary models whose variables are
// mostly covered by disjoint exactly-one rows, such as site selection.
//
// Each exactly-one row becomes one branching unit choosing a single variable;
// every other variable is a unit choosing 0 or 1. Search is depth-first with
// choices tried in descending objective order, so among equal optima the
// lowest-indexed choice wins and results are reproducible.
type BranchAndBound struct {
	// MaxNodes stops the search with StatusFeasible once exceeded; zero means unlimited.
	MaxNodes int
	// LPBound enables the gonum LP relaxation for the reported root bound.
	LPBound bool
}

func NewBranchAndBound(maxNodes int) *BranchAndBound {
	return &BranchAndBound{MaxNodes: maxNodes, LPBound: true}
}

// choice sets one variable of a unit to 1, or none when varIdx < 0.
type choice struct {
	varIdx int
	obj    float64
	// Contribution to every side row, indexed like problem.side.
	act []float64
}

type unit struct {
	choices []choice
}

type problem struct {
	n     int
	units []unit
	side  []ports.Constraint
	// Suffix tables indexed by unit depth (len(units)+1 entries).
	sufBest []float64
	sufMin  [][]float64
	sufMax  [][]float64
	// Lagrangian relaxation of one <= row; lagRow < 0 when unused.
	lagRow    int
	lambda    float64
	sufLagMax []float64
}

type search struct {
	p        *problem
	ctx      context.Context
	deadline time.Time
	maxNodes int

	nodes     int
	stopped   ports.SolveStatus
	cancelErr error

	picks    []int
	best     []int
	bestObj  float64
	haveBest bool
	activity []float64
}

func (b *BranchAndBound) Solve(ctx context.Context, model *ports.Model, timeout time.Duration) (ports.SolveResult, error) {
	start := time.Now()
	if model == nil || model.NumVars() == 0 {
		return ports.SolveResult{}, errors.New("branch and bound: empty model")
	}
	if len(model.Names) != 0 && len(model.Names) != model.NumVars() {
		return ports.SolveResult{}, fmt.Errorf("branch and bound: %d names for %d variables", len(model.Names), model.NumVars())
	}

	// Internally every model is a maximization.
	sign := 1.0
	if !model.Maximize {
		sign = -1.0
	}

	p, err := newProblem(model, sign)
	if err != nil {
		return ports.SolveResult{}, fmt.Errorf("branch and bound: %w", err)
	}

	rootBound := p.boundAt(0, 0, make([]float64, len(p.side)))
	if b.LPBound {
		if lpObj, ok := LPRelaxationBound(model); ok {
			if v := sign * lpObj; v < rootBound {
				rootBound = v
			}
		}
	}

	s := &search{
		p:        p,
		ctx:      ctx,
		maxNodes: b.MaxNodes,
		picks:    make([]int, len(p.units)),
		activity: make([]float64, len(p.side)),
		bestObj:  math.Inf(-1),
	}
	if timeout > 0 {
		s.deadline = start.Add(timeout)
	}
	if d, ok := ctx.Deadline(); ok && (s.deadline.IsZero() || d.Before(s.deadline)) {
		s.deadline = d
	}

	s.dfs(0, 0)

	if s.cancelErr != nil {
		return ports.SolveResult{}, fmt.Errorf("branch and bound: %w", s.cancelErr)
	}

	res := ports.SolveResult{
		Nodes:   s.nodes,
		Runtime: time.Since(start),
	}

	if !s.haveBest {
		switch s.stopped {
		case ports.StatusTimeout:
			res.Status = ports.StatusTimeout
			res.Message = "time limit reached before any feasible assignment"
		default:
			res.Status = ports.StatusInfeasible
			res.Message = "no assignment satisfies every row"
		}
		return res, nil
	}

	res.Assignment = p.assignment(s.best)
	res.Objective = sign * s.bestObj
	switch s.stopped {
	case "":
		res.Status = ports.StatusOptimal
		res.Bound = res.Objective
	default:
		res.Status = s.stopped
		res.Bound = sign * math.Max(rootBound, s.bestObj)
	}

	log.Printf("solver=branch_and_bound status=%s nodes=%d objective=%.2f dur=%dms", res.Status, res.Nodes, res.Objective, res.Runtime.Milliseconds())

	return res, nil
}

func newProblem(model *ports.Model, sign float64) (*problem, error) {
	n := model.NumVars()
	owner := make([]int, n)
	for j := range owner {
		owner[j] = -1
	}

	p := &problem{n: n, lagRow: -1}
	var partitions []ports.Constraint

	for _, row := range model.Rows {
		if len(row.Indices) != len(row.Coeffs) {
			return nil, fmt.Errorf("row %q: %d indices for %d coefficients", row.Name, len(row.Indices), len(row.Coeffs))
		}
		for _, j := range row.Indices {
			if j < 0 || j >= n {
				return nil, fmt.Errorf("row %q: variable index %d out of range", row.Name, j)
			}
		}

		if isPartition(row) && claim(owner, row.Indices, len(partitions)) {
			partitions = append(partitions, row)
			continue
		}
		p.side = append(p.side, row)
	}

	coef := make([][]float64, len(p.side))
	for r, row := range p.side {
		coef[r] = make([]float64, n)
		for k, j := range row.Indices {
			coef[r][j] += row.Coeffs[k]
		}
	}
	mk := func(j int) choice {
		c := choice{varIdx: j, act: make([]float64, len(p.side))}
		if j >= 0 {
			c.obj = sign * model.Objective[j]
			for r := range p.side {
				c.act[r] = coef[r][j]
			}
		}
		return c
	}

	for _, row := range partitions {
		u := unit{}
		for _, j := range row.Indices {
			u.choices = append(u.choices, mk(j))
		}
		p.units = append(p.units, u)
	}
	for j := 0; j < n; j++ {
		if owner[j] < 0 {
			p.units = append(p.units, unit{choices: []choice{mk(-1), mk(j)}})
		}
	}

	for i := range p.units {
		sortChoices(p.units[i].choices)
	}

	p.tabulate()
	p.fitLagrangian()
	return p, nil
}

func isPartition(row ports.Constraint) bool {
	if row.Sense != ports.Equal || math.Abs(row.RHS-1) > feasTol || len(row.Indices) == 0 {
		return false
	}
	for _, c := range row.Coeffs {
		if c != 1 {
			return false
		}
	}
	return true
}

// claim assigns variables to a partition unit when none is already owned.
func claim(owner []int, indices []int, id int) bool {
	for _, j := range indices {
		if owner[j] >= 0 {
			return false
		}
	}
	seen := make(map[int]struct{}, len(indices))
	for _, j := range indices {
		if _, dup := seen[j]; dup {
			return false
		}
		seen[j] = struct{}{}
	}
	for _, j := range indices {
		owner[j] = id
	}
	return true
}

// sortChoices orders by descending objective, ties by ascending variable index
// with the "none" choice first.
func sortChoices(cs []choice) {
	slices.SortStableFunc(cs, func(a, b choice) int {
		switch {
		case a.obj > b.obj:
			return -1
		case a.obj < b.obj:
			return 1
		case a.varIdx < b.varIdx:
			return -1
		case a.varIdx > b.varIdx:
			return 1
		}
		return 0
	})
}

func (p *problem) tabulate() {
	k := len(p.units)
	m := len(p.side)
	p.sufBest = make([]float64, k+1)
	p.sufMin = make([][]float64, k+1)
	p.sufMax = make([][]float64, k+1)
	p.sufMin[k] = make([]float64, m)
	p.sufMax[k] = make([]float64, m)

	for u := k - 1; u >= 0; u-- {
		best := math.Inf(-1)
		mins := slices.Clone(p.sufMin[u+1])
		maxs := slices.Clone(p.sufMax[u+1])
		for r := 0; r < m; r++ {
			lo, hi := math.Inf(1), math.Inf(-1)
			for _, c := range p.units[u].choices {
				lo = math.Min(lo, c.act[r])
				hi = math.Max(hi, c.act[r])
			}
			mins[r] += lo
			maxs[r] += hi
		}
		for _, c := range p.units[u].choices {
			best = math.Max(best, c.obj)
		}
		p.sufBest[u] = p.sufBest[u+1] + best
		p.sufMin[u] = mins
		p.sufMax[u] = maxs
	}
}

func (p *problem) lagrangianAt(lambda float64, r int) []float64 {
	k := len(p.units)
	suf := make([]float64, k+1)
	for u := k - 1; u >= 0; u-- {
		best := math.Inf(-1)
		for _, c := range p.units[u].choices {
			best = math.Max(best, c.obj-lambda*c.act[r])
		}
		suf[u] = suf[u+1] + best
	}
	return suf
}

// fitLagrangian relaxes the first <= side row into the objective. The dual
// function is convex in the multiplier, so a ternary search finds its minimum.
func (p *problem) fitLagrangian() {
	r := -1
	for i, row := range p.side {
		if row.Sense == ports.LessEqual {
			r = i
			break
		}
	}
	if r < 0 {
		return
	}

	hi := 0.0
	for _, u := range p.units {
		for _, c := range u.choices {
			if c.act[r] > 0 {
				hi = math.Max(hi, math.Abs(c.obj)/c.act[r])
			}
		}
	}
	if hi == 0 {
		return
	}
	hi *= 2

	rhs := p.side[r].RHS
	dual := func(l float64) float64 { return p.lagrangianAt(l, r)[0] + l*rhs }

	lo := 0.0
	for iter := 0; iter < 100; iter++ {
		m1 := lo + (hi-lo)/3
		m2 := hi - (hi-lo)/3
		if dual(m1) <= dual(m2) {
			hi = m2
		} else {
			lo = m1
		}
	}

	p.lagRow = r
	p.lambda = (lo + hi) / 2
	p.sufLagMax = p.lagrangianAt(p.lambda, r)
}

// boundAt is an upper bound on any completion from unit depth d.
func (p *problem) boundAt(d int, obj float64, activity []float64) float64 {
	bound := obj + p.sufBest[d]
	if p.lagRow >= 0 {
		lag := obj + p.sufLagMax[d] + p.lambda*(p.side[p.lagRow].RHS-activity[p.lagRow])
		bound = math.Min(bound, lag)
	}
	return bound
}

// reachable reports whether every side row can still be met from depth d.
func (p *problem) reachable(d int, activity []float64) bool {
	for r, row := range p.side {
		lo := activity[r] + p.sufMin[d][r]
		hi := activity[r] + p.sufMax[d][r]
		switch row.Sense {
		case ports.LessEqual:
			if lo > row.RHS+feasTol {
				return false
			}
		case ports.GreaterEqual:
			if hi < row.RHS-feasTol {
				return false
			}
		default:
			if lo > row.RHS+feasTol || hi < row.RHS-feasTol {
				return false
			}
		}
	}
	return true
}

func (p *problem) assignment(picks []int) []float64 {
	x := make([]float64, p.n)
	for u, ci := range picks {
		if j := p.units[u].choices[ci].varIdx; j >= 0 {
			x[j] = 1
		}
	}
	return x
}

func (s *search) dfs(d int, obj float64) {
	if s.stopped != "" || s.cancelErr != nil {
		return
	}

	s.nodes++
	if s.nodes%pollEvery == 0 {
		if err := s.ctx.Err(); err != nil && !errors.Is(err, context.DeadlineExceeded) {
			s.cancelErr = err
			return
		}
		if !s.deadline.IsZero() && time.Now().After(s.deadline) {
			s.stopped = ports.StatusTimeout
			return
		}
	}
	if s.maxNodes > 0 && s.nodes > s.maxNodes && s.haveBest {
		s.stopped = ports.StatusFeasible
		return
	}

	p := s.p
	if !p.reachable(d, s.activity) {
		return
	}
	if s.haveBest && p.boundAt(d, obj, s.activity) <= s.bestObj+objTol {
		return
	}

	if d == len(p.units) {
		if !s.haveBest || obj > s.bestObj+objTol {
			s.best = slices.Clone(s.picks)
			s.bestObj = obj
			s.haveBest = true
		}
		return
	}

	for ci, c := range p.units[d].choices {
		s.picks[d] = ci
		for r := range s.activity {
			s.activity[r] += c.act[r]
		}
		s.dfs(d+1, obj+c.obj)
		for r := range s.activity {
			s.activity[r] -= c.act[r]
		}
		if s.stopped != "" || s.cancelErr != nil {
			return
		}
	}
}
