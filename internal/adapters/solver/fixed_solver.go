package solver

import (
	"context"
	"sync"
	"time"

	"site-selection-service/internal/ports"
)

// FixedSolver returns a preset answer. Used to exercise status handling without a search.
type FixedSolver struct {
	Result ports.SolveResult
	Err    error

	mu     sync.Mutex
	calls  int
	models []*ports.Model
}

func NewFixedSolver(result ports.SolveResult, err error) *FixedSolver {
	return &FixedSolver{Result: result, Err: err}
}

func (f *FixedSolver) Solve(ctx context.Context, model *ports.Model, timeout time.Duration) (ports.SolveResult, error) {
	f.mu.Lock()
	f.calls++
	f.models = append(f.models, model)
	f.mu.Unlock()

	if f.Err != nil {
		return ports.SolveResult{}, f.Err
	}
	return f.Result, nil
}

// Calls returns how many times Solve ran.
func (f *FixedSolver) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// LastModel returns the model of the most recent call, or nil.
func (f *FixedSolver) LastModel() *ports.Model {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.models) == 0 {
		return nil
	}
	return f.models[len(f.models)-1]
}
