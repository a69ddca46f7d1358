package services

import (
	"context"
	"errors"
	"testing"

	"site-selection-service/internal/adapters/solver"
	"site-selection-service/internal/domain"
	"site-selection-service/internal/ports"
)

func TestPlanSelectionEndToEnd(t *testing.T) {
	cfg := testConfig()
	cfg.Budget = 600_000
	cfg.Penalty.NotResurfacing.Enabled = true

	sites := []domain.Site{ruralSite(), urbanSite()}
	out, err := PlanSelection(context.Background(), PlanSelectionRequest{Config: cfg}, sites, testCatalog(t), solver.NewBranchAndBound(0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sol := out.Solution
	if len(sol.Selections) != 2 {
		t.Fatalf("selections = %d, want 2", len(sol.Selections))
	}
	if sol.Selections[0].SiteID != "A" || sol.Selections[1].SiteID != "B" {
		t.Fatalf("selections out of site order: %q, %q", sol.Selections[0].SiteID, sol.Selections[1].SiteID)
	}
	if cost := sol.Totals.TotalCost.InexactFloat64(); cost > cfg.Budget {
		t.Fatalf("total cost %.2f exceeds budget %.2f", cost, cfg.Budget)
	}
	if sol.SitesImproved+sol.SitesDeferred != 2 {
		t.Fatalf("improved %d + deferred %d != 2", sol.SitesImproved, sol.SitesDeferred)
	}
	if out.Alternatives.Len() != 13+2 {
		t.Fatalf("alternatives = %d, want 15", out.Alternatives.Len())
	}
	if len(out.Warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", out.Warnings)
	}
}

func TestPlanSelectionIsIdempotent(t *testing.T) {
	cfg := testConfig()
	cfg.Budget = 450_000
	cfg.TravelerMix = map[string]float64{"personal": 0.8, "business": 0.1, "truck": 0.1}
	sites := []domain.Site{ruralSite(), urbanSite()}
	c := testCatalog(t)

	first, err := PlanSelection(context.Background(), PlanSelectionRequest{Config: cfg}, sites, c, solver.NewBranchAndBound(0))
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	firstModel, _, err := BuildSelectionModel(first.Alternatives, cfg.Budget)
	if err != nil {
		t.Fatalf("first model: %v", err)
	}

	for i := 0; i < 20; i++ {
		again, err := PlanSelection(context.Background(), PlanSelectionRequest{Config: cfg}, sites, c, solver.NewBranchAndBound(0))
		if err != nil {
			t.Fatalf("run %d: %v", i, err)
		}

		if again.Alternatives.Len() != first.Alternatives.Len() {
			t.Fatalf("run %d: %d alternatives, want %d", i, again.Alternatives.Len(), first.Alternatives.Len())
		}
		for k := 0; k < first.Alternatives.Len(); k++ {
			got, want := again.Alternatives.At(k), first.Alternatives.At(k)
			if got.Key() != want.Key() || got.Benefits != want.Benefits || got.Costs != want.Costs || got.Penalties != want.Penalties {
				t.Fatalf("run %d alternative %d: %+v, want %+v", i, k, got, want)
			}
			if got.ObjectiveCoefficient() != want.ObjectiveCoefficient() {
				t.Fatalf("run %d alternative %s: coefficient %v, want %v", i, got.Key(), got.ObjectiveCoefficient(), want.ObjectiveCoefficient())
			}
		}

		model, _, err := BuildSelectionModel(again.Alternatives, cfg.Budget)
		if err != nil {
			t.Fatalf("run %d model: %v", i, err)
		}
		for j, v := range model.Objective {
			if v != firstModel.Objective[j] {
				t.Fatalf("run %d objective[%d] = %v, want %v", i, j, v, firstModel.Objective[j])
			}
		}

		for k, sel := range again.Solution.Selections {
			if sel.Alternative.Key() != first.Solution.Selections[k].Alternative.Key() {
				t.Fatalf("run %d site %s: %s, want %s", i, sel.SiteID, sel.Alternative.Key(), first.Solution.Selections[k].Alternative.Key())
			}
		}
		if again.Solution.Objective != first.Solution.Objective {
			t.Fatalf("run %d objective %v, want %v", i, again.Solution.Objective, first.Solution.Objective)
		}
		if !again.Solution.Totals.NetBenefit.Equal(first.Solution.Totals.NetBenefit) {
			t.Fatalf("run %d net benefit %s, want %s", i, again.Solution.Totals.NetBenefit, first.Solution.Totals.NetBenefit)
		}
	}
}

func TestPlanSelectionZeroBudgetSelectsDoNothing(t *testing.T) {
	cfg := testConfig()
	cfg.Budget = 0

	out, err := PlanSelection(context.Background(), PlanSelectionRequest{Config: cfg}, []domain.Site{ruralSite(), urbanSite()}, testCatalog(t), solver.NewBranchAndBound(0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Solution.SitesDeferred != 2 {
		t.Fatalf("deferred = %d, want 2", out.Solution.SitesDeferred)
	}
	if !out.Solution.Totals.TotalCost.IsZero() {
		t.Fatalf("total cost = %s, want 0", out.Solution.Totals.TotalCost)
	}
}

func TestPlanSelectionCollectsValidationErrors(t *testing.T) {
	bad := ruralSite()
	bad.Length = 0
	bad.Lanes = 0
	dup := urbanSite()
	dup.ID = bad.ID

	fixed := solver.NewFixedSolver(ports.SolveResult{}, nil)
	_, err := PlanSelection(context.Background(), PlanSelectionRequest{Config: testConfig()}, []domain.Site{bad, dup}, testCatalog(t), fixed)
	if err == nil {
		t.Fatalf("expected validation error")
	}
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("error %v does not wrap ErrValidation", err)
	}

	var fields []string
	var walk func(error)
	walk = func(e error) {
		if j, ok := e.(interface{ Unwrap() []error }); ok {
			for _, inner := range j.Unwrap() {
				walk(inner)
			}
			return
		}
		var ve *domain.ValidationError
		if errors.As(e, &ve) {
			fields = append(fields, ve.Field)
		}
	}
	walk(errors.Unwrap(err))
	if len(fields) != 3 {
		t.Fatalf("validation fields = %v, want length, lanes and duplicate id", fields)
	}
	if fixed.Calls() != 0 {
		t.Fatalf("solver called %d times on invalid input", fixed.Calls())
	}
}

func TestPlanSelectionRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.DiscountRate = -1
	cfg.AnalysisHorizon = 0

	_, err := PlanSelection(context.Background(), PlanSelectionRequest{Config: cfg}, []domain.Site{ruralSite()}, testCatalog(t), solver.NewBranchAndBound(0))
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("error = %v, want ErrValidation", err)
	}
}

func TestPlanSelectionCancelledBeforeSolve(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fixed := solver.NewFixedSolver(ports.SolveResult{Status: ports.StatusOptimal}, nil)
	_, err := PlanSelection(ctx, PlanSelectionRequest{Config: testConfig()}, []domain.Site{ruralSite()}, testCatalog(t), fixed)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
	if fixed.Calls() != 0 {
		t.Fatalf("solver called %d times after cancellation", fixed.Calls())
	}
}

func TestPlanSelectionReportsEnumerationWarnings(t *testing.T) {
	cfg := testConfig()
	cfg.RequireTreatment = true

	c, err := domain.NewCatalog(testTreatments()[1:], nil)
	if err != nil {
		t.Fatalf("new catalog: %v", err)
	}

	out, err := PlanSelection(context.Background(), PlanSelectionRequest{Config: cfg}, []domain.Site{ruralSite(), urbanSite()}, c, solver.NewBranchAndBound(0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out.Warnings) != 1 || !errors.Is(out.Warnings[0], domain.ErrEnumeration) {
		t.Fatalf("warnings = %v, want one enumeration warning", out.Warnings)
	}
	if msgs := out.WarningMessages(); len(msgs) != 1 {
		t.Fatalf("warning messages = %v", msgs)
	}
	if a, _ := out.Solution.Selected("B"); !a.IsDoNothing() {
		t.Fatalf("site B selected %q, want do nothing", a.Key())
	}
}

func TestPlanSelectionSurfacesSolverTimeout(t *testing.T) {
	cfg := testConfig()
	sites := []domain.Site{urbanSite()}

	fixed := solver.NewFixedSolver(ports.SolveResult{Status: ports.StatusTimeout, Assignment: []float64{1, 0}}, nil)
	out, err := PlanSelection(context.Background(), PlanSelectionRequest{Config: cfg}, sites, testCatalog(t), fixed)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Solution.Quality != domain.QualityTimeLimit {
		t.Fatalf("quality = %s, want time_limit", out.Solution.Quality)
	}
	if len(out.Warnings) != 1 || !errors.Is(out.Warnings[0], domain.ErrSolverTimeout) {
		t.Fatalf("warnings = %v, want one timeout warning", out.Warnings)
	}

	fixed = solver.NewFixedSolver(ports.SolveResult{Status: ports.StatusInfeasible}, nil)
	_, err = PlanSelection(context.Background(), PlanSelectionRequest{Config: cfg}, sites, testCatalog(t), fixed)
	if !errors.Is(err, domain.ErrSolverContract) {
		t.Fatalf("error = %v, want ErrSolverContract", err)
	}
}
