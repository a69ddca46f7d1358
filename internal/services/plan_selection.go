package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"site-selection-service/internal/config"
	"site-selection-service/internal/domain"
	"site-selection-service/internal/platform/obs"
	"site-selection-service/internal/ports"

	"golang.org/x/sync/errgroup"
)

const defaultWorkers = 4

type PlanSelectionRequest struct {
	Config config.Config
}

// Output of one pipeline run. Warnings are non-fatal: enumeration failures and
// solver time limits.
type SelectionOutcome struct {
	Solution     *domain.Solution
	Alternatives *domain.AlternativeSet
	Warnings     []error
}

// WarningMessages renders the warnings for persistence.
func (o *SelectionOutcome) WarningMessages() []string {
	msgs := make([]string, 0, len(o.Warnings))
	for _, w := range o.Warnings {
		msgs = append(msgs, w.Error())
	}
	return msgs
}

// Run packages the outcome as a persistable record.
func (o *SelectionOutcome) Run(runID, scenario string, started time.Time, sys domain.SysInfo) domain.SelectionRun {
	return domain.SelectionRun{
		RunID:     runID,
		Scenario:  scenario,
		StartedAt: started,
		Solution:  o.Solution,
		Warnings:  o.WarningMessages(),
		System:    sys,
	}
}

// ValidateSites collects every malformed attribute and duplicate id across all sites.
func ValidateSites(sites []domain.Site) error {
	var errs []error
	seen := make(map[string]struct{}, len(sites))
	for _, s := range sites {
		errs = append(errs, s.Validate()...)
		if _, dup := seen[s.ID]; dup {
			errs = append(errs, &domain.ValidationError{SiteID: s.ID, Field: "id", Value: s.ID, Reason: "duplicate site id"})
		}
		seen[s.ID] = struct{}{}
	}
	return errors.Join(errs...)
}

// BuildAlternatives evaluates every site concurrently. Each worker writes only its own
// site slot, so the arena keeps the input site order.
func BuildAlternatives(ctx context.Context, sites []domain.Site, catalog *domain.Catalog, cfg config.Config) (set *domain.AlternativeSet, warnings []error, err error) {
	defer obs.Time(ctx, "selection.enumerate")(&err)

	perSite := make([][]domain.Alternative, len(sites))
	perSiteWarn := make([]error, len(sites))

	workers := cfg.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range sites {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			alts, warn, err := EvaluateSite(sites[i], catalog, cfg)
			if err != nil {
				return err
			}
			perSite[i] = alts
			perSiteWarn[i] = warn
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, fmt.Errorf("build alternatives: %w", err)
	}

	ids := make([]string, len(sites))
	for i, s := range sites {
		ids[i] = s.ID
		if perSiteWarn[i] != nil {
			log.Printf("run_id=%s site_id=%s warn=%v", obs.RunID(ctx), s.ID, perSiteWarn[i])
			warnings = append(warnings, perSiteWarn[i])
		}
	}

	set, err = domain.NewAlternativeSet(ids, perSite)
	if err != nil {
		return nil, nil, fmt.Errorf("build alternatives: %w", err)
	}

	return set, warnings, nil
}

// PlanSelection runs the whole pipeline: validate, enumerate and value alternatives,
// build the model, solve, and map the answer back to sites.
func PlanSelection(
	ctx context.Context,
	req PlanSelectionRequest,
	sites []domain.Site,
	catalog *domain.Catalog,
	solver ports.Solver,
) (*SelectionOutcome, error) {
	cfg := req.Config
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("plan selection: validate config: %w", errors.Join(errs...))
	}
	if catalog == nil {
		return nil, fmt.Errorf("plan selection: catalog is required")
	}
	if len(sites) == 0 {
		return nil, fmt.Errorf("plan selection: no sites")
	}
	if err := ValidateSites(sites); err != nil {
		return nil, fmt.Errorf("plan selection: validate sites: %w", err)
	}

	set, warnings, err := BuildAlternatives(ctx, sites, catalog, cfg)
	if err != nil {
		return nil, fmt.Errorf("plan selection: %w", err)
	}

	out, err := SelectFromAlternatives(ctx, cfg, set, solver)
	if err != nil {
		return nil, fmt.Errorf("plan selection: %w", err)
	}
	out.Warnings = append(warnings, out.Warnings...)

	return out, nil
}

// SelectFromAlternatives solves an already valued arena, such as published
// benchmark alternatives.
func SelectFromAlternatives(ctx context.Context, cfg config.Config, set *domain.AlternativeSet, solver ports.Solver) (out *SelectionOutcome, err error) {
	defer obs.Time(ctx, "selection.solve")(&err)

	model, _, err := BuildSelectionModel(set, cfg.Budget)
	if err != nil {
		return nil, fmt.Errorf("select from alternatives: %w", err)
	}

	// A cancelled run stops here, before the solver is invoked.
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("select from alternatives: %w", err)
	}

	start := time.Now()
	res, err := solver.Solve(ctx, model, cfg.Solver.TimeLimit)
	if err != nil {
		return nil, fmt.Errorf("select from alternatives: solve: %w", err)
	}
	if res.Runtime == 0 {
		res.Runtime = time.Since(start)
	}

	sol, warnings, err := MapSolution(set, model, res, cfg.Budget)
	if err != nil {
		return nil, fmt.Errorf("select from alternatives: %w", err)
	}

	log.Printf(
		"run_id=%s status=%s quality=%s objective=%.2f improved=%d deferred=%d utilization=%.4f",
		obs.RunID(ctx), sol.Status, sol.Quality, sol.Objective, sol.SitesImproved, sol.SitesDeferred, sol.BudgetUtilization(),
	)

	return &SelectionOutcome{Solution: sol, Alternatives: set, Warnings: warnings}, nil
}
