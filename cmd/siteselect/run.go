package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"site-selection-service/internal/adapters/catalog"
	"site-selection-service/internal/adapters/repositories"
	"site-selection-service/internal/adapters/solver"
	"site-selection-service/internal/api/dto"
	"site-selection-service/internal/config"
	"site-selection-service/internal/domain"
	"site-selection-service/internal/platform/obs"
	"site-selection-service/internal/platform/sysinfo"
	"site-selection-service/internal/services"
)

// loadInputs reads sites, catalog and scenario, failing on the first unreadable file.
func loadInputs(in inputFlags) ([]domain.Site, *domain.Catalog, config.Config, error) {
	cfg, err := loadScenario(in.scenario)
	if err != nil {
		return nil, nil, config.Config{}, err
	}
	sites, err := repositories.LoadSiteSeeds(in.sites)
	if err != nil {
		return nil, nil, config.Config{}, fmt.Errorf("loading sites: %w", err)
	}
	cat, err := catalog.Load(in.catalog)
	if err != nil {
		return nil, nil, config.Config{}, fmt.Errorf("loading catalog: %w", err)
	}
	return sites, cat, cfg, nil
}

func loadScenario(path string) (config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, fmt.Errorf("loading scenario: %w", err)
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		return config.Config{}, fmt.Errorf("scenario has validation errors: %w", errors.Join(errs...))
	}
	return cfg, nil
}

func runSolve(ctx context.Context, w io.Writer, in inputFlags, budget *float64, asJSON bool) error {
	sites, cat, cfg, err := loadInputs(in)
	if err != nil {
		return err
	}
	if budget != nil {
		cfg.Budget = *budget
	}

	runID := obs.NewID()
	ctx = obs.WithRunID(ctx, runID)
	started := time.Now().UTC()

	out, err := services.PlanSelection(ctx, services.PlanSelectionRequest{Config: cfg}, sites, cat, solver.NewBranchAndBound(cfg.Solver.MaxNodes))
	if err != nil {
		return err
	}
	run := out.Run(runID, cfg.Scenario, started, sysinfo.Collect(ctx))

	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(dto.NewRunResponse(run))
	}
	printRun(w, run)
	return nil
}

func runEnumerate(ctx context.Context, w io.Writer, in inputFlags) error {
	sites, cat, cfg, err := loadInputs(in)
	if err != nil {
		return err
	}
	if err := services.ValidateSites(sites); err != nil {
		return err
	}

	set, warnings, err := services.BuildAlternatives(ctx, sites, cat, cfg)
	if err != nil {
		return err
	}
	printAlternatives(w, set)
	out := &services.SelectionOutcome{Warnings: warnings}
	printWarnings(w, out.WarningMessages())
	return nil
}

func runBenchmark(ctx context.Context, w io.Writer, sitesPath, alternativesPath, scenarioPath string, budgets []float64) error {
	cfg, err := loadScenario(scenarioPath)
	if err != nil {
		return err
	}
	sites, err := repositories.LoadSiteSeeds(sitesPath)
	if err != nil {
		return fmt.Errorf("loading sites: %w", err)
	}
	records, err := catalog.LoadAlternatives(alternativesPath)
	if err != nil {
		return fmt.Errorf("loading alternatives: %w", err)
	}

	for i, budget := range budgets {
		cfg.Budget = budget
		set, err := services.AlternativesFromRecords(sites, records, nil, cfg)
		if err != nil {
			return err
		}

		runID := obs.NewID()
		runCtx := obs.WithRunID(ctx, runID)
		started := time.Now().UTC()
		out, err := services.SelectFromAlternatives(runCtx, cfg, set, solver.NewBranchAndBound(cfg.Solver.MaxNodes))
		if err != nil {
			return fmt.Errorf("budget %.0f: %w", budget, err)
		}

		if i > 0 {
			fmt.Fprintln(w)
		}
		printRun(w, out.Run(runID, cfg.Scenario, started, sysinfo.Collect(runCtx)))
	}
	return nil
}
