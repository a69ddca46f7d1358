package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"site-selection-service/internal/api/dto"
	"site-selection-service/internal/config"
	"site-selection-service/internal/domain"
	"site-selection-service/internal/platform/obs"
	"site-selection-service/internal/ports"
	"site-selection-service/internal/services"
)

type SelectionHandler struct {
	Repo    ports.SiteRepository
	Catalog *domain.Catalog
	// Base scenario; request fields override a copy per run.
	Config config.Config
	Solver ports.Solver
	Writer ports.ResultWriter
	System domain.SysInfo
}

// Select runs the selection pipeline over every repository site under the
// requested budget, persists the run and returns it.
func (h *SelectionHandler) Select(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req dto.SelectionRequest

	dec := json.NewDecoder(r.Body)
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeError(w, r, http.StatusBadRequest, "body must contain only one JSON object")
		return
	}

	cfg := h.Config
	if s := strings.TrimSpace(req.Scenario); s != "" {
		cfg.Scenario = s
	}
	if req.Budget == nil {
		writeError(w, r, http.StatusBadRequest, "budget is required")
		return
	}
	cfg.Budget = *req.Budget
	if req.DiscountRate != nil {
		cfg.DiscountRate = *req.DiscountRate
	}
	if req.AnalysisHorizon != nil {
		cfg.AnalysisHorizon = *req.AnalysisHorizon
	}

	runID := obs.NewID()
	ctx := obs.WithRunID(r.Context(), runID)
	started := time.Now().UTC()

	sites, err := h.Repo.ListSites(ctx)
	if err != nil {
		log.Printf("run_id=%s list sites failed: %v", runID, err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	out, err := services.PlanSelection(ctx, services.PlanSelectionRequest{Config: cfg}, sites, h.Catalog, h.Solver)
	if err != nil {
		log.Printf("run_id=%s plan selection failed: %v", runID, err)
		status, msg := selectionErrorStatus(err)
		writeError(w, r, status, msg)
		return
	}

	run := out.Run(runID, cfg.Scenario, started, h.System)
	if h.Writer != nil {
		// The answer stands even when persistence fails.
		if err := h.Writer.WriteRun(ctx, run); err != nil {
			log.Printf("run_id=%s write run failed: %v", runID, err)
		}
	}

	writeJSON(w, r, http.StatusOK, dto.NewRunResponse(run))
}

func selectionErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrSolverTimeout):
		return http.StatusServiceUnavailable, "solver time limit reached without a feasible selection"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, "request cancelled"
	}
	return http.StatusInternalServerError, "internal server error"
}
