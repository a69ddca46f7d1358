package api

import (
	"net/http"

	"site-selection-service/internal/api/handlers"
	"site-selection-service/internal/config"
	"site-selection-service/internal/domain"
	"site-selection-service/internal/ports"
)

// Dependencies of the HTTP surface. Writer and Store may be nil.
type Deps struct {
	Store   handlers.Pinger
	Repo    ports.SiteRepository
	Catalog *domain.Catalog
	Config  config.Config
	Solver  ports.Solver
	Writer  ports.ResultWriter
	System  domain.SysInfo
}

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(d Deps) http.Handler {
	mux := http.NewServeMux()

	healthHandler := &handlers.HealthHandler{Store: d.Store}
	siteHandler := &handlers.SiteHandler{Repo: d.Repo}
	selectionHandler := &handlers.SelectionHandler{
		Repo:    d.Repo,
		Catalog: d.Catalog,
		Config:  d.Config,
		Solver:  d.Solver,
		Writer:  d.Writer,
		System:  d.System,
	}

	mux.HandleFunc("/health", healthHandler.Health)
	mux.HandleFunc("/sites", siteHandler.List)
	mux.HandleFunc("/selections", selectionHandler.Select)

	return loggingMiddleware(mux)
}
