package handlers

import (
	"log"
	"net/http"

	"site-selection-service/internal/api/dto"
	"site-selection-service/internal/ports"
)

// SiteHandler exposes the candidate sites held by the repository.
type SiteHandler struct {
	Repo ports.SiteRepository
}

func (h *SiteHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	sites, err := h.Repo.ListSites(r.Context())
	if err != nil {
		log.Printf("list sites failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	res := dto.ListSitesResponse{
		Sites: make([]dto.SiteResponse, 0, len(sites)),
	}
	for _, s := range sites {
		res.Sites = append(res.Sites, dto.NewSiteResponse(s))
	}

	writeJSON(w, r, http.StatusOK, res)
}
