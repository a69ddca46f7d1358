package ports

import (
	"context"

	"site-selection-service/internal/domain"
)

// Port: a boundary for retrieving candidate Sites from a data source.
type SiteRepository interface {
	// Retrieve all candidate sites in a stable order.
	ListSites(ctx context.Context) ([]domain.Site, error)
}
