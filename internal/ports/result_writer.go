package ports

import (
	"context"

	"site-selection-service/internal/domain"
)

// Port: a sink for finished selection runs.
type ResultWriter interface {
	// Persist or publish one run. Called only after the solution is mapped.
	WriteRun(ctx context.Context, run domain.SelectionRun) error
}
