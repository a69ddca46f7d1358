package results

import (
	"context"
	"errors"

	"site-selection-service/internal/domain"
	"site-selection-service/internal/ports"
)

// MultiWriter fans a run out to every writer and joins their failures.
type MultiWriter []ports.ResultWriter

func (m MultiWriter) WriteRun(ctx context.Context, run domain.SelectionRun) error {
	var errs []error
	for _, w := range m {
		if err := w.WriteRun(ctx, run); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
