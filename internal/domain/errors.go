package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrValidation classifies malformed or out-of-range input data.
	ErrValidation = errors.New("validation failed")
	// ErrEnumeration classifies sites that could not receive a required real treatment.
	ErrEnumeration = errors.New("enumeration failed")
	// ErrSolverContract classifies solver answers the selection model can never produce.
	ErrSolverContract = errors.New("solver contract violated")
	// ErrSolverTimeout classifies solver runs stopped by their time limit.
	ErrSolverTimeout = errors.New("solver time limit reached")
)

// ValidationError reports one malformed input attribute. Fatal to a run.
type ValidationError struct {
	SiteID string
	Field  string
	Value  any
	Reason string
}

func (e *ValidationError) Error() string {
	if e.SiteID == "" {
		return fmt.Sprintf("validation: %s=%v: %s", e.Field, e.Value, e.Reason)
	}
	return fmt.Sprintf("validation: site %s: %s=%v: %s", e.SiteID, e.Field, e.Value, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// EnumerationError is a per-site warning; the run continues with do-nothing only.
type EnumerationError struct {
	SiteID string
	Reason string
}

func (e *EnumerationError) Error() string {
	return fmt.Sprintf("enumeration: site %s: %s", e.SiteID, e.Reason)
}

func (e *EnumerationError) Unwrap() error { return ErrEnumeration }

// SolverContractError is fatal: the solver returned something the model cannot produce.
type SolverContractError struct {
	Status string
	Reason string
}

func (e *SolverContractError) Error() string {
	return fmt.Sprintf("solver contract: status=%s: %s", e.Status, e.Reason)
}

func (e *SolverContractError) Unwrap() error { return ErrSolverContract }

// SolverTimeoutError is non-fatal when an incumbent exists.
type SolverTimeoutError struct {
	Elapsed      time.Duration
	HasIncumbent bool
}

func (e *SolverTimeoutError) Error() string {
	if e.HasIncumbent {
		return fmt.Sprintf("solver timeout after %s: returning best incumbent", e.Elapsed)
	}
	return fmt.Sprintf("solver timeout after %s: no incumbent found", e.Elapsed)
}

func (e *SolverTimeoutError) Unwrap() error { return ErrSolverTimeout }
