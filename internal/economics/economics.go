// Package economics holds the discounting arithmetic shared by every benefit
// and cost computation. All functions are pure.
package economics

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// ErrInvalidParameter is returned for a negative rate or a non-positive horizon.
var ErrInvalidParameter = errors.New("economics: invalid parameter")

const (
	DefaultDiscountRate    = 0.07
	DefaultAnalysisHorizon = 20
)

func checkRate(rate float64) error {
	if rate < 0 || math.IsNaN(rate) || math.IsInf(rate, 0) {
		return fmt.Errorf("%w: discount rate must be non-negative, got %g", ErrInvalidParameter, rate)
	}
	return nil
}

func checkYears(years int) error {
	if years < 1 {
		return fmt.Errorf("%w: years must be at least 1, got %d", ErrInvalidParameter, years)
	}
	return nil
}

// DiscountFactor returns 1/(1+rate)^year.
func DiscountFactor(rate float64, year int) (float64, error) {
	if err := checkRate(rate); err != nil {
		return 0, err
	}
	if year < 0 {
		return 0, fmt.Errorf("%w: year must be non-negative, got %d", ErrInvalidParameter, year)
	}
	return math.Pow(1+rate, -float64(year)), nil
}

// DiscountFactors returns [DF_1, ..., DF_horizon].
func DiscountFactors(rate float64, horizon int) ([]float64, error) {
	if err := checkRate(rate); err != nil {
		return nil, err
	}
	if err := checkYears(horizon); err != nil {
		return nil, err
	}

	factors := make([]float64, horizon)
	df := 1.0
	for t := range factors {
		df /= 1 + rate
		factors[t] = df
	}
	return factors, nil
}

// PresentValue discounts cashflows[t-1] received at the end of year t = 1..len.
func PresentValue(cashflows []float64, rate float64) (float64, error) {
	if err := checkYears(len(cashflows)); err != nil {
		return 0, err
	}
	factors, err := DiscountFactors(rate, len(cashflows))
	if err != nil {
		return 0, err
	}
	return floats.Dot(cashflows, factors), nil
}

// UniformSeriesFactor returns the present-worth factor (P/A, rate, years):
// (1 − (1+rate)^−n) / rate, or n when rate is zero.
func UniformSeriesFactor(rate float64, years int) (float64, error) {
	if err := checkRate(rate); err != nil {
		return 0, err
	}
	if err := checkYears(years); err != nil {
		return 0, err
	}
	if rate == 0 {
		return float64(years), nil
	}
	return -math.Expm1(-float64(years)*math.Log1p(rate)) / rate, nil
}

// Annualize converts a present value into the equivalent uniform annual amount.
func Annualize(presentValue, rate float64, years int) (float64, error) {
	pwf, err := UniformSeriesFactor(rate, years)
	if err != nil {
		return 0, err
	}
	return presentValue / pwf, nil
}

// BenefitCostRatio returns benefits/costs; +Inf for free positive benefits, 0 when both vanish.
func BenefitCostRatio(benefits, costs float64) float64 {
	if costs == 0 {
		if benefits > 0 {
			return math.Inf(1)
		}
		return 0
	}
	return benefits / costs
}
