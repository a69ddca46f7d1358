package services

import (
	"testing"

	"site-selection-service/internal/domain"
	"site-selection-service/internal/economics"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func treatment(t *testing.T, c *domain.Catalog, id string) domain.Treatment {
	t.Helper()
	i, ok := c.Lookup(id)
	require.True(t, ok, "treatment %s", id)
	return c.At(i)
}

func TestComposeCMFIsMultiplicative(t *testing.T) {
	a := domain.Treatment{ID: "a", CMF: [2]float64{0.8, 0.9}}
	b := domain.Treatment{ID: "b", CMF: [2]float64{0.9, 0}}

	assert.InDelta(t, 0.72, ComposeCMF([]domain.Treatment{a, b}, domain.NonIntersection, 1), 1e-12)
	// An unset CMF is neutral.
	assert.InDelta(t, 0.9, ComposeCMF([]domain.Treatment{a, b}, domain.Intersection, 1), 1e-12)
	assert.Equal(t, 1.0, ComposeCMF(nil, domain.NonIntersection, 0))
}

func TestComposeCMFExplicitZeroRemovesCrashes(t *testing.T) {
	closure := domain.Treatment{ID: "c", CMF: [2]float64{0.9, 0}, CMFSet: [2]bool{true, true}, Divisible: true}

	assert.Zero(t, ComposeCMF([]domain.Treatment{closure}, domain.Intersection, 1))
	assert.InDelta(t, 0.5, ComposeCMF([]domain.Treatment{closure}, domain.Intersection, 0.5), 1e-12)
}

func TestComposeCMFPartialLength(t *testing.T) {
	whole := domain.Treatment{ID: "w", CMF: [2]float64{0.9, 0.9}}
	part := domain.Treatment{ID: "p", CMF: [2]float64{0.8, 0.8}, Divisible: true}

	got := ComposeCMF([]domain.Treatment{whole, part}, domain.NonIntersection, 0.5)
	assert.InDelta(t, 0.9*(1-0.5+0.5*0.8), got, 1e-12)

	full := ComposeCMF([]domain.Treatment{part}, domain.NonIntersection, 1)
	assert.InDelta(t, 0.8, full, 1e-12)
}

func TestBenefitLife(t *testing.T) {
	tr := func(life int) domain.Treatment { return domain.Treatment{ServiceLife: life} }

	assert.Equal(t, 20, BenefitLife(nil, 20))
	assert.Equal(t, 20, BenefitLife([]domain.Treatment{tr(0), tr(25)}, 20))
	assert.Equal(t, 10, BenefitLife([]domain.Treatment{tr(15), tr(10), tr(0)}, 20))
}

func TestSafetyBenefit(t *testing.T) {
	cfg := testConfig()
	site := ruralSite()
	rumble := treatment(t, testCatalog(t), "rumble")

	got, err := SafetyBenefit(site, []domain.Treatment{rumble}, 1, cfg)
	require.NoError(t, err)

	// Non-intersection only: 2 FI and 5 PDO crashes at CMF 0.85, over a 10-year life.
	annual := 2*0.15*cfg.CrashCost(domain.FatalInjury) + 5*0.15*cfg.CrashCost(domain.PropertyDamageOnly)
	pwf, err := economics.UniformSeriesFactor(0.04, 10)
	require.NoError(t, err)
	assert.InDelta(t, annual*pwf, got, 1e-6)
}

func TestSafetyBenefitNegativeForHarmfulTreatment(t *testing.T) {
	harmful := domain.Treatment{ID: "h", CMF: [2]float64{1.2, 1.2}}

	got, err := SafetyBenefit(ruralSite(), []domain.Treatment{harmful}, 1, testConfig())
	require.NoError(t, err)
	assert.Less(t, got, 0.0)
}

func TestSafetyBenefitZeroForDoNothing(t *testing.T) {
	got, err := SafetyBenefit(ruralSite(), nil, 0, testConfig())
	require.NoError(t, err)
	assert.Zero(t, got)
}

func TestOperationsBenefit(t *testing.T) {
	cfg := testConfig()
	cfg.ValueOfTime = map[string]float64{"personal": 17.8, "truck": 32.8}
	cfg.TravelerMix = map[string]float64{"personal": 0.8, "truck": 0.2}

	site := ruralSite()
	speedUp := domain.Treatment{ID: "s", Operations: domain.OperationsEffect{SpeedGainMPH: 5, OperatingCostSaving: 0.01}}

	got, err := OperationsBenefit(site, []domain.Treatment{speedUp}, 0.5, cfg)
	require.NoError(t, err)

	treated := site.Length * 0.5
	hours := treated/45 - treated/50
	vot := 0.8*17.8 + 0.2*32.8
	annual := hours*site.ADT*365*vot + 0.01*site.ADT*365*treated
	pwf, err := economics.UniformSeriesFactor(0.04, 20)
	require.NoError(t, err)
	assert.InDelta(t, annual*pwf, got, 1e-6)
}

func TestConditionBenefitCappedAtPerfectIndex(t *testing.T) {
	cfg := testConfig()
	cfg.Corridor.BenefitPerPointMile = 1000
	site := ruralSite()
	site.PavementCondition = 90
	resurf := domain.Treatment{ID: "r", ConditionGain: 30}

	got, err := ConditionBenefit(site, []domain.Treatment{resurf}, 1, cfg)
	require.NoError(t, err)

	pwf, err := economics.UniformSeriesFactor(0.04, 20)
	require.NoError(t, err)
	assert.InDelta(t, 10*1000*site.Length*pwf, got, 1e-6)
}

func TestConditionBenefitDisabledWithoutRate(t *testing.T) {
	got, err := ConditionBenefit(ruralSite(), []domain.Treatment{{ID: "r", ConditionGain: 30}}, 1, testConfig())
	require.NoError(t, err)
	assert.Zero(t, got)
}

func TestComputeBenefitsPropagatesInvalidRate(t *testing.T) {
	cfg := testConfig()
	cfg.DiscountRate = -0.1

	_, err := ComputeBenefits(ruralSite(), []domain.Treatment{{ID: "h", CMF: [2]float64{0.5, 0.5}}}, 1, cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, economics.ErrInvalidParameter)
}
