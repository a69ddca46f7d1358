package services

import (
	"errors"
	"testing"

	"site-selection-service/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func keys(cs []Candidate) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.key()
	}
	return out
}

func TestEnumerateAlternativesOrder(t *testing.T) {
	opts := EnumerationOptions{LengthFractions: []float64{0.75, 0.25, 0.5, 1.0}}

	got, err := EnumerateAlternatives(ruralSite(), testCatalog(t), opts)
	require.NoError(t, err)

	assert.Equal(t, []string{
		domain.DoNothingID,
		"resurf@1",
		"lane_widen@1",
		"turn_lane@1",
		"rumble@1",
		"lane_widen+resurf@1",
		"resurf+turn_lane@1",
		"lane_widen@0.25",
		"lane_widen@0.5",
		"lane_widen@0.75",
		"rumble@0.25",
		"rumble@0.5",
		"rumble@0.75",
	}, keys(got))

	// Combination members follow catalog order regardless of configuration order.
	assert.Equal(t, []string{"resurf", "turn_lane"}, got[6].IDs())
}

func TestEnumerateAlternativesSkipsIneligible(t *testing.T) {
	got, err := EnumerateAlternatives(urbanSite(), testCatalog(t), EnumerationOptions{LengthFractions: []float64{0.5}})
	require.NoError(t, err)

	assert.Equal(t, []string{domain.DoNothingID, "resurf@1"}, keys(got))
}

func TestEnumerateAlternativesKeepsCloseFractions(t *testing.T) {
	c, err := domain.NewCatalog(testTreatments()[1:2], nil)
	require.NoError(t, err)

	got, err := EnumerateAlternatives(ruralSite(), c, EnumerationOptions{LengthFractions: []float64{0.33331, 0.33334, 1}})
	require.NoError(t, err)

	assert.Equal(t, []string{
		domain.DoNothingID,
		"lane_widen@1",
		"lane_widen@0.33331",
		"lane_widen@0.33334",
	}, keys(got))
}

func TestEnumerateAlternativesDeduplicates(t *testing.T) {
	c, err := domain.NewCatalog(testTreatments(), [][]string{{"resurf"}, {"rumble", "resurf"}, {"resurf", "rumble"}})
	require.NoError(t, err)

	got, err := EnumerateAlternatives(ruralSite(), c, EnumerationOptions{LengthFractions: []float64{1.0}})
	require.NoError(t, err)

	seen := map[string]bool{}
	for _, k := range keys(got) {
		assert.False(t, seen[k], "duplicate %s", k)
		seen[k] = true
	}
	assert.Len(t, got, 6)
}

func TestEnumerateAlternativesRequiredTreatmentWarning(t *testing.T) {
	c, err := domain.NewCatalog(testTreatments()[1:], nil)
	require.NoError(t, err)

	site := urbanSite()
	got, err := EnumerateAlternatives(site, c, EnumerationOptions{})
	require.NoError(t, err, "an empty site is not an error by itself")
	assert.Len(t, got, 1)

	site.RequiresTreatment = true
	got, err = EnumerateAlternatives(site, c, EnumerationOptions{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrEnumeration))
	var enumErr *domain.EnumerationError
	require.ErrorAs(t, err, &enumErr)
	assert.Equal(t, "B", enumErr.SiteID)
	require.Len(t, got, 1)
	assert.Empty(t, got[0].Treatments)
}

func TestEvaluateSite(t *testing.T) {
	cfg := testConfig()
	cfg.Penalty.NotResurfacing.Enabled = true

	alts, warn, err := EvaluateSite(ruralSite(), testCatalog(t), cfg)
	require.NoError(t, err)
	require.NoError(t, warn)
	require.Len(t, alts, 13)

	dn := alts[0]
	assert.True(t, dn.IsDoNothing())
	assert.Equal(t, "Do nothing", dn.Description)
	assert.Greater(t, dn.Penalties.NotResurfacing, 0.0)
	assert.Zero(t, dn.Costs.Total())
	assert.Zero(t, dn.Benefits.Total())

	for _, a := range alts[1:] {
		assert.Zero(t, a.Penalties.NotResurfacing, a.Description)
		assert.Equal(t, "A", a.SiteID)
	}

	half := alts[8]
	assert.Equal(t, "Widen lanes to 11 ft (50% length)", half.Description)
	assert.InDelta(t, 250_000, half.Costs.Safety, 1e-9)
	assert.Greater(t, half.Benefits.Safety, 0.0)
}
