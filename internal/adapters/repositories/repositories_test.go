package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"site-selection-service/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, InitSchema(db))
	return db
}

func TestParseDialect(t *testing.T) {
	tests := []struct {
		in      string
		want    Dialect
		wantErr bool
	}{
		{"sqlite", SQLite, false},
		{"", SQLite, false},
		{" PGX ", Postgres, false},
		{"postgres", Postgres, false},
		{"mysql", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseDialect(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestRebind(t *testing.T) {
	q := "SELECT a FROM t WHERE x = ? AND y IN (?, ?)"
	assert.Equal(t, q, SQLite.Rebind(q))
	assert.Equal(t, "SELECT a FROM t WHERE x = $1 AND y IN ($2, $3)", Postgres.Rebind(q))
}

func TestInitSchemaIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, InitSchema(db))
	require.Error(t, InitSchema(nil))
}

func writeSeeds(t *testing.T, seeds []SiteSeed) string {
	t.Helper()
	data, err := json.Marshal(seeds)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "sites.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func seed(id string, pci float64) SiteSeed {
	return SiteSeed{
		SiteID:            id,
		LengthMi:          2.5,
		Lanes:             2,
		ADT:               7000,
		SpeedMPH:          50,
		AreaType:          "Urban",
		Divided:           true,
		LaneWidthFt:       10,
		ShoulderWidthFt:   4,
		ShoulderType:      "Paved",
		NonIntersection:   CrashSeed{FatalInjury: 4.8, PDO: 10.2},
		Intersection:      CrashSeed{FatalInjury: 1, PDO: 2},
		PavementCondition: pci,
	}
}

func TestSeedAndListSitesKeepsSeedOrder(t *testing.T) {
	db := openTestDB(t)
	path := writeSeeds(t, []SiteSeed{seed("z9", 85), seed("a1", 40)})
	require.NoError(t, SeedFromJSON(db, SQLite, path))

	repo := NewSQLSiteRepository(db, SQLite)
	sites, err := repo.ListSites(context.Background())
	require.NoError(t, err)
	require.Len(t, sites, 2)

	assert.Equal(t, "z9", sites[0].ID)
	assert.Equal(t, "a1", sites[1].ID)

	s := sites[0]
	assert.Equal(t, domain.AreaUrban, s.AreaType)
	assert.Equal(t, domain.ShoulderPaved, s.ShoulderType)
	assert.True(t, s.Divided)
	assert.False(t, s.RequiresTreatment)
	assert.Equal(t, 4.8, s.Crashes.At(domain.NonIntersection, domain.FatalInjury))
	assert.Equal(t, 2.0, s.Crashes.At(domain.Intersection, domain.PropertyDamageOnly))
	assert.InDelta(t, 18.0, s.Crashes.Total(), 1e-9)
	assert.Equal(t, 85.0, s.PavementCondition)
}

func TestSeedSitesUpserts(t *testing.T) {
	db := openTestDB(t)
	first := seed("s1", 60)
	require.NoError(t, SeedSites(db, SQLite, []domain.Site{first.Site()}))

	updated := seed("s1", 30)
	updated.RequiresTreatment = true
	require.NoError(t, SeedSites(db, SQLite, []domain.Site{seed("s0", 90).Site(), updated.Site()}))

	sites, err := NewSQLSiteRepository(db, SQLite).ListSites(context.Background())
	require.NoError(t, err)
	require.Len(t, sites, 2)
	assert.Equal(t, "s0", sites[0].ID)
	assert.Equal(t, 30.0, sites[1].PavementCondition)
	assert.True(t, sites[1].RequiresTreatment)
}

func TestLoadSiteSeedsCollectsValidationErrors(t *testing.T) {
	bad := seed("bad", 140)
	bad.LengthMi = 0
	path := writeSeeds(t, []SiteSeed{seed("ok", 50), bad})

	_, err := LoadSiteSeeds(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrValidation))
	assert.Contains(t, err.Error(), "length")
	assert.Contains(t, err.Error(), "pavement_condition")
}

func TestLoadSiteSeedsReadsShippedHarwoodSites(t *testing.T) {
	sites, err := LoadSiteSeeds(filepath.Join("..", "..", "..", "data", "seeds", "harwood_sites.json"))
	require.NoError(t, err)
	require.Len(t, sites, 10)
	assert.Equal(t, "10", sites[9].ID)
	assert.InDelta(t, 8.0, sites[0].Crashes.Total(), 1e-9)
}

func TestListSitesWithoutDB(t *testing.T) {
	_, err := (&SQLSiteRepository{}).ListSites(context.Background())
	require.Error(t, err)
}
