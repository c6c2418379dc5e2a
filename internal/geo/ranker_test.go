package geo_test

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oggyb/muzz-matcher/internal/db"
	svcErr "github.com/oggyb/muzz-matcher/internal/errors"
	"github.com/oggyb/muzz-matcher/internal/geo"
	"github.com/oggyb/muzz-matcher/internal/repository"
	"github.com/oggyb/muzz-matcher/internal/scoring"
	"github.com/oggyb/muzz-matcher/internal/testutil"
)

type fixture struct {
	ranker *geo.RedisRanker
	users  *repository.UserRepository
}

func setup(t *testing.T, users ...db.User) fixture {
	t.Helper()
	gdb := testutil.SQLite(t)
	rc, _ := testutil.Redis(t)
	testutil.SeedUsers(t, gdb, users...)

	repo := repository.NewUserRepository(gdb)
	ranker := geo.NewRedisRanker(rc, repo, scoring.Default(), 50, testutil.Logger())
	_, err := ranker.Reindex(context.Background())
	require.NoError(t, err)
	return fixture{ranker: ranker, users: repo}
}

func located(id uint64, country string, lat, lon float64) db.User {
	return db.User{ID: id, CountryCode: country, Latitude: &lat, Longitude: &lon, Interests: []string{"music"}}
}

func TestFindCandidatesNearestWithinRadius(t *testing.T) {
	ctx := context.Background()
	f := setup(t,
		located(1, "GB", 51.5074, -0.1278), // viewer, London
		located(2, "GB", 51.5155, -0.0922), // ~2.6km
		located(3, "GB", 51.7520, -1.2577), // Oxford, ~83km
		located(4, "FR", 48.8566, 2.3522),  // Paris
		located(5, "GB", 51.4545, -2.5879), // Bristol, ~170km
	)
	viewer, err := f.users.GetProfile(ctx, 1)
	require.NoError(t, err)

	got, err := f.ranker.FindCandidates(ctx, viewer, geo.Query{MaxDistanceKm: 100, Limit: 10})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, uint64(2), got[0].UserID)
	assert.Equal(t, uint64(3), got[1].UserID)
	assert.Greater(t, got[0].EstimatedScore, got[1].EstimatedScore)
	assert.InDelta(t, got[0].Compatibility.Total, got[1].Compatibility.Total, 1e-9)
}

func TestFindCandidatesInternationalFilter(t *testing.T) {
	ctx := context.Background()
	f := setup(t,
		located(1, "GB", 51.0, 1.0),
		located(2, "FR", 51.0, 1.5),
		located(3, "BE", 51.0, 2.0),
	)
	viewer, err := f.users.GetProfile(ctx, 1)
	require.NoError(t, err)

	got, err := f.ranker.FindCandidates(ctx, viewer, geo.Query{MaxDistanceKm: 200, Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = f.ranker.FindCandidates(ctx, viewer, geo.Query{MaxDistanceKm: 200, Limit: 10, PreferredCountries: []string{"fr"}})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, uint64(2), got[0].UserID)

	got, err = f.ranker.FindCandidates(ctx, viewer, geo.Query{
		MaxDistanceKm: 200, Limit: 10, IncludeInternational: true, ExcludedCountries: []string{"FR"},
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, uint64(3), got[0].UserID)
}

func TestFindCandidatesWithoutLocationDegrades(t *testing.T) {
	ctx := context.Background()
	f := setup(t, db.User{ID: 1, CountryCode: "GB"})
	viewer, err := f.users.GetProfile(ctx, 1)
	require.NoError(t, err)

	_, err = f.ranker.FindCandidates(ctx, viewer, geo.Query{Limit: 10})
	assert.ErrorIs(t, err, svcErr.ErrUpstreamDegraded)
}

func TestUpdateLocationIndexesUser(t *testing.T) {
	ctx := context.Background()
	f := setup(t, located(1, "GB", 51.5074, -0.1278), db.User{ID: 2, CountryCode: "GB"})

	require.NoError(t, f.ranker.UpdateLocation(ctx, 2, 51.5080, -0.1200))

	viewer, err := f.users.GetProfile(ctx, 1)
	require.NoError(t, err)
	got, err := f.ranker.FindCandidates(ctx, viewer, geo.Query{Limit: 10})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, uint64(2), got[0].UserID)
}

func TestUpdateLocationValidation(t *testing.T) {
	ctx := context.Background()
	f := setup(t, db.User{ID: 1})

	cases := []struct {
		name     string
		id       uint64
		lat, lon float64
		want     error
	}{
		{"zero user", 0, 1, 1, svcErr.ErrValidation},
		{"latitude", 1, 91, 0, svcErr.ErrValidation},
		{"longitude", 1, 0, -181, svcErr.ErrValidation},
		{"nan", 1, math.NaN(), 0, svcErr.ErrValidation},
		{"unknown user", 99, 10, 10, svcErr.ErrNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.ErrorIs(t, f.ranker.UpdateLocation(ctx, tc.id, tc.lat, tc.lon), tc.want)
		})
	}
}

func TestDistanceKm(t *testing.T) {
	london := scoring.Coordinate{Lat: 51.5074, Lon: -0.1278}
	paris := scoring.Coordinate{Lat: 48.8566, Lon: 2.3522}
	assert.InDelta(t, 343.5, geo.DistanceKm(london, paris), 1.5)
	assert.Equal(t, 0.0, geo.DistanceKm(london, london))
}
