// Package geo ranks nearby candidates from the Redis GEO index and keeps
// that index in step with stored user locations.
package geo

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"strings"

	"github.com/oggyb/muzz-matcher/internal/cache"
	"github.com/oggyb/muzz-matcher/internal/db"
	svcErr "github.com/oggyb/muzz-matcher/internal/errors"
	"github.com/oggyb/muzz-matcher/internal/scoring"
)

// Redis GEO cannot index points closer to the poles than this.
const maxIndexableLat = 85.05112878

// Share of the estimated score that comes from proximity.
const proximityWeight = 0.2

// Query narrows a ranking request.
type Query struct {
	// MaxDistanceKm is the search radius; 0 uses the ranker default.
	MaxDistanceKm        float64
	IncludeInternational bool
	PreferredCountries   []string
	ExcludedCountries    []string
	// Limit caps how many users are read from the index.
	Limit int
}

// Candidate is a ranked nearby user.
type Candidate struct {
	UserID         uint64
	CountryCode    string
	DistanceKm     float64
	Compatibility  scoring.Result
	EstimatedScore float64
}

// Index is the spatial index the ranker reads and maintains.
type Index interface {
	GeoAdd(ctx context.Context, userID uint64, lat, lon float64) error
	GeoRemove(ctx context.Context, userID uint64) error
	GeoRadius(ctx context.Context, lat, lon, radiusKm float64, count int) ([]cache.Nearby, error)
}

// ProfileStore is the slice of the user repository the ranker needs.
type ProfileStore interface {
	GetProfile(ctx context.Context, userID uint64) (db.User, error)
	GetProfiles(ctx context.Context, ids []uint64) (map[uint64]db.User, error)
	UpdateLocation(ctx context.Context, userID uint64, lat, lon *float64) error
	ListLocated(ctx context.Context) ([]db.User, error)
}

// RedisRanker implements the geolocation ranker on top of Redis GEO.
type RedisRanker struct {
	index           Index
	profiles        ProfileStore
	scorer          *scoring.Scorer
	defaultRadiusKm float64
	log             *slog.Logger
}

// NewRedisRanker wires the ranker. defaultRadiusKm applies when a query does
// not set MaxDistanceKm.
func NewRedisRanker(index Index, profiles ProfileStore, scorer *scoring.Scorer, defaultRadiusKm float64, log *slog.Logger) *RedisRanker {
	return &RedisRanker{
		index:           index,
		profiles:        profiles,
		scorer:          scorer,
		defaultRadiusKm: defaultRadiusKm,
		log:             log,
	}
}

// FindCandidates returns nearby users ordered by estimated score, best first.
//
// The estimate blends compatibility with proximity; the viewer must have a
// visible location. Exclusion of decided/matched users is the caller's job.
func (r *RedisRanker) FindCandidates(ctx context.Context, viewer db.User, q Query) ([]Candidate, error) {
	origin := viewer.Profile().Location
	if origin == nil {
		return nil, fmt.Errorf("user %d has no visible location: %w", viewer.ID, svcErr.ErrUpstreamDegraded)
	}

	radius := q.MaxDistanceKm
	if radius <= 0 {
		radius = r.defaultRadiusKm
	}
	nearby, err := r.index.GeoRadius(ctx, origin.Lat, origin.Lon, radius, q.Limit)
	if err != nil {
		return nil, fmt.Errorf("geo radius: %w: %w", svcErr.ErrUpstreamDegraded, err)
	}

	ids := make([]uint64, 0, len(nearby))
	for _, n := range nearby {
		if n.UserID != viewer.ID {
			ids = append(ids, n.UserID)
		}
	}
	users, err := r.profiles.GetProfiles(ctx, ids)
	if err != nil {
		return nil, err
	}

	excluded := countrySet(q.ExcludedCountries)
	allowed := countrySet(q.PreferredCountries)
	allowed[strings.ToUpper(viewer.CountryCode)] = struct{}{}

	viewerProfile := viewer.Profile()
	out := make([]Candidate, 0, len(users))
	for _, n := range nearby {
		u, ok := users[n.UserID]
		if !ok || !u.LocationVisible {
			continue
		}
		country := strings.ToUpper(u.CountryCode)
		if _, skip := excluded[country]; skip {
			continue
		}
		if !q.IncludeInternational {
			if _, ok := allowed[country]; !ok {
				continue
			}
		}
		res := r.scorer.Score(viewerProfile, u.Profile())
		out = append(out, Candidate{
			UserID:         u.ID,
			CountryCode:    u.CountryCode,
			DistanceKm:     n.DistanceKm,
			Compatibility:  res,
			EstimatedScore: estimate(res.Total, n.DistanceKm, radius),
		})
	}

	slices.SortStableFunc(out, func(a, b Candidate) int {
		switch {
		case a.EstimatedScore != b.EstimatedScore:
			if a.EstimatedScore > b.EstimatedScore {
				return -1
			}
			return 1
		case a.DistanceKm != b.DistanceKm:
			if a.DistanceKm < b.DistanceKm {
				return -1
			}
			return 1
		default:
			return compareIDs(a.UserID, b.UserID)
		}
	})
	return out, nil
}

// UpdateLocation validates and stores a user's position, then syncs the
// index: visible users are (re)indexed, hidden ones removed.
func (r *RedisRanker) UpdateLocation(ctx context.Context, userID uint64, lat, lon float64) error {
	if userID == 0 {
		return svcErr.Invalid("user_id", "must be a positive integer")
	}
	if err := ValidateCoordinates(lat, lon); err != nil {
		return err
	}
	u, err := r.profiles.GetProfile(ctx, userID)
	if err != nil {
		return err
	}
	if err := r.profiles.UpdateLocation(ctx, userID, &lat, &lon); err != nil {
		return err
	}

	if !u.LocationVisible || math.Abs(lat) > maxIndexableLat {
		if err := r.index.GeoRemove(ctx, userID); err != nil {
			return svcErr.Persistence("remove from geo index", err)
		}
		return nil
	}
	if err := r.index.GeoAdd(ctx, userID, lat, lon); err != nil {
		return svcErr.Persistence("geo index", err)
	}
	r.log.Debug("location indexed", "user_id", userID)
	return nil
}

// Reindex loads every visible location from the store into the index.
func (r *RedisRanker) Reindex(ctx context.Context) (int, error) {
	users, err := r.profiles.ListLocated(ctx)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, u := range users {
		if math.Abs(*u.Latitude) > maxIndexableLat {
			continue
		}
		if err := r.index.GeoAdd(ctx, u.ID, *u.Latitude, *u.Longitude); err != nil {
			return n, svcErr.Persistence("geo index", err)
		}
		n++
	}
	return n, nil
}

// estimate blends compatibility (80%) with closeness inside the radius (20%).
func estimate(score, distanceKm, radiusKm float64) float64 {
	proximity := 1.0
	if radiusKm > 0 {
		proximity = math.Max(0, 1-distanceKm/radiusKm)
	}
	v := (1-proximityWeight)*score + proximityWeight*proximity
	return math.Round(v*1e4) / 1e4
}

func countrySet(codes []string) map[string]struct{} {
	set := make(map[string]struct{}, len(codes)+1)
	for _, c := range codes {
		if c = strings.ToUpper(strings.TrimSpace(c)); c != "" {
			set[c] = struct{}{}
		}
	}
	return set
}

func compareIDs(a, b uint64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
