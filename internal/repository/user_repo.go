package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/oggyb/muzz-matcher/internal/db"
	svcErr "github.com/oggyb/muzz-matcher/internal/errors"
)

// UserRepository reads profiles and the viewer-specific exclusion data the
// discovery flow needs.
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new repository bound to the given DB connection.
func NewUserRepository(database *gorm.DB) *UserRepository {
	return &UserRepository{db: database}
}

// discoverable restricts a query on users to active, non-banned accounts.
func discoverable(tx *gorm.DB) *gorm.DB {
	return tx.Where("users.active = ? AND users.banned = ?", true, false)
}

// GetProfile returns an active, non-banned user.
// Missing, inactive and banned users all map to ErrNotFound.
func (r *UserRepository) GetProfile(ctx context.Context, userID uint64) (db.User, error) {
	var u db.User
	err := r.db.WithContext(ctx).
		Scopes(discoverable).
		Where("users.id = ?", userID).
		Take(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return db.User{}, svcErr.NotFound(fmt.Sprintf("user %d", userID))
	}
	if err != nil {
		return db.User{}, svcErr.Persistence("get profile", err)
	}
	return u, nil
}

// GetProfiles bulk-loads discoverable users, keyed by id. Unknown or
// undiscoverable ids are silently absent from the result.
func (r *UserRepository) GetProfiles(ctx context.Context, ids []uint64) (map[uint64]db.User, error) {
	out := make(map[uint64]db.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var users []db.User
	err := r.db.WithContext(ctx).
		Scopes(discoverable).
		Where("users.id IN ?", ids).
		Find(&users).Error
	if err != nil {
		return nil, svcErr.Persistence("get profiles", err)
	}
	for _, u := range users {
		out[u.ID] = u
	}
	return out, nil
}

// ExcludedIDs returns every user the viewer must never see as a candidate:
// the viewer, users the viewer already decided on, and match partners
// (active or not).
func (r *UserRepository) ExcludedIDs(ctx context.Context, viewerID uint64) (map[uint64]struct{}, error) {
	excluded := map[uint64]struct{}{viewerID: {}}

	var decided []uint64
	err := r.db.WithContext(ctx).
		Model(&db.Interaction{}).
		Where("actor_id = ?", viewerID).
		Pluck("target_id", &decided).Error
	if err != nil {
		return nil, svcErr.Persistence("load decided users", err)
	}
	for _, id := range decided {
		excluded[id] = struct{}{}
	}

	var matches []db.Match
	err = r.db.WithContext(ctx).
		Select("user_low_id", "user_high_id").
		Where("user_low_id = ? OR user_high_id = ?", viewerID, viewerID).
		Find(&matches).Error
	if err != nil {
		return nil, svcErr.Persistence("load matched users", err)
	}
	for _, m := range matches {
		excluded[m.Other(viewerID)] = struct{}{}
	}
	return excluded, nil
}

// FallbackQuery parameterises ListFallbackCandidates.
type FallbackQuery struct {
	Viewer             db.User
	ExcludedCountries  []string
	PreferredCountries []string
	Limit              int
	// Seed orders users within a rank, so truncation at Limit differs
	// between seeds.
	Seed uint64
}

// tieModulus is the prime (2^31-1) behind the seeded tie order. Ids below it
// map to distinct positions for every seed.
const tieModulus = 2147483647

// tieOrder returns the affine permutation id -> (id*mul + add) % tieModulus
// selected by seed.
func tieOrder(seed uint64) clause.Expr {
	mul := int64(seed%(tieModulus-1) + 1)
	add := int64((seed >> 32) % tieModulus)
	return clause.Expr{SQL: "(users.id * ? + ?) % ?", Vars: []any{mul, add, tieModulus}}
}

// FallbackRank is the ordering key ListFallbackCandidates sorted by. Rows
// with equal ranks come back in seeded order.
type FallbackRank struct {
	CountryRank int
	TierDelta   int
}

// FallbackCandidate is a user plus the rank it was ordered by.
type FallbackCandidate struct {
	User db.User
	Rank FallbackRank
}

// ListFallbackCandidates is the deterministic store query behind discovery
// when the geolocation ranker is unavailable.
//
// Behavior:
//   - Only active, non-banned users.
//   - Excludes the viewer, users the viewer decided on and matched users.
//   - Excludes ExcludedCountries.
//   - Ordered by same country first, then PreferredCountries, then ascending
//     |Δ pricing tier| (unknown tiers last), then a permutation of ids
//     picked by Seed.
func (r *UserRepository) ListFallbackCandidates(ctx context.Context, q FallbackQuery) ([]FallbackCandidate, error) {
	viewer := q.Viewer
	query := r.db.WithContext(ctx).
		Scopes(discoverable).
		Where("users.id <> ?", viewer.ID).
		Where(`NOT EXISTS (
			SELECT 1 FROM interactions i
			WHERE i.actor_id = ? AND i.target_id = users.id
		)`, viewer.ID).
		Where(`NOT EXISTS (
			SELECT 1 FROM matches m
			WHERE (m.user_low_id = ? AND m.user_high_id = users.id)
			   OR (m.user_high_id = ? AND m.user_low_id = users.id)
		)`, viewer.ID, viewer.ID)

	if excluded := upperAll(q.ExcludedCountries); len(excluded) > 0 {
		query = query.Where("users.country_code NOT IN ?", excluded)
	}

	countryRank := clause.Expr{SQL: "CASE WHEN users.country_code = ? THEN 0 ELSE 2 END", Vars: []any{viewer.CountryCode}}
	if preferred := upperAll(q.PreferredCountries); len(preferred) > 0 {
		countryRank = clause.Expr{
			SQL:  "CASE WHEN users.country_code = ? THEN 0 WHEN users.country_code IN ? THEN 1 ELSE 2 END",
			Vars: []any{viewer.CountryCode, preferred},
		}
	}
	tierDelta := clause.Expr{SQL: "0"}
	if viewer.PricingTier != nil {
		tierDelta = clause.Expr{
			SQL:  "CASE WHEN users.pricing_tier IS NULL THEN 99 ELSE ABS(users.pricing_tier - ?) END",
			Vars: []any{*viewer.PricingTier},
		}
	}

	type row struct {
		db.User
		CountryRank int
		TierDelta   int
	}
	var rows []row
	err := query.
		Model(&db.User{}).
		Select("users.*, (?) AS country_rank, (?) AS tier_delta, (?) AS tie_key", countryRank, tierDelta, tieOrder(q.Seed)).
		Order("country_rank ASC, tier_delta ASC, tie_key ASC, users.id ASC").
		Limit(q.Limit).
		Find(&rows).Error
	if err != nil {
		return nil, svcErr.Persistence("list fallback candidates", err)
	}

	out := make([]FallbackCandidate, 0, len(rows))
	for _, r := range rows {
		out = append(out, FallbackCandidate{
			User: r.User,
			Rank: FallbackRank{CountryRank: r.CountryRank, TierDelta: r.TierDelta},
		})
	}
	return out, nil
}

// UpdateLocation stores the user's coordinates. Nil coordinates clear them.
// Callers check the user exists first.
func (r *UserRepository) UpdateLocation(ctx context.Context, userID uint64, lat, lon *float64) error {
	err := r.db.WithContext(ctx).
		Model(&db.User{}).
		Where("id = ?", userID).
		Updates(map[string]any{"latitude": lat, "longitude": lon}).Error
	if err != nil {
		return svcErr.Persistence("update location", err)
	}
	return nil
}

// ListLocated returns discoverable users with a visible location. Used to
// rebuild the geo index.
func (r *UserRepository) ListLocated(ctx context.Context) ([]db.User, error) {
	var users []db.User
	err := r.db.WithContext(ctx).
		Scopes(discoverable).
		Where("users.location_visible = ? AND users.latitude IS NOT NULL AND users.longitude IS NOT NULL", true).
		Order("users.id").
		Find(&users).Error
	if err != nil {
		return nil, svcErr.Persistence("list located users", err)
	}
	return users, nil
}

func upperAll(codes []string) []string {
	out := make([]string, 0, len(codes))
	for _, c := range codes {
		if c = strings.ToUpper(strings.TrimSpace(c)); c != "" {
			out = append(out, c)
		}
	}
	return out
}
