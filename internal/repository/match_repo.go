package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/oggyb/muzz-matcher/internal/db"
	svcErr "github.com/oggyb/muzz-matcher/internal/errors"
	"github.com/oggyb/muzz-matcher/internal/utils/pagination"
)

// MatchRepository provides data access for matches.
type MatchRepository struct {
	db *gorm.DB
}

// NewMatchRepository creates a new repository bound to the given DB connection.
func NewMatchRepository(database *gorm.DB) *MatchRepository {
	return &MatchRepository{db: database}
}

// CreateIfAbsent inserts the match for the pair unless one already exists,
// and returns the row that ends up stored.
//
// Behavior:
//   - The pair is canonicalised (low < high) before insert.
//   - INSERT ... ON CONFLICT DO NOTHING on the unique pair index, so racing
//     callers converge on one row; losers re-read the winner.
//   - created reports whether this call inserted the row.
//   - An existing row keeps its original score and breakdown.
func (r *MatchRepository) CreateIfAbsent(
	ctx context.Context,
	userA, userB uint64,
	score float64,
	breakdown map[string]float64,
) (m db.Match, created bool, err error) {
	low, high := db.CanonicalPair(userA, userB)
	m = db.Match{
		UserLowID:  low,
		UserHighID: high,
		Score:      score,
		Breakdown:  toJSONMap(breakdown),
		Status:     db.MatchActive,
	}

	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_low_id"}, {Name: "user_high_id"}},
			DoNothing: true,
		}).
		Create(&m)
	if res.Error != nil && !errors.Is(res.Error, gorm.ErrDuplicatedKey) {
		return db.Match{}, false, svcErr.Persistence("create match", res.Error)
	}
	if res.Error == nil && res.RowsAffected == 1 {
		return m, true, nil
	}

	// Lost the race or the pair matched before.
	existing, err := r.GetByPair(ctx, low, high)
	if err != nil {
		return db.Match{}, false, err
	}
	return existing, false, nil
}

// GetByPair returns the match between two users in either order.
func (r *MatchRepository) GetByPair(ctx context.Context, userA, userB uint64) (db.Match, error) {
	low, high := db.CanonicalPair(userA, userB)
	var m db.Match
	err := r.db.WithContext(ctx).
		Where("user_low_id = ? AND user_high_id = ?", low, high).
		Take(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return db.Match{}, svcErr.NotFound(fmt.Sprintf("match %d/%d", low, high))
	}
	if err != nil {
		return db.Match{}, svcErr.Persistence("get match", err)
	}
	return m, nil
}

// SetStatus moves the pair's match to status. changed is false when there
// is no match or it already had that status.
func (r *MatchRepository) SetStatus(ctx context.Context, userA, userB uint64, status string) (changed bool, err error) {
	low, high := db.CanonicalPair(userA, userB)
	res := r.db.WithContext(ctx).
		Model(&db.Match{}).
		Where("user_low_id = ? AND user_high_id = ? AND status <> ?", low, high, status).
		Update("status", status)
	if res.Error != nil {
		return false, svcErr.Persistence("update match status", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// ListForUser returns the user's active matches.
//
// Behavior:
//   - Ordered by created_at DESC, id DESC (newest first).
//   - Supports cursor-based pagination via paginationToken.
func (r *MatchRepository) ListForUser(
	ctx context.Context,
	userID uint64,
	paginationToken *string,
	limit int,
) ([]db.Match, *string, error) {
	cursor, err := pagination.Decode(getString(paginationToken))
	if err != nil {
		return nil, nil, svcErr.Invalid("pagination_token", err.Error())
	}

	query := r.db.WithContext(ctx).
		Where("(user_low_id = ? OR user_high_id = ?) AND status = ?", userID, userID, db.MatchActive).
		Order("created_at DESC, id DESC").
		Limit(limit + 1)

	if !cursor.IsZero() {
		ts := cursor.Time()
		query = query.Where("(created_at < ? OR (created_at = ? AND id < ?))", ts, ts, cursor.ID)
	}

	var matches []db.Match
	if err := query.Find(&matches).Error; err != nil {
		return nil, nil, svcErr.Persistence("list matches", err)
	}

	var nextToken *string
	if len(matches) > limit {
		last := matches[limit-1]
		token, _ := pagination.Encode(pagination.After(last.ID, last.CreatedAt))
		nextToken = &token
		matches = matches[:limit]
	}
	return matches, nextToken, nil
}

func toJSONMap(breakdown map[string]float64) datatypes.JSONMap {
	out := make(datatypes.JSONMap, len(breakdown))
	for k, v := range breakdown {
		out[k] = v
	}
	return out
}

// BreakdownOf decodes a stored breakdown back into factor scores.
func BreakdownOf(m db.Match) map[string]float64 {
	out := make(map[string]float64, len(m.Breakdown))
	for k, v := range m.Breakdown {
		if f, ok := v.(float64); ok {
			out[k] = f
		}
	}
	return out
}
