package repository

import (
	"context"
	"errors"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/oggyb/muzz-matcher/internal/db"
	svcErr "github.com/oggyb/muzz-matcher/internal/errors"
	"github.com/oggyb/muzz-matcher/internal/utils/pagination"
)

var positiveActions = []string{db.ActionLike, db.ActionSuperLike}

// InteractionRepository provides data access methods for the Interaction model.
// It encapsulates all queries related to likes/passes between users.
type InteractionRepository struct {
	db *gorm.DB
}

// NewInteractionRepository creates a new repository bound to the given DB connection.
func NewInteractionRepository(database *gorm.DB) *InteractionRepository {
	return &InteractionRepository{db: database}
}

// Upsert records the decision made by actor -> target.
//
// Behavior:
//   - If (actor_id, target_id) exists → action and updated_at are overwritten.
//   - If it doesn’t exist → a new row is inserted.
//   - The previous action is read under a row lock in the same transaction,
//     so concurrent decisions on one pair each see the one before them.
//   - A lost lock race (deadlock, lock wait timeout) returns ErrConflict;
//     the transaction was rolled back and may be re-run.
//
// It returns the action that was stored before this call ("" if none).
//
// Example:
//
//	repo.Upsert(ctx, 1, 2, db.ActionLike) // user 1 liked user 2
func (r *InteractionRepository) Upsert(
	ctx context.Context,
	actorID, targetID uint64,
	action string,
) (previous string, err error) {
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var prev db.Interaction
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("action").
			Where("actor_id = ? AND target_id = ?", actorID, targetID).
			Limit(1).
			Find(&prev).Error
		if err != nil {
			return err
		}
		previous = prev.Action

		interaction := db.Interaction{
			ActorID:  actorID,
			TargetID: targetID,
			Action:   action,
		}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "actor_id"}, {Name: "target_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"action", "updated_at"}),
		}).Create(&interaction).Error
	})
	switch {
	case err == nil:
		return previous, nil
	case isLockConflict(err):
		return "", svcErr.Conflict("upsert interaction", err)
	default:
		return "", svcErr.Persistence("upsert interaction", err)
	}
}

// MySQL error numbers for a transaction that lost a lock race.
const (
	mysqlLockWaitTimeout = 1205
	mysqlDeadlock        = 1213
)

func isLockConflict(err error) bool {
	var me *mysql.MySQLError
	if !errors.As(err, &me) {
		return false
	}
	return me.Number == mysqlDeadlock || me.Number == mysqlLockWaitTimeout
}

// HasPositive checks whether actor has liked or super-liked target.
//
// Used for the reciprocity check in RecordAction.
func (r *InteractionRepository) HasPositive(
	ctx context.Context,
	actorID, targetID uint64,
) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.Interaction{}).
		Where("actor_id = ? AND target_id = ? AND action IN ?", actorID, targetID, positiveActions).
		Count(&count).Error
	if err != nil {
		return false, svcErr.Persistence("check reciprocal interaction", err)
	}
	return count > 0, nil
}

// GetLikers returns the positive decisions other users made about target.
//
// Behavior:
//   - Only rows where target_id = X and action is like/super_like.
//   - Excludes users that the target explicitly passed.
//   - Ordered by updated_at DESC, actor_id DESC.
//   - Supports cursor-based pagination via paginationToken.
//
// Example:
//
//	repo.GetLikers(ctx, 42, nil, 20) // first 20 people who liked user 42
func (r *InteractionRepository) GetLikers(
	ctx context.Context,
	targetID uint64,
	paginationToken *string,
	limit int,
) ([]db.Interaction, *string, error) {
	return r.likers(ctx, targetID, paginationToken, limit, false)
}

// GetNewLikers is GetLikers without the mutual likes: only users the target
// has not liked back.
func (r *InteractionRepository) GetNewLikers(
	ctx context.Context,
	targetID uint64,
	paginationToken *string,
	limit int,
) ([]db.Interaction, *string, error) {
	return r.likers(ctx, targetID, paginationToken, limit, true)
}

func (r *InteractionRepository) likers(
	ctx context.Context,
	targetID uint64,
	paginationToken *string,
	limit int,
	onlyUnanswered bool,
) ([]db.Interaction, *string, error) {
	cursor, err := pagination.Decode(getString(paginationToken))
	if err != nil {
		return nil, nil, svcErr.Invalid("pagination_token", err.Error())
	}

	query := r.likersQuery(ctx, targetID, onlyUnanswered).
		Order("i.updated_at DESC, i.actor_id DESC").
		Limit(limit + 1)

	// apply cursor
	if !cursor.IsZero() {
		ts := cursor.Time()
		query = query.Where(
			"(i.updated_at < ? OR (i.updated_at = ? AND i.actor_id < ?))",
			ts, ts, cursor.ID,
		)
	}

	var rows []db.Interaction
	if err := query.Find(&rows).Error; err != nil {
		return nil, nil, svcErr.Persistence("list likers", err)
	}

	// pagination: build next cursor if needed
	var nextToken *string
	if len(rows) > limit {
		last := rows[limit-1]
		token, _ := pagination.Encode(pagination.After(last.ActorID, last.UpdatedAt))
		nextToken = &token
		rows = rows[:limit]
	}
	return rows, nextToken, nil
}

// CountLikers returns how many users liked the given target.
//
// Same filter as GetLikers. Used in conjunction with the Redis cache (DB is
// the fallback).
func (r *InteractionRepository) CountLikers(ctx context.Context, targetID uint64) (int64, error) {
	var count int64
	if err := r.likersQuery(ctx, targetID, false).Count(&count).Error; err != nil {
		return 0, svcErr.Persistence("count likers", err)
	}
	return count, nil
}

func (r *InteractionRepository) likersQuery(ctx context.Context, targetID uint64, onlyUnanswered bool) *gorm.DB {
	query := r.db.WithContext(ctx).
		Table("interactions i").
		Where("i.target_id = ? AND i.action IN ?", targetID, positiveActions).
		Where(`
			NOT EXISTS (
				SELECT 1 FROM interactions i2
				WHERE i2.actor_id = ?
				  AND i2.target_id = i.actor_id
				  AND i2.action = ?
			)`, targetID, db.ActionPass)

	if onlyUnanswered {
		query = query.Where(`
			NOT EXISTS (
				SELECT 1 FROM interactions i3
				WHERE i3.actor_id = i.target_id
				  AND i3.target_id = i.actor_id
				  AND i3.action IN ?
			)`, positiveActions)
	}
	return query
}

// getString safely dereferences a string pointer for pagination tokens.
func getString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
