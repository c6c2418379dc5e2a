package matching

import (
	"context"
	"time"

	svcErr "github.com/oggyb/muzz-matcher/internal/errors"
)

// MatchView is a match from one participant's point of view.
type MatchView struct {
	MatchID     uint64
	OtherUserID uint64
	Score       float64
	MatchedAt   time.Time
}

// Liker is a user who gave a positive decision.
type Liker struct {
	UserID  uint64
	LikedAt time.Time
}

// GetMatches lists userID's active matches, newest first.
func (s *Service) GetMatches(ctx context.Context, userID uint64, token *string, limit int) ([]MatchView, *string, error) {
	size, err := s.checkUser(ctx, userID, limit)
	if err != nil {
		return nil, nil, err
	}

	matches, next, err := s.matches.ListForUser(ctx, userID, token, size)
	if err != nil {
		return nil, nil, err
	}
	out := make([]MatchView, 0, len(matches))
	for _, m := range matches {
		out = append(out, MatchView{
			MatchID:     m.ID,
			OtherUserID: m.Other(userID),
			Score:       m.Score,
			MatchedAt:   m.CreatedAt,
		})
	}
	return out, next, nil
}

// ListLikedYou lists users who liked userID, excluding users userID passed.
func (s *Service) ListLikedYou(ctx context.Context, userID uint64, token *string, limit int) ([]Liker, *string, error) {
	size, err := s.checkUser(ctx, userID, limit)
	if err != nil {
		return nil, nil, err
	}
	rows, next, err := s.interactions.GetLikers(ctx, userID, token, size)
	if err != nil {
		return nil, nil, err
	}
	out := make([]Liker, 0, len(rows))
	for _, r := range rows {
		out = append(out, Liker{UserID: r.ActorID, LikedAt: r.UpdatedAt})
	}
	return out, next, nil
}

// ListNewLikedYou is ListLikedYou without the users userID already liked back.
func (s *Service) ListNewLikedYou(ctx context.Context, userID uint64, token *string, limit int) ([]Liker, *string, error) {
	size, err := s.checkUser(ctx, userID, limit)
	if err != nil {
		return nil, nil, err
	}
	rows, next, err := s.interactions.GetNewLikers(ctx, userID, token, size)
	if err != nil {
		return nil, nil, err
	}
	out := make([]Liker, 0, len(rows))
	for _, r := range rows {
		out = append(out, Liker{UserID: r.ActorID, LikedAt: r.UpdatedAt})
	}
	return out, next, nil
}

// CountLikedYou returns how many users liked userID.
// Cache-first strategy:
//  1. Attempts to read from Redis (likes:count:userID).
//  2. On a miss or cache error, counts in the DB.
//  3. Stores the DB count back with a 1h TTL.
func (s *Service) CountLikedYou(ctx context.Context, userID uint64) (int64, error) {
	if userID == 0 {
		return 0, svcErr.Invalid("user_id", "must be a positive integer")
	}

	if s.counter != nil {
		n, ok, err := s.counter.GetLikeCount(ctx, userID)
		if err != nil {
			s.log.Warn("like count cache read failed", "user_id", userID, "err", err)
		} else if ok {
			return n, nil
		}
	}

	if _, err := s.users.GetProfile(ctx, userID); err != nil {
		return 0, err
	}
	n, err := s.interactions.CountLikers(ctx, userID)
	if err != nil {
		return 0, err
	}
	if s.counter != nil {
		if err := s.counter.SetLikeCount(ctx, userID, n); err != nil {
			s.log.Warn("like count cache write failed", "user_id", userID, "err", err)
		}
	}
	return n, nil
}

func (s *Service) checkUser(ctx context.Context, userID uint64, limit int) (int, error) {
	if userID == 0 {
		return 0, svcErr.Invalid("user_id", "must be a positive integer")
	}
	size, err := pageSize(limit)
	if err != nil {
		return 0, err
	}
	if _, err := s.users.GetProfile(ctx, userID); err != nil {
		return 0, err
	}
	return size, nil
}
