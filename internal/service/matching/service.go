// Package matching records user decisions and promotes reciprocal likes into
// matches.
//
// Consistency rests on the store: the interaction upsert reads the previous
// decision under a row lock in one transaction, and match creation is an
// insert-if-absent on the canonical pair, so concurrent callers in any
// number of processes converge on one row.
package matching

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/oggyb/muzz-matcher/internal/db"
	svcErr "github.com/oggyb/muzz-matcher/internal/errors"
	"github.com/oggyb/muzz-matcher/internal/notify"
	"github.com/oggyb/muzz-matcher/internal/scoring"
)

// Page sizes for the listing operations.
const (
	DefaultPageSize = 20
	MaxPageSize     = 50
)

// UserStore resolves active users.
type UserStore interface {
	GetProfile(ctx context.Context, userID uint64) (db.User, error)
}

// InteractionStore persists decisions.
type InteractionStore interface {
	Upsert(ctx context.Context, actorID, targetID uint64, action string) (previous string, err error)
	HasPositive(ctx context.Context, actorID, targetID uint64) (bool, error)
	GetLikers(ctx context.Context, targetID uint64, token *string, limit int) ([]db.Interaction, *string, error)
	GetNewLikers(ctx context.Context, targetID uint64, token *string, limit int) ([]db.Interaction, *string, error)
	CountLikers(ctx context.Context, targetID uint64) (int64, error)
}

// MatchStore persists matches.
type MatchStore interface {
	CreateIfAbsent(ctx context.Context, userA, userB uint64, score float64, breakdown map[string]float64) (db.Match, bool, error)
	SetStatus(ctx context.Context, userA, userB uint64, status string) (bool, error)
	ListForUser(ctx context.Context, userID uint64, token *string, limit int) ([]db.Match, *string, error)
}

// LikeCounter caches liked-you counts.
type LikeCounter interface {
	GetLikeCount(ctx context.Context, userID uint64) (int64, bool, error)
	SetLikeCount(ctx context.Context, userID uint64, count int64) error
	InvalidateLikeCount(ctx context.Context, userID uint64) error
}

// Notifier is told about new matches. Calls are fire-and-forget.
type Notifier interface {
	NotifyMatch(ctx context.Context, ev notify.MatchCreated) error
}

// Deps bundles the collaborators of Service.
type Deps struct {
	Users        UserStore
	Interactions InteractionStore
	Matches      MatchStore
	// Counter and Notifier are optional.
	Counter  LikeCounter
	Notifier Notifier
	Scorer   *scoring.Scorer
	Logger   *slog.Logger
}

// Service is the action/match state machine.
type Service struct {
	users         UserStore
	interactions  InteractionStore
	matches       MatchStore
	counter       LikeCounter
	notifier      Notifier
	scorer        *scoring.Scorer
	log           *slog.Logger
	notifyTimeout time.Duration
}

// NewService wires the state machine. notifyTimeout bounds each notifier call.
func NewService(d Deps, notifyTimeout time.Duration) *Service {
	if d.Notifier == nil {
		d.Notifier = notify.Nop{}
	}
	if notifyTimeout <= 0 {
		notifyTimeout = 2 * time.Second
	}
	return &Service{
		users:         d.Users,
		interactions:  d.Interactions,
		matches:       d.Matches,
		counter:       d.Counter,
		notifier:      d.Notifier,
		scorer:        d.Scorer,
		log:           d.Logger,
		notifyTimeout: notifyTimeout,
	}
}

// ActionResult is the outcome of RecordAction.
type ActionResult struct {
	Action  string
	IsMatch bool
	MatchID *uint64
}

// RecordAction stores actor's decision about target and reports whether the
// pair is now matched.
//
// Behavior:
//   - action must be like, pass or super_like; actor and target must differ.
//   - Both users must exist and be active.
//   - The decision is upserted; a pass never creates a match and deactivates
//     an existing one.
//   - A positive decision meeting a positive decision from target creates the
//     match once, scored by the compatibility scorer. Repeats return the same
//     match with its original score.
//
// Persistence failures are retryable: resubmitting the same action is safe.
func (s *Service) RecordAction(ctx context.Context, actorID, targetID uint64, action string) (ActionResult, error) {
	action = strings.ToLower(strings.TrimSpace(action))
	if err := validateAction(actorID, targetID, action); err != nil {
		return ActionResult{}, err
	}

	actor, err := s.users.GetProfile(ctx, actorID)
	if err != nil {
		return ActionResult{}, err
	}
	target, err := s.users.GetProfile(ctx, targetID)
	if err != nil {
		return ActionResult{}, err
	}

	log := s.log.With("actor_id", actorID, "target_id", targetID, "action", action)

	previous, err := s.upsert(ctx, actorID, targetID, action)
	if err != nil {
		log.Error("record interaction failed", "err", err)
		return ActionResult{}, err
	}
	s.refreshCounters(ctx, actorID, targetID, previous, action)

	res := ActionResult{Action: action}

	if action == db.ActionPass {
		if db.IsPositive(previous) {
			changed, err := s.matches.SetStatus(ctx, actorID, targetID, db.MatchInactive)
			if err != nil {
				return ActionResult{}, err
			}
			if changed {
				log.Info("match deactivated")
			}
		}
		return res, nil
	}

	reciprocal, err := s.interactions.HasPositive(ctx, targetID, actorID)
	if err != nil {
		return ActionResult{}, err
	}
	if !reciprocal {
		return res, nil
	}

	m, fresh, err := s.promote(ctx, actor, target)
	if err != nil {
		log.Error("match creation failed", "err", err)
		return ActionResult{}, err
	}
	if fresh {
		log.Info("match created", "match_id", m.ID, "score", m.Score)
		s.notifyAsync(ctx, m)
	}

	id := m.ID
	res.IsMatch = true
	res.MatchID = &id
	return res, nil
}

// upsertAttempts bounds how often a decision is re-run after a write conflict.
const upsertAttempts = 3

// upsert stores the decision, re-running it when the store reports a lost
// lock race.
func (s *Service) upsert(ctx context.Context, actorID, targetID uint64, action string) (string, error) {
	for attempt := 1; ; attempt++ {
		previous, err := s.interactions.Upsert(ctx, actorID, targetID, action)
		if err == nil || !errors.Is(err, svcErr.ErrConflict) || attempt == upsertAttempts || ctx.Err() != nil {
			return previous, err
		}
		s.log.Debug("interaction upsert conflicted, retrying",
			"actor_id", actorID, "target_id", targetID, "attempt", attempt)
	}
}

// promote creates the pair's match, or re-activates the one a pass disabled.
// fresh reports whether the match became active because of this call.
func (s *Service) promote(ctx context.Context, actor, target db.User) (db.Match, bool, error) {
	low, high := actor, target
	if high.ID < low.ID {
		low, high = high, low
	}
	score := s.scorer.Score(low.Profile(), high.Profile())

	m, created, err := s.matches.CreateIfAbsent(ctx, low.ID, high.ID, score.Total, score.Breakdown)
	if err != nil {
		return db.Match{}, false, err
	}
	if created || m.Status == db.MatchActive {
		return m, created, nil
	}

	changed, err := s.matches.SetStatus(ctx, low.ID, high.ID, db.MatchActive)
	if err != nil {
		return db.Match{}, false, err
	}
	m.Status = db.MatchActive
	return m, changed, nil
}

func (s *Service) notifyAsync(ctx context.Context, m db.Match) {
	ev := notify.MatchCreated{
		MatchID:   m.ID,
		UserIDs:   [2]uint64{m.UserLowID, m.UserHighID},
		Score:     m.Score,
		CreatedAt: m.CreatedAt,
	}
	// Detached from the request: a cancelled caller must not drop the event.
	nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.notifyTimeout)
	go func() {
		defer cancel()
		if err := s.notifier.NotifyMatch(nctx, ev); err != nil {
			s.log.Warn("match notification failed", "match_id", m.ID, "err", err)
		}
	}()
}

// refreshCounters drops cached liked-you counts the decision may have
// changed. Cache errors are logged and otherwise ignored.
func (s *Service) refreshCounters(ctx context.Context, actorID, targetID uint64, previous, action string) {
	if s.counter == nil {
		return
	}
	var stale []uint64
	if db.IsPositive(previous) != db.IsPositive(action) {
		stale = append(stale, targetID)
	}
	// the actor's own count hides users the actor passed
	if (previous == db.ActionPass) != (action == db.ActionPass) {
		stale = append(stale, actorID)
	}
	for _, id := range stale {
		if err := s.counter.InvalidateLikeCount(ctx, id); err != nil {
			s.log.Warn("invalidate like count failed", "user_id", id, "err", err)
		}
	}
}

func validateAction(actorID, targetID uint64, action string) error {
	switch action {
	case db.ActionLike, db.ActionPass, db.ActionSuperLike:
	default:
		return svcErr.Invalid("action", fmt.Sprintf("must be one of like, pass, super_like; got %q", action))
	}
	if actorID == 0 {
		return svcErr.Invalid("user_id", "must be a positive integer")
	}
	if targetID == 0 {
		return svcErr.Invalid("target_user_id", "must be a positive integer")
	}
	if actorID == targetID {
		return svcErr.Invalid("target_user_id", "cannot act on yourself")
	}
	return nil
}

func pageSize(limit int) (int, error) {
	switch {
	case limit < 0:
		return 0, svcErr.Invalid("limit", "must not be negative")
	case limit == 0:
		return DefaultPageSize, nil
	case limit > MaxPageSize:
		return MaxPageSize, nil
	}
	return limit, nil
}
