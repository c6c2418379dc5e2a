package app

import (
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/oggyb/muzz-matcher/internal/cache"
	"github.com/oggyb/muzz-matcher/internal/config"
	"github.com/oggyb/muzz-matcher/internal/geo"
	"github.com/oggyb/muzz-matcher/internal/notify"
	"github.com/oggyb/muzz-matcher/internal/repository"
	"github.com/oggyb/muzz-matcher/internal/scoring"
	"github.com/oggyb/muzz-matcher/internal/service/discovery"
	"github.com/oggyb/muzz-matcher/internal/service/matching"
)

// AppContext holds shared dependencies (DB, Redis, Logger, etc.) and the
// engine services built on top of them.
type AppContext struct {
	DB         *gorm.DB
	RedisCache *cache.RedisCache
	Logger     *slog.Logger
	Config     *config.Config

	Users        *repository.UserRepository
	Interactions *repository.InteractionRepository
	Matches      *repository.MatchRepository

	Scorer    *scoring.Scorer
	Ranker    *geo.RedisRanker
	Discovery *discovery.Service
	Matching  *matching.Service
}

// New creates a new AppContext and wires the engine from cfg.
func New(cfg *config.Config, db *gorm.DB, rdb *cache.RedisCache, logger *slog.Logger) (*AppContext, error) {
	scorer, err := scoring.NewScorer(cfg.Matching.Weights)
	if err != nil {
		return nil, fmt.Errorf("build scorer: %w", err)
	}

	a := &AppContext{
		DB:           db,
		RedisCache:   rdb,
		Logger:       logger,
		Config:       cfg,
		Users:        repository.NewUserRepository(db),
		Interactions: repository.NewInteractionRepository(db),
		Matches:      repository.NewMatchRepository(db),
		Scorer:       scorer,
	}

	a.Ranker = geo.NewRedisRanker(rdb, a.Users, scorer, cfg.Discovery.DefaultRadiusKm, logger.With("component", "geo"))

	a.Discovery = discovery.NewService(a.Users, a.Ranker, scorer, discovery.Config{
		DefaultLimit: cfg.Discovery.DefaultLimit,
		MaxLimit:     cfg.Discovery.MaxLimit,
		GeoTimeout:   cfg.Discovery.GeoTimeout,
		FallbackPool: cfg.Discovery.FallbackPool,
	}, logger.With("component", "discovery"))

	a.Matching = matching.NewService(matching.Deps{
		Users:        a.Users,
		Interactions: a.Interactions,
		Matches:      a.Matches,
		Counter:      rdb,
		Notifier:     notify.NewRedisNotifier(rdb, cfg.Notify.Channel),
		Scorer:       scorer,
		Logger:       logger.With("component", "matching"),
	}, cfg.Notify.Timeout)

	return a, nil
}
