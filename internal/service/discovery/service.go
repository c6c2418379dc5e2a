// Package discovery selects and ranks the candidates shown to a user.
//
// Selection runs as a two-stage strategy. The geolocation stage asks the
// ranker for nearby users under a short timeout; any failure or empty answer
// degrades to the fallback stage, a deterministic store query. Only a
// failure of both stages reaches the caller.
package discovery

import (
	"context"
	"log/slog"
	"math"
	"math/rand/v2"
	"time"

	"github.com/oggyb/muzz-matcher/internal/db"
	svcErr "github.com/oggyb/muzz-matcher/internal/errors"
	"github.com/oggyb/muzz-matcher/internal/geo"
	"github.com/oggyb/muzz-matcher/internal/repository"
	"github.com/oggyb/muzz-matcher/internal/scoring"
)

// Result sources.
const (
	SourceGeo      = "geo"
	SourceFallback = "fallback"
)

// Ranker is the geolocation ranker.
type Ranker interface {
	FindCandidates(ctx context.Context, viewer db.User, q geo.Query) ([]geo.Candidate, error)
}

// CandidateStore is the store access discovery needs.
type CandidateStore interface {
	GetProfile(ctx context.Context, userID uint64) (db.User, error)
	ExcludedIDs(ctx context.Context, viewerID uint64) (map[uint64]struct{}, error)
	ListFallbackCandidates(ctx context.Context, q repository.FallbackQuery) ([]repository.FallbackCandidate, error)
}

// Config tunes discovery.
type Config struct {
	DefaultLimit int
	MaxLimit     int
	GeoTimeout   time.Duration
	// FallbackPool caps how many rows either stage considers.
	FallbackPool int
}

// DefaultConfig matches the service defaults.
func DefaultConfig() Config {
	return Config{DefaultLimit: 10, MaxLimit: 50, GeoTimeout: 250 * time.Millisecond, FallbackPool: 150}
}

// Options are the per-request discovery parameters.
type Options struct {
	// Limit of 0 means the configured default; larger values are capped.
	Limit                 int
	MaxDistanceKm         *float64
	IncludeInternational  bool
	MinCompatibilityScore float64
	PreferredCountries    []string
	ExcludedCountries     []string
	// Seed fixes the tie-break shuffle; nil draws a fresh one per request.
	Seed *int64
}

// Candidate is one ranked user.
type Candidate struct {
	UserID      uint64
	CountryCode string
	Score       float64
	Breakdown   map[string]float64
	// DistanceKm is set when both users share a visible location.
	DistanceKm *float64
}

// Result is what Discover returns.
type Result struct {
	Candidates []Candidate
	HasMore    bool
	Source     string
}

// Service runs discovery.
type Service struct {
	store  CandidateStore
	ranker Ranker
	scorer *scoring.Scorer
	cfg    Config
	log    *slog.Logger
}

// NewService wires discovery. ranker may be nil, in which case every request
// is served by the fallback stage.
func NewService(store CandidateStore, ranker Ranker, scorer *scoring.Scorer, cfg Config, log *slog.Logger) *Service {
	def := DefaultConfig()
	if cfg.DefaultLimit <= 0 {
		cfg.DefaultLimit = def.DefaultLimit
	}
	if cfg.MaxLimit < cfg.DefaultLimit {
		cfg.MaxLimit = max(def.MaxLimit, cfg.DefaultLimit)
	}
	if cfg.GeoTimeout <= 0 {
		cfg.GeoTimeout = def.GeoTimeout
	}
	if cfg.FallbackPool <= 0 {
		cfg.FallbackPool = def.FallbackPool
	}
	return &Service{store: store, ranker: ranker, scorer: scorer, cfg: cfg, log: log}
}

// Discover returns up to Limit candidates for userID, best first.
//
// Errors:
//   - ErrValidation for bad options.
//   - ErrNotFound when the viewer is missing, inactive or banned.
//   - ErrPersistence when the fallback stage fails after the geo stage
//     degraded.
func (s *Service) Discover(ctx context.Context, userID uint64, opts Options) (Result, error) {
	limit, err := s.validate(userID, opts)
	if err != nil {
		return Result{}, err
	}

	viewer, err := s.store.GetProfile(ctx, userID)
	if err != nil {
		return Result{}, err
	}

	log := s.log.With("user_id", userID)

	stage := s.geoStage(ctx, viewer, opts)
	source := SourceGeo
	if stage.Outcome == Degraded {
		log.Warn("geo discovery degraded, using fallback", "reason", stage.Reason)
		stage, err = s.fallbackStage(ctx, viewer, opts)
		if err != nil {
			log.Error("fallback discovery failed", "err", err)
			return Result{}, err
		}
		source = SourceFallback
	}

	res := Result{Source: source, Candidates: stage.Candidates}
	if len(res.Candidates) > limit {
		res.Candidates = res.Candidates[:limit]
		res.HasMore = true
	}
	log.Debug("discovery served", "source", source, "count", len(res.Candidates), "has_more", res.HasMore)
	return res, nil
}

func (s *Service) validate(userID uint64, opts Options) (int, error) {
	if userID == 0 {
		return 0, svcErr.Invalid("user_id", "must be a positive integer")
	}
	if opts.Limit < 0 {
		return 0, svcErr.Invalid("limit", "must not be negative")
	}
	if math.IsNaN(opts.MinCompatibilityScore) || opts.MinCompatibilityScore < 0 || opts.MinCompatibilityScore > 1 {
		return 0, svcErr.Invalid("min_compatibility_score", "must be within [0, 1]")
	}
	if d := opts.MaxDistanceKm; d != nil && (math.IsNaN(*d) || math.IsInf(*d, 0) || *d <= 0) {
		return 0, svcErr.Invalid("max_distance_km", "must be a positive finite number")
	}

	limit := opts.Limit
	if limit == 0 {
		limit = s.cfg.DefaultLimit
	}
	return min(limit, s.cfg.MaxLimit), nil
}

// seedFor returns the shuffle seed for a request.
func seedFor(opts Options) uint64 {
	if opts.Seed != nil {
		return uint64(*opts.Seed)
	}
	return rand.Uint64()
}
