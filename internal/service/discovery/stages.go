package discovery

import (
	"context"
	"errors"
	"math/rand/v2"

	"github.com/oggyb/muzz-matcher/internal/db"
	"github.com/oggyb/muzz-matcher/internal/geo"
	"github.com/oggyb/muzz-matcher/internal/repository"
)

// Outcome tags a stage result.
type Outcome int

const (
	Ranked Outcome = iota
	Degraded
)

func (o Outcome) String() string {
	if o == Degraded {
		return "degraded"
	}
	return "ranked"
}

// StageResult is either a ranked candidate list or a degradation with the
// reason it happened.
type StageResult struct {
	Outcome    Outcome
	Candidates []Candidate
	Reason     string
}

func ranked(c []Candidate) StageResult { return StageResult{Outcome: Ranked, Candidates: c} }

func degraded(reason string) StageResult { return StageResult{Outcome: Degraded, Reason: reason} }

// geoStage asks the ranker under the configured timeout. It never returns an
// error: every failure is a degradation.
func (s *Service) geoStage(ctx context.Context, viewer db.User, opts Options) StageResult {
	if s.ranker == nil {
		return degraded("geo ranker not configured")
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.GeoTimeout)
	defer cancel()

	q := geo.Query{
		IncludeInternational: opts.IncludeInternational,
		PreferredCountries:   opts.PreferredCountries,
		ExcludedCountries:    opts.ExcludedCountries,
		Limit:                s.cfg.FallbackPool,
	}
	if opts.MaxDistanceKm != nil {
		q.MaxDistanceKm = *opts.MaxDistanceKm
	}

	found, err := s.ranker.FindCandidates(ctx, viewer, q)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
			return degraded("geo ranker timed out")
		}
		return degraded(err.Error())
	}
	if len(found) == 0 {
		return degraded("no nearby candidates")
	}

	// The ranker knows nothing about decisions and matches.
	excluded, err := s.store.ExcludedIDs(ctx, viewer.ID)
	if err != nil {
		return degraded("load exclusions: " + err.Error())
	}

	out := make([]Candidate, 0, len(found))
	for _, c := range found {
		if _, skip := excluded[c.UserID]; skip {
			continue
		}
		if c.Compatibility.Total < opts.MinCompatibilityScore {
			continue
		}
		d := c.DistanceKm
		out = append(out, Candidate{
			UserID:      c.UserID,
			CountryCode: c.CountryCode,
			Score:       c.Compatibility.Total,
			Breakdown:   c.Compatibility.Breakdown,
			DistanceKm:  &d,
		})
	}
	if len(out) == 0 {
		return degraded("no eligible nearby candidates")
	}
	return ranked(out)
}

// fallbackStage is the deterministic store query. Its order is same country
// first, then pricing tier distance, then a seeded shuffle among ties. The
// seed also reaches the store, which decides who in a large tie group makes
// the pool.
func (s *Service) fallbackStage(ctx context.Context, viewer db.User, opts Options) (StageResult, error) {
	seed := seedFor(opts)
	rows, err := s.store.ListFallbackCandidates(ctx, repository.FallbackQuery{
		Viewer:             viewer,
		ExcludedCountries:  opts.ExcludedCountries,
		PreferredCountries: opts.PreferredCountries,
		Limit:              s.cfg.FallbackPool,
		Seed:               seed,
	})
	if err != nil {
		return StageResult{}, err
	}

	shuffleTies(rows, rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)))

	viewerProfile := viewer.Profile()
	out := make([]Candidate, 0, len(rows))
	for _, row := range rows {
		if row.User.ID == viewer.ID {
			continue
		}
		p := row.User.Profile()
		res := s.scorer.Score(viewerProfile, p)
		if res.Total < opts.MinCompatibilityScore {
			continue
		}
		c := Candidate{
			UserID:      row.User.ID,
			CountryCode: row.User.CountryCode,
			Score:       res.Total,
			Breakdown:   res.Breakdown,
		}
		if viewerProfile.Location != nil && p.Location != nil {
			d := geo.DistanceKm(*viewerProfile.Location, *p.Location)
			c.DistanceKm = &d
		}
		out = append(out, c)
	}
	return ranked(out), nil
}

// shuffleTies permutes each run of equally ranked rows in place. rows must be
// sorted by rank.
func shuffleTies(rows []repository.FallbackCandidate, rng *rand.Rand) {
	for start := 0; start < len(rows); {
		end := start + 1
		for end < len(rows) && rows[end].Rank == rows[start].Rank {
			end++
		}
		run := rows[start:end]
		rng.Shuffle(len(run), func(i, j int) { run[i], run[j] = run[j], run[i] })
		start = end
	}
}
