package explore

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/oggyb/muzz-matcher/internal/app"
	svcErr "github.com/oggyb/muzz-matcher/internal/errors"
	"github.com/oggyb/muzz-matcher/internal/logger"
	pb "github.com/oggyb/muzz-matcher/internal/proto/explore"
	"github.com/oggyb/muzz-matcher/internal/service/discovery"
	"github.com/oggyb/muzz-matcher/internal/service/matching"
)

// LocationUpdater stores a user's position and keeps the spatial index in sync.
type LocationUpdater interface {
	UpdateLocation(ctx context.Context, userID uint64, lat, lon float64) error
}

// Service implements the Explore gRPC API.
// It translates wire messages to the discovery and matching services and
// maps their errors onto gRPC statuses.
type Service struct {
	appCtx    *app.AppContext
	discovery *discovery.Service
	matching  *matching.Service
	locations LocationUpdater

	pb.UnimplementedExploreServiceServer
}

// NewExploreService creates a new Explore service with dependencies from AppContext.
func NewExploreService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:    appCtx,
		discovery: appCtx.Discovery,
		matching:  appCtx.Matching,
		locations: appCtx.Ranker,
	}
}

// Discover returns ranked candidates for a user.
//
// Behavior:
//   - Tries the geolocation ranker first; falls back to the store query when
//     it fails, times out or finds nobody.
//   - Source reports which stage served the response.
//
// Example:
//
//	svc.Discover(ctx, &pb.DiscoverRequest{UserId: "42", Limit: 10})
func (s *Service) Discover(ctx context.Context, req *pb.DiscoverRequest) (*pb.DiscoverResponse, error) {
	s.log(ctx).Debug("Discover called", "user", req.GetUserId(), "limit", req.GetLimit())

	userID, err := parseID("user_id", req.GetUserId())
	if err != nil {
		return nil, svcErr.Map(err)
	}

	res, err := s.discovery.Discover(ctx, userID, discovery.Options{
		Limit:                 int(req.GetLimit()),
		MaxDistanceKm:         req.MaxDistanceKm,
		IncludeInternational:  req.IncludeInternational,
		MinCompatibilityScore: req.MinCompatibilityScore,
		PreferredCountries:    req.PreferredCountries,
		ExcludedCountries:     req.ExcludedCountries,
		Seed:                  req.Seed,
	})
	if err != nil {
		s.log(ctx).Error("Discover failed", "user", userID, "err", err)
		return nil, svcErr.Map(err)
	}

	resp := &pb.DiscoverResponse{
		Candidates: make([]*pb.Candidate, 0, len(res.Candidates)),
		HasMore:    res.HasMore,
		Source:     res.Source,
	}
	for _, c := range res.Candidates {
		resp.Candidates = append(resp.Candidates, &pb.Candidate{
			UserId:      formatID(c.UserID),
			CountryCode: c.CountryCode,
			Score:       c.Score,
			Breakdown:   c.Breakdown,
			DistanceKm:  c.DistanceKm,
		})
	}
	return resp, nil
}

// RecordAction stores a like, pass or super_like and reports a match.
//
// Example:
//
//	svc.RecordAction(ctx, &pb.RecordActionRequest{ActorUserId: "1", TargetUserId: "2", Action: "like"})
func (s *Service) RecordAction(ctx context.Context, req *pb.RecordActionRequest) (*pb.RecordActionResponse, error) {
	s.log(ctx).Debug(
		"RecordAction called",
		"actor", req.GetActorUserId(),
		"target", req.GetTargetUserId(),
		"action", req.GetAction(),
	)

	actorID, err := parseID("actor_user_id", req.GetActorUserId())
	if err != nil {
		return nil, svcErr.Map(err)
	}
	targetID, err := parseID("target_user_id", req.GetTargetUserId())
	if err != nil {
		return nil, svcErr.Map(err)
	}

	res, err := s.matching.RecordAction(ctx, actorID, targetID, req.GetAction())
	if err != nil {
		s.log(ctx).Error("RecordAction failed", "actor", actorID, "target", targetID, "err", err)
		return nil, svcErr.Map(err)
	}

	resp := &pb.RecordActionResponse{Action: res.Action, IsMatch: res.IsMatch}
	if res.MatchID != nil {
		id := formatID(*res.MatchID)
		resp.MatchId = &id
	}
	return resp, nil
}

// GetMatches lists a user's active matches, newest first.
func (s *Service) GetMatches(ctx context.Context, req *pb.GetMatchesRequest) (*pb.GetMatchesResponse, error) {
	userID, err := parseID("user_id", req.GetUserId())
	if err != nil {
		return nil, svcErr.Map(err)
	}

	matches, next, err := s.matching.GetMatches(ctx, userID, req.PaginationToken, int(req.Limit))
	if err != nil {
		s.log(ctx).Error("GetMatches failed", "user", userID, "err", err)
		return nil, svcErr.Map(err)
	}

	resp := &pb.GetMatchesResponse{Matches: make([]*pb.Match, 0, len(matches)), NextPaginationToken: next}
	for _, m := range matches {
		resp.Matches = append(resp.Matches, &pb.Match{
			MatchId:       formatID(m.MatchID),
			OtherUserId:   formatID(m.OtherUserID),
			Score:         m.Score,
			MatchedAtUnix: uint64(m.MatchedAt.UnixMilli()),
		})
	}
	return resp, nil
}

// UpdateLocation stores the user's coordinates and refreshes the geo index.
func (s *Service) UpdateLocation(ctx context.Context, req *pb.UpdateLocationRequest) (*pb.UpdateLocationResponse, error) {
	userID, err := parseID("user_id", req.GetUserId())
	if err != nil {
		return nil, svcErr.Map(err)
	}
	if err := s.locations.UpdateLocation(ctx, userID, req.Latitude, req.Longitude); err != nil {
		s.log(ctx).Error("UpdateLocation failed", "user", userID, "err", err)
		return nil, svcErr.Map(err)
	}
	return &pb.UpdateLocationResponse{}, nil
}

// ListLikedYou returns all users who liked the given recipient.
//
// Behavior:
//   - Excludes users that the recipient explicitly passed.
//   - Supports cursor-based pagination with paginationToken.
//   - Returns actor_id + timestamp pairs.
//
// Example:
//
//	svc.ListLikedYou(ctx, &pb.ListLikedYouRequest{RecipientUserId: "42"})
func (s *Service) ListLikedYou(ctx context.Context, req *pb.ListLikedYouRequest) (*pb.ListLikedYouResponse, error) {
	s.log(ctx).Debug("ListLikedYou called", "recipient", req.GetRecipientUserId(), "token", req.GetPaginationToken())

	recipientID, err := parseID("recipient_user_id", req.GetRecipientUserId())
	if err != nil {
		return nil, svcErr.Map(err)
	}

	likers, next, err := s.matching.ListLikedYou(ctx, recipientID, req.PaginationToken, int(req.Limit))
	if err != nil {
		s.log(ctx).Error("ListLikedYou failed", "recipient", recipientID, "err", err)
		return nil, svcErr.Map(err)
	}

	resp := likersResponse(likers, next)
	s.log(ctx).Debug("ListLikedYou result", "liker_count", len(resp.Likers), "next_token", resp.GetNextPaginationToken())
	return resp, nil
}

// ListNewLikedYou returns all users who liked the recipient but have not been liked back.
//
// Example:
//
//	svc.ListNewLikedYou(ctx, &pb.ListLikedYouRequest{RecipientUserId: "42"})
func (s *Service) ListNewLikedYou(ctx context.Context, req *pb.ListLikedYouRequest) (*pb.ListLikedYouResponse, error) {
	s.log(ctx).Debug("ListNewLikedYou called", "recipient", req.GetRecipientUserId())

	recipientID, err := parseID("recipient_user_id", req.GetRecipientUserId())
	if err != nil {
		return nil, svcErr.Map(err)
	}

	likers, next, err := s.matching.ListNewLikedYou(ctx, recipientID, req.PaginationToken, int(req.Limit))
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return likersResponse(likers, next), nil
}

// CountLikedYou returns how many users liked the recipient. Served from the
// Redis counter when warm.
func (s *Service) CountLikedYou(ctx context.Context, req *pb.CountLikedYouRequest) (*pb.CountLikedYouResponse, error) {
	s.log(ctx).Debug("CountLikedYou called", "recipient", req.GetRecipientUserId())

	recipientID, err := parseID("recipient_user_id", req.GetRecipientUserId())
	if err != nil {
		return nil, svcErr.Map(err)
	}

	n, err := s.matching.CountLikedYou(ctx, recipientID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return &pb.CountLikedYouResponse{Count: uint64(n)}, nil
}

// log returns the request-scoped logger set by the transport.
func (s *Service) log(ctx context.Context) *slog.Logger {
	return logger.FromContext(ctx, s.appCtx.Logger)
}

func likersResponse(likers []matching.Liker, next *string) *pb.ListLikedYouResponse {
	resp := &pb.ListLikedYouResponse{
		Likers:              make([]*pb.ListLikedYouResponse_Liker, 0, len(likers)),
		NextPaginationToken: next,
	}
	for _, l := range likers {
		resp.Likers = append(resp.Likers, &pb.ListLikedYouResponse_Liker{
			ActorId:       formatID(l.UserID),
			UnixTimestamp: uint64(l.LikedAt.UnixMilli()),
		})
	}
	return resp
}

func parseID(field, raw string) (uint64, error) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, svcErr.Invalid(field, "must be a positive integer")
	}
	return id, nil
}

func formatID(id uint64) string { return strconv.FormatUint(id, 10) }
