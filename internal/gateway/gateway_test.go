package gateway_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	svcErr "github.com/oggyb/muzz-matcher/internal/errors"
	"github.com/oggyb/muzz-matcher/internal/gateway"
	pb "github.com/oggyb/muzz-matcher/internal/proto/explore"
	"github.com/oggyb/muzz-matcher/internal/testutil"
)

type stubExplore struct {
	pb.UnimplementedExploreServiceServer

	discoverReq *pb.DiscoverRequest
	actionReq   *pb.RecordActionRequest
	locationReq *pb.UpdateLocationRequest
	err         error
}

func (s *stubExplore) Discover(_ context.Context, req *pb.DiscoverRequest) (*pb.DiscoverResponse, error) {
	s.discoverReq = req
	if s.err != nil {
		return nil, s.err
	}
	return &pb.DiscoverResponse{
		Candidates: []*pb.Candidate{{UserId: "7", Score: 0.81, Breakdown: map[string]float64{"interests": 1}}},
		Source:     "geo",
	}, nil
}

func (s *stubExplore) RecordAction(_ context.Context, req *pb.RecordActionRequest) (*pb.RecordActionResponse, error) {
	s.actionReq = req
	if s.err != nil {
		return nil, s.err
	}
	id := "11"
	return &pb.RecordActionResponse{Action: req.Action, IsMatch: true, MatchId: &id}, nil
}

func (s *stubExplore) UpdateLocation(_ context.Context, req *pb.UpdateLocationRequest) (*pb.UpdateLocationResponse, error) {
	s.locationReq = req
	return &pb.UpdateLocationResponse{}, s.err
}

func (s *stubExplore) CountLikedYou(context.Context, *pb.CountLikedYouRequest) (*pb.CountLikedYouResponse, error) {
	return &pb.CountLikedYouResponse{Count: 3}, nil
}

func newHandler(stub *stubExplore, checks map[string]gateway.HealthCheck) http.Handler {
	return gateway.NewHandler(stub, testutil.Logger(), gateway.Options{
		AllowedOrigins: []string{"https://app.example.com"},
		Checks:         checks,
	})
}

func serve(h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestCandidatesParsesQuery(t *testing.T) {
	stub := &stubExplore{}
	rr := serve(newHandler(stub, nil), http.MethodGet,
		"/v1/users/5/candidates?limit=3&max_distance_km=25.5&include_international=true&min_compatibility_score=0.4&preferred_countries=fr,%20DE&seed=42", "")

	require.Equal(t, http.StatusOK, rr.Code)
	req := stub.discoverReq
	require.NotNil(t, req)
	assert.Equal(t, "5", req.UserId)
	assert.Equal(t, int32(3), req.Limit)
	require.NotNil(t, req.MaxDistanceKm)
	assert.Equal(t, 25.5, *req.MaxDistanceKm)
	assert.True(t, req.IncludeInternational)
	assert.Equal(t, 0.4, req.MinCompatibilityScore)
	assert.Equal(t, []string{"fr", "DE"}, req.PreferredCountries)
	require.NotNil(t, req.Seed)
	assert.Equal(t, int64(42), *req.Seed)

	var resp pb.DiscoverResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "geo", resp.Source)
	require.Len(t, resp.Candidates, 1)
	assert.Equal(t, "7", resp.Candidates[0].UserId)
}

func TestCandidatesRejectsBadQuery(t *testing.T) {
	stub := &stubExplore{}
	rr := serve(newHandler(stub, nil), http.MethodGet, "/v1/users/5/candidates?limit=lots", "")

	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Nil(t, stub.discoverReq)

	var body gateway.APIError
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "InvalidArgument", body.Code)
	require.Len(t, body.Fields, 1)
	assert.Equal(t, "limit", body.Fields[0].Field)
}

func TestRecordAction(t *testing.T) {
	stub := &stubExplore{}
	rr := serve(newHandler(stub, nil), http.MethodPost, "/v1/users/1/actions",
		`{"target_user_id":"2","action":"super_like"}`)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, &pb.RecordActionRequest{ActorUserId: "1", TargetUserId: "2", Action: "super_like"}, stub.actionReq)

	var resp pb.RecordActionResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.True(t, resp.IsMatch)
	assert.Equal(t, "11", resp.GetMatchId())
}

func TestErrorStatuses(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"validation", svcErr.Invalid("action", "unknown action"), http.StatusBadRequest, "InvalidArgument"},
		{"not found", svcErr.NotFound("user 2"), http.StatusNotFound, "NotFound"},
		{"persistence", svcErr.Persistence("upsert interaction", errors.New("deadlock")), http.StatusServiceUnavailable, "Unavailable"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "Internal"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			stub := &stubExplore{err: tc.err}
			rr := serve(newHandler(stub, nil), http.MethodPost, "/v1/users/1/actions",
				`{"target_user_id":"2","action":"like"}`)

			assert.Equal(t, tc.wantStatus, rr.Code)
			var body gateway.APIError
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
			assert.Equal(t, tc.wantCode, body.Code)
			assert.NotContains(t, body.Message, "deadlock")

			if tc.wantStatus == http.StatusServiceUnavailable {
				assert.Equal(t, "1", rr.Header().Get("Retry-After"))
			} else {
				assert.Empty(t, rr.Header().Get("Retry-After"))
			}
		})
	}
}

func TestUpdateLocation(t *testing.T) {
	stub := &stubExplore{}
	h := newHandler(stub, nil)

	rr := serve(h, http.MethodPut, "/v1/users/4/location", `{"latitude":51.5,"longitude":-0.12}`)
	require.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, &pb.UpdateLocationRequest{UserId: "4", Latitude: 51.5, Longitude: -0.12}, stub.locationReq)

	stub.locationReq = nil
	rr = serve(h, http.MethodPut, "/v1/users/4/location", `{"latitude":51.5}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Nil(t, stub.locationReq)
}

func TestRequestIDAndCORS(t *testing.T) {
	h := newHandler(&stubExplore{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/users/1/liked-you/count", nil)
	req.Header.Set(gateway.RequestIDHeader, "abc")
	req.Header.Set("Origin", "https://app.example.com")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "abc", rr.Header().Get(gateway.RequestIDHeader))
	assert.Equal(t, "https://app.example.com", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.JSONEq(t, `{"count":3}`, rr.Body.String())

	rr = serve(h, http.MethodGet, "/v1/users/1/liked-you/count", "")
	assert.Len(t, rr.Header().Get(gateway.RequestIDHeader), 36)
}

func TestHealthz(t *testing.T) {
	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("connection refused") }

	rr := serve(newHandler(&stubExplore{}, map[string]gateway.HealthCheck{"db": ok, "redis": ok}), http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = serve(newHandler(&stubExplore{}, map[string]gateway.HealthCheck{"db": ok, "redis": down}), http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Contains(t, rr.Body.String(), "connection refused")
}
