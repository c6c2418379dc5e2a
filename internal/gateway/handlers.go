package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	pb "github.com/oggyb/muzz-matcher/internal/proto/explore"
)

type handlers struct {
	svc    pb.ExploreServiceServer
	checks map[string]HealthCheck
}

func (h *handlers) health(w http.ResponseWriter, r *http.Request) {
	report := map[string]string{}
	healthy := true
	for name, check := range h.checks {
		if err := check(r.Context()); err != nil {
			report[name] = err.Error()
			healthy = false
			continue
		}
		report[name] = "ok"
	}
	code := http.StatusOK
	if !healthy {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, map[string]any{"healthy": healthy, "checks": report})
}

func (h *handlers) candidates(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := &pb.DiscoverRequest{
		UserId:             chi.URLParam(r, "id"),
		PreferredCountries: splitCSV(q.Get("preferred_countries")),
		ExcludedCountries:  splitCSV(q.Get("excluded_countries")),
	}

	var ok bool
	if req.Limit, ok = queryInt32(w, q.Get("limit"), "limit"); !ok {
		return
	}
	if v := q.Get("max_distance_km"); v != "" {
		d, err := strconv.ParseFloat(v, 64)
		if err != nil {
			badField(w, "max_distance_km", "must be a number")
			return
		}
		req.MaxDistanceKm = &d
	}
	if v := q.Get("include_international"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			badField(w, "include_international", "must be a boolean")
			return
		}
		req.IncludeInternational = b
	}
	if v := q.Get("min_compatibility_score"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			badField(w, "min_compatibility_score", "must be a number")
			return
		}
		req.MinCompatibilityScore = f
	}
	if v := q.Get("seed"); v != "" {
		s, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			badField(w, "seed", "must be an integer")
			return
		}
		req.Seed = &s
	}

	resp, err := h.svc.Discover(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

type actionBody struct {
	TargetUserID string `json:"target_user_id"`
	Action       string `json:"action"`
}

func (h *handlers) recordAction(w http.ResponseWriter, r *http.Request) {
	var body actionBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		badField(w, "body", "must be a JSON object")
		return
	}
	resp, err := h.svc.RecordAction(r.Context(), &pb.RecordActionRequest{
		ActorUserId:  chi.URLParam(r, "id"),
		TargetUserId: body.TargetUserID,
		Action:       body.Action,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *handlers) matches(w http.ResponseWriter, r *http.Request) {
	limit, ok := queryInt32(w, r.URL.Query().Get("limit"), "limit")
	if !ok {
		return
	}
	resp, err := h.svc.GetMatches(r.Context(), &pb.GetMatchesRequest{
		UserId:          chi.URLParam(r, "id"),
		PaginationToken: queryToken(r),
		Limit:           limit,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

type locationBody struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

func (h *handlers) updateLocation(w http.ResponseWriter, r *http.Request) {
	var body locationBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		badField(w, "body", "must be a JSON object")
		return
	}
	if body.Latitude == nil || body.Longitude == nil {
		badField(w, "location", "latitude and longitude are required")
		return
	}
	if _, err := h.svc.UpdateLocation(r.Context(), &pb.UpdateLocationRequest{
		UserId:    chi.URLParam(r, "id"),
		Latitude:  *body.Latitude,
		Longitude: *body.Longitude,
	}); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) likedYou(w http.ResponseWriter, r *http.Request) {
	h.listLikers(w, r, h.svc.ListLikedYou)
}

func (h *handlers) newLikedYou(w http.ResponseWriter, r *http.Request) {
	h.listLikers(w, r, h.svc.ListNewLikedYou)
}

func (h *handlers) listLikers(
	w http.ResponseWriter,
	r *http.Request,
	list func(context.Context, *pb.ListLikedYouRequest) (*pb.ListLikedYouResponse, error),
) {
	limit, ok := queryInt32(w, r.URL.Query().Get("limit"), "limit")
	if !ok {
		return
	}
	resp, err := list(r.Context(), &pb.ListLikedYouRequest{
		RecipientUserId: chi.URLParam(r, "id"),
		PaginationToken: queryToken(r),
		Limit:           limit,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *handlers) countLikedYou(w http.ResponseWriter, r *http.Request) {
	resp, err := h.svc.CountLikedYou(r.Context(), &pb.CountLikedYouRequest{RecipientUserId: chi.URLParam(r, "id")})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func queryInt32(w http.ResponseWriter, raw, field string) (int32, bool) {
	if raw == "" {
		return 0, true
	}
	n, err := strconv.ParseInt(raw, 10, 32)
	if err != nil {
		badField(w, field, "must be an integer")
		return 0, false
	}
	return int32(n), true
}

func queryToken(r *http.Request) *string {
	if t := r.URL.Query().Get("pagination_token"); t != "" {
		return &t
	}
	return nil
}

func splitCSV(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
