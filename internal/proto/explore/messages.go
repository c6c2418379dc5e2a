// Package explore is the wire contract of muzz.explore.ExploreService.
//
// Messages travel as JSON under the "json" gRPC content subtype; see
// codec.go. Field names follow the snake_case JSON form clients send.
package explore

// DiscoverRequest asks for the next candidates of a user.
type DiscoverRequest struct {
	UserId                string   `json:"user_id"`
	Limit                 int32    `json:"limit,omitempty"`
	MaxDistanceKm         *float64 `json:"max_distance_km,omitempty"`
	IncludeInternational  bool     `json:"include_international,omitempty"`
	MinCompatibilityScore float64  `json:"min_compatibility_score,omitempty"`
	PreferredCountries    []string `json:"preferred_countries,omitempty"`
	ExcludedCountries     []string `json:"excluded_countries,omitempty"`
	Seed                  *int64   `json:"seed,omitempty"`
}

func (x *DiscoverRequest) GetUserId() string {
	if x != nil {
		return x.UserId
	}
	return ""
}

func (x *DiscoverRequest) GetLimit() int32 {
	if x != nil {
		return x.Limit
	}
	return 0
}

type Candidate struct {
	UserId      string             `json:"user_id"`
	CountryCode string             `json:"country_code,omitempty"`
	Score       float64            `json:"score"`
	Breakdown   map[string]float64 `json:"breakdown"`
	DistanceKm  *float64           `json:"distance_km,omitempty"`
}

type DiscoverResponse struct {
	Candidates []*Candidate `json:"candidates"`
	HasMore    bool         `json:"has_more"`
	Source     string       `json:"source"`
}

// RecordActionRequest carries one decision of actor about target.
type RecordActionRequest struct {
	ActorUserId  string `json:"actor_user_id"`
	TargetUserId string `json:"target_user_id"`
	Action       string `json:"action"`
}

func (x *RecordActionRequest) GetActorUserId() string {
	if x != nil {
		return x.ActorUserId
	}
	return ""
}

func (x *RecordActionRequest) GetTargetUserId() string {
	if x != nil {
		return x.TargetUserId
	}
	return ""
}

func (x *RecordActionRequest) GetAction() string {
	if x != nil {
		return x.Action
	}
	return ""
}

type RecordActionResponse struct {
	Action  string  `json:"action"`
	IsMatch bool    `json:"is_match"`
	MatchId *string `json:"match_id,omitempty"`
}

func (x *RecordActionResponse) GetMatchId() string {
	if x != nil && x.MatchId != nil {
		return *x.MatchId
	}
	return ""
}

type GetMatchesRequest struct {
	UserId          string  `json:"user_id"`
	PaginationToken *string `json:"pagination_token,omitempty"`
	Limit           int32   `json:"limit,omitempty"`
}

func (x *GetMatchesRequest) GetUserId() string {
	if x != nil {
		return x.UserId
	}
	return ""
}

type Match struct {
	MatchId       string  `json:"match_id"`
	OtherUserId   string  `json:"other_user_id"`
	Score         float64 `json:"score"`
	MatchedAtUnix uint64  `json:"matched_at_unix"`
}

type GetMatchesResponse struct {
	Matches             []*Match `json:"matches"`
	NextPaginationToken *string  `json:"next_pagination_token,omitempty"`
}

func (x *GetMatchesResponse) GetNextPaginationToken() string {
	if x != nil && x.NextPaginationToken != nil {
		return *x.NextPaginationToken
	}
	return ""
}

type UpdateLocationRequest struct {
	UserId    string  `json:"user_id"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func (x *UpdateLocationRequest) GetUserId() string {
	if x != nil {
		return x.UserId
	}
	return ""
}

type UpdateLocationResponse struct{}

type ListLikedYouRequest struct {
	RecipientUserId string  `json:"recipient_user_id"`
	PaginationToken *string `json:"pagination_token,omitempty"`
	Limit           int32   `json:"limit,omitempty"`
}

func (x *ListLikedYouRequest) GetRecipientUserId() string {
	if x != nil {
		return x.RecipientUserId
	}
	return ""
}

func (x *ListLikedYouRequest) GetPaginationToken() string {
	if x != nil && x.PaginationToken != nil {
		return *x.PaginationToken
	}
	return ""
}

type ListLikedYouResponse_Liker struct {
	ActorId       string `json:"actor_id"`
	UnixTimestamp uint64 `json:"unix_timestamp"`
}

type ListLikedYouResponse struct {
	Likers              []*ListLikedYouResponse_Liker `json:"likers"`
	NextPaginationToken *string                       `json:"next_pagination_token,omitempty"`
}

func (x *ListLikedYouResponse) GetNextPaginationToken() string {
	if x != nil && x.NextPaginationToken != nil {
		return *x.NextPaginationToken
	}
	return ""
}

type CountLikedYouRequest struct {
	RecipientUserId string `json:"recipient_user_id"`
}

func (x *CountLikedYouRequest) GetRecipientUserId() string {
	if x != nil {
		return x.RecipientUserId
	}
	return ""
}

type CountLikedYouResponse struct {
	Count uint64 `json:"count"`
}
