package db

import (
	"time"

	"gorm.io/datatypes"
)

// Interaction actions.
const (
	ActionLike      = "like"
	ActionPass      = "pass"
	ActionSuperLike = "super_like"
)

// Match statuses.
const (
	MatchActive   = "active"
	MatchInactive = "inactive"
)

// User table. Besides the account columns it carries the profile the
// compatibility scorer reads.
type User struct {
	ID           uint64 `gorm:"primaryKey;autoIncrement"`
	Username     string `gorm:"uniqueIndex;size:64;not null"`
	Email        string `gorm:"uniqueIndex;size:128;not null"`
	PasswordHash string `gorm:"size:255;not null"`
	Active       bool   `gorm:"default:true;index:idx_users_discoverable,priority:1"`
	Banned       bool   `gorm:"default:false;index:idx_users_discoverable,priority:2"`
	LastLoginAt  time.Time
	Gender       string `gorm:"size:16;not null"`
	BirthDate    *time.Time

	CountryCode        string `gorm:"size:2;index:idx_users_discoverable,priority:3"`
	Bio                string `gorm:"size:1024"`
	Interests          datatypes.JSONSlice[string]
	Languages          datatypes.JSONSlice[string]
	CulturalBackground datatypes.JSONMap
	Openness           *float64

	RelationshipGoal string `gorm:"size:32"`
	Education        string `gorm:"size:32"`
	Drinking         string `gorm:"size:16"`
	Smoking          string `gorm:"size:16"`
	Religion         string `gorm:"size:32"`
	Politics         string `gorm:"size:16"`
	Children         string `gorm:"size:16"`

	IncomeBracket        string `gorm:"size:16"`
	PricingTier          *int   // 1..5, derived from country GDP
	FinancialGoals       datatypes.JSONMap
	Timezone             string `gorm:"size:64"`
	LifestylePreferences datatypes.JSONMap

	Latitude        *float64
	Longitude       *float64
	LocationVisible bool `gorm:"default:true"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// Interaction is an actor's decision about a target.
//
// Composite PK: (ActorID, TargetID)
//   - One row per ordered pair; a new decision overwrites the old one.
//
// Indexes:
//   - idx_target_action_updated(target_id, action, updated_at DESC)
//     Serves the "who liked me" lists with pagination.
type Interaction struct {
	ActorID   uint64    `gorm:"primaryKey;autoIncrement:false"`
	TargetID  uint64    `gorm:"primaryKey;autoIncrement:false;index:idx_target_action_updated,priority:1"`
	Action    string    `gorm:"size:16;not null;index:idx_target_action_updated,priority:2"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime;index:idx_target_action_updated,priority:3,sort:desc"`
}

// Positive reports whether the decision counts toward a match.
func (i Interaction) Positive() bool {
	return IsPositive(i.Action)
}

// IsPositive reports whether action is a like or super like.
func IsPositive(action string) bool {
	return action == ActionLike || action == ActionSuperLike
}

// Match is a reciprocal like between two users.
//
// The pair is stored canonically (UserLowID < UserHighID) under a unique
// index, so concurrent creation attempts converge on one row. Score and
// Breakdown are written once; only Status changes afterwards.
type Match struct {
	ID         uint64  `gorm:"primaryKey;autoIncrement"`
	UserLowID  uint64  `gorm:"not null;uniqueIndex:uniq_match_pair,priority:1"`
	UserHighID uint64  `gorm:"not null;uniqueIndex:uniq_match_pair,priority:2;index"`
	Score      float64 `gorm:"not null"`
	Breakdown  datatypes.JSONMap
	Status     string    `gorm:"size:16;not null;default:active"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime"`
}

// Other returns the partner of userID in the match.
func (m Match) Other(userID uint64) uint64 {
	if m.UserLowID == userID {
		return m.UserHighID
	}
	return m.UserLowID
}

// CanonicalPair orders two user ids the way matches are stored.
func CanonicalPair(a, b uint64) (low, high uint64) {
	if a < b {
		return a, b
	}
	return b, a
}
