package db

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/oggyb/muzz-matcher/internal/scoring"
)

type seedCity struct {
	name     string
	country  string
	lat, lon float64
	timezone string
	tier     int
	language string
}

var seedCities = []seedCity{
	{"London", "GB", 51.5074, -0.1278, "Europe/London", 5, "english"},
	{"Manchester", "GB", 53.4808, -2.2426, "Europe/London", 5, "english"},
	{"Paris", "FR", 48.8566, 2.3522, "Europe/Paris", 5, "french"},
	{"Berlin", "DE", 52.5200, 13.4050, "Europe/Berlin", 5, "german"},
	{"Istanbul", "TR", 41.0082, 28.9784, "Europe/Istanbul", 3, "turkish"},
	{"Dubai", "AE", 25.2048, 55.2708, "Asia/Dubai", 4, "arabic"},
	{"Lahore", "PK", 31.5204, 74.3587, "Asia/Karachi", 1, "urdu"},
	{"Kuala Lumpur", "MY", 3.1390, 101.6869, "Asia/Kuala_Lumpur", 3, "malay"},
}

var (
	seedInterests = []string{"hiking", "cooking", "travel", "reading", "football", "photography", "music", "gaming", "yoga", "art", "film", "coffee"}
	seedGoals     = []string{"long_term", "marriage", "open_to_options", "casual"}
	seedEducation = []string{"high_school", "some_college", "bachelors", "masters", "doctorate"}
	seedDrinking  = []string{"never", "rarely", "socially", "regularly"}
	seedSmoking   = []string{"never", "occasionally", "socially"}
	seedReligion  = []string{"muslim", "christian", "agnostic", "atheist", "spiritual"}
	seedPolitics  = []string{"liberal", "moderate", "conservative"}
	seedChildren  = []string{"want", "dont_want", "open", "have"}
	seedIncome    = []string{"low", "lower_middle", "middle", "upper_middle", "high"}
)

const seedUserCount = 40

// SeedTestData resets the database and populates it with demo users,
// interactions and the matches those interactions imply.
//
// Behavior:
//  1. Clears existing data in `matches`, `interactions` and `users`.
//  2. Creates 40 users spread over 8 cities with full profiles and positions
//     jittered around the city centre.
//  3. Generates ~300 interactions (~70% positive); every 3rd decision also
//     writes the reciprocal like so matches exist.
//  4. Inserts one scored match per reciprocal positive pair.
//
// The same seed always produces the same dataset.
func SeedTestData(db *gorm.DB, scorer *scoring.Scorer, seed uint64, log *slog.Logger) error {
	r := rand.New(rand.NewPCG(seed, seed^0x5eed))

	if err := resetTables(db); err != nil {
		return err
	}
	log.Info("cleared existing data")

	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	users := make([]User, 0, seedUserCount)
	for i := 1; i <= seedUserCount; i++ {
		u := seedUser(r, i, string(hash))
		if err := db.Create(&u).Error; err != nil {
			return fmt.Errorf("failed to seed user: %w", err)
		}
		users = append(users, u)
	}
	log.Info("seeded users", "count", len(users))

	counter := 0
	for _, actor := range users {
		for j := 0; j < 8; j++ {
			target := users[r.IntN(len(users))]
			if target.ID == actor.ID || target.Gender == actor.Gender {
				continue
			}

			action := ActionPass
			if r.IntN(100) < 70 {
				action = ActionLike
				if r.IntN(10) == 0 {
					action = ActionSuperLike
				}
			}

			if counter%3 == 0 {
				action = ActionLike
				if err := upsertInteraction(db, target.ID, actor.ID, ActionLike); err != nil {
					return err
				}
			}
			if err := upsertInteraction(db, actor.ID, target.ID, action); err != nil {
				return err
			}
			counter++
		}
	}
	log.Info("seeded interactions", "count", counter)

	n, err := seedMatches(db, scorer, users)
	if err != nil {
		return err
	}
	log.Info("seeded matches", "count", n)
	return nil
}

// SeedMinimalTestData inserts a tiny deterministic dataset:
//   - user1 (male, London), user2 (female, London), user3 (female, Paris)
//   - user1 ↔ user2 like each other (matched)
//   - user3 → user1 like, user1 → user3 pass
func SeedMinimalTestData(db *gorm.DB, scorer *scoring.Scorer) error {
	if err := resetTables(db); err != nil {
		return err
	}

	london, paris := seedCities[0], seedCities[2]
	users := []User{
		{ID: 1, Username: "user1", Email: "u1@test.com", PasswordHash: "x", Gender: "male",
			CountryCode: london.country, Timezone: london.timezone, Latitude: ptr(london.lat), Longitude: ptr(london.lon),
			Interests: datatypes.NewJSONSlice([]string{"hiking", "music"})},
		{ID: 2, Username: "user2", Email: "u2@test.com", PasswordHash: "x", Gender: "female",
			CountryCode: london.country, Timezone: london.timezone, Latitude: ptr(london.lat + 0.01), Longitude: ptr(london.lon),
			Interests: datatypes.NewJSONSlice([]string{"hiking", "film"})},
		{ID: 3, Username: "user3", Email: "u3@test.com", PasswordHash: "x", Gender: "female",
			CountryCode: paris.country, Timezone: paris.timezone, Latitude: ptr(paris.lat), Longitude: ptr(paris.lon)},
	}
	if err := db.Create(&users).Error; err != nil {
		return err
	}

	interactions := []Interaction{
		{ActorID: 1, TargetID: 2, Action: ActionLike},
		{ActorID: 2, TargetID: 1, Action: ActionLike},
		{ActorID: 3, TargetID: 1, Action: ActionLike},
		{ActorID: 1, TargetID: 3, Action: ActionPass},
	}
	if err := db.Create(&interactions).Error; err != nil {
		return err
	}

	_, err := seedMatches(db, scorer, users)
	return err
}

func resetTables(db *gorm.DB) error {
	for _, table := range []string{"matches", "interactions", "users"} {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	// Reset auto-increment sequences
	switch db.Dialector.Name() {
	case "mysql":
		db.Exec("ALTER TABLE matches AUTO_INCREMENT = 1")
		db.Exec("ALTER TABLE users AUTO_INCREMENT = 1")
	case "sqlite":
		db.Exec("DELETE FROM sqlite_sequence WHERE name IN ('matches', 'users')")
	}
	return nil
}

func seedUser(r *rand.Rand, i int, hash string) User {
	city := seedCities[(i-1)%len(seedCities)]
	gender := "male"
	if i%2 == 0 {
		gender = "female"
	}
	birth := time.Date(1985+r.IntN(18), time.Month(1+r.IntN(12)), 1+r.IntN(28), 0, 0, 0, 0, time.UTC)

	u := User{
		Username:     fmt.Sprintf("user%d", i),
		Email:        fmt.Sprintf("user%d@example.com", i),
		PasswordHash: hash,
		Gender:       gender,
		Active:       true,
		LastLoginAt:  time.Now().Add(-time.Duration(r.IntN(500)) * time.Hour),
		BirthDate:    &birth,

		CountryCode: city.country,
		Bio:         fmt.Sprintf("Based in %s.", city.name),
		Interests:   datatypes.NewJSONSlice(pickN(r, seedInterests, 3+r.IntN(3))),
		Languages:   datatypes.NewJSONSlice(uniq([]string{"english", city.language})),
		CulturalBackground: datatypes.JSONMap{
			"heritage":  city.country,
			"diet":      pick(r, []string{"halal", "vegetarian", "any"}),
			"festivals": pick(r, []string{"eid", "christmas", "diwali", "none"}),
		},
		Openness: ptr(float64(r.IntN(11))),

		RelationshipGoal: pick(r, seedGoals),
		Education:        pick(r, seedEducation),
		Drinking:         pick(r, seedDrinking),
		Smoking:          pick(r, seedSmoking),
		Religion:         pick(r, seedReligion),
		Politics:         pick(r, seedPolitics),
		Children:         pick(r, seedChildren),

		IncomeBracket: pick(r, seedIncome),
		PricingTier:   &city.tier,
		FinancialGoals: datatypes.JSONMap{
			"saving": pick(r, []string{"aggressive", "steady", "relaxed"}),
			"home":   pick(r, []string{"buy", "rent"}),
		},
		Timezone: city.timezone,
		LifestylePreferences: datatypes.JSONMap{
			"pets":     pick(r, []string{"dogs", "cats", "none"}),
			"weekends": pick(r, []string{"outdoors", "home", "social"}),
		},

		Latitude:        ptr(city.lat + (r.Float64()-0.5)*0.2),
		Longitude:       ptr(city.lon + (r.Float64()-0.5)*0.2),
		LocationVisible: true,
	}
	return u
}

func upsertInteraction(db *gorm.DB, actorID, targetID uint64, action string) error {
	row := Interaction{ActorID: actorID, TargetID: targetID, Action: action}
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "actor_id"}, {Name: "target_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"action", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to seed interaction: %w", err)
	}
	return nil
}

// seedMatches writes a match for every pair whose current decisions are
// both positive.
func seedMatches(db *gorm.DB, scorer *scoring.Scorer, users []User) (int, error) {
	var pairs []struct {
		ActorID  uint64
		TargetID uint64
	}
	err := db.Table("interactions AS a").
		Select("a.actor_id, a.target_id").
		Joins("JOIN interactions AS b ON b.actor_id = a.target_id AND b.target_id = a.actor_id").
		Where("a.actor_id < a.target_id").
		Where("a.action IN ? AND b.action IN ?",
			[]string{ActionLike, ActionSuperLike}, []string{ActionLike, ActionSuperLike}).
		Scan(&pairs).Error
	if err != nil {
		return 0, fmt.Errorf("failed to find reciprocal likes: %w", err)
	}

	byID := make(map[uint64]User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	for _, p := range pairs {
		res := scorer.Score(byID[p.ActorID].Profile(), byID[p.TargetID].Profile())
		breakdown := make(datatypes.JSONMap, len(res.Breakdown))
		for k, v := range res.Breakdown {
			breakdown[k] = v
		}
		m := Match{
			UserLowID:  p.ActorID,
			UserHighID: p.TargetID,
			Score:      res.Total,
			Breakdown:  breakdown,
			Status:     MatchActive,
		}
		if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&m).Error; err != nil {
			return 0, fmt.Errorf("failed to seed match: %w", err)
		}
	}
	return len(pairs), nil
}

func pick(r *rand.Rand, values []string) string {
	return values[r.IntN(len(values))]
}

func pickN(r *rand.Rand, values []string, n int) []string {
	idx := r.Perm(len(values))[:min(n, len(values))]
	out := make([]string, 0, len(idx))
	for _, i := range idx {
		out = append(out, values[i])
	}
	return out
}

func uniq(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := values[:0]
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func ptr[T any](v T) *T { return &v }
