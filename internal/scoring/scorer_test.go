package scoring_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oggyb/muzz-matcher/internal/scoring"
)

func ptrInt(v int) *int { return &v }

func ptrFloat(v float64) *float64 { return &v }

func fullProfile(id uint64) scoring.Profile {
	return scoring.Profile{
		UserID:             id,
		CountryCode:        "GB",
		Interests:          []string{"hiking", "cooking", "jazz"},
		Languages:          []string{"en", "ur"},
		CulturalBackground: map[string]any{"heritage": "pakistani", "diet": "halal"},
		Openness:           ptrFloat(7),
		Lifestyle: scoring.Lifestyle{
			RelationshipGoal: "marriage",
			Education:        "masters",
			Drinking:         "never",
			Smoking:          "never",
			Religion:         "muslim",
			Politics:         "moderate",
			Children:         "want",
		},
		IncomeBracket:        "middle",
		PricingTier:          ptrInt(2),
		FinancialGoals:       map[string]any{"saving_for": "home"},
		Timezone:             "Europe/London",
		LifestylePreferences: map[string]any{"pets": "cats", "weekend": "outdoors"},
	}
}

func TestDefaultWeightsSumToOne(t *testing.T) {
	w := scoring.DefaultWeights()
	assert.InDelta(t, 1.0, w.Sum(), 1e-9)

	_, err := scoring.NewScorer(w)
	require.NoError(t, err)
}

func TestNewScorerRejectsInvalidWeights(t *testing.T) {
	w := scoring.DefaultWeights()
	w.Timezone = 0.3
	_, err := scoring.NewScorer(w)
	assert.Error(t, err)

	w = scoring.DefaultWeights()
	w.Timezone = -0.1
	w.Values = 0.35
	_, err = scoring.NewScorer(w)
	assert.Error(t, err)
}

func TestIdenticalProfilesScoreNearMax(t *testing.T) {
	s := scoring.Default()

	res := s.Score(fullProfile(1), fullProfile(2))

	assert.GreaterOrEqual(t, res.Total, 0.95)
	for name, v := range res.Breakdown {
		assert.InDelta(t, 1.0, v, 1e-9, "factor %s", name)
	}
}

func TestMissingDataIsNeutral(t *testing.T) {
	s := scoring.Default()

	res := s.Score(scoring.Profile{UserID: 1}, scoring.Profile{UserID: 2})

	assert.Greater(t, res.Total, 0.0)
	assert.Less(t, res.Total, 1.0)
	for name, v := range res.Breakdown {
		assert.InDelta(t, scoring.Neutral, v, 1e-9, "factor %s", name)
	}
}

func TestDisjointProfilesScoreLowButNonZero(t *testing.T) {
	s := scoring.Default()
	a := scoring.Profile{
		CountryCode:        "US",
		Interests:          []string{"football", "hiking"},
		Languages:          []string{"en"},
		CulturalBackground: map[string]any{"heritage": "irish", "diet": "any"},
		Openness:           ptrFloat(0),
		Lifestyle: scoring.Lifestyle{
			RelationshipGoal: "marriage",
			Education:        "high_school",
			Drinking:         "never",
			Smoking:          "never",
			Religion:         "muslim",
			Politics:         "liberal",
			Children:         "want",
		},
		IncomeBracket:        "low",
		PricingTier:          ptrInt(1),
		FinancialGoals:       map[string]any{"saving": "aggressive", "home": "buy"},
		Timezone:             "UTC",
		LifestylePreferences: map[string]any{"pets": "dogs", "weekends": "outdoors"},
	}
	b := scoring.Profile{
		CountryCode:        "JP",
		Interests:          []string{"anime", "gaming"},
		Languages:          []string{"ja"},
		CulturalBackground: map[string]any{"heritage": "japanese", "diet": "vegetarian"},
		Openness:           ptrFloat(10),
		Lifestyle: scoring.Lifestyle{
			RelationshipGoal: "casual",
			Education:        "doctorate",
			Drinking:         "regularly",
			Smoking:          "regularly",
			Religion:         "atheist",
			Politics:         "conservative",
			Children:         "dont_want",
		},
		IncomeBracket:        "high",
		PricingTier:          ptrInt(5),
		FinancialGoals:       map[string]any{"saving": "relaxed", "home": "rent"},
		Timezone:             "UTC+12",
		LifestylePreferences: map[string]any{"pets": "none", "weekends": "home"},
	}

	res := s.Score(a, b)

	for name, v := range res.Breakdown {
		assert.Equal(t, 0.0, v, "factor %s", name)
	}
	assert.Greater(t, res.Total, 0.0)
	assert.Less(t, res.Total, 0.5)
	assert.Equal(t, scoring.MinTotal, res.Total)
	assert.Equal(t, res, s.Score(b, a))
}

func TestSparseDisjointProfilesStayAboveFloor(t *testing.T) {
	s := scoring.Default()
	a := scoring.Profile{CountryCode: "US", Interests: []string{"football"}, PricingTier: ptrInt(1)}
	b := scoring.Profile{CountryCode: "JP", Interests: []string{"anime"}, PricingTier: ptrInt(5)}

	res := s.Score(a, b)

	assert.Greater(t, res.Total, scoring.MinTotal)
	assert.Less(t, res.Total, 0.5)
	assert.Equal(t, 0.0, res.Breakdown[scoring.FactorInterests])
}

func TestScoreIsSymmetric(t *testing.T) {
	s := scoring.Default()
	p1 := fullProfile(1)
	p2 := fullProfile(2)
	p2.CountryCode = "PK"
	p2.Interests = []string{"jazz", "cricket"}
	p2.Lifestyle.Drinking = "rarely"
	p2.Lifestyle.Children = "open"
	p2.PricingTier = ptrInt(4)
	p2.Timezone = "Asia/Karachi"
	p3 := scoring.Profile{Interests: []string{"Cooking"}, Timezone: "UTC+5:30"}

	profiles := []scoring.Profile{p1, p2, p3, {}}
	for i := range profiles {
		for j := range profiles {
			ab := s.Score(profiles[i], profiles[j])
			ba := s.Score(profiles[j], profiles[i])
			assert.Equal(t, ab, ba, "pair %d/%d", i, j)
		}
	}
}

func TestFactorsAreBounded(t *testing.T) {
	s := scoring.Default()
	a := fullProfile(1)
	a.Openness = ptrFloat(42) // out-of-range self rating is clamped
	b := scoring.Profile{Openness: ptrFloat(-3), PricingTier: ptrInt(9)}
	a.PricingTier = ptrInt(1)

	res := s.Score(a, b)

	assert.GreaterOrEqual(t, res.Total, 0.0)
	assert.LessOrEqual(t, res.Total, 1.0)
	for name, v := range res.Breakdown {
		assert.GreaterOrEqual(t, v, 0.0, "factor %s", name)
		assert.LessOrEqual(t, v, 1.0, "factor %s", name)
	}
}

func TestExampleScenario(t *testing.T) {
	s := scoring.Default()
	a := scoring.Profile{CountryCode: "US", PricingTier: ptrInt(1), Interests: []string{"travel", "food"}}
	b := scoring.Profile{CountryCode: "US", PricingTier: ptrInt(1), Interests: []string{"food", "art"}}

	res := s.Score(a, b)

	assert.InDelta(t, 0.3333, res.Breakdown[scoring.FactorInterests], 1e-9)
	assert.Greater(t, res.Breakdown[scoring.FactorCultural], scoring.Neutral)
	assert.Greater(t, res.Total, 0.5)
	assert.Less(t, res.Total, 1.0)
}

func TestLifestylePartialCredit(t *testing.T) {
	s := scoring.Default()

	res := s.Score(
		scoring.Profile{Lifestyle: scoring.Lifestyle{Drinking: "rarely"}},
		scoring.Profile{Lifestyle: scoring.Lifestyle{Drinking: "Socially"}},
	)
	assert.InDelta(t, 0.5, res.Breakdown[scoring.FactorLifestyle], 1e-9)

	res = s.Score(
		scoring.Profile{Lifestyle: scoring.Lifestyle{Drinking: "never", Children: "want"}},
		scoring.Profile{Lifestyle: scoring.Lifestyle{Drinking: "regularly", Children: "want"}},
	)
	assert.InDelta(t, 0.5, res.Breakdown[scoring.FactorLifestyle], 1e-9)

	res = s.Score(
		scoring.Profile{Lifestyle: scoring.Lifestyle{RelationshipGoal: "long term"}},
		scoring.Profile{Lifestyle: scoring.Lifestyle{RelationshipGoal: "marriage"}},
	)
	assert.InDelta(t, 0.75, res.Breakdown[scoring.FactorLifestyle], 1e-9)
}

func TestTimezoneUsesShorterDirection(t *testing.T) {
	s := scoring.Default()
	cases := []struct {
		name string
		a, b string
		want float64
	}{
		{"same zone", "Europe/London", "UTC", 1},
		{"across the date line", "Pacific/Auckland", "Pacific/Honolulu", 0.9167},
		{"tokyo vs new york", "Asia/Tokyo", "America/New_York", 0.1667},
		{"numeric offsets", "UTC+5:30", "+05:30", 1},
		{"unknown zone is neutral", "Mars/Olympus", "UTC", scoring.Neutral},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := s.Score(scoring.Profile{Timezone: tc.a}, scoring.Profile{Timezone: tc.b})
			assert.InDelta(t, tc.want, res.Breakdown[scoring.FactorTimezone], 1e-4)
		})
	}
}

func TestEconomicDefaultsToNeutral(t *testing.T) {
	s := scoring.Default()

	res := s.Score(scoring.Profile{PricingTier: ptrInt(3)}, scoring.Profile{})
	assert.InDelta(t, scoring.Neutral, res.Breakdown[scoring.FactorEconomic], 1e-9)

	res = s.Score(
		scoring.Profile{PricingTier: ptrInt(1), IncomeBracket: "middle"},
		scoring.Profile{PricingTier: ptrInt(2), IncomeBracket: "upper middle"},
	)
	// 0.4*0.75 + 0.3*0.75 + 0.3*0.5
	assert.InDelta(t, 0.675, res.Breakdown[scoring.FactorEconomic], 1e-9)
}

func TestCustomWeightsShiftTotal(t *testing.T) {
	w := scoring.Weights{Interests: 1}
	s, err := scoring.NewScorer(w)
	require.NoError(t, err)

	res := s.Score(
		scoring.Profile{Interests: []string{"a", "b"}},
		scoring.Profile{Interests: []string{"b"}},
	)
	assert.InDelta(t, 0.5, res.Total, 1e-9)
	assert.Equal(t, w, s.Weights())
}
