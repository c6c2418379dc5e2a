package db

import (
	"github.com/oggyb/muzz-matcher/internal/scoring"
)

// Profile converts the stored user into the scorer's input.
// Location is only exposed when the user allows it.
func (u User) Profile() scoring.Profile {
	p := scoring.Profile{
		UserID:               u.ID,
		Gender:               u.Gender,
		BirthDate:            u.BirthDate,
		CountryCode:          u.CountryCode,
		Bio:                  u.Bio,
		Interests:            []string(u.Interests),
		Languages:            []string(u.Languages),
		CulturalBackground:   map[string]any(u.CulturalBackground),
		Openness:             u.Openness,
		IncomeBracket:        u.IncomeBracket,
		PricingTier:          u.PricingTier,
		FinancialGoals:       map[string]any(u.FinancialGoals),
		Timezone:             u.Timezone,
		LifestylePreferences: map[string]any(u.LifestylePreferences),
		Lifestyle: scoring.Lifestyle{
			RelationshipGoal: u.RelationshipGoal,
			Education:        u.Education,
			Drinking:         u.Drinking,
			Smoking:          u.Smoking,
			Religion:         u.Religion,
			Politics:         u.Politics,
			Children:         u.Children,
		},
	}
	if u.LocationVisible && u.Latitude != nil && u.Longitude != nil {
		p.Location = &scoring.Coordinate{Lat: *u.Latitude, Lon: *u.Longitude}
	}
	return p
}
