package scoring

import "time"

// Profile is the matching-relevant view of a user. Every field is optional
// from the scorer's point of view; missing data degrades to neutral values.
type Profile struct {
	UserID      uint64
	Gender      string
	BirthDate   *time.Time
	CountryCode string
	Bio         string

	Interests          []string
	Languages          []string
	CulturalBackground map[string]any
	// Openness is a 0-10 self-rating.
	Openness *float64

	Lifestyle Lifestyle

	IncomeBracket  string
	PricingTier    *int
	FinancialGoals map[string]any

	Timezone             string
	LifestylePreferences map[string]any

	Location *Coordinate
}

// Lifestyle holds the enumerated lifestyle attributes.
type Lifestyle struct {
	RelationshipGoal string
	Education        string
	Drinking         string
	Smoking          string
	Religion         string
	Politics         string
	Children         string
}

// Coordinate is a WGS84 point.
type Coordinate struct {
	Lat float64
	Lon float64
}

// Age returns the age in whole years at the given instant, or 0 when the
// birth date is unknown.
func (p Profile) Age(at time.Time) int {
	if p.BirthDate == nil {
		return 0
	}
	b := p.BirthDate.UTC()
	at = at.UTC()
	age := at.Year() - b.Year()
	if at.Month() < b.Month() || (at.Month() == b.Month() && at.Day() < b.Day()) {
		age--
	}
	if age < 0 {
		return 0
	}
	return age
}
