// Package scoring computes the compatibility score between two profiles.
//
// The score is a weighted sum of six factors, each bounded to [0,1]. Every
// factor degrades to a neutral value when data is missing on either side, so
// an incomplete profile is never unmatchable. The package performs no I/O.
package scoring

import (
	"fmt"
	"math"
)

// Factor names used as keys in Result.Breakdown.
const (
	FactorCultural  = "cultural"
	FactorLifestyle = "lifestyle"
	FactorEconomic  = "economic"
	FactorTimezone  = "timezone"
	FactorInterests = "interests"
	FactorValues    = "values"
)

// Neutral is the value a factor or sub-component falls back to when it
// cannot be computed.
const Neutral = 0.5

// MinTotal is the lowest total a pair can score; fully opposite profiles
// land here instead of at 0.
const MinTotal = 0.01

const precision = 1e4

// Weights are the per-factor multipliers; they must sum to 1.0.
type Weights struct {
	Cultural  float64
	Lifestyle float64
	Economic  float64
	Timezone  float64
	Interests float64
	Values    float64
}

// DefaultWeights returns the stock heuristic weights.
func DefaultWeights() Weights {
	return Weights{
		Cultural:  0.25,
		Lifestyle: 0.20,
		Economic:  0.15,
		Timezone:  0.10,
		Interests: 0.15,
		Values:    0.15,
	}
}

// Sum adds up all weights.
func (w Weights) Sum() float64 {
	return w.Cultural + w.Lifestyle + w.Economic + w.Timezone + w.Interests + w.Values
}

func (w Weights) validate() error {
	for _, v := range []float64{w.Cultural, w.Lifestyle, w.Economic, w.Timezone, w.Interests, w.Values} {
		if v < 0 || math.IsNaN(v) {
			return fmt.Errorf("weights must be non-negative numbers: %+v", w)
		}
	}
	if math.Abs(w.Sum()-1.0) > 1e-6 {
		return fmt.Errorf("weights must sum to 1.0, got %.6f", w.Sum())
	}
	return nil
}

// Result is a total score plus the per-factor breakdown, rounded to 4 places.
// Factors may reach 0; Total never drops below MinTotal.
type Result struct {
	Total     float64
	Breakdown map[string]float64
}

// Scorer is safe for concurrent use.
type Scorer struct {
	weights Weights
}

// NewScorer validates the weights and returns a scorer using them.
func NewScorer(w Weights) (*Scorer, error) {
	if err := w.validate(); err != nil {
		return nil, err
	}
	return &Scorer{weights: w}, nil
}

// Default returns a scorer with DefaultWeights.
func Default() *Scorer {
	return &Scorer{weights: DefaultWeights()}
}

// Weights returns the weights in use.
func (s *Scorer) Weights() Weights {
	return s.weights
}

// Score computes the compatibility between a and b. Score(a, b) == Score(b, a).
func (s *Scorer) Score(a, b Profile) Result {
	factors := []struct {
		name   string
		weight float64
		value  float64
	}{
		{FactorCultural, s.weights.Cultural, cultural(a, b)},
		{FactorLifestyle, s.weights.Lifestyle, lifestyle(a.Lifestyle, b.Lifestyle)},
		{FactorEconomic, s.weights.Economic, economic(a, b)},
		{FactorTimezone, s.weights.Timezone, timezone(a.Timezone, b.Timezone)},
		{FactorInterests, s.weights.Interests, interests(a.Interests, b.Interests)},
		{FactorValues, s.weights.Values, values(a.LifestylePreferences, b.LifestylePreferences)},
	}

	res := Result{Breakdown: make(map[string]float64, len(factors))}
	var total float64
	for _, f := range factors {
		v := clamp01(f.value)
		res.Breakdown[f.name] = round(v)
		total += f.weight * v
	}
	res.Total = round(math.Max(MinTotal, clamp01(total)))
	return res
}

func round(v float64) float64 {
	return math.Round(v*precision) / precision
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v):
		return Neutral
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
