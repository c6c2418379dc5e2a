package scoring

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"
)

// cultural: same country, shared languages, structured background and the
// 0-10 openness self-rating.
func cultural(a, b Profile) float64 {
	country := Neutral
	if ca, cb := normalize(a.CountryCode), normalize(b.CountryCode); ca != "" && cb != "" {
		country = 0
		if ca == cb {
			country = 1
		}
	}

	languages := Neutral
	if v, ok := jaccard(a.Languages, b.Languages); ok {
		languages = v
	}

	background := Neutral
	if v, ok := keyAgreement(a.CulturalBackground, b.CulturalBackground); ok {
		background = v
	}

	openness := Neutral
	if a.Openness != nil && b.Openness != nil {
		openness = 1 - math.Abs(clampRange(*a.Openness, 0, 10)-clampRange(*b.Openness, 0, 10))/10
	}

	return 0.30*country + 0.30*languages + 0.20*background + 0.20*openness
}

// Ordinal ladders: neighbouring values earn partial credit.
var ladders = map[string][]string{
	"drinking":  {"never", "rarely", "socially", "regularly"},
	"smoking":   {"never", "occasionally", "socially", "regularly"},
	"education": {"high_school", "some_college", "bachelors", "masters", "doctorate"},
	"politics":  {"liberal", "moderate", "conservative"},
}

const ladderAdjacentCredit = 0.5

// Non-ordinal fields with explicit partial-credit pairs.
var pairCredit = map[string]map[[2]string]float64{
	"relationship_goal": {
		pairKey("long_term", "marriage"):        0.75,
		pairKey("long_term", "open_to_options"): 0.5,
		pairKey("casual", "open_to_options"):    0.5,
		pairKey("marriage", "open_to_options"):  0.25,
		pairKey("casual", "short_term"):         0.75,
	},
	"religion": {
		pairKey("agnostic", "atheist"):   0.5,
		pairKey("agnostic", "spiritual"): 0.5,
	},
	"children": {
		pairKey("want", "open"):      0.5,
		pairKey("dont_want", "open"): 0.5,
		pairKey("have", "want"):      0.75,
		pairKey("have", "open"):      0.5,
	},
}

// lifestyle averages field compatibility over the fields both sides filled in.
func lifestyle(a, b Lifestyle) float64 {
	fields := []struct {
		name string
		a, b string
	}{
		{"relationship_goal", a.RelationshipGoal, b.RelationshipGoal},
		{"education", a.Education, b.Education},
		{"drinking", a.Drinking, b.Drinking},
		{"smoking", a.Smoking, b.Smoking},
		{"religion", a.Religion, b.Religion},
		{"politics", a.Politics, b.Politics},
		{"children", a.Children, b.Children},
	}

	var sum float64
	var n int
	for _, f := range fields {
		va, vb := normalize(f.a), normalize(f.b)
		if va == "" || vb == "" {
			continue
		}
		sum += fieldCompat(f.name, va, vb)
		n++
	}
	if n == 0 {
		return Neutral
	}
	return sum / float64(n)
}

func fieldCompat(field, a, b string) float64 {
	if a == b {
		return 1
	}
	if ladder, ok := ladders[field]; ok {
		ia, ib := indexOf(ladder, a), indexOf(ladder, b)
		if ia >= 0 && ib >= 0 && absInt(ia-ib) == 1 {
			return ladderAdjacentCredit
		}
		return 0
	}
	if credits, ok := pairCredit[field]; ok {
		return credits[pairKey(a, b)]
	}
	return 0
}

var incomeBrackets = []string{"low", "lower_middle", "middle", "upper_middle", "high"}

// Pricing tiers are 1..5; tierSpan is the largest possible difference.
const tierSpan = 4.0

// economic: pricing tier distance, income bracket adjacency and financial goals.
func economic(a, b Profile) float64 {
	tier := Neutral
	if a.PricingTier != nil && b.PricingTier != nil {
		tier = 1 - math.Abs(float64(*a.PricingTier-*b.PricingTier))/tierSpan
	}

	income := Neutral
	if ia, ib := normalize(a.IncomeBracket), normalize(b.IncomeBracket); ia != "" && ib != "" {
		pa, pb := indexOf(incomeBrackets, ia), indexOf(incomeBrackets, ib)
		switch {
		case ia == ib:
			income = 1
		case pa >= 0 && pb >= 0:
			income = 1 - float64(absInt(pa-pb))/float64(len(incomeBrackets)-1)
		}
	}

	goals := Neutral
	if v, ok := keyAgreement(a.FinancialGoals, b.FinancialGoals); ok {
		goals = v
	}

	return 0.40*clamp01(tier) + 0.30*income + 0.30*goals
}

// Offsets are read at a fixed mid-January instant so scores do not drift
// with daylight saving.
var tzReference = time.Date(2024, time.January, 15, 12, 0, 0, 0, time.UTC)

// timezone: circular hour distance, the shorter way round the clock.
func timezone(a, b string) float64 {
	oa, okA := offsetHours(a)
	ob, okB := offsetHours(b)
	if !okA || !okB {
		return Neutral
	}
	d := math.Mod(math.Abs(oa-ob), 24)
	if d > 12 {
		d = 24 - d
	}
	return 1 - d/12
}

func offsetHours(name string) (float64, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, false
	}
	if loc, err := time.LoadLocation(name); err == nil {
		_, off := tzReference.In(loc).Zone()
		return float64(off) / 3600, true
	}
	return parseUTCOffset(name)
}

// parseUTCOffset accepts "UTC+5", "GMT-03:30" and "+05:45".
func parseUTCOffset(s string) (float64, bool) {
	s = strings.ToUpper(s)
	s = strings.TrimPrefix(strings.TrimPrefix(s, "UTC"), "GMT")
	if s == "" {
		return 0, true
	}
	sign := 1.0
	switch s[0] {
	case '+':
	case '-':
		sign = -1
	default:
		return 0, false
	}
	s = s[1:]
	hh, mm, _ := strings.Cut(s, ":")
	h, err := strconv.Atoi(hh)
	if err != nil || h > 14 {
		return 0, false
	}
	m := 0
	if mm != "" {
		if m, err = strconv.Atoi(mm); err != nil || m >= 60 {
			return 0, false
		}
	}
	return sign * (float64(h) + float64(m)/60), true
}

// interests is the Jaccard index of the declared interests.
func interests(a, b []string) float64 {
	if v, ok := jaccard(a, b); ok {
		return v
	}
	return Neutral
}

// values uses the lifestyle-preference map as a proxy for shared values.
func values(a, b map[string]any) float64 {
	if v, ok := keyAgreement(a, b); ok {
		return v
	}
	return Neutral
}

// jaccard returns |A∩B| / |A∪B| over normalised values; ok is false when
// either side is empty.
func jaccard(a, b []string) (float64, bool) {
	sa, sb := toSet(a), toSet(b)
	if len(sa) == 0 || len(sb) == 0 {
		return 0, false
	}
	inter := 0
	for k := range sa {
		if _, ok := sb[k]; ok {
			inter++
		}
	}
	union := len(sa) + len(sb) - inter
	return float64(inter) / float64(union), true
}

// keyAgreement is the fraction of shared keys whose values agree. ok is
// false when the maps share no keys.
func keyAgreement(a, b map[string]any) (float64, bool) {
	na, nb := normalizeMap(a), normalizeMap(b)
	shared, agree := 0, 0
	for k, va := range na {
		vb, ok := nb[k]
		if !ok {
			continue
		}
		shared++
		if va == vb {
			agree++
		}
	}
	if shared == 0 {
		return 0, false
	}
	return float64(agree) / float64(shared), true
}

func normalizeMap(m map[string]any) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		key := normalize(k)
		if key == "" || v == nil {
			continue
		}
		out[key] = normalizeValue(v)
	}
	return out
}

func normalizeValue(v any) string {
	switch t := v.(type) {
	case string:
		return normalize(t)
	case []any:
		parts := make([]string, 0, len(t))
		for _, p := range t {
			parts = append(parts, normalizeValue(p))
		}
		sort.Strings(parts)
		return strings.Join(parts, ",")
	case []string:
		parts := make([]string, 0, len(t))
		for _, p := range t {
			parts = append(parts, normalize(p))
		}
		sort.Strings(parts)
		return strings.Join(parts, ",")
	default:
		return normalize(fmt.Sprint(t))
	}
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		if key := normalize(v); key != "" {
			set[key] = struct{}{}
		}
	}
	return set
}

func normalize(value string) string {
	value = strings.TrimSpace(strings.ToLower(value))
	value = strings.ReplaceAll(value, " ", "_")
	value = strings.ReplaceAll(value, "-", "_")
	return value
}

func pairKey(a, b string) [2]string {
	if a > b {
		a, b = b, a
	}
	return [2]string{a, b}
}

func indexOf(list []string, v string) int {
	for i, item := range list {
		if item == v {
			return i
		}
	}
	return -1
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func clampRange(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
