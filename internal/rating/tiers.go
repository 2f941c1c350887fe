package rating

import "math"

// Tier is a named band over a rating range. The topmost band is open-ended.
type Tier struct {
	Name      string `json:"name"`
	MinRating int    `json:"min_rating"`
	MaxRating int    `json:"max_rating"`
}

// Tiers is the fixed ladder, ascending.
var Tiers = []Tier{
	{Name: "novato", MinRating: 0, MaxRating: 499},
	{Name: "aspirante", MinRating: 500, MaxRating: 799},
	{Name: "promesa", MinRating: 800, MaxRating: 1199},
	{Name: "relampago", MinRating: 1200, MaxRating: 1399},
	{Name: "tormenta", MinRating: 1400, MaxRating: 1599},
	{Name: "supernova", MinRating: 1600, MaxRating: 1799},
	{Name: "inazuma", MinRating: 1800, MaxRating: 2499},
	{Name: "heroe", MinRating: 2500, MaxRating: math.MaxInt32},
}

// TierOf returns the band containing the rating. It is total: negative
// ratings clamp to the lowest band.
func TierOf(rating int) Tier {
	for _, t := range Tiers {
		if rating >= t.MinRating && rating <= t.MaxRating {
			return t
		}
	}
	return Tiers[0]
}

// TierIndex returns the position of the named tier, or 0 for unknown names.
func TierIndex(name string) int {
	for i, t := range Tiers {
		if t.Name == name {
			return i
		}
	}
	return 0
}

// AdjacentTiers returns the names of all tiers within the given distance of
// the named tier, itself included, clamped at the ladder bounds.
func AdjacentTiers(name string, distance int) []string {
	idx := TierIndex(name)
	lo := idx - distance
	if lo < 0 {
		lo = 0
	}
	hi := idx + distance
	if hi > len(Tiers)-1 {
		hi = len(Tiers) - 1
	}
	names := make([]string, 0, hi-lo+1)
	for i := lo; i <= hi; i++ {
		names = append(names, Tiers[i].Name)
	}
	return names
}

// tierModifier scales rating changes by the player's own band: easier to
// climb at the bottom of the ladder, harder at the top.
func tierModifier(rating int) float64 {
	switch {
	case rating < 500:
		return 1.2
	case rating < 800:
		return 1.1
	case rating < 1200:
		return 1.0
	case rating < 1400:
		return 0.95
	case rating < 1600:
		return 0.9
	case rating < 1800:
		return 0.85
	case rating < 2500:
		return 0.8
	default:
		return 0.75
	}
}
