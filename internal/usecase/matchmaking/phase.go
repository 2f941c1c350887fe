package matchmaking

import (
	"time"

	"github.com/inazuma-gg/ladder-backend/internal/rating"
)

// Phase is the widening stage of a search. A search starts restricted to
// the seeker's own tier and widens at fixed elapsed-time boundaries, but
// never opens up past two tiers of distance.
type Phase int

const (
	// PhaseSameTier matches only within the seeker's tier.
	PhaseSameTier Phase = iota + 1
	// PhaseAdjacent allows one tier of distance in either direction.
	PhaseAdjacent
	// PhaseExtended allows two tiers of distance. This is the terminal
	// phase; the pool never widens further.
	PhaseExtended
)

func (p Phase) String() string {
	switch p {
	case PhaseSameTier:
		return "same_tier"
	case PhaseAdjacent:
		return "adjacent"
	case PhaseExtended:
		return "extended"
	default:
		return "unknown"
	}
}

// Schedule holds the elapsed-time boundaries between phases.
type Schedule struct {
	AdjacentAfter time.Duration
	ExtendedAfter time.Duration
}

// DefaultSchedule widens at two and four minutes.
var DefaultSchedule = Schedule{
	AdjacentAfter: 2 * time.Minute,
	ExtendedAfter: 4 * time.Minute,
}

// PhaseAt returns the phase for a search that has been running for elapsed.
func (s Schedule) PhaseAt(elapsed time.Duration) Phase {
	switch {
	case elapsed < s.AdjacentAfter:
		return PhaseSameTier
	case elapsed < s.ExtendedAfter:
		return PhaseAdjacent
	default:
		return PhaseExtended
	}
}

// TierDistance is the maximum tier distance a phase allows.
func (p Phase) TierDistance() int {
	switch p {
	case PhaseSameTier:
		return 0
	case PhaseAdjacent:
		return 1
	default:
		return 2
	}
}

// TargetTiers resolves the tier names eligible for a seeker in the given
// phase. Tier boundaries clamp at the ends of the ladder, so a seeker in
// the lowest or highest band simply sees fewer candidate tiers.
func (p Phase) TargetTiers(tier string) []string {
	return rating.AdjacentTiers(tier, p.TierDistance())
}
