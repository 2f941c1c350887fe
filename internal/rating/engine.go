// Package rating computes skill-point changes after head-to-head matches.
// All functions are pure: no I/O, no failure modes. Callers supply
// non-negative ratings; the floor clamps handle the rest.
package rating

import (
	"fmt"
	"math"
)

const baseK = 20

// streakMultipliers is indexed by min(streak, 5).
var streakMultipliers = [...]float64{1.0, 1.0, 1.1, 1.15, 1.2, 1.25}

const (
	minChange     = 5
	maxChange     = 30
	maxUpset      = 35
	upsetMargin   = 100
	extremeMargin = 300
)

// Delta is the outcome of a single rated match.
type Delta struct {
	WinnerGain      int    `json:"winner_gain"`
	LoserLoss       int    `json:"loser_loss"`
	NewWinnerRating int    `json:"new_winner_rating"`
	NewLoserRating  int    `json:"new_loser_rating"`
	IsUpset         bool   `json:"is_upset"`
	Explanation     string `json:"explanation"`
}

// expectedScore is the logistic win probability of a vs b.
func expectedScore(a, b int) float64 {
	return 1 / (1 + math.Pow(10, float64(b-a)/400))
}

func streakMultiplier(streak int) float64 {
	if streak < 0 {
		streak = -streak
	}
	if streak > len(streakMultipliers)-1 {
		streak = len(streakMultipliers) - 1
	}
	return streakMultipliers[streak]
}

// ComputeDelta calculates the rating change for a settled match.
// Streaks are signed: positive runs of wins, negative runs of losses,
// as they stood before this match.
func ComputeDelta(winnerRating, loserRating, winnerStreak, loserStreak int) Delta {
	diff := winnerRating - loserRating
	isUpset := diff < -upsetMargin
	favoriteWon := diff > upsetMargin

	expWinner := expectedScore(winnerRating, loserRating)
	winnerChange := baseK * (1 - expWinner)
	loserChange := baseK * expWinner

	winnerChange *= tierModifier(winnerRating)
	loserChange *= tierModifier(loserRating)

	// A winner continuing or starting a win streak earns the escalating
	// bonus; breaking a losing streak earns nothing extra. Symmetric for
	// the loser on the penalty side.
	if winnerStreak >= 0 {
		winnerChange *= streakMultiplier(winnerStreak)
	}
	if loserStreak <= 0 {
		loserChange *= streakMultiplier(loserStreak)
	}

	if isUpset {
		winnerChange *= 1.3
		loserChange *= 1.4
	} else if favoriteWon {
		winnerChange *= 0.7
		loserChange *= 0.6
	}

	gain := int(math.Round(winnerChange))
	loss := int(math.Round(loserChange))

	if gain < minChange {
		gain = minChange
	}
	if loss < minChange {
		loss = minChange
	}

	limit := maxChange
	if isUpset && abs(diff) > extremeMargin {
		limit = maxUpset
	}
	if gain > limit {
		gain = limit
	}
	if loss > limit {
		loss = limit
	}

	newLoser := loserRating - loss
	if newLoser < 0 {
		newLoser = 0
	}

	var explanation string
	switch {
	case isUpset:
		explanation = fmt.Sprintf("upset victory: +%d (underdog bonus)", gain)
	case favoriteWon:
		explanation = fmt.Sprintf("expected result: +%d", gain)
	default:
		explanation = fmt.Sprintf("balanced match: +%d", gain)
	}

	return Delta{
		WinnerGain:      gain,
		LoserLoss:       loss,
		NewWinnerRating: winnerRating + gain,
		NewLoserRating:  newLoser,
		IsUpset:         isUpset,
		Explanation:     explanation,
	}
}

// TierChange describes a promotion or demotion across tier bands.
type TierChange struct {
	Changed  bool   `json:"changed"`
	Promoted bool   `json:"promoted"`
	Demoted  bool   `json:"demoted"`
	OldTier  string `json:"old_tier"`
	NewTier  string `json:"new_tier"`
}

// CheckTierChange compares the tier bands before and after a rating update.
func CheckTierChange(oldRating, newRating int) TierChange {
	oldTier := TierOf(oldRating)
	newTier := TierOf(newRating)
	oldIdx := TierIndex(oldTier.Name)
	newIdx := TierIndex(newTier.Name)
	return TierChange{
		Changed:  oldIdx != newIdx,
		Promoted: newIdx > oldIdx,
		Demoted:  newIdx < oldIdx,
		OldTier:  oldTier.Name,
		NewTier:  newTier.Name,
	}
}

// PreviewResult shows each side's stakes before the match is played.
type PreviewResult struct {
	Player1WinGain  int `json:"player1_win_gain"`
	Player1LoseLoss int `json:"player1_lose_loss"`
	Player2WinGain  int `json:"player2_win_gain"`
	Player2LoseLoss int `json:"player2_lose_loss"`
	Player1WinPct   int `json:"player1_win_pct"`
	Player2WinPct   int `json:"player2_win_pct"`
}

// Preview evaluates both possible outcomes of a pending match.
func Preview(p1Rating, p2Rating, p1Streak, p2Streak int) PreviewResult {
	p1Wins := ComputeDelta(p1Rating, p2Rating, p1Streak, p2Streak)
	p2Wins := ComputeDelta(p2Rating, p1Rating, p2Streak, p1Streak)
	p1Pct := int(math.Round(expectedScore(p1Rating, p2Rating) * 100))
	return PreviewResult{
		Player1WinGain:  p1Wins.WinnerGain,
		Player1LoseLoss: p2Wins.LoserLoss,
		Player2WinGain:  p2Wins.WinnerGain,
		Player2LoseLoss: p1Wins.LoserLoss,
		Player1WinPct:   p1Pct,
		Player2WinPct:   100 - p1Pct,
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
