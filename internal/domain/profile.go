package domain

import "time"

// Profile is the subset of the player profile the matchmaking core reads
// and writes. Rating fields are mutated only at match settlement.
type Profile struct {
	ID            string    `json:"id" db:"id"`
	Nickname      string    `json:"nickname" db:"nickname"`
	Rating        int       `json:"rating" db:"rating"`
	Tier          string    `json:"tier" db:"tier"`
	GamesPlayed   int       `json:"games_played" db:"games_played"`
	Wins          int       `json:"wins" db:"wins"`
	CurrentStreak int       `json:"current_streak" db:"current_streak"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

func (p *Profile) WinRate() float64 {
	if p.GamesPlayed == 0 {
		return 0
	}
	return float64(p.Wins) / float64(p.GamesPlayed)
}

// ProfilePatch is a partial profile update. Nil fields are left untouched.
type ProfilePatch struct {
	Rating        *int
	Tier          *string
	CurrentStreak *int
	GamesPlayed   *int
	Wins          *int
}

func (p *ProfilePatch) Empty() bool {
	return p.Rating == nil && p.Tier == nil && p.CurrentStreak == nil &&
		p.GamesPlayed == nil && p.Wins == nil
}
