package domain

import "time"

type Outcome string

const (
	OutcomeWin  Outcome = "win"
	OutcomeLose Outcome = "lose"
)

func (o Outcome) Valid() bool {
	return o == OutcomeWin || o == OutcomeLose
}

type MatchStatus string

const (
	MatchStatusPending   MatchStatus = "pending"
	MatchStatusCompleted MatchStatus = "completed"
	MatchStatusReported  MatchStatus = "reported"
)

// Match is a head-to-head pairing created atomically from two queue
// entries. Player ratings are snapshots at creation time; Result1/Result2
// are the two independent self-reported outcome slots. Once the status
// leaves pending both slots are immutable.
type Match struct {
	ID            string      `json:"id" db:"id"`
	Player1ID     string      `json:"player1_id" db:"player1_id"`
	Player2ID     string      `json:"player2_id" db:"player2_id"`
	Player1Rating int         `json:"player1_rating" db:"player1_rating"`
	Player2Rating int         `json:"player2_rating" db:"player2_rating"`
	Result1       *Outcome    `json:"result1" db:"result1"`
	Result2       *Outcome    `json:"result2" db:"result2"`
	Status        MatchStatus `json:"status" db:"status"`
	FirstResultAt *time.Time  `json:"first_result_at" db:"first_result_at"`
	WinnerID      *string     `json:"winner_id" db:"winner_id"`
	CreatedAt     time.Time   `json:"created_at" db:"created_at"`
}

func (m *Match) HasPlayer(profileID string) bool {
	return m.Player1ID == profileID || m.Player2ID == profileID
}

func (m *Match) OpponentOf(profileID string) (string, bool) {
	if m.Player1ID == profileID {
		return m.Player2ID, true
	}
	if m.Player2ID == profileID {
		return m.Player1ID, true
	}
	return "", false
}

// SlotOf returns the outcome slot (1 or 2) owned by the given player,
// or 0 when the player is not part of the match.
func (m *Match) SlotOf(profileID string) int {
	switch profileID {
	case m.Player1ID:
		return 1
	case m.Player2ID:
		return 2
	}
	return 0
}

func (m *Match) ResultOf(profileID string) *Outcome {
	switch profileID {
	case m.Player1ID:
		return m.Result1
	case m.Player2ID:
		return m.Result2
	}
	return nil
}

func (m *Match) Terminal() bool {
	return m.Status != MatchStatusPending
}
