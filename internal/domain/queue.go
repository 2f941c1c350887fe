package domain

import "time"

type QueueStatus string

const (
	QueueStatusSearching QueueStatus = "searching"
	QueueStatusMatched   QueueStatus = "matched"
)

// QueueEntry is a player's active request to be matched. Rating and tier
// are snapshots taken at enqueue time. An entry goes searching -> matched
// exactly once and never back.
type QueueEntry struct {
	ID        string      `json:"id" db:"id"`
	ProfileID string      `json:"profile_id" db:"profile_id"`
	Rating    int         `json:"rating" db:"rating"`
	Tier      string      `json:"tier" db:"tier"`
	Status    QueueStatus `json:"status" db:"status"`
	MatchID   *string     `json:"match_id" db:"match_id"`
	CreatedAt time.Time   `json:"created_at" db:"created_at"`
}

func (e *QueueEntry) Searching() bool {
	return e.Status == QueueStatusSearching && e.MatchID == nil
}
