package domain

import "time"

// Dispute flags a match for external adjudication. At most one dispute
// exists per match; concurrent conflicting reports must not duplicate it.
type Dispute struct {
	ID          string    `json:"id" db:"id"`
	MatchID     string    `json:"match_id" db:"match_id"`
	ReporterID  string    `json:"reporter_id" db:"reporter_id"`
	Reason      string    `json:"reason" db:"reason"`
	EvidenceURL *string   `json:"evidence_url" db:"evidence_url"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}
