package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/inazuma-gg/ladder-backend/internal/domain"
	"github.com/inazuma-gg/ladder-backend/internal/repository"
	"github.com/jmoiron/sqlx"
)

type disputeRepository struct {
	db *sqlx.DB
}

func NewDisputeRepository(db *sqlx.DB) repository.DisputeRepository {
	return &disputeRepository{db: db}
}

func (r *disputeRepository) CreateOnce(ctx context.Context, dispute *domain.Dispute) (bool, error) {
	// Concurrent conflicting reports race to this insert; the unique key
	// on match_id makes the second one a no-op.
	query := `
		INSERT INTO disputes (id, match_id, reporter_id, reason, evidence_url)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (match_id) DO NOTHING
		RETURNING created_at
	`
	err := r.db.QueryRowContext(
		ctx, query,
		dispute.ID, dispute.MatchID, dispute.ReporterID, dispute.Reason, dispute.EvidenceURL,
	).Scan(&dispute.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *disputeRepository) GetByMatch(ctx context.Context, matchID string) (*domain.Dispute, error) {
	var dispute domain.Dispute
	query := `SELECT * FROM disputes WHERE match_id = $1`
	err := r.db.GetContext(ctx, &dispute, query, matchID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrDisputeNotFound
		}
		return nil, err
	}
	return &dispute, nil
}
