package repository

import (
	"context"

	"github.com/inazuma-gg/ladder-backend/internal/domain"
)

type DisputeRepository interface {
	// CreateOnce inserts the dispute unless one already exists for the
	// match (idempotent upsert keyed by match id). Returns whether this
	// call created the record.
	CreateOnce(ctx context.Context, dispute *domain.Dispute) (bool, error)
	GetByMatch(ctx context.Context, matchID string) (*domain.Dispute, error)
}
