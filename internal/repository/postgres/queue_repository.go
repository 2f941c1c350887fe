package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/inazuma-gg/ladder-backend/internal/domain"
	"github.com/inazuma-gg/ladder-backend/internal/repository"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type queueRepository struct {
	db *sqlx.DB
}

func NewQueueRepository(db *sqlx.DB) repository.QueueRepository {
	return &queueRepository{db: db}
}

func (r *queueRepository) Create(ctx context.Context, entry *domain.QueueEntry) error {
	query := `
		INSERT INTO queue_entries (id, profile_id, rating, tier, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`
	err := r.db.QueryRowContext(
		ctx, query,
		entry.ID, entry.ProfileID, entry.Rating, entry.Tier, entry.Status,
	).Scan(&entry.CreatedAt)
	if err != nil {
		// A concurrent enqueue that slipped past the usecase check lands
		// on the one-live-search-per-player partial index.
		if isUniqueViolation(err) {
			return domain.ErrAlreadyQueued
		}
		return err
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

func (r *queueRepository) GetByID(ctx context.Context, id string) (*domain.QueueEntry, error) {
	var entry domain.QueueEntry
	query := `SELECT * FROM queue_entries WHERE id = $1`
	err := r.db.GetContext(ctx, &entry, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrQueueEntryNotFound
		}
		return nil, err
	}
	return &entry, nil
}

func (r *queueRepository) GetActiveByProfile(ctx context.Context, profileID string) (*domain.QueueEntry, error) {
	var entry domain.QueueEntry
	query := `
		SELECT * FROM queue_entries
		WHERE profile_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`
	err := r.db.GetContext(ctx, &entry, query, profileID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrQueueEntryNotFound
		}
		return nil, err
	}
	return &entry, nil
}

func (r *queueRepository) ListSearching(ctx context.Context, excludeEntryID, excludeProfileID string, tiers []string) ([]*domain.QueueEntry, error) {
	var entries []*domain.QueueEntry
	query := `
		SELECT * FROM queue_entries
		WHERE status = 'searching'
		  AND match_id IS NULL
		  AND id <> $1
		  AND profile_id <> $2
		  AND tier = ANY($3)
		ORDER BY created_at ASC
	`
	err := r.db.SelectContext(ctx, &entries, query, excludeEntryID, excludeProfileID, pq.Array(tiers))
	return entries, err
}

func (r *queueRepository) ListAllSearching(ctx context.Context) ([]*domain.QueueEntry, error) {
	var entries []*domain.QueueEntry
	query := `
		SELECT * FROM queue_entries
		WHERE status = 'searching' AND match_id IS NULL
		ORDER BY created_at ASC
	`
	err := r.db.SelectContext(ctx, &entries, query)
	return entries, err
}

func (r *queueRepository) DeleteSearching(ctx context.Context, id string) (bool, error) {
	// Conditional on status so a concurrent match creation wins the race
	// and a cancelled entry is never resurrected.
	query := `DELETE FROM queue_entries WHERE id = $1 AND status = 'searching' AND match_id IS NULL`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}
