package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/inazuma-gg/ladder-backend/internal/domain"
	"github.com/inazuma-gg/ladder-backend/internal/repository"
	"github.com/jmoiron/sqlx"
)

type matchRepository struct {
	db *sqlx.DB
}

func NewMatchRepository(db *sqlx.DB) repository.MatchRepository {
	return &matchRepository{db: db}
}

func (r *matchRepository) CreateFromEntries(ctx context.Context, entry1ID, entry2ID string, match *domain.Match) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin match creation: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	// Lock both entries in a stable order so two finders pairing the same
	// players cannot deadlock; rows already claimed or cancelled simply
	// fail the count check.
	var entries []*domain.QueueEntry
	lockQuery := `
		SELECT * FROM queue_entries
		WHERE id IN ($1, $2) AND status = 'searching' AND match_id IS NULL
		ORDER BY id
		FOR UPDATE
	`
	if err := tx.SelectContext(ctx, &entries, lockQuery, entry1ID, entry2ID); err != nil {
		return fmt.Errorf("lock queue entries: %w", err)
	}
	if len(entries) != 2 {
		return domain.ErrEntryAlreadyMatched
	}

	insertQuery := `
		INSERT INTO matches (id, player1_id, player2_id, player1_rating, player2_rating, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`
	err = tx.QueryRowContext(
		ctx, insertQuery,
		match.ID, match.Player1ID, match.Player2ID,
		match.Player1Rating, match.Player2Rating, match.Status,
	).Scan(&match.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert match: %w", err)
	}

	claimQuery := `
		UPDATE queue_entries
		SET status = 'matched', match_id = $1
		WHERE id IN ($2, $3)
	`
	result, err := tx.ExecContext(ctx, claimQuery, match.ID, entry1ID, entry2ID)
	if err != nil {
		return fmt.Errorf("claim queue entries: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows != 2 {
		return domain.ErrEntryAlreadyMatched
	}

	return tx.Commit()
}

func (r *matchRepository) GetByID(ctx context.Context, id string) (*domain.Match, error) {
	var match domain.Match
	query := `SELECT * FROM matches WHERE id = $1`
	err := r.db.GetContext(ctx, &match, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrMatchNotFound
		}
		return nil, err
	}
	return &match, nil
}

func (r *matchRepository) SetResult(ctx context.Context, id string, slot int, outcome domain.Outcome, at time.Time) (bool, error) {
	if slot != 1 && slot != 2 {
		return false, fmt.Errorf("invalid result slot %d", slot)
	}
	column := "result1"
	if slot == 2 {
		column = "result2"
	}
	query := fmt.Sprintf(`
		UPDATE matches
		SET %s = $1, first_result_at = COALESCE(first_result_at, $2)
		WHERE id = $3 AND status = 'pending' AND %s IS NULL
	`, column, column)
	result, err := r.db.ExecContext(ctx, query, outcome, at, id)
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

func (r *matchRepository) Settle(ctx context.Context, id string, s repository.Settlement) (bool, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin settlement: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	// The winner claim doubles as the row lock: whichever transaction
	// writes it first carries the settlement, every later caller sees
	// zero rows and backs off.
	claimQuery := `
		UPDATE matches
		SET winner_id = $1
		WHERE id = $2 AND status = 'pending' AND winner_id IS NULL
	`
	result, err := tx.ExecContext(ctx, claimQuery, s.WinnerID, id)
	if err != nil {
		return false, fmt.Errorf("claim winner: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	if rows == 0 {
		return false, nil
	}

	winnerQuery := `
		UPDATE profiles
		SET rating = $1, tier = $2, current_streak = $3,
		    games_played = games_played + 1, wins = wins + 1,
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = $4
	`
	if _, err := tx.ExecContext(ctx, winnerQuery, s.WinnerRating, s.WinnerTier, s.WinnerStreak, s.WinnerID); err != nil {
		return false, fmt.Errorf("apply winner rating: %w", err)
	}

	loserQuery := `
		UPDATE profiles
		SET rating = $1, tier = $2, current_streak = $3,
		    games_played = games_played + 1,
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = $4
	`
	if _, err := tx.ExecContext(ctx, loserQuery, s.LoserRating, s.LoserTier, s.LoserStreak, s.LoserID); err != nil {
		return false, fmt.Errorf("apply loser rating: %w", err)
	}

	completeQuery := `UPDATE matches SET status = 'completed' WHERE id = $1 AND status = 'pending'`
	if _, err := tx.ExecContext(ctx, completeQuery, id); err != nil {
		return false, fmt.Errorf("complete match: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit settlement: %w", err)
	}
	return true, nil
}

func (r *matchRepository) UpdateStatus(ctx context.Context, id string, from, to domain.MatchStatus) (bool, error) {
	query := `UPDATE matches SET status = $1 WHERE id = $2 AND status = $3`
	result, err := r.db.ExecContext(ctx, query, to, id, from)
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

func (r *matchRepository) ListByPlayer(ctx context.Context, profileID string, limit, offset int) ([]*domain.Match, error) {
	var matches []*domain.Match
	query := `
		SELECT * FROM matches
		WHERE player1_id = $1 OR player2_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	err := r.db.SelectContext(ctx, &matches, query, profileID, limit, offset)
	return matches, err
}

func (r *matchRepository) ListResultExpired(ctx context.Context, cutoff time.Time) ([]*domain.Match, error) {
	var matches []*domain.Match
	query := `
		SELECT * FROM matches
		WHERE status = 'pending'
		  AND first_result_at IS NOT NULL
		  AND first_result_at < $1
		  AND (result1 IS NULL OR result2 IS NULL)
		ORDER BY first_result_at ASC
	`
	err := r.db.SelectContext(ctx, &matches, query, cutoff)
	return matches, err
}
