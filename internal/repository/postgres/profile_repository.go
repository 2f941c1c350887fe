package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/inazuma-gg/ladder-backend/internal/domain"
	"github.com/inazuma-gg/ladder-backend/internal/repository"
	"github.com/jmoiron/sqlx"
)

type profileRepository struct {
	db *sqlx.DB
}

func NewProfileRepository(db *sqlx.DB) repository.ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) GetByID(ctx context.Context, id string) (*domain.Profile, error) {
	var profile domain.Profile
	query := `SELECT * FROM profiles WHERE id = $1`
	err := r.db.GetContext(ctx, &profile, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, err
	}
	return &profile, nil
}

func (r *profileRepository) Update(ctx context.Context, id string, patch *domain.ProfilePatch) error {
	if patch == nil || patch.Empty() {
		return nil
	}

	query := `UPDATE profiles SET updated_at = CURRENT_TIMESTAMP`
	args := []interface{}{}
	argCount := 1

	if patch.Rating != nil {
		query += fmt.Sprintf(", rating = $%d", argCount)
		args = append(args, *patch.Rating)
		argCount++
	}
	if patch.Tier != nil {
		query += fmt.Sprintf(", tier = $%d", argCount)
		args = append(args, *patch.Tier)
		argCount++
	}
	if patch.CurrentStreak != nil {
		query += fmt.Sprintf(", current_streak = $%d", argCount)
		args = append(args, *patch.CurrentStreak)
		argCount++
	}
	if patch.GamesPlayed != nil {
		query += fmt.Sprintf(", games_played = $%d", argCount)
		args = append(args, *patch.GamesPlayed)
		argCount++
	}
	if patch.Wins != nil {
		query += fmt.Sprintf(", wins = $%d", argCount)
		args = append(args, *patch.Wins)
		argCount++
	}

	query += fmt.Sprintf(" WHERE id = $%d", argCount)
	args = append(args, id)

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrProfileNotFound
	}
	return nil
}

func (r *profileRepository) ListByRating(ctx context.Context, limit, offset int) ([]*domain.Profile, error) {
	var profiles []*domain.Profile
	query := `
		SELECT * FROM profiles
		ORDER BY rating DESC, wins DESC, created_at ASC
		LIMIT $1 OFFSET $2
	`
	err := r.db.SelectContext(ctx, &profiles, query, limit, offset)
	return profiles, err
}

func (r *profileRepository) CountHigherRated(ctx context.Context, rating int) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM profiles WHERE rating > $1`
	err := r.db.GetContext(ctx, &count, query, rating)
	return count, err
}
