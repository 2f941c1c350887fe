package repository

import (
	"context"

	"github.com/inazuma-gg/ladder-backend/internal/domain"
)

// ProfileRepository reads and patches player profiles. Profile creation
// belongs to the account system; this service only consumes rows.
type ProfileRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Profile, error)
	// Update applies a partial update; nil patch fields are untouched.
	Update(ctx context.Context, id string, patch *domain.ProfilePatch) error
	// ListByRating returns profiles ordered by rating descending.
	ListByRating(ctx context.Context, limit, offset int) ([]*domain.Profile, error)
	// CountHigherRated returns how many profiles out-rate the given rating.
	CountHigherRated(ctx context.Context, rating int) (int, error)
}
