package repository

import (
	"context"

	"github.com/inazuma-gg/ladder-backend/internal/domain"
)

type QueueRepository interface {
	Create(ctx context.Context, entry *domain.QueueEntry) error
	GetByID(ctx context.Context, id string) (*domain.QueueEntry, error)
	// GetActiveByProfile returns the player's current entry regardless of
	// its status, or ErrQueueEntryNotFound.
	GetActiveByProfile(ctx context.Context, profileID string) (*domain.QueueEntry, error)
	// ListSearching returns all unbound searching entries in the given
	// tiers, excluding one entry and one player, ordered by creation time
	// ascending so candidate selection is deterministic.
	ListSearching(ctx context.Context, excludeEntryID, excludeProfileID string, tiers []string) ([]*domain.QueueEntry, error)
	// ListAllSearching returns every searching entry (janitor sweep).
	ListAllSearching(ctx context.Context) ([]*domain.QueueEntry, error)
	// DeleteSearching removes the entry only while it is still searching.
	// Returns false when the entry was already claimed or gone.
	DeleteSearching(ctx context.Context, id string) (bool, error)
}
