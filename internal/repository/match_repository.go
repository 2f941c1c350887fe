package repository

import (
	"context"
	"time"

	"github.com/inazuma-gg/ladder-backend/internal/domain"
)

// Settlement carries the per-player values written when an agreed match
// completes. Game and win counters are incremented in the store itself so
// a settlement racing another match of the same player cannot drop a
// count.
type Settlement struct {
	WinnerID     string
	LoserID      string
	WinnerRating int
	LoserRating  int
	WinnerTier   string
	LoserTier    string
	WinnerStreak int
	LoserStreak  int
}

type MatchRepository interface {
	// CreateFromEntries converts two queue entries into one pending match
	// as a single atomic operation: both entries must still be searching
	// and unbound, the match row is inserted, and both entries are marked
	// matched with a reference to it. Returns ErrEntryAlreadyMatched when
	// a concurrent pairing claimed either entry first.
	CreateFromEntries(ctx context.Context, entry1ID, entry2ID string, match *domain.Match) error

	GetByID(ctx context.Context, id string) (*domain.Match, error)

	// SetResult records an outcome in the given slot (1 or 2) while the
	// match is still pending and the slot is unset, stamping the
	// first-result timestamp on the first write. Returns false when the
	// conditional update did not apply.
	SetResult(ctx context.Context, id string, slot int, outcome domain.Outcome, at time.Time) (bool, error)

	// Settle completes a pending match in one atomic operation: the winner
	// claim, both profile writes and the pending→completed transition
	// commit together or not at all, so a failed settlement leaves nothing
	// applied and can simply be retried. Returns false when the match
	// already left pending or another caller claimed the winner slot.
	Settle(ctx context.Context, id string, s Settlement) (bool, error)

	// UpdateStatus advances the lifecycle only if the row still holds the
	// expected prior status.
	UpdateStatus(ctx context.Context, id string, from, to domain.MatchStatus) (bool, error)

	ListByPlayer(ctx context.Context, profileID string, limit, offset int) ([]*domain.Match, error)

	// ListResultExpired returns pending matches whose first result arrived
	// before the cutoff and whose opposite slot is still empty.
	ListResultExpired(ctx context.Context, cutoff time.Time) ([]*domain.Match, error)
}
