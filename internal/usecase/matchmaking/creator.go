package matchmaking

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/inazuma-gg/ladder-backend/internal/domain"
	"github.com/inazuma-gg/ladder-backend/internal/repository"
)

// Creator turns a compatible pair of queue entries into a pending match.
// The repository performs the entry claim and the match insert in one
// transaction, so two finders racing for the same entry cannot both win.
type Creator struct {
	matchRepo repository.MatchRepository
	logger    zerolog.Logger
	now       func() time.Time
}

func NewCreator(matchRepo repository.MatchRepository, logger zerolog.Logger) *Creator {
	return &Creator{
		matchRepo: matchRepo,
		logger:    logger.With().Str("component", "match_creator").Logger(),
		now:       time.Now,
	}
}

// CreatePair creates a pending match from two searching entries, snapshotting
// each player's rating at creation time. Returns domain.ErrEntryAlreadyMatched
// when either entry was claimed by a concurrent pairing; callers treat that as
// "keep searching", not as a failure.
func (c *Creator) CreatePair(ctx context.Context, e1, e2 *domain.QueueEntry) (*domain.Match, error) {
	match := &domain.Match{
		ID:            uuid.NewString(),
		Player1ID:     e1.ProfileID,
		Player2ID:     e2.ProfileID,
		Player1Rating: e1.Rating,
		Player2Rating: e2.Rating,
		Status:        domain.MatchStatusPending,
		CreatedAt:     c.now(),
	}

	if err := c.matchRepo.CreateFromEntries(ctx, e1.ID, e2.ID, match); err != nil {
		return nil, err
	}

	c.logger.Info().
		Str("match_id", match.ID).
		Str("player1", match.Player1ID).
		Str("player2", match.Player2ID).
		Int("rating_diff", abs(e1.Rating-e2.Rating)).
		Msg("match created")

	return match, nil
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
