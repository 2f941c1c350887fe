package matchmaking

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/inazuma-gg/ladder-backend/internal/domain"
	"github.com/inazuma-gg/ladder-backend/internal/repository"
)

// Finder drives the search loop for a single queue entry: it wakes on
// queue events (plus a ticker fallback), computes the current widening
// phase, scans the eligible pool and tries to pair with the closest-rated
// candidate. Pairing is optimistic; losing a race for an entry just means
// the next wake re-scans.
type Finder struct {
	queueRepo repository.QueueRepository
	matchRepo repository.MatchRepository
	creator   *Creator
	source    EventSource
	schedule  Schedule
	logger    zerolog.Logger
	now       func() time.Time
}

func NewFinder(
	queueRepo repository.QueueRepository,
	matchRepo repository.MatchRepository,
	creator *Creator,
	source EventSource,
	schedule Schedule,
	logger zerolog.Logger,
) *Finder {
	return &Finder{
		queueRepo: queueRepo,
		matchRepo: matchRepo,
		creator:   creator,
		source:    source,
		schedule:  schedule,
		logger:    logger.With().Str("component", "match_finder").Logger(),
		now:       time.Now,
	}
}

// Run searches on behalf of the given entry until a match is found or ctx
// is cancelled. It returns the match whether this finder created it or a
// peer's finder claimed the entry first.
func (f *Finder) Run(ctx context.Context, entryID string) (*domain.Match, error) {
	wake, err := f.source.Subscribe(ctx)
	if err != nil {
		return nil, err
	}

	// Scan immediately; the first wake may be a full tick away.
	if match, done, err := f.step(ctx, entryID); done {
		return match, err
	}

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case _, ok := <-wake:
			if !ok {
				return nil, ctx.Err()
			}
			if match, done, err := f.step(ctx, entryID); done {
				return match, err
			}
		}
	}
}

// step performs one scan. done reports that the search is over, either
// because a match exists or because the entry is gone (cancelled).
func (f *Finder) step(ctx context.Context, entryID string) (*domain.Match, bool, error) {
	entry, err := f.queueRepo.GetByID(ctx, entryID)
	if err != nil {
		if errors.Is(err, domain.ErrQueueEntryNotFound) {
			return nil, true, err
		}
		f.logger.Error().Err(err).Str("entry_id", entryID).Msg("failed to read queue entry")
		return nil, false, nil
	}

	// A peer's finder may have paired us between wakes.
	if entry.Status == domain.QueueStatusMatched && entry.MatchID != nil {
		match, err := f.matchRepo.GetByID(ctx, *entry.MatchID)
		if err != nil {
			return nil, true, err
		}
		return match, true, nil
	}

	match, err := f.FindOnce(ctx, entry)
	if err != nil {
		f.logger.Error().Err(err).Str("entry_id", entryID).Msg("scan failed")
		return nil, false, nil
	}
	if match != nil {
		return match, true, nil
	}
	return nil, false, nil
}

// FindOnce scans the pool for the entry's current phase and attempts a
// single pairing. It returns (nil, nil) when no compatible opponent exists
// or a concurrent pairing claimed the candidate first.
func (f *Finder) FindOnce(ctx context.Context, entry *domain.QueueEntry) (*domain.Match, error) {
	phase := f.schedule.PhaseAt(f.now().Sub(entry.CreatedAt))
	tiers := phase.TargetTiers(entry.Tier)

	candidates, err := f.queueRepo.ListSearching(ctx, entry.ID, entry.ProfileID, tiers)
	if err != nil {
		return nil, err
	}

	best := selectBest(entry, candidates)
	if best == nil {
		return nil, nil
	}

	match, err := f.creator.CreatePair(ctx, entry, best)
	if err != nil {
		// Lost the race for one of the entries; the queue changed, so the
		// next wake re-scans with fresh state.
		if errors.Is(err, domain.ErrEntryAlreadyMatched) {
			f.logger.Debug().
				Str("entry_id", entry.ID).
				Str("candidate_id", best.ID).
				Msg("candidate claimed concurrently")
			return nil, nil
		}
		return nil, err
	}
	return match, nil
}

// selectBest picks the candidate with the smallest absolute rating
// difference. Candidates arrive ordered by creation time, so on equal
// difference the earliest-queued entry wins.
func selectBest(entry *domain.QueueEntry, candidates []*domain.QueueEntry) *domain.QueueEntry {
	var best *domain.QueueEntry
	bestDiff := 0
	for _, c := range candidates {
		diff := abs(entry.Rating - c.Rating)
		if best == nil || diff < bestDiff {
			best = c
			bestDiff = diff
		}
	}
	return best
}
