package queue

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/inazuma-gg/ladder-backend/internal/repository"
)

// Janitor reaps searching entries whose presence heartbeat has lapsed, so
// disconnected players don't get paired into matches they will never play.
type Janitor struct {
	queueRepo repository.QueueRepository
	presence  Presence
	manager   interface{ Stop(profileID string) }
	interval  time.Duration
	logger    zerolog.Logger
}

func NewJanitor(
	queueRepo repository.QueueRepository,
	presence Presence,
	manager interface{ Stop(profileID string) },
	interval time.Duration,
	logger zerolog.Logger,
) *Janitor {
	return &Janitor{
		queueRepo: queueRepo,
		presence:  presence,
		manager:   manager,
		interval:  interval,
		logger:    logger.With().Str("component", "queue_janitor").Logger(),
	}
}

// Run sweeps on the configured interval until ctx is cancelled.
func (j *Janitor) Run(ctx context.Context) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.Sweep(ctx)
		}
	}
}

// Sweep deletes every searching entry whose owner has no live heartbeat.
// Entries already claimed by a pairing are untouched; the conditional
// delete only removes entries still searching.
func (j *Janitor) Sweep(ctx context.Context) {
	entries, err := j.queueRepo.ListAllSearching(ctx)
	if err != nil {
		j.logger.Error().Err(err).Msg("failed to list searching entries")
		return
	}

	for _, entry := range entries {
		alive, err := j.presence.Alive(ctx, entry.ProfileID)
		if err != nil {
			j.logger.Warn().Err(err).Str("profile_id", entry.ProfileID).Msg("presence check failed")
			continue
		}
		if alive {
			continue
		}

		deleted, err := j.queueRepo.DeleteSearching(ctx, entry.ID)
		if err != nil {
			j.logger.Error().Err(err).Str("entry_id", entry.ID).Msg("failed to reap stale entry")
			continue
		}
		if deleted {
			j.manager.Stop(entry.ProfileID)
			j.logger.Info().
				Str("profile_id", entry.ProfileID).
				Str("entry_id", entry.ID).
				Msg("reaped stale queue entry")
		}
	}
}
