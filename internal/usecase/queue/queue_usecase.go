package queue

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/inazuma-gg/ladder-backend/internal/domain"
	"github.com/inazuma-gg/ladder-backend/internal/repository"
	"github.com/inazuma-gg/ladder-backend/internal/usecase/matchmaking"
)

// Publisher announces queue changes so search loops wake immediately
// instead of waiting for their next tick.
type Publisher interface {
	Publish(ctx context.Context, channel string, payload string) error
}

// Presence tracks per-profile liveness heartbeats for players in the
// queue. Entries whose heartbeat lapses are reaped by the janitor.
type Presence interface {
	Touch(ctx context.Context, profileID string) error
	Alive(ctx context.Context, profileID string) (bool, error)
	Forget(ctx context.Context, profileID string) error
}

// SessionManager starts and stops per-player search sessions.
type SessionManager interface {
	Start(ctx context.Context, profileID, entryID string)
	Stop(profileID string)
}

// QueueChangedChannel is the pub/sub channel search loops listen on.
const QueueChangedChannel = "ladder:queue:changed"

// Status is the queue view returned to a searching player.
type Status struct {
	Entry       *domain.QueueEntry `json:"entry"`
	Elapsed     time.Duration      `json:"elapsed_seconds"`
	Phase       string             `json:"phase"`
	TargetTiers []string           `json:"target_tiers"`
	Message     string             `json:"message"`
}

type Usecase struct {
	queueRepo   repository.QueueRepository
	profileRepo repository.ProfileRepository
	manager     SessionManager
	publisher   Publisher
	presence    Presence
	schedule    matchmaking.Schedule
	logger      zerolog.Logger
	now         func() time.Time
}

func NewUsecase(
	queueRepo repository.QueueRepository,
	profileRepo repository.ProfileRepository,
	manager SessionManager,
	publisher Publisher,
	presence Presence,
	schedule matchmaking.Schedule,
	logger zerolog.Logger,
) *Usecase {
	return &Usecase{
		queueRepo:   queueRepo,
		profileRepo: profileRepo,
		manager:     manager,
		publisher:   publisher,
		presence:    presence,
		schedule:    schedule,
		logger:      logger.With().Str("component", "queue_usecase").Logger(),
		now:         time.Now,
	}
}

// StartSearch enqueues the profile and launches its search session. The
// entry snapshots the profile's rating and tier at enqueue time; a rating
// change mid-search does not move the entry between pools.
func (u *Usecase) StartSearch(ctx context.Context, profileID string) (*domain.QueueEntry, error) {
	if existing, err := u.queueRepo.GetActiveByProfile(ctx, profileID); err == nil {
		if existing.Searching() {
			return nil, domain.ErrAlreadyQueued
		}
	} else if !errors.Is(err, domain.ErrQueueEntryNotFound) {
		return nil, err
	}

	profile, err := u.profileRepo.GetByID(ctx, profileID)
	if err != nil {
		return nil, err
	}

	entry := &domain.QueueEntry{
		ID:        uuid.NewString(),
		ProfileID: profile.ID,
		Rating:    profile.Rating,
		Tier:      profile.Tier,
		Status:    domain.QueueStatusSearching,
		CreatedAt: u.now(),
	}
	if err := u.queueRepo.Create(ctx, entry); err != nil {
		return nil, err
	}

	if err := u.presence.Touch(ctx, profileID); err != nil {
		u.logger.Warn().Err(err).Str("profile_id", profileID).Msg("failed to record presence")
	}

	// Session lifetime is the process, not the request.
	u.manager.Start(context.WithoutCancel(ctx), profileID, entry.ID)
	u.notify(ctx)

	u.logger.Info().
		Str("profile_id", profileID).
		Str("entry_id", entry.ID).
		Str("tier", entry.Tier).
		Int("rating", entry.Rating).
		Msg("search started")

	return entry, nil
}

// CancelSearch removes the profile's searching entry. Cancelling after a
// match was already created is a no-op on the match: the entry is gone but
// the pending match stands.
func (u *Usecase) CancelSearch(ctx context.Context, profileID string) error {
	entry, err := u.queueRepo.GetActiveByProfile(ctx, profileID)
	if err != nil {
		return err
	}

	deleted, err := u.queueRepo.DeleteSearching(ctx, entry.ID)
	if err != nil {
		return err
	}
	if !deleted {
		// Claimed by a pairing between the read and the delete.
		return domain.ErrEntryAlreadyMatched
	}

	u.manager.Stop(profileID)
	if err := u.presence.Forget(ctx, profileID); err != nil {
		u.logger.Warn().Err(err).Str("profile_id", profileID).Msg("failed to clear presence")
	}
	u.notify(ctx)

	u.logger.Info().Str("profile_id", profileID).Msg("search cancelled")
	return nil
}

// GetStatus reports the entry's current widening phase and eligible tiers.
func (u *Usecase) GetStatus(ctx context.Context, profileID string) (*Status, error) {
	entry, err := u.queueRepo.GetActiveByProfile(ctx, profileID)
	if err != nil {
		return nil, err
	}

	elapsed := u.now().Sub(entry.CreatedAt)
	if !entry.Searching() {
		return &Status{
			Entry:   entry,
			Elapsed: elapsed / time.Second,
			Phase:   "matched",
			Message: "rival encontrado",
		}, nil
	}
	phase := u.schedule.PhaseAt(elapsed)

	return &Status{
		Entry:       entry,
		Elapsed:     elapsed / time.Second,
		Phase:       phase.String(),
		TargetTiers: phase.TargetTiers(entry.Tier),
		Message:     statusMessage(phase),
	}, nil
}

// Heartbeat refreshes the profile's presence while it waits in the queue.
func (u *Usecase) Heartbeat(ctx context.Context, profileID string) error {
	if _, err := u.queueRepo.GetActiveByProfile(ctx, profileID); err != nil {
		return err
	}
	return u.presence.Touch(ctx, profileID)
}

func (u *Usecase) notify(ctx context.Context) {
	if err := u.publisher.Publish(ctx, QueueChangedChannel, "changed"); err != nil {
		u.logger.Warn().Err(err).Msg("failed to publish queue change")
	}
}

func statusMessage(phase matchmaking.Phase) string {
	switch phase {
	case matchmaking.PhaseSameTier:
		return "buscando rival en tu tier"
	case matchmaking.PhaseAdjacent:
		return "ampliando busqueda a tiers vecinos"
	default:
		return "busqueda extendida en curso"
	}
}
