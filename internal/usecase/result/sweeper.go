package result

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/inazuma-gg/ladder-backend/internal/repository"
)

// Sweeper watches pending matches whose confirmation window has lapsed
// with only one report in. Expired matches are not auto-resolved; they
// stay pending for moderator attention and the sweeper surfaces them.
type Sweeper struct {
	matchRepo repository.MatchRepository
	publisher interface {
		Publish(ctx context.Context, channel, payload string) error
	}
	window   time.Duration
	interval time.Duration
	logger   zerolog.Logger
	now      func() time.Time

	// announced holds match ids already published, so subscribers hear
	// about each expiry once instead of every sweep. Only touched from
	// the sweep loop.
	announced map[string]struct{}
}

// ExpiredChannel carries notifications about matches whose confirmation
// window lapsed.
const ExpiredChannel = "ladder:results:expired"

func NewSweeper(
	matchRepo repository.MatchRepository,
	publisher interface {
		Publish(ctx context.Context, channel, payload string) error
	},
	window, interval time.Duration,
	logger zerolog.Logger,
) *Sweeper {
	return &Sweeper{
		matchRepo: matchRepo,
		publisher: publisher,
		window:    window,
		interval:  interval,
		logger:    logger.With().Str("component", "result_sweeper").Logger(),
		now:       time.Now,
		announced: make(map[string]struct{}),
	}
}

// Run sweeps on the configured interval until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep logs and announces each newly expired pending match once.
func (s *Sweeper) Sweep(ctx context.Context) {
	cutoff := s.now().Add(-s.window)
	matches, err := s.matchRepo.ListResultExpired(ctx, cutoff)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list expired matches")
		return
	}

	expired := make(map[string]struct{}, len(matches))
	for _, m := range matches {
		expired[m.ID] = struct{}{}
		if _, ok := s.announced[m.ID]; ok {
			continue
		}
		s.logger.Warn().
			Str("match_id", m.ID).
			Time("first_result_at", *m.FirstResultAt).
			Msg("confirmation window expired without second report")
		if s.publisher != nil {
			if err := s.publisher.Publish(ctx, ExpiredChannel, m.ID); err != nil {
				// Not marked announced, so the next sweep retries.
				s.logger.Warn().Err(err).Str("match_id", m.ID).Msg("failed to publish expiry")
				continue
			}
		}
		s.announced[m.ID] = struct{}{}
	}

	// Matches resolved by dispute leave the expired set; forget them so
	// the map does not grow with queue traffic.
	for id := range s.announced {
		if _, ok := expired[id]; !ok {
			delete(s.announced, id)
		}
	}
}
