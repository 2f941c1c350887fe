package result

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/inazuma-gg/ladder-backend/internal/domain"
	"github.com/inazuma-gg/ladder-backend/internal/rating"
	"github.com/inazuma-gg/ladder-backend/internal/repository"
)

// LeaderboardCache mirrors completed-match rating changes into the cached
// ladder ordering. Cache writes are best effort; the database stays the
// source of truth.
type LeaderboardCache interface {
	SetRating(ctx context.Context, profileID string, ratingVal int) error
}

// Submission is the outcome of a single result report: the match as it
// stands afterwards, plus settlement details when the report completed it.
type Submission struct {
	Match      *domain.Match      `json:"match"`
	Settled    bool               `json:"settled"`
	Conflicted bool               `json:"conflicted"`
	Delta      *rating.Delta      `json:"delta,omitempty"`
	WinnerTier *rating.TierChange `json:"winner_tier,omitempty"`
	LoserTier  *rating.TierChange `json:"loser_tier,omitempty"`
}

// View is a match enriched with confirmation-window bookkeeping for read
// APIs: when the deadline passes with one report in, the silent player is
// shown as having forfeited the window, without the match state moving.
type View struct {
	Match          *domain.Match `json:"match"`
	ResultDeadline *time.Time    `json:"result_deadline,omitempty"`
	ForfeitedBy    *string       `json:"forfeited_by,omitempty"`
}

// Reconciler applies reported outcomes to matches: it records each
// player's report, detects agreement or conflict once both are in, and
// settles agreed matches exactly once.
type Reconciler struct {
	matchRepo   repository.MatchRepository
	profileRepo repository.ProfileRepository
	disputeRepo repository.DisputeRepository
	cache       LeaderboardCache
	window      time.Duration
	logger      zerolog.Logger
	now         func() time.Time
}

func NewReconciler(
	matchRepo repository.MatchRepository,
	profileRepo repository.ProfileRepository,
	disputeRepo repository.DisputeRepository,
	cache LeaderboardCache,
	window time.Duration,
	logger zerolog.Logger,
) *Reconciler {
	return &Reconciler{
		matchRepo:   matchRepo,
		profileRepo: profileRepo,
		disputeRepo: disputeRepo,
		cache:       cache,
		window:      window,
		logger:      logger.With().Str("component", "result_reconciler").Logger(),
		now:         time.Now,
	}
}

// SubmitResult records playerID's reported outcome for the match. The
// first report opens the confirmation window; the second either settles
// the match (complementary outcomes) or flags it (both claimed the same
// polarity). Duplicate reports from the same player are rejected.
func (r *Reconciler) SubmitResult(ctx context.Context, matchID, playerID string, outcome domain.Outcome) (*Submission, error) {
	if !outcome.Valid() {
		return nil, domain.ErrInvalidOutcome
	}

	match, err := r.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		return nil, err
	}
	slot := match.SlotOf(playerID)
	if slot == 0 {
		return nil, domain.ErrNotParticipant
	}
	if match.Terminal() {
		return nil, domain.ErrMatchClosed
	}
	if match.ResultOf(playerID) != nil {
		// Both reports in but the match still pending means a previous
		// settlement attempt failed before committing; retry it instead
		// of erroring.
		if match.Result1 != nil && match.Result2 != nil {
			return r.reconcile(ctx, match)
		}
		return nil, domain.ErrResultAlreadySubmitted
	}
	if match.FirstResultAt != nil && r.now().Sub(*match.FirstResultAt) > r.window {
		return nil, domain.ErrResultWindowExpired
	}

	ok, err := r.matchRepo.SetResult(ctx, matchID, slot, outcome, r.now())
	if err != nil {
		return nil, err
	}
	if !ok {
		// Lost a race: either our slot got written concurrently (the
		// handler was retried) or the match left pending. Re-read to
		// return the precise error.
		match, err = r.matchRepo.GetByID(ctx, matchID)
		if err != nil {
			return nil, err
		}
		if match.Terminal() {
			return nil, domain.ErrMatchClosed
		}
		return nil, domain.ErrResultAlreadySubmitted
	}

	match, err = r.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		return nil, err
	}

	r.logger.Info().
		Str("match_id", matchID).
		Str("player_id", playerID).
		Str("outcome", string(outcome)).
		Msg("result recorded")

	if match.Result1 == nil || match.Result2 == nil {
		return &Submission{Match: match}, nil
	}
	return r.reconcile(ctx, match)
}

// reconcile runs once both outcome slots are filled.
func (r *Reconciler) reconcile(ctx context.Context, match *domain.Match) (*Submission, error) {
	if *match.Result1 == *match.Result2 {
		return r.flagConflict(ctx, match)
	}

	winnerID := match.Player1ID
	if *match.Result2 == domain.OutcomeWin {
		winnerID = match.Player2ID
	}
	return r.settle(ctx, match, winnerID)
}

// flagConflict moves a match with two same-polarity reports to reported
// and opens an automatic dispute for moderator review.
func (r *Reconciler) flagConflict(ctx context.Context, match *domain.Match) (*Submission, error) {
	moved, err := r.matchRepo.UpdateStatus(ctx, match.ID, domain.MatchStatusPending, domain.MatchStatusReported)
	if err != nil {
		return nil, err
	}
	if moved {
		dispute := &domain.Dispute{
			ID:         uuid.NewString(),
			MatchID:    match.ID,
			ReporterID: match.Player1ID,
			Reason:     "conflicting result reports",
			CreatedAt:  r.now(),
		}
		if _, err := r.disputeRepo.CreateOnce(ctx, dispute); err != nil {
			r.logger.Error().Err(err).Str("match_id", match.ID).Msg("failed to open automatic dispute")
		}
		r.logger.Warn().
			Str("match_id", match.ID).
			Str("result", string(*match.Result1)).
			Msg("conflicting reports, match flagged")
	}

	match, err = r.matchRepo.GetByID(ctx, match.ID)
	if err != nil {
		return nil, err
	}
	return &Submission{Match: match, Conflicted: true}, nil
}

// settle applies rating changes for an agreed outcome exactly once. All
// of the settlement writes commit atomically through the store: either
// the winner claim, both profile updates and the status transition land
// together, or nothing does and the still-pending match is retried by
// the next report.
func (r *Reconciler) settle(ctx context.Context, match *domain.Match, winnerID string) (*Submission, error) {
	loserID, _ := match.OpponentOf(winnerID)
	winner, err := r.profileRepo.GetByID(ctx, winnerID)
	if err != nil {
		return nil, err
	}
	loser, err := r.profileRepo.GetByID(ctx, loserID)
	if err != nil {
		return nil, err
	}

	// Deltas use the live ratings and streaks, not the pairing-time
	// snapshots: another match settling in between already moved the
	// ladder, and this result builds on top of it.
	delta := rating.ComputeDelta(winner.Rating, loser.Rating, winner.CurrentStreak, loser.CurrentStreak)
	winnerTier := rating.CheckTierChange(winner.Rating, delta.NewWinnerRating)
	loserTier := rating.CheckTierChange(loser.Rating, delta.NewLoserRating)

	winnerStreak := 1
	if winner.CurrentStreak >= 0 {
		winnerStreak = winner.CurrentStreak + 1
	}
	loserStreak := -1
	if loser.CurrentStreak <= 0 {
		loserStreak = loser.CurrentStreak - 1
	}

	settled, err := r.matchRepo.Settle(ctx, match.ID, repository.Settlement{
		WinnerID:     winnerID,
		LoserID:      loserID,
		WinnerRating: delta.NewWinnerRating,
		LoserRating:  delta.NewLoserRating,
		WinnerTier:   winnerTier.NewTier,
		LoserTier:    loserTier.NewTier,
		WinnerStreak: winnerStreak,
		LoserStreak:  loserStreak,
	})
	if err != nil {
		return nil, err
	}
	if !settled {
		// Another caller carried the settlement; report the match as-is.
		match, err = r.matchRepo.GetByID(ctx, match.ID)
		if err != nil {
			return nil, err
		}
		return &Submission{Match: match, Settled: match.Status == domain.MatchStatusCompleted}, nil
	}

	if r.cache != nil {
		if err := r.cache.SetRating(ctx, winnerID, delta.NewWinnerRating); err != nil {
			r.logger.Warn().Err(err).Str("profile_id", winnerID).Msg("leaderboard cache update failed")
		}
		if err := r.cache.SetRating(ctx, loserID, delta.NewLoserRating); err != nil {
			r.logger.Warn().Err(err).Str("profile_id", loserID).Msg("leaderboard cache update failed")
		}
	}

	r.logger.Info().
		Str("match_id", match.ID).
		Str("winner_id", winnerID).
		Int("winner_gain", delta.WinnerGain).
		Int("loser_loss", delta.LoserLoss).
		Bool("upset", delta.IsUpset).
		Msg("match settled")

	match, err = r.matchRepo.GetByID(ctx, match.ID)
	if err != nil {
		return nil, err
	}
	return &Submission{
		Match:      match,
		Settled:    true,
		Delta:      &delta,
		WinnerTier: &winnerTier,
		LoserTier:  &loserTier,
	}, nil
}

// Describe returns the match with its window deadline and, past the
// deadline, which player never reported.
func (r *Reconciler) Describe(ctx context.Context, matchID string) (*View, error) {
	match, err := r.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		return nil, err
	}

	view := &View{Match: match}
	if match.Status == domain.MatchStatusPending && match.FirstResultAt != nil {
		deadline := match.FirstResultAt.Add(r.window)
		view.ResultDeadline = &deadline
		if r.now().After(deadline) {
			switch {
			case match.Result1 == nil:
				view.ForfeitedBy = &match.Player1ID
			case match.Result2 == nil:
				view.ForfeitedBy = &match.Player2ID
			}
		}
	}
	return view, nil
}

// FileDispute opens a manual dispute on a pending or reported match and
// moves pending matches to reported. Filing twice for the same match
// returns the existing dispute.
func (r *Reconciler) FileDispute(ctx context.Context, matchID, reporterID, reason string, evidenceURL *string) (*domain.Dispute, bool, error) {
	match, err := r.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		return nil, false, err
	}
	if !match.HasPlayer(reporterID) {
		return nil, false, domain.ErrNotParticipant
	}
	if match.Status == domain.MatchStatusCompleted {
		return nil, false, domain.ErrMatchClosed
	}

	if match.Status == domain.MatchStatusPending {
		moved, err := r.matchRepo.UpdateStatus(ctx, matchID, domain.MatchStatusPending, domain.MatchStatusReported)
		if err != nil {
			return nil, false, err
		}
		// The reporting transition still counts the game for both players.
		// Tied to winning the CAS so concurrent filings count it once.
		if moved {
			for _, pid := range []string{match.Player1ID, match.Player2ID} {
				p, err := r.profileRepo.GetByID(ctx, pid)
				if err != nil {
					r.logger.Error().Err(err).Str("profile_id", pid).Msg("failed to load profile for dispute bookkeeping")
					continue
				}
				games := p.GamesPlayed + 1
				if err := r.profileRepo.Update(ctx, pid, &domain.ProfilePatch{GamesPlayed: &games}); err != nil {
					r.logger.Error().Err(err).Str("profile_id", pid).Msg("failed to count disputed game")
				}
			}
		}
	}

	dispute := &domain.Dispute{
		ID:          uuid.NewString(),
		MatchID:     matchID,
		ReporterID:  reporterID,
		Reason:      reason,
		EvidenceURL: evidenceURL,
		CreatedAt:   r.now(),
	}
	created, err := r.disputeRepo.CreateOnce(ctx, dispute)
	if err != nil {
		return nil, false, err
	}
	if !created {
		existing, err := r.disputeRepo.GetByMatch(ctx, matchID)
		if err != nil {
			return nil, false, err
		}
		return existing, false, nil
	}

	r.logger.Info().
		Str("match_id", matchID).
		Str("reporter_id", reporterID).
		Msg("dispute filed")
	return dispute, true, nil
}

