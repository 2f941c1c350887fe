package ladder

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/inazuma-gg/ladder-backend/internal/domain"
	"github.com/inazuma-gg/ladder-backend/internal/rating"
	"github.com/inazuma-gg/ladder-backend/internal/repository"
)

// RankCache answers rank queries from the cached ladder ordering. A miss
// falls back to counting in the database.
type RankCache interface {
	Rank(ctx context.Context, profileID string) (int64, bool, error)
}

// Row is one ladder standing.
type Row struct {
	Position int             `json:"position"`
	Profile  *domain.Profile `json:"profile"`
}

// ProfileView is a profile with its ladder position and tier band.
type ProfileView struct {
	Profile  *domain.Profile `json:"profile"`
	Position int             `json:"position"`
	WinRate  float64         `json:"win_rate"`
	Tier     rating.Tier     `json:"tier_info"`
}

type Usecase struct {
	profileRepo repository.ProfileRepository
	matchRepo   repository.MatchRepository
	cache       RankCache
	logger      zerolog.Logger
}

func NewUsecase(
	profileRepo repository.ProfileRepository,
	matchRepo repository.MatchRepository,
	cache RankCache,
	logger zerolog.Logger,
) *Usecase {
	return &Usecase{
		profileRepo: profileRepo,
		matchRepo:   matchRepo,
		cache:       cache,
		logger:      logger.With().Str("component", "ladder_usecase").Logger(),
	}
}

// Top returns a page of the ladder ordered by rating, then wins, then
// account age. Positions are absolute, so page two starts at offset+1.
func (u *Usecase) Top(ctx context.Context, limit, offset int) ([]Row, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	profiles, err := u.profileRepo.ListByRating(ctx, limit, offset)
	if err != nil {
		return nil, err
	}

	rows := make([]Row, len(profiles))
	for i, p := range profiles {
		rows[i] = Row{Position: offset + i + 1, Profile: p}
	}
	return rows, nil
}

// GetProfile returns a profile with its ladder position.
func (u *Usecase) GetProfile(ctx context.Context, profileID string) (*ProfileView, error) {
	profile, err := u.profileRepo.GetByID(ctx, profileID)
	if err != nil {
		return nil, err
	}

	position, err := u.position(ctx, profile)
	if err != nil {
		return nil, err
	}

	return &ProfileView{
		Profile:  profile,
		Position: position,
		WinRate:  profile.WinRate(),
		Tier:     rating.TierOf(profile.Rating),
	}, nil
}

// History returns the profile's matches, newest first.
func (u *Usecase) History(ctx context.Context, profileID string, limit, offset int) ([]*domain.Match, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	if _, err := u.profileRepo.GetByID(ctx, profileID); err != nil {
		return nil, err
	}
	return u.matchRepo.ListByPlayer(ctx, profileID, limit, offset)
}

// PreviewMatch shows both players what each outcome of a pending match
// would do to their ratings, computed from the same live ratings and
// streaks settlement will use.
func (u *Usecase) PreviewMatch(ctx context.Context, matchID, viewerID string) (*rating.PreviewResult, error) {
	match, err := u.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if !match.HasPlayer(viewerID) {
		return nil, domain.ErrNotParticipant
	}
	if match.Terminal() {
		return nil, domain.ErrMatchClosed
	}

	p1, err := u.profileRepo.GetByID(ctx, match.Player1ID)
	if err != nil {
		return nil, err
	}
	p2, err := u.profileRepo.GetByID(ctx, match.Player2ID)
	if err != nil {
		return nil, err
	}

	preview := rating.Preview(p1.Rating, p2.Rating, p1.CurrentStreak, p2.CurrentStreak)
	return &preview, nil
}

// position resolves the 1-based ladder position, preferring the cache and
// falling back to a count query.
func (u *Usecase) position(ctx context.Context, profile *domain.Profile) (int, error) {
	if u.cache != nil {
		rank, ok, err := u.cache.Rank(ctx, profile.ID)
		if err != nil {
			u.logger.Warn().Err(err).Str("profile_id", profile.ID).Msg("rank cache lookup failed")
		} else if ok {
			return int(rank) + 1, nil
		}
	}

	higher, err := u.profileRepo.CountHigherRated(ctx, profile.Rating)
	if err != nil {
		return 0, err
	}
	return higher + 1, nil
}
