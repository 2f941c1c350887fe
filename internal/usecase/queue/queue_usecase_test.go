package queue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inazuma-gg/ladder-backend/internal/domain"
	"github.com/inazuma-gg/ladder-backend/internal/usecase/matchmaking"
)

type fakeQueueRepo struct {
	mu      sync.Mutex
	entries map[string]*domain.QueueEntry
}

func newFakeQueueRepo() *fakeQueueRepo {
	return &fakeQueueRepo{entries: make(map[string]*domain.QueueEntry)}
}

func (r *fakeQueueRepo) Create(ctx context.Context, entry *domain.QueueEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	// Mirrors the partial unique index: one live search per player.
	for _, e := range r.entries {
		if e.ProfileID == entry.ProfileID && e.Searching() {
			return domain.ErrAlreadyQueued
		}
	}
	cp := *entry
	r.entries[entry.ID] = &cp
	return nil
}

func (r *fakeQueueRepo) GetByID(ctx context.Context, id string) (*domain.QueueEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	if !ok {
		return nil, domain.ErrQueueEntryNotFound
	}
	cp := *e
	return &cp, nil
}

func (r *fakeQueueRepo) GetActiveByProfile(ctx context.Context, profileID string) (*domain.QueueEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var latest *domain.QueueEntry
	for _, e := range r.entries {
		if e.ProfileID != profileID {
			continue
		}
		if latest == nil || e.CreatedAt.After(latest.CreatedAt) {
			latest = e
		}
	}
	if latest == nil {
		return nil, domain.ErrQueueEntryNotFound
	}
	cp := *latest
	return &cp, nil
}

func (r *fakeQueueRepo) ListSearching(ctx context.Context, excludeEntryID, excludeProfileID string, tiers []string) ([]*domain.QueueEntry, error) {
	return nil, nil
}

func (r *fakeQueueRepo) ListAllSearching(ctx context.Context) ([]*domain.QueueEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.QueueEntry
	for _, e := range r.entries {
		if e.Status == domain.QueueStatusSearching {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeQueueRepo) DeleteSearching(ctx context.Context, entryID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[entryID]
	if !ok || e.Status != domain.QueueStatusSearching {
		return false, nil
	}
	delete(r.entries, entryID)
	return true, nil
}

func (r *fakeQueueRepo) markMatched(entryID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.entries[entryID]; ok {
		e.Status = domain.QueueStatusMatched
	}
}

type fakeProfileRepo struct {
	profiles map[string]*domain.Profile
}

func (r *fakeProfileRepo) GetByID(ctx context.Context, id string) (*domain.Profile, error) {
	p, ok := r.profiles[id]
	if !ok {
		return nil, domain.ErrProfileNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakeProfileRepo) Update(ctx context.Context, id string, patch *domain.ProfilePatch) error {
	return nil
}

func (r *fakeProfileRepo) ListByRating(ctx context.Context, limit, offset int) ([]*domain.Profile, error) {
	return nil, nil
}

func (r *fakeProfileRepo) CountHigherRated(ctx context.Context, ratingVal int) (int, error) {
	return 0, nil
}

type fakeManager struct {
	mu      sync.Mutex
	started []string
	stopped []string
}

func (m *fakeManager) Start(ctx context.Context, profileID, entryID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.started = append(m.started, profileID)
}

func (m *fakeManager) Stop(profileID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopped = append(m.stopped, profileID)
}

type fakePublisher struct {
	mu    sync.Mutex
	count int
}

func (p *fakePublisher) Publish(ctx context.Context, channel, payload string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.count++
	return nil
}

type fakePresence struct {
	mu    sync.Mutex
	alive map[string]bool
}

func newFakePresence() *fakePresence {
	return &fakePresence{alive: make(map[string]bool)}
}

func (p *fakePresence) Touch(ctx context.Context, profileID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.alive[profileID] = true
	return nil
}

func (p *fakePresence) Alive(ctx context.Context, profileID string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.alive[profileID], nil
}

func (p *fakePresence) Forget(ctx context.Context, profileID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.alive, profileID)
	return nil
}

func newTestUsecase(t *testing.T) (*Usecase, *fakeQueueRepo, *fakeProfileRepo, *fakeManager, *fakePublisher, *fakePresence) {
	t.Helper()
	queueRepo := newFakeQueueRepo()
	profileRepo := &fakeProfileRepo{profiles: map[string]*domain.Profile{
		"p1": {ID: "p1", Nickname: "raimon", Rating: 650, Tier: "aspirante"},
		"p2": {ID: "p2", Nickname: "zeus", Rating: 1450, Tier: "tormenta"},
	}}
	manager := &fakeManager{}
	publisher := &fakePublisher{}
	presence := newFakePresence()
	uc := NewUsecase(queueRepo, profileRepo, manager, publisher, presence, matchmaking.DefaultSchedule, zerolog.Nop())
	return uc, queueRepo, profileRepo, manager, publisher, presence
}

func TestStartSearch(t *testing.T) {
	uc, _, _, manager, publisher, presence := newTestUsecase(t)

	entry, err := uc.StartSearch(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, "p1", entry.ProfileID)
	assert.Equal(t, 650, entry.Rating)
	assert.Equal(t, "aspirante", entry.Tier)
	assert.Equal(t, domain.QueueStatusSearching, entry.Status)

	assert.Equal(t, []string{"p1"}, manager.started)
	assert.Equal(t, 1, publisher.count)
	alive, _ := presence.Alive(context.Background(), "p1")
	assert.True(t, alive)
}

func TestStartSearchAlreadyQueued(t *testing.T) {
	uc, _, _, _, _, _ := newTestUsecase(t)

	_, err := uc.StartSearch(context.Background(), "p1")
	require.NoError(t, err)

	_, err = uc.StartSearch(context.Background(), "p1")
	assert.ErrorIs(t, err, domain.ErrAlreadyQueued)
}

func TestStartSearchConcurrentDuplicateEnqueue(t *testing.T) {
	uc, _, _, _, _, _ := newTestUsecase(t)

	// Two racing enqueues: whichever slips past the active-entry check
	// still loses on the store's unique constraint.
	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = uc.StartSearch(context.Background(), "p1")
		}(i)
	}
	wg.Wait()

	var succeeded, rejected int
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, domain.ErrAlreadyQueued):
			rejected++
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, rejected)
}

func TestStartSearchUnknownProfile(t *testing.T) {
	uc, _, _, _, _, _ := newTestUsecase(t)

	_, err := uc.StartSearch(context.Background(), "ghost")
	assert.ErrorIs(t, err, domain.ErrProfileNotFound)
}

func TestCancelSearch(t *testing.T) {
	uc, queueRepo, _, manager, _, presence := newTestUsecase(t)

	entry, err := uc.StartSearch(context.Background(), "p1")
	require.NoError(t, err)

	require.NoError(t, uc.CancelSearch(context.Background(), "p1"))

	_, err = queueRepo.GetByID(context.Background(), entry.ID)
	assert.ErrorIs(t, err, domain.ErrQueueEntryNotFound)
	assert.Equal(t, []string{"p1"}, manager.stopped)
	alive, _ := presence.Alive(context.Background(), "p1")
	assert.False(t, alive)
}

func TestCancelSearchNotQueued(t *testing.T) {
	uc, _, _, _, _, _ := newTestUsecase(t)

	err := uc.CancelSearch(context.Background(), "p1")
	assert.ErrorIs(t, err, domain.ErrQueueEntryNotFound)
}

func TestCancelSearchRacesWithPairing(t *testing.T) {
	uc, queueRepo, _, _, _, _ := newTestUsecase(t)

	entry, err := uc.StartSearch(context.Background(), "p1")
	require.NoError(t, err)

	// A pairing claims the entry between the read and the delete.
	queueRepo.markMatched(entry.ID)

	err = uc.CancelSearch(context.Background(), "p1")
	assert.ErrorIs(t, err, domain.ErrEntryAlreadyMatched)
}

func TestGetStatusPhases(t *testing.T) {
	uc, queueRepo, _, _, _, _ := newTestUsecase(t)

	entry, err := uc.StartSearch(context.Background(), "p1")
	require.NoError(t, err)

	status, err := uc.GetStatus(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, "same_tier", status.Phase)
	assert.Equal(t, []string{"aspirante"}, status.TargetTiers)

	// Backdate the entry past the first boundary.
	queueRepo.mu.Lock()
	queueRepo.entries[entry.ID].CreatedAt = time.Now().Add(-130 * time.Second)
	queueRepo.mu.Unlock()

	status, err = uc.GetStatus(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, "adjacent", status.Phase)
	assert.Equal(t, []string{"novato", "aspirante", "promesa"}, status.TargetTiers)

	queueRepo.mu.Lock()
	queueRepo.entries[entry.ID].CreatedAt = time.Now().Add(-5 * time.Minute)
	queueRepo.mu.Unlock()

	status, err = uc.GetStatus(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, "extended", status.Phase)
	assert.Equal(t, []string{"novato", "aspirante", "promesa", "relampago"}, status.TargetTiers)
}

func TestGetStatusAfterMatch(t *testing.T) {
	uc, queueRepo, _, _, _, _ := newTestUsecase(t)

	entry, err := uc.StartSearch(context.Background(), "p1")
	require.NoError(t, err)
	queueRepo.markMatched(entry.ID)

	status, err := uc.GetStatus(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, "matched", status.Phase)
	assert.Empty(t, status.TargetTiers)
}

func TestRequeueAfterMatch(t *testing.T) {
	uc, queueRepo, _, _, _, _ := newTestUsecase(t)

	entry, err := uc.StartSearch(context.Background(), "p1")
	require.NoError(t, err)
	queueRepo.markMatched(entry.ID)

	// A finished entry must not block a new search.
	next, err := uc.StartSearch(context.Background(), "p1")
	require.NoError(t, err)
	assert.NotEqual(t, entry.ID, next.ID)
}

func TestHeartbeat(t *testing.T) {
	uc, _, _, _, _, presence := newTestUsecase(t)

	_, err := uc.StartSearch(context.Background(), "p1")
	require.NoError(t, err)
	require.NoError(t, presence.Forget(context.Background(), "p1"))

	require.NoError(t, uc.Heartbeat(context.Background(), "p1"))
	alive, _ := presence.Alive(context.Background(), "p1")
	assert.True(t, alive)

	err = uc.Heartbeat(context.Background(), "p2")
	assert.ErrorIs(t, err, domain.ErrQueueEntryNotFound)
}

func TestJanitorReapsStaleEntries(t *testing.T) {
	uc, queueRepo, _, manager, _, presence := newTestUsecase(t)

	_, err := uc.StartSearch(context.Background(), "p1")
	require.NoError(t, err)
	_, err = uc.StartSearch(context.Background(), "p2")
	require.NoError(t, err)

	// p2's heartbeat lapses.
	require.NoError(t, presence.Forget(context.Background(), "p2"))

	janitor := NewJanitor(queueRepo, presence, manager, time.Minute, zerolog.Nop())
	janitor.Sweep(context.Background())

	_, err = queueRepo.GetActiveByProfile(context.Background(), "p1")
	assert.NoError(t, err)
	_, err = queueRepo.GetActiveByProfile(context.Background(), "p2")
	assert.ErrorIs(t, err, domain.ErrQueueEntryNotFound)
	assert.Contains(t, manager.stopped, "p2")
}
