package matchmaking

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/inazuma-gg/ladder-backend/internal/domain"
)

type session struct {
	entryID string
	cancel  context.CancelFunc
}

// Manager owns one search goroutine per active queue entry. Sessions are
// keyed by profile so a player never has two concurrent searches.
type Manager struct {
	finder *Finder
	logger zerolog.Logger

	mu       sync.Mutex
	sessions map[string]*session
}

func NewManager(finder *Finder, logger zerolog.Logger) *Manager {
	return &Manager{
		finder:   finder,
		logger:   logger.With().Str("component", "matchmaking_manager").Logger(),
		sessions: make(map[string]*session),
	}
}

// Start launches a search session for the profile's entry. An existing
// session for the same profile is cancelled first.
func (m *Manager) Start(ctx context.Context, profileID, entryID string) {
	sessCtx, cancel := context.WithCancel(ctx)
	sess := &session{entryID: entryID, cancel: cancel}

	m.mu.Lock()
	if prev, ok := m.sessions[profileID]; ok {
		prev.cancel()
	}
	m.sessions[profileID] = sess
	m.mu.Unlock()

	go func() {
		defer m.remove(profileID, sess)

		match, err := m.finder.Run(sessCtx, entryID)
		switch {
		case sessCtx.Err() != nil:
			return
		case err == domain.ErrQueueEntryNotFound:
			// Entry cancelled or reaped mid-search.
			return
		case err != nil:
			m.logger.Error().Err(err).Str("profile_id", profileID).Msg("search session ended with error")
			return
		}
		m.logger.Info().
			Str("profile_id", profileID).
			Str("match_id", match.ID).
			Msg("search session matched")
	}()
}

// Stop cancels the profile's search session, if any.
func (m *Manager) Stop(profileID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if sess, ok := m.sessions[profileID]; ok {
		sess.cancel()
		delete(m.sessions, profileID)
	}
}

// StopAll cancels every running session. Used on shutdown.
func (m *Manager) StopAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, sess := range m.sessions {
		sess.cancel()
		delete(m.sessions, id)
	}
}

func (m *Manager) remove(profileID string, sess *session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	// Start may have already replaced this session; only drop our own.
	if cur, ok := m.sessions[profileID]; ok && cur == sess {
		delete(m.sessions, profileID)
	}
}
