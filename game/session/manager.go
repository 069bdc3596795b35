package session

import (
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/wricardo/scrabble-duel/game/engine"
)

var (
	ErrSessionNotFound      = errors.New("session not found")
	ErrSessionAlreadyExists = errors.New("session already exists")
	ErrInvalidSessionID     = errors.New("invalid session ID")
	ErrSessionClosed        = errors.New("session closed")
	ErrPlayerSeated         = errors.New("player already seated in another session")
)

// Session is one running game. All access to Game goes through Lock.
type Session struct {
	ID        string
	Game      *engine.Game
	CreatedAt time.Time

	mu     sync.Mutex
	closed atomic.Bool
}

// Lock takes the session for one operation. It fails once the session left
// the directory, so a late caller sees it as gone.
func (s *Session) Lock() error {
	s.mu.Lock()
	if s.closed.Load() {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	return nil
}

// Unlock releases the session
func (s *Session) Unlock() {
	s.mu.Unlock()
}

// Closed reports whether the session was removed
func (s *Session) Closed() bool {
	return s.closed.Load()
}

// Manager is the directory of running games. Games are keyed by id and
// indexed by the players seated in them.
type Manager struct {
	sessions map[string]*Session
	players  map[string]string // player id -> session id
	mu       sync.RWMutex
}

// NewManager creates an empty directory
func NewManager() *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		players:  make(map[string]string),
	}
}

// Insert registers game under its id and indexes its players. A player
// is seated in one session at a time.
func (m *Manager) Insert(game *engine.Game) (*Session, error) {
	if game == nil || game.ID == "" {
		return nil, ErrInvalidSessionID
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.sessions[game.ID]; exists {
		return nil, ErrSessionAlreadyExists
	}
	for _, p := range game.Players() {
		if id, seated := m.players[p.ID]; seated {
			if _, live := m.sessions[id]; live {
				return nil, ErrPlayerSeated
			}
		}
	}
	now := time.Now()
	s := &Session{ID: game.ID, Game: game, CreatedAt: now}
	m.sessions[game.ID] = s
	for _, p := range game.Players() {
		m.players[p.ID] = game.ID
	}
	return s, nil
}

// Get returns a session by id
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

// ForPlayer returns the session playerID is seated in
func (m *Manager) ForPlayer(playerID string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.players[playerID]
	if !ok {
		return nil, false
	}
	s, ok := m.sessions[id]
	return s, ok
}

// Reseat moves the player index from one player to another, after a seat
// changed hands
func (m *Manager) Reseat(sessionID, fromPlayerID, toPlayerID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.players[fromPlayerID] == sessionID {
		delete(m.players, fromPlayerID)
	}
	if _, ok := m.sessions[sessionID]; ok {
		m.players[toPlayerID] = sessionID
	}
}

// Remove takes a session out of the directory and closes it. It may be
// called while holding the session's lock.
func (m *Manager) Remove(id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	s.closed.Store(true)
	delete(m.sessions, id)
	for player, sid := range m.players {
		if sid == id {
			delete(m.players, player)
		}
	}
	return s, nil
}

// List returns the sessions ordered by creation
func (m *Manager) List() []*Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		result = append(result, s)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result
}

// Count returns the number of running games
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
