// session/session.go
package session

import (
	"sync"
	"time"

	"github.com/wfunc/crossroads/network"
)

// Session is one connected client. Once the client has claimed a seat,
// PlayerID and GameID bind the connection to a player in a running game.
type Session struct {
	ID         string
	Conn       network.Connection
	PlayerID   string
	GameID     string
	Name       string
	CreatedAt  time.Time
	LastActive time.Time
	mutex      sync.RWMutex
}

func NewSession(id string, conn network.Connection) *Session {
	now := time.Now()
	return &Session{
		ID:         id,
		Conn:       conn,
		CreatedAt:  now,
		LastActive: now,
	}
}

func (s *Session) Send(msgID uint16, data []byte) error {
	s.mutex.Lock()
	s.LastActive = time.Now()
	s.mutex.Unlock()
	return s.Conn.Send(msgID, data)
}

func (s *Session) GetID() string {
	return s.ID
}

// Bind seats the connection at a player slot in a game.
func (s *Session) Bind(gameID, playerID, name string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.GameID = gameID
	s.PlayerID = playerID
	s.Name = name
}

// Seat returns the bound game and player ids.
func (s *Session) Seat() (gameID, playerID string) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.GameID, s.PlayerID
}

func (s *Session) Close() error {
	return s.Conn.Close()
}

// Manager tracks connected client sessions.
type Manager struct {
	sessions map[string]*Session
	mutex    sync.RWMutex
}

func NewManager() *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
	}
}

func (m *Manager) Add(session *Session) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.sessions[session.ID] = session
}

func (m *Manager) Remove(sessionID string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	delete(m.sessions, sessionID)
}

func (m *Manager) Get(sessionID string) (*Session, bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	session, exists := m.sessions[sessionID]
	return session, exists
}

// GetByGameID returns every session seated in the given game.
func (m *Manager) GetByGameID(gameID string) []*Session {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	var result []*Session
	for _, session := range m.sessions {
		if g, _ := session.Seat(); g == gameID {
			result = append(result, session)
		}
	}
	return result
}

// GetByPlayerID returns the session seated as the given player, if any.
func (m *Manager) GetByPlayerID(playerID string) (*Session, bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	for _, session := range m.sessions {
		if _, p := session.Seat(); p == playerID && p != "" {
			return session, true
		}
	}
	return nil, false
}

func (m *Manager) Count() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.sessions)
}
