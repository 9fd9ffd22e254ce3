// broadcast/broadcast.go
package broadcast

import (
	"errors"

	"github.com/wfunc/crossroads/session"
)

var ErrNoRecipients = errors.New("broadcast: no connected recipients")

// Broadcaster fans server-pushed messages out to connected clients.
type Broadcaster interface {
	BroadcastToGame(gameID string, msgID uint16, data []byte) error
	SendToPlayer(playerID string, msgID uint16, data []byte) error
}

// SessionBroadcaster routes by the seat bindings kept in the session
// manager. Send failures on individual connections are skipped; the read
// loop notices the dead connection and cleans it up.
type SessionBroadcaster struct {
	sessionManager *session.Manager
}

func NewSessionBroadcaster(sessionManager *session.Manager) *SessionBroadcaster {
	return &SessionBroadcaster{sessionManager: sessionManager}
}

func (b *SessionBroadcaster) BroadcastToGame(gameID string, msgID uint16, data []byte) error {
	sessions := b.sessionManager.GetByGameID(gameID)
	if len(sessions) == 0 {
		return ErrNoRecipients
	}

	for _, s := range sessions {
		if err := s.Send(msgID, data); err != nil {
			continue
		}
	}
	return nil
}

func (b *SessionBroadcaster) SendToPlayer(playerID string, msgID uint16, data []byte) error {
	s, exists := b.sessionManager.GetByPlayerID(playerID)
	if !exists {
		return ErrNoRecipients
	}
	return s.Send(msgID, data)
}
