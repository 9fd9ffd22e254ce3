package session

import (
	"net"
	"testing"
	"time"

	"github.com/wfunc/crossroads/network"
)

// MockConnection is a test double for the network.Connection interface.
type MockConnection struct {
	sent []uint16
}

func (m *MockConnection) Send(msgID uint16, data []byte) error {
	m.sent = append(m.sent, msgID)
	return nil
}

func (m *MockConnection) Close() error                         { return nil }
func (m *MockConnection) RemoteAddr() net.Addr                 { return &net.TCPAddr{} }
func (m *MockConnection) SetHeartbeat(interval time.Duration)  {}
func (m *MockConnection) ReadPacket() (*network.Packet, error) { return nil, nil }


func TestNewManager(t *testing.T) {
	manager := NewManager()
	if manager == nil {
		t.Fatal("NewManager should not return nil")
	}
	if manager.sessions == nil {
		t.Fatal("NewManager should initialize the sessions map")
	}
}

func TestManager_Add_Get_Remove(t *testing.T) {
	manager := NewManager()
	sessionID := "test_session_1"
	sess := NewSession(sessionID, &MockConnection{})

	manager.Add(sess)
	if manager.Count() != 1 {
		t.Fatalf("Expected session count to be 1, got %d", manager.Count())
	}

	retrievedSess, exists := manager.Get(sessionID)
	if !exists {
		t.Fatal("Get should find the added session")
	}
	if retrievedSess != sess {
		t.Fatal("Get should return the same session instance")
	}

	manager.Remove(sessionID)
	if manager.Count() != 0 {
		t.Fatalf("Expected session count to be 0 after removal, got %d", manager.Count())
	}

	_, exists = manager.Get(sessionID)
	if exists {
		t.Fatal("Get should not find the removed session")
	}
}

func TestManager_GetByGameID(t *testing.T) {
	manager := NewManager()

	sess1 := NewSession("session1", &MockConnection{})
	sess1.Bind("game-a", "player-1", "alice")

	sess2 := NewSession("session2", &MockConnection{})
	sess2.Bind("game-b", "player-2", "bob")

	sess3 := NewSession("session3", &MockConnection{})
	sess3.Bind("game-a", "player-3", "carol")

	manager.Add(sess1)
	manager.Add(sess2)
	manager.Add(sess3)

	gameA := manager.GetByGameID("game-a")
	if len(gameA) != 2 {
		t.Errorf("Expected 2 sessions in game-a, got %d", len(gameA))
	}

	gameB := manager.GetByGameID("game-b")
	if len(gameB) != 1 {
		t.Errorf("Expected 1 session in game-b, got %d", len(gameB))
	}

	gameC := manager.GetByGameID("game-c")
	if len(gameC) != 0 {
		t.Errorf("Expected 0 sessions in game-c, got %d", len(gameC))
	}
}

func TestManager_GetByPlayerID(t *testing.T) {
	manager := NewManager()

	sess := NewSession("session1", &MockConnection{})
	sess.Bind("game-a", "player-1", "alice")
	manager.Add(sess)

	unbound := NewSession("session2", &MockConnection{})
	manager.Add(unbound)

	found, exists := manager.GetByPlayerID("player-1")
	if !exists || found != sess {
		t.Fatal("GetByPlayerID should find the bound session")
	}

	if _, exists := manager.GetByPlayerID(""); exists {
		t.Fatal("an empty player id must never match an unbound session")
	}
}

func TestSession_Bind_Seat(t *testing.T) {
	sess := NewSession("test_session", &MockConnection{})

	gameID, playerID := sess.Seat()
	if gameID != "" || playerID != "" {
		t.Fatal("a fresh session must be unseated")
	}

	sess.Bind("game-a", "player-1", "alice")
	gameID, playerID = sess.Seat()
	if gameID != "game-a" || playerID != "player-1" {
		t.Errorf("Seat() = (%q, %q), want (game-a, player-1)", gameID, playerID)
	}
}

func TestSession_SendTouchesActivity(t *testing.T) {
	conn := &MockConnection{}
	sess := NewSession("test_session", conn)
	before := sess.LastActive

	time.Sleep(time.Millisecond)
	if err := sess.Send(network.MsgTypeGameEvent, []byte("{}")); err != nil {
		t.Fatalf("Send: %v", err)
	}

	if !sess.LastActive.After(before) {
		t.Error("Send should refresh LastActive")
	}
	if len(conn.sent) != 1 || conn.sent[0] != network.MsgTypeGameEvent {
		t.Errorf("unexpected sent messages: %v", conn.sent)
	}
}
