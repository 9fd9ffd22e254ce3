// server/server.go
package server

import (
	"encoding/json"
	"net/http"
	"net/rpc"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/wfunc/crossroads/broadcast"
	"github.com/wfunc/crossroads/config"
	"github.com/wfunc/crossroads/game"
	"github.com/wfunc/crossroads/logger"
	"github.com/wfunc/crossroads/models"
	"github.com/wfunc/crossroads/monitor"
	"github.com/wfunc/crossroads/network"
	"github.com/wfunc/crossroads/persistence"
	crossroads_rpc "github.com/wfunc/crossroads/rpc"
	"github.com/wfunc/crossroads/services"
	"github.com/wfunc/crossroads/session"
	"github.com/wfunc/crossroads/timer"
)

// GameServer is the WebSocket gateway: it owns client sessions, the game
// lobby and the presentation fan-out. Game rules live entirely in the game
// package; the gateway only routes.
type GameServer struct {
	addr           string
	upgrader       websocket.Upgrader
	sessionManager *session.Manager
	broadcaster    broadcast.Broadcaster
	matchService   *services.MatchService
	rpcServer      *crossroads_rpc.Server
	monitor        *monitor.Monitor
	timers         *timer.Manager
	gameCfg        config.GameConfig

	games      map[string]*game.Session
	lastAction map[string]time.Time
	mutex      sync.Mutex

	shutdownChan chan struct{}
}

func NewGameServer(cfg *config.Config, db persistence.Database, mon *monitor.Monitor) *GameServer {
	s := &GameServer{
		addr:           cfg.Server.HTTPAddress,
		sessionManager: session.NewManager(),
		matchService:   services.NewMatchService(db),
		monitor:        mon,
		timers:         timer.NewManager(),
		gameCfg:        cfg.Game,
		games:          make(map[string]*game.Session),
		lastAction:     make(map[string]time.Time),
		shutdownChan:   make(chan struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}

	s.broadcaster = broadcast.NewSessionBroadcaster(s.sessionManager)

	rpcServer, err := crossroads_rpc.NewServer(cfg.Server.RPCAddress)
	if err != nil {
		logger.Log.Fatalf("Failed to create RPC server: %v", err)
	}
	s.rpcServer = rpcServer

	standingsService := crossroads_rpc.NewStandingsService(s.matchService)
	rpc.Register(standingsService)

	return s
}

func (s *GameServer) Start() error {
	go s.rpcServer.Start()

	http.HandleFunc("/ws", s.handleWebSocket)
	logger.Log.Infof("Game server listening on %s", s.addr)
	return http.ListenAndServe(s.addr, nil)
}

func (s *GameServer) Shutdown() {
	close(s.shutdownChan)
	s.rpcServer.Stop()
	s.timers.Stop()
}

func (s *GameServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Infof("Failed to upgrade connection: %v", err)
		return
	}
	s.handleConnection(conn)
}

func (s *GameServer) handleConnection(conn *websocket.Conn) {
	wsConn := network.NewWSConnection(conn)
	sess := session.NewSession(uuid.New().String(), wsConn)
	s.sessionManager.Add(sess)
	if s.monitor != nil {
		s.monitor.IncConnectedPlayers()
	}

	logger.Log.Infof("New connection from %s, session ID: %s", wsConn.RemoteAddr(), sess.GetID())

	defer func() {
		logger.Log.Infof("Connection closed from %s, session ID: %s", wsConn.RemoteAddr(), sess.GetID())
		s.sessionManager.Remove(sess.GetID())
		if s.monitor != nil {
			s.monitor.DecConnectedPlayers()
		}
		wsConn.Close()
	}()

	for {
		select {
		case <-s.shutdownChan:
			return
		default:
			packet, err := wsConn.ReadPacket()
			if err != nil {
				return
			}
			s.handlePacket(sess, packet)
		}
	}
}

func (s *GameServer) handlePacket(sess *session.Session, packet *network.Packet) {
	start := time.Now()

	switch packet.MsgID {
	case network.MsgTypeHeartbeat:
		sess.LastActive = time.Now()
	case network.MsgTypeCreateGame:
		s.handleCreateGame(sess, packet)
	case network.MsgTypeJoinGame:
		s.handleJoinGame(sess, packet)
	case network.MsgTypeStartGame:
		s.handleStartGame(sess)
	case network.MsgTypeLeaveGame:
		s.handleLeaveGame(sess)
	case network.MsgTypePlayerAction:
		s.handleGameAction(sess, packet)
	default:
		logger.Log.Infof("Unknown message type: %d", packet.MsgID)
	}

	if s.monitor != nil {
		s.monitor.ObserveActionLatency(time.Since(start))
	}
}

type createGameReq struct {
	Name string        `json:"name"`
	Role models.Role   `json:"role"`
	Bots []models.Role `json:"bots"`
	Seed int64         `json:"seed"`
}

type seatResp struct {
	GameID   string `json:"game_id"`
	PlayerID string `json:"player_id"`
}

func (s *GameServer) handleCreateGame(sess *session.Session, packet *network.Packet) {
	var req createGameReq
	if err := json.Unmarshal(packet.Data, &req); err != nil {
		s.sendError(sess, "malformed create_game payload")
		return
	}

	seed := req.Seed
	if seed == 0 {
		seed = s.gameCfg.Seed
	}

	pres := &wsPresenter{broadcaster: s.broadcaster}
	g := game.NewSession(game.Options{
		Seed:       seed,
		MaxPlayers: s.gameCfg.MaxPlayers,
		Presenter:  pres,
		Timers:     s.timers,
		BotDelay:   s.gameCfg.BotDelay,
		OnFinished: s.onGameFinished,
	})
	pres.gameID = g.ID

	player, err := g.AddPlayer(req.Name, true, req.Role)
	if err != nil {
		s.sendError(sess, err.Error())
		return
	}
	for _, role := range req.Bots {
		if _, err := g.AddPlayer("cpu-"+string(role), false, role); err != nil {
			s.sendError(sess, err.Error())
			return
		}
	}

	s.mutex.Lock()
	s.games[g.ID] = g
	active := len(s.games)
	s.mutex.Unlock()
	if s.monitor != nil {
		s.monitor.SetActiveGames(active)
	}

	sess.Bind(g.ID, player.ID, player.Name)
	logger.Log.Infof("Session %s created game %s as %s", sess.GetID(), g.ID, req.Role)

	data, _ := json.Marshal(seatResp{GameID: g.ID, PlayerID: player.ID})
	sess.Send(network.MsgTypeCreateGame, data)
}

type joinGameReq struct {
	GameID string      `json:"game_id"`
	Name   string      `json:"name"`
	Role   models.Role `json:"role"`
}

func (s *GameServer) handleJoinGame(sess *session.Session, packet *network.Packet) {
	var req joinGameReq
	if err := json.Unmarshal(packet.Data, &req); err != nil {
		s.sendError(sess, "malformed join_game payload")
		return
	}

	g, exists := s.getGame(req.GameID)
	if !exists {
		s.sendError(sess, "game not found")
		return
	}

	player, err := g.AddPlayer(req.Name, true, req.Role)
	if err != nil {
		s.sendError(sess, err.Error())
		return
	}

	sess.Bind(g.ID, player.ID, player.Name)
	logger.Log.Infof("Session %s joined game %s as %s", sess.GetID(), g.ID, req.Role)

	data, _ := json.Marshal(seatResp{GameID: g.ID, PlayerID: player.ID})
	sess.Send(network.MsgTypeJoinGame, data)
}

func (s *GameServer) handleStartGame(sess *session.Session) {
	gameID, _ := sess.Seat()
	g, exists := s.getGame(gameID)
	if !exists {
		s.sendError(sess, "not seated in a game")
		return
	}

	if err := g.Start(); err != nil {
		s.sendError(sess, err.Error())
		return
	}
	s.touchGame(gameID)
	s.watchTurnTimeout(g)
}

func (s *GameServer) handleLeaveGame(sess *session.Session) {
	gameID, _ := sess.Seat()
	if gameID == "" {
		return
	}
	// The seat stays in the game; an empty chair just times out its turns.
	sess.Bind("", "", "")
	logger.Log.Infof("Session %s left game %s", sess.GetID(), gameID)
}

func (s *GameServer) handleGameAction(sess *session.Session, packet *network.Packet) {
	gameID, playerID := sess.Seat()
	if gameID == "" {
		s.sendError(sess, "not seated in a game")
		return
	}

	g, exists := s.getGame(gameID)
	if !exists {
		s.sendError(sess, "game not found")
		return
	}

	if err := g.HandleAction(playerID, packet.Data); err != nil {
		logger.Log.Infof("Action rejected for %s in game %s: %v", playerID, gameID, err)
		s.sendError(sess, err.Error())
		return
	}

	s.touchGame(gameID)
	s.observeAction(packet.Data)
}

// observeAction feeds the domain counters from the raw accepted payload.
func (s *GameServer) observeAction(data []byte) {
	if s.monitor == nil {
		return
	}
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return
	}
	switch probe.Type {
	case game.ActionRoll:
		s.monitor.IncDiceRolls()
	case game.ActionDrawPathCard, game.ActionDrawEndCard:
		s.monitor.IncCardsDrawn()
	case game.ActionTradeResponse, game.ActionProposeTrade:
		s.monitor.IncTradesExecuted()
	}
}

func (s *GameServer) getGame(gameID string) (*game.Session, bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	g, exists := s.games[gameID]
	return g, exists
}

func (s *GameServer) touchGame(gameID string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.lastAction[gameID] = time.Now()
}

// watchTurnTimeout forfeits a human player's turn when no action arrives
// for the configured window. Automated players run on their own timers.
func (s *GameServer) watchTurnTimeout(g *game.Session) {
	timeout := s.gameCfg.TurnTimeout
	if timeout <= 0 {
		return
	}

	var taskID int64
	taskID = s.timers.Schedule(timeout, timeout, func() {
		if g.Phase() != game.PhasePlaying {
			s.timers.Cancel(taskID)
			return
		}

		current, ok := g.CurrentPlayer()
		if !ok || !current.IsHuman {
			return
		}

		s.mutex.Lock()
		last := s.lastAction[g.ID]
		s.mutex.Unlock()
		if time.Since(last) < timeout {
			return
		}

		if err := g.ForceEndTurn(current.ID); err == nil {
			s.touchGame(g.ID)
		}
	})
}

func (s *GameServer) onGameFinished(summary game.Summary) {
	if err := s.matchService.RecordMatch(summary); err != nil {
		logger.Log.Errorf("Failed to record match %s: %v", summary.SessionID, err)
	}

	data, _ := json.Marshal(summary)
	s.broadcaster.BroadcastToGame(summary.SessionID, network.MsgTypeGameEnd, data)

	s.mutex.Lock()
	delete(s.games, summary.SessionID)
	delete(s.lastAction, summary.SessionID)
	active := len(s.games)
	s.mutex.Unlock()

	if s.monitor != nil {
		s.monitor.IncGamesFinished()
		s.monitor.SetActiveGames(active)
	}
	logger.Log.Infof("Game %s finished after %d rounds", summary.SessionID, summary.Rounds)
}

func (s *GameServer) sendError(sess *session.Session, message string) {
	data, _ := json.Marshal(map[string]string{"error": message})
	sess.Send(network.MsgTypeError, data)
}
