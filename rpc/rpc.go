// rpc/rpc.go
package rpc

import (
	"net"
	"net/rpc"

	"github.com/wfunc/crossroads/logger"
	"github.com/wfunc/crossroads/models"
	"github.com/wfunc/crossroads/services"
)

// Server manages the RPC listener.
type Server struct {
	listener net.Listener
	address  string
}

func NewServer(addr string) (*Server, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &Server{
		listener: listener,
		address:  addr,
	}, nil
}

// Start begins serving RPC requests. Services are registered by the caller
// before Start.
func (s *Server) Start() {
	logger.Log.Infof("RPC server listening on %s", s.address)
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if _, ok := err.(*net.OpError); ok {
				logger.Log.Info("RPC server listener closed.")
				return
			}
			logger.Log.Errorf("RPC server accept error: %v", err)
			continue
		}
		go rpc.ServeConn(conn)
	}
}

func (s *Server) Stop() {
	if s.listener != nil {
		logger.Log.Info("Stopping RPC server.")
		s.listener.Close()
	}
}

// StandingsService exposes match history over net/rpc for companion tools.
// Methods follow the net/rpc signature: exported method, exported argument
// types, pointer reply, error return.
type StandingsService struct {
	matches *services.MatchService
}

func NewStandingsService(ms *services.MatchService) *StandingsService {
	return &StandingsService{matches: ms}
}

type StandingArgs struct {
	PlayerName string
}

type StandingReply struct {
	Standing *models.PlayerStanding
}

func (ss *StandingsService) GetStanding(args *StandingArgs, reply *StandingReply) error {
	standing, err := ss.matches.Standing(args.PlayerName)
	if err != nil {
		return err
	}
	reply.Standing = standing
	return nil
}

type RecentMatchesArgs struct {
	Limit int
}

type RecentMatchesReply struct {
	Matches []models.GormMatchRecord
}

func (ss *StandingsService) GetRecentMatches(args *RecentMatchesArgs, reply *RecentMatchesReply) error {
	matches, err := ss.matches.RecentMatches(args.Limit)
	if err != nil {
		return err
	}
	reply.Matches = matches
	return nil
}
