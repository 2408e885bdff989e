// rpc/rpc.go
package rpc

import (
	"net"
	"net/rpc"

	"github.com/wfunc/findthespy/logger"
	"github.com/wfunc/findthespy/models"
	"github.com/wfunc/findthespy/services"
)

// Server manages the RPC listener.
type Server struct {
	listener net.Listener
	address  string
}

// NewServer creates a new RPC server.
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

// Start begins listening for RPC requests.
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

// Stop closes the RPC listener.
func (s *Server) Stop() {
	if s.listener != nil {
		logger.Log.Info("Stopping RPC server.")
		s.listener.Close()
	}
}

// AdminService 运维查询入口：房间状态与计分板。
// 方法遵循 net/rpc 签名约定。
type AdminService struct {
	queries *services.QueryService
}

func NewAdminService(queries *services.QueryService) *AdminService {
	return &AdminService{queries: queries}
}

type RoomStatusArgs struct {
	RoomCode string
}

type RoomStatusReply struct {
	Status string
	Phase  string
}

func (s *AdminService) RoomStatus(args *RoomStatusArgs, reply *RoomStatusReply) error {
	room, err := s.queries.RoomStatus(args.RoomCode)
	if err != nil {
		return err
	}
	reply.Status = string(room.Status)
	reply.Phase = string(room.CurrentPhase)
	return nil
}

type LeaderboardArgs struct {
	RoomCode string
}

type LeaderboardReply struct {
	Players []models.PlayerScore
}

func (s *AdminService) Leaderboard(args *LeaderboardArgs, reply *LeaderboardReply) error {
	players, err := s.queries.Leaderboard(args.RoomCode)
	if err != nil {
		return err
	}
	reply.Players = players
	return nil
}
