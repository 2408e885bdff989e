package server

import (
	"net/http"
	"net/rpc"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/wfunc/findthespy/broadcast"
	"github.com/wfunc/findthespy/config"
	"github.com/wfunc/findthespy/game"
	"github.com/wfunc/findthespy/logger"
	"github.com/wfunc/findthespy/monitor"
	"github.com/wfunc/findthespy/network"
	"github.com/wfunc/findthespy/persistence"
	"github.com/wfunc/findthespy/room"
	adminrpc "github.com/wfunc/findthespy/rpc"
	"github.com/wfunc/findthespy/services"
	"github.com/wfunc/findthespy/session"
	"github.com/wfunc/findthespy/timer"
	"github.com/wfunc/findthespy/words"
)

const pingInterval = 30 * time.Second

type GameServer struct {
	httpAddr    string
	metricsAddr string
	upgrader    websocket.Upgrader
	router      *mux.Router
	coordinator *game.Coordinator
	queries     *services.QueryService
	registry    *room.Registry
	sessions    *session.Manager
	monitor     *monitor.Monitor
	rpcServer   *adminrpc.Server
	timers      *timer.Manager
	shutdownChan chan struct{}
}

func NewGameServer(cfg *config.Config, store persistence.Store, supplier words.Supplier) *GameServer {
	registry := room.NewRegistry()
	broadcaster := broadcast.NewHubBroadcaster(registry)

	s := &GameServer{
		httpAddr:     cfg.Server.HTTPAddress,
		metricsAddr:  cfg.Server.MetricsAddress,
		registry:     registry,
		sessions:     session.NewManager(),
		coordinator:  game.NewCoordinator(store, supplier, broadcaster),
		queries:      services.NewQueryService(store),
		monitor:      monitor.NewMonitor("findthespy"),
		timers:       timer.NewManager(),
		shutdownChan: make(chan struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // 允许所有跨域请求
			},
		},
	}

	// 初始化RPC服务器
	rpcServer, err := adminrpc.NewServer(cfg.Server.RPCAddress)
	if err != nil {
		logger.Log.Fatalf("Failed to create RPC server: %v", err)
	}
	s.rpcServer = rpcServer
	rpc.Register(adminrpc.NewAdminService(s.queries))

	s.router = s.routes()

	// 周期性探测半开连接
	s.timers.Schedule(pingInterval, pingInterval, s.sweepConnections)

	return s
}

func (s *GameServer) routes() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/create-room", s.handleCreateRoom).Methods(http.MethodPost)
	r.HandleFunc("/join-room", s.handleJoinRoom).Methods(http.MethodPost)
	r.HandleFunc("/start-round", s.handleStartRound).Methods(http.MethodPost)
	r.HandleFunc("/start-voting", s.handleStartVoting).Methods(http.MethodPost)
	r.HandleFunc("/vote", s.handleVote).Methods(http.MethodPost)
	r.HandleFunc("/end-round", s.handleEndRound).Methods(http.MethodPost)
	r.HandleFunc("/next-round", s.handleNextRound).Methods(http.MethodPost)
	r.HandleFunc("/end-game", s.handleEndGame).Methods(http.MethodPost)

	r.HandleFunc("/is-host/{room_code}/{name}", s.handleIsHost).Methods(http.MethodGet)
	r.HandleFunc("/player-word/{room_code}/{name}", s.handlePlayerWord).Methods(http.MethodGet)
	r.HandleFunc("/players/{room_code}", s.handlePlayers).Methods(http.MethodGet)
	r.HandleFunc("/vote-count", s.handleVoteCount).Methods(http.MethodGet)
	r.HandleFunc("/round-results/{room_code}", s.handleRoundResults).Methods(http.MethodGet)
	r.HandleFunc("/leaderboard/{room_code}", s.handleLeaderboard).Methods(http.MethodGet)
	r.HandleFunc("/room-status/{room_code}", s.handleRoomStatus).Methods(http.MethodGet)

	r.HandleFunc("/ws/{room_code}", s.handleWebSocket)

	return r
}

func (s *GameServer) Start() error {
	go s.rpcServer.Start()
	if s.metricsAddr != "" {
		s.monitor.StartServer(s.metricsAddr)
	}

	logger.Log.Infof("Game server listening on %s", s.httpAddr)
	return http.ListenAndServe(s.httpAddr, s.router)
}

func (s *GameServer) Shutdown() {
	close(s.shutdownChan)
	s.timers.Stop()
	s.rpcServer.Stop()
}

// handleWebSocket 房间推送通道：第一条文本帧是玩家名，之后的入站
// 数据全部忽略，服务端只向客户端推事件名。
func (s *GameServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	roomCode := strings.ToUpper(mux.Vars(r)["room_code"])

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Infof("Failed to upgrade connection: %v", err)
		return
	}

	wsConn := network.NewWSConnection(conn)

	// 身份消息
	playerName, err := wsConn.ReadText()
	if err != nil {
		wsConn.Close()
		return
	}

	sess := session.NewSession(uuid.New().String(), wsConn)
	sess.PlayerName = playerName
	s.sessions.Add(sess)
	s.registry.Subscribe(roomCode, sess)
	s.monitor.IncConnectedClients()
	s.monitor.SetSubscribedRooms(s.registry.Rooms())

	logger.Log.Infof("Player %s subscribed to room %s, session ID: %s",
		playerName, roomCode, sess.GetID())

	defer func() {
		logger.Log.Infof("Player %s left room %s, session ID: %s",
			playerName, roomCode, sess.GetID())
		s.registry.Unsubscribe(roomCode, sess.GetID())
		s.sessions.Remove(sess.GetID())
		s.monitor.DecConnectedClients()
		s.monitor.SetSubscribedRooms(s.registry.Rooms())
		wsConn.Close()
	}()

	for {
		select {
		case <-s.shutdownChan:
			return
		default:
			if _, err := wsConn.ReadText(); err != nil {
				return
			}
		}
	}
}

// sweepConnections 向所有会话发 ping，失败的连接直接关闭，
// 由读循环完成摘除
func (s *GameServer) sweepConnections() {
	for _, sess := range s.sessions.All() {
		if err := sess.Conn.Ping(); err != nil {
			logger.Log.Infof("Closing stale session %s: %v", sess.GetID(), err)
			sess.Close()
		}
	}
}
