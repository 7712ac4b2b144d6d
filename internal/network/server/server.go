package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"runtime"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"

	"github.com/palemoky/startups/internal/advisor"
	"github.com/palemoky/startups/internal/config"
	"github.com/palemoky/startups/internal/game/engine"
	"github.com/palemoky/startups/internal/game/lobby"
	"github.com/palemoky/startups/internal/protocol"
	"github.com/palemoky/startups/internal/storage"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // 允许所有来源，生产环境需要限制
	},
}

// Server 主机进程：持有权威大厅名单和权威对局状态，
// 对 update_game_state 做版本闸门，整状态广播给除发起者外的所有连接。
type Server struct {
	config   *config.Config
	redis    *redis.Client
	store    *storage.Store // Redis 不可用时为 nil，跳过持久化
	sessions *SessionManager
	roster   *lobby.Manager
	advisor  advisor.Provider
	handler  *Handler

	clients   map[string]*Client
	clientsMu sync.RWMutex

	state   *engine.GameState
	stateMu sync.RWMutex

	// 大厅广播合并窗口，多个相邻的加入只触发一次全量广播
	lobbyTimer   *time.Timer
	lobbyTimerMu sync.Mutex
}

// NewServer 创建服务器实例
func NewServer(cfg *config.Config, adv advisor.Provider) (*Server, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	s := &Server{
		config:   cfg,
		redis:    rdb,
		sessions: NewSessionManager(cfg.Game.SessionTTLDuration()),
		roster:   lobby.NewManager(),
		advisor:  adv,
		clients:  make(map[string]*Client),
	}

	// 测试 Redis 连接。连不上也能玩，只是没有快照和排行榜。
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Printf("⚠️ Redis 连接失败，持久化已禁用: %v", err)
	} else {
		s.store = storage.NewStore(rdb)
		s.restore(ctx)
	}

	s.handler = NewHandler(s)

	return s, nil
}

// restore 主机重启后从快照恢复大厅与对局
func (s *Server) restore(ctx context.Context) {
	if entries, err := s.store.LoadLobby(ctx); err == nil && len(entries) > 0 {
		for _, e := range entries {
			if _, err := s.roster.Upsert(e.NetworkID, e.PersistentID, e.Name); err != nil {
				break
			}
		}
		log.Printf("♻️ 已恢复大厅名单，共 %d 人", len(entries))
	}
	if state, err := s.store.LoadGame(ctx); err == nil && state != nil {
		s.state = state
		log.Printf("♻️ 已恢复对局状态 (版本 %d, 阶段 %s)", state.Version, state.Phase)
	}
}

// Start 启动服务器
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)

	http.HandleFunc("/ws", s.handleWebSocket)
	http.HandleFunc("/health", s.handleHealth)

	go s.monitorStats()

	log.Printf("🚀 服务器启动在 ws://%s/ws (CPU核心数: %d)", addr, runtime.NumCPU())
	server := &http.Server{
		Addr:              addr,
		Handler:           nil,
		ReadHeaderTimeout: 10 * time.Second, // 防止 Slowloris 攻击
		IdleTimeout:       60 * time.Second,
	}
	return server.ListenAndServe()
}

// handleWebSocket 处理 WebSocket 连接
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket 升级失败: %v", err)
		return
	}

	client := NewClient(s, conn)
	s.registerClient(client)

	session := s.sessions.CreateSession(client.ID)

	msg, _ := protocol.NewMessage(protocol.TypeConnected, protocol.ConnectedPayload{
		NetworkID:      client.ID,
		ReconnectToken: session.ReconnectToken,
	})
	client.SendMessage(msg)

	log.Printf("✅ 新连接 %s", client.ID)

	go client.ReadPump()
	go client.WritePump()
}

// handleHealth 健康检查接口
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// registerClient 注册客户端
func (s *Server) registerClient(client *Client) {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	s.clients[client.ID] = client
}

// unregisterClient 注销客户端
func (s *Server) unregisterClient(client *Client) {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()

	if s.clients[client.ID] == client {
		delete(s.clients, client.ID)
		log.Printf("❌ 连接 %s (%s) 已断开", client.ID, client.Name)
	}
}

// rebindClient 把一条新链路顶替到旧连接标识上（重连时）
func (s *Server) rebindClient(client *Client, id string) {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()

	delete(s.clients, client.ID)
	if old, ok := s.clients[id]; ok && old != client {
		old.Close()
	}
	client.ID = id
	s.clients[id] = client
}

// GetClientByID 按连接标识获取客户端
func (s *Server) GetClientByID(id string) *Client {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	return s.clients[id]
}

// GetOnlineCount 获取在线连接数
func (s *Server) GetOnlineCount() int {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	return len(s.clients)
}

// Broadcast 广播消息。先剔除已关闭的连接，再逐个尽力发送；
// exceptID 非空时跳过该连接（通常是状态的发起者）。
func (s *Server) Broadcast(msg *protocol.Message, exceptID string) {
	s.clientsMu.Lock()
	targets := make([]*Client, 0, len(s.clients))
	for id, client := range s.clients {
		if client.IsClosed() {
			delete(s.clients, id)
			continue
		}
		if id == exceptID {
			continue
		}
		targets = append(targets, client)
	}
	s.clientsMu.Unlock()

	for _, client := range targets {
		client.SendMessage(msg)
	}
}

// CurrentState 返回权威状态的引用（只读使用）
func (s *Server) CurrentState() *engine.GameState {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return s.state
}

// setState 无条件替换权威状态（开局/重开时）
func (s *Server) setState(state *engine.GameState) {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	s.state = state
}

// applyStateUpdate 版本闸门：只接受版本号严格更大的状态。
// 返回是否接受以及接受前的阶段，过期状态静默丢弃。
func (s *Server) applyStateUpdate(state *engine.GameState) (bool, engine.Phase) {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()

	prevPhase := engine.Phase("")
	if s.state != nil {
		prevPhase = s.state.Phase
		if state.Version <= s.state.Version {
			return false, prevPhase
		}
	}
	s.state = state
	return true, prevPhase
}

// scheduleLobbyBroadcast 在合并窗口后广播一次全量大厅名单
func (s *Server) scheduleLobbyBroadcast() {
	s.lobbyTimerMu.Lock()
	defer s.lobbyTimerMu.Unlock()

	if s.lobbyTimer != nil {
		return // 已有待触发的广播，后续加入合并进去
	}
	s.lobbyTimer = time.AfterFunc(s.config.Game.JoinBatchDelay(), func() {
		s.lobbyTimerMu.Lock()
		s.lobbyTimer = nil
		s.lobbyTimerMu.Unlock()
		s.broadcastLobby()
	})
}

// broadcastLobby 向所有连接广播大厅名单快照
func (s *Server) broadcastLobby() {
	entries := s.roster.Snapshot()
	msg, err := protocol.NewMessage(protocol.TypeUpdateLobby, protocol.UpdateLobbyPayload{Players: entries})
	if err != nil {
		log.Printf("构造大厅广播失败: %v", err)
		return
	}
	s.Broadcast(msg, "")

	if s.store != nil {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()
			if err := s.store.SaveLobby(ctx, entries); err != nil {
				log.Printf("保存大厅快照失败: %v", err)
			}
		}()
	}
}

// snapshotState 异步保存权威对局快照
func (s *Server) snapshotState(state *engine.GameState) {
	if s.store == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := s.store.SaveGame(ctx, state); err != nil {
			log.Printf("保存对局快照失败: %v", err)
		}
	}()
}

// recordResult 结算时写排行榜，只在进入 SCORING 的那一次触发
func (s *Server) recordResult(state *engine.GameState) {
	if s.store == nil {
		return
	}
	stats := engine.FinalizeScores(state.Players)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.store.RecordResult(ctx, stats); err != nil {
			log.Printf("记录排行榜失败: %v", err)
		}
	}()
}

// monitorStats 定期监控服务器状态
func (s *Server) monitorStats() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		var m runtime.MemStats
		runtime.ReadMemStats(&m)

		version := 0
		if state := s.CurrentState(); state != nil {
			version = state.Version
		}
		log.Printf("📊 [监控] 在线: %d | 大厅: %d | 状态版本: %d | Goroutines: %d | 内存: %.2f MB",
			s.GetOnlineCount(),
			s.roster.Size(),
			version,
			runtime.NumGoroutine(),
			float64(m.Alloc)/1024/1024)
	}
}

// Shutdown 关闭服务器
func (s *Server) Shutdown() {
	s.clientsMu.Lock()
	for _, client := range s.clients {
		client.Close()
	}
	s.clientsMu.Unlock()

	_ = s.redis.Close()

	log.Println("服务器已关闭")
}
