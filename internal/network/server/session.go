package server

import (
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"
)

const (
	// 重连等待时间
	reconnectTimeout = 2 * time.Minute
)

// Session 一条连接的会话，用于断线重连
type Session struct {
	NetworkID      string
	PersistentID   string
	ReconnectToken string

	DisconnectedAt time.Time
	IsOnline       bool

	mu sync.RWMutex
}

// SessionManager 会话管理器
type SessionManager struct {
	sessions map[string]*Session // networkID -> session
	tokens   map[string]string   // token -> networkID
	ttl      time.Duration
	mu       sync.RWMutex
}

// NewSessionManager 创建会话管理器，ttl 为掉线会话的保留时长
func NewSessionManager(ttl time.Duration) *SessionManager {
	sm := &SessionManager{
		sessions: make(map[string]*Session),
		tokens:   make(map[string]string),
		ttl:      ttl,
	}

	go sm.cleanupLoop()

	return sm
}

// CreateSession 为新连接创建会话并签发重连令牌
func (sm *SessionManager) CreateSession(networkID string) *Session {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	token := generateToken()

	session := &Session{
		NetworkID:      networkID,
		ReconnectToken: token,
		IsOnline:       true,
	}

	sm.sessions[networkID] = session
	sm.tokens[token] = networkID

	return session
}

// GetSession 获取会话
func (sm *SessionManager) GetSession(networkID string) *Session {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.sessions[networkID]
}

// GetSessionByToken 通过令牌获取会话
func (sm *SessionManager) GetSessionByToken(token string) *Session {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	networkID, ok := sm.tokens[token]
	if !ok {
		return nil
	}
	return sm.sessions[networkID]
}

// BindPersistentID 把持久身份绑定到会话（加入大厅时）
func (sm *SessionManager) BindPersistentID(networkID, persistentID string) {
	sm.mu.RLock()
	session, ok := sm.sessions[networkID]
	sm.mu.RUnlock()

	if ok {
		session.mu.Lock()
		session.PersistentID = persistentID
		session.mu.Unlock()
	}
}

// SetOffline 标记会话离线
func (sm *SessionManager) SetOffline(networkID string) {
	sm.mu.RLock()
	session, ok := sm.sessions[networkID]
	sm.mu.RUnlock()

	if ok {
		session.mu.Lock()
		session.IsOnline = false
		session.DisconnectedAt = time.Now()
		session.mu.Unlock()
	}
}

// SetOnline 标记会话上线
func (sm *SessionManager) SetOnline(networkID string) {
	sm.mu.RLock()
	session, ok := sm.sessions[networkID]
	sm.mu.RUnlock()

	if ok {
		session.mu.Lock()
		session.IsOnline = true
		session.DisconnectedAt = time.Time{}
		session.mu.Unlock()
	}
}

// DeleteSession 删除会话
func (sm *SessionManager) DeleteSession(networkID string) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if session, ok := sm.sessions[networkID]; ok {
		delete(sm.tokens, session.ReconnectToken)
		delete(sm.sessions, networkID)
	}
}

// CanReconnect 校验令牌是否还在重连时限内
func (sm *SessionManager) CanReconnect(token string) bool {
	session := sm.GetSessionByToken(token)
	if session == nil {
		return false
	}

	session.mu.RLock()
	defer session.mu.RUnlock()

	if !session.IsOnline && time.Since(session.DisconnectedAt) > reconnectTimeout {
		return false
	}
	return true
}

// cleanupLoop 定期清理过期会话
func (sm *SessionManager) cleanupLoop() {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		sm.cleanup()
	}
}

// cleanup 清理离线超过保留时长的会话
func (sm *SessionManager) cleanup() {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	now := time.Now()
	for networkID, session := range sm.sessions {
		session.mu.RLock()
		expired := !session.IsOnline && now.Sub(session.DisconnectedAt) > sm.ttl
		session.mu.RUnlock()
		if expired {
			delete(sm.tokens, session.ReconnectToken)
			delete(sm.sessions, networkID)
		}
	}
}

// generateToken 生成随机令牌
func generateToken() string {
	bytes := make([]byte, 32)
	_, _ = rand.Read(bytes)
	return hex.EncodeToString(bytes)
}
