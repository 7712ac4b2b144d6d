package lobby

import (
	"sync"
	"time"

	"github.com/palemoky/startups/internal/apperrors"
)

const (
	// MinPlayers 开局所需的最少玩家数
	MinPlayers = 3
	// MaxPlayers 房间容量上限
	MaxPlayers = 6
)

// Entry 大厅中的一名玩家
type Entry struct {
	NetworkID    string    `json:"network_id"`    // 当前连接标识，重连后会更新
	PersistentID string    `json:"persistent_id"` // 跨连接稳定的玩家身份
	Name         string    `json:"name"`
	IsHost       bool      `json:"is_host"`
	JoinedAt     time.Time `json:"joined_at"`
}

// Manager 维护按加入时间排序的权威玩家名单。
// 名单以持久身份去重：同一玩家重复加入只会原位更新名字和连接标识，
// 不会改变座次，也不会丢失房主身份。
type Manager struct {
	mu      sync.RWMutex
	entries []Entry
}

func NewManager() *Manager {
	return &Manager{}
}

// Upsert 加入或更新一名玩家。第一个加入的玩家自动成为房主。
func (m *Manager) Upsert(networkID, persistentID, name string) (Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.entries {
		if m.entries[i].PersistentID == persistentID {
			m.entries[i].NetworkID = networkID
			m.entries[i].Name = name
			return m.entries[i], nil
		}
	}

	if len(m.entries) >= MaxPlayers {
		return Entry{}, apperrors.ErrLobbyFull
	}

	entry := Entry{
		NetworkID:    networkID,
		PersistentID: persistentID,
		Name:         name,
		IsHost:       len(m.entries) == 0,
		JoinedAt:     time.Now(),
	}
	m.entries = append(m.entries, entry)
	return entry, nil
}

// UpdateNetworkID 重连后把旧连接标识换成新的
func (m *Manager) UpdateNetworkID(persistentID, networkID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.entries {
		if m.entries[i].PersistentID == persistentID {
			m.entries[i].NetworkID = networkID
			return true
		}
	}
	return false
}

// Snapshot 返回名单的完整副本
func (m *Manager) Snapshot() []Entry {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Entry, len(m.entries))
	copy(out, m.entries)
	return out
}

// Size 当前人数
func (m *Manager) Size() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Host 返回房主
func (m *Manager) Host() (Entry, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, e := range m.entries {
		if e.IsHost {
			return e, true
		}
	}
	return Entry{}, false
}

// IsHost 判断持久身份是否为房主
func (m *Manager) IsHost(persistentID string) bool {
	host, ok := m.Host()
	return ok && host.PersistentID == persistentID
}

// CanStart 校验人数是否满足开局条件
func (m *Manager) CanStart() error {
	n := m.Size()
	if n < MinPlayers {
		return apperrors.ErrNotEnoughPlayer
	}
	if n > MaxPlayers {
		return apperrors.ErrLobbyFull
	}
	return nil
}
