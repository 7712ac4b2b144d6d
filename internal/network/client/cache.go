package client

import (
	"sync"

	"github.com/palemoky/startups/internal/game/engine"
)

// StateCache 本地对局状态缓存。
// 与服务端同一套版本闸门：只有版本号严格更大的状态才会替换缓存，
// 过期或重复的快照静默丢弃。
type StateCache struct {
	mu    sync.RWMutex
	state *engine.GameState
}

// Apply 版本闸门替换。返回是否接受。
func (sc *StateCache) Apply(state *engine.GameState) bool {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.state != nil && state.Version <= sc.state.Version {
		return false
	}
	sc.state = state
	return true
}

// Reset 无条件替换，仅用于新对局开始
func (sc *StateCache) Reset(state *engine.GameState) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.state = state
}

// Get 返回当前缓存的状态，可能为 nil
func (sc *StateCache) Get() *engine.GameState {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.state
}

// Clear 清空缓存
func (sc *StateCache) Clear() {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.state = nil
}
