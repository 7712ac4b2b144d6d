package protocol

import (
	"github.com/palemoky/startups/internal/game/engine"
	"github.com/palemoky/startups/internal/game/lobby"
)

// ConnectedPayload 连接建立后服务端下发的身份信息
type ConnectedPayload struct {
	NetworkID      string `json:"network_id"`
	ReconnectToken string `json:"reconnect_token"`
}

// ReconnectPayload 客户端重连请求
type ReconnectPayload struct {
	Token string `json:"token"`
}

// ReconnectedPayload 重连成功确认
type ReconnectedPayload struct {
	NetworkID string `json:"network_id"`
}

// JoinLobbyPayload 加入大厅请求
type JoinLobbyPayload struct {
	PersistentID string `json:"persistent_id"`
	Name         string `json:"name"`
}

// UpdateLobbyPayload 大厅名单全量快照
type UpdateLobbyPayload struct {
	Players []lobby.Entry `json:"players"`
}

// GameStatePayload 对局状态全量快照，用于 start_game 和 update_game_state
type GameStatePayload struct {
	State *engine.GameState `json:"state"`
}

// GetAdvicePayload 请求顾问建议
type GetAdvicePayload struct {
	PersistentID string `json:"persistent_id"`
}

// AdviceResultPayload 顾问建议结果
type AdviceResultPayload struct {
	Text string `json:"text"`
}

// ErrorPayload 错误信息
type ErrorPayload struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
