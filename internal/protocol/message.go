package protocol

import (
	"encoding/json"
	"fmt"
)

// 消息类型常量，构成封闭的消息集合，未知类型一律拒绝
const (
	// 连接与心跳
	TypePing        = "ping"
	TypePong        = "pong"
	TypeConnected   = "connected"
	TypeReconnect   = "reconnect"
	TypeReconnected = "reconnected"

	// 大厅
	TypeJoinLobby   = "join_lobby"
	TypeUpdateLobby = "update_lobby"

	// 对局同步
	TypeStartGame       = "start_game"
	TypeUpdateGameState = "update_game_state"
	TypeRequestState    = "request_state"

	// 顾问
	TypeGetAdvice    = "get_advice"
	TypeAdviceResult = "advice_result"

	// 错误
	TypeError = "error"
)

var knownTypes = map[string]struct{}{
	TypePing: {}, TypePong: {}, TypeConnected: {}, TypeReconnect: {}, TypeReconnected: {},
	TypeJoinLobby: {}, TypeUpdateLobby: {},
	TypeStartGame: {}, TypeUpdateGameState: {}, TypeRequestState: {},
	TypeGetAdvice: {}, TypeAdviceResult: {},
	TypeError: {},
}

// IsKnownType 判断消息类型是否在协议集合内
func IsKnownType(t string) bool {
	_, ok := knownTypes[t]
	return ok
}

// Message 线上传输的统一信封
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// NewMessage 构造一条消息，payload 为 nil 时只带类型
func NewMessage(msgType string, payload any) (*Message, error) {
	msg := &Message{Type: msgType}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("序列化 %s 负载失败: %w", msgType, err)
		}
		msg.Payload = data
	}
	return msg, nil
}

// Encode 编码为传输字节
func (m *Message) Encode() ([]byte, error) {
	return json.Marshal(m)
}

// Decode 从传输字节解码
func Decode(data []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("解析消息失败: %w", err)
	}
	if msg.Type == "" {
		return nil, fmt.Errorf("消息缺少类型字段")
	}
	return &msg, nil
}

// ParsePayload 解析指定类型的负载
func ParsePayload[T any](msg *Message) (*T, error) {
	var payload T
	if len(msg.Payload) == 0 {
		return &payload, nil
	}
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return nil, fmt.Errorf("解析 %s 负载失败: %w", msg.Type, err)
	}
	return &payload, nil
}
