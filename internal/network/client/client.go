package client

import (
	"encoding/json"
	"errors"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/palemoky/startups/internal/game/engine"
	"github.com/palemoky/startups/internal/protocol"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	// 心跳检测间隔
	heartbeatInterval = 5 * time.Second
	// 最大重连次数
	maxReconnectAttempts = 5
	// 重连起始间隔，之后指数退避
	reconnectInterval = 2 * time.Second
)

// Client 参与者侧 WebSocket 客户端。
// 本地缓存的对局状态只在版本闸门放行时整体替换。
type Client struct {
	ServerURL string
	conn      *websocket.Conn
	send      chan []byte
	receive   chan *protocol.Message
	done      chan struct{}

	NetworkID      string
	ReconnectToken string

	// 回调
	OnMessage      func(*protocol.Message)
	OnError        func(error)
	OnClose        func()
	OnReconnect    func()
	OnReconnecting func(attempt, max int)

	States StateCache

	mu             sync.RWMutex
	closed         bool
	reconnecting   atomic.Bool
	reconnectCount int
}

// NewClient 创建客户端
func NewClient(serverURL string) *Client {
	return &Client{
		ServerURL: serverURL,
		send:      make(chan []byte, 256),
		receive:   make(chan *protocol.Message, 256),
		done:      make(chan struct{}),
	}
}

// Connect 连接服务器
func (c *Client) Connect() error {
	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}

	conn, _, err := dialer.Dial(c.ServerURL, nil)
	if err != nil {
		return err
	}

	c.conn = conn

	go c.readPump()
	go c.writePump()

	return nil
}

// readPump 从服务器读取消息
func (c *Client) readPump() {
	defer func() {
		// 链路断开后尝试重连
		if c.ReconnectToken != "" && !c.reconnecting.Load() {
			go c.tryReconnect()
		} else {
			c.Close()
			if c.OnClose != nil {
				c.OnClose()
			}
		}
	}()

	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				if c.OnError != nil {
					c.OnError(err)
				}
			}
			return
		}

		msg, err := protocol.Decode(message)
		if err != nil {
			log.Printf("消息解析错误: %v", err)
			continue
		}

		switch msg.Type {
		case protocol.TypeConnected:
			var payload protocol.ConnectedPayload
			if err := json.Unmarshal(msg.Payload, &payload); err == nil {
				c.NetworkID = payload.NetworkID
				c.ReconnectToken = payload.ReconnectToken
			}
		case protocol.TypeReconnected:
			c.reconnecting.Store(false)
			c.reconnectCount = 0
			if c.OnReconnect != nil {
				c.OnReconnect()
			}
		case protocol.TypeStartGame:
			// 新对局无条件替换本地缓存
			if payload, err := protocol.ParsePayload[protocol.GameStatePayload](msg); err == nil && payload.State != nil {
				c.States.Reset(payload.State)
			}
		case protocol.TypeUpdateGameState:
			// 过期状态丢弃，不打扰上层
			if payload, err := protocol.ParsePayload[protocol.GameStatePayload](msg); err == nil && payload.State != nil {
				if !c.States.Apply(payload.State) {
					continue
				}
			}
		}

		if c.OnMessage != nil {
			c.OnMessage(msg)
		}

		select {
		case c.receive <- msg:
		default:
		}
	}
}

// writePump 向服务器写入消息
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.done:
			return
		}
	}
}

// SendMessage 发送消息。链路断开时立即报错，调用方据此提示重试，
// 绝不在未确认发送的情况下修改本地状态。
func (c *Client) SendMessage(msg *protocol.Message) error {
	c.mu.RLock()
	if c.closed {
		c.mu.RUnlock()
		return errors.New("连接已关闭")
	}
	c.mu.RUnlock()

	data, err := msg.Encode()
	if err != nil {
		return err
	}

	select {
	case c.send <- data:
		return nil
	default:
		return errors.New("发送缓冲区已满")
	}
}

// Receive 接收消息（阻塞）
func (c *Client) Receive() (*protocol.Message, error) {
	select {
	case msg := <-c.receive:
		return msg, nil
	case <-c.done:
		return nil, errors.New("连接已关闭")
	}
}

// ReceiveWithTimeout 带超时接收消息
func (c *Client) ReceiveWithTimeout(timeout time.Duration) (*protocol.Message, error) {
	select {
	case msg := <-c.receive:
		return msg, nil
	case <-time.After(timeout):
		return nil, errors.New("接收超时")
	case <-c.done:
		return nil, errors.New("连接已关闭")
	}
}

// Close 关闭连接
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		c.closed = true
		close(c.done)
		if c.conn != nil {
			c.conn.Close()
		}
	}
}

// IsConnected 是否已连接
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return !c.closed && c.conn != nil
}

// --- 便捷方法 ---

// JoinLobby 加入大厅
func (c *Client) JoinLobby(persistentID, name string) error {
	msg, err := protocol.NewMessage(protocol.TypeJoinLobby, protocol.JoinLobbyPayload{
		PersistentID: persistentID,
		Name:         name,
	})
	if err != nil {
		return err
	}
	return c.SendMessage(msg)
}

// StartGame 房主提交初始对局状态
func (c *Client) StartGame(state *engine.GameState) error {
	msg, err := protocol.NewMessage(protocol.TypeStartGame, protocol.GameStatePayload{State: state})
	if err != nil {
		return err
	}
	return c.SendMessage(msg)
}

// PushState 提交本地算出的下一个状态。
// 发送成功后调用方才把该状态落到本地缓存。
func (c *Client) PushState(state *engine.GameState) error {
	msg, err := protocol.NewMessage(protocol.TypeUpdateGameState, protocol.GameStatePayload{State: state})
	if err != nil {
		return err
	}
	return c.SendMessage(msg)
}

// RequestState 请求全量对齐
func (c *Client) RequestState() error {
	msg, err := protocol.NewMessage(protocol.TypeRequestState, nil)
	if err != nil {
		return err
	}
	return c.SendMessage(msg)
}

// GetAdvice 请求顾问建议
func (c *Client) GetAdvice(persistentID string) error {
	msg, err := protocol.NewMessage(protocol.TypeGetAdvice, protocol.GetAdvicePayload{
		PersistentID: persistentID,
	})
	if err != nil {
		return err
	}
	return c.SendMessage(msg)
}

// Ping 发送心跳
func (c *Client) Ping() error {
	msg, err := protocol.NewMessage(protocol.TypePing, nil)
	if err != nil {
		return err
	}
	return c.SendMessage(msg)
}

// StartHeartbeat 启动心跳检测
func (c *Client) StartHeartbeat() {
	go func() {
		ticker := time.NewTicker(heartbeatInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if c.IsConnected() {
					_ = c.Ping()
				}
			case <-c.done:
				return
			}
		}
	}()
}
