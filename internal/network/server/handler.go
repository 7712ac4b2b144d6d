package server

import (
	"context"
	"log"

	"github.com/palemoky/startups/internal/advisor"
	"github.com/palemoky/startups/internal/apperrors"
	"github.com/palemoky/startups/internal/game/engine"
	"github.com/palemoky/startups/internal/protocol"
)

// Handler 按消息类型分发处理
type Handler struct {
	server *Server
}

// NewHandler 创建消息处理器
func NewHandler(s *Server) *Handler {
	return &Handler{server: s}
}

// Handle 处理一条客户端消息。协议集合之外的类型直接拒绝。
func (h *Handler) Handle(c *Client, msg *protocol.Message) {
	if !protocol.IsKnownType(msg.Type) {
		c.SendMessage(protocol.NewErrorMessage(apperrors.ErrUnknownType))
		return
	}

	switch msg.Type {
	case protocol.TypePing:
		pong, _ := protocol.NewMessage(protocol.TypePong, nil)
		c.SendMessage(pong)
	case protocol.TypeReconnect:
		h.handleReconnect(c, msg)
	case protocol.TypeJoinLobby:
		h.handleJoinLobby(c, msg)
	case protocol.TypeStartGame:
		h.handleStartGame(c, msg)
	case protocol.TypeUpdateGameState:
		h.handleUpdateGameState(c, msg)
	case protocol.TypeRequestState:
		h.handleRequestState(c)
	case protocol.TypeGetAdvice:
		h.handleGetAdvice(c, msg)
	default:
		// 服务端下行类型不允许客户端发送
		c.SendMessage(protocol.NewErrorMessage(apperrors.ErrInvalidMessage))
	}
}

// handleJoinLobby 加入大厅：按持久身份去重合并，单播当前名单
// （以及进行中的对局），随后在合并窗口后向所有人广播新名单。
func (h *Handler) handleJoinLobby(c *Client, msg *protocol.Message) {
	payload, err := protocol.ParsePayload[protocol.JoinLobbyPayload](msg)
	if err != nil || payload.PersistentID == "" || payload.Name == "" {
		c.SendMessage(protocol.NewErrorMessage(apperrors.ErrInvalidMessage))
		return
	}

	entry, err := h.server.roster.Upsert(c.ID, payload.PersistentID, payload.Name)
	if err != nil {
		c.SendMessage(protocol.NewErrorMessage(err))
		return
	}

	c.SetIdentity(payload.PersistentID, payload.Name)
	h.server.sessions.BindPersistentID(c.ID, payload.PersistentID)

	lobbyMsg, _ := protocol.NewMessage(protocol.TypeUpdateLobby, protocol.UpdateLobbyPayload{
		Players: h.server.roster.Snapshot(),
	})
	c.SendMessage(lobbyMsg)

	// 对局进行中时，新链路直接拿到当前权威状态
	if state := h.server.CurrentState(); state != nil {
		stateMsg, _ := protocol.NewMessage(protocol.TypeUpdateGameState, protocol.GameStatePayload{State: state})
		c.SendMessage(stateMsg)
	}

	h.server.scheduleLobbyBroadcast()

	if entry.IsHost {
		log.Printf("👑 %s (%s) 加入大厅并成为房主", payload.Name, payload.PersistentID)
	} else {
		log.Printf("🙋 %s (%s) 加入大厅", payload.Name, payload.PersistentID)
	}
}

// handleStartGame 房主提交初始对局状态，无条件采纳并广播给其他人
func (h *Handler) handleStartGame(c *Client, msg *protocol.Message) {
	if !h.server.roster.IsHost(c.GetPersistentID()) {
		c.SendMessage(protocol.NewErrorMessage(apperrors.ErrNotHost))
		return
	}
	if err := h.server.roster.CanStart(); err != nil {
		c.SendMessage(protocol.NewErrorMessage(err))
		return
	}

	payload, err := protocol.ParsePayload[protocol.GameStatePayload](msg)
	if err != nil || payload.State == nil {
		c.SendMessage(protocol.NewErrorMessage(apperrors.ErrInvalidMessage))
		return
	}

	h.server.setState(payload.State)
	h.server.snapshotState(payload.State)

	out, _ := protocol.NewMessage(protocol.TypeStartGame, protocol.GameStatePayload{State: payload.State})
	h.server.Broadcast(out, c.ID)

	log.Printf("🎮 对局开始，共 %d 名玩家", len(payload.State.Players))
}

// handleUpdateGameState 版本闸门后的整状态替换。
// 过期或重复的状态静默丢弃，不回错误。
func (h *Handler) handleUpdateGameState(c *Client, msg *protocol.Message) {
	payload, err := protocol.ParsePayload[protocol.GameStatePayload](msg)
	if err != nil || payload.State == nil {
		c.SendMessage(protocol.NewErrorMessage(apperrors.ErrInvalidMessage))
		return
	}

	accepted, prevPhase := h.server.applyStateUpdate(payload.State)
	if !accepted {
		log.Printf("🗑️ 丢弃过期状态 (版本 %d)", payload.State.Version)
		return
	}

	out, _ := protocol.NewMessage(protocol.TypeUpdateGameState, protocol.GameStatePayload{State: payload.State})
	h.server.Broadcast(out, c.ID)
	h.server.snapshotState(payload.State)

	if payload.State.Phase == engine.PhaseScoring && prevPhase != engine.PhaseScoring {
		h.server.recordResult(payload.State)
	}
}

// handleRequestState 单播当前名单与权威状态，用于重连后的全量对齐
func (h *Handler) handleRequestState(c *Client) {
	lobbyMsg, _ := protocol.NewMessage(protocol.TypeUpdateLobby, protocol.UpdateLobbyPayload{
		Players: h.server.roster.Snapshot(),
	})
	c.SendMessage(lobbyMsg)

	if state := h.server.CurrentState(); state != nil {
		stateMsg, _ := protocol.NewMessage(protocol.TypeUpdateGameState, protocol.GameStatePayload{State: state})
		c.SendMessage(stateMsg)
	}
}

// handleReconnect 用令牌找回旧会话：新链路顶替旧连接标识，
// 名单和对局里的身份保持不变。
func (h *Handler) handleReconnect(c *Client, msg *protocol.Message) {
	payload, err := protocol.ParsePayload[protocol.ReconnectPayload](msg)
	if err != nil || payload.Token == "" {
		c.SendMessage(protocol.NewErrorMessage(apperrors.ErrInvalidMessage))
		return
	}

	if !h.server.sessions.CanReconnect(payload.Token) {
		c.SendMessage(protocol.NewErrorMessage(apperrors.ErrInvalidSession))
		return
	}

	session := h.server.sessions.GetSessionByToken(payload.Token)
	oldID := session.NetworkID

	// 新连接刚建立时签发的临时会话不再需要
	h.server.sessions.DeleteSession(c.ID)
	h.server.rebindClient(c, oldID)
	h.server.sessions.SetOnline(oldID)

	if session.PersistentID != "" {
		h.server.roster.UpdateNetworkID(session.PersistentID, oldID)
		c.SetIdentity(session.PersistentID, c.Name)
	}

	ack, _ := protocol.NewMessage(protocol.TypeReconnected, protocol.ReconnectedPayload{NetworkID: oldID})
	c.SendMessage(ack)
	h.handleRequestState(c)

	log.Printf("🔄 连接 %s 重连成功", oldID)
}

// handleGetAdvice 请求顾问建议。顾问失败时回兜底文案，绝不报错中断。
func (h *Handler) handleGetAdvice(c *Client, msg *protocol.Message) {
	payload, err := protocol.ParsePayload[protocol.GetAdvicePayload](msg)
	if err != nil {
		c.SendMessage(protocol.NewErrorMessage(apperrors.ErrInvalidMessage))
		return
	}

	state := h.server.CurrentState()
	if state == nil {
		c.SendMessage(protocol.NewErrorMessage(apperrors.ErrWrongPhase))
		return
	}

	persistentID := payload.PersistentID
	if persistentID == "" {
		persistentID = c.GetPersistentID()
	}
	player := state.PlayerByPersistentID(persistentID)
	if player == nil {
		c.SendMessage(protocol.NewErrorMessage(apperrors.ErrInvalidSession))
		return
	}

	snapshot := state.Clone()
	seat := player.Seat
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), h.server.config.Advisor.TimeoutDuration())
		defer cancel()

		text := advisor.Fallback
		if h.server.advisor != nil {
			if got, err := h.server.advisor.Advise(ctx, snapshot, seat); err == nil {
				text = got
			} else {
				log.Printf("顾问请求失败: %v", err)
			}
		}

		result, _ := protocol.NewMessage(protocol.TypeAdviceResult, protocol.AdviceResultPayload{Text: text})
		c.SendMessage(result)
	}()
}
