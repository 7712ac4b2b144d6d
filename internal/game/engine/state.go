package engine

import (
	"fmt"

	"github.com/palemoky/startups/internal/game/card"
)

// Phase 对局阶段
type Phase string

const (
	PhaseDraw         Phase = "DRAW"           // 等待当前玩家补牌
	PhasePlay         Phase = "PLAY"           // 等待当前玩家出牌
	PhaseReadyToScore Phase = "READY_TO_SCORE" // 对局已打完，等待亮牌
	PhaseScoring      Phase = "SCORING"        // 结算（终态）
)

// OriginSource 本回合补到的牌的来源
type OriginSource string

const (
	OriginNone   OriginSource = "NONE"
	OriginDeck   OriginSource = "DECK"
	OriginMarket OriginSource = "MARKET"
)

// TurnOrigin 记录本回合补牌来源，用于禁止把刚拿的市场牌原样放回
type TurnOrigin struct {
	Source OriginSource `json:"source"`
	CardID string       `json:"card_id,omitempty"`
}

// Player 对局中的一名玩家
type Player struct {
	Seat         int            `json:"seat"`
	NetworkID    string         `json:"network_id"`    // 当前连接标识，重连后更新
	PersistentID string         `json:"persistent_id"` // 跨连接稳定身份
	Name         string         `json:"name"`
	IsHost       bool           `json:"is_host"`
	Hand         []card.Card    `json:"hand"`
	Tableau      []card.Card    `json:"tableau"` // 已投资的牌，公开
	Coins        int            `json:"coins"`
	EarnedChips  int            `json:"earned_chips"` // 结算获得的 3 分筹码数
	Tokens       []card.Company `json:"tokens"`       // 持有的反垄断标记
}

// HasToken 判断是否持有某公司的反垄断标记
func (p *Player) HasToken(c card.Company) bool {
	for _, t := range p.Tokens {
		if t == c {
			return true
		}
	}
	return false
}

func (p *Player) clone() Player {
	cp := *p
	cp.Hand = append([]card.Card(nil), p.Hand...)
	cp.Tableau = append([]card.Card(nil), p.Tableau...)
	cp.Tokens = append([]card.Company(nil), p.Tokens...)
	return cp
}

// MarketSlot 市场中的一个牌位，牌上可能积累了利息金币
type MarketSlot struct {
	Card  card.Card `json:"card"`
	Coins int       `json:"coins"`
}

// GameState 完整对局状态。
// 同步时整体替换：版本号严格递增，低版本一律丢弃。
type GameState struct {
	Version    int          `json:"version"`
	Players    []Player     `json:"players"` // 座次即行动顺序，开局后固定
	Deck       []card.Card  `json:"deck"`    // 索引 0 为牌堆顶
	Market     []MarketSlot `json:"market"`
	ActiveSeat int          `json:"active_seat"`
	Phase      Phase        `json:"phase"`
	Origin     TurnOrigin   `json:"origin"`
	Logs       []string     `json:"logs"` // 只追加的事件日志
}

// Clone 深拷贝整个状态。所有状态迁移都先克隆再修改，绝不触碰输入。
func (s *GameState) Clone() *GameState {
	ns := *s
	ns.Players = make([]Player, len(s.Players))
	for i := range s.Players {
		ns.Players[i] = s.Players[i].clone()
	}
	ns.Deck = append([]card.Card(nil), s.Deck...)
	ns.Market = append([]MarketSlot(nil), s.Market...)
	ns.Logs = append([]string(nil), s.Logs...)
	return &ns
}

// ActivePlayer 当前行动玩家
func (s *GameState) ActivePlayer() *Player {
	if s.ActiveSeat < 0 || s.ActiveSeat >= len(s.Players) {
		return nil
	}
	return &s.Players[s.ActiveSeat]
}

// PlayerByPersistentID 按持久身份查找玩家
func (s *GameState) PlayerByPersistentID(id string) *Player {
	for i := range s.Players {
		if s.Players[i].PersistentID == id {
			return &s.Players[i]
		}
	}
	return nil
}

// CardCount 全场牌数（牌堆+市场+手牌+投资区），用于守恒校验
func (s *GameState) CardCount() int {
	n := len(s.Deck) + len(s.Market)
	for i := range s.Players {
		n += len(s.Players[i].Hand) + len(s.Players[i].Tableau)
	}
	return n
}

func (s *GameState) appendLog(format string, args ...any) {
	s.Logs = append(s.Logs, fmt.Sprintf(format, args...))
}
