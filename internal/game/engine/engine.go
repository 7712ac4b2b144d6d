package engine

import (
	"math/rand/v2"

	"github.com/palemoky/startups/internal/apperrors"
	"github.com/palemoky/startups/internal/game/card"
	"github.com/palemoky/startups/internal/game/lobby"
)

// Destination 出牌去向
type Destination string

const (
	DestTableau Destination = "TABLEAU" // 投资到自己面前
	DestMarket  Destination = "MARKET"  // 放入市场
)

// InitializeGame 按大厅名单开局：随机座次，洗牌后永久移除 5 张，
// 每人发 3 张手牌和 10 金币，市场为空，0 号位先行动。
func InitializeGame(entries []lobby.Entry) (*GameState, error) {
	if len(entries) < lobby.MinPlayers {
		return nil, apperrors.ErrNotEnoughPlayer
	}
	if len(entries) > lobby.MaxPlayers {
		return nil, apperrors.ErrLobbyFull
	}

	order := append([]lobby.Entry(nil), entries...)
	rand.Shuffle(len(order), func(i, j int) {
		order[i], order[j] = order[j], order[i]
	})

	deck := card.BuildShuffledDeck()
	deck = deck[card.RemovedAtSetup:] // 移除的 5 张不进入对局

	players := make([]Player, len(order))
	for i, e := range order {
		hand := append([]card.Card(nil), deck[:card.HandSize]...)
		deck = deck[card.HandSize:]
		players[i] = Player{
			Seat:         i,
			NetworkID:    e.NetworkID,
			PersistentID: e.PersistentID,
			Name:         e.Name,
			IsHost:       e.IsHost,
			Hand:         hand,
			Tableau:      []card.Card{},
			Coins:        card.StartingCoins,
			Tokens:       []card.Company{},
		}
	}

	s := &GameState{
		Version:    1,
		Players:    players,
		Deck:       deck,
		Market:     []MarketSlot{},
		ActiveSeat: 0,
		Phase:      PhaseDraw,
		Origin:     TurnOrigin{Source: OriginNone},
		Logs:       []string{},
	}
	s.appendLog("游戏初始化完成。")
	s.appendLog("轮到 %s 行动。", players[0].Name)
	return s, nil
}

// DeckDrawCost 从牌堆抽牌的市场税：每个市场牌位收 1 金币，
// 持有对应公司反垄断标记的牌位免税。
func DeckDrawCost(s *GameState) int {
	return deckDrawCostFor(s, s.ActiveSeat)
}

func deckDrawCostFor(s *GameState, seat int) int {
	p := &s.Players[seat]
	cost := 0
	for _, slot := range s.Market {
		if !p.HasToken(slot.Card.Company) {
			cost++
		}
	}
	return cost
}

// CanDrawFromDeck 判断当前玩家能否从牌堆抽牌
func CanDrawFromDeck(s *GameState) bool {
	if len(s.Deck) == 0 {
		return false
	}
	return s.ActivePlayer().Coins >= DeckDrawCost(s)
}

// CanDrawFromMarket 判断市场是否有牌可拿（逐张的合法性在应用时校验）
func CanDrawFromMarket(s *GameState) bool {
	return len(s.Market) > 0
}

// ApplyDrawFromDeck 当前玩家付税后从牌堆顶抽一张。
// 税款以利息的形式落在各个未被豁免的市场牌位上。
func ApplyDrawFromDeck(s *GameState) (*GameState, error) {
	if s.Phase != PhaseDraw {
		return nil, apperrors.ErrWrongPhase
	}
	if len(s.Deck) == 0 {
		return nil, apperrors.ErrDeckEmpty
	}
	cost := DeckDrawCost(s)
	if s.ActivePlayer().Coins < cost {
		return nil, apperrors.ErrInsufficientCoins
	}

	ns := s.Clone()
	p := ns.ActivePlayer()
	p.Coins -= cost
	for i := range ns.Market {
		if !p.HasToken(ns.Market[i].Card.Company) {
			ns.Market[i].Coins++
		}
	}

	drawn := ns.Deck[0]
	ns.Deck = ns.Deck[1:]
	p.Hand = append(p.Hand, drawn)

	ns.Phase = PhasePlay
	ns.Origin = TurnOrigin{Source: OriginDeck, CardID: drawn.ID}
	ns.appendLog("%s 花费 %d 金币从牌堆抽了一张牌。", p.Name, cost)
	ns.Version++
	return ns, nil
}

// ApplyTakeFromMarket 当前玩家免费拿走一个市场牌位，连同积累的利息。
// 持有该公司反垄断标记时禁止拿取。
func ApplyTakeFromMarket(s *GameState, slotIndex int) (*GameState, error) {
	if s.Phase != PhaseDraw {
		return nil, apperrors.ErrWrongPhase
	}
	if slotIndex < 0 || slotIndex >= len(s.Market) {
		return nil, apperrors.ErrInvalidSlot
	}
	if s.ActivePlayer().HasToken(s.Market[slotIndex].Card.Company) {
		return nil, apperrors.ErrTokenLocked
	}

	ns := s.Clone()
	p := ns.ActivePlayer()
	slot := ns.Market[slotIndex]
	ns.Market = append(ns.Market[:slotIndex], ns.Market[slotIndex+1:]...)
	p.Hand = append(p.Hand, slot.Card)
	p.Coins += slot.Coins

	ns.Phase = PhasePlay
	ns.Origin = TurnOrigin{Source: OriginMarket, CardID: slot.Card.ID}
	if slot.Coins > 0 {
		ns.appendLog("%s 从市场拿走了 %s，顺带收下 %d 金币利息。", p.Name, card.CnName(slot.Card.Company), slot.Coins)
	} else {
		ns.appendLog("%s 从市场拿走了 %s。", p.Name, card.CnName(slot.Card.Company))
	}
	ns.Version++
	return ns, nil
}

// ApplyPlayCard 当前玩家打出一张手牌：投资到面前或放入市场。
// 刚从市场拿的那张牌不允许原样放回市场。
// 出牌后重算反垄断标记并推进回合；无法行动的玩家会被跳过。
func ApplyPlayCard(s *GameState, cardID string, dest Destination) (*GameState, error) {
	if s.Phase != PhasePlay {
		return nil, apperrors.ErrWrongPhase
	}
	if dest == DestMarket && s.Origin.Source == OriginMarket && s.Origin.CardID == cardID {
		return nil, apperrors.ErrFlipBack
	}

	active := s.ActivePlayer()
	idx := -1
	for i, c := range active.Hand {
		if c.ID == cardID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, apperrors.ErrCardNotInHand
	}

	ns := s.Clone()
	p := ns.ActivePlayer()
	played := p.Hand[idx]
	p.Hand = append(p.Hand[:idx], p.Hand[idx+1:]...)

	switch dest {
	case DestMarket:
		ns.Market = append(ns.Market, MarketSlot{Card: played})
		ns.appendLog("%s 将 %s 放入市场。", p.Name, card.CnName(played.Company))
	default:
		p.Tableau = append(p.Tableau, played)
		ns.appendLog("%s 投资了 %s。", p.Name, card.CnName(played.Company))
	}

	recomputeTokens(ns)
	advanceTurn(ns)
	ns.Version++
	return ns, nil
}

// ForceFinish 房主强制结束对局，直接进入结算
func ForceFinish(s *GameState) (*GameState, error) {
	if s.Phase == PhaseScoring {
		return nil, apperrors.ErrWrongPhase
	}
	ns := s.Clone()
	ns.Phase = PhaseScoring
	ns.appendLog("房主强制结束了游戏，进入结算。")
	ns.Version++
	return ns, nil
}

// BeginScoring 亮牌进入结算，仅在对局打完后允许
func BeginScoring(s *GameState) (*GameState, error) {
	if s.Phase != PhaseReadyToScore {
		return nil, apperrors.ErrWrongPhase
	}
	ns := s.Clone()
	ns.Phase = PhaseScoring
	ns.appendLog("所有玩家亮出手牌，结算开始！")
	ns.Version++
	return ns, nil
}

// canAct 判断某个座位轮到时是否有任何合法动作：
// 付得起税且牌堆有牌，或市场上存在未被自己标记锁定的牌。
func canAct(s *GameState, seat int) bool {
	if len(s.Deck) > 0 && s.Players[seat].Coins >= deckDrawCostFor(s, seat) {
		return true
	}
	for _, slot := range s.Market {
		if !s.Players[seat].HasToken(slot.Card.Company) {
			return true
		}
	}
	return false
}

// advanceTurn 把回合推进到下一个能行动的座位。
// 牌堆和市场都空了，或所有人都无法行动时，对局打完等待结算。
func advanceTurn(s *GameState) {
	if len(s.Deck) == 0 && len(s.Market) == 0 {
		s.Phase = PhaseReadyToScore
		s.Origin = TurnOrigin{Source: OriginNone}
		s.appendLog("牌堆和市场均已清空！等待结算。")
		return
	}

	n := len(s.Players)
	for i := 1; i <= n; i++ {
		seat := (s.ActiveSeat + i) % n
		if !canAct(s, seat) {
			s.appendLog("%s 无法行动，跳过。", s.Players[seat].Name)
			continue
		}
		s.ActiveSeat = seat
		s.Phase = PhaseDraw
		s.Origin = TurnOrigin{Source: OriginNone}
		s.appendLog("轮到 %s 行动。", s.Players[seat].Name)
		return
	}

	s.Phase = PhaseReadyToScore
	s.Origin = TurnOrigin{Source: OriginNone}
	s.appendLog("所有玩家都无法行动！等待结算。")
}
