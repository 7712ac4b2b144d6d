//go:build !production

// Package testutil 提供测试用的确定性局面构造器
package testutil

import (
	"fmt"
	"time"

	"github.com/palemoky/startups/internal/game/card"
	"github.com/palemoky/startups/internal/game/engine"
	"github.com/palemoky/startups/internal/game/lobby"
)

// BuildRoster 构造 n 人名单，第一个为房主
func BuildRoster(n int) []lobby.Entry {
	entries := make([]lobby.Entry, n)
	for i := 0; i < n; i++ {
		entries[i] = lobby.Entry{
			NetworkID:    fmt.Sprintf("net-%d", i),
			PersistentID: fmt.Sprintf("pid-%d", i),
			Name:         fmt.Sprintf("玩家%d", i),
			IsHost:       i == 0,
			JoinedAt:     time.Now(),
		}
	}
	return entries
}

// NewPlayer 构造一名空手玩家
func NewPlayer(seat int, name string) engine.Player {
	return engine.Player{
		Seat:         seat,
		NetworkID:    fmt.Sprintf("net-%d", seat),
		PersistentID: fmt.Sprintf("pid-%d", seat),
		Name:         name,
		Hand:         []card.Card{},
		Tableau:      []card.Card{},
		Coins:        card.StartingCoins,
		Tokens:       []card.Company{},
	}
}

// CardOf 构造某公司的第 idx 张牌
func CardOf(company card.Company, idx int) card.Card {
	return card.Card{
		ID:      fmt.Sprintf("%s-%d", company, idx),
		Company: company,
	}
}

// CardsOf 构造某公司的连续 n 张牌
func CardsOf(company card.Company, n int) []card.Card {
	cards := make([]card.Card, n)
	for i := 0; i < n; i++ {
		cards[i] = CardOf(company, i)
	}
	return cards
}

// BuildGameState 构造 n 人确定性对局：空市场、整副剩余牌堆、0 号先行动
func BuildGameState(n int) *engine.GameState {
	players := make([]engine.Player, n)
	for i := 0; i < n; i++ {
		players[i] = NewPlayer(i, fmt.Sprintf("玩家%d", i))
	}
	return &engine.GameState{
		Version:    1,
		Players:    players,
		Deck:       card.NewDeck(),
		Market:     []engine.MarketSlot{},
		ActiveSeat: 0,
		Phase:      engine.PhaseDraw,
		Origin:     engine.TurnOrigin{Source: engine.OriginNone},
		Logs:       []string{},
	}
}
