package engine

import (
	"fmt"
	"sort"

	"github.com/palemoky/startups/internal/game/card"
)

// recomputeTokens 重算所有反垄断标记，只统计已投资（公开）的牌。
// 每家公司至多一名持有者：投资数唯一最多者得标记；
// 平局时原持有者保留，无原持有者的平局则标记空悬。
func recomputeTokens(s *GameState) {
	next := make([][]card.Company, len(s.Players))
	for i := range next {
		next[i] = []card.Company{}
	}

	for _, company := range card.Companies {
		max, incumbent := 0, -1
		counts := make([]int, len(s.Players))
		for i := range s.Players {
			if s.Players[i].HasToken(company) {
				incumbent = i
			}
			for _, c := range s.Players[i].Tableau {
				if c.Company == company {
					counts[i]++
				}
			}
			if counts[i] > max {
				max = counts[i]
			}
		}
		if max == 0 {
			continue
		}

		var leaders []int
		for i, n := range counts {
			if n == max {
				leaders = append(leaders, i)
			}
		}

		winner := -1
		if len(leaders) == 1 {
			winner = leaders[0]
		} else {
			for _, seat := range leaders {
				if seat == incumbent {
					winner = incumbent
					break
				}
			}
		}
		if winner >= 0 {
			next[winner] = append(next[winner], company)
		}
	}

	for i := range s.Players {
		s.Players[i].Tokens = next[i]
	}
}

// RecomputeTokens 纯函数版本：返回重算标记后的新状态，不修改输入
func RecomputeTokens(s *GameState) *GameState {
	ns := s.Clone()
	recomputeTokens(ns)
	return ns
}

// Holding 结算时某玩家在一家公司的持股数
type Holding struct {
	Seat  int    `json:"seat"`
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// CompanyResult 一家公司的结算结果。WinnerSeat 为 -1 表示无人垄断（含平局）。
type CompanyResult struct {
	Company    card.Company `json:"company"`
	WinnerSeat int          `json:"winner_seat"`
	Holdings   []Holding    `json:"holdings"`
}

// ScoreRow 一名玩家的最终得分
type ScoreRow struct {
	Seat         int      `json:"seat"`
	PersistentID string   `json:"persistent_id"`
	Name         string   `json:"name"`
	Coins        int      `json:"coins"`
	Chips        int      `json:"chips"`
	Score        int      `json:"score"`
	Rank         int      `json:"rank"`
	Details      []string `json:"details"`
}

// FinalStats 结算总表
type FinalStats struct {
	Companies []CompanyResult `json:"companies"`
	Rankings  []ScoreRow      `json:"rankings"`
}

// FinalizeScores 结算：手牌与投资区合并计入持股。
// 每家公司持股唯一最多者为垄断者，其余持股人每股付 1 金币，
// 垄断者每股收 1 枚收益筹码（值 3 分）；平局则该公司无人垄断、无人付款。
// 注意结算平局与对局中的标记归属规则不同，不做在位者保留。
// 总分 = 金币 + 收益筹码 × 3。付款可能令金币为负，按原值展示。
func FinalizeScores(players []Player) *FinalStats {
	work := make([]Player, len(players))
	for i := range players {
		work[i] = players[i].clone()
	}

	stats := &FinalStats{}
	for _, company := range card.Companies {
		counts := make([]int, len(work))
		max := 0
		for i := range work {
			for _, c := range work[i].Tableau {
				if c.Company == company {
					counts[i]++
				}
			}
			for _, c := range work[i].Hand {
				if c.Company == company {
					counts[i]++
				}
			}
			if counts[i] > max {
				max = counts[i]
			}
		}

		result := CompanyResult{Company: company, WinnerSeat: -1}
		for i, n := range counts {
			if n > 0 {
				result.Holdings = append(result.Holdings, Holding{Seat: i, Name: work[i].Name, Count: n})
			}
		}
		sort.SliceStable(result.Holdings, func(a, b int) bool {
			return result.Holdings[a].Count > result.Holdings[b].Count
		})

		if max > 0 {
			leaders := 0
			winner := -1
			for i, n := range counts {
				if n == max {
					leaders++
					winner = i
				}
			}
			if leaders == 1 {
				result.WinnerSeat = winner
				for i, n := range counts {
					if i != winner && n > 0 {
						work[i].Coins -= n
						work[winner].EarnedChips += n
					}
				}
			}
		}
		stats.Companies = append(stats.Companies, result)
	}

	for i := range work {
		p := &work[i]
		score := p.Coins + p.EarnedChips*3
		stats.Rankings = append(stats.Rankings, ScoreRow{
			Seat:         p.Seat,
			PersistentID: p.PersistentID,
			Name:         p.Name,
			Coins:        p.Coins,
			Chips:        p.EarnedChips,
			Score:        score,
			Details: []string{
				fmt.Sprintf("资金: %d 分", p.Coins),
				fmt.Sprintf("收益筹码: %d 枚（x3 = %d 分）", p.EarnedChips, p.EarnedChips*3),
			},
		})
	}
	sort.SliceStable(stats.Rankings, func(a, b int) bool {
		if stats.Rankings[a].Score != stats.Rankings[b].Score {
			return stats.Rankings[a].Score > stats.Rankings[b].Score
		}
		return stats.Rankings[a].Seat < stats.Rankings[b].Seat
	})
	for i := range stats.Rankings {
		if i > 0 && stats.Rankings[i].Score == stats.Rankings[i-1].Score {
			stats.Rankings[i].Rank = stats.Rankings[i-1].Rank
		} else {
			stats.Rankings[i].Rank = i + 1
		}
	}
	return stats
}
