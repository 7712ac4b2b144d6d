package advisor

import (
	"context"
	"fmt"
	"strings"

	"github.com/palemoky/startups/internal/game/card"
	"github.com/palemoky/startups/internal/game/engine"
)

// Fallback 顾问不可用时返回的兜底建议
const Fallback = "顾问暂时联系不上。先看看市场：优先拿能帮你凑成多数的公司，付税前算算账。"

// Provider 根据当前局面为某个座位生成一句投资建议。
// 顾问只读局面，永远不会修改对局状态。
type Provider interface {
	Advise(ctx context.Context, state *engine.GameState, seat int) (string, error)
}

// buildPrompt 把座位视角的局面摘要成提示词。
// 只暴露该玩家自己的手牌，其余玩家只给公开信息。
func buildPrompt(state *engine.GameState, seat int) string {
	var b strings.Builder
	me := &state.Players[seat]

	b.WriteString("你是桌游《Startups》的投资顾问。规则要点：从牌堆抽牌要为每个市场牌位付 1 金币税，" +
		"持有某公司反垄断标记则该公司牌位免税、但不能再从市场拿该公司的牌；" +
		"投资区同公司数量唯一最多者获得标记；结算时每家公司持股唯一最多者胜出。\n\n")

	fmt.Fprintf(&b, "我的手牌: %s\n", describeCards(me.Hand))
	fmt.Fprintf(&b, "我的投资: %s\n", describeCards(me.Tableau))
	fmt.Fprintf(&b, "我的金币: %d，持有标记: %s\n", me.Coins, describeTokens(me.Tokens))

	b.WriteString("市场: ")
	if len(state.Market) == 0 {
		b.WriteString("空")
	}
	for i, slot := range state.Market {
		if i > 0 {
			b.WriteString("、")
		}
		fmt.Fprintf(&b, "%s(利息%d)", card.CnName(slot.Card.Company), slot.Coins)
	}
	b.WriteString("\n")

	for i := range state.Players {
		if i == seat {
			continue
		}
		p := &state.Players[i]
		fmt.Fprintf(&b, "对手 %s：投资 %s，手牌 %d 张，标记 %s\n",
			p.Name, describeCards(p.Tableau), len(p.Hand), describeTokens(p.Tokens))
	}

	fmt.Fprintf(&b, "牌堆剩余 %d 张。请用一两句中文给出本回合的行动建议。", len(state.Deck))
	return b.String()
}

func describeCards(cards []card.Card) string {
	if len(cards) == 0 {
		return "无"
	}
	counts := map[card.Company]int{}
	for _, c := range cards {
		counts[c.Company]++
	}
	var parts []string
	for _, company := range card.Companies {
		if n := counts[company]; n > 0 {
			parts = append(parts, fmt.Sprintf("%s x%d", card.CnName(company), n))
		}
	}
	return strings.Join(parts, "、")
}

func describeTokens(tokens []card.Company) string {
	if len(tokens) == 0 {
		return "无"
	}
	var parts []string
	for _, t := range tokens {
		parts = append(parts, card.CnName(t))
	}
	return strings.Join(parts, "、")
}
