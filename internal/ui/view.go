package ui

import (
	"fmt"
	"strings"

	"github.com/palemoky/startups/internal/game/card"
	"github.com/palemoky/startups/internal/game/engine"
)

// View 实现 tea.Model
func (m *Model) View() string {
	var body string
	switch m.phase {
	case PhaseLogin:
		body = m.viewLogin()
	case PhaseConnecting:
		body = m.status
	case PhaseLobby:
		body = m.viewLobby()
	case PhaseGame:
		body = m.viewGame()
	case PhaseScoring:
		body = m.viewScoring()
	}

	var footer []string
	if m.status != "" {
		footer = append(footer, dimStyle.Render(m.status))
	}
	if m.advice != "" {
		footer = append(footer, adviceStyle.Render("💡 "+m.advice))
	}
	if m.errMsg != "" {
		footer = append(footer, errorStyle.Render("⚠ "+m.errMsg))
	}
	if len(footer) > 0 {
		body += "\n\n" + strings.Join(footer, "\n")
	}
	return docStyle.Render(body)
}

func (m *Model) viewLogin() string {
	return titleStyle("🚀 创业公司") + "\n\n" + m.input.View() + "\n\n" + dimStyle.Render("回车连接服务器 · ctrl+c 退出")
}

func (m *Model) viewLobby() string {
	var b strings.Builder
	b.WriteString(titleStyle("🛋 大厅") + "\n\n")
	for i, e := range m.roster {
		line := fmt.Sprintf("%d. %s", i+1, e.Name)
		if e.IsHost {
			line = hostStyle.Render(line + " 👑")
		}
		if e.PersistentID == m.prefs.PersistentID {
			line += dimStyle.Render("（你）")
		}
		b.WriteString(line + "\n")
	}
	b.WriteString("\n" + dimStyle.Render(fmt.Sprintf("%d 人在大厅，3-6 人可开局", len(m.roster))))
	if m.isHost() {
		b.WriteString("\n" + dimStyle.Render("g 开始游戏 · q 退出"))
	} else {
		b.WriteString("\n" + dimStyle.Render("等待房主开始 · q 退出"))
	}
	return b.String()
}

func (m *Model) viewGame() string {
	state := m.state()
	if state == nil {
		return "等待对局状态..."
	}

	var b strings.Builder
	b.WriteString(titleStyle("🚀 创业公司") +
		dimStyle.Render(fmt.Sprintf("  牌堆 %d 张 · 版本 %d", len(state.Deck), state.Version)) + "\n\n")

	// 市场
	b.WriteString("市场: ")
	if len(state.Market) == 0 {
		b.WriteString(dimStyle.Render("（空）"))
	}
	for i, slot := range state.Market {
		cfg := card.Configs[slot.Card.Company]
		entry := fmt.Sprintf("[%d]%s%s", i+1, cfg.Icon, cfg.CnLabel)
		if slot.Coins > 0 {
			entry += fmt.Sprintf("+%d💰", slot.Coins)
		}
		if i > 0 {
			b.WriteString("  ")
		}
		b.WriteString(entry)
	}
	b.WriteString("\n\n")

	// 各玩家
	mySeat := m.mySeat()
	for i := range state.Players {
		p := &state.Players[i]
		name := p.Name
		if p.IsHost {
			name += " 👑"
		}
		if i == state.ActiveSeat {
			name = activeStyle.Render("▶ " + name)
		} else {
			name = "  " + name
		}
		line := fmt.Sprintf("%s  💰%d  手牌 %d 张", name, p.Coins, len(p.Hand))
		if len(p.Tokens) > 0 {
			var icons []string
			for _, t := range p.Tokens {
				icons = append(icons, card.Configs[t].Icon)
			}
			line += "  🚫" + strings.Join(icons, "")
		}
		b.WriteString(line + "\n")
		if len(p.Tableau) > 0 {
			b.WriteString("    投资: " + companyLine(p.Tableau) + "\n")
		}
	}

	// 自己的手牌
	if mySeat >= 0 {
		b.WriteString("\n我的手牌: ")
		for i, c := range state.Players[mySeat].Hand {
			cfg := card.Configs[c.Company]
			entry := fmt.Sprintf("[%d]%s%s", i+1, cfg.Icon, cfg.CnLabel)
			if i == m.selected {
				entry = activeStyle.Render(entry)
			}
			if i > 0 {
				b.WriteString("  ")
			}
			b.WriteString(entry)
		}
		b.WriteString("\n")
	}

	// 日志尾部
	if n := len(state.Logs); n > 0 {
		b.WriteString("\n")
		start := n - 4
		if start < 0 {
			start = 0
		}
		for _, line := range state.Logs[start:] {
			b.WriteString(dimStyle.Render("· "+line) + "\n")
		}
	}

	b.WriteString("\n" + m.gameHelp(state))
	return boxStyle.Render(b.String())
}

// gameHelp 按局面给出可用按键
func (m *Model) gameHelp(state *engine.GameState) string {
	if state.Phase == engine.PhaseReadyToScore {
		help := "r 亮牌结算"
		if m.isHost() {
			help += " · f 强制结束"
		}
		return dimStyle.Render(help + " · a 问顾问 · y 对齐状态")
	}
	if !m.isMyTurn() {
		return dimStyle.Render("等待 " + state.ActivePlayer().Name + " 行动 · a 问顾问 · y 对齐状态")
	}
	switch state.Phase {
	case engine.PhaseDraw:
		cost := engine.DeckDrawCost(state)
		return dimStyle.Render(fmt.Sprintf("d 抽牌堆(税 %d💰) · 数字键拿市场牌 · a 问顾问", cost))
	case engine.PhasePlay:
		return dimStyle.Render("数字键选手牌 → t 投资 / m 放入市场 · a 问顾问")
	}
	return ""
}

func (m *Model) viewScoring() string {
	var b strings.Builder
	b.WriteString(titleStyle("🏁 结算") + "\n\n")

	if m.stats != nil {
		for _, row := range m.stats.Rankings {
			medal := fmt.Sprintf("%d.", row.Rank)
			if row.Rank == 1 {
				medal = "🏆"
			}
			b.WriteString(fmt.Sprintf("%s %s  %d 分  （💰%d + 🪙%d×3）\n",
				medal, row.Name, row.Score, row.Coins, row.Chips))
		}
		b.WriteString("\n")
		for _, cr := range m.stats.Companies {
			cfg := card.Configs[cr.Company]
			line := cfg.Icon + cfg.CnLabel + ": "
			if cr.WinnerSeat >= 0 {
				winner := ""
				for _, h := range cr.Holdings {
					if h.Seat == cr.WinnerSeat {
						winner = h.Name
						break
					}
				}
				line += activeStyle.Render(winner + " 垄断")
			} else if len(cr.Holdings) > 0 {
				line += dimStyle.Render("无人垄断")
			} else {
				line += dimStyle.Render("无人持股")
			}
			b.WriteString(line + "\n")
		}
	}

	if m.isHost() {
		b.WriteString("\n" + dimStyle.Render("g 再来一局 · q 退出"))
	} else {
		b.WriteString("\n" + dimStyle.Render("q 退出"))
	}
	return b.String()
}

// companyLine 把一组牌按公司聚合成一行
func companyLine(cards []card.Card) string {
	counts := map[card.Company]int{}
	for _, c := range cards {
		counts[c.Company]++
	}
	var parts []string
	for _, company := range card.Companies {
		if n := counts[company]; n > 0 {
			parts = append(parts, fmt.Sprintf("%s×%d", card.Configs[company].Icon, n))
		}
	}
	return strings.Join(parts, " ")
}
