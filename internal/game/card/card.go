package card

import (
	"fmt"
	"math/rand/v2"
)

// Company 定义六家创业公司
type Company string

const (
	Giraffe  Company = "GIRAFFE"  // 长颈鹿啤酒
	Flamingo Company = "FLAMINGO" // 火烈鸟软件
	Dog      Company = "DOG"      // 汪汪游戏
	Octopus  Company = "OCTOPUS"  // 章鱼咖啡
	Hippo    Company = "HIPPO"    // 河马电力
	Elephant Company = "ELEPHANT" // 大象火星
)

// Companies 按稀有度排列的公司列表（牌数越少越稀有）
var Companies = []Company{Giraffe, Flamingo, Dog, Octopus, Hippo, Elephant}

// Config 公司配置
type Config struct {
	Company Company
	Total   int    // 该公司的股份牌总数
	Label   string // 英文名
	CnLabel string // 中文名
	Icon    string
}

// Configs 公司配置表，牌数分布固定为 5/6/7/8/9/10
var Configs = map[Company]Config{
	Giraffe:  {Company: Giraffe, Total: 5, Label: "Giraffe Beer", CnLabel: "长颈鹿啤酒", Icon: "🦒"},
	Flamingo: {Company: Flamingo, Total: 6, Label: "Flamingo Soft", CnLabel: "火烈鸟软件", Icon: "🦩"},
	Dog:      {Company: Dog, Total: 7, Label: "BowWow Games", CnLabel: "汪汪游戏", Icon: "🐕"},
	Octopus:  {Company: Octopus, Total: 8, Label: "Octo Coffee", CnLabel: "章鱼咖啡", Icon: "🐙"},
	Hippo:    {Company: Hippo, Total: 9, Label: "Hippo Power", CnLabel: "河马电力", Icon: "🦛"},
	Elephant: {Company: Elephant, Total: 10, Label: "Elephant Mars", CnLabel: "大象火星", Icon: "🐘"},
}

const (
	// TotalCards 全部牌数
	TotalCards = 45
	// RemovedAtSetup 开局永久移除的牌数
	RemovedAtSetup = 5
	// HandSize 起始手牌数
	HandSize = 3
	// StartingCoins 起始资金
	StartingCoins = 10
)

// CnName 返回公司中文名
func CnName(c Company) string {
	if cfg, ok := Configs[c]; ok {
		return cfg.CnLabel
	}
	return "未知"
}

// Card 定义一张股份牌
type Card struct {
	ID      string  `json:"id"` // 全牌库唯一，如 GIRAFFE-0
	Company Company `json:"company"`
}

// Deck 定义一副牌
type Deck []Card

// NewDeck 按配置表构造整副 45 张牌
func NewDeck() Deck {
	deck := make(Deck, 0, TotalCards)
	for _, company := range Companies {
		cfg := Configs[company]
		for i := 0; i < cfg.Total; i++ {
			deck = append(deck, Card{
				ID:      fmt.Sprintf("%s-%d", company, i),
				Company: company,
			})
		}
	}
	return deck
}

// Shuffle 洗牌
func (d Deck) Shuffle() {
	rand.Shuffle(len(d), func(i, j int) {
		d[i], d[j] = d[j], d[i]
	})
}

// BuildShuffledDeck 构造并洗好一副牌
func BuildShuffledDeck() Deck {
	deck := NewDeck()
	deck.Shuffle()
	return deck
}
