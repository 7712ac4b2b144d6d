package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/startups/internal/game/card"
)

func TestRecomputeTokensUniqueLeader(t *testing.T) {
	s := testState(3)
	s.Players[0].Tableau = []card.Card{cardOf(card.Dog, 0), cardOf(card.Dog, 1)}
	s.Players[1].Tableau = []card.Card{cardOf(card.Dog, 2)}

	next := RecomputeTokens(s)

	assert.True(t, next.Players[0].HasToken(card.Dog))
	assert.False(t, next.Players[1].HasToken(card.Dog))
	assert.Equal(t, s.Version, next.Version)
}

func TestRecomputeTokensTieKeepsIncumbent(t *testing.T) {
	s := testState(3)
	s.Players[0].Tableau = []card.Card{cardOf(card.Dog, 0)}
	s.Players[1].Tableau = []card.Card{cardOf(card.Dog, 1)}
	s.Players[1].Tokens = []card.Company{card.Dog}

	next := RecomputeTokens(s)

	assert.False(t, next.Players[0].HasToken(card.Dog))
	assert.True(t, next.Players[1].HasToken(card.Dog))
}

func TestRecomputeTokensTieWithoutIncumbent(t *testing.T) {
	s := testState(3)
	s.Players[0].Tableau = []card.Card{cardOf(card.Dog, 0)}
	s.Players[1].Tableau = []card.Card{cardOf(card.Dog, 1)}

	next := RecomputeTokens(s)

	for _, p := range next.Players {
		assert.False(t, p.HasToken(card.Dog))
	}
}

func TestRecomputeTokensDropsLostMajority(t *testing.T) {
	s := testState(3)
	s.Players[0].Tokens = []card.Company{card.Dog}
	s.Players[0].Tableau = []card.Card{cardOf(card.Dog, 0)}
	s.Players[1].Tableau = []card.Card{cardOf(card.Dog, 1), cardOf(card.Dog, 2)}

	next := RecomputeTokens(s)

	assert.False(t, next.Players[0].HasToken(card.Dog))
	assert.True(t, next.Players[1].HasToken(card.Dog))
}

func TestFinalizeScoresCountsHandAndTableau(t *testing.T) {
	s := testState(3)
	s.Players[0].Tableau = []card.Card{cardOf(card.Dog, 0)}
	s.Players[0].Hand = []card.Card{cardOf(card.Dog, 1)}
	s.Players[1].Hand = []card.Card{cardOf(card.Dog, 2)}

	stats := FinalizeScores(s.Players)

	var dog CompanyResult
	for _, cr := range stats.Companies {
		if cr.Company == card.Dog {
			dog = cr
		}
	}
	require.Equal(t, 0, dog.WinnerSeat)
	require.Len(t, dog.Holdings, 2)
	assert.Equal(t, 2, dog.Holdings[0].Count)
	assert.Equal(t, 1, dog.Holdings[1].Count)
}

func TestFinalizeScoresPaymentsAndChips(t *testing.T) {
	s := testState(3)
	// seat 0 monopolizes DOG, seats 1 and 2 hold 2 and 1 shares
	s.Players[0].Tableau = []card.Card{cardOf(card.Dog, 0), cardOf(card.Dog, 1), cardOf(card.Dog, 2)}
	s.Players[1].Hand = []card.Card{cardOf(card.Dog, 3), cardOf(card.Dog, 4)}
	s.Players[2].Tableau = []card.Card{cardOf(card.Dog, 5)}

	stats := FinalizeScores(s.Players)

	rows := make(map[int]ScoreRow)
	for _, r := range stats.Rankings {
		rows[r.Seat] = r
	}

	// winner keeps 10 coins, earns 3 chips worth 9 points
	assert.Equal(t, 10, rows[0].Coins)
	assert.Equal(t, 3, rows[0].Chips)
	assert.Equal(t, 19, rows[0].Score)
	assert.Equal(t, 1, rows[0].Rank)

	assert.Equal(t, 8, rows[1].Coins)
	assert.Equal(t, 9, rows[2].Coins)
}

func TestFinalizeScoresTieMeansNoMonopoly(t *testing.T) {
	s := testState(3)
	s.Players[0].Hand = []card.Card{cardOf(card.Hippo, 0)}
	s.Players[1].Hand = []card.Card{cardOf(card.Hippo, 1)}
	// an in-game token does not break a settlement tie
	s.Players[0].Tokens = []card.Company{card.Hippo}

	stats := FinalizeScores(s.Players)

	for _, cr := range stats.Companies {
		if cr.Company == card.Hippo {
			assert.Equal(t, -1, cr.WinnerSeat)
		}
	}
	for _, r := range stats.Rankings {
		assert.Equal(t, 10, r.Coins)
		assert.Equal(t, 0, r.Chips)
	}
}

func TestFinalizeScoresAllowsNegativeCoins(t *testing.T) {
	s := testState(3)
	s.Players[0].Tableau = []card.Card{cardOf(card.Elephant, 0), cardOf(card.Elephant, 1), cardOf(card.Elephant, 2), cardOf(card.Elephant, 3)}
	s.Players[1].Coins = 2
	s.Players[1].Hand = []card.Card{cardOf(card.Elephant, 4), cardOf(card.Elephant, 5), cardOf(card.Elephant, 6)}

	stats := FinalizeScores(s.Players)

	for _, r := range stats.Rankings {
		if r.Seat == 1 {
			assert.Equal(t, -1, r.Coins)
		}
	}
}

func TestFinalizeScoresCompetitionRanking(t *testing.T) {
	s := testState(4)
	// seats 0 and 1 tie on score, seat 2 trails
	s.Players[2].Coins = 4
	s.Players[3].Coins = 4

	stats := FinalizeScores(s.Players)

	assert.Equal(t, 1, stats.Rankings[0].Rank)
	assert.Equal(t, 1, stats.Rankings[1].Rank)
	assert.Equal(t, 3, stats.Rankings[2].Rank)
	assert.Equal(t, 3, stats.Rankings[3].Rank)
}

func TestFinalizeScoresDoesNotMutateInput(t *testing.T) {
	s := testState(3)
	s.Players[0].Tableau = []card.Card{cardOf(card.Dog, 0), cardOf(card.Dog, 1)}
	s.Players[1].Hand = []card.Card{cardOf(card.Dog, 2)}

	_ = FinalizeScores(s.Players)

	assert.Equal(t, 10, s.Players[1].Coins)
	assert.Equal(t, 0, s.Players[0].EarnedChips)
}
