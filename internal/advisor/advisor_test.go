package advisor

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/startups/internal/apperrors"
	"github.com/palemoky/startups/internal/game/card"
	"github.com/palemoky/startups/internal/testutil"
)

func TestAdviseRequiresAPIKey(t *testing.T) {
	p := NewOpenAIProvider("", "https://example.invalid", "test-model", time.Second)

	_, err := p.Advise(context.Background(), testutil.BuildGameState(3), 0)
	assert.ErrorIs(t, err, apperrors.ErrAdvisorUnavailable)
}

func TestAdviseRejectsBadSeat(t *testing.T) {
	p := NewOpenAIProvider("key", "https://example.invalid", "test-model", time.Second)

	_, err := p.Advise(context.Background(), testutil.BuildGameState(3), 7)
	assert.ErrorIs(t, err, apperrors.ErrInvalidMessage)
}

func TestAdviseCallsChatCompletions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-model", req.Model)
		require.Len(t, req.Messages, 1)

		_ = json.NewEncoder(w).Encode(chatResponse{
			Choices: []struct {
				Message chatMessage `json:"message"`
			}{
				{Message: chatMessage{Role: "assistant", Content: "  先从市场拿长颈鹿啤酒。\n"}},
			},
		})
	}))
	defer srv.Close()

	p := NewOpenAIProvider("test-key", srv.URL, "test-model", 2*time.Second)
	text, err := p.Advise(context.Background(), testutil.BuildGameState(3), 0)
	require.NoError(t, err)
	assert.Equal(t, "先从市场拿长颈鹿啤酒。", text)
}

func TestAdviseNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	p := NewOpenAIProvider("test-key", srv.URL, "test-model", 2*time.Second)
	_, err := p.Advise(context.Background(), testutil.BuildGameState(3), 0)
	assert.Error(t, err)
}

func TestAdviseEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	p := NewOpenAIProvider("test-key", srv.URL, "test-model", 2*time.Second)
	_, err := p.Advise(context.Background(), testutil.BuildGameState(3), 0)
	assert.Error(t, err)
}

func TestBuildPromptHidesOpponentHands(t *testing.T) {
	state := testutil.BuildGameState(3)
	state.Players[0].Hand = testutil.CardsOf(card.Giraffe, 2)
	state.Players[1].Hand = testutil.CardsOf(card.Elephant, 3)
	state.Players[1].Name = "对手乙"

	prompt := buildPrompt(state, 0)

	assert.Contains(t, prompt, "长颈鹿啤酒 x2")
	assert.Contains(t, prompt, "手牌 3 张")
	assert.NotContains(t, prompt, card.CnName(card.Elephant)+" x3")
}

func TestDescribeCards(t *testing.T) {
	assert.Equal(t, "无", describeCards(nil))

	cards := append(testutil.CardsOf(card.Dog, 2), testutil.CardOf(card.Giraffe, 0))
	// grouped and ordered by company rarity
	assert.Equal(t, "长颈鹿啤酒 x1、汪汪游戏 x2", describeCards(cards))
}
