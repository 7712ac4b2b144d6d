package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/palemoky/startups/internal/game/engine"
	"github.com/palemoky/startups/internal/game/lobby"
)

const (
	// Redis key
	gameKey        = "startups:game"
	lobbyKey       = "startups:lobby"
	playerStatsKey = "startups:player:stats:"
	leaderboardKey = "startups:leaderboard:score"

	// 对局快照过期时间，主机重启后可在此窗口内恢复
	gameExpiration = 24 * time.Hour
)

// Store 主机侧 Redis 存储：对局快照用于主机重启恢复，
// 排行榜在结算时累计
type Store struct {
	client *redis.Client
}

// NewStore 创建存储
func NewStore(client *redis.Client) *Store {
	return &Store{client: client}
}

// --- 对局快照 ---

// SaveGame 保存权威对局状态快照
func (s *Store) SaveGame(ctx context.Context, state *engine.GameState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("序列化对局状态失败: %w", err)
	}
	return s.client.Set(ctx, gameKey, data, gameExpiration).Err()
}

// LoadGame 加载对局快照，不存在时返回 nil
func (s *Store) LoadGame(ctx context.Context) (*engine.GameState, error) {
	data, err := s.client.Get(ctx, gameKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var state engine.GameState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("反序列化对局状态失败: %w", err)
	}
	return &state, nil
}

// DeleteGame 删除对局快照
func (s *Store) DeleteGame(ctx context.Context) error {
	return s.client.Del(ctx, gameKey).Err()
}

// --- 大厅快照 ---

// SaveLobby 保存大厅名单
func (s *Store) SaveLobby(ctx context.Context, entries []lobby.Entry) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("序列化大厅名单失败: %w", err)
	}
	return s.client.Set(ctx, lobbyKey, data, gameExpiration).Err()
}

// LoadLobby 加载大厅名单，不存在时返回 nil
func (s *Store) LoadLobby(ctx context.Context) ([]lobby.Entry, error) {
	data, err := s.client.Get(ctx, lobbyKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var entries []lobby.Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("反序列化大厅名单失败: %w", err)
	}
	return entries, nil
}

// --- 排行榜 ---

// PlayerStats 玩家累计战绩
type PlayerStats struct {
	PlayerID     string `json:"player_id"`
	PlayerName   string `json:"player_name"`
	TotalGames   int    `json:"total_games"`
	Wins         int    `json:"wins"` // 排名第一的场次
	TotalScore   int    `json:"total_score"`
	BestScore    int    `json:"best_score"`
	LastPlayedAt int64  `json:"last_played_at"`
	CreatedAt    int64  `json:"created_at"`
}

// LeaderboardEntry 排行榜条目
type LeaderboardEntry struct {
	Rank       int    `json:"rank"`
	PlayerID   string `json:"player_id"`
	PlayerName string `json:"player_name"`
	TotalScore int    `json:"total_score"`
	Wins       int    `json:"wins"`
}

// GetPlayerStats 获取玩家战绩，不存在时返回 nil
func (s *Store) GetPlayerStats(ctx context.Context, playerID string) (*PlayerStats, error) {
	data, err := s.client.Get(ctx, playerStatsKey+playerID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var stats PlayerStats
	if err := json.Unmarshal(data, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// SavePlayerStats 保存玩家战绩
func (s *Store) SavePlayerStats(ctx context.Context, stats *PlayerStats) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, playerStatsKey+stats.PlayerID, data, 0).Err()
}

// RecordResult 结算时把一局的最终排名写入战绩与排行榜
func (s *Store) RecordResult(ctx context.Context, stats *engine.FinalStats) error {
	now := time.Now().Unix()
	for _, row := range stats.Rankings {
		ps, err := s.GetPlayerStats(ctx, row.PersistentID)
		if err != nil {
			return err
		}
		if ps == nil {
			ps = &PlayerStats{
				PlayerID:   row.PersistentID,
				PlayerName: row.Name,
				CreatedAt:  now,
			}
		}

		ps.PlayerName = row.Name
		ps.TotalGames++
		ps.TotalScore += row.Score
		if row.Rank == 1 {
			ps.Wins++
		}
		if row.Score > ps.BestScore {
			ps.BestScore = row.Score
		}
		ps.LastPlayedAt = now

		if err := s.SavePlayerStats(ctx, ps); err != nil {
			return err
		}
		if err := s.client.ZAdd(ctx, leaderboardKey, redis.Z{
			Score:  float64(ps.TotalScore),
			Member: ps.PlayerID,
		}).Err(); err != nil {
			return err
		}
	}
	return nil
}

// GetLeaderboard 获取累计积分排行榜（从高到低）
func (s *Store) GetLeaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	results, err := s.client.ZRevRangeWithScores(ctx, leaderboardKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]LeaderboardEntry, 0, len(results))
	for i, result := range results {
		playerID, _ := result.Member.(string)
		stats, err := s.GetPlayerStats(ctx, playerID)
		if err != nil || stats == nil {
			continue
		}
		entries = append(entries, LeaderboardEntry{
			Rank:       i + 1,
			PlayerID:   playerID,
			PlayerName: stats.PlayerName,
			TotalScore: int(result.Score),
			Wins:       stats.Wins,
		})
	}
	return entries, nil
}
