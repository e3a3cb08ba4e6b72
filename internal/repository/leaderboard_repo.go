package repository

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// LeaderboardStore keeps one sorted set per board: bithra:lb:<board>.
type LeaderboardStore struct {
	client *redis.Client
	prefix string
}

func NewLeaderboardStore(client *redis.Client, prefix string) *LeaderboardStore {
	return &LeaderboardStore{client: client, prefix: prefix}
}

func (s *LeaderboardStore) key(board string) string {
	return s.prefix + "lb:" + board
}

func (s *LeaderboardStore) Incr(ctx context.Context, board string, userID uint, delta int64) error {
	return s.client.ZIncrBy(ctx, s.key(board), float64(delta), strconv.FormatUint(uint64(userID), 10)).Err()
}

// Top returns the highest scores first.
func (s *LeaderboardStore) Top(ctx context.Context, board string, limit int) ([]ScoreRow, error) {
	if limit <= 0 {
		return []ScoreRow{}, nil
	}
	zs, err := s.client.ZRevRangeWithScores(ctx, s.key(board), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("leaderboard top: %w", err)
	}
	rows := make([]ScoreRow, 0, len(zs))
	for _, z := range zs {
		member, _ := z.Member.(string)
		id, err := strconv.ParseUint(member, 10, 64)
		if err != nil {
			continue
		}
		rows = append(rows, ScoreRow{UserID: uint(id), Score: int64(z.Score)})
	}
	return rows, nil
}

// Rank returns the 1-based rank and score; rank 0 means the user is not on the board.
func (s *LeaderboardStore) Rank(ctx context.Context, board string, userID uint) (int64, int64, error) {
	member := strconv.FormatUint(uint64(userID), 10)
	rank, err := s.client.ZRevRank(ctx, s.key(board), member).Result()
	if err == redis.Nil {
		return 0, 0, nil
	}
	if err != nil {
		return 0, 0, fmt.Errorf("leaderboard rank: %w", err)
	}
	score, err := s.client.ZScore(ctx, s.key(board), member).Result()
	if err != nil {
		return 0, 0, fmt.Errorf("leaderboard score: %w", err)
	}
	return rank + 1, int64(score), nil
}

// Replace swaps the board contents for rows atomically.
func (s *LeaderboardStore) Replace(ctx context.Context, board string, rows []ScoreRow) error {
	tmp := s.key(board) + ":rebuild"
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, tmp)
	if len(rows) > 0 {
		members := make([]redis.Z, 0, len(rows))
		for _, r := range rows {
			members = append(members, redis.Z{Score: float64(r.Score), Member: strconv.FormatUint(uint64(r.UserID), 10)})
		}
		pipe.ZAdd(ctx, tmp, members...)
		pipe.Rename(ctx, tmp, s.key(board))
	} else {
		pipe.Del(ctx, s.key(board))
	}
	_, err := pipe.Exec(ctx)
	return err
}
