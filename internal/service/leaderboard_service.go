package service

import (
	"context"
	"fmt"

	"bithra/internal/domain"
	"bithra/internal/logger"
	"bithra/internal/models"
	"bithra/internal/repository"
)

// ScoreStore is the Redis sorted-set backend. A nil store means SQL-only mode.
type ScoreStore interface {
	Incr(ctx context.Context, board string, userID uint, delta int64) error
	Top(ctx context.Context, board string, limit int) ([]repository.ScoreRow, error)
	Rank(ctx context.Context, board string, userID uint) (int64, int64, error)
	Replace(ctx context.Context, board string, rows []repository.ScoreRow) error
}

type referrerScores interface {
	TopReferrers(limit int) ([]repository.ScoreRow, error)
}

type backerScores interface {
	TopBackers(limit int) ([]repository.ScoreRow, error)
}

type userBatchLookup interface {
	GetByIDs(ids []uint) (map[uint]models.User, error)
}

// rebuildLimit bounds how many rows a rebuild or SQL rank lookup reads per board.
const rebuildLimit = 10000

type LeaderboardEntry struct {
	Rank      int              `json:"rank"`
	UserID    uint             `json:"user_id"`
	Username  string           `json:"username"`
	Name      string           `json:"name"`
	AvatarURL string           `json:"avatar_url"`
	Score     int64            `json:"score"`
	Tier      *domain.TierInfo `json:"tier,omitempty"`
}

type MyRank struct {
	Board  string `json:"board"`
	UserID uint   `json:"user_id"`
	Rank   int64  `json:"rank"` // 0 = not ranked
	Score  int64  `json:"score"`
}

type LeaderboardService struct {
	store   ScoreStore
	sources map[string]func(limit int) ([]repository.ScoreRow, error)
	users   userBatchLookup
}

func NewLeaderboardService(store ScoreStore, referrals referrerScores, backings backerScores, users userBatchLookup) *LeaderboardService {
	return &LeaderboardService{
		store: store,
		sources: map[string]func(int) ([]repository.ScoreRow, error){
			domain.LeaderboardReferrers: referrals.TopReferrers,
			domain.LeaderboardBackers:   backings.TopBackers,
		},
		users: users,
	}
}

func (s *LeaderboardService) rows(ctx context.Context, board string, limit int) ([]repository.ScoreRow, error) {
	source, ok := s.sources[board]
	if !ok {
		return nil, ErrUnknownBoard
	}
	if s.store != nil {
		rows, err := s.store.Top(ctx, board, limit)
		if err == nil {
			return rows, nil
		}
		logger.Component("leaderboard").WithError(err).WithField("board", board).Warn("redis read failed, using sql")
	}
	return source(limit)
}

func (s *LeaderboardService) Top(ctx context.Context, board string, limit int) ([]LeaderboardEntry, error) {
	limit = clampLimit(limit, 10, 100)
	rows, err := s.rows(ctx, board, limit)
	if err != nil {
		return nil, err
	}
	ids := make([]uint, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.UserID)
	}
	users, err := s.users.GetByIDs(ids)
	if err != nil {
		return nil, fmt.Errorf("load leaderboard users: %w", err)
	}
	out := make([]LeaderboardEntry, 0, len(rows))
	for i, r := range rows {
		e := LeaderboardEntry{Rank: i + 1, UserID: r.UserID, Score: r.Score}
		if u, ok := users[r.UserID]; ok {
			e.Username = u.Username
			e.Name = u.DisplayName()
			e.AvatarURL = u.AvatarURL
		}
		if board == domain.LeaderboardReferrers {
			tier := domain.ClassifyTier(int(r.Score))
			e.Tier = &tier
		}
		out = append(out, e)
	}
	return out, nil
}

func (s *LeaderboardService) Me(ctx context.Context, board string, userID uint) (*MyRank, error) {
	source, ok := s.sources[board]
	if !ok {
		return nil, ErrUnknownBoard
	}
	me := &MyRank{Board: board, UserID: userID}
	if s.store != nil {
		rank, score, err := s.store.Rank(ctx, board, userID)
		if err == nil {
			me.Rank, me.Score = rank, score
			return me, nil
		}
		logger.Component("leaderboard").WithError(err).WithField("board", board).Warn("redis rank failed, using sql")
	}
	rows, err := source(rebuildLimit)
	if err != nil {
		return nil, err
	}
	for i, r := range rows {
		if r.UserID == userID {
			me.Rank, me.Score = int64(i+1), r.Score
			break
		}
	}
	return me, nil
}

// Bump adds delta to a user's score. Errors are logged only.
func (s *LeaderboardService) Bump(ctx context.Context, board string, userID uint, delta int64) {
	if s.store == nil || delta == 0 {
		return
	}
	if err := s.store.Incr(ctx, board, userID, delta); err != nil {
		logger.Component("leaderboard").WithError(err).WithField("board", board).Warn("bump failed")
	}
}

// Rebuild recomputes every board from SQL and swaps it into Redis.
func (s *LeaderboardService) Rebuild(ctx context.Context) error {
	if s.store == nil {
		return nil
	}
	for _, board := range domain.Leaderboards {
		rows, err := s.sources[board](rebuildLimit)
		if err != nil {
			return fmt.Errorf("rebuild %s: %w", board, err)
		}
		if err := s.store.Replace(ctx, board, rows); err != nil {
			return fmt.Errorf("rebuild %s: %w", board, err)
		}
	}
	return nil
}
