package service

import (
	"context"
	"errors"
	"testing"

	"bithra/internal/domain"
	"bithra/internal/models"
	"bithra/internal/repository"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLeaderboardFixture(t *testing.T, withRedis bool) (*LeaderboardService, *fakeReferrals, *fakeProjects, *miniredis.Miniredis) {
	t.Helper()
	users := newFakeUsers(
		&models.User{ID: 1, Username: "noura", FullName: "نورة"},
		&models.User{ID: 2, Username: "fahad"},
		&models.User{ID: 3, Username: "reem"},
	)
	refs := newFakeReferrals(users)
	for i := 0; i < 12; i++ {
		refs.referrals = append(refs.referrals, &models.Referral{ID: uint(i + 1), ReferrerID: 1, ReferredUserID: uint(100 + i), Status: domain.ReferralStatusSuccessful})
	}
	refs.referrals = append(refs.referrals, &models.Referral{ID: 13, ReferrerID: 2, ReferredUserID: 200, Status: domain.ReferralStatusSuccessful})
	projects := newFakeProjects()
	projects.backings = []models.Backing{
		{ID: 1, BackerID: 3, AmountHalalas: 90000},
		{ID: 2, BackerID: 2, AmountHalalas: 50000},
		{ID: 3, BackerID: 2, AmountHalalas: 10000},
	}

	if !withRedis {
		return NewLeaderboardService(nil, refs, projects, users), refs, projects, nil
	}
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	store := repository.NewLeaderboardStore(client, "bithra:")
	return NewLeaderboardService(store, refs, projects, users), refs, projects, mr
}

func TestLeaderboardService_SQLOnly(t *testing.T) {
	svc, _, _, _ := newLeaderboardFixture(t, false)
	ctx := context.Background()

	top, err := svc.Top(ctx, domain.LeaderboardReferrers, 0)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, 1, top[0].Rank)
	assert.Equal(t, "نورة", top[0].Name)
	assert.Equal(t, int64(12), top[0].Score)
	require.NotNil(t, top[0].Tier)
	assert.Equal(t, domain.TierSilver, top[0].Tier.Tier)
	assert.Equal(t, "fahad", top[1].Name)

	backers, err := svc.Top(ctx, domain.LeaderboardBackers, 10)
	require.NoError(t, err)
	require.Len(t, backers, 2)
	assert.Equal(t, uint(3), backers[0].UserID)
	assert.Equal(t, int64(60000), backers[1].Score)
	assert.Nil(t, backers[0].Tier)

	me, err := svc.Me(ctx, domain.LeaderboardBackers, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(2), me.Rank)
	me, err = svc.Me(ctx, domain.LeaderboardBackers, 1)
	require.NoError(t, err)
	assert.Zero(t, me.Rank)

	_, err = svc.Top(ctx, "sellers", 10)
	assert.ErrorIs(t, err, ErrUnknownBoard)
	_, err = svc.Me(ctx, "sellers", 1)
	assert.ErrorIs(t, err, ErrUnknownBoard)

	svc.Bump(ctx, domain.LeaderboardBackers, 1, 100)
	assert.NoError(t, svc.Rebuild(ctx))
}

func TestLeaderboardService_RedisRebuildAndBump(t *testing.T) {
	svc, _, _, mr := newLeaderboardFixture(t, true)
	ctx := context.Background()

	require.NoError(t, svc.Rebuild(ctx))
	score, err := mr.ZScore("bithra:lb:backers", "2")
	require.NoError(t, err)
	assert.Equal(t, float64(60000), score)

	svc.Bump(ctx, domain.LeaderboardBackers, 2, 40000)
	top, err := svc.Top(ctx, domain.LeaderboardBackers, 5)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, uint(2), top[0].UserID)
	assert.Equal(t, int64(100000), top[0].Score)

	me, err := svc.Me(ctx, domain.LeaderboardBackers, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(2), me.Rank)
	assert.Equal(t, int64(90000), me.Score)
}

func TestLeaderboardService_FallsBackWhenRedisDown(t *testing.T) {
	svc, _, _, mr := newLeaderboardFixture(t, true)
	ctx := context.Background()
	mr.Close()

	top, err := svc.Top(ctx, domain.LeaderboardReferrers, 10)
	require.NoError(t, err, "reads fall back to sql")
	require.Len(t, top, 2)
	assert.Equal(t, uint(1), top[0].UserID)

	me, err := svc.Me(ctx, domain.LeaderboardReferrers, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(2), me.Rank)

	err = svc.Rebuild(ctx)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrUnknownBoard))
}
