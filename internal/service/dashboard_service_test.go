package service

import (
	"context"
	"testing"
	"time"

	"bithra/config"
	"bithra/internal/cache"
	"bithra/internal/models"
	"bithra/internal/repository"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingStats struct {
	calls int
	stats repository.DashboardStats
}

func (c *countingStats) GetDashboardStats() (*repository.DashboardStats, error) {
	c.calls++
	st := c.stats
	return &st, nil
}

func TestDashboardService_AdminCachesInRedis(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	stats := &countingStats{stats: repository.DashboardStats{TotalUsers: 42, ActiveProjects: 3}}
	svc := NewDashboardService(DashboardDeps{Stats: stats, Cache: cache.NewRedisCache(client, "bithra:"), TTL: time.Minute})
	svc.now = fixedClock
	ctx := context.Background()

	first, err := svc.Admin(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(42), first.TotalUsers)
	assert.True(t, testNow.Equal(first.GeneratedAt))

	stats.stats.TotalUsers = 43
	second, err := svc.Admin(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(42), second.TotalUsers, "served from cache")
	assert.Equal(t, 1, stats.calls)
	assert.True(t, mr.Exists("bithra:dashboard:admin"))

	mr.FastForward(2 * time.Minute)
	third, err := svc.Admin(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(43), third.TotalUsers)
	assert.Equal(t, 2, stats.calls)
}

func TestDashboardService_AdminWithoutCache(t *testing.T) {
	stats := &countingStats{}
	svc := NewDashboardService(DashboardDeps{Stats: stats})
	_, err := svc.Admin(context.Background())
	require.NoError(t, err)
	_, err = svc.Admin(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, stats.calls)
}

func TestDashboardService_User(t *testing.T) {
	users := newFakeUsers(&models.User{ID: 1, Username: "owner"}, &models.User{ID: 9, Username: "backer"})
	projects := newFakeProjects(newTestProject(1, 1))
	projects.backings = []models.Backing{{ID: 1, ProjectID: 1, BackerID: 9, AmountHalalas: 25000}, {ID: 2, ProjectID: 1, BackerID: 9, AmountHalalas: 5000}}
	wallets := newFakeWallets()
	wallets.balances[9] = 777
	referrals := NewReferralService(newFakeReferrals(users), users, wallets, projects, &fakeNotifier{}, &fakeBoard{}, config.ReferralConfig{})
	earlyStore := &fakeEarlyBirds{}
	earlyBird := NewEarlyBirdService(earlyStore, wallets)
	notes := &fakeNotifications{}
	unread := NewNotificationService(notes, nil, nil)
	require.NoError(t, unread.Notify(9, "X", "t", "b", nil))

	svc := NewDashboardService(DashboardDeps{
		Projects: projects, Referrals: referrals, EarlyBird: earlyBird, Unread: unread, Wallets: wallets,
	})

	d, err := svc.User(9)
	require.NoError(t, err)
	assert.Equal(t, int64(0), d.ProjectsCount)
	assert.Equal(t, int64(2), d.BackingsCount)
	assert.Equal(t, int64(30000), d.BackedHalalas)
	assert.Equal(t, int64(777), d.WalletBalanceHalalas)
	assert.Equal(t, int64(1), d.UnreadNotifications)
	require.NotNil(t, d.Referral)
	assert.Equal(t, "CODE0009", d.Referral.ReferralCode)
	assert.Nil(t, d.EarlyBird, "not registered yet")

	_, _, err = earlyBird.Register(9)
	require.NoError(t, err)
	d, err = svc.User(9)
	require.NoError(t, err)
	require.NotNil(t, d.EarlyBird)
	assert.Equal(t, 1, d.EarlyBird.Registration.Rank)

	owner, err := svc.User(1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), owner.ProjectsCount)
}
