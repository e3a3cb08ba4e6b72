package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bithra/internal/cache"
	"bithra/internal/models"
	"bithra/internal/repository"

	"gorm.io/gorm"
)

type statsSource interface {
	GetDashboardStats() (*repository.DashboardStats, error)
}

type projectCounter interface {
	CountByCreator(creatorID uint) (int64, error)
	BackingTotals(backerID uint) (count int64, sum int64, err error)
}

type referralStatser interface {
	Stats(userID uint) (*ReferralStats, error)
}

type earlyBirdGetter interface {
	Get(userID uint) (*EarlyBirdView, error)
}

type unreadCounter interface {
	CountUnread(userID uint) (int64, error)
}

type walletReader interface {
	GetOrCreate(userID uint) (*models.Wallet, error)
}

const adminDashboardKey = "dashboard:admin"

type DashboardService struct {
	stats     statsSource
	cache     *cache.RedisCache
	ttl       time.Duration
	projects  projectCounter
	referrals referralStatser
	earlyBird earlyBirdGetter
	unread    unreadCounter
	wallets   walletReader
	now       func() time.Time
}

type DashboardDeps struct {
	Stats     statsSource
	Cache     *cache.RedisCache
	TTL       time.Duration
	Projects  projectCounter
	Referrals referralStatser
	EarlyBird earlyBirdGetter
	Unread    unreadCounter
	Wallets   walletReader
}

func NewDashboardService(d DashboardDeps) *DashboardService {
	ttl := d.TTL
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &DashboardService{
		stats:     d.Stats,
		cache:     d.Cache,
		ttl:       ttl,
		projects:  d.Projects,
		referrals: d.Referrals,
		earlyBird: d.EarlyBird,
		unread:    d.Unread,
		wallets:   d.Wallets,
		now:       time.Now,
	}
}

type AdminDashboard struct {
	repository.DashboardStats
	GeneratedAt time.Time `json:"generated_at"`
}

// Admin returns platform totals, cached for the configured TTL when Redis is available.
func (s *DashboardService) Admin(ctx context.Context) (*AdminDashboard, error) {
	return cache.GetOrSet(ctx, s.cache, adminDashboardKey, s.ttl, func() (*AdminDashboard, error) {
		st, err := s.stats.GetDashboardStats()
		if err != nil {
			return nil, fmt.Errorf("dashboard stats: %w", err)
		}
		return &AdminDashboard{DashboardStats: *st, GeneratedAt: s.now().UTC()}, nil
	})
}

type UserDashboard struct {
	ProjectsCount        int64          `json:"projects_count"`
	BackingsCount        int64          `json:"backings_count"`
	BackedHalalas        int64          `json:"backed_halalas"`
	WalletBalanceHalalas int64          `json:"wallet_balance_halalas"`
	UnreadNotifications  int64          `json:"unread_notifications"`
	Referral             *ReferralStats `json:"referral"`
	EarlyBird            *EarlyBirdView `json:"early_bird"`
}

func (s *DashboardService) User(userID uint) (*UserDashboard, error) {
	out := &UserDashboard{}
	var err error
	if out.ProjectsCount, err = s.projects.CountByCreator(userID); err != nil {
		return nil, fmt.Errorf("count projects: %w", err)
	}
	if out.BackingsCount, out.BackedHalalas, err = s.projects.BackingTotals(userID); err != nil {
		return nil, fmt.Errorf("backing totals: %w", err)
	}
	w, err := s.wallets.GetOrCreate(userID)
	if err != nil {
		return nil, fmt.Errorf("wallet: %w", err)
	}
	out.WalletBalanceHalalas = w.BalanceHalalas
	if out.UnreadNotifications, err = s.unread.CountUnread(userID); err != nil {
		return nil, fmt.Errorf("unread notifications: %w", err)
	}
	if out.Referral, err = s.referrals.Stats(userID); err != nil {
		return nil, err
	}
	eb, err := s.earlyBird.Get(userID)
	switch {
	case err == nil:
		out.EarlyBird = eb
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, fmt.Errorf("early bird: %w", err)
	}
	return out, nil
}
