package service

import (
	"errors"
	"fmt"

	"bithra/internal/domain"
	"bithra/internal/logger"
	"bithra/internal/models"

	"gorm.io/gorm"
)

type earlyBirdStore interface {
	GetByUserID(userID uint) (*models.EarlyBirdRegistration, error)
	Register(userID uint, build func(rank int) *models.EarlyBirdRegistration) (*models.EarlyBirdRegistration, error)
	Count() (int64, error)
}

const earlyBirdBonusRef = "early_bird"

type EarlyBirdService struct {
	registrations earlyBirdStore
	wallets       walletCreditor
}

func NewEarlyBirdService(registrations earlyBirdStore, wallets walletCreditor) *EarlyBirdService {
	return &EarlyBirdService{registrations: registrations, wallets: wallets}
}

type EarlyBirdView struct {
	Registration *models.EarlyBirdRegistration `json:"registration"`
	Reward       domain.RewardTierInfo         `json:"reward"`
}

func viewRegistration(reg *models.EarlyBirdRegistration) *EarlyBirdView {
	return &EarlyBirdView{Registration: reg, Reward: domain.RewardForRank(reg.Rank)}
}

// Register is idempotent. created is false when the user already had a rank.
func (s *EarlyBirdService) Register(userID uint) (*EarlyBirdView, bool, error) {
	if reg, err := s.registrations.GetByUserID(userID); err == nil {
		return viewRegistration(reg), false, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, fmt.Errorf("lookup registration: %w", err)
	}

	reg, err := s.registrations.Register(userID, func(rank int) *models.EarlyBirdRegistration {
		tier := domain.RewardForRank(rank)
		return &models.EarlyBirdRegistration{Tier: string(tier.Tier), BonusHalalas: tier.BonusHalalas}
	})
	if err != nil {
		// a concurrent request for the same user may have won the unique index
		if existing, gerr := s.registrations.GetByUserID(userID); gerr == nil {
			return viewRegistration(existing), false, nil
		}
		return nil, false, fmt.Errorf("register early bird: %w", err)
	}
	s.creditBonus(reg)
	return viewRegistration(reg), true, nil
}

func (s *EarlyBirdService) creditBonus(reg *models.EarlyBirdRegistration) {
	if reg.BonusHalalas <= 0 {
		return
	}
	log := logger.Component("earlybird").WithField("user_id", reg.UserID)
	done, err := s.wallets.HasTransaction(reg.UserID, domain.WalletTxEarlyBirdBonus, earlyBirdBonusRef)
	if err != nil {
		log.WithError(err).Warn("bonus lookup failed")
		return
	}
	if done {
		return
	}
	if err := s.wallets.Credit(reg.UserID, reg.BonusHalalas, domain.WalletTxEarlyBirdBonus, earlyBirdBonusRef); err != nil {
		log.WithError(err).Error("bonus credit failed")
	}
}

func (s *EarlyBirdService) Get(userID uint) (*EarlyBirdView, error) {
	reg, err := s.registrations.GetByUserID(userID)
	if err != nil {
		return nil, err
	}
	return viewRegistration(reg), nil
}

type RewardTierSummary struct {
	domain.RewardTierInfo
	Remaining int `json:"remaining"` // -1 = unlimited
}

type EarlyBirdSummary struct {
	Registered int64                 `json:"registered"`
	NextRank   int64                 `json:"next_rank"`
	NextReward domain.RewardTierInfo `json:"next_reward"`
	Tiers      []RewardTierSummary   `json:"tiers"`
}

func (s *EarlyBirdService) Summary() (*EarlyBirdSummary, error) {
	count, err := s.registrations.Count()
	if err != nil {
		return nil, fmt.Errorf("count registrations: %w", err)
	}
	tiers := domain.RewardTiers()
	out := &EarlyBirdSummary{
		Registered: count,
		NextRank:   count + 1,
		NextReward: domain.RewardForRank(int(count) + 1),
		Tiers:      make([]RewardTierSummary, 0, len(tiers)),
	}
	for _, t := range tiers {
		out.Tiers = append(out.Tiers, RewardTierSummary{RewardTierInfo: t, Remaining: domain.RemainingSlots(t, int(count))})
	}
	return out, nil
}
