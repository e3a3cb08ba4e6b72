package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"bithra/config"
	"bithra/internal/domain"
	"bithra/internal/logger"
	"bithra/internal/metrics"
	"bithra/internal/models"
	"bithra/internal/repository"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type referralStore interface {
	GetOrCreateCode(userID uint) (*models.ReferralCode, error)
	GetByCode(code string) (*models.ReferralCode, error)
	CreateReferral(r *models.Referral) error
	GetReferralByReferredUserID(userID uint) (*models.Referral, error)
	MarkSuccessful(referralID uint, at time.Time) (bool, error)
	RecordCommission(referralID, referrerID uint, amount int64, max int, reference string) (bool, error)
	CountsForReferrer(referrerID uint) (*repository.ReferralCounts, error)
	ListByReferrerID(referrerID uint, limit, offset int) ([]models.Referral, error)
}

type userLookup interface {
	GetByID(id uint) (*models.User, error)
}

type walletCreditor interface {
	Credit(userID uint, amount int64, txType, reference string) error
	HasTransaction(userID uint, txType, reference string) (bool, error)
}

type backingCounter interface {
	BackingTotals(backerID uint) (count int64, sum int64, err error)
}

type scoreBumper interface {
	Bump(ctx context.Context, board string, userID uint, delta int64)
}

// ReferralService handles referral codes, tracking and commission credits.
type ReferralService struct {
	referrals       referralStore
	users           userLookup
	wallets         walletCreditor
	backings        backingCounter
	notifier        Notifier
	board           scoreBumper
	maxCommissioned int
	trackWindow     time.Duration
	now             func() time.Time
}

func NewReferralService(
	referrals referralStore,
	users userLookup,
	wallets walletCreditor,
	backings backingCounter,
	notifier Notifier,
	board scoreBumper,
	cfg config.ReferralConfig,
) *ReferralService {
	maxBackings := cfg.MaxCommissionedBackings
	if maxBackings <= 0 {
		maxBackings = 2
	}
	window := cfg.TrackWindow
	if window <= 0 {
		window = time.Hour
	}
	return &ReferralService{
		referrals:       referrals,
		users:           users,
		wallets:         wallets,
		backings:        backings,
		notifier:        notifier,
		board:           board,
		maxCommissioned: maxBackings,
		trackWindow:     window,
		now:             time.Now,
	}
}

func (s *ReferralService) log() *logrus.Entry {
	return logger.Component("referral")
}

func (s *ReferralService) GetOrCreateCode(userID uint) (*models.ReferralCode, error) {
	rc, err := s.referrals.GetOrCreateCode(userID)
	if err != nil {
		return nil, fmt.Errorf("referral code: %w", err)
	}
	return rc, nil
}

// Track links newUserID to the owner of referralCode as a PENDING referral.
// Only accounts created within the track window that have not backed anything
// can be linked.
func (s *ReferralService) Track(referralCode string, newUserID uint) (ref *models.Referral, err error) {
	defer func() { metrics.ReferralsTracked.WithLabelValues(trackOutcome(err)).Inc() }()

	code := strings.ToUpper(strings.TrimSpace(referralCode))
	if code == "" || newUserID == 0 {
		return nil, ErrReferralInvalidInput
	}
	rc, err := s.referrals.GetByCode(code)
	if err != nil {
		return nil, notFound(err, ErrReferralCodeNotFound, "lookup referral code")
	}
	newUser, err := s.users.GetByID(newUserID)
	if err != nil {
		return nil, notFound(err, ErrUserNotFound, "lookup referred user")
	}
	if rc.UserID == newUserID {
		return nil, ErrSelfReferral
	}
	if _, err := s.referrals.GetReferralByReferredUserID(newUserID); err == nil {
		return nil, ErrAlreadyReferred
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("lookup referral: %w", err)
	}
	if newUser.CreatedAt.IsZero() || s.now().Sub(newUser.CreatedAt) > s.trackWindow {
		return nil, ErrReferralWindowClosed
	}
	backed, _, err := s.backings.BackingTotals(newUserID)
	if err != nil {
		return nil, fmt.Errorf("lookup backings: %w", err)
	}
	if backed > 0 {
		return nil, ErrReferredUserActive
	}

	ref = &models.Referral{
		ReferrerID:     rc.UserID,
		ReferredUserID: newUserID,
		Code:           rc.Code,
		Status:         domain.ReferralStatusPending,
	}
	if err := s.referrals.CreateReferral(ref); err != nil {
		return nil, fmt.Errorf("create referral: %w", err)
	}

	if err := s.notifier.Notify(rc.UserID, domain.NotifReferralJoined, "إحالة جديدة",
		newUser.DisplayName()+" انضم عبر رابط الإحالة الخاص بك",
		map[string]interface{}{"referral_id": ref.ID}); err != nil {
		s.log().WithError(err).Warn("notify referrer failed")
	}
	return ref, nil
}

func trackOutcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrReferralInvalidInput):
		return "invalid"
	case errors.Is(err, ErrReferralCodeNotFound), errors.Is(err, ErrUserNotFound):
		return "not_found"
	case errors.Is(err, ErrSelfReferral):
		return "self"
	case errors.Is(err, ErrAlreadyReferred):
		return "duplicate"
	case errors.Is(err, ErrReferralWindowClosed), errors.Is(err, ErrReferredUserActive):
		return "rejected"
	default:
		return "error"
	}
}

type ReferralStats struct {
	ReferralCode         string             `json:"referral_code"`
	TotalReferrals       int64              `json:"total_referrals"`
	SuccessfulReferrals  int64              `json:"successful_referrals"`
	PendingReferrals     int64              `json:"pending_referrals"`
	TotalEarningsHalalas int64              `json:"total_earnings_halalas"`
	Tier                 domain.TierInfo    `json:"tier"`
	NextTier             *domain.TierInfo   `json:"next_tier"`
	Progress             float64            `json:"progress"`
	ReferralsToNextTier  int                `json:"referrals_to_next_tier"`
	Milestones           []domain.Milestone `json:"milestones"`
}

func (s *ReferralService) Stats(userID uint) (*ReferralStats, error) {
	rc, err := s.GetOrCreateCode(userID)
	if err != nil {
		return nil, err
	}
	counts, err := s.referrals.CountsForReferrer(userID)
	if err != nil {
		return nil, fmt.Errorf("referral counts: %w", err)
	}
	successful := int(counts.Successful)
	stats := &ReferralStats{
		ReferralCode:         rc.Code,
		TotalReferrals:       counts.Total,
		SuccessfulReferrals:  counts.Successful,
		PendingReferrals:     counts.Total - counts.Successful,
		TotalEarningsHalalas: counts.CommissionHalalas,
		Tier:                 domain.ClassifyTier(successful),
		Progress:             domain.TierProgress(successful),
		ReferralsToNextTier:  domain.ReferralsToNextTier(successful),
		Milestones:           domain.Milestones(successful),
	}
	if next, ok := domain.NextTier(successful); ok {
		stats.NextTier = &next
	}
	return stats, nil
}

// QualifyBacking runs after every backing. The backer's referral turns SUCCESSFUL
// on the first backing and the referrer earns tier commission on the first
// maxCommissioned backings. Nothing here fails the backing.
func (s *ReferralService) QualifyBacking(ctx context.Context, backerID, backingID uint, amount int64) {
	log := s.log().WithFields(logrus.Fields{"backer_id": backerID, "backing_id": backingID})
	ref, err := s.referrals.GetReferralByReferredUserID(backerID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.WithError(err).Warn("lookup referral failed")
		}
		return
	}

	if ref.Status == domain.ReferralStatusPending {
		qualified, err := s.referrals.MarkSuccessful(ref.ID, s.now())
		if err != nil {
			log.WithError(err).Warn("mark referral successful failed")
			return
		}
		if qualified {
			s.board.Bump(ctx, domain.LeaderboardReferrers, ref.ReferrerID, 1)
			s.creditMilestones(ref.ReferrerID, log)
		}
	}

	counts, err := s.referrals.CountsForReferrer(ref.ReferrerID)
	if err != nil {
		log.WithError(err).Warn("referral counts failed")
		return
	}
	tier := domain.ClassifyTier(int(counts.Successful))
	commission := domain.Commission(amount, tier)
	if commission <= 0 {
		return
	}
	paid, err := s.referrals.RecordCommission(ref.ID, ref.ReferrerID, commission, s.maxCommissioned,
		fmt.Sprintf("backing_%d", backingID))
	if err != nil {
		log.WithError(err).Error("credit commission failed")
		return
	}
	if !paid {
		return
	}
	metrics.CommissionHalalas.Add(float64(commission))
	log.WithFields(logrus.Fields{"referrer_id": ref.ReferrerID, "commission": commission, "tier": tier.Tier}).Info("referral commission credited")

	if err := s.notifier.Notify(ref.ReferrerID, domain.NotifReferralCommission, "عمولة إحالة",
		"تمت إضافة "+FormatSAR(commission)+" إلى محفظتك",
		map[string]interface{}{"amount_halalas": commission, "backing_id": backingID}); err != nil {
		log.WithError(err).Warn("notify commission failed")
	}
}

// creditMilestones pays every reached milestone that has no bonus transaction yet,
// so a count that skips past a milestone still gets it.
func (s *ReferralService) creditMilestones(referrerID uint, log *logrus.Entry) {
	counts, err := s.referrals.CountsForReferrer(referrerID)
	if err != nil {
		log.WithError(err).Warn("referral counts failed")
		return
	}
	for _, m := range domain.Milestones(int(counts.Successful)) {
		if !m.Achieved || m.BonusHalalas <= 0 {
			continue
		}
		ref := fmt.Sprintf("milestone_%d", m.Count)
		done, err := s.wallets.HasTransaction(referrerID, domain.WalletTxReferralMilestone, ref)
		if err != nil {
			log.WithError(err).Warn("milestone lookup failed")
			return
		}
		if done {
			continue
		}
		if err := s.wallets.Credit(referrerID, m.BonusHalalas, domain.WalletTxReferralMilestone, ref); err != nil {
			log.WithError(err).WithField("milestone", m.Count).Error("credit milestone failed")
		}
	}
}

type ReferralView struct {
	ID                uint       `json:"id"`
	Username          string     `json:"username"`
	Name              string     `json:"name"`
	Status            string     `json:"status"`
	CommissionHalalas int64      `json:"commission_halalas"`
	CreatedAt         time.Time  `json:"created_at"`
	QualifiedAt       *time.Time `json:"qualified_at"`
}

func (s *ReferralService) List(userID uint, limit, offset int) ([]ReferralView, error) {
	list, err := s.referrals.ListByReferrerID(userID, clampLimit(limit, 20, 100), offset)
	if err != nil {
		return nil, fmt.Errorf("list referrals: %w", err)
	}
	out := make([]ReferralView, 0, len(list))
	for _, r := range list {
		out = append(out, ReferralView{
			ID:                r.ID,
			Username:          r.ReferredUser.Username,
			Name:              r.ReferredUser.DisplayName(),
			Status:            r.Status,
			CommissionHalalas: r.CommissionHalalas,
			CreatedAt:         r.CreatedAt,
			QualifiedAt:       r.QualifiedAt,
		})
	}
	return out, nil
}
