package repository

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"bithra/internal/domain"
	"bithra/internal/models"

	"gorm.io/gorm"
)

// ScoreRow is one leaderboard line computed in SQL.
type ScoreRow struct {
	UserID uint
	Score  int64
}

// ReferralCounts summarises a referrer's referrals.
type ReferralCounts struct {
	Total             int64
	Successful        int64
	CommissionHalalas int64
}

type ReferralRepository struct {
	db *gorm.DB
}

func NewReferralRepository(db *gorm.DB) *ReferralRepository {
	return &ReferralRepository{db: db}
}

// generateReferralCode returns an 8-character uppercase hex referral code.
func generateReferralCode() (string, error) {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return strings.ToUpper(hex.EncodeToString(b)), nil
}

// GetCodeByUserID returns the user's referral code.
func (r *ReferralRepository) GetCodeByUserID(userID uint) (*models.ReferralCode, error) {
	var rc models.ReferralCode
	if err := r.db.Where("user_id = ?", userID).First(&rc).Error; err != nil {
		return nil, err
	}
	return &rc, nil
}

// GetOrCreateCode returns the existing referral code for a user, or creates a new unique one.
// After a failed insert the user's row is read again; a concurrent request may
// have created it.
func (r *ReferralRepository) GetOrCreateCode(userID uint) (*models.ReferralCode, error) {
	if rc, err := r.GetCodeByUserID(userID); err == nil {
		return rc, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	var lastErr error
	for i := 0; i < 10; i++ {
		code, err := generateReferralCode()
		if err != nil {
			return nil, err
		}
		rc := models.ReferralCode{UserID: userID, Code: code, IsActive: true}
		if lastErr = r.db.Create(&rc).Error; lastErr == nil {
			return &rc, nil
		}
		existing, err := r.GetCodeByUserID(userID)
		if err == nil {
			return existing, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		// code collision, try another
	}
	return nil, fmt.Errorf("generate unique referral code: %w", lastErr)
}

// GetByCode returns an active ReferralCode record matching the given code string.
func (r *ReferralRepository) GetByCode(code string) (*models.ReferralCode, error) {
	var rc models.ReferralCode
	err := r.db.Where("code = ? AND is_active = ?", code, true).First(&rc).Error
	if err != nil {
		return nil, err
	}
	return &rc, nil
}

// CreateReferral persists a new referral relationship.
func (r *ReferralRepository) CreateReferral(referral *models.Referral) error {
	return r.db.Create(referral).Error
}

// GetReferralByReferredUserID returns the Referral record for a user that was referred by someone.
func (r *ReferralRepository) GetReferralByReferredUserID(userID uint) (*models.Referral, error) {
	var ref models.Referral
	err := r.db.Where("referred_user_id = ?", userID).First(&ref).Error
	if err != nil {
		return nil, err
	}
	return &ref, nil
}

// MarkSuccessful flips a PENDING referral to SUCCESSFUL. It reports false when
// another request already did it.
func (r *ReferralRepository) MarkSuccessful(referralID uint, at time.Time) (bool, error) {
	res := r.db.Model(&models.Referral{}).
		Where("id = ? AND status = ?", referralID, domain.ReferralStatusPending).
		Updates(map[string]interface{}{"status": domain.ReferralStatusSuccessful, "qualified_at": at})
	return res.RowsAffected > 0, res.Error
}

// RecordCommission bumps the referral's commissioned backings, bounded by max, and
// credits the referrer's wallet in the same transaction. It reports false without
// touching the wallet when the referral has used up its commissioned backings.
func (r *ReferralRepository) RecordCommission(referralID, referrerID uint, amount int64, max int, reference string) (bool, error) {
	if amount <= 0 {
		return false, ErrInvalidCredit
	}
	paid := false
	err := r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Referral{}).
			Where("id = ? AND commissioned_count < ?", referralID, max).
			Updates(map[string]interface{}{
				"commissioned_count": gorm.Expr("commissioned_count + 1"),
				"commission_halalas": gorm.Expr("commission_halalas + ?", amount),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		if err := creditWallet(tx, referrerID, amount, domain.WalletTxReferralCommission, reference); err != nil {
			return err
		}
		paid = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return paid, nil
}

// CountsForReferrer aggregates totals for the referral stats page.
func (r *ReferralRepository) CountsForReferrer(referrerID uint) (*ReferralCounts, error) {
	var out ReferralCounts
	err := r.db.Model(&models.Referral{}).
		Select("COUNT(*) AS total, "+
			"COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS successful, "+
			"COALESCE(SUM(commission_halalas), 0) AS commission_halalas", domain.ReferralStatusSuccessful).
		Where("referrer_id = ?", referrerID).
		Scan(&out).Error
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ListByReferrerID returns all referrals created by the given referrer, with referred user preloaded.
func (r *ReferralRepository) ListByReferrerID(referrerID uint, limit, offset int) ([]models.Referral, error) {
	var list []models.Referral
	err := r.db.Where("referrer_id = ?", referrerID).
		Preload("ReferredUser").
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&list).Error
	return list, err
}

// TopReferrers ranks referrers by successful referrals.
func (r *ReferralRepository) TopReferrers(limit int) ([]ScoreRow, error) {
	var rows []ScoreRow
	err := r.db.Model(&models.Referral{}).
		Select("referrer_id AS user_id, COUNT(*) AS score").
		Where("status = ?", domain.ReferralStatusSuccessful).
		Group("referrer_id").
		Order("score DESC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}
