package repository

import (
	"errors"

	"bithra/internal/domain"
	"bithra/internal/models"

	"gorm.io/gorm"
)

var ErrInvalidCredit = errors.New("credit amount must be positive")

type WalletRepository struct {
	db *gorm.DB
}

func NewWalletRepository(db *gorm.DB) *WalletRepository {
	return &WalletRepository{db: db}
}

func (r *WalletRepository) GetByUserID(userID uint) (*models.Wallet, error) {
	var w models.Wallet
	err := r.db.Where("user_id = ?", userID).First(&w).Error
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *WalletRepository) GetOrCreate(userID uint) (*models.Wallet, error) {
	w, err := r.GetByUserID(userID)
	if err == nil {
		return w, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	w = &models.Wallet{UserID: userID, BalanceHalalas: 0, Currency: domain.Currency}
	if err := r.db.Create(w).Error; err != nil {
		return nil, err
	}
	return w, nil
}

// Credit adds amount to the user's balance and records the transaction in one unit.
func (r *WalletRepository) Credit(userID uint, amount int64, txType, reference string) error {
	if amount <= 0 {
		return ErrInvalidCredit
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		return creditWallet(tx, userID, amount, txType, reference)
	})
}

// creditWallet runs inside the caller's transaction so other writes can commit
// or roll back together with the credit.
func creditWallet(tx *gorm.DB, userID uint, amount int64, txType, reference string) error {
	var w models.Wallet
	err := tx.Where("user_id = ?", userID).First(&w).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		w = models.Wallet{UserID: userID, Currency: domain.Currency}
		if err := tx.Create(&w).Error; err != nil {
			return err
		}
	} else if err != nil {
		return err
	}
	if err := tx.Model(&models.Wallet{}).Where("id = ?", w.ID).
		UpdateColumn("balance_halalas", gorm.Expr("balance_halalas + ?", amount)).Error; err != nil {
		return err
	}
	return tx.Create(&models.WalletTransaction{
		UserID:        userID,
		AmountHalalas: amount,
		Type:          txType,
		Reference:     reference,
	}).Error
}

func (r *WalletRepository) ListTransactions(userID uint, limit, offset int) ([]models.WalletTransaction, error) {
	var list []models.WalletTransaction
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Limit(limit).Offset(offset).Find(&list).Error
	return list, err
}

// HasTransaction reports whether a credit with this type and reference was already recorded.
func (r *WalletRepository) HasTransaction(userID uint, txType, reference string) (bool, error) {
	var c int64
	err := r.db.Model(&models.WalletTransaction{}).
		Where("user_id = ? AND type = ? AND reference = ?", userID, txType, reference).
		Count(&c).Error
	return c > 0, err
}
