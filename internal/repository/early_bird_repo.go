package repository

import (
	"errors"

	"bithra/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type EarlyBirdRepository struct {
	db *gorm.DB
}

func NewEarlyBirdRepository(db *gorm.DB) *EarlyBirdRepository {
	return &EarlyBirdRepository{db: db}
}

func (r *EarlyBirdRepository) GetByUserID(userID uint) (*models.EarlyBirdRegistration, error) {
	var reg models.EarlyBirdRegistration
	if err := r.db.Where("user_id = ?", userID).First(&reg).Error; err != nil {
		return nil, err
	}
	return &reg, nil
}

// Register assigns the next rank. build fills in tier fields for that rank.
// The highest existing row is locked so concurrent registrations get distinct ranks;
// the unique index on rank backs this up.
func (r *EarlyBirdRepository) Register(userID uint, build func(rank int) *models.EarlyBirdRegistration) (*models.EarlyBirdRegistration, error) {
	var reg *models.EarlyBirdRegistration
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var last models.EarlyBirdRegistration
		rank := 1
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Order("registration_rank DESC").First(&last).Error
		if err == nil {
			rank = last.Rank + 1
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		reg = build(rank)
		reg.UserID = userID
		reg.Rank = rank
		return tx.Create(reg).Error
	})
	if err != nil {
		return nil, err
	}
	return reg, nil
}

func (r *EarlyBirdRepository) Count() (int64, error) {
	var c int64
	err := r.db.Model(&models.EarlyBirdRegistration{}).Count(&c).Error
	return c, err
}
