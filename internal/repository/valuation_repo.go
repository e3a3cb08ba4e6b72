package repository

import (
	"bithra/internal/domain"
	"bithra/internal/models"

	"gorm.io/gorm"
)

// DistrictPrice is the average completed price per square metre in a district.
type DistrictPrice struct {
	District    string
	AvgPrice    float64
	SampleCount int64
}

type ValuationRepository struct {
	db *gorm.DB
}

func NewValuationRepository(db *gorm.DB) *ValuationRepository {
	return &ValuationRepository{db: db}
}

func (r *ValuationRepository) Create(v *models.Valuation) error {
	return r.db.Create(v).Error
}

func (r *ValuationRepository) GetByID(id uint) (*models.Valuation, error) {
	var v models.Valuation
	if err := r.db.First(&v, id).Error; err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *ValuationRepository) Update(v *models.Valuation) error {
	return r.db.Save(v).Error
}

func (r *ValuationRepository) ListByUser(userID uint, limit, offset int) ([]models.Valuation, error) {
	var list []models.Valuation
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Limit(limit).Offset(offset).Find(&list).Error
	return list, err
}

func (r *ValuationRepository) ListByStatus(status string, limit, offset int) ([]models.Valuation, error) {
	var list []models.Valuation
	err := r.db.Where("status = ?", status).Order("created_at ASC").Limit(limit).Offset(offset).Find(&list).Error
	return list, err
}

// DistrictAverages groups completed valuations in a city by district.
func (r *ValuationRepository) DistrictAverages(city string) ([]DistrictPrice, error) {
	var rows []DistrictPrice
	err := r.db.Model(&models.Valuation{}).
		Select("district, AVG(price_per_sqm) AS avg_price, COUNT(*) AS sample_count").
		Where("city = ? AND status = ? AND price_per_sqm > 0", city, domain.ValuationStatusCompleted).
		Group("district").
		Order("district ASC").
		Scan(&rows).Error
	return rows, err
}
