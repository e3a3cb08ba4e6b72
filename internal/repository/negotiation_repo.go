package repository

import (
	"time"

	"bithra/internal/domain"
	"bithra/internal/models"

	"gorm.io/gorm"
)

type NegotiationRepository struct {
	db *gorm.DB
}

func NewNegotiationRepository(db *gorm.DB) *NegotiationRepository {
	return &NegotiationRepository{db: db}
}

func (r *NegotiationRepository) Create(n *models.Negotiation) error {
	return r.db.Create(n).Error
}

func (r *NegotiationRepository) GetByID(id uint) (*models.Negotiation, error) {
	var n models.Negotiation
	err := r.db.Preload("Project").First(&n, id).Error
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// FindOpen returns the backer's OPEN negotiation on a project, if any.
func (r *NegotiationRepository) FindOpen(projectID, backerID uint) (*models.Negotiation, error) {
	var n models.Negotiation
	err := r.db.Where("project_id = ? AND backer_id = ? AND status = ?", projectID, backerID, domain.NegotiationStatusOpen).
		First(&n).Error
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *NegotiationRepository) ListByUser(userID uint, limit, offset int) ([]models.Negotiation, error) {
	var list []models.Negotiation
	err := r.db.Where("creator_id = ? OR backer_id = ?", userID, userID).
		Preload("Project").
		Order("updated_at DESC").
		Limit(limit).Offset(offset).
		Find(&list).Error
	return list, err
}

func (r *NegotiationRepository) CreateMessage(m *models.NegotiationMessage) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(m).Error; err != nil {
			return err
		}
		return tx.Model(&models.Negotiation{}).Where("id = ?", m.NegotiationID).
			Update("updated_at", time.Now()).Error
	})
}

// ListMessagesAfter returns messages with id > afterID in ascending order (polling cursor).
func (r *NegotiationRepository) ListMessagesAfter(negotiationID, afterID uint, limit int) ([]models.NegotiationMessage, error) {
	var list []models.NegotiationMessage
	err := r.db.Where("negotiation_id = ? AND id > ?", negotiationID, afterID).
		Order("id ASC").
		Limit(limit).
		Find(&list).Error
	return list, err
}

// Transition moves a negotiation out of fromStatus. It reports false when the
// negotiation was no longer in fromStatus.
func (r *NegotiationRepository) Transition(id uint, fromStatus, toStatus string, at time.Time) (bool, error) {
	res := r.db.Model(&models.Negotiation{}).
		Where("id = ? AND status = ?", id, fromStatus).
		Updates(map[string]interface{}{"status": toStatus, "closed_at": at})
	return res.RowsAffected > 0, res.Error
}

// ExpireBefore marks every OPEN negotiation whose window ended before t as EXPIRED.
func (r *NegotiationRepository) ExpireBefore(t time.Time) (int64, error) {
	res := r.db.Model(&models.Negotiation{}).
		Where("status = ? AND expires_at <= ?", domain.NegotiationStatusOpen, t).
		Updates(map[string]interface{}{"status": domain.NegotiationStatusExpired, "closed_at": t})
	return res.RowsAffected, res.Error
}
