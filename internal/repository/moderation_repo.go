package repository

import (
	"bithra/internal/models"

	"gorm.io/gorm"
)

type ReportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

func (r *ReportRepository) Create(report *models.ContentReport) error {
	return r.db.Create(report).Error
}

func (r *ReportRepository) ListPending(limit int) ([]models.ContentReport, error) {
	var list []models.ContentReport
	err := r.db.Where("status = ?", "PENDING").Order("created_at ASC").Limit(limit).Find(&list).Error
	return list, err
}

type AuditLogRepository struct {
	db *gorm.DB
}

func NewAuditLogRepository(db *gorm.DB) *AuditLogRepository {
	return &AuditLogRepository{db: db}
}

func (r *AuditLogRepository) Create(log *models.AuditLog) error {
	return r.db.Create(log).Error
}

// Exists reports whether the reporter already flagged this post.
func (r *ReportRepository) Exists(reporterID, postID uint) (bool, error) {
	var c int64
	err := r.db.Model(&models.ContentReport{}).
		Where("reporter_id = ? AND post_id = ?", reporterID, postID).
		Count(&c).Error
	return c > 0, err
}
