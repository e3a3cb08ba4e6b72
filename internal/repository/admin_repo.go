package repository

import (
	"bithra/internal/domain"
	"bithra/internal/models"

	"gorm.io/gorm"
)

type DashboardStats struct {
	TotalUsers          int64 `json:"total_users"`
	TotalProjects       int64 `json:"total_projects"`
	ActiveProjects      int64 `json:"active_projects"`
	FundedProjects      int64 `json:"funded_projects"`
	TotalBackings       int64 `json:"total_backings"`
	BackedHalalas       int64 `json:"backed_halalas"`
	TotalReferrals      int64 `json:"total_referrals"`
	SuccessfulReferrals int64 `json:"successful_referrals"`
	CommissionHalalas   int64 `json:"commission_halalas"`
	PendingValuations   int64 `json:"pending_valuations"`
	OpenNegotiations    int64 `json:"open_negotiations"`
	ForumPosts          int64 `json:"forum_posts"`
	PendingReports      int64 `json:"pending_reports"`
	EarlyBirdSignups    int64 `json:"early_bird_signups"`
}

type AdminRepository struct {
	db *gorm.DB
}

func NewAdminRepository(db *gorm.DB) *AdminRepository {
	return &AdminRepository{db: db}
}

func (r *AdminRepository) GetDashboardStats() (*DashboardStats, error) {
	var s DashboardStats
	counts := []struct {
		model interface{}
		where []interface{}
		dst   *int64
	}{
		{&models.User{}, nil, &s.TotalUsers},
		{&models.Project{}, nil, &s.TotalProjects},
		{&models.Project{}, []interface{}{"status = ?", domain.ProjectStatusActive}, &s.ActiveProjects},
		{&models.Project{}, []interface{}{"status = ?", domain.ProjectStatusFunded}, &s.FundedProjects},
		{&models.Backing{}, nil, &s.TotalBackings},
		{&models.Referral{}, nil, &s.TotalReferrals},
		{&models.Referral{}, []interface{}{"status = ?", domain.ReferralStatusSuccessful}, &s.SuccessfulReferrals},
		{&models.Valuation{}, []interface{}{"status = ?", domain.ValuationStatusPending}, &s.PendingValuations},
		{&models.Negotiation{}, []interface{}{"status = ?", domain.NegotiationStatusOpen}, &s.OpenNegotiations},
		{&models.ForumPost{}, nil, &s.ForumPosts},
		{&models.ContentReport{}, []interface{}{"status = ?", "PENDING"}, &s.PendingReports},
		{&models.EarlyBirdRegistration{}, nil, &s.EarlyBirdSignups},
	}
	for _, c := range counts {
		q := r.db.Model(c.model)
		if len(c.where) > 0 {
			q = q.Where(c.where[0], c.where[1:]...)
		}
		if err := q.Count(c.dst).Error; err != nil {
			return nil, err
		}
	}

	var backed struct{ Total int64 }
	if err := r.db.Model(&models.Backing{}).Select("COALESCE(SUM(amount_halalas), 0) AS total").Scan(&backed).Error; err != nil {
		return nil, err
	}
	s.BackedHalalas = backed.Total

	var commission struct{ Total int64 }
	if err := r.db.Model(&models.Referral{}).Select("COALESCE(SUM(commission_halalas), 0) AS total").Scan(&commission).Error; err != nil {
		return nil, err
	}
	s.CommissionHalalas = commission.Total

	return &s, nil
}
