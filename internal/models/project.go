package models

import (
	"math"
	"time"

	"bithra/internal/domain"

	"gorm.io/gorm"
)

// Project is a crowdfunding campaign.
type Project struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	PublicID       string         `gorm:"uniqueIndex;size:36;not null" json:"public_id"`
	CreatorID      uint           `gorm:"not null;index" json:"creator_id"`
	Title          string         `gorm:"size:200;not null" json:"title"`
	Description    string         `gorm:"type:text" json:"description"`
	Category       string         `gorm:"size:32;not null;index" json:"category"`
	City           string         `gorm:"size:64;index" json:"city"`
	GoalHalalas    int64          `gorm:"not null" json:"goal_halalas"`
	CurrentHalalas int64          `gorm:"not null;default:0" json:"current_halalas"`
	BackersCount   int            `gorm:"not null;default:0" json:"backers_count"`
	Status         string         `gorm:"size:20;not null;index" json:"status"` // ACTIVE, FUNDED, CLOSED
	CoverURL       string         `gorm:"size:512" json:"cover_url"`
	EndsAt         time.Time      `gorm:"index" json:"ends_at"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`

	Creator  User             `gorm:"foreignKey:CreatorID" json:"-"`
	Packages []ProjectPackage `gorm:"foreignKey:ProjectID" json:"packages,omitempty"`
}

func (Project) TableName() string { return "projects" }

// AcceptsBackings reports whether new pledges are allowed at t.
func (p *Project) AcceptsBackings(t time.Time) bool {
	if p.Status != domain.ProjectStatusActive && p.Status != domain.ProjectStatusFunded {
		return false
	}
	return t.Before(p.EndsAt)
}

// FundedPercent is uncapped and rounded to one decimal.
func (p *Project) FundedPercent() float64 {
	if p.GoalHalalas <= 0 {
		return 0
	}
	pct := float64(p.CurrentHalalas) / float64(p.GoalHalalas) * 100
	return math.Round(pct*10) / 10
}

// DaysLeft rounds partial days up; 0 once the campaign has ended.
func (p *Project) DaysLeft(t time.Time) int {
	if !t.Before(p.EndsAt) {
		return 0
	}
	return int(math.Ceil(p.EndsAt.Sub(t).Hours() / 24))
}

// ProjectPackage is a reward tier offered to backers.
type ProjectPackage struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	ProjectID    uint           `gorm:"not null;index" json:"project_id"`
	Title        string         `gorm:"size:200;not null" json:"title"`
	Description  string         `gorm:"type:text" json:"description"`
	MinHalalas   int64          `gorm:"not null" json:"min_halalas"`
	MaxBackers   int            `gorm:"not null;default:0" json:"max_backers"` // 0 = unlimited
	ClaimedCount int            `gorm:"not null;default:0" json:"claimed_count"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (ProjectPackage) TableName() string { return "project_packages" }

func (p *ProjectPackage) SoldOut() bool {
	return p.MaxBackers > 0 && p.ClaimedCount >= p.MaxBackers
}

// Backing is a pledge from a backer to a project.
type Backing struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	ProjectID     uint           `gorm:"not null;index" json:"project_id"`
	PackageID     *uint          `gorm:"index" json:"package_id"`
	BackerID      uint           `gorm:"not null;index" json:"backer_id"`
	AmountHalalas int64          `gorm:"not null" json:"amount_halalas"`
	CreatedAt     time.Time      `json:"created_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`

	Project Project `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	Backer  User    `gorm:"foreignKey:BackerID" json:"-"`
}

func (Backing) TableName() string { return "backings" }
