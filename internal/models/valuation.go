package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// Valuation is a property appraisal request submitted from the valuation form.
type Valuation struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	UserID           uint           `gorm:"not null;index" json:"user_id"`
	PropertyType     string         `gorm:"size:32;not null" json:"property_type"`
	City             string         `gorm:"size:64;not null;index:idx_valuation_area" json:"city"`
	District         string         `gorm:"size:64;not null;index:idx_valuation_area" json:"district"`
	AreaSqm          float64        `gorm:"not null" json:"area_sqm"`
	Bedrooms         int            `json:"bedrooms"`
	Bathrooms        int            `json:"bathrooms"`
	AgeYears         int            `json:"age_years"`
	Purpose          string         `gorm:"size:32" json:"purpose"`
	Notes            string         `gorm:"type:text" json:"notes"`
	Status           string         `gorm:"size:20;not null;index" json:"status"` // PENDING, COMPLETED, REJECTED
	AppraisedHalalas int64          `gorm:"not null;default:0" json:"appraised_halalas"`
	PricePerSqm      float64        `gorm:"not null;default:0" json:"price_per_sqm"` // SAR
	Photos           string         `gorm:"type:text" json:"-"`                      // newline separated URLs
	CompletedAt      *time.Time     `json:"completed_at"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Valuation) TableName() string { return "valuations" }

func (v *Valuation) PhotoURLs() []string {
	if v.Photos == "" {
		return []string{}
	}
	return strings.Split(v.Photos, "\n")
}

func (v *Valuation) AddPhotoURL(url string) {
	if v.Photos == "" {
		v.Photos = url
		return
	}
	v.Photos += "\n" + url
}
