package models

import (
	"time"

	"bithra/internal/domain"

	"gorm.io/gorm"
)

type User struct {
	ID                 uint           `gorm:"primaryKey" json:"id"`
	Username           string         `gorm:"uniqueIndex;size:64;not null" json:"username"`
	Email              string         `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PasswordHash       string         `gorm:"size:255" json:"-"`
	Role               string         `gorm:"size:20;not null;index;default:'USER'" json:"role"` // USER | ADMIN
	FullName           string         `gorm:"size:128" json:"full_name"`
	Phone              string         `gorm:"size:32" json:"phone"`
	City               string         `gorm:"size:64" json:"city"`
	Language           string         `gorm:"size:2;default:'ar'" json:"language"`
	EmailNotifications bool           `gorm:"default:true" json:"email_notifications"`
	AvatarURL          string         `gorm:"size:512" json:"avatar_url"`
	FCMToken           string         `gorm:"size:512" json:"-"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`
}

func (u *User) IsAdmin() bool { return u.Role == domain.RoleAdmin }

// DisplayName prefers the full name, then the username.
func (u *User) DisplayName() string {
	if u.FullName != "" {
		return u.FullName
	}
	return u.Username
}
