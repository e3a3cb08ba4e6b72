package models

import (
	"time"

	"bithra/internal/domain"

	"gorm.io/gorm"
)

// Negotiation is a time-boxed thread between a project creator and a prospective backer.
type Negotiation struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	ProjectID       uint           `gorm:"not null;index" json:"project_id"`
	CreatorID       uint           `gorm:"not null;index" json:"creator_id"`
	BackerID        uint           `gorm:"not null;index" json:"backer_id"`
	Status          string         `gorm:"size:20;not null;index" json:"status"` // OPEN, AGREED, DECLINED, EXPIRED
	ProposedHalalas int64          `gorm:"not null;default:0" json:"proposed_halalas"`
	ExpiresAt       time.Time      `gorm:"index" json:"expires_at"`
	ClosedAt        *time.Time     `json:"closed_at"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`

	Project Project `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
}

func (Negotiation) TableName() string {
	return "negotiations"
}

func (n *Negotiation) IsParticipant(userID uint) bool {
	return userID != 0 && (userID == n.CreatorID || userID == n.BackerID)
}

// Counterparty returns the other participant.
func (n *Negotiation) Counterparty(userID uint) uint {
	if userID == n.CreatorID {
		return n.BackerID
	}
	return n.CreatorID
}

// AcceptsMessages is true while the negotiation is open and inside its window.
func (n *Negotiation) AcceptsMessages(t time.Time) bool {
	return n.Status == domain.NegotiationStatusOpen && t.Before(n.ExpiresAt)
}

// RemainingSeconds until expiry, never negative.
func (n *Negotiation) RemainingSeconds(t time.Time) int64 {
	if n.Status != domain.NegotiationStatusOpen || !t.Before(n.ExpiresAt) {
		return 0
	}
	return int64(n.ExpiresAt.Sub(t).Seconds())
}

type NegotiationMessage struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	NegotiationID uint           `gorm:"not null;index" json:"negotiation_id"`
	SenderID      uint           `gorm:"not null;index" json:"sender_id"`
	Content       string         `gorm:"type:text" json:"content"`
	CreatedAt     time.Time      `json:"created_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`

	Negotiation Negotiation `gorm:"foreignKey:NegotiationID" json:"-"`
	Sender      User        `gorm:"foreignKey:SenderID" json:"-"`
}

func (NegotiationMessage) TableName() string {
	return "negotiation_messages"
}
