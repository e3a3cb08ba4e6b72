package models

import (
	"encoding/json"
	"time"

	"gorm.io/gorm"
)

// Notification is an in-app message; a push is sent alongside when FCM is configured.
// Data holds a JSON object such as {"project_id": 12}.
type Notification struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	UserID    uint           `gorm:"not null;index:idx_notifications_inbox,priority:1" json:"user_id"`
	Type      string         `gorm:"size:50;not null" json:"type"`
	Title     string         `gorm:"size:255;not null" json:"title"`
	Body      string         `gorm:"type:text" json:"body"`
	Data      string         `gorm:"type:text" json:"-"`
	ReadAt    *time.Time     `gorm:"index:idx_notifications_inbox,priority:2" json:"read_at"`
	CreatedAt time.Time      `json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (n Notification) IsRead() bool {
	return n.ReadAt != nil
}

// MarshalJSON exposes Data as an object and adds the read flag.
func (n Notification) MarshalJSON() ([]byte, error) {
	type plain Notification
	var data map[string]interface{}
	if n.Data != "" {
		_ = json.Unmarshal([]byte(n.Data), &data)
	}
	return json.Marshal(struct {
		plain
		Data map[string]interface{} `json:"data,omitempty"`
		Read bool                   `json:"read"`
	}{plain(n), data, n.IsRead()})
}
