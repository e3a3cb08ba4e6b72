package models

import (
	"time"

	"gorm.io/gorm"
)

type ForumCategory struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Slug        string    `gorm:"uniqueIndex;size:64;not null" json:"slug"`
	Name        string    `gorm:"size:128;not null" json:"name"`
	Description string    `gorm:"size:512" json:"description"`
	Position    int       `gorm:"not null;default:0" json:"position"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (ForumCategory) TableName() string { return "forum_categories" }

type ForumPost struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	CategoryID     uint           `gorm:"not null;index" json:"category_id"`
	AuthorID       uint           `gorm:"not null;index" json:"author_id"`
	Title          string         `gorm:"size:200;not null" json:"title"`
	Body           string         `gorm:"type:text;not null" json:"body"`
	Views          int            `gorm:"not null;default:0" json:"views"`
	RepliesCount   int            `gorm:"not null;default:0" json:"replies_count"`
	LastActivityAt time.Time      `gorm:"index" json:"last_activity_at"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`

	Category ForumCategory `gorm:"foreignKey:CategoryID" json:"-"`
	Author   User          `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Replies  []ForumReply  `gorm:"foreignKey:PostID" json:"replies,omitempty"`
}

func (ForumPost) TableName() string { return "forum_posts" }

type ForumReply struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	PostID    uint           `gorm:"not null;index" json:"post_id"`
	AuthorID  uint           `gorm:"not null;index" json:"author_id"`
	Body      string         `gorm:"type:text;not null" json:"body"`
	CreatedAt time.Time      `json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Author User `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
}

func (ForumReply) TableName() string { return "forum_replies" }
