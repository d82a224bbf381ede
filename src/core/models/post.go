package models

import (
	"time"

	"github.com/google/uuid"
)

// Post struct represents a post in the system
type Post struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	UserID     uuid.UUID `gorm:"column:user_id;type:uuid;not null;index" json:"user_id"`
	MediaURL   string    `gorm:"column:media_url;type:text;not null" json:"media_url"`
	MediaType  string    `gorm:"column:media_type;type:text;not null;default:'image'" json:"media_type"`
	Caption    string    `gorm:"column:caption;type:text;not null;default:''" json:"caption"`
	IsArchived bool      `gorm:"column:is_archived;not null;default:false" json:"is_archived"`
	CreatedAt  time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt  time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (Post) TableName() string {
	return "posts"
}
