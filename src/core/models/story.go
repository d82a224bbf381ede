package models

import (
	"time"

	"github.com/google/uuid"
)

// Story is time-boxed content: only rows younger than the 24-hour window
// are served to viewers, older ones surface solely in the owner's archive.
type Story struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;index" json:"user_id"`
	MediaURL  string    `gorm:"column:media_url;type:text;not null" json:"media_url"`
	MediaType string    `gorm:"column:media_type;type:text;not null" json:"media_type"`
	Caption   string    `gorm:"column:caption;type:text;not null;default:''" json:"caption"`
	CreatedAt time.Time `gorm:"column:created_at;index" json:"created_at"`
}

func (Story) TableName() string {
	return "stories"
}

type StoryView struct {
	StoryID  uuid.UUID `gorm:"column:story_id;type:uuid;not null;uniqueIndex:idx_story_views_pair" json:"story_id"`
	UserID   uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex:idx_story_views_pair" json:"user_id"`
	ViewedAt time.Time `gorm:"column:viewed_at" json:"viewed_at"`
}

func (StoryView) TableName() string {
	return "story_views"
}
