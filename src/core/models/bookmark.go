package models

import "github.com/google/uuid"

// Bookmark is private to the bookmarking user and never emits notifications.
type Bookmark struct {
	UserID uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex:idx_bookmarks_pair" json:"user_id"`
	PostID uuid.UUID `gorm:"column:post_id;type:uuid;not null;uniqueIndex:idx_bookmarks_pair" json:"post_id"`
}

func (Bookmark) TableName() string {
	return "bookmarks"
}
