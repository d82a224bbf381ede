package models

import "github.com/google/uuid"

type Like struct {
	UserID uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex:idx_likes_pair" json:"user_id"`
	PostID uuid.UUID `gorm:"column:post_id;type:uuid;not null;uniqueIndex:idx_likes_pair" json:"post_id"`
}

func (Like) TableName() string {
	return "likes"
}
