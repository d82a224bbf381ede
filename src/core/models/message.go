package models

import (
	"time"

	"github.com/google/uuid"
)

type Message struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	SenderID    uuid.UUID `gorm:"column:sender_id;type:uuid;not null;index" json:"sender_id"`
	RecipientID uuid.UUID `gorm:"column:recipient_id;type:uuid;not null;index" json:"recipient_id"`
	Content     string    `gorm:"column:content;type:text;not null" json:"content"`
	IsRead      bool      `gorm:"column:is_read;not null;default:false" json:"is_read"`
	CreatedAt   time.Time `gorm:"column:created_at" json:"created_at"`
}

func (Message) TableName() string {
	return "messages"
}
