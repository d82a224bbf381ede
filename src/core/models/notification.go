package models

import (
	"time"

	"github.com/google/uuid"
)

// Notification types emitted by the follow state machine and the
// engagement coordinator.
const (
	NotificationLike            = "like"
	NotificationComment         = "comment"
	NotificationFollow          = "follow"
	NotificationFollowRequest   = "follow_request"
	NotificationRequestAccepted = "follow_request_accepted"
)

// Notification is deduplicated on (recipient, sender, type, post): a
// repeated action refreshes created_at on the existing row instead of
// inserting a second one.
type Notification struct {
	ID          uuid.UUID  `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	RecipientID uuid.UUID  `gorm:"column:recipient_id;type:uuid;not null;index" json:"recipient_id"`
	SenderID    uuid.UUID  `gorm:"column:sender_id;type:uuid;not null" json:"sender_id"`
	Type        string     `gorm:"column:type;type:varchar(50);not null" json:"type"`
	PostID      *uuid.UUID `gorm:"column:post_id;type:uuid" json:"post_id,omitempty"`
	CommentText string     `gorm:"column:comment_text;type:text;not null;default:''" json:"comment_text,omitempty"`
	IsRead      bool       `gorm:"column:is_read;not null;default:false" json:"is_read"`
	CreatedAt   time.Time  `gorm:"column:created_at" json:"created_at"`
}

func (Notification) TableName() string {
	return "notifications"
}
