package models

import (
	"time"

	"github.com/google/uuid"
)

// FollowRequest is a single-sided, pending proposal to create a follow
// edge against a private account. A pending request and an active edge
// for the same pair are mutually exclusive.
type FollowRequest struct {
	ID          int       `gorm:"column:id;type:int;primaryKey;autoIncrement" json:"id"`
	RequesterID uuid.UUID `gorm:"column:requester_id;type:uuid;not null;uniqueIndex:idx_follow_requests_pair" json:"requester_id"`
	TargetID    uuid.UUID `gorm:"column:target_id;type:uuid;not null;uniqueIndex:idx_follow_requests_pair" json:"target_id"`
	CreatedAt   time.Time `gorm:"column:created_at" json:"created_at"`
}

func (FollowRequest) TableName() string {
	return "follow_requests"
}
