package models

import (
	"time"

	"github.com/google/uuid"
)

// Follow is one completed follow edge: the follower appears in the
// followee's followers and vice versa by construction of this row.
type Follow struct {
	ID         int       `gorm:"column:id;type:int;primaryKey;autoIncrement" json:"id"`
	FollowerID uuid.UUID `gorm:"column:follower_id;type:uuid;not null;uniqueIndex:idx_follows_pair" json:"follower_id"`
	FolloweeID uuid.UUID `gorm:"column:followee_id;type:uuid;not null;uniqueIndex:idx_follows_pair" json:"followee_id"`
	CreatedAt  time.Time `gorm:"column:created_at" json:"created_at"`
}

func (Follow) TableName() string {
	return "follows"
}
