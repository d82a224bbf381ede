package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;primaryKey;not null" json:"id"`
	Username   string    `gorm:"column:username;type:text;unique;not null" json:"username"`
	Name       string    `gorm:"column:name;type:text;not null;default:''" json:"name"`
	Email      string    `gorm:"column:email;type:text;unique;not null" json:"email"`
	Password   string    `gorm:"column:password;type:text;not null" json:"-"`
	Bio        string    `gorm:"column:bio;type:text;not null;default:''" json:"bio"`
	Gender     string    `gorm:"column:gender;type:text;not null;default:''" json:"gender"`
	ProfilePic string    `gorm:"column:profile_pic;type:text;not null;default:''" json:"profile_pic"`
	IsPrivate  bool      `gorm:"column:is_private;not null;default:false" json:"is_private"`
	CreatedAt  time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt  time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// UserSummary is the public slice of a user embedded in listings and
// populated references (followers, comment authors, notification senders).
type UserSummary struct {
	ID         uuid.UUID `gorm:"column:id" json:"id"`
	Username   string    `gorm:"column:username" json:"username"`
	Name       string    `gorm:"column:name" json:"name"`
	ProfilePic string    `gorm:"column:profile_pic" json:"profile_pic"`
}

func (UserSummary) TableName() string {
	return "users"
}
