package model

import (
	"time"

	"gorm.io/gorm"
)

// User represents a back-office account. Usernames and emails are stored
// lowercase; uniqueness holds across soft-deleted records until they are
// permanently removed.
type User struct {
	ID              uint           `json:"id" gorm:"primaryKey"`
	Name            string         `json:"name" gorm:"size:255;not null"`
	Username        string         `json:"username" gorm:"uniqueIndex;size:64;not null"`
	Email           string         `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash    string         `json:"-" gorm:"size:255;not null"` // Never expose in JSON
	EmailVerifiedAt *time.Time     `json:"email_verified_at"`
	Roles           []Role         `json:"roles,omitempty" gorm:"many2many:user_role"`
	Permissions     []Permission   `json:"permissions,omitempty" gorm:"many2many:user_permission"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `json:"deleted_at" gorm:"index"`
}

// Verified reports whether the account has a verification timestamp.
// Unverified accounts cannot log in.
func (u *User) Verified() bool {
	return u.EmailVerifiedAt != nil
}

// UserStats holds the account counters shared with every back-office page.
type UserStats struct {
	All      int64 `json:"all"`
	Active   int64 `json:"active"`
	Inactive int64 `json:"inactive"`
	Deleted  int64 `json:"deleted"`
}
