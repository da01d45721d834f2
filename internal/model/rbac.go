package model

import "time"

// Role is a named bundle of permissions assignable to users.
type Role struct {
	ID          uint         `json:"id" gorm:"primaryKey"`
	Name        string       `json:"name" gorm:"uniqueIndex;size:100;not null"`
	Permissions []Permission `json:"permissions,omitempty" gorm:"many2many:role_permission"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// Permission is a single named capability, grantable directly or via a role.
type Permission struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"uniqueIndex;size:100;not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserRole is the user↔role join row. The composite primary key doubles as
// the unique constraint the toggle protocol relies on.
type UserRole struct {
	UserID uint `gorm:"primaryKey"`
	RoleID uint `gorm:"primaryKey"`
}

// TableName keeps the singular join table name from the schema.
func (UserRole) TableName() string {
	return "user_role"
}

// UserPermission is the user↔permission join row.
type UserPermission struct {
	UserID       uint `gorm:"primaryKey"`
	PermissionID uint `gorm:"primaryKey"`
}

// TableName keeps the singular join table name from the schema.
func (UserPermission) TableName() string {
	return "user_permission"
}

// Outcome is the result of a toggle: the association was either created or
// removed.
type Outcome string

const (
	// OutcomeGranted means the association did not exist and was added.
	OutcomeGranted Outcome = "granted"
	// OutcomeRevoked means the association existed and was removed.
	OutcomeRevoked Outcome = "revoked"
)
