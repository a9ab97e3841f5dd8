package models

import (
	"time"

	"gorm.io/gorm"
)

// Role groups permissions and is assigned to users.
type Role struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Name        string         `gorm:"size:100;not null" json:"name"`
	Code        string         `gorm:"uniqueIndex;size:100;not null" json:"code"`
	Description string         `gorm:"size:500" json:"description"`
	Status      int            `gorm:"default:1" json:"status"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Role) TableName() string { return "roles" }

// UserRole links a user to a role.
type UserRole struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index:idx_user_role,unique;not null" json:"user_id"`
	RoleID    uint      `gorm:"index:idx_user_role,unique;not null" json:"role_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (UserRole) TableName() string { return "user_roles" }

// RolePermission links a role to a permission.
type RolePermission struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	RoleID       uint      `gorm:"index:idx_role_perm,unique;not null" json:"role_id"`
	PermissionID uint      `gorm:"index:idx_role_perm,unique;not null" json:"permission_id"`
	CreatedAt    time.Time `json:"created_at"`
}

func (RolePermission) TableName() string { return "role_permissions" }
