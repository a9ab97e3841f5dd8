package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents a console account. Password is empty for accounts
// provisioned through DingTalk login.
type User struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	Username        string         `gorm:"uniqueIndex;size:100;not null" json:"username"`
	Password        string         `gorm:"size:255" json:"-"`
	Email           string         `gorm:"size:255" json:"email"`
	Phone           string         `gorm:"size:20" json:"phone"`
	RealName        string         `gorm:"size:100" json:"real_name"`
	Avatar          string         `gorm:"size:500" json:"avatar"`
	Status          int            `gorm:"default:1;index" json:"status"` // 1 enabled, 0 disabled
	DingtalkUnionID string         `gorm:"size:100;index" json:"dingtalk_union_id,omitempty"`
	DingtalkUserID  string         `gorm:"size:100" json:"dingtalk_user_id,omitempty"`
	LastLoginAt     *time.Time     `json:"last_login_at"`
	LastLoginIP     string         `gorm:"size:50" json:"last_login_ip"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string { return "users" }

// IsEnabled reports whether the account may log in.
func (u *User) IsEnabled() bool { return u.Status == UserEnabled }
