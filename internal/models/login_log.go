package models

import "time"

// LoginLog records an authentication attempt and its outcome. One row is
// written per attempt, success or failure.
type LoginLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    *uint     `gorm:"index" json:"user_id"`
	Username  string    `gorm:"size:100;index" json:"username"`
	LoginType string    `gorm:"size:20;index" json:"login_type"` // LOGIN, LOGOUT, DINGTALK
	IPAddress string    `gorm:"size:50;index" json:"ip_address"`
	Location  string    `gorm:"size:50" json:"location"` // internal, local, unknown
	Browser   string    `gorm:"size:50" json:"browser"`
	OS        string    `gorm:"size:50" json:"os"`
	Status    string    `gorm:"size:10;index" json:"status"` // SUCCESS, FAIL
	Message   string    `gorm:"size:500" json:"message"`
	LoginTime time.Time `gorm:"index" json:"login_time"`
}

func (LoginLog) TableName() string { return "login_logs" }
