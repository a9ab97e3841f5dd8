package models

import (
	"time"

	"gorm.io/gorm"
)

// Permission is a menu, button or API grant, organized as a tree via
// ParentID (0 means top level).
type Permission struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"size:100;not null" json:"name"`
	Code      string         `gorm:"uniqueIndex;size:100;not null" json:"code"`
	Type      string         `gorm:"size:20;default:menu" json:"type"` // menu, button, api
	ParentID  uint           `gorm:"index;default:0" json:"parent_id"`
	Path      string         `gorm:"size:200" json:"path"`
	Status    int            `gorm:"default:1" json:"status"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Permission) TableName() string { return "permissions" }
