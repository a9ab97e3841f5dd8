package models

import "time"

// AuditLog records a business operation, its actor and its outcome.
// Rows are written once by the audit middleware and removed only by the
// retention sweep.
type AuditLog struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	UserID        *uint     `gorm:"index" json:"user_id"`
	Username      string    `gorm:"size:100;index" json:"username"`
	OperationType string    `gorm:"size:20;index" json:"operation_type"` // CREATE, UPDATE, DELETE, QUERY, LOGIN, LOGOUT
	BusinessType  string    `gorm:"size:50;index" json:"business_type"`
	Module        string    `gorm:"size:100;index" json:"module"`
	Description   string    `gorm:"size:200" json:"description"`
	HTTPMethod    string    `gorm:"size:10" json:"http_method"`
	RequestURL    string    `gorm:"size:500" json:"request_url"`
	RequestParams string    `gorm:"size:1100" json:"request_params"`
	ResponseData  string    `gorm:"size:2100" json:"response_data"`
	IPAddress     string    `gorm:"size:50;index" json:"ip_address"`
	UserAgent     string    `gorm:"size:500" json:"user_agent"`
	Status        string    `gorm:"size:10;index" json:"status"` // SUCCESS, FAIL
	ErrorMessage  string    `gorm:"size:600" json:"error_message"`
	ExecutionTime int64     `json:"execution_time"` // milliseconds
	CreatedAt     time.Time `gorm:"index" json:"created_at"`
}

func (AuditLog) TableName() string { return "audit_logs" }
