package models

import "time"

// SystemLog is an application log event persisted to the database by the
// log sink, distinct from console output.
type SystemLog struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	TraceID    string    `gorm:"size:64;index" json:"trace_id"`
	Level      string    `gorm:"size:10;index" json:"level"` // DEBUG, INFO, WARN, ERROR
	LoggerName string    `gorm:"size:200;index" json:"logger_name"`
	Message    string    `gorm:"size:1100" json:"message"`
	Exception  string    `gorm:"size:2100" json:"exception"`
	ThreadName string    `gorm:"size:100" json:"thread_name"`
	ClassName  string    `gorm:"size:200" json:"class_name"`
	MethodName string    `gorm:"size:100" json:"method_name"`
	LineNumber int       `json:"line_number"`
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
}

func (SystemLog) TableName() string { return "system_logs" }
