package services

import (
	"fmt"
	"os"
	"time"

	"github.com/biou/admin-console/internal/models"
	"github.com/biou/admin-console/pkg/logger"
	"gorm.io/gorm"
)

type LogService struct {
	db *gorm.DB
}

func NewLogService(db *gorm.DB) *LogService {
	return &LogService{db: db}
}

// --- persistence ---

// SaveAuditLog persists an audit entry. Failures are reported to the console
// logger and swallowed so that auditing never affects the audited operation.
func (s *LogService) SaveAuditLog(entry *models.AuditLog) {
	if entry == nil {
		return
	}
	if err := s.db.Create(entry).Error; err != nil {
		logger.Errorf("failed to save audit log: %v", err)
	}
}

// SaveSystemLog persists a system log entry. Failures go to stderr directly,
// not through the logger, since the logger itself feeds this table.
func (s *LogService) SaveSystemLog(entry *models.SystemLog) {
	if entry == nil {
		return
	}
	if err := s.db.Create(entry).Error; err != nil {
		fmt.Fprintf(os.Stderr, "failed to save system log: %v\n", err)
	}
}

// SaveLoginLog persists a login attempt record. Failures are reported and
// swallowed; the login outcome must not depend on logging.
func (s *LogService) SaveLoginLog(entry *models.LoginLog) {
	if entry == nil {
		return
	}
	if entry.LoginTime.IsZero() {
		entry.LoginTime = time.Now()
	}
	if err := s.db.Create(entry).Error; err != nil {
		logger.Errorf("failed to save login log: %v", err)
	}
}

// --- paged queries ---

type PageRequest struct {
	Page          int    `json:"page" binding:"omitempty,min=1"`
	Size          int    `json:"size" binding:"omitempty,min=1,max=500"`
	SortBy        string `json:"sort_by"`
	SortDirection string `json:"sort_direction" binding:"omitempty,oneof=asc desc ASC DESC"`
}

func (p *PageRequest) normalize(defaultSort string) {
	if p.Page == 0 {
		p.Page = 1
	}
	if p.Size == 0 {
		p.Size = 10
	}
	if p.SortBy == "" {
		p.SortBy = defaultSort
	}
	if p.SortDirection == "" {
		p.SortDirection = "desc"
	}
}

func (p *PageRequest) offset() int {
	return (p.Page - 1) * p.Size
}

// orderClause whitelists the sort column against the caller-supplied set so
// the sort field can never inject SQL.
func (p *PageRequest) orderClause(allowed map[string]bool, fallback string) string {
	column := p.SortBy
	if !allowed[column] {
		column = fallback
	}
	direction := "DESC"
	if p.SortDirection == "asc" || p.SortDirection == "ASC" {
		direction = "ASC"
	}
	return column + " " + direction
}

type PageResult struct {
	Total int64       `json:"total"`
	Page  int         `json:"page"`
	Size  int         `json:"size"`
	Items interface{} `json:"items"`
}

type AuditLogQuery struct {
	PageRequest
	Username      string     `json:"username"`
	OperationType string     `json:"operation_type"`
	BusinessType  string     `json:"business_type"`
	Module        string     `json:"module"`
	IPAddress     string     `json:"ip_address"`
	Status        string     `json:"status"`
	StartTime     *time.Time `json:"start_time"`
	EndTime       *time.Time `json:"end_time"`
}

var auditSortColumns = map[string]bool{
	"created_at":     true,
	"execution_time": true,
	"username":       true,
}

func (s *LogService) PageAuditLogs(req *AuditLogQuery) (*PageResult, error) {
	req.normalize("created_at")

	query := s.db.Model(&models.AuditLog{})
	if req.Username != "" {
		query = query.Where("username LIKE ?", "%"+req.Username+"%")
	}
	if req.OperationType != "" {
		query = query.Where("operation_type = ?", req.OperationType)
	}
	if req.BusinessType != "" {
		query = query.Where("business_type = ?", req.BusinessType)
	}
	if req.Module != "" {
		query = query.Where("module = ?", req.Module)
	}
	if req.IPAddress != "" {
		query = query.Where("ip_address = ?", req.IPAddress)
	}
	if req.Status != "" {
		query = query.Where("status = ?", req.Status)
	}
	if req.StartTime != nil {
		query = query.Where("created_at >= ?", *req.StartTime)
	}
	if req.EndTime != nil {
		query = query.Where("created_at <= ?", *req.EndTime)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var logs []models.AuditLog
	order := req.orderClause(auditSortColumns, "created_at")
	if err := query.Order(order).Offset(req.offset()).Limit(req.Size).Find(&logs).Error; err != nil {
		return nil, err
	}

	return &PageResult{Total: total, Page: req.Page, Size: req.Size, Items: logs}, nil
}

type SystemLogQuery struct {
	PageRequest
	Level      string     `json:"level"`
	LoggerName string     `json:"logger_name"`
	Keyword    string     `json:"keyword"`
	TraceID    string     `json:"trace_id"`
	StartTime  *time.Time `json:"start_time"`
	EndTime    *time.Time `json:"end_time"`
}

var systemSortColumns = map[string]bool{
	"created_at": true,
	"level":      true,
}

func (s *LogService) PageSystemLogs(req *SystemLogQuery) (*PageResult, error) {
	req.normalize("created_at")

	query := s.db.Model(&models.SystemLog{})
	if req.Level != "" {
		query = query.Where("level = ?", req.Level)
	}
	if req.LoggerName != "" {
		query = query.Where("logger_name LIKE ?", "%"+req.LoggerName+"%")
	}
	if req.Keyword != "" {
		query = query.Where("message LIKE ?", "%"+req.Keyword+"%")
	}
	if req.TraceID != "" {
		query = query.Where("trace_id = ?", req.TraceID)
	}
	if req.StartTime != nil {
		query = query.Where("created_at >= ?", *req.StartTime)
	}
	if req.EndTime != nil {
		query = query.Where("created_at <= ?", *req.EndTime)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var logs []models.SystemLog
	order := req.orderClause(systemSortColumns, "created_at")
	if err := query.Order(order).Offset(req.offset()).Limit(req.Size).Find(&logs).Error; err != nil {
		return nil, err
	}

	return &PageResult{Total: total, Page: req.Page, Size: req.Size, Items: logs}, nil
}

type LoginLogQuery struct {
	PageRequest
	Username  string     `json:"username"`
	LoginType string     `json:"login_type"`
	IPAddress string     `json:"ip_address"`
	Status    string     `json:"status"`
	StartTime *time.Time `json:"start_time"`
	EndTime   *time.Time `json:"end_time"`
}

var loginSortColumns = map[string]bool{
	"login_time": true,
	"username":   true,
}

func (s *LogService) PageLoginLogs(req *LoginLogQuery) (*PageResult, error) {
	req.normalize("login_time")

	query := s.db.Model(&models.LoginLog{})
	if req.Username != "" {
		query = query.Where("username LIKE ?", "%"+req.Username+"%")
	}
	if req.LoginType != "" {
		query = query.Where("login_type = ?", req.LoginType)
	}
	if req.IPAddress != "" {
		query = query.Where("ip_address = ?", req.IPAddress)
	}
	if req.Status != "" {
		query = query.Where("status = ?", req.Status)
	}
	if req.StartTime != nil {
		query = query.Where("login_time >= ?", *req.StartTime)
	}
	if req.EndTime != nil {
		query = query.Where("login_time <= ?", *req.EndTime)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var logs []models.LoginLog
	order := req.orderClause(loginSortColumns, "login_time")
	if err := query.Order(order).Offset(req.offset()).Limit(req.Size).Find(&logs).Error; err != nil {
		return nil, err
	}

	return &PageResult{Total: total, Page: req.Page, Size: req.Size, Items: logs}, nil
}

// --- retention cleanup ---

type CleanupResult struct {
	AuditDeleted  int64 `json:"audit_deleted"`
	SystemDeleted int64 `json:"system_deleted"`
	LoginDeleted  int64 `json:"login_deleted"`
}

// CleanExpiredLogs deletes entries older than retentionDays from all three
// log tables. Each table is deleted independently; a failure aborts the sweep
// but already-deleted tables stay deleted.
func (s *LogService) CleanExpiredLogs(retentionDays int) (*CleanupResult, error) {
	if retentionDays <= 0 {
		return nil, fmt.Errorf("retention days must be positive, got %d", retentionDays)
	}
	threshold := time.Now().AddDate(0, 0, -retentionDays)
	result := &CleanupResult{}

	res := s.db.Where("created_at < ?", threshold).Delete(&models.AuditLog{})
	if res.Error != nil {
		return nil, fmt.Errorf("clean audit logs: %w", res.Error)
	}
	result.AuditDeleted = res.RowsAffected

	res = s.db.Where("created_at < ?", threshold).Delete(&models.SystemLog{})
	if res.Error != nil {
		return nil, fmt.Errorf("clean system logs: %w", res.Error)
	}
	result.SystemDeleted = res.RowsAffected

	res = s.db.Where("login_time < ?", threshold).Delete(&models.LoginLog{})
	if res.Error != nil {
		return nil, fmt.Errorf("clean login logs: %w", res.Error)
	}
	result.LoginDeleted = res.RowsAffected

	logger.Infof("log cleanup: removed %d audit, %d system, %d login entries older than %s",
		result.AuditDeleted, result.SystemDeleted, result.LoginDeleted, threshold.Format(time.RFC3339))
	return result, nil
}

// --- statistics ---

type KindStatistics struct {
	Total   int64 `json:"total"`
	Success int64 `json:"success"`
	Fail    int64 `json:"fail"`
}

type LogStatistics struct {
	Since  time.Time      `json:"since"`
	Audit  KindStatistics `json:"audit"`
	System KindStatistics `json:"system"`
	Login  KindStatistics `json:"login"`
}

// Statistics aggregates per-kind totals since the given time. For system logs
// "fail" counts ERROR-level entries.
func (s *LogService) Statistics(since time.Time) (*LogStatistics, error) {
	stats := &LogStatistics{Since: since}

	if err := s.db.Model(&models.AuditLog{}).Where("created_at >= ?", since).
		Count(&stats.Audit.Total).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&models.AuditLog{}).Where("created_at >= ? AND status = ?", since, models.StatusSuccess).
		Count(&stats.Audit.Success).Error; err != nil {
		return nil, err
	}
	stats.Audit.Fail = stats.Audit.Total - stats.Audit.Success

	if err := s.db.Model(&models.SystemLog{}).Where("created_at >= ?", since).
		Count(&stats.System.Total).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&models.SystemLog{}).Where("created_at >= ? AND level = ?", since, models.LevelError).
		Count(&stats.System.Fail).Error; err != nil {
		return nil, err
	}
	stats.System.Success = stats.System.Total - stats.System.Fail

	if err := s.db.Model(&models.LoginLog{}).Where("login_time >= ?", since).
		Count(&stats.Login.Total).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&models.LoginLog{}).Where("login_time >= ? AND status = ?", since, models.StatusSuccess).
		Count(&stats.Login.Success).Error; err != nil {
		return nil, err
	}
	stats.Login.Fail = stats.Login.Total - stats.Login.Success

	return stats, nil
}
