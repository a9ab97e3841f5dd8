package handlers

import (
	"strconv"
	"time"

	"github.com/biou/admin-console/internal/services"
	"github.com/biou/admin-console/pkg/response"
	"github.com/gin-gonic/gin"
)

const (
	maxRetentionDays  = 3650
	maxStatisticsDays = 365
)

type LogHandler struct {
	logService *services.LogService
	scheduler  *services.LogScheduler
}

func NewLogHandler(logService *services.LogService, scheduler *services.LogScheduler) *LogHandler {
	return &LogHandler{
		logService: logService,
		scheduler:  scheduler,
	}
}

func (h *LogHandler) PageAuditLogs(c *gin.Context) {
	var req services.AuditLogQuery
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.logService.PageAuditLogs(&req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

func (h *LogHandler) PageSystemLogs(c *gin.Context) {
	var req services.SystemLogQuery
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.logService.PageSystemLogs(&req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

func (h *LogHandler) PageLoginLogs(c *gin.Context) {
	var req services.LoginLogQuery
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.logService.PageLoginLogs(&req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

func (h *LogHandler) Clean(c *gin.Context) {
	retentionDays, err := strconv.Atoi(c.Query("retention_days"))
	if err != nil || retentionDays < 1 || retentionDays > maxRetentionDays {
		response.BadRequest(c, "retention_days must be between 1 and 3650")
		return
	}

	result, err := h.scheduler.TriggerCleanup(retentionDays)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

func (h *LogHandler) Statistics(c *gin.Context) {
	days := 7
	if raw := c.Query("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > maxStatisticsDays {
			response.BadRequest(c, "days must be between 1 and 365")
			return
		}
		days = parsed
	}

	since := time.Now().AddDate(0, 0, -days)
	stats, err := h.logService.Statistics(since)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, stats)
}
