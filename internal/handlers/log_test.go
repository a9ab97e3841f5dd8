package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/biou/admin-console/internal/config"
	"github.com/biou/admin-console/internal/models"
	"github.com/biou/admin-console/internal/services"
	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newLogRouter(t *testing.T) (*gin.Engine, *services.LogService) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(&models.AuditLog{}, &models.SystemLog{}, &models.LoginLog{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	logService := services.NewLogService(db)
	scheduler := services.NewLogScheduler(logService, &config.LogConfig{
		RetentionDays:  90,
		CleanupCron:    "0 2 * * *",
		StatisticsCron: "0 * * * *",
	})
	handler := NewLogHandler(logService, scheduler)

	r := gin.New()
	r.POST("/api/log/audit/page", handler.PageAuditLogs)
	r.POST("/api/log/system/page", handler.PageSystemLogs)
	r.POST("/api/log/login/page", handler.PageLoginLogs)
	r.DELETE("/api/log/clean", handler.Clean)
	r.GET("/api/log/statistics", handler.Statistics)
	return r, logService
}

func TestPageAuditLogsEndpoint(t *testing.T) {
	router, logService := newLogRouter(t)
	logService.SaveAuditLog(&models.AuditLog{Username: "alice", OperationType: models.OpCreate, Status: models.StatusSuccess})

	w := postJSON(t, router, "/api/log/audit/page", map[string]interface{}{"page": 1, "size": 10}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
}

func TestCleanEndpoint_ValidatesRetentionDays(t *testing.T) {
	router, _ := newLogRouter(t)

	for _, raw := range []string{"", "0", "-1", "3651", "abc"} {
		req, _ := http.NewRequest("DELETE", "/api/log/clean?retention_days="+raw, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		if w.Code != http.StatusBadRequest {
			t.Errorf("retention_days=%q: status = %d, expected 400", raw, w.Code)
		}
	}
}

func TestCleanEndpoint(t *testing.T) {
	router, logService := newLogRouter(t)
	logService.SaveAuditLog(&models.AuditLog{Username: "old", Status: models.StatusSuccess, CreatedAt: time.Now().AddDate(0, 0, -100)})

	req, _ := http.NewRequest("DELETE", "/api/log/clean?retention_days=90", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	page, err := logService.PageAuditLogs(&services.AuditLogQuery{})
	if err != nil {
		t.Fatalf("PageAuditLogs failed: %v", err)
	}
	if page.Total != 0 {
		t.Errorf("surviving entries = %d, expected 0", page.Total)
	}
}

func TestStatisticsEndpoint_ValidatesDays(t *testing.T) {
	router, _ := newLogRouter(t)

	for _, raw := range []string{"0", "366", "x"} {
		req, _ := http.NewRequest("GET", "/api/log/statistics?days="+raw, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		if w.Code != http.StatusBadRequest {
			t.Errorf("days=%q: status = %d, expected 400", raw, w.Code)
		}
	}

	// Default window applies when days is omitted.
	req, _ := http.NewRequest("GET", "/api/log/statistics", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("status without days = %d, expected 200", w.Code)
	}
}
