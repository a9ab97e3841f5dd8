package handlers

import (
	"context"
	"time"

	"github.com/biou/admin-console/internal/models"
	"github.com/biou/admin-console/internal/store"
	"github.com/gin-gonic/gin"
)

// HealthHandler reports the status of the service's subsystems.
type HealthHandler struct {
	ttlStore store.TTLStore
}

func NewHealthHandler(ttlStore store.TTLStore) *HealthHandler {
	return &HealthHandler{ttlStore: ttlStore}
}

func (h *HealthHandler) CheckHealth(c *gin.Context) {
	overall := "healthy"

	dbStatus := "ok"
	sqlDB, err := models.GetDB().DB()
	if err != nil {
		dbStatus = "error: " + err.Error()
		overall = "unhealthy"
	} else if err := sqlDB.Ping(); err != nil {
		dbStatus = "error: " + err.Error()
		overall = "unhealthy"
	}

	storeStatus := "ok"
	if h.ttlStore != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if _, err := h.ttlStore.Exists(ctx, "health:probe"); err != nil {
			storeStatus = "error: " + err.Error()
			overall = "unhealthy"
		}
	}

	c.JSON(200, gin.H{
		"status":  overall,
		"service": "admin-console",
		"components": gin.H{
			"database":  dbStatus,
			"ttl_store": storeStatus,
		},
	})
}
