package main

import (
	"github.com/biou/admin-console/internal/audit"
	"github.com/biou/admin-console/internal/config"
	"github.com/biou/admin-console/internal/middleware"
	"github.com/biou/admin-console/internal/models"
	"github.com/biou/admin-console/pkg/logger"
	"github.com/gin-gonic/gin"
)

// registerRoutes sets up all HTTP routes on the given Gin engine.
func registerRoutes(r *gin.Engine, cfg *config.Config, svc *appServices) {
	r.Use(logger.GinLogger(), logger.GinRecovery())
	r.RedirectTrailingSlash = false
	r.RedirectFixedPath = false
	r.Use(middleware.CORS())

	// Rate limiter for credential-bearing auth routes
	authLimiter := middleware.NewRateLimiter(cfg.Server.AuthRateLimit, cfg.Server.AuthRateBurst)

	r.GET("/health", svc.healthHandler.CheckHealth)

	api := r.Group("/api")
	{
		// Auth routes (public, rate limited)
		auth := api.Group("/auth", authLimiter.Middleware())
		{
			auth.POST("/login", svc.authHandler.Login)
			auth.GET("/dingtalk/login-url", svc.authHandler.DingTalkLoginURL)
			auth.POST("/dingtalk/callback", svc.authHandler.DingTalkCallback)
			auth.POST("/refresh", svc.authHandler.Refresh)
		}

		// Protected routes
		protected := api.Group("")
		protected.Use(middleware.AuthRequired(svc.ttlStore))
		{
			protected.POST("/auth/logout", svc.authHandler.Logout)
			protected.GET("/auth/validate", svc.authHandler.Validate)
			protected.GET("/auth/me", svc.authHandler.Me)

			// Users
			protected.POST("/users",
				middleware.Audit(audit.Meta{OperationType: models.OpCreate, BusinessType: models.BizUser, Module: "User", Description: "create user", RecordParams: true}),
				svc.userHandler.Create)
			protected.GET("/users/:id", svc.userHandler.Get)
			protected.POST("/users/page", svc.userHandler.Page)
			protected.GET("/users/enabled", svc.userHandler.ListEnabled)
			protected.GET("/users/statistics", svc.userHandler.Statistics)
			protected.GET("/users/check-username", svc.userHandler.CheckUsername)
			protected.GET("/users/check-email", svc.userHandler.CheckEmail)
			protected.GET("/users/check-phone", svc.userHandler.CheckPhone)
			protected.PUT("/users/:id",
				middleware.Audit(audit.Meta{OperationType: models.OpUpdate, BusinessType: models.BizUser, Module: "User", Description: "update user", RecordParams: true}),
				svc.userHandler.Update)
			protected.PUT("/users/:id/status",
				middleware.Audit(audit.Meta{OperationType: models.OpUpdate, BusinessType: models.BizUser, Module: "User", Description: "update user status", RecordParams: true}),
				svc.userHandler.UpdateStatus)
			protected.DELETE("/users/:id",
				middleware.Audit(audit.Meta{OperationType: models.OpDelete, BusinessType: models.BizUser, Module: "User", Description: "delete user"}),
				svc.userHandler.Delete)
			protected.PUT("/users/:id/roles",
				middleware.Audit(audit.Meta{OperationType: models.OpUpdate, BusinessType: models.BizUser, Module: "User", Description: "assign roles", RecordParams: true}),
				svc.userHandler.AssignRoles)
			protected.GET("/users/:id/roles", svc.userHandler.Roles)

			// Roles
			protected.POST("/roles",
				middleware.Audit(audit.Meta{OperationType: models.OpCreate, BusinessType: models.BizRole, Module: "Role", Description: "create role", RecordParams: true}),
				svc.roleHandler.Create)
			protected.GET("/roles/:id", svc.roleHandler.Get)
			protected.POST("/roles/page", svc.roleHandler.Page)
			protected.GET("/roles", svc.roleHandler.List)
			protected.PUT("/roles/:id",
				middleware.Audit(audit.Meta{OperationType: models.OpUpdate, BusinessType: models.BizRole, Module: "Role", Description: "update role", RecordParams: true}),
				svc.roleHandler.Update)
			protected.DELETE("/roles/:id",
				middleware.Audit(audit.Meta{OperationType: models.OpDelete, BusinessType: models.BizRole, Module: "Role", Description: "delete role"}),
				svc.roleHandler.Delete)
			protected.PUT("/roles/:id/permissions",
				middleware.Audit(audit.Meta{OperationType: models.OpUpdate, BusinessType: models.BizRole, Module: "Role", Description: "assign permissions", RecordParams: true}),
				svc.roleHandler.AssignPermissions)
			protected.GET("/roles/:id/permissions", svc.roleHandler.Permissions)

			// Permissions
			protected.POST("/permissions",
				middleware.Audit(audit.Meta{OperationType: models.OpCreate, BusinessType: models.BizPermission, Module: "Permission", Description: "create permission", RecordParams: true}),
				svc.permissionHandler.Create)
			protected.GET("/permissions/:id", svc.permissionHandler.Get)
			protected.GET("/permissions", svc.permissionHandler.List)
			protected.GET("/permissions/tree", svc.permissionHandler.Tree)
			protected.PUT("/permissions/:id",
				middleware.Audit(audit.Meta{OperationType: models.OpUpdate, BusinessType: models.BizPermission, Module: "Permission", Description: "update permission", RecordParams: true}),
				svc.permissionHandler.Update)
			protected.DELETE("/permissions/:id",
				middleware.Audit(audit.Meta{OperationType: models.OpDelete, BusinessType: models.BizPermission, Module: "Permission", Description: "delete permission"}),
				svc.permissionHandler.Delete)

			// Logs
			protected.POST("/log/audit/page", svc.logHandler.PageAuditLogs)
			protected.POST("/log/system/page", svc.logHandler.PageSystemLogs)
			protected.POST("/log/login/page", svc.logHandler.PageLoginLogs)
			protected.DELETE("/log/clean",
				middleware.Audit(audit.Meta{OperationType: models.OpDelete, BusinessType: models.BizLog, Module: "Log", Description: "clean expired logs"}),
				svc.logHandler.Clean)
			protected.GET("/log/statistics", svc.logHandler.Statistics)
		}
	}
}
