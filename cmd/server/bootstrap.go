package main

import (
	"os"

	"github.com/biou/admin-console/internal/audit"
	"github.com/biou/admin-console/internal/config"
	"github.com/biou/admin-console/internal/handlers"
	"github.com/biou/admin-console/internal/logging"
	"github.com/biou/admin-console/internal/models"
	"github.com/biou/admin-console/internal/services"
	"github.com/biou/admin-console/internal/store"
	"github.com/biou/admin-console/internal/utils"
	"github.com/biou/admin-console/pkg/logger"
)

// appServices holds all initialized services and handlers needed by the application.
type appServices struct {
	ttlStore          store.TTLStore
	logService        *services.LogService
	scheduler         *services.LogScheduler
	authHandler       *handlers.AuthHandler
	userHandler       *handlers.UserHandler
	roleHandler       *handlers.RoleHandler
	permissionHandler *handlers.PermissionHandler
	logHandler        *handlers.LogHandler
	healthHandler     *handlers.HealthHandler
}

// bootstrap initializes all application dependencies: database, log pipeline,
// TTL store, services and schedulers.
func bootstrap(cfg *config.Config) *appServices {
	utils.SetJWTSecret(cfg.JWT.Secret)
	utils.SetJWTExpiry(cfg.JWT.ExpireSeconds, cfg.JWT.RefreshExpireSeconds)

	if err := models.InitDB(&cfg.Database); err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	if err := models.AutoMigrate(); err != nil {
		logger.Fatalf("Failed to migrate database: %v", err)
	}

	logService := services.NewLogService(models.GetDB())

	// Route application log events into the system_logs table and audit
	// entries into audit_logs. Both sinks are bound only after the DB is up.
	dbWriter := logging.NewDatabaseWriter(cfg.Log.Level)
	dbWriter.SetSink(logService.SaveSystemLog)
	logger.AttachSink(dbWriter)
	audit.SetRecorder(logService.SaveAuditLog)

	ttlStore := store.New(&cfg.Redis)

	userService := services.NewUserService(models.GetDB(), ttlStore)
	roleService := services.NewRoleService(models.GetDB())
	permissionService := services.NewPermissionService(models.GetDB())
	dingtalkClient := services.NewDingTalkClient(&cfg.DingTalk)
	authService := services.NewAuthService(models.GetDB(), userService, logService, dingtalkClient, ttlStore)

	scheduler := services.NewLogScheduler(logService, &cfg.Log)
	scheduler.Start()

	seedDefaultAdmin(userService)

	return &appServices{
		ttlStore:          ttlStore,
		logService:        logService,
		scheduler:         scheduler,
		authHandler:       handlers.NewAuthHandler(authService, userService),
		userHandler:       handlers.NewUserHandler(userService, roleService),
		roleHandler:       handlers.NewRoleHandler(roleService),
		permissionHandler: handlers.NewPermissionHandler(permissionService),
		logHandler:        handlers.NewLogHandler(logService, scheduler),
		healthHandler:     handlers.NewHealthHandler(ttlStore),
	}
}

// seedDefaultAdmin creates the initial admin account when the user table is
// empty. The password comes from ADMIN_PASSWORD or falls back to a default
// that should be changed immediately.
func seedDefaultAdmin(users *services.UserService) {
	stats, err := users.Statistics()
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to check existing users")
		return
	}
	if stats.Total > 0 {
		return
	}

	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		password = "admin123"
		logger.Warn().Msg("ADMIN_PASSWORD not set, using default admin password")
	}

	if _, err := users.Create(&services.UserCreateRequest{
		Username: "admin",
		Password: password,
		RealName: "Administrator",
	}); err != nil {
		logger.Warn().Err(err).Msg("Failed to create admin user")
		return
	}
	logger.Info().Msg("Default admin user created")
}

// shutdown gracefully stops background services.
func (s *appServices) shutdown() {
	s.scheduler.Stop()
	if s.ttlStore != nil {
		s.ttlStore.Close()
	}
	logger.Info().Msg("All background services stopped")
}
